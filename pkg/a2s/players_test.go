package a2s

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlayerRequest(t *testing.T) {
	assert.Equal(t,
		[]byte{0xFF, 0xFF, 0xFF, 0xFF, 0x55, 0xFF, 0xFF, 0xFF, 0xFF},
		playerRequest(noChallenge))
	assert.Equal(t,
		[]byte{0xFF, 0xFF, 0xFF, 0xFF, 0x55, 0x0A, 0x0B, 0x0C, 0x0D},
		playerRequest(challenge{0x0A, 0x0B, 0x0C, 0x0D}))
}

func TestDecodeChallenge(t *testing.T) {
	token, err := decodeChallenge(newPacket(0x41).u8(0x4E, 0x2D, 0x91, 0x03).Bytes())
	require.NoError(t, err)
	assert.Equal(t, challenge{0x4E, 0x2D, 0x91, 0x03}, token)

	_, err = decodeChallenge(newPacket(0x41).u8(0x4E, 0x2D).Bytes())
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestDecodePlayers(t *testing.T) {
	data := newPacket(0x44).
		u8(2).
		u8(0).cstr("Alice").le(int32(10)).le(float32(123.5)).
		u8(7).cstr("Bob").le(int32(-3)).le(float32(0.25)).
		Bytes()

	players, err := decodePlayers(data)
	require.NoError(t, err)

	assert.Equal(t, []Player{
		{Name: "Alice", Score: 10, Duration: 123.5},
		{Name: "Bob", Score: -3, Duration: 0.25},
	}, players)
	assert.Equal(t, 123500*time.Millisecond, players[0].Connected())
}

func TestDecodePlayersEmpty(t *testing.T) {
	players, err := decodePlayers(newPacket(0x44).u8(0).Bytes())
	require.NoError(t, err)
	assert.NotNil(t, players)
	assert.Empty(t, players)
}

func TestDecodePlayersTruncated(t *testing.T) {
	data := newPacket(0x44).
		u8(2).
		u8(0).cstr("Alice").le(int32(10)).le(float32(123.5)).
		Bytes()

	// count says two, only one record on the wire
	_, err := decodePlayers(data)
	assert.ErrorIs(t, err, ErrTruncated)

	for n := 0; n < len(data); n++ {
		players, err := decodePlayers(data[:n])
		assert.Error(t, err, "length %d", n)
		assert.Nil(t, players)
	}
}

// challengeServer issues token on the first request and answers the player
// request only when it echoes that token.
func challengeServer(t *testing.T, token challenge, reply []byte) *fakeServer {
	return newFakeServer(t, func(req []byte) []byte {
		if len(req) != 9 || req[4] != opPlayer {
			return nil
		}
		if challenge(req[5:9]) == noChallenge {
			return newPacket(0x41).u8(token[:]...).Bytes()
		}
		if challenge(req[5:9]) == token {
			return reply
		}
		return nil
	})
}

func TestGetPlayers(t *testing.T) {
	reply := newPacket(0x44).
		u8(2).
		u8(0).cstr("Alice").le(int32(10)).le(float32(123.5)).
		u8(1).cstr("Bob").le(int32(4)).le(float32(60)).
		Bytes()
	srv := challengeServer(t, challenge{0x01, 0x02, 0x03, 0x04}, reply)

	players, err := QueryPlayers(srv.addr(), time.Second)
	require.NoError(t, err)
	require.Len(t, players, 2)
	assert.Equal(t, Player{Name: "Alice", Score: 10, Duration: 123.5}, players[0])
	assert.Equal(t, "Bob", players[1].Name)

	reqs := srv.received()
	require.Len(t, reqs, 2)
	assert.Equal(t, playerRequest(noChallenge), reqs[0])
	assert.Equal(t, []byte{0x01, 0x02, 0x03, 0x04}, reqs[1][5:9])
}

func TestGetPlayersEchoesToken(t *testing.T) {
	for _, token := range []challenge{
		{0x00, 0x00, 0x00, 0x00},
		{0xFF, 0xFF, 0xFF, 0xFF},
		{0xDE, 0xAD, 0xBE, 0xEF},
	} {
		t.Run(fmt.Sprintf("%X", token[:]), func(t *testing.T) {
			// the handler runs on the server goroutine only
			var n int
			srv := newFakeServer(t, func([]byte) []byte {
				n++
				if n == 1 {
					return newPacket(0x41).u8(token[:]...).Bytes()
				}
				return newPacket(0x44).u8(0).Bytes()
			})

			players, err := QueryPlayers(srv.addr(), time.Second)
			require.NoError(t, err)
			assert.Empty(t, players)

			reqs := srv.received()
			require.Len(t, reqs, 2)
			assert.Equal(t, playerRequest(token), reqs[1])
		})
	}
}

func TestGetPlayersChallengeTimeout(t *testing.T) {
	srv := newFakeServer(t, func([]byte) []byte { return nil })

	players, err := QueryPlayers(srv.addr(), 50*time.Millisecond)
	assert.Nil(t, players)
	require.ErrorIs(t, err, ErrTimeout)

	require.Eventually(t, func() bool { return len(srv.received()) > 0 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Len(t, srv.received(), 1, "no request after a failed challenge round trip")
}

func TestGetPlayersSecondTimeout(t *testing.T) {
	srv := newFakeServer(t, func(req []byte) []byte {
		if challenge(req[5:9]) == noChallenge {
			return newPacket(0x41).u8(1, 2, 3, 4).Bytes()
		}
		return nil
	})

	players, err := QueryPlayers(srv.addr(), 50*time.Millisecond)
	assert.Nil(t, players)
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestGetPlayersMalformed(t *testing.T) {
	srv := challengeServer(t, challenge{9, 9, 9, 9}, newPacket(0x44).u8(3).u8(0).cstr("only").Bytes())

	players, err := QueryPlayers(srv.addr(), time.Second)
	assert.Nil(t, players)
	assert.ErrorIs(t, err, ErrMalformedPlayers)
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestGetPlayersMalformedChallenge(t *testing.T) {
	srv := newFakeServer(t, func([]byte) []byte {
		return []byte{0xFF, 0xFF, 0xFF, 0xFF, 0x41, 0x01}
	})

	_, err := QueryPlayers(srv.addr(), time.Second)
	assert.ErrorIs(t, err, ErrMalformedPlayers)
	assert.Len(t, srv.received(), 1)
}

func TestGetPlayersListInsteadOfChallenge(t *testing.T) {
	list := newPacket(0x44).
		u8(1).
		u8(0).cstr("Alice").le(int32(10)).le(float32(123.5)).
		Bytes()
	srv := newFakeServer(t, func([]byte) []byte { return list })

	players, err := QueryPlayers(srv.addr(), time.Second)
	require.NoError(t, err)
	require.Len(t, players, 1)
	assert.Equal(t, "Alice", players[0].Name)

	// the first four payload bytes of the list go back as the token
	reqs := srv.received()
	require.Len(t, reqs, 2)
	assert.Equal(t, playerRequest(challenge{0x01, 0x00, 'A', 'l'}), reqs[1])
}
