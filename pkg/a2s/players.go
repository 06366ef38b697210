package a2s

import (
	"fmt"
)

// challenge is the opaque token echoed back in the second A2S_PLAYER request.
type challenge [4]byte

// noChallenge asks the server to issue a token.
var noChallenge = challenge{0xFF, 0xFF, 0xFF, 0xFF}

func playerRequest(token challenge) []byte {
	return []byte{0xFF, 0xFF, 0xFF, 0xFF, opPlayer, token[0], token[1], token[2], token[3]}
}

// GetPlayers performs the challenge round trip and then the player round trip
// over the same socket, returning the players in wire order.
func (c *Client) GetPlayers() ([]Player, error) {
	s, err := c.open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = s.Close() }()

	reply, err := s.exchange(playerRequest(noChallenge))
	if err != nil {
		return nil, err
	}

	// The reply is always treated as a bare token. A server that answers
	// with the player list right away gets its first four payload bytes
	// echoed back, and the second reply is decoded as the list.
	token, err := decodeChallenge(reply)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedPlayers, err)
	}

	reply, err = s.exchange(playerRequest(token))
	if err != nil {
		return nil, err
	}

	players, err := decodePlayers(reply)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedPlayers, err)
	}

	return players, nil
}

func decodeChallenge(data []byte) (challenge, error) {
	var token challenge

	r := newReader(data)
	if _, err := readPacketHeader(r); err != nil {
		return token, err
	}

	b, err := r.readBytes(len(token))
	if err != nil {
		return token, err
	}
	copy(token[:], b)

	return token, nil
}

func decodePlayers(data []byte) ([]Player, error) {
	r := newReader(data)
	if _, err := readPacketHeader(r); err != nil {
		return nil, err
	}

	count, err := r.readByte()
	if err != nil {
		return nil, err
	}

	players := make([]Player, 0, count)
	for i := 0; i < int(count); i++ {
		var p Player

		// index byte has no stable meaning
		if err := r.skip(1); err != nil {
			return nil, err
		}
		if p.Name, err = r.readCString(); err != nil {
			return nil, err
		}
		if p.Score, err = r.readInt32(); err != nil {
			return nil, err
		}
		if p.Duration, err = r.readFloat32(); err != nil {
			return nil, err
		}

		players = append(players, p)
	}

	return players, nil
}
