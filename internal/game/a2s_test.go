package game

import (
	"net"
	"testing"
	"time"

	"github.com/mmichaels01/steamserverquery/internal/config"
	"github.com/mmichaels01/steamserverquery/internal/models"
	"github.com/mmichaels01/steamserverquery/pkg/a2s"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	addr, err := Resolve("127.0.0.1", 27015)
	require.NoError(t, err)
	assert.Equal(t, 27015, addr.Port)
	assert.True(t, addr.IP.Equal(net.IPv4(127, 0, 0, 1)))

	_, err = Resolve("127.0.0.1", -1)
	assert.Error(t, err)
}

func TestQueryInfoTimeout(t *testing.T) {
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()

	port := conn.LocalAddr().(*net.UDPAddr).Port
	_, err = QueryInfo("127.0.0.1", port, config.A2S{Timeout: 30 * time.Millisecond})
	assert.ErrorIs(t, err, a2s.ErrTimeout)
}

func TestApplyInfo(t *testing.T) {
	var s models.Server
	ApplyInfo(&s, &a2s.Info{
		Name:        "Test",
		Map:         "cp_badlands",
		Folder:      "tf",
		AppID:       440,
		Players:     12,
		MaxPlayers:  24,
		ServerType:  a2s.ServerTypeDedicated,
		Environment: a2s.EnvironmentWindows,
		VAC:         a2s.VACSecured,
	})

	assert.Equal(t, "Test", s.Name)
	assert.Equal(t, "tf", s.Folder)
	assert.Equal(t, uint16(440), s.AppID)
	assert.Equal(t, byte(12), s.NumPlayers)
	assert.Equal(t, "dedicated", s.ServerType)
	assert.Equal(t, "Windows", s.Environment)
	assert.Equal(t, "public", s.Visibility)
	assert.Equal(t, "secured", s.VAC)
}

func TestRoster(t *testing.T) {
	now := time.Now()
	roster := Roster([]a2s.Player{{Name: "Alice", Score: 10, Duration: 123.5}}, now)

	require.Len(t, roster, 1)
	assert.Equal(t, models.Player{Name: "Alice", Score: 10, Duration: 123.5, SeenAt: now}, roster[0])
	assert.NotNil(t, Roster(nil, now))
}
