package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/mmichaels01/steamserverquery/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepo(t *testing.T) *Repository {
	t.Helper()

	repo, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	return repo
}

func sampleServer(ip string, port int) models.Server {
	now := time.Now().UTC().Truncate(time.Second)

	return models.Server{
		IP:          ip,
		Port:        port,
		Name:        "Test Server",
		Map:         "de_dust2",
		Folder:      "cstrike",
		Game:        "Counter-Strike: Source",
		Version:     "1.0.0.71",
		AppID:       240,
		NumPlayers:  5,
		MaxPlayers:  24,
		Bots:        1,
		ServerType:  "dedicated",
		Environment: "Linux",
		Visibility:  "public",
		VAC:         "secured",
		CountryCode: "DE",
		FirstSeen:   now,
		LastSeen:    now,
	}
}

func TestMigrationsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	repo, err := New(path)
	require.NoError(t, err)
	require.NoError(t, repo.Close())

	repo, err = New(path)
	require.NoError(t, err)
	require.NoError(t, repo.Close())
}

func TestUpsertServer(t *testing.T) {
	repo := newRepo(t)

	s := sampleServer("10.0.0.1", 27015)
	require.NoError(t, repo.UpsertServer(s))

	got, err := repo.GetServer("10.0.0.1", 27015)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Test Server", got.Name)
	assert.Equal(t, uint16(240), got.AppID)
	assert.Equal(t, byte(24), got.MaxPlayers)
	assert.Equal(t, int64(1), got.Count)

	// an empty snapshot keeps the known A2S data
	empty := models.Server{IP: s.IP, Port: s.Port, FirstSeen: time.Now(), LastSeen: time.Now()}
	require.NoError(t, repo.UpsertServer(empty))

	got, err = repo.GetServer("10.0.0.1", 27015)
	require.NoError(t, err)
	assert.Equal(t, "Test Server", got.Name)
	assert.Equal(t, "DE", got.CountryCode)
	assert.Equal(t, int64(2), got.Count)
}

func TestGetServerMissing(t *testing.T) {
	repo := newRepo(t)

	got, err := repo.GetServer("10.0.0.9", 1)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestReplacePlayers(t *testing.T) {
	repo := newRepo(t)
	require.NoError(t, repo.UpsertServer(sampleServer("10.0.0.1", 27015)))

	now := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, repo.ReplacePlayers("10.0.0.1", 27015, []models.Player{
		{Name: "Alice", Score: 10, Duration: 123.5, SeenAt: now},
		{Name: "Bob", Score: -1, Duration: 1, SeenAt: now},
	}))
	require.NoError(t, repo.ReplacePlayers("10.0.0.1", 27015, []models.Player{
		{Name: "Carol", Score: 3, Duration: 2.5, SeenAt: now},
	}))

	players, err := repo.GetPlayers("10.0.0.1", 27015)
	require.NoError(t, err)
	require.Len(t, players, 1)
	assert.Equal(t, "Carol", players[0].Name)
	assert.Equal(t, float32(2.5), players[0].Duration)

	got, err := repo.GetServer("10.0.0.1", 27015)
	require.NoError(t, err)
	assert.Len(t, got.Players, 1)
}

func TestDeleteServerCascades(t *testing.T) {
	repo := newRepo(t)
	require.NoError(t, repo.UpsertServer(sampleServer("10.0.0.1", 27015)))
	require.NoError(t, repo.ReplacePlayers("10.0.0.1", 27015, []models.Player{{Name: "Alice", SeenAt: time.Now()}}))

	require.NoError(t, repo.DeleteServer("10.0.0.1", 27015))

	players, err := repo.GetPlayers("10.0.0.1", 27015)
	require.NoError(t, err)
	assert.Empty(t, players)
}

func TestEmptyServers(t *testing.T) {
	repo := newRepo(t)
	require.NoError(t, repo.UpsertServer(sampleServer("10.0.0.1", 27015)))

	now := time.Now()
	require.NoError(t, repo.UpsertServer(models.Server{IP: "10.0.0.2", Port: 27015, FirstSeen: now, LastSeen: now}))
	require.NoError(t, repo.UpsertServer(models.Server{IP: "10.0.0.3", Port: 27015, FirstSeen: now, LastSeen: now}))

	all, err := repo.GetServers()
	require.NoError(t, err)
	assert.Len(t, all, 3)

	empty, err := repo.GetServersSubset("", true)
	require.NoError(t, err)
	assert.Len(t, empty, 2)

	cstrike, err := repo.GetServersSubset("cstrike", false)
	require.NoError(t, err)
	require.Len(t, cstrike, 1)
	assert.Equal(t, "10.0.0.1", cstrike[0].IP)

	deleted, err := repo.DeleteEmptyServers("")
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)
}
