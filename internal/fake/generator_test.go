package fake

import (
	"path/filepath"
	"testing"

	"github.com/mmichaels01/steamserverquery/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateData(t *testing.T) {
	store, err := storage.New(filepath.Join(t.TempDir(), "fake.db"))
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	GenerateData(store, 20)

	servers, err := store.GetServers()
	require.NoError(t, err)
	assert.NotEmpty(t, servers)

	for _, s := range servers {
		assert.NotEmpty(t, s.Name)
		assert.LessOrEqual(t, s.NumPlayers, s.MaxPlayers)

		players, err := store.GetPlayers(s.IP, s.Port)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(players), int(s.MaxPlayers))
	}
}
