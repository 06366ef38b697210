// Package collector takes A2S snapshots of tracked servers and persists them.
package collector

import (
	"time"

	"github.com/mmichaels01/steamserverquery/internal/config"
	"github.com/mmichaels01/steamserverquery/internal/game"
	"github.com/mmichaels01/steamserverquery/internal/geoip"
	"github.com/mmichaels01/steamserverquery/internal/models"
	"github.com/mmichaels01/steamserverquery/internal/storage"
	"github.com/rs/zerolog/log"
)

// Collector queries servers and writes their snapshots to storage.
type Collector struct {
	store *storage.Repository
	geoip *geoip.Provider
	opts  config.A2S
}

// New creates a Collector. geo may be nil.
func New(store *storage.Repository, geo *geoip.Provider, opts config.A2S) *Collector {
	return &Collector{store: store, geoip: geo, opts: opts}
}

// Query takes a snapshot of one server.
// On an A2S_INFO failure the returned server only carries address, country and
// timestamps, together with the error. A player query failure is logged and
// yields a nil roster, so the stored roster is left as it is.
func (c *Collector) Query(ip string, port int) (models.Server, []models.Player, error) {
	now := time.Now()
	s := models.Server{
		IP:          ip,
		Port:        port,
		CountryCode: c.geoip.GetCountryCode(ip),
		FirstSeen:   now,
		LastSeen:    now,
	}

	info, err := game.QueryInfo(ip, port, c.opts)
	if err != nil {
		return s, nil, err
	}
	game.ApplyInfo(&s, info)

	players, err := game.QueryPlayers(ip, port, c.opts)
	if err != nil {
		log.Debug().
			Err(err).
			Str("ip", ip).
			Int("port", port).
			Msg("A2S player query failed")
		return s, nil, nil
	}

	return s, game.Roster(players, now), nil
}

// Save upserts the server and, when players is not nil, replaces its roster.
func (c *Collector) Save(s models.Server, players []models.Player) error {
	if err := c.store.UpsertServer(s); err != nil {
		return err
	}

	if players == nil {
		return nil
	}

	return c.store.ReplacePlayers(s.IP, s.Port, players)
}
