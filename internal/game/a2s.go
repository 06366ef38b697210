// Package game queries game servers with the A2S protocol on behalf of the application.
// It resolves host names, applies the configured options and maps results onto models.
package game

import (
	"net"
	"strconv"
	"time"

	"github.com/mmichaels01/steamserverquery/internal/config"
	"github.com/mmichaels01/steamserverquery/internal/models"
	"github.com/mmichaels01/steamserverquery/pkg/a2s"
	"github.com/rs/zerolog/log"
)

// Resolve turns a host (name or IP) and port into a UDP endpoint.
func Resolve(host string, port int) (*net.UDPAddr, error) {
	return net.ResolveUDPAddr("udp", net.JoinHostPort(host, strconv.Itoa(port)))
}

func newClient(host string, port int, options config.A2S) (*a2s.Client, error) {
	addr, err := Resolve(host, port)
	if err != nil {
		return nil, err
	}

	client := a2s.New(addr)
	client.Timeout = options.Timeout
	if options.BufferSize > 0 {
		client.BufferSize = options.BufferSize
	}

	return client, nil
}

// QueryInfo requests A2S_INFO from the server.
func QueryInfo(host string, port int, options config.A2S) (*a2s.Info, error) {
	client, err := newClient(host, port, options)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	info, err := client.GetInfo()
	log.Trace().
		Str("addr", client.Addr.String()).
		Dur("duration", time.Since(start)).
		Err(err).
		Msg("A2S_INFO")

	return info, err
}

// QueryPlayers requests the player list from the server.
func QueryPlayers(host string, port int, options config.A2S) ([]a2s.Player, error) {
	client, err := newClient(host, port, options)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	players, err := client.GetPlayers()
	log.Trace().
		Str("addr", client.Addr.String()).
		Dur("duration", time.Since(start)).
		Int("players", len(players)).
		Err(err).
		Msg("A2S_PLAYER")

	return players, err
}

// ApplyInfo copies an A2S_INFO snapshot onto a stored server.
func ApplyInfo(s *models.Server, info *a2s.Info) {
	s.Name = info.Name
	s.Map = info.Map
	s.Folder = info.Folder
	s.Game = info.Game
	s.Version = info.Version
	s.Keywords = info.Keywords
	s.AppID = info.AppID
	s.NumPlayers = info.Players
	s.MaxPlayers = info.MaxPlayers
	s.Bots = info.Bots
	s.ServerType = info.ServerType.String()
	s.Environment = info.Environment.String()
	s.Visibility = info.Visibility.String()
	s.VAC = info.VAC.String()
}

// Roster converts queried players into stored records seen at t.
func Roster(players []a2s.Player, t time.Time) []models.Player {
	roster := make([]models.Player, 0, len(players))
	for _, p := range players {
		roster = append(roster, models.Player{
			Name:     p.Name,
			Score:    p.Score,
			Duration: p.Duration,
			SeenAt:   t,
		})
	}

	return roster
}
