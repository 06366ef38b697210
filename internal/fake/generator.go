// Package fake provides utilities for generating random server snapshots for testing and development purposes.
package fake

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/mmichaels01/steamserverquery/internal/models"
	"github.com/mmichaels01/steamserverquery/internal/storage"
	"github.com/rs/zerolog/log"
)

type title struct {
	folder string
	game   string
	maps   []string
	appID  uint16
}

var titles = []title{
	{folder: "cstrike", game: "Counter-Strike: Source", appID: 240, maps: []string{"de_dust2", "de_inferno", "cs_office", "de_nuke"}},
	{folder: "tf", game: "Team Fortress", appID: 440, maps: []string{"cp_badlands", "ctf_2fort", "pl_upward", "koth_harvest"}},
	{folder: "garrysmod", game: "Sandbox", appID: 4000, maps: []string{"gm_construct", "gm_flatgrass"}},
	{folder: "left4dead2", game: "Left 4 Dead 2", appID: 550, maps: []string{"c1m1_hotel", "c2m1_highway", "c8m1_apartment"}},
}

var playerNames = []string{"Alice", "Bob", "Carol", "Dave", "Eve", "Mallory", "Trent", "Peggy"}

// GenerateData populates the storage with count randomized servers and rosters.
func GenerateData(store *storage.Repository, count int) {
	countries := []string{"US", "DE", "RU", "BR", "FR", "GB", "PL", "SE", "AU", "CA"}
	environments := []string{"Linux", "Windows"}

	for i := 0; i < count; i++ {
		t := titles[rand.Intn(len(titles))]
		seen := time.Now().Add(-time.Duration(rand.Intn(30*24*60)) * time.Minute)
		maxPlayers := byte(8 * (1 + rand.Intn(8)))
		numPlayers := byte(rand.Intn(int(maxPlayers) + 1))

		s := models.Server{
			IP:          fmt.Sprintf("%d.%d.%d.%d", rand.Intn(220)+1, rand.Intn(255), rand.Intn(255), rand.Intn(255)),
			Port:        27015 + rand.Intn(100),
			Name:        fmt.Sprintf("%s Server #%d", t.game, rand.Intn(1000)),
			Map:         t.maps[rand.Intn(len(t.maps))],
			Folder:      t.folder,
			Game:        t.game,
			Version:     fmt.Sprintf("1.%d.%d", rand.Intn(10), rand.Intn(100)),
			AppID:       t.appID,
			NumPlayers:  numPlayers,
			MaxPlayers:  maxPlayers,
			ServerType:  "dedicated",
			Environment: environments[rand.Intn(len(environments))],
			Visibility:  "public",
			VAC:         "secured",
			CountryCode: countries[rand.Intn(len(countries))],
			FirstSeen:   seen.Add(-7 * 24 * time.Hour),
			LastSeen:    seen,
		}

		if err := store.UpsertServer(s); err != nil {
			log.Warn().Err(err).Msg("Failed to generate fake server")
			continue
		}

		roster := make([]models.Player, 0, numPlayers)
		for j := 0; j < int(numPlayers); j++ {
			roster = append(roster, models.Player{
				Name:     fmt.Sprintf("%s%d", playerNames[rand.Intn(len(playerNames))], j),
				Score:    int32(rand.Intn(100) - 10),
				Duration: rand.Float32() * 7200,
				SeenAt:   seen,
			})
		}

		if err := store.ReplacePlayers(s.IP, s.Port, roster); err != nil {
			log.Warn().Err(err).Msg("Failed to generate fake roster")
		}
	}
}
