// Package maintenance provides one-off tasks to clean and refresh the database.
package maintenance

import (
	"sync"

	"github.com/mmichaels01/steamserverquery/internal/collector"
	"github.com/mmichaels01/steamserverquery/internal/config"
	"github.com/mmichaels01/steamserverquery/internal/models"
	"github.com/mmichaels01/steamserverquery/internal/storage"
	"github.com/rs/zerolog/log"
)

// Run checks if any maintenance flags are set and executes the corresponding task.
// Returns true if a task was executed (indicating the program should exit).
func Run(cfg *config.Config, store *storage.Repository, col *collector.Collector) bool {
	if cfg.Storage.PruneEmpty != "" {
		folder := parseFolder(cfg.Storage.PruneEmpty)
		log.Info().Str("folder_filter", folder).Msg("Pruning empty servers...")

		count, err := store.DeleteEmptyServers(folder)
		if err != nil {
			log.Error().Err(err).Msg("Failed to prune servers")
		} else {
			log.Info().Int64("deleted", count).Msg("Prune finished")
		}

		return true
	}

	var (
		servers  []models.Server
		err      error
		taskName string
	)

	switch {
	case cfg.Storage.CheckEmpty != "":
		taskName = "Check Empty"
		folder := parseFolder(cfg.Storage.CheckEmpty)
		log.Info().Str("folder_filter", folder).Msg("Fetching empty servers for check...")
		servers, err = store.GetServersSubset(folder, true)
	case cfg.Storage.CheckAll != "":
		taskName = "Check All"
		folder := parseFolder(cfg.Storage.CheckAll)
		log.Info().Str("folder_filter", folder).Msg("Fetching all servers for re-check...")
		servers, err = store.GetServersSubset(folder, false)
	default:
		return false
	}

	if err != nil {
		log.Error().Err(err).Msg("Failed to fetch servers")
		return true
	}

	if len(servers) == 0 {
		log.Info().Msg("No servers found for maintenance")
		return true
	}

	log.Info().Int("count", len(servers)).Int("workers", cfg.Server.Workers).Msgf("Starting '%s' task", taskName)
	deleted := runWorkerPool(servers, cfg.Server.Workers, store, col)
	log.Info().Int("deleted", deleted).Msg("Maintenance task completed")

	return true
}

// parseFolder converts the optional-value marker to an empty filter.
func parseFolder(input string) string {
	if input == config.AnyGame {
		return ""
	}

	return input
}

// runWorkerPool re-checks servers concurrently and returns how many were deleted.
func runWorkerPool(servers []models.Server, workers int, store *storage.Repository, col *collector.Collector) int {
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan models.Server, len(servers))
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		deleted int
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for s := range jobs {
				if !checkServer(s, store, col) {
					mu.Lock()
					deleted++
					mu.Unlock()
				}
			}
		}()
	}

	for _, s := range servers {
		jobs <- s
	}
	close(jobs)

	wg.Wait()

	return deleted
}

// checkServer refreshes one server and deletes it when it is invalid or down.
// It reports whether the server was kept.
func checkServer(s models.Server, store *storage.Repository, col *collector.Collector) bool {
	logCtx := log.With().
		Str("ip", s.IP).
		Int("port", s.Port).
		Logger()

	if s.Port <= 0 || s.Port > 65535 {
		logCtx.Debug().Msg("Invalid port, deleting server")
		if err := store.DeleteServer(s.IP, s.Port); err != nil {
			logCtx.Error().Err(err).Msg("Failed to delete invalid server")
		}
		return false
	}

	snapshot, players, err := col.Query(s.IP, s.Port)
	if err != nil {
		logCtx.Debug().Err(err).Msg("Server unreachable, deleting server")
		if err := store.DeleteServer(s.IP, s.Port); err != nil {
			logCtx.Error().Err(err).Msg("Failed to delete unreachable server")
		}
		return false
	}

	if err := col.Save(snapshot, players); err != nil {
		logCtx.Error().Err(err).Msg("Failed to update server")
	} else {
		logCtx.Trace().Msg("Server updated successfully")
	}

	return true
}
