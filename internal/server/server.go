// Package server implements the HTTP server, middleware, and request handlers for the application.
package server

import (
	"net/http"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/mmichaels01/steamserverquery/internal/collector"
	"github.com/mmichaels01/steamserverquery/internal/config"
	"github.com/mmichaels01/steamserverquery/internal/storage"
	"github.com/rs/zerolog/log"
)

// New creates a new Server instance with the provided storage, collector, and configuration.
func New(store *storage.Repository, col *collector.Collector, cfg *config.Config) *Server {
	games := make(map[uint64]struct{})
	for _, game := range cfg.Server.AllowedGames {
		games[xxhash.Sum64String(game)] = struct{}{}
	}

	queueSize := cfg.Server.QueueSize
	if queueSize < 1 {
		queueSize = 1
	}

	return &Server{
		storage:        store,
		collector:      col,
		a2sOptions:     cfg.A2S,
		authToken:      cfg.Server.AuthToken,
		allowedGames:   games,
		maxBody:        cfg.Server.MaxBodySize,
		trustProxy:     cfg.Server.TrustProxy,
		workers:        cfg.Server.Workers,
		hardLimitCount: cfg.RateLimit.HardLimitCount,
		hardLimitWin:   cfg.RateLimit.HardLimitWin,
		softLimitDur:   cfg.RateLimit.SoftLimitDur,
		pollInterval:   cfg.A2S.PollInterval,

		queue:    make(chan queryJob, queueSize),
		shutdown: make(chan struct{}),
	}
}

// StartWorkers starts the query worker pool, the poller and the cache cleanup routine.
func (s *Server) StartWorkers() {
	workers := s.workers
	if workers < 1 {
		workers = 1
	}

	for i := 0; i < workers; i++ {
		s.wg.Add(1)
		go s.worker()
	}

	if s.pollInterval > 0 {
		s.pollerWG.Add(1)
		go s.poll()
	}

	go s.gcSoftLimitCache()
}

// StopWorkers stops the poller, closes the job queue and waits for pending jobs.
func (s *Server) StopWorkers() {
	close(s.shutdown)
	s.pollerWG.Wait()

	s.queueMu.Lock()
	s.queueClosed = true
	close(s.queue)
	s.queueMu.Unlock()

	s.wg.Wait()
}

// Run configures the HTTP routes and returns the main handler.
func (s *Server) Run() http.Handler {
	mux := http.NewServeMux()

	admin := func(h http.HandlerFunc) http.Handler {
		return AdminAuthMiddleware(s.authToken, h)
	}

	mux.Handle("POST /api/servers", s.RateLimitMiddleware(http.HandlerFunc(s.handleRegister)))
	mux.Handle("GET /api/servers", admin(s.handleServers))
	mux.Handle("GET /api/server", admin(s.handleGetServer))
	mux.Handle("DELETE /api/server", admin(s.handleDeleteServer))
	mux.Handle("GET /api/a2s/info", admin(s.handleInfo))
	mux.Handle("GET /api/a2s/players", admin(s.handlePlayers))
	mux.Handle("GET /api/version", http.HandlerFunc(handleVersion))

	return s.LoggingMiddleware(mux)
}

// gcSoftLimitCache periodically removes expired entries from the soft rate-limit cache.
func (s *Server) gcSoftLimitCache() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.shutdown:
			return
		case <-ticker.C:
			now := time.Now()
			s.seenCache.Range(func(key, value any) bool {
				if t, ok := value.(time.Time); !ok || now.Sub(t) > s.softLimitDur {
					s.seenCache.Delete(key)
				}
				return true
			})
		}
	}
}

// poll queues a refresh of every tracked server each pollInterval.
func (s *Server) poll() {
	defer s.pollerWG.Done()

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.shutdown:
			return
		case <-ticker.C:
			if !s.queueRefresh() {
				return
			}
		}
	}
}

// queueRefresh queues all tracked servers. It returns false on shutdown.
func (s *Server) queueRefresh() bool {
	servers, err := s.storage.GetServers()
	if err != nil {
		log.Error().Err(err).Msg("Failed to fetch servers for refresh")
		return true
	}

	queued := 0
	for _, srv := range servers {
		select {
		case <-s.shutdown:
			return false
		case s.queue <- queryJob{IP: srv.IP, Port: srv.Port, refresh: true}:
			queued++
		default:
			log.Warn().
				Int("queued", queued).
				Int("total", len(servers)).
				Msg("Queue full, refresh round cut short")
			return true
		}
	}

	log.Debug().Int("queued", queued).Msg("Refresh round queued")
	return true
}
