package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/mmichaels01/steamserverquery/internal/models"
	"github.com/rs/zerolog/log"
)

// handleRegister queues a server for tracking.
// A server registers itself: the target is the address of the requester.
// Only an admin may name another ip in the body.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	clientIP := GetRealIP(r, s.trustProxy)

	r.Body = http.MaxBytesReader(w, r.Body, s.maxBody)

	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Debug().
			Err(err).
			Str("ip", clientIP).
			Msg("Invalid JSON")

		writeError(w, http.StatusBadRequest, err)
		return
	}

	if req.IP == "" {
		req.IP = clientIP
	} else if req.IP != clientIP && !isAdmin(r, s.authToken) {
		log.Debug().
			Str("ip", clientIP).
			Str("target", req.IP).
			Msg("Foreign registration rejected")

		writeError(w, http.StatusForbidden, errForeignTarget)
		return
	}
	if req.IP == "::1" {
		req.IP = "127.0.0.1"
	}

	if !validTarget(req.IP, req.Port) {
		log.Debug().
			Str("ip", req.IP).
			Int("port", req.Port).
			Msg("Invalid target")

		writeError(w, http.StatusBadRequest, errBadTarget)
		return
	}

	// Soft limit
	key := xxhash.Sum64String(req.IP + ":" + strconv.Itoa(req.Port))
	if val, ok := s.seenCache.Load(key); ok {
		if lastSeen, ok := val.(time.Time); ok && time.Since(lastSeen) < s.softLimitDur {
			log.Trace().
				Str("ip", req.IP).
				Int("port", req.Port).
				Msg("Dropped by soft limit hit")

			writeJSON(w, http.StatusAccepted, map[string]string{"status": "skipped"})
			return
		}
	}

	if err := s.enqueue(queryJob{IP: req.IP, Port: req.Port}); err != nil {
		log.Warn().
			Err(err).
			Str("ip", req.IP).
			Int("port", req.Port).
			Msg("Registration dropped")

		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": err.Error()})
		return
	}

	s.seenCache.Store(key, time.Now())
	log.Trace().
		Str("ip", req.IP).
		Int("port", req.Port).
		Msg("Registration queued")

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}

// enqueue hands a job to the workers without blocking.
func (s *Server) enqueue(job queryJob) error {
	s.queueMu.RLock()
	defer s.queueMu.RUnlock()

	if s.queueClosed {
		return errShuttingDown
	}

	select {
	case s.queue <- job:
		return nil
	default:
		return errQueueFull
	}
}

// worker processes jobs from the queue until it is closed.
func (s *Server) worker() {
	defer s.wg.Done()

	for job := range s.queue {
		s.processJob(job)
	}
}

// allowed reports whether a game folder may be tracked.
func (s *Server) allowed(folder string) bool {
	if len(s.allowedGames) == 0 {
		return true
	}

	_, ok := s.allowedGames[xxhash.Sum64String(folder)]
	return ok
}

// processJob queries one server and stores the snapshot.
func (s *Server) processJob(job queryJob) {
	logCtx := log.With().
		Str("ip", job.IP).
		Int("port", job.Port).
		Bool("refresh", job.refresh).
		Logger()

	srv, players, err := s.collector.Query(job.IP, job.Port)
	if err != nil {
		// a refresh keeps the last snapshot, an unreachable endpoint is never stored
		logCtx.Debug().Err(err).Msg("A2S query failed")
		return
	}

	if !s.allowed(srv.Folder) {
		logCtx.Debug().Str("folder", srv.Folder).Msg("Game not allowed")
		return
	}

	if err := s.collector.Save(srv, players); err != nil {
		logCtx.Error().Err(err).Msg("Failed to save server to DB")
		return
	}

	logCtx.Debug().
		Int("players", len(players)).
		Msg("Server snapshot saved")
}
