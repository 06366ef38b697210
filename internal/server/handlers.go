package server

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"

	"github.com/mmichaels01/steamserverquery/internal/game"
	"github.com/mmichaels01/steamserverquery/internal/models"
	"github.com/mmichaels01/steamserverquery/internal/vars"
	"github.com/mmichaels01/steamserverquery/pkg/a2s"
	"github.com/rs/zerolog/log"
)

var (
	errBadTarget     = errors.New("missing or invalid ip or port")
	errForeignTarget = errors.New("only the requester's own address can be registered")
	errQueueFull     = errors.New("queue full")
	errShuttingDown  = errors.New("shutting down")
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// target reads and validates the ip and port query parameters.
func target(r *http.Request) (string, int, error) {
	ip := r.URL.Query().Get("ip")
	port, err := strconv.Atoi(r.URL.Query().Get("port"))
	if err != nil || !validTarget(ip, port) {
		return "", 0, errBadTarget
	}

	return ip, port, nil
}

func validTarget(ip string, port int) bool {
	return net.ParseIP(ip) != nil && port > 0 && port <= 65535
}

// queryStatus maps an A2S failure to an HTTP status.
func queryStatus(err error) int {
	if errors.Is(err, a2s.ErrTimeout) {
		return http.StatusGatewayTimeout
	}

	return http.StatusBadGateway
}

// handleVersion returns build information.
func handleVersion(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, vars.Info())
}

// handleServers returns a JSON list of all tracked servers.
func (s *Server) handleServers(w http.ResponseWriter, _ *http.Request) {
	servers, err := s.storage.GetServers()
	if err != nil {
		log.Error().Err(err).Msg("Failed to fetch servers")
		http.Error(w, "Database Error", http.StatusInternalServerError)
		return
	}

	if servers == nil {
		servers = []models.Server{}
	}

	writeJSON(w, http.StatusOK, servers)
}

// handleGetServer returns a tracked server with its last roster.
// Query params: ?ip=1.2.3.4&port=27015
func (s *Server) handleGetServer(w http.ResponseWriter, r *http.Request) {
	ip, port, err := target(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	srv, err := s.storage.GetServer(ip, port)
	if err != nil {
		log.Error().Err(err).Msg("Failed to fetch server")
		http.Error(w, "Database Error", http.StatusInternalServerError)
		return
	}

	if srv == nil {
		http.NotFound(w, r)
		return
	}

	writeJSON(w, http.StatusOK, srv)
}

// handleDeleteServer stops tracking a server.
// Query params: ?ip=1.2.3.4&port=27015
func (s *Server) handleDeleteServer(w http.ResponseWriter, r *http.Request) {
	ip, port, err := target(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := s.storage.DeleteServer(ip, port); err != nil {
		log.Error().Err(err).
			Str("ip", ip).
			Int("port", port).
			Msg("Failed to delete server")

		http.Error(w, "Database Error", http.StatusInternalServerError)
		return
	}

	log.Info().
		Str("ip", ip).
		Int("port", port).
		Msg("Server deleted manually")

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "message": "Server deleted"})
}

// handleInfo performs a live A2S_INFO query.
// Query params: ?ip=1.2.3.4&port=27015
func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	ip, port, err := target(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	info, err := game.QueryInfo(ip, port, s.a2sOptions)
	if err != nil {
		writeError(w, queryStatus(err), err)
		return
	}

	writeJSON(w, http.StatusOK, info)
}

// handlePlayers performs a live A2S_PLAYER query.
// Query params: ?ip=1.2.3.4&port=27015
func (s *Server) handlePlayers(w http.ResponseWriter, r *http.Request) {
	ip, port, err := target(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	players, err := game.QueryPlayers(ip, port, s.a2sOptions)
	if err != nil {
		writeError(w, queryStatus(err), err)
		return
	}

	writeJSON(w, http.StatusOK, players)
}
