package server

import (
	"net/http"
	"strings"

	"github.com/asheeshm/paperhouse/internal/common"
)

// registerRoutes sets up all REST API routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// System
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)
	mux.HandleFunc("/api/config", s.handleConfig)

	// Users
	mux.HandleFunc("/api/users/", s.routeUsers)
	mux.HandleFunc("/api/users", s.handleUserCreate)

	// Leaderboard
	mux.HandleFunc("/api/leaderboard/ws", s.handleLeaderboardWS)
	mux.HandleFunc("/api/leaderboard", s.handleLeaderboard)

	// Admin
	mux.HandleFunc("/api/admin/flush", s.handleAdminFlush)
}

// routeUsers dispatches /api/users/{id}/{action} to the appropriate handler.
func (s *Server) routeUsers(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/users/")
	parts := strings.SplitN(path, "/", 2)
	userID := parts[0]
	if userID == "" {
		WriteError(w, http.StatusBadRequest, "user id is required in path")
		return
	}
	if len(parts) < 2 {
		WriteError(w, http.StatusNotFound, "Not found")
		return
	}

	switch parts[1] {
	case "earnings":
		s.handleUserEarnings(w, r, userID)
	case "transactions":
		s.handleUserTransaction(w, r, userID)
	case "snapshots":
		s.handleUserSnapshots(w, r, userID)
	default:
		WriteError(w, http.StatusNotFound, "Not found")
	}
}

// --- System handlers ---

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.GetVersion(),
		"build":   common.GetBuild(),
		"commit":  common.GetGitCommit(),
	})
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"environment":       s.app.Config.Environment,
		"storage_internal":  s.app.Config.Storage.Internal.Path,
		"storage_earnings":  s.app.Config.Storage.Earnings.Path,
		"storage_holdings":  s.app.Config.Storage.Holdings.Path,
		"logging_level":     s.app.Config.Logging.Level,
		"oracle_configured": s.app.Config.Oracle.BaseURL != "",
		"flush_interval":    s.app.Config.Earnings.GetFlushInterval().String(),
		"default_endowment": s.app.Config.Earnings.DefaultEndowment,
	})
}
