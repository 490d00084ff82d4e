// Package server provides the HTTP server for browsing sessions and
// following a running session live.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ayusman/movetrack/internal/server/api"
	"github.com/ayusman/movetrack/internal/store"
)

// Config holds the server configuration.
type Config struct {
	StaticDir string
	Store     *store.Store
	Hub       *PositionHub
	Stream    *FrameStream
}

// Server represents the HTTP server for the movetrack application.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	// Register session API handler if Store is configured
	if s.config.Store != nil {
		sessionHandler := api.NewSessionHandler(s.config.Store)
		s.mux.Handle("/api/sessions", sessionHandler)
		s.mux.Handle("/api/sessions/", sessionHandler)
	}

	// Live positions of the running session
	if s.config.Hub != nil {
		s.mux.Handle("/api/positions", s.config.Hub)
	}

	// Annotated frames of the running session
	if s.config.Stream != nil {
		s.mux.Handle("/api/stream", s.config.Stream)
	}

	// Serve static files if StaticDir is configured
	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	uptime := time.Since(s.start)

	response := map[string]interface{}{
		"status": "ok",
		"uptime": uptime.String(),
	}
	if s.config.Hub != nil {
		response["clients"] = s.config.Hub.Clients()
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}
