// Package server provides the HTTP server for the FitFlow exercise tracker.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Kkkiiiirran/FitFlow/internal/app"
	"github.com/Kkkiiiirran/FitFlow/internal/exercise"
	"github.com/Kkkiiiirran/FitFlow/internal/server/api"
	"github.com/Kkkiiiirran/FitFlow/internal/store"
)

// Config holds the server configuration.
type Config struct {
	StaticDir string
	// Registry defaults to the App's registry, or a fresh one.
	Registry *exercise.Registry
	Store    *store.Store
	// App enables the session WebSocket endpoint.
	App *app.App
	// Gatherer enables /metrics.
	Gatherer prometheus.Gatherer
}

// Server represents the HTTP server for the FitFlow application.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	if config.Registry == nil {
		if config.App != nil {
			config.Registry = config.App.Registry()
		} else {
			config.Registry = exercise.NewRegistry()
		}
	}
	if config.Store == nil && config.App != nil {
		config.Store = config.App.Store()
	}

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

	exercises := api.NewExerciseHandler(s.config.Registry)
	s.mux.Handle("/api/exercises", exercises)
	s.mux.Handle("/api/exercises/", exercises)

	profiles := api.NewProfileHandler(s.config.Registry, s.config.Store)
	s.mux.Handle("/api/profiles", profiles)
	s.mux.Handle("/api/profiles/", profiles)

	// Recordings need somewhere to live
	if s.config.Store != nil {
		recordings := api.NewRecordingHandler(s.config.Store, s.config.Registry)
		s.mux.Handle("/api/recordings", recordings)
		s.mux.Handle("/api/recordings/", recordings)
	}

	if s.config.App != nil {
		s.mux.Handle("/api/sessions/", NewSessionHandler(s.config.App))
	}

	if s.config.Gatherer != nil {
		s.mux.Handle("/metrics", promhttp.HandlerFor(s.config.Gatherer, promhttp.HandlerOpts{}))
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

	response := map[string]interface{}{
		"status":    "ok",
		"uptime":    time.Since(s.start).String(),
		"exercises": len(s.config.Registry.IDs()),
	}
	if a := s.config.App; a != nil {
		response["exercise"] = a.Exercise()
		response["enabled"] = a.IsEnabled()
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
