// Package api exposes stored analysis runs over HTTP.
package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"gobiome/internal"
	"gobiome/ports"
)

// Server serves the run query API
type Server struct {
	router *chi.Mux
	repo   ports.RunRepository
	logger *internal.Logger
}

// NewServer creates the API server over a run repository
func NewServer(repo ports.RunRepository, logger *internal.Logger) *Server {
	s := &Server{
		router: chi.NewRouter(),
		repo:   repo,
		logger: logger,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures HTTP middleware
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)
	s.router.Get("/runs", s.handleListRuns)
	s.router.Get("/runs/{id}", s.handleGetRun)
	s.router.Get("/runs/{id}/report", s.handleGetRunReport)
}

// Handler returns the HTTP handler for mounting or serving
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start runs the HTTP server on the given port
func (s *Server) Start(port string) error {
	s.logger.Info("api: listening on :%s", port)
	return http.ListenAndServe(":"+port, s.router)
}

// parseLimit reads the limit query parameter with a sane default
func parseLimit(r *http.Request) int {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			limit = v
		}
	}
	return limit
}
