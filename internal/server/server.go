// Package server provides the HTTP API for ti4lookup.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/hyperjump/ti4lookup/internal/config"
	"github.com/hyperjump/ti4lookup/internal/metrics"
	"github.com/hyperjump/ti4lookup/internal/search"
	"github.com/hyperjump/ti4lookup/internal/storage"
)

// Reloader reloads the card data from its source.
type Reloader interface {
	Reload(ctx context.Context) error
}

// Server is the HTTP server for the ti4lookup API.
type Server struct {
	engine   *search.Engine
	store    storage.Store
	reloader Reloader
	config   *config.Config
	logger   *zap.Logger
	started  time.Time
	server   *http.Server

	// profileMu serializes read-modify-write cycles on stored profiles.
	profileMu sync.Mutex
}

// NewServer creates a server with the given dependencies. reloader may be nil, which
// disables the reload endpoint.
func NewServer(
	engine *search.Engine,
	store storage.Store,
	reloader Reloader,
	cfg *config.Config,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		engine:   engine,
		store:    store,
		reloader: reloader,
		config:   cfg,
		logger:   logger,
		started:  time.Now(),
	}
}

// Router returns the HTTP handler with every route mounted.
func (s *Server) Router() http.Handler {
	metrics.Register()

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/search", s.handleSearch)
		r.Get("/status", s.handleStatus)
		r.Post("/reload", s.handleReload)

		r.Get("/categories", s.handleCategories)
		r.Get("/categories/{slug}", s.handleCategory)

		r.Get("/factions", s.handleFactions)
		r.Get("/factions/{id}", s.handleFaction)

		r.Post("/profiles", s.handleCreateProfile)
		r.Get("/profiles/{id}", s.handleGetProfile)
		r.Put("/profiles/{id}", s.handleUpdateProfile)
		r.Post("/profiles/{id}/expansions/{expansion}/toggle", s.handleToggleExpansion)
	})
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
