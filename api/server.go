// Package api provides the HTTP REST API server for finchart.
//
// It exposes endpoints that fetch a symbol's income statement and price
// history, derive the financial metric series, and return them as JSON.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/seenimoa/finchart/internal/config"
	"github.com/seenimoa/finchart/internal/datasource"
)

// Version is reported by the health endpoint.
var Version = "dev"

// Server is the HTTP API server.
type Server struct {
	router    chi.Router
	cfg       *config.Config
	collector *datasource.Collector
	logger    zerolog.Logger
}

// NewServer creates a configured API server with all routes and middleware.
// A nil collector means the HTTP sources described by cfg.
func NewServer(cfg *config.Config, collector *datasource.Collector, logger zerolog.Logger) *Server {
	if collector == nil {
		collector = datasource.NewCollectorFromConfig(cfg.Sources, logger)
	}
	srv := &Server{
		cfg:       cfg,
		collector: collector,
		logger:    logger,
	}
	srv.router = srv.buildRouter()
	return srv
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// ListenAndServe starts the HTTP server with graceful shutdown.
func (s *Server) ListenAndServe(addr string) error {
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Msg("API server listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-done:
	}
	s.logger.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	return httpSrv.Shutdown(ctx)
}

// buildRouter configures all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))

	// CORS
	origins := []string{"*"}
	if len(s.cfg.API.CORSOrigins) > 0 {
		origins = s.cfg.API.CORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	// Health check
	r.Get("/health", s.handleHealth)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Health (also available at /health)
		r.Get("/health", s.handleHealth)

		// Metrics
		r.Get("/metrics", s.handleListMetrics)
		r.Get("/metrics/{ticker}", s.handleGetMetrics)
		r.Post("/metrics", s.handleDeriveMetrics)

		// Ticker search
		r.Get("/search/tickers", s.handleSearchTickers)

		// Configuration
		r.Get("/config", s.handleGetConfig)
		r.Get("/config/keys", s.handleGetConfigKeys)
	})

	return r
}

// ============================================================
// Request / Response types
// ============================================================

// APIResponse is the standard JSON envelope.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// DeriveRequest is the body for POST /api/v1/metrics. Income and Prices are
// the collaborator payloads exactly as the sources return them.
type DeriveRequest struct {
	Symbol string          `json:"symbol"`
	Income json.RawMessage `json:"income"`
	Prices json.RawMessage `json:"prices"`
}

// MetricInfo describes one supported metric.
type MetricInfo struct {
	Name    string `json:"name"`
	Percent bool   `json:"percent"`
}

// ============================================================
// Helpers
// ============================================================

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("failed to write JSON response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error:   msg,
	})
}
