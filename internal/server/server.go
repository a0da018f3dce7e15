// Package server exposes the engine as a small JSON API.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ppiankov/medfactors/internal/engine"
	"github.com/ppiankov/medfactors/internal/logging"
	"github.com/ppiankov/medfactors/internal/metrics"
	"github.com/ppiankov/medfactors/internal/model"
	"github.com/ppiankov/medfactors/internal/worker"
)

const shutdownTimeout = 15 * time.Second

// Options wires the server's dependencies
type Options struct {
	Engine  *engine.Engine
	Metrics *metrics.Metrics
	Logger  logging.Logger
	Config  model.ServerConfig
	Workers int
	Catalog model.CatalogInfo
}

// Server serves the HTTP API
type Server struct {
	engine  *engine.Engine
	metrics *metrics.Metrics
	logger  logging.Logger
	info    model.CatalogInfo
	workers int
	maxBody int64
	started time.Time

	handler http.Handler
	srv     *http.Server
}

// New builds the route tree. A nil Metrics disables /metrics and
// instrumentation; a nil Logger discards logs.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	maxBody := opts.Config.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = 1 << 20
	}

	s := &Server{
		engine:  opts.Engine,
		metrics: opts.Metrics,
		logger:  logger.Named("http"),
		info:    opts.Catalog,
		workers: opts.Workers,
		maxBody: maxBody,
		started: time.Now(),
	}
	if s.metrics != nil {
		s.metrics.SetCatalogRules(opts.Engine.Catalog().Len())
	}

	limiter := worker.NewLimiter(opts.Config.RequestsPerSecond, opts.Config.Burst)
	for _, key := range opts.Config.TrustedClients {
		limiter.SetKeyRate(key, 0, 0)
	}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Recover(s.logger))
	r.Use(RequestLogging(s.logger, "/healthz", "/metrics"))
	r.Use(RateLimit(limiter, s.metrics, "/healthz", "/metrics"))
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, fmt.Errorf("no route for %s", r.URL.Path))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, fmt.Errorf("method %s not allowed", r.Method))
	})

	r.Get("/healthz", s.instrumented("healthz", s.handleHealth))
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler())
	}

	r.Route("/v1", func(api chi.Router) {
		api.Post("/resolve", s.instrumented("resolve", s.handleResolve))
		api.Post("/personalize", s.instrumented("personalize", s.handlePersonalize))
		api.Post("/classify", s.instrumented("classify", s.handleClassify))
		api.Post("/evaluate", s.instrumented("evaluate", s.handleEvaluate))
		api.Post("/roster", s.instrumented("roster", s.handleRoster))
		api.Get("/rules/{id}", s.instrumented("rules", s.handleRules))
	})
	s.handler = r

	s.srv = &http.Server{
		Addr:         opts.Config.Addr,
		Handler:      s.handler,
		ReadTimeout:  opts.Config.ReadTimeout,
		WriteTimeout: opts.Config.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) instrumented(route string, h http.HandlerFunc) http.HandlerFunc {
	return instrument(s.metrics, route, h).ServeHTTP
}

// Handler returns the root handler with all middleware applied
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", logging.String("addr", s.srv.Addr))
		errCh <- s.srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.logger.Info("stopped")
	return nil
}
