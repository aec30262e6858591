// Package server exposes the bundling pipeline over HTTP.
//
// Routes:
//
//	POST /v1/bundle   bundle an edge document or DOT graph
//	GET  /healthz     liveness and build information
//	GET  /metrics     Prometheus metrics (when a handler is configured)
//
// A bundle request carries the input and pipeline options as JSON:
//
//	{
//	  "document": {"nodes": [...], "edges": [...]},
//	  "options":  {"config": {"iterations": 90}, "formats": ["svg"]}
//	}
//
// A DOT graph is sent as a string in "dot" instead of "document". The
// response is the single requested artifact: bundled edges as JSON by
// default, or SVG, PNG or PDF when options.formats or the format query
// parameter ask for it. Missing option fields keep their defaults.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/edgebundle/pkg/bundle"
	"github.com/matzehuels/edgebundle/pkg/config"
	"github.com/matzehuels/edgebundle/pkg/pipeline"
)

// shutdownTimeout bounds graceful shutdown once the serve context ends.
const shutdownTimeout = 10 * time.Second

// Server handles bundling requests with a shared pipeline runner.
type Server struct {
	runner   *pipeline.Runner
	logger   *log.Logger
	timeout  time.Duration
	maxBody  int64
	maxPts   int
	defaults bundle.Config
	metrics  http.Handler
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger for request and error logs.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithTimeout bounds the time spent on a single request.
func WithTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithMaxBody limits request body size in bytes.
func WithMaxBody(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBody = n
		}
	}
}

// WithMaxControlPoints rejects requests whose edges and subdivisions would
// allocate more than n control points.
func WithMaxControlPoints(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxPts = n
		}
	}
}

// WithDefaultConfig sets the bundling config that request options start from.
func WithDefaultConfig(cfg bundle.Config) Option {
	return func(s *Server) { s.defaults = cfg }
}

// WithMetricsHandler mounts h at /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) { s.metrics = h }
}

// New creates a server around runner.
func New(runner *pipeline.Runner, opts ...Option) *Server {
	s := &Server{
		runner:   runner,
		logger:   log.Default(),
		timeout:  config.DefaultTimeout,
		maxBody:  config.DefaultMaxBody,
		maxPts:   config.DefaultMaxControlPoints,
		defaults: bundle.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestID)
	r.Use(s.observe)
	r.Use(s.recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.AllowContentType("application/json"))
		r.Post("/bundle", s.handleBundle)
	})
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, "NOT_FOUND", "no route for "+r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", r.Method+" not allowed on "+r.URL.Path)
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      s.timeout + 5*time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
