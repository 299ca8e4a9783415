// Package server exposes a tool catalog over HTTP.
//
// Routes:
//
//	GET  /healthz       liveness probe
//	GET  /tools         tool names, descriptions and parameter schemas
//	POST /tools/{name}  run a tool; the body is the JSON input
//	GET  /metrics       Prometheus metrics
//
// Tool output is returned as text/plain with status 200 even when the tool
// fails; failures carry an X-Tool-Error header naming the error kind.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/cors"

	"github.com/leofalp/substack-tools/providers/tool"
)

const (
	// ToolErrorHeader carries the kind of a failed tool call.
	ToolErrorHeader = "X-Tool-Error"
	// RequestIDHeader carries the request id, generated when absent.
	RequestIDHeader = "X-Request-Id"

	maxBodySize     = 1 << 20
	shutdownTimeout = 10 * time.Second
)

// Options configures a [Server].
type Options struct {
	Logger *slog.Logger
	// CORSOrigins lists allowed origins. Empty allows all.
	CORSOrigins []string
	// Classify names the kind of a tool error for the X-Tool-Error header
	// and metrics. Nil labels every failure "error".
	Classify func(error) string
	// Registerer receives the server's metrics. Nil uses a private registry.
	Registerer prometheus.Registerer
	// Gatherer serves /metrics. Nil serves the private registry.
	Gatherer prometheus.Gatherer
}

// Server routes HTTP requests to a tool catalog.
type Server struct {
	catalog  *tool.Catalog
	logger   *slog.Logger
	classify func(error) string
	metrics  *metrics
	origins  []string
	gatherer prometheus.Gatherer
}

// New returns a server for catalog.
func New(catalog *tool.Catalog, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	classify := opts.Classify
	if classify == nil {
		classify = func(error) string { return "error" }
	}

	reg, gatherer := opts.Registerer, opts.Gatherer
	if reg == nil {
		private := prometheus.NewRegistry()
		reg = private
		if gatherer == nil {
			gatherer = private
		}
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	return &Server{
		catalog:  catalog,
		logger:   logger,
		classify: classify,
		metrics:  newMetrics(reg),
		origins:  opts.CORSOrigins,
		gatherer: gatherer,
	}
}

// Handler returns the router with all middleware installed.
func (s *Server) Handler() http.Handler {
	origins := s.origins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(
		recoverer(),
		requestID(),
		logging(s.logger),
		cors.New(cors.Options{
			AllowedOrigins: origins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", RequestIDHeader},
			ExposedHeaders: []string{RequestIDHeader, ToolErrorHeader},
			MaxAge:         300,
		}).Handler,
	)

	r.Get("/healthz", s.handleHealth)
	r.Get("/tools", s.handleListTools)
	r.Post("/tools/{name}", s.handleCallTool)
	r.Method(http.MethodGet, "/metrics", s.metricsHandler())
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", slog.String("addr", addr), slog.Int("tools", s.catalog.Size()))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("http server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	return nil
}
