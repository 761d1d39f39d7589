// Package api serves the query engine over HTTP: REST routes mirroring the
// query tools, a WebSocket tool endpoint for interactive clients and
// Prometheus metrics.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/nvandessel/poleposition/internal/logging"
	"github.com/nvandessel/poleposition/internal/mcp"
	"github.com/nvandessel/poleposition/internal/query"
	"github.com/nvandessel/poleposition/internal/ratelimit"
)

// ServiceName identifies the API in traces.
const ServiceName = "poleposition-api"

// Options configures a Server.
type Options struct {
	// Addr is the listen address, e.g. ":8000".
	Addr string

	// AllowedOrigins may call the API from a browser and open WebSocket
	// sessions. Requests without an Origin header are always allowed.
	AllowedOrigins []string

	// ShutdownTimeout bounds graceful shutdown. Zero means 5s.
	ShutdownTimeout time.Duration

	// Logger receives request and session logs. Nil discards them.
	Logger *slog.Logger

	// AuditLog receives one entry per WebSocket tool call. Nil disables it.
	AuditLog *mcp.AuditLogger
}

// Server serves one query engine over HTTP.
type Server struct {
	engine   *query.Engine
	opts     Options
	logger   *slog.Logger
	origins  map[string]bool
	limiters ratelimit.ToolLimiters
	registry *prometheus.Registry
	metrics  *Metrics
	router   *gin.Engine

	mu   sync.Mutex
	addr string
}

// NewServer creates a server over e. Routes are fixed at creation.
func NewServer(e *query.Engine, opts Options) (*Server, error) {
	if e == nil {
		return nil, errors.New("api: no query engine")
	}
	if opts.ShutdownTimeout == 0 {
		opts.ShutdownTimeout = 5 * time.Second
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	origins := make(map[string]bool, len(opts.AllowedOrigins))
	for _, o := range opts.AllowedOrigins {
		origins[o] = true
	}

	reg := prometheus.NewRegistry()
	s := &Server{
		engine:   e,
		opts:     opts,
		logger:   logger,
		origins:  origins,
		limiters: ratelimit.NewToolLimiters(),
		registry: reg,
		metrics:  NewMetrics(reg),
	}
	s.router = s.newRouter()
	return s, nil
}

// Handler returns the HTTP handler with every route registered.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Addr returns the address the server is listening on.
// Returns empty string if the server hasn't started yet.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
// A clean shutdown returns nil.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	return s.serve(ctx, ln)
}

// serve runs the HTTP server on ln until ctx is cancelled or Serve fails.
func (s *Server) serve(ctx context.Context, ln net.Listener) error {
	s.mu.Lock()
	s.addr = ln.Addr().String()
	s.mu.Unlock()

	httpServer := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	stopped := make(chan struct{})
	shutdownErr := make(chan error, 1)
	go func() {
		select {
		case <-ctx.Done():
		case <-stopped:
			shutdownErr <- nil
			return
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
		defer cancel()
		shutdownErr <- httpServer.Shutdown(shutdownCtx)
	}()

	s.logger.Info("http api listening", "addr", ln.Addr().String())
	err := httpServer.Serve(ln)
	if !errors.Is(err, http.ErrServerClosed) {
		close(stopped)
		<-shutdownErr
		httpServer.Close()
		return fmt.Errorf("serve: %w", err)
	}
	if err := <-shutdownErr; err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.logger.Info("http api stopped")
	return nil
}
