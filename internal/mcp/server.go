// Package mcp provides an MCP (Model Context Protocol) server exposing the
// season query tools to agents.
package mcp

import (
	"context"
	"errors"
	"log/slog"
	"os/signal"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/nvandessel/poleposition/internal/logging"
	"github.com/nvandessel/poleposition/internal/query"
	"github.com/nvandessel/poleposition/internal/ratelimit"
)

// Server wraps the MCP SDK server around a query engine.
type Server struct {
	server       *sdk.Server
	engine       *query.Engine
	logger       *slog.Logger
	auditLogger  *AuditLogger
	toolLimiters ratelimit.ToolLimiters
}

// Config holds server configuration.
type Config struct {
	Name    string // Server name (e.g., "poleposition")
	Version string // Server version
	Engine  *query.Engine

	// Logger receives operational logs. Nil discards them.
	Logger *slog.Logger

	// AuditLog receives one entry per tool call. Nil disables auditing.
	// The caller owns it and closes it after Run returns.
	AuditLog *AuditLogger
}

// NewServer creates a new MCP server with the query tools registered.
func NewServer(cfg *Config) (*Server, error) {
	if cfg.Engine == nil {
		return nil, errors.New("mcp: config has no query engine")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	mcpServer := sdk.NewServer(&sdk.Implementation{
		Name:    cfg.Name,
		Version: cfg.Version,
	}, &sdk.ServerOptions{
		InitializedHandler: func(ctx context.Context, req *sdk.InitializedRequest) {
			logger.Debug("mcp client initialized")
		},
	})

	s := &Server{
		server:       mcpServer,
		engine:       cfg.Engine,
		logger:       logger,
		auditLogger:  cfg.AuditLog,
		toolLimiters: ratelimit.NewToolLimiters(),
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Run starts the MCP server over stdio transport.
// This blocks until the client disconnects or the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, shutdownSignals...)
	defer stop()

	s.logger.Info("mcp server listening on stdio", "drivers", len(s.engine.Drivers()), "races", len(s.engine.Races()))
	err := s.server.Run(ctx, &sdk.StdioTransport{})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Connect serves a single session over t. Run is the stdio equivalent.
func (s *Server) Connect(ctx context.Context, t sdk.Transport) (*sdk.ServerSession, error) {
	return s.server.Connect(ctx, t, nil)
}
