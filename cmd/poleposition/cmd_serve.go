package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/nvandessel/poleposition/internal/api"
	"github.com/nvandessel/poleposition/internal/mcp"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server over stdio",
		Long: `Run the MCP (Model Context Protocol) server over stdio so agents can
query the simulation with tools such as championship_standings,
driver_profile and race_prediction.

With --http the HTTP API is served at the same time; the process stops
when either server stops.

Logs go to stderr; stdout is reserved for the protocol.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			withHTTP, _ := cmd.Flags().GetBool("http")

			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			audit := a.openAudit()
			defer audit.Close()

			mcpServer, err := mcp.NewServer(&mcp.Config{
				Name:     "poleposition",
				Version:  version,
				Engine:   a.engine,
				Logger:   a.logger,
				AuditLog: audit,
			})
			if err != nil {
				return fmt.Errorf("failed to create MCP server: %w", err)
			}

			ctx, stop := signalContext(cmd)
			defer stop()

			if !withHTTP {
				return mcpServer.Run(ctx)
			}

			apiServer, err := a.newAPIServer(audit)
			if err != nil {
				return err
			}

			g, gctx := errgroup.WithContext(ctx)
			gctx, cancel := context.WithCancel(gctx)
			defer cancel()
			g.Go(func() error {
				// The client disconnecting ends the session; stop the API too.
				defer cancel()
				return mcpServer.Run(gctx)
			})
			g.Go(func() error {
				defer cancel()
				return apiServer.ListenAndServe(gctx)
			})
			return g.Wait()
		},
	}

	cmd.Flags().Bool("http", false, "Also serve the HTTP API on the configured address")

	return cmd
}

func newAPICmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "api",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API: REST routes under /api, the /ws/tools WebSocket,
/health and Prometheus /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
				a.cfg.Server.Addr = addr
			}

			audit := a.openAudit()
			defer audit.Close()

			apiServer, err := a.newAPIServer(audit)
			if err != nil {
				return err
			}

			ctx, stop := signalContext(cmd)
			defer stop()

			return apiServer.ListenAndServe(ctx)
		},
	}

	cmd.Flags().String("addr", "", "Listen address (overrides server.addr)")

	return cmd
}

// openAudit opens the tool-call audit log, or returns nil when auditing is
// disabled.
func (a *app) openAudit() *mcp.AuditLogger {
	if !a.cfg.Audit.Enabled {
		return nil
	}
	return mcp.NewAuditLogger(a.cfg.Audit.Dir)
}

func (a *app) newAPIServer(audit *mcp.AuditLogger) (*api.Server, error) {
	return api.NewServer(a.engine, api.Options{
		Addr:            a.cfg.Server.Addr,
		AllowedOrigins:  a.cfg.Server.AllowedOrigins,
		ShutdownTimeout: a.cfg.Server.ShutdownTimeout,
		Logger:          a.logger,
		AuditLog:        audit,
	})
}
