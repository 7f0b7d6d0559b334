// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/jeranaias/toolpanel/internal/jsonfmt"
	"github.com/jeranaias/toolpanel/internal/server"
	"github.com/jeranaias/toolpanel/internal/ui/panel"
	"github.com/jeranaias/toolpanel/internal/ui/styles"
)

// shutdownTimeout bounds how long serve waits for in-flight requests.
const shutdownTimeout = 10 * time.Second

func (a *app) serveCmd() *cobra.Command {
	var (
		host string
		port int
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the tools over a local HTTP API",
		Long: `Serve every tool as a JSON endpoint:

  POST /v1/diff  /v1/validate  /v1/format  /v1/compress  /v1/locate
  POST /v1/text  /v1/base64    /v1/time
  GET  /health   /stats

Requests are rate limited per client. Interrupt to shut down gracefully.`,
		Example: "  toolpanel serve --port 9000\n  curl -d '{\"text\":\"{}\"}' localhost:8787/v1/validate",
		Args:    argsRange(0, 0),
	}
	cmd.Flags().StringVar(&host, "host", "", "Listen address (default from config)")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "Listen port (default from config)")

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		cfg := a.cfg.Server
		if host != "" {
			cfg.Host = host
		}
		if port != 0 {
			if port < 1 || port > 65535 {
				return usageErrorf("--port must be between 1 and 65535, got %d", port)
			}
			cfg.Port = port
		}

		opts := []server.Option{
			server.WithLogger(a.logger),
			server.WithJSONOptions(jsonfmt.Options{
				Indent:       a.cfg.IndentString(),
				AutoWrap:     a.cfg.JSON.AutoWrap,
				RemoveEscape: a.cfg.JSON.RemoveEscape,
			}),
			server.WithDiffContext(a.cfg.Diff.ContextLines),
			server.WithVersion(Version),
		}
		if store := a.history(); store != nil {
			opts = append(opts, server.WithHistory(store))
		}
		srv := server.NewServer(cfg, opts...)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errc := make(chan error, 1)
		go func() { errc <- srv.Start() }()

		if !a.jsonOut {
			printOK(cmd.ErrOrStderr(), "listening on http://%s", srv.Addr())
		}

		select {
		case err := <-errc:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-ctx.Done():
		}

		a.logger.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
	return cmd
}

func (a *app) panelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "panel",
		Short: "Open the interactive terminal panel",
		Long: `Open a full-screen panel with JSON, Diff, Text, Base64 and Time tabs.

JSON is validated as you type after a short pause. Press f1 for key help
and ctrl+c to quit.`,
		Args: argsRange(0, 0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !IsTTY() || !IsStdoutTTY() {
				return usageErrorf("panel needs an interactive terminal")
			}

			opts := []panel.Option{panel.WithLogger(a.logger)}
			if store := a.history(); store != nil {
				opts = append(opts, panel.WithRecorder(store))
			}
			m := panel.New(styles.NewTheme(a.cfg.UI.Theme), a.cfg, opts...)
			defer m.Close()

			p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
			if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
				return fmt.Errorf("panel: %w", err)
			}
			return nil
		},
	}
}
