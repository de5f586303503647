// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pride-gateway/internal/analytics"
	"github.com/pdiddy/pride-gateway/internal/archive"
	"github.com/pdiddy/pride-gateway/internal/gateway"
	"github.com/pdiddy/pride-gateway/internal/llm"
	"github.com/pdiddy/pride-gateway/internal/mcp"
	"github.com/pdiddy/pride-gateway/internal/notify"
	"github.com/pdiddy/pride-gateway/internal/pipeline"
	"github.com/pdiddy/pride-gateway/internal/tools"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP gateway and MCP server",
	Long: `Serve starts the gateway: POST /api/chat answers questions through the
pipeline, /api/questions and /api/analytics expose the question log, and
/mcp/ speaks the MCP JSON-RPC protocol for tool-calling clients.

Without a model API key the pipeline still answers using its deterministic
planner and formatter.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("host", "", "listen address (default 0.0.0.0)")
	serveCmd.Flags().Int("port", 0, "listen port (default 8000)")
	serveCmd.Flags().Bool("no-analytics", false, "disable question logging")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := appConfig()
	if host, _ := cmd.Flags().GetString("host"); host != "" {
		cfg.Server.Host = host
	}
	if port, _ := cmd.Flags().GetInt("port"); port != 0 {
		cfg.Server.Port = port
	}

	runner := &tools.Runner{Archive: archive.NewClient(cfg.Archive)}

	provider, err := llm.NewProvider(cfg.LLM)
	if err != nil {
		if !errors.Is(err, llm.ErrNoCredential) {
			return err
		}
		fmt.Fprintln(os.Stderr, "No model API key configured; using deterministic fallbacks")
	}

	srv := &gateway.Server{
		Pipeline: pipeline.New(runner, provider, cfg.LLM, cfg.Pipeline),
		Version:  version,
		Cfg:      cfg.Server,
	}

	if noAnalytics, _ := cmd.Flags().GetBool("no-analytics"); !noAnalytics {
		store, err := analytics.NewStore(cfg.Analytics.DatabasePath)
		if err != nil {
			return err
		}
		defer store.Close()
		srv.Analytics = store
	}

	if cfg.Notify.WebhookURL != "" && cfg.Notify.NotifyQuestions {
		srv.Notifier = notify.NewNotifier(cfg.Notify.WebhookURL)
	}

	srv.MCP = &mcp.Server{Runner: runner, Version: version}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.Run(ctx)
}
