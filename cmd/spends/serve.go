package main

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/Veraticus/spends/internal/api"
	"github.com/Veraticus/spends/internal/engine"
	"github.com/Veraticus/spends/internal/inbox"
	"github.com/Veraticus/spends/internal/metrics"
)

const shutdownTimeout = 15 * time.Second

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the extraction pipeline over HTTP",
		Long: `Serve exposes parsing, batch processing, progress, the ledger and queries as a
JSON API. Prometheus metrics are served at /metrics.`,
		RunE: runServe,
	}
	cmd.Flags().String("addr", "", "listen address (default from config)")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	addr, _ := cmd.Flags().GetString("addr")
	if addr == "" {
		addr = cfg.Server.Addr
	}

	ctx := cmd.Context()
	store, err := initStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	rules, err := newRules(cfg)
	if err != nil {
		return err
	}
	gen, err := createGenerator(ctx, cfg)
	if err != nil {
		return err
	}

	recorder := metrics.NewWithRegistry(prometheus.DefaultRegisterer, prometheus.DefaultGatherer)
	srv := api.New(api.Config{
		Store:        store,
		Orchestrator: engine.New(store, rules, orchestratorOptions(cfg, recorder)),
		Rules:        rules,
		Generator:    gen,
		Messages: func() []string {
			return inbox.Load(cfg.Processing.MessagesFile, cfg.Processing.MessageLimit)
		},
		Metrics: recorder,
		Logger:  slog.Default(),
		Timeout: cfg.LLM.Timeout,
	})

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Listen(addr) }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
