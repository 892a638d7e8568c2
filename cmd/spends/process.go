package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spends/internal/cli"
	"github.com/Veraticus/spends/internal/engine"
	"github.com/Veraticus/spends/internal/inbox"
	"github.com/Veraticus/spends/internal/llm"
	"github.com/Veraticus/spends/internal/metrics"
	"github.com/Veraticus/spends/internal/model"
)

func processCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "process",
		Short: "Extract transactions from the inbox into the ledger",
		Long: `Process reads the configured messages file (or the built-in samples), extracts
every transaction it can find and replaces the ledger with the results.

Messages are handled in chunks. When a language model is configured and ready
it is used for extraction, otherwise the rule-based parser is used throughout.`,
		RunE: runProcess,
	}

	cmd.Flags().StringP("file", "f", "", "messages file (JSON array or one message per line)")
	cmd.Flags().IntP("limit", "n", 0, "maximum number of messages to read (default from config)")
	cmd.Flags().Bool("no-progress", false, "disable the progress bar")

	return cmd
}

func runProcess(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	file, _ := cmd.Flags().GetString("file")
	if file == "" {
		file = cfg.Processing.MessagesFile
	}
	limit, _ := cmd.Flags().GetInt("limit")
	if limit <= 0 {
		limit = cfg.Processing.MessageLimit
	}
	noProgress, _ := cmd.Flags().GetBool("no-progress")

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

	recorder := metrics.New()
	orch := engine.New(store, rules, orchestratorOptions(cfg, recorder))
	messages := inbox.Load(file, limit)

	handler := cli.NewInterruptHandler(os.Stdout)
	runCtx, stop := handler.HandleInterrupts(ctx, true)
	defer stop()

	var progress io.Writer = os.Stderr
	if noProgress {
		progress = nil
	}
	status, err := runWithProgress(runCtx, orch, messages, gen, progress)

	if werr := recorder.WriteTextfile(cfg.Metrics.TextfilePath); werr != nil {
		slog.Warn("Failed to export metrics", "error", werr)
	}

	if errors.Is(err, context.Canceled) && (handler.WasInterrupted() || ctx.Err() != nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("processing failed: %w", err)
	}

	fmt.Fprintln(os.Stdout, cli.RenderBox("Processing complete", fmt.Sprintf(
		"Messages processed: %d\nTransactions found: %d\nExtraction: %s",
		status.ProcessedMessages, status.DetectedTransactions, status.Tier)))
	return nil
}

// runWithProgress runs one batch and, when w is non-nil, draws its progress
// on w. It returns the final status snapshot.
func runWithProgress(ctx context.Context, orch *engine.Orchestrator, messages []string, gen llm.TextGenerator, w io.Writer) (model.ProcessingStatus, error) {
	if w == nil {
		err := orch.ProcessAll(ctx, messages, gen)
		return orch.Status(), err
	}

	updates, unsubscribe := orch.Subscribe()
	done := make(chan error, 1)
	go func() {
		err := orch.ProcessAll(ctx, messages, gen)
		unsubscribe()
		done <- err
	}()

	cli.RenderProgress(w, updates)
	err := <-done
	return orch.Status(), err
}
