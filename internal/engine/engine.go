// Package engine runs batch extraction over a message inbox: chunked
// fan-out, per-chunk barrier, serial persistence and progress publishing.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/Veraticus/spends/internal/common"
	"github.com/Veraticus/spends/internal/llm"
	"github.com/Veraticus/spends/internal/metrics"
	"github.com/Veraticus/spends/internal/model"
)

var (
	// ErrAlreadyRunning is returned when ProcessAll is called during a run.
	ErrAlreadyRunning = errors.New("a batch run is already in progress")
	// ErrUnitPanic wraps a panic recovered from a single extraction unit.
	ErrUnitPanic = errors.New("extraction unit panicked")
)

// Options holds configuration for the orchestrator.
type Options struct {
	Logger            *slog.Logger
	Metrics           *metrics.Recorder
	ReadyRetry        common.RetryOptions
	ChunkSize         int
	MinJitter         time.Duration
	MaxJitter         time.Duration
	ChunkPause        time.Duration
	ReadyTimeout      time.Duration
	GenerationTimeout time.Duration // Per message, llm.TextTimeout when zero
	CacheTTL          time.Duration // Lifetime of remembered LLM outcomes, zero disables
}

// DefaultOptions returns the default configuration.
func DefaultOptions() Options {
	return Options{
		ChunkSize:    10,
		MinJitter:    50 * time.Millisecond,
		MaxJitter:    200 * time.Millisecond,
		ChunkPause:   200 * time.Millisecond,
		ReadyTimeout: 30 * time.Second,
		ReadyRetry: common.RetryOptions{
			MaxAttempts:  5,
			InitialDelay: 500 * time.Millisecond,
			MaxDelay:     5 * time.Second,
			Multiplier:   2.0,
		},
	}
}

// Orchestrator drives batch runs. Only one run may be active at a time;
// Status and Subscribe are safe to call from any goroutine.
type Orchestrator struct {
	store   Store
	rules   Extractor
	cache   *llm.ResultCache
	status  *statusPublisher
	logger  *slog.Logger
	metrics *metrics.Recorder
	opts    Options
	running atomic.Bool
}

// New creates an orchestrator persisting into store, with rules as the
// extractor of last resort.
func New(store Store, rules Extractor, opts Options) *Orchestrator {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = DefaultOptions().ChunkSize
	}
	if opts.MaxJitter < opts.MinJitter {
		opts.MaxJitter = opts.MinJitter
	}
	if opts.ReadyTimeout <= 0 {
		opts.ReadyTimeout = DefaultOptions().ReadyTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	o := &Orchestrator{
		store:   store,
		rules:   rules,
		opts:    opts,
		logger:  logger,
		metrics: opts.Metrics,
		status:  newStatusPublisher(),
	}
	if opts.CacheTTL > 0 {
		o.cache = llm.NewResultCache(opts.CacheTTL)
	}
	return o
}

// Status returns the latest progress snapshot.
func (o *Orchestrator) Status() model.ProcessingStatus {
	return o.status.snapshot()
}

// Subscribe returns a channel that always holds the newest snapshot, primed
// with the current one. Call cancel to stop receiving.
func (o *Orchestrator) Subscribe() (<-chan model.ProcessingStatus, func()) {
	return o.status.subscribe()
}

// Reset publishes the zero status. Stored transactions are left alone.
func (o *Orchestrator) Reset() {
	o.status.publish(model.ProcessingStatus{})
}

// Running reports whether a run is in progress.
func (o *Orchestrator) Running() bool {
	return o.running.Load()
}

// ProcessAll replaces the stored transaction set with the transactions
// found in messages. gen may be nil, in which case only the rule-based tier
// runs. Transactions persisted before an error remain stored.
func (o *Orchestrator) ProcessAll(ctx context.Context, messages []string, gen llm.TextGenerator) (err error) {
	if !o.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer o.running.Store(false)

	started := time.Now()
	status := model.ProcessingStatus{
		RunID:         uuid.NewString(),
		Tier:          model.TierRules,
		TotalMessages: len(messages),
		IsProcessing:  true,
	}
	logger := o.logger.With("run_id", status.RunID)
	o.status.publish(status)

	defer func() {
		status.IsProcessing = false
		o.status.publish(status)

		outcome := "completed"
		switch {
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			outcome = "canceled"
		case err != nil:
			outcome = "failed"
		}
		o.metrics.ObserveRun(status.Tier, outcome, time.Since(started))
		logger.Info("Batch run finished",
			"outcome", outcome,
			"tier", status.Tier,
			"processed", status.ProcessedMessages,
			"detected", status.DetectedTransactions,
			"duration", time.Since(started))
	}()

	if err := o.store.ClearTransactions(ctx); err != nil {
		return fmt.Errorf("failed to clear transactions: %w", err)
	}

	extractor, tier, release := o.selectTier(ctx, gen, logger)
	defer release()
	status.Tier = tier
	o.status.publish(status)

	logger.Info("Starting batch run",
		"messages", len(messages),
		"chunk_size", o.opts.ChunkSize,
		"tier", tier)

	for offset := 0; offset < len(messages); offset += o.opts.ChunkSize {
		end := min(offset+o.opts.ChunkSize, len(messages))

		results, err := o.runChunk(ctx, extractor, messages[offset:end])
		if err != nil {
			return err
		}

		detected := 0
		for _, txn := range results {
			if txn == nil {
				continue
			}
			if _, err := o.store.AddTransaction(ctx, txn); err != nil {
				status.DetectedTransactions += detected
				return fmt.Errorf("failed to store transaction: %w", err)
			}
			detected++
		}

		status.ProcessedMessages = end
		status.DetectedTransactions += detected
		o.status.publish(status)
		o.metrics.ObserveChunk(tier, end-offset, detected)

		logger.Debug("Chunk complete",
			"processed", status.ProcessedMessages,
			"total", status.TotalMessages,
			"detected", detected)

		if end < len(messages) {
			if err := sleepCtx(ctx, o.opts.ChunkPause); err != nil {
				return err
			}
		}
	}

	return nil
}

// selectTier picks the extractor for the whole run. The LLM tier is used
// only when the backend answers its readiness check in time.
func (o *Orchestrator) selectTier(ctx context.Context, gen llm.TextGenerator, logger *slog.Logger) (Extractor, string, func()) {
	noop := func() {}
	if gen == nil {
		return o.rules, model.TierRules, noop
	}

	if readier, ok := gen.(llm.Readier); ok {
		readyCtx, cancel := context.WithTimeout(ctx, o.opts.ReadyTimeout)
		err := common.WithRetry(readyCtx, func() error {
			return readier.EnsureReady(readyCtx)
		}, o.opts.ReadyRetry)
		cancel()
		if err != nil {
			logger.Warn("Text generation backend not ready, using rule-based parser for this run", "error", err)
			o.metrics.ObserveFallback("not_ready")
			return o.rules, model.TierRules, noop
		}
	}

	extractor := llm.NewExtractor(gen, o.rules, llm.ExtractorOptions{
		Logger:   logger,
		Metrics:  o.metrics,
		Timeout: o.opts.GenerationTimeout,
		Cache:   o.cache,
	})
	return extractor, model.TierLLM, extractor.Close
}

// runChunk extracts every message of chunk concurrently and waits for all
// of them. Results keep the chunk's order.
func (o *Orchestrator) runChunk(ctx context.Context, extractor Extractor, chunk []string) ([]*model.Transaction, error) {
	results := make([]*model.Transaction, len(chunk))
	g, gctx := errgroup.WithContext(ctx)

	for i, message := range chunk {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("%w: %v", ErrUnitPanic, r)
				}
			}()

			if err := sleepCtx(gctx, o.jitter()); err != nil {
				return err
			}
			txn, err := extractor.Extract(gctx, message)
			if err != nil {
				return err
			}
			results[i] = txn
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (o *Orchestrator) jitter() time.Duration {
	spread := o.opts.MaxJitter - o.opts.MinJitter
	if spread <= 0 {
		return o.opts.MinJitter
	}
	return o.opts.MinJitter + rand.N(spread)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
