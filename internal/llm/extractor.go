package llm

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Veraticus/spends/internal/metrics"
	"github.com/Veraticus/spends/internal/model"
)

// Fallback is the extraction tier consulted whenever the model cannot
// produce a usable answer.
type Fallback interface {
	Extract(ctx context.Context, message string) (*model.Transaction, error)
}

// ExtractorOptions tunes an Extractor.
type ExtractorOptions struct {
	Logger       *slog.Logger
	Metrics      *metrics.Recorder
	Now          func() time.Time
	Timeout      time.Duration // Per message generation budget, TextTimeout when zero
	ImageTimeout time.Duration // ImageTimeout when zero
	CacheTTL     time.Duration // Zero disables caching unless Cache is set
	Cache        *ResultCache  // Shared cache, left open by Close
}

// Extractor is the LLM tier. It never does worse than its fallback: any
// generation or decoding failure hands the message to the fallback tier.
type Extractor struct {
	gen      TextGenerator
	fallback Fallback
	cache    *ResultCache
	ownCache bool
	logger   *slog.Logger
	metrics  *metrics.Recorder
	now      func() time.Time
	timeout  time.Duration
	imageTTL time.Duration
}

// NewExtractor composes gen with fallback.
func NewExtractor(gen TextGenerator, fallback Fallback, opts ExtractorOptions) *Extractor {
	e := &Extractor{
		gen:      gen,
		fallback: fallback,
		logger:   opts.Logger,
		metrics:  opts.Metrics,
		now:      opts.Now,
		timeout:  opts.Timeout,
		imageTTL: opts.ImageTimeout,
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.timeout <= 0 {
		e.timeout = TextTimeout
	}
	switch {
	case opts.Cache != nil:
		e.cache = opts.Cache
	case opts.CacheTTL > 0:
		e.cache = NewResultCache(opts.CacheTTL)
		e.ownCache = true
	}
	return e
}

// Extract returns the model's reading of message, nil for a confirmed
// non-transaction, or the fallback result. The only errors returned come
// from the caller's context being done.
func (e *Extractor) Extract(ctx context.Context, message string) (*model.Transaction, error) {
	key := model.MessageHash(message)
	if e.cache != nil {
		if txn, ok := e.cache.get(key); ok {
			return txn, nil
		}
	}

	start := time.Now()
	raw, err := Collect(ctx, e.gen, Request{Prompt: BuildExtractionPrompt(message)}, e.timeout)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			e.metrics.ObserveGeneration("canceled", time.Since(start))
			return nil, ctxErr
		}
		reason := "backend_error"
		if errors.Is(err, context.DeadlineExceeded) {
			reason = "timeout"
		}
		e.metrics.ObserveGeneration(reason, time.Since(start))
		return e.fallBack(ctx, message, reason, err)
	}
	e.metrics.ObserveGeneration("ok", time.Since(start))

	txn, err := DecodeTransaction(raw, message, e.now())
	switch {
	case errors.Is(err, ErrNotTransaction):
		e.remember(key, nil)
		return nil, nil
	case errors.Is(err, ErrInvalidAmount):
		return e.fallBack(ctx, message, "invalid_amount", err)
	case err != nil:
		return e.fallBack(ctx, message, "malformed_output", err)
	}

	e.remember(key, txn)
	return txn, nil
}

func (e *Extractor) fallBack(ctx context.Context, message, reason string, cause error) (*model.Transaction, error) {
	e.logger.Warn("LLM extraction failed, using rule-based parser",
		"reason", reason,
		"error", cause)
	e.metrics.ObserveFallback(reason)
	return e.fallback.Extract(ctx, message)
}

func (e *Extractor) remember(key string, txn *model.Transaction) {
	if e.cache != nil {
		e.cache.set(key, txn)
	}
}

// ExtractImage reads a transaction from a screenshot of a notification.
// There is no rule-based fallback for images, so failures are returned.
func (e *Extractor) ExtractImage(ctx context.Context, img Image) (*model.Transaction, error) {
	req := Request{Prompt: BuildImageExtractionPrompt(), Image: &img}

	start := time.Now()
	raw, err := Collect(ctx, e.gen, req, TimeoutFor(req, e.timeout, e.imageTTL))
	if err != nil {
		e.metrics.ObserveGeneration("image_error", time.Since(start))
		return nil, err
	}
	e.metrics.ObserveGeneration("ok", time.Since(start))

	txn, err := DecodeTransaction(raw, "", e.now())
	if errors.Is(err, ErrNotTransaction) {
		return nil, nil
	}
	return txn, err
}

// Close releases the result cache unless it was supplied by the caller.
func (e *Extractor) Close() {
	if e.ownCache {
		e.cache.Close()
	}
}
