package llm

import (
	"context"
	"fmt"
	"iter"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitedGenerator spaces calls to a TextGenerator with a token bucket
// holding one minute's worth of requests. Readiness checks pass through
// without consuming tokens.
type RateLimitedGenerator struct {
	next    TextGenerator
	limiter *rate.Limiter
}

// WithRateLimit wraps gen so at most requestsPerMinute generations start per
// minute, 60 when requestsPerMinute is not positive.
func WithRateLimit(gen TextGenerator, requestsPerMinute int) *RateLimitedGenerator {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 60
	}
	every := time.Minute / time.Duration(requestsPerMinute)
	return &RateLimitedGenerator{
		next:    gen,
		limiter: rate.NewLimiter(rate.Every(every), requestsPerMinute),
	}
}

// Generate waits for a token, then delegates.
func (g *RateLimitedGenerator) Generate(ctx context.Context, req Request) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		if err := g.wait(ctx); err != nil {
			yield("", err)
			return
		}
		for chunk, err := range g.next.Generate(ctx, req) {
			if !yield(chunk, err) {
				return
			}
		}
	}
}

// wait blocks for a token. A wait that cannot finish before the context
// deadline fails immediately and is reported as context.DeadlineExceeded.
func (g *RateLimitedGenerator) wait(ctx context.Context) error {
	err := g.limiter.Wait(ctx)
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("rate limiter canceled: %w", ctxErr)
	}
	if _, ok := ctx.Deadline(); ok {
		return fmt.Errorf("rate limiter canceled: %w", context.DeadlineExceeded)
	}
	return fmt.Errorf("rate limiter: %w", err)
}

// EnsureReady delegates to the wrapped generator when it has a readiness step.
func (g *RateLimitedGenerator) EnsureReady(ctx context.Context) error {
	if r, ok := g.next.(Readier); ok {
		return r.EnsureReady(ctx)
	}
	return nil
}
