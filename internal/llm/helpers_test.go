package llm

import (
	"context"
	"iter"
	"sync"
	"time"
)

// scriptedGenerator replays fixed chunks, optionally after a delay or
// followed by an error.
type scriptedGenerator struct {
	err      error
	readyErr error
	lastReq  Request
	chunks   []string
	delay    time.Duration
	calls    int
	ready    int
	mu       sync.Mutex
}

func (g *scriptedGenerator) Generate(ctx context.Context, req Request) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		g.mu.Lock()
		g.calls++
		g.lastReq = req
		g.mu.Unlock()

		if g.delay > 0 {
			select {
			case <-time.After(g.delay):
			case <-ctx.Done():
				yield("", ctx.Err())
				return
			}
		}
		for _, chunk := range g.chunks {
			if !yield(chunk, nil) {
				return
			}
		}
		if g.err != nil {
			yield("", g.err)
		}
	}
}

func (g *scriptedGenerator) EnsureReady(_ context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.ready++
	return g.readyErr
}

func (g *scriptedGenerator) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

func (g *scriptedGenerator) readyCalls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.ready
}

// stalledGenerator blocks for hold without watching ctx, then replays chunks.
type stalledGenerator struct {
	chunks []string
	hold   time.Duration
}

func (g *stalledGenerator) Generate(_ context.Context, _ Request) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		time.Sleep(g.hold)
		for _, chunk := range g.chunks {
			if !yield(chunk, nil) {
				return
			}
		}
	}
}
