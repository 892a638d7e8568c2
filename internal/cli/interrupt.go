package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// InterruptHandler turns the first SIGINT or SIGTERM of a run into context
// cancellation and tells the user what happened to their results.
type InterruptHandler struct {
	out          io.Writer
	cancel       context.CancelFunc
	once         sync.Once
	mu           sync.Mutex
	partialSaved bool
	interrupted  bool
}

// NewInterruptHandler writes its notice to out, stdout when nil.
func NewInterruptHandler(out io.Writer) *InterruptHandler {
	if out == nil {
		out = os.Stdout
	}
	return &InterruptHandler{out: out}
}

// HandleInterrupts returns a context canceled on the first interrupt and a
// stop func that releases the signal handler. partialSaved says whether
// results stored before the interrupt are kept.
func (h *InterruptHandler) HandleInterrupts(ctx context.Context, partialSaved bool) (context.Context, func()) {
	ctx, cancel := context.WithCancel(ctx)
	h.mu.Lock()
	h.cancel = cancel
	h.partialSaved = partialSaved
	h.mu.Unlock()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case <-signals:
			h.interrupt()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(signals)
		cancel()
	}
}

func (h *InterruptHandler) interrupt() {
	h.once.Do(func() {
		h.mu.Lock()
		h.interrupted = true
		h.mu.Unlock()
		if _, err := fmt.Fprint(h.out, h.notice()); err != nil {
			slog.Debug("Failed to write interrupt notice", "error", err)
		}
	})

	h.mu.Lock()
	cancel := h.cancel
	h.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (h *InterruptHandler) notice() string {
	h.mu.Lock()
	defer h.mu.Unlock()

	msg := "\n\n" + FormatWarning("Processing interrupted!") + "\n"
	if h.partialSaved {
		msg += FormatInfo("Transactions found so far have been saved. Start over with: spends process") + "\n"
	}
	return msg
}

// WasInterrupted reports whether an interrupt was received.
func (h *InterruptHandler) WasInterrupted() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.interrupted
}
