package testutil

import (
	"context"
	"iter"
	"strings"
	"sync"
	"time"

	"github.com/Veraticus/spends/internal/llm"
)

// FakeGenerator is a scriptable llm.TextGenerator and llm.Readier.
// Zero value answers every prompt with a non-transaction verdict.
type FakeGenerator struct {
	// Respond produces the full model output for a request.
	Respond func(req llm.Request) (string, error)
	// Delay, when set, is waited out (or canceled) before responding.
	Delay func(req llm.Request) time.Duration
	// ReadyErrs are returned by successive EnsureReady calls; once
	// exhausted EnsureReady succeeds.
	ReadyErrs []error

	prompts    []string
	calls      int
	readyCalls int
	mu         sync.Mutex
}

// Generate implements llm.TextGenerator. Output is streamed in two chunks.
func (f *FakeGenerator) Generate(ctx context.Context, req llm.Request) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		f.mu.Lock()
		f.calls++
		f.prompts = append(f.prompts, req.Prompt)
		f.mu.Unlock()

		if f.Delay != nil {
			if d := f.Delay(req); d > 0 {
				timer := time.NewTimer(d)
				defer timer.Stop()
				select {
				case <-ctx.Done():
					yield("", ctx.Err())
					return
				case <-timer.C:
				}
			}
		}

		out, err := `{"is_transaction": false}`, error(nil)
		if f.Respond != nil {
			out, err = f.Respond(req)
		}
		if err != nil {
			yield("", err)
			return
		}

		half := len(out) / 2
		if !yield(out[:half], nil) {
			return
		}
		yield(out[half:], nil)
	}
}

// EnsureReady implements llm.Readier.
func (f *FakeGenerator) EnsureReady(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.readyCalls++
	if len(f.ReadyErrs) > 0 {
		err := f.ReadyErrs[0]
		f.ReadyErrs = f.ReadyErrs[1:]
		return err
	}
	return nil
}

// Calls returns how many generations were started.
func (f *FakeGenerator) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// ReadyCalls returns how many readiness checks were made.
func (f *FakeGenerator) ReadyCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.readyCalls
}

// PromptsContaining counts prompts that include substr.
func (f *FakeGenerator) PromptsContaining(substr string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, p := range f.prompts {
		if strings.Contains(p, substr) {
			n++
		}
	}
	return n
}
