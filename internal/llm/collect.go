package llm

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Default generation budgets.
const (
	TextTimeout  = 30 * time.Second
	ImageTimeout = 60 * time.Second
)

// TimeoutFor returns the budget for req: the image budget when an image is attached.
func TimeoutFor(req Request, text, image time.Duration) time.Duration {
	if text <= 0 {
		text = TextTimeout
	}
	if image <= 0 {
		image = ImageTimeout
	}
	if req.Image != nil {
		return image
	}
	return text
}

type piece struct {
	text string
	err  error
}

// Collect runs req and accumulates the streamed chunks until the generator
// completes or timeout elapses. The deadline holds even against a generator
// that ignores ctx: the stream is drained on its own goroutine, which is
// abandoned on timeout and exits at its next yield.
func Collect(ctx context.Context, gen TextGenerator, req Request, timeout time.Duration) (string, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	pieces := make(chan piece)
	stop := make(chan struct{})
	defer close(stop)

	stream := gen.Generate(ctx, req)
	go func() {
		defer close(pieces)
		for chunk, err := range stream {
			select {
			case pieces <- piece{text: chunk, err: err}:
			case <-stop:
				return
			}
			if err != nil {
				return
			}
		}
	}()

	var out strings.Builder
	for {
		select {
		case <-ctx.Done():
			return out.String(), fmt.Errorf("generation interrupted: %w", ctx.Err())
		case p, ok := <-pieces:
			if !ok {
				return finish(ctx, out.String())
			}
			if p.err != nil {
				return out.String(), fmt.Errorf("generation failed: %w", p.err)
			}
			out.WriteString(p.text)
		}
	}
}

func finish(ctx context.Context, text string) (string, error) {
	if err := ctx.Err(); err != nil {
		return text, fmt.Errorf("generation interrupted: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
