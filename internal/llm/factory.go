package llm

import (
	"context"
	"fmt"
	"strings"
)

// NewGenerator creates the backend named by cfg.Provider, wrapped in a rate
// limiter when cfg.RateLimit is positive. Provider "none" or "" yields nil,
// which callers treat as rule-based only.
func NewGenerator(ctx context.Context, cfg Config) (TextGenerator, error) {
	var (
		gen TextGenerator
		err error
	)

	switch strings.ToLower(cfg.Provider) {
	case "", "none":
		return nil, nil
	case "gemini":
		gen, err = newGeminiClient(ctx, cfg)
	case "openai":
		gen, err = newOpenAIClient(cfg)
	case "anthropic":
		gen, err = newAnthropicClient(cfg)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedProvider, cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	if cfg.RateLimit > 0 {
		return WithRateLimit(gen, cfg.RateLimit), nil
	}
	return gen, nil
}
