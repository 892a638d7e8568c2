package llm

import (
	"context"
	"errors"
	"iter"
)

// Errors surfaced by the LLM tier.
var (
	// ErrNotTransaction means the model positively identified a non-transaction.
	ErrNotTransaction = errors.New("message is not a transaction")
	// ErrInvalidAmount means the model output carried no usable positive amount.
	ErrInvalidAmount = errors.New("model output has no positive amount")
	// ErrEmptyResponse means the backend completed without producing text.
	ErrEmptyResponse = errors.New("empty response from model")
	// ErrUnsupportedProvider is returned by NewGenerator for unknown providers.
	ErrUnsupportedProvider = errors.New("unsupported LLM provider")
)

// Image is an optional binary payload attached to a prompt.
type Image struct {
	MIMEType string
	Data     []byte
}

// Request is one generation call.
type Request struct {
	Image  *Image
	Prompt string
}

// TextGenerator produces streamed text for a prompt. The sequence ends when
// generation is complete; a non-nil error is always the last element yielded.
// Implementations must be safe for concurrent use.
type TextGenerator interface {
	Generate(ctx context.Context, req Request) iter.Seq2[string, error]
}

// Readier is implemented by generators that need preparation before use.
type Readier interface {
	EnsureReady(ctx context.Context) error
}

// Config holds the backend selection and tuning knobs.
type Config struct {
	Provider    string
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float64
	MaxTokens   int
	RateLimit   int // Requests per minute, 0 disables limiting
}
