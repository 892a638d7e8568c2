package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spends/internal/common"
)

func TestNewGenerator(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantNil bool
		wantErr error
	}{
		{name: "none", cfg: Config{Provider: "none"}, wantNil: true},
		{name: "empty", cfg: Config{}, wantNil: true},
		{name: "unknown", cfg: Config{Provider: "llama"}, wantErr: ErrUnsupportedProvider},
		{name: "anthropic without key", cfg: Config{Provider: "anthropic"}, wantErr: common.ErrMissingConfig},
		{name: "gemini without key", cfg: Config{Provider: "gemini"}, wantErr: common.ErrMissingConfig},
		{name: "openai without key", cfg: Config{Provider: "openai"}, wantErr: common.ErrMissingConfig},
		{name: "openai local server", cfg: Config{Provider: "openai", BaseURL: "http://localhost:11434/v1"}},
		{name: "anthropic", cfg: Config{Provider: "anthropic", APIKey: "k"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen, err := NewGenerator(context.Background(), tt.cfg)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			if tt.wantNil {
				assert.Nil(t, gen)
			} else {
				assert.NotNil(t, gen)
			}
		})
	}
}

func TestNewGeneratorWrapsRateLimit(t *testing.T) {
	gen, err := NewGenerator(context.Background(), Config{Provider: "anthropic", APIKey: "k", RateLimit: 10})
	require.NoError(t, err)
	limited, ok := gen.(*RateLimitedGenerator)
	require.True(t, ok)
	assert.Equal(t, 10, limited.limiter.Burst())
}

func TestOpenAIClientStreams(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/models":
			assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"data": []}`))
		case "/v1/chat/completions":
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "test-model", body["model"])
			assert.Equal(t, true, body["stream"])

			w.Header().Set("Content-Type", "text/event-stream")
			for _, part := range []string{`{\"is_transaction\":`, ` false}`} {
				fmt.Fprintf(w, "data: {\"choices\":[{\"delta\":{\"content\":\"%s\"}}]}\n\n", part)
			}
			fmt.Fprint(w, "data: [DONE]\n\n")
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client, err := newOpenAIClient(Config{APIKey: "test-key", Model: "test-model", BaseURL: server.URL + "/v1"})
	require.NoError(t, err)

	require.NoError(t, client.EnsureReady(context.Background()))

	out, err := Collect(context.Background(), client, Request{Prompt: "hello"}, time.Second)
	require.NoError(t, err)
	assert.JSONEq(t, `{"is_transaction": false}`, out)
}

func TestOpenAIClientClassifiesErrors(t *testing.T) {
	status := http.StatusTooManyRequests
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"error": "nope"}`))
	}))
	defer server.Close()

	client, err := newOpenAIClient(Config{APIKey: "k", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = Collect(context.Background(), client, Request{Prompt: "x"}, time.Second)
	require.ErrorIs(t, err, common.ErrRateLimit)
	assert.True(t, common.IsRetryable(err))

	status = http.StatusUnauthorized
	err = client.EnsureReady(context.Background())
	require.Error(t, err)
	assert.False(t, common.IsRetryable(err))

	status = http.StatusBadGateway
	err = client.EnsureReady(context.Background())
	require.ErrorIs(t, err, common.ErrBackendUnavailable)
}

func TestAnthropicClient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))

		switch r.URL.Path {
		case "/v1/models":
			_, _ = w.Write([]byte(`{"data": []}`))
		case "/v1/messages":
			var body struct {
				Messages []struct {
					Content []map[string]any `json:"content"`
				} `json:"messages"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			require.Len(t, body.Messages, 1)
			// Image block first, then the prompt.
			require.Len(t, body.Messages[0].Content, 2)
			assert.Equal(t, "image", body.Messages[0].Content[0]["type"])
			assert.Equal(t, "text", body.Messages[0].Content[1]["type"])

			_, _ = w.Write([]byte(`{"stop_reason": "end_turn", "content": [{"type": "text", "text": "{\"amount\": 5}"}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client, err := newAnthropicClient(Config{APIKey: "test-key", BaseURL: server.URL})
	require.NoError(t, err)
	require.NoError(t, client.EnsureReady(context.Background()))

	req := Request{Prompt: "p", Image: &Image{MIMEType: "image/png", Data: []byte{0x89, 'P', 'N', 'G'}}}
	out, err := Collect(context.Background(), client, req, TimeoutFor(req, 0, 0))
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount": 5}`, out)
}
