// Package assistant answers natural-language questions about the stored
// transactions by having the model write a read-only query, running it and
// having the model phrase the answer from the rows.
package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/Veraticus/spends/internal/llm"
)

// ErrNoQuery is returned when the model's reply holds no usable SELECT.
var ErrNoQuery = errors.New("could not generate a valid SQL query for that question")

// maxPromptRows caps how many result rows are shown to the model.
const maxPromptRows = 50

// Querier runs read-only queries against the transaction store.
type Querier interface {
	RawQuery(ctx context.Context, query string) ([]map[string]any, error)
}

// Answer is the outcome of one question.
type Answer struct {
	Question  string           `json:"question"`
	SQL       string           `json:"sql"`
	Text      string           `json:"answer"`
	Rows      []map[string]any `json:"rows"`
	Truncated bool             `json:"truncated,omitempty"`
}

// Assistant pairs a generator with the store it answers questions about.
type Assistant struct {
	gen     llm.TextGenerator
	store   Querier
	logger  *slog.Logger
	timeout time.Duration
}

// New creates an assistant. A zero timeout uses llm.TextTimeout per model call.
func New(gen llm.TextGenerator, store Querier, timeout time.Duration, logger *slog.Logger) *Assistant {
	if timeout <= 0 {
		timeout = llm.TextTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Assistant{gen: gen, store: store, timeout: timeout, logger: logger}
}

// Ask answers question in two model round trips with a query in between.
func (a *Assistant) Ask(ctx context.Context, question string) (*Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: empty question", ErrNoQuery)
	}

	reply, err := llm.Collect(ctx, a.gen, llm.Request{Prompt: buildQueryPrompt(question)}, a.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to generate query: %w", err)
	}

	query := strings.TrimSpace(ExtractSQL(reply))
	lower := strings.ToLower(query)
	if !strings.HasPrefix(lower, "select") && !strings.HasPrefix(lower, "with") {
		a.logger.Debug("Model reply held no query", "reply", reply)
		return nil, ErrNoQuery
	}

	rows, err := a.store.RawQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query %q failed: %w", query, err)
	}
	a.logger.Debug("Assistant query ran", "sql", query, "rows", len(rows))

	answer := &Answer{Question: question, SQL: query, Rows: rows}
	shown := rows
	if len(shown) > maxPromptRows {
		shown = shown[:maxPromptRows]
		answer.Truncated = true
	}
	encoded, err := json.MarshalIndent(shown, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode rows: %w", err)
	}

	text, err := llm.Collect(ctx, a.gen, llm.Request{Prompt: buildAnswerPrompt(question, query, string(encoded))}, a.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to generate answer: %w", err)
	}
	answer.Text = strings.TrimSpace(text)
	return answer, nil
}

var (
	sqlFence = regexp.MustCompile("(?i)```sql\\s*([\\s\\S]*?)```")
	anyFence = regexp.MustCompile("```\\s*([\\s\\S]*?)```")
	bareStmt = regexp.MustCompile(`(?is)(select[\s\S]*?)(;|$)`)
)

// ExtractSQL pulls the query out of a model reply: a ```sql block first,
// then any fenced block, then the first bare SELECT statement.
func ExtractSQL(reply string) string {
	if m := sqlFence.FindStringSubmatch(reply); m != nil {
		return m[1]
	}
	if m := anyFence.FindStringSubmatch(reply); m != nil {
		return m[1]
	}
	if m := bareStmt.FindStringSubmatch(reply); m != nil {
		return m[1]
	}
	return ""
}
