package assistant

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spends/internal/inbox"
	"github.com/Veraticus/spends/internal/llm"
	"github.com/Veraticus/spends/internal/parser"
	"github.com/Veraticus/spends/internal/storage"
	"github.com/Veraticus/spends/internal/testutil"
)

func seededStore(t *testing.T) *storage.SQLiteStorage {
	t.Helper()
	store := testutil.SetupTestDB(t)
	rules := parser.New(parser.WithLocation(time.UTC))
	for _, msg := range inbox.Samples() {
		txn := rules.Parse(msg)
		require.NotNil(t, txn)
		_, err := store.AddTransaction(context.Background(), txn)
		require.NoError(t, err)
	}
	return store
}

// scripted answers the query prompt with sqlReply and the answer prompt by
// echoing a fixed sentence.
func scripted(sqlReply string) *testutil.FakeGenerator {
	return &testutil.FakeGenerator{Respond: func(req llm.Request) (string, error) {
		if strings.Contains(req.Prompt, "Generate the SQL now.") {
			return sqlReply, nil
		}
		return "  You spent INR 900.00 on food.  ", nil
	}}
}

func TestAsk(t *testing.T) {
	store := seededStore(t)
	gen := scripted("Here you go:\n```sql\nSELECT target, amount FROM transactions WHERE category = 'FOOD' ORDER BY amount;\n```")

	answer, err := New(gen, store, time.Second, nil).Ask(context.Background(), "How much did I spend on food?")
	require.NoError(t, err)

	assert.Equal(t, "How much did I spend on food?", answer.Question)
	assert.Equal(t, "SELECT target, amount FROM transactions WHERE category = 'FOOD' ORDER BY amount;", answer.SQL)
	assert.Equal(t, "You spent INR 900.00 on food.", answer.Text)
	require.NotEmpty(t, answer.Rows)
	assert.False(t, answer.Truncated)

	for _, row := range answer.Rows {
		assert.Contains(t, row, "target")
		assert.Contains(t, row, "amount")
	}
	assert.Equal(t, 2, gen.Calls())
	assert.Equal(t, 1, gen.PromptsContaining(`"target": "Zomato"`))
}

func TestAskFailures(t *testing.T) {
	store := seededStore(t)

	tests := []struct {
		name    string
		gen     *testutil.FakeGenerator
		q       string
		wantErr error
	}{
		{name: "empty question", gen: scripted(""), q: "  ", wantErr: ErrNoQuery},
		{name: "no sql in reply", gen: scripted("I cannot help with that."), q: "hi", wantErr: ErrNoQuery},
		{name: "write statement", gen: scripted("```sql\nDELETE FROM transactions\n```"), q: "wipe", wantErr: ErrNoQuery},
		{name: "write hidden in cte", gen: scripted("```sql\nWITH x AS (SELECT 1) DELETE FROM transactions\n```"), q: "wipe", wantErr: storage.ErrNotSelect},
		{
			name:    "backend error",
			gen:     &testutil.FakeGenerator{Respond: func(llm.Request) (string, error) { return "", errors.New("offline") }},
			q:       "anything",
			wantErr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			answer, err := New(tt.gen, store, time.Second, nil).Ask(context.Background(), tt.q)
			require.Error(t, err)
			assert.Nil(t, answer)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}

	txns, err := store.ListTransactions(context.Background())
	require.NoError(t, err)
	assert.Len(t, txns, 13)
}

func TestExtractSQL(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  string
	}{
		{"sql fence", "text\n```SQL\nSELECT 1\n```\nmore", "SELECT 1\n"},
		{"sql fence wins over earlier plain fence", "```\nnope\n```\n```sql\nSELECT 2\n```", "SELECT 2\n"},
		{"plain fence", "```\nSELECT 3\n```", "SELECT 3\n"},
		{"bare statement", "The query is select * from transactions; done", "select * from transactions"},
		{"bare to end", "SELECT count(*) FROM transactions", "SELECT count(*) FROM transactions"},
		{"nothing", "no idea", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractSQL(tt.reply))
		})
	}
}
