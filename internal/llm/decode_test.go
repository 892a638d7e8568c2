package llm

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"chatter around", "Sure! Here it is: {\"a\":{\"b\":2}} hope that helps", `{"a":{"b":2}}`},
		{"no braces", "  nothing useful  ", "nothing useful"},
		{"reversed braces", "} oops {", "} oops {"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeJSON(tt.raw))
		})
	}
}

func TestDecodeTransactionDates(t *testing.T) {
	now := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		raw  string
		want time.Time
	}{
		{"millis", `{"amount": 5, "date_of_transaction": 1756684800000}`, time.UnixMilli(1756684800000)},
		{"seconds", `{"amount": 5, "date_of_transaction": 1756684800}`, time.Unix(1756684800, 0)},
		{"numeric string", `{"amount": 5, "date_of_transaction": "1756684800000"}`, time.UnixMilli(1756684800000)},
		{"text date", `{"amount": 5, "date_of_transaction": "26-Aug-25"}`, now},
		{"negative", `{"amount": 5, "date_of_transaction": -1}`, now},
		{"missing", `{"amount": 5}`, now},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txn, err := DecodeTransaction(tt.raw, "m", now)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(txn.Date), "got %v", txn.Date)
		})
	}
}

func TestDecodeTransactionErrors(t *testing.T) {
	now := time.Now()

	_, err := DecodeTransaction(`{"is_transaction": false, "amount": 10}`, "m", now)
	require.ErrorIs(t, err, ErrNotTransaction)

	_, err = DecodeTransaction(`{"amount": -3}`, "m", now)
	require.ErrorIs(t, err, ErrInvalidAmount)

	_, err = DecodeTransaction(`{"amount": "abc"}`, "m", now)
	require.ErrorIs(t, err, ErrInvalidAmount)

	_, err = DecodeTransaction(`[1, 2]`, "m", now)
	require.Error(t, err)

	_, err = DecodeTransaction(`not json`, "m", now)
	require.Error(t, err)
}

func TestDecodeTransactionAmountForms(t *testing.T) {
	now := time.Now()
	for raw, want := range map[string]string{
		`{"amount": 624.00}`:      "624",
		`{"amount": "INR 150.00"}`: "150",
		`{"amount": "Rs.1,200"}`:  "1200",
		`{"amount": "₹ 99.5"}`:    "99.5",
	} {
		txn, err := DecodeTransaction(raw, "m", now)
		require.NoError(t, err, raw)
		assert.True(t, txn.Amount.Equal(decimal.RequireFromString(want)), raw)
	}
}

func TestDecodeTransactionTreatsMissingFlagAsTransaction(t *testing.T) {
	txn, err := DecodeTransaction(`{"amount": 10, "is_transaction": "maybe"}`, "m", time.Now())
	require.NoError(t, err)
	assert.NotNil(t, txn)
}

func TestBuildExtractionPrompt(t *testing.T) {
	prompt := BuildExtractionPrompt(`Paid INR 10 to "Chai Point"`)

	assert.Contains(t, prompt, `SMS: "Paid INR 10 to 'Chai Point'"`)
	assert.Contains(t, prompt, `{"is_transaction": false}`)
	for _, key := range []string{"source", "target", "amount", "date_of_transaction", "type", "mode", "category", "other_info"} {
		assert.Contains(t, prompt, "- "+key+":")
	}
}

func TestTimeoutFor(t *testing.T) {
	assert.Equal(t, TextTimeout, TimeoutFor(Request{}, 0, 0))
	assert.Equal(t, ImageTimeout, TimeoutFor(Request{Image: &Image{}}, 0, 0))
	assert.Equal(t, 5*time.Second, TimeoutFor(Request{}, 5*time.Second, time.Minute))
}
