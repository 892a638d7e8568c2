package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTransaction(t *testing.T) {
	now := time.Date(2025, 8, 27, 10, 0, 0, 0, time.UTC)
	date := time.Date(2025, 8, 26, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		fields  TransactionFields
		wantErr error
		check   func(t *testing.T, txn *Transaction)
	}{
		{
			name: "complete fields",
			fields: TransactionFields{
				Amount:   decimal.RequireFromString("624.00"),
				Date:     date,
				Source:   "ICICI Bank XX7004",
				Target:   "Satguru",
				Type:     TypeDebit,
				Mode:     ModeCard,
				Category: CategoryOther,
			},
			check: func(t *testing.T, txn *Transaction) {
				t.Helper()
				assert.Equal(t, "ICICI Bank XX7004", txn.Source)
				assert.Equal(t, "Satguru", txn.Target)
				assert.True(t, txn.Amount.Equal(decimal.NewFromInt(624)))
				assert.Equal(t, date, txn.Date)
				assert.Equal(t, now, txn.CreatedAt)
				assert.Equal(t, now, txn.UpdatedAt)
			},
		},
		{
			name:   "sentinels and defaults",
			fields: TransactionFields{Amount: decimal.NewFromInt(1), Source: "  "},
			check: func(t *testing.T, txn *Transaction) {
				t.Helper()
				assert.Equal(t, UnknownBank, txn.Source)
				assert.Equal(t, UnknownTarget, txn.Target)
				assert.Equal(t, now, txn.Date)
				assert.Equal(t, TypeDebit, txn.Type)
				assert.Equal(t, ModeCard, txn.Mode)
				assert.Equal(t, CategoryOther, txn.Category)
			},
		},
		{
			name:    "zero amount",
			fields:  TransactionFields{Amount: decimal.Zero},
			wantErr: ErrNonPositiveAmount,
		},
		{
			name:    "negative amount",
			fields:  TransactionFields{Amount: decimal.NewFromInt(-5)},
			wantErr: ErrNonPositiveAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txn, err := NewTransaction(tt.fields, now)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, txn)
				return
			}
			require.NoError(t, err)
			tt.check(t, txn)
		})
	}
}

func TestSameFieldsIgnoresStamps(t *testing.T) {
	fields := TransactionFields{Amount: decimal.NewFromInt(10), Target: "Uber"}
	a, err := NewTransaction(fields, time.Unix(100, 0))
	require.NoError(t, err)
	b, err := NewTransaction(fields, time.Unix(100, 0))
	require.NoError(t, err)
	b.CreatedAt = time.Unix(200, 0)
	b.ID = 7

	assert.True(t, a.SameFields(b))

	b.Target = "Ola"
	assert.False(t, a.SameFields(b))
}

func TestParseEnums(t *testing.T) {
	typ, ok := ParseTransactionType(" credit ")
	assert.True(t, ok)
	assert.Equal(t, TypeCredit, typ)

	_, ok = ParseTransactionType("REFUND")
	assert.False(t, ok)

	mode, ok := ParseTransactionMode("upi")
	assert.True(t, ok)
	assert.Equal(t, ModeUPI, mode)

	cat, ok := ParseCategory("Food")
	assert.True(t, ok)
	assert.Equal(t, CategoryFood, cat)

	_, ok = ParseCategory("SALARY")
	assert.False(t, ok)
}

func TestMessageHashStable(t *testing.T) {
	assert.Equal(t, MessageHash("abc"), MessageHash("abc"))
	assert.NotEqual(t, MessageHash("abc"), MessageHash("abd"))
	assert.Len(t, MessageHash(""), 64)
}
