package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spends/internal/model"
	"github.com/Veraticus/spends/internal/storage"
	"github.com/Veraticus/spends/internal/testutil"
)

func seedLedger(t *testing.T, store *storage.SQLiteStorage, n int) {
	t.Helper()
	now := time.Date(2025, 8, 27, 0, 0, 0, 0, time.UTC)
	for i := range n {
		txn, err := model.NewTransaction(model.TransactionFields{
			Amount:          decimal.NewFromInt(int64(100 + i)),
			Date:            now.AddDate(0, 0, -i),
			Source:          "HDFC Bank",
			Target:          "Swiggy",
			Type:            model.TypeDebit,
			Mode:            model.ModeUPI,
			Category:        model.CategoryFood,
			OriginalMessage: "seed",
		}, now)
		require.NoError(t, err)
		_, err = store.AddTransaction(context.Background(), txn)
		require.NoError(t, err)
	}
}

func TestResetLedger(t *testing.T) {
	tests := []struct {
		name      string
		seed      int
		input     string
		force     bool
		wantLeft  int
		wantPrint string
	}{
		{"empty ledger", 0, "", false, 0, "Nothing to reset"},
		{"confirmed", 3, "y\n", false, 0, "Deleted 3 transactions"},
		{"confirmed uppercase", 2, "Y\n", false, 0, "Deleted 2 transactions"},
		{"declined", 3, "n\n", false, 3, "Reset canceled"},
		{"no answer", 3, "", false, 3, "Reset canceled"},
		{"forced", 4, "", true, 0, "Deleted 4 transactions"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			store := testutil.SetupTestDB(t)
			seedLedger(t, store, tt.seed)

			var out bytes.Buffer
			err := resetLedger(ctx, store, strings.NewReader(tt.input), &out, tt.force)
			require.NoError(t, err)
			assert.Contains(t, out.String(), tt.wantPrint)

			txns, err := store.ListTransactions(ctx)
			require.NoError(t, err)
			assert.Len(t, txns, tt.wantLeft)
			if !tt.force && tt.seed > 0 {
				assert.Contains(t, out.String(), "[y/N]")
			}
		})
	}
}
