package engine

import (
	"context"

	"github.com/Veraticus/spends/internal/model"
)

// Store persists the transactions a run detects.
type Store interface {
	AddTransaction(ctx context.Context, txn *model.Transaction) (int64, error)
	ClearTransactions(ctx context.Context) error
}

// Extractor turns one message into at most one transaction. A nil
// transaction with a nil error means the message is not a transaction.
type Extractor interface {
	Extract(ctx context.Context, message string) (*model.Transaction, error)
}
