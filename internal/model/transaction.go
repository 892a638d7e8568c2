// Package model holds the domain types shared by the extraction tiers, the
// orchestrator and the store.
package model

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Sentinels substituted when a field cannot be resolved.
const (
	UnknownBank   = "Unknown Bank"
	UnknownTarget = "Unknown"
)

// ErrNonPositiveAmount is returned when a transaction would carry an amount <= 0.
var ErrNonPositiveAmount = errors.New("transaction amount must be positive")

// Transaction is one financial event extracted from a bank notification.
type Transaction struct {
	Date            time.Time       `json:"date_of_transaction"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	Amount          decimal.Decimal `json:"amount"`
	Source          string          `json:"source"` // Bank plus masked card/account token when present
	Target          string          `json:"target"` // Merchant or counterparty
	Type            TransactionType `json:"type"`
	Mode            TransactionMode `json:"mode"`
	Category        Category        `json:"category"`
	OtherInfo       string          `json:"other_info"` // Dispute numbers, short codes, references
	OriginalMessage string          `json:"original_message"`
	ID              int64           `json:"id"`
}

// TransactionFields carries the extracted values used to build a Transaction.
type TransactionFields struct {
	Date            time.Time
	Amount          decimal.Decimal
	Source          string
	Target          string
	Type            TransactionType
	Mode            TransactionMode
	Category        Category
	OtherInfo       string
	OriginalMessage string
}

// NewTransaction builds a Transaction, enforcing amount > 0 and substituting
// sentinels for empty source and target.
func NewTransaction(f TransactionFields, now time.Time) (*Transaction, error) {
	if !f.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: %s", ErrNonPositiveAmount, f.Amount.String())
	}

	source := strings.TrimSpace(f.Source)
	if source == "" {
		source = UnknownBank
	}
	target := strings.TrimSpace(f.Target)
	if target == "" {
		target = UnknownTarget
	}

	date := f.Date
	if date.IsZero() {
		date = now
	}
	txnType := f.Type
	if !txnType.Valid() {
		txnType = TypeDebit
	}
	mode := f.Mode
	if !mode.Valid() {
		mode = ModeCard
	}
	category := f.Category
	if !category.Valid() {
		category = CategoryOther
	}

	return &Transaction{
		Source:          source,
		Target:          target,
		Amount:          f.Amount,
		Date:            date,
		Type:            txnType,
		Mode:            mode,
		Category:        category,
		OtherInfo:       f.OtherInfo,
		OriginalMessage: f.OriginalMessage,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// DateMillis returns the transaction date as a millisecond epoch.
func (t *Transaction) DateMillis() int64 {
	return t.Date.UnixMilli()
}

// SameFields reports whether two transactions carry identical extracted
// fields. ID and the CreatedAt/UpdatedAt stamps are ignored.
func (t *Transaction) SameFields(other *Transaction) bool {
	if t == nil || other == nil {
		return t == other
	}
	return t.Source == other.Source &&
		t.Target == other.Target &&
		t.Amount.Equal(other.Amount) &&
		t.Date.Equal(other.Date) &&
		t.Type == other.Type &&
		t.Mode == other.Mode &&
		t.Category == other.Category &&
		t.OtherInfo == other.OtherInfo &&
		t.OriginalMessage == other.OriginalMessage
}

// MessageHash returns a stable key for a raw message.
func MessageHash(message string) string {
	hash := sha256.Sum256([]byte(message))
	return fmt.Sprintf("%x", hash)
}
