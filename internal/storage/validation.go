// Package storage provides the data persistence layer for extracted transactions.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/spends/internal/model"
)

// Validation errors.
var (
	ErrNilContext         = errors.New("context cannot be nil")
	ErrEmptyString        = errors.New("string parameter cannot be empty")
	ErrNilParameter       = errors.New("parameter cannot be nil")
	ErrInvalidTransaction = errors.New("invalid transaction")
	ErrNotSelect          = errors.New("only single read-only SELECT statements are allowed")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateTransaction checks the invariants a stored row must satisfy.
func validateTransaction(txn *model.Transaction) error {
	if txn == nil {
		return fmt.Errorf("%w: transaction", ErrNilParameter)
	}
	if !txn.Amount.IsPositive() {
		return fmt.Errorf("%w: %w", ErrInvalidTransaction, model.ErrNonPositiveAmount)
	}
	if txn.Date.IsZero() {
		return fmt.Errorf("%w: missing date", ErrInvalidTransaction)
	}
	if !txn.Type.Valid() {
		return fmt.Errorf("%w: type %q", ErrInvalidTransaction, txn.Type)
	}
	if !txn.Mode.Valid() {
		return fmt.Errorf("%w: mode %q", ErrInvalidTransaction, txn.Mode)
	}
	if !txn.Category.Valid() {
		return fmt.Errorf("%w: category %q", ErrInvalidTransaction, txn.Category)
	}
	return nil
}
