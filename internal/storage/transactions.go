package storage

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/Veraticus/spends/internal/model"
)

const transactionColumns = `id, source, target, amount, date_of_transaction, type, mode,
	category, other_info, original_message, created_at, updated_at`

// AddTransaction inserts txn and returns its new row id. txn.ID and the
// stamps are filled in on success.
func (s *SQLiteStorage) AddTransaction(ctx context.Context, txn *model.Transaction) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateTransaction(txn); err != nil {
		return 0, err
	}

	now := s.now()
	created := txn.CreatedAt
	if created.IsZero() {
		created = now
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO transactions (
			source, target, amount, date_of_transaction, type, mode,
			category, other_info, original_message, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		txn.Source,
		txn.Target,
		txn.Amount.InexactFloat64(),
		txn.Date.UnixMilli(),
		string(txn.Type),
		string(txn.Mode),
		string(txn.Category),
		txn.OtherInfo,
		txn.OriginalMessage,
		created.UnixMilli(),
		now.UnixMilli(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert transaction: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get transaction id: %w", err)
	}

	txn.ID = id
	txn.CreatedAt = time.UnixMilli(created.UnixMilli())
	txn.UpdatedAt = time.UnixMilli(now.UnixMilli())
	return id, nil
}

// ListTransactions returns every stored transaction, newest first.
func (s *SQLiteStorage) ListTransactions(ctx context.Context) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT `+transactionColumns+`
		FROM transactions
		ORDER BY date_of_transaction DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var transactions []model.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}

	return transactions, nil
}

func scanTransaction(rows *sql.Rows) (model.Transaction, error) {
	var (
		txn                        model.Transaction
		amount                     float64
		date, createdAt, updatedAt int64
		txnType, mode, category    string
	)
	if err := rows.Scan(
		&txn.ID,
		&txn.Source,
		&txn.Target,
		&amount,
		&date,
		&txnType,
		&mode,
		&category,
		&txn.OtherInfo,
		&txn.OriginalMessage,
		&createdAt,
		&updatedAt,
	); err != nil {
		return model.Transaction{}, fmt.Errorf("failed to scan transaction: %w", err)
	}

	txn.Amount = decimal.NewFromFloat(amount)
	txn.Date = time.UnixMilli(date)
	txn.CreatedAt = time.UnixMilli(createdAt)
	txn.UpdatedAt = time.UnixMilli(updatedAt)
	txn.Type = model.TransactionType(txnType)
	txn.Mode = model.TransactionMode(mode)
	txn.Category = model.CategoryOther
	if c, ok := model.ParseCategory(category); ok {
		txn.Category = c
	}
	return txn, nil
}

// ClearTransactions deletes every stored transaction.
func (s *SQLiteStorage) ClearTransactions(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM transactions`); err != nil {
		return fmt.Errorf("failed to clear transactions: %w", err)
	}
	return nil
}

// GetSummary aggregates the stored transaction set.
func (s *SQLiteStorage) GetSummary(ctx context.Context) (model.Summary, error) {
	if err := validateContext(ctx); err != nil {
		return model.Summary{}, err
	}

	var (
		debits, credits float64
		summary         model.Summary
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(CASE WHEN type = 'DEBIT' THEN amount END), 0),
			COALESCE(SUM(CASE WHEN type = 'CREDIT' THEN amount END), 0),
			COUNT(*),
			COUNT(DISTINCT category)
		FROM transactions`).Scan(&debits, &credits, &summary.TotalCount, &summary.DistinctCategories)
	if err != nil {
		return model.Summary{}, fmt.Errorf("failed to summarize transactions: %w", err)
	}

	summary.TotalDebits = decimal.NewFromFloat(debits).Round(2)
	summary.TotalCredits = decimal.NewFromFloat(credits).Round(2)
	return summary, nil
}

var readOnlyPrefix = regexp.MustCompile(`(?i)^(select|with)\b`)

// RawQuery runs a single read-only SELECT (or WITH ... SELECT) statement and
// returns its rows as column name to value maps. The statement runs on a
// dedicated connection with PRAGMA query_only set, so SQLite itself rejects
// any write a CTE or function might smuggle in.
func (s *SQLiteStorage) RawQuery(ctx context.Context, query string) ([]map[string]any, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query = strings.TrimSpace(query)
	query = strings.TrimSpace(strings.TrimSuffix(query, ";"))
	if !readOnlyPrefix.MatchString(query) || strings.Contains(query, ";") {
		return nil, ErrNotSelect
	}

	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire connection: %w", err)
	}
	defer func() { _ = conn.Close() }()

	if _, err := conn.ExecContext(ctx, "PRAGMA query_only = ON"); err != nil {
		return nil, fmt.Errorf("failed to enter read-only mode: %w", err)
	}
	// The connection returns to the pool; it must accept writes again.
	defer func() {
		if _, err := conn.ExecContext(context.Background(), "PRAGMA query_only = OFF"); err != nil {
			_ = conn.Raw(func(any) error { return driver.ErrBadConn })
		}
	}()

	return scanRows(ctx, conn, query)
}

func scanRows(ctx context.Context, conn *sql.Conn, query string) ([]map[string]any, error) {
	rows, err := conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to run query: %w", readOnlyViolation(err))
	}
	defer func() { _ = rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}

	results := []map[string]any{}
	for rows.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		row := make(map[string]any, len(columns))
		for i, column := range columns {
			if b, ok := values[i].([]byte); ok {
				row[column] = string(b)
			} else {
				row[column] = values[i]
			}
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", readOnlyViolation(err))
	}

	return results, nil
}

// readOnlyViolation marks a write attempt refused by query_only as ErrNotSelect.
func readOnlyViolation(err error) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrReadonly {
		return fmt.Errorf("%w: %w", ErrNotSelect, err)
	}
	return err
}
