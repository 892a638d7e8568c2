package llm

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/spends/internal/model"
)

// Epoch values below this are taken as seconds rather than milliseconds.
const millisThreshold = 1e12

// DecodeTransaction converts raw model output into a Transaction. The output
// is sanitized, decoded into an untyped map, and each field is read with its
// own default.
func DecodeTransaction(raw, message string, now time.Time) (*model.Transaction, error) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(SanitizeJSON(raw)), &obj); err != nil {
		return nil, fmt.Errorf("failed to parse model output: %w", err)
	}

	if isTxn, ok := obj["is_transaction"].(bool); ok && !isTxn {
		return nil, ErrNotTransaction
	}

	amount, ok := decimalField(obj, "amount")
	if !ok || !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	txnType, _ := model.ParseTransactionType(stringField(obj, "type"))
	mode, _ := model.ParseTransactionMode(stringField(obj, "mode"))
	category, _ := model.ParseCategory(stringField(obj, "category"))

	txn, err := model.NewTransaction(model.TransactionFields{
		Amount:          amount,
		Date:            dateField(obj, "date_of_transaction", now),
		Source:          stringField(obj, "source"),
		Target:          stringField(obj, "target"),
		Type:            txnType,
		Mode:            mode,
		Category:        category,
		OtherInfo:       stringField(obj, "other_info"),
		OriginalMessage: message,
	}, now)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidAmount, err)
	}
	return txn, nil
}

func stringField(obj map[string]any, key string) string {
	switch v := obj[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

func decimalField(obj map[string]any, key string) (decimal.Decimal, bool) {
	switch v := obj[key].(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return decimal.Decimal{}, false
		}
		return decimal.NewFromFloat(v), true
	case string:
		cleaned := strings.TrimSpace(strings.ReplaceAll(v, ",", ""))
		for _, prefix := range []string{"INR", "Rs.", "Rs", "₹"} {
			cleaned = strings.TrimSpace(strings.TrimPrefix(cleaned, prefix))
		}
		d, err := decimal.NewFromString(cleaned)
		if err != nil {
			return decimal.Decimal{}, false
		}
		return d, true
	default:
		return decimal.Decimal{}, false
	}
}

func dateField(obj map[string]any, key string, now time.Time) time.Time {
	var epoch float64
	switch v := obj[key].(type) {
	case float64:
		epoch = v
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return now
		}
		epoch = parsed
	default:
		return now
	}
	if epoch <= 0 || math.IsNaN(epoch) || math.IsInf(epoch, 0) {
		return now
	}
	if epoch < millisThreshold {
		return time.Unix(int64(epoch), 0)
	}
	return time.UnixMilli(int64(epoch))
}
