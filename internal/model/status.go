package model

import "github.com/shopspring/decimal"

// Extraction tiers reported in ProcessingStatus.Tier.
const (
	TierLLM   = "llm"
	TierRules = "rules"
)

// ProcessingStatus is an immutable snapshot of a batch run's progress.
// The zero value is the reset state.
type ProcessingStatus struct {
	RunID                string `json:"run_id"`
	Tier                 string `json:"tier"`
	TotalMessages        int    `json:"total_messages"`
	ProcessedMessages    int    `json:"processed_messages"`
	DetectedTransactions int    `json:"detected_transactions"`
	IsProcessing         bool   `json:"is_processing"`
}

// Summary aggregates the stored transaction set.
type Summary struct {
	TotalDebits        decimal.Decimal `json:"total_debits"`
	TotalCredits       decimal.Decimal `json:"total_credits"`
	TotalCount         int             `json:"total_count"`
	DistinctCategories int             `json:"distinct_categories"`
}
