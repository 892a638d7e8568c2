package model

import "strings"

// TransactionType is the direction of money movement.
type TransactionType string

const (
	// TypeDebit marks money leaving the account.
	TypeDebit TransactionType = "DEBIT"
	// TypeCredit marks money entering the account.
	TypeCredit TransactionType = "CREDIT"
)

// TransactionMode is the payment rail.
type TransactionMode string

const (
	// ModeCard covers card and account debits.
	ModeCard TransactionMode = "CARD"
	// ModeUPI covers UPI wallets and apps.
	ModeUPI TransactionMode = "UPI"
)

// Category is the spending bucket of a transaction.
type Category string

// Known categories.
const (
	CategoryShopping      Category = "SHOPPING"
	CategoryFood          Category = "FOOD"
	CategoryEntertainment Category = "ENTERTAINMENT"
	CategoryLoans         Category = "LOANS"
	CategoryTransport     Category = "TRANSPORT"
	CategoryOther         Category = "OTHER"
)

// AllCategories lists every category in display order.
var AllCategories = []Category{
	CategoryShopping,
	CategoryFood,
	CategoryEntertainment,
	CategoryLoans,
	CategoryTransport,
	CategoryOther,
}

// Valid reports whether t is a known type.
func (t TransactionType) Valid() bool {
	return t == TypeDebit || t == TypeCredit
}

// Valid reports whether m is a known mode.
func (m TransactionMode) Valid() bool {
	return m == ModeCard || m == ModeUPI
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	for _, known := range AllCategories {
		if c == known {
			return true
		}
	}
	return false
}

// ParseTransactionType parses a type name, ignoring case and surrounding space.
func ParseTransactionType(s string) (TransactionType, bool) {
	t := TransactionType(normalizeEnum(s))
	return t, t.Valid()
}

// ParseTransactionMode parses a mode name, ignoring case and surrounding space.
func ParseTransactionMode(s string) (TransactionMode, bool) {
	m := TransactionMode(normalizeEnum(s))
	return m, m.Valid()
}

// ParseCategory parses a category name, ignoring case and surrounding space.
func ParseCategory(s string) (Category, bool) {
	c := Category(normalizeEnum(s))
	return c, c.Valid()
}

func normalizeEnum(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
