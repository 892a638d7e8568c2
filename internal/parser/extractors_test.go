package parser

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Veraticus/spends/internal/model"
)

func TestExtractDate(t *testing.T) {
	tests := []struct {
		name   string
		msg    string
		want   time.Time
		wantOK bool
	}{
		{"on named month", "debited on 26-Aug-25 for X", time.Date(2025, 8, 26, 0, 0, 0, 0, time.UTC), true},
		{"on numeric", "debited on 05/08/2025 at X", time.Date(2025, 8, 5, 0, 0, 0, 0, time.UTC), true},
		{"on numeric dashes", "debited on 5-8-25 at X", time.Date(2025, 8, 5, 0, 0, 0, 0, time.UTC), true},
		{"dated", "cheque dated 01-Jan-2024 cleared", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), true},
		{"bare", "txn 14-aug-25 ok", time.Date(2025, 8, 14, 0, 0, 0, 0, time.UTC), true},
		{"impossible day skipped", "on 31-Feb-25", time.Time{}, false},
		{"impossible month skipped", "on 10/13/2025", time.Time{}, false},
		{"unknown month token", "on 10-Foo-25", time.Time{}, false},
		{"no date", "nothing here", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractDate(tt.msg, time.UTC)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractSource(t *testing.T) {
	tests := []struct {
		msg  string
		want string
	}{
		{"ICICI Bank Credit Card XX7004 debited", "ICICI Bank XX7004"},
		{"Dear customer, State Bank account XX5555 debited", "State Bank XX5555"},
		{"kotak: debited", "kotak"},
		{"Bank of Baroda: debited", "Bank of Baroda"},
		{"HDFC Bank: debited for INR 10.00 at a shop where the receipt reads AB1234", "HDFC Bank"},
		{"Some Credit Union debited", model.UnknownBank},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractSource(tt.msg))
		})
	}
}

func TestValidTarget(t *testing.T) {
	assert.True(t, validTarget("Satguru"))
	assert.True(t, validTarget("Metro Card"))
	assert.False(t, validTarget("INR 624"))
	assert.False(t, validTarget("UPI Ref"))
	assert.False(t, validTarget("12345"))
	assert.False(t, validTarget("a"))
	assert.False(t, validTarget("Bank Account"))
}

func TestExtractTargetUnknown(t *testing.T) {
	assert.Equal(t, model.UnknownTarget, ExtractTarget("HDFC Bank: INR 500.00 debit. Available balance INR 1000.00."))
}

func TestExtractOtherInfo(t *testing.T) {
	tests := []struct {
		msg  string
		want string
	}{
		{"...Satguru. To dispute call 18001080/SMS BLOCK 7004 to 9215676766", "To dispute call 18001080/"},
		{"card blocked? SMS BLOCK 7004 to 9215676766 now", "SMS BLOCK 7004 to 9215676766"},
		{"for help call 1800-22-33", "call 1800-22-33"},
		{"bank helpline 1860 500 5555", "helpline 1860 500 5555"},
		{"UPI Ref: 412345678901", ""},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractOtherInfo(tt.msg))
		})
	}
}

func TestExtractTypeAndMode(t *testing.T) {
	assert.Equal(t, model.TypeDebit, ExtractType("Account DEBITED"))
	assert.Equal(t, model.TypeCredit, ExtractType("INR 100 credited"))
	assert.Equal(t, model.ModeUPI, ExtractMode("paid via PhonePe"))
	assert.Equal(t, model.ModeUPI, ExtractMode("GPay transfer"))
	assert.Equal(t, model.ModeCard, ExtractMode("Credit Card XX1111"))
}

func TestCategorizeUsesTarget(t *testing.T) {
	assert.Equal(t, model.CategoryShopping, Categorize("debited for INR 5", "Flipkart"))
	assert.Equal(t, model.CategoryOther, Categorize("debited for INR 5 Electricity", "Unknown"))
	assert.Equal(t, model.CategoryOther, Categorize("debited", "Satguru"))
}
