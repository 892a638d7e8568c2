// Package parser implements the rule-based extraction tier: a keyword gate
// followed by ordered pattern chains for each transaction field.
package parser

import (
	"context"
	"log/slog"
	"time"

	"github.com/Veraticus/spends/internal/model"
)

// Parser turns one bank notification into a Transaction using fixed rules.
// It is safe for concurrent use.
type Parser struct {
	now    func() time.Time
	loc    *time.Location
	logger *slog.Logger
}

// Option configures a Parser.
type Option func(*Parser)

// WithClock sets the clock used for processing-time defaults.
func WithClock(now func() time.Time) Option {
	return func(p *Parser) {
		if now != nil {
			p.now = now
		}
	}
}

// WithLocation sets the zone in which message dates are interpreted.
func WithLocation(loc *time.Location) Option {
	return func(p *Parser) {
		if loc != nil {
			p.loc = loc
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Parser) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// New creates a Parser.
func New(opts ...Option) *Parser {
	p := &Parser{
		now:    time.Now,
		loc:    time.Local,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse returns the extracted transaction, or nil when the message is not a
// transaction or carries no usable amount.
func (p *Parser) Parse(message string) (txn *model.Transaction) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Warn("Rule-based extraction panicked", "panic", r)
			txn = nil
		}
	}()

	if !IsTransactionMessage(message) {
		return nil
	}

	amount, ok := ExtractAmount(message)
	if !ok {
		return nil
	}

	now := p.now()
	date, ok := ExtractDate(message, p.loc)
	if !ok {
		date = now
	}
	target := ExtractTarget(message)

	txn, err := model.NewTransaction(model.TransactionFields{
		Amount:          amount,
		Date:            date,
		Source:          ExtractSource(message),
		Target:          target,
		Type:            ExtractType(message),
		Mode:            ExtractMode(message),
		Category:        Categorize(message, target),
		OtherInfo:       ExtractOtherInfo(message),
		OriginalMessage: message,
	}, now)
	if err != nil {
		p.logger.Debug("Discarding rule-based result", "error", err)
		return nil
	}
	return txn
}

// Extract adapts Parse to the extractor contract. It never returns an error.
func (p *Parser) Extract(_ context.Context, message string) (*model.Transaction, error) {
	return p.Parse(message), nil
}
