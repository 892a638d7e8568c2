package parser

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/spends/internal/model"
)

// ExtractAmount returns the first amount found by the ordered amount patterns.
func ExtractAmount(message string) (decimal.Decimal, bool) {
	for _, re := range amountPatterns {
		m := re.FindStringSubmatch(message)
		if m == nil {
			continue
		}
		amount, err := decimal.NewFromString(strings.ReplaceAll(m[1], ",", ""))
		if err != nil {
			continue
		}
		return amount, true
	}
	return decimal.Decimal{}, false
}

// ExtractDate returns local midnight of the first date that parses to a real
// calendar day. Impossible dates fall through to the next pattern.
func ExtractDate(message string, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.Local
	}
	for _, p := range datePatterns {
		m := p.re.FindStringSubmatch(message)
		if m == nil {
			continue
		}
		if date, ok := buildDate(m[1], m[2], m[3], p.namedMonth, loc); ok {
			return date, true
		}
	}
	return time.Time{}, false
}

func buildDate(dayText, monthText, yearText string, namedMonth bool, loc *time.Location) (time.Time, bool) {
	day, err := strconv.Atoi(dayText)
	if err != nil {
		return time.Time{}, false
	}

	var month int
	if namedMonth {
		var ok bool
		if month, ok = monthNames[strings.ToLower(monthText)]; !ok {
			return time.Time{}, false
		}
	} else if month, err = strconv.Atoi(monthText); err != nil {
		return time.Time{}, false
	}

	year, err := strconv.Atoi(yearText)
	if err != nil {
		return time.Time{}, false
	}
	if len(yearText) == 2 {
		year += 2000
	}

	if month < 1 || month > 12 || day < 1 {
		return time.Time{}, false
	}
	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc)
	// time.Date normalizes overflow, so 31-Feb comes back as March.
	if date.Day() != day || int(date.Month()) != month {
		return time.Time{}, false
	}
	return date, true
}

// ExtractSource names the bank, followed by a masked card or account token
// when one appears shortly after the bank name.
func ExtractSource(message string) string {
	for _, b := range banks {
		for _, alias := range b.aliases {
			loc := alias.FindStringIndex(message)
			if loc == nil {
				continue
			}
			source := message[loc[0]:loc[1]]
			end := min(loc[1]+cardTokenWindow, len(message))
			if m := cardTokenPattern.FindStringSubmatch(message[loc[1]:end]); m != nil {
				source += " " + m[1]
			}
			return source
		}
	}
	return model.UnknownBank
}

func mentionsBank(message string) bool {
	for _, b := range banks {
		for _, alias := range b.aliases {
			if alias.MatchString(message) {
				return true
			}
		}
	}
	return false
}

// ExtractTarget returns the first merchant candidate that survives the
// stopword filter. Every match of a pattern is tried before the next pattern.
func ExtractTarget(message string) string {
	for _, re := range targetPatterns {
		for _, m := range re.FindAllStringSubmatch(message, -1) {
			candidate := strings.TrimSpace(m[1])
			if validTarget(candidate) {
				return candidate
			}
		}
	}
	return model.UnknownTarget
}

func validTarget(candidate string) bool {
	if len(candidate) < 2 {
		return false
	}
	var kept []string
	for _, word := range strings.Fields(strings.ToLower(candidate)) {
		if _, stop := targetStopwords[word]; stop {
			continue
		}
		if isNumeric(word) {
			continue
		}
		kept = append(kept, word)
	}
	return len(kept) > 0 && len(strings.Join(kept, " ")) >= 2
}

func isNumeric(word string) bool {
	for _, r := range word {
		if r < '0' || r > '9' {
			return false
		}
	}
	return word != ""
}

// ExtractType is DEBIT when the message says debit, else CREDIT.
func ExtractType(message string) model.TransactionType {
	if containsAny(strings.ToLower(message), debitKeywords) {
		return model.TypeDebit
	}
	return model.TypeCredit
}

// ExtractMode is UPI when a UPI app or rail is mentioned, else CARD.
func ExtractMode(message string) model.TransactionMode {
	if containsAny(strings.ToLower(message), upiKeywords) {
		return model.ModeUPI
	}
	return model.ModeCard
}

// Categorize tests the keyword groups in priority order against both the
// message and the extracted target.
func Categorize(message, target string) model.Category {
	lowerMessage := strings.ToLower(message)
	lowerTarget := strings.ToLower(target)
	for _, group := range categoryGroups {
		if containsAny(lowerMessage, group.keywords) || containsAny(lowerTarget, group.keywords) {
			return group.category
		}
	}
	return model.CategoryOther
}

// ExtractOtherInfo returns the first dispute, short code or helpline phrase verbatim.
func ExtractOtherInfo(message string) string {
	for _, re := range otherInfoPatterns {
		if m := re.FindString(message); m != "" {
			return m
		}
	}
	return ""
}

// IsTransactionMessage is the cheap gate run before any field extraction.
func IsTransactionMessage(message string) bool {
	lower := strings.ToLower(message)
	return containsAny(lower, transactionVerbs) &&
		containsAny(lower, currencyKeywords) &&
		mentionsBank(message)
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
