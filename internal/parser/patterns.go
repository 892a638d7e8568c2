package parser

import (
	"regexp"

	"github.com/Veraticus/spends/internal/model"
)

// amountNumber accepts western (1,200.00) and lakh (1,20,000.00) grouping.
const amountNumber = `(\d+(?:,\d{2,3})*(?:\.\d{1,2})?)`

// Tried in order; the first pattern whose capture parses wins.
var amountPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:INR|Rs\.?|₹)\s*` + amountNumber),
	regexp.MustCompile(`debited for INR\s*` + amountNumber),
	regexp.MustCompile(`credited with INR\s*` + amountNumber),
	regexp.MustCompile(`amount\s*(?:INR|Rs\.?|₹)?\s*` + amountNumber),
}

type datePattern struct {
	re         *regexp.Regexp
	namedMonth bool
}

var datePatterns = []datePattern{
	{re: regexp.MustCompile(`on\s*(\d{1,2})-(\w{3})-(\d{2,4})`), namedMonth: true},
	{re: regexp.MustCompile(`on\s*(\d{1,2})[/-](\d{1,2})[/-](\d{2,4})`)},
	{re: regexp.MustCompile(`dated\s*(\d{1,2})-(\w{3})-(\d{2,4})`), namedMonth: true},
	{re: regexp.MustCompile(`(\d{1,2})-(\w{3})-(\d{2,4})`), namedMonth: true},
}

var monthNames = map[string]int{
	"jan": 1, "feb": 2, "mar": 3, "apr": 4, "may": 5, "jun": 6,
	"jul": 7, "aug": 8, "sep": 9, "oct": 10, "nov": 11, "dec": 12,
}

type bank struct {
	name    string
	aliases []*regexp.Regexp // longest first
}

func newBank(name string, aliases ...string) bank {
	b := bank{name: name}
	for _, alias := range aliases {
		b.aliases = append(b.aliases, regexp.MustCompile(`(?i)`+regexp.QuoteMeta(alias)))
	}
	return b
}

// Scanned in order; the first alias found wins.
var banks = []bank{
	newBank("ICICI", "ICICI Bank", "ICICI"),
	newBank("HDFC", "HDFC Bank", "HDFC"),
	newBank("SBI", "State Bank", "SBI"),
	newBank("AXIS", "Axis Bank", "AXIS"),
	newBank("KOTAK", "Kotak Bank", "Kotak"),
	newBank("PNB", "Punjab National", "PNB"),
	newBank("BOB", "Bank of Baroda", "BOB"),
	newBank("CANARA", "Canara Bank", "Canara"),
}

// cardTokenWindow bounds how far after the bank alias a masked card is looked for.
const cardTokenWindow = 40

var cardTokenPattern = regexp.MustCompile(`\b([A-Za-z]{2}\d{4})\b`)

const targetPhrase = `([A-Za-z0-9\s&'-]+)`

var targetPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)for\s+` + targetPhrase + `(?:\.|\s+(?:on|available|to|upi|sms))`),
	regexp.MustCompile(`(?i)at\s+` + targetPhrase + `(?:\.|\s+(?:on|available|to|upi|sms))`),
	regexp.MustCompile(`(?i)to\s+` + targetPhrase + `\s+on`),
	regexp.MustCompile(`(?i)payment\s+(?:of\s+[\d,.]+\s+)?to\s+` + targetPhrase + `(?:\s+on|\.|$)`),
	regexp.MustCompile(`(?i)(?:inr|rs\.?)\s*[\d,.]+\s+(?:on\s+[\d-]+\s+)?(?:for\s+|to\s+|at\s+)?([A-Za-z0-9\s&'-]+?)(?:\s*\.|\s+(?:on|available|to|upi|sms|thank))`),
}

var targetStopwords = map[string]struct{}{
	"inr": {}, "rs": {}, "available": {}, "balance": {}, "account": {}, "card": {},
	"bank": {}, "credit": {}, "debit": {}, "payment": {}, "transaction": {}, "sms": {},
	"call": {}, "dispute": {}, "thank": {}, "you": {}, "banking": {}, "with": {},
	"us": {}, "ref": {}, "upi": {}, "gpay": {},
}

var otherInfoPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)To dispute call\s+([\d\s/-]+)`),
	regexp.MustCompile(`(?i)SMS\s+([A-Z]+)\s+\d+\s+to\s+(\d+)`),
	regexp.MustCompile(`(?i)call\s+([\d\s/-]+)`),
	regexp.MustCompile(`(?i)helpline\s+([\d\s/-]+)`),
}

type keywordGroup struct {
	category model.Category
	keywords []string
}

// Priority order matters: the first group with any hit wins.
var categoryGroups = []keywordGroup{
	{model.CategoryFood, []string{"zomato", "swiggy", "restaurant", "food", "cafe", "hotel", "domino", "mcdonald", "kfc", "pizza"}},
	{model.CategoryShopping, []string{"amazon", "flipkart", "myntra", "ajio", "shopping", "mall", "store", "market"}},
	{model.CategoryTransport, []string{"uber", "ola", "rapido", "metro", "bus", "taxi", "petrol", "diesel", "fuel"}},
	{model.CategoryEntertainment, []string{"netflix", "hotstar", "prime", "spotify", "movie", "cinema", "pvr", "inox"}},
	// Utilities have no category of their own.
	{model.CategoryOther, []string{"electricity", "water", "gas", "internet", "mobile", "recharge", "bill"}},
}

var (
	transactionVerbs = []string{"debited", "credited", "debit", "credit", "payment", "paid", "spent"}
	currencyKeywords = []string{"inr", "rs", "₹"}
	debitKeywords    = []string{"debited", "debit"}
	upiKeywords      = []string{"upi", "gpay", "paytm", "phonepe"}
)
