package llm

import (
	"fmt"
	"strings"
)

const extractionPromptTemplate = `You convert banking SMS notifications into structured transaction data.

Decide first whether the SMS records a completed debit or credit with an amount.
OTPs, promotions, balance alerts and reminders are not transactions. For those respond with exactly:
{"is_transaction": false}

For a transaction respond with one JSON object with these keys:
- is_transaction: true
- source: bank and masked card or account, e.g. "ICICI Bank Credit Card XX7004"
- target: the merchant or counterparty, e.g. "Satguru", "Zomato", "BigBasket", "PVR Cinemas", "Uber", "Metro Card", "McDonald's"
- amount: number only, e.g. 624.00
- date_of_transaction: transaction date as a Unix timestamp in milliseconds
- type: "DEBIT" or "CREDIT"
- mode: "CARD" or "UPI"
- category: one of "SHOPPING", "FOOD", "ENTERTAINMENT", "LOANS", "TRANSPORT", "OTHER"
- other_info: dispute numbers, helplines or reference IDs, or ""

The merchant usually follows "for", "to", "at" or "Payment to". Use "Unknown" only when no merchant can be identified at all.

Categories:
- FOOD: Zomato, Swiggy, restaurants, cafes, food delivery
- SHOPPING: Amazon, Flipkart, BigBasket, retail and e-commerce
- TRANSPORT: Uber, Ola, fuel, metro, taxi
- ENTERTAINMENT: Netflix, movies, streaming, PVR
- LOANS: EMIs and loan repayments
- OTHER: utilities, bills, salary credits, wallet top-ups, unknown merchants

%s

Respond with JSON only.`

// BuildExtractionPrompt renders the structured-extraction prompt for one message.
func BuildExtractionPrompt(message string) string {
	return fmt.Sprintf(extractionPromptTemplate, `SMS: "`+strings.ReplaceAll(message, `"`, "'")+`"`)
}

// BuildImageExtractionPrompt renders the same prompt for a screenshot of a
// notification attached to the request.
func BuildImageExtractionPrompt() string {
	return fmt.Sprintf(extractionPromptTemplate, "The SMS is shown in the attached image. Read its text first.")
}
