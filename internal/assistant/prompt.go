package assistant

import "fmt"

const schemaDescription = `You are a data assistant. Generate ONLY a single SQLite SELECT query for the following schema.
Table: transactions
Columns:
  - id INTEGER PRIMARY KEY
  - source TEXT (bank and masked card/account, e.g. 'ICICI Bank XX7004')
  - target TEXT (merchant or counterparty)
  - amount REAL (always positive)
  - date_of_transaction INTEGER (epoch millis)
  - type TEXT ('DEBIT' or 'CREDIT')
  - mode TEXT ('CARD' or 'UPI')
  - category TEXT ('SHOPPING', 'FOOD', 'ENTERTAINMENT', 'LOANS', 'TRANSPORT', 'OTHER')
  - other_info TEXT
  - original_message TEXT
  - created_at INTEGER (epoch millis)
  - updated_at INTEGER (epoch millis)

Constraints:
- Output ONLY the SQL in a fenced code block like ` + "```sql ... ```" + ` with no extra commentary.
- Use SELECT queries only. Do NOT modify data.
- Prefer LIMIT 50 when returning lists.
- For time ordering prefer ORDER BY date_of_transaction DESC.
- Money spent is type = 'DEBIT'; money received is type = 'CREDIT'.`

func buildQueryPrompt(question string) string {
	return fmt.Sprintf("%s\n\nUser question: %s\n\nGenerate the SQL now.", schemaDescription, question)
}

func buildAnswerPrompt(question, query, rowsJSON string) string {
	return fmt.Sprintf(`You are answering a user using the results from an SQLite query on their bank transactions.
- Be concise and helpful.
- Amounts are in INR.
- If nothing matches, explain briefly and suggest different phrasing.

User question: %s
SQL used:
`+"```sql\n%s\n```"+`
Results (JSON array of rows):
`+"```json\n%s\n```"+`

Provide the final answer for the user.`, question, query, rowsJSON)
}
