package cli

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/Veraticus/spends/internal/model"
)

// RenderTransactions formats transactions as a table, newest first as given.
func RenderTransactions(txns []model.Transaction) string {
	if len(txns) == 0 {
		return FormatInfo("No transactions stored. Run: spends process")
	}

	rows := make([][]string, 0, len(txns))
	for _, txn := range txns {
		rows = append(rows, []string{
			txn.Date.Format("02 Jan 2006"),
			txn.Target,
			formatAmount(txn),
			string(txn.Category),
			string(txn.Mode),
			txn.Source,
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(SubtleStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return TableHeaderStyle
			}
			if col == 2 && row >= 0 && row < len(txns) {
				return TableCellStyle.Foreground(amountColor(txns[row].Type)).Align(lipgloss.Right)
			}
			return TableCellStyle
		}).
		Headers("DATE", "TARGET", "AMOUNT", "CATEGORY", "MODE", "SOURCE").
		Rows(rows...)

	return t.String()
}

// RenderSummary formats the aggregate view of the stored transactions.
func RenderSummary(summary model.Summary) string {
	lines := []string{
		fmt.Sprintf("Transactions:  %d", summary.TotalCount),
		fmt.Sprintf("Categories:    %d", summary.DistinctCategories),
		lipgloss.NewStyle().Foreground(DebitColor).Render("Total debits:  INR " + summary.TotalDebits.StringFixed(2)),
		lipgloss.NewStyle().Foreground(CreditColor).Render("Total credits: INR " + summary.TotalCredits.StringFixed(2)),
	}
	return RenderBox("Spending summary", strings.Join(lines, "\n"))
}

// RenderRows formats ad-hoc query results, columns sorted by name.
func RenderRows(rows []map[string]any) string {
	if len(rows) == 0 {
		return FormatInfo("No rows.")
	}

	seen := map[string]struct{}{}
	for _, row := range rows {
		for col := range row {
			seen[col] = struct{}{}
		}
	}
	columns := slices.Sorted(maps.Keys(seen))

	data := make([][]string, 0, len(rows))
	for _, row := range rows {
		cells := make([]string, len(columns))
		for i, col := range columns {
			if v := row[col]; v != nil {
				cells[i] = fmt.Sprint(v)
			}
		}
		data = append(data, cells)
	}

	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(SubtleStyle).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return TableHeaderStyle
			}
			return TableCellStyle
		}).
		Headers(columns...).
		Rows(data...).
		String()
}

func formatAmount(txn model.Transaction) string {
	sign := "-"
	if txn.Type == model.TypeCredit {
		sign = "+"
	}
	return sign + txn.Amount.StringFixed(2)
}

func amountColor(t model.TransactionType) lipgloss.Color {
	if t == model.TypeCredit {
		return CreditColor
	}
	return DebitColor
}
