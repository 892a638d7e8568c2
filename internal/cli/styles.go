// Package cli provides styled terminal output for the spends commands.
package cli

import (
	"github.com/charmbracelet/lipgloss"
)

// Palette.
var (
	accent   = lipgloss.Color("#7D56F4")
	teal     = lipgloss.Color("#4ECDC4")
	yellow   = lipgloss.Color("#FFE66D")
	red      = lipgloss.Color("#FF6B6B")
	seafoam  = lipgloss.Color("#95E1D3")
	gray     = lipgloss.Color("#666666")
	charcoal = lipgloss.Color("#333333")

	// DebitColor and CreditColor tint amounts by direction.
	DebitColor  = lipgloss.Color("#FF8C69")
	CreditColor = lipgloss.Color("#7BD389")
)

// Shared styles for command output and tables.
var (
	TitleStyle       = lipgloss.NewStyle().Bold(true).Foreground(accent).MarginBottom(1)
	SubtleStyle      = lipgloss.NewStyle().Foreground(gray)
	BoxStyle         = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(charcoal).Padding(1, 2)
	TableHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(accent).Padding(0, 1)
	TableCellStyle   = lipgloss.NewStyle().Padding(0, 1)

	successStyle = lipgloss.NewStyle().Foreground(teal)
	warningStyle = lipgloss.NewStyle().Foreground(yellow)
	errorStyle   = lipgloss.NewStyle().Foreground(red)
	infoStyle    = lipgloss.NewStyle().Foreground(seafoam)
)

const (
	moneyIcon = "💸"
	robotIcon = "🤖"
)

// FormatSuccess prefixes message with a check mark.
func FormatSuccess(message string) string {
	return successStyle.Render("✓ " + message)
}

// FormatError prefixes message with a cross.
func FormatError(message string) string {
	return errorStyle.Render("✗ " + message)
}

// FormatWarning prefixes message with a warning sign.
func FormatWarning(message string) string {
	return warningStyle.Render("⚠️ " + message)
}

// FormatInfo prefixes message with an info sign.
func FormatInfo(message string) string {
	return infoStyle.Render("ℹ️ " + message)
}

// FormatTitle renders a section title.
func FormatTitle(title string) string {
	return TitleStyle.Render(moneyIcon + " " + title)
}

// RenderBox draws content in a rounded box under title.
func RenderBox(title, content string) string {
	heading := TitleStyle.UnsetMargins().Render(title)
	return BoxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, heading, content))
}
