// Package render draws ledger reports for a terminal. Colors are applied
// only when the destination is a color-capable terminal; pipes and files
// get plain text with the same layout.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"finman/internal/core"
)

const (
	MsgNoTransactions = "No transactions recorded yet"
	MsgNoExpenses     = "No expenses to display"
	MsgNoBudgets      = "No budget data to compare"

	barWidth = 30
)

var hundred = decimal.NewFromInt(100)

// Renderer writes reports to a single destination.
type Renderer struct {
	w      io.Writer
	header lipgloss.Style
	muted  lipgloss.Style
	good   lipgloss.Style
	bad    lipgloss.Style
	bar    lipgloss.Style
	warn   lipgloss.Style
}

// New creates a Renderer whose color profile is detected from w.
func New(w io.Writer) *Renderer {
	r := lipgloss.NewRenderer(w)
	return &Renderer{
		w:      w,
		header: r.NewStyle().Bold(true).Foreground(lipgloss.Color("#89b4fa")),
		muted:  r.NewStyle().Foreground(lipgloss.Color("#7f849c")),
		good:   r.NewStyle().Foreground(lipgloss.Color("#a6e3a1")),
		bad:    r.NewStyle().Foreground(lipgloss.Color("#f38ba8")),
		bar:    r.NewStyle().Foreground(lipgloss.Color("#fab387")),
		warn:   r.NewStyle().Foreground(lipgloss.Color("#f9e2af")).Bold(true),
	}
}

// FormatAmount renders an amount as "$12.34".
func FormatAmount(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

// Balance prints income, expenses and their difference.
func (r *Renderer) Balance(t core.Totals) error {
	balance := t.Balance()
	style := r.good
	if balance.IsNegative() {
		style = r.bad
	}

	rows := [][2]string{
		{"Income", FormatAmount(t.Income)},
		{"Expenses", FormatAmount(t.Expense)},
	}
	var b strings.Builder
	for _, row := range rows {
		fmt.Fprintf(&b, "%-9s %12s\n", row[0]+":", row[1])
	}
	fmt.Fprintf(&b, "%-9s %s\n", "Balance:", style.Render(fmt.Sprintf("%12s", FormatAmount(balance))))
	return r.write(b.String())
}

// Transactions prints a table, in the order given.
func (r *Renderer) Transactions(txs []core.Transaction) error {
	if len(txs) == 0 {
		return r.write(r.muted.Render(MsgNoTransactions) + "\n")
	}

	headers := []string{"Date", "Type", "Amount", "Category", "Description"}
	rows := make([][]string, 0, len(txs))
	for _, tx := range txs {
		rows = append(rows, []string{
			tx.Date.String(),
			tx.Kind(),
			FormatAmount(tx.Amount.Decimal),
			tx.Category,
			tx.Description,
		})
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}

	var b strings.Builder
	b.WriteString(r.header.Render(formatRow(headers, widths)) + "\n")
	for i, row := range rows {
		line := formatRow(row, widths)
		if txs[i].IsIncome {
			line = r.good.Render(line)
		}
		b.WriteString(line + "\n")
	}
	return r.write(b.String())
}

// Spending prints each category's share of total expense as a bar.
func (r *Renderer) Spending(shares []core.CategoryShare) error {
	if len(shares) == 0 {
		return r.write(r.warn.Render(MsgNoExpenses) + "\n")
	}

	nameWidth := 0
	for _, s := range shares {
		nameWidth = max(nameWidth, lipgloss.Width(s.Name))
	}

	var b strings.Builder
	b.WriteString(r.header.Render("Spending by Category") + "\n")
	for _, s := range shares {
		fmt.Fprintf(&b, "%s  %12s  %5s%%  %s\n",
			pad(s.Name, nameWidth),
			FormatAmount(s.Amount),
			s.Percent.StringFixed(1),
			r.bar.Render(strings.Repeat("█", barCells(s.Percent))))
	}
	return r.write(b.String())
}

// BudgetVsActual prints each budgeted category's usage as a gauge.
func (r *Renderer) BudgetVsActual(cmp []core.BudgetComparison) error {
	if len(cmp) == 0 {
		return r.write(r.warn.Render(MsgNoBudgets) + "\n")
	}

	nameWidth := lipgloss.Width("Category")
	for _, c := range cmp {
		nameWidth = max(nameWidth, lipgloss.Width(c.Category))
	}

	var b strings.Builder
	b.WriteString(r.header.Render(fmt.Sprintf("%s  %12s  %12s  %12s  %s",
		pad("Category", nameWidth), "Budget", "Spent", "Remaining", "Used")) + "\n")
	for _, c := range cmp {
		filled := barCells(c.UsedPercent)
		gauge := "[" + strings.Repeat("#", filled) + strings.Repeat("-", barWidth-filled) + "]"
		style := r.good
		if c.OverBudget() {
			style = r.bad
		}
		fmt.Fprintf(&b, "%s  %12s  %12s  %s  %s %s%%\n",
			pad(c.Category, nameWidth),
			FormatAmount(c.Budgeted),
			FormatAmount(c.Spent),
			style.Render(fmt.Sprintf("%12s", FormatAmount(c.Remaining))),
			style.Render(gauge),
			c.UsedPercent.StringFixed(1))
	}
	return r.write(b.String())
}

// Notice prints a highlighted one-line message, e.g. a save warning.
func (r *Renderer) Notice(msg string) error {
	return r.write(r.warn.Render(msg) + "\n")
}

func (r *Renderer) write(s string) error {
	_, err := io.WriteString(r.w, s)
	return err
}

// barCells maps a 0-100 percentage onto barWidth cells, clamped.
func barCells(percent decimal.Decimal) int {
	n := percent.Mul(decimal.NewFromInt(barWidth)).Div(hundred).Round(0).IntPart()
	if n < 0 {
		return 0
	}
	if n > barWidth {
		return barWidth
	}
	return int(n)
}

func pad(s string, width int) string {
	if gap := width - lipgloss.Width(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}

func formatRow(cells []string, widths []int) string {
	parts := make([]string, len(cells))
	for i, cell := range cells {
		if i == len(cells)-1 {
			parts[i] = cell
			continue
		}
		parts[i] = pad(cell, widths[i])
	}
	return strings.Join(parts, "  ")
}
