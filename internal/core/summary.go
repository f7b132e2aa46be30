package core

import "github.com/shopspring/decimal"

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   string
	Amount decimal.Decimal
}

// CategoryShare is one slice of the spending breakdown.
type CategoryShare struct {
	Name    string
	Amount  decimal.Decimal
	Percent decimal.Decimal // 0-100, one decimal place
}

// BudgetComparison pairs a category's budget with what was actually spent.
type BudgetComparison struct {
	Category    string
	Budgeted    decimal.Decimal
	Spent       decimal.Decimal
	Remaining   decimal.Decimal // negative when over budget
	UsedPercent decimal.Decimal // Spent/Budgeted*100, one decimal place
}

// OverBudget reports whether spending exceeded the limit.
func (b BudgetComparison) OverBudget() bool {
	return b.Spent.GreaterThan(b.Budgeted)
}

// Totals holds the two sides of the balance.
type Totals struct {
	Income  decimal.Decimal
	Expense decimal.Decimal
}

// Balance is income minus expense.
func (t Totals) Balance() decimal.Decimal {
	return t.Income.Sub(t.Expense)
}
