// Package report computes derived views over a ledger's transactions.
//
// Every function here is pure: it reads the slice it is given, never retains
// it and never modifies it.
package report

import (
	"sort"

	"github.com/shopspring/decimal"

	"finman/internal/core"
)

var hundred = decimal.NewFromInt(100)

// Totals sums income and expense separately.
func Totals(txs []core.Transaction) core.Totals {
	t := core.Totals{Income: decimal.Zero, Expense: decimal.Zero}
	for _, tx := range txs {
		if tx.IsIncome {
			t.Income = t.Income.Add(tx.Amount.Decimal)
		} else {
			t.Expense = t.Expense.Add(tx.Amount.Decimal)
		}
	}
	return t
}

// Balance returns income minus expense.
func Balance(txs []core.Transaction) decimal.Decimal {
	return Totals(txs).Balance()
}

// CategorySpending maps each category to its total expense. Income is ignored
// and categories without expenses are absent.
func CategorySpending(txs []core.Transaction) map[string]decimal.Decimal {
	spending := make(map[string]decimal.Decimal)
	for _, tx := range txs {
		if tx.IsIncome {
			continue
		}
		spending[tx.Category] = spending[tx.Category].Add(tx.Amount.Decimal)
	}
	return spending
}

// ByCategory flattens a spending map into a slice sorted by category name.
func ByCategory(spending map[string]decimal.Decimal) []core.CategoryAmount {
	out := make([]core.CategoryAmount, 0, len(spending))
	for name, amount := range spending {
		out = append(out, core.CategoryAmount{Name: name, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// SortedTransactions returns a copy ordered by date, most recent first.
// Transactions on the same day keep their insertion order.
func SortedTransactions(txs []core.Transaction) []core.Transaction {
	out := make([]core.Transaction, len(txs))
	copy(out, txs)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date.Time)
	})
	return out
}

// BudgetVsActual compares budgets with spending for the categories that have
// both. A budget with no spending, or spending with no budget, is left out.
// The result is ordered by category name.
func BudgetVsActual(txs []core.Transaction, budgets map[string]core.Money) []core.BudgetComparison {
	spending := CategorySpending(txs)

	out := make([]core.BudgetComparison, 0, len(budgets))
	for category, limit := range budgets {
		spent, ok := spending[category]
		if !ok {
			continue
		}
		out = append(out, core.BudgetComparison{
			Category:    category,
			Budgeted:    limit.Decimal,
			Spent:       spent,
			Remaining:   limit.Sub(spent),
			UsedPercent: percent(spent, limit.Decimal),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out
}

// SpendingShares breaks total expense down by category with each category's
// percentage of the whole, largest first. Ties are ordered by name.
func SpendingShares(txs []core.Transaction) []core.CategoryShare {
	spending := CategorySpending(txs)
	total := decimal.Zero
	for _, amount := range spending {
		total = total.Add(amount)
	}

	out := make([]core.CategoryShare, 0, len(spending))
	for name, amount := range spending {
		out = append(out, core.CategoryShare{
			Name:    name,
			Amount:  amount,
			Percent: percent(amount, total),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Amount.Cmp(out[j].Amount); c != 0 {
			return c > 0
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func percent(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return part.Mul(hundred).DivRound(whole, 4).Round(1)
}
