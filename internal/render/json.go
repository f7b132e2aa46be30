package render

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"finman/internal/core"
)

// JSON views shared by the HTTP API and the CLI's --json output. Amounts are
// JSON numbers with two decimals, percentages with one.

type TransactionJSON struct {
	Amount      json.Number `json:"amount"`
	Category    string      `json:"category"`
	Date        string      `json:"date"`
	Description string      `json:"description"`
	IsIncome    bool        `json:"is_income"`
	Type        string      `json:"type"`
}

type ShareJSON struct {
	Category string      `json:"category"`
	Amount   json.Number `json:"amount"`
	Percent  json.Number `json:"percent"`
}

type ComparisonJSON struct {
	Category    string      `json:"category"`
	Budgeted    json.Number `json:"budgeted"`
	Spent       json.Number `json:"spent"`
	Remaining   json.Number `json:"remaining"`
	UsedPercent json.Number `json:"used_percent"`
	OverBudget  bool        `json:"over_budget"`
}

type BalanceJSON struct {
	Income  json.Number `json:"income"`
	Expense json.Number `json:"expense"`
	Balance json.Number `json:"balance"`
}

func AmountJSON(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(2))
}

func PercentJSON(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(1))
}

func NewTransactionJSON(tx core.Transaction) TransactionJSON {
	return TransactionJSON{
		Amount:      AmountJSON(tx.Amount.Decimal),
		Category:    tx.Category,
		Date:        tx.Date.String(),
		Description: tx.Description,
		IsIncome:    tx.IsIncome,
		Type:        strings.ToLower(tx.Kind()),
	}
}

// NewTransactionsJSON never returns nil so empty lists encode as [].
func NewTransactionsJSON(txs []core.Transaction) []TransactionJSON {
	out := make([]TransactionJSON, 0, len(txs))
	for _, tx := range txs {
		out = append(out, NewTransactionJSON(tx))
	}
	return out
}

func NewBalanceJSON(t core.Totals) BalanceJSON {
	return BalanceJSON{
		Income:  AmountJSON(t.Income),
		Expense: AmountJSON(t.Expense),
		Balance: AmountJSON(t.Balance()),
	}
}

func NewSharesJSON(shares []core.CategoryShare) []ShareJSON {
	out := make([]ShareJSON, 0, len(shares))
	for _, s := range shares {
		out = append(out, ShareJSON{
			Category: s.Name,
			Amount:   AmountJSON(s.Amount),
			Percent:  PercentJSON(s.Percent),
		})
	}
	return out
}

func NewComparisonsJSON(cmp []core.BudgetComparison) []ComparisonJSON {
	out := make([]ComparisonJSON, 0, len(cmp))
	for _, c := range cmp {
		out = append(out, ComparisonJSON{
			Category:    c.Category,
			Budgeted:    AmountJSON(c.Budgeted),
			Spent:       AmountJSON(c.Spent),
			Remaining:   AmountJSON(c.Remaining),
			UsedPercent: PercentJSON(c.UsedPercent),
			OverBudget:  c.OverBudget(),
		})
	}
	return out
}

func NewBudgetsJSON(budgets map[string]core.Money) map[string]json.Number {
	out := make(map[string]json.Number, len(budgets))
	for category, amount := range budgets {
		out[category] = AmountJSON(amount.Decimal)
	}
	return out
}

// WriteJSON writes v indented by four spaces, like the ledger file.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	return enc.Encode(v)
}
