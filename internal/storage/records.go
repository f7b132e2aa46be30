// Package storage implements store.Persister over a JSON file and over SQLite.
package storage

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"finman/internal/core"
	"finman/internal/store"
)

// rawTransaction is a transaction as read from storage, before validation.
type rawTransaction struct {
	Amount      string
	Category    string
	Date        string
	Description string
	IsIncome    bool

	// err is set when the record could not even be read into these fields.
	err error
}

func decodeAmount(s string) (core.Money, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return core.Money{}, fmt.Errorf("amount %q: %w", s, core.ErrInvalidAmount)
	}
	m := core.NewMoney(d)
	if err := m.Validate(); err != nil {
		return core.Money{}, fmt.Errorf("amount %q: %w", s, core.ErrInvalidAmount)
	}
	return m, nil
}

func (r rawTransaction) decode() (core.Transaction, error) {
	if r.err != nil {
		return core.Transaction{}, r.err
	}
	amount, err := decodeAmount(r.Amount)
	if err != nil {
		return core.Transaction{}, err
	}
	date, err := core.ParseDate(r.Date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("date %q: %w", r.Date, err)
	}
	return core.NewTransaction(amount, r.Category, date, r.Description, r.IsIncome)
}

// decodeSnapshot validates raw records. Records that fail are collected in a
// store.RecordErrors and left out of the snapshot.
func decodeSnapshot(source string, txs []rawTransaction, budgets map[string]string) (core.Snapshot, error) {
	snap := core.Snapshot{
		Transactions: make([]core.Transaction, 0, len(txs)),
		Budgets:      make(map[string]core.Money, len(budgets)),
	}
	var bad store.RecordErrors

	for i, raw := range txs {
		tx, err := raw.decode()
		if err != nil {
			bad = append(bad, &core.CorruptDataError{Source: source, Record: i, Err: err})
			continue
		}
		snap.Transactions = append(snap.Transactions, tx)
	}

	for category, raw := range budgets {
		amount, err := decodeAmount(raw)
		if err == nil {
			err = core.ValidateBudget(category, amount)
		}
		if err != nil {
			bad = append(bad, &core.CorruptDataError{
				Source: fmt.Sprintf("%s budget %q", source, category),
				Record: -1,
				Err:    err,
			})
			continue
		}
		snap.Budgets[category] = amount
	}

	if len(bad) > 0 {
		return snap, bad
	}
	return snap, nil
}

func notExist(source string) error {
	return fmt.Errorf("%s: %w", source, core.ErrNotExist)
}
