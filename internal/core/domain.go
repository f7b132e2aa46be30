package core

import (
	"strings"
	"time"
)

// DateLayout is the on-disk and on-wire form of a Date.
const DateLayout = "2006-01-02"

type (
	// Date is a calendar day with no time-of-day component.
	Date struct {
		time.Time
	}

	Transaction struct {
		Amount      Money
		Category    string
		Date        Date
		Description string
		IsIncome    bool
	}

	// Snapshot is the full state of a ledger: the unit that gets persisted.
	Snapshot struct {
		Transactions []Transaction
		Budgets      map[string]Money
	}
)

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day in t's own location.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, &ValidationError{Field: "date", Err: ErrInvalidDate}
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

func (d Date) Validate() error {
	if d.IsZero() {
		return &ValidationError{Field: "date", Err: ErrInvalidDate}
	}
	return nil
}

// NewTransaction trims the text fields and validates the result.
func NewTransaction(amount Money, category string, date Date, description string, isIncome bool) (Transaction, error) {
	t := Transaction{
		Amount:      amount,
		Category:    strings.TrimSpace(category),
		Date:        date,
		Description: strings.TrimSpace(description),
		IsIncome:    isIncome,
	}
	if err := t.Validate(); err != nil {
		return Transaction{}, err
	}
	return t, nil
}

func (t Transaction) Validate() error {
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(t.Category) == "" {
		return &ValidationError{Field: "category", Err: ErrEmptyCategory}
	}
	if strings.TrimSpace(t.Description) == "" {
		return &ValidationError{Field: "description", Err: ErrEmptyDescription}
	}
	return t.Date.Validate()
}

// Kind returns "Income" or "Expense".
func (t Transaction) Kind() string {
	if t.IsIncome {
		return "Income"
	}
	return "Expense"
}

// ValidateBudget checks a category/limit pair before it is stored.
func ValidateBudget(category string, amount Money) error {
	if strings.TrimSpace(category) == "" {
		return &ValidationError{Field: "category", Err: ErrEmptyCategory}
	}
	return amount.Validate()
}

// EmptySnapshot returns a snapshot with no transactions and an allocated budget map.
func EmptySnapshot() Snapshot {
	return Snapshot{
		Transactions: []Transaction{},
		Budgets:      map[string]Money{},
	}
}

// Clone returns a deep copy so callers cannot mutate the original's slices or map.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		Transactions: make([]Transaction, len(s.Transactions)),
		Budgets:      make(map[string]Money, len(s.Budgets)),
	}
	copy(out.Transactions, s.Transactions)
	for k, v := range s.Budgets {
		out.Budgets[k] = v
	}
	return out
}
