// Package core holds the ledger domain types and their validation rules.
//
// Amounts are carried as arbitrary-precision decimals so that sums over many
// transactions never drift the way float64 accumulation does.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Money is a decimal amount in the (single, implied) ledger currency.
type Money struct {
	decimal.Decimal
}

// NewMoney wraps a decimal value.
func NewMoney(d decimal.Decimal) Money {
	return Money{Decimal: d}
}

// ParseMoney converts user input such as "12.34" or "12,34" into a positive amount.
//
// Returns ErrInvalidAmount (wrapped in a *ValidationError) for blank, malformed,
// signed, zero or negative input.
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return Money{}, &ValidationError{Field: "amount", Err: ErrInvalidAmount}
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, &ValidationError{Field: "amount", Err: ErrInvalidAmount}
	}
	m := Money{Decimal: d}
	if err := m.Validate(); err != nil {
		return Money{}, err
	}
	return m, nil
}

// MustMoney is ParseMoney for literals known to be valid. It panics otherwise.
func MustMoney(s string) Money {
	m, err := ParseMoney(s)
	if err != nil {
		panic("core: invalid money literal " + s)
	}
	return m
}

func (m Money) Validate() error {
	if !m.IsPositive() {
		return &ValidationError{Field: "amount", Err: ErrInvalidAmount}
	}
	return nil
}

// String renders the amount with exactly two decimals, without a currency symbol.
func (m Money) String() string {
	return m.StringFixed(2)
}

// Equal reports whether both amounts are numerically equal ("1.50" == "1.5").
func (m Money) Equal(o Money) bool {
	return m.Decimal.Equal(o.Decimal)
}
