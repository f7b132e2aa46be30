package core

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation matches every *ValidationError via errors.Is.
	ErrValidation = errors.New("validation failed")

	ErrInvalidAmount    = errors.New("amount must be positive")
	ErrEmptyCategory    = errors.New("category must be filled")
	ErrEmptyDescription = errors.New("description must be filled")
	ErrInvalidDate      = errors.New("date must be in YYYY-MM-DD form")

	// ErrNotExist is returned by persisters when nothing has been stored yet.
	ErrNotExist = errors.New("ledger data does not exist")
)

// ValidationError reports user input that was rejected before any state changed.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// CorruptDataError reports stored content that could not be decoded. Record is
// the zero-based index of the offending record, or -1 when the whole document
// is unreadable.
type CorruptDataError struct {
	Source string
	Record int
	Err    error
}

func (e *CorruptDataError) Error() string {
	if e.Record < 0 {
		return fmt.Sprintf("corrupt data in %s: %v", e.Source, e.Err)
	}
	return fmt.Sprintf("corrupt record %d in %s: %v", e.Record, e.Source, e.Err)
}

func (e *CorruptDataError) Unwrap() error { return e.Err }
