// Package store owns the canonical in-memory ledger and mirrors it to a
// Persister after every mutation.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"finman/internal/core"
	"finman/internal/log"
)

// PersistError is returned when a mutation succeeded in memory but the
// following save failed. The change is kept; only durability is lost.
type PersistError struct {
	Err error
}

func (e *PersistError) Error() string {
	return "changes kept in memory but not saved: " + e.Err.Error()
}

func (e *PersistError) Unwrap() error { return e.Err }

// LoadResult describes what Load had to do to produce a usable ledger.
type LoadResult struct {
	// Created is set when no stored ledger existed and an empty one was written.
	Created bool
	// Recovered holds the decode failure when unreadable content was discarded.
	Recovered *core.CorruptDataError
	// Skipped lists records that could not be decoded and were left out.
	Skipped RecordErrors
	// SaveErr is set when the reset ledger could not be written back.
	SaveErr error
}

type Option func(*Store)

// WithClock sets the source of "today" for new transactions.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithLogger(l *log.Logger) Option {
	return func(s *Store) { s.logger = l.WithComponent(log.ComponentStore) }
}

// Store is safe for concurrent use.
type Store struct {
	mu           sync.RWMutex
	persister    Persister
	now          func() time.Time
	logger       *log.Logger
	transactions []core.Transaction
	budgets      map[string]core.Money
}

func New(p Persister, opts ...Option) *Store {
	s := &Store{
		persister:    p,
		now:          time.Now,
		logger:       log.Discard(),
		transactions: []core.Transaction{},
		budgets:      map[string]core.Money{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the in-memory state with the persisted ledger.
//
// A missing ledger is created empty and saved. Unreadable content is
// discarded, the empty ledger saved over it, and the failure reported in
// LoadResult.Recovered rather than as an error. Only other I/O failures are
// returned.
func (s *Store) Load(ctx context.Context) (LoadResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var res LoadResult
	snap, err := s.persister.Load(ctx)

	var corrupt *core.CorruptDataError
	var skipped RecordErrors
	switch {
	case err == nil:
	case errors.As(err, &skipped):
		res.Skipped = skipped
		for _, rec := range skipped {
			s.logger.WarnContext(ctx, "Skipping unreadable record", log.FieldError, rec.Error())
		}
	case errors.Is(err, core.ErrNotExist):
		res.Created = true
		s.reset()
		s.logger.InfoContext(ctx, "No ledger found, creating an empty one")
		res.SaveErr = s.saveLocked(ctx)
		return res, nil
	case errors.As(err, &corrupt):
		res.Recovered = corrupt
		s.reset()
		s.logger.WarnContext(ctx, "Ledger data corrupted, starting fresh", log.FieldError, corrupt.Error())
		res.SaveErr = s.saveLocked(ctx)
		return res, nil
	default:
		return res, fmt.Errorf("load ledger: %w", err)
	}

	s.transactions = snap.Transactions
	if s.transactions == nil {
		s.transactions = []core.Transaction{}
	}
	s.budgets = snap.Budgets
	if s.budgets == nil {
		s.budgets = map[string]core.Money{}
	}

	s.logger.InfoContext(ctx, "Ledger loaded",
		log.FieldTransaction, len(s.transactions),
		log.FieldBudgets, len(s.budgets))
	return res, nil
}

// Save writes the whole ledger.
func (s *Store) Save(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saveLocked(ctx)
}

// AddTransaction records a transaction dated today and saves the ledger.
//
// Invalid input returns a *core.ValidationError and leaves the ledger
// untouched. A failed save returns the new transaction with a *PersistError.
func (s *Store) AddTransaction(ctx context.Context, amount core.Money, category, description string, isIncome bool) (core.Transaction, error) {
	tx, err := core.NewTransaction(amount, category, core.DateOf(s.now()), description, isIncome)
	if err != nil {
		return core.Transaction{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.transactions = append(s.transactions, tx)
	if err := s.saveLocked(ctx); err != nil {
		return tx, &PersistError{Err: err}
	}
	return tx, nil
}

// SetBudget sets or overwrites the spending limit for category and saves the ledger.
func (s *Store) SetBudget(ctx context.Context, category string, amount core.Money) error {
	category = strings.TrimSpace(category)
	if err := core.ValidateBudget(category, amount); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.budgets[category] = amount
	if err := s.saveLocked(ctx); err != nil {
		return &PersistError{Err: err}
	}
	return nil
}

// Transactions returns a copy of all transactions in insertion order.
func (s *Store) Transactions() []core.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Transaction, len(s.transactions))
	copy(out, s.transactions)
	return out
}

// Budgets returns a copy of the budget map.
func (s *Store) Budgets() map[string]core.Money {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]core.Money, len(s.budgets))
	for k, v := range s.budgets {
		out[k] = v
	}
	return out
}

// Snapshot returns a deep copy of the current ledger.
func (s *Store) Snapshot() core.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked().Clone()
}

// Close releases the persister.
func (s *Store) Close() error {
	return s.persister.Close()
}

func (s *Store) snapshotLocked() core.Snapshot {
	return core.Snapshot{Transactions: s.transactions, Budgets: s.budgets}
}

func (s *Store) reset() {
	s.transactions = []core.Transaction{}
	s.budgets = map[string]core.Money{}
}

func (s *Store) saveLocked(ctx context.Context) error {
	if err := s.persister.Save(ctx, s.snapshotLocked()); err != nil {
		s.logger.ErrorContext(ctx, "Failed to save ledger", log.FieldError, err)
		return fmt.Errorf("save ledger: %w", err)
	}
	s.logger.DebugContext(ctx, "Ledger saved",
		log.FieldTransaction, len(s.transactions),
		log.FieldBudgets, len(s.budgets))
	return nil
}
