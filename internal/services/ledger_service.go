package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/shopspring/decimal"

	"finman/internal/amqp"
	"finman/internal/cache"
	"finman/internal/core"
	"finman/internal/log"
	"finman/internal/report"
	"finman/internal/store"
)

// EventPublisher announces ledger changes. *amqp.Client implements it.
type EventPublisher interface {
	Publish(ctx context.Context, event *amqp.LedgerEvent) error
	Close() error
}

// reportCacheSize bounds the memoized reports: one entry per report kind.
const reportCacheSize = 16

// LedgerService is the boundary the CLI and the HTTP API call into. It
// applies mutations through the store, answers reports from the store's
// current state and publishes change events when a publisher is set.
//
// Reports are memoized until the next mutation. Entries are keyed by a
// generation counter that every mutation bumps.
type LedgerService struct {
	store     *store.Store
	publisher EventPublisher
	logger    *log.Logger
	events    *log.StructuredLogger

	reports    *cache.LRU[any]
	generation atomic.Uint64
}

// NewLedgerService wires a service. publisher may be nil.
func NewLedgerService(st *store.Store, publisher EventPublisher, logger *log.Logger) *LedgerService {
	if logger == nil {
		logger = log.Discard()
	}
	return &LedgerService{
		store:     st,
		publisher: publisher,
		logger:    logger.WithComponent(log.ComponentLedger),
		events:    log.NewStructuredLogger(logger),
		reports:   cache.NewLRU[any](reportCacheSize),
	}
}

// Load reads the persisted ledger into memory.
func (s *LedgerService) Load(ctx context.Context) (store.LoadResult, error) {
	res, err := s.store.Load(ctx)
	if err != nil {
		return res, err
	}
	s.invalidate()
	if res.SaveErr != nil {
		s.logger.WarnContext(ctx, "Fresh ledger could not be written", log.FieldError, res.SaveErr)
	}
	return res, nil
}

// AddTransaction records a transaction dated today.
//
// A *store.PersistError means the transaction is recorded but not saved;
// callers should warn and carry on.
func (s *LedgerService) AddTransaction(ctx context.Context, amount core.Money, category, description string, isIncome bool) (core.Transaction, error) {
	tx, err := s.store.AddTransaction(ctx, amount, category, description, isIncome)
	if err != nil && !isPersistError(err) {
		return core.Transaction{}, err
	}
	s.invalidate()

	s.events.LogTransactionAdded(ctx, tx.Amount.String(), tx.Category, tx.Date.String(), tx.IsIncome)
	s.publish(ctx, amqp.NewTransactionAddedEvent(tx))
	return tx, err
}

// SetBudget sets or replaces the limit for a category.
func (s *LedgerService) SetBudget(ctx context.Context, category string, amount core.Money) error {
	category = strings.TrimSpace(category)
	err := s.store.SetBudget(ctx, category, amount)
	if err != nil && !isPersistError(err) {
		return err
	}
	s.invalidate()

	s.events.LogBudgetSet(ctx, category, amount.String())
	s.publish(ctx, amqp.NewBudgetSetEvent(category, amount))
	return err
}

func (s *LedgerService) Balance() decimal.Decimal {
	return memo(s, "balance", func() decimal.Decimal {
		return report.Balance(s.store.Transactions())
	})
}

func (s *LedgerService) Totals() core.Totals {
	return memo(s, "totals", func() core.Totals {
		return report.Totals(s.store.Transactions())
	})
}

// CategorySpending returns expense totals per category, alphabetically.
func (s *LedgerService) CategorySpending() []core.CategoryAmount {
	return slices.Clone(memo(s, "spending", func() []core.CategoryAmount {
		return report.ByCategory(report.CategorySpending(s.store.Transactions()))
	}))
}

func (s *LedgerService) SpendingShares() []core.CategoryShare {
	return slices.Clone(memo(s, "shares", func() []core.CategoryShare {
		return report.SpendingShares(s.store.Transactions())
	}))
}

func (s *LedgerService) BudgetVsActual() []core.BudgetComparison {
	return slices.Clone(memo(s, "budget-vs-actual", func() []core.BudgetComparison {
		snap := s.store.Snapshot()
		return report.BudgetVsActual(snap.Transactions, snap.Budgets)
	}))
}

// SortedTransactions returns every transaction, newest first.
func (s *LedgerService) SortedTransactions() []core.Transaction {
	return slices.Clone(memo(s, "sorted", func() []core.Transaction {
		return report.SortedTransactions(s.store.Transactions())
	}))
}

func (s *LedgerService) Budgets() map[string]core.Money {
	return s.store.Budgets()
}

// CacheStats reports memoized report hits and misses.
func (s *LedgerService) CacheStats() (hits, misses uint64) {
	return s.reports.Stats()
}

// memo returns the report cached under name for the current generation,
// computing and storing it on a miss. A mutation racing with compute can
// only store a newer result under an older generation, which is never read
// again.
func memo[T any](s *LedgerService, name string, compute func() T) T {
	key := name + "@" + strconv.FormatUint(s.generation.Load(), 10)
	if v, ok := s.reports.Get(key); ok {
		if r, ok := v.(T); ok {
			return r
		}
	}
	r := compute()
	s.reports.Set(key, r)
	return r
}

func (s *LedgerService) invalidate() {
	s.generation.Add(1)
	s.reports.Purge()
}

func (s *LedgerService) publish(ctx context.Context, event *amqp.LedgerEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish ledger event",
			log.FieldError, err,
			log.FieldOperation, log.OpPublish,
			"event_type", event.Type,
			"event_id", event.ID)
	}
}

// Close closes both the store and the publisher
func (s *LedgerService) Close() error {
	var errs []error

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("store: %w", err))
		}
	}

	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("publisher: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close ledger service: %w", errors.Join(errs...))
	}

	return nil
}

func isPersistError(err error) bool {
	var pe *store.PersistError
	return errors.As(err, &pe)
}
