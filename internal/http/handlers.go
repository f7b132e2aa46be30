package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"finman/internal/core"
	"finman/internal/log"
	"finman/internal/render"
	"finman/internal/store"
)

// Ledger is the part of the ledger service the API needs.
type Ledger interface {
	AddTransaction(ctx context.Context, amount core.Money, category, description string, isIncome bool) (core.Transaction, error)
	SetBudget(ctx context.Context, category string, amount core.Money) error
	Totals() core.Totals
	SpendingShares() []core.CategoryShare
	BudgetVsActual() []core.BudgetComparison
	SortedTransactions() []core.Transaction
	Budgets() map[string]core.Money
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Set("status", "ok").Write(w)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().
		Set("transactions", render.NewTransactionsJSON(s.ledger.SortedTransactions())).
		Write(w)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(w, r)
	if err := p.Parse(); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	amount, err := p.Amount("amount")
	if err != nil {
		s.writeMutationError(w, r, err)
		return
	}
	isIncome, err := p.IsIncome()
	if err != nil {
		s.writeMutationError(w, r, err)
		return
	}

	tx, err := s.ledger.AddTransaction(r.Context(), amount, p.Get("category"), p.Get("description"), isIncome)
	warning, ok := s.persistWarning(w, r, err)
	if !ok {
		return
	}

	NewJSONResponse().
		Status(http.StatusCreated).
		Set("transaction", render.NewTransactionJSON(tx)).
		Warning(warning).
		Write(w)
}

func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	category := strings.TrimSpace(r.PathValue("category"))

	p := NewRequestBodyParser(w, r)
	if err := p.Parse(); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	amount, err := p.Amount("amount")
	if err != nil {
		s.writeMutationError(w, r, err)
		return
	}

	err = s.ledger.SetBudget(r.Context(), category, amount)
	warning, ok := s.persistWarning(w, r, err)
	if !ok {
		return
	}

	NewJSONResponse().
		Set("category", category).
		Set("amount", render.AmountJSON(amount.Decimal)).
		Warning(warning).
		Write(w)
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Set("budgets", render.NewBudgetsJSON(s.ledger.Budgets())).Write(w)
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	b := render.NewBalanceJSON(s.ledger.Totals())
	NewJSONResponse().
		Set("income", b.Income).
		Set("expense", b.Expense).
		Set("balance", b.Balance).
		Write(w)
}

func (s *Server) handleSpending(w http.ResponseWriter, r *http.Request) {
	shares := s.ledger.SpendingShares()
	total := decimal.Zero
	for _, sh := range shares {
		total = total.Add(sh.Amount)
	}

	resp := NewJSONResponse().
		Set("categories", render.NewSharesJSON(shares)).
		Set("total", render.AmountJSON(total))
	if len(shares) == 0 {
		resp.Message(render.MsgNoExpenses)
	}
	resp.Write(w)
}

func (s *Server) handleBudgetVsActual(w http.ResponseWriter, r *http.Request) {
	cmp := s.ledger.BudgetVsActual()
	resp := NewJSONResponse().Set("comparisons", render.NewComparisonsJSON(cmp))
	if len(cmp) == 0 {
		resp.Message(render.MsgNoBudgets)
	}
	resp.Write(w)
}

// persistWarning turns a mutation error into either a warning for a
// successful response (ok == true) or a written error response.
func (s *Server) persistWarning(w http.ResponseWriter, r *http.Request, err error) (warning string, ok bool) {
	if err == nil {
		return "", true
	}
	var pe *store.PersistError
	if errors.As(err, &pe) {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Change kept in memory only", log.FieldError, err)
		return pe.Error(), true
	}
	s.writeMutationError(w, r, err)
	return "", false
}

func (s *Server) writeMutationError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, core.ErrValidation) {
		UnprocessableEntityError(err.Error()).Write(w)
		return
	}
	log.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed", log.FieldError, err)
	InternalServerError("internal error").Write(w)
}
