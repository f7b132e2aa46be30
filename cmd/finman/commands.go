package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"finman/internal/cli"
	"finman/internal/config"
	"finman/internal/core"
	"finman/internal/http"
	"finman/internal/log"
	"finman/internal/render"
	"finman/internal/services"
	"finman/internal/store"
)

type env struct {
	cfg    *config.Config
	svc    *services.LedgerService
	out    *output
	logger *log.Logger
}

type command struct {
	minArgs, maxArgs int // maxArgs < 0 means unbounded
	usage            string
	run              func(ctx context.Context, e *env, args []string) error
}

func (c command) checkArgs(args []string) error {
	if len(args) < c.minArgs || (c.maxArgs >= 0 && len(args) > c.maxArgs) {
		return usagef("usage: finman %s", c.usage)
	}
	return nil
}

var commands = map[string]command{
	"income":   {3, -1, "income <amount> <category> <description...>", addTransaction(true)},
	"expense":  {3, -1, "expense <amount> <category> <description...>", addTransaction(false)},
	"budget":   {2, 2, "budget <category> <amount>", setBudget},
	"balance":  {0, 0, "balance", showBalance},
	"spending": {0, 0, "spending", showSpending},
	"budgets":  {0, 0, "budgets", showBudgets},
	"list":     {0, 0, "list", showList},
	"serve":    {0, 0, "serve", serve},
}

func addTransaction(isIncome bool) func(context.Context, *env, []string) error {
	return func(ctx context.Context, e *env, args []string) error {
		amount, err := core.ParseMoney(args[0])
		if err != nil {
			return err
		}
		description := strings.Join(args[2:], " ")

		tx, err := e.svc.AddTransaction(ctx, amount, args[1], description, isIncome)
		if err := warnIfNotSaved(e.out, err); err != nil {
			return err
		}
		if e.out.json {
			return render.WriteJSON(e.out.stdout, render.NewTransactionJSON(tx))
		}
		return e.out.printf("%s of %s recorded in %s on %s\n",
			tx.Kind(), render.FormatAmount(tx.Amount.Decimal), tx.Category, tx.Date)
	}
}

func setBudget(ctx context.Context, e *env, args []string) error {
	amount, err := core.ParseMoney(args[1])
	if err != nil {
		return err
	}
	category := strings.TrimSpace(args[0])

	err = e.svc.SetBudget(ctx, category, amount)
	if err := warnIfNotSaved(e.out, err); err != nil {
		return err
	}
	if e.out.json {
		return render.WriteJSON(e.out.stdout, map[string]any{
			"category": category,
			"amount":   render.AmountJSON(amount.Decimal),
		})
	}
	return e.out.printf("Budget for %s set to %s\n", category, render.FormatAmount(amount.Decimal))
}

func showBalance(_ context.Context, e *env, _ []string) error {
	totals := e.svc.Totals()
	if e.out.json {
		return render.WriteJSON(e.out.stdout, render.NewBalanceJSON(totals))
	}
	return e.out.renderer.Balance(totals)
}

func showSpending(_ context.Context, e *env, _ []string) error {
	shares := e.svc.SpendingShares()
	if e.out.json {
		return render.WriteJSON(e.out.stdout, render.NewSharesJSON(shares))
	}
	return e.out.renderer.Spending(shares)
}

func showBudgets(_ context.Context, e *env, _ []string) error {
	cmp := e.svc.BudgetVsActual()
	if e.out.json {
		return render.WriteJSON(e.out.stdout, render.NewComparisonsJSON(cmp))
	}
	return e.out.renderer.BudgetVsActual(cmp)
}

func showList(_ context.Context, e *env, _ []string) error {
	txs := e.svc.SortedTransactions()
	if e.out.json {
		return render.WriteJSON(e.out.stdout, render.NewTransactionsJSON(txs))
	}
	return e.out.renderer.Transactions(txs)
}

func serve(ctx context.Context, e *env, _ []string) error {
	ctx, stop := cli.GracefulShutdown(ctx)
	defer stop()

	srv := http.NewServer(e.cfg.HTTPAddr, e.svc, e.logger)
	return srv.Run(ctx, e.cfg.ShutdownTimeout)
}

// warnIfNotSaved downgrades a save failure to a warning: the change is
// kept for this process but will be lost on exit.
func warnIfNotSaved(out *output, err error) error {
	var pe *store.PersistError
	if errors.As(err, &pe) {
		out.warn("Warning: %v", pe)
		return nil
	}
	return err
}

// output routes results to stdout and warnings to stderr.
type output struct {
	stdout   io.Writer
	stderr   io.Writer
	json     bool
	renderer *render.Renderer
}

func newOutput(stdout, stderr io.Writer, asJSON bool) *output {
	return &output{
		stdout:   stdout,
		stderr:   stderr,
		json:     asJSON,
		renderer: render.New(stdout),
	}
}

func (o *output) printf(format string, args ...any) error {
	_, err := fmt.Fprintf(o.stdout, format, args...)
	return err
}

func (o *output) warn(format string, args ...any) {
	_ = render.New(o.stderr).Notice(fmt.Sprintf(format, args...))
}
