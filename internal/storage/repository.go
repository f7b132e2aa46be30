package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"finman/internal/core"

	_ "modernc.org/sqlite"
)

// DefaultSQLitePath is the database used by the sqlite backend by default.
const DefaultSQLitePath = "data/finance.db"

// SQLiteRepository stores the ledger in SQLite. Each save replaces every row
// inside one SQL transaction, mirroring the whole-document semantics of the
// JSON file.
type SQLiteRepository struct {
	db   *sql.DB
	path string
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if dbPath == "" {
		dbPath = DefaultSQLitePath
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := migrateSchema(dbPath); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteRepository{db: db, path: dbPath}, nil
}

// Path returns the database file.
func (r *SQLiteRepository) Path() string {
	return r.path
}

// Load implements store.Persister
func (r *SQLiteRepository) Load(ctx context.Context) (core.Snapshot, error) {
	var initialised int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM ledger_meta`).Scan(&initialised); err != nil {
		return core.Snapshot{}, fmt.Errorf("read ledger meta: %w", err)
	}
	if initialised == 0 {
		return core.Snapshot{}, notExist(r.path)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT amount, category, date, description, is_income FROM transactions ORDER BY position`)
	if err != nil {
		return core.Snapshot{}, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var raws []rawTransaction
	for rows.Next() {
		var raw rawTransaction
		if err := rows.Scan(&raw.Amount, &raw.Category, &raw.Date, &raw.Description, &raw.IsIncome); err != nil {
			return core.Snapshot{}, fmt.Errorf("scan transaction: %w", err)
		}
		raws = append(raws, raw)
	}
	if err := rows.Err(); err != nil {
		return core.Snapshot{}, fmt.Errorf("iterate transactions: %w", err)
	}

	budgets, err := r.loadBudgets(ctx)
	if err != nil {
		return core.Snapshot{}, err
	}

	return decodeSnapshot(r.path, raws, budgets)
}

func (r *SQLiteRepository) loadBudgets(ctx context.Context) (map[string]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT category, amount FROM budgets ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("query budgets: %w", err)
	}
	defer rows.Close()

	budgets := make(map[string]string)
	for rows.Next() {
		var category, amount string
		if err := rows.Scan(&category, &amount); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		budgets[category] = amount
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate budgets: %w", err)
	}
	return budgets, nil
}

// Save implements store.Persister
func (r *SQLiteRepository) Save(ctx context.Context, s core.Snapshot) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM transactions`); err != nil {
		return fmt.Errorf("clear transactions: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM budgets`); err != nil {
		return fmt.Errorf("clear budgets: %w", err)
	}

	insertTx, err := tx.PrepareContext(ctx,
		`INSERT INTO transactions (position, amount, category, date, description, is_income) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare transaction insert: %w", err)
	}
	defer insertTx.Close()

	for i, t := range s.Transactions {
		if _, err := insertTx.ExecContext(ctx, i, t.Amount.Decimal.String(), t.Category, t.Date.String(), t.Description, t.IsIncome); err != nil {
			return fmt.Errorf("insert transaction %d: %w", i, err)
		}
	}

	insertBudget, err := tx.PrepareContext(ctx, `INSERT INTO budgets (category, amount) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare budget insert: %w", err)
	}
	defer insertBudget.Close()

	for category, amount := range s.Budgets {
		if _, err := insertBudget.ExecContext(ctx, category, amount.Decimal.String()); err != nil {
			return fmt.Errorf("insert budget %q: %w", category, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO ledger_meta (id, saved_at) VALUES (1, ?)
		 ON CONFLICT(id) DO UPDATE SET saved_at = excluded.saved_at`,
		time.Now().UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("update ledger meta: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Close implements store.Persister
func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}
