package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"finman/internal/core"
)

// DefaultDataFile is where the ledger lives when nothing else is configured.
const DefaultDataFile = "data/finance_data.json"

// loadDocument splits the document into per-record raw JSON so that one
// ill-typed record does not make the whole file unreadable.
type loadDocument struct {
	Transactions []json.RawMessage          `json:"transactions"`
	Budgets      map[string]json.RawMessage `json:"budgets"`
}

type fileDocument struct {
	Transactions []fileTransaction     `json:"transactions"`
	Budgets      map[string]json.Number `json:"budgets"`
}

type fileTransaction struct {
	Amount      json.Number `json:"amount"`
	Category    string      `json:"category"`
	Date        string      `json:"date"`
	Description string      `json:"description"`
	IsIncome    bool        `json:"is_income"`
}

// FileRepository keeps the ledger in a single JSON document that is rewritten
// in full on every save. Writes go straight to the target path, so a crash
// mid-write can leave a truncated file; Load then reports it as corrupt.
type FileRepository struct {
	path string
}

func NewFileRepository(path string) *FileRepository {
	if path == "" {
		path = DefaultDataFile
	}
	return &FileRepository{path: path}
}

// Path returns the file the repository reads and writes.
func (r *FileRepository) Path() string {
	return r.path
}

// Load implements store.Persister
func (r *FileRepository) Load(_ context.Context) (core.Snapshot, error) {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return core.Snapshot{}, notExist(r.path)
	}
	if err != nil {
		return core.Snapshot{}, fmt.Errorf("read %s: %w", r.path, err)
	}

	var doc loadDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return core.Snapshot{}, &core.CorruptDataError{Source: r.path, Record: -1, Err: err}
	}

	raws := make([]rawTransaction, len(doc.Transactions))
	for i, msg := range doc.Transactions {
		var t fileTransaction
		if err := json.Unmarshal(msg, &t); err != nil {
			raws[i] = rawTransaction{err: err}
			continue
		}
		raws[i] = rawTransaction{
			Amount:      t.Amount.String(),
			Category:    t.Category,
			Date:        t.Date,
			Description: t.Description,
			IsIncome:    t.IsIncome,
		}
	}
	budgets := make(map[string]string, len(doc.Budgets))
	for k, msg := range doc.Budgets {
		var amount json.Number
		if err := json.Unmarshal(msg, &amount); err != nil {
			// Keep the raw text; decodeSnapshot rejects it as a bad amount.
			budgets[k] = string(msg)
			continue
		}
		budgets[k] = amount.String()
	}

	return decodeSnapshot(r.path, raws, budgets)
}

// Save implements store.Persister
func (r *FileRepository) Save(_ context.Context, s core.Snapshot) error {
	doc := fileDocument{
		Transactions: make([]fileTransaction, len(s.Transactions)),
		Budgets:      make(map[string]json.Number, len(s.Budgets)),
	}
	for i, t := range s.Transactions {
		doc.Transactions[i] = fileTransaction{
			Amount:      json.Number(t.Amount.Decimal.String()),
			Category:    t.Category,
			Date:        t.Date.String(),
			Description: t.Description,
			IsIncome:    t.IsIncome,
		}
	}
	for category, amount := range s.Budgets {
		doc.Budgets[category] = json.Number(amount.Decimal.String())
	}

	data, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}

	if dir := filepath.Dir(r.path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create data directory: %w", err)
		}
	}
	if err := os.WriteFile(r.path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", r.path, err)
	}
	return nil
}

// Close implements store.Persister
func (r *FileRepository) Close() error {
	return nil
}
