package storage

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finman/internal/core"
	"finman/internal/store"
)

func sampleSnapshot() core.Snapshot {
	return core.Snapshot{
		Transactions: []core.Transaction{
			{Amount: core.MustMoney("1200"), Category: "salary", Date: core.NewDate(2024, 1, 31), Description: "January pay", IsIncome: true},
			{Amount: core.MustMoney("12.34"), Category: "food", Date: core.NewDate(2024, 2, 1), Description: "lunch"},
			{Amount: core.MustMoney("0.1"), Category: "food", Date: core.NewDate(2024, 1, 15), Description: "gum"},
		},
		Budgets: map[string]core.Money{
			"food": core.MustMoney("300"),
			"rent": core.MustMoney("950.50"),
		},
	}
}

func assertSnapshotEqual(t *testing.T, want, got core.Snapshot) {
	t.Helper()
	require.Len(t, got.Transactions, len(want.Transactions))
	for i := range want.Transactions {
		w, g := want.Transactions[i], got.Transactions[i]
		assert.True(t, w.Amount.Equal(g.Amount), "transaction %d amount %s != %s", i, w.Amount, g.Amount)
		assert.Equal(t, w.Category, g.Category)
		assert.Equal(t, w.Date.String(), g.Date.String())
		assert.Equal(t, w.Description, g.Description)
		assert.Equal(t, w.IsIncome, g.IsIncome)
	}
	require.Len(t, got.Budgets, len(want.Budgets))
	for k, v := range want.Budgets {
		assert.True(t, v.Equal(got.Budgets[k]), "budget %s", k)
	}
}

func TestFileRepositoryRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "finance_data.json")
	repo := NewFileRepository(path)
	ctx := context.Background()

	want := sampleSnapshot()
	require.NoError(t, repo.Save(ctx, want))

	got, err := repo.Load(ctx)
	require.NoError(t, err)
	assertSnapshotEqual(t, want, got)
}

func TestFileRepositoryDocumentShape(t *testing.T) {
	path := filepath.Join(t.TempDir(), "finance_data.json")
	repo := NewFileRepository(path)
	require.NoError(t, repo.Save(context.Background(), sampleSnapshot()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	txs, ok := doc["transactions"].([]any)
	require.True(t, ok)
	first := txs[0].(map[string]any)
	assert.Equal(t, float64(1200), first["amount"], "amount must be a JSON number")
	assert.Equal(t, "2024-01-31", first["date"])
	assert.Equal(t, true, first["is_income"])
	budgets := doc["budgets"].(map[string]any)
	assert.Equal(t, 950.5, budgets["rent"])
}

func TestFileRepositoryMissing(t *testing.T) {
	repo := NewFileRepository(filepath.Join(t.TempDir(), "nope.json"))
	_, err := repo.Load(context.Background())
	assert.True(t, errors.Is(err, core.ErrNotExist), "got %v", err)
}

func TestFileRepositoryCorrupt(t *testing.T) {
	for name, content := range map[string]string{
		"garbage":   "{not json",
		"empty":     "",
		"wrongtype": `{"transactions": 5}`,
	} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "finance_data.json")
			require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

			_, err := NewFileRepository(path).Load(context.Background())
			var corrupt *core.CorruptDataError
			require.True(t, errors.As(err, &corrupt), "got %v", err)
			assert.Equal(t, -1, corrupt.Record)
		})
	}
}

func TestFileRepositorySkipsMalformedRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "finance_data.json")
	content := `{
    "transactions": [
        {"amount": 10, "category": "food", "date": "2024-01-01", "description": "ok", "is_income": false},
        {"amount": 5, "category": "food", "date": "01/02/2024", "description": "bad date", "is_income": false},
        {"amount": -3, "category": "food", "date": "2024-01-03", "description": "negative", "is_income": false},
        {"amount": 7, "category": "pay", "date": "2024-01-04", "description": "ok too", "is_income": true}
    ],
    "budgets": {"food": 100, "bad": 0}
}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	snap, err := NewFileRepository(path).Load(context.Background())
	var skipped store.RecordErrors
	require.True(t, errors.As(err, &skipped), "got %v", err)
	assert.Len(t, skipped, 3)
	assert.True(t, errors.Is(skipped[0], core.ErrInvalidDate))
	assert.Equal(t, 1, skipped[0].Record)

	require.Len(t, snap.Transactions, 2)
	assert.Equal(t, "ok", snap.Transactions[0].Description)
	assert.Equal(t, "ok too", snap.Transactions[1].Description)
	require.Len(t, snap.Budgets, 1)
	assert.True(t, snap.Budgets["food"].Equal(core.MustMoney("100")))
}

func TestFileRepositoryIllTypedRecordsAreSkipped(t *testing.T) {
	good := `{"amount": 10, "category": "food", "date": "2024-01-01", "description": "ok", "is_income": false}`
	tests := []struct {
		name string
		bad  string
	}{
		{"string income flag", `{"amount": 5, "category": "food", "date": "2024-01-02", "description": "x", "is_income": "yes"}`},
		{"string amount", `{"amount": "abc", "category": "food", "date": "2024-01-02", "description": "x", "is_income": false}`},
		{"numeric date", `{"amount": 5, "category": "food", "date": 20240102, "description": "x", "is_income": false}`},
		{"not an object", `"lunch"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "finance_data.json")
			content := `{"transactions": [` + good + `, ` + tt.bad + `], "budgets": {"food": 100, "rent": "lots"}}`
			require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

			snap, err := NewFileRepository(path).Load(context.Background())
			var skipped store.RecordErrors
			require.True(t, errors.As(err, &skipped), "got %v", err)
			require.Len(t, skipped, 2)
			assert.Equal(t, 1, skipped[0].Record)

			require.Len(t, snap.Transactions, 1)
			assert.Equal(t, "ok", snap.Transactions[0].Description)
			require.Len(t, snap.Budgets, 1)
			assert.True(t, snap.Budgets["food"].Equal(core.MustMoney("100")))
		})
	}
}

func TestStoreOverFileKeepsGoodRecordsBesideIllTypedOne(t *testing.T) {
	path := filepath.Join(t.TempDir(), "finance_data.json")
	content := `{
    "transactions": [
        {"amount": 10, "category": "food", "date": "2024-01-01", "description": "ok", "is_income": false},
        {"amount": 5, "category": "food", "date": "2024-01-02", "description": "bad", "is_income": "yes"}
    ],
    "budgets": {"food": 100}
}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	s := store.New(NewFileRepository(path))
	res, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, res.Recovered)
	assert.Len(t, res.Skipped, 1)
	assert.Len(t, s.Transactions(), 1)
	assert.Len(t, s.Budgets(), 1)

	// Nothing is written back until the next mutation.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, content, string(data))
}

func TestFileRepositoryMissingKeysLoadEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "finance_data.json")
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o644))

	snap, err := NewFileRepository(path).Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, snap.Transactions)
	assert.Empty(t, snap.Budgets)
}

func TestStoreOverFileRecoversFromCorruption(t *testing.T) {
	path := filepath.Join(t.TempDir(), "finance_data.json")
	require.NoError(t, os.WriteFile(path, []byte("}}}"), 0o644))

	s := store.New(NewFileRepository(path))
	res, err := s.Load(context.Background())
	require.NoError(t, err)
	require.NotNil(t, res.Recovered)
	assert.Empty(t, s.Transactions())

	// the reset was persisted: the file now parses
	_, err = NewFileRepository(path).Load(context.Background())
	assert.NoError(t, err)
}

func TestStoreOverFileReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "finance_data.json")
	ctx := context.Background()

	s := store.New(NewFileRepository(path))
	res, err := s.Load(ctx)
	require.NoError(t, err)
	assert.True(t, res.Created)

	_, err = s.AddTransaction(ctx, core.MustMoney("25"), "books", "novel", false)
	require.NoError(t, err)
	require.NoError(t, s.SetBudget(ctx, "books", core.MustMoney("40")))

	reloaded := store.New(NewFileRepository(path))
	_, err = reloaded.Load(ctx)
	require.NoError(t, err)
	assertSnapshotEqual(t, s.Snapshot(), reloaded.Snapshot())
}
