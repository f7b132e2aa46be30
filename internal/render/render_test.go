package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finman/internal/core"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"12.5", "$12.50"},
		{"0", "$0.00"},
		{"1234.567", "$1234.57"},
		{"-5", "$-5.00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatAmount(dec(tt.in)), tt.in)
	}
}

func TestBalance(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New(&buf).Balance(core.Totals{Income: dec("100"), Expense: dec("30.25")}))

	out := buf.String()
	assert.Contains(t, out, "Income:")
	assert.Contains(t, out, "$100.00")
	assert.Contains(t, out, "$30.25")
	assert.Contains(t, out, "$69.75")
}

func TestTransactions(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf)

	require.NoError(t, r.Transactions(nil))
	assert.Equal(t, MsgNoTransactions+"\n", buf.String())

	buf.Reset()
	txs := []core.Transaction{
		{Amount: core.MustMoney("1000"), Category: "Salary", Date: core.NewDate(2024, 2, 1), Description: "February", IsIncome: true},
		{Amount: core.MustMoney("12.5"), Category: "Food", Date: core.NewDate(2024, 1, 3), Description: "Lunch"},
	}
	require.NoError(t, r.Transactions(txs))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "Date"))
	assert.Contains(t, lines[1], "2024-02-01  Income")
	assert.Contains(t, lines[1], "$1000.00")
	assert.Contains(t, lines[2], "Expense")
	assert.Contains(t, lines[2], "$12.50")
	assert.True(t, strings.HasSuffix(lines[2], "Lunch"))
}

func TestSpending(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf)

	require.NoError(t, r.Spending(nil))
	assert.Equal(t, MsgNoExpenses+"\n", buf.String())

	buf.Reset()
	require.NoError(t, r.Spending([]core.CategoryShare{
		{Name: "Rent", Amount: dec("750"), Percent: dec("75")},
		{Name: "Food", Amount: dec("250"), Percent: dec("25")},
	}))
	out := buf.String()
	assert.Contains(t, out, "Rent")
	assert.Contains(t, out, "75.0%")
	assert.Contains(t, out, strings.Repeat("█", 23))
	assert.NotContains(t, out, strings.Repeat("█", 24))
}

func TestBudgetVsActual(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf)

	require.NoError(t, r.BudgetVsActual(nil))
	assert.Equal(t, MsgNoBudgets+"\n", buf.String())

	buf.Reset()
	require.NoError(t, r.BudgetVsActual([]core.BudgetComparison{
		{Category: "Food", Budgeted: dec("100"), Spent: dec("150"), Remaining: dec("-50"), UsedPercent: dec("150")},
		{Category: "Fun", Budgeted: dec("80"), Spent: dec("20"), Remaining: dec("60"), UsedPercent: dec("25")},
	}))
	out := buf.String()
	assert.Contains(t, out, "$-50.00")
	assert.Contains(t, out, "["+strings.Repeat("#", barWidth)+"]")
	assert.Contains(t, out, "150.0%")
	assert.Contains(t, out, "25.0%")
}

func TestBarCells(t *testing.T) {
	assert.Equal(t, 0, barCells(dec("-10")))
	assert.Equal(t, 0, barCells(dec("0")))
	assert.Equal(t, 15, barCells(dec("50")))
	assert.Equal(t, barWidth, barCells(dec("250")))
}
