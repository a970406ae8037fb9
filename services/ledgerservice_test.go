package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"kalavedi/model"
	"kalavedi/repository/memory"
)

func seedLedger(t *testing.T) *LedgerService {
	t.Helper()
	svc := NewLedgerService(memory.NewTransactionRepository(), zap.NewNop())
	entries := []TransactionInput{
		{"Membership fees", 5000, model.Income, "2024-01-10"},
		{"Stage rent", 1200, model.Expense, "2024-01-20"},
		{"Onam sponsorship", 15000, model.Income, "2024-09-01"},
		{"Sound system", 4000, model.Expense, "2024-09-05"},
		{"Annual dues", 3000, model.Income, "2023-12-15"},
		{"Printing", 500.5, model.Expense, "2023-03-02"},
	}
	for _, e := range entries {
		_, err := svc.Create(context.Background(), e)
		require.NoError(t, err)
	}
	return svc
}

func TestLedgerService_CreateValidation(t *testing.T) {
	svc := NewLedgerService(memory.NewTransactionRepository(), zap.NewNop())
	ctx := context.Background()

	bad := []TransactionInput{
		{"  ", 10, model.Income, "2024-01-01"},
		{"x", 0, model.Income, "2024-01-01"},
		{"x", -5, model.Expense, "2024-01-01"},
		{"x", 10, "refund", "2024-01-01"},
		{"x", 10, model.Income, ""},
		{"x", 10, model.Income, "01/02/2024"},
	}
	for _, in := range bad {
		_, err := svc.Create(ctx, in)
		assert.ErrorIs(t, err, ErrInvalidTransaction, "%+v", in)
	}

	tx, err := svc.Create(ctx, TransactionInput{" Hall rent ", 250, model.Expense, "2024-02-29"})
	require.NoError(t, err)
	assert.Equal(t, "Hall rent", tx.Description)
	assert.Equal(t, "2024-02-29T00:00:00.000Z", tx.Date)
	assert.Equal(t, int64(1709164800000), tx.Timestamp)
	assert.NotEmpty(t, tx.ID)
}

func TestLedgerService_Report(t *testing.T) {
	svc := seedLedger(t)

	report, err := svc.Report(context.Background(), LedgerFilter{})
	require.NoError(t, err)
	assert.Equal(t, ViewOverview, report.View)
	assert.Equal(t, 23000.0, report.Totals.Income)
	assert.Equal(t, 5700.5, report.Totals.Expense)
	assert.Equal(t, 17299.5, report.Totals.Balance)
	assert.Equal(t, report.Totals, report.Period)
	assert.Equal(t, []int{2024, 2023}, report.AvailableYears)
	require.Len(t, report.Transactions, 6)
	assert.Equal(t, "Sound system", report.Transactions[0].Description)

	months := make([]string, 0, len(report.Monthly))
	for _, m := range report.Monthly {
		months = append(months, m.Month)
	}
	assert.Equal(t, []string{"Jan", "Sep", "Mar", "Dec"}, months)
	assert.Equal(t, MonthlyReport{Month: "Jan", Year: 2024, Income: 5000, Expense: 1200, Balance: 3800, TransactionCount: 2, monthIndex: 0}, report.Monthly[0])

	require.Len(t, report.Yearly, 2)
	assert.Equal(t, 2024, report.Yearly[0].Year)
	assert.Equal(t, 14800.0, report.Yearly[0].Balance)
	assert.Len(t, report.Yearly[0].Months, 2)
	assert.Equal(t, 2499.5, report.Yearly[1].Balance)
}

func TestLedgerService_ReportFilters(t *testing.T) {
	svc := seedLedger(t)
	ctx := context.Background()

	report, err := svc.Report(ctx, LedgerFilter{View: ViewMonthly, Year: 2024, Month: 9})
	require.NoError(t, err)
	assert.Len(t, report.Transactions, 2)
	assert.Equal(t, Totals{Income: 15000, Expense: 4000, Balance: 11000, Count: 2}, report.Period)

	report, err = svc.Report(ctx, LedgerFilter{View: ViewYearly, Year: 2023})
	require.NoError(t, err)
	assert.Equal(t, 2, report.Period.Count)
	assert.Equal(t, 6, report.Totals.Count)

	for _, f := range []LedgerFilter{
		{View: ViewMonthly, Year: 2024},
		{View: ViewMonthly, Year: 2024, Month: 13},
		{View: ViewYearly},
		{View: "weekly"},
	} {
		_, err := svc.Report(ctx, f)
		assert.ErrorIs(t, err, ErrInvalidFilter, "%+v", f)
	}
}

func TestLedgerService_UpdateAndDelete(t *testing.T) {
	svc := NewLedgerService(memory.NewTransactionRepository(), zap.NewNop())
	ctx := context.Background()

	tx, err := svc.Create(ctx, TransactionInput{"Chairs", 800, model.Expense, "2024-04-01"})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, tx.ID, TransactionInput{"Chairs (12)", 960, model.Expense, "2024-04-02"})
	require.NoError(t, err)
	assert.Equal(t, 960.0, updated.Amount)

	report, err := svc.Report(ctx, LedgerFilter{})
	require.NoError(t, err)
	require.Len(t, report.Transactions, 1)
	assert.Equal(t, "Chairs (12)", report.Transactions[0].Description)

	require.NoError(t, svc.Delete(ctx, tx.ID))
	report, err = svc.Report(ctx, LedgerFilter{})
	require.NoError(t, err)
	assert.Empty(t, report.Transactions)
	assert.Empty(t, report.Yearly)
}
