package services

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/sjperalta/lendera-api/internal/amortization"
	"github.com/sjperalta/lendera-api/internal/config"
	"github.com/sjperalta/lendera-api/internal/jobs"
	"github.com/sjperalta/lendera-api/internal/models"
	"github.com/sjperalta/lendera-api/internal/reconciliation"
	"github.com/sjperalta/lendera-api/internal/repository"
	"github.com/sjperalta/lendera-api/internal/repository/memory"
)

var testActor = Actor{ID: 9, IP: "127.0.0.1", UserAgent: "go-test"}

type fixture struct {
	repos  *repository.Repositories
	svcs   *Services
	worker *jobs.Worker
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repos := memory.NewRepositories()
	worker := jobs.NewWorker(1)
	t.Cleanup(worker.Shutdown)

	cfg := &config.Config{ReconcileEpsilon: reconciliation.DefaultEpsilon}
	return &fixture{repos: repos, svcs: NewServices(repos, worker, cfg), worker: worker}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// flatTerms is three interest-free installments of 1000.00 starting 2024-01-01
func flatTerms() amortization.LoanTerms {
	return amortization.LoanTerms{
		Principal:    dec("3000"),
		AnnualRate:   decimal.Zero,
		TenureMonths: 3,
		StartDate:    date(2024, time.January, 1),
	}
}

func (f *fixture) createLoan(t *testing.T, terms amortization.LoanTerms) *models.Loan {
	t.Helper()
	loan, err := f.svcs.Loan.Create(context.Background(), CreateLoanInput{BorrowerID: 7, Terms: terms}, testActor)
	require.NoError(t, err)
	return loan
}

func (f *fixture) activeLoan(t *testing.T, terms amortization.LoanTerms) *models.Loan {
	t.Helper()
	loan := f.createLoan(t, terms)
	loan, err := f.svcs.Loan.Approve(context.Background(), loan.ID, testActor)
	require.NoError(t, err)
	return loan
}

func (f *fixture) pay(t *testing.T, loanID uint, ref, amount string, paidAt time.Time) *PaymentReceipt {
	t.Helper()
	receipt, err := f.svcs.Payment.Record(context.Background(), loanID, RecordPaymentInput{
		Reference: ref,
		Amount:    dec(amount),
		PaidAt:    paidAt,
		Method:    models.PaymentMethodTransfer,
	}, testActor)
	require.NoError(t, err)
	return receipt
}

func auditActions(t *testing.T, f *fixture, entity string, id uint) []string {
	t.Helper()
	query := repository.NewListQuery()
	query.Filters["entity"] = entity
	query.Filters["entity_id"] = strconv.FormatUint(uint64(id), 10)
	logs, _, err := f.svcs.Audit.List(context.Background(), query)
	require.NoError(t, err)

	// Listing is newest first
	actions := make([]string, 0, len(logs))
	for i := len(logs) - 1; i >= 0; i-- {
		actions = append(actions, logs[i].Action)
	}
	return actions
}
