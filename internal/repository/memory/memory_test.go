package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sjperalta/lendera-api/internal/models"
	"github.com/sjperalta/lendera-api/internal/repository"
)

func newLoan(borrower uint) *models.Loan {
	return &models.Loan{
		BorrowerID:   borrower,
		Principal:    decimal.NewFromInt(1000),
		AnnualRate:   decimal.RequireFromString("0.1"),
		TenureMonths: 12,
		StartDate:    time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestLoanRepository_CreateFindUpdate(t *testing.T) {
	ctx := context.Background()
	repos := NewRepositories()

	loan := newLoan(5)
	require.NoError(t, repos.Loan.Create(ctx, loan))
	assert.Equal(t, uint(1), loan.ID)
	assert.Equal(t, models.LoanStatusPending, loan.Status)

	found, err := repos.Loan.FindByID(ctx, loan.ID)
	require.NoError(t, err)
	assert.Equal(t, uint(5), found.BorrowerID)

	// Returned values are copies
	found.Status = models.LoanStatusActive
	again, err := repos.Loan.FindByID(ctx, loan.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LoanStatusPending, again.Status)

	require.NoError(t, repos.Loan.Update(ctx, found))
	again, err = repos.Loan.FindByID(ctx, loan.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LoanStatusActive, again.Status)

	_, err = repos.Loan.FindByID(ctx, 99)
	assert.True(t, errors.Is(err, repository.ErrNotFound))
}

func TestLoanRepository_ListFiltersAndPages(t *testing.T) {
	ctx := context.Background()
	repos := NewRepositories()

	for i := 0; i < 5; i++ {
		loan := newLoan(uint(1 + i%2))
		require.NoError(t, repos.Loan.Create(ctx, loan))
	}
	discarded := newLoan(1)
	require.NoError(t, repos.Loan.Create(ctx, discarded))
	now := time.Now()
	discarded.DiscardedAt = &now
	require.NoError(t, repos.Loan.Update(ctx, discarded))

	query := repository.NewListQuery()
	query.Filters["borrower_id"] = "1"
	loans, total, err := repos.Loan.List(ctx, query)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, loans, 3)

	query = repository.NewListQuery()
	query.PerPage = 2
	query.Page = 3
	query.SortBy = "id"
	loans, total, err = repos.Loan.List(ctx, query)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	require.Len(t, loans, 1)
	assert.Equal(t, uint(5), loans[0].ID)
}

func TestPaymentRepository_RejectsDuplicateReference(t *testing.T) {
	ctx := context.Background()
	repos := NewRepositories()

	first := &models.Payment{LoanID: 1, Reference: "ref-1", Amount: decimal.NewFromInt(10), PaidAt: time.Now()}
	require.NoError(t, repos.Payment.Create(ctx, first))
	assert.Equal(t, models.PaymentMethodTransfer, first.Method)

	dup := &models.Payment{LoanID: 1, Reference: "ref-1", Amount: decimal.NewFromInt(10), PaidAt: time.Now()}
	assert.True(t, errors.Is(repos.Payment.Create(ctx, dup), repository.ErrDuplicate))

	generated := &models.Payment{LoanID: 1, Amount: decimal.NewFromInt(10), PaidAt: time.Now()}
	require.NoError(t, repos.Payment.Create(ctx, generated))
	assert.NotEmpty(t, generated.Reference)

	count, err := repos.Payment.CountByLoan(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestPaymentRepository_FindByLoanOrdersByPaidAt(t *testing.T) {
	ctx := context.Background()
	repos := NewRepositories()
	base := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)

	for i, offset := range []int{10, 2, 5} {
		require.NoError(t, repos.Payment.Create(ctx, &models.Payment{
			LoanID:    3,
			Reference: string(rune('a' + i)),
			Amount:    decimal.NewFromInt(1),
			PaidAt:    base.AddDate(0, 0, offset),
		}))
	}

	payments, err := repos.Payment.FindByLoan(ctx, 3)
	require.NoError(t, err)
	require.Len(t, payments, 3)
	assert.Equal(t, []string{"b", "c", "a"}, []string{payments[0].Reference, payments[1].Reference, payments[2].Reference})
}

func TestTransaction_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	repos := NewRepositories()
	boom := errors.New("boom")

	err := repos.Transaction(ctx, func(tx *repository.Repositories) error {
		if err := tx.Loan.Create(ctx, newLoan(1)); err != nil {
			return err
		}
		return boom
	})
	assert.Equal(t, boom, err)

	_, total, err := repos.Loan.List(ctx, repository.NewListQuery())
	require.NoError(t, err)
	assert.Zero(t, total)

	err = repos.Transaction(ctx, func(tx *repository.Repositories) error {
		return tx.Loan.Create(ctx, newLoan(1))
	})
	require.NoError(t, err)

	loan, err := repos.Loan.FindByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, uint(1), loan.BorrowerID)
}

func TestAuditRepository_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	repos := NewRepositories()

	for _, action := range []string{models.AuditActionCreate, models.AuditActionApprove, models.AuditActionPayment} {
		require.NoError(t, repos.Audit.Create(ctx, &models.AuditLog{ActorID: 1, Action: action, Entity: models.AuditEntityLoan, EntityID: 1}))
	}

	logs, total, err := repos.Audit.List(ctx, repository.NewListQuery())
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Equal(t, models.AuditActionPayment, logs[0].Action)

	query := repository.NewListQuery()
	query.Filters["action"] = models.AuditActionApprove
	logs, total, err = repos.Audit.List(ctx, query)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, models.AuditActionApprove, logs[0].Action)
}
