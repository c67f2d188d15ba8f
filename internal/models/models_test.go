package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sjperalta/lendera-api/internal/amortization"
)

func TestLoan_StatePredicates(t *testing.T) {
	tests := []struct {
		status          string
		mayEdit         bool
		mayFinish       bool
		acceptsPayments bool
		terminal        bool
	}{
		{LoanStatusPending, true, false, false, false},
		{LoanStatusActive, false, true, true, false},
		{LoanStatusFinished, false, false, false, true},
		{LoanStatusDeleted, false, false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			loan := &Loan{Status: tt.status}
			assert.Equal(t, tt.mayEdit, loan.MayEdit())
			assert.Equal(t, tt.mayEdit, loan.MayApprove())
			assert.Equal(t, tt.mayEdit, loan.MayDelete())
			assert.Equal(t, tt.mayFinish, loan.MayFinish())
			assert.Equal(t, tt.acceptsPayments, loan.AcceptsPayments())
			assert.Equal(t, tt.terminal, loan.IsTerminal())
			assert.True(t, IsValidLoanStatus(tt.status))
		})
	}

	assert.False(t, IsValidLoanStatus("archived"))
	assert.False(t, IsValidLoanStatus(""))
}

func TestLoan_IsDiscarded(t *testing.T) {
	loan := &Loan{}
	assert.False(t, loan.IsDiscarded())

	now := time.Now()
	loan.DiscardedAt = &now
	assert.True(t, loan.IsDiscarded())
}

func TestLoan_ApplyTerms(t *testing.T) {
	loan := &Loan{}
	loan.ApplyTerms(amortization.LoanTerms{
		Principal:    decimal.RequireFromString("1500.456"),
		AnnualRate:   decimal.RequireFromString("0.085"),
		TenureMonths: 24,
		StartDate:    time.Date(2024, time.March, 5, 17, 30, 0, 0, time.UTC),
	})

	assert.Equal(t, "1500.46", loan.Principal.String())
	assert.Equal(t, 24, loan.TenureMonths)
	assert.Equal(t, time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC), loan.StartDate)

	terms := loan.Terms()
	assert.True(t, terms.Principal.Equal(loan.Principal))
	assert.True(t, terms.AnnualRate.Equal(decimal.RequireFromString("0.085")))
	assert.Equal(t, loan.StartDate, terms.StartDate)
}

func TestPayment_EnsureReference(t *testing.T) {
	p := &Payment{Reference: "  bank-1  "}
	p.EnsureReference()
	assert.Equal(t, "bank-1", p.Reference)

	blank := &Payment{Reference: "   "}
	blank.EnsureReference()
	assert.Len(t, blank.Reference, 36)

	other := &Payment{}
	other.EnsureReference()
	assert.NotEqual(t, blank.Reference, other.Reference)
}

func TestPayment_BeforeCreate(t *testing.T) {
	p := &Payment{}
	require.NoError(t, p.BeforeCreate(nil))
	assert.Equal(t, PaymentMethodTransfer, p.Method)
	assert.NotEmpty(t, p.Reference)

	cash := &Payment{Reference: "r", Method: PaymentMethodCash}
	require.NoError(t, cash.BeforeCreate(nil))
	assert.Equal(t, PaymentMethodCash, cash.Method)
	assert.Equal(t, "r", cash.Reference)
}

func TestIsValidPaymentMethod(t *testing.T) {
	for _, m := range []string{PaymentMethodCash, PaymentMethodTransfer, PaymentMethodCheck, PaymentMethodCard, PaymentMethodDebit} {
		assert.True(t, IsValidPaymentMethod(m), m)
	}
	assert.False(t, IsValidPaymentMethod("CASH"))
	assert.False(t, IsValidPaymentMethod("barter"))
}

func TestPaymentEvents(t *testing.T) {
	seq := 2
	paidAt := time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)
	events := PaymentEvents([]Payment{
		{LoanID: 3, Reference: "a", Amount: decimal.NewFromInt(100), PaidAt: paidAt, Method: PaymentMethodCash, MatchedInstallmentSequence: &seq},
		{LoanID: 3, Reference: "b", Amount: decimal.NewFromInt(50), PaidAt: paidAt},
	})

	require.Len(t, events, 2)
	assert.Equal(t, "a", events[0].ID)
	assert.Equal(t, uint(3), events[0].LoanID)
	assert.True(t, events[0].Amount.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, paidAt, events[0].PaidAt)
	assert.Equal(t, PaymentMethodCash, events[0].Method)
	assert.Equal(t, &seq, events[0].MatchedInstallmentSequence)
	assert.Equal(t, "b", events[1].ID)
	assert.Nil(t, events[1].MatchedInstallmentSequence)
}

func TestInstallments_RoundTrip(t *testing.T) {
	terms := amortization.LoanTerms{
		Principal:    decimal.NewFromInt(120000),
		AnnualRate:   decimal.RequireFromString("0.12"),
		TenureMonths: 12,
		StartDate:    time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
	}
	schedule, err := amortization.GenerateSchedule(terms)
	require.NoError(t, err)

	rows := NewInstallments(42, schedule)
	require.Len(t, rows, 12)
	for i, row := range rows {
		assert.Equal(t, uint(42), row.LoanID)
		assert.Equal(t, i+1, row.Sequence)
		assert.Equal(t, terms.Fingerprint(), row.TermsFingerprint)
	}

	rebuilt := ToSchedule(terms, rows)
	assert.Equal(t, schedule.Installments, rebuilt.Installments)
	assert.True(t, rebuilt.TotalPayable().Equal(schedule.TotalPayable()))
	assert.Equal(t, schedule.MaturityDate(), rebuilt.MaturityDate())
}
