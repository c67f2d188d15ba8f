package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sjperalta/lendera-api/internal/amortization"
	"github.com/sjperalta/lendera-api/internal/models"
	"github.com/sjperalta/lendera-api/internal/reconciliation"
	"github.com/sjperalta/lendera-api/internal/repository"
	"github.com/sjperalta/lendera-api/internal/statemachine"
	"github.com/sjperalta/lendera-api/pkg/logger"
)

// CreateLoanInput is what a loan is submitted with
type CreateLoanInput struct {
	BorrowerID uint
	Terms      amortization.LoanTerms
	Currency   string
	Note       *string
}

// UpdateLoanInput carries the fields to change; nil fields are kept
type UpdateLoanInput struct {
	Principal    *decimal.Decimal
	AnnualRate   *decimal.Decimal
	TenureMonths *int
	StartDate    *time.Time
	Note         *string
}

func (in UpdateLoanInput) apply(terms amortization.LoanTerms) amortization.LoanTerms {
	if in.Principal != nil {
		terms.Principal = *in.Principal
	}
	if in.AnnualRate != nil {
		terms.AnnualRate = *in.AnnualRate
	}
	if in.TenureMonths != nil {
		terms.TenureMonths = *in.TenureMonths
	}
	if in.StartDate != nil {
		terms.StartDate = *in.StartDate
	}
	return terms
}

// Statement is a loan's schedule reconciled against its payment history
type Statement struct {
	Loan              *models.Loan           `json:"loan"`
	AsOf              time.Time              `json:"as_of"`
	InstallmentAmount decimal.Decimal        `json:"installment_amount"`
	TotalPayable      decimal.Decimal        `json:"total_payable"`
	TotalInterest     decimal.Decimal        `json:"total_interest"`
	MaturityDate      time.Time              `json:"maturity_date"`
	PaymentCount      int                    `json:"payment_count"`
	AmountInArrears   decimal.Decimal        `json:"amount_in_arrears"`
	OverdueCount      int                    `json:"overdue_count"`
	Reconciliation    *reconciliation.Result `json:"reconciliation"`
}

type LoanService struct {
	repos      *repository.Repositories
	reconciler *reconciliation.Reconciler
	auditSvc   *AuditService
	now        func() time.Time
}

func NewLoanService(repos *repository.Repositories, reconciler *reconciliation.Reconciler, auditSvc *AuditService) *LoanService {
	return &LoanService{
		repos:      repos,
		reconciler: reconciler,
		auditSvc:   auditSvc,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Preview computes a schedule without storing anything
func (s *LoanService) Preview(terms amortization.LoanTerms) (*amortization.Schedule, error) {
	return amortization.GenerateSchedule(terms)
}

// Create submits a new loan. It starts pending with its schedule cached.
func (s *LoanService) Create(ctx context.Context, input CreateLoanInput, actor Actor) (*models.Loan, error) {
	if input.BorrowerID == 0 {
		return nil, &amortization.InvalidLoanTermsError{Field: "borrower_id", Reason: "is required"}
	}

	schedule, err := amortization.GenerateSchedule(input.Terms)
	if err != nil {
		return nil, err
	}

	loan := &models.Loan{
		BorrowerID: input.BorrowerID,
		CreatorID:  actor.ref(),
		Currency:   input.Currency,
		Status:     models.LoanStatusPending,
		Note:       input.Note,
	}
	if loan.Currency == "" {
		loan.Currency = "USD"
	}
	loan.ApplyTerms(schedule.Terms)

	err = s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		if err := tx.Loan.Create(ctx, loan); err != nil {
			return fmt.Errorf("failed to create loan: %w", err)
		}
		if err := tx.Installment.ReplaceForLoan(ctx, loan.ID, models.NewInstallments(loan.ID, schedule)); err != nil {
			return fmt.Errorf("failed to cache schedule: %w", err)
		}
		if err := recordTransition(ctx, tx, loan.ID, &statemachine.Transition{
			To:     models.LoanStatusPending,
			Event:  EventCreate,
			Reason: "loan submitted",
		}, actor); err != nil {
			return err
		}

		s.auditSvc.LogWith(ctx, tx.Audit, actor, models.AuditActionCreate, models.AuditEntityLoan, loan.ID,
			fmt.Sprintf("Loan submitted for borrower %d: principal %s, annual rate %s, %d months",
				loan.BorrowerID, loan.Principal.StringFixed(2), loan.AnnualRate.String(), loan.TenureMonths))
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Loan created", "loan_id", loan.ID, "borrower_id", loan.BorrowerID)
	return loan, nil
}

// UpdateTerms edits a pending loan and regenerates its schedule
func (s *LoanService) UpdateTerms(ctx context.Context, id uint, input UpdateLoanInput, actor Actor) (*models.Loan, error) {
	var loan *models.Loan
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		var err error
		loan, err = tx.Loan.FindByIDForUpdate(ctx, id)
		if err != nil {
			return translate(err, "loan")
		}
		if !loan.MayEdit() {
			return fmt.Errorf("loan %d is %s: %w", loan.ID, loan.Status, ErrLoanNotEditable)
		}

		before := loan.Terms()
		schedule, err := amortization.GenerateSchedule(input.apply(before))
		if err != nil {
			return err
		}

		loan.ApplyTerms(schedule.Terms)
		if input.Note != nil {
			loan.Note = input.Note
		}
		if err := tx.Loan.Update(ctx, loan); err != nil {
			return fmt.Errorf("failed to update loan: %w", err)
		}
		if err := tx.Installment.ReplaceForLoan(ctx, loan.ID, models.NewInstallments(loan.ID, schedule)); err != nil {
			return fmt.Errorf("failed to cache schedule: %w", err)
		}

		s.auditSvc.LogWith(ctx, tx.Audit, actor, models.AuditActionUpdate, models.AuditEntityLoan, loan.ID,
			fmt.Sprintf("Terms changed from %s/%s/%d to %s/%s/%d",
				before.Principal.StringFixed(2), before.AnnualRate.String(), before.TenureMonths,
				loan.Principal.StringFixed(2), loan.AnnualRate.String(), loan.TenureMonths))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return loan, nil
}

// Approve activates a pending loan
func (s *LoanService) Approve(ctx context.Context, id uint, actor Actor) (*models.Loan, error) {
	var loan *models.Loan
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		var err error
		loan, err = tx.Loan.FindByIDForUpdate(ctx, id)
		if err != nil {
			return translate(err, "loan")
		}

		// Use FSM to validate and transition state
		tr, err := statemachine.NewLoanFSM(loan).Approve(ctx)
		if err != nil {
			return transitionError(err)
		}
		if err := applyTransition(ctx, tx, loan, tr, actor); err != nil {
			return err
		}

		s.auditSvc.LogWith(ctx, tx.Audit, actor, models.AuditActionApprove, models.AuditEntityLoan, loan.ID, "Loan approved")
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Loan approved", "loan_id", loan.ID)
	return loan, nil
}

// Delete discards a pending loan without payments
func (s *LoanService) Delete(ctx context.Context, id uint, actor Actor) error {
	return s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		loan, err := tx.Loan.FindByIDForUpdate(ctx, id)
		if err != nil {
			return translate(err, "loan")
		}

		count, err := tx.Payment.CountByLoan(ctx, loan.ID)
		if err != nil {
			return fmt.Errorf("failed to count payments: %w", err)
		}

		tr, err := statemachine.NewLoanFSM(loan).Delete(ctx, count)
		if err != nil {
			return transitionError(err)
		}
		if err := applyTransition(ctx, tx, loan, tr, actor); err != nil {
			return err
		}

		s.auditSvc.LogWith(ctx, tx.Audit, actor, models.AuditActionDelete, models.AuditEntityLoan, loan.ID, "Loan deleted")
		return nil
	})
}

func (s *LoanService) FindByID(ctx context.Context, id uint) (*models.Loan, error) {
	loan, err := s.repos.Loan.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err, "loan")
	}
	return loan, nil
}

func (s *LoanService) List(ctx context.Context, query *repository.ListQuery) ([]models.Loan, int64, error) {
	return s.repos.Loan.List(ctx, query)
}

// Schedule returns the loan's amortization schedule
func (s *LoanService) Schedule(ctx context.Context, id uint) (*models.Loan, *amortization.Schedule, error) {
	loan, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	schedule, err := loadSchedule(ctx, s.repos, loan)
	if err != nil {
		return nil, nil, err
	}
	return loan, schedule, nil
}

// Statement reconciles the loan's payments as of now. The loan row lock
// keeps payment writers out while schedule and payments are read.
func (s *LoanService) Statement(ctx context.Context, id uint) (*Statement, error) {
	var statement *Statement
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		loan, err := tx.Loan.FindByIDForUpdate(ctx, id)
		if err != nil {
			return translate(err, "loan")
		}
		schedule, err := loadSchedule(ctx, tx, loan)
		if err != nil {
			return err
		}
		payments, err := tx.Payment.FindByLoan(ctx, loan.ID)
		if err != nil {
			return fmt.Errorf("failed to load payments: %w", err)
		}

		result, err := s.reconciler.Reconcile(schedule, models.PaymentEvents(payments))
		var overpayment *reconciliation.OverpaymentError
		if errors.As(err, &overpayment) {
			// Stored history is never rejected; the flags travel in the result
			logger.Warn("Stored payments exceed the schedule", "loan_id", loan.ID, "error", err)
		} else if err != nil {
			return fmt.Errorf("failed to reconcile loan %d: %w", loan.ID, err)
		}

		asOf := s.now()
		overdue := result.Overdue(asOf)
		statement = &Statement{
			Loan:              loan,
			AsOf:              asOf,
			InstallmentAmount: schedule.InstallmentAmount(),
			TotalPayable:      schedule.TotalPayable(),
			TotalInterest:     schedule.TotalInterest(),
			MaturityDate:      schedule.MaturityDate(),
			PaymentCount:      len(payments),
			AmountInArrears:   result.AmountInArrears(asOf),
			OverdueCount:      len(overdue),
			Reconciliation:    result,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return statement, nil
}

// Transitions returns the loan's lifecycle history, oldest first
func (s *LoanService) Transitions(ctx context.Context, id uint) ([]models.LoanTransition, error) {
	if _, err := s.FindByID(ctx, id); err != nil {
		return nil, err
	}
	return s.repos.Transition.FindByLoan(ctx, id)
}
