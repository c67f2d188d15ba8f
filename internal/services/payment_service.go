package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sjperalta/lendera-api/internal/models"
	"github.com/sjperalta/lendera-api/internal/reconciliation"
	"github.com/sjperalta/lendera-api/internal/repository"
	"github.com/sjperalta/lendera-api/internal/statemachine"
	"github.com/sjperalta/lendera-api/pkg/logger"
)

// RecordPaymentInput is one repayment as reported by the client
type RecordPaymentInput struct {
	Reference string
	Amount    decimal.Decimal
	PaidAt    time.Time
	Method    string
	Note      *string
}

// PaymentReceipt describes a recorded payment and its effect on the loan
type PaymentReceipt struct {
	Payment            *models.Payment             `json:"payment"`
	Replayed           bool                        `json:"replayed"`
	Allocations        []reconciliation.Allocation `json:"allocations"`
	OutstandingBalance decimal.Decimal             `json:"outstanding_balance"`
	IsFullyPaid        bool                        `json:"is_fully_paid"`
	LoanStatus         string                      `json:"loan_status"`
	Transition         *statemachine.Transition    `json:"transition,omitempty"`
}

type PaymentService struct {
	repos      *repository.Repositories
	reconciler *reconciliation.Reconciler
	auditSvc   *AuditService
}

func NewPaymentService(repos *repository.Repositories, reconciler *reconciliation.Reconciler, auditSvc *AuditService) *PaymentService {
	return &PaymentService{
		repos:      repos,
		reconciler: reconciler,
		auditSvc:   auditSvc,
	}
}

// Record appends a payment to an active loan's history.
//
// The client reference makes the call idempotent: repeating it returns the
// stored payment with Replayed set. A payment that would exceed what the
// schedule still requires is rejected with *reconciliation.OverpaymentError
// and nothing is stored. When the payment completes the schedule the loan
// is finished in the same transaction.
func (s *PaymentService) Record(ctx context.Context, loanID uint, input RecordPaymentInput, actor Actor) (*PaymentReceipt, error) {
	draft := &models.Payment{
		LoanID:       loanID,
		Reference:    input.Reference,
		Amount:       input.Amount,
		PaidAt:       input.PaidAt,
		Method:       strings.ToLower(strings.TrimSpace(input.Method)),
		RecordedByID: actor.ref(),
		Note:         input.Note,
	}
	draft.EnsureReference()
	if draft.Method == "" {
		draft.Method = models.PaymentMethodTransfer
	}
	if !models.IsValidPaymentMethod(draft.Method) {
		return nil, &reconciliation.InvalidPaymentError{PaymentID: draft.Reference, Reason: fmt.Sprintf("unknown payment method %q", draft.Method)}
	}
	if err := reconciliation.ValidatePayment(draft.ToEvent()); err != nil {
		return nil, err
	}

	var receipt *PaymentReceipt
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		// Fresh copy per attempt; the transaction may be retried
		payment := *draft
		receipt = nil

		loan, err := tx.Loan.FindByIDForUpdate(ctx, loanID)
		if err != nil {
			return translate(err, "loan")
		}

		existing, err := tx.Payment.FindByReference(ctx, payment.Reference)
		switch {
		case err == nil:
			if existing.LoanID != loanID {
				return fmt.Errorf("payment reference %s belongs to another loan: %w", payment.Reference, ErrDuplicate)
			}
			receipt, err = s.replay(ctx, tx, loan, existing)
			return err
		case !errors.Is(err, repository.ErrNotFound):
			return fmt.Errorf("failed to look up payment reference: %w", err)
		}

		if !loan.AcceptsPayments() {
			return fmt.Errorf("loan %d is %s: %w", loan.ID, loan.Status, ErrLoanNotAcceptingPayments)
		}

		schedule, err := loadSchedule(ctx, tx, loan)
		if err != nil {
			return err
		}
		history, err := tx.Payment.FindByLoan(ctx, loan.ID)
		if err != nil {
			return fmt.Errorf("failed to load payments: %w", err)
		}

		result, err := s.reconciler.Reconcile(schedule, append(models.PaymentEvents(history), payment.ToEvent()))
		var overpayment *reconciliation.OverpaymentError
		if errors.As(err, &overpayment) {
			if overpayment.Involves(payment.Reference) {
				return overpayment
			}
			logger.Warn("Stored payments exceed the schedule", "loan_id", loan.ID, "error", err)
		} else if err != nil {
			return err
		}

		if seq, ok := result.FirstAllocation(payment.Reference); ok {
			payment.MatchedInstallmentSequence = &seq
		}
		if err := tx.Payment.Create(ctx, &payment); err != nil {
			return translate(err, "payment")
		}

		receipt = &PaymentReceipt{
			Payment:            &payment,
			Allocations:        allocationsFor(result, payment.Reference),
			OutstandingBalance: result.OutstandingBalance,
			IsFullyPaid:        result.IsFullyPaid,
		}

		if _, ok := statemachine.RecommendedEvent(loan.Status, result.IsFullyPaid); ok {
			tr, err := statemachine.NewLoanFSM(loan).Finish(ctx, result.IsFullyPaid)
			if err != nil {
				return transitionError(err)
			}
			if err := applyTransition(ctx, tx, loan, tr, actor); err != nil {
				return err
			}
			receipt.Transition = tr
			s.auditSvc.LogWith(ctx, tx.Audit, actor, models.AuditActionFinish, models.AuditEntityLoan, loan.ID, "Loan fully repaid")
		}
		receipt.LoanStatus = loan.Status

		s.auditSvc.LogWith(ctx, tx.Audit, actor, models.AuditActionPayment, models.AuditEntityPayment, payment.ID,
			fmt.Sprintf("Payment %s of %s recorded for loan %d", payment.Reference, payment.Amount.StringFixed(2), loan.ID))
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !receipt.Replayed {
		logger.Info("Payment recorded", "loan_id", loanID, "reference", draft.Reference, "amount", draft.Amount.StringFixed(2))
	}
	return receipt, nil
}

// replay rebuilds the receipt of an already stored payment
func (s *PaymentService) replay(ctx context.Context, tx *repository.Repositories, loan *models.Loan, existing *models.Payment) (*PaymentReceipt, error) {
	receipt := &PaymentReceipt{
		Payment:    existing,
		Replayed:   true,
		LoanStatus: loan.Status,
	}

	schedule, err := loadSchedule(ctx, tx, loan)
	if err != nil {
		return nil, err
	}
	history, err := tx.Payment.FindByLoan(ctx, loan.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load payments: %w", err)
	}
	result, err := s.reconciler.Reconcile(schedule, models.PaymentEvents(history))
	if err != nil && !errors.Is(err, reconciliation.ErrOverpayment) {
		return nil, err
	}

	receipt.Allocations = allocationsFor(result, existing.Reference)
	receipt.OutstandingBalance = result.OutstandingBalance
	receipt.IsFullyPaid = result.IsFullyPaid
	return receipt, nil
}

func allocationsFor(result *reconciliation.Result, reference string) []reconciliation.Allocation {
	var out []reconciliation.Allocation
	for _, alloc := range result.Allocations {
		if alloc.PaymentID == reference {
			out = append(out, alloc)
		}
	}
	return out
}

// ListByLoan pages through a loan's payments
func (s *PaymentService) ListByLoan(ctx context.Context, loanID uint, query *repository.ListQuery) ([]models.Payment, int64, error) {
	if _, err := s.repos.Loan.FindByID(ctx, loanID); err != nil {
		return nil, 0, translate(err, "loan")
	}
	return s.repos.Payment.ListByLoan(ctx, loanID, query)
}
