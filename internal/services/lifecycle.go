package services

import (
	"context"
	"fmt"

	"github.com/sjperalta/lendera-api/internal/amortization"
	"github.com/sjperalta/lendera-api/internal/models"
	"github.com/sjperalta/lendera-api/internal/repository"
	"github.com/sjperalta/lendera-api/internal/statemachine"
	"github.com/sjperalta/lendera-api/pkg/logger"
)

// EventCreate labels the transition row written when a loan is submitted
const EventCreate = "create"

// loadSchedule returns the cached schedule when it still matches the loan's
// terms and regenerates (and re-caches) it otherwise.
func loadSchedule(ctx context.Context, repos *repository.Repositories, loan *models.Loan) (*amortization.Schedule, error) {
	terms := loan.Terms()

	rows, err := repos.Installment.FindByLoan(ctx, loan.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load installments: %w", err)
	}
	if cacheFresh(rows, terms) {
		return models.ToSchedule(terms, rows), nil
	}

	schedule, err := amortization.GenerateSchedule(terms)
	if err != nil {
		return nil, err
	}

	if len(rows) > 0 {
		logger.Warn("Cached schedule is stale, regenerating", "loan_id", loan.ID)
	}
	if err := repos.Installment.ReplaceForLoan(ctx, loan.ID, models.NewInstallments(loan.ID, schedule)); err != nil {
		logger.Error("Failed to cache schedule", "loan_id", loan.ID, "error", err)
	}
	return schedule, nil
}

func cacheFresh(rows []models.Installment, terms amortization.LoanTerms) bool {
	if len(rows) == 0 || len(rows) != terms.TenureMonths {
		return false
	}
	fingerprint := terms.Fingerprint()
	for i, row := range rows {
		if row.Sequence != i+1 || row.TermsFingerprint != fingerprint {
			return false
		}
	}
	return true
}

// applyTransition persists the loan after an FSM transition together with
// its history row
func applyTransition(ctx context.Context, tx *repository.Repositories, loan *models.Loan, tr *statemachine.Transition, actor Actor) error {
	if err := tx.Loan.Update(ctx, loan); err != nil {
		return fmt.Errorf("failed to update loan: %w", err)
	}
	return recordTransition(ctx, tx, loan.ID, tr, actor)
}

func recordTransition(ctx context.Context, tx *repository.Repositories, loanID uint, tr *statemachine.Transition, actor Actor) error {
	row := &models.LoanTransition{
		LoanID:     loanID,
		FromStatus: tr.From,
		ToStatus:   tr.To,
		Event:      tr.Event,
		Reason:     tr.Reason,
		ActorID:    actor.ref(),
	}
	if err := tx.Transition.Create(ctx, row); err != nil {
		return fmt.Errorf("failed to record transition: %w", err)
	}
	return nil
}

// transitionError tags FSM rejections with ErrInvalidState
func transitionError(err error) error {
	return fmt.Errorf("%w: %w", ErrInvalidState, err)
}
