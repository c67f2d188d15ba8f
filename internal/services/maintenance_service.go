package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sjperalta/lendera-api/internal/jobs"
	"github.com/sjperalta/lendera-api/internal/models"
	"github.com/sjperalta/lendera-api/internal/reconciliation"
	"github.com/sjperalta/lendera-api/internal/repository"
	"github.com/sjperalta/lendera-api/internal/statemachine"
	"github.com/sjperalta/lendera-api/pkg/logger"
)

// ReconcileJobName identifies the sweep in worker statistics
const ReconcileJobName = "reconcile-active-loans"

// SweepReport summarizes one reconciliation sweep
type SweepReport struct {
	Checked   int `json:"checked"`
	Finished  int `json:"finished"`
	InArrears int `json:"in_arrears"`
	Failed    int `json:"failed"`
}

type MaintenanceService struct {
	repos      *repository.Repositories
	reconciler *reconciliation.Reconciler
	auditSvc   *AuditService
	now        func() time.Time
}

func NewMaintenanceService(repos *repository.Repositories, reconciler *reconciliation.Reconciler, auditSvc *AuditService) *MaintenanceService {
	return &MaintenanceService{
		repos:      repos,
		reconciler: reconciler,
		auditSvc:   auditSvc,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Schedule registers the sweep with the background worker
func (s *MaintenanceService) Schedule(worker *jobs.Worker, interval time.Duration) {
	log := logger.With("job", ReconcileJobName, "interval", interval.String())
	worker.ScheduleEveryImmediate(ReconcileJobName, interval, func(ctx context.Context) error {
		report, err := s.ReconcileActiveLoans(ctx)
		if report != nil {
			log.Info("Reconciliation sweep finished",
				"checked", report.Checked, "finished", report.Finished,
				"in_arrears", report.InArrears, "failed", report.Failed)
		}
		return err
	})
}

// ReconcileActiveLoans re-reconciles every active loan, finishing the ones
// whose schedule is fully paid. Per-loan failures do not stop the sweep;
// they are joined into the returned error.
func (s *MaintenanceService) ReconcileActiveLoans(ctx context.Context) (*SweepReport, error) {
	loans, err := s.repos.Loan.FindByStatus(ctx, models.LoanStatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to list active loans: %w", err)
	}

	report := &SweepReport{}
	var errs []error
	asOf := s.now()

	for _, loan := range loans {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		report.Checked++

		finished, arrears, err := s.reconcileLoan(ctx, loan.ID, asOf)
		if err != nil {
			report.Failed++
			errs = append(errs, fmt.Errorf("loan %d: %w", loan.ID, err))
			continue
		}
		if finished {
			report.Finished++
		}
		if arrears.IsPositive() {
			report.InArrears++
			logger.Warn("Loan in arrears", "loan_id", loan.ID, "amount", arrears.StringFixed(2))
		}
	}

	return report, errors.Join(errs...)
}

func (s *MaintenanceService) reconcileLoan(ctx context.Context, loanID uint, asOf time.Time) (bool, decimal.Decimal, error) {
	finished := false
	arrears := decimal.Zero

	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		loan, err := tx.Loan.FindByIDForUpdate(ctx, loanID)
		if err != nil {
			return translate(err, "loan")
		}
		// Status may have moved since the listing
		if loan.Status != models.LoanStatusActive {
			return nil
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
		if errors.Is(err, reconciliation.ErrOverpayment) {
			logger.Warn("Stored payments exceed the schedule", "loan_id", loan.ID, "error", err)
		} else if err != nil {
			return err
		}

		arrears = result.AmountInArrears(asOf)

		if _, ok := statemachine.RecommendedEvent(loan.Status, result.IsFullyPaid); !ok {
			return nil
		}
		tr, err := statemachine.NewLoanFSM(loan).Finish(ctx, result.IsFullyPaid)
		if err != nil {
			return transitionError(err)
		}
		if err := applyTransition(ctx, tx, loan, tr, SystemActor); err != nil {
			return err
		}
		s.auditSvc.LogWith(ctx, tx.Audit, SystemActor, models.AuditActionFinish, models.AuditEntityLoan, loan.ID,
			"Loan fully repaid, finished by reconciliation sweep")
		finished = true
		return nil
	})
	return finished, arrears, err
}
