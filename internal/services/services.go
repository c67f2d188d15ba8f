package services

import (
	"github.com/sjperalta/lendera-api/internal/config"
	"github.com/sjperalta/lendera-api/internal/jobs"
	"github.com/sjperalta/lendera-api/internal/reconciliation"
	"github.com/sjperalta/lendera-api/internal/repository"
)

// Services holds all service instances
type Services struct {
	Loan        *LoanService
	Payment     *PaymentService
	Maintenance *MaintenanceService
	Audit       *AuditService
	Export      *ExportService
	Job         *JobService
}

// NewServices creates all service instances
func NewServices(repos *repository.Repositories, worker *jobs.Worker, cfg *config.Config) *Services {
	reconciler := reconciliation.New(reconciliation.WithEpsilon(cfg.ReconcileEpsilon))
	auditSvc := NewAuditService(repos.Audit)

	return &Services{
		Loan:        NewLoanService(repos, reconciler, auditSvc),
		Payment:     NewPaymentService(repos, reconciler, auditSvc),
		Maintenance: NewMaintenanceService(repos, reconciler, auditSvc),
		Audit:       auditSvc,
		Export:      NewExportService(),
		Job:         NewJobService(worker),
	}
}
