package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sjperalta/lendera-api/internal/services"
)

type JobHandler struct {
	jobService         *services.JobService
	maintenanceService *services.MaintenanceService
}

func NewJobHandler(jobSvc *services.JobService, maintenanceSvc *services.MaintenanceService) *JobHandler {
	return &JobHandler{
		jobService:         jobSvc,
		maintenanceService: maintenanceSvc,
	}
}

// Status returns the current worker status
// @Summary Get background job status
// @Description Get statistics about background jobs (active, completed, failed, queue length, per-job runs)
// @Tags Jobs
// @Produce json
// @Success 200 {object} jobs.WorkerStats
// @Router /jobs/status [get]
func (h *JobHandler) Status(c *gin.Context) {
	status := h.jobService.GetStatus()
	c.JSON(http.StatusOK, status)
}

// Reconcile runs the reconciliation sweep now
// @Summary Run reconciliation sweep
// @Description Re-reconcile every active loan, finishing those fully repaid
// @Tags Jobs
// @Produce json
// @Param X-Actor-ID header int true "Acting user"
// @Success 200 {object} services.SweepReport
// @Failure 401,500 {object} map[string]interface{}
// @Router /jobs/reconcile [post]
func (h *JobHandler) Reconcile(c *gin.Context) {
	report, err := h.maintenanceService.ReconcileActiveLoans(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "report": report})
		return
	}
	c.JSON(http.StatusOK, report)
}
