package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sjperalta/lendera-api/internal/middleware"
	"github.com/sjperalta/lendera-api/internal/repository"
	"github.com/sjperalta/lendera-api/internal/services"
)

// Handlers holds all handler instances
type Handlers struct {
	Health   *HealthHandler
	Loan     *LoanHandler
	Schedule *ScheduleHandler
	Payment  *PaymentHandler
	Audit    *AuditHandler
	Job      *JobHandler
}

// NewHandlers creates all handler instances
func NewHandlers(svcs *services.Services) *Handlers {
	return &Handlers{
		Health:   NewHealthHandler(),
		Loan:     NewLoanHandler(svcs.Loan),
		Schedule: NewScheduleHandler(svcs.Loan, svcs.Export),
		Payment:  NewPaymentHandler(svcs.Payment),
		Audit:    NewAuditHandler(svcs.Audit),
		Job:      NewJobHandler(svcs.Job, svcs.Maintenance),
	}
}

// RegisterRoutes mounts the API on v1. Reads are open; writes need an actor.
func (h *Handlers) RegisterRoutes(v1 *gin.RouterGroup) {
	v1.GET("/health", h.Health.Index)

	v1.Use(middleware.Actor())
	write := middleware.RequireActor()

	v1.POST("/schedules/preview", h.Schedule.Preview)

	loans := v1.Group("/loans")
	{
		loans.GET("", h.Loan.Index)
		loans.POST("", write, h.Loan.Create)
		loans.GET("/:loan_id", h.Loan.Show)
		loans.PATCH("/:loan_id", write, h.Loan.Update)
		loans.DELETE("/:loan_id", write, h.Loan.Delete)
		loans.POST("/:loan_id/approve", write, h.Loan.Approve)
		loans.GET("/:loan_id/transitions", h.Loan.Transitions)

		loans.GET("/:loan_id/schedule", h.Schedule.Show)
		loans.GET("/:loan_id/statement", h.Schedule.Statement)

		loans.GET("/:loan_id/payments", h.Payment.Index)
		loans.POST("/:loan_id/payments", write, h.Payment.Create)
	}

	v1.GET("/audits", h.Audit.Index)

	v1.GET("/jobs/status", h.Job.Status)
	v1.POST("/jobs/reconcile", write, h.Job.Reconcile)
}

type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// @Summary Health Check
// @Description Checks if the API is running
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func (h *HealthHandler) Index(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "lendera-api",
		"version": "1.0.0",
	})
}

// actorFrom builds the service actor for the current request
func actorFrom(c *gin.Context) services.Actor {
	return services.Actor{
		ID:        middleware.GetActorID(c),
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
}

// paramID parses a positive numeric path parameter, answering 400 otherwise
func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return uint(id), true
}

// listQuery reads the paging and sorting parameters shared by list endpoints
func listQuery(c *gin.Context) *repository.ListQuery {
	query := repository.NewListQuery()
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	query.Search = strings.TrimSpace(c.Query("search_term"))
	query.SortBy = c.Query("sort_by")
	query.SortDir = c.Query("sort_dir")
	query.Normalize()
	return query
}

func pagination(query *repository.ListQuery, total int64) gin.H {
	return gin.H{
		"page":        query.Page,
		"per_page":    query.PerPage,
		"total":       total,
		"total_pages": (total + int64(query.PerPage) - 1) / int64(query.PerPage),
	}
}
