package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/sjperalta/lendera-api/internal/amortization"
	"github.com/sjperalta/lendera-api/internal/services"
)

const (
	contentTypeCSV  = "text/csv"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypePDF  = "application/pdf"
)

type ScheduleHandler struct {
	loanService   *services.LoanService
	exportService *services.ExportService
}

func NewScheduleHandler(loanService *services.LoanService, exportService *services.ExportService) *ScheduleHandler {
	return &ScheduleHandler{loanService: loanService, exportService: exportService}
}

// ScheduleResponse is the JSON rendering of an amortization schedule
type ScheduleResponse struct {
	LoanID            uint                       `json:"loan_id,omitempty"`
	Terms             amortization.LoanTerms     `json:"terms"`
	InstallmentAmount decimal.Decimal            `json:"installment_amount" swaggertype:"string"`
	TotalInterest     decimal.Decimal            `json:"total_interest" swaggertype:"string"`
	TotalPayable      decimal.Decimal            `json:"total_payable" swaggertype:"string"`
	MaturityDate      time.Time                  `json:"maturity_date"`
	Installments      []amortization.Installment `json:"installments"`
}

func newScheduleResponse(loanID uint, schedule *amortization.Schedule) ScheduleResponse {
	return ScheduleResponse{
		LoanID:            loanID,
		Terms:             schedule.Terms,
		InstallmentAmount: schedule.InstallmentAmount(),
		TotalInterest:     schedule.TotalInterest(),
		TotalPayable:      schedule.TotalPayable(),
		MaturityDate:      schedule.MaturityDate(),
		Installments:      schedule.Installments,
	}
}

// renderSchedule writes the schedule in the format named by ?format
func (h *ScheduleHandler) renderSchedule(c *gin.Context, loanID uint, schedule *amortization.Schedule) {
	var (
		data        []byte
		filename    string
		contentType string
		err         error
	)

	switch format := c.DefaultQuery("format", "json"); format {
	case "json":
		c.JSON(http.StatusOK, newScheduleResponse(loanID, schedule))
		return
	case "csv":
		data, filename, err = h.exportService.ScheduleCSV(loanID, schedule)
		contentType = contentTypeCSV
	case "xlsx":
		data, filename, err = h.exportService.ScheduleXLSX(loanID, schedule)
		contentType = contentTypeXLSX
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unsupported format %q", format)})
		return
	}

	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, contentType, data)
}

// @Summary Preview Schedule
// @Description Compute an amortization schedule without creating a loan
// @Tags Schedules
// @Accept json
// @Produce json,text/csv,application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param terms body LoanTermsRequest true "Loan terms"
// @Param format query string false "Output format" Enums(json, csv, xlsx) default(json)
// @Success 200 {object} ScheduleResponse
// @Failure 400,422 {object} map[string]string
// @Router /schedules/preview [post]
func (h *ScheduleHandler) Preview(c *gin.Context) {
	var req LoanTermsRequest
	if err := bindPayload(c, "terms", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	terms, err := req.toTerms()
	if err != nil {
		respondError(c, err)
		return
	}

	schedule, err := h.loanService.Preview(terms)
	if err != nil {
		respondError(c, err)
		return
	}
	h.renderSchedule(c, 0, schedule)
}

// @Summary Loan Schedule
// @Description Get the amortization schedule of a loan
// @Tags Schedules
// @Produce json,text/csv,application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param loan_id path int true "Loan ID"
// @Param format query string false "Output format" Enums(json, csv, xlsx) default(json)
// @Success 200 {object} ScheduleResponse
// @Failure 400,404 {object} map[string]string
// @Router /loans/{loan_id}/schedule [get]
func (h *ScheduleHandler) Show(c *gin.Context) {
	id, ok := paramID(c, "loan_id")
	if !ok {
		return
	}
	loan, schedule, err := h.loanService.Schedule(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	h.renderSchedule(c, loan.ID, schedule)
}

// @Summary Loan Statement
// @Description Reconcile the loan's payments against its schedule as of today
// @Tags Schedules
// @Produce json,application/pdf
// @Param loan_id path int true "Loan ID"
// @Param format query string false "Output format" Enums(json, pdf) default(json)
// @Success 200 {object} services.Statement
// @Failure 400,404 {object} map[string]string
// @Router /loans/{loan_id}/statement [get]
func (h *ScheduleHandler) Statement(c *gin.Context) {
	id, ok := paramID(c, "loan_id")
	if !ok {
		return
	}
	statement, err := h.loanService.Statement(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	switch format := c.DefaultQuery("format", "json"); format {
	case "json":
		c.JSON(http.StatusOK, statement)
	case "pdf":
		data, filename, err := h.exportService.StatementPDF(statement)
		if err != nil {
			respondError(c, err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
		c.Data(http.StatusOK, contentTypePDF, data)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unsupported format %q", format)})
	}
}
