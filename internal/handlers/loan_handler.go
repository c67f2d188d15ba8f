package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/sjperalta/lendera-api/internal/amortization"
	"github.com/sjperalta/lendera-api/internal/models"
	"github.com/sjperalta/lendera-api/internal/services"
	"github.com/sjperalta/lendera-api/internal/statemachine"
)

type LoanHandler struct {
	loanService *services.LoanService
}

func NewLoanHandler(loanService *services.LoanService) *LoanHandler {
	return &LoanHandler{loanService: loanService}
}

// LoanTermsRequest carries amortization inputs. Amounts may be JSON strings or numbers.
type LoanTermsRequest struct {
	Principal    decimal.Decimal `json:"principal" swaggertype:"string" example:"120000.00"`
	AnnualRate   decimal.Decimal `json:"annual_rate" swaggertype:"string" example:"0.12"`
	TenureMonths int             `json:"tenure_months" example:"12"`
	StartDate    string          `json:"start_date" example:"2024-01-01"`
}

func (r LoanTermsRequest) toTerms() (amortization.LoanTerms, error) {
	terms := amortization.LoanTerms{
		Principal:    r.Principal,
		AnnualRate:   r.AnnualRate,
		TenureMonths: r.TenureMonths,
	}
	if strings.TrimSpace(r.StartDate) != "" {
		start, err := parseDate(r.StartDate)
		if err != nil {
			return terms, &amortization.InvalidLoanTermsError{Field: "start_date", Reason: "must be formatted YYYY-MM-DD"}
		}
		terms.StartDate = start
	}
	return terms, nil
}

type CreateLoanRequest struct {
	BorrowerID uint `json:"borrower_id" example:"7"`
	LoanTermsRequest
	Currency string  `json:"currency" example:"USD"`
	Note     *string `json:"note"`
}

type UpdateLoanRequest struct {
	Principal    *decimal.Decimal `json:"principal" swaggertype:"string"`
	AnnualRate   *decimal.Decimal `json:"annual_rate" swaggertype:"string"`
	TenureMonths *int             `json:"tenure_months"`
	StartDate    *string          `json:"start_date"`
	Note         *string          `json:"note"`
}

// parseDate accepts a calendar date or a full RFC 3339 timestamp
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// @Summary List Loans
// @Description Get a paginated list of loans
// @Tags Loans
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param status query string false "Filter by status" Enums(pending, active, finished, deleted)
// @Param borrower_id query int false "Filter by borrower"
// @Param sort_by query string false "Sort column" Enums(id, created_at, principal, start_date)
// @Param sort_dir query string false "Sort direction" Enums(asc, desc)
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Router /loans [get]
func (h *LoanHandler) Index(c *gin.Context) {
	query := listQuery(c)
	if status := c.Query("status"); status != "" {
		if !models.IsValidLoanStatus(status) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status " + status})
			return
		}
		query.Filters["status"] = status
	}
	if borrowerID := c.Query("borrower_id"); borrowerID != "" {
		query.Filters["borrower_id"] = borrowerID
	}

	loans, total, err := h.loanService.List(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}
	if loans == nil {
		loans = []models.Loan{}
	}

	c.JSON(http.StatusOK, gin.H{
		"loans":      loans,
		"pagination": pagination(query, total),
	})
}

// @Summary Create Loan
// @Description Submit a loan. It starts pending with its schedule computed.
// @Tags Loans
// @Accept json
// @Produce json
// @Param X-Actor-ID header int true "Acting user"
// @Param loan body CreateLoanRequest true "Loan terms"
// @Success 201 {object} map[string]interface{}
// @Failure 400,401,422 {object} map[string]string
// @Router /loans [post]
func (h *LoanHandler) Create(c *gin.Context) {
	var req CreateLoanRequest
	if err := bindPayload(c, "loan", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	terms, err := req.toTerms()
	if err != nil {
		respondError(c, err)
		return
	}

	loan, err := h.loanService.Create(c.Request.Context(), services.CreateLoanInput{
		BorrowerID: req.BorrowerID,
		Terms:      terms,
		Currency:   strings.ToUpper(strings.TrimSpace(req.Currency)),
		Note:       req.Note,
	}, actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"loan": loan})
}

// @Summary Get Loan
// @Description Get a loan and the lifecycle events it currently accepts
// @Tags Loans
// @Produce json
// @Param loan_id path int true "Loan ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400,404 {object} map[string]string
// @Router /loans/{loan_id} [get]
func (h *LoanHandler) Show(c *gin.Context) {
	id, ok := paramID(c, "loan_id")
	if !ok {
		return
	}
	loan, err := h.loanService.FindByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"loan":             loan,
		"available_events": statemachine.NewLoanFSM(loan).AvailableEvents(),
	})
}

// @Summary Update Loan Terms
// @Description Change the terms of a pending loan; the schedule is recomputed
// @Tags Loans
// @Accept json
// @Produce json
// @Param X-Actor-ID header int true "Acting user"
// @Param loan_id path int true "Loan ID"
// @Param loan body UpdateLoanRequest true "Fields to change"
// @Success 200 {object} map[string]interface{}
// @Failure 400,401,404,409,422 {object} map[string]string
// @Router /loans/{loan_id} [patch]
func (h *LoanHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "loan_id")
	if !ok {
		return
	}
	var req UpdateLoanRequest
	if err := bindPayload(c, "loan", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := services.UpdateLoanInput{
		Principal:    req.Principal,
		AnnualRate:   req.AnnualRate,
		TenureMonths: req.TenureMonths,
		Note:         req.Note,
	}
	if req.StartDate != nil {
		start, err := parseDate(*req.StartDate)
		if err != nil {
			respondError(c, &amortization.InvalidLoanTermsError{Field: "start_date", Reason: "must be formatted YYYY-MM-DD"})
			return
		}
		input.StartDate = &start
	}

	loan, err := h.loanService.UpdateTerms(c.Request.Context(), id, input, actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"loan": loan})
}

// @Summary Approve Loan
// @Description Move a pending loan to active
// @Tags Loans
// @Produce json
// @Param X-Actor-ID header int true "Acting user"
// @Param loan_id path int true "Loan ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400,401,404,409 {object} map[string]string
// @Router /loans/{loan_id}/approve [post]
func (h *LoanHandler) Approve(c *gin.Context) {
	id, ok := paramID(c, "loan_id")
	if !ok {
		return
	}
	loan, err := h.loanService.Approve(c.Request.Context(), id, actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"loan": loan})
}

// @Summary Delete Loan
// @Description Discard a pending loan that has no payments
// @Tags Loans
// @Produce json
// @Param X-Actor-ID header int true "Acting user"
// @Param loan_id path int true "Loan ID"
// @Success 200 {object} map[string]string
// @Failure 400,401,404,409 {object} map[string]string
// @Router /loans/{loan_id} [delete]
func (h *LoanHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "loan_id")
	if !ok {
		return
	}
	if err := h.loanService.Delete(c.Request.Context(), id, actorFrom(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "loan deleted"})
}

// @Summary Loan Transitions
// @Description Lifecycle history of a loan, oldest first
// @Tags Loans
// @Produce json
// @Param loan_id path int true "Loan ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400,404 {object} map[string]string
// @Router /loans/{loan_id}/transitions [get]
func (h *LoanHandler) Transitions(c *gin.Context) {
	id, ok := paramID(c, "loan_id")
	if !ok {
		return
	}
	transitions, err := h.loanService.Transitions(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if transitions == nil {
		transitions = []models.LoanTransition{}
	}
	c.JSON(http.StatusOK, gin.H{"transitions": transitions})
}
