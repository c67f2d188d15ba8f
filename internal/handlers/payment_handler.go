package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/sjperalta/lendera-api/internal/middleware"
	"github.com/sjperalta/lendera-api/internal/models"
	"github.com/sjperalta/lendera-api/internal/reconciliation"
	"github.com/sjperalta/lendera-api/internal/services"
)

type PaymentHandler struct {
	paymentService *services.PaymentService
}

func NewPaymentHandler(paymentService *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// RecordPaymentRequest is one repayment. Reference falls back to the
// Idempotency-Key header and is generated when both are empty.
type RecordPaymentRequest struct {
	Reference string          `json:"reference" example:"bank-2024-0001"`
	Amount    decimal.Decimal `json:"amount" swaggertype:"string" example:"10661.85"`
	PaidAt    string          `json:"paid_at" example:"2024-01-01"`
	Method    string          `json:"method" example:"transfer"`
	Note      *string         `json:"note"`
}

// @Summary List Loan Payments
// @Description Get a paginated list of a loan's payments
// @Tags Payments
// @Produce json
// @Param loan_id path int true "Loan ID"
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param method query string false "Filter by method"
// @Param sort_by query string false "Sort column" Enums(paid_at, amount, created_at)
// @Param sort_dir query string false "Sort direction" Enums(asc, desc)
// @Success 200 {object} map[string]interface{}
// @Failure 400,404 {object} map[string]string
// @Router /loans/{loan_id}/payments [get]
func (h *PaymentHandler) Index(c *gin.Context) {
	loanID, ok := paramID(c, "loan_id")
	if !ok {
		return
	}
	query := listQuery(c)
	if method := c.Query("method"); method != "" {
		query.Filters["method"] = strings.ToLower(method)
	}

	payments, total, err := h.paymentService.ListByLoan(c.Request.Context(), loanID, query)
	if err != nil {
		respondError(c, err)
		return
	}
	if payments == nil {
		payments = []models.Payment{}
	}

	c.JSON(http.StatusOK, gin.H{
		"payments":   payments,
		"pagination": pagination(query, total),
	})
}

// @Summary Record Payment
// @Description Append a repayment to an active loan. Repeating a reference returns the stored payment.
// @Tags Payments
// @Accept json
// @Produce json
// @Param X-Actor-ID header int true "Acting user"
// @Param Idempotency-Key header string false "Payment reference"
// @Param loan_id path int true "Loan ID"
// @Param payment body RecordPaymentRequest true "Payment"
// @Success 201 {object} services.PaymentReceipt
// @Success 200 {object} services.PaymentReceipt "Replayed"
// @Failure 400,401,404,409,422 {object} map[string]string
// @Router /loans/{loan_id}/payments [post]
func (h *PaymentHandler) Create(c *gin.Context) {
	loanID, ok := paramID(c, "loan_id")
	if !ok {
		return
	}
	var req RecordPaymentRequest
	if err := bindPayload(c, "payment", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := services.RecordPaymentInput{
		Reference: strings.TrimSpace(req.Reference),
		Amount:    req.Amount,
		Method:    req.Method,
		Note:      req.Note,
	}
	if input.Reference == "" {
		input.Reference = strings.TrimSpace(c.GetHeader(middleware.IdempotencyHeader))
	}
	if strings.TrimSpace(req.PaidAt) != "" {
		paidAt, err := parseDate(req.PaidAt)
		if err != nil {
			respondError(c, &reconciliation.InvalidPaymentError{PaymentID: input.Reference, Reason: "paid_at must be formatted YYYY-MM-DD"})
			return
		}
		input.PaidAt = paidAt
	}

	receipt, err := h.paymentService.Record(c.Request.Context(), loanID, input, actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}

	status := http.StatusCreated
	if receipt.Replayed {
		status = http.StatusOK
	}
	c.JSON(status, receipt)
}
