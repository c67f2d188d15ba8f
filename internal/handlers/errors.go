package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sjperalta/lendera-api/internal/amortization"
	"github.com/sjperalta/lendera-api/internal/reconciliation"
	"github.com/sjperalta/lendera-api/internal/services"
)

// respondError maps service errors onto HTTP responses
func respondError(c *gin.Context, err error) {
	var (
		termsErr    *amortization.InvalidLoanTermsError
		paymentErr  *reconciliation.InvalidPaymentError
		overpayment *reconciliation.OverpaymentError
	)

	switch {
	case errors.As(err, &termsErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "field": termsErr.Field})
	case errors.As(err, &paymentErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.As(err, &overpayment):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "overpayments": overpayment.Overpayments})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidState),
		errors.Is(err, services.ErrLoanNotEditable),
		errors.Is(err, services.ErrLoanNotAcceptingPayments),
		errors.Is(err, services.ErrDuplicate):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
