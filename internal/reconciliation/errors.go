package reconciliation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidPayment is matched by every *InvalidPaymentError
	ErrInvalidPayment = errors.New("invalid payment")
	// ErrOverpayment is matched by every *OverpaymentError
	ErrOverpayment = errors.New("overpayment")
)

// InvalidPaymentError rejects a payment before any allocation happens
type InvalidPaymentError struct {
	PaymentID string
	Reason    string
}

func (e *InvalidPaymentError) Error() string {
	if e.PaymentID == "" {
		return fmt.Sprintf("invalid payment: %s", e.Reason)
	}
	return fmt.Sprintf("invalid payment %s: %s", e.PaymentID, e.Reason)
}

func (e *InvalidPaymentError) Is(target error) bool {
	return target == ErrInvalidPayment
}

// Overpayment is the part of a payment that found no unsatisfied installment
type Overpayment struct {
	PaymentID string          `json:"payment_id"`
	Amount    decimal.Decimal `json:"amount"`
	Excess    decimal.Decimal `json:"excess"`
}

// OverpaymentError flags payments that exceeded what the schedule still
// required. The reconciliation result it accompanies is complete and valid.
type OverpaymentError struct {
	Overpayments []Overpayment
}

func (e *OverpaymentError) Error() string {
	parts := make([]string, 0, len(e.Overpayments))
	for _, op := range e.Overpayments {
		parts = append(parts, fmt.Sprintf("payment %s exceeds the outstanding schedule by %s", op.PaymentID, op.Excess.StringFixed(2)))
	}
	return "overpayment: " + strings.Join(parts, "; ")
}

func (e *OverpaymentError) Is(target error) bool {
	return target == ErrOverpayment
}

// Involves reports whether the payment with the given ID was flagged
func (e *OverpaymentError) Involves(paymentID string) bool {
	for _, op := range e.Overpayments {
		if op.PaymentID == paymentID {
			return true
		}
	}
	return false
}
