package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/sjperalta/lendera-api/internal/reconciliation"
)

// Payment is one recorded repayment against a loan. Rows are append-only.
type Payment struct {
	ID                         uint            `gorm:"primaryKey" json:"id"`
	LoanID                     uint            `gorm:"not null;index" json:"loan_id"`
	Reference                  string          `gorm:"size:64;not null;uniqueIndex" json:"reference"`
	Amount                     decimal.Decimal `gorm:"type:numeric(15,2);not null" json:"amount"`
	PaidAt                     time.Time       `gorm:"not null;index" json:"paid_at"`
	Method                     string          `gorm:"size:30;default:transfer;not null" json:"method"`
	MatchedInstallmentSequence *int            `json:"matched_installment_sequence"`
	RecordedByID               *uint           `gorm:"index" json:"recorded_by_id"`
	Note                       *string         `gorm:"type:text" json:"note"`
	CreatedAt                  time.Time       `gorm:"index" json:"created_at"`
}

// TableName specifies the table name for Payment
func (Payment) TableName() string {
	return "payments"
}

// Payment method constants
const (
	PaymentMethodCash     = "cash"
	PaymentMethodTransfer = "transfer"
	PaymentMethodCheck    = "check"
	PaymentMethodCard     = "card"
	PaymentMethodDebit    = "direct_debit"
)

// IsValidPaymentMethod reports whether m is a known payment method
func IsValidPaymentMethod(m string) bool {
	switch m {
	case PaymentMethodCash, PaymentMethodTransfer, PaymentMethodCheck, PaymentMethodCard, PaymentMethodDebit:
		return true
	}
	return false
}

// BeforeCreate hook for setting defaults
func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	p.EnsureReference()
	if p.Method == "" {
		p.Method = PaymentMethodTransfer
	}
	return nil
}

// EnsureReference assigns a random reference when the client did not send one
func (p *Payment) EnsureReference() {
	p.Reference = strings.TrimSpace(p.Reference)
	if p.Reference == "" {
		p.Reference = uuid.NewString()
	}
}

// ToEvent converts the stored payment into the reconciler's input
func (p *Payment) ToEvent() reconciliation.PaymentEvent {
	return reconciliation.PaymentEvent{
		ID:                         p.Reference,
		LoanID:                     p.LoanID,
		Amount:                     p.Amount,
		PaidAt:                     p.PaidAt,
		Method:                     p.Method,
		MatchedInstallmentSequence: p.MatchedInstallmentSequence,
	}
}

// PaymentEvents converts a payment history for reconciliation
func PaymentEvents(payments []Payment) []reconciliation.PaymentEvent {
	events := make([]reconciliation.PaymentEvent, 0, len(payments))
	for i := range payments {
		events = append(events, payments[i].ToEvent())
	}
	return events
}
