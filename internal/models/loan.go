package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/sjperalta/lendera-api/internal/amortization"
)

// Loan represents a borrower's loan and its contractual terms
type Loan struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	BorrowerID   uint            `gorm:"not null;index" json:"borrower_id"`
	CreatorID    *uint           `gorm:"index" json:"creator_id"`
	Principal    decimal.Decimal `gorm:"type:numeric(15,2);not null" json:"principal"`
	AnnualRate   decimal.Decimal `gorm:"type:numeric(9,6);not null" json:"annual_rate"`
	TenureMonths int             `gorm:"not null" json:"tenure_months"`
	StartDate    time.Time       `gorm:"type:date;not null" json:"start_date"`
	Currency     string          `gorm:"size:3;default:USD;not null" json:"currency"`
	Status       string          `gorm:"size:20;default:pending;not null;index" json:"status"`
	Note         *string         `gorm:"type:text" json:"note"`
	ApprovedAt   *time.Time      `gorm:"index" json:"approved_at"`
	FinishedAt   *time.Time      `json:"finished_at"`
	DiscardedAt  *time.Time      `gorm:"index" json:"discarded_at"`
	CreatedAt    time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`

	// Associations
	Payments []Payment `gorm:"foreignKey:LoanID" json:"payments,omitempty"`
}

// TableName specifies the table name for Loan
func (Loan) TableName() string {
	return "loans"
}

// Loan status constants
const (
	LoanStatusPending  = "pending"
	LoanStatusActive   = "active"
	LoanStatusFinished = "finished"
	LoanStatusDeleted  = "deleted"
)

// IsValidLoanStatus reports whether s is a known loan status
func IsValidLoanStatus(s string) bool {
	switch s {
	case LoanStatusPending, LoanStatusActive, LoanStatusFinished, LoanStatusDeleted:
		return true
	}
	return false
}

// MayEdit returns true if the loan terms can still be changed
func (l *Loan) MayEdit() bool {
	return l.Status == LoanStatusPending
}

// MayApprove returns true if the loan can be approved
func (l *Loan) MayApprove() bool {
	return l.Status == LoanStatusPending
}

// MayDelete returns true if the loan is in a state that allows deletion.
// Recorded payments also block deletion; that check needs the payment history.
func (l *Loan) MayDelete() bool {
	return l.Status == LoanStatusPending
}

// MayFinish returns true if the loan is in a state that can be finished
func (l *Loan) MayFinish() bool {
	return l.Status == LoanStatusActive
}

// AcceptsPayments returns true if payments can be recorded against the loan
func (l *Loan) AcceptsPayments() bool {
	return l.Status == LoanStatusActive
}

// IsTerminal returns true once no further transitions are possible
func (l *Loan) IsTerminal() bool {
	return l.Status == LoanStatusFinished || l.Status == LoanStatusDeleted
}

// IsDiscarded returns true if the loan was soft-deleted
func (l *Loan) IsDiscarded() bool {
	return l.DiscardedAt != nil
}

// Terms returns the loan's amortization inputs
func (l *Loan) Terms() amortization.LoanTerms {
	return amortization.LoanTerms{
		Principal:    l.Principal,
		AnnualRate:   l.AnnualRate,
		TenureMonths: l.TenureMonths,
		StartDate:    l.StartDate,
	}
}

// ApplyTerms copies normalized terms onto the loan
func (l *Loan) ApplyTerms(terms amortization.LoanTerms) {
	l.Principal = amortization.RoundCents(terms.Principal)
	l.AnnualRate = terms.AnnualRate
	l.TenureMonths = terms.TenureMonths
	l.StartDate = amortization.TruncateDate(terms.StartDate)
}
