package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/sjperalta/lendera-api/internal/amortization"
)

// Installment is a cached schedule row. TermsFingerprint ties the row to
// the terms it was generated from.
type Installment struct {
	ID               uint            `gorm:"primaryKey" json:"id"`
	LoanID           uint            `gorm:"not null;uniqueIndex:idx_installments_loan_sequence" json:"loan_id"`
	Sequence         int             `gorm:"not null;uniqueIndex:idx_installments_loan_sequence" json:"sequence"`
	DueDate          time.Time       `gorm:"type:date;not null;index" json:"due_date"`
	Amount           decimal.Decimal `gorm:"type:numeric(15,2);not null" json:"installment_amount"`
	Interest         decimal.Decimal `gorm:"type:numeric(15,2);not null" json:"interest_component"`
	Principal        decimal.Decimal `gorm:"type:numeric(15,2);not null" json:"principal_component"`
	BalanceAfter     decimal.Decimal `gorm:"type:numeric(15,2);not null" json:"balance_after"`
	TermsFingerprint string          `gorm:"size:64;not null;index" json:"-"`
	CreatedAt        time.Time       `json:"created_at"`
}

// TableName specifies the table name for Installment
func (Installment) TableName() string {
	return "installments"
}

// NewInstallments converts a generated schedule into cache rows
func NewInstallments(loanID uint, schedule *amortization.Schedule) []Installment {
	fingerprint := schedule.Terms.Fingerprint()
	rows := make([]Installment, 0, len(schedule.Installments))
	for _, inst := range schedule.Installments {
		rows = append(rows, Installment{
			LoanID:           loanID,
			Sequence:         inst.Sequence,
			DueDate:          inst.DueDate,
			Amount:           inst.Amount,
			Interest:         inst.Interest,
			Principal:        inst.Principal,
			BalanceAfter:     inst.BalanceAfter,
			TermsFingerprint: fingerprint,
		})
	}
	return rows
}

// ToSchedule rebuilds a schedule from cache rows. Rows must be ordered by
// sequence and share the given terms' fingerprint.
func ToSchedule(terms amortization.LoanTerms, rows []Installment) *amortization.Schedule {
	schedule := &amortization.Schedule{
		Terms:        terms,
		Installments: make([]amortization.Installment, 0, len(rows)),
	}
	for _, row := range rows {
		schedule.Installments = append(schedule.Installments, amortization.Installment{
			Sequence:     row.Sequence,
			DueDate:      row.DueDate,
			Amount:       row.Amount,
			Interest:     row.Interest,
			Principal:    row.Principal,
			BalanceAfter: row.BalanceAfter,
		})
	}
	return schedule
}
