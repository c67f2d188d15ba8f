package models

import (
	"time"
)

// LoanTransition records one lifecycle change of a loan
type LoanTransition struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	LoanID     uint      `gorm:"not null;index" json:"loan_id"`
	FromStatus string    `gorm:"size:20;not null" json:"from_status"`
	ToStatus   string    `gorm:"size:20;not null" json:"to_status"`
	Event      string    `gorm:"size:20;not null" json:"event"`
	Reason     string    `gorm:"type:text" json:"reason"`
	ActorID    *uint     `gorm:"index" json:"actor_id"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}

// TableName specifies the table name for LoanTransition
func (LoanTransition) TableName() string {
	return "loan_transitions"
}
