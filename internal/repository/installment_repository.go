package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/sjperalta/lendera-api/internal/models"
)

// InstallmentRepository stores the cached schedule of each loan
type InstallmentRepository interface {
	FindByLoan(ctx context.Context, loanID uint) ([]models.Installment, error)
	ReplaceForLoan(ctx context.Context, loanID uint, rows []models.Installment) error
}

type installmentRepository struct {
	db *gorm.DB
}

// NewInstallmentRepository creates a new installment repository
func NewInstallmentRepository(db *gorm.DB) InstallmentRepository {
	return &installmentRepository{db: db}
}

func (r *installmentRepository) FindByLoan(ctx context.Context, loanID uint) ([]models.Installment, error) {
	var rows []models.Installment
	err := r.db.WithContext(ctx).
		Where("loan_id = ?", loanID).
		Order("sequence ASC").
		Find(&rows).Error
	return rows, err
}

// ReplaceForLoan swaps the cached schedule in one transaction
func (r *installmentRepository) ReplaceForLoan(ctx context.Context, loanID uint, rows []models.Installment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("loan_id = ?", loanID).Delete(&models.Installment{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		for i := range rows {
			rows[i].LoanID = loanID
		}
		return tx.CreateInBatches(rows, 200).Error
	})
}
