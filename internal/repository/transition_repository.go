package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/sjperalta/lendera-api/internal/models"
)

// TransitionRepository keeps the lifecycle history of loans
type TransitionRepository interface {
	Create(ctx context.Context, transition *models.LoanTransition) error
	FindByLoan(ctx context.Context, loanID uint) ([]models.LoanTransition, error)
}

type transitionRepository struct {
	db *gorm.DB
}

// NewTransitionRepository creates a new transition repository
func NewTransitionRepository(db *gorm.DB) TransitionRepository {
	return &transitionRepository{db: db}
}

func (r *transitionRepository) Create(ctx context.Context, transition *models.LoanTransition) error {
	return r.db.WithContext(ctx).Create(transition).Error
}

func (r *transitionRepository) FindByLoan(ctx context.Context, loanID uint) ([]models.LoanTransition, error) {
	var transitions []models.LoanTransition
	err := r.db.WithContext(ctx).
		Where("loan_id = ?", loanID).
		Order("created_at ASC, id ASC").
		Find(&transitions).Error
	return transitions, err
}
