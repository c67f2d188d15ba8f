package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sjperalta/lendera-api/internal/models"
)

// LoanRepository defines the interface for loan data access
type LoanRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Loan, error)
	FindByIDForUpdate(ctx context.Context, id uint) (*models.Loan, error)
	Create(ctx context.Context, loan *models.Loan) error
	Update(ctx context.Context, loan *models.Loan) error
	List(ctx context.Context, query *ListQuery) ([]models.Loan, int64, error)
	FindByStatus(ctx context.Context, status string) ([]models.Loan, error)
}

var loanSortColumns = map[string]string{
	"id":            "id",
	"created_at":    "created_at",
	"start_date":    "start_date",
	"principal":     "principal",
	"status":        "status",
	"tenure_months": "tenure_months",
}

type loanRepository struct {
	db *gorm.DB
}

// NewLoanRepository creates a new loan repository
func NewLoanRepository(db *gorm.DB) LoanRepository {
	return &loanRepository{db: db}
}

func (r *loanRepository) FindByID(ctx context.Context, id uint) (*models.Loan, error) {
	var loan models.Loan
	err := r.db.WithContext(ctx).
		Where("discarded_at IS NULL").
		First(&loan, id).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &loan, nil
}

// FindByIDForUpdate locks the loan row until the surrounding transaction ends
func (r *loanRepository) FindByIDForUpdate(ctx context.Context, id uint) (*models.Loan, error) {
	var loan models.Loan
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("discarded_at IS NULL").
		First(&loan, id).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &loan, nil
}

func (r *loanRepository) Create(ctx context.Context, loan *models.Loan) error {
	return translateError(r.db.WithContext(ctx).Create(loan).Error)
}

func (r *loanRepository) Update(ctx context.Context, loan *models.Loan) error {
	return translateError(r.db.WithContext(ctx).Save(loan).Error)
}

func (r *loanRepository) List(ctx context.Context, query *ListQuery) ([]models.Loan, int64, error) {
	var loans []models.Loan
	var total int64
	query.Normalize()

	db := r.db.WithContext(ctx).Model(&models.Loan{}).Where("discarded_at IS NULL")

	if query.Search != "" {
		search := "%" + query.Search + "%"
		db = db.Where("COALESCE(note, '') ILIKE ? OR CAST(id AS TEXT) = ?", search, query.Search)
	}

	if status := query.Filters["status"]; status != "" {
		db = db.Where("status = ?", status)
	}

	if borrower := query.Filters["borrower_id"]; borrower != "" {
		db = db.Where("borrower_id = ?", borrower)
	}

	// Count on a separate session so the main query is not altered by Count()
	if err := db.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Order(query.OrderClause(loanSortColumns, "created_at DESC")).
		Offset(query.Offset()).
		Limit(query.PerPage).
		Find(&loans).Error
	return loans, total, err
}

func (r *loanRepository) FindByStatus(ctx context.Context, status string) ([]models.Loan, error) {
	var loans []models.Loan
	err := r.db.WithContext(ctx).
		Where("status = ? AND discarded_at IS NULL", status).
		Order("id ASC").
		Find(&loans).Error
	return loans, err
}
