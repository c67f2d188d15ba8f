package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/sjperalta/lendera-api/internal/models"
)

// PaymentRepository defines the interface for payment data access.
// Payments are append-only: there is no update or delete.
type PaymentRepository interface {
	FindByReference(ctx context.Context, reference string) (*models.Payment, error)
	FindByLoan(ctx context.Context, loanID uint) ([]models.Payment, error)
	ListByLoan(ctx context.Context, loanID uint, query *ListQuery) ([]models.Payment, int64, error)
	CountByLoan(ctx context.Context, loanID uint) (int64, error)
	Create(ctx context.Context, payment *models.Payment) error
}

var paymentSortColumns = map[string]string{
	"paid_at":    "paid_at",
	"amount":     "amount",
	"created_at": "created_at",
}

type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) FindByReference(ctx context.Context, reference string) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).
		Where("reference = ?", reference).
		First(&payment).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &payment, nil
}

// FindByLoan returns the full history in payment-date order
func (r *paymentRepository) FindByLoan(ctx context.Context, loanID uint) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.WithContext(ctx).
		Where("loan_id = ?", loanID).
		Order("paid_at ASC, id ASC").
		Find(&payments).Error
	return payments, err
}

func (r *paymentRepository) ListByLoan(ctx context.Context, loanID uint, query *ListQuery) ([]models.Payment, int64, error) {
	var payments []models.Payment
	var total int64
	query.Normalize()

	db := r.db.WithContext(ctx).Model(&models.Payment{}).Where("loan_id = ?", loanID)

	if method := query.Filters["method"]; method != "" {
		db = db.Where("method = ?", method)
	}

	if err := db.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Order(query.OrderClause(paymentSortColumns, "paid_at ASC")).
		Order("id ASC").
		Offset(query.Offset()).
		Limit(query.PerPage).
		Find(&payments).Error
	return payments, total, err
}

func (r *paymentRepository) CountByLoan(ctx context.Context, loanID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("loan_id = ?", loanID).
		Count(&count).Error
	return count, err
}

// Create inserts a payment. A reused reference yields ErrDuplicate.
func (r *paymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	return translateError(r.db.WithContext(ctx).Create(payment).Error)
}
