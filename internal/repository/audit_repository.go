package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/sjperalta/lendera-api/internal/models"
)

// AuditRepository defines the interface for audit log access
type AuditRepository interface {
	Create(ctx context.Context, log *models.AuditLog) error
	List(ctx context.Context, query *ListQuery) ([]models.AuditLog, int64, error)
}

type auditRepository struct {
	db *gorm.DB
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Create(ctx context.Context, log *models.AuditLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *auditRepository) List(ctx context.Context, query *ListQuery) ([]models.AuditLog, int64, error) {
	var logs []models.AuditLog
	var total int64
	query.Normalize()

	db := r.db.WithContext(ctx).Model(&models.AuditLog{})

	if query.Search != "" {
		db = db.Where("details ILIKE ?", "%"+query.Search+"%")
	}
	if v := query.Filters["entity"]; v != "" {
		db = db.Where("entity = ?", v)
	}
	if v := query.Filters["entity_id"]; v != "" {
		db = db.Where("entity_id = ?", v)
	}
	if v := query.Filters["action"]; v != "" {
		db = db.Where("action = ?", v)
	}
	if v := query.Filters["actor_id"]; v != "" {
		db = db.Where("actor_id = ?", v)
	}

	if err := db.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Order("created_at DESC, id DESC").
		Offset(query.Offset()).
		Limit(query.PerPage).
		Find(&logs).Error
	return logs, total, err
}
