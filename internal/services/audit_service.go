package services

import (
	"context"

	"github.com/sjperalta/lendera-api/internal/models"
	"github.com/sjperalta/lendera-api/internal/repository"
	"github.com/sjperalta/lendera-api/pkg/logger"
)

type AuditService struct {
	repo repository.AuditRepository
}

func NewAuditService(repo repository.AuditRepository) *AuditService {
	return &AuditService{repo: repo}
}

// Log records an audit entry. Failures are logged, never returned: a lost
// audit row must not undo the action it describes.
func (s *AuditService) Log(ctx context.Context, actor Actor, action, entity string, entityID uint, details string) {
	s.LogWith(ctx, s.repo, actor, action, entity, entityID, details)
}

// LogWith records through repo, typically one bound to a transaction
func (s *AuditService) LogWith(ctx context.Context, repo repository.AuditRepository, actor Actor, action, entity string, entityID uint, details string) {
	entry := &models.AuditLog{
		ActorID:   actor.ID,
		Action:    action,
		Entity:    entity,
		EntityID:  entityID,
		Details:   details,
		IPAddress: actor.IP,
		UserAgent: actor.UserAgent,
	}
	if err := repo.Create(ctx, entry); err != nil {
		logger.Error("Failed to write audit log", "action", action, "entity", entity, "entity_id", entityID, "error", err)
	}
}

// List retrieves audit logs with filters
func (s *AuditService) List(ctx context.Context, query *repository.ListQuery) ([]models.AuditLog, int64, error) {
	return s.repo.List(ctx, query)
}
