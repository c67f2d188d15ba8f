package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sjperalta/lendera-api/internal/models"
	"github.com/sjperalta/lendera-api/internal/services"
)

type AuditHandler struct {
	auditService *services.AuditService
}

func NewAuditHandler(auditService *services.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

// @Summary List Audit Logs
// @Description Get a paginated list of audit logs, newest first
// @Tags Audit
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param entity query string false "Filter by entity" Enums(Loan, Payment)
// @Param entity_id query int false "Filter by entity ID"
// @Param action query string false "Filter by action"
// @Param actor_id query int false "Filter by actor"
// @Param search_term query string false "Search in details"
// @Success 200 {object} map[string]interface{}
// @Router /audits [get]
func (h *AuditHandler) Index(c *gin.Context) {
	query := listQuery(c)
	for _, key := range []string{"entity", "entity_id", "action", "actor_id"} {
		if v := strings.TrimSpace(c.Query(key)); v != "" {
			query.Filters[key] = v
		}
	}
	if action, ok := query.Filters["action"]; ok {
		query.Filters["action"] = strings.ToUpper(action)
	}

	logs, total, err := h.auditService.List(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}
	if logs == nil {
		logs = []models.AuditLog{}
	}

	c.JSON(http.StatusOK, gin.H{"audits": logs, "pagination": pagination(query, total)})
}
