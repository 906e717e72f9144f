package service

import (
	"context"
	"encoding/json"

	"cajachica/internal/repository"
	"cajachica/pkg/apperror"

	"go.uber.org/zap"
)

type AuditLogResponse struct {
	ID         string          `json:"id"`
	UserID     string          `json:"user_id"`
	Username   string          `json:"username"`
	Action     string          `json:"action"`
	EntityID   string          `json:"entity_id"`
	EntityName string          `json:"entity_name"`
	Details    json.RawMessage `json:"details" swaggertype:"object"`
	CreatedAt  string          `json:"created_at"`
}

type AuditFilter struct {
	EntityID string
	Action   string
	Page     int
	Limit    int
}

type AuditService interface {
	List(ctx context.Context, actor Actor, filter AuditFilter) ([]AuditLogResponse, int64, error)
}

type auditService struct {
	audits repository.AuditRepository
	log    *zap.Logger
}

// NewAuditService creates the read side of the audit trail
func NewAuditService(audits repository.AuditRepository, log *zap.Logger) AuditService {
	if log == nil {
		log = zap.NewNop()
	}
	return &auditService{audits: audits, log: log}
}

// List pages through audit entries. Only the super admin and the head of
// administration may read the trail.
func (s *auditService) List(ctx context.Context, actor Actor, f AuditFilter) ([]AuditLogResponse, int64, error) {
	if !actor.Role.IsAdminOrSuper() {
		return nil, 0, apperror.Forbidden("Acceso denegado. No tiene permiso para consultar la auditoría.")
	}

	filter := repository.AuditFilter{EntityID: f.EntityID, Action: f.Action}
	if f.Limit > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		filter.Offset = (page - 1) * f.Limit
		filter.Limit = f.Limit
	}

	logs, total, err := s.audits.List(ctx, filter)
	if err != nil {
		return nil, 0, internalErr("failed to list audit logs", err)
	}

	res := make([]AuditLogResponse, 0, len(logs))
	for _, l := range logs {
		username := "System"
		userID := ""
		if l.User != nil {
			username = l.User.FullName()
		}
		if l.UserID != nil {
			userID = l.UserID.String()
		}
		details := json.RawMessage(l.Details)
		if len(details) == 0 {
			details = json.RawMessage("null")
		}

		res = append(res, AuditLogResponse{
			ID:         l.ID.String(),
			UserID:     userID,
			Username:   username,
			Action:     l.Action,
			EntityID:   l.EntityID,
			EntityName: l.EntityName,
			Details:    details,
			CreatedAt:  formatTime(l.CreatedAt),
		})
	}
	return res, total, nil
}
