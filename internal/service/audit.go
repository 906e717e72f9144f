package service

import (
	"context"
	"encoding/json"
	"fmt"

	"cajachica/internal/model"
	"cajachica/internal/repository"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// recordAudit writes one audit row in the caller's transaction
func recordAudit(ctx context.Context, audits repository.AuditRepository, userID *uuid.UUID, action, entityID, entityName string, details map[string]interface{}) error {
	payload, err := json.Marshal(details)
	if err != nil {
		return internalErr("failed to encode audit details", err)
	}
	entry := model.AuditLog{
		UserID:     userID,
		Action:     action,
		EntityID:   entityID,
		EntityName: entityName,
		Details:    datatypes.JSON(payload),
	}
	if err := audits.Log(ctx, &entry); err != nil {
		return internalErr("failed to write audit log", fmt.Errorf("%s %s: %w", action, entityID, err))
	}
	return nil
}
