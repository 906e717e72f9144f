package repository

import (
	"context"

	"cajachica/internal/model"

	"gorm.io/gorm"
)

type AuditFilter struct {
	EntityID string
	Action   string
	Offset   int
	Limit    int
}

type AuditRepository interface {
	Log(ctx context.Context, entry *model.AuditLog) error
	ListByEntity(ctx context.Context, entityID string) ([]model.AuditLog, error)
	// List returns a page of entries, newest first, with the acting user loaded
	List(ctx context.Context, filter AuditFilter) ([]model.AuditLog, int64, error)
}

type auditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Log(ctx context.Context, entry *model.AuditLog) error {
	return GetDB(ctx, r.db).Omit("User").Create(entry).Error
}

func (r *auditRepository) ListByEntity(ctx context.Context, entityID string) ([]model.AuditLog, error) {
	var logs []model.AuditLog
	err := GetDB(ctx, r.db).Where("entity_id = ?", entityID).Order("created_at ASC").Find(&logs).Error
	return logs, err
}

func (r *auditRepository) List(ctx context.Context, f AuditFilter) ([]model.AuditLog, int64, error) {
	query := GetDB(ctx, r.db).Model(&model.AuditLog{})
	if f.EntityID != "" {
		query = query.Where("entity_id = ?", f.EntityID)
	}
	if f.Action != "" {
		query = query.Where("action = ?", f.Action)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var logs []model.AuditLog
	page := query.Preload("User").Order("created_at DESC")
	if f.Limit > 0 {
		page = page.Offset(f.Offset).Limit(f.Limit)
	}
	if err := page.Find(&logs).Error; err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}
