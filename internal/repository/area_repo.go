package repository

import (
	"context"

	"cajachica/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AreaRepository interface {
	Create(ctx context.Context, area *model.Area) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Area, error)
	FindByName(ctx context.Context, name string) (*model.Area, error)
	ListAll(ctx context.Context) ([]model.Area, error)
}

type areaRepository struct {
	db *gorm.DB
}

func NewAreaRepository(db *gorm.DB) AreaRepository {
	return &areaRepository{db: db}
}

func (r *areaRepository) Create(ctx context.Context, area *model.Area) error {
	return GetDB(ctx, r.db).Create(area).Error
}

func (r *areaRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Area, error) {
	var area model.Area
	if err := GetDB(ctx, r.db).First(&area, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &area, nil
}

func (r *areaRepository) FindByName(ctx context.Context, name string) (*model.Area, error) {
	var area model.Area
	if err := GetDB(ctx, r.db).First(&area, "name = ?", name).Error; err != nil {
		return nil, err
	}
	return &area, nil
}

func (r *areaRepository) ListAll(ctx context.Context) ([]model.Area, error) {
	var areas []model.Area
	err := GetDB(ctx, r.db).Order("name ASC").Find(&areas).Error
	return areas, err
}
