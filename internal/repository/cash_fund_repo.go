package repository

import (
	"context"
	"strings"

	"cajachica/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CashFundFilter struct {
	State           model.FundState
	CodeContains    string
	AreaID          *uuid.UUID
	ResponsibleID   *uuid.UUID
	ResponsibleName string

	Offset int
	Limit  int
}

type CashFundRepository interface {
	Create(ctx context.Context, fund *model.CashFund) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.CashFund, error)
	FindByOpeningRequest(ctx context.Context, openingRequestID uuid.UUID, lock bool) (*model.CashFund, error)
	Update(ctx context.Context, fund *model.CashFund) error
	List(ctx context.Context, filter CashFundFilter) ([]model.CashFund, int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
	LatestCode(ctx context.Context, prefix string) (string, error)
}

type cashFundRepository struct {
	db *gorm.DB
}

func NewCashFundRepository(db *gorm.DB) CashFundRepository {
	return &cashFundRepository{db: db}
}

func (r *cashFundRepository) Create(ctx context.Context, fund *model.CashFund) error {
	return GetDB(ctx, r.db).Omit(clause.Associations).Create(fund).Error
}

func (r *cashFundRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.CashFund, error) {
	var fund model.CashFund
	if err := GetDB(ctx, r.db).Preload("ResponsibleUser").Preload("Area").First(&fund, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &fund, nil
}

// FindByOpeningRequest looks a fund up by the Opening request that created
// it. With lock the row is held until the surrounding transaction ends.
func (r *cashFundRepository) FindByOpeningRequest(ctx context.Context, openingRequestID uuid.UUID, lock bool) (*model.CashFund, error) {
	db := GetDB(ctx, r.db)
	if lock {
		db = forUpdate(db)
	}
	var fund model.CashFund
	if err := db.First(&fund, "opening_request_id = ?", openingRequestID).Error; err != nil {
		return nil, err
	}
	return &fund, nil
}

func (r *cashFundRepository) Update(ctx context.Context, fund *model.CashFund) error {
	return GetDB(ctx, r.db).Omit(clause.Associations).Save(fund).Error
}

func (r *cashFundRepository) applyFilter(db *gorm.DB, f CashFundFilter) *gorm.DB {
	if f.State != "" {
		db = db.Where("state = ?", f.State)
	}
	if f.CodeContains != "" {
		db = db.Where("LOWER(code) LIKE ?", "%"+strings.ToLower(f.CodeContains)+"%")
	}
	if f.AreaID != nil {
		db = db.Where("area_id = ?", *f.AreaID)
	}
	if f.ResponsibleID != nil {
		db = db.Where("responsible_user_id = ?", *f.ResponsibleID)
	}
	if f.ResponsibleName != "" {
		like := "%" + strings.ToLower(f.ResponsibleName) + "%"
		db = db.Where("responsible_user_id IN (?)",
			r.db.Model(&model.User{}).Select("id").Where("LOWER(name) LIKE ? OR LOWER(last_name) LIKE ?", like, like))
	}
	return db
}

func (r *cashFundRepository) List(ctx context.Context, f CashFundFilter) ([]model.CashFund, int64, error) {
	var funds []model.CashFund
	var total int64

	db := GetDB(ctx, r.db)
	if err := r.applyFilter(db.Model(&model.CashFund{}), f).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	fetch := r.applyFilter(db.Preload("ResponsibleUser").Preload("Area"), f).Order("created_at DESC")
	if f.Limit > 0 {
		fetch = fetch.Offset(f.Offset).Limit(f.Limit)
	}
	if err := fetch.Find(&funds).Error; err != nil {
		return nil, 0, err
	}
	return funds, total, nil
}

func (r *cashFundRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.CashFund{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *cashFundRepository) LatestCode(ctx context.Context, prefix string) (string, error) {
	return latestCode(GetDB(ctx, r.db).Model(&model.CashFund{}), prefix)
}
