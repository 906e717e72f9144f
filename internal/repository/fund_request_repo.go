package repository

import (
	"context"
	"strings"
	"time"

	"cajachica/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FundRequestFilter narrows a request listing. Scope fields are set by the
// service from the actor's role; the rest come from query parameters.
type FundRequestFilter struct {
	State         model.RequestState
	RequestType   model.RequestType
	CodeContains  string
	RequesterName string
	CreatedFrom   *time.Time
	CreatedBefore *time.Time

	// RequesterID restricts to one requester's own requests.
	RequesterID *uuid.UUID
	// ManagerID restricts to the manager review queue plus requests that manager approved.
	ManagerID *uuid.UUID

	Offset int
	Limit  int
}

type FundRequestRepository interface {
	Create(ctx context.Context, req *model.FundRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.FundRequest, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.FundRequest, error)
	FindDetailed(ctx context.Context, id uuid.UUID) (*model.FundRequest, error)
	List(ctx context.Context, filter FundRequestFilter) ([]model.FundRequest, int64, error)
	Update(ctx context.Context, req *model.FundRequest) error
	LatestCode(ctx context.Context, prefix string) (string, error)
	ExistsOpenModification(ctx context.Context, originalRequestID uuid.UUID) (bool, error)
	DeleteCascade(ctx context.Context, id uuid.UUID) error
	// CountStaleByState counts requests resting in one of states whose last
	// change happened before the cutoff.
	CountStaleByState(ctx context.Context, states []model.RequestState, before time.Time) (map[model.RequestState]int64, error)
}

type fundRequestRepository struct {
	db *gorm.DB
}

func NewFundRequestRepository(db *gorm.DB) FundRequestRepository {
	return &fundRequestRepository{db: db}
}

// Create inserts the request together with its expense lines
func (r *fundRequestRepository) Create(ctx context.Context, req *model.FundRequest) error {
	return GetDB(ctx, r.db).Omit("Requester", "Area", "AdminReviewer", "ManagerApprover", "OriginalRequest", "Fund", "History").Create(req).Error
}

func (r *fundRequestRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.FundRequest, error) {
	var req model.FundRequest
	if err := GetDB(ctx, r.db).First(&req, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *fundRequestRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.FundRequest, error) {
	var req model.FundRequest
	if err := forUpdate(GetDB(ctx, r.db)).First(&req, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *fundRequestRepository) FindDetailed(ctx context.Context, id uuid.UUID) (*model.FundRequest, error) {
	var req model.FundRequest
	if err := GetDB(ctx, r.db).
		Preload("Requester").
		Preload("Area").
		Preload("AdminReviewer").
		Preload("ManagerApprover").
		Preload("ExpenseLines", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("History", func(db *gorm.DB) *gorm.DB { return db.Order("sequence ASC") }).
		Preload("History.ActingUser").
		Preload("Fund").
		Preload("OriginalRequest").
		Preload("OriginalRequest.Fund").
		First(&req, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *fundRequestRepository) applyFilter(db *gorm.DB, f FundRequestFilter) *gorm.DB {
	if f.State != "" {
		db = db.Where("state = ?", f.State)
	}
	if f.RequestType != "" {
		db = db.Where("request_type = ?", f.RequestType)
	}
	if f.CodeContains != "" {
		db = db.Where("LOWER(code) LIKE ?", "%"+strings.ToLower(f.CodeContains)+"%")
	}
	if f.RequesterName != "" {
		like := "%" + strings.ToLower(f.RequesterName) + "%"
		db = db.Where("requester_id IN (?)",
			r.db.Model(&model.User{}).Select("id").
				Where("LOWER(name) LIKE ? OR LOWER(last_name) LIKE ?", like, like))
	}
	if f.CreatedFrom != nil {
		db = db.Where("created_at >= ?", *f.CreatedFrom)
	}
	if f.CreatedBefore != nil {
		db = db.Where("created_at < ?", *f.CreatedBefore)
	}
	if f.RequesterID != nil {
		db = db.Where("requester_id = ?", *f.RequesterID)
	}
	if f.ManagerID != nil {
		db = db.Where("(state IN ? OR manager_approver_id = ?)",
			[]model.RequestState{model.StatePendingManagerApproval, model.StateRebuttalSubmittedToManager}, *f.ManagerID)
	}
	return db
}

func (r *fundRequestRepository) List(ctx context.Context, f FundRequestFilter) ([]model.FundRequest, int64, error) {
	var requests []model.FundRequest
	var total int64

	db := GetDB(ctx, r.db)
	if err := r.applyFilter(db.Model(&model.FundRequest{}), f).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	fetch := r.applyFilter(db.Preload("Requester").Preload("Area"), f).Order("created_at DESC").Order("code DESC")
	if f.Limit > 0 {
		fetch = fetch.Offset(f.Offset).Limit(f.Limit)
	}
	if err := fetch.Find(&requests).Error; err != nil {
		return nil, 0, err
	}
	return requests, total, nil
}

// Update writes the request's own columns; associations are never touched
func (r *fundRequestRepository) Update(ctx context.Context, req *model.FundRequest) error {
	return GetDB(ctx, r.db).Omit(clause.Associations).Save(req).Error
}

// LatestCode returns the code of the most recently created request with the
// prefix, or "" when there is none.
func (r *fundRequestRepository) LatestCode(ctx context.Context, prefix string) (string, error) {
	return latestCode(GetDB(ctx, r.db).Model(&model.FundRequest{}), prefix)
}

func (r *fundRequestRepository) ExistsOpenModification(ctx context.Context, originalRequestID uuid.UUID) (bool, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.FundRequest{}).
		Where("original_request_id = ?", originalRequestID).
		Where("request_type IN ?", []model.RequestType{model.RequestIncrease, model.RequestDecrease, model.RequestClosure}).
		Where("state NOT IN ?", model.TerminalStates).
		Count(&count).Error
	return count > 0, err
}

// DeleteCascade removes the request, the modification requests that reference
// it, and every expense line, history row and fund hanging off them. Run it
// inside a transaction.
func (r *fundRequestRepository) DeleteCascade(ctx context.Context, id uuid.UUID) error {
	db := GetDB(ctx, r.db)

	var ids []uuid.UUID
	if err := db.Model(&model.FundRequest{}).Where("original_request_id = ?", id).Pluck("id", &ids).Error; err != nil {
		return err
	}
	ids = append(ids, id)

	if err := db.Where("fund_request_id IN ?", ids).Delete(&model.ProjectedExpenseLine{}).Error; err != nil {
		return err
	}
	if err := db.Where("fund_request_id IN ?", ids).Delete(&model.StateHistoryEntry{}).Error; err != nil {
		return err
	}
	if err := db.Where("opening_request_id IN ?", ids).Delete(&model.CashFund{}).Error; err != nil {
		return err
	}
	// dependents first, they reference the parent
	if err := db.Where("id IN ? AND id <> ?", ids, id).Delete(&model.FundRequest{}).Error; err != nil {
		return err
	}
	res := db.Where("id = ?", id).Delete(&model.FundRequest{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func latestCode(db *gorm.DB, prefix string) (string, error) {
	var codes []string
	if err := db.Where("code LIKE ?", prefix+"-%").
		Order("created_at DESC").Order("code DESC").
		Limit(1).Pluck("code", &codes).Error; err != nil {
		return "", err
	}
	if len(codes) == 0 {
		return "", nil
	}
	return codes[0], nil
}

func (r *fundRequestRepository) CountStaleByState(ctx context.Context, states []model.RequestState, before time.Time) (map[model.RequestState]int64, error) {
	var rows []struct {
		State model.RequestState
		Total int64
	}
	err := GetDB(ctx, r.db).Model(&model.FundRequest{}).
		Select("state, COUNT(*) AS total").
		Where("state IN ?", states).
		Where("updated_at < ?", before).
		Group("state").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[model.RequestState]int64, len(rows))
	for _, row := range rows {
		counts[row.State] = row.Total
	}
	return counts, nil
}
