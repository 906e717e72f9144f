package repository

import (
	"context"

	"cajachica/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StateHistoryRepository is append-only: entries are never updated, and only
// removed together with their request.
type StateHistoryRepository interface {
	Append(ctx context.Context, entry *model.StateHistoryEntry) error
	ListByRequest(ctx context.Context, requestID uuid.UUID) ([]model.StateHistoryEntry, error)
}

type stateHistoryRepository struct {
	db *gorm.DB
}

func NewStateHistoryRepository(db *gorm.DB) StateHistoryRepository {
	return &stateHistoryRepository{db: db}
}

// Append assigns the next sequence number of the request and inserts the
// entry. The (request, sequence) unique index rejects a concurrent append
// that read the same maximum.
func (r *stateHistoryRepository) Append(ctx context.Context, entry *model.StateHistoryEntry) error {
	db := GetDB(ctx, r.db)

	var last int
	if err := db.Model(&model.StateHistoryEntry{}).
		Where("fund_request_id = ?", entry.FundRequestID).
		Select("COALESCE(MAX(sequence), 0)").
		Scan(&last).Error; err != nil {
		return err
	}
	entry.Sequence = last + 1
	return db.Omit("ActingUser").Create(entry).Error
}

func (r *stateHistoryRepository) ListByRequest(ctx context.Context, requestID uuid.UUID) ([]model.StateHistoryEntry, error) {
	var entries []model.StateHistoryEntry
	err := GetDB(ctx, r.db).
		Preload("ActingUser").
		Where("fund_request_id = ?", requestID).
		Order("sequence ASC").
		Find(&entries).Error
	return entries, err
}
