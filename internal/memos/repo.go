package memos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yoshiakiban-byte/bottle-amigo/pkg/db/models"
)

// Repository persists staff memos about patrons.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, memo *models.CustomerMemo) error
	ListForUser(ctx context.Context, venueID, userID uuid.UUID) ([]models.CustomerMemo, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a memos repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, memo *models.CustomerMemo) error {
	return r.db.WithContext(ctx).Create(memo).Error
}

func (r *repository) ListForUser(ctx context.Context, venueID, userID uuid.UUID) ([]models.CustomerMemo, error) {
	var memos []models.CustomerMemo
	err := r.db.WithContext(ctx).
		Where("venue_id = ? AND user_id = ?", venueID, userID).
		Order("created_at DESC, id DESC").
		Find(&memos).Error
	if err != nil {
		return nil, err
	}
	return memos, nil
}
