package shares

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yoshiakiban-byte/bottle-amigo/pkg/db/models"
)

// Repository persists bottle shares.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, share *models.BottleShare) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.BottleShare, error)
	FindActive(ctx context.Context, bottleID, sharedToUserID uuid.UUID) (*models.BottleShare, error)
	End(ctx context.Context, id uuid.UUID, now time.Time) error
	ListForBottle(ctx context.Context, bottleID uuid.UUID) ([]models.BottleShare, error)
	ListGrantedTo(ctx context.Context, userID uuid.UUID) ([]models.BottleShare, error)
	FindBottle(ctx context.Context, bottleID uuid.UUID) (*models.Bottle, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a shares repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, share *models.BottleShare) error {
	return r.db.WithContext(ctx).Create(share).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.BottleShare, error) {
	var share models.BottleShare
	err := r.db.WithContext(ctx).First(&share, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &share, nil
}

func (r *repository) FindActive(ctx context.Context, bottleID, sharedToUserID uuid.UUID) (*models.BottleShare, error) {
	var share models.BottleShare
	err := r.db.WithContext(ctx).
		Where("bottle_id = ? AND shared_to_user_id = ? AND active", bottleID, sharedToUserID).
		First(&share).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &share, nil
}

func (r *repository) End(ctx context.Context, id uuid.UUID, now time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.BottleShare{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"active":   false,
			"ended_at": now,
		}).Error
}

func (r *repository) ListForBottle(ctx context.Context, bottleID uuid.UUID) ([]models.BottleShare, error) {
	var shares []models.BottleShare
	err := r.db.WithContext(ctx).
		Where("bottle_id = ?", bottleID).
		Order("created_at DESC").
		Find(&shares).Error
	if err != nil {
		return nil, err
	}
	return shares, nil
}

func (r *repository) ListGrantedTo(ctx context.Context, userID uuid.UUID) ([]models.BottleShare, error) {
	var shares []models.BottleShare
	err := r.db.WithContext(ctx).
		Where("shared_to_user_id = ? AND active", userID).
		Order("created_at DESC").
		Find(&shares).Error
	if err != nil {
		return nil, err
	}
	return shares, nil
}

func (r *repository) FindBottle(ctx context.Context, bottleID uuid.UUID) (*models.Bottle, error) {
	var bottle models.Bottle
	err := r.db.WithContext(ctx).First(&bottle, "id = ?", bottleID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &bottle, nil
}
