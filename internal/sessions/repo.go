package sessions

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yoshiakiban-byte/bottle-amigo/pkg/db/models"
	"github.com/yoshiakiban-byte/bottle-amigo/pkg/enums"
)

// Repository persists check-ins and the reads the session flows need.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, checkIn *models.CheckIn) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.CheckIn, error)
	FindActiveByUser(ctx context.Context, userID uuid.UUID) (*models.CheckIn, error)
	FindActiveByUserAndVenue(ctx context.Context, userID, venueID uuid.UUID) (*models.CheckIn, error)
	CompleteActiveForUser(ctx context.Context, userID uuid.UUID, now time.Time) (int64, error)
	SetStatus(ctx context.Context, id uuid.UUID, status enums.CheckInStatus, endedAt time.Time) error
	VenueExists(ctx context.Context, venueID uuid.UUID) (bool, error)
	UserBottlesAtVenue(ctx context.Context, userID, venueID uuid.UUID) ([]models.Bottle, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a sessions repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, checkIn *models.CheckIn) error {
	return r.db.WithContext(ctx).Create(checkIn).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.CheckIn, error) {
	var checkIn models.CheckIn
	err := r.db.WithContext(ctx).First(&checkIn, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &checkIn, nil
}

func (r *repository) FindActiveByUser(ctx context.Context, userID uuid.UUID) (*models.CheckIn, error) {
	var checkIn models.CheckIn
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, enums.CheckInStatusActive).
		Order("created_at DESC").
		First(&checkIn).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &checkIn, nil
}

func (r *repository) FindActiveByUserAndVenue(ctx context.Context, userID, venueID uuid.UUID) (*models.CheckIn, error) {
	var checkIn models.CheckIn
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND venue_id = ? AND status = ?", userID, venueID, enums.CheckInStatusActive).
		Order("created_at DESC").
		First(&checkIn).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &checkIn, nil
}

func (r *repository) CompleteActiveForUser(ctx context.Context, userID uuid.UUID, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.CheckIn{}).
		Where("user_id = ? AND status = ?", userID, enums.CheckInStatusActive).
		Updates(map[string]any{
			"status":   enums.CheckInStatusCompleted,
			"ended_at": now,
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *repository) SetStatus(ctx context.Context, id uuid.UUID, status enums.CheckInStatus, endedAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.CheckIn{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":   status,
			"ended_at": endedAt,
		}).Error
}

func (r *repository) VenueExists(ctx context.Context, venueID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Venue{}).
		Where("id = ?", venueID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) UserBottlesAtVenue(ctx context.Context, userID, venueID uuid.UUID) ([]models.Bottle, error) {
	var bottles []models.Bottle
	err := r.db.WithContext(ctx).
		Where("owner_user_id = ? AND venue_id = ?", userID, venueID).
		Order("created_at DESC, id DESC").
		Find(&bottles).Error
	if err != nil {
		return nil, err
	}
	return bottles, nil
}
