package amigos

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yoshiakiban-byte/bottle-amigo/pkg/db/models"
	"github.com/yoshiakiban-byte/bottle-amigo/pkg/enums"
)

// Repository persists amigo pairings and their QR pairing tokens.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, amigo *models.Amigo) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Amigo, error)
	// FindBetween matches regardless of which side requested the pairing.
	FindBetween(ctx context.Context, venueID, userA, userB uuid.UUID) (*models.Amigo, error)
	Accept(ctx context.Context, id uuid.UUID, now time.Time) error
	ListForUser(ctx context.Context, userID uuid.UUID, venueID *uuid.UUID) ([]models.Amigo, error)

	CreateToken(ctx context.Context, token *models.AmigoQRToken) error
	FindToken(ctx context.Context, token uuid.UUID) (*models.AmigoQRToken, error)
	// MarkTokenUsed flips an unused token to used and reports whether this
	// call won the flip. Concurrent consumers lose.
	MarkTokenUsed(ctx context.Context, token uuid.UUID) (bool, error)
	PurgeTokensBefore(ctx context.Context, cutoff time.Time) (int64, error)

	FindActiveCheckIn(ctx context.Context, userID uuid.UUID) (*models.CheckIn, error)
	UserExists(ctx context.Context, userID uuid.UUID) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an amigos repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, amigo *models.Amigo) error {
	return r.db.WithContext(ctx).Create(amigo).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Amigo, error) {
	var amigo models.Amigo
	err := r.db.WithContext(ctx).First(&amigo, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &amigo, nil
}

func (r *repository) FindBetween(ctx context.Context, venueID, userA, userB uuid.UUID) (*models.Amigo, error) {
	var amigo models.Amigo
	err := r.db.WithContext(ctx).
		Where("venue_id = ?", venueID).
		Where(
			"(requester_user_id = ? AND target_user_id = ?) OR (requester_user_id = ? AND target_user_id = ?)",
			userA, userB, userB, userA,
		).
		Order("created_at DESC").
		First(&amigo).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &amigo, nil
}

func (r *repository) Accept(ctx context.Context, id uuid.UUID, now time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Amigo{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":      enums.AmigoStatusActive,
			"accepted_at": now,
		}).Error
}

func (r *repository) ListForUser(ctx context.Context, userID uuid.UUID, venueID *uuid.UUID) ([]models.Amigo, error) {
	query := r.db.WithContext(ctx).
		Where("requester_user_id = ? OR target_user_id = ?", userID, userID)
	if venueID != nil {
		query = query.Where("venue_id = ?", *venueID)
	}
	var amigos []models.Amigo
	if err := query.Order("created_at DESC").Find(&amigos).Error; err != nil {
		return nil, err
	}
	return amigos, nil
}

func (r *repository) CreateToken(ctx context.Context, token *models.AmigoQRToken) error {
	return r.db.WithContext(ctx).Create(token).Error
}

func (r *repository) FindToken(ctx context.Context, token uuid.UUID) (*models.AmigoQRToken, error) {
	var row models.AmigoQRToken
	err := r.db.WithContext(ctx).First(&row, "token = ?", token).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repository) MarkTokenUsed(ctx context.Context, token uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.AmigoQRToken{}).
		Where("token = ? AND used = ?", token, false).
		UpdateColumn("used", true)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) PurgeTokensBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&models.AmigoQRToken{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *repository) FindActiveCheckIn(ctx context.Context, userID uuid.UUID) (*models.CheckIn, error) {
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

func (r *repository) UserExists(ctx context.Context, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
