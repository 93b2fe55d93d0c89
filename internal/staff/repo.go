package staff

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yoshiakiban-byte/bottle-amigo/pkg/db/models"
)

// Repository persists venue staff accounts.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, account *models.StaffAccount) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.StaffAccount, error)
	ListByVenue(ctx context.Context, venueID uuid.UUID) ([]models.StaffAccount, error)
	Update(ctx context.Context, account *models.StaffAccount) error
	Delete(ctx context.Context, id uuid.UUID) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	TouchLastLogin(ctx context.Context, id uuid.UUID, now time.Time) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a staff repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, account *models.StaffAccount) error {
	return r.db.WithContext(ctx).Create(account).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.StaffAccount, error) {
	var account models.StaffAccount
	err := r.db.WithContext(ctx).First(&account, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *repository) ListByVenue(ctx context.Context, venueID uuid.UUID) ([]models.StaffAccount, error) {
	var accounts []models.StaffAccount
	err := r.db.WithContext(ctx).
		Where("venue_id = ?", venueID).
		Order("created_at ASC").
		Find(&accounts).Error
	if err != nil {
		return nil, err
	}
	return accounts, nil
}

func (r *repository) Update(ctx context.Context, account *models.StaffAccount) error {
	return r.db.WithContext(ctx).
		Model(&models.StaffAccount{}).
		Where("id = ?", account.ID).
		Updates(map[string]any{
			"name":     account.Name,
			"role":     account.Role,
			"pin_hash": account.PINHash,
		}).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.StaffAccount{}, "id = ?", id).Error
}

func (r *repository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	return r.db.WithContext(ctx).
		Model(&models.StaffAccount{}).
		Where("id = ?", id).
		UpdateColumn("is_active", active).Error
}

func (r *repository) TouchLastLogin(ctx context.Context, id uuid.UUID, now time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.StaffAccount{}).
		Where("id = ?", id).
		UpdateColumn("last_login_at", now).Error
}
