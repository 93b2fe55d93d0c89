package inventory

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yoshiakiban-byte/bottle-amigo/pkg/db/models"
	"github.com/yoshiakiban-byte/bottle-amigo/pkg/pagination"
)

// Repository persists bottles, their change history, and gift records.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, bottle *models.Bottle) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Bottle, error)
	// FindForUpdate takes a row lock and must run inside a transaction.
	FindForUpdate(ctx context.Context, id uuid.UUID) (*models.Bottle, error)
	UpdateQuantity(ctx context.Context, bottle *models.Bottle) error
	ListByVenue(ctx context.Context, venueID uuid.UUID, ownerUserID *uuid.UUID) ([]models.Bottle, error)
	ListByOwner(ctx context.Context, ownerUserID uuid.UUID) ([]models.Bottle, error)
	CreateHistory(ctx context.Context, entry *models.BottleHistoryEntry) error
	ListHistory(ctx context.Context, params listHistoryParams) ([]models.BottleHistoryEntry, *pagination.Cursor, error)
	CreateGift(ctx context.Context, gift *models.BottleGift) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an inventory repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

type listHistoryParams struct {
	BottleID uuid.UUID
	Limit    int
	Cursor   *pagination.Cursor
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, bottle *models.Bottle) error {
	return r.db.WithContext(ctx).Create(bottle).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Bottle, error) {
	var bottle models.Bottle
	err := r.db.WithContext(ctx).First(&bottle, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &bottle, nil
}

func (r *repository) FindForUpdate(ctx context.Context, id uuid.UUID) (*models.Bottle, error) {
	var bottle models.Bottle
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&bottle, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &bottle, nil
}

func (r *repository) UpdateQuantity(ctx context.Context, bottle *models.Bottle) error {
	return r.db.WithContext(ctx).
		Model(&models.Bottle{}).
		Where("id = ?", bottle.ID).
		Updates(map[string]any{
			"remaining_ml":  bottle.RemainingML,
			"remaining_pct": bottle.RemainingPct,
			"updated_at":    bottle.UpdatedAt,
		}).Error
}

func (r *repository) ListByVenue(ctx context.Context, venueID uuid.UUID, ownerUserID *uuid.UUID) ([]models.Bottle, error) {
	query := r.db.WithContext(ctx).Where("venue_id = ?", venueID)
	if ownerUserID != nil {
		query = query.Where("owner_user_id = ?", *ownerUserID)
	}
	var bottles []models.Bottle
	if err := query.Order("created_at DESC, id DESC").Find(&bottles).Error; err != nil {
		return nil, err
	}
	return bottles, nil
}

func (r *repository) ListByOwner(ctx context.Context, ownerUserID uuid.UUID) ([]models.Bottle, error) {
	var bottles []models.Bottle
	err := r.db.WithContext(ctx).
		Where("owner_user_id = ?", ownerUserID).
		Order("created_at DESC, id DESC").
		Find(&bottles).Error
	if err != nil {
		return nil, err
	}
	return bottles, nil
}

func (r *repository) CreateHistory(ctx context.Context, entry *models.BottleHistoryEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) ListHistory(ctx context.Context, params listHistoryParams) ([]models.BottleHistoryEntry, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)
	query := r.db.WithContext(ctx).
		Model(&models.BottleHistoryEntry{}).
		Where("bottle_id = ?", params.BottleID)
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var entries []models.BottleHistoryEntry
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&entries).Error; err != nil {
		return nil, nil, err
	}
	if len(entries) > normalized {
		entries = entries[:normalized]
		// The cursor points at the last row handed out. The next page
		// filters strictly below it.
		last := entries[normalized-1]
		return entries, &pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}, nil
	}
	return entries, nil, nil
}

func (r *repository) CreateGift(ctx context.Context, gift *models.BottleGift) error {
	return r.db.WithContext(ctx).Create(gift).Error
}
