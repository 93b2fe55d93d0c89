package venues

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yoshiakiban-byte/bottle-amigo/pkg/db/models"
	"github.com/yoshiakiban-byte/bottle-amigo/pkg/enums"
)

// Repository exposes persistence helpers for venues and the staff-facing
// customer roster.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByID(ctx context.Context, id uuid.UUID) (*models.Venue, error)
	UpdateSettings(ctx context.Context, id uuid.UUID, updates map[string]any) error
	RosterUsers(ctx context.Context, venueID uuid.UUID) ([]models.User, error)
	BottleCounts(ctx context.Context, venueID uuid.UUID) (map[uuid.UUID]int64, error)
	LastCheckIns(ctx context.Context, venueID uuid.UUID) (map[uuid.UUID]time.Time, error)
	ActiveCheckInUserIDs(ctx context.Context, venueID uuid.UUID) (map[uuid.UUID]bool, error)
	LatestMemos(ctx context.Context, venueID uuid.UUID) (map[uuid.UUID]MemoSummary, error)
}

// MemoSummary is the newest staff memo about a patron.
type MemoSummary struct {
	Body      string    `json:"body"`
	StaffName string    `json:"staffName"`
	CreatedAt time.Time `json:"createdAt"`
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a venues repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.Venue, error) {
	var venue models.Venue
	err := r.db.WithContext(ctx).First(&venue, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &venue, nil
}

func (r *repositoryImpl) UpdateSettings(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.Venue{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// RosterUsers returns everyone who ever checked in at the venue plus everyone
// who keeps a bottle there.
func (r *repositoryImpl) RosterUsers(ctx context.Context, venueID uuid.UUID) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Where(`id IN (SELECT DISTINCT user_id FROM check_ins WHERE venue_id = ?
			UNION SELECT DISTINCT owner_user_id FROM bottles WHERE venue_id = ?)`, venueID, venueID).
		Order("name").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (r *repositoryImpl) BottleCounts(ctx context.Context, venueID uuid.UUID) (map[uuid.UUID]int64, error) {
	type row struct {
		OwnerUserID uuid.UUID
		Count       int64
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&models.Bottle{}).
		Select("owner_user_id, COUNT(*) AS count").
		Where("venue_id = ?", venueID).
		Group("owner_user_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]int64, len(rows))
	for _, r := range rows {
		out[r.OwnerUserID] = r.Count
	}
	return out, nil
}

func (r *repositoryImpl) LastCheckIns(ctx context.Context, venueID uuid.UUID) (map[uuid.UUID]time.Time, error) {
	type row struct {
		UserID uuid.UUID
		Last   time.Time
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&models.CheckIn{}).
		Select("user_id, MAX(created_at) AS last").
		Where("venue_id = ?", venueID).
		Group("user_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]time.Time, len(rows))
	for _, r := range rows {
		out[r.UserID] = r.Last
	}
	return out, nil
}

func (r *repositoryImpl) ActiveCheckInUserIDs(ctx context.Context, venueID uuid.UUID) (map[uuid.UUID]bool, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.CheckIn{}).
		Where("venue_id = ? AND status = ?", venueID, enums.CheckInStatusActive).
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

func (r *repositoryImpl) LatestMemos(ctx context.Context, venueID uuid.UUID) (map[uuid.UUID]MemoSummary, error) {
	type row struct {
		UserID    uuid.UUID
		Body      string
		StaffName string
		CreatedAt time.Time
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Table("customer_memos cm").
		Select("cm.user_id, cm.body, COALESCE(sa.name, '') AS staff_name, cm.created_at").
		Joins("LEFT JOIN staff_accounts sa ON cm.author_staff_id = sa.id").
		Where("cm.venue_id = ?", venueID).
		Order("cm.created_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]MemoSummary, len(rows))
	for _, r := range rows {
		if _, seen := out[r.UserID]; seen {
			continue
		}
		out[r.UserID] = MemoSummary{Body: r.Body, StaffName: r.StaffName, CreatedAt: r.CreatedAt}
	}
	return out, nil
}
