package posts

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yoshiakiban-byte/bottle-amigo/pkg/db/models"
)

// Repository persists venue posts.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, post *models.VenuePost) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.VenuePost, error)
	Update(ctx context.Context, post *models.VenuePost) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByVenue(ctx context.Context, venueID uuid.UUID) ([]models.VenuePost, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a posts repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, post *models.VenuePost) error {
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.VenuePost, error) {
	var post models.VenuePost
	err := r.db.WithContext(ctx).First(&post, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *repository) Update(ctx context.Context, post *models.VenuePost) error {
	return r.db.WithContext(ctx).
		Model(&models.VenuePost{}).
		Where("id = ?", post.ID).
		Updates(map[string]any{
			"type":       post.Type,
			"title":      post.Title,
			"body":       post.Body,
			"updated_at": post.UpdatedAt,
		}).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.VenuePost{}, "id = ?", id).Error
}

func (r *repository) ListByVenue(ctx context.Context, venueID uuid.UUID) ([]models.VenuePost, error) {
	var posts []models.VenuePost
	err := r.db.WithContext(ctx).
		Where("venue_id = ?", venueID).
		Order("created_at DESC, id DESC").
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}
