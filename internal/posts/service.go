package posts

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yoshiakiban-byte/bottle-amigo/internal/notifications"
	"github.com/yoshiakiban-byte/bottle-amigo/pkg/db/models"
	"github.com/yoshiakiban-byte/bottle-amigo/pkg/enums"
	pkgerrors "github.com/yoshiakiban-byte/bottle-amigo/pkg/errors"
)

// Service manages staff announcements for a venue.
type Service interface {
	Create(ctx context.Context, params CreateParams) (*models.VenuePost, error)
	Update(ctx context.Context, params UpdateParams) (*models.VenuePost, error)
	Delete(ctx context.Context, params DeleteParams) error
	ListByVenue(ctx context.Context, venueID uuid.UUID) ([]models.VenuePost, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type CreateParams struct {
	VenueID uuid.UUID
	StaffID uuid.UUID
	Type    enums.PostType
	Title   *string
	Body    string
}

type UpdateParams struct {
	PostID  uuid.UUID
	VenueID uuid.UUID
	Type    *enums.PostType
	Title   *string
	Body    *string
}

type DeleteParams struct {
	PostID  uuid.UUID
	VenueID uuid.UUID
}

type service struct {
	repo   Repository
	tx     txRunner
	fanout notifications.Fanout
	now    func() time.Time
}

// NewService wires the post dependencies.
func NewService(repo Repository, tx txRunner, fanout notifications.Fanout) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "posts repository required")
	}
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction runner required")
	}
	if fanout == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notification fanout required")
	}
	return &service{repo: repo, tx: tx, fanout: fanout, now: time.Now}, nil
}

func (s *service) Create(ctx context.Context, params CreateParams) (*models.VenuePost, error) {
	if params.VenueID == uuid.Nil || params.StaffID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "venue id and staff id required")
	}
	if !params.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid post type")
	}
	body := strings.TrimSpace(params.Body)
	if body == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "post body required")
	}

	now := s.now().UTC()
	post := &models.VenuePost{
		ID:        uuid.New(),
		VenueID:   params.VenueID,
		Type:      params.Type,
		Title:     params.Title,
		Body:      body,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Create(ctx, post); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create post")
		}
		event := notifications.VenuePostEvent{
			VenueID:  post.VenueID,
			PostID:   post.ID,
			PostType: post.Type,
			Content:  body,
			Now:      now,
		}
		return s.fanout.VenuePost(ctx, tx, event)
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}

func (s *service) Update(ctx context.Context, params UpdateParams) (*models.VenuePost, error) {
	if params.PostID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "post id required")
	}
	post, err := s.loadVenuePost(ctx, params.PostID, params.VenueID)
	if err != nil {
		return nil, err
	}

	if params.Type != nil {
		if !params.Type.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid post type")
		}
		post.Type = *params.Type
	}
	if params.Title != nil {
		post.Title = params.Title
	}
	if params.Body != nil {
		body := strings.TrimSpace(*params.Body)
		if body == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "post body required")
		}
		post.Body = body
	}
	post.UpdatedAt = s.now().UTC()

	if err := s.repo.Update(ctx, post); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update post")
	}
	return post, nil
}

func (s *service) Delete(ctx context.Context, params DeleteParams) error {
	if params.PostID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "post id required")
	}
	post, err := s.loadVenuePost(ctx, params.PostID, params.VenueID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, post.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete post")
	}
	return nil
}

func (s *service) ListByVenue(ctx context.Context, venueID uuid.UUID) ([]models.VenuePost, error) {
	if venueID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "venue id required")
	}
	posts, err := s.repo.ListByVenue(ctx, venueID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list posts")
	}
	return posts, nil
}

func (s *service) loadVenuePost(ctx context.Context, postID, venueID uuid.UUID) (*models.VenuePost, error) {
	post, err := s.repo.FindByID(ctx, postID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load post")
	}
	if post == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "post not found")
	}
	if venueID != uuid.Nil && post.VenueID != venueID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "post belongs to another venue")
	}
	return post, nil
}
