package memos

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yoshiakiban-byte/bottle-amigo/pkg/db/models"
	pkgerrors "github.com/yoshiakiban-byte/bottle-amigo/pkg/errors"
)

// Service manages venue-scoped staff notes about patrons.
type Service interface {
	Create(ctx context.Context, params CreateParams) (*models.CustomerMemo, error)
	ListForUser(ctx context.Context, venueID, userID uuid.UUID) ([]models.CustomerMemo, error)
}

type CreateParams struct {
	VenueID       uuid.UUID
	UserID        uuid.UUID
	AuthorStaffID uuid.UUID
	Body          string
}

type service struct {
	repo Repository
	now  func() time.Time
}

// NewService wires the memo dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "memos repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

func (s *service) Create(ctx context.Context, params CreateParams) (*models.CustomerMemo, error) {
	if params.VenueID == uuid.Nil || params.UserID == uuid.Nil || params.AuthorStaffID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "venue, user and author required")
	}
	body := strings.TrimSpace(params.Body)
	if body == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "memo body required")
	}

	memo := &models.CustomerMemo{
		ID:            uuid.New(),
		VenueID:       params.VenueID,
		UserID:        params.UserID,
		AuthorStaffID: params.AuthorStaffID,
		Body:          body,
		CreatedAt:     s.now().UTC(),
	}
	if err := s.repo.Create(ctx, memo); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create memo")
	}
	return memo, nil
}

func (s *service) ListForUser(ctx context.Context, venueID, userID uuid.UUID) ([]models.CustomerMemo, error) {
	if venueID == uuid.Nil || userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "venue id and user id required")
	}
	memos, err := s.repo.ListForUser(ctx, venueID, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list memos")
	}
	return memos, nil
}
