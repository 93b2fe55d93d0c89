package shares

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yoshiakiban-byte/bottle-amigo/internal/notifications"
	"github.com/yoshiakiban-byte/bottle-amigo/pkg/db"
	"github.com/yoshiakiban-byte/bottle-amigo/pkg/db/models"
	pkgerrors "github.com/yoshiakiban-byte/bottle-amigo/pkg/errors"
)

// Service manages drinking permissions on kept bottles.
type Service interface {
	Create(ctx context.Context, params CreateParams) (*models.BottleShare, error)
	End(ctx context.Context, params EndParams) (*models.BottleShare, error)
	ListForBottle(ctx context.Context, bottleID uuid.UUID) ([]models.BottleShare, error)
	ListGrantedTo(ctx context.Context, userID uuid.UUID) ([]models.BottleShare, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// CreateParams grants a patron access to the actor's bottle.
type CreateParams struct {
	BottleID       uuid.UUID
	ActorUserID    uuid.UUID
	SharedToUserID uuid.UUID
}

// EndParams revokes a share. Owner only; the row is kept for history.
type EndParams struct {
	ShareID     uuid.UUID
	ActorUserID uuid.UUID
}

type service struct {
	repo   Repository
	tx     txRunner
	fanout notifications.Fanout
	now    func() time.Time
}

// NewService wires the share dependencies.
func NewService(repo Repository, tx txRunner, fanout notifications.Fanout) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "shares repository required")
	}
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction runner required")
	}
	if fanout == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notification fanout required")
	}
	return &service{repo: repo, tx: tx, fanout: fanout, now: time.Now}, nil
}

func (s *service) Create(ctx context.Context, params CreateParams) (*models.BottleShare, error) {
	if params.BottleID == uuid.Nil || params.ActorUserID == uuid.Nil || params.SharedToUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "bottle, owner and grantee required")
	}
	if params.ActorUserID == params.SharedToUserID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cannot share a bottle with yourself")
	}

	bottle, err := s.repo.FindBottle(ctx, params.BottleID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load bottle")
	}
	if bottle == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "bottle not found")
	}
	if bottle.OwnerUserID != params.ActorUserID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the owner can share a bottle")
	}

	existing, err := s.repo.FindActive(ctx, params.BottleID, params.SharedToUserID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check existing share")
	}
	if existing != nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "bottle is already shared with this user")
	}

	now := s.now().UTC()
	share := &models.BottleShare{
		ID:             uuid.New(),
		BottleID:       bottle.ID,
		VenueID:        bottle.VenueID,
		OwnerUserID:    bottle.OwnerUserID,
		SharedToUserID: params.SharedToUserID,
		Active:         true,
		CreatedAt:      now,
	}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Create(ctx, share); err != nil {
			// Two owners sharing to the same grantee at once both pass the
			// FindActive read; the partial index decides the winner.
			if db.IsUniqueViolation(err, "idx_bottle_shares_one_active") {
				return pkgerrors.New(pkgerrors.CodeConflict, "bottle is already shared with this user")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create share")
		}
		event := notifications.BottleShareEvent{
			BottleID:    bottle.ID,
			ShareID:     share.ID,
			OwnerUserID: bottle.OwnerUserID,
			RecipientID: params.SharedToUserID,
			Now:         now,
		}
		return s.fanout.BottleShare(ctx, tx, event)
	})
	if err != nil {
		return nil, err
	}
	return share, nil
}

func (s *service) End(ctx context.Context, params EndParams) (*models.BottleShare, error) {
	if params.ShareID == uuid.Nil || params.ActorUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "share id and actor required")
	}
	share, err := s.repo.FindByID(ctx, params.ShareID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load share")
	}
	if share == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "share not found")
	}
	if share.OwnerUserID != params.ActorUserID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the owner can end a share")
	}
	if !share.Active {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "share is already ended")
	}

	now := s.now().UTC()
	if err := s.repo.End(ctx, share.ID, now); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "end share")
	}
	share.Active = false
	share.EndedAt = &now
	return share, nil
}

func (s *service) ListForBottle(ctx context.Context, bottleID uuid.UUID) ([]models.BottleShare, error) {
	if bottleID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "bottle id required")
	}
	shares, err := s.repo.ListForBottle(ctx, bottleID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list bottle shares")
	}
	return shares, nil
}

func (s *service) ListGrantedTo(ctx context.Context, userID uuid.UUID) ([]models.BottleShare, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	shares, err := s.repo.ListGrantedTo(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list shares granted to user")
	}
	return shares, nil
}
