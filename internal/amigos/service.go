package amigos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yoshiakiban-byte/bottle-amigo/pkg/db"
	"github.com/yoshiakiban-byte/bottle-amigo/pkg/db/models"
	"github.com/yoshiakiban-byte/bottle-amigo/pkg/enums"
	pkgerrors "github.com/yoshiakiban-byte/bottle-amigo/pkg/errors"
)

// Service coordinates amigo pairings, both the request/accept flow and the
// in-venue QR pairing flow.
type Service interface {
	Request(ctx context.Context, params RequestParams) (*models.Amigo, error)
	Accept(ctx context.Context, params AcceptParams) (*models.Amigo, error)
	ListForUser(ctx context.Context, userID uuid.UUID, venueID *uuid.UUID) ([]models.Amigo, error)
	IssuePairingToken(ctx context.Context, userID uuid.UUID) (*PairingToken, error)
	ConsumePairingToken(ctx context.Context, params ConsumeParams) (*models.Amigo, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// RequestParams opens a pending pairing. VenueID may be left empty when the
// requester is checked in somewhere; the session's venue is used then.
type RequestParams struct {
	RequesterUserID uuid.UUID
	TargetUserID    uuid.UUID
	VenueID         uuid.UUID
}

type AcceptParams struct {
	AmigoID     uuid.UUID
	ActorUserID uuid.UUID
}

// PairingToken is what gets rendered as a QR code.
type PairingToken struct {
	Token     uuid.UUID `json:"token"`
	VenueID   uuid.UUID `json:"venueId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type ConsumeParams struct {
	ScannerUserID uuid.UUID
	Token         uuid.UUID
}

type service struct {
	repo     Repository
	tx       txRunner
	tokenTTL time.Duration
	now      func() time.Time
}

// NewService wires the amigo dependencies. tokenTTL bounds how long a QR
// pairing token stays consumable.
func NewService(repo Repository, tx txRunner, tokenTTL time.Duration) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "amigos repository required")
	}
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction runner required")
	}
	if tokenTTL <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "token ttl must be positive")
	}
	return &service{repo: repo, tx: tx, tokenTTL: tokenTTL, now: time.Now}, nil
}

func (s *service) Request(ctx context.Context, params RequestParams) (*models.Amigo, error) {
	if params.RequesterUserID == uuid.Nil || params.TargetUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "requester and target required")
	}
	if params.RequesterUserID == params.TargetUserID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cannot pair with yourself")
	}

	venueID := params.VenueID
	if venueID == uuid.Nil {
		checkIn, err := s.repo.FindActiveCheckIn(ctx, params.RequesterUserID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load active check-in")
		}
		if checkIn == nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "venue required when not checked in")
		}
		venueID = checkIn.VenueID
	}

	exists, err := s.repo.UserExists(ctx, params.TargetUserID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "look up target user")
	}
	if !exists {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "target user not found")
	}

	if err := s.rejectExistingPairing(ctx, venueID, params.RequesterUserID, params.TargetUserID); err != nil {
		return nil, err
	}

	amigo := &models.Amigo{
		ID:              uuid.New(),
		VenueID:         venueID,
		RequesterUserID: params.RequesterUserID,
		TargetUserID:    params.TargetUserID,
		Status:          enums.AmigoStatusPending,
		CreatedAt:       s.now().UTC(),
	}
	if err := s.repo.Create(ctx, amigo); err != nil {
		// The unique pair index catches requests racing past FindBetween.
		if db.IsUniqueViolation(err, "idx_amigos_venue_pair") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "pairing already exists at this venue")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create amigo request")
	}
	return amigo, nil
}

func (s *service) Accept(ctx context.Context, params AcceptParams) (*models.Amigo, error) {
	if params.AmigoID == uuid.Nil || params.ActorUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amigo id and actor required")
	}
	amigo, err := s.repo.FindByID(ctx, params.AmigoID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load amigo request")
	}
	if amigo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "amigo request not found")
	}
	if amigo.TargetUserID != params.ActorUserID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the requested user can accept")
	}
	if amigo.Status != enums.AmigoStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "amigo request is not pending")
	}

	now := s.now().UTC()
	if err := s.repo.Accept(ctx, amigo.ID, now); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "accept amigo request")
	}
	amigo.Status = enums.AmigoStatusActive
	amigo.AcceptedAt = &now
	return amigo, nil
}

func (s *service) ListForUser(ctx context.Context, userID uuid.UUID, venueID *uuid.UUID) ([]models.Amigo, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	amigos, err := s.repo.ListForUser(ctx, userID, venueID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list amigos")
	}
	return amigos, nil
}

func (s *service) IssuePairingToken(ctx context.Context, userID uuid.UUID) (*PairingToken, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	checkIn, err := s.repo.FindActiveCheckIn(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load active check-in")
	}
	if checkIn == nil {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "check in before issuing a pairing code")
	}

	now := s.now().UTC()
	// Expired tokens are garbage by definition, cleared opportunistically on
	// every issue instead of by a background job.
	if _, err := s.repo.PurgeTokensBefore(ctx, now.Add(-s.tokenTTL)); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "purge expired tokens")
	}

	token := &models.AmigoQRToken{
		Token:     uuid.New(),
		UserID:    userID,
		VenueID:   checkIn.VenueID,
		CreatedAt: now,
	}
	if err := s.repo.CreateToken(ctx, token); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create pairing token")
	}
	return &PairingToken{
		Token:     token.Token,
		VenueID:   token.VenueID,
		ExpiresAt: now.Add(s.tokenTTL),
	}, nil
}

func (s *service) ConsumePairingToken(ctx context.Context, params ConsumeParams) (*models.Amigo, error) {
	if params.ScannerUserID == uuid.Nil || params.Token == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "scanner and token required")
	}
	checkIn, err := s.repo.FindActiveCheckIn(ctx, params.ScannerUserID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load active check-in")
	}
	if checkIn == nil {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "check in before scanning a pairing code")
	}

	token, err := s.repo.FindToken(ctx, params.Token)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load pairing token")
	}
	if token == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "pairing token not found")
	}
	now := s.now().UTC()
	if !now.Before(token.CreatedAt.Add(s.tokenTTL)) {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "pairing token expired")
	}
	if token.Used {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "pairing token already used")
	}
	if token.UserID == params.ScannerUserID {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "cannot pair with yourself")
	}
	if token.VenueID != checkIn.VenueID {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "pairing code belongs to another venue")
	}
	if err := s.rejectExistingPairing(ctx, token.VenueID, token.UserID, params.ScannerUserID); err != nil {
		return nil, err
	}

	amigo := &models.Amigo{
		ID:              uuid.New(),
		VenueID:         token.VenueID,
		RequesterUserID: token.UserID,
		TargetUserID:    params.ScannerUserID,
		Status:          enums.AmigoStatusActive,
		CreatedAt:       now,
		AcceptedAt:      &now,
	}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		// The conditional update is the single-use guarantee. A second
		// scanner racing past the Used read above loses here.
		consumed, err := repo.MarkTokenUsed(ctx, token.Token)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mark token used")
		}
		if !consumed {
			return pkgerrors.New(pkgerrors.CodeConflict, "pairing token already used")
		}
		if err := repo.Create(ctx, amigo); err != nil {
			if db.IsUniqueViolation(err, "idx_amigos_venue_pair") {
				return pkgerrors.New(pkgerrors.CodeConflict, "pairing already exists at this venue")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create amigo pairing")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return amigo, nil
}

func (s *service) rejectExistingPairing(ctx context.Context, venueID, userA, userB uuid.UUID) error {
	existing, err := s.repo.FindBetween(ctx, venueID, userA, userB)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check existing pairing")
	}
	if existing == nil {
		return nil
	}
	if existing.Status == enums.AmigoStatusActive {
		return pkgerrors.New(pkgerrors.CodeConflict, "already amigos at this venue")
	}
	return pkgerrors.New(pkgerrors.CodeConflict, "amigo request already pending")
}
