package inventory

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yoshiakiban-byte/bottle-amigo/internal/notifications"
	"github.com/yoshiakiban-byte/bottle-amigo/pkg/db/models"
	"github.com/yoshiakiban-byte/bottle-amigo/pkg/enums"
	pkgerrors "github.com/yoshiakiban-byte/bottle-amigo/pkg/errors"
	"github.com/yoshiakiban-byte/bottle-amigo/pkg/pagination"
)

const defaultCapacityML = 750

// Service manages kept bottles and their quantity ledger.
type Service interface {
	AddBottle(ctx context.Context, params AddBottleParams) (*models.Bottle, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Bottle, error)
	ListByVenue(ctx context.Context, venueID uuid.UUID, ownerUserID *uuid.UUID) ([]models.Bottle, error)
	ListByOwner(ctx context.Context, ownerUserID uuid.UUID) ([]models.Bottle, error)
	ApplyQuantityChange(ctx context.Context, params QuantityChangeParams) (*models.Bottle, error)
	RefillToFull(ctx context.Context, params RefillParams) (*models.Bottle, error)
	CreateGift(ctx context.Context, params GiftParams) (*models.Bottle, error)
	History(ctx context.Context, params HistoryParams) (*HistoryResult, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// AddBottleParams registers a new kept bottle at intake.
type AddBottleParams struct {
	VenueID     uuid.UUID
	OwnerUserID uuid.UUID
	StaffID     uuid.UUID
	Kind        string
	CapacityML  *int
	RemainingML *int
}

// QuantityChangeParams sets a bottle's level after a visit. Exactly one of
// RemainingML/RemainingPct must be set.
type QuantityChangeParams struct {
	BottleID     uuid.UUID
	VenueID      uuid.UUID
	StaffID      uuid.UUID
	RemainingML  *int
	RemainingPct *int
}

// RefillParams resets a bottle to full. Mama only.
type RefillParams struct {
	BottleID  uuid.UUID
	VenueID   uuid.UUID
	StaffID   uuid.UUID
	ActorRole enums.StaffRole
}

// GiftParams tops up a bottle on the house. Mama only. Exactly one of
// AddML/AddPct must be set and positive.
type GiftParams struct {
	BottleID  uuid.UUID
	VenueID   uuid.UUID
	StaffID   uuid.UUID
	ActorRole enums.StaffRole
	AddML     *int
	AddPct    *int
	Reason    string
}

type HistoryParams struct {
	BottleID uuid.UUID
	Limit    int
	Cursor   string
}

type HistoryResult struct {
	Entries    []models.BottleHistoryEntry
	NextCursor string
}

type service struct {
	repo   Repository
	tx     txRunner
	fanout notifications.Fanout
	now    func() time.Time
}

// NewService wires the inventory dependencies.
func NewService(repo Repository, tx txRunner, fanout notifications.Fanout) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "inventory repository required")
	}
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction runner required")
	}
	if fanout == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notification fanout required")
	}
	return &service{repo: repo, tx: tx, fanout: fanout, now: time.Now}, nil
}

// derivePct rounds half up, so a nearly empty bottle still shows 1 percent
// until it is actually at zero.
func derivePct(remainingML, capacityML int) int {
	if capacityML <= 0 {
		return 0
	}
	return int(math.Round(float64(remainingML) * 100 / float64(capacityML)))
}

func clampML(value, capacityML int) int {
	if value < 0 {
		return 0
	}
	if value > capacityML {
		return capacityML
	}
	return value
}

func clampPct(value int) int {
	if value < 0 {
		return 0
	}
	if value > 100 {
		return 100
	}
	return value
}

func (s *service) AddBottle(ctx context.Context, params AddBottleParams) (*models.Bottle, error) {
	if params.VenueID == uuid.Nil || params.OwnerUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "venue id and owner id required")
	}
	kind := strings.TrimSpace(params.Kind)
	if kind == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "bottle kind required")
	}

	capacity := defaultCapacityML
	if params.CapacityML != nil {
		if *params.CapacityML <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "capacity must be positive")
		}
		capacity = *params.CapacityML
	}
	remaining := capacity
	if params.RemainingML != nil {
		remaining = clampML(*params.RemainingML, capacity)
	}

	bottle := &models.Bottle{
		ID:           uuid.New(),
		VenueID:      params.VenueID,
		OwnerUserID:  params.OwnerUserID,
		Kind:         kind,
		CapacityML:   capacity,
		RemainingML:  remaining,
		RemainingPct: derivePct(remaining, capacity),
		CreatedAt:    s.now().UTC(),
		UpdatedAt:    s.now().UTC(),
	}
	if err := s.repo.Create(ctx, bottle); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "register bottle")
	}
	return bottle, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Bottle, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "bottle id required")
	}
	bottle, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load bottle")
	}
	if bottle == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "bottle not found")
	}
	return bottle, nil
}

func (s *service) ListByVenue(ctx context.Context, venueID uuid.UUID, ownerUserID *uuid.UUID) ([]models.Bottle, error) {
	if venueID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "venue id required")
	}
	bottles, err := s.repo.ListByVenue(ctx, venueID, ownerUserID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list venue bottles")
	}
	return bottles, nil
}

func (s *service) ListByOwner(ctx context.Context, ownerUserID uuid.UUID) ([]models.Bottle, error) {
	if ownerUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner id required")
	}
	bottles, err := s.repo.ListByOwner(ctx, ownerUserID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list owned bottles")
	}
	return bottles, nil
}

func (s *service) ApplyQuantityChange(ctx context.Context, params QuantityChangeParams) (*models.Bottle, error) {
	if params.BottleID == uuid.Nil || params.StaffID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "bottle id and staff id required")
	}
	if (params.RemainingML == nil) == (params.RemainingPct == nil) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "exactly one of remaining_ml or remaining_pct required")
	}

	var updated *models.Bottle
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		bottle, err := s.lockVenueBottle(ctx, repo, params.BottleID, params.VenueID)
		if err != nil {
			return err
		}

		prevML, prevPct := bottle.RemainingML, bottle.RemainingPct
		var newML int
		if params.RemainingML != nil {
			newML = clampML(*params.RemainingML, bottle.CapacityML)
		} else {
			pct := clampPct(*params.RemainingPct)
			newML = bottle.CapacityML * pct / 100
		}
		bottle.RemainingML = newML
		bottle.RemainingPct = derivePct(newML, bottle.CapacityML)
		bottle.UpdatedAt = s.now().UTC()

		if err := repo.UpdateQuantity(ctx, bottle); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update bottle quantity")
		}
		if err := s.appendHistory(ctx, repo, bottle, params.StaffID, prevML, prevPct, enums.BottleChangeTypeUpdate); err != nil {
			return err
		}
		updated = bottle
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) RefillToFull(ctx context.Context, params RefillParams) (*models.Bottle, error) {
	if params.BottleID == uuid.Nil || params.StaffID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "bottle id and staff id required")
	}
	if params.ActorRole != enums.StaffRoleMama {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "refill requires the mama role")
	}

	var updated *models.Bottle
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		bottle, err := s.lockVenueBottle(ctx, repo, params.BottleID, params.VenueID)
		if err != nil {
			return err
		}

		prevML, prevPct := bottle.RemainingML, bottle.RemainingPct
		bottle.RemainingML = bottle.CapacityML
		bottle.RemainingPct = 100
		bottle.UpdatedAt = s.now().UTC()

		if err := repo.UpdateQuantity(ctx, bottle); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "refill bottle")
		}
		if err := s.appendHistory(ctx, repo, bottle, params.StaffID, prevML, prevPct, enums.BottleChangeTypeRefill); err != nil {
			return err
		}
		updated = bottle
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) CreateGift(ctx context.Context, params GiftParams) (*models.Bottle, error) {
	if params.BottleID == uuid.Nil || params.StaffID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "bottle id and staff id required")
	}
	if params.ActorRole != enums.StaffRoleMama {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "gifting requires the mama role")
	}
	if (params.AddML == nil) == (params.AddPct == nil) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "exactly one of add_ml or add_pct required")
	}
	if params.AddML != nil && *params.AddML <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "gift volume must be positive")
	}
	if params.AddPct != nil && *params.AddPct <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "gift percent must be positive")
	}

	var updated *models.Bottle
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		bottle, err := s.lockVenueBottle(ctx, repo, params.BottleID, params.VenueID)
		if err != nil {
			return err
		}

		prevML, prevPct := bottle.RemainingML, bottle.RemainingPct
		addML := 0
		if params.AddML != nil {
			addML = *params.AddML
		} else {
			addML = bottle.CapacityML * *params.AddPct / 100
		}
		newML := prevML + addML
		if newML > bottle.CapacityML {
			newML = bottle.CapacityML
		}
		bottle.RemainingML = newML
		bottle.RemainingPct = derivePct(newML, bottle.CapacityML)
		now := s.now().UTC()
		bottle.UpdatedAt = now

		if err := repo.UpdateQuantity(ctx, bottle); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "apply gift")
		}

		gift := &models.BottleGift{
			ID:           uuid.New(),
			VenueID:      bottle.VenueID,
			TargetUserID: bottle.OwnerUserID,
			BottleID:     bottle.ID,
			AddPct:       params.AddPct,
			AddML:        params.AddML,
			Reason:       strings.TrimSpace(params.Reason),
			Status:       enums.GiftStatusApplied,
			CreatedAt:    now,
			AppliedAt:    &now,
		}
		if err := repo.CreateGift(ctx, gift); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record gift")
		}
		if err := s.appendHistory(ctx, repo, bottle, params.StaffID, prevML, prevPct, enums.BottleChangeTypeGift); err != nil {
			return err
		}

		event := notifications.BottleGiftEvent{
			BottleID:    bottle.ID,
			GiftID:      gift.ID,
			RecipientID: bottle.OwnerUserID,
			Now:         now,
		}
		if err := s.fanout.BottleGift(ctx, tx, event); err != nil {
			return err
		}
		updated = bottle
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) History(ctx context.Context, params HistoryParams) (*HistoryResult, error) {
	if params.BottleID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "bottle id required")
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	entries, next, err := s.repo.ListHistory(ctx, listHistoryParams{
		BottleID: params.BottleID,
		Limit:    params.Limit,
		Cursor:   cursor,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list bottle history")
	}
	result := &HistoryResult{Entries: entries}
	if next != nil {
		result.NextCursor = pagination.EncodeCursor(*next)
	}
	return result, nil
}

// lockVenueBottle loads the bottle under a row lock and, when a venue scope is
// given, refuses cross-venue access.
func (s *service) lockVenueBottle(ctx context.Context, repo Repository, bottleID, venueID uuid.UUID) (*models.Bottle, error) {
	bottle, err := repo.FindForUpdate(ctx, bottleID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load bottle")
	}
	if bottle == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "bottle not found")
	}
	if venueID != uuid.Nil && bottle.VenueID != venueID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "bottle belongs to another venue")
	}
	return bottle, nil
}

func (s *service) appendHistory(ctx context.Context, repo Repository, bottle *models.Bottle, staffID uuid.UUID, prevML, prevPct int, changeType enums.BottleChangeType) error {
	entry := &models.BottleHistoryEntry{
		ID:          uuid.New(),
		BottleID:    bottle.ID,
		VenueID:     bottle.VenueID,
		StaffID:     staffID,
		PreviousPct: prevPct,
		NewPct:      bottle.RemainingPct,
		PreviousML:  prevML,
		NewML:       bottle.RemainingML,
		ChangeType:  changeType,
		CreatedAt:   s.now().UTC(),
	}
	if err := repo.CreateHistory(ctx, entry); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "append bottle history")
	}
	return nil
}
