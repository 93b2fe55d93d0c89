package sessions

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yoshiakiban-byte/bottle-amigo/internal/notifications"
	"github.com/yoshiakiban-byte/bottle-amigo/pkg/db"
	"github.com/yoshiakiban-byte/bottle-amigo/pkg/db/dbtypes"
	"github.com/yoshiakiban-byte/bottle-amigo/pkg/db/models"
	"github.com/yoshiakiban-byte/bottle-amigo/pkg/enums"
	pkgerrors "github.com/yoshiakiban-byte/bottle-amigo/pkg/errors"
)

// Service coordinates venue check-in sessions.
type Service interface {
	CheckIn(ctx context.Context, params CheckInParams) (*models.CheckIn, error)
	StaffCheckIn(ctx context.Context, params StaffCheckInParams) (*models.CheckIn, error)
	EndCheckIn(ctx context.Context, params EndCheckInParams) (*EndCheckInResult, error)
	ActiveCheckIn(ctx context.Context, userID uuid.UUID) (*models.CheckIn, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// CheckInParams opens a session for a patron. NotifyToUserIDs is the amigo
// set to alert; it is frozen onto the check-in row.
type CheckInParams struct {
	UserID          uuid.UUID
	VenueID         uuid.UUID
	NotifyToUserIDs []uuid.UUID
}

// StaffCheckInParams opens a session on a patron's behalf from the counter.
type StaffCheckInParams struct {
	UserID  uuid.UUID
	VenueID uuid.UUID
	StaffID uuid.UUID
}

// EndCheckInParams closes a session from the staff side.
type EndCheckInParams struct {
	CheckInID uuid.UUID
	VenueID   uuid.UUID
	StaffID   uuid.UUID
}

// EndCheckInResult carries the closed session plus the patron's kept bottles
// at the venue, so the counter screen can settle quantities immediately.
type EndCheckInResult struct {
	CheckIn *models.CheckIn
	Bottles []models.Bottle
}

type service struct {
	repo   Repository
	tx     txRunner
	fanout notifications.Fanout
	now    func() time.Time
}

// NewService wires the session dependencies.
func NewService(repo Repository, tx txRunner, fanout notifications.Fanout) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "sessions repository required")
	}
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction runner required")
	}
	if fanout == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notification fanout required")
	}
	return &service{repo: repo, tx: tx, fanout: fanout, now: time.Now}, nil
}

func (s *service) CheckIn(ctx context.Context, params CheckInParams) (*models.CheckIn, error) {
	if params.UserID == uuid.Nil || params.VenueID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id and venue id required")
	}
	exists, err := s.repo.VenueExists(ctx, params.VenueID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify venue")
	}
	if !exists {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "venue not found")
	}

	notifyList := dedupeRecipients(params.NotifyToUserIDs, params.UserID)
	now := s.now().UTC()
	checkIn := &models.CheckIn{
		ID:              uuid.New(),
		VenueID:         params.VenueID,
		UserID:          params.UserID,
		NotifyToUserIDs: notifyList,
		Status:          enums.CheckInStatusActive,
		CreatedAt:       now,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.CompleteActiveForUser(ctx, params.UserID, now); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "complete previous check-in")
		}
		if err := repo.Create(ctx, checkIn); err != nil {
			// Another check-in committing between our close and create
			// trips the one-active-per-user index.
			if db.IsUniqueViolation(err, "idx_check_ins_one_active_per_user") {
				return pkgerrors.New(pkgerrors.CodeConflict, "user already has an active check-in")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create check-in")
		}
		event := notifications.AmigoCheckInEvent{
			UserID:       params.UserID,
			VenueID:      params.VenueID,
			CheckInID:    checkIn.ID,
			RecipientIDs: notifyList,
			Now:          now,
		}
		return s.fanout.AmigoCheckIn(ctx, tx, event)
	})
	if err != nil {
		return nil, err
	}
	return checkIn, nil
}

func (s *service) StaffCheckIn(ctx context.Context, params StaffCheckInParams) (*models.CheckIn, error) {
	if params.UserID == uuid.Nil || params.VenueID == uuid.Nil || params.StaffID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id, venue id and staff id required")
	}
	existing, err := s.repo.FindActiveByUserAndVenue(ctx, params.UserID, params.VenueID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check active session")
	}
	if existing != nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "user already has an active check-in at this venue")
	}

	now := s.now().UTC()
	checkIn := &models.CheckIn{
		ID:              uuid.New(),
		VenueID:         params.VenueID,
		UserID:          params.UserID,
		NotifyToUserIDs: dbtypes.UUIDArray{},
		Status:          enums.CheckInStatusActive,
		CreatedAt:       now,
	}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		// An active session at a different venue still has to close so only
		// one active row per user ever exists.
		if _, err := repo.CompleteActiveForUser(ctx, params.UserID, now); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "complete previous check-in")
		}
		if err := repo.Create(ctx, checkIn); err != nil {
			if db.IsUniqueViolation(err, "idx_check_ins_one_active_per_user") {
				return pkgerrors.New(pkgerrors.CodeConflict, "user already has an active check-in")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create check-in")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return checkIn, nil
}

func (s *service) EndCheckIn(ctx context.Context, params EndCheckInParams) (*EndCheckInResult, error) {
	if params.CheckInID == uuid.Nil || params.StaffID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "check-in id and staff id required")
	}
	checkIn, err := s.repo.FindByID(ctx, params.CheckInID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load check-in")
	}
	if checkIn == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "check-in not found")
	}
	if params.VenueID != uuid.Nil && checkIn.VenueID != params.VenueID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "check-in belongs to another venue")
	}
	if !checkIn.Status.CanTransitionTo(enums.CheckInStatusEnded) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "check-in is not active")
	}

	now := s.now().UTC()
	if err := s.repo.SetStatus(ctx, checkIn.ID, enums.CheckInStatusEnded, now); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "end check-in")
	}
	checkIn.Status = enums.CheckInStatusEnded
	checkIn.EndedAt = &now

	bottles, err := s.repo.UserBottlesAtVenue(ctx, checkIn.UserID, checkIn.VenueID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load bottle snapshot")
	}
	return &EndCheckInResult{CheckIn: checkIn, Bottles: bottles}, nil
}

func (s *service) ActiveCheckIn(ctx context.Context, userID uuid.UUID) (*models.CheckIn, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	checkIn, err := s.repo.FindActiveByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load active check-in")
	}
	return checkIn, nil
}

func dedupeRecipients(ids []uuid.UUID, self uuid.UUID) dbtypes.UUIDArray {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	result := make(dbtypes.UUIDArray, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil || id == self {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	return result
}
