package venues

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yoshiakiban-byte/bottle-amigo/pkg/db/models"
	"github.com/yoshiakiban-byte/bottle-amigo/pkg/enums"
	pkgerrors "github.com/yoshiakiban-byte/bottle-amigo/pkg/errors"
)

// Service defines venue lookup, settings, and roster operations.
type Service interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Venue, error)
	UpdateSettings(ctx context.Context, params UpdateSettingsParams) (*models.Venue, error)
	CustomerRoster(ctx context.Context, venueID uuid.UUID) ([]CustomerSummary, error)
}

type service struct {
	repo Repository
}

// UpdateSettingsParams carries a mama-only settings update.
type UpdateSettingsParams struct {
	VenueID   uuid.UUID
	ActorRole enums.StaffRole
	Name      *string
	Address   *string
	Lat       *float64
	Lng       *float64
}

// CustomerSummary is one roster row for staff screens.
type CustomerSummary struct {
	UserID         uuid.UUID    `json:"userId"`
	Name           string       `json:"name"`
	Nickname       *string      `json:"nickname,omitempty"`
	BirthdayMonth  *int         `json:"birthdayMonth,omitempty"`
	BirthdayDay    *int         `json:"birthdayDay,omitempty"`
	BirthdayPublic bool         `json:"birthdayPublic"`
	BottleCount    int64        `json:"bottleCount"`
	LastCheckInAt  *time.Time   `json:"lastCheckinAt,omitempty"`
	IsCheckedIn    bool         `json:"isCheckedIn"`
	LatestMemo     *MemoSummary `json:"latestMemo,omitempty"`
}

// NewService wires venue dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "venues repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Venue, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "venue id required")
	}
	venue, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load venue")
	}
	if venue == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "venue not found")
	}
	return venue, nil
}

func (s *service) UpdateSettings(ctx context.Context, params UpdateSettingsParams) (*models.Venue, error) {
	if params.VenueID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "venue id required")
	}
	if params.ActorRole != enums.StaffRoleMama {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the mama can update venue settings")
	}

	updates := map[string]any{}
	if params.Name != nil {
		if strings.TrimSpace(*params.Name) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "venue name cannot be empty")
		}
		updates["name"] = strings.TrimSpace(*params.Name)
	}
	if params.Address != nil {
		if strings.TrimSpace(*params.Address) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "venue address cannot be empty")
		}
		updates["address"] = strings.TrimSpace(*params.Address)
	}
	if params.Lat != nil {
		updates["lat"] = *params.Lat
	}
	if params.Lng != nil {
		updates["lng"] = *params.Lng
	}

	if len(updates) > 0 {
		if err := s.repo.UpdateSettings(ctx, params.VenueID, updates); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update venue settings")
		}
	}
	return s.Get(ctx, params.VenueID)
}

func (s *service) CustomerRoster(ctx context.Context, venueID uuid.UUID) ([]CustomerSummary, error) {
	if venueID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "venue id required")
	}

	users, err := s.repo.RosterUsers(ctx, venueID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load roster users")
	}
	bottleCounts, err := s.repo.BottleCounts(ctx, venueID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load bottle counts")
	}
	lastCheckIns, err := s.repo.LastCheckIns(ctx, venueID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load last check-ins")
	}
	activeUsers, err := s.repo.ActiveCheckInUserIDs(ctx, venueID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load active check-ins")
	}
	memos, err := s.repo.LatestMemos(ctx, venueID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load latest memos")
	}

	summaries := make([]CustomerSummary, 0, len(users))
	for _, user := range users {
		summary := CustomerSummary{
			UserID:         user.ID,
			Name:           user.Name,
			Nickname:       user.Nickname,
			BirthdayMonth:  user.BirthdayMonth,
			BirthdayDay:    user.BirthdayDay,
			BirthdayPublic: user.BirthdayPublic,
			BottleCount:    bottleCounts[user.ID],
			IsCheckedIn:    activeUsers[user.ID],
		}
		if last, ok := lastCheckIns[user.ID]; ok {
			lastCopy := last
			summary.LastCheckInAt = &lastCopy
		}
		if memo, ok := memos[user.ID]; ok {
			memoCopy := memo
			summary.LatestMemo = &memoCopy
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}
