package staff

import (
	"context"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/yoshiakiban-byte/bottle-amigo/pkg/config"
	"github.com/yoshiakiban-byte/bottle-amigo/pkg/db/models"
	"github.com/yoshiakiban-byte/bottle-amigo/pkg/enums"
	pkgerrors "github.com/yoshiakiban-byte/bottle-amigo/pkg/errors"
	"github.com/yoshiakiban-byte/bottle-amigo/pkg/security"
)

const (
	pinMinLength = 4
	pinMaxLength = 8
)

// Actor identifies the staff member performing a management call.
type Actor struct {
	StaffID uuid.UUID
	VenueID uuid.UUID
	Role    enums.StaffRole
}

// CreateParams describes a new staff account.
type CreateParams struct {
	Name string          `validate:"required"`
	Role enums.StaffRole `validate:"required"`
	PIN  string          `validate:"required"`
}

// UpdateParams carries optional staff account changes. Nil fields are
// left untouched.
type UpdateParams struct {
	Name *string
	Role *enums.StaffRole
	PIN  *string
}

// Service manages staff accounts for a venue. Every operation except
// listing is restricted to the mama role.
type Service interface {
	Create(ctx context.Context, actor Actor, params CreateParams) (*models.StaffAccount, error)
	Update(ctx context.Context, actor Actor, staffID uuid.UUID, params UpdateParams) (*models.StaffAccount, error)
	Delete(ctx context.Context, actor Actor, staffID uuid.UUID) error
	SetActive(ctx context.Context, actor Actor, staffID uuid.UUID, active bool) (*models.StaffAccount, error)
	ListByVenue(ctx context.Context, actor Actor) ([]models.StaffAccount, error)
}

type service struct {
	repo     Repository
	password config.PasswordConfig
	now      func() time.Time
}

// NewService wires a staff management service.
func NewService(repo Repository, password config.PasswordConfig) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "staff repository is required")
	}
	return &service{
		repo:     repo,
		password: password,
		now:      time.Now,
	}, nil
}

func (s *service) Create(ctx context.Context, actor Actor, params CreateParams) (*models.StaffAccount, error) {
	if err := requireMama(actor); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "staff name is required")
	}
	if !params.Role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid staff role")
	}
	if err := validatePIN(params.PIN); err != nil {
		return nil, err
	}
	if err := s.rejectPINCollision(ctx, actor.VenueID, params.PIN, uuid.Nil); err != nil {
		return nil, err
	}

	hash, err := security.HashPassword(params.PIN, s.password)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash staff pin")
	}
	account := &models.StaffAccount{
		ID:        uuid.New(),
		VenueID:   actor.VenueID,
		Name:      name,
		Role:      params.Role,
		PINHash:   hash,
		IsActive:  true,
		CreatedAt: s.now(),
	}
	if err := s.repo.Create(ctx, account); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create staff account")
	}
	return account, nil
}

func (s *service) Update(ctx context.Context, actor Actor, staffID uuid.UUID, params UpdateParams) (*models.StaffAccount, error) {
	if err := requireMama(actor); err != nil {
		return nil, err
	}
	account, err := s.loadVenueAccount(ctx, actor.VenueID, staffID)
	if err != nil {
		return nil, err
	}

	if params.Name != nil {
		name := strings.TrimSpace(*params.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "staff name is required")
		}
		account.Name = name
	}
	if params.Role != nil {
		if !params.Role.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid staff role")
		}
		if staffID == actor.StaffID && *params.Role != enums.StaffRoleMama {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "cannot demote your own account")
		}
		account.Role = *params.Role
	}
	if params.PIN != nil {
		if err := validatePIN(*params.PIN); err != nil {
			return nil, err
		}
		if err := s.rejectPINCollision(ctx, actor.VenueID, *params.PIN, staffID); err != nil {
			return nil, err
		}
		hash, err := security.HashPassword(*params.PIN, s.password)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash staff pin")
		}
		account.PINHash = hash
	}

	if err := s.repo.Update(ctx, account); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update staff account")
	}
	return account, nil
}

func (s *service) Delete(ctx context.Context, actor Actor, staffID uuid.UUID) error {
	if err := requireMama(actor); err != nil {
		return err
	}
	if staffID == actor.StaffID {
		return pkgerrors.New(pkgerrors.CodeValidation, "cannot delete your own account")
	}
	if _, err := s.loadVenueAccount(ctx, actor.VenueID, staffID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, staffID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete staff account")
	}
	return nil
}

func (s *service) SetActive(ctx context.Context, actor Actor, staffID uuid.UUID, active bool) (*models.StaffAccount, error) {
	if err := requireMama(actor); err != nil {
		return nil, err
	}
	if staffID == actor.StaffID && !active {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cannot deactivate your own account")
	}
	account, err := s.loadVenueAccount(ctx, actor.VenueID, staffID)
	if err != nil {
		return nil, err
	}
	if account.IsActive == active {
		return account, nil
	}
	if err := s.repo.SetActive(ctx, staffID, active); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update staff active flag")
	}
	account.IsActive = active
	return account, nil
}

func (s *service) ListByVenue(ctx context.Context, actor Actor) ([]models.StaffAccount, error) {
	accounts, err := s.repo.ListByVenue(ctx, actor.VenueID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list staff accounts")
	}
	return accounts, nil
}

func (s *service) loadVenueAccount(ctx context.Context, venueID, staffID uuid.UUID) (*models.StaffAccount, error) {
	account, err := s.repo.FindByID(ctx, staffID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find staff account")
	}
	if account == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "staff account not found")
	}
	if account.VenueID != venueID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "staff account belongs to another venue")
	}
	return account, nil
}

// rejectPINCollision keeps PINs unique within a venue. PINs are stored
// hashed, so uniqueness has to be checked by verifying the candidate
// against every sibling account.
func (s *service) rejectPINCollision(ctx context.Context, venueID uuid.UUID, pin string, excludeID uuid.UUID) error {
	accounts, err := s.repo.ListByVenue(ctx, venueID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list staff accounts")
	}
	for _, account := range accounts {
		if account.ID == excludeID {
			continue
		}
		match, err := security.VerifyPassword(pin, account.PINHash)
		if err != nil {
			continue
		}
		if match {
			return pkgerrors.New(pkgerrors.CodeConflict, "pin already in use at this venue")
		}
	}
	return nil
}

func requireMama(actor Actor) error {
	if actor.Role != enums.StaffRoleMama {
		return pkgerrors.New(pkgerrors.CodeForbidden, "mama role required")
	}
	return nil
}

func validatePIN(pin string) error {
	if len(pin) < pinMinLength || len(pin) > pinMaxLength {
		return pkgerrors.New(pkgerrors.CodeValidation, "pin must be 4 to 8 digits")
	}
	for _, r := range pin {
		if !unicode.IsDigit(r) {
			return pkgerrors.New(pkgerrors.CodeValidation, "pin must contain only digits")
		}
	}
	return nil
}
