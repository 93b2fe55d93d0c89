package auth

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yoshiakiban-byte/bottle-amigo/internal/staff"
	"github.com/yoshiakiban-byte/bottle-amigo/internal/users"
	pkgauth "github.com/yoshiakiban-byte/bottle-amigo/pkg/auth"
	"github.com/yoshiakiban-byte/bottle-amigo/pkg/config"
	"github.com/yoshiakiban-byte/bottle-amigo/pkg/db/models"
	"github.com/yoshiakiban-byte/bottle-amigo/pkg/enums"
	pkgerrors "github.com/yoshiakiban-byte/bottle-amigo/pkg/errors"
	"github.com/yoshiakiban-byte/bottle-amigo/pkg/security"
)

const passwordMinLength = 8

// RegisterParams describes a new patron account.
type RegisterParams struct {
	Name     string `validate:"required"`
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

// LoginParams carries patron credentials.
type LoginParams struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

// StaffLoginParams carries a venue-scoped PIN login.
type StaffLoginParams struct {
	VenueID uuid.UUID `validate:"required"`
	PIN     string    `validate:"required"`
}

// PatronSession is the result of a successful patron register or login.
type PatronSession struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

// StaffSession is the result of a successful staff PIN login.
type StaffSession struct {
	Token     string               `json:"token"`
	ExpiresAt time.Time            `json:"expires_at"`
	Staff     *models.StaffAccount `json:"staff"`
}

// Service issues access tokens for patrons and venue staff.
type Service interface {
	RegisterPatron(ctx context.Context, params RegisterParams) (*PatronSession, error)
	LoginPatron(ctx context.Context, params LoginParams) (*PatronSession, error)
	StaffLogin(ctx context.Context, params StaffLoginParams) (*StaffSession, error)
}

type service struct {
	users    users.Repository
	staff    staff.Repository
	jwt      config.JWTConfig
	password config.PasswordConfig
	now      func() time.Time
}

// NewService wires the authentication service.
func NewService(userRepo users.Repository, staffRepo staff.Repository, jwt config.JWTConfig, password config.PasswordConfig) (Service, error) {
	if userRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "users repository is required")
	}
	if staffRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "staff repository is required")
	}
	if jwt.Secret == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "jwt secret is required")
	}
	return &service{
		users:    userRepo,
		staff:    staffRepo,
		jwt:      jwt,
		password: password,
		now:      time.Now,
	}, nil
}

func (s *service) RegisterPatron(ctx context.Context, params RegisterParams) (*PatronSession, error) {
	name := strings.TrimSpace(params.Name)
	email := normalizeEmail(params.Email)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if len(params.Password) < passwordMinLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password must be at least 8 characters")
	}

	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user by email")
	}
	if existing != nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
	}

	hash, err := security.HashPassword(params.Password, s.password)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	now := s.now()
	user := &models.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		LastLoginAt:  &now,
		CreatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
	}
	return s.patronSession(user, now)
}

func (s *service) LoginPatron(ctx context.Context, params LoginParams) (*PatronSession, error) {
	email := normalizeEmail(params.Email)
	if email == "" || params.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email and password are required")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user by email")
	}
	if user == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid email or password")
	}
	match, err := security.VerifyPassword(params.Password, user.PasswordHash)
	if err != nil || !match {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid email or password")
	}

	now := s.now()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record last login")
	}
	user.LastLoginAt = &now
	return s.patronSession(user, now)
}

// StaffLogin resolves the staff account by verifying the PIN against every
// account at the venue, since PINs are stored only as Argon2id hashes.
func (s *service) StaffLogin(ctx context.Context, params StaffLoginParams) (*StaffSession, error) {
	if params.VenueID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "venue id is required")
	}
	if params.PIN == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "pin is required")
	}

	accounts, err := s.staff.ListByVenue(ctx, params.VenueID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list staff accounts")
	}
	var matched *models.StaffAccount
	for i := range accounts {
		ok, err := security.VerifyPassword(params.PIN, accounts[i].PINHash)
		if err != nil {
			continue
		}
		if ok {
			matched = &accounts[i]
			break
		}
	}
	if matched == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid pin")
	}
	if !matched.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "staff account is deactivated")
	}

	now := s.now()
	if err := s.staff.TouchLastLogin(ctx, matched.ID, now); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record staff last login")
	}
	matched.LastLoginAt = &now

	role := matched.Role
	venueID := matched.VenueID
	token, err := pkgauth.MintAccessToken(s.jwt, now, pkgauth.AccessTokenPayload{
		PrincipalID: matched.ID,
		Kind:        enums.PrincipalKindStaff,
		VenueID:     &venueID,
		Role:        &role,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint staff token")
	}
	return &StaffSession{
		Token:     token,
		ExpiresAt: now.Add(s.jwt.Expiration()),
		Staff:     matched,
	}, nil
}

func (s *service) patronSession(user *models.User, now time.Time) (*PatronSession, error) {
	token, err := pkgauth.MintAccessToken(s.jwt, now, pkgauth.AccessTokenPayload{
		PrincipalID: user.ID,
		Kind:        enums.PrincipalKindCustomer,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}
	return &PatronSession{
		Token:     token,
		ExpiresAt: now.Add(s.jwt.Expiration()),
		User:      user,
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
