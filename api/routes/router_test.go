package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yoshiakiban-byte/bottle-amigo/internal/venues"
	pkgauth "github.com/yoshiakiban-byte/bottle-amigo/pkg/auth"
	"github.com/yoshiakiban-byte/bottle-amigo/pkg/config"
	"github.com/yoshiakiban-byte/bottle-amigo/pkg/db/models"
	"github.com/yoshiakiban-byte/bottle-amigo/pkg/enums"
)

type fakeVenuesService struct {
	venue *models.Venue
}

func (f *fakeVenuesService) Get(_ context.Context, id uuid.UUID) (*models.Venue, error) {
	if f.venue != nil && f.venue.ID == id {
		return f.venue, nil
	}
	return nil, nil
}

func (f *fakeVenuesService) UpdateSettings(_ context.Context, _ venues.UpdateSettingsParams) (*models.Venue, error) {
	return f.venue, nil
}

func (f *fakeVenuesService) CustomerRoster(_ context.Context, _ uuid.UUID) ([]venues.CustomerSummary, error) {
	return nil, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{Secret: "secret", Issuer: "issuer", ExpirationMinutes: 60},
	}
}

func newTestRouter(svcs Services) http.Handler {
	return NewRouter(testConfig(), nil, nil, nil, nil, nil, svcs)
}

func mintToken(t *testing.T, kind enums.PrincipalKind, venueID *uuid.UUID, role *enums.StaffRole) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(testConfig().JWT, time.Now(), pkgauth.AccessTokenPayload{
		PrincipalID: uuid.New(),
		Kind:        kind,
		VenueID:     venueID,
		Role:        role,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthLive(t *testing.T) {
	router := newTestRouter(Services{})

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestProtectedRouteRequiresToken(t *testing.T) {
	router := newTestRouter(Services{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/checkins/active", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestVenueDetailWithCustomerToken(t *testing.T) {
	venueID := uuid.New()
	router := newTestRouter(Services{
		Venues: &fakeVenuesService{venue: &models.Venue{ID: venueID, Name: "Bar Hoshizora"}},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/venues/"+venueID.String(), nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, enums.PrincipalKindCustomer, nil, nil))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestStaffSurfaceBlocksCustomers(t *testing.T) {
	router := newTestRouter(Services{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/staff/bottles", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, enums.PrincipalKindCustomer, nil, nil))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestPatronSurfaceBlocksStaff(t *testing.T) {
	router := newTestRouter(Services{})
	venueID := uuid.New()
	role := enums.StaffRoleBartender

	req := httptest.NewRequest(http.MethodGet, "/api/v1/checkins/active", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, enums.PrincipalKindStaff, &venueID, &role))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestStaffAccountsRequireMama(t *testing.T) {
	router := newTestRouter(Services{})
	venueID := uuid.New()
	role := enums.StaffRoleBartender

	req := httptest.NewRequest(http.MethodGet, "/api/v1/staff/accounts", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, enums.PrincipalKindStaff, &venueID, &role))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}
