package amigos

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yoshiakiban-byte/bottle-amigo/pkg/db/models"
	"github.com/yoshiakiban-byte/bottle-amigo/pkg/enums"
	pkgerrors "github.com/yoshiakiban-byte/bottle-amigo/pkg/errors"
)

type fakeAmigoRepo struct {
	amigos    map[uuid.UUID]*models.Amigo
	tokens    map[uuid.UUID]*models.AmigoQRToken
	checkIns  map[uuid.UUID]*models.CheckIn
	users     map[uuid.UUID]bool
	purged    []time.Time
	createErr error
}

func newFakeAmigoRepo() *fakeAmigoRepo {
	return &fakeAmigoRepo{
		amigos:   map[uuid.UUID]*models.Amigo{},
		tokens:   map[uuid.UUID]*models.AmigoQRToken{},
		checkIns: map[uuid.UUID]*models.CheckIn{},
		users:    map[uuid.UUID]bool{},
	}
}

func (f *fakeAmigoRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeAmigoRepo) Create(ctx context.Context, amigo *models.Amigo) error {
	if f.createErr != nil {
		return f.createErr
	}
	copied := *amigo
	f.amigos[amigo.ID] = &copied
	return nil
}

func (f *fakeAmigoRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Amigo, error) {
	if amigo, ok := f.amigos[id]; ok {
		copied := *amigo
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeAmigoRepo) FindBetween(ctx context.Context, venueID, userA, userB uuid.UUID) (*models.Amigo, error) {
	for _, amigo := range f.amigos {
		if amigo.VenueID != venueID {
			continue
		}
		straight := amigo.RequesterUserID == userA && amigo.TargetUserID == userB
		reversed := amigo.RequesterUserID == userB && amigo.TargetUserID == userA
		if straight || reversed {
			copied := *amigo
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeAmigoRepo) Accept(ctx context.Context, id uuid.UUID, now time.Time) error {
	if amigo, ok := f.amigos[id]; ok {
		amigo.Status = enums.AmigoStatusActive
		accepted := now
		amigo.AcceptedAt = &accepted
	}
	return nil
}

func (f *fakeAmigoRepo) ListForUser(ctx context.Context, userID uuid.UUID, venueID *uuid.UUID) ([]models.Amigo, error) {
	var result []models.Amigo
	for _, amigo := range f.amigos {
		if amigo.RequesterUserID != userID && amigo.TargetUserID != userID {
			continue
		}
		if venueID != nil && amigo.VenueID != *venueID {
			continue
		}
		result = append(result, *amigo)
	}
	return result, nil
}

func (f *fakeAmigoRepo) CreateToken(ctx context.Context, token *models.AmigoQRToken) error {
	copied := *token
	f.tokens[token.Token] = &copied
	return nil
}

func (f *fakeAmigoRepo) FindToken(ctx context.Context, token uuid.UUID) (*models.AmigoQRToken, error) {
	if row, ok := f.tokens[token]; ok {
		copied := *row
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeAmigoRepo) MarkTokenUsed(ctx context.Context, token uuid.UUID) (bool, error) {
	row, ok := f.tokens[token]
	if !ok || row.Used {
		return false, nil
	}
	row.Used = true
	return true, nil
}

func (f *fakeAmigoRepo) PurgeTokensBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	f.purged = append(f.purged, cutoff)
	var removed int64
	for key, row := range f.tokens {
		if row.CreatedAt.Before(cutoff) {
			delete(f.tokens, key)
			removed++
		}
	}
	return removed, nil
}

func (f *fakeAmigoRepo) FindActiveCheckIn(ctx context.Context, userID uuid.UUID) (*models.CheckIn, error) {
	if checkIn, ok := f.checkIns[userID]; ok {
		copied := *checkIn
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeAmigoRepo) UserExists(ctx context.Context, userID uuid.UUID) (bool, error) {
	return f.users[userID], nil
}

func (f *fakeAmigoRepo) addUser(userID uuid.UUID) {
	f.users[userID] = true
}

func (f *fakeAmigoRepo) checkInUser(userID, venueID uuid.UUID) {
	f.addUser(userID)
	f.checkIns[userID] = &models.CheckIn{
		ID:      uuid.New(),
		VenueID: venueID,
		UserID:  userID,
		Status:  enums.CheckInStatusActive,
	}
}

type fakeTxRunner struct{}

func (f *fakeTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func newTestService(t *testing.T, repo *fakeAmigoRepo) (*service, *fakeAmigoRepo) {
	t.Helper()
	svc, err := NewService(repo, &fakeTxRunner{}, 10*time.Minute)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc.(*service), repo
}

func assertCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	var appErr *pkgerrors.Error
	if !errors.As(err, &appErr) || appErr.Code() != code {
		t.Fatalf("expected %s error, got %v", code, err)
	}
}

func TestRequestRejectsSelf(t *testing.T) {
	svc, _ := newTestService(t, newFakeAmigoRepo())
	userID := uuid.New()
	_, err := svc.Request(context.Background(), RequestParams{
		RequesterUserID: userID,
		TargetUserID:    userID,
		VenueID:         uuid.New(),
	})
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestRequestVenueFromActiveCheckIn(t *testing.T) {
	repo := newFakeAmigoRepo()
	requester := uuid.New()
	venueID := uuid.New()
	repo.checkInUser(requester, venueID)

	target := uuid.New()
	repo.addUser(target)

	svc, _ := newTestService(t, repo)
	amigo, err := svc.Request(context.Background(), RequestParams{
		RequesterUserID: requester,
		TargetUserID:    target,
	})
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	if amigo.VenueID != venueID {
		t.Errorf("venue = %s, want the check-in venue %s", amigo.VenueID, venueID)
	}
	if amigo.Status != enums.AmigoStatusPending {
		t.Errorf("status = %s, want pending", amigo.Status)
	}
}

func TestRequestNeedsVenueWhenNotCheckedIn(t *testing.T) {
	svc, _ := newTestService(t, newFakeAmigoRepo())
	_, err := svc.Request(context.Background(), RequestParams{
		RequesterUserID: uuid.New(),
		TargetUserID:    uuid.New(),
	})
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestRequestBidirectionalDuplicate(t *testing.T) {
	repo := newFakeAmigoRepo()
	svc, _ := newTestService(t, repo)

	venueID := uuid.New()
	userA := uuid.New()
	userB := uuid.New()
	repo.addUser(userA)
	repo.addUser(userB)
	if _, err := svc.Request(context.Background(), RequestParams{RequesterUserID: userA, TargetUserID: userB, VenueID: venueID}); err != nil {
		t.Fatalf("Request: %v", err)
	}

	// The reverse direction is the same pairing.
	_, err := svc.Request(context.Background(), RequestParams{RequesterUserID: userB, TargetUserID: userA, VenueID: venueID})
	assertCode(t, err, pkgerrors.CodeConflict)
}

func TestAcceptOnlyByTarget(t *testing.T) {
	repo := newFakeAmigoRepo()
	svc, _ := newTestService(t, repo)

	venueID := uuid.New()
	requester := uuid.New()
	target := uuid.New()
	repo.addUser(target)
	amigo, err := svc.Request(context.Background(), RequestParams{RequesterUserID: requester, TargetUserID: target, VenueID: venueID})
	if err != nil {
		t.Fatalf("Request: %v", err)
	}

	_, err = svc.Accept(context.Background(), AcceptParams{AmigoID: amigo.ID, ActorUserID: requester})
	assertCode(t, err, pkgerrors.CodeForbidden)

	accepted, err := svc.Accept(context.Background(), AcceptParams{AmigoID: amigo.ID, ActorUserID: target})
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if accepted.Status != enums.AmigoStatusActive || accepted.AcceptedAt == nil {
		t.Errorf("pairing not activated: %+v", accepted)
	}

	_, err = svc.Accept(context.Background(), AcceptParams{AmigoID: amigo.ID, ActorUserID: target})
	assertCode(t, err, pkgerrors.CodeStateConflict)
}

func TestIssuePairingTokenRequiresCheckIn(t *testing.T) {
	svc, _ := newTestService(t, newFakeAmigoRepo())
	_, err := svc.IssuePairingToken(context.Background(), uuid.New())
	assertCode(t, err, pkgerrors.CodeStateConflict)
}

func TestIssuePairingTokenPurgesExpired(t *testing.T) {
	repo := newFakeAmigoRepo()
	userID := uuid.New()
	venueID := uuid.New()
	repo.checkInUser(userID, venueID)

	stale := uuid.New()
	repo.tokens[stale] = &models.AmigoQRToken{
		Token:     stale,
		UserID:    uuid.New(),
		VenueID:   venueID,
		CreatedAt: time.Now().UTC().Add(-time.Hour),
	}

	svc, _ := newTestService(t, repo)
	token, err := svc.IssuePairingToken(context.Background(), userID)
	if err != nil {
		t.Fatalf("IssuePairingToken: %v", err)
	}
	if token.VenueID != venueID {
		t.Errorf("token venue = %s, want %s", token.VenueID, venueID)
	}
	if _, ok := repo.tokens[stale]; ok {
		t.Error("stale token was not purged")
	}
	if _, ok := repo.tokens[token.Token]; !ok {
		t.Error("new token was not stored")
	}
}

func TestConsumePairingTokenHappyPath(t *testing.T) {
	repo := newFakeAmigoRepo()
	venueID := uuid.New()
	issuer := uuid.New()
	scanner := uuid.New()
	repo.checkInUser(issuer, venueID)
	repo.checkInUser(scanner, venueID)

	svc, _ := newTestService(t, repo)
	token, err := svc.IssuePairingToken(context.Background(), issuer)
	if err != nil {
		t.Fatalf("IssuePairingToken: %v", err)
	}

	amigo, err := svc.ConsumePairingToken(context.Background(), ConsumeParams{ScannerUserID: scanner, Token: token.Token})
	if err != nil {
		t.Fatalf("ConsumePairingToken: %v", err)
	}
	if amigo.Status != enums.AmigoStatusActive || amigo.AcceptedAt == nil {
		t.Errorf("pairing not active: %+v", amigo)
	}
	if amigo.RequesterUserID != issuer || amigo.TargetUserID != scanner {
		t.Errorf("pairing sides wrong: %+v", amigo)
	}
	if !repo.tokens[token.Token].Used {
		t.Error("token was not marked used")
	}

	_, err = svc.ConsumePairingToken(context.Background(), ConsumeParams{ScannerUserID: uuid.New(), Token: token.Token})
	assertCode(t, err, pkgerrors.CodeStateConflict) // third user is not checked in
}

func TestConsumePairingTokenExpiryBoundary(t *testing.T) {
	repo := newFakeAmigoRepo()
	venueID := uuid.New()
	issuer := uuid.New()
	scanner := uuid.New()
	repo.checkInUser(issuer, venueID)
	repo.checkInUser(scanner, venueID)

	svc, _ := newTestService(t, repo)

	issuedAt := time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issuedAt }
	token, err := svc.IssuePairingToken(context.Background(), issuer)
	if err != nil {
		t.Fatalf("IssuePairingToken: %v", err)
	}

	svc.now = func() time.Time { return issuedAt.Add(10*time.Minute - time.Second) }
	if _, err := svc.ConsumePairingToken(context.Background(), ConsumeParams{ScannerUserID: scanner, Token: token.Token}); err != nil {
		t.Fatalf("token should still be consumable just under the TTL: %v", err)
	}

	svc.now = func() time.Time { return issuedAt }
	token2, err := svc.IssuePairingToken(context.Background(), issuer)
	if err != nil {
		t.Fatalf("IssuePairingToken: %v", err)
	}
	svc.now = func() time.Time { return issuedAt.Add(10 * time.Minute) }
	_, err = svc.ConsumePairingToken(context.Background(), ConsumeParams{ScannerUserID: uuid.New(), Token: token2.Token})
	assertCode(t, err, pkgerrors.CodeStateConflict) // unchecked-in scanner trips first

	repo.checkInUser(scanner, venueID)
	_, err = svc.ConsumePairingToken(context.Background(), ConsumeParams{ScannerUserID: scanner, Token: token2.Token})
	assertCode(t, err, pkgerrors.CodeConflict)
}

func TestConsumePairingTokenRejectsOwnToken(t *testing.T) {
	repo := newFakeAmigoRepo()
	venueID := uuid.New()
	issuer := uuid.New()
	repo.checkInUser(issuer, venueID)

	svc, _ := newTestService(t, repo)
	token, err := svc.IssuePairingToken(context.Background(), issuer)
	if err != nil {
		t.Fatalf("IssuePairingToken: %v", err)
	}

	_, err = svc.ConsumePairingToken(context.Background(), ConsumeParams{ScannerUserID: issuer, Token: token.Token})
	assertCode(t, err, pkgerrors.CodeConflict)
}

func TestConsumePairingTokenVenueMismatch(t *testing.T) {
	repo := newFakeAmigoRepo()
	issuer := uuid.New()
	scanner := uuid.New()
	repo.checkInUser(issuer, uuid.New())
	repo.checkInUser(scanner, uuid.New())

	svc, _ := newTestService(t, repo)
	token, err := svc.IssuePairingToken(context.Background(), issuer)
	if err != nil {
		t.Fatalf("IssuePairingToken: %v", err)
	}

	_, err = svc.ConsumePairingToken(context.Background(), ConsumeParams{ScannerUserID: scanner, Token: token.Token})
	assertCode(t, err, pkgerrors.CodeConflict)
}

func TestConsumePairingTokenAlreadyUsed(t *testing.T) {
	repo := newFakeAmigoRepo()
	venueID := uuid.New()
	issuer := uuid.New()
	scanner := uuid.New()
	other := uuid.New()
	repo.checkInUser(issuer, venueID)
	repo.checkInUser(scanner, venueID)
	repo.checkInUser(other, venueID)

	svc, _ := newTestService(t, repo)
	token, err := svc.IssuePairingToken(context.Background(), issuer)
	if err != nil {
		t.Fatalf("IssuePairingToken: %v", err)
	}
	if _, err := svc.ConsumePairingToken(context.Background(), ConsumeParams{ScannerUserID: scanner, Token: token.Token}); err != nil {
		t.Fatalf("ConsumePairingToken: %v", err)
	}

	_, err = svc.ConsumePairingToken(context.Background(), ConsumeParams{ScannerUserID: other, Token: token.Token})
	assertCode(t, err, pkgerrors.CodeConflict)
}

func TestRequestUnknownTarget(t *testing.T) {
	repo := newFakeAmigoRepo()
	svc, _ := newTestService(t, repo)

	_, err := svc.Request(context.Background(), RequestParams{
		RequesterUserID: uuid.New(),
		TargetUserID:    uuid.New(),
		VenueID:         uuid.New(),
	})
	assertCode(t, err, pkgerrors.CodeNotFound)
	if len(repo.amigos) != 0 {
		t.Errorf("amigo rows = %d, want none for an unknown target", len(repo.amigos))
	}
}

func TestRequestMapsUniqueViolationToConflict(t *testing.T) {
	repo := newFakeAmigoRepo()
	target := uuid.New()
	repo.addUser(target)
	repo.createErr = errors.New(`duplicate key value violates unique constraint "idx_amigos_venue_pair"`)

	svc, _ := newTestService(t, repo)
	_, err := svc.Request(context.Background(), RequestParams{
		RequesterUserID: uuid.New(),
		TargetUserID:    target,
		VenueID:         uuid.New(),
	})
	assertCode(t, err, pkgerrors.CodeConflict)
}

// staleTokenRepo serves a token read that lags behind the stored row, the
// way a second scanner sees the token before the first one commits.
type staleTokenRepo struct {
	*fakeAmigoRepo
}

func (s *staleTokenRepo) FindToken(ctx context.Context, token uuid.UUID) (*models.AmigoQRToken, error) {
	row, err := s.fakeAmigoRepo.FindToken(ctx, token)
	if row != nil {
		row.Used = false
	}
	return row, err
}

func (s *staleTokenRepo) WithTx(tx *gorm.DB) Repository { return s.fakeAmigoRepo }

func TestConsumePairingTokenSingleUseUnderConcurrentScan(t *testing.T) {
	inner := newFakeAmigoRepo()
	venueID := uuid.New()
	issuer := uuid.New()
	scanner := uuid.New()
	other := uuid.New()
	inner.checkInUser(issuer, venueID)
	inner.checkInUser(scanner, venueID)
	inner.checkInUser(other, venueID)

	repo := &staleTokenRepo{fakeAmigoRepo: inner}
	svc, err := NewService(repo, &fakeTxRunner{}, 10*time.Minute)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	token, err := svc.IssuePairingToken(context.Background(), issuer)
	if err != nil {
		t.Fatalf("IssuePairingToken: %v", err)
	}
	if _, err := svc.ConsumePairingToken(context.Background(), ConsumeParams{ScannerUserID: scanner, Token: token.Token}); err != nil {
		t.Fatalf("first consume: %v", err)
	}

	// The stale read hides the used flag, so only the conditional update
	// inside the transaction can stop the second pairing.
	_, err = svc.ConsumePairingToken(context.Background(), ConsumeParams{ScannerUserID: other, Token: token.Token})
	assertCode(t, err, pkgerrors.CodeConflict)
	if len(inner.amigos) != 1 {
		t.Errorf("amigo rows = %d, want the token to pair exactly once", len(inner.amigos))
	}
}

func TestConsumePairingTokenUnknown(t *testing.T) {
	repo := newFakeAmigoRepo()
	scanner := uuid.New()
	repo.checkInUser(scanner, uuid.New())

	svc, _ := newTestService(t, repo)
	_, err := svc.ConsumePairingToken(context.Background(), ConsumeParams{ScannerUserID: scanner, Token: uuid.New()})
	assertCode(t, err, pkgerrors.CodeNotFound)
}
