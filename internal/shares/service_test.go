package shares

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yoshiakiban-byte/bottle-amigo/internal/notifications"
	"github.com/yoshiakiban-byte/bottle-amigo/pkg/db/models"
	pkgerrors "github.com/yoshiakiban-byte/bottle-amigo/pkg/errors"
)

type fakeShareRepo struct {
	shares    map[uuid.UUID]*models.BottleShare
	bottles   map[uuid.UUID]*models.Bottle
	createErr error
}

func newFakeShareRepo() *fakeShareRepo {
	return &fakeShareRepo{
		shares:  map[uuid.UUID]*models.BottleShare{},
		bottles: map[uuid.UUID]*models.Bottle{},
	}
}

func (f *fakeShareRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeShareRepo) Create(ctx context.Context, share *models.BottleShare) error {
	if f.createErr != nil {
		return f.createErr
	}
	copied := *share
	f.shares[share.ID] = &copied
	return nil
}

func (f *fakeShareRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.BottleShare, error) {
	if share, ok := f.shares[id]; ok {
		copied := *share
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeShareRepo) FindActive(ctx context.Context, bottleID, sharedToUserID uuid.UUID) (*models.BottleShare, error) {
	for _, share := range f.shares {
		if share.BottleID == bottleID && share.SharedToUserID == sharedToUserID && share.Active {
			copied := *share
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeShareRepo) End(ctx context.Context, id uuid.UUID, now time.Time) error {
	if share, ok := f.shares[id]; ok {
		share.Active = false
		ended := now
		share.EndedAt = &ended
	}
	return nil
}

func (f *fakeShareRepo) ListForBottle(ctx context.Context, bottleID uuid.UUID) ([]models.BottleShare, error) {
	var result []models.BottleShare
	for _, share := range f.shares {
		if share.BottleID == bottleID {
			result = append(result, *share)
		}
	}
	return result, nil
}

func (f *fakeShareRepo) ListGrantedTo(ctx context.Context, userID uuid.UUID) ([]models.BottleShare, error) {
	var result []models.BottleShare
	for _, share := range f.shares {
		if share.SharedToUserID == userID && share.Active {
			result = append(result, *share)
		}
	}
	return result, nil
}

func (f *fakeShareRepo) FindBottle(ctx context.Context, bottleID uuid.UUID) (*models.Bottle, error) {
	if bottle, ok := f.bottles[bottleID]; ok {
		copied := *bottle
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeShareRepo) addBottle(ownerID uuid.UUID) *models.Bottle {
	bottle := &models.Bottle{
		ID:          uuid.New(),
		VenueID:     uuid.New(),
		OwnerUserID: ownerID,
		Kind:        "shochu",
	}
	f.bottles[bottle.ID] = bottle
	return bottle
}

type fakeTxRunner struct{}

func (f *fakeTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type fakeFanout struct {
	shares []notifications.BottleShareEvent
}

func (f *fakeFanout) AmigoCheckIn(ctx context.Context, tx *gorm.DB, event notifications.AmigoCheckInEvent) error {
	return nil
}

func (f *fakeFanout) VenuePost(ctx context.Context, tx *gorm.DB, event notifications.VenuePostEvent) error {
	return nil
}

func (f *fakeFanout) BottleShare(ctx context.Context, tx *gorm.DB, event notifications.BottleShareEvent) error {
	f.shares = append(f.shares, event)
	return nil
}

func (f *fakeFanout) BottleGift(ctx context.Context, tx *gorm.DB, event notifications.BottleGiftEvent) error {
	return nil
}

func newTestService(t *testing.T, repo *fakeShareRepo) (Service, *fakeFanout) {
	t.Helper()
	fanout := &fakeFanout{}
	svc, err := NewService(repo, &fakeTxRunner{}, fanout)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc, fanout
}

func assertCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	var appErr *pkgerrors.Error
	if !errors.As(err, &appErr) || appErr.Code() != code {
		t.Fatalf("expected %s error, got %v", code, err)
	}
}

func TestCreateShareNotifiesGrantee(t *testing.T) {
	repo := newFakeShareRepo()
	ownerID := uuid.New()
	granteeID := uuid.New()
	bottle := repo.addBottle(ownerID)

	svc, fanout := newTestService(t, repo)
	share, err := svc.Create(context.Background(), CreateParams{
		BottleID:       bottle.ID,
		ActorUserID:    ownerID,
		SharedToUserID: granteeID,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !share.Active || share.VenueID != bottle.VenueID {
		t.Errorf("unexpected share: %+v", share)
	}
	if len(fanout.shares) != 1 {
		t.Fatalf("share notifications = %d, want 1", len(fanout.shares))
	}
	event := fanout.shares[0]
	if event.RecipientID != granteeID || event.OwnerUserID != ownerID || event.ShareID != share.ID {
		t.Errorf("unexpected event: %+v", event)
	}
}

func TestCreateShareOwnerOnly(t *testing.T) {
	repo := newFakeShareRepo()
	bottle := repo.addBottle(uuid.New())

	svc, _ := newTestService(t, repo)
	_, err := svc.Create(context.Background(), CreateParams{
		BottleID:       bottle.ID,
		ActorUserID:    uuid.New(),
		SharedToUserID: uuid.New(),
	})
	assertCode(t, err, pkgerrors.CodeForbidden)
}

func TestCreateShareNoSelf(t *testing.T) {
	repo := newFakeShareRepo()
	ownerID := uuid.New()
	bottle := repo.addBottle(ownerID)

	svc, _ := newTestService(t, repo)
	_, err := svc.Create(context.Background(), CreateParams{
		BottleID:       bottle.ID,
		ActorUserID:    ownerID,
		SharedToUserID: ownerID,
	})
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestCreateShareOneActivePerGrantee(t *testing.T) {
	repo := newFakeShareRepo()
	ownerID := uuid.New()
	granteeID := uuid.New()
	bottle := repo.addBottle(ownerID)

	svc, _ := newTestService(t, repo)
	params := CreateParams{BottleID: bottle.ID, ActorUserID: ownerID, SharedToUserID: granteeID}
	share, err := svc.Create(context.Background(), params)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, err = svc.Create(context.Background(), params)
	assertCode(t, err, pkgerrors.CodeConflict)

	// After ending, sharing with the same grantee is allowed again.
	if _, err := svc.End(context.Background(), EndParams{ShareID: share.ID, ActorUserID: ownerID}); err != nil {
		t.Fatalf("End: %v", err)
	}
	if _, err := svc.Create(context.Background(), params); err != nil {
		t.Fatalf("Create after End: %v", err)
	}
}

func TestCreateShareMapsUniqueViolationToConflict(t *testing.T) {
	repo := newFakeShareRepo()
	ownerID := uuid.New()
	bottle := repo.addBottle(ownerID)
	repo.createErr = errors.New(`duplicate key value violates unique constraint "idx_bottle_shares_one_active"`)

	svc, fanout := newTestService(t, repo)
	_, err := svc.Create(context.Background(), CreateParams{
		BottleID:       bottle.ID,
		ActorUserID:    ownerID,
		SharedToUserID: uuid.New(),
	})
	assertCode(t, err, pkgerrors.CodeConflict)
	if len(fanout.shares) != 0 {
		t.Errorf("share notifications = %d, want none on a lost duplicate", len(fanout.shares))
	}
}

func TestEndShareKeepsRow(t *testing.T) {
	repo := newFakeShareRepo()
	ownerID := uuid.New()
	bottle := repo.addBottle(ownerID)

	svc, _ := newTestService(t, repo)
	share, err := svc.Create(context.Background(), CreateParams{
		BottleID:       bottle.ID,
		ActorUserID:    ownerID,
		SharedToUserID: uuid.New(),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	ended, err := svc.End(context.Background(), EndParams{ShareID: share.ID, ActorUserID: ownerID})
	if err != nil {
		t.Fatalf("End: %v", err)
	}
	if ended.Active || ended.EndedAt == nil {
		t.Errorf("share not ended: %+v", ended)
	}
	if _, ok := repo.shares[share.ID]; !ok {
		t.Error("ended share row was deleted, want it retained")
	}

	_, err = svc.End(context.Background(), EndParams{ShareID: share.ID, ActorUserID: ownerID})
	assertCode(t, err, pkgerrors.CodeStateConflict)
}

func TestEndShareOwnerOnly(t *testing.T) {
	repo := newFakeShareRepo()
	ownerID := uuid.New()
	bottle := repo.addBottle(ownerID)

	svc, _ := newTestService(t, repo)
	share, err := svc.Create(context.Background(), CreateParams{
		BottleID:       bottle.ID,
		ActorUserID:    ownerID,
		SharedToUserID: uuid.New(),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, err = svc.End(context.Background(), EndParams{ShareID: share.ID, ActorUserID: uuid.New()})
	assertCode(t, err, pkgerrors.CodeForbidden)
}
