package posts

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yoshiakiban-byte/bottle-amigo/internal/notifications"
	"github.com/yoshiakiban-byte/bottle-amigo/pkg/db/models"
	"github.com/yoshiakiban-byte/bottle-amigo/pkg/enums"
	pkgerrors "github.com/yoshiakiban-byte/bottle-amigo/pkg/errors"
)

type fakePostRepo struct {
	posts map[uuid.UUID]*models.VenuePost
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{posts: map[uuid.UUID]*models.VenuePost{}}
}

func (f *fakePostRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakePostRepo) Create(ctx context.Context, post *models.VenuePost) error {
	copied := *post
	f.posts[post.ID] = &copied
	return nil
}

func (f *fakePostRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.VenuePost, error) {
	if post, ok := f.posts[id]; ok {
		copied := *post
		return &copied, nil
	}
	return nil, nil
}

func (f *fakePostRepo) Update(ctx context.Context, post *models.VenuePost) error {
	copied := *post
	f.posts[post.ID] = &copied
	return nil
}

func (f *fakePostRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(f.posts, id)
	return nil
}

func (f *fakePostRepo) ListByVenue(ctx context.Context, venueID uuid.UUID) ([]models.VenuePost, error) {
	var result []models.VenuePost
	for _, post := range f.posts {
		if post.VenueID == venueID {
			result = append(result, *post)
		}
	}
	return result, nil
}

type fakeTxRunner struct{}

func (f *fakeTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type fakeFanout struct {
	posts []notifications.VenuePostEvent
}

func (f *fakeFanout) AmigoCheckIn(ctx context.Context, tx *gorm.DB, event notifications.AmigoCheckInEvent) error {
	return nil
}

func (f *fakeFanout) VenuePost(ctx context.Context, tx *gorm.DB, event notifications.VenuePostEvent) error {
	f.posts = append(f.posts, event)
	return nil
}

func (f *fakeFanout) BottleShare(ctx context.Context, tx *gorm.DB, event notifications.BottleShareEvent) error {
	return nil
}

func (f *fakeFanout) BottleGift(ctx context.Context, tx *gorm.DB, event notifications.BottleGiftEvent) error {
	return nil
}

func newTestService(t *testing.T, repo *fakePostRepo) (Service, *fakeFanout) {
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

func strPtr(v string) *string { return &v }

func TestCreatePostFansOut(t *testing.T) {
	repo := newFakePostRepo()
	svc, fanout := newTestService(t, repo)

	venueID := uuid.New()
	post, err := svc.Create(context.Background(), CreateParams{
		VenueID: venueID,
		StaffID: uuid.New(),
		Type:    enums.PostTypeEvent,
		Title:   strPtr("Karaoke night"),
		Body:    "  Friday from 8pm  ",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if post.Body != "Friday from 8pm" {
		t.Errorf("body = %q, want trimmed", post.Body)
	}
	if len(fanout.posts) != 1 {
		t.Fatalf("post events = %d, want 1", len(fanout.posts))
	}
	event := fanout.posts[0]
	if event.VenueID != venueID || event.PostID != post.ID || event.PostType != enums.PostTypeEvent {
		t.Errorf("unexpected event: %+v", event)
	}
}

func TestCreatePostValidation(t *testing.T) {
	svc, _ := newTestService(t, newFakePostRepo())

	_, err := svc.Create(context.Background(), CreateParams{
		VenueID: uuid.New(),
		StaffID: uuid.New(),
		Type:    enums.PostType("bogus"),
		Body:    "hello",
	})
	assertCode(t, err, pkgerrors.CodeValidation)

	_, err = svc.Create(context.Background(), CreateParams{
		VenueID: uuid.New(),
		StaffID: uuid.New(),
		Type:    enums.PostTypeMemo,
		Body:    "   ",
	})
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestUpdatePostDoesNotFanOut(t *testing.T) {
	repo := newFakePostRepo()
	svc, fanout := newTestService(t, repo)

	venueID := uuid.New()
	post, err := svc.Create(context.Background(), CreateParams{
		VenueID: venueID,
		StaffID: uuid.New(),
		Type:    enums.PostTypeEvent,
		Body:    "original",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	updated, err := svc.Update(context.Background(), UpdateParams{
		PostID:  post.ID,
		VenueID: venueID,
		Body:    strPtr("edited"),
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Body != "edited" {
		t.Errorf("body = %q, want edited", updated.Body)
	}
	if len(fanout.posts) != 1 {
		t.Errorf("events = %d, edits must not notify again", len(fanout.posts))
	}
}

func TestUpdatePostWrongVenue(t *testing.T) {
	repo := newFakePostRepo()
	svc, _ := newTestService(t, repo)

	post, err := svc.Create(context.Background(), CreateParams{
		VenueID: uuid.New(),
		StaffID: uuid.New(),
		Type:    enums.PostTypeEvent,
		Body:    "original",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, err = svc.Update(context.Background(), UpdateParams{
		PostID:  post.ID,
		VenueID: uuid.New(),
		Body:    strPtr("edited"),
	})
	assertCode(t, err, pkgerrors.CodeForbidden)
}

func TestDeletePost(t *testing.T) {
	repo := newFakePostRepo()
	svc, _ := newTestService(t, repo)

	venueID := uuid.New()
	post, err := svc.Create(context.Background(), CreateParams{
		VenueID: venueID,
		StaffID: uuid.New(),
		Type:    enums.PostTypeMessage,
		Body:    "bye",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := svc.Delete(context.Background(), DeleteParams{PostID: post.ID, VenueID: venueID}); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	err = svc.Delete(context.Background(), DeleteParams{PostID: post.ID, VenueID: venueID})
	assertCode(t, err, pkgerrors.CodeNotFound)
}
