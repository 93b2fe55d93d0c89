package notifications

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/yoshiakiban-byte/bottle-amigo/pkg/db/models"
	"github.com/yoshiakiban-byte/bottle-amigo/pkg/enums"
)

func setupNotificationsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	notifications := `
CREATE TABLE IF NOT EXISTS notifications (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  type TEXT NOT NULL,
  payload TEXT NOT NULL DEFAULT '{}',
  read_at DATETIME,
  created_at DATETIME
);`
	bottles := `
CREATE TABLE IF NOT EXISTS bottles (
  id TEXT PRIMARY KEY,
  venue_id TEXT NOT NULL,
  owner_user_id TEXT NOT NULL,
  kind TEXT NOT NULL,
  capacity_ml INTEGER NOT NULL DEFAULT 750,
  remaining_ml INTEGER NOT NULL DEFAULT 750,
  remaining_pct INTEGER NOT NULL DEFAULT 100,
  created_at DATETIME,
  updated_at DATETIME
);`
	venues := `
CREATE TABLE IF NOT EXISTS venues (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  address TEXT NOT NULL,
  lat REAL,
  lng REAL,
  created_at DATETIME
);`
	users := `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  email TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  nickname TEXT,
  bio TEXT,
  birthday_month INTEGER,
  birthday_day INTEGER,
  birthday_public INTEGER NOT NULL DEFAULT 0,
  last_login_at DATETIME,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(notifications).Error)
	require.NoError(t, db.Exec(bottles).Error)
	require.NoError(t, db.Exec(venues).Error)
	require.NoError(t, db.Exec(users).Error)
	return db
}

func insertNotification(t *testing.T, db *gorm.DB, userID uuid.UUID, createdAt time.Time, read bool) models.Notification {
	t.Helper()
	notification := models.Notification{
		ID:        uuid.New(),
		UserID:    userID,
		Type:      enums.NotificationTypeBottleGift,
		Payload:   json.RawMessage(`{"bottle_id":"` + uuid.NewString() + `"}`),
		CreatedAt: createdAt,
	}
	if read {
		readAt := createdAt.Add(time.Minute)
		notification.ReadAt = &readAt
	}
	require.NoError(t, db.Create(&notification).Error)
	return notification
}

func TestRepoListScopesAndPaginates(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	otherID := uuid.New()
	base := time.Now().UTC().Truncate(time.Second)
	first := insertNotification(t, db, userID, base.Add(-3*time.Minute), false)
	second := insertNotification(t, db, userID, base.Add(-2*time.Minute), true)
	third := insertNotification(t, db, userID, base.Add(-1*time.Minute), false)
	insertNotification(t, db, otherID, base, false)

	listed, next, err := repo.List(ctx, listNotificationsParams{UserID: userID, Limit: 2})
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, third.ID, listed[0].ID)
	assert.Equal(t, second.ID, listed[1].ID)
	require.NotNil(t, next)

	listed, next, err = repo.List(ctx, listNotificationsParams{UserID: userID, Limit: 2, Cursor: next})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, first.ID, listed[0].ID)
	assert.Nil(t, next)
}

func TestRepoListUnreadOnly(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	base := time.Now().UTC().Truncate(time.Second)
	unread := insertNotification(t, db, userID, base.Add(-2*time.Minute), false)
	insertNotification(t, db, userID, base.Add(-1*time.Minute), true)

	listed, _, err := repo.List(ctx, listNotificationsParams{UserID: userID, UnreadOnly: true})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, unread.ID, listed[0].ID)
}

func TestRepoMarkRead(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	userID := uuid.New()
	notification := insertNotification(t, db, userID, now.Add(-time.Minute), false)

	mark, err := repo.MarkRead(ctx, userID, notification.ID, now)
	require.NoError(t, err)
	assert.True(t, mark.Found)
	assert.True(t, mark.Updated)

	mark, err = repo.MarkRead(ctx, userID, notification.ID, now)
	require.NoError(t, err)
	assert.True(t, mark.Found)
	assert.False(t, mark.Updated)

	mark, err = repo.MarkRead(ctx, uuid.New(), notification.ID, now)
	require.NoError(t, err)
	assert.False(t, mark.Found)
}

func TestRepoMarkAllRead(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	userID := uuid.New()
	insertNotification(t, db, userID, now.Add(-2*time.Minute), false)
	insertNotification(t, db, userID, now.Add(-1*time.Minute), false)
	insertNotification(t, db, userID, now.Add(-3*time.Minute), true)

	updated, err := repo.MarkAllRead(ctx, userID, now)
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated)

	remaining, _, err := repo.List(ctx, listNotificationsParams{UserID: userID, UnreadOnly: true})
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestRepoLookupHelpers(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	venue := models.Venue{ID: uuid.New(), Name: "Bar Luna", Address: "Shinjuku 2-3-4"}
	require.NoError(t, db.Create(&venue).Error)

	ownerA := uuid.New()
	ownerB := uuid.New()
	bottle := models.Bottle{ID: uuid.New(), VenueID: venue.ID, OwnerUserID: ownerA, Kind: "shochu"}
	require.NoError(t, db.Create(&bottle).Error)
	require.NoError(t, db.Create(&models.Bottle{ID: uuid.New(), VenueID: venue.ID, OwnerUserID: ownerA, Kind: "whisky"}).Error)
	require.NoError(t, db.Create(&models.Bottle{ID: uuid.New(), VenueID: venue.ID, OwnerUserID: ownerB, Kind: "gin"}).Error)

	owners, err := repo.DistinctBottleOwnerIDs(ctx, venue.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{ownerA, ownerB}, owners)

	venueID, err := repo.BottleVenueID(ctx, bottle.ID)
	require.NoError(t, err)
	assert.Equal(t, venue.ID, venueID)

	venueID, err = repo.BottleVenueID(ctx, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, uuid.Nil, venueID)

	name, err := repo.VenueName(ctx, venue.ID)
	require.NoError(t, err)
	assert.Equal(t, "Bar Luna", name)

	nickname := "Ken-chan"
	user := models.User{ID: uuid.New(), Name: "Kenji", Email: uuid.NewString() + "@example.com", PasswordHash: "x", Nickname: &nickname}
	require.NoError(t, db.Create(&user).Error)

	displayName, err := repo.UserDisplayName(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ken-chan", displayName)
}
