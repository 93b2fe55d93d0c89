package inventory

import (
	"context"
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

func setupInventoryTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

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
	history := `
CREATE TABLE IF NOT EXISTS bottle_history (
  id TEXT PRIMARY KEY,
  bottle_id TEXT NOT NULL,
  venue_id TEXT NOT NULL,
  staff_id TEXT NOT NULL,
  previous_pct INTEGER NOT NULL,
  new_pct INTEGER NOT NULL,
  previous_ml INTEGER NOT NULL,
  new_ml INTEGER NOT NULL,
  change_type TEXT NOT NULL,
  created_at DATETIME
);`
	gifts := `
CREATE TABLE IF NOT EXISTS bottle_gifts (
  id TEXT PRIMARY KEY,
  venue_id TEXT NOT NULL,
  target_user_id TEXT NOT NULL,
  bottle_id TEXT NOT NULL,
  add_pct INTEGER,
  add_ml INTEGER,
  reason TEXT NOT NULL DEFAULT '',
  status TEXT NOT NULL DEFAULT 'scheduled',
  created_at DATETIME,
  applied_at DATETIME
);`
	require.NoError(t, db.Exec(bottles).Error)
	require.NoError(t, db.Exec(history).Error)
	require.NoError(t, db.Exec(gifts).Error)
	return db
}

func insertBottle(t *testing.T, db *gorm.DB, venueID, ownerID uuid.UUID, kind string) models.Bottle {
	t.Helper()
	bottle := models.Bottle{
		ID:          uuid.New(),
		VenueID:     venueID,
		OwnerUserID: ownerID,
		Kind:        kind,
		CapacityML:  750,
		RemainingML: 750,
		CreatedAt:   time.Now().UTC(),
	}
	bottle.RemainingPct = 100
	require.NoError(t, db.Create(&bottle).Error)
	return bottle
}

func TestRepoUpdateQuantity(t *testing.T) {
	db := setupInventoryTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	bottle := insertBottle(t, db, uuid.New(), uuid.New(), "shochu")
	bottle.RemainingML = 450
	bottle.RemainingPct = 60
	bottle.UpdatedAt = time.Now().UTC()
	require.NoError(t, repo.UpdateQuantity(ctx, &bottle))

	loaded, err := repo.FindByID(ctx, bottle.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, 450, loaded.RemainingML)
	assert.Equal(t, 60, loaded.RemainingPct)
}

func TestRepoFindByIDMissing(t *testing.T) {
	db := setupInventoryTestDB(t)
	repo := NewRepository(db)

	loaded, err := repo.FindByID(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestRepoListByVenueOwnerFilter(t *testing.T) {
	db := setupInventoryTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	venueID := uuid.New()
	ownerA := uuid.New()
	ownerB := uuid.New()
	insertBottle(t, db, venueID, ownerA, "shochu")
	insertBottle(t, db, venueID, ownerA, "whisky")
	insertBottle(t, db, venueID, ownerB, "gin")
	insertBottle(t, db, uuid.New(), ownerA, "rum")

	all, err := repo.ListByVenue(ctx, venueID, nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	mine, err := repo.ListByVenue(ctx, venueID, &ownerA)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	owned, err := repo.ListByOwner(ctx, ownerA)
	require.NoError(t, err)
	assert.Len(t, owned, 3)
}

func TestRepoListHistoryPaginates(t *testing.T) {
	db := setupInventoryTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	bottleID := uuid.New()
	base := time.Now().UTC().Truncate(time.Second)
	for i := 0; i < 3; i++ {
		entry := models.BottleHistoryEntry{
			ID:         uuid.New(),
			BottleID:   bottleID,
			VenueID:    uuid.New(),
			StaffID:    uuid.New(),
			ChangeType: enums.BottleChangeTypeUpdate,
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, repo.CreateHistory(ctx, &entry))
	}

	page, next, err := repo.ListHistory(ctx, listHistoryParams{BottleID: bottleID, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.True(t, page[0].CreatedAt.After(page[1].CreatedAt))
	require.NotNil(t, next)

	rest, next, err := repo.ListHistory(ctx, listHistoryParams{BottleID: bottleID, Limit: 2, Cursor: next})
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Nil(t, next)
}

func TestRepoCreateGift(t *testing.T) {
	db := setupInventoryTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	addPct := 20
	now := time.Now().UTC()
	gift := models.BottleGift{
		ID:           uuid.New(),
		VenueID:      uuid.New(),
		TargetUserID: uuid.New(),
		BottleID:     uuid.New(),
		AddPct:       &addPct,
		Reason:       "birthday",
		Status:       enums.GiftStatusApplied,
		CreatedAt:    now,
		AppliedAt:    &now,
	}
	require.NoError(t, repo.CreateGift(ctx, &gift))

	var loaded models.BottleGift
	require.NoError(t, db.First(&loaded, "id = ?", gift.ID).Error)
	require.NotNil(t, loaded.AddPct)
	assert.Equal(t, 20, *loaded.AddPct)
	assert.Equal(t, enums.GiftStatusApplied, loaded.Status)
	assert.Nil(t, loaded.AddML)
}
