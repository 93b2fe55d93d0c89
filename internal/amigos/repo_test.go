package amigos

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/yoshiakiban-byte/bottle-amigo/pkg/db"
	"github.com/yoshiakiban-byte/bottle-amigo/pkg/db/models"
	"github.com/yoshiakiban-byte/bottle-amigo/pkg/enums"
)

func setupAmigosTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	amigos := `
CREATE TABLE IF NOT EXISTS amigos (
  id TEXT PRIMARY KEY,
  venue_id TEXT NOT NULL,
  requester_user_id TEXT NOT NULL,
  target_user_id TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  created_at DATETIME,
  accepted_at DATETIME
);`
	pairIndex := `
CREATE UNIQUE INDEX IF NOT EXISTS idx_amigos_venue_pair
  ON amigos (venue_id, MIN(requester_user_id, target_user_id), MAX(requester_user_id, target_user_id));`
	tokens := `
CREATE TABLE IF NOT EXISTS amigo_qr_tokens (
  token TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  venue_id TEXT NOT NULL,
  used INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME
);`
	require.NoError(t, conn.Exec(amigos).Error)
	require.NoError(t, conn.Exec(pairIndex).Error)
	require.NoError(t, conn.Exec(tokens).Error)
	return conn
}

func TestRepoMarkTokenUsedFlipsOnce(t *testing.T) {
	conn := setupAmigosTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	token := models.AmigoQRToken{
		Token:     uuid.New(),
		UserID:    uuid.New(),
		VenueID:   uuid.New(),
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, repo.CreateToken(ctx, &token))

	consumed, err := repo.MarkTokenUsed(ctx, token.Token)
	require.NoError(t, err)
	assert.True(t, consumed)

	consumed, err = repo.MarkTokenUsed(ctx, token.Token)
	require.NoError(t, err)
	assert.False(t, consumed, "second flip must lose")

	loaded, err := repo.FindToken(ctx, token.Token)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.True(t, loaded.Used)
}

func TestRepoPairIndexRejectsReversedDuplicate(t *testing.T) {
	conn := setupAmigosTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	venueID := uuid.New()
	userA := uuid.New()
	userB := uuid.New()
	require.NoError(t, repo.Create(ctx, &models.Amigo{
		ID:              uuid.New(),
		VenueID:         venueID,
		RequesterUserID: userA,
		TargetUserID:    userB,
		Status:          enums.AmigoStatusPending,
		CreatedAt:       time.Now().UTC(),
	}))

	err := repo.Create(ctx, &models.Amigo{
		ID:              uuid.New(),
		VenueID:         venueID,
		RequesterUserID: userB,
		TargetUserID:    userA,
		Status:          enums.AmigoStatusPending,
		CreatedAt:       time.Now().UTC(),
	})
	require.Error(t, err, "reversed duplicate must hit the pair index")
	assert.True(t, db.IsUniqueViolation(err, "idx_amigos_venue_pair"))

	// The same pair at another venue is a distinct pairing.
	require.NoError(t, repo.Create(ctx, &models.Amigo{
		ID:              uuid.New(),
		VenueID:         uuid.New(),
		RequesterUserID: userB,
		TargetUserID:    userA,
		Status:          enums.AmigoStatusPending,
		CreatedAt:       time.Now().UTC(),
	}))
}
