package notifications

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/yoshiakiban-byte/bottle-amigo/pkg/db/models"
	"github.com/yoshiakiban-byte/bottle-amigo/pkg/enums"
	pkgerrors "github.com/yoshiakiban-byte/bottle-amigo/pkg/errors"
)

// Fanout writes notification rows for domain events. Callers pass their open
// transaction so the rows commit or roll back together with the event itself.
type Fanout interface {
	AmigoCheckIn(ctx context.Context, tx *gorm.DB, event AmigoCheckInEvent) error
	VenuePost(ctx context.Context, tx *gorm.DB, event VenuePostEvent) error
	BottleShare(ctx context.Context, tx *gorm.DB, event BottleShareEvent) error
	BottleGift(ctx context.Context, tx *gorm.DB, event BottleGiftEvent) error
}

// AmigoCheckInEvent notifies a check-in's chosen amigos that the user arrived.
type AmigoCheckInEvent struct {
	UserID       uuid.UUID
	VenueID      uuid.UUID
	CheckInID    uuid.UUID
	RecipientIDs []uuid.UUID
	Now          time.Time
}

// VenuePostEvent notifies every bottle owner at the venue about a new post.
type VenuePostEvent struct {
	VenueID  uuid.UUID
	PostID   uuid.UUID
	PostType enums.PostType
	Content  string
	Now      time.Time
}

// BottleShareEvent notifies the share grantee.
type BottleShareEvent struct {
	BottleID    uuid.UUID
	ShareID     uuid.UUID
	OwnerUserID uuid.UUID
	RecipientID uuid.UUID
	Now         time.Time
}

// BottleGiftEvent notifies the bottle owner about a received gift.
type BottleGiftEvent struct {
	BottleID    uuid.UUID
	GiftID      uuid.UUID
	RecipientID uuid.UUID
	Now         time.Time
}

type amigoCheckInPayload struct {
	UserID    uuid.UUID `json:"user_id"`
	VenueID   uuid.UUID `json:"venue_id"`
	CheckInID uuid.UUID `json:"checkin_id"`
}

type venuePostPayload struct {
	VenueID   uuid.UUID `json:"venue_id"`
	PostID    uuid.UUID `json:"post_id"`
	PostType  string    `json:"post_type"`
	VenueName string    `json:"venueName"`
	Content   string    `json:"content"`
}

type bottleSharePayload struct {
	BottleID uuid.UUID `json:"bottle_id"`
	ShareID  uuid.UUID `json:"share_id"`
	UserID   uuid.UUID `json:"user_id"`
}

type bottleGiftPayload struct {
	BottleID uuid.UUID `json:"bottle_id"`
	GiftID   uuid.UUID `json:"gift_id"`
}

type fanoutImpl struct {
	repo Repository
}

// NewFanout builds the write-side notification dispatcher.
func NewFanout(repo Repository) (Fanout, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications repository is required")
	}
	return &fanoutImpl{repo: repo}, nil
}

func (f *fanoutImpl) AmigoCheckIn(ctx context.Context, tx *gorm.DB, event AmigoCheckInEvent) error {
	payload, err := json.Marshal(amigoCheckInPayload{
		UserID:    event.UserID,
		VenueID:   event.VenueID,
		CheckInID: event.CheckInID,
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode check-in notification payload")
	}
	return f.deliver(ctx, tx, enums.NotificationTypeAmigoCheckIn, payload, event.RecipientIDs, event.Now)
}

func (f *fanoutImpl) VenuePost(ctx context.Context, tx *gorm.DB, event VenuePostEvent) error {
	repo := f.repo.WithTx(tx)
	venueName, err := repo.VenueName(ctx, event.VenueID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolve venue name for post notification")
	}
	recipients, err := repo.DistinctBottleOwnerIDs(ctx, event.VenueID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolve post notification recipients")
	}

	payload, err := json.Marshal(venuePostPayload{
		VenueID:   event.VenueID,
		PostID:    event.PostID,
		PostType:  string(event.PostType),
		VenueName: venueName,
		Content:   event.Content,
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode post notification payload")
	}
	return f.deliver(ctx, tx, enums.NotificationTypeStorePost, payload, recipients, event.Now)
}

func (f *fanoutImpl) BottleShare(ctx context.Context, tx *gorm.DB, event BottleShareEvent) error {
	payload, err := json.Marshal(bottleSharePayload{
		BottleID: event.BottleID,
		ShareID:  event.ShareID,
		UserID:   event.OwnerUserID,
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode share notification payload")
	}
	return f.deliver(ctx, tx, enums.NotificationTypeBottleShare, payload, []uuid.UUID{event.RecipientID}, event.Now)
}

func (f *fanoutImpl) BottleGift(ctx context.Context, tx *gorm.DB, event BottleGiftEvent) error {
	payload, err := json.Marshal(bottleGiftPayload{
		BottleID: event.BottleID,
		GiftID:   event.GiftID,
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode gift notification payload")
	}
	return f.deliver(ctx, tx, enums.NotificationTypeBottleGift, payload, []uuid.UUID{event.RecipientID}, event.Now)
}

func (f *fanoutImpl) deliver(ctx context.Context, tx *gorm.DB, notificationType enums.NotificationType, payload json.RawMessage, recipients []uuid.UUID, now time.Time) error {
	repo := f.repo.WithTx(tx)
	var deliveryErr error
	for _, recipientID := range recipients {
		if recipientID == uuid.Nil {
			continue
		}
		notification := &models.Notification{
			UserID:    recipientID,
			Type:      notificationType,
			Payload:   payload,
			CreatedAt: now,
		}
		if err := repo.Create(ctx, notification); err != nil {
			deliveryErr = multierr.Append(deliveryErr, err)
		}
	}
	if deliveryErr != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, deliveryErr, "deliver notifications")
	}
	return nil
}
