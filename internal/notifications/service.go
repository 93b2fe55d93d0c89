package notifications

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	pkgerrors "github.com/yoshiakiban-byte/bottle-amigo/pkg/errors"
	"github.com/yoshiakiban-byte/bottle-amigo/pkg/enums"
	"github.com/yoshiakiban-byte/bottle-amigo/pkg/pagination"
)

// Service exposes the read side of the notification feed.
type Service interface {
	List(ctx context.Context, params ListParams) (*ListResult, error)
	MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
}

type ListParams struct {
	UserID     uuid.UUID
	Limit      int
	Cursor     string
	UnreadOnly bool
}

type ListResult struct {
	Notifications []NotificationView
	NextCursor    string
}

// NotificationView is a feed entry with its payload enriched for display.
type NotificationView struct {
	ID        uuid.UUID               `json:"id"`
	Type      enums.NotificationType  `json:"type"`
	Payload   map[string]any          `json:"payload"`
	ReadAt    *time.Time              `json:"read_at,omitempty"`
	CreatedAt time.Time               `json:"created_at"`
}

type serviceImpl struct {
	repo Repository
	now  func() time.Time
}

// NewService builds the notifications service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications repository is required")
	}
	return &serviceImpl{repo: repo, now: time.Now}, nil
}

func (s *serviceImpl) List(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	notifications, next, err := s.repo.List(ctx, listNotificationsParams{
		UserID:     params.UserID,
		Limit:      params.Limit,
		Cursor:     cursor,
		UnreadOnly: params.UnreadOnly,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list notifications")
	}

	result := &ListResult{Notifications: make([]NotificationView, 0, len(notifications))}
	for _, notification := range notifications {
		payload := map[string]any{}
		if len(notification.Payload) > 0 {
			if err := json.Unmarshal(notification.Payload, &payload); err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode notification payload")
			}
		}
		if err := s.enrichPayload(ctx, payload); err != nil {
			return nil, err
		}
		result.Notifications = append(result.Notifications, NotificationView{
			ID:        notification.ID,
			Type:      notification.Type,
			Payload:   payload,
			ReadAt:    notification.ReadAt,
			CreatedAt: notification.CreatedAt,
		})
	}
	if next != nil {
		result.NextCursor = pagination.EncodeCursor(*next)
	}
	return result, nil
}

// enrichPayload fills display fields older rows were written without. Missing
// referents leave the payload as stored rather than failing the whole feed.
func (s *serviceImpl) enrichPayload(ctx context.Context, payload map[string]any) error {
	if _, ok := payload["venue_id"]; !ok {
		if bottleID, ok := payloadUUID(payload, "bottle_id"); ok {
			venueID, err := s.repo.BottleVenueID(ctx, bottleID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolve bottle venue")
			}
			if venueID != uuid.Nil {
				payload["venue_id"] = venueID.String()
			}
		}
	}
	if _, ok := payload["venueName"]; !ok {
		if venueID, ok := payloadUUID(payload, "venue_id"); ok {
			name, err := s.repo.VenueName(ctx, venueID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolve venue name")
			}
			if name != "" {
				payload["venueName"] = name
			}
		}
	}
	if _, ok := payload["userName"]; !ok {
		if userID, ok := payloadUUID(payload, "user_id"); ok {
			name, err := s.repo.UserDisplayName(ctx, userID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolve user display name")
			}
			if name != "" {
				payload["userName"] = name
			}
		}
	}
	return nil
}

func payloadUUID(payload map[string]any, key string) (uuid.UUID, bool) {
	raw, ok := payload[key].(string)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func (s *serviceImpl) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	if userID == uuid.Nil || notificationID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id and notification id are required")
	}
	mark, err := s.repo.MarkRead(ctx, userID, notificationID, s.now().UTC())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mark notification read")
	}
	if !mark.Found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")
	}
	return nil
}

func (s *serviceImpl) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	if userID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	updated, err := s.repo.MarkAllRead(ctx, userID, s.now().UTC())
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mark notifications read")
	}
	return updated, nil
}
