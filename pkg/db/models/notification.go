package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/yoshiakiban-byte/bottle-amigo/pkg/enums"
)

// Notification stores one in-app notification row per recipient. Payload is
// denormalized at fan-out time so reads never join the source tables.
type Notification struct {
	ID        uuid.UUID              `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID              `gorm:"column:user_id;type:uuid;not null"`
	Type      enums.NotificationType `gorm:"column:type;type:notification_type;not null"`
	Payload   json.RawMessage        `gorm:"column:payload;type:jsonb;not null;default:'{}'"`
	ReadAt    *time.Time             `gorm:"column:read_at"`
	CreatedAt time.Time              `gorm:"column:created_at;autoCreateTime"`
}
