package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/yoshiakiban-byte/bottle-amigo/pkg/db/dbtypes"
	"github.com/yoshiakiban-byte/bottle-amigo/pkg/enums"
)

// CheckIn records a patron's presence at a venue. NotifyToUserIDs freezes the
// amigo set that was notified when the check-in was created.
type CheckIn struct {
	ID              uuid.UUID           `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	VenueID         uuid.UUID           `gorm:"column:venue_id;type:uuid;not null"`
	UserID          uuid.UUID           `gorm:"column:user_id;type:uuid;not null"`
	NotifyToUserIDs dbtypes.UUIDArray   `gorm:"column:notify_to_user_ids;type:uuid[];not null;default:ARRAY[]::uuid[]"`
	Status          enums.CheckInStatus `gorm:"column:status;type:check_in_status;not null;default:'active'"`
	CreatedAt       time.Time           `gorm:"column:created_at;autoCreateTime"`
	EndedAt         *time.Time          `gorm:"column:ended_at"`
}
