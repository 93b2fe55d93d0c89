package models

import (
	"time"

	"github.com/google/uuid"
)

// BottleShare grants another patron permission to drink from a kept bottle.
// Ended shares are retained for history.
type BottleShare struct {
	ID             uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	BottleID       uuid.UUID  `gorm:"column:bottle_id;type:uuid;not null"`
	VenueID        uuid.UUID  `gorm:"column:venue_id;type:uuid;not null"`
	OwnerUserID    uuid.UUID  `gorm:"column:owner_user_id;type:uuid;not null"`
	SharedToUserID uuid.UUID  `gorm:"column:shared_to_user_id;type:uuid;not null"`
	Active         bool       `gorm:"column:active;not null;default:true"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime"`
	EndedAt        *time.Time `gorm:"column:ended_at"`
}
