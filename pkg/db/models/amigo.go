package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/yoshiakiban-byte/bottle-amigo/pkg/enums"
)

// Amigo is a venue-scoped social pairing between two patrons.
type Amigo struct {
	ID              uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	VenueID         uuid.UUID         `gorm:"column:venue_id;type:uuid;not null"`
	RequesterUserID uuid.UUID         `gorm:"column:requester_user_id;type:uuid;not null"`
	TargetUserID    uuid.UUID         `gorm:"column:target_user_id;type:uuid;not null"`
	Status          enums.AmigoStatus `gorm:"column:status;type:amigo_status;not null;default:'pending'"`
	CreatedAt       time.Time         `gorm:"column:created_at;autoCreateTime"`
	AcceptedAt      *time.Time        `gorm:"column:accepted_at"`
}
