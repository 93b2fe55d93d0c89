package models

import (
	"time"

	"github.com/google/uuid"
)

// Bottle is a kept bottle in a venue's custody. RemainingML is the
// authoritative quantity; RemainingPct is derived from it and kept
// denormalized for display.
type Bottle struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	VenueID      uuid.UUID `gorm:"column:venue_id;type:uuid;not null"`
	OwnerUserID  uuid.UUID `gorm:"column:owner_user_id;type:uuid;not null"`
	Kind         string    `gorm:"column:kind;type:text;not null"`
	CapacityML   int       `gorm:"column:capacity_ml;not null;default:750"`
	RemainingML  int       `gorm:"column:remaining_ml;not null;default:750"`
	RemainingPct int       `gorm:"column:remaining_pct;not null;default:100"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
