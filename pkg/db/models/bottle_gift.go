package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/yoshiakiban-byte/bottle-amigo/pkg/enums"
)

// BottleGift records a staff top-up granted to a patron's bottle. Exactly one
// of AddPct/AddML is set depending on how the gift was expressed.
type BottleGift struct {
	ID           uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	VenueID      uuid.UUID        `gorm:"column:venue_id;type:uuid;not null"`
	TargetUserID uuid.UUID        `gorm:"column:target_user_id;type:uuid;not null"`
	BottleID     uuid.UUID        `gorm:"column:bottle_id;type:uuid;not null"`
	AddPct       *int             `gorm:"column:add_pct"`
	AddML        *int             `gorm:"column:add_ml"`
	Reason       string           `gorm:"type:text;not null"`
	Status       enums.GiftStatus `gorm:"column:status;type:gift_status;not null;default:'scheduled'"`
	CreatedAt    time.Time        `gorm:"column:created_at;autoCreateTime"`
	AppliedAt    *time.Time       `gorm:"column:applied_at"`
}
