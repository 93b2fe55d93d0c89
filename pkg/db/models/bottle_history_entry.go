package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/yoshiakiban-byte/bottle-amigo/pkg/enums"
)

// BottleHistoryEntry records an immutable before/after snapshot of a bottle
// quantity change.
type BottleHistoryEntry struct {
	ID          uuid.UUID              `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	BottleID    uuid.UUID              `gorm:"column:bottle_id;type:uuid;not null"`
	VenueID     uuid.UUID              `gorm:"column:venue_id;type:uuid;not null"`
	StaffID     uuid.UUID              `gorm:"column:staff_id;type:uuid;not null"`
	PreviousPct int                    `gorm:"column:previous_pct;not null"`
	NewPct      int                    `gorm:"column:new_pct;not null"`
	PreviousML  int                    `gorm:"column:previous_ml;not null"`
	NewML       int                    `gorm:"column:new_ml;not null"`
	ChangeType  enums.BottleChangeType `gorm:"column:change_type;type:bottle_change_type;not null"`
	CreatedAt   time.Time              `gorm:"column:created_at;autoCreateTime"`
}

// TableName keeps the original ledger table name.
func (BottleHistoryEntry) TableName() string {
	return "bottle_history"
}
