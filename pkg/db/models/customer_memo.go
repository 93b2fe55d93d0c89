package models

import (
	"time"

	"github.com/google/uuid"
)

// CustomerMemo is a staff-only note about a patron, scoped to one venue.
type CustomerMemo struct {
	ID            uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	VenueID       uuid.UUID `gorm:"column:venue_id;type:uuid;not null"`
	UserID        uuid.UUID `gorm:"column:user_id;type:uuid;not null"`
	AuthorStaffID uuid.UUID `gorm:"column:author_staff_id;type:uuid;not null"`
	Body          string    `gorm:"type:text;not null"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
}
