package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/yoshiakiban-byte/bottle-amigo/pkg/enums"
)

// VenuePost is a staff-authored announcement shown to the venue's patrons.
type VenuePost struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	VenueID   uuid.UUID      `gorm:"column:venue_id;type:uuid;not null"`
	Type      enums.PostType `gorm:"column:type;type:post_type;not null"`
	Title     *string        `gorm:"column:title"`
	Body      string         `gorm:"type:text;not null"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
