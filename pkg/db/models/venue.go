package models

import (
	"time"

	"github.com/google/uuid"
)

// Venue represents a bar that keeps bottles for its patrons.
type Venue struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string    `gorm:"type:text;not null"`
	Address   string    `gorm:"type:text;not null"`
	Lat       *float64  `gorm:"column:lat"`
	Lng       *float64  `gorm:"column:lng"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
