package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/yoshiakiban-byte/bottle-amigo/pkg/enums"
)

// StaffAccount represents venue staff who sign in with a PIN.
type StaffAccount struct {
	ID          uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	VenueID     uuid.UUID       `gorm:"column:venue_id;type:uuid;not null"`
	Name        string          `gorm:"type:text;not null"`
	Role        enums.StaffRole `gorm:"column:role;type:staff_role;not null"`
	PINHash     string          `gorm:"column:pin_hash;not null"`
	IsActive    bool            `gorm:"column:is_active;not null;default:true"`
	LastLoginAt *time.Time      `gorm:"column:last_login_at"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
}
