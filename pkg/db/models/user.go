package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a bar patron.
type User struct {
	ID             uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name           string     `gorm:"type:text;not null"`
	Email          string     `gorm:"type:text;not null;uniqueIndex"`
	PasswordHash   string     `gorm:"column:password_hash;not null"`
	Nickname       *string    `gorm:"column:nickname"`
	Bio            *string    `gorm:"column:bio"`
	BirthdayMonth  *int       `gorm:"column:birthday_month"`
	BirthdayDay    *int       `gorm:"column:birthday_day"`
	BirthdayPublic bool       `gorm:"column:birthday_public;not null;default:false"`
	LastLoginAt    *time.Time `gorm:"column:last_login_at"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime"`
}

// DisplayName prefers the nickname when one is set.
func (u User) DisplayName() string {
	if u.Nickname != nil && *u.Nickname != "" {
		return *u.Nickname
	}
	return u.Name
}
