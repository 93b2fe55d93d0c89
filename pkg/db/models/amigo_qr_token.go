package models

import (
	"time"

	"github.com/google/uuid"
)

// AmigoQRToken is a short-lived single-use pairing token rendered as a QR
// code. Tokens are venue-scoped and expire ten minutes after creation.
type AmigoQRToken struct {
	Token     uuid.UUID `gorm:"column:token;type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null"`
	VenueID   uuid.UUID `gorm:"column:venue_id;type:uuid;not null"`
	Used      bool      `gorm:"column:used;not null;default:false"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

// TableName pins the table name; the default naming strategy mangles "QR".
func (AmigoQRToken) TableName() string {
	return "amigo_qr_tokens"
}
