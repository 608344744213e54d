package models

import (
	"time"

	"github.com/google/uuid"
)

// Session stores one issued refresh token (for refresh, logout and invalidation).
type Session struct {
	ID        string    `gorm:"primaryKey;size:64"` // refresh token jti
	UserID    uuid.UUID `gorm:"type:uuid;index;not null"`
	ExpiresAt time.Time `gorm:"index;not null"`
	Revoked   bool      `gorm:"index;not null"`
	CreatedAt time.Time

	User *User `gorm:"constraint:OnDelete:CASCADE"`
}
