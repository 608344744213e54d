package models

import (
	"time"

	"github.com/google/uuid"
)

// AuditLog records mutating requests of signed-in users.
// Path and action are stored encrypted (AES-GCM + base64).
type AuditLog struct {
	ID        uint       `gorm:"primaryKey"`
	UserID    *uuid.UUID `gorm:"type:uuid;index"`
	PathEnc   string     `gorm:"size:1024"`
	Method    string     `gorm:"size:16"`
	ActionEnc string     `gorm:"size:4096"`
	Status    int
	IP        string    `gorm:"size:64"`
	UserAgent string    `gorm:"size:255"`
	CreatedAt time.Time `gorm:"index"`

	User *User `gorm:"constraint:OnDelete:CASCADE"`
}
