package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// JournalEntry is one user-authored record, optionally following a Template.
type JournalEntry struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Title         *string    `gorm:"size:240"`
	TemplateID    *uuid.UUID `gorm:"type:uuid;index"`
	CreatedByID   uuid.UUID  `gorm:"type:uuid;index;not null"`
	QuoteOfTheDay *string    `gorm:"size:500"`
	RateYourDay   *int
	CreatedAt     time.Time `gorm:"index"`
	UpdatedAt     time.Time

	// the entry outlives its template
	Template  *Template `gorm:"constraint:OnDelete:SET NULL"`
	CreatedBy *User     `gorm:"constraint:OnDelete:CASCADE"`
}

func (e *JournalEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// DisplayTitle falls back to the creation date when no title was given.
func (e *JournalEntry) DisplayTitle() string {
	if e.Title != nil && *e.Title != "" {
		return *e.Title
	}
	return "Entry from " + e.CreatedAt.Format("2006-01-02")
}

// EntryFieldAnswer is the value supplied for one field within one entry.
// At most one answer exists per (entry, field) pair.
type EntryFieldAnswer struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	EntryID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_answer_entry_field"`
	FieldID   uint      `gorm:"not null;uniqueIndex:idx_answer_entry_field;index"`
	Value     *string   `gorm:"type:text"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Entry *JournalEntry  `gorm:"constraint:OnDelete:CASCADE"`
	Field *TemplateField `gorm:"constraint:OnDelete:CASCADE"`
}

func (a *EntryFieldAnswer) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
