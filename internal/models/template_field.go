package models

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// FieldType is the input kind of a template field.
type FieldType string

const (
	FieldText    FieldType = "text"
	FieldNumber  FieldType = "number"
	FieldDate    FieldType = "date"
	FieldBoolean FieldType = "boolean"
)

// FieldTypes lists every accepted field type in display order.
var FieldTypes = []FieldType{FieldText, FieldNumber, FieldDate, FieldBoolean}

// Valid reports whether t is one of FieldTypes.
func (t FieldType) Valid() bool {
	return slices.Contains(FieldTypes, t)
}

// TemplateField is one typed input slot of a Template. It keeps a
// sequential key since it is only ever addressed through its template.
type TemplateField struct {
	ID         uint       `gorm:"primaryKey"`
	TemplateID uuid.UUID  `gorm:"type:uuid;index;not null"`
	Name       string     `gorm:"size:120;not null"`
	FieldType  FieldType  `gorm:"size:50;not null"`
	CategoryID *uuid.UUID `gorm:"type:uuid;index"`
	Order      uint       `gorm:"column:sort_order;not null;default:0"`
	IsRequired bool       `gorm:"not null;default:false"`
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Template *Template `gorm:"constraint:OnDelete:CASCADE"`
	Category *Category `gorm:"constraint:OnDelete:SET NULL"`
}
