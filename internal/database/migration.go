package database

import (
	"fmt"

	"github.com/Apfirebolt/logjournal-backend/internal/models"

	"gorm.io/gorm"
)

// AutoMigrate runs database schema migrations for all models.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Template{},
		&models.Category{},
		&models.TemplateField{},
		&models.JournalEntry{},
		&models.EntryFieldAnswer{},
		&models.Session{},
		&models.AuditLog{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
