package store

import (
	"context"
	"fmt"

	"github.com/Apfirebolt/logjournal-backend/internal/models"

	"github.com/google/uuid"
)

type FieldFilter struct {
	OwnerID    uuid.UUID // owner of the field's template
	TemplateID *uuid.UUID
	Page       Page
}

func (s *Store) CreateField(ctx context.Context, f *models.TemplateField) error {
	if err := insert(s.conn(ctx), f, "", ""); err != nil {
		return fmt.Errorf("create template field: %w", err)
	}
	return nil
}

func (s *Store) GetField(ctx context.Context, id uint) (*models.TemplateField, error) {
	f, err := first[models.TemplateField](s.conn(ctx), "id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("get template field %d: %w", id, err)
	}
	return f, nil
}

// ListFields returns fields in template order.
func (s *Store) ListFields(ctx context.Context, f FieldFilter) ([]models.TemplateField, int64, error) {
	db := s.conn(ctx)
	q := db.Model(&models.TemplateField{}).Where("template_id IN (?)",
		db.Model(&models.Template{}).Select("id").Where("created_by_id = ?", f.OwnerID))
	if f.TemplateID != nil {
		q = q.Where("template_id = ?", *f.TemplateID)
	}
	items, total, err := list[models.TemplateField](q, "sort_order ASC, id ASC", f.Page)
	if err != nil {
		return nil, 0, fmt.Errorf("list template fields: %w", err)
	}
	return items, total, nil
}

func (s *Store) SaveField(ctx context.Context, f *models.TemplateField) error {
	if err := save(s.conn(ctx), f, "", ""); err != nil {
		return fmt.Errorf("save template field: %w", err)
	}
	return nil
}

// DeleteField removes the field together with its answers.
func (s *Store) DeleteField(ctx context.Context, id uint) error {
	err := s.Transaction(ctx, func(tx *Store) error {
		if err := tx.db.Where("field_id = ?", id).Delete(&models.EntryFieldAnswer{}).Error; err != nil {
			return err
		}
		return deleted(tx.db.Where("id = ?", id).Delete(&models.TemplateField{}))
	})
	if err != nil {
		return fmt.Errorf("delete template field %d: %w", id, err)
	}
	return nil
}
