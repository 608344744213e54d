package store

import (
	"context"
	"fmt"

	"github.com/Apfirebolt/logjournal-backend/internal/models"

	"github.com/google/uuid"
)

type CategoryFilter struct {
	OwnerID uuid.UUID
	// TemplateID keeps categories referenced by that template's fields.
	TemplateID *uuid.UUID
	Ordering   string
	Page       Page
}

var categoryOrdering = map[string]string{
	"name":       "name",
	"created_at": "created_at",
}

func (s *Store) CreateCategory(ctx context.Context, c *models.Category) error {
	if err := insert(s.conn(ctx), c, "", ""); err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

func (s *Store) GetCategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	c, err := first[models.Category](s.conn(ctx), "id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("get category %s: %w", id, err)
	}
	return c, nil
}

func (s *Store) ListCategories(ctx context.Context, f CategoryFilter) ([]models.Category, int64, error) {
	db := s.conn(ctx)
	q := db.Model(&models.Category{}).Where("created_by_id = ?", f.OwnerID)
	if f.TemplateID != nil {
		q = q.Where("id IN (?)", db.Model(&models.TemplateField{}).
			Select("category_id").Where("template_id = ? AND category_id IS NOT NULL", *f.TemplateID))
	}
	items, total, err := list[models.Category](q, orderBy(f.Ordering, categoryOrdering, "created_at DESC"), f.Page)
	if err != nil {
		return nil, 0, fmt.Errorf("list categories: %w", err)
	}
	return items, total, nil
}

func (s *Store) SaveCategory(ctx context.Context, c *models.Category) error {
	if err := save(s.conn(ctx), c, "", ""); err != nil {
		return fmt.Errorf("save category: %w", err)
	}
	return nil
}

// DeleteCategory removes the category; fields tagged with it stay, untagged.
func (s *Store) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	err := s.Transaction(ctx, func(tx *Store) error {
		if err := tx.db.Model(&models.TemplateField{}).Where("category_id = ?", id).
			Update("category_id", nil).Error; err != nil {
			return err
		}
		return deleted(tx.db.Where("id = ?", id).Delete(&models.Category{}))
	})
	if err != nil {
		return fmt.Errorf("delete category %s: %w", id, err)
	}
	return nil
}
