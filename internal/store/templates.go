package store

import (
	"context"
	"fmt"

	"github.com/Apfirebolt/logjournal-backend/internal/models"

	"github.com/google/uuid"
)

const dupSlug = "template with this slug already exists"

type TemplateFilter struct {
	OwnerID  uuid.UUID
	Title    string // substring
	Username string // owner username, exact
	Search   string // title or description substring
	Ordering string // title, created_at, prefixed with - for descending
	Page     Page
}

var templateOrdering = map[string]string{
	"title":      "title",
	"created_at": "created_at",
}

func (s *Store) CreateTemplate(ctx context.Context, t *models.Template) error {
	if err := insert(s.conn(ctx), t, "slug", dupSlug); err != nil {
		return fmt.Errorf("create template: %w", err)
	}
	return nil
}

func (s *Store) GetTemplate(ctx context.Context, id uuid.UUID) (*models.Template, error) {
	t, err := first[models.Template](s.conn(ctx), "id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("get template %s: %w", id, err)
	}
	return t, nil
}

func (s *Store) ListTemplates(ctx context.Context, f TemplateFilter) ([]models.Template, int64, error) {
	db := s.conn(ctx)
	q := db.Model(&models.Template{}).Where("created_by_id = ?", f.OwnerID)
	if f.Title != "" {
		q = q.Where("LOWER(title) LIKE ?", like(f.Title))
	}
	if f.Username != "" {
		q = q.Where("created_by_id IN (?)",
			db.Model(&models.User{}).Select("id").Where("username = ?", f.Username))
	}
	if f.Search != "" {
		p := like(f.Search)
		q = q.Where("LOWER(title) LIKE ? OR LOWER(COALESCE(description, '')) LIKE ?", p, p)
	}
	items, total, err := list[models.Template](q, orderBy(f.Ordering, templateOrdering, "created_at DESC"), f.Page)
	if err != nil {
		return nil, 0, fmt.Errorf("list templates: %w", err)
	}
	return items, total, nil
}

func (s *Store) SaveTemplate(ctx context.Context, t *models.Template) error {
	if err := save(s.conn(ctx), t, "slug", dupSlug); err != nil {
		return fmt.Errorf("save template: %w", err)
	}
	return nil
}

// DeleteTemplate removes the template and its fields (with their answers);
// journal entries that used it keep existing with an empty template.
func (s *Store) DeleteTemplate(ctx context.Context, id uuid.UUID) error {
	err := s.Transaction(ctx, func(tx *Store) error {
		db := tx.db
		fieldIDs := db.Model(&models.TemplateField{}).Select("id").Where("template_id = ?", id)
		if err := db.Where("field_id IN (?)", fieldIDs).Delete(&models.EntryFieldAnswer{}).Error; err != nil {
			return err
		}
		if err := db.Where("template_id = ?", id).Delete(&models.TemplateField{}).Error; err != nil {
			return err
		}
		if err := db.Model(&models.JournalEntry{}).Where("template_id = ?", id).
			Update("template_id", nil).Error; err != nil {
			return err
		}
		return deleted(db.Where("id = ?", id).Delete(&models.Template{}))
	})
	if err != nil {
		return fmt.Errorf("delete template %s: %w", id, err)
	}
	return nil
}
