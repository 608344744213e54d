package store

import (
	"context"
	"fmt"

	"github.com/Apfirebolt/logjournal-backend/internal/models"

	"github.com/google/uuid"
)

type EntryFilter struct {
	OwnerID    uuid.UUID
	TemplateID *uuid.UUID
	Search     string // title substring
	Ordering   string // created_at, title
	Page       Page
}

var entryOrdering = map[string]string{
	"title":      "title",
	"created_at": "created_at",
}

func (s *Store) CreateEntry(ctx context.Context, e *models.JournalEntry) error {
	if err := insert(s.conn(ctx), e, "", ""); err != nil {
		return fmt.Errorf("create journal entry: %w", err)
	}
	return nil
}

func (s *Store) GetEntry(ctx context.Context, id uuid.UUID) (*models.JournalEntry, error) {
	e, err := first[models.JournalEntry](s.conn(ctx), "id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("get journal entry %s: %w", id, err)
	}
	return e, nil
}

func (s *Store) ListEntries(ctx context.Context, f EntryFilter) ([]models.JournalEntry, int64, error) {
	q := s.conn(ctx).Model(&models.JournalEntry{}).Where("created_by_id = ?", f.OwnerID)
	if f.TemplateID != nil {
		q = q.Where("template_id = ?", *f.TemplateID)
	}
	if f.Search != "" {
		q = q.Where("LOWER(COALESCE(title, '')) LIKE ?", like(f.Search))
	}
	items, total, err := list[models.JournalEntry](q, orderBy(f.Ordering, entryOrdering, "created_at DESC"), f.Page)
	if err != nil {
		return nil, 0, fmt.Errorf("list journal entries: %w", err)
	}
	return items, total, nil
}

func (s *Store) SaveEntry(ctx context.Context, e *models.JournalEntry) error {
	if err := save(s.conn(ctx), e, "", ""); err != nil {
		return fmt.Errorf("save journal entry: %w", err)
	}
	return nil
}

// DeleteEntry removes the entry and its answers.
func (s *Store) DeleteEntry(ctx context.Context, id uuid.UUID) error {
	err := s.Transaction(ctx, func(tx *Store) error {
		if err := tx.db.Where("entry_id = ?", id).Delete(&models.EntryFieldAnswer{}).Error; err != nil {
			return err
		}
		return deleted(tx.db.Where("id = ?", id).Delete(&models.JournalEntry{}))
	})
	if err != nil {
		return fmt.Errorf("delete journal entry %s: %w", id, err)
	}
	return nil
}
