package store

import (
	"context"
	"fmt"

	"github.com/Apfirebolt/logjournal-backend/internal/models"

	"github.com/google/uuid"
)

const dupAnswer = "an answer for this entry and field already exists"

type AnswerFilter struct {
	OwnerID uuid.UUID // owner of the answer's entry
	EntryID *uuid.UUID
	FieldID *uint
	Page    Page
}

func (s *Store) CreateAnswer(ctx context.Context, a *models.EntryFieldAnswer) error {
	if err := insert(s.conn(ctx), a, "field", dupAnswer); err != nil {
		return fmt.Errorf("create entry field answer: %w", err)
	}
	return nil
}

func (s *Store) GetAnswer(ctx context.Context, id uuid.UUID) (*models.EntryFieldAnswer, error) {
	a, err := first[models.EntryFieldAnswer](s.conn(ctx), "id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("get entry field answer %s: %w", id, err)
	}
	return a, nil
}

// AnswerExists reports whether (entryID, fieldID) is already answered,
// ignoring the answer excludeID.
func (s *Store) AnswerExists(ctx context.Context, entryID uuid.UUID, fieldID uint, excludeID uuid.UUID) (bool, error) {
	var n int64
	err := s.conn(ctx).Model(&models.EntryFieldAnswer{}).
		Where("entry_id = ? AND field_id = ? AND id <> ?", entryID, fieldID, excludeID).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("check answer: %w", err)
	}
	return n > 0, nil
}

func (s *Store) ListAnswers(ctx context.Context, f AnswerFilter) ([]models.EntryFieldAnswer, int64, error) {
	db := s.conn(ctx)
	q := db.Model(&models.EntryFieldAnswer{}).Where("entry_id IN (?)",
		db.Model(&models.JournalEntry{}).Select("id").Where("created_by_id = ?", f.OwnerID))
	if f.EntryID != nil {
		q = q.Where("entry_id = ?", *f.EntryID)
	}
	if f.FieldID != nil {
		q = q.Where("field_id = ?", *f.FieldID)
	}
	items, total, err := list[models.EntryFieldAnswer](q, "created_at ASC, id ASC", f.Page)
	if err != nil {
		return nil, 0, fmt.Errorf("list entry field answers: %w", err)
	}
	return items, total, nil
}

// AnswersForEntries loads the answers of the given entries with their field.
func (s *Store) AnswersForEntries(ctx context.Context, entryIDs []uuid.UUID) ([]models.EntryFieldAnswer, error) {
	items := make([]models.EntryFieldAnswer, 0)
	if len(entryIDs) == 0 {
		return items, nil
	}
	if err := s.conn(ctx).Preload("Field").
		Where("entry_id IN ?", entryIDs).
		Order("created_at ASC, id ASC").
		Find(&items).Error; err != nil {
		return nil, fmt.Errorf("load answers: %w", err)
	}
	return items, nil
}

func (s *Store) SaveAnswer(ctx context.Context, a *models.EntryFieldAnswer) error {
	if err := save(s.conn(ctx), a, "field", dupAnswer); err != nil {
		return fmt.Errorf("save entry field answer: %w", err)
	}
	return nil
}

func (s *Store) DeleteAnswer(ctx context.Context, id uuid.UUID) error {
	if err := deleted(s.conn(ctx).Where("id = ?", id).Delete(&models.EntryFieldAnswer{})); err != nil {
		return fmt.Errorf("delete entry field answer %s: %w", id, err)
	}
	return nil
}
