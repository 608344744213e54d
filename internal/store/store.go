// Package store persists the journal entities through gorm. Uniqueness
// (slug, username, email, one answer per entry and field) is enforced by
// unique indexes, so concurrent duplicate inserts fail atomically; delete
// methods apply the cascade and nullify rules inside one transaction.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Apfirebolt/logjournal-backend/internal/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store wraps a gorm handle; inside Transaction it wraps the tx handle.
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Transaction runs fn against a transactional Store. Nested calls become
// savepoints.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

func (s *Store) conn(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

// Page selects a window of a list result. Number starts at 1; Size <= 0
// returns everything.
type Page struct {
	Number int
	Size   int
}

func (p Page) apply(q *gorm.DB) *gorm.DB {
	if p.Size <= 0 {
		return q
	}
	n := p.Number
	if n <= 0 {
		n = 1
	}
	return q.Limit(p.Size).Offset((n - 1) * p.Size)
}

// orderBy resolves a "field" / "-field" ordering key against an allow-list,
// falling back to def. id is appended so pages are stable.
func orderBy(key string, allowed map[string]string, def string) string {
	col := def
	desc := strings.HasPrefix(key, "-")
	if c, ok := allowed[strings.TrimPrefix(key, "-")]; ok && key != "" {
		col = c
		if desc {
			col += " DESC"
		} else {
			col += " ASC"
		}
	}
	if strings.HasSuffix(col, "DESC") {
		return col + ", id DESC"
	}
	return col + ", id ASC"
}

func like(s string) string {
	return "%" + strings.ToLower(strings.TrimSpace(s)) + "%"
}

func first[T any](db *gorm.DB, query any, args ...any) (*T, error) {
	var m T
	if err := db.Where(query, args...).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

// list counts and fetches q with the given ordering and page.
func list[T any](q *gorm.DB, order string, page Page) ([]T, int64, error) {
	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count: %w", err)
	}
	items := make([]T, 0)
	if err := page.apply(q.Session(&gorm.Session{}).Order(order)).Find(&items).Error; err != nil {
		return nil, 0, fmt.Errorf("find: %w", err)
	}
	return items, total, nil
}

// insert creates value without touching associations. A unique index hit
// becomes a ValidationError on dupField.
func insert(db *gorm.DB, value any, dupField, dupMsg string) error {
	err := db.Omit(clause.Associations).Create(value).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return errs.Invalid(dupField, "%s", dupMsg)
	}
	return err
}

func save(db *gorm.DB, value any, dupField, dupMsg string) error {
	err := db.Omit(clause.Associations).Save(value).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return errs.Invalid(dupField, "%s", dupMsg)
	}
	return err
}

func deleted(res *gorm.DB) error {
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errs.ErrNotFound
	}
	return nil
}
