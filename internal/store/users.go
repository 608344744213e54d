package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Apfirebolt/logjournal-backend/internal/errs"
	"github.com/Apfirebolt/logjournal-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	MsgUsernameTaken = "Username already exists"
	MsgEmailTaken    = "Email already exists"
)

type UserFilter struct {
	Username string
	Email    string
	Search   string
	Ordering string // username, email
	Page     Page
}

var userOrdering = map[string]string{
	"username": "username",
	"email":    "email",
}

func (s *Store) UsernameTaken(ctx context.Context, username string) (bool, error) {
	var n int64
	if err := s.conn(ctx).Model(&models.User{}).Where("username = ?", username).Count(&n).Error; err != nil {
		return false, fmt.Errorf("check username: %w", err)
	}
	return n > 0, nil
}

func (s *Store) EmailTaken(ctx context.Context, email string) (bool, error) {
	var n int64
	if err := s.conn(ctx).Model(&models.User{}).Where("email = ?", strings.ToLower(email)).Count(&n).Error; err != nil {
		return false, fmt.Errorf("check email: %w", err)
	}
	return n > 0, nil
}

// CreateUser inserts u. When a concurrent registration wins the unique
// index, the collision is reported as a ConflictError, username first.
func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	u.Email = strings.ToLower(u.Email)
	err := s.conn(ctx).Omit(clause.Associations).Create(u).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		if taken, _ := s.UsernameTaken(ctx, u.Username); taken {
			return errs.Conflict("username", MsgUsernameTaken)
		}
		return errs.Conflict("email", MsgEmailTaken)
	}
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *Store) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	u, err := first[models.User](s.conn(ctx), "id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", id, err)
	}
	return u, nil
}

// FindUserByEmail matches the email case-insensitively.
func (s *Store) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := first[models.User](s.conn(ctx), "email = ?", strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return u, nil
}

func (s *Store) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	u, err := first[models.User](s.conn(ctx), "username = ?", strings.TrimSpace(username))
	if err != nil {
		return nil, fmt.Errorf("find user by username: %w", err)
	}
	return u, nil
}

func (s *Store) SaveUser(ctx context.Context, u *models.User) error {
	u.Email = strings.ToLower(u.Email)
	err := s.conn(ctx).Omit(clause.Associations).Save(u).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		var n int64
		s.conn(ctx).Model(&models.User{}).Where("username = ? AND id <> ?", u.Username, u.ID).Count(&n)
		if n > 0 {
			return errs.Conflict("username", MsgUsernameTaken)
		}
		return errs.Conflict("email", MsgEmailTaken)
	}
	if err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

func (s *Store) ListUsers(ctx context.Context, f UserFilter) ([]models.User, int64, error) {
	q := s.conn(ctx).Model(&models.User{})
	if f.Username != "" {
		q = q.Where("username = ?", f.Username)
	}
	if f.Email != "" {
		q = q.Where("email = ?", strings.ToLower(f.Email))
	}
	if f.Search != "" {
		p := like(f.Search)
		q = q.Where("LOWER(username) LIKE ? OR LOWER(email) LIKE ?", p, p)
	}
	items, total, err := list[models.User](q, orderBy(f.Ordering, userOrdering, "username ASC"), f.Page)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	return items, total, nil
}

// AccountsDueForPurge returns users whose deletion buffer ended before now.
func (s *Store) AccountsDueForPurge(ctx context.Context, now time.Time) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := s.conn(ctx).Model(&models.User{}).
		Where("deleted_at IS NOT NULL AND delete_permanently_at < ?", now).
		Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("accounts due for purge: %w", err)
	}
	return ids, nil
}

// PurgeUser hard-deletes the user and everything the user owns.
func (s *Store) PurgeUser(ctx context.Context, id uuid.UUID) error {
	err := s.Transaction(ctx, func(tx *Store) error {
		db := tx.db
		templates := db.Model(&models.Template{}).Select("id").Where("created_by_id = ?", id)
		entries := db.Model(&models.JournalEntry{}).Select("id").Where("created_by_id = ?", id)
		fields := db.Model(&models.TemplateField{}).Select("id").Where("template_id IN (?)", templates)
		categories := db.Model(&models.Category{}).Select("id").Where("created_by_id = ?", id)

		steps := []func() error{
			func() error {
				return db.Where("entry_id IN (?) OR field_id IN (?)", entries, fields).
					Delete(&models.EntryFieldAnswer{}).Error
			},
			func() error {
				return db.Model(&models.TemplateField{}).Where("category_id IN (?)", categories).
					Update("category_id", nil).Error
			},
			func() error { return db.Where("template_id IN (?)", templates).Delete(&models.TemplateField{}).Error },
			func() error {
				return db.Model(&models.JournalEntry{}).Where("template_id IN (?)", templates).
					Update("template_id", nil).Error
			},
			func() error { return db.Where("created_by_id = ?", id).Delete(&models.JournalEntry{}).Error },
			func() error { return db.Where("created_by_id = ?", id).Delete(&models.Template{}).Error },
			func() error { return db.Where("created_by_id = ?", id).Delete(&models.Category{}).Error },
			func() error { return db.Where("user_id = ?", id).Delete(&models.Session{}).Error },
			func() error { return db.Where("user_id = ?", id).Delete(&models.AuditLog{}).Error },
		}
		for _, step := range steps {
			if err := step(); err != nil {
				return err
			}
		}
		return deleted(db.Where("id = ?", id).Delete(&models.User{}))
	})
	if err != nil {
		return fmt.Errorf("purge user %s: %w", id, err)
	}
	return nil
}
