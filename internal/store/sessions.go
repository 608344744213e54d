package store

import (
	"context"
	"fmt"
	"time"

	"github.com/Apfirebolt/logjournal-backend/internal/models"

	"github.com/google/uuid"
)

func (s *Store) CreateSession(ctx context.Context, sess *models.Session) error {
	if err := insert(s.conn(ctx), sess, "", ""); err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

func (s *Store) GetSession(ctx context.Context, id string) (*models.Session, error) {
	sess, err := first[models.Session](s.conn(ctx), "id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return sess, nil
}

// RevokeSession marks a live session revoked. It reports false when the
// session is unknown or was already revoked, so two concurrent rotations of
// one refresh token cannot both succeed.
func (s *Store) RevokeSession(ctx context.Context, id string) (bool, error) {
	res := s.conn(ctx).Model(&models.Session{}).Where("id = ? AND revoked = ?", id, false).
		Update("revoked", true)
	if res.Error != nil {
		return false, fmt.Errorf("revoke session: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// RevokeUserSessions revokes every refresh token of the user, e.g. after a
// password change.
func (s *Store) RevokeUserSessions(ctx context.Context, userID uuid.UUID) error {
	if err := s.conn(ctx).Model(&models.Session{}).Where("user_id = ? AND revoked = ?", userID, false).
		Update("revoked", true).Error; err != nil {
		return fmt.Errorf("revoke user sessions: %w", err)
	}
	return nil
}

// PurgeSessions deletes expired or revoked sessions and returns how many.
func (s *Store) PurgeSessions(ctx context.Context, now time.Time) (int64, error) {
	res := s.conn(ctx).Where("expires_at < ? OR revoked = ?", now, true).Delete(&models.Session{})
	if res.Error != nil {
		return 0, fmt.Errorf("purge sessions: %w", res.Error)
	}
	return res.RowsAffected, nil
}
