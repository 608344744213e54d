package store

import (
	"context"
	"fmt"
	"time"

	"github.com/Apfirebolt/logjournal-backend/internal/models"

	"github.com/google/uuid"
)

type AuditFilter struct {
	UserID uuid.UUID
	Start  *time.Time
	End    *time.Time // exclusive
	Method string
	Page   Page
}

func (s *Store) CreateAuditLog(ctx context.Context, l *models.AuditLog) error {
	if err := s.conn(ctx).Create(l).Error; err != nil {
		return fmt.Errorf("create audit log: %w", err)
	}
	return nil
}

func (s *Store) ListAuditLogs(ctx context.Context, f AuditFilter) ([]models.AuditLog, int64, error) {
	q := s.conn(ctx).Model(&models.AuditLog{}).Where("user_id = ?", f.UserID)
	if f.Start != nil {
		q = q.Where("created_at >= ?", *f.Start)
	}
	if f.End != nil {
		q = q.Where("created_at < ?", *f.End)
	}
	if f.Method != "" {
		q = q.Where("method = ?", f.Method)
	}
	items, total, err := list[models.AuditLog](q, "created_at DESC, id DESC", f.Page)
	if err != nil {
		return nil, 0, fmt.Errorf("list audit logs: %w", err)
	}
	return items, total, nil
}
