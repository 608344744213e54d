package tasks

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/Apfirebolt/logjournal-backend/internal/config"
	"github.com/Apfirebolt/logjournal-backend/internal/models"
	"github.com/Apfirebolt/logjournal-backend/internal/service"
	"github.com/Apfirebolt/logjournal-backend/internal/store"
	"github.com/Apfirebolt/logjournal-backend/internal/testutil"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupScheduler(t *testing.T) (*Scheduler, *store.Store, *strings.Builder) {
	t.Helper()
	st := store.New(testutil.NewDB(t))
	var buf strings.Builder
	log := logrus.New()
	log.SetOutput(&buf)
	log.SetFormatter(&logrus.JSONFormatter{})
	return New(st, service.New(st), log), st, &buf
}

func TestRegister(t *testing.T) {
	s, _, buf := setupScheduler(t)
	require.NoError(t, s.Register(config.SchedulerConfig{PrintTimeSpec: "*/1 * * * *", PurgeSpec: "@hourly"}))
	assert.Len(t, s.cron.Entries(), 2)
	assert.Contains(t, buf.String(), `"job":"purge"`)

	s, _, _ = setupScheduler(t)
	require.NoError(t, s.Register(config.SchedulerConfig{PurgeSpec: "@daily"}))
	assert.Len(t, s.cron.Entries(), 1)

	err := s.Register(config.SchedulerConfig{PrintTimeSpec: "every now and then"})
	assert.ErrorContains(t, err, "print_time")
}

func TestPrintTime(t *testing.T) {
	s, _, buf := setupScheduler(t)
	s.now = func() time.Time { return time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC) }
	require.NoError(t, s.PrintTime(context.Background()))
	assert.Contains(t, buf.String(), "The time is: 2024-05-01T09:30:00Z")
}

func TestPurge(t *testing.T) {
	s, st, buf := setupScheduler(t)
	ctx := context.Background()
	now := time.Now()
	s.now = func() time.Time { return now }

	keep := &models.User{Username: "keep", Email: "keep@example.com", PasswordHash: "x"}
	require.NoError(t, st.CreateUser(ctx, keep))

	gone := &models.User{Username: "gone", Email: "gone@example.com", PasswordHash: "x"}
	require.NoError(t, st.CreateUser(ctx, gone))
	deletedAt := now.Add(-8 * 24 * time.Hour)
	purgeAt := now.Add(-time.Hour)
	gone.DeletedAt, gone.DeletePermanentlyAt = &deletedAt, &purgeAt
	require.NoError(t, st.SaveUser(ctx, gone))

	require.NoError(t, st.CreateSession(ctx, &models.Session{ID: uuid.NewString(), UserID: keep.ID, ExpiresAt: now.Add(-time.Minute)}))
	live := &models.Session{ID: uuid.NewString(), UserID: keep.ID, ExpiresAt: now.Add(time.Hour)}
	require.NoError(t, st.CreateSession(ctx, live))

	require.NoError(t, s.Purge(ctx))

	_, err := st.GetUser(ctx, gone.ID)
	assert.Error(t, err)
	_, err = st.GetUser(ctx, keep.ID)
	assert.NoError(t, err)
	_, err = st.GetSession(ctx, live.ID)
	assert.NoError(t, err)
	assert.Contains(t, buf.String(), `"accounts":1`)
	assert.Contains(t, buf.String(), `"sessions":1`)
}

func TestWrap_LogsFailure(t *testing.T) {
	s, _, buf := setupScheduler(t)
	s.wrap("broken", func(context.Context) error { return assert.AnError })()
	assert.Contains(t, buf.String(), `"job":"broken"`)
	assert.Contains(t, buf.String(), "job failed")
}
