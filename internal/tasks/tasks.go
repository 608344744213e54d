// Package tasks runs the periodic background jobs on a cron schedule.
package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/Apfirebolt/logjournal-backend/internal/config"
	"github.com/Apfirebolt/logjournal-backend/internal/metrics"
	"github.com/Apfirebolt/logjournal-backend/internal/service"
	"github.com/Apfirebolt/logjournal-backend/internal/store"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const (
	JobPrintTime = "print_time"
	JobPurge     = "purge"

	jobTimeout = 5 * time.Minute
)

// cronLogger adapts logrus to cron.Logger.
type cronLogger struct {
	log logrus.FieldLogger
}

func fields(keysAndValues []interface{}) logrus.Fields {
	f := logrus.Fields{}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		f[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return f
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.WithFields(fields(keysAndValues)).Debug("cron: " + msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.WithFields(fields(keysAndValues)).WithError(err).Error("cron: " + msg)
}

type Scheduler struct {
	cron  *cron.Cron
	store *store.Store
	svc   *service.Service
	log   logrus.FieldLogger
	now   func() time.Time
}

func New(st *store.Store, svc *service.Service, log logrus.FieldLogger) *Scheduler {
	cl := cronLogger{log: log}
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		store: st,
		svc:   svc,
		log:   log,
		now:   time.Now,
	}
}

// Register adds the configured jobs. An empty spec leaves that job out.
func (s *Scheduler) Register(cfg config.SchedulerConfig) error {
	jobs := []struct {
		name string
		spec string
		fn   func(context.Context) error
	}{
		{JobPrintTime, cfg.PrintTimeSpec, s.PrintTime},
		{JobPurge, cfg.PurgeSpec, s.Purge},
	}
	for _, j := range jobs {
		if j.spec == "" {
			continue
		}
		if _, err := s.cron.AddFunc(j.spec, s.wrap(j.name, j.fn)); err != nil {
			return fmt.Errorf("schedule %s (%q): %w", j.name, j.spec, err)
		}
		s.log.WithFields(logrus.Fields{"job": j.name, "spec": j.spec}).Info("job scheduled")
	}
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops scheduling and returns a context done once running jobs finish.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// wrap turns a job into a cron func that records duration and outcome.
func (s *Scheduler) wrap(name string, fn func(context.Context) error) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		start := time.Now()
		err := fn(ctx)
		metrics.RecordJobRun(name, time.Since(start), err == nil)
		if err != nil {
			s.log.WithField("job", name).WithError(err).Error("job failed")
		}
	}
}

// PrintTime logs the current time. It doubles as a scheduler heartbeat.
func (s *Scheduler) PrintTime(_ context.Context) error {
	s.log.WithField("job", JobPrintTime).Infof("The time is: %s", s.now().Format(time.RFC3339))
	return nil
}

// Purge removes expired or revoked refresh sessions and accounts whose
// deletion buffer has passed.
func (s *Scheduler) Purge(ctx context.Context) error {
	now := s.now()
	sessions, err := s.store.PurgeSessions(ctx, now)
	if err != nil {
		return err
	}
	accounts, err := s.svc.PurgeDeletedAccounts(ctx, now)
	if err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{
		"job":      JobPurge,
		"sessions": sessions,
		"accounts": accounts,
	}).Info("purge finished")
	return nil
}
