// Package logger builds the application's logrus logger from config.
package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Apfirebolt/logjournal-backend/internal/config"
	"github.com/Apfirebolt/logjournal-backend/internal/service"

	"github.com/sirupsen/logrus"
)

// New returns a logger writing to stdout and, when cfg.File is set, to
// that file as well. The returned closer releases the file.
func New(cfg config.LogConfig) (*logrus.Logger, io.Closer, error) {
	log := logrus.New()

	level, err := logrus.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		return nil, nil, fmt.Errorf("log level: %w", err)
	}
	log.SetLevel(level)

	switch strings.ToLower(cfg.Format) {
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{})
	case "", "text":
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return nil, nil, fmt.Errorf("unsupported log format %q", cfg.Format)
	}

	var closer io.Closer = io.NopCloser(nil)
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
			return nil, nil, fmt.Errorf("create log dir: %w", err)
		}
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		log.SetOutput(io.MultiWriter(os.Stdout, f))
		closer = f
	}
	return log, closer, nil
}

// MutationHook logs every committed mutation at info level.
func MutationHook(log logrus.FieldLogger) service.Hook {
	return func(_ context.Context, ev service.Event) {
		log.WithFields(logrus.Fields{
			"action": ev.Action,
			"kind":   ev.Kind,
			"id":     ev.ID,
			"actor":  ev.ActorID,
		}).Info("mutation committed")
	}
}
