package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Apfirebolt/logjournal-backend/internal/config"
	"github.com/Apfirebolt/logjournal-backend/internal/database"
	"github.com/Apfirebolt/logjournal-backend/internal/logger"
	"github.com/Apfirebolt/logjournal-backend/internal/metrics"
	"github.com/Apfirebolt/logjournal-backend/internal/middleware"
	"github.com/Apfirebolt/logjournal-backend/internal/router"
	"github.com/Apfirebolt/logjournal-backend/internal/service"
	"github.com/Apfirebolt/logjournal-backend/internal/store"
	"github.com/Apfirebolt/logjournal-backend/internal/tasks"
	"github.com/Apfirebolt/logjournal-backend/internal/util"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// Version is set at build time with -ldflags "-X main.Version=...".
var Version = "dev"

var configPath string

var rootCmd = &cobra.Command{
	Use:           "logjournal",
	Short:         "Journaling REST API server",
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server and scheduled jobs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := setup()
		if err != nil {
			return err
		}
		defer app.close()
		app.log.Info("database migrated")
		return nil
	},
}

var createSuperuserCmd = &cobra.Command{
	Use:   "createsuperuser",
	Short: "Create a staff account",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		username, _ := cmd.Flags().GetString("username")
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")
		if password == "" {
			password = os.Getenv("LOGJOURNAL_SUPERUSER_PASSWORD")
		}
		if username == "" || email == "" {
			return errors.New("--username and --email are required")
		}
		generated := password == ""
		if generated {
			var err error
			if password, err = util.RandomString(20); err != nil {
				return err
			}
		}

		app, err := setup()
		if err != nil {
			return err
		}
		defer app.close()

		u, err := app.svc.Register(cmd.Context(), service.RegisterInput{
			Username: username,
			Email:    email,
			Password: password,
			IsStaff:  true,
		})
		if err != nil {
			return fmt.Errorf("create superuser: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created staff user %s (%s)\n", u.Username, u.ID)
		if generated {
			fmt.Fprintf(cmd.OutOrStdout(), "generated password: %s\n", password)
		}
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), Version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default ./config.yaml)")

	createSuperuserCmd.Flags().String("username", "", "username")
	createSuperuserCmd.Flags().String("email", "", "email address")
	createSuperuserCmd.Flags().String("password", "", "password (or LOGJOURNAL_SUPERUSER_PASSWORD; generated when both are empty)")

	rootCmd.AddCommand(serveCmd, migrateCmd, createSuperuserCmd, versionCmd)
}

// app holds what every command needs: config, logger and a migrated
// database behind the service layer.
type app struct {
	cfg       *config.Config
	log       *logrus.Logger
	logCloser io.Closer
	db        *gorm.DB
	store     *store.Store
	svc       *service.Service
}

func setup() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log, closer, err := logger.New(cfg.Log)
	if err != nil {
		return nil, err
	}

	db, err := database.Init(cfg.Database)
	if err != nil {
		closer.Close()
		return nil, fmt.Errorf("init database: %w", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		closer.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	st := store.New(db)
	svc := service.New(st, logger.MutationHook(log), metrics.MutationHook)
	svc.SetBcryptCost(cfg.Security.BcryptCost)

	return &app{cfg: cfg, log: log, logCloser: closer, db: db, store: st, svc: svc}, nil
}

func (a *app) close() {
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	_ = a.logCloser.Close()
}

func serve(parent context.Context) error {
	a, err := setup()
	if err != nil {
		return err
	}
	defer a.close()

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	limiter := middleware.NewRateLimiter(a.cfg.RateLimit.RequestsPerSecond, a.cfg.RateLimit.Burst, a.log)
	limiter.StartCleanup(10*time.Minute, ctx.Done())

	if a.cfg.Scheduler.Enabled {
		sched := tasks.New(a.store, a.svc, a.log)
		if err := sched.Register(a.cfg.Scheduler); err != nil {
			return err
		}
		sched.Start()
		defer func() { <-sched.Stop().Done() }()
	}

	if a.cfg.Security.EncryptionKey == "" {
		a.log.Warn("security.encryption_key is empty; audit log paths and actions are stored in plaintext")
	}

	r := router.SetupRouter(a.cfg, router.Deps{DB: a.db, Svc: a.svc, Log: a.log, Limiter: limiter})
	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.cfg.Server.Address, a.cfg.Server.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.WithField("addr", srv.Addr).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("run server: %w", err)
	case <-ctx.Done():
	}

	a.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
