package app

import (
	"context"
	"fmt"
	"time"

	"bmi-quickcalc/internal/auth"
	"bmi-quickcalc/internal/config"
	"bmi-quickcalc/internal/database"
	"bmi-quickcalc/internal/logger"
	"bmi-quickcalc/internal/metrics"
	"bmi-quickcalc/internal/session"

	"go.uber.org/zap"
)

// App holds the application's dependencies.
type App struct {
	cfg      *config.Config
	db       *database.DB
	sessions session.Store
	activity *metrics.Store
	recorder *metrics.Recorder

	closers []func() error
}

// NewApp opens the database and the configured session backend.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	a := &App{
		cfg:     cfg,
		db:      db,
		closers: []func() error{db.Close},
	}
	a.activity = metrics.NewStore(db.SQL)
	a.recorder = metrics.NewRecorder(a.activity)

	switch cfg.SessionBackend {
	case config.BackendRedis:
		client := session.NewRedisClient(session.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := session.Ping(ctx, client); err != nil {
			client.Close()
			a.Close()
			return nil, err
		}
		store := session.NewRedisStore(client, cfg.SessionTTL)
		a.sessions = store
		a.closers = append(a.closers, store.Close)
	default:
		a.sessions = session.NewSQLiteStore(db.SQL, cfg.SessionTTL)
	}

	logger.Info("Application initialized",
		zap.String("env", cfg.Env),
		zap.String("session_backend", cfg.SessionBackend),
		zap.Duration("session_ttl", cfg.SessionTTL),
	)
	return a, nil
}

// Close releases every resource in reverse order of acquisition.
func (a *App) Close() error {
	var firstErr error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	a.closers = nil
	return firstErr
}

func (a *App) Config() *config.Config      { return a.cfg }
func (a *App) Sessions() session.Store     { return a.sessions }
func (a *App) Activity() *metrics.Store    { return a.activity }
func (a *App) Recorder() *metrics.Recorder { return a.recorder }

// CleanupSessions removes expired form drafts.
func (a *App) CleanupSessions(ctx context.Context) (int64, error) {
	n, err := a.sessions.CleanupExpired(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to clean up sessions: %w", err)
	}
	return n, nil
}

// CleanupMetrics removes execution metrics older than days.
func (a *App) CleanupMetrics(ctx context.Context, days int) (int64, error) {
	if days < 1 {
		return 0, fmt.Errorf("days must be at least 1, got %d", days)
	}
	n, err := a.activity.Cleanup(ctx, days)
	if err != nil {
		return 0, fmt.Errorf("failed to clean up metrics: %w", err)
	}
	return n, nil
}

// IssueAdminToken signs a token for the operator endpoints.
func (a *App) IssueAdminToken(ttl time.Duration) (string, error) {
	return auth.IssueAdminToken(a.cfg.AdminTokenSecret, ttl)
}
