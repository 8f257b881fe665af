package postgres

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Options tunes the connection pool shared by every repository.
type Options struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	// SlowQuery is the threshold above which statements are logged at warn.
	SlowQuery time.Duration
}

// ErrNoDSN is returned by Open when no connection string was configured.
var ErrNoDSN = errors.New("postgres DSN is empty")

const pingTimeout = 5 * time.Second

// Open dials PostgreSQL, applies the pool limits and verifies connectivity.
// Unique violations surface as gorm.ErrDuplicatedKey.
func Open(ctx context.Context, opts Options, logger *slog.Logger) (*gorm.DB, error) {
	dsn := strings.TrimSpace(opts.DSN)
	if dsn == "" {
		return nil, ErrNoDSN
	}
	cfg := &gorm.Config{TranslateError: true}
	if logger != nil {
		cfg.Logger = gormlogger.New(slog.NewLogLogger(logger.Handler(), slog.LevelWarn), gormlogger.Config{
			SlowThreshold:             opts.SlowQuery,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		})
	}
	db, err := gorm.Open(postgres.Open(dsn), cfg)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if opts.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return db, nil
}

// OpenOrFallback returns nil and a no-op cleanup when no DSN is configured or
// the database is unreachable, so callers can switch to in-memory storage.
func OpenOrFallback(ctx context.Context, opts Options, logger *slog.Logger) (*gorm.DB, func()) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := Open(ctx, opts, logger)
	switch {
	case errors.Is(err, ErrNoDSN):
		logger.Warn("POSTGRES_DSN not set, falling back to in-memory repositories")
		return nil, func() {}
	case err != nil:
		logger.Warn("failed to connect to postgres, falling back to in-memory repositories", slog.String("error", err.Error()))
		return nil, func() {}
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Warn("failed to unwrap postgres connection, falling back to in-memory repositories", slog.String("error", err.Error()))
		return nil, func() {}
	}
	logger.Info("postgres connection established", slog.Int("max_open_conns", opts.MaxOpenConns))
	return db, func() { _ = sqlDB.Close() }
}
