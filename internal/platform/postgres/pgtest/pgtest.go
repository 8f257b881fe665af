//go:build integration

// Package pgtest starts a disposable PostgreSQL container for adapter
// integration tests.
package pgtest

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"

	"github.com/Apurer/storefront-api/internal/platform/migrations"
	"github.com/Apurer/storefront-api/internal/platform/postgres"
)

const image = "postgres:15-alpine"

// Start runs a fresh database named after the caller, opens it with the pool
// settings the API uses and applies the schema. The container is terminated
// when t finishes. Short mode skips the test.
func Start(t *testing.T, database string) *gorm.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()

	container, err := tcpostgres.RunContainer(ctx,
		testcontainers.WithImage(image),
		tcpostgres.WithDatabase(database),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := postgres.Open(ctx, postgres.Options{DSN: dsn, MaxOpenConns: 8, MaxIdleConns: 2}, slog.Default())
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	require.NoError(t, migrations.Run(db))
	return db
}
