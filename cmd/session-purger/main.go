package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/Apurer/storefront-api/internal/app/api"
	userpostgres "github.com/Apurer/storefront-api/internal/domains/users/adapters/persistence/postgres"
	platformpostgres "github.com/Apurer/storefront-api/internal/platform/postgres"
)

func main() {
	cfg, err := api.LoadConfig(".env")
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	db, cleanup := platformpostgres.OpenOrFallback(ctx, cfg.Postgres, logger)
	defer cleanup()
	if db == nil {
		log.Fatal("POSTGRES_DSN not set or connection failed; cannot purge sessions")
	}

	removed, err := userpostgres.NewSessionStore(db).PurgeExpired(ctx, time.Now().UTC())
	if err != nil {
		log.Fatalf("failed to purge sessions: %v", err)
	}
	logger.Info("session purge completed", slog.Int64("removed", removed))
}
