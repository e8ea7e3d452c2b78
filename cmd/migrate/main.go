package main

// Run database migrations:
//   go run ./cmd/migrate

import (
	"context"
	"os"

	"resume-coach/internal/shared/config"
	"resume-coach/internal/shared/storage/db"
	"resume-coach/internal/shared/telemetry"
)

func main() {
	cfg := config.Load()
	if err := telemetry.Init(cfg.Env); err != nil {
		os.Exit(1)
	}
	defer telemetry.Sync()
	ctx := context.Background()

	opts := db.OptionsFromEnv(db.DefaultMigrateOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		telemetry.Error("migrate.connect_failed", map[string]any{"error": err})
		telemetry.Sync()
		os.Exit(1)
	}
	defer sqlDB.Close()

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		telemetry.Error("migrate.failed", map[string]any{"error": err})
		telemetry.Sync()
		os.Exit(1)
	}
	telemetry.Info("migrate.complete", nil)
}
