package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"

	"resume-coach/internal/shared/telemetry"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// RunMigrations applies the embedded schema and logs the resulting version. A nil database
// is a no-op so memory-backed runs can call it unconditionally.
func RunMigrations(ctx context.Context, database *sql.DB) error {
	if database == nil {
		return nil
	}
	goose.SetBaseFS(migrationFiles)
	goose.SetLogger(gooseLogger{})
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, database, "migrations"); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	version, err := goose.GetDBVersionContext(ctx, database)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	telemetry.Info("db.migrated", map[string]any{"version": version})
	return nil
}

// gooseLogger routes goose progress lines into the structured log.
type gooseLogger struct{}

func (gooseLogger) Printf(format string, v ...any) {
	telemetry.Debug("db.goose", map[string]any{"message": fmt.Sprintf(format, v...)})
}

func (gooseLogger) Fatalf(format string, v ...any) {
	telemetry.Error("db.goose", map[string]any{"message": fmt.Sprintf(format, v...)})
}
