package migration

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

type migrationStep struct {
	Name string
	SQL  string
}

var steps = []migrationStep{
	{
		Name: "create_table_documents",
		SQL: `CREATE TABLE IF NOT EXISTS documents (
  id             UUID        PRIMARY KEY,
  file_id        TEXT        NOT NULL,
  file_unique_id TEXT        NOT NULL UNIQUE,
  file_name      TEXT        NOT NULL DEFAULT '',
  mime_type      TEXT        NOT NULL,
  size           BIGINT      NOT NULL CHECK (size >= 0),
  storage_path   TEXT        NOT NULL UNIQUE,
  chat_id        BIGINT      NOT NULL DEFAULT 0,
  created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_documents_chat_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_documents_chat_id ON documents (chat_id);`,
	},
	{
		Name: "create_index_documents_mime_type",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_documents_mime_type ON documents (mime_type);`,
	},
	{
		Name: "create_index_documents_created_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_documents_created_at ON documents (created_at);`,
	},
}

// EnsureMigrated checks if the documents table exists and runs the schema steps if it doesn't.
func EnsureMigrated(ctx context.Context, db *sql.DB, logger *slog.Logger, dbHost string) error {
	start := time.Now()
	log := logger.With(slog.String("component", "database"), slog.String("db_host", dbHost))

	log.Info("db_migration_check")

	var exists bool
	const query = "SELECT to_regclass('public.documents') IS NOT NULL"
	if err := db.QueryRowContext(ctx, query).Scan(&exists); err != nil {
		log.Error("db_migration_failed",
			slog.String("error_message", err.Error()),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		log.Info("db_migration_skip", slog.Int64("duration_ms", time.Since(start).Milliseconds()))
		return nil
	}

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			log.Error("db_migration_failed",
				slog.String("migration_step", step.Name),
				slog.String("error_message", err.Error()),
				slog.Int64("step_duration_ms", time.Since(stepStart).Milliseconds()),
			)
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}
		log.Info("db_migration_step",
			slog.String("migration_step", step.Name),
			slog.Int64("step_duration_ms", time.Since(stepStart).Milliseconds()),
		)
	}

	log.Info("db_migration_success", slog.Int64("duration_ms", time.Since(start).Milliseconds()))
	return nil
}
