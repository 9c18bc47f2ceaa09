package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// InitSchema creates all necessary tables and indexes.
func InitSchema(ctx context.Context, db *sql.DB) error {
	return createConversionsTable(ctx, db)
}

func createConversionsTable(ctx context.Context, db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS conversions (
		id TEXT PRIMARY KEY,
		created_at INTEGER NOT NULL,
		semester_start TEXT NOT NULL,
		source_sha256 TEXT NOT NULL,
		course_count INTEGER NOT NULL,
		event_count INTEGER NOT NULL,
		ics BLOB NOT NULL,
		summary_json BLOB NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_conversions_created_at ON conversions(created_at);
	CREATE INDEX IF NOT EXISTS idx_conversions_source ON conversions(source_sha256);
	`

	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create conversions table: %w", err)
	}
	return nil
}
