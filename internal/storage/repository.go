package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	domerrors "github.com/garyellow/kebiao-ics/internal/errors"
)

// DefaultListLimit bounds ListConversions when limit is not positive.
const DefaultListLimit = 20

const slowQueryThreshold = 100 * time.Millisecond

// SaveConversion inserts or replaces a conversion record.
// A zero CreatedAt is set to the current time.
func (db *DB) SaveConversion(ctx context.Context, c *Conversion) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	query := `
		INSERT INTO conversions (id, created_at, semester_start, source_sha256, course_count, event_count, ics, summary_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			created_at = excluded.created_at,
			semester_start = excluded.semester_start,
			source_sha256 = excluded.source_sha256,
			course_count = excluded.course_count,
			event_count = excluded.event_count,
			ics = excluded.ics,
			summary_json = excluded.summary_json
	`
	start := time.Now()
	_, err := db.conn.ExecContext(ctx, query,
		c.ID, c.CreatedAt.Unix(), c.SemesterStart, c.SourceSHA256,
		c.CourseCount, c.EventCount, c.ICS, c.SummaryJSON)
	if err != nil {
		slog.ErrorContext(ctx, "failed to save conversion",
			"conversion_id", c.ID,
			"error", err)
		return fmt.Errorf("failed to save conversion: %w", err)
	}

	warnIfSlow(ctx, "SaveConversion", start, "conversion_id", c.ID)
	return nil
}

// GetConversion retrieves a conversion with its artifacts.
// Returns an error wrapping ErrNotFound when id is unknown.
func (db *DB) GetConversion(ctx context.Context, id string) (*Conversion, error) {
	query := `
		SELECT id, created_at, semester_start, source_sha256, course_count, event_count, ics, summary_json
		FROM conversions WHERE id = ?
	`
	var (
		c         Conversion
		createdAt int64
	)
	err := db.conn.QueryRowContext(ctx, query, id).Scan(
		&c.ID,
		&createdAt,
		&c.SemesterStart,
		&c.SourceSHA256,
		&c.CourseCount,
		&c.EventCount,
		&c.ICS,
		&c.SummaryJSON,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("conversion %s: %w", id, domerrors.ErrNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to query conversion",
			"conversion_id", id,
			"error", err)
		return nil, fmt.Errorf("query conversion: %w", err)
	}
	c.CreatedAt = time.Unix(createdAt, 0)
	return &c, nil
}

// ListConversions returns the most recent conversions, newest first, without
// their artifacts.
func (db *DB) ListConversions(ctx context.Context, limit int) ([]Conversion, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	query := `
		SELECT id, created_at, semester_start, source_sha256, course_count, event_count
		FROM conversions
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`
	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list conversions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	conversions := make([]Conversion, 0, limit)
	for rows.Next() {
		var (
			c         Conversion
			createdAt int64
		)
		if err := rows.Scan(&c.ID, &createdAt, &c.SemesterStart, &c.SourceSHA256, &c.CourseCount, &c.EventCount); err != nil {
			return nil, fmt.Errorf("scan conversion: %w", err)
		}
		c.CreatedAt = time.Unix(createdAt, 0)
		conversions = append(conversions, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate conversions: %w", err)
	}

	warnIfSlow(ctx, "ListConversions", start, "limit", limit)
	return conversions, nil
}

// DeleteConversionsBefore removes conversions created before cutoff and
// returns how many were deleted.
func (db *DB) DeleteConversionsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM conversions WHERE created_at < ?`, cutoff.Unix())
	if err != nil {
		return 0, fmt.Errorf("delete conversions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete conversions: %w", err)
	}
	if n > 0 {
		slog.InfoContext(ctx, "pruned conversion history",
			"deleted", n,
			"cutoff", cutoff.Format(time.RFC3339))
	}
	return n, nil
}

// CountConversions returns the number of stored conversions.
func (db *DB) CountConversions(ctx context.Context) (int, error) {
	var n int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM conversions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count conversions: %w", err)
	}
	return n, nil
}

func warnIfSlow(ctx context.Context, op string, start time.Time, args ...any) {
	if d := time.Since(start); d > slowQueryThreshold {
		slog.WarnContext(ctx, "slow database operation",
			append([]any{"operation", op, "duration_ms", d.Milliseconds()}, args...)...)
	}
}
