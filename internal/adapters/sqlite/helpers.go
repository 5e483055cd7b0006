package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// nullTime parses an RFC3339 record timestamp. Empty means NULL.
func nullTime(s string) (sql.NullTime, error) {
	if s == "" {
		return sql.NullTime{}, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return sql.NullTime{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func formatNullTime(t sql.NullTime) string {
	if !t.Valid {
		return ""
	}
	return formatTime(t.Time)
}

// nextSequentialID returns prefix + the next zero-padded number in table.
func nextSequentialID(ctx context.Context, q querier, table, prefix string, width int) (string, error) {
	var maxID int
	err := q.QueryRowContext(ctx,
		fmt.Sprintf("SELECT COALESCE(MAX(CAST(SUBSTR(id, %d) AS INTEGER)), 0) FROM %s", len(prefix)+1, table),
	).Scan(&maxID)
	if err != nil {
		return "", fmt.Errorf("failed to get next %s ID: %w", table, err)
	}
	return fmt.Sprintf("%s%0*d", prefix, width, maxID+1), nil
}
