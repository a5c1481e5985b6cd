package sqlite

import (
	"database/sql"
	"fmt"
	"time"
)

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// fmtTime renders a time as UTC RFC3339 for storage. Zero times become the
// empty string so "unknown" round-trips.
func fmtTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// fmtTimePtr renders an optional time for a nullable TEXT column.
func fmtTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return fmtTime(*t)
}

// readTime parses a stored datetime string; empty means the zero time.
func readTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return parseTime(s)
}

// readTimePtr parses a nullable datetime column.
func readTimePtr(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	t, err := parseTime(ns.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// parseTime tries multiple SQLite datetime formats.
func parseTime(s string) (time.Time, error) {
	formats := []string{
		"2006-01-02T15:04:05Z",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05.000",
		time.RFC3339,
		time.RFC3339Nano,
	}

	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized time format: %s", s)
}

// boolInt converts a bool to the 0/1 integer SQLite convention.
func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// inPlaceholders builds a "(?, ?, ...)" fragment and its argument slice for
// an IN clause over int64 keys.
func inPlaceholders(ids []int64) (string, []any) {
	args := make([]any, len(ids))
	ph := make([]byte, 0, 2*len(ids)+1)
	ph = append(ph, '(')
	for i, id := range ids {
		if i > 0 {
			ph = append(ph, ',')
		}
		ph = append(ph, '?')
		args[i] = id
	}
	ph = append(ph, ')')
	return string(ph), args
}
