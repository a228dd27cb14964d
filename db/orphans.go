// ABOUTME: Rows a failed lead save could not delete, kept for a later cleanup
// ABOUTME: Entries are "kind:id" pairs as reported by the lead creation saga
package db

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"
)

type Orphan struct {
	Kind       string
	RemoteID   int
	RecordedAt time.Time
	Attempts   int
	LastError  *string
}

// ParseOrphan splits "kind:id".
func ParseOrphan(s string) (kind string, id int, err error) {
	kind, rawID, ok := strings.Cut(s, ":")
	if !ok {
		return "", 0, fmt.Errorf("malformed orphan %q", s)
	}
	id, err = strconv.Atoi(rawID)
	if err != nil {
		return "", 0, fmt.Errorf("malformed orphan %q: %w", s, err)
	}
	switch kind {
	case "lead", "contact", "address":
		return kind, id, nil
	}
	return "", 0, fmt.Errorf("unknown orphan kind %q", kind)
}

// RecordOrphans stores each "kind:id" entry. Entries already present are kept.
func (s *Store) RecordOrphans(ctx context.Context, entries []string) error {
	for _, e := range entries {
		kind, id, err := ParseOrphan(e)
		if err != nil {
			return err
		}
		_, err = s.db.ExecContext(ctx, `
			INSERT INTO orphans (kind, remote_id) VALUES (?, ?)
			ON CONFLICT(kind, remote_id) DO NOTHING
		`, kind, id)
		if err != nil {
			return fmt.Errorf("failed to record orphan %s: %w", e, err)
		}
	}
	return nil
}

func (s *Store) ListOrphans(ctx context.Context) ([]Orphan, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT kind, remote_id, recorded_at, attempts, last_error
		FROM orphans
		ORDER BY recorded_at, kind, remote_id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list orphans: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Orphan
	for rows.Next() {
		var o Orphan
		var lastErr sql.NullString
		if err := rows.Scan(&o.Kind, &o.RemoteID, &o.RecordedAt, &o.Attempts, &lastErr); err != nil {
			return nil, fmt.Errorf("failed to scan orphan: %w", err)
		}
		if lastErr.Valid {
			o.LastError = &lastErr.String
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// ResolveOrphan forgets an orphan once it has been deleted remotely.
func (s *Store) ResolveOrphan(ctx context.Context, kind string, id int) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM orphans WHERE kind = ? AND remote_id = ?`, kind, id)
	if err != nil {
		return fmt.Errorf("failed to resolve orphan %s:%d: %w", kind, id, err)
	}
	return nil
}

// OrphanFailed records a failed cleanup attempt.
func (s *Store) OrphanFailed(ctx context.Context, kind string, id int, cause error) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE orphans SET attempts = attempts + 1, last_error = ?
		WHERE kind = ? AND remote_id = ?
	`, cause.Error(), kind, id)
	if err != nil {
		return fmt.Errorf("failed to update orphan %s:%d: %w", kind, id, err)
	}
	return nil
}
