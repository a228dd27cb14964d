// ABOUTME: Search history: the location queries run from this device
// ABOUTME: Used to offer recent searches in the TUI and CLI
package db

import (
	"context"
	"fmt"
	"strings"
	"time"
)

type SearchRecord struct {
	ID          string
	Query       string
	Sources     []string
	ResultCount int
	SearchedAt  time.Time
}

// RecordSearch stores a search that was run.
func (s *Store) RecordSearch(ctx context.Context, query string, sources []string, resultCount int) (*SearchRecord, error) {
	rec := &SearchRecord{
		ID:          newID(),
		Query:       query,
		Sources:     sources,
		ResultCount: resultCount,
		SearchedAt:  time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO search_history (id, query, sources, result_count, searched_at)
		VALUES (?, ?, ?, ?, ?)
	`, rec.ID, rec.Query, strings.Join(sources, ","), rec.ResultCount, rec.SearchedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to record search: %w", err)
	}
	return rec, nil
}

// RecentSearches returns the latest distinct queries, newest first.
func (s *Store) RecentSearches(ctx context.Context, limit int) ([]SearchRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT h.id, h.query, h.sources, h.result_count, h.searched_at
		FROM search_history h
		WHERE h.searched_at = (
			SELECT MAX(searched_at) FROM search_history WHERE query = h.query
		)
		ORDER BY h.searched_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list searches: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []SearchRecord
	for rows.Next() {
		var rec SearchRecord
		var sources string
		if err := rows.Scan(&rec.ID, &rec.Query, &sources, &rec.ResultCount, &rec.SearchedAt); err != nil {
			return nil, fmt.Errorf("failed to scan search: %w", err)
		}
		if sources != "" {
			rec.Sources = strings.Split(sources, ",")
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
