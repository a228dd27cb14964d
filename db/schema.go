// ABOUTME: Database schema for client-side state
// ABOUTME: Key/value local state, search history, and rows a failed lead save left behind
package db

import (
	"database/sql"
)

const schema = `
CREATE TABLE IF NOT EXISTS local_state (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS search_history (
	id TEXT PRIMARY KEY,
	query TEXT NOT NULL,
	sources TEXT NOT NULL,
	result_count INTEGER NOT NULL DEFAULT 0,
	searched_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_search_history_searched_at ON search_history(searched_at DESC);

CREATE TABLE IF NOT EXISTS orphans (
	kind TEXT NOT NULL CHECK(kind IN ('lead', 'contact', 'address')),
	remote_id INTEGER NOT NULL,
	recorded_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	attempts INTEGER NOT NULL DEFAULT 0,
	last_error TEXT,
	PRIMARY KEY (kind, remote_id)
);
`

func InitSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
