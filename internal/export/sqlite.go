// Keyscope - Cloud Key-Value Store Browser and Export Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/keyscope

package export

import (
	"context"
	"database/sql"
	"fmt"

	json "github.com/goccy/go-json"
	_ "modernc.org/sqlite"

	"github.com/tomtom215/keyscope/internal/logging"
	"github.com/tomtom215/keyscope/internal/metrics"
	"github.com/tomtom215/keyscope/internal/models/opencloud"
)

const schema = `
CREATE TABLE IF NOT EXISTS entries (
    universe_id   INTEGER NOT NULL,
    datastore     TEXT    NOT NULL,
    scope         TEXT    NOT NULL,
    entry_key     TEXT    NOT NULL,
    version       TEXT    NOT NULL DEFAULT '',
    entry_type    TEXT    NOT NULL,
    data_raw      TEXT    NOT NULL,
    data_string   TEXT,
    data_number   REAL,
    user_ids      TEXT,
    attributes    TEXT,
    created_time  TEXT    NOT NULL DEFAULT '',
    updated_time  TEXT    NOT NULL DEFAULT '',
    exported_at   TEXT    NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now')),
    PRIMARY KEY (universe_id, datastore, scope, entry_key)
);

CREATE INDEX IF NOT EXISTS idx_entries_type   ON entries (entry_type);
CREATE INDEX IF NOT EXISTS idx_entries_number ON entries (data_number) WHERE data_number IS NOT NULL;
`

const upsertEntry = `
INSERT INTO entries (
    universe_id, datastore, scope, entry_key, version, entry_type,
    data_raw, data_string, data_number, user_ids, attributes,
    created_time, updated_time
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (universe_id, datastore, scope, entry_key) DO UPDATE SET
    version      = excluded.version,
    entry_type   = excluded.entry_type,
    data_raw     = excluded.data_raw,
    data_string  = excluded.data_string,
    data_number  = excluded.data_number,
    user_ids     = excluded.user_ids,
    attributes   = excluded.attributes,
    created_time = excluded.created_time,
    updated_time = excluded.updated_time,
    exported_at  = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')
`

// SQLiteSink writes entries into a local SQLite database. Besides the raw
// payload it stores typed projections (data_string, data_number) so
// exported values can be queried without JSON functions.
type SQLiteSink struct {
	db     *sql.DB
	upsert *sql.Stmt
}

// NewSQLiteSink opens (creating if needed) the database at path and
// prepares the schema.
func NewSQLiteSink(path string) (*SQLiteSink, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open export database: %w", err)
	}
	// The sink is used from a single export walk; one connection avoids
	// SQLITE_BUSY between writer connections.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA journal_mode = WAL`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set journal mode: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create export schema: %w", err)
	}

	upsert, err := db.Prepare(upsertEntry)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("prepare upsert: %w", err)
	}

	logging.Debug().Str("path", path).Msg("export database ready")
	return &SQLiteSink{db: db, upsert: upsert}, nil
}

// WriteEntry upserts one entry keyed by its full coordinate.
func (s *SQLiteSink) WriteEntry(ctx context.Context, entry *opencloud.DecodedEntry) error {
	var dataString sql.NullString
	if entry.Type == opencloud.EntryTypeString {
		dataString = sql.NullString{String: entry.Display, Valid: true}
	}

	var dataNumber sql.NullFloat64
	if n, ok := opencloud.NumericValue(entry.Raw); ok {
		dataNumber = sql.NullFloat64{Float64: n, Valid: true}
	}

	var userIDs sql.NullString
	if len(entry.UserIDs) > 0 {
		encoded, err := json.Marshal(entry.UserIDs)
		if err != nil {
			return fmt.Errorf("encode user ids: %w", err)
		}
		userIDs = sql.NullString{String: string(encoded), Valid: true}
	}

	var attributes sql.NullString
	if entry.Attributes != "" {
		attributes = sql.NullString{String: entry.Attributes, Valid: true}
	}

	_, err := s.upsert.ExecContext(ctx,
		entry.UniverseID, entry.Datastore, entry.Scope, entry.Key,
		entry.Version, entry.Type.String(),
		entry.Raw, dataString, dataNumber, userIDs, attributes,
		entry.CreatedTime, entry.VersionCreatedTime,
	)
	if err != nil {
		metrics.ExportErrors.Inc()
		return fmt.Errorf("write entry %s/%s/%s: %w", entry.Datastore, entry.Scope, entry.Key, err)
	}

	metrics.ExportedEntries.Inc()
	return nil
}

// Count returns the number of exported entries, mainly for tests and
// end-of-run reporting.
func (s *SQLiteSink) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM entries`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count entries: %w", err)
	}
	return n, nil
}

// Close releases the prepared statement and the database.
func (s *SQLiteSink) Close() error {
	if s.upsert != nil {
		_ = s.upsert.Close()
	}
	return s.db.Close()
}
