package store

import (
	"database/sql"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// migration is one schema step. Target version = index + 1. Each step runs
// in a single transaction together with the version bump, so a failed step
// leaves the database exactly at its pre-migration state.
type migration struct {
	name  string
	apply func(tx *sql.Tx) error
}

var migrations = []migration{
	{"create snippets table", createSnippets},
	{"import legacy colors table", importLegacyColors},
}

// TargetVersion is the schema version a successful Open leaves behind.
var TargetVersion = len(migrations)

// Version reports the stored schema version.
func (s *Store) Version() (int, error) {
	var v int
	if err := s.db.QueryRow(`SELECT version FROM schema_meta`).Scan(&v); err != nil {
		return 0, fmt.Errorf("store: read schema version: %w", err)
	}
	return v, nil
}

func (s *Store) migrate() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_meta (version INTEGER NOT NULL)`); err != nil {
		return fmt.Errorf("store: create schema_meta: %w", err)
	}

	var version int
	err := s.db.QueryRow(`SELECT version FROM schema_meta`).Scan(&version)
	switch {
	case err == sql.ErrNoRows:
		if _, err := s.db.Exec(`INSERT INTO schema_meta (version) VALUES (0)`); err != nil {
			return fmt.Errorf("store: seed schema_meta: %w", err)
		}
	case err != nil:
		return fmt.Errorf("store: read schema version: %w", err)
	}

	if version > TargetVersion {
		return fmt.Errorf("store: database schema v%d is newer than this build (v%d), refusing to open", version, TargetVersion)
	}

	for i := version; i < TargetVersion; i++ {
		m := migrations[i]
		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("store: migrate to v%d: %w", i+1, err)
		}
		if err := m.apply(tx); err != nil {
			tx.Rollback()
			return fmt.Errorf("store: migrate to v%d (%s): %w", i+1, m.name, err)
		}
		if _, err := tx.Exec(`UPDATE schema_meta SET version = ?`, i+1); err != nil {
			tx.Rollback()
			return fmt.Errorf("store: migrate to v%d: %w", i+1, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("store: migrate to v%d: %w", i+1, err)
		}
	}
	return nil
}

func createSnippets(tx *sql.Tx) error {
	const ddl = `
CREATE TABLE snippets (
	id            TEXT PRIMARY KEY,
	kind          TEXT NOT NULL,
	color_r       INTEGER,
	color_g       INTEGER,
	color_b       INTEGER,
	color_a       INTEGER,
	code_text     TEXT,
	code_language TEXT,
	text_text     TEXT,
	label         TEXT NOT NULL DEFAULT '',
	position      INTEGER NOT NULL UNIQUE,
	created_at    TEXT NOT NULL,
	updated_at    TEXT NOT NULL
);

CREATE INDEX idx_snippets_kind ON snippets(kind);
CREATE INDEX idx_snippets_position ON snippets(position);
`
	_, err := tx.Exec(ddl)
	return err
}

// importLegacyColors moves rows from the color-only table that predates the
// unified snippet schema, preserving values, labels and positions. The
// legacy alpha was a 0–1 REAL; it is quantized to the canonical 0–255
// channel here, once.
func importLegacyColors(tx *sql.Tx) error {
	var name string
	err := tx.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'colors'`).Scan(&name)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return err
	}

	rows, err := tx.Query(`SELECT r, g, b, a, label, position, COALESCE(created_at, '') FROM colors ORDER BY position`)
	if err != nil {
		return err
	}
	defer rows.Close()

	type legacyRow struct {
		r, g, b   int
		a         float64
		label     string
		position  int64
		createdAt string
	}
	var legacy []legacyRow
	for rows.Next() {
		var lr legacyRow
		if err := rows.Scan(&lr.r, &lr.g, &lr.b, &lr.a, &lr.label, &lr.position, &lr.createdAt); err != nil {
			return err
		}
		legacy = append(legacy, lr)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, lr := range legacy {
		created := lr.createdAt
		if _, err := time.Parse(timeLayout, created); err != nil {
			created = time.Now().UTC().Format(timeLayout)
		}
		_, err := tx.Exec(`
			INSERT INTO snippets (id, kind, color_r, color_g, color_b, color_a,
				label, position, created_at, updated_at)
			VALUES (?, 'color', ?, ?, ?, ?, ?, ?, ?, ?)`,
			uuid.NewString(), lr.r, lr.g, lr.b, int(math.Round(lr.a*255)),
			lr.label, lr.position, created, created)
		if err != nil {
			return err
		}
	}

	_, err = tx.Exec(`DROP TABLE colors`)
	return err
}
