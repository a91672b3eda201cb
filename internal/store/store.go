// Package store owns the durable snippet table: a single-file SQLite
// database holding typed snippets (color, code, text) behind a versioned,
// migrating schema.
//
// All operations are synchronous and expect external serialization; the
// store takes no internal locks. Open applies the production pragmas
// (WAL, busy_timeout, foreign_keys) before running migrations.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"go.klb.dev/shard/internal/classify"
	"go.klb.dev/shard/internal/colorlib"
)

// ErrNotFound is returned when an operation references a missing snippet id.
var ErrNotFound = errors.New("snippet not found")

// Snippet is a stored entity: the common envelope plus one variant payload.
// Exactly the fields matching Kind are meaningful — Color for KindColor,
// Text (+ Language) for KindCode, Text for KindText.
type Snippet struct {
	ID       string
	Kind     classify.Kind
	Color    colorlib.RGBA
	Text     string
	Language string

	Label     string
	Position  int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Payload returns the copyable text form of the snippet: the hex string for
// colors, the raw text for code and text.
func (s Snippet) Payload() string {
	if s.Kind == classify.KindColor {
		return s.Color.Hex()
	}
	return s.Text
}

// Preview returns the first line of the payload truncated to max runes.
func (s Snippet) Preview(max int) string {
	line := s.Payload()
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	r := []rune(line)
	if len(r) > max {
		return string(r[:max]) + "…"
	}
	return line
}

// Patch describes a partial edit. Nil fields are left untouched.
type Patch struct {
	Label   *string
	Payload *classify.Draft
}

// Filter narrows a List call. Zero value lists everything.
type Filter struct {
	Kind  classify.Kind // "" = all kinds
	Query string        // case-insensitive substring over label and payload
}

// Store is a handle to an open snippet database.
type Store struct {
	db         *sql.DB
	now        func() time.Time
	deleteHook func(id string)
}

type config struct {
	busyTimeout int
	now         func() time.Time
}

// Option customises Open behaviour.
type Option func(*config)

// WithBusyTimeout sets PRAGMA busy_timeout in milliseconds. Default: 10000.
func WithBusyTimeout(ms int) Option { return func(c *config) { c.busyTimeout = ms } }

// WithClock overrides the timestamp source, for tests.
func WithClock(now func() time.Time) Option { return func(c *config) { c.now = now } }

// Open opens or creates the snippet database at path, creating parent
// directories, applying pragmas and running any pending schema migrations.
// A database whose stored version is ahead of this build fails to open
// rather than risking silent data loss.
func Open(path string, opts ...Option) (*Store, error) {
	cfg := config{busyTimeout: 10_000, now: time.Now}
	for _, o := range opts {
		o(&cfg)
	}

	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("store: mkdir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open: %w", err)
	}
	if path == ":memory:" {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		fmt.Sprintf("PRAGMA busy_timeout = %d", cfg.busyTimeout),
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("store: %s: %w", p, err)
		}
	}

	s := &Store{db: db, now: cfg.now}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// DefaultPath returns the platform-appropriate database location:
// $XDG_DATA_HOME/shard/shard.db, falling back to ~/.local/share on Linux
// and the user config dir elsewhere.
func DefaultPath() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "shard", "shard.db")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "share", "shard", "shard.db")
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "shard.db"
	}
	return filepath.Join(dir, "shard", "shard.db")
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// DB exposes the underlying handle for the test helper.
func (s *Store) DB() *sql.DB { return s.db }

// SetDeleteHook registers a callback fired after every successful Delete,
// used to invalidate pin surfaces referencing the removed snippet.
// Only one hook is supported; calling again replaces it.
func (s *Store) SetDeleteHook(fn func(id string)) { s.deleteHook = fn }

const timeLayout = time.RFC3339Nano

// Insert persists a draft as a new snippet. The id is a fresh uuid, never
// reused; position becomes the current maximum plus one (0 when empty).
// Unlabeled colors get their hex form as label, everything else a short
// random one.
func (s *Store) Insert(d classify.Draft, label string) (Snippet, error) {
	if label == "" {
		label = defaultLabel(d)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return Snippet{}, fmt.Errorf("store: insert: %w", err)
	}
	defer tx.Rollback()

	snip, err := insertTx(tx, d, label, s.now())
	if err != nil {
		return Snippet{}, err
	}
	if err := tx.Commit(); err != nil {
		return Snippet{}, fmt.Errorf("store: insert: %w", err)
	}
	return snip, nil
}

func insertTx(tx *sql.Tx, d classify.Draft, label string, now time.Time) (Snippet, error) {
	var pos int64
	if err := tx.QueryRow(`SELECT COALESCE(MAX(position)+1, 0) FROM snippets`).Scan(&pos); err != nil {
		return Snippet{}, fmt.Errorf("store: next position: %w", err)
	}

	snip := Snippet{
		ID:        uuid.NewString(),
		Kind:      d.Kind,
		Color:     d.Color,
		Text:      d.Text,
		Language:  d.Language,
		Label:     label,
		Position:  pos,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := tx.Exec(`
		INSERT INTO snippets (id, kind, color_r, color_g, color_b, color_a,
			code_text, code_language, text_text, label, position, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		snip.ID, string(snip.Kind),
		colorCol(d, 'r'), colorCol(d, 'g'), colorCol(d, 'b'), colorCol(d, 'a'),
		codeCol(d), langCol(d), textCol(d),
		snip.Label, snip.Position,
		now.UTC().Format(timeLayout), now.UTC().Format(timeLayout),
	)
	if err != nil {
		return Snippet{}, fmt.Errorf("store: insert: %w", err)
	}
	return snip, nil
}

// InsertOrBumpColor inserts a color snippet unless one with the exact same
// RGBA value exists, in which case that row is re-sequenced to the top of
// the display order and returned. The whole operation is one transaction.
func (s *Store) InsertOrBumpColor(c colorlib.RGBA, label string) (Snippet, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return Snippet{}, fmt.Errorf("store: bump color: %w", err)
	}
	defer tx.Rollback()

	var id string
	err = tx.QueryRow(`
		SELECT id FROM snippets
		WHERE kind = 'color' AND color_r = ? AND color_g = ? AND color_b = ? AND color_a = ?`,
		c.R, c.G, c.B, c.A).Scan(&id)

	var snip Snippet
	switch {
	case err == nil:
		var pos int64
		if err := tx.QueryRow(`SELECT MAX(position)+1 FROM snippets`).Scan(&pos); err != nil {
			return Snippet{}, fmt.Errorf("store: bump color: %w", err)
		}
		if _, err := tx.Exec(`UPDATE snippets SET position = ? WHERE id = ?`, pos, id); err != nil {
			return Snippet{}, fmt.Errorf("store: bump color: %w", err)
		}
		if snip, err = getTx(tx, id); err != nil {
			return Snippet{}, err
		}
	case errors.Is(err, sql.ErrNoRows):
		d := classify.Draft{Kind: classify.KindColor, Color: c}
		if label == "" {
			label = defaultLabel(d)
		}
		if snip, err = insertTx(tx, d, label, s.now()); err != nil {
			return Snippet{}, err
		}
	default:
		return Snippet{}, fmt.Errorf("store: bump color: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Snippet{}, fmt.Errorf("store: bump color: %w", err)
	}
	return snip, nil
}

// Get returns a single snippet by id.
func (s *Store) Get(id string) (Snippet, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return Snippet{}, fmt.Errorf("store: get: %w", err)
	}
	defer tx.Rollback()
	return getTx(tx, id)
}

// Update mutates label and/or payload in place and bumps updated_at.
func (s *Store) Update(id string, u Patch) (Snippet, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return Snippet{}, fmt.Errorf("store: update: %w", err)
	}
	defer tx.Rollback()

	if _, err := getTx(tx, id); err != nil {
		return Snippet{}, err
	}

	now := s.now().UTC().Format(timeLayout)
	if u.Label != nil {
		if _, err := tx.Exec(`UPDATE snippets SET label = ?, updated_at = ? WHERE id = ?`,
			*u.Label, now, id); err != nil {
			return Snippet{}, fmt.Errorf("store: update: %w", err)
		}
	}
	if u.Payload != nil {
		d := *u.Payload
		if _, err := tx.Exec(`
			UPDATE snippets SET kind = ?, color_r = ?, color_g = ?, color_b = ?, color_a = ?,
				code_text = ?, code_language = ?, text_text = ?, updated_at = ?
			WHERE id = ?`,
			string(d.Kind),
			colorCol(d, 'r'), colorCol(d, 'g'), colorCol(d, 'b'), colorCol(d, 'a'),
			codeCol(d), langCol(d), textCol(d), now, id); err != nil {
			return Snippet{}, fmt.Errorf("store: update: %w", err)
		}
	}

	snip, err := getTx(tx, id)
	if err != nil {
		return Snippet{}, err
	}
	if err := tx.Commit(); err != nil {
		return Snippet{}, fmt.Errorf("store: update: %w", err)
	}
	return snip, nil
}

// Delete removes a snippet. Remaining positions are not renumbered; gaps are
// fine. The delete hook fires after the row is gone.
func (s *Store) Delete(id string) error {
	res, err := s.db.Exec(`DELETE FROM snippets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: delete: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("store: delete %s: %w", id, ErrNotFound)
	}
	if s.deleteHook != nil {
		s.deleteHook(id)
	}
	return nil
}

// List returns snippets ordered by descending position, newest bump first.
// The text query matches case-insensitively against the label and the
// payload — including the formatted hex of colors, which is why the match
// runs here rather than in SQL.
func (s *Store) List(f Filter) ([]Snippet, error) {
	q := selectCols + ` FROM snippets`
	var args []any
	if f.Kind != "" {
		q += ` WHERE kind = ?`
		args = append(args, string(f.Kind))
	}
	q += ` ORDER BY position DESC`

	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("store: list: %w", err)
	}
	defer rows.Close()

	var out []Snippet
	for rows.Next() {
		snip, err := scanSnippet(rows)
		if err != nil {
			return nil, err
		}
		if matches(snip, f.Query) {
			out = append(out, snip)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: list: %w", err)
	}
	return out, nil
}

func matches(s Snippet, query string) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)
	if strings.Contains(strings.ToLower(s.Label), q) {
		return true
	}
	return strings.Contains(strings.ToLower(s.Payload()), q)
}

const selectCols = `SELECT id, kind, color_r, color_g, color_b, color_a,
	code_text, code_language, text_text, label, position, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func getTx(tx *sql.Tx, id string) (Snippet, error) {
	row := tx.QueryRow(selectCols+` FROM snippets WHERE id = ?`, id)
	snip, err := scanSnippet(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Snippet{}, fmt.Errorf("store: %s: %w", id, ErrNotFound)
	}
	return snip, err
}

func scanSnippet(r rowScanner) (Snippet, error) {
	var (
		snip                 Snippet
		kind                 string
		cr, cg, cb, ca       sql.NullInt64
		codeText, codeLang   sql.NullString
		textText             sql.NullString
		createdAt, updatedAt string
	)
	err := r.Scan(&snip.ID, &kind, &cr, &cg, &cb, &ca,
		&codeText, &codeLang, &textText, &snip.Label, &snip.Position,
		&createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Snippet{}, err
		}
		return Snippet{}, fmt.Errorf("store: scan: %w", err)
	}

	snip.Kind = classify.Kind(kind)
	switch snip.Kind {
	case classify.KindColor:
		snip.Color = colorlib.RGBA{
			R: uint8(cr.Int64), G: uint8(cg.Int64), B: uint8(cb.Int64), A: uint8(ca.Int64),
		}
	case classify.KindCode:
		snip.Text = codeText.String
		snip.Language = codeLang.String
	default:
		snip.Text = textText.String
	}

	if snip.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return Snippet{}, fmt.Errorf("store: scan created_at: %w", err)
	}
	if snip.UpdatedAt, err = time.Parse(timeLayout, updatedAt); err != nil {
		return Snippet{}, fmt.Errorf("store: scan updated_at: %w", err)
	}
	return snip, nil
}

// colorCol, codeCol, langCol, textCol return the kind-specific column value
// or nil, so non-applicable columns stay NULL.
func colorCol(d classify.Draft, ch byte) any {
	if d.Kind != classify.KindColor {
		return nil
	}
	switch ch {
	case 'r':
		return d.Color.R
	case 'g':
		return d.Color.G
	case 'b':
		return d.Color.B
	}
	return d.Color.A
}

func codeCol(d classify.Draft) any {
	if d.Kind != classify.KindCode {
		return nil
	}
	return d.Text
}

func langCol(d classify.Draft) any {
	if d.Kind != classify.KindCode {
		return nil
	}
	return d.Language
}

func textCol(d classify.Draft) any {
	if d.Kind != classify.KindText {
		return nil
	}
	return d.Text
}

func defaultLabel(d classify.Draft) string {
	if d.Kind == classify.KindColor {
		return d.Color.Hex()
	}
	return uuid.NewString()[:8]
}
