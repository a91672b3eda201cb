package store

import (
	"bytes"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"go.klb.dev/shard/internal/classify"
	"go.klb.dev/shard/internal/colorlib"
)

func colorDraft(c colorlib.RGBA) classify.Draft {
	return classify.Draft{Kind: classify.KindColor, Color: c}
}

func textDraft(s string) classify.Draft {
	return classify.Draft{Kind: classify.KindText, Text: s}
}

func codeDraft(code, lang string) classify.Draft {
	return classify.Draft{Kind: classify.KindCode, Text: code, Language: lang}
}

func TestInsertAndGet(t *testing.T) {
	s := OpenMemory(t)

	snip, err := s.Insert(codeDraft("fn main() {}", "rust"), "hello")
	if err != nil {
		t.Fatal(err)
	}
	if snip.ID == "" || snip.Position != 0 {
		t.Fatalf("first insert: id=%q position=%d", snip.ID, snip.Position)
	}

	got, err := s.Get(snip.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Kind != classify.KindCode || got.Text != "fn main() {}" || got.Language != "rust" {
		t.Fatalf("got %+v", got)
	}
	if got.Label != "hello" {
		t.Fatalf("label = %q", got.Label)
	}
	if !got.CreatedAt.Equal(got.UpdatedAt) {
		t.Fatal("fresh snippet must have created_at == updated_at")
	}
}

func TestDefaultLabels(t *testing.T) {
	s := OpenMemory(t)

	c, err := s.Insert(colorDraft(colorlib.RGBA{R: 255, G: 87, B: 51, A: 255}), "")
	if err != nil {
		t.Fatal(err)
	}
	if c.Label != "#FF5733" {
		t.Fatalf("color default label = %q", c.Label)
	}

	txt, err := s.Insert(textDraft("note to self"), "")
	if err != nil {
		t.Fatal(err)
	}
	if len(txt.Label) != 8 {
		t.Fatalf("text default label = %q, want 8-char id", txt.Label)
	}
}

func TestPositionsAreAppendOnly(t *testing.T) {
	s := OpenMemory(t)

	first, _ := s.Insert(textDraft("one"), "")
	second, _ := s.Insert(textDraft("two"), "")
	if second.Position != first.Position+1 {
		t.Fatalf("positions %d then %d", first.Position, second.Position)
	}

	// A deleted position is never reused; MAX+1 keeps climbing.
	if err := s.Delete(second.ID); err != nil {
		t.Fatal(err)
	}
	third, _ := s.Insert(textDraft("three"), "")
	if third.Position != second.Position {
		t.Fatalf("after delete: position %d, want %d", third.Position, second.Position)
	}
}

func TestInsertOrBumpColor(t *testing.T) {
	s := OpenMemory(t)

	red := colorlib.RGBA{R: 255, G: 0, B: 0, A: 255}
	blue := colorlib.RGBA{R: 0, G: 0, B: 255, A: 255}

	first, err := s.InsertOrBumpColor(red, "")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.InsertOrBumpColor(blue, ""); err != nil {
		t.Fatal(err)
	}

	// Same value again: no new row, existing row moves to the top.
	bumped, err := s.InsertOrBumpColor(red, "")
	if err != nil {
		t.Fatal(err)
	}
	if bumped.ID != first.ID {
		t.Fatalf("bump created a new row: %s vs %s", bumped.ID, first.ID)
	}

	all, err := s.List(Filter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Fatalf("len = %d, want 2", len(all))
	}
	if all[0].ID != first.ID {
		t.Fatalf("bumped color is not first: %+v", all[0])
	}

	// A different alpha is a different color.
	translucent := colorlib.RGBA{R: 255, G: 0, B: 0, A: 128}
	if _, err := s.InsertOrBumpColor(translucent, ""); err != nil {
		t.Fatal(err)
	}
	all, _ = s.List(Filter{})
	if len(all) != 3 {
		t.Fatalf("len = %d, want 3", len(all))
	}
}

func TestUpdate(t *testing.T) {
	s := OpenMemory(t)

	snip, _ := s.Insert(textDraft("draft"), "old")

	label := "new"
	got, err := s.Update(snip.ID, Patch{Label: &label})
	if err != nil {
		t.Fatal(err)
	}
	if got.Label != "new" || got.Text != "draft" {
		t.Fatalf("got %+v", got)
	}

	// Payload replacement can change the kind.
	d := colorDraft(colorlib.RGBA{R: 1, G: 2, B: 3, A: 255})
	got, err = s.Update(snip.ID, Patch{Payload: &d})
	if err != nil {
		t.Fatal(err)
	}
	if got.Kind != classify.KindColor || got.Color != d.Color {
		t.Fatalf("got %+v", got)
	}
	if got.Label != "new" {
		t.Fatalf("payload update must not touch the label, got %q", got.Label)
	}

	if _, err := s.Update("no-such-id", Patch{Label: &label}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	s := OpenMemory(t)

	var hooked []string
	s.SetDeleteHook(func(id string) { hooked = append(hooked, id) })

	snip, _ := s.Insert(textDraft("bye"), "")
	if err := s.Delete(snip.ID); err != nil {
		t.Fatal(err)
	}
	if len(hooked) != 1 || hooked[0] != snip.ID {
		t.Fatalf("delete hook got %v", hooked)
	}

	if err := s.Delete(snip.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
	if _, err := s.Get(snip.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestListFilters(t *testing.T) {
	s := OpenMemory(t)

	s.Insert(colorDraft(colorlib.RGBA{R: 255, G: 87, B: 51, A: 255}), "")
	s.Insert(codeDraft("def f():\n    pass", "python"), "fib helper")
	s.Insert(textDraft("Grocery list"), "")

	byKind, err := s.List(Filter{Kind: classify.KindCode})
	if err != nil {
		t.Fatal(err)
	}
	if len(byKind) != 1 || byKind[0].Language != "python" {
		t.Fatalf("kind filter: %+v", byKind)
	}

	// Query is case-insensitive and covers labels.
	byQuery, err := s.List(Filter{Query: "FIB"})
	if err != nil {
		t.Fatal(err)
	}
	if len(byQuery) != 1 || byQuery[0].Label != "fib helper" {
		t.Fatalf("label query: %+v", byQuery)
	}

	// Colors match on their formatted hex payload.
	byHex, err := s.List(Filter{Query: "#ff57"})
	if err != nil {
		t.Fatal(err)
	}
	if len(byHex) != 1 || byHex[0].Kind != classify.KindColor {
		t.Fatalf("hex query: %+v", byHex)
	}

	none, err := s.List(Filter{Kind: classify.KindColor, Query: "python"})
	if err != nil {
		t.Fatal(err)
	}
	if len(none) != 0 {
		t.Fatalf("want no matches, got %+v", none)
	}
}

func TestVersion(t *testing.T) {
	s := OpenMemory(t)
	v, err := s.Version()
	if err != nil {
		t.Fatal(err)
	}
	if v != TargetVersion {
		t.Fatalf("version = %d, want %d", v, TargetVersion)
	}
}

func TestRefusesNewerSchema(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shard.db")

	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.DB().Exec(`UPDATE schema_meta SET version = ?`, TargetVersion+1); err != nil {
		t.Fatal(err)
	}
	s.Close()

	if _, err := Open(path); err == nil {
		t.Fatal("opened a database from the future")
	}
}

// A migration step runs in one transaction with its version bump: if it
// fails partway, neither its schema changes nor the bump may stick.
func TestFailedMigrationRollsBack(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shard.db")

	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	keeper, err := s.Insert(textDraft("keeper"), "")
	if err != nil {
		t.Fatal(err)
	}
	s.Close()

	savedMigrations := migrations
	savedTarget := TargetVersion
	t.Cleanup(func() {
		migrations = savedMigrations
		TargetVersion = savedTarget
	})

	migrations = append(savedMigrations, migration{"broken step", func(tx *sql.Tx) error {
		if _, err := tx.Exec(`CREATE TABLE half_done (id INTEGER)`); err != nil {
			return err
		}
		return errors.New("step failed after partial work")
	}})
	TargetVersion = len(migrations)

	if _, err := Open(path); err == nil {
		t.Fatal("open succeeded despite a failing migration step")
	}

	migrations = savedMigrations
	TargetVersion = savedTarget

	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen after failed migration: %v", err)
	}
	defer s.Close()

	v, err := s.Version()
	if err != nil {
		t.Fatal(err)
	}
	if v != TargetVersion {
		t.Fatalf("version = %d, want pre-migration %d", v, TargetVersion)
	}

	var name string
	err = s.DB().QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'half_done'`).Scan(&name)
	if !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("half_done table: err = %v, want ErrNoRows", err)
	}

	got, err := s.Get(keeper.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Text != "keeper" {
		t.Fatalf("keeper payload = %q", got.Text)
	}
}

func TestMigrateLegacyColors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shard.db")

	// Lay down a database the way the color-only schema left it.
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	ddl := `CREATE TABLE colors (
		id INTEGER PRIMARY KEY,
		r INTEGER, g INTEGER, b INTEGER, a REAL,
		label TEXT, position INTEGER, created_at TEXT
	)`
	if _, err := db.Exec(ddl); err != nil {
		t.Fatal(err)
	}
	rows := []struct {
		r, g, b  int
		a        float64
		label    string
		position int64
		created  string
	}{
		{255, 87, 51, 1.0, "accent", 0, "2024-01-02T03:04:05.000000006Z"},
		{0, 0, 0, 0.5, "shadow", 1, "not-a-timestamp"},
	}
	for _, lr := range rows {
		if _, err := db.Exec(`INSERT INTO colors (r, g, b, a, label, position, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			lr.r, lr.g, lr.b, lr.a, lr.label, lr.position, lr.created); err != nil {
			t.Fatal(err)
		}
	}
	db.Close()

	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	all, err := s.List(Filter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Fatalf("len = %d, want 2", len(all))
	}

	// Display order preserved: position 1 ("shadow") first.
	if all[0].Label != "shadow" || all[1].Label != "accent" {
		t.Fatalf("order: %q then %q", all[0].Label, all[1].Label)
	}

	// Fractional legacy alpha quantized to the 0–255 channel.
	if all[0].Color != (colorlib.RGBA{R: 0, G: 0, B: 0, A: 128}) {
		t.Fatalf("shadow = %v", all[0].Color)
	}
	if all[1].Color != (colorlib.RGBA{R: 255, G: 87, B: 51, A: 255}) {
		t.Fatalf("accent = %v", all[1].Color)
	}

	// Parsable legacy timestamps survive.
	if got := all[1].CreatedAt.UTC().Format(timeLayout); got != "2024-01-02T03:04:05.000000006Z" {
		t.Fatalf("created_at = %q", got)
	}

	// The legacy table is gone and the version is current.
	var name string
	err = s.DB().QueryRow(`SELECT name FROM sqlite_master WHERE name = 'colors'`).Scan(&name)
	if !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("colors table still present: %v", err)
	}
	if v, _ := s.Version(); v != TargetVersion {
		t.Fatalf("version = %d", v)
	}
}

// A database stopped one migration short picks up only the remaining step on
// reopen, and rows written before the upgrade keep their ids.
func TestMigrateFromPriorVersion(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shard.db")

	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	existing, err := s.Insert(textDraft("pre-upgrade"), "keeper")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.DB().Exec(`UPDATE schema_meta SET version = 1`); err != nil {
		t.Fatal(err)
	}
	// A v1 database can still carry the legacy table the v2 step imports.
	if _, err := s.DB().Exec(`CREATE TABLE colors (
		id INTEGER PRIMARY KEY,
		r INTEGER, g INTEGER, b INTEGER, a REAL,
		label TEXT, position INTEGER, created_at TEXT
	)`); err != nil {
		t.Fatal(err)
	}
	if _, err := s.DB().Exec(`INSERT INTO colors (r, g, b, a, label, position, created_at)
		VALUES (10, 20, 30, 1.0, 'legacy', 5, '')`); err != nil {
		t.Fatal(err)
	}
	s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	if v, _ := s.Version(); v != TargetVersion {
		t.Fatalf("version = %d, want %d", v, TargetVersion)
	}
	kept, err := s.Get(existing.ID)
	if err != nil {
		t.Fatalf("pre-upgrade row lost: %v", err)
	}
	if kept.Label != "keeper" || kept.Text != "pre-upgrade" {
		t.Fatalf("kept = %+v", kept)
	}
	all, _ := s.List(Filter{})
	if len(all) != 2 {
		t.Fatalf("len = %d, want 2", len(all))
	}
}

func TestExportImport(t *testing.T) {
	src := OpenMemory(t)
	src.Insert(colorDraft(colorlib.RGBA{R: 255, G: 87, B: 51, A: 128}), "")
	src.Insert(codeDraft("SELECT 1;", "sql"), "ping")
	src.Insert(textDraft("remember the milk"), "memo")

	var buf bytes.Buffer
	if err := src.Export(&buf); err != nil {
		t.Fatal(err)
	}

	dst := OpenMemory(t)
	n, err := dst.Import(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Fatalf("imported %d, want 3", n)
	}

	want, _ := src.List(Filter{})
	got, _ := dst.List(Filter{})
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].ID == want[i].ID {
			t.Fatalf("import must mint fresh ids, got %s twice", got[i].ID)
		}
		if got[i].Kind != want[i].Kind || got[i].Label != want[i].Label {
			t.Fatalf("row %d: got %+v, want %+v", i, got[i], want[i])
		}
		if got[i].Payload() != want[i].Payload() {
			t.Fatalf("row %d payload: %q vs %q", i, got[i].Payload(), want[i].Payload())
		}
	}
}

func TestImportAppendsOnTop(t *testing.T) {
	s := OpenMemory(t)
	s.Insert(textDraft("existing"), "existing")

	other := OpenMemory(t)
	other.Insert(textDraft("imported old"), "old")
	other.Insert(textDraft("imported new"), "new")

	var buf bytes.Buffer
	if err := other.Export(&buf); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Import(&buf); err != nil {
		t.Fatal(err)
	}

	all, _ := s.List(Filter{})
	if len(all) != 3 {
		t.Fatalf("len = %d", len(all))
	}
	// Imported snippets sit on top in their original relative order.
	if all[0].Label != "new" || all[1].Label != "old" || all[2].Label != "existing" {
		t.Fatalf("order: %q, %q, %q", all[0].Label, all[1].Label, all[2].Label)
	}
}

func TestPreview(t *testing.T) {
	long := textDraft("first line of a very long snippet\nsecond line")
	s := OpenMemory(t)
	snip, _ := s.Insert(long, "")
	if got := snip.Preview(10); got != "first line…" {
		t.Fatalf("Preview = %q", got)
	}
}
