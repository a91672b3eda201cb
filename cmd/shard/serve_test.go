package main

import (
	"testing"

	"go.klb.dev/shard/internal/pins"
	"go.klb.dev/shard/internal/protocol"
	"go.klb.dev/shard/internal/store"
)

func testDaemon(t *testing.T) *daemon {
	t.Helper()
	st := store.OpenMemory(t)
	d := &daemon{st: st, reg: pins.New(), dbPath: ":memory:"}
	st.SetDeleteHook(d.reg.OnSnippetDeleted)
	return d
}

func mustAdd(t *testing.T, d *daemon, text string) store.Record {
	t.Helper()
	resp := d.handle(&protocol.Request{Op: protocol.OpAdd, Text: text})
	if resp.Error != "" {
		t.Fatalf("add %q: %s", text, resp.Error)
	}
	return resp.Snippets[0]
}

func TestHandleAddClassifies(t *testing.T) {
	d := testDaemon(t)

	color := mustAdd(t, d, "#FF5733")
	if color.Kind != "color" || color.Color != "#FF5733" {
		t.Fatalf("color add: %+v", color)
	}

	code := mustAdd(t, d, "fn main() {\n    println!(\"hi\");\n}")
	if code.Kind != "code" || code.Language != "rust" {
		t.Fatalf("code add: %+v", code)
	}

	text := mustAdd(t, d, "plain old words")
	if text.Kind != "text" {
		t.Fatalf("text add: %+v", text)
	}
}

// An explicit record bypasses classification: text that would classify as
// plain text is stored as code when the caller says so.
func TestHandleAddExplicitRecord(t *testing.T) {
	d := testDaemon(t)

	rec := store.Record{Kind: "code", Text: "ls -la", Language: "shell"}
	resp := d.handle(&protocol.Request{Op: protocol.OpAdd, Record: &rec, Label: "list files"})
	if resp.Error != "" {
		t.Fatal(resp.Error)
	}
	got := resp.Snippets[0]
	if got.Kind != "code" || got.Language != "shell" || got.Label != "list files" {
		t.Fatalf("got %+v", got)
	}

	bad := store.Record{Kind: "sculpture", Text: "x"}
	if resp := d.handle(&protocol.Request{Op: protocol.OpAdd, Record: &bad}); resp.Error == "" {
		t.Fatal("invalid record kind accepted")
	}
}

func TestHandleAddBumpsDuplicateColor(t *testing.T) {
	d := testDaemon(t)

	first := mustAdd(t, d, "#FF5733")
	mustAdd(t, d, "#000000")
	bumped := mustAdd(t, d, "rgb(255, 87, 51)")

	if bumped.ID != first.ID {
		t.Fatalf("same color in another notation made a new row: %s vs %s", bumped.ID, first.ID)
	}

	resp := d.handle(&protocol.Request{Op: protocol.OpList})
	if len(resp.Snippets) != 2 {
		t.Fatalf("len = %d, want 2", len(resp.Snippets))
	}
	if resp.Snippets[0].ID != first.ID {
		t.Fatal("bumped color not on top")
	}
}

func TestHandleListFilter(t *testing.T) {
	d := testDaemon(t)
	mustAdd(t, d, "#FF5733")
	mustAdd(t, d, "shopping: eggs, milk")

	resp := d.handle(&protocol.Request{Op: protocol.OpList, Kind: "color"})
	if resp.Error != "" || len(resp.Snippets) != 1 {
		t.Fatalf("resp = %+v", resp)
	}

	resp = d.handle(&protocol.Request{Op: protocol.OpList, Kind: "sculpture"})
	if resp.Error == "" {
		t.Fatal("bad kind accepted")
	}
}

func TestHandleGetByPrefix(t *testing.T) {
	d := testDaemon(t)
	rec := mustAdd(t, d, "some note")

	resp := d.handle(&protocol.Request{Op: protocol.OpGet, ID: rec.ID[:8]})
	if resp.Error != "" || resp.Snippets[0].ID != rec.ID {
		t.Fatalf("prefix get: %+v", resp)
	}

	resp = d.handle(&protocol.Request{Op: protocol.OpGet, ID: "ffffffff"})
	if resp.Error == "" {
		t.Fatal("unknown id resolved")
	}
}

func TestHandleUpdateLabel(t *testing.T) {
	d := testDaemon(t)
	rec := mustAdd(t, d, "some note")

	label := "renamed"
	resp := d.handle(&protocol.Request{Op: protocol.OpUpdate, ID: rec.ID, NewLabel: &label})
	if resp.Error != "" || resp.Snippets[0].Label != "renamed" {
		t.Fatalf("update: %+v", resp)
	}
}

func TestHandleDeleteInvalidatesPins(t *testing.T) {
	d := testDaemon(t)
	rec := mustAdd(t, d, "pin me")

	pinResp := d.handle(&protocol.Request{Op: protocol.OpPin, ID: rec.ID})
	if pinResp.Error != "" || pinResp.Surface == "" {
		t.Fatalf("pin: %+v", pinResp)
	}

	if resp := d.handle(&protocol.Request{Op: protocol.OpResolve, Surface: pinResp.Surface}); resp.ID != rec.ID {
		t.Fatalf("resolve: %+v", resp)
	}

	if resp := d.handle(&protocol.Request{Op: protocol.OpDelete, ID: rec.ID}); resp.Error != "" {
		t.Fatalf("delete: %s", resp.Error)
	}

	if resp := d.handle(&protocol.Request{Op: protocol.OpResolve, Surface: pinResp.Surface}); resp.Error == "" {
		t.Fatal("pin survived snippet delete")
	}
	if resp := d.handle(&protocol.Request{Op: protocol.OpPins}); len(resp.Pins) != 0 {
		t.Fatalf("pins = %+v", resp.Pins)
	}
}

func TestHandleStatus(t *testing.T) {
	d := testDaemon(t)
	rec := mustAdd(t, d, "one snippet")
	d.handle(&protocol.Request{Op: protocol.OpPin, ID: rec.ID})

	resp := d.handle(&protocol.Request{Op: protocol.OpStatus})
	if resp.Error != "" {
		t.Fatal(resp.Error)
	}
	st := resp.Status
	if st.Snippets != 1 || st.Pins != 1 {
		t.Fatalf("status = %+v", st)
	}
	if st.SchemaVersion != store.TargetVersion {
		t.Fatalf("schema version = %d", st.SchemaVersion)
	}
	if st.Clipboard {
		t.Fatal("no watcher, clipboard must be false")
	}
}

func TestHandleUnknownOp(t *testing.T) {
	d := testDaemon(t)
	if resp := d.handle(&protocol.Request{Op: "FROBNICATE"}); resp.Error == "" {
		t.Fatal("unknown op accepted")
	}
}
