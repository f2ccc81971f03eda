package layout

import (
	"os"
	"path/filepath"
	"testing"

	"folio/internal/geometry"
	"folio/internal/logging"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "layout_data.json")
	return NewStore(path, logging.NewNop()), path
}

func TestPutGetRoundTrip(t *testing.T) {
	store, path := newTestStore(t)
	entry := FromSplitLayout(geometry.DefaultSplitLayout())

	if err := store.Put("/scans/spread_001.png", entry); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, ok := store.Get("/elsewhere/spread_001.png")
	if !ok {
		t.Fatal("entry not found by basename")
	}
	if got != entry {
		t.Fatalf("got %+v, want %+v", got, entry)
	}

	// A fresh store over the same file sees the persisted entry.
	reopened := NewStore(path, logging.NewNop())
	if _, ok := reopened.Get("spread_001.png"); !ok {
		t.Fatal("entry lost after reload")
	}
}

func TestPutRejectsInvalidEntry(t *testing.T) {
	store, _ := newTestStore(t)
	bad := Entry{
		Left:         geometry.Rect{X: -0.5, Y: 0, W: 0.4, H: 0.9},
		Right:        geometry.Rect{X: 0.5, Y: 0, W: 0.4, H: 0.9},
		LeftEnabled:  true,
		RightEnabled: true,
	}
	if err := store.Put("a.png", bad); err == nil {
		t.Fatal("expected validation error")
	}
	if store.Len() != 0 {
		t.Fatal("invalid entry was stored")
	}
}

func TestLoadDiscardsMalformedEntries(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "layout_data.json")
	blob := `{
  "good.png": {"left":{"x":0.02,"y":0.025,"w":0.48,"h":0.95},"right":{"x":0.5,"y":0.025,"w":0.48,"h":0.95},"left_enabled":true,"right_enabled":false},
  "bad_rect.png": {"left":{"x":-2,"y":0,"w":0.4,"h":0.9},"right":{"x":0.5,"y":0,"w":0.4,"h":0.9},"left_enabled":true,"right_enabled":true},
  "bad_shape.png": ["not","an","object"]
}`
	if err := os.WriteFile(path, []byte(blob), 0o644); err != nil {
		t.Fatal(err)
	}

	store := NewStore(path, logging.NewNop())
	if store.Len() != 1 {
		t.Fatalf("entries = %d, want 1", store.Len())
	}
	entry, ok := store.Get("good.png")
	if !ok {
		t.Fatal("good entry discarded")
	}
	if entry.RightEnabled {
		t.Fatal("right_enabled should be false")
	}
	if _, ok := store.Get("bad_rect.png"); ok {
		t.Fatal("invalid entry survived load")
	}
}

func TestLoadToleratesCorruptFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "layout_data.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	store := NewStore(path, logging.NewNop())
	if store.Len() != 0 {
		t.Fatal("corrupt file should start empty")
	}
}

func TestRemoveAndDelete(t *testing.T) {
	store, path := newTestStore(t)
	entry := FromSplitLayout(geometry.DefaultSplitLayout())
	if err := store.Put("a.png", entry); err != nil {
		t.Fatal(err)
	}

	if err := store.Remove("a.png"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, ok := store.Get("a.png"); ok {
		t.Fatal("entry survived remove")
	}
	if err := store.Remove("missing.png"); err != nil {
		t.Fatalf("Remove missing: %v", err)
	}

	if err := store.Put("b.png", entry); err != nil {
		t.Fatal(err)
	}
	if err := store.Delete(); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("backing file survived delete")
	}
}
