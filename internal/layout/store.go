// Package layout persists the per-image split layouts of single-shot mode in
// the scan folder's layout_data.json. Entries are validated on load; a
// malformed entry is discarded and treated as absent rather than failing the
// whole store.
package layout

import (
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"folio/internal/geometry"
	"folio/internal/logging"
	"folio/internal/services"
)

// Entry is the persisted layout for one spread image. Rectangles are
// fractions of image dimensions in [0,1].
type Entry struct {
	Left         geometry.Rect `json:"left"`
	Right        geometry.Rect `json:"right"`
	LeftEnabled  bool          `json:"left_enabled"`
	RightEnabled bool          `json:"right_enabled"`
}

// Validate reports whether the entry's rectangles are usable fractions.
func (e Entry) Validate() error {
	if !e.Left.InUnit() {
		return services.Wrap(services.ErrValidation, "layout", "validate", "left rect outside unit square", nil)
	}
	if !e.Right.InUnit() {
		return services.Wrap(services.ErrValidation, "layout", "validate", "right rect outside unit square", nil)
	}
	return nil
}

// FromSplitLayout converts the geometry type into a persistable entry.
func FromSplitLayout(l geometry.SplitLayout) Entry {
	return Entry{
		Left:         l.Left.Rect,
		Right:        l.Right.Rect,
		LeftEnabled:  l.Left.Enabled,
		RightEnabled: l.Right.Enabled,
	}
}

// SplitLayout converts the entry back into the geometry type.
func (e Entry) SplitLayout() geometry.SplitLayout {
	return geometry.SplitLayout{
		Left:  geometry.SplitRect{Rect: e.Left, Enabled: e.LeftEnabled},
		Right: geometry.SplitRect{Rect: e.Right, Enabled: e.RightEnabled},
	}
}

// Store is the layout_data.json accessor. Entries are keyed by image
// basename.
type Store struct {
	path   string
	logger *slog.Logger

	mu      sync.Mutex
	entries map[string]Entry
}

// NewStore opens (or initializes) the layout store at path.
func NewStore(path string, logger *slog.Logger) *Store {
	s := &Store{
		path:    path,
		logger:  logging.NewComponentLogger(logger, "layout"),
		entries: map[string]Entry{},
	}
	s.load()
	return s
}

// load reads the backing file, tolerating a missing or corrupt file and
// discarding individual malformed entries.
func (s *Store) load() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("layout store unreadable, starting empty", logging.Error(err))
		}
		return
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		s.logger.Warn("layout store corrupt, starting empty", logging.Error(err))
		return
	}

	for name, blob := range raw {
		var entry Entry
		if err := json.Unmarshal(blob, &entry); err != nil {
			s.logger.Warn("discarding malformed layout entry",
				logging.String("image", name), logging.Error(err))
			continue
		}
		if err := entry.Validate(); err != nil {
			s.logger.Warn("discarding invalid layout entry",
				logging.String("image", name), logging.Error(err))
			continue
		}
		s.entries[name] = entry
	}
}

// Get returns the layout stored for the image at path, if any.
func (s *Store) Get(path string) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[filepath.Base(path)]
	return entry, ok
}

// Put validates and stores the layout for path, then persists the store.
func (s *Store) Put(path string, entry Entry) error {
	if err := entry.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	s.entries[filepath.Base(path)] = entry
	s.mu.Unlock()
	return s.Save()
}

// Remove drops the layout for path and persists the store. Removing an
// unknown path is a no-op.
func (s *Store) Remove(path string) error {
	s.mu.Lock()
	_, ok := s.entries[filepath.Base(path)]
	if ok {
		delete(s.entries, filepath.Base(path))
	}
	s.mu.Unlock()
	if !ok {
		return nil
	}
	return s.Save()
}

// Len reports the number of stored layouts.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Save writes the store atomically via a temp file rename.
func (s *Store) Save() error {
	s.mu.Lock()
	data, err := json.MarshalIndent(s.entries, "", "  ")
	s.mu.Unlock()
	if err != nil {
		return services.Wrap(services.ErrIO, "layout", "encode", "failed to encode layout store", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return services.Wrap(services.ErrIO, "layout", "write", "failed to write layout store", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return services.Wrap(services.ErrIO, "layout", "replace", "failed to replace layout store", err)
	}
	return nil
}

// Delete removes the backing file entirely, used when a single-split batch is
// assembled into a book.
func (s *Store) Delete() error {
	s.mu.Lock()
	s.entries = map[string]Entry{}
	s.mu.Unlock()
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return services.Wrap(services.ErrIO, "layout", "delete", "failed to delete layout store", err)
	}
	return nil
}
