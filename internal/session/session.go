// Package session holds the ordered page list and current position of a
// scanning session, and derives page pairs for the active scanner mode.
//
// A Session is not safe for concurrent use: the orchestrator loop is its
// single writer, applying watcher events and user intents strictly in
// receipt order.
package session

import (
	"path/filepath"

	"folio/internal/naturalsort"
)

// Mode selects how pages are consumed.
type Mode string

const (
	// DualScan consumes two files per book spread.
	DualScan Mode = "dual_scan"
	// SingleSplit consumes one file per spread, split later per layout.
	SingleSplit Mode = "single_split"
)

// Step is the navigation stride for the mode.
func (m Mode) Step() int {
	if m == DualScan {
		return 2
	}
	return 1
}

// PageState tracks where a scanned page is in its lifecycle.
type PageState int

const (
	// Pending pages sit in the scan folder awaiting assembly.
	Pending PageState = iota
	// Staged pages live inside a book folder awaiting transfer.
	Staged
	// Transferred pages reached their city/date destination.
	Transferred
)

// Page is one scanned page file.
type Page struct {
	Path  string
	State PageState
}

// SortKey returns the basename the natural ordering is derived from.
func (p Page) SortKey() string { return filepath.Base(p.Path) }

// Pair is one presentation unit: two pages in dual-scan mode, one page in
// single-split mode. Page2 is empty for the trailing odd page of a dual-scan
// session and always empty in single-split mode.
type Pair struct {
	Index int
	Page1 string
	Page2 string
}

// Session is the ordered page list plus the current position.
type Session struct {
	mode  Mode
	files []string
	index int
}

// New constructs an empty session for the given mode.
func New(mode Mode) *Session {
	return &Session{mode: mode}
}

// Mode returns the scanner mode the session was built for.
func (s *Session) Mode() Mode { return s.mode }

// Files returns the page paths in natural-sort order. The returned slice is
// a copy.
func (s *Session) Files() []string {
	out := make([]string, len(s.files))
	copy(out, s.files)
	return out
}

// Len returns the number of pages.
func (s *Session) Len() int { return len(s.files) }

// CurrentIndex returns the current list position, always within [0, len).
func (s *Session) CurrentIndex() int { return s.index }

// SetFiles replaces the page list, re-sorting and clamping the index.
func (s *Session) SetFiles(paths []string) {
	s.files = make([]string, 0, len(paths))
	seen := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		s.files = append(s.files, p)
	}
	naturalsort.Paths(s.files)
	s.clampIndex()
}

// AddFile inserts path keeping sort order. Duplicates are a no-op. Reports
// whether the list changed.
func (s *Session) AddFile(path string) bool {
	for _, existing := range s.files {
		if existing == path {
			return false
		}
	}
	at := naturalsort.SearchPaths(s.files, path)
	s.files = append(s.files, "")
	copy(s.files[at+1:], s.files[at:])
	s.files[at] = path
	s.clampIndex()
	return true
}

// RemoveFile drops path from the list. When the removed position is at or
// before the current index, the index steps back by the mode's stride so the
// view stays on the same logical pair. Reports whether the list changed.
func (s *Session) RemoveFile(path string) bool {
	at := -1
	for i, existing := range s.files {
		if existing == path {
			at = i
			break
		}
	}
	if at < 0 {
		return false
	}
	s.files = append(s.files[:at], s.files[at+1:]...)
	if at <= s.index {
		s.index -= s.mode.Step()
	}
	s.clampIndex()
	return true
}

// SetIndex moves the current position, clamped to the list bounds.
func (s *Session) SetIndex(index int) {
	s.index = index
	s.clampIndex()
}

// Advance moves forward one stride if a further pair exists.
func (s *Session) Advance() bool {
	next := s.index + s.mode.Step()
	if next >= len(s.files) {
		return false
	}
	s.index = next
	return true
}

// Retreat moves back one stride, stopping at zero.
func (s *Session) Retreat() bool {
	if s.index <= 0 {
		return false
	}
	s.index = max(0, s.index-s.mode.Step())
	return true
}

// LastTargetIndex returns the index auto-advance and jump-to-end aim for:
// the start of the final pair.
func (s *Session) LastTargetIndex() int {
	if len(s.files) == 0 {
		return 0
	}
	if s.mode == DualScan {
		if len(s.files) >= 2 {
			// Land on the start of the final full pair; a trailing odd page
			// shares the view with its predecessor.
			return lastEvenIndex(len(s.files))
		}
		return 0
	}
	return len(s.files) - 1
}

func lastEvenIndex(n int) int {
	idx := n - 2
	if idx%2 != 0 {
		idx++
	}
	if idx < 0 {
		return 0
	}
	return idx
}

// Pairs recomputes the pair list from scratch for the current file list.
func (s *Session) Pairs() []Pair {
	step := s.mode.Step()
	pairs := make([]Pair, 0, (len(s.files)+step-1)/step)
	for i := 0; i < len(s.files); i += step {
		pair := Pair{Index: len(pairs), Page1: s.files[i]}
		if step == 2 && i+1 < len(s.files) {
			pair.Page2 = s.files[i+1]
		}
		pairs = append(pairs, pair)
	}
	return pairs
}

// CurrentPair returns the pair covering the current index, or false for an
// empty session.
func (s *Session) CurrentPair() (Pair, bool) {
	if len(s.files) == 0 {
		return Pair{}, false
	}
	pairs := s.Pairs()
	at := s.index / s.mode.Step()
	if at >= len(pairs) {
		at = len(pairs) - 1
	}
	return pairs[at], true
}

func (s *Session) clampIndex() {
	if len(s.files) == 0 {
		s.index = 0
		return
	}
	if s.index < 0 {
		s.index = 0
	}
	if s.index >= len(s.files) {
		s.index = len(s.files) - 1
	}
}
