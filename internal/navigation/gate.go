// Package navigation guards position changes during a scanning session. The
// gate is the single serialization point for UI state flags that must block
// automatic jumps, and it coalesces rapid jump requests into one move.
package navigation

import (
	"sync"
	"time"
)

// Gate tracks the interaction flags that decide whether the view may move,
// plus the pending debounced jump target.
type Gate struct {
	mu sync.Mutex

	editing     bool
	zoomed      bool
	dirtyLayout bool
	processing  bool
	replaceMode bool
	singleSplit bool

	debounce time.Duration
	pending  bool
	target   int
	deadline time.Time
}

// NewGate builds a gate for the given mode. singleSplit widens the blocking
// condition: unsaved layout edits also hold the view in place.
func NewGate(debounce time.Duration, singleSplit bool) *Gate {
	return &Gate{debounce: debounce, singleSplit: singleSplit}
}

// SetEditing flags an active crop/rotate/adjust edit.
func (g *Gate) SetEditing(v bool) {
	g.mu.Lock()
	g.editing = v
	g.mu.Unlock()
}

// SetZoomed flags an active zoom inspection.
func (g *Gate) SetZoomed(v bool) {
	g.mu.Lock()
	g.zoomed = v
	g.mu.Unlock()
}

// SetDirtyLayout flags unsaved split-layout changes.
func (g *Gate) SetDirtyLayout(v bool) {
	g.mu.Lock()
	g.dirtyLayout = v
	g.mu.Unlock()
}

// SetProcessing flags a running background job. Processing does not block
// navigation by itself; callers consult it to queue rather than drop work.
func (g *Gate) SetProcessing(v bool) {
	g.mu.Lock()
	g.processing = v
	g.mu.Unlock()
}

// SetReplaceMode flags an armed rescan-replace. While armed, all automatic
// movement is suppressed so the incoming file lands on the current pair.
func (g *Gate) SetReplaceMode(v bool) {
	g.mu.Lock()
	g.replaceMode = v
	g.mu.Unlock()
}

// Processing reports whether a background job is running.
func (g *Gate) Processing() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.processing
}

// ReplaceMode reports whether rescan-replace is armed.
func (g *Gate) ReplaceMode() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.replaceMode
}

// Allowed reports whether the view may move right now. Movement is blocked
// while replace mode is armed, during an edit or zoom, and, in single-split
// mode only, while the layout has unsaved changes.
func (g *Gate) Allowed() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.allowedLocked()
}

func (g *Gate) allowedLocked() bool {
	if g.replaceMode || g.editing || g.zoomed {
		return false
	}
	if g.dirtyLayout && g.singleSplit {
		return false
	}
	return true
}

// ScheduleJump records target as the pending auto-advance destination and
// restarts the debounce window. Consecutive calls within the window replace
// the target, so a scanner burst produces a single move to the final target.
// A blocked gate ignores the request entirely: the view must never move
// after the operator stopped it, not even later.
func (g *Gate) ScheduleJump(target int, now time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.allowedLocked() {
		return
	}
	g.pending = true
	g.target = target
	g.deadline = now.Add(g.debounce)
}

// Due returns the coalesced jump target once the debounce window has
// elapsed. A jump that comes due while the gate is blocked is dropped, not
// deferred; it would otherwise yank the view the moment an edit or zoom
// ends.
func (g *Gate) Due(now time.Time) (int, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.pending || now.Before(g.deadline) {
		return 0, false
	}
	g.pending = false
	if !g.allowedLocked() {
		return 0, false
	}
	return g.target, true
}

// CancelJump drops any pending jump, used when the user navigates manually
// before the debounce fires.
func (g *Gate) CancelJump() {
	g.mu.Lock()
	g.pending = false
	g.mu.Unlock()
}

// PendingJump reports whether a debounced jump is waiting to fire.
func (g *Gate) PendingJump() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pending
}
