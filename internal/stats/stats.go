// Package stats tracks scanning throughput over a bounded sliding window and
// assembles the session snapshot shown by the status command.
package stats

import (
	"sync"
	"time"
)

// Snapshot is the point-in-time view of a scanning session.
type Snapshot struct {
	Pending          int
	Staged           int
	StagedBooks      int
	TransferredToday int
	BooksToday       int
	PagesPerMinute   float64
}

// Total is every page the session knows about, regardless of state.
func (s Snapshot) Total() int {
	return s.Pending + s.Staged + s.TransferredToday
}

// Aggregator computes pages per minute from page-arrival timestamps. The
// window is bounded both by age and by event count so a long session cannot
// grow it without limit.
type Aggregator struct {
	window    time.Duration
	maxEvents int

	mu     sync.Mutex
	events []time.Time
}

// NewAggregator builds an aggregator keeping at most maxEvents arrivals no
// older than window.
func NewAggregator(window time.Duration, maxEvents int) *Aggregator {
	return &Aggregator{window: window, maxEvents: maxEvents}
}

// RecordPage notes one page arrival.
func (a *Aggregator) RecordPage(at time.Time) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, at)
	a.pruneLocked(at)
}

// PagesPerMinute returns the arrival rate over the retained window. Fewer
// than two retained arrivals give a rate of zero.
func (a *Aggregator) PagesPerMinute(now time.Time) float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pruneLocked(now)
	if len(a.events) < 2 {
		return 0
	}
	span := now.Sub(a.events[0])
	if span <= 0 {
		return 0
	}
	return float64(len(a.events)) / span.Minutes()
}

// EventCount reports how many arrivals are currently retained.
func (a *Aggregator) EventCount(now time.Time) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pruneLocked(now)
	return len(a.events)
}

func (a *Aggregator) pruneLocked(now time.Time) {
	cutoff := now.Add(-a.window)
	keep := 0
	for keep < len(a.events) && a.events[keep].Before(cutoff) {
		keep++
	}
	if keep > 0 {
		a.events = append(a.events[:0], a.events[keep:]...)
	}
	if excess := len(a.events) - a.maxEvents; excess > 0 {
		a.events = append(a.events[:0], a.events[excess:]...)
	}
}
