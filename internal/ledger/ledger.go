// Package ledger maintains the append-only record of completed book
// transfers, a JSON file keyed by completion day. Writes are serialized with
// an advisory file lock so a second process cannot interleave.
package ledger

import (
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"folio/internal/logging"
	"folio/internal/services"
)

// DayKey is the map-key format, e.g. "2026-08-24".
const DayKey = "2006-01-02"

// Record is one completed book.
type Record struct {
	Name      string `json:"name"`
	Pages     int    `json:"pages"`
	Path      string `json:"path"`
	Timestamp string `json:"timestamp"`
}

// Ledger is the books_complete_log.json accessor.
type Ledger struct {
	path   string
	logger *slog.Logger

	mu   sync.Mutex
	days map[string][]Record
}

// Open loads (or initializes) the ledger at path. A missing file starts an
// empty ledger; a corrupt file is preserved on disk but read as empty, and
// individual malformed day entries are skipped.
func Open(path string, logger *slog.Logger) *Ledger {
	l := &Ledger{
		path:   path,
		logger: logging.NewComponentLogger(logger, "ledger"),
		days:   map[string][]Record{},
	}
	l.load()
	return l
}

func (l *Ledger) load() {
	data, err := os.ReadFile(l.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			l.logger.Warn("ledger unreadable, starting empty", logging.Error(err))
		}
		return
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		l.logger.Warn("ledger corrupt, starting empty", logging.Error(err))
		return
	}

	for day, blob := range raw {
		var records []Record
		if err := json.Unmarshal(blob, &records); err != nil {
			l.logger.Warn("skipping malformed ledger day",
				logging.String("day", day), logging.Error(err))
			continue
		}
		l.days[day] = records
	}
}

// Append records a completed book under the day of its timestamp and persists
// the ledger immediately.
func (l *Ledger) Append(rec Record, at time.Time) error {
	if rec.Timestamp == "" {
		rec.Timestamp = at.Format(time.RFC3339)
	}
	day := at.Format(DayKey)

	l.mu.Lock()
	l.days[day] = append(l.days[day], rec)
	l.mu.Unlock()

	return l.save()
}

// Day returns the records for the given day.
func (l *Ledger) Day(at time.Time) []Record {
	l.mu.Lock()
	defer l.mu.Unlock()
	records := l.days[at.Format(DayKey)]
	out := make([]Record, len(records))
	copy(out, records)
	return out
}

// Days returns the ledger's day keys, unsorted.
func (l *Ledger) Days() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	keys := make([]string, 0, len(l.days))
	for day := range l.days {
		keys = append(keys, day)
	}
	return keys
}

// PagesOn sums the page counts of the books completed on the given day.
func (l *Ledger) PagesOn(at time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	total := 0
	for _, rec := range l.days[at.Format(DayKey)] {
		total += rec.Pages
	}
	return total
}

// BooksOn returns how many books completed on the given day.
func (l *Ledger) BooksOn(at time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.days[at.Format(DayKey)])
}

// save writes the ledger atomically under an advisory lock on a sibling
// .lock file.
func (l *Ledger) save() error {
	l.mu.Lock()
	data, err := json.MarshalIndent(l.days, "", "  ")
	l.mu.Unlock()
	if err != nil {
		return services.Wrap(services.ErrIO, "ledger", "encode", "failed to encode ledger", err)
	}

	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return services.Wrap(services.ErrIO, "ledger", "mkdir", "failed to create ledger directory", err)
	}

	lock := flock.New(l.path + ".lock")
	if err := lock.Lock(); err != nil {
		return services.Wrap(services.ErrIO, "ledger", "lock", "failed to lock ledger", err)
	}
	defer lock.Unlock()

	tmp := l.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return services.Wrap(services.ErrIO, "ledger", "write", "failed to write ledger", err)
	}
	if err := os.Rename(tmp, l.path); err != nil {
		_ = os.Remove(tmp)
		return services.Wrap(services.ErrIO, "ledger", "replace", "failed to replace ledger", err)
	}
	return nil
}
