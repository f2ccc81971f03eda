// Package watcher turns filesystem activity in the scan folder into session
// events. New image files are announced only after their size has stabilized,
// since the scanner writes incrementally; removals are announced immediately.
package watcher

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"folio/internal/fileutil"
	"folio/internal/logging"
	"folio/internal/services"
)

// EventKind distinguishes watcher notifications.
type EventKind int

const (
	// FileReady means a new image finished writing and is safe to read.
	FileReady EventKind = iota
	// FileRemoved means an image left the scan folder.
	FileRemoved
)

// Event is one scan-folder change.
type Event struct {
	Kind EventKind
	Path string
}

// Watcher monitors a single directory, non-recursively.
type Watcher struct {
	dir          string
	pollInterval time.Duration
	maxPolls     int
	logger       *slog.Logger

	fsw    *fsnotify.Watcher
	events chan Event
	wg     sync.WaitGroup

	mu       sync.Mutex
	inflight map[string]struct{}
}

// New builds a watcher for dir. pollInterval and maxPolls bound the
// stabilization wait for each new file.
func New(dir string, pollInterval time.Duration, maxPolls int, logger *slog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, services.Wrap(services.ErrWatch, "watcher", "init", "failed to create filesystem watcher", err)
	}
	return &Watcher{
		dir:          dir,
		pollInterval: pollInterval,
		maxPolls:     maxPolls,
		logger:       logging.NewComponentLogger(logger, "watcher"),
		fsw:          fsw,
		events:       make(chan Event, 64),
		inflight:     map[string]struct{}{},
	}, nil
}

// Events returns the channel session events are delivered on. The channel is
// closed after Start's context is cancelled and all pending stabilizations
// have finished.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Start registers the scan folder and launches the event loop. It returns
// once the loop is running; cancellation of ctx shuts it down.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.fsw.Add(w.dir); err != nil {
		return services.Wrap(services.ErrWatch, "watcher", "add", "failed to watch scan folder", err)
	}
	w.logger.Info("watching scan folder", logging.String("dir", w.dir))

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.loop(ctx)
	}()
	go func() {
		w.wg.Wait()
		close(w.events)
	}()
	return nil
}

// Close stops the underlying filesystem watcher.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

func (w *Watcher) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(ctx, ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("filesystem watcher error", logging.Error(err))
		}
	}
}

func (w *Watcher) handle(ctx context.Context, ev fsnotify.Event) {
	if !fileutil.IsImage(ev.Name) {
		return
	}
	switch {
	case ev.Op.Has(fsnotify.Create):
		w.startStabilize(ctx, ev.Name)
	case ev.Op.Has(fsnotify.Remove) || ev.Op.Has(fsnotify.Rename):
		w.emit(ctx, Event{Kind: FileRemoved, Path: ev.Name})
	}
}

// startStabilize launches one stabilization wait per path; duplicate create
// events while a wait is in flight are ignored.
func (w *Watcher) startStabilize(ctx context.Context, path string) {
	w.mu.Lock()
	if _, busy := w.inflight[path]; busy {
		w.mu.Unlock()
		return
	}
	w.inflight[path] = struct{}{}
	w.mu.Unlock()

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer func() {
			w.mu.Lock()
			delete(w.inflight, path)
			w.mu.Unlock()
		}()

		err := WaitStable(ctx, path, w.pollInterval, w.maxPolls)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) || errors.Is(err, context.Canceled) {
				return
			}
			w.logger.Warn("dropping unstable file", logging.String("file", path), logging.Error(err))
			return
		}
		w.emit(ctx, Event{Kind: FileReady, Path: path})
	}()
}

func (w *Watcher) emit(ctx context.Context, ev Event) {
	select {
	case w.events <- ev:
	case <-ctx.Done():
	}
}

// WaitStable blocks until the file at path keeps the same nonzero size across
// two consecutive polls, fails with the file's error if it disappears, and
// times out after maxPolls polls.
func WaitStable(ctx context.Context, path string, interval time.Duration, maxPolls int) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	lastSize := int64(-1)
	for i := 0; i < maxPolls; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		info, err := os.Stat(path)
		if err != nil {
			return err
		}
		size := info.Size()
		if size > 0 && size == lastSize {
			return nil
		}
		lastSize = size
	}
	return services.Wrap(services.ErrTimeout, "watcher", "stabilize", "file size never stabilized", nil)
}
