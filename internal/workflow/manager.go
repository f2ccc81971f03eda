// Package workflow is the orchestrator: one Manager owns the session, the
// navigation gate, the stores, and the pipelines, and applies every mutation
// from a single event loop. Watcher events, user intents, and worker results
// all arrive over the same channel and are handled strictly in receipt order,
// so no session state ever needs a lock of its own.
package workflow

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"folio/internal/assembler"
	"folio/internal/codec"
	"folio/internal/config"
	"folio/internal/fileutil"
	"folio/internal/geometry"
	"folio/internal/layout"
	"folio/internal/ledger"
	"folio/internal/logging"
	"folio/internal/navigation"
	"folio/internal/services"
	"folio/internal/session"
	"folio/internal/stats"
	"folio/internal/transfer"
	"folio/internal/watcher"
)

// JobKind labels asynchronous worker jobs.
type JobKind string

const (
	JobAssemble JobKind = "assemble"
	JobTransfer JobKind = "transfer"
)

// JobResult reports a finished worker job on the Results channel.
type JobResult struct {
	ID       uuid.UUID
	Kind     JobKind
	Err      error
	Book     assembler.Result
	Transfer transfer.Summary
}

// Manager wires the session components together and runs the event loop.
type Manager struct {
	cfg    *config.Config
	logger *slog.Logger

	sess    *session.Session
	gate    *navigation.Gate
	agg     *stats.Aggregator
	layouts *layout.Store
	asm     *assembler.Assembler
	pipe    *transfer.Pipeline
	led     *ledger.Ledger
	cod     codec.Codec

	msgs    chan message
	results chan JobResult

	// Loop-owned state; only touched from Run.
	backedUp   map[string]struct{}
	dims       map[string]codec.Dimensions
	lastLayout *layout.Entry
	now        func() time.Time
}

// message is the tagged union delivered to the event loop.
type message interface{ isMessage() }

type fileMsg struct{ ev watcher.Event }

type intentMsg struct {
	intent Intent
	reply  chan intentReply
}

type jobDoneMsg struct{ result JobResult }

func (fileMsg) isMessage()    {}
func (intentMsg) isMessage()  {}
func (jobDoneMsg) isMessage() {}

type intentReply struct {
	value any
	err   error
}

// New builds a manager from its collaborators. cod may be nil when the
// deployment has no image backend; edit intents then fail with a
// configuration error.
func New(cfg *config.Config, led *ledger.Ledger, cod codec.Codec, logger *slog.Logger) *Manager {
	mode := session.Mode(cfg.Scanner.Mode)
	return &Manager{
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "workflow"),
		sess:   session.New(mode),
		gate: navigation.NewGate(
			time.Duration(cfg.Scanner.NavigationDebounceMS)*time.Millisecond,
			mode == session.SingleSplit),
		agg: stats.NewAggregator(
			time.Duration(cfg.Scanner.StatsWindowSeconds)*time.Second,
			cfg.Scanner.StatsWindowEvents),
		layouts:  layout.NewStore(cfg.LayoutPath(), logger),
		asm:      assembler.New(cfg.Paths.BooksDir, logger),
		pipe:     transfer.New(cfg.Paths.BooksDir, cfg.Cities, led, logger),
		led:      led,
		cod:      cod,
		msgs:     make(chan message, 64),
		results:  make(chan JobResult, 8),
		backedUp: map[string]struct{}{},
		dims:     map[string]codec.Dimensions{},
		now:      time.Now,
	}
}

// Results delivers finished worker jobs, for the daemon to log and for the
// CLI to wait on.
func (m *Manager) Results() <-chan JobResult {
	return m.results
}

// Gate exposes the navigation gate so the UI layer can flag edits, zoom, and
// replace mode directly; the gate is internally synchronized.
func (m *Manager) Gate() *navigation.Gate {
	return m.gate
}

// Run executes the event loop until ctx is cancelled. events is the
// watcher's channel; a nil channel is allowed for tests driving intents
// only.
func (m *Manager) Run(ctx context.Context, events <-chan watcher.Event) error {
	if err := m.refreshFromDisk(); err != nil {
		return err
	}

	debounce := time.Duration(m.cfg.Scanner.NavigationDebounceMS) * time.Millisecond
	if debounce <= 0 {
		debounce = 300 * time.Millisecond
	}
	ticker := time.NewTicker(debounce / 4)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			m.handleFile(ev)
		case msg := <-m.msgs:
			switch msg := msg.(type) {
			case fileMsg:
				m.handleFile(msg.ev)
			case intentMsg:
				value, err := m.handleIntent(ctx, msg.intent)
				msg.reply <- intentReply{value: value, err: err}
			case jobDoneMsg:
				m.handleJobDone(msg.result)
			}
		case <-ticker.C:
			if target, ok := m.gate.Due(m.now()); ok {
				m.sess.SetIndex(target)
			}
		}
	}
}

// handleFile applies one watcher event to the session.
func (m *Manager) handleFile(ev watcher.Event) {
	switch ev.Kind {
	case watcher.FileReady:
		if !m.sess.AddFile(ev.Path) {
			return
		}
		m.agg.RecordPage(m.now())
		m.logger.Debug("page arrived", logging.String("file", ev.Path),
			logging.Int("pending", m.sess.Len()))
		if m.gate.ReplaceMode() {
			// The rescan landed; hold position and disarm.
			m.gate.SetReplaceMode(false)
			return
		}
		m.gate.ScheduleJump(m.sess.LastTargetIndex(), m.now())
	case watcher.FileRemoved:
		if !m.sess.RemoveFile(ev.Path) {
			return
		}
		if err := m.layouts.Remove(ev.Path); err != nil {
			m.logger.Warn("failed to drop layout for removed file",
				logging.String("file", ev.Path), logging.Error(err))
		}
		delete(m.dims, ev.Path)
	}
}

// handleJobDone folds a worker result back into the session.
func (m *Manager) handleJobDone(res JobResult) {
	m.gate.SetProcessing(false)
	if res.Err != nil {
		m.logger.Error("background job failed",
			logging.String("job", res.ID.String()),
			logging.String("kind", string(res.Kind)),
			logging.Error(res.Err))
	} else if res.Kind == JobAssemble {
		if m.sess.Mode() == session.SingleSplit {
			// The whole batch was consumed; its layouts go with it.
			if err := m.layouts.Delete(); err != nil {
				m.logger.Warn("failed to clear layout store", logging.Error(err))
			}
		}
		// The scan folder changed under us; resync rather than guess.
		if err := m.refreshFromDisk(); err != nil {
			m.logger.Warn("refresh after assembly failed", logging.Error(err))
		}
	}

	select {
	case m.results <- res:
	default:
		m.logger.Warn("dropping unobserved job result",
			logging.String("job", res.ID.String()))
	}
}

// refreshFromDisk resets the session file list from the scan folder.
func (m *Manager) refreshFromDisk() error {
	files, err := fileutil.ListImages(m.cfg.Paths.ScanDir)
	if err != nil {
		return services.Wrap(services.ErrIO, "workflow", "refresh", "failed to list scan folder", err)
	}
	m.sess.SetFiles(files)
	return nil
}

// snapshot assembles the status view.
func (m *Manager) snapshot() stats.Snapshot {
	now := m.now()
	snap := stats.Snapshot{
		Pending:          m.sess.Len(),
		TransferredToday: m.led.PagesOn(now),
		BooksToday:       m.led.BooksOn(now),
		PagesPerMinute:   m.agg.PagesPerMinute(now),
	}
	entries, err := os.ReadDir(m.cfg.Paths.BooksDir)
	if err != nil {
		m.logger.Warn("failed to read books folder", logging.Error(err))
		return snap
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		snap.StagedBooks++
		snap.Staged += fileutil.CountImages(filepath.Join(m.cfg.Paths.BooksDir, entry.Name()))
	}
	return snap
}

// pageDims returns the pixel dimensions of the page at path, decoding once
// and caching until an edit or removal invalidates the entry. Crop mapping
// must always see post-edit dimensions.
func (m *Manager) pageDims(ctx context.Context, path string) (codec.Dimensions, error) {
	if d, ok := m.dims[path]; ok {
		return d, nil
	}
	if m.cod == nil {
		return codec.Dimensions{}, services.Wrap(services.ErrConfiguration, "workflow", "decode", "no image backend configured", nil)
	}
	d, err := m.cod.Decode(ctx, path)
	if err != nil {
		return codec.Dimensions{}, services.Wrap(services.ErrIO, "workflow", "decode", "failed to decode page", err)
	}
	m.dims[path] = d
	return d, nil
}

// layoutFor resolves the split layout to show for path: the stored entry if
// present, otherwise the most recently committed layout, otherwise the
// default placement.
func (m *Manager) layoutFor(path string) layout.Entry {
	if entry, ok := m.layouts.Get(path); ok {
		return entry
	}
	if m.lastLayout != nil {
		return *m.lastLayout
	}
	return layout.FromSplitLayout(geometry.DefaultSplitLayout())
}
