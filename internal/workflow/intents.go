package workflow

import (
	"context"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"folio/internal/assembler"
	"folio/internal/codec"
	"folio/internal/fileutil"
	"folio/internal/layout"
	"folio/internal/logging"
	"folio/internal/services"
	"folio/internal/session"
	"folio/internal/stats"
	"folio/internal/transfer"
)

// Intent is a user-initiated operation handled by the event loop.
type Intent interface{ isIntent() }

// Navigation intents. When the gate blocks movement they are silent no-ops.
type (
	// Next moves forward one pair.
	Next struct{}
	// Prev moves back one pair.
	Prev struct{}
	// JumpToEnd moves to the latest pair.
	JumpToEnd struct{}
)

// DeletePair removes the current pair's files from disk and session.
type DeletePair struct{}

// Refresh resynchronizes the session from the scan folder.
type Refresh struct{}

// ArmReplace toggles rescan-replace: the next arriving file holds the view
// in place instead of auto-advancing.
type ArmReplace struct{ On bool }

// TakeSnapshot returns the current stats.Snapshot.
type TakeSnapshot struct{}

// CreateBook assembles all pending pages into a named book folder on a
// worker goroutine. The reply carries the job ID.
type CreateBook struct{ Name string }

// PrepareTransfer plans the delivery of staged books (dry run).
type PrepareTransfer struct{}

// ConfirmTransfer executes a prepared plan on a worker goroutine. The reply
// carries the job ID.
type ConfirmTransfer struct{ Moves []transfer.Move }

// CommitEdit applies destructive pixel edits to one page and optionally
// saves its split layout.
type CommitEdit struct {
	Path   string
	Edits  codec.Edits
	Layout *layout.Entry
}

// PageDimensions resolves the pixel size of one page, serving crop mapping
// and split previews. Results are cached until the page is edited or
// removed.
type PageDimensions struct{ Path string }

func (Next) isIntent()            {}
func (Prev) isIntent()            {}
func (JumpToEnd) isIntent()       {}
func (DeletePair) isIntent()      {}
func (Refresh) isIntent()         {}
func (ArmReplace) isIntent()      {}
func (TakeSnapshot) isIntent()    {}
func (CreateBook) isIntent()      {}
func (PrepareTransfer) isIntent() {}
func (ConfirmTransfer) isIntent() {}
func (CommitEdit) isIntent()      {}
func (PageDimensions) isIntent()  {}

// Do submits an intent to the event loop and waits for its reply. It is the
// only entry point other goroutines use; the loop itself never calls it.
func (m *Manager) Do(ctx context.Context, intent Intent) (any, error) {
	msg := intentMsg{intent: intent, reply: make(chan intentReply, 1)}
	select {
	case m.msgs <- msg:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case reply := <-msg.reply:
		return reply.value, reply.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Snapshot returns the current session statistics.
func (m *Manager) Snapshot(ctx context.Context) (stats.Snapshot, error) {
	value, err := m.Do(ctx, TakeSnapshot{})
	if err != nil {
		return stats.Snapshot{}, err
	}
	return value.(stats.Snapshot), nil
}

// handleIntent runs on the event loop.
func (m *Manager) handleIntent(ctx context.Context, intent Intent) (any, error) {
	switch intent := intent.(type) {
	case Next:
		if m.gate.Allowed() {
			m.gate.CancelJump()
			m.sess.Advance()
		}
		return m.sess.CurrentIndex(), nil
	case Prev:
		if m.gate.Allowed() {
			m.gate.CancelJump()
			m.sess.Retreat()
		}
		return m.sess.CurrentIndex(), nil
	case JumpToEnd:
		if m.gate.Allowed() {
			m.gate.CancelJump()
			m.sess.SetIndex(m.sess.LastTargetIndex())
		}
		return m.sess.CurrentIndex(), nil
	case DeletePair:
		return nil, m.deletePair()
	case Refresh:
		return nil, m.refreshFromDisk()
	case ArmReplace:
		m.gate.SetReplaceMode(intent.On)
		return nil, nil
	case TakeSnapshot:
		return m.snapshot(), nil
	case CreateBook:
		return m.startAssembly(ctx, intent.Name)
	case PrepareTransfer:
		return m.pipe.Prepare()
	case ConfirmTransfer:
		return m.startTransfer(ctx, intent.Moves)
	case CommitEdit:
		return nil, m.commitEdit(ctx, intent)
	case PageDimensions:
		return m.pageDims(ctx, intent.Path)
	default:
		return nil, services.Wrap(services.ErrValidation, "workflow", "intent", "unknown intent", nil)
	}
}

// deletePair removes the current pair's files. Blocked navigation blocks
// deletion too; deleting what the operator cannot see invites mistakes.
func (m *Manager) deletePair() error {
	if !m.gate.Allowed() {
		return nil
	}
	pair, ok := m.sess.CurrentPair()
	if !ok {
		return nil
	}
	for _, path := range []string{pair.Page1, pair.Page2} {
		if path == "" {
			continue
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return services.Wrap(services.ErrIO, "workflow", "delete", "failed to delete page", err)
		}
		// The watcher's remove event also fires; updating here keeps the
		// session correct even when the watcher lags.
		m.sess.RemoveFile(path)
		if err := m.layouts.Remove(path); err != nil {
			m.logger.Warn("failed to drop layout for deleted page",
				logging.String("file", path), logging.Error(err))
		}
		delete(m.dims, path)
	}
	return nil
}

// commitEdit backs the page up before its first edit, applies the pixel
// edits, invalidates the cached decode, and saves the layout when given.
func (m *Manager) commitEdit(ctx context.Context, intent CommitEdit) error {
	if intent.Layout != nil {
		if err := m.layouts.Put(intent.Path, *intent.Layout); err != nil {
			return err
		}
		saved := *intent.Layout
		m.lastLayout = &saved
		m.gate.SetDirtyLayout(false)
	}
	if intent.Edits.IsZero() {
		return nil
	}
	if m.cod == nil {
		return services.Wrap(services.ErrConfiguration, "workflow", "edit", "no image backend configured", nil)
	}

	if _, done := m.backedUp[intent.Path]; !done {
		backup, err := fileutil.EnsureBackup(m.cfg.Paths.BackupDir, intent.Path)
		if err != nil {
			return err
		}
		m.backedUp[intent.Path] = struct{}{}
		m.logger.Debug("page backed up",
			logging.String("file", intent.Path), logging.String("backup", backup))
	}
	if err := m.cod.Apply(ctx, intent.Path, intent.Edits); err != nil {
		return services.Wrap(services.ErrIO, "workflow", "edit", "failed to apply edits", err)
	}
	delete(m.dims, intent.Path)
	return nil
}

// startAssembly launches a worker that assembles all pending pages.
func (m *Manager) startAssembly(ctx context.Context, name string) (uuid.UUID, error) {
	if m.gate.Processing() {
		return uuid.Nil, services.Wrap(services.ErrTransient, "workflow", "assemble", "another job is running", nil)
	}
	files := m.sess.Files()
	if len(files) == 0 {
		return uuid.Nil, services.Wrap(services.ErrValidation, "workflow", "assemble", "no pages to assemble", nil)
	}

	id := uuid.New()
	m.gate.SetProcessing(true)
	if m.sess.Mode() == session.SingleSplit {
		// Layouts are resolved here, on the loop, so the worker never reads
		// loop-owned state.
		entries := make([]layout.Entry, len(files))
		for i, spread := range files {
			entries[i] = m.layoutFor(spread)
		}
		go m.runSplitAssembly(ctx, id, name, files, entries)
	} else {
		go m.runAssembly(ctx, id, name, files, nil, nil)
	}
	return id, nil
}

// startTransfer launches a worker that executes the planned moves.
func (m *Manager) startTransfer(ctx context.Context, moves []transfer.Move) (uuid.UUID, error) {
	if m.gate.Processing() {
		return uuid.Nil, services.Wrap(services.ErrTransient, "workflow", "transfer", "another job is running", nil)
	}
	if len(moves) == 0 {
		return uuid.Nil, services.Wrap(services.ErrValidation, "workflow", "transfer", "nothing to transfer", nil)
	}

	id := uuid.New()
	m.gate.SetProcessing(true)
	go func() {
		sum, err := m.pipe.Execute(ctx, moves)
		m.postJob(ctx, JobResult{ID: id, Kind: JobTransfer, Err: err, Transfer: sum})
	}()
	return id, nil
}

// SplitStagingDir is the scan-folder subdirectory split halves are written
// to before assembly.
const SplitStagingDir = "final"

// runSplitAssembly is the single-split worker: split every spread into the
// staging folder per its resolved layout, then assemble the halves and clean
// up the consumed originals and the staging folder.
func (m *Manager) runSplitAssembly(ctx context.Context, id uuid.UUID, name string, spreads []string, entries []layout.Entry) {
	done := func(res JobResult) { m.postJob(ctx, res) }

	if m.cod == nil {
		done(JobResult{ID: id, Kind: JobAssemble,
			Err: services.Wrap(services.ErrConfiguration, "workflow", "split", "no image backend configured", nil)})
		return
	}

	stagingDir := filepath.Join(m.cfg.Paths.ScanDir, SplitStagingDir)
	var halves []string
	for i, spread := range spreads {
		out, err := m.cod.Split(ctx, spread, entries[i].SplitLayout(), stagingDir)
		if err != nil {
			_ = os.RemoveAll(stagingDir)
			done(JobResult{ID: id, Kind: JobAssemble,
				Err: services.Wrap(services.ErrIO, "workflow", "split", "failed to split spread", err)})
			return
		}
		halves = append(halves, out...)
	}

	m.runAssembly(ctx, id, name, halves, spreads, []string{stagingDir})
}

// runAssembly is the shared worker tail for both modes.
func (m *Manager) runAssembly(ctx context.Context, id uuid.UUID, name string, files, cleanupFiles, cleanupPaths []string) {
	var cleanupDirs []string
	for _, path := range cleanupPaths {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			cleanupDirs = append(cleanupDirs, path)
		} else {
			cleanupFiles = append(cleanupFiles, path)
		}
	}

	res, err := m.asm.CreateBook(ctx, assembler.Request{
		Name:         name,
		Files:        files,
		CleanupFiles: cleanupFiles,
		CleanupDirs:  cleanupDirs,
		Progress: func(done, total int) {
			m.logger.Debug("assembling book",
				logging.String("book", name),
				logging.Int("done", done), logging.Int("total", total))
		},
	})
	m.postJob(ctx, JobResult{ID: id, Kind: JobAssemble, Err: err, Book: res})
}

// postJob hands a worker result to the event loop. Workers run under the
// loop's context, so when the loop is gone the send gives up instead of
// blocking on a channel nobody drains.
func (m *Manager) postJob(ctx context.Context, res JobResult) {
	select {
	case m.msgs <- jobDoneMsg{result: res}:
	case <-ctx.Done():
		m.logger.Warn("dropping job result, loop stopped",
			logging.String("job", res.ID.String()))
	}
}
