// Package daemon coordinates the watcher and the workflow manager and
// enforces single-instance execution with an advisory file lock.
package daemon

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"folio/internal/config"
	"folio/internal/logging"
	"folio/internal/watcher"
	"folio/internal/workflow"
)

// Daemon owns the long-running pieces of a scanning session.
type Daemon struct {
	cfg     *config.Config
	logger  *slog.Logger
	manager *workflow.Manager

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	watch   *watcher.Watcher
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, manager *workflow.Manager, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || manager == nil || logger == nil {
		return nil, errors.New("daemon requires config, manager, and logger")
	}
	lockPath := cfg.LockPath()
	return &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		manager:  manager,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}, nil
}

// Manager returns the workflow manager the daemon drives.
func (d *Daemon) Manager() *workflow.Manager {
	return d.manager
}

// Start acquires the instance lock and launches the watcher and the
// workflow event loop. It returns once both are running.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("another folio instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)

	w, err := watcher.New(
		d.cfg.Paths.ScanDir,
		time.Duration(d.cfg.Scanner.StabilizePollMS)*time.Millisecond,
		d.cfg.Scanner.StabilizeMaxPolls,
		d.logger,
	)
	if err != nil {
		cancel()
		_ = d.lock.Unlock()
		return err
	}
	if err := w.Start(runCtx); err != nil {
		cancel()
		_ = w.Close()
		_ = d.lock.Unlock()
		return err
	}

	d.cancel = cancel
	d.watch = w
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		if err := d.manager.Run(runCtx, w.Events()); err != nil && !errors.Is(err, context.Canceled) {
			d.logger.Error("workflow loop exited", logging.Error(err))
		}
	}()

	d.running.Store(true)
	d.logger.Info("folio daemon started",
		logging.String("scan_dir", d.cfg.Paths.ScanDir),
		logging.String("mode", d.cfg.Scanner.Mode),
		logging.String("lock", d.lockPath))
	return nil
}

// Stop shuts the watcher and event loop down and releases the lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	if d.watch != nil {
		if err := d.watch.Close(); err != nil {
			d.logger.Warn("failed to close watcher", logging.Error(err))
		}
		d.watch = nil
	}
	d.wg.Wait()

	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release instance lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("folio daemon stopped")
}

// Running reports whether Start has succeeded and Stop has not yet run.
func (d *Daemon) Running() bool {
	return d.running.Load()
}
