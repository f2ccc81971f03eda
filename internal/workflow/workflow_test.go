package workflow

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"folio/internal/codec"
	"folio/internal/config"
	"folio/internal/geometry"
	"folio/internal/layout"
	"folio/internal/ledger"
	"folio/internal/logging"
	"folio/internal/services"
	"folio/internal/stats"
	"folio/internal/transfer"
	"folio/internal/watcher"
)

type fixture struct {
	m      *Manager
	cfg    *config.Config
	led    *ledger.Ledger
	cod    *codec.Fake
	events chan watcher.Event
	cancel context.CancelFunc
}

func newFixture(t *testing.T, mode string) *fixture {
	t.Helper()
	cfg := config.Default()
	cfg.Scanner.Mode = mode
	cfg.Scanner.NavigationDebounceMS = 20
	cfg.Paths.ScanDir = t.TempDir()
	cfg.Paths.BooksDir = t.TempDir()
	cfg.Paths.BackupDir = filepath.Join(cfg.Paths.ScanDir, ".backups")
	cfg.Paths.LedgerPath = filepath.Join(t.TempDir(), "books_complete_log.json")
	cfg.Cities = map[string]string{}

	led := ledger.Open(cfg.Paths.LedgerPath, logging.NewNop())
	cod := codec.NewFake(2000, 3000)
	m := New(&cfg, led, cod, logging.NewNop())

	events := make(chan watcher.Event)
	ctx, cancel := context.WithCancel(context.Background())
	go m.Run(ctx, events)
	t.Cleanup(cancel)

	return &fixture{m: m, cfg: &cfg, led: led, cod: cod, events: events, cancel: cancel}
}

func (f *fixture) addPage(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(f.cfg.Paths.ScanDir, name)
	if err := os.WriteFile(path, []byte("pixels "+name), 0o644); err != nil {
		t.Fatal(err)
	}
	select {
	case f.events <- watcher.Event{Kind: watcher.FileReady, Path: path}:
	case <-time.After(2 * time.Second):
		t.Fatal("event loop never accepted the file event")
	}
	return path
}

func (f *fixture) do(t *testing.T, intent Intent) any {
	t.Helper()
	value, err := f.m.Do(context.Background(), intent)
	if err != nil {
		t.Fatalf("Do(%T): %v", intent, err)
	}
	return value
}

func (f *fixture) waitJob(t *testing.T, id uuid.UUID) JobResult {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case res := <-f.m.Results():
			if res.ID == id {
				return res
			}
		case <-deadline:
			t.Fatal("job result never arrived")
		}
	}
}

func TestArrivalsAutoAdvanceOnce(t *testing.T) {
	f := newFixture(t, config.ModeDualScan)

	// A burst of five pages coalesces into a single jump to the last pair.
	for i := 1; i <= 5; i++ {
		f.addPage(t, fmt.Sprintf("page%d.png", i))
	}
	time.Sleep(100 * time.Millisecond)

	// Already at index 4; advancing has nowhere to go.
	if idx := f.do(t, Next{}).(int); idx != 4 {
		t.Fatalf("index = %d, want 4", idx)
	}

	snap := f.do(t, TakeSnapshot{}).(stats.Snapshot)
	if snap.Pending != 5 {
		t.Fatalf("pending = %d, want 5", snap.Pending)
	}
	if snap.PagesPerMinute == 0 {
		t.Fatal("arrival rate not recorded")
	}
}

func TestZoomBlocksManualNavigation(t *testing.T) {
	f := newFixture(t, config.ModeDualScan)
	for i := 1; i <= 4; i++ {
		f.addPage(t, fmt.Sprintf("page%d.png", i))
	}
	time.Sleep(100 * time.Millisecond)

	f.m.Gate().SetZoomed(true)
	if idx := f.do(t, Prev{}).(int); idx != 2 {
		t.Fatalf("blocked Prev moved: index = %d", idx)
	}
	f.m.Gate().SetZoomed(false)
	if idx := f.do(t, Prev{}).(int); idx != 0 {
		t.Fatalf("index = %d after unblocked Prev, want 0", idx)
	}
}

func TestCreateBookDualScan(t *testing.T) {
	f := newFixture(t, config.ModeDualScan)
	for i := 1; i <= 3; i++ {
		f.addPage(t, fmt.Sprintf("page%d.png", i))
	}

	id := f.do(t, CreateBook{Name: "2026-SCN-123-BOOK1"}).(uuid.UUID)
	res := f.waitJob(t, id)
	if res.Err != nil {
		t.Fatalf("assembly: %v", res.Err)
	}
	if res.Book.Pages != 3 {
		t.Fatalf("pages = %d, want 3", res.Book.Pages)
	}
	for _, want := range []string{"0001.png", "0002.png", "0003.png"} {
		if _, err := os.Stat(filepath.Join(res.Book.Folder, want)); err != nil {
			t.Fatalf("missing %s: %v", want, err)
		}
	}

	snap := f.do(t, TakeSnapshot{}).(stats.Snapshot)
	if snap.Pending != 0 || snap.Staged != 3 || snap.StagedBooks != 1 {
		t.Fatalf("snapshot = %+v", snap)
	}
}

func TestCreateBookSingleSplit(t *testing.T) {
	f := newFixture(t, config.ModeSingleSplit)
	spread1 := f.addPage(t, "spread1.png")
	spread2 := f.addPage(t, "spread2.png")

	id := f.do(t, CreateBook{Name: "2026-SCN-123-BOOK1"}).(uuid.UUID)
	res := f.waitJob(t, id)
	if res.Err != nil {
		t.Fatalf("assembly: %v", res.Err)
	}
	// Two spreads, two enabled halves each.
	if res.Book.Pages != 4 {
		t.Fatalf("pages = %d, want 4", res.Book.Pages)
	}

	// Originals and the staging folder are consumed.
	for _, gone := range []string{spread1, spread2, filepath.Join(f.cfg.Paths.ScanDir, SplitStagingDir)} {
		if _, err := os.Stat(gone); !os.IsNotExist(err) {
			t.Fatalf("%s survived assembly", gone)
		}
	}
	if _, err := os.Stat(f.cfg.LayoutPath()); !os.IsNotExist(err) {
		t.Fatal("layout store survived assembly")
	}
	if got := f.cod.SplitCalls(); len(got) != 2 {
		t.Fatalf("split calls = %v", got)
	}
}

func TestCreateBookRequiresPages(t *testing.T) {
	f := newFixture(t, config.ModeDualScan)
	_, err := f.m.Do(context.Background(), CreateBook{Name: "BOOK"})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("err = %v, want validation", err)
	}
}

func TestCommitEditBacksUpOnce(t *testing.T) {
	f := newFixture(t, config.ModeDualScan)
	page := f.addPage(t, "page1.png")

	crop := geometry.Rect{X: 10, Y: 10, W: 100, H: 100}
	f.do(t, CommitEdit{Path: page, Edits: codec.Edits{Crop: &crop}})
	f.do(t, CommitEdit{Path: page, Edits: codec.Edits{RotationDeg: 2}})

	backup := filepath.Join(f.cfg.Paths.BackupDir, "page1.png")
	if _, err := os.Stat(backup); err != nil {
		t.Fatalf("backup missing: %v", err)
	}
	if got := len(f.cod.Applied(page)); got != 2 {
		t.Fatalf("applied edits = %d, want 2", got)
	}
}

func TestCommitEditSavesLayout(t *testing.T) {
	f := newFixture(t, config.ModeSingleSplit)
	page := f.addPage(t, "spread1.png")

	split := geometry.DefaultSplitLayout()
	split.Right.Enabled = false
	entry := layout.FromSplitLayout(split)
	f.do(t, CommitEdit{Path: page, Layout: &entry})

	store := layout.NewStore(f.cfg.LayoutPath(), logging.NewNop())
	got, ok := store.Get(page)
	if !ok {
		t.Fatal("layout not persisted")
	}
	if got.RightEnabled {
		t.Fatal("right_enabled should be false")
	}
}

func TestTransferFlow(t *testing.T) {
	f := newFixture(t, config.ModeDualScan)
	cityRoot := t.TempDir()
	f.cfg.Cities["123"] = cityRoot

	f.addPage(t, "page1.png")
	f.addPage(t, "page2.png")
	id := f.do(t, CreateBook{Name: "2026-SCN-123-BOOK1"}).(uuid.UUID)
	f.waitJob(t, id)

	plan := f.do(t, PrepareTransfer{}).(transfer.Plan)
	if len(plan.Moves) != 1 || len(plan.Warnings) != 0 {
		t.Fatalf("plan = %+v", plan)
	}

	id = f.do(t, ConfirmTransfer{Moves: plan.Moves}).(uuid.UUID)
	res := f.waitJob(t, id)
	if res.Err != nil {
		t.Fatalf("transfer: %v", res.Err)
	}
	if res.Transfer.Moved != 1 || res.Transfer.Pages != 2 {
		t.Fatalf("summary = %+v", res.Transfer)
	}

	snap := f.do(t, TakeSnapshot{}).(stats.Snapshot)
	if snap.StagedBooks != 0 || snap.TransferredToday != 2 || snap.BooksToday != 1 {
		t.Fatalf("snapshot = %+v", snap)
	}
	if snap.Total() != 2 {
		t.Fatalf("total = %d, want 2", snap.Total())
	}
}

func TestPageDimensionsCachedUntilEdit(t *testing.T) {
	f := newFixture(t, config.ModeDualScan)
	page := f.addPage(t, "page1.png")

	dims := f.do(t, PageDimensions{Path: page}).(codec.Dimensions)
	if dims.W != 2000 || dims.H != 3000 {
		t.Fatalf("dims = %+v", dims)
	}
	// Second lookup is served from the cache.
	f.do(t, PageDimensions{Path: page})
	if got := len(f.cod.DecodeCalls()); got != 1 {
		t.Fatalf("decode calls = %d, want 1", got)
	}

	// An edit invalidates the cached decode; the next lookup re-decodes.
	crop := geometry.Rect{X: 10, Y: 10, W: 100, H: 100}
	f.do(t, CommitEdit{Path: page, Edits: codec.Edits{Crop: &crop}})
	f.do(t, PageDimensions{Path: page})
	if got := len(f.cod.DecodeCalls()); got != 2 {
		t.Fatalf("decode calls after edit = %d, want 2", got)
	}
}

func TestPostJobGivesUpWhenLoopStopped(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.ScanDir = t.TempDir()
	cfg.Paths.BooksDir = t.TempDir()
	led := ledger.Open(filepath.Join(t.TempDir(), "log.json"), logging.NewNop())
	m := New(&cfg, led, nil, logging.NewNop())

	// No loop is draining; fill the message buffer completely.
	for i := 0; i < cap(m.msgs); i++ {
		m.msgs <- fileMsg{}
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	done := make(chan struct{})
	go func() {
		m.postJob(ctx, JobResult{ID: uuid.New(), Kind: JobAssemble})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("postJob blocked on a dead loop")
	}
}

func TestFileRemovalDropsPage(t *testing.T) {
	f := newFixture(t, config.ModeDualScan)
	page := f.addPage(t, "page1.png")
	f.addPage(t, "page2.png")

	if err := os.Remove(page); err != nil {
		t.Fatal(err)
	}
	f.events <- watcher.Event{Kind: watcher.FileRemoved, Path: page}

	snap := f.do(t, TakeSnapshot{}).(stats.Snapshot)
	if snap.Pending != 1 {
		t.Fatalf("pending = %d, want 1", snap.Pending)
	}
}
