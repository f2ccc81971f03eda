// Package transfer plans and executes the delivery of finished book folders
// to their city archive roots. Planning is a dry run that surfaces every
// problem as a warning; execution moves book by book and tolerates individual
// failures so one bad book never blocks the rest of the batch.
package transfer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"folio/internal/fileutil"
	"folio/internal/ledger"
	"folio/internal/logging"
	"folio/internal/naturalsort"
	"folio/internal/services"
)

// cityCodePattern extracts the three-digit city code from a book name such
// as "2026-SCN-123-BOOK1".
var cityCodePattern = regexp.MustCompile(`-(\d{3})-`)

// Move is one planned book delivery.
type Move struct {
	Book    string
	Source  string
	City    string
	DestDir string
}

// Plan is the result of a dry run over the books folder.
type Plan struct {
	Moves    []Move
	Warnings []string
}

// Summary reports an executed plan.
type Summary struct {
	Moved  int
	Failed int
	Pages  int
}

// Pipeline moves finished books from booksDir to per-city date folders.
type Pipeline struct {
	booksDir string
	cities   map[string]string
	ledger   *ledger.Ledger
	logger   *slog.Logger
	now      func() time.Time
}

// New builds a pipeline. cities maps three-digit codes to archive roots.
func New(booksDir string, cities map[string]string, led *ledger.Ledger, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		booksDir: booksDir,
		cities:   cities,
		ledger:   led,
		logger:   logging.NewComponentLogger(logger, "transfer"),
		now:      time.Now,
	}
}

// Prepare scans the books folder and plans one move per deliverable book.
// Books whose name has no city code, whose code maps to no configured city,
// or whose city root does not exist are skipped with a warning instead of
// failing the plan.
func (p *Pipeline) Prepare() (Plan, error) {
	entries, err := os.ReadDir(p.booksDir)
	if err != nil {
		return Plan{}, services.Wrap(services.ErrIO, "transfer", "prepare", "failed to read books folder", err)
	}

	var plan Plan
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	naturalsort.Strings(names)

	for _, name := range names {
		match := cityCodePattern.FindStringSubmatch(name)
		if match == nil {
			plan.Warnings = append(plan.Warnings, fmt.Sprintf("%s: no city code in name", name))
			continue
		}
		code := match[1]
		root, ok := p.cities[code]
		if !ok {
			plan.Warnings = append(plan.Warnings, fmt.Sprintf("%s: city %s not configured", name, code))
			continue
		}
		if info, err := os.Stat(root); err != nil || !info.IsDir() {
			plan.Warnings = append(plan.Warnings, fmt.Sprintf("%s: city root %s unavailable", name, root))
			continue
		}

		plan.Moves = append(plan.Moves, Move{
			Book:    name,
			Source:  filepath.Join(p.booksDir, name),
			City:    code,
			DestDir: dateFolder(root, p.now()),
		})
	}
	return plan, nil
}

// Execute carries out the planned moves. Each book is counted, moved, and
// recorded in the ledger before the next one starts; a failing book is
// logged, counted as failed, and left in place.
func (p *Pipeline) Execute(ctx context.Context, moves []Move) (Summary, error) {
	var sum Summary
	for _, mv := range moves {
		select {
		case <-ctx.Done():
			return sum, services.Wrap(ctx.Err(), "transfer", "execute", "transfer cancelled", nil)
		default:
		}

		pages := fileutil.CountImages(mv.Source)
		if err := os.MkdirAll(mv.DestDir, 0o755); err != nil {
			p.failed(&sum, mv, "create destination", err)
			continue
		}
		dest := filepath.Join(mv.DestDir, mv.Book)
		if _, err := os.Stat(dest); err == nil {
			p.failed(&sum, mv, "destination exists", os.ErrExist)
			continue
		}
		if err := fileutil.MovePath(mv.Source, dest); err != nil {
			p.failed(&sum, mv, "move", err)
			continue
		}

		at := p.now()
		if err := p.ledger.Append(ledger.Record{
			Name:  mv.Book,
			Pages: pages,
			Path:  dest,
		}, at); err != nil {
			// The book is delivered; a ledger write failure must not undo it.
			p.logger.Warn("book delivered but not recorded",
				logging.String("book", mv.Book), logging.Error(err))
		}

		sum.Moved++
		sum.Pages += pages
		p.logger.Info("book transferred",
			logging.String("book", mv.Book),
			logging.String("city", mv.City),
			logging.Int("pages", pages))
	}
	return sum, nil
}

func (p *Pipeline) failed(sum *Summary, mv Move, op string, err error) {
	sum.Failed++
	p.logger.Error("book transfer failed",
		logging.String("book", mv.Book),
		logging.String("op", op),
		logging.Error(err))
}

// dateFolder returns the day folder under root for time t, preferring the
// zero-padded DD-MM spelling but reusing an existing folder with a variant
// spelling (D-MM, DD-M, D-M) so one day never splits across two folders.
func dateFolder(root string, t time.Time) string {
	day, month := t.Day(), int(t.Month())
	preferred := fmt.Sprintf("%02d-%02d", day, month)
	variants := []string{
		preferred,
		fmt.Sprintf("%d-%02d", day, month),
		fmt.Sprintf("%02d-%d", day, month),
		fmt.Sprintf("%d-%d", day, month),
	}
	for _, v := range variants {
		candidate := filepath.Join(root, v)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate
		}
	}
	return filepath.Join(root, preferred)
}
