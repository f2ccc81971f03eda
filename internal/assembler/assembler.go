// Package assembler turns a batch of scanned pages into a finished book
// folder: pages are moved into the folder and renamed to a zero-padded
// sequence in natural order. Cancellation between pages rolls the partial
// folder back so the scan folder is never half-consumed silently.
package assembler

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"folio/internal/fileutil"
	"folio/internal/logging"
	"folio/internal/naturalsort"
	"folio/internal/services"
)

// Request describes one book to assemble.
type Request struct {
	// Name becomes the book folder name under the books directory.
	Name string
	// Files are the page images, in any order; they are renamed in natural
	// order of their basenames.
	Files []string
	// CleanupFiles are deleted after the book is assembled, e.g. the original
	// spread images of a single-split batch whose halves were consumed.
	CleanupFiles []string
	// CleanupDirs are removed recursively after the book is assembled, e.g.
	// the split staging folder.
	CleanupDirs []string
	// Progress, when set, is called after each page with (done, total).
	Progress func(done, total int)
}

// Result reports a finished assembly.
type Result struct {
	Folder string
	Pages  int
}

// Assembler creates book folders under a fixed books directory.
type Assembler struct {
	booksDir string
	logger   *slog.Logger
}

// New builds an assembler writing under booksDir.
func New(booksDir string, logger *slog.Logger) *Assembler {
	return &Assembler{
		booksDir: booksDir,
		logger:   logging.NewComponentLogger(logger, "assembler"),
	}
}

// CreateBook moves the request's pages into a new book folder, renaming each
// to a four-digit sequence number with its original extension. When ctx is
// cancelled mid-run, the partially built folder is deleted, the already moved
// pages with it, and the error wraps context.Canceled.
func (a *Assembler) CreateBook(ctx context.Context, req Request) (Result, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return Result{}, services.Wrap(services.ErrValidation, "assembler", "create", "book name is empty", nil)
	}
	if strings.ContainsAny(name, `/\`) {
		return Result{}, services.Wrap(services.ErrValidation, "assembler", "create", "book name contains path separators", nil)
	}
	if len(req.Files) == 0 {
		return Result{}, services.Wrap(services.ErrValidation, "assembler", "create", "no pages to assemble", nil)
	}

	folder := filepath.Join(a.booksDir, name)
	if _, err := os.Stat(folder); err == nil {
		return Result{}, services.Wrap(services.ErrValidation, "assembler", "create", "book folder already exists", nil)
	}
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return Result{}, services.Wrap(services.ErrIO, "assembler", "create", "failed to create book folder", err)
	}

	pages := make([]string, len(req.Files))
	copy(pages, req.Files)
	naturalsort.Paths(pages)

	for i, src := range pages {
		select {
		case <-ctx.Done():
			a.rollback(folder)
			return Result{}, services.Wrap(ctx.Err(), "assembler", "create", "assembly cancelled", nil)
		default:
		}

		dst := filepath.Join(folder, fmt.Sprintf("%04d%s", i+1, strings.ToLower(filepath.Ext(src))))
		if err := fileutil.MovePath(src, dst); err != nil {
			a.rollback(folder)
			return Result{}, services.Wrap(services.ErrIO, "assembler", "move",
				fmt.Sprintf("failed to move page %d of %d", i+1, len(pages)), err)
		}
		if req.Progress != nil {
			req.Progress(i+1, len(pages))
		}
	}

	a.cleanup(req)

	a.logger.Info("book assembled",
		logging.String("book", name),
		logging.Int("pages", len(pages)))
	return Result{Folder: folder, Pages: len(pages)}, nil
}

// rollback removes a partially assembled book folder. Pages already moved
// into it are lost from the scan folder as well, which matches treating the
// whole assembly as one unit.
func (a *Assembler) rollback(folder string) {
	if err := os.RemoveAll(folder); err != nil {
		a.logger.Warn("failed to remove partial book folder",
			logging.String("folder", folder), logging.Error(err))
	}
}

func (a *Assembler) cleanup(req Request) {
	for _, path := range req.CleanupFiles {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			a.logger.Warn("failed to remove consumed file",
				logging.String("file", path), logging.Error(err))
		}
	}
	for _, dir := range req.CleanupDirs {
		if err := os.RemoveAll(dir); err != nil {
			a.logger.Warn("failed to remove staging folder",
				logging.String("dir", dir), logging.Error(err))
		}
	}
}
