package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"folio/internal/fileutil"
	"folio/internal/ledger"
	"folio/internal/logging"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show session statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			pending, err := fileutil.ListImages(cfg.Paths.ScanDir)
			if err != nil {
				return fmt.Errorf("read scan folder: %w", err)
			}
			staged, stagedBooks, err := countStaged(cfg.Paths.BooksDir)
			if err != nil {
				return fmt.Errorf("read books folder: %w", err)
			}

			led := ledger.Open(cfg.Paths.LedgerPath, logging.NewNop())
			now := time.Now()
			transferred := led.PagesOn(now)

			rows := [][]string{
				{"Pending pages", fmt.Sprintf("%d", len(pending))},
				{"Staged pages", fmt.Sprintf("%d", staged)},
				{"Staged books", fmt.Sprintf("%d", stagedBooks)},
				{"Transferred today", fmt.Sprintf("%d", transferred)},
				{"Books today", fmt.Sprintf("%d", led.BooksOn(now))},
				{"Total pages", fmt.Sprintf("%d", len(pending)+staged+transferred)},
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Metric", "Value"}, rows,
				[]columnAlignment{alignLeft, alignRight}))
			return nil
		},
	}
}

func countStaged(booksDir string) (pages, books int, err error) {
	entries, err := listBookDirs(booksDir)
	if err != nil {
		return 0, 0, err
	}
	for _, name := range entries {
		books++
		pages += fileutil.CountImages(filepath.Join(booksDir, name))
	}
	return pages, books, nil
}
