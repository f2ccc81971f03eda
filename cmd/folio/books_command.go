package main

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/spf13/cobra"

	"folio/internal/fileutil"
	"folio/internal/naturalsort"
)

var bookCityPattern = regexp.MustCompile(`-(\d{3})-`)

func newBooksCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "books",
		Short: "List staged books awaiting transfer",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			names, err := listBookDirs(cfg.Paths.BooksDir)
			if err != nil {
				return fmt.Errorf("read books folder: %w", err)
			}
			if len(names) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No staged books.")
				return nil
			}

			rows := make([][]string, 0, len(names))
			for _, name := range names {
				city := "?"
				if m := bookCityPattern.FindStringSubmatch(name); m != nil {
					city = m[1]
				}
				pages := fileutil.CountImages(filepath.Join(cfg.Paths.BooksDir, name))
				rows = append(rows, []string{name, fmt.Sprintf("%d", pages), city})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Book", "Pages", "City"}, rows,
				[]columnAlignment{alignLeft, alignRight, alignLeft}))
			return nil
		},
	}
}

func listBookDirs(booksDir string) ([]string, error) {
	entries, err := os.ReadDir(booksDir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	naturalsort.Strings(names)
	return names, nil
}
