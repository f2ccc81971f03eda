package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"folio/internal/ledger"
	"folio/internal/logging"
	"folio/internal/transfer"
)

func newTransferCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "transfer",
		Short: "Deliver staged books to their city archives",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("initialize logging: %w", err)
			}

			led := ledger.Open(cfg.Paths.LedgerPath, logger)
			pipe := transfer.New(cfg.Paths.BooksDir, cfg.Cities, led, logger)

			plan, err := pipe.Prepare()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, warning := range plan.Warnings {
				fmt.Fprintf(out, "warning: %s\n", warning)
			}
			if len(plan.Moves) == 0 {
				fmt.Fprintln(out, "Nothing to transfer.")
				return nil
			}

			rows := make([][]string, 0, len(plan.Moves))
			for _, mv := range plan.Moves {
				rows = append(rows, []string{mv.Book, mv.City, mv.DestDir})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Book", "City", "Destination"}, rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft}))

			if dryRun {
				return nil
			}

			sum, err := pipe.Execute(cmd.Context(), plan.Moves)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Transferred %d book(s), %d page(s)", sum.Moved, sum.Pages)
			if sum.Failed > 0 {
				fmt.Fprintf(out, "; %d failed (left in place)", sum.Failed)
			}
			fmt.Fprintln(out)
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Plan the transfer without moving anything")
	return cmd
}
