package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"folio/internal/daemon"
	"folio/internal/ledger"
	"folio/internal/logging"
	"folio/internal/workflow"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the scan workflow daemon",
		Long: "Watches the scan folder, tracks the scanning session, and serves " +
			"book assembly and transfer until interrupted.",
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
			manager := workflow.New(cfg, led, nil, logger)
			d, err := daemon.New(cfg, manager, logger)
			if err != nil {
				return err
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := d.Start(runCtx); err != nil {
				return err
			}
			defer d.Stop()

			for {
				select {
				case <-runCtx.Done():
					return nil
				case res := <-manager.Results():
					if res.Err != nil {
						logger.Error("job failed",
							logging.String("job", res.ID.String()),
							logging.String("kind", string(res.Kind)),
							logging.Error(res.Err))
					}
				}
			}
		},
	}
}
