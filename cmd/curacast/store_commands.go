package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zrn-ns/curacast/internal/store"
)

func newStoreCommand(ctx *commandContext) *cobra.Command {
	storeCmd := &cobra.Command{
		Use:   "store",
		Short: "Inspect and maintain the candidate ledger",
	}

	storeCmd.AddCommand(newStoreStatusCommand(ctx))
	storeCmd.AddCommand(newStoreCleanupCommand(ctx))
	storeCmd.AddCommand(newStoreClearCommand(ctx, "clear-processed", "Remove all processed-article records"))
	storeCmd.AddCommand(newStoreClearCommand(ctx, "clear-failed", "Remove all failed-URL cooldown records"))
	storeCmd.AddCommand(newStoreClearCommand(ctx, "clear-all", "Remove every ledger record"))

	return storeCmd
}

func (c *commandContext) openLedger() (*store.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.newLogger()
	if err != nil {
		return nil, err
	}
	return store.Open(cfg.Paths.LedgerPath, store.WithLogger(logger))
}

func newStoreStatusCommand(ctx *commandContext) *cobra.Command {
	var showFailed bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show ledger counts and recent failures",
		RunE: func(cmd *cobra.Command, args []string) error {
			ledger, err := ctx.openLedger()
			if err != nil {
				return err
			}

			processed, failed := ledger.Counts()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Processed articles: %d\n", processed)
			fmt.Fprintf(out, "Failed URLs in cooldown: %d\n", failed)

			if !showFailed || failed == 0 {
				return nil
			}

			rows := make([][]string, 0, failed)
			for _, record := range ledger.FailedURLRecords() {
				rows = append(rows, []string{
					record.URL,
					record.LastFailedAt.Format("2006-01-02 15:04"),
					fmt.Sprintf("%d", record.FailureCount),
					record.LastError,
				})
			}
			fmt.Fprintln(out, formatTable(
				[]string{"URL", "Last Failed", "Count", "Error"},
				rows,
				[]colAlign{colLeft, colLeft, colRight, colLeft},
			))
			return nil
		},
	}
	cmd.Flags().BoolVar(&showFailed, "failed", false, "List failed URLs currently in cooldown")
	return cmd
}

func newStoreCleanupCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Drop records older than the configured retention windows",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			ledger, err := ctx.openLedger()
			if err != nil {
				return err
			}

			processed, err := ledger.CleanupProcessed(cfg.Pipeline.ProcessedRetainDays)
			if err != nil {
				return err
			}
			failed, err := ledger.CleanupFailedURLs(cfg.Pipeline.FailedURLRetainDays)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d processed records and %d failed-URL records\n", processed, failed)
			return nil
		},
	}
}

func newStoreClearCommand(ctx *commandContext, use, short string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			ledger, err := ctx.openLedger()
			if err != nil {
				return err
			}

			var removed int
			switch use {
			case "clear-processed":
				removed, err = ledger.ClearProcessed()
			case "clear-failed":
				removed, err = ledger.ClearFailedURLs()
			default:
				removed, err = ledger.ClearAll()
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d records\n", removed)
			return nil
		},
	}
}
