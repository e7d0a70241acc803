package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"facility-recon/internal/cli"
	"facility-recon/internal/storage"
)

func runsCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recent reconciliation runs from the history database",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cfg.HistoryDB == "" {
				return errors.New("run history is disabled: set HISTORY_DB or --history-db")
			}
			store, err := storage.Open(cmd.Context(), cfg.HistoryDB)
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer func() { _ = store.Close() }()

			runs, err := store.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.RenderRuns(runs))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "how many runs to show")
	return cmd
}
