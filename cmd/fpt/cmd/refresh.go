package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func refreshCmd() *cobra.Command {
	refreshRoot := &cobra.Command{
		Use:   "refresh",
		Short: "Refresh the catalog from the latest flyers",
		Long: "Ask the server to collect the current flyers and replace the catalog.\n" +
			"The call blocks until the refresh finishes.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), viper.GetDuration("timeout"))
			defer cancel()

			run, err := newClient().Refresh(ctx)
			if err != nil {
				return err
			}

			if jsonOutput() {
				return outputJSON(cmd.OutOrStdout(), run)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Refresh %s: %d flyers, %d items, %d products, %d dropped\n",
				run.Status, run.Flyers, run.Items, run.Products, run.Dropped)
			return nil
		},
	}

	refreshRoot.AddCommand(refreshRunsCmd())
	return refreshRoot
}

func refreshRunsCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Show recent refresh runs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), viper.GetDuration("timeout"))
			defer cancel()

			runs, err := newClient().ListRefreshRuns(ctx, limit)
			if err != nil {
				return err
			}

			if jsonOutput() {
				return outputJSON(cmd.OutOrStdout(), runs)
			}
			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No refresh runs recorded.")
				return nil
			}
			return printRunsTable(cmd.OutOrStdout(), runs)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "number of runs to show")
	return cmd
}
