package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"crowdfund-scraper/internal/storage"
)

var minDays int

func init() {
	aggregateCmd.Flags().IntVar(&minDays, "min-days", 0, "Minimum days left (defaults to aggregate.min_days_left).")
	rootCmd.AddCommand(aggregateCmd, countCmd, clearCmd)
}

var aggregateCmd = &cobra.Command{
	Use:   "aggregate [--min-days <n>]",
	Short: "Sums amount raised by campaigns with enough days left, in the application and in the database.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		days := env.cfg.Aggregate.MinDaysLeft
		if cmd.Flags().Changed("min-days") {
			days = minDays
		}

		agg := storage.NewAggregator(env.repo, env.logger)
		inProcess, native, err := agg.Compare(cmd.Context(), days)
		if err != nil {
			return err
		}

		renderAggregates(cmd.OutOrStdout(), env.cfg.Currency.Base, days, inProcess, native)
		return nil
	},
}

var countCmd = &cobra.Command{
	Use:   "count",
	Short: "Prints the number of stored campaigns.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		count, err := env.repo.Count(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d campaigns in store\n", count)
		return nil
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Removes every stored campaign.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		removed, err := env.repo.Clear(cmd.Context())
		if err != nil {
			return err
		}
		env.logger.Info("Collection cleared", "removed", removed)
		fmt.Fprintf(cmd.OutOrStdout(), "removed %d campaigns\n", removed)
		return nil
	},
}
