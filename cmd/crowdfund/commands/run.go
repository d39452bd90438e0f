package commands

import (
	"context"

	"github.com/spf13/cobra"

	"crowdfund-scraper/internal/app"
)

func init() {
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Clears the store, scrapes both sources and prints both aggregates after each one.",
	Long: `Runs the full pipeline according to scheduler.mode in the config:
oneshot runs once, interval repeats every interval_s seconds, cron follows cron_expr.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		pipeline, err := newPipeline()
		if err != nil {
			return err
		}

		ctx, cancel := app.GracefulShutdown(cmd.Context(), env.logger)
		defer cancel()

		out := cmd.OutOrStdout()
		return app.Schedule(ctx, env.cfg.Scheduler, func(ctx context.Context) error {
			report, err := pipeline.Run(ctx)
			if err != nil {
				return err
			}
			renderRun(out, env.cfg.Currency.Base, report)
			return nil
		}, env.logger)
	},
}
