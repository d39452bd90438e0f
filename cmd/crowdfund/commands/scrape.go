package commands

import (
	"github.com/spf13/cobra"

	"crowdfund-scraper/internal/app"
)

var categoryID int

func init() {
	kickstarterCmd.Flags().IntVar(&categoryID, "category-id", 0, "Kickstarter category id (defaults to sources.kickstarter.default_category_id).")
	rootCmd.AddCommand(crowdcubeCmd, kickstarterCmd)
}

var crowdcubeCmd = &cobra.Command{
	Use:   "crowdcube",
	Short: "Scrapes every Crowdcube listing page and appends the campaigns to the store.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		pipeline, err := newPipeline()
		if err != nil {
			return err
		}

		ctx, cancel := app.GracefulShutdown(cmd.Context(), env.logger)
		defer cancel()

		report, err := pipeline.ScrapeCrowdcube(ctx)
		if err != nil {
			return err
		}
		renderSource(cmd.OutOrStdout(), env.cfg.Currency.Base, env.cfg.Aggregate.MinDaysLeft, *report)
		return nil
	},
}

var kickstarterCmd = &cobra.Command{
	Use:   "kickstarter [--category-id <id>]",
	Short: "Collects Kickstarter projects of one category and appends them to the store.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		pipeline, err := newPipeline()
		if err != nil {
			return err
		}

		id := categoryID
		if id == 0 {
			id = env.cfg.Sources.Kickstarter.DefaultCategoryID
		}

		ctx, cancel := app.GracefulShutdown(cmd.Context(), env.logger)
		defer cancel()

		report, err := pipeline.ScrapeKickstarter(ctx, id)
		if err != nil {
			return err
		}
		renderSource(cmd.OutOrStdout(), env.cfg.Currency.Base, env.cfg.Aggregate.MinDaysLeft, *report)
		return nil
	},
}
