package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"crowdfund-scraper/internal/app"
	"crowdfund-scraper/internal/config"
	"crowdfund-scraper/internal/fetcher"
	"crowdfund-scraper/internal/model"
	"crowdfund-scraper/internal/normalize"
	"crowdfund-scraper/internal/observability"
	"crowdfund-scraper/internal/scraper"
	"crowdfund-scraper/internal/storage"
)

var configPath string

// env - то, что собирается один раз в PersistentPreRunE и нужно всем командам
var env struct {
	cfg    *config.Config
	logger *observability.Logger
	repo   storage.Repository
}

var rootCmd = &cobra.Command{
	Use:           "crowdfund",
	Short:         "crowdfund scrapes Crowdcube and Kickstarter campaigns into one store and sums what they raised.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		logger, err := observability.NewLogger(cfg.Observability.LogPath, cfg.Observability.LogLevel)
		if err != nil {
			return fmt.Errorf("failed to init logger: %w", err)
		}

		repo, err := openRepository(cmd.Context(), cfg, logger)
		if err != nil {
			_ = logger.Sync()
			return fmt.Errorf("failed to open storage: %w", err)
		}

		env.cfg, env.logger, env.repo = cfg, logger, repo
		logger.Debug("Configuration loaded", "config", configPath, "driver", cfg.Storage.Driver)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		closeEnv()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "configs/config.yaml", "Path to the YAML config.")
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if env.logger != nil {
			env.logger.Error("Command failed", "error", err.Error())
		}
		closeEnv()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func closeEnv() {
	if env.repo != nil {
		if err := env.repo.Close(); err != nil && env.logger != nil {
			env.logger.Warn("Failed to close storage", "error", err.Error())
		}
		env.repo = nil
	}
	if env.logger != nil {
		_ = env.logger.Sync()
	}
}

// newPipeline собирает fetcher, парсеры и обходчики поверх открытого хранилища
func newPipeline() (*app.Pipeline, error) {
	cfg, logger := env.cfg, env.logger

	selectors, err := cfg.LoadCrowdcubeSelectors()
	if err != nil {
		return nil, fmt.Errorf("failed to load selectors: %w", err)
	}

	f := fetcher.NewFetcher(cfg, logger)
	walker := app.NewCrowdcubeWalker(
		f,
		scraper.NewScraper(selectors, model.SourceCrowdcube, cfg.Scraper.StrictNumeric),
		cfg.Pagination.MaxCursorPages,
		logger,
	)
	collector := app.NewKickstarterCollector(cfg, f, normalize.NewKickstarter(cfg.Currency.USDToBaseRate), logger)

	return app.NewPipeline(cfg, walker, collector, env.repo, logger), nil
}
