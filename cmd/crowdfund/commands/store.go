package commands

import (
	"context"
	"fmt"

	"crowdfund-scraper/internal/config"
	"crowdfund-scraper/internal/observability"
	"crowdfund-scraper/internal/storage"
	"crowdfund-scraper/internal/storage/mssql"
	"crowdfund-scraper/internal/storage/postgres"
	"crowdfund-scraper/internal/storage/sqlite"
)

// openRepository выбирает бэкенд по storage.driver
func openRepository(ctx context.Context, cfg *config.Config, logger *observability.Logger) (storage.Repository, error) {
	timeout := cfg.GetCommandTimeout()
	logger = logger.With("driver", cfg.Storage.Driver)

	switch cfg.Storage.Driver {
	case "sqlite":
		return sqlite.NewRepository(cfg.Storage.DSN, timeout, logger)
	case "postgres":
		return postgres.NewRepository(ctx, cfg.Storage.DSN, timeout, logger)
	case "mssql":
		return mssql.NewRepository(cfg.Storage.DSN, timeout, logger)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
