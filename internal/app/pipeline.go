package app

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"crowdfund-scraper/internal/config"
	"crowdfund-scraper/internal/model"
	"crowdfund-scraper/internal/observability"
	"crowdfund-scraper/internal/storage"
)

// SourceReport - итог одного источника: сколько собрано, сколько в базе и обе суммы
type SourceReport struct {
	Source    string
	Scraped   int
	Stored    int
	Stats     *PaginationStats
	InProcess storage.AggregateResult
	Native    storage.AggregateResult
}

// RunReport - итог полного прогона
type RunReport struct {
	RunID       string
	Cleared     int64
	MinDaysLeft int
	Sources     []SourceReport
}

// Pipeline - полный прогон: очистка, Crowdcube, агрегаты, Kickstarter, агрегаты.
// Записи второго источника добавляются к первому, агрегаты считаются по обоим.
type Pipeline struct {
	cfg        *config.Config
	walker     *CrowdcubeWalker
	collector  *KickstarterCollector
	repo       storage.Repository
	aggregator *storage.Aggregator
	logger     *observability.Logger
}

func NewPipeline(cfg *config.Config, walker *CrowdcubeWalker, collector *KickstarterCollector, repo storage.Repository, logger *observability.Logger) *Pipeline {
	return &Pipeline{
		cfg:        cfg,
		walker:     walker,
		collector:  collector,
		repo:       repo,
		aggregator: storage.NewAggregator(repo, logger),
		logger:     logger,
	}
}

func (p *Pipeline) Run(ctx context.Context) (*RunReport, error) {
	report := &RunReport{
		RunID:       uuid.NewString(),
		MinDaysLeft: p.cfg.Aggregate.MinDaysLeft,
	}
	p.logger.Info("Run started", "run_id", report.RunID)

	cleared, err := p.repo.Clear(ctx)
	if err != nil {
		return report, fmt.Errorf("clear: %w", err)
	}
	report.Cleared = cleared
	p.logger.Info("Collection cleared", "run_id", report.RunID, "removed", cleared)

	crowdcube, err := p.ScrapeCrowdcube(ctx)
	if err != nil {
		return report, err
	}
	report.Sources = append(report.Sources, *crowdcube)

	kickstarter, err := p.ScrapeKickstarter(ctx, p.cfg.Sources.Kickstarter.DefaultCategoryID)
	if err != nil {
		return report, err
	}
	report.Sources = append(report.Sources, *kickstarter)

	p.logger.Info("Run completed", "run_id", report.RunID, "sources", len(report.Sources))
	return report, nil
}

// ScrapeCrowdcube обходит листинг и сохраняет записи. Если обход упал,
// в базу ничего не пишется.
func (p *Pipeline) ScrapeCrowdcube(ctx context.Context) (*SourceReport, error) {
	p.logger.Info("Scraping started, please wait", "source", model.SourceCrowdcube)

	records, stats, err := p.walker.Walk(ctx, p.cfg.Sources.Crowdcube.ListingURL)
	if err != nil {
		return nil, fmt.Errorf("crowdcube: %w", err)
	}

	if err := p.repo.InsertMany(ctx, records); err != nil {
		return nil, fmt.Errorf("crowdcube: store: %w", err)
	}

	report := &SourceReport{Source: model.SourceCrowdcube, Scraped: len(records), Stats: stats}
	if err := p.fillTotals(ctx, report); err != nil {
		return nil, fmt.Errorf("crowdcube: %w", err)
	}
	return report, nil
}

func (p *Pipeline) ScrapeKickstarter(ctx context.Context, categoryID int) (*SourceReport, error) {
	p.logger.Info("Scraping started, please wait", "source", model.SourceKickstarter, "category_id", categoryID)

	records, stats, err := p.collector.Collect(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("kickstarter: %w", err)
	}

	if err := p.repo.InsertMany(ctx, records); err != nil {
		return nil, fmt.Errorf("kickstarter: store: %w", err)
	}

	report := &SourceReport{Source: model.SourceKickstarter, Scraped: len(records), Stats: stats}
	if err := p.fillTotals(ctx, report); err != nil {
		return nil, fmt.Errorf("kickstarter: %w", err)
	}
	return report, nil
}

func (p *Pipeline) fillTotals(ctx context.Context, report *SourceReport) error {
	stored, err := p.repo.Count(ctx)
	if err != nil {
		return fmt.Errorf("count: %w", err)
	}
	report.Stored = stored

	report.InProcess, report.Native, err = p.aggregator.Compare(ctx, p.cfg.Aggregate.MinDaysLeft)
	if err != nil {
		return err
	}

	p.logger.Info("Source stored",
		"source", report.Source,
		"scraped", report.Scraped,
		"stored", report.Stored,
		"sum_in_process", report.InProcess.Sum,
		"sum_native", report.Native.Sum,
	)
	return nil
}
