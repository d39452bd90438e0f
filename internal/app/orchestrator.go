package app

import (
	"context"
	"fmt"

	"crowdfund-scraper/internal/config"
	"crowdfund-scraper/internal/fetcher"
	"crowdfund-scraper/internal/model"
	"crowdfund-scraper/internal/normalize"
	"crowdfund-scraper/internal/observability"
	"crowdfund-scraper/internal/scraper"
)

// PageFetcher - то, что нужно обходчикам от fetcher.Fetcher
type PageFetcher interface {
	FetchListing(ctx context.Context, urlStr string) (string, error)
	FetchXHR(ctx context.Context, urlStr string) (*fetcher.FetchResponse, error)
}

type PaginationStats struct {
	TotalPages    int
	TotalRecords  int
	StoppedReason string
}

// CrowdcubeWalker обходит листинг по курсору: первая страница - HTML,
// следующие - AJAX-конверты {content, cursorNext}. Конец - когда курсор null.
type CrowdcubeWalker struct {
	fetcher  PageFetcher
	scraper  *scraper.Scraper
	maxPages int
	logger   *observability.Logger
}

// NewCrowdcubeWalker: maxPages ограничивает обход на случай, если сервер
// никогда не вернёт null-курсор; 0 - без ограничения
func NewCrowdcubeWalker(f PageFetcher, s *scraper.Scraper, maxPages int, logger *observability.Logger) *CrowdcubeWalker {
	return &CrowdcubeWalker{
		fetcher:  f,
		scraper:  s,
		maxPages: maxPages,
		logger:   logger,
	}
}

// Walk собирает записи со всех страниц. При ошибке сети или разбора
// всё собранное отбрасывается.
func (w *CrowdcubeWalker) Walk(ctx context.Context, baseURL string) ([]model.Record, *PaginationStats, error) {
	stats := &PaginationStats{}

	w.logger.Info("Starting cursor pagination", "base_url", baseURL, "max_pages", w.maxPages)

	html, err := w.fetcher.FetchListing(ctx, baseURL)
	if err != nil {
		stats.StoppedReason = fmt.Sprintf("fetch error at page 1: %v", err)
		return nil, stats, fmt.Errorf("fetch listing: %w", err)
	}

	listing, err := w.scraper.ParseListing(html)
	if err != nil {
		stats.StoppedReason = fmt.Sprintf("parse error at page 1: %v", err)
		return nil, stats, fmt.Errorf("parse listing: %w", err)
	}

	records := listing.Records
	stats.TotalPages = 1
	stats.TotalRecords = len(records)
	cursor := listing.Cursor

	w.logger.Info("Processed page", "page", 1, "cards", len(listing.Records), "has_cursor", cursor.IsPresent())

	for cursor.IsPresent() {
		if w.maxPages > 0 && stats.TotalPages >= w.maxPages {
			w.logger.Warn("Stopping: cursor page limit reached",
				"max_pages", w.maxPages,
				"cursor", cursor.MustGet(),
			)
			stats.StoppedReason = fmt.Sprintf("reached max_cursor_pages=%d with cursor still set", w.maxPages)
			return records, stats, nil
		}

		pageNum := stats.TotalPages + 1
		nextURL := baseURL + "cursor=" + cursor.MustGet() + "&ajax=true"

		resp, err := w.fetcher.FetchXHR(ctx, nextURL)
		if err != nil {
			w.logger.Error("Fetch failed", "page", pageNum, "url", nextURL, "error", err.Error())
			stats.StoppedReason = fmt.Sprintf("fetch error at page %d: %v", pageNum, err)
			return nil, stats, fmt.Errorf("fetch page %d: %w", pageNum, err)
		}

		envelope, err := scraper.ParseEnvelope(resp.Body)
		if err != nil {
			w.logger.Error("Bad pagination envelope", "page", pageNum, "url", nextURL, "error", err.Error())
			stats.StoppedReason = fmt.Sprintf("malformed envelope at page %d", pageNum)
			return nil, stats, fmt.Errorf("page %d: %w", pageNum, err)
		}

		listing, err := w.scraper.ParseListing(envelope.Content)
		if err != nil {
			stats.StoppedReason = fmt.Sprintf("parse error at page %d: %v", pageNum, err)
			return nil, stats, fmt.Errorf("parse page %d: %w", pageNum, err)
		}

		records = append(records, listing.Records...)
		stats.TotalPages++
		stats.TotalRecords += len(listing.Records)
		cursor = envelope.CursorNext

		w.logger.Info("Processed page", "page", pageNum, "cards", len(listing.Records), "has_cursor", cursor.IsPresent())
	}

	stats.StoppedReason = fmt.Sprintf("cursor exhausted at page %d", stats.TotalPages)
	w.logger.Info("Pagination completed",
		"total_pages", stats.TotalPages,
		"total_records", stats.TotalRecords,
		"reason", stats.StoppedReason,
	)
	return records, stats, nil
}

// KickstarterCollector листает discover API по номеру страницы, пока не наберёт
// threshold записей. Последняя страница берётся целиком, хвост не обрезается.
type KickstarterCollector struct {
	cfg        *config.Config
	fetcher    PageFetcher
	normalizer *normalize.Kickstarter
	logger     *observability.Logger
}

func NewKickstarterCollector(cfg *config.Config, f PageFetcher, n *normalize.Kickstarter, logger *observability.Logger) *KickstarterCollector {
	return &KickstarterCollector{
		cfg:        cfg,
		fetcher:    f,
		normalizer: n,
		logger:     logger,
	}
}

func (c *KickstarterCollector) Collect(ctx context.Context, categoryID int) ([]model.Record, *PaginationStats, error) {
	threshold := c.cfg.Sources.Kickstarter.CollectThreshold
	maxPages := c.cfg.Sources.Kickstarter.MaxPages
	stats := &PaginationStats{}
	var records []model.Record

	c.logger.Info("Starting API collection", "category_id", categoryID, "threshold", threshold)

	for page := 1; len(records) < threshold; page++ {
		if maxPages > 0 && page > maxPages {
			c.logger.Warn("Stopping: API page limit reached", "max_pages", maxPages, "records", len(records))
			stats.StoppedReason = fmt.Sprintf("reached max_pages=%d with %d records", maxPages, len(records))
			return records, stats, nil
		}

		pageURL := c.cfg.KickstarterURL(categoryID, page)
		resp, err := c.fetcher.FetchXHR(ctx, pageURL)
		if err != nil {
			stats.StoppedReason = fmt.Sprintf("fetch error at page %d: %v", page, err)
			return nil, stats, fmt.Errorf("fetch page %d: %w", page, err)
		}

		pageRecords, err := c.normalizer.NormalizePage(resp.Body)
		if err != nil {
			stats.StoppedReason = fmt.Sprintf("malformed response at page %d", page)
			return nil, stats, fmt.Errorf("page %d: %w", page, err)
		}

		if len(pageRecords) == 0 {
			c.logger.Warn("Stopping: API returned an empty page", "page", page, "records", len(records))
			stats.StoppedReason = fmt.Sprintf("empty page %d", page)
			return records, stats, nil
		}

		records = append(records, pageRecords...)
		stats.TotalPages++
		stats.TotalRecords = len(records)

		c.logger.Info("Processed API page", "page", page, "projects", len(pageRecords), "total", len(records))
	}

	stats.StoppedReason = fmt.Sprintf("collected %d records (threshold %d)", len(records), threshold)
	return records, stats, nil
}
