package config

import (
	"fmt"
	"strings"
	"time"
)

type Config struct {
	Sources       SourcesConfig       `yaml:"sources"`
	Rod           RodConfig           `yaml:"rod"`
	HTTP          HttpConfig          `yaml:"http"`
	Pagination    PaginationConfig    `yaml:"pagination"`
	Currency      CurrencyConfig      `yaml:"currency"`
	SelectorsFile string              `yaml:"selectors_file"`
	Scraper       ScraperConfig       `yaml:"scraper"`
	Aggregate     AggregateConfig     `yaml:"aggregate"`
	Storage       StorageConfig       `yaml:"storage"`
	Scheduler     SchedulerConfig     `yaml:"scheduler"`
	Observability ObservabilityConfig `yaml:"observability"`
}

type SourcesConfig struct {
	Crowdcube   CrowdcubeConfig   `yaml:"crowdcube"`
	Kickstarter KickstarterConfig `yaml:"kickstarter"`
}

type CrowdcubeConfig struct {
	// ListingURL должен заканчиваться на "?" или "&": к нему дописывается "cursor=..."
	ListingURL string `yaml:"listing_url"`
}

type KickstarterConfig struct {
	// URLTemplate содержит плейсхолдеры {category_id} и {page}
	URLTemplate       string `yaml:"url_template"`
	DefaultCategoryID int    `yaml:"default_category_id"`
	CollectThreshold  int    `yaml:"collect_threshold"`
	MaxPages          int    `yaml:"max_pages"`
}

type RodConfig struct {
	Enabled          bool   `yaml:"enabled"`
	ChromePath       string `yaml:"chrome_path"`
	PageTimeoutS     int    `yaml:"page_timeout_s"`
	WaitLoadTimeoutS int    `yaml:"wait_load_timeout_s"`
}

type HttpConfig struct {
	UserAgent        string `yaml:"user_agent"`
	TotalTimeoutMS   int    `yaml:"total_timeout_ms"` // 0 - без таймаута
	CloudflareBypass bool   `yaml:"cloudflare_bypass"`
}

type PaginationConfig struct {
	MaxCursorPages int `yaml:"max_cursor_pages"` // 0 - без ограничения
}

type CurrencyConfig struct {
	Base          string  `yaml:"base"`
	USDToBaseRate float64 `yaml:"usd_to_base_rate"`
}

type ScraperConfig struct {
	// StrictNumeric: числовое поле без цифр - ошибка, а не пропуск
	StrictNumeric bool `yaml:"strict_numeric"`
}

type AggregateConfig struct {
	MinDaysLeft int `yaml:"min_days_left"`
}

type StorageConfig struct {
	Driver           string `yaml:"driver"`
	DSN              string `yaml:"dsn"`
	CommandTimeoutMS int    `yaml:"command_timeout_ms"`
}

type SchedulerConfig struct {
	Mode      string `yaml:"mode"`
	IntervalS int    `yaml:"interval_s"`
	CronExpr  string `yaml:"cron_expr"`
}

type ObservabilityConfig struct {
	LogPath  string `yaml:"log_path"`
	LogLevel string `yaml:"log_level"`
}

// Validation
func (c *Config) Validate() error {
	if c.Sources.Crowdcube.ListingURL == "" {
		return fmt.Errorf("sources.crowdcube.listing_url is required")
	}
	if !strings.HasSuffix(c.Sources.Crowdcube.ListingURL, "?") && !strings.HasSuffix(c.Sources.Crowdcube.ListingURL, "&") {
		return fmt.Errorf("sources.crowdcube.listing_url must end with '?' or '&'")
	}
	if c.Sources.Kickstarter.URLTemplate == "" {
		return fmt.Errorf("sources.kickstarter.url_template is required")
	}
	if !strings.Contains(c.Sources.Kickstarter.URLTemplate, "{page}") {
		return fmt.Errorf("sources.kickstarter.url_template must contain {page}")
	}
	if c.Sources.Kickstarter.CollectThreshold <= 0 {
		return fmt.Errorf("sources.kickstarter.collect_threshold must be > 0")
	}
	if c.Sources.Kickstarter.MaxPages < 0 {
		return fmt.Errorf("sources.kickstarter.max_pages must be >= 0")
	}
	if c.HTTP.UserAgent == "" {
		return fmt.Errorf("http.user_agent is required")
	}
	if c.HTTP.TotalTimeoutMS < 0 {
		return fmt.Errorf("http.total_timeout_ms must be >= 0")
	}
	if c.Pagination.MaxCursorPages < 0 {
		return fmt.Errorf("pagination.max_cursor_pages must be >= 0")
	}
	if c.Currency.USDToBaseRate <= 0 {
		return fmt.Errorf("currency.usd_to_base_rate must be > 0")
	}
	if c.SelectorsFile == "" {
		return fmt.Errorf("selectors_file is required")
	}
	if c.Storage.Driver != "sqlite" && c.Storage.Driver != "postgres" && c.Storage.Driver != "mssql" {
		return fmt.Errorf("storage.driver must be 'sqlite', 'postgres' or 'mssql'")
	}
	if c.Storage.DSN == "" {
		return fmt.Errorf("storage.dsn is required")
	}
	if c.Storage.CommandTimeoutMS <= 0 {
		return fmt.Errorf("storage.command_timeout_ms must be > 0")
	}
	if c.Scheduler.Mode != "interval" && c.Scheduler.Mode != "cron" && c.Scheduler.Mode != "oneshot" {
		return fmt.Errorf("scheduler.mode must be 'interval', 'cron' or 'oneshot'")
	}
	if c.Scheduler.Mode == "interval" && c.Scheduler.IntervalS <= 0 {
		return fmt.Errorf("scheduler.interval_s must be > 0 when mode is 'interval'")
	}
	if c.Scheduler.Mode == "cron" && c.Scheduler.CronExpr == "" {
		return fmt.Errorf("scheduler.cron_expr must be set when mode is 'cron'")
	}
	if c.Observability.LogLevel == "" {
		return fmt.Errorf("observability.log_level is required")
	}
	if c.Rod.Enabled {
		if c.Rod.PageTimeoutS <= 0 {
			return fmt.Errorf("rod.page_timeout_s must be > 0")
		}
		if c.Rod.WaitLoadTimeoutS <= 0 {
			return fmt.Errorf("rod.wait_load_timeout_s must be > 0")
		}
	}
	return nil
}

// Getters
func (c *Config) GetTotalTimeout() time.Duration {
	return time.Duration(c.HTTP.TotalTimeoutMS) * time.Millisecond
}

func (c *Config) GetCommandTimeout() time.Duration {
	return time.Duration(c.Storage.CommandTimeoutMS) * time.Millisecond
}

func (c *Config) GetSchedulerInterval() time.Duration {
	return time.Duration(c.Scheduler.IntervalS) * time.Second
}

func (c *Config) GetRodPageTimeout() time.Duration {
	return time.Duration(c.Rod.PageTimeoutS) * time.Second
}

func (c *Config) GetRodWaitLoadTimeout() time.Duration {
	return time.Duration(c.Rod.WaitLoadTimeoutS) * time.Second
}

// KickstarterURL подставляет категорию и номер страницы в шаблон
func (c *Config) KickstarterURL(categoryID, page int) string {
	return strings.NewReplacer(
		"{category_id}", fmt.Sprint(categoryID),
		"{page}", fmt.Sprint(page),
	).Replace(c.Sources.Kickstarter.URLTemplate)
}
