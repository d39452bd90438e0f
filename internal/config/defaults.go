package config

const (
	DefaultCrowdcubeURL   = "https://www.crowdcube.com/investments?"
	DefaultKickstarterURL = "https://www.kickstarter.com/discover/advanced?google_chrome_workaround&category_id={category_id}&woe_id=0&sort=magic&seed=2481827&page={page}"
	DefaultUserAgent      = "Mozilla/5.0 (Windows NT 6.1; WOW64; rv:28.0) Gecko/20100101 Firefox/28.0"
	DefaultUSDToGBPRate   = 0.82
	DefaultSQLiteDSN      = "crowdfund.db"
)

// Default возвращает конфиг со значениями по умолчанию. LoadConfig декодирует
// YAML поверх него, поэтому явно заданный 0 (например, max_cursor_pages: 0 -
// без ограничения) сохраняется, а отсутствующий ключ получает значение отсюда.
func Default() *Config {
	return &Config{
		Sources: SourcesConfig{
			Crowdcube: CrowdcubeConfig{ListingURL: DefaultCrowdcubeURL},
			Kickstarter: KickstarterConfig{
				URLTemplate:       DefaultKickstarterURL,
				DefaultCategoryID: 1,
				CollectThreshold:  100,
				MaxPages:          50,
			},
		},
		Rod: RodConfig{
			PageTimeoutS:     60,
			WaitLoadTimeoutS: 30,
		},
		HTTP:          HttpConfig{UserAgent: DefaultUserAgent},
		Pagination:    PaginationConfig{MaxCursorPages: 500},
		Currency:      CurrencyConfig{Base: "GBP", USDToBaseRate: DefaultUSDToGBPRate},
		SelectorsFile: "selectors/crowdcube.yaml",
		Aggregate:     AggregateConfig{MinDaysLeft: 10},
		Storage: StorageConfig{
			Driver:           "sqlite",
			CommandTimeoutMS: 30000,
		},
		Scheduler:     SchedulerConfig{Mode: "oneshot"},
		Observability: ObservabilityConfig{LogLevel: "info"},
	}
}

// applyDefaults дополняет то, что зависит от других полей; вызывается до Validate
func (c *Config) applyDefaults() {
	if c.Storage.DSN == "" && c.Storage.Driver == "sqlite" {
		c.Storage.DSN = DefaultSQLiteDSN
	}
}
