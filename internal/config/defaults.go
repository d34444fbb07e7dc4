package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultDBPort        = 5432
	DefaultDBSSLMode     = "prefer"
	DefaultMaxConns      = 10
	DefaultMinConns      = 2
	DefaultPricesBaseURL = "https://query1.finance.yahoo.com"
	DefaultInterval      = "1d"
	DefaultTimeout       = 10 * time.Second
	DefaultMaxRetries    = 3
	DefaultWikiDir       = "data/wiki_corps"
	DefaultOHLCDir       = "data/ohlc"
	DefaultRetention     = 30
	DefaultDashboardPort = 8080
	DefaultLogLevel      = "info"
)

func (c *Config) applyDefaults() {
	// Database defaults
	if c.Database.Port == 0 {
		c.Database.Port = DefaultDBPort
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = DefaultDBSSLMode
	}
	if c.Database.MaxConns == 0 {
		c.Database.MaxConns = DefaultMaxConns
	}
	if c.Database.MinConns == 0 {
		c.Database.MinConns = DefaultMinConns
	}

	// Prices defaults
	if c.Sources.Prices.BaseURL == "" {
		c.Sources.Prices.BaseURL = DefaultPricesBaseURL
	}
	if c.Sources.Prices.Interval == "" {
		c.Sources.Prices.Interval = DefaultInterval
	}
	if c.Sources.Prices.Timeout == 0 {
		c.Sources.Prices.Timeout = DefaultTimeout
	}
	if c.Sources.Prices.MaxRetries == 0 {
		c.Sources.Prices.MaxRetries = DefaultMaxRetries
	}

	// Paths defaults
	if c.Paths.WikiDir == "" {
		c.Paths.WikiDir = DefaultWikiDir
	}
	if c.Paths.OHLCDir == "" {
		c.Paths.OHLCDir = DefaultOHLCDir
	}
	if c.Paths.RetentionDays == 0 {
		c.Paths.RetentionDays = DefaultRetention
	}

	// Dashboard defaults
	if c.Dashboard.Port == 0 {
		c.Dashboard.Port = DefaultDashboardPort
	}

	// Logging defaults
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}

	// Scrape targets: an index with no explicit range accepts any count
	for name, src := range c.Sources.Wikipedia.Indices {
		if len(src.ExpectedRange) == 0 {
			src.ExpectedRange = []int{0, 9999}
			c.Sources.Wikipedia.Indices[name] = src
		}
	}
}
