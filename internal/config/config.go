package config

import "time"

// Config is the root configuration for the pipeline binaries.
type Config struct {
	Database  DBConfig        `yaml:"database"`
	Sources   SourcesConfig   `yaml:"sources"`
	Paths     PathsConfig     `yaml:"paths"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	Schedule  ScheduleConfig  `yaml:"schedule"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// DBConfig holds the PostgreSQL connection settings.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// SourcesConfig groups the two source adapters.
type SourcesConfig struct {
	Wikipedia WikipediaConfig `yaml:"wikipedia"`
	Prices    PricesConfig    `yaml:"prices"`
}

// WikipediaConfig holds the scrape targets, keyed by index name.
type WikipediaConfig struct {
	Indices map[string]IndexSource `yaml:"indices"`
}

// IndexSource describes one Wikipedia index-membership page.
type IndexSource struct {
	URL        string              `yaml:"url"`
	TableIndex int                 `yaml:"table_index"`
	// ExpectedRange is the plausible [min, max] member count; a scrape
	// outside the range logs a warning but is not rejected.
	ExpectedRange []int `yaml:"expected_range"`
	// Columns maps canonical field names (ticker, company, sector) to the
	// header spellings that may appear in the wikitable.
	Columns map[string][]string `yaml:"columns"`
}

// PricesConfig holds the price-history API settings.
type PricesConfig struct {
	BaseURL    string        `yaml:"base_url"`
	Interval   string        `yaml:"interval"`
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"`
}

// PathsConfig holds CSV staging directories and retention.
type PathsConfig struct {
	WikiDir       string `yaml:"wiki_dir"`
	OHLCDir       string `yaml:"ohlc_dir"`
	RetentionDays int    `yaml:"retention_days"`
}

// DashboardConfig holds the read-only dashboard server settings.
type DashboardConfig struct {
	Port int `yaml:"port"`
}

// ScheduleConfig holds cron expressions for the daemon.
type ScheduleConfig struct {
	Scrape  string `yaml:"scrape"`
	Fetch   string `yaml:"fetch"`
	Load    string `yaml:"load"`
	Cleanup string `yaml:"cleanup"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
	Dir    string `yaml:"dir"` // empty disables file logging
}
