// Package config handles loading and validating the application configuration
// from YAML files with environment variable substitution.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Flipp     FlippConfig     `yaml:"flipp"`
	Schedule  ScheduleConfig  `yaml:"schedule"`
	Cache     CacheConfig     `yaml:"cache"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Export    ExportConfig    `yaml:"export"`
	Alerts    AlertsConfig    `yaml:"alerts"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig defines the Echo HTTP server settings.
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// DatabaseConfig defines PostgreSQL connection settings. Persistence is
// optional: with no host configured the catalog lives in memory only.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
	PoolSize int    `yaml:"pool_size"`
}

// Enabled reports whether a database is configured.
func (d *DatabaseConfig) Enabled() bool {
	return d.Host != ""
}

// DSN returns a PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s pool_max_conns=%d",
		d.Host, d.Port, d.Name, d.User, d.Password, d.SSLMode, d.PoolSize,
	)
}

// FlippConfig defines the flyer aggregator API settings.
type FlippConfig struct {
	BaseURL    string `yaml:"base_url"`
	WebURL     string `yaml:"web_url"`
	PostalCode string `yaml:"postal_code"`
	Locale     string `yaml:"locale"`

	// Stores maps a store category to the merchant-name variants that
	// identify it, e.g. "no frills": ["no frills", "nofrills"].
	Stores         map[string][]string `yaml:"stores"`
	FirstStoreOnly bool                `yaml:"first_store_only"`

	// SearchTerms are queried against the item search endpoint in addition
	// to walking whole flyers. Empty disables item search.
	SearchTerms  []string `yaml:"search_terms"`
	PerTermLimit int      `yaml:"per_term_limit"`

	Concurrency int             `yaml:"concurrency"`
	Timeout     time.Duration   `yaml:"timeout"`
	RateLimit   RateLimitConfig `yaml:"rate_limit"`
}

// RateLimitConfig defines Flipp API rate limiting settings.
type RateLimitConfig struct {
	PerSecond float64 `yaml:"per_second"`
	Burst     int     `yaml:"burst"`
}

// ScheduleConfig defines cron intervals.
type ScheduleConfig struct {
	RefreshInterval time.Duration `yaml:"refresh_interval"`
	RefreshOnStart  bool          `yaml:"refresh_on_start"`
}

// CacheConfig defines the optional Redis search cache.
type CacheConfig struct {
	Enabled  bool          `yaml:"enabled"`
	URL      string        `yaml:"url"`
	Address  string        `yaml:"address"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

// TelemetryConfig defines OpenTelemetry export settings. Tracing and OTLP
// metrics are disabled when Endpoint is empty.
type TelemetryConfig struct {
	Endpoint    string  `yaml:"endpoint"`
	Insecure    bool    `yaml:"insecure"`
	ServiceName string  `yaml:"service_name"`
	SampleRatio float64 `yaml:"sample_ratio"`
}

// Enabled reports whether an OTLP endpoint is configured.
func (t *TelemetryConfig) Enabled() bool {
	return t.Endpoint != ""
}

// ExportConfig defines CSV export settings.
type ExportConfig struct {
	Dir string `yaml:"dir"`
}

// AlertsConfig defines the deal alerts sent after each successful refresh.
// Alerts are logged and discarded when WebhookURL is empty.
type AlertsConfig struct {
	WebhookURL string        `yaml:"webhook_url"`
	Watches    []WatchConfig `yaml:"watches"`
}

// WatchConfig is one search whose best deals are announced.
type WatchConfig struct {
	Name         string   `yaml:"name"`
	Term         string   `yaml:"term"`
	SortBy       string   `yaml:"sort_by"`
	Stores       []string `yaml:"stores"`
	Limit        int      `yaml:"limit"`
	MaxUnitPrice string   `yaml:"max_unit_price"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// DefaultStores are the chains tracked when no stores are configured.
func DefaultStores() map[string][]string {
	return map[string][]string{
		"food basics": {"food basics", "foodbasics"},
		"walmart":     {"walmart"},
		"freshco":     {"freshco", "fresh co"},
		"metro":       {"metro"},
		"no frills":   {"no frills", "nofrills"},
	}
}

// LoadEnv loads KEY=VALUE pairs from the given dotenv files into the process
// environment without overriding variables that are already set. Missing
// files are skipped.
func LoadEnv(files ...string) error {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("loading env file %s: %w", f, err)
		}
	}
	return nil
}

// Load reads and parses a YAML config file, performing environment variable
// substitution and validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // config path from trusted CLI flag
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML config content, performing environment variable
// substitution, applying defaults and validating the result.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Default returns a configuration with every default applied, suitable for
// running without a config file.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	applyServerDefaults(&cfg.Server)
	applyDatabaseDefaults(&cfg.Database)
	applyFlippDefaults(&cfg.Flipp)
	applyScheduleDefaults(&cfg.Schedule)
	applyCacheDefaults(&cfg.Cache)
	applyTelemetryDefaults(&cfg.Telemetry)
	applyExportDefaults(&cfg.Export)
	applyAlertsDefaults(&cfg.Alerts)
	applyLoggingDefaults(&cfg.Logging)
}

func applyServerDefaults(s *ServerConfig) {
	if s.Host == "" {
		s.Host = "0.0.0.0"
	}
	if s.Port == 0 {
		s.Port = 8080
	}
	if s.ReadTimeout == 0 {
		s.ReadTimeout = 30 * time.Second
	}
	if s.WriteTimeout == 0 {
		s.WriteTimeout = 2 * time.Minute
	}
}

func applyDatabaseDefaults(d *DatabaseConfig) {
	if d.Port == 0 {
		d.Port = 5432
	}
	if d.SSLMode == "" {
		d.SSLMode = "disable"
	}
	if d.PoolSize == 0 {
		d.PoolSize = 10
	}
}

func applyFlippDefaults(f *FlippConfig) {
	if f.BaseURL == "" {
		f.BaseURL = "https://cdn-gateflipp.flippback.com/bf/flipp"
	}
	if f.WebURL == "" {
		f.WebURL = "https://flipp.com/en-ca"
	}
	if f.PostalCode == "" {
		f.PostalCode = "M5H2N2"
	}
	f.PostalCode = strings.ToUpper(strings.ReplaceAll(f.PostalCode, " ", ""))
	if f.Locale == "" {
		f.Locale = "en-CA"
	}
	if len(f.Stores) == 0 {
		f.Stores = DefaultStores()
	}
	if f.PerTermLimit == 0 {
		f.PerTermLimit = 5
	}
	if f.Concurrency == 0 {
		f.Concurrency = 4
	}
	if f.Timeout == 0 {
		f.Timeout = 30 * time.Second
	}
	if f.RateLimit.PerSecond == 0 {
		f.RateLimit.PerSecond = 3.0
	}
	if f.RateLimit.Burst == 0 {
		f.RateLimit.Burst = 5
	}
}

func applyScheduleDefaults(s *ScheduleConfig) {
	if s.RefreshInterval == 0 {
		s.RefreshInterval = 6 * time.Hour
	}
}

func applyCacheDefaults(c *CacheConfig) {
	if c.TTL == 0 {
		c.TTL = 10 * time.Minute
	}
}

func applyTelemetryDefaults(t *TelemetryConfig) {
	if t.ServiceName == "" {
		t.ServiceName = "flyer-price-tracker"
	}
	if t.SampleRatio == 0 {
		t.SampleRatio = 1.0
	}
}

func applyExportDefaults(e *ExportConfig) {
	if e.Dir == "" {
		e.Dir = "."
	}
}

func applyAlertsDefaults(a *AlertsConfig) {
	for i := range a.Watches {
		w := &a.Watches[i]
		if w.Name == "" {
			w.Name = w.Term
		}
		if w.SortBy == "" {
			w.SortBy = "unit_price"
		}
		if w.Limit == 0 {
			w.Limit = 3
		}
	}
}

func applyLoggingDefaults(l *LoggingConfig) {
	if l.Level == "" {
		l.Level = "info"
	}
	if l.Format == "" {
		l.Format = "text"
	}
}

func validate(cfg *Config) error {
	var errs []error

	if cfg.Database.Enabled() {
		if cfg.Database.Name == "" {
			errs = append(errs, fmt.Errorf("database.name is required when database.host is set"))
		}
		if cfg.Database.User == "" {
			errs = append(errs, fmt.Errorf("database.user is required when database.host is set"))
		}
	}

	for store, variants := range cfg.Flipp.Stores {
		if strings.TrimSpace(store) == "" {
			errs = append(errs, fmt.Errorf("flipp.stores keys must not be empty"))
		}
		if len(variants) == 0 {
			errs = append(errs, fmt.Errorf("flipp.stores[%q] needs at least one merchant name", store))
		}
	}

	if cfg.Flipp.Concurrency < 0 {
		errs = append(errs, fmt.Errorf("flipp.concurrency must not be negative"))
	}
	if cfg.Flipp.PerTermLimit < 0 {
		errs = append(errs, fmt.Errorf("flipp.per_term_limit must not be negative"))
	}
	if cfg.Flipp.RateLimit.PerSecond < 0 {
		errs = append(errs, fmt.Errorf("flipp.rate_limit.per_second must not be negative"))
	}

	if cfg.Schedule.RefreshInterval < time.Minute {
		errs = append(errs, fmt.Errorf("schedule.refresh_interval must be at least 1m (got %s)", cfg.Schedule.RefreshInterval))
	}

	if cfg.Cache.Enabled && cfg.Cache.URL == "" && cfg.Cache.Address == "" {
		errs = append(errs, fmt.Errorf("cache.url or cache.address is required when cache is enabled"))
	}

	if cfg.Telemetry.SampleRatio < 0 || cfg.Telemetry.SampleRatio > 1 {
		errs = append(errs, fmt.Errorf("telemetry.sample_ratio must be between 0 and 1 (got %g)", cfg.Telemetry.SampleRatio))
	}

	for i, w := range cfg.Alerts.Watches {
		if strings.TrimSpace(w.Term) == "" {
			errs = append(errs, fmt.Errorf("alerts.watches[%d].term is required", i))
		}
		switch w.SortBy {
		case "price", "unit_price", "quantity":
		default:
			errs = append(errs, fmt.Errorf("alerts.watches[%d].sort_by must be one of: price, unit_price, quantity (got %q)", i, w.SortBy))
		}
		if w.MaxUnitPrice != "" {
			if _, err := decimal.NewFromString(w.MaxUnitPrice); err != nil {
				errs = append(errs, fmt.Errorf("alerts.watches[%d].max_unit_price %q is not a number", i, w.MaxUnitPrice))
			}
		}
	}

	switch cfg.Logging.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("logging.format must be one of: text, json (got %q)", cfg.Logging.Format))
	}

	return errors.Join(errs...)
}
