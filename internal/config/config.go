// Package config handles configuration loading for tickerpulse.
// It supports YAML config files with environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/seenimoa/tickerpulse/internal/datasource"
	"github.com/seenimoa/tickerpulse/internal/sheets"
)

// Config represents the complete application configuration.
type Config struct {
	News     NewsConfig     `mapstructure:"news"     yaml:"news"`
	Run      RunConfig      `mapstructure:"run"      yaml:"run"`
	Sheet    SheetConfig    `mapstructure:"sheet"    yaml:"sheet"`
	Schedule ScheduleConfig `mapstructure:"schedule" yaml:"schedule"`
	Logging  LoggingConfig  `mapstructure:"logging"  yaml:"logging"`
}

// NewsConfig holds the news API credentials and fetch policy.
type NewsConfig struct {
	BaseURL               string        `mapstructure:"base_url"                 yaml:"base_url"`
	KeyID                 string        `mapstructure:"key_id"                   yaml:"key_id"`
	SecretKey             string        `mapstructure:"secret_key"               yaml:"secret_key"`
	MaxArticles           int           `mapstructure:"max_articles"             yaml:"max_articles"`
	LookbackDays          int           `mapstructure:"lookback_days"            yaml:"lookback_days"`
	MaxRateLimitWait      time.Duration `mapstructure:"max_rate_limit_wait"      yaml:"max_rate_limit_wait"`
	RateLimitFallbackWait time.Duration `mapstructure:"rate_limit_fallback_wait" yaml:"rate_limit_fallback_wait"`
	Timeout               time.Duration `mapstructure:"timeout"                  yaml:"timeout"`
}

// RunConfig holds per-run pacing settings.
type RunConfig struct {
	InterTickerDelay time.Duration `mapstructure:"inter_ticker_delay" yaml:"inter_ticker_delay"`
	MaxDuration      time.Duration `mapstructure:"max_duration"       yaml:"max_duration"` // 0 = no ceiling
}

// SheetConfig locates the worksheet and its service-account credentials.
type SheetConfig struct {
	SpreadsheetID   string `mapstructure:"spreadsheet_id"   yaml:"spreadsheet_id"`
	Worksheet       string `mapstructure:"worksheet"        yaml:"worksheet"`
	TickerColumn    string `mapstructure:"ticker_column"    yaml:"ticker_column"`
	OutputColumn    string `mapstructure:"output_column"    yaml:"output_column"`
	HeaderRow       int    `mapstructure:"header_row"       yaml:"header_row"`
	CredentialsJSON string `mapstructure:"credentials_json" yaml:"credentials_json"`
	CredentialsFile string `mapstructure:"credentials_file" yaml:"credentials_file"`
}

// ScheduleConfig holds the periodic run schedule.
type ScheduleConfig struct {
	Cron string `mapstructure:"cron" yaml:"cron"` // standard 5-field spec, UTC
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format"` // "console" or "json"
}

const envPrefix = "TICKERPULSE"

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.tickerpulse/config.yaml (home directory)
//  3. /etc/tickerpulse/config.yaml (system)
//
// Environment variables override config file values.
// Format: TICKERPULSE_<SECTION>_<KEY>, e.g., TICKERPULSE_NEWS_MAX_ARTICLES
func Load() (*Config, error) {
	v := newViper()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".tickerpulse"))
	v.AddConfigPath("/etc/tickerpulse")

	// Read config file (not required to exist)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return decode(v)
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	overrideFromEnv(&cfg)
	cfg.normalize()
	return &cfg, nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// News defaults
	v.SetDefault("news.base_url", datasource.DefaultBaseURL)
	v.SetDefault("news.key_id", "")
	v.SetDefault("news.secret_key", "")
	v.SetDefault("news.max_articles", datasource.DefaultMaxArticles)
	v.SetDefault("news.lookback_days", datasource.DefaultLookbackDays)
	v.SetDefault("news.max_rate_limit_wait", datasource.DefaultMaxRateLimitWait)
	v.SetDefault("news.rate_limit_fallback_wait", datasource.DefaultRateLimitFallbackWait)
	v.SetDefault("news.timeout", datasource.DefaultTimeout)

	// Run defaults
	v.SetDefault("run.inter_ticker_delay", 1200*time.Millisecond)
	v.SetDefault("run.max_duration", time.Duration(0))

	// Sheet defaults (columns A–O are never written)
	v.SetDefault("sheet.spreadsheet_id", "")
	v.SetDefault("sheet.credentials_json", "")
	v.SetDefault("sheet.credentials_file", "")
	v.SetDefault("sheet.worksheet", "Kraken-Screener")
	v.SetDefault("sheet.ticker_column", "A")
	v.SetDefault("sheet.output_column", "P")
	v.SetDefault("sheet.header_row", 1)

	v.SetDefault("schedule.cron", "0 */6 * * *")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// overrideFromEnv explicitly reads sensitive keys from environment variables.
// The unprefixed Alpaca and Google names are accepted as well.
func overrideFromEnv(cfg *Config) {
	if key := firstEnv("TICKERPULSE_NEWS_KEY_ID", "APCA_API_KEY_ID"); key != "" {
		cfg.News.KeyID = key
	}
	if key := firstEnv("TICKERPULSE_NEWS_SECRET_KEY", "APCA_API_SECRET_KEY"); key != "" {
		cfg.News.SecretKey = key
	}
	if creds := firstEnv("TICKERPULSE_SHEET_CREDENTIALS_JSON", "GOOGLE_CREDS_JSON"); creds != "" {
		cfg.Sheet.CredentialsJSON = creds
	}
}

// normalize clamps policy values into their valid ranges.
func (c *Config) normalize() {
	if c.News.MaxArticles <= 0 {
		c.News.MaxArticles = datasource.DefaultMaxArticles
	}
	if c.News.MaxArticles > datasource.MaxPageSize {
		c.News.MaxArticles = datasource.MaxPageSize
	}
	if c.News.LookbackDays <= 0 {
		c.News.LookbackDays = datasource.DefaultLookbackDays
	}
	if c.Run.InterTickerDelay < 0 {
		c.Run.InterTickerDelay = 0
	}
	c.Sheet.TickerColumn = strings.ToUpper(strings.TrimSpace(c.Sheet.TickerColumn))
	c.Sheet.OutputColumn = strings.ToUpper(strings.TrimSpace(c.Sheet.OutputColumn))
}

// FetcherConfig returns the news fetch policy.
func (c *Config) FetcherConfig() datasource.FetcherConfig {
	return datasource.FetcherConfig{
		MaxArticles:      c.News.MaxArticles,
		LookbackDays:     c.News.LookbackDays,
		MaxRateLimitWait: c.News.MaxRateLimitWait,
		FallbackWait:     c.News.RateLimitFallbackWait,
	}
}

// SheetsConfig returns the worksheet layout.
func (c *Config) SheetsConfig() sheets.Config {
	return sheets.Config{
		SpreadsheetID: c.Sheet.SpreadsheetID,
		Worksheet:     c.Sheet.Worksheet,
		TickerColumn:  c.Sheet.TickerColumn,
		OutputColumn:  c.Sheet.OutputColumn,
		HeaderRow:     c.Sheet.HeaderRow,
	}
}

// Credentials returns the sheet service-account JSON from the inline value
// or, failing that, the credentials file.
func (c *Config) Credentials() ([]byte, error) {
	if c.Sheet.CredentialsJSON != "" {
		return []byte(c.Sheet.CredentialsJSON), nil
	}
	if c.Sheet.CredentialsFile == "" {
		return nil, nil
	}
	b, err := os.ReadFile(c.Sheet.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read credentials file: %w", err)
	}
	return b, nil
}

func firstEnv(names ...string) string {
	for _, n := range names {
		if v := os.Getenv(n); v != "" {
			return v
		}
	}
	return ""
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
