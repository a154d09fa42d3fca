// Package config loads and validates service configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all configuration knobs loaded via Viper.
type Config struct {
	Logging   LoggingConfig   `mapstructure:"logging"`
	Crawler   CrawlerConfig   `mapstructure:"crawler"`
	Selectors SelectorsConfig `mapstructure:"selectors"`
	Store     StoreConfig     `mapstructure:"store"`
	Archive   ArchiveConfig   `mapstructure:"archive"`
	Notify    NotifyConfig    `mapstructure:"notify"`
	Server    ServerConfig    `mapstructure:"server"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// CrawlerConfig governs the crawl session.
type CrawlerConfig struct {
	StartURL           string  `mapstructure:"start_url"`
	SearchTerms        string  `mapstructure:"search_terms"`
	SearchLocation     string  `mapstructure:"search_location"`
	UserAgent          string  `mapstructure:"user_agent"`
	Headless           bool    `mapstructure:"headless"`
	NavTimeoutSec      int     `mapstructure:"nav_timeout_seconds"`
	ElementTimeoutSec  int     `mapstructure:"element_timeout_seconds"`
	ObstructionWaitSec int     `mapstructure:"obstruction_wait_seconds"`
	PaginationWaitSec  int     `mapstructure:"pagination_wait_seconds"`
	SettleIntervalMs   int     `mapstructure:"settle_interval_ms"`
	SettleTimeoutSec   int     `mapstructure:"settle_timeout_seconds"`
	PolitenessQPS      float64 `mapstructure:"politeness_qps"`
	AutoConfirm        bool    `mapstructure:"auto_confirm"`
}

// SelectorsConfig optionally overrides page locators. Empty values keep the
// built-in defaults. Prefix a value with "xpath=" to use XPath instead of CSS.
type SelectorsConfig struct {
	SearchTerms    string `mapstructure:"search_terms"`
	SearchLocation string `mapstructure:"search_location"`
	ListingCard    string `mapstructure:"listing_card"`
	NextPage       string `mapstructure:"next_page"`
	ConsentAccept  string `mapstructure:"consent_accept"`
	Challenge      string `mapstructure:"challenge"`
	Title          string `mapstructure:"title"`
	Location       string `mapstructure:"location"`
	Salary         string `mapstructure:"salary"`
	Benefits       string `mapstructure:"benefits"`
	Description    string `mapstructure:"description"`
}

// StoreConfig selects and configures the record store backend.
type StoreConfig struct {
	Provider string `mapstructure:"provider"` // memory | sqlite | postgres
	Path     string `mapstructure:"path"`     // sqlite file path
	DSN      string `mapstructure:"dsn"`      // postgres dsn
}

// ArchiveConfig selects the detail-view snapshot backend.
type ArchiveConfig struct {
	Provider string `mapstructure:"provider"` // none | local | gcs
	Dir      string `mapstructure:"dir"`
	Bucket   string `mapstructure:"bucket"`
	Prefix   string `mapstructure:"prefix"`
}

// NotifyConfig configures delivery sinks for new listings.
type NotifyConfig struct {
	TelegramToken  string `mapstructure:"telegram_token"`
	TelegramChatID int64  `mapstructure:"telegram_chat_id"`
	PubSubProject  string `mapstructure:"pubsub_project"`
	PubSubTopic    string `mapstructure:"pubsub_topic"`
}

// ServerConfig controls the review HTTP server.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("JOBTRAWLER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.development", true)
	v.SetDefault("crawler.start_url", "https://www.indeed.fr")
	v.SetDefault("crawler.user_agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/94.0.4606.61 Safari/537.36")
	v.SetDefault("crawler.headless", true)
	v.SetDefault("crawler.nav_timeout_seconds", 45)
	v.SetDefault("crawler.element_timeout_seconds", 5)
	v.SetDefault("crawler.obstruction_wait_seconds", 3)
	v.SetDefault("crawler.pagination_wait_seconds", 10)
	v.SetDefault("crawler.settle_interval_ms", 500)
	v.SetDefault("crawler.settle_timeout_seconds", 10)
	v.SetDefault("crawler.politeness_qps", 0.5)
	v.SetDefault("crawler.auto_confirm", false)
	v.SetDefault("store.provider", "sqlite")
	v.SetDefault("store.path", "data/jobs.db")
	v.SetDefault("archive.provider", "none")
	v.SetDefault("archive.prefix", "listings")
	v.SetDefault("server.port", 8080)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Crawler.StartURL == "" {
		return fmt.Errorf("crawler.start_url must be set")
	}
	if c.Crawler.NavTimeoutSec <= 0 {
		return fmt.Errorf("crawler.nav_timeout_seconds must be > 0")
	}
	switch c.Store.Provider {
	case "memory":
	case "sqlite":
		if c.Store.Path == "" {
			return fmt.Errorf("store.path must be set for the sqlite provider")
		}
	case "postgres":
		if c.Store.DSN == "" {
			return fmt.Errorf("store.dsn must be set for the postgres provider")
		}
	default:
		return fmt.Errorf("unknown store provider %q", c.Store.Provider)
	}
	switch c.Archive.Provider {
	case "none", "":
	case "local":
		if c.Archive.Dir == "" {
			return fmt.Errorf("archive.dir must be set for the local provider")
		}
	case "gcs":
		if c.Archive.Bucket == "" {
			return fmt.Errorf("archive.bucket must be set for the gcs provider")
		}
	default:
		return fmt.Errorf("unknown archive provider %q", c.Archive.Provider)
	}
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	return nil
}

// NavTimeout returns the navigation timeout as a duration.
func (c CrawlerConfig) NavTimeout() time.Duration {
	return time.Duration(c.NavTimeoutSec) * time.Second
}

// ElementTimeout returns the element lookup timeout as a duration.
func (c CrawlerConfig) ElementTimeout() time.Duration {
	return time.Duration(c.ElementTimeoutSec) * time.Second
}

// ObstructionWait returns the obstruction detection wait as a duration.
func (c CrawlerConfig) ObstructionWait() time.Duration {
	return time.Duration(c.ObstructionWaitSec) * time.Second
}

// PaginationWait returns the next-page wait as a duration.
func (c CrawlerConfig) PaginationWait() time.Duration {
	return time.Duration(c.PaginationWaitSec) * time.Second
}

// SettleInterval returns the content-settle polling interval as a duration.
func (c CrawlerConfig) SettleInterval() time.Duration {
	return time.Duration(c.SettleIntervalMs) * time.Millisecond
}

// SettleTimeout returns the content-settle deadline as a duration.
func (c CrawlerConfig) SettleTimeout() time.Duration {
	return time.Duration(c.SettleTimeoutSec) * time.Second
}
