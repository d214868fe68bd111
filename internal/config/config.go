// Package config loads and validates crawler configuration via Viper.
package config

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/JakeFAU/clubs-crawler/internal/crawler"
)

// Session modes.
const (
	SessionHeadless = "headless"
	SessionStatic   = "static"
)

// Output providers.
const (
	ProviderLocal = "local"
	ProviderGCS   = "gcs"
)

// Config captures all configuration knobs loaded via Viper.
type Config struct {
	Crawler  CrawlerConfig  `mapstructure:"crawler"`
	Run      RunConfig      `mapstructure:"run"`
	Session  SessionConfig  `mapstructure:"session"`
	Assets   AssetsConfig   `mapstructure:"assets"`
	Output   OutputConfig   `mapstructure:"output"`
	Database DatabaseConfig `mapstructure:"database"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// CrawlerConfig points the crawl at the directory site.
type CrawlerConfig struct {
	BaseURL       string `mapstructure:"base_url"`
	DryRunLetter  string `mapstructure:"dry_run_letter"`
	UserAgent     string `mapstructure:"user_agent"`
	RespectRobots bool   `mapstructure:"respect_robots"`
}

// RunConfig holds the three run switches. Prompts and flags override them.
type RunConfig struct {
	DryRun         bool `mapstructure:"dry_run"`
	DownloadImages bool `mapstructure:"download_images"`
	SaveJSON       bool `mapstructure:"save_json"`
}

// SessionConfig selects and tunes the browsing session.
type SessionConfig struct {
	Mode       string        `mapstructure:"mode"`
	NavTimeout time.Duration `mapstructure:"nav_timeout"`
	ExecPath   string        `mapstructure:"exec_path"`
	Headful    bool          `mapstructure:"headful"`
}

// AssetsConfig sets where downloaded logos land.
type AssetsConfig struct {
	Root    string        `mapstructure:"root"`
	Dir     string        `mapstructure:"dir"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// OutputConfig chooses the blob store the JSON document is written to.
type OutputConfig struct {
	Provider  string `mapstructure:"provider"`
	Dir       string `mapstructure:"dir"`
	GCSBucket string `mapstructure:"gcs_bucket"`
	Prefix    string `mapstructure:"prefix"`
}

// DatabaseConfig enables the optional Postgres sink when DSN is set.
type DatabaseConfig struct {
	DSN   string `mapstructure:"dsn"`
	Table string `mapstructure:"table"`
}

// MetricsConfig enables the metrics endpoint when Addr is set.
type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("CLUBS")
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
	defaults := crawler.DefaultRunConfig()
	v.SetDefault("crawler.base_url", "https://www.hollandsevelden.nl")
	v.SetDefault("crawler.dry_run_letter", "a")
	v.SetDefault("crawler.user_agent", "clubs-crawler/1.0")
	v.SetDefault("crawler.respect_robots", false)
	v.SetDefault("run.dry_run", defaults.DryRun)
	v.SetDefault("run.download_images", defaults.DownloadImages)
	v.SetDefault("run.save_json", defaults.SaveJSON)
	v.SetDefault("session.mode", SessionHeadless)
	v.SetDefault("session.nav_timeout", "30s")
	v.SetDefault("session.exec_path", "")
	v.SetDefault("session.headful", false)
	v.SetDefault("assets.root", ".")
	v.SetDefault("assets.dir", "logos/big")
	v.SetDefault("assets.timeout", "30s")
	v.SetDefault("output.provider", ProviderLocal)
	v.SetDefault("output.dir", ".")
	v.SetDefault("output.gcs_bucket", "")
	v.SetDefault("output.prefix", "")
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.table", "clubs")
	v.SetDefault("metrics.addr", "")
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if err := c.CrawlerConfig().Validate(); err != nil {
		return err
	}
	switch c.Session.Mode {
	case SessionHeadless, SessionStatic:
	default:
		return fmt.Errorf("session.mode must be %q or %q, got %q", SessionHeadless, SessionStatic, c.Session.Mode)
	}
	if c.Session.NavTimeout <= 0 {
		return fmt.Errorf("session.nav_timeout must be > 0")
	}
	if c.Assets.Timeout <= 0 {
		return fmt.Errorf("assets.timeout must be > 0")
	}
	switch c.Output.Provider {
	case ProviderLocal:
		if strings.TrimSpace(c.Output.Dir) == "" {
			return fmt.Errorf("output.dir must be set for the local provider")
		}
	case ProviderGCS:
		if c.Output.GCSBucket == "" {
			return fmt.Errorf("output.gcs_bucket must be set for the gcs provider")
		}
	default:
		return fmt.Errorf("output.provider must be %q or %q, got %q", ProviderLocal, ProviderGCS, c.Output.Provider)
	}
	if c.Database.DSN != "" && !tableName.MatchString(c.Database.Table) {
		return fmt.Errorf("database.table %q is not a valid identifier", c.Database.Table)
	}
	return nil
}

// CrawlerConfig converts the loaded settings into the engine's configuration.
func (c Config) CrawlerConfig() crawler.Config {
	return crawler.Config{
		BaseURL: c.Crawler.BaseURL,
		Run: crawler.RunConfig{
			DryRun:         c.Run.DryRun,
			DownloadImages: c.Run.DownloadImages,
			SaveJSON:       c.Run.SaveJSON,
		},
		DryRunLetter: c.Crawler.DryRunLetter,
		AssetRoot:    c.Assets.Root,
		AssetDir:     c.Assets.Dir,
	}
}
