package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Crawler.BaseURL != "https://www.hollandsevelden.nl" {
		t.Fatalf("unexpected base url %q", cfg.Crawler.BaseURL)
	}
	if cfg.Run.DryRun || !cfg.Run.DownloadImages || !cfg.Run.SaveJSON {
		t.Fatalf("expected run defaults false/true/true, got %+v", cfg.Run)
	}
	if cfg.Session.Mode != SessionHeadless || cfg.Session.NavTimeout != 30*time.Second {
		t.Fatalf("unexpected session defaults %+v", cfg.Session)
	}
	if cfg.Assets.Dir != "logos/big" || cfg.Database.Table != "clubs" {
		t.Fatalf("unexpected defaults: assets=%+v database=%+v", cfg.Assets, cfg.Database)
	}
}

func TestLoadWithFileOverrides(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	configYAML := `
crawler:
  base_url: https://staging.hollandsevelden.nl
  dry_run_letter: k
  user_agent: test-agent
run:
  dry_run: true
  download_images: false
  save_json: false
session:
  mode: static
  nav_timeout: 12s
assets:
  root: /tmp/clubs
  dir: img
output:
  provider: gcs
  gcs_bucket: clubs-bucket
  prefix: runs
database:
  dsn: postgres://localhost/clubs
  table: public.clubs
metrics:
  addr: 127.0.0.1:9102
logging:
  development: false
`
	if err := os.WriteFile(path, []byte(configYAML), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Session.Mode != SessionStatic || cfg.Session.NavTimeout != 12*time.Second {
		t.Fatalf("expected session overrides to apply: %+v", cfg.Session)
	}
	if cfg.Output.Provider != ProviderGCS || cfg.Output.GCSBucket != "clubs-bucket" {
		t.Fatalf("expected output overrides to apply: %+v", cfg.Output)
	}
	if cfg.Metrics.Addr != "127.0.0.1:9102" || cfg.Logging.Development {
		t.Fatalf("expected metrics/logging overrides to apply")
	}

	cc := cfg.CrawlerConfig()
	if !cc.Run.DryRun || cc.Run.DownloadImages || cc.Run.SaveJSON {
		t.Fatalf("expected run switches to carry over: %+v", cc.Run)
	}
	if got := cc.Partitions(); len(got) != 1 || got[0] != "k" {
		t.Fatalf("expected dry run letter k, got %v", got)
	}
	if cc.AssetRoot != "/tmp/clubs" || cc.AssetDir != "img" {
		t.Fatalf("expected asset paths to carry over: %+v", cc)
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestConfigValidateErrors(t *testing.T) {
	t.Parallel()

	base := Config{
		Crawler: CrawlerConfig{BaseURL: "https://www.hollandsevelden.nl"},
		Session: SessionConfig{Mode: SessionHeadless, NavTimeout: time.Second},
		Assets:  AssetsConfig{Dir: "logos/big", Timeout: time.Second},
		Output:  OutputConfig{Provider: ProviderLocal, Dir: "."},
	}

	tests := []struct {
		name string
		cfg  func() Config
		want string
	}{
		{
			name: "relative base url",
			cfg: func() Config {
				c := base
				c.Crawler.BaseURL = "hollandsevelden.nl"
				return c
			},
			want: "crawler.base_url",
		},
		{
			name: "unknown session mode",
			cfg: func() Config {
				c := base
				c.Session.Mode = "firefox"
				return c
			},
			want: "session.mode",
		},
		{
			name: "zero nav timeout",
			cfg: func() Config {
				c := base
				c.Session.NavTimeout = 0
				return c
			},
			want: "session.nav_timeout",
		},
		{
			name: "gcs without bucket",
			cfg: func() Config {
				c := base
				c.Output.Provider = ProviderGCS
				return c
			},
			want: "output.gcs_bucket",
		},
		{
			name: "unknown provider",
			cfg: func() Config {
				c := base
				c.Output.Provider = "s3"
				return c
			},
			want: "output.provider",
		},
		{
			name: "unsafe table name",
			cfg: func() Config {
				c := base
				c.Database = DatabaseConfig{DSN: "postgres://x", Table: "clubs; drop table x"}
				return c
			},
			want: "database.table",
		},
		{
			name: "downloads without dir",
			cfg: func() Config {
				c := base
				c.Run.DownloadImages = true
				c.Assets.Dir = ""
				return c
			},
			want: "assets.dir",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.cfg().Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}

	if err := base.Validate(); err != nil {
		t.Fatalf("expected base config to be valid: %v", err)
	}
}
