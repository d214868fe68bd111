package crawler

import (
	"fmt"
	"net/url"
	"strings"
)

// Alphabet is the full partition set, in crawl order.
const Alphabet = "abcdefghijklmnopqrstuvwxyz"

// Config holds the settings for a crawl run.
// It is decoupled from Viper so the engine can be configured and tested
// independently of the CLI.
type Config struct {
	BaseURL      string
	Run          RunConfig
	DryRunLetter string
	AssetRoot    string
	AssetDir     string
}

// Validate checks for obviously bad configuration combinations.
func (c Config) Validate() error {
	base, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("crawler.base_url: %w", err)
	}
	if !base.IsAbs() || base.Host == "" {
		return fmt.Errorf("crawler.base_url must be an absolute URL, got %q", c.BaseURL)
	}
	if l := c.DryRunLetter; l != "" && (len(l) != 1 || !strings.Contains(Alphabet, strings.ToLower(l))) {
		return fmt.Errorf("crawler.dry_run_letter must be a single letter a-z, got %q", l)
	}
	if c.Run.DownloadImages && strings.TrimSpace(c.AssetDir) == "" {
		return fmt.Errorf("assets.dir must be set when downloads are enabled")
	}
	return nil
}

// Partitions returns the letters to crawl: a single letter in dry-run mode
// (the first of the alphabet unless overridden), otherwise the full alphabet
// in ascending order.
func (c Config) Partitions() []string {
	if c.Run.DryRun {
		if c.DryRunLetter == "" {
			return []string{Alphabet[:1]}
		}
		return []string{strings.ToLower(c.DryRunLetter)}
	}
	return strings.Split(Alphabet, "")
}
