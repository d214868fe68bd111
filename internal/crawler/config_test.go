package crawler

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigPartitions(t *testing.T) {
	t.Parallel()

	full := Config{}.Partitions()
	assert.Len(t, full, 26)
	assert.Equal(t, "a", full[0])
	assert.Equal(t, "z", full[25])

	assert.Equal(t, []string{"a"}, Config{Run: RunConfig{DryRun: true}}.Partitions())
	assert.Equal(t, []string{"k"}, Config{Run: RunConfig{DryRun: true}, DryRunLetter: "K"}.Partitions())
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	base := Config{BaseURL: "https://www.hollandsevelden.nl/", AssetDir: "logos/big"}

	tests := []struct {
		name string
		cfg  func() Config
		want string
	}{
		{"relative base url", func() Config { c := base; c.BaseURL = "/clubs"; return c }, "crawler.base_url"},
		{"bad dry run letter", func() Config { c := base; c.DryRunLetter = "ab"; return c }, "crawler.dry_run_letter"},
		{"non-letter dry run", func() Config { c := base; c.DryRunLetter = "1"; return c }, "crawler.dry_run_letter"},
		{"missing asset dir", func() Config {
			c := base
			c.AssetDir = " "
			c.Run.DownloadImages = true
			return c
		}, "assets.dir"},
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

	assert.NoError(t, base.Validate())
}
