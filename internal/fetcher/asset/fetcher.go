// Package asset downloads remote images to local files.
package asset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/JakeFAU/clubs-crawler/internal/crawler"
)

// Config controls the HTTP client used for downloads.
type Config struct {
	UserAgent string
	Timeout   time.Duration
}

// Fetcher implements crawler.AssetFetcher with a single attempt per call.
type Fetcher struct {
	client *resty.Client
}

// New builds a Fetcher with its own resty client.
func New(cfg Config) *Fetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetRetryCount(0)
	if cfg.UserAgent != "" {
		client.SetHeader("User-Agent", cfg.UserAgent)
	}
	return NewWithClient(client)
}

// NewWithClient wraps an existing resty client.
func NewWithClient(client *resty.Client) *Fetcher {
	return &Fetcher{client: client}
}

// Fetch streams the body of rawURL into dest, creating parent directories as
// needed. On any failure nothing is left at dest.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o750); err != nil {
		return &crawler.FetchError{URL: rawURL, Err: fmt.Errorf("create parent dir: %w", err)}
	}

	res, err := f.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(rawURL)
	if err != nil {
		removeQuietly(dest)
		return &crawler.FetchError{URL: rawURL, Err: err}
	}
	body := res.RawBody()
	defer body.Close() //nolint:errcheck // body is fully consumed or abandoned

	if code := res.StatusCode(); code < http.StatusOK || code >= http.StatusMultipleChoices {
		removeQuietly(dest)
		return &crawler.FetchError{URL: rawURL, StatusCode: code}
	}

	if err := writeFile(dest, body); err != nil {
		removeQuietly(dest)
		return &crawler.FetchError{URL: rawURL, Err: err}
	}
	return nil
}

func writeFile(dest string, r io.Reader) error {
	// #nosec G304 -- dest is derived from the configured asset directory.
	file, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create %s: %w", dest, err)
	}
	if _, err := io.Copy(file, r); err != nil {
		closeErr := file.Close()
		return errors.Join(fmt.Errorf("write %s: %w", dest, err), closeErr)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close %s: %w", dest, err)
	}
	return nil
}

func removeQuietly(path string) {
	_ = os.Remove(path) //nolint:errcheck // nothing to clean up is fine
}
