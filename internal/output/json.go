// Package output serializes crawl results and hands them to a blob store.
package output

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/JakeFAU/clubs-crawler/internal/crawler"
	"github.com/JakeFAU/clubs-crawler/internal/storage"
)

// Output filenames.
const (
	FullFilename   = "clubs.json"
	DryRunFilename = "clubs_dry_run.json"
	ContentType    = "application/json; charset=utf-8"
)

// Record is the JSON shape of one club. Absent enrichment fields encode as null.
type Record struct {
	LogoURL           string  `json:"logoUrl"`
	LogoLabel         string  `json:"logoLabel"`
	Name              string  `json:"name"`
	DetailURL         string  `json:"detailUrl"`
	PrimaryImageURL   *string `json:"primaryImageUrl"`
	SecondaryImageURL *string `json:"secondaryImageUrl"`
	LocalImagePath    *string `json:"localImagePath"`
}

// Filename picks the output name for a run.
func Filename(dryRun bool) string {
	if dryRun {
		return DryRunFilename
	}
	return FullFilename
}

// Records converts clubs to their JSON records, keeping order.
func Records(clubs []crawler.Club) []Record {
	out := make([]Record, 0, len(clubs))
	for _, c := range clubs {
		out = append(out, Record{
			LogoURL:           c.LogoURL,
			LogoLabel:         c.LogoLabel,
			Name:              c.Name,
			DetailURL:         c.DetailURL,
			PrimaryImageURL:   optional(c.PrimaryImageURL),
			SecondaryImageURL: optional(c.SecondaryImageURL),
			LocalImagePath:    optional(c.LocalImagePath),
		})
	}
	return out
}

// Encode renders clubs as a 2-space indented JSON array. Non-ASCII text and
// HTML characters are written as-is.
func Encode(clubs []crawler.Club) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(Records(clubs)); err != nil {
		return nil, fmt.Errorf("encode clubs: %w", err)
	}
	return buf.Bytes(), nil
}

// Writer persists encoded runs through a BlobStore.
type Writer struct {
	store  storage.BlobStore
	logger *zap.Logger
}

// NewWriter builds a Writer.
func NewWriter(store storage.BlobStore, logger *zap.Logger) (*Writer, error) {
	if store == nil {
		return nil, fmt.Errorf("blob store is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Writer{store: store, logger: logger}, nil
}

// Write encodes clubs and stores them under the run's filename. It returns
// the URI reported by the store.
func (w *Writer) Write(ctx context.Context, clubs []crawler.Club, dryRun bool) (string, error) {
	data, err := Encode(clubs)
	if err != nil {
		return "", err
	}
	name := Filename(dryRun)
	uri, err := w.store.PutObject(ctx, name, ContentType, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("save %s: %w", name, err)
	}
	w.logger.Info("Data saved", zap.String("uri", uri), zap.Int("clubs", len(clubs)))
	return uri, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
