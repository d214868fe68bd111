package crawler

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/JakeFAU/clubs-crawler/internal/metrics"
)

// EnricherConfig controls where and whether primary images are downloaded.
type EnricherConfig struct {
	DownloadImages bool
	// AssetRoot is the directory local image paths are reported relative to.
	AssetRoot string
	// AssetDir is the download directory, relative to AssetRoot.
	AssetDir string
}

// Enricher visits a stub's detail page and fills in its enrichment fields.
type Enricher struct {
	cfg     EnricherConfig
	session Session
	assets  AssetFetcher
	logger  *zap.Logger
}

// NewEnricher builds an Enricher. assets may be nil when downloads are disabled.
func NewEnricher(cfg EnricherConfig, session Session, assets AssetFetcher, logger *zap.Logger) *Enricher {
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics.Init()
	return &Enricher{
		cfg:     cfg,
		session: session,
		assets:  assets,
		logger:  logger,
	}
}

// AssetDirPath returns the download directory.
func (e *Enricher) AssetDirPath() string {
	return filepath.Join(e.cfg.AssetRoot, e.cfg.AssetDir)
}

// Enrich always returns an Outcome holding the club. Navigation failures,
// extraction misses and failed downloads are recorded on the outcome and
// logged; the returned error is non-nil only when the session is lost or ctx
// is done, in which case the run must stop.
func (e *Enricher) Enrich(ctx context.Context, stub Stub) (Outcome, error) {
	out := Outcome{Club: NewClub(stub)}
	logger := e.logger.With(zap.String("club", stub.Name), zap.String("url", stub.DetailURL))

	doc, err := e.session.Navigate(ctx, stub.DetailURL)
	metrics.ObserveNavigation("detail", err)
	if err != nil {
		if fatal := fatalErr(ctx, err); fatal != nil {
			return out, fatal
		}
		out.record(FailureNavigation, "", err)
		metrics.ObserveEnrichmentFailure(string(FailureNavigation))
		logger.Warn("Error processing club", zap.Error(err))
		return out, nil
	}

	pageURL := doc.Url
	if pageURL == nil {
		pageURL, _ = url.Parse(stub.DetailURL)
	}
	detail, err := ExtractDetail(doc, pageURL)
	for _, missErr := range splitJoined(err) {
		field := ""
		var miss *MissError
		if errors.As(missErr, &miss) {
			field = miss.Field
		}
		out.record(FailureExtractionMiss, field, missErr)
		metrics.ObserveEnrichmentFailure(string(FailureExtractionMiss))
		logger.Debug("Field absent", zap.String("field", field), zap.Error(missErr))
	}
	out.Club.PrimaryImageURL = detail.PrimaryImageURL
	out.Club.SecondaryImageURL = detail.SecondaryImageURL

	if err := e.download(ctx, &out, logger); err != nil {
		return out, err
	}
	return out, nil
}

func (e *Enricher) download(ctx context.Context, out *Outcome, logger *zap.Logger) error {
	src := out.Club.PrimaryImageURL
	if src == "" {
		return nil
	}
	filename := FilenameFromURL(src)
	if !e.cfg.DownloadImages || e.assets == nil {
		metrics.ObserveDownload(metrics.DownloadSkipped)
		logger.Debug("Skipped download (disabled)", zap.String("file", filename))
		return nil
	}

	dest := filepath.Join(e.AssetDirPath(), filename)
	if err := e.assets.Fetch(ctx, src, dest); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("download %s: %w", src, ctx.Err())
		}
		out.record(FailureFetch, "localImagePath", err)
		metrics.ObserveEnrichmentFailure(string(FailureFetch))
		metrics.ObserveDownload(metrics.DownloadFailed)
		logger.Warn("Failed to download", zap.String("file", filename), zap.Error(err))
		return nil
	}

	rel, err := filepath.Rel(e.rootOrDot(), dest)
	if err != nil {
		rel = dest
	}
	out.Club.LocalImagePath = filepath.ToSlash(rel)
	metrics.ObserveDownload(metrics.DownloadOK)
	logger.Info("Downloaded", zap.String("file", filename))
	return nil
}

func (e *Enricher) rootOrDot() string {
	if e.cfg.AssetRoot == "" {
		return "."
	}
	return e.cfg.AssetRoot
}

func fatalErr(ctx context.Context, err error) error {
	switch {
	case ctx.Err() != nil:
		return fmt.Errorf("enrichment interrupted: %w", ctx.Err())
	case errors.Is(err, ErrSessionLost):
		return fmt.Errorf("enrichment aborted: %w", err)
	}
	return nil
}
