package crawler

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/JakeFAU/clubs-crawler/internal/metrics"
)

// Engine drives a crawl: one listing page per partition, then one detail
// page per stub, all through a single sequentially used Session.
type Engine struct {
	cfg      Config
	base     *url.URL
	session  Session
	enricher *Enricher
	clock    Clock
	ids      IDGenerator
	logger   *zap.Logger
}

// NewEngine wires the engine. assets may be nil when downloads are disabled;
// ids may be nil, in which case runs carry no ID.
func NewEngine(
	cfg Config,
	session Session,
	assets AssetFetcher,
	clock Clock,
	ids IDGenerator,
	logger *zap.Logger,
) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if session == nil {
		return nil, fmt.Errorf("session is required")
	}
	if clock == nil {
		return nil, fmt.Errorf("clock is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	metrics.Init()
	enricher := NewEnricher(EnricherConfig{
		DownloadImages: cfg.Run.DownloadImages,
		AssetRoot:      cfg.AssetRoot,
		AssetDir:       cfg.AssetDir,
	}, session, assets, logger.Named("enricher"))

	return &Engine{
		cfg:      cfg,
		base:     base,
		session:  session,
		enricher: enricher,
		clock:    clock,
		ids:      ids,
		logger:   logger,
	}, nil
}

// Run crawls every partition in order. On success the result holds one club
// per extracted stub. A non-nil error means the run was aborted (session
// failure, listing page failure or cancellation); the partial result
// collected so far is returned alongside it.
func (e *Engine) Run(ctx context.Context) (RunResult, error) {
	result := RunResult{StartedAt: e.clock.Now()}
	if e.ids != nil {
		id, err := e.ids.NewID()
		if err != nil {
			return result, fmt.Errorf("generate run id: %w", err)
		}
		result.RunID = id
	}
	logger := e.logger
	if result.RunID != "" {
		logger = logger.With(zap.String("run_id", result.RunID))
	}

	if e.cfg.Run.DownloadImages {
		dir := e.enricher.AssetDirPath()
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return result, fmt.Errorf("create asset dir %s: %w", dir, err)
		}
	}

	partitions := e.cfg.Partitions()
	if e.cfg.Run.DryRun {
		logger.Info("Dry run: scraping a single letter", zap.String("letter", strings.ToUpper(partitions[0])))
	} else {
		logger.Info("Full scrape: scraping all clubs A-Z")
	}
	logger.Info("Starting scrape", zap.Int("letters", len(partitions)))

	for _, letter := range partitions {
		stats, err := e.runPartition(ctx, letter, &result, logger)
		result.Partitions = append(result.Partitions, stats)
		if err != nil {
			result.Duration = e.clock.Now().Sub(result.StartedAt)
			return result, err
		}
	}

	result.Duration = e.clock.Now().Sub(result.StartedAt)
	logger.Info("Scraping completed",
		zap.Int("clubs", len(result.Clubs)),
		zap.Duration("duration", result.Duration),
		zap.Duration("avg_per_club", result.AveragePerClub()),
	)
	return result, nil
}

func (e *Engine) runPartition(ctx context.Context, letter string, result *RunResult, logger *zap.Logger) (PartitionStats, error) {
	start := e.clock.Now()
	stats := PartitionStats{
		Letter: letter,
		URL:    ListingURL(e.base, letter),
	}
	logger = logger.With(zap.String("letter", strings.ToUpper(letter)))
	logger.Info("Scraping letter", zap.String("url", stats.URL))

	if err := ctx.Err(); err != nil {
		return stats, fmt.Errorf("partition %s: %w", letter, err)
	}
	doc, err := e.session.Navigate(ctx, stats.URL)
	metrics.ObserveNavigation("listing", err)
	if err != nil {
		stats.Duration = e.clock.Now().Sub(start)
		return stats, fmt.Errorf("listing %s: %w", letter, err)
	}

	stubs := ExtractListing(doc, e.base)
	stats.Stubs = len(stubs)
	logger.Info("Found clubs", zap.Int("count", len(stubs)))

	for i, stub := range stubs {
		logger.Debug("Processing club",
			zap.Int("index", i+1),
			zap.Int("total", len(stubs)),
			zap.String("club", stub.Name),
		)
		outcome, err := e.enricher.Enrich(ctx, stub)
		if err != nil {
			stats.Duration = e.clock.Now().Sub(start)
			return stats, fmt.Errorf("partition %s club %q: %w", letter, stub.Name, err)
		}
		if outcome.Partial() {
			stats.Partial++
		}
		if outcome.Has(FailureNavigation) {
			stats.Unreachable++
		}
		metrics.ObserveClub(letter, outcome.Partial())
		result.Clubs = append(result.Clubs, outcome.Club)
	}

	stats.Duration = e.clock.Now().Sub(start)
	metrics.ObservePartition(letter, stats.Stubs, stats.Duration)
	logger.Info("Completed letter",
		zap.Int("clubs", stats.Stubs),
		zap.Int("partial", stats.Partial),
		zap.Int("unreachable", stats.Unreachable),
		zap.Duration("duration", stats.Duration),
	)
	return stats, nil
}
