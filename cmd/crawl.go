package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/clubs-crawler/internal/clock/system"
	"github.com/JakeFAU/clubs-crawler/internal/config"
	"github.com/JakeFAU/clubs-crawler/internal/crawler"
	"github.com/JakeFAU/clubs-crawler/internal/fetcher/asset"
	collyfetcher "github.com/JakeFAU/clubs-crawler/internal/fetcher/colly"
	"github.com/JakeFAU/clubs-crawler/internal/fetcher/headless"
	"github.com/JakeFAU/clubs-crawler/internal/id/uuid"
	"github.com/JakeFAU/clubs-crawler/internal/logging"
	"github.com/JakeFAU/clubs-crawler/internal/metrics"
	"github.com/JakeFAU/clubs-crawler/internal/output"
	"github.com/JakeFAU/clubs-crawler/internal/storage"
	"github.com/JakeFAU/clubs-crawler/internal/storage/gcs"
	"github.com/JakeFAU/clubs-crawler/internal/storage/local"
	"github.com/JakeFAU/clubs-crawler/internal/storage/postgres"
)

// clubSink receives the clubs of a finished run.
type clubSink interface {
	StoreClubs(ctx context.Context, runID string, crawledAt time.Time, clubs []crawler.Club) error
}

// crawlDeps holds the factories the crawl command builds its collaborators
// with. Tests replace them with in-memory versions.
type crawlDeps struct {
	newLogger    func(development bool) (*zap.Logger, error)
	newSession   func(cfg config.Config, logger *zap.Logger) (crawler.Session, func(), error)
	newAssets    func(cfg config.Config) crawler.AssetFetcher
	newBlobStore func(ctx context.Context, cfg config.Config) (storage.BlobStore, func(), error)
	newClubSink  func(ctx context.Context, cfg config.Config) (clubSink, func(), error)
	clock        crawler.Clock
	ids          crawler.IDGenerator
}

func defaultCrawlDeps() crawlDeps {
	return crawlDeps{
		newLogger:    logging.New,
		newSession:   openSession,
		newAssets:    openAssets,
		newBlobStore: openBlobStore,
		newClubSink:  openClubSink,
		clock:        system.New(),
		ids:          uuid.New(),
	}
}

type crawlFlags struct {
	dryRun         bool
	downloadImages bool
	saveJSON       bool
	yes            bool
}

// newCrawlCmd creates and configures the 'crawl' subcommand.
func newCrawlCmd(root *rootOptions, deps crawlDeps) *cobra.Command {
	flags := &crawlFlags{}
	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Scrapes every club in the directory",
		Long: `Visits the listing page of each letter, then every club's detail page.
Asks whether to do a dry run (letter A only), download big logos and save
JSON, unless the answers are given as flags together with --yes.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCrawl(cmd, root, flags, deps)
		},
	}
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "scrape a single letter only")
	cmd.Flags().BoolVar(&flags.downloadImages, "download-images", true, "download each club's big logo")
	cmd.Flags().BoolVar(&flags.saveJSON, "save-json", true, "save the clubs as JSON")
	cmd.Flags().BoolVarP(&flags.yes, "yes", "y", false, "do not prompt; use flags and config values")
	return cmd
}

func runCrawl(cmd *cobra.Command, root *rootOptions, flags *crawlFlags, deps crawlDeps) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load(root.configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := deps.newLogger(cfg.Logging.Development)
	if err != nil {
		return err
	}
	defer func() { _ = logging.Sync(logger) }()

	run, err := resolveRunConfig(ctx, cmd, cfg.Run, flags, newPrompter(cmd.InOrStdin(), cmd.OutOrStdout()))
	if err != nil {
		if errors.Is(err, context.Canceled) || ctx.Err() != nil {
			logger.Warn("Interrupted during questionnaire; nothing crawled")
			return nil
		}
		return err
	}
	cfg.Run = config.RunConfig{DryRun: run.DryRun, DownloadImages: run.DownloadImages, SaveJSON: run.SaveJSON}
	logger.Info("Run configuration",
		zap.Bool("dry_run", run.DryRun),
		zap.Bool("download_images", run.DownloadImages),
		zap.Bool("save_json", run.SaveJSON),
		zap.String("session", cfg.Session.Mode),
	)

	if cfg.Metrics.Addr != "" {
		srv, err := metrics.Start(cfg.Metrics.Addr, logger.Named("metrics"))
		if err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("Failed to stop metrics server", zap.Error(err))
			}
		}()
	}

	session, closeSession, err := deps.newSession(cfg, logger)
	if err != nil {
		return fmt.Errorf("open session: %w", err)
	}
	defer closeSession()

	var assets crawler.AssetFetcher
	if run.DownloadImages {
		assets = deps.newAssets(cfg)
	}

	engine, err := crawler.NewEngine(cfg.CrawlerConfig(), session, assets, deps.clock, deps.ids, logger.Named("engine"))
	if err != nil {
		return fmt.Errorf("init engine: %w", err)
	}

	result, err := engine.Run(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) || ctx.Err() != nil {
			logger.Warn("Crawl interrupted; nothing saved", zap.Int("clubs", len(result.Clubs)))
			return nil
		}
		return fmt.Errorf("run crawler: %w", err)
	}

	if err := persist(ctx, cfg, result, deps, logger); err != nil {
		return err
	}

	renderSummary(cmd.OutOrStdout(), result)
	logger.Info("Crawl command finished.")
	return nil
}

// resolveRunConfig applies explicit flags over config values and asks for
// the rest, unless --yes was given.
func resolveRunConfig(ctx context.Context, cmd *cobra.Command, base config.RunConfig, flags *crawlFlags, p *prompter) (crawler.RunConfig, error) {
	run := crawler.RunConfig{
		DryRun:         base.DryRun,
		DownloadImages: base.DownloadImages,
		SaveJSON:       base.SaveJSON,
	}
	switches := []struct {
		flag     string
		question string
		value    bool
		target   *bool
	}{
		{"dry-run", questionDryRun, flags.dryRun, &run.DryRun},
		{"download-images", questionDownload, flags.downloadImages, &run.DownloadImages},
		{"save-json", questionSaveJSON, flags.saveJSON, &run.SaveJSON},
	}
	for _, s := range switches {
		switch {
		case cmd.Flags().Changed(s.flag):
			*s.target = s.value
		case flags.yes:
		default:
			answer, err := p.confirm(ctx, s.question)
			if err != nil {
				return run, err
			}
			*s.target = answer
		}
	}
	return run, nil
}

func persist(ctx context.Context, cfg config.Config, result crawler.RunResult, deps crawlDeps, logger *zap.Logger) error {
	if !cfg.Run.SaveJSON {
		logger.Info("Skipped saving JSON (disabled)")
	} else {
		store, closeStore, err := deps.newBlobStore(ctx, cfg)
		if err != nil {
			return fmt.Errorf("open output: %w", err)
		}
		defer closeStore()
		writer, err := output.NewWriter(store, logger.Named("output"))
		if err != nil {
			return err
		}
		if _, err := writer.Write(ctx, result.Clubs, cfg.Run.DryRun); err != nil {
			return err
		}
	}

	if cfg.Database.DSN == "" {
		return nil
	}
	sink, closeSink, err := deps.newClubSink(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer closeSink()
	if err := sink.StoreClubs(ctx, result.RunID, result.StartedAt, result.Clubs); err != nil {
		return fmt.Errorf("store clubs: %w", err)
	}
	logger.Info("Clubs stored in database", zap.String("table", cfg.Database.Table), zap.Int("clubs", len(result.Clubs)))
	return nil
}

func openSession(cfg config.Config, logger *zap.Logger) (crawler.Session, func(), error) {
	if cfg.Session.Mode == config.SessionStatic {
		s := collyfetcher.New(collyfetcher.Config{
			UserAgent:     cfg.Crawler.UserAgent,
			RespectRobots: cfg.Crawler.RespectRobots,
			Timeout:       cfg.Session.NavTimeout,
		})
		return s, func() {}, nil
	}
	s, err := headless.New(headless.Config{
		UserAgent:         cfg.Crawler.UserAgent,
		NavigationTimeout: cfg.Session.NavTimeout,
		ExecPath:          cfg.Session.ExecPath,
		Headful:           cfg.Session.Headful,
	}, logger.Named("headless"))
	if err != nil {
		return nil, nil, err
	}
	return s, s.Close, nil
}

func openAssets(cfg config.Config) crawler.AssetFetcher {
	return asset.New(asset.Config{
		UserAgent: cfg.Crawler.UserAgent,
		Timeout:   cfg.Assets.Timeout,
	})
}

func openBlobStore(ctx context.Context, cfg config.Config) (storage.BlobStore, func(), error) {
	if cfg.Output.Provider == config.ProviderGCS {
		store, err := gcs.Open(ctx, gcs.Config{Bucket: cfg.Output.GCSBucket, Prefix: cfg.Output.Prefix})
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	}
	store, err := local.New(local.Config{BaseDir: cfg.Output.Dir})
	if err != nil {
		return nil, nil, err
	}
	return store, func() {}, nil
}

func openClubSink(ctx context.Context, cfg config.Config) (clubSink, func(), error) {
	store, err := postgres.NewClubStore(ctx, postgres.Config{DSN: cfg.Database.DSN, Table: cfg.Database.Table})
	if err != nil {
		return nil, nil, err
	}
	return store, store.Close, nil
}
