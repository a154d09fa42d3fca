// Package main wires together the crawl session binary.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"jobtrawler/internal/archive"
	"jobtrawler/internal/browser"
	"jobtrawler/internal/config"
	"jobtrawler/internal/crawl"
	"jobtrawler/internal/listing"
	"jobtrawler/internal/logging"
	"jobtrawler/internal/metrics"
	"jobtrawler/internal/notify"
	"jobtrawler/internal/operator"
	"jobtrawler/internal/store/memory"
	"jobtrawler/internal/store/postgres"
	"jobtrawler/internal/store/sqlite"
)

func main() {
	cfgPath := flag.String("config", "", "Path to config file")
	terms := flag.String("terms", "", "Search terms (overrides config)")
	location := flag.String("location", "", "Search location (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config failed: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if syncErr := logger.Sync(); syncErr != nil {
			fmt.Fprintf(os.Stderr, "logger sync failed: %v\n", syncErr)
		}
	}()
	zap.ReplaceGlobals(logger)

	metrics.Init()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	search := listing.Search{
		Terms:    cfg.Crawler.SearchTerms,
		Location: cfg.Crawler.SearchLocation,
	}
	if *terms != "" {
		search.Terms = *terms
	}
	if *location != "" {
		search.Location = *location
	}
	if search.Terms == "" {
		logger.Fatal("no search terms given; set crawler.search_terms or pass --terms")
	}

	store, err := openStore(ctx, cfg.Store)
	if err != nil {
		logger.Fatal("store init failed", zap.Error(err))
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			logger.Error("store close failed", zap.Error(closeErr))
		}
	}()

	snapshots, snapClose, err := openArchive(ctx, cfg.Archive, logger.Named("archive"))
	if err != nil {
		logger.Fatal("archive init failed", zap.Error(err))
	}
	defer snapClose()

	notifier, notifyClose, err := buildNotifier(ctx, cfg.Notify)
	if err != nil {
		logger.Fatal("notifier init failed", zap.Error(err))
	}
	defer notifyClose()

	session, err := browser.NewChrome(browser.Config{
		UserAgent:         cfg.Crawler.UserAgent,
		Headless:          cfg.Crawler.Headless,
		NavigationTimeout: cfg.Crawler.NavTimeout(),
		ElementTimeout:    cfg.Crawler.ElementTimeout(),
	}, logger.Named("browser"))
	if err != nil {
		logger.Fatal("browser init failed", zap.Error(err))
	}
	defer session.Close()

	var confirmer operator.Confirmer = operator.NewPrompt(os.Stdin, os.Stderr)
	if cfg.Crawler.AutoConfirm {
		confirmer = operator.AutoConfirm{}
	}

	selectors := applySelectorOverrides(crawl.DefaultSelectors(), cfg.Selectors)
	extractor := crawl.NewExtractor(selectors, cfg.Crawler.SettleInterval(), cfg.Crawler.SettleTimeout(), logger.Named("extract"))
	obstructions := crawl.NewObstructions(selectors, cfg.Crawler.ObstructionWait(), confirmer, logger.Named("obstruction"))

	machine := crawl.New(session, store, extractor, obstructions, snapshots, selectors, crawl.Config{
		StartURL:       cfg.Crawler.StartURL,
		PaginationWait: cfg.Crawler.PaginationWait(),
		PolitenessQPS:  cfg.Crawler.PolitenessQPS,
		ArchivePrefix:  cfg.Archive.Prefix,
	}, logger.Named("crawl"))

	logger.Info("crawl session starting",
		zap.String("terms", search.Terms),
		zap.String("location", search.Location),
		zap.String("store", cfg.Store.Provider),
	)

	var persisted int
	for rec, runErr := range machine.Run(ctx, search) {
		if runErr != nil {
			logger.Error("crawl session failed", zap.Error(runErr))
			os.Exit(1)
		}
		persisted++
		logger.Info("new listing", zap.String("title", rec.Title), zap.String("location", rec.Location))
		if notifyErr := notifier.ListingFound(ctx, rec); notifyErr != nil {
			logger.Warn("notification failed", zap.Error(notifyErr))
		}
	}

	logger.Info("crawl session complete", zap.Int("persisted", persisted))
}

func openStore(ctx context.Context, cfg config.StoreConfig) (listing.Store, error) {
	switch cfg.Provider {
	case "memory":
		return memory.New(), nil
	case "sqlite":
		return sqlite.Open(cfg.Path)
	case "postgres":
		return postgres.New(ctx, postgres.Config{DSN: cfg.DSN})
	default:
		return nil, fmt.Errorf("unknown store provider %q", cfg.Provider)
	}
}

func openArchive(ctx context.Context, cfg config.ArchiveConfig, logger *zap.Logger) (archive.Store, func(), error) {
	switch cfg.Provider {
	case "", "none":
		return nil, func() {}, nil
	case "local":
		local, err := archive.NewLocal(cfg.Dir)
		if err != nil {
			return nil, nil, err
		}
		return local, func() {}, nil
	case "gcs":
		gcs, err := archive.NewGCS(ctx, cfg.Bucket, logger)
		if err != nil {
			return nil, nil, err
		}
		return gcs, func() {
			if closeErr := gcs.Close(); closeErr != nil {
				logger.Error("archive close failed", zap.Error(closeErr))
			}
		}, nil
	default:
		return nil, nil, fmt.Errorf("unknown archive provider %q", cfg.Provider)
	}
}

func buildNotifier(ctx context.Context, cfg config.NotifyConfig) (notify.Notifier, func(), error) {
	var (
		sinks   notify.Multi
		closers []func() error
	)
	if cfg.TelegramToken != "" {
		tg, err := notify.NewTelegram(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			return nil, nil, fmt.Errorf("telegram init: %w", err)
		}
		sinks = append(sinks, tg)
	}
	if cfg.PubSubProject != "" && cfg.PubSubTopic != "" {
		ps, err := notify.NewPubSub(ctx, cfg.PubSubProject, cfg.PubSubTopic)
		if err != nil {
			return nil, nil, fmt.Errorf("pubsub init: %w", err)
		}
		sinks = append(sinks, ps)
		closers = append(closers, ps.Close)
	}
	closeAll := func() {
		for _, c := range closers {
			if err := c(); err != nil {
				zap.L().Error("notifier close failed", zap.Error(err))
			}
		}
	}
	if len(sinks) == 0 {
		return notify.Noop{}, closeAll, nil
	}
	return sinks, closeAll, nil
}

// applySelectorOverrides replaces any locator with a configured value.
// Values prefixed with "xpath=" become XPath locators, everything else CSS.
func applySelectorOverrides(sel crawl.Selectors, cfg config.SelectorsConfig) crawl.Selectors {
	override := func(dst *browser.Locator, value string) {
		if value == "" {
			return
		}
		if q, ok := strings.CutPrefix(value, "xpath="); ok {
			*dst = browser.XPath(q)
			return
		}
		*dst = browser.CSS(value)
	}
	override(&sel.SearchTerms, cfg.SearchTerms)
	override(&sel.SearchLocation, cfg.SearchLocation)
	override(&sel.ListingCard, cfg.ListingCard)
	override(&sel.NextPage, cfg.NextPage)
	override(&sel.ConsentAccept, cfg.ConsentAccept)
	override(&sel.Challenge, cfg.Challenge)
	override(&sel.Title, cfg.Title)
	override(&sel.Location, cfg.Location)
	override(&sel.Salary, cfg.Salary)
	override(&sel.Benefits, cfg.Benefits)
	override(&sel.Description, cfg.Description)
	return sel
}
