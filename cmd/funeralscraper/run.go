package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/moah0o0/public-funeral-scrapper/internal/archive"
	"github.com/moah0o0/public-funeral-scrapper/internal/config"
	"github.com/moah0o0/public-funeral-scrapper/internal/enrich"
	"github.com/moah0o0/public-funeral-scrapper/internal/fetch"
	applog "github.com/moah0o0/public-funeral-scrapper/internal/log"
	"github.com/moah0o0/public-funeral-scrapper/internal/metrics"
	"github.com/moah0o0/public-funeral-scrapper/internal/notify"
	"github.com/moah0o0/public-funeral-scrapper/internal/ocr"
	"github.com/moah0o0/public-funeral-scrapper/internal/pipeline"
	"github.com/moah0o0/public-funeral-scrapper/internal/report"
	"github.com/moah0o0/public-funeral-scrapper/internal/scraper"
	"github.com/moah0o0/public-funeral-scrapper/internal/source"
	"github.com/moah0o0/public-funeral-scrapper/internal/store"
)

// NewRunCmd creates the run command.
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the collect, analyze, and deliver pipeline once",
		Long: `Run executes the full pipeline: crawl every district board for new
notices, analyze collected notices into structured fields, and deliver
unsent notices to the subscriber channel.

Each phase is incremental against the record store, so an interrupted
run loses nothing; the next run continues from what is already stored.

Examples:
  # Full run with defaults
  funeralscraper run

  # Rerun analysis and delivery over already-collected data
  funeralscraper run --skip-collect

  # Route all notices to the general channel while testing
  funeralscraper run --test-mode

  # Use an already-running Tor proxy
  funeralscraper run --external-tor 127.0.0.1:9050`,
		Args: cobra.NoArgs,
		RunE: runRunCmd,
	}

	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .funeralscraper.yml in current, XDG config, or home directory)")
	cmd.Flags().String("store-url", "",
		"Record store base URL (overrides config file and FUNERAL_STORE_URL)")

	cmd.Flags().IntP("max-pages", "p", 0, "Maximum list pages per board")
	cmd.Flags().Int("concurrency", 0, "Number of simultaneous district crawls")
	cmd.Flags().Duration("delay", -1, "Politeness delay between detail fetches")
	cmd.Flags().Duration("timeout", 0, "Timeout per board and store request")

	cmd.Flags().String("external-tor", "",
		"Use external Tor proxy at the given address instead of the embedded daemon")
	cmd.Flags().Bool("no-tor", false, "Disable Tor entirely (Tor-required boards will fail)")
	cmd.Flags().Duration("tor-timeout", 0, "Timeout for embedded Tor startup")

	cmd.Flags().Bool("skip-collect", false, "Skip the collect phase")
	cmd.Flags().Bool("test-mode", false, "Route all notices to the general channel")
	cmd.Flags().StringP("output", "o", "", "Write a Markdown run report to this path")
	cmd.Flags().String("db-dir", config.XDGDataDir(),
		"Directory for the local run-history database (empty disables archiving)")

	return cmd
}

// runRunCmd wires configuration, logging, and signal handling, then runs.
func runRunCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildRunConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := applog.New(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling")
		cancel()
	}()

	return runPipeline(ctx, cfg, logger)
}

// buildRunConfig assembles the config: defaults and environment first, the
// config file next, CLI flags last.
func buildRunConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.New()

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	found := config.FindConfigFile(configPath)
	if found != "" {
		if err := cfg.LoadFile(found); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", found, err)
		}
	} else if configPath != "" {
		return nil, fmt.Errorf("configuration file not found: %s", configPath)
	}

	if v, _ := cmd.Flags().GetString("store-url"); v != "" {
		cfg.StoreURL = v
	}
	if v, _ := cmd.Flags().GetInt("max-pages"); v > 0 {
		cfg.MaxPages = v
	}
	if v, _ := cmd.Flags().GetInt("concurrency"); v > 0 {
		cfg.Concurrency = v
	}
	if v, _ := cmd.Flags().GetDuration("delay"); v >= 0 {
		cfg.CrawlDelay = v
	}
	if v, _ := cmd.Flags().GetDuration("timeout"); v > 0 {
		cfg.Timeout = v
	}
	if v, _ := cmd.Flags().GetString("external-tor"); v != "" {
		cfg.UseExternalTor = true
		cfg.TorProxyAddress = v
	}
	if v, _ := cmd.Flags().GetBool("no-tor"); v {
		cfg.DisableTor = true
	}
	if v, _ := cmd.Flags().GetDuration("tor-timeout"); v > 0 {
		cfg.TorStartupTimeout = v
	}
	cfg.SkipCollect, _ = cmd.Flags().GetBool("skip-collect")
	cfg.TestMode, _ = cmd.Flags().GetBool("test-mode")
	cfg.ReportFile, _ = cmd.Flags().GetString("output")
	cfg.DBDir, _ = cmd.Flags().GetString("db-dir")
	cfg.Verbose = getVerboseFlag(cmd)

	return cfg, nil
}

// getVerboseFlag retrieves the persistent verbose flag.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// runPipeline builds the collaborators and executes one pipeline run.
func runPipeline(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	torClient, stopTor, err := setupTor(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer stopTor()

	fetchOpts := []fetch.Option{fetch.WithLogger(logger)}
	if torClient != nil {
		fetchOpts = append(fetchOpts, fetch.WithTorClient(torClient))
	}
	fetcher := fetch.NewClient(&http.Client{Timeout: cfg.Timeout}, fetchOpts...)

	recognizer := ocr.NewClient(cfg.OCREndpoint, cfg.OCRSecret, nil)

	crawlers := make([]pipeline.Crawler, 0, len(source.All()))
	for _, desc := range source.All() {
		engine, err := scraper.New(desc, fetcher, recognizer,
			scraper.WithDelay(cfg.CrawlDelay),
			scraper.WithEngineLogger(logger))
		if err != nil {
			return fmt.Errorf("build crawler: %w", err)
		}
		crawlers = append(crawlers, engine)
	}

	st := store.NewClient(cfg.StoreURL, cfg.StoreIdentity, cfg.StorePassword,
		store.WithLogger(logger))
	if err := st.Authenticate(ctx); err != nil {
		return fmt.Errorf("store authentication: %w", err)
	}

	analyzer := enrich.NewClient(cfg.EnrichEndpoint, cfg.EnrichAPIKey)

	var notifier notify.Notifier
	if cfg.NoticeWebhookURL != "" || cfg.GeneralWebhookURL != "" {
		notifier = notify.NewWebhook(cfg.NoticeWebhookURL, cfg.GeneralWebhookURL,
			notify.WithTestMode(cfg.TestMode),
			notify.WithLogger(logger))
	} else {
		notifier = notify.NewConsole(nil)
	}

	p := pipeline.New(crawlers, st, analyzer, notifier,
		pipeline.WithLogger(logger),
		pipeline.WithMaxPages(cfg.MaxPages),
		pipeline.WithConcurrency(cfg.Concurrency),
		pipeline.WithTestMode(cfg.TestMode))

	runErr := p.Run(ctx, cfg.SkipCollect)

	// Archive and report render whatever the run produced, even after a
	// failed run; partial telemetry is still worth keeping.
	if run := p.Metrics().Snapshot(); run != nil {
		if cfg.DBDir != "" {
			archiveRun(ctx, cfg.DBDir, run, logger)
		}
		if cfg.ReportFile != "" {
			if err := report.WriteFile(cfg.ReportFile, run); err != nil {
				logger.Error("run report write failed", "path", cfg.ReportFile, "error", err)
			}
		}
	}

	return runErr
}

// setupTor prepares the Tor HTTP client per configuration. The returned
// stop func shuts down the embedded daemon when one was started.
func setupTor(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*http.Client, func(), error) {
	noop := func() {}

	if cfg.DisableTor {
		logger.Warn("tor disabled, tor-required boards will fail")
		return nil, noop, nil
	}

	if cfg.UseExternalTor {
		client, err := fetch.NewTorHTTPClient(cfg.TorProxyAddress, cfg.Timeout)
		if err != nil {
			return nil, noop, fmt.Errorf("tor proxy %s: %w", cfg.TorProxyAddress, err)
		}
		logger.Info("using external tor proxy", "address", cfg.TorProxyAddress)
		return client, noop, nil
	}

	logger.Info("starting embedded tor daemon, bootstrap may take minutes")
	embedded := fetch.NewEmbeddedTor(cfg.TorStartupTimeout)
	if err := embedded.Start(ctx); err != nil {
		return nil, noop, fmt.Errorf("start embedded tor: %w", err)
	}
	stop := func() {
		if err := embedded.Stop(); err != nil {
			logger.Error("embedded tor shutdown failed", "error", err)
		}
	}

	client, err := fetch.NewTorHTTPClient(embedded.SocksAddr(), cfg.Timeout)
	if err != nil {
		stop()
		return nil, noop, fmt.Errorf("embedded tor client: %w", err)
	}
	logger.Info("embedded tor daemon started", "socks_addr", embedded.SocksAddr())
	return client, stop, nil
}

// archiveRun saves the run to the local history database. Best-effort; an
// archive failure never fails the run.
func archiveRun(ctx context.Context, dbDir string, run *metrics.Run, logger *slog.Logger) {
	a, err := archive.Open(dbDir, archive.DefaultOptions())
	if err != nil {
		logger.Error("run archive open failed", "dir", dbDir, "error", err)
		return
	}
	defer a.Close() //nolint:errcheck

	if _, err := a.SaveRun(ctx, run); err != nil {
		logger.Error("run archive save failed", "error", err)
	}
}
