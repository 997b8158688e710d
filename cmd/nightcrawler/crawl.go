package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/nightcrawler/internal/config"
	"github.com/nao1215/nightcrawler/internal/crawler"
	"github.com/nao1215/nightcrawler/internal/database"
	nclog "github.com/nao1215/nightcrawler/internal/log"
	"github.com/nao1215/nightcrawler/internal/model"
	"github.com/nao1215/nightcrawler/internal/renderer"
	"github.com/nao1215/nightcrawler/internal/report"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl <url>",
		Short: "Crawl a website and aggregate its response headers",
		Long: `Crawl maps a website starting from the given seed URL.

Pages are rendered in a headless Chrome browser so links injected by
JavaScript are discovered. Every same-host link is followed; links to
other hosts are recorded as out of scope and never fetched. For each
fetched page the response headers of the document are folded into a
site-wide header fingerprint (first value observed per header wins).

Examples:
  # Crawl a site and print the results
  nightcrawler crawl https://example.com

  # Bound the crawl to 100 page fetches
  nightcrawler crawl --max-requests 100 https://example.com

  # Crawl without a browser (static HTML only)
  nightcrawler crawl --no-render https://example.com

  # JSON output to a file
  nightcrawler crawl --json --output result.json https://example.com

  # Skip noisy sections of the site
  nightcrawler crawl --ignore "/admin/*" --ignore "*.html" https://example.com

Configuration file (.nightcrawler) example:
  defaults:
    excludedHeaders:
      - date
      - content-length
  sites:
    example.com:
      ignorePatterns:
        - "/logout*"
      maxRequests: 200`,
		Args: cobra.ExactArgs(1),
		RunE: runCrawlCmd,
	}

	// Crawl behavior flags
	cmd.Flags().IntP("concurrency", "n", config.DefaultConcurrency,
		"Number of pages fetched in parallel")
	cmd.Flags().IntP("max-requests", "r", config.DefaultMaxRequests,
		"Maximum number of page fetches (0 = unbounded)")
	cmd.Flags().DurationP("timeout", "t", config.DefaultFetchTimeout,
		"Per-page fetch timeout")
	cmd.Flags().Duration("settle-delay", config.DefaultSettleDelay,
		"Wait after scrolling a rendered page, for lazy-loaded content")
	cmd.Flags().Bool("no-render", false,
		"Fetch with plain HTTP instead of a headless browser")

	// Scope and filtering flags
	cmd.Flags().StringSlice("exclude-header", config.DefaultExcludedHeaders(),
		"Response header names to drop from the aggregate")
	cmd.Flags().StringSlice("ignore", nil,
		"URL path patterns to skip (glob, repeatable)")
	cmd.Flags().StringSlice("follow", nil,
		"URL path patterns to restrict the crawl to (glob, repeatable)")
	cmd.Flags().StringSlice("user-agent", nil,
		"User-Agent rotation pool (repeatable; default: built-in pool)")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .nightcrawler in current or home directory)")

	// Output flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write output to specified file path (creates directories if needed)")
	cmd.Flags().Bool("no-save", false,
		"Do not record this crawl in the history database")

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cfg)
	slog.SetDefault(logger)

	// Context with signal handling for graceful shutdown. Cancellation
	// stops dispatch; in-flight fetches finish and the partial result is
	// still reported.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runCrawl(ctx, cfg, logger)
}

// buildConfig creates a Config from cobra command flags and the optional
// configuration file.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Seed = args[0]

	var err error
	if cfg.Concurrency, err = cmd.Flags().GetInt("concurrency"); err != nil {
		return nil, err
	}
	if cfg.MaxRequests, err = cmd.Flags().GetInt("max-requests"); err != nil {
		return nil, err
	}
	if cfg.FetchTimeout, err = cmd.Flags().GetDuration("timeout"); err != nil {
		return nil, err
	}
	if cfg.SettleDelay, err = cmd.Flags().GetDuration("settle-delay"); err != nil {
		return nil, err
	}
	if cfg.NoRender, err = cmd.Flags().GetBool("no-render"); err != nil {
		return nil, err
	}
	if cfg.ExcludedHeaders, err = cmd.Flags().GetStringSlice("exclude-header"); err != nil {
		return nil, err
	}
	if cfg.IgnorePatterns, err = cmd.Flags().GetStringSlice("ignore"); err != nil {
		return nil, err
	}
	if cfg.FollowPatterns, err = cmd.Flags().GetStringSlice("follow"); err != nil {
		return nil, err
	}
	if cfg.UserAgents, err = cmd.Flags().GetStringSlice("user-agent"); err != nil {
		return nil, err
	}
	if cfg.ConfigFilePath, err = cmd.Flags().GetString("config"); err != nil {
		return nil, err
	}
	if cfg.JSONReport, err = cmd.Flags().GetBool("json"); err != nil {
		return nil, err
	}
	if cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown"); err != nil {
		return nil, err
	}
	if cfg.OutputFile, err = cmd.Flags().GetString("output"); err != nil {
		return nil, err
	}
	noSave, err := cmd.Flags().GetBool("no-save")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noSave
	cfg.DBDir = config.XDGDataDir()

	cfg.Verbose = getBoolFlag(cmd, "verbose")
	cfg.Silent = getBoolFlag(cmd, "silent")

	if err := loadSiteConfig(cmd, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadSiteConfig loads the optional .nightcrawler file and applies the
// seed host's overrides for values the user did not set on the command line.
// If the user explicitly specified a config file path, a missing file is an
// error; otherwise the file is simply optional.
func loadSiteConfig(cmd *cobra.Command, cfg *config.Config) error {
	explicitPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath == "" {
		if explicitPath {
			return fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
		}
		cfg.SiteConfigs = &config.File{Sites: make(map[string]config.SiteConfig)}
		return nil
	}

	cf, err := config.LoadConfigFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config file %s: %w", configPath, err)
	}
	cfg.SiteConfigs = cf

	seedURL, err := url.Parse(cfg.Seed)
	if err != nil {
		// An unparsable seed is reported by Validate/ParseSeed later.
		return nil
	}
	site := cf.GetSiteConfig(seedURL.Hostname())

	// CLI flags beat the config file.
	if !cmd.Flags().Changed("exclude-header") && len(site.ExcludedHeaders) > 0 {
		cfg.ExcludedHeaders = site.ExcludedHeaders
	}
	if !cmd.Flags().Changed("ignore") && len(site.IgnorePatterns) > 0 {
		cfg.IgnorePatterns = site.IgnorePatterns
	}
	if !cmd.Flags().Changed("follow") && len(site.FollowPatterns) > 0 {
		cfg.FollowPatterns = site.FollowPatterns
	}
	if !cmd.Flags().Changed("user-agent") && len(site.UserAgents) > 0 {
		cfg.UserAgents = site.UserAgents
	}
	if !cmd.Flags().Changed("max-requests") && site.MaxRequests != 0 {
		cfg.MaxRequests = site.MaxRequests
	}

	return nil
}

// getBoolFlag retrieves a bool flag from the command or its parent.
func getBoolFlag(cmd *cobra.Command, name string) bool {
	v, err := cmd.Flags().GetBool(name)
	if err != nil {
		v, err = cmd.Root().PersistentFlags().GetBool(name)
		if err != nil {
			return false
		}
	}
	return v
}

// setupLogger creates the redacting structured logger for the configured
// verbosity.
func setupLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch {
	case cfg.Silent:
		level = slog.LevelError
	case cfg.Verbose:
		level = slog.LevelDebug
	}
	return nclog.NewSecureLogger(os.Stderr, level)
}

// runCrawl executes the crawl and reports the result.
func runCrawl(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	fetcher, closeFetcher, err := newFetcher(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeFetcher()

	engine := crawler.NewEngine(fetcher,
		crawler.WithConcurrency(cfg.Concurrency),
		crawler.WithMaxRequests(cfg.MaxRequests),
		crawler.WithExcludedHeaders(cfg.ExcludedHeaders),
		crawler.WithPatternFilter(crawler.NewPatternFilter(cfg.IgnorePatterns, cfg.FollowPatterns)),
		crawler.WithLogger(logger),
	)

	started := time.Now()
	result, err := engine.Crawl(ctx, cfg.Seed)
	switch {
	case err == nil:
	case errors.Is(err, context.Canceled) && result != nil:
		logger.Warn("crawl interrupted; reporting partial results")
	default:
		return err
	}
	finished := time.Now()

	if !cfg.Silent {
		fmt.Fprintf(os.Stderr, "Crawl completed in %s: %d pages fetched, %d headers observed\n",
			finished.Sub(started).Round(time.Millisecond),
			result.Stats.PagesFetched,
			len(result.Headers),
		)
	}

	if err := outputResult(cfg, result); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if cfg.SaveToDB {
		if err := saveRun(ctx, cfg, result, started, finished, logger); err != nil {
			// History is best effort; the crawl itself succeeded.
			logger.Error("failed to save run to history", "error", err)
		}
	}

	return nil
}

// newFetcher builds the page fetcher selected by the configuration and
// returns it with its cleanup function.
func newFetcher(ctx context.Context, cfg *config.Config, logger *slog.Logger) (crawler.Fetcher, func(), error) {
	if cfg.NoRender {
		p := renderer.NewPlain(
			renderer.WithPlainTimeout(cfg.FetchTimeout),
			renderer.WithPlainUserAgents(cfg.UserAgents),
			renderer.WithPlainLogger(logger),
		)
		return p, func() {}, nil
	}

	chrome, err := renderer.NewChrome(ctx,
		renderer.WithFetchTimeout(cfg.FetchTimeout),
		renderer.WithSettleDelay(cfg.SettleDelay),
		renderer.WithUserAgents(cfg.UserAgents),
		renderer.WithChromeLogger(logger),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to start browser (use --no-render for a static crawl): %w", err)
	}
	return chrome, chrome.Close, nil
}

// outputResult writes the crawl result in the requested format.
func outputResult(cfg *config.Config, result *model.CrawlResult) error {
	var output *os.File
	if cfg.OutputFile != "" {
		dir := filepath.Dir(cfg.OutputFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		// 0600: aggregated headers can reveal details about the scanned
		// site that should stay with the operator.
		f, err := os.OpenFile(cfg.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close() //nolint:errcheck // flushed below via writer errors
		output = f
	} else {
		output = os.Stdout
	}

	var w report.Writer
	switch {
	case cfg.JSONReport:
		w = report.NewJSONWriter(output, report.WithPrettyPrint())
	case cfg.MarkdownReport:
		w = report.NewMarkdownWriter(output, report.WithMarkdownSeed(cfg.Seed))
	default:
		w = report.NewSimpleWriter(output, report.WithSeed(cfg.Seed), report.WithVerbose(cfg.Verbose))
	}

	_, err := w.Write(result)
	return err
}

// saveRun records the crawl in the history database.
func saveRun(ctx context.Context, cfg *config.Config, result *model.CrawlResult, started, finished time.Time, logger *slog.Logger) error {
	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return err
	}
	defer db.Close() //nolint:errcheck // best effort cleanup

	_, normalizedSeed, err := crawler.ParseSeed(cfg.Seed)
	if err != nil {
		return err
	}

	id, err := db.SaveRun(ctx, &model.RunRecord{
		SeedURL:      normalizedSeed,
		StartedAt:    started,
		FinishedAt:   finished,
		PagesFetched: result.Stats.PagesFetched,
		PagesFailed:  result.Stats.PagesFailed,
		Result:       result,
	})
	if err != nil {
		return err
	}

	logger.Info("run saved to history", "id", id, "dir", cfg.DBDir)
	return nil
}
