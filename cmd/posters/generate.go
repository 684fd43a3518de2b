package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/iranrevolution2026/posters/internal/asset"
	"github.com/iranrevolution2026/posters/internal/compose"
	"github.com/iranrevolution2026/posters/internal/config"
	"github.com/iranrevolution2026/posters/internal/database"
	"github.com/iranrevolution2026/posters/internal/layout"
	"github.com/iranrevolution2026/posters/internal/loader"
	"github.com/iranrevolution2026/posters/internal/log"
	"github.com/iranrevolution2026/posters/internal/model"
	"github.com/iranrevolution2026/posters/internal/pipeline"
	"github.com/iranrevolution2026/posters/internal/report"
	"github.com/iranrevolution2026/posters/internal/tor"
	"github.com/iranrevolution2026/posters/internal/typeset"
)

// NewGenerateCmd creates the generate command.
func NewGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate [input.json]",
		Short: "Generate one PDF poster per memorial record",
		Long: `Generate reads a JSON backup of memorial records and writes <id>.pdf for
every record into the output directory.

Photos are downloaded in parallel; a record whose photo cannot be fetched
gets an "IMAGE UNAVAILABLE" placeholder. A record that fails is reported
and the run continues with the next one.

Examples:
  # Use the default backup and output directory
  posters generate

  # Generate from a specific backup
  posters generate ../backups/memorials_backup_2026-01-20.json -o ./out

  # Fetch photos through a local Tor client
  posters generate --proxy 127.0.0.1:9050 memorials.json

  # Start an embedded Tor daemon for the photo downloads
  posters generate --tor memorials.json

  # Write a Markdown run summary
  posters generate --markdown --report run.md memorials.json`,
		Args: cobra.MaximumNArgs(1),
		RunE: runGenerateCmd,
	}

	// Output flags
	cmd.Flags().StringP("output", "o", config.DefaultOutputDir,
		"Directory to save the generated PDF files")
	cmd.Flags().String("work-dir", "",
		"Directory for downloaded photos (default: XDG cache directory)")

	// Page flags
	cmd.Flags().String("base-url", config.DefaultBaseURL,
		"Verification site encoded in the QR codes")
	cmd.Flags().StringP("template", "t", config.DefaultTemplate,
		"Page template (bilingual or classic)")
	cmd.Flags().StringP("font", "f", config.DefaultFontPath,
		"TrueType font for Persian text")

	// Download flags
	cmd.Flags().Duration("timeout", config.DefaultTimeout,
		"Timeout for each photo download")
	cmd.Flags().IntP("concurrency", "c", config.DefaultConcurrency,
		"Number of photos downloaded in parallel")
	cmd.Flags().String("proxy", "",
		"Download photos through a SOCKS5 proxy (e.g., 127.0.0.1:9050)")
	cmd.Flags().Bool("tor", false,
		"Download photos through an embedded Tor daemon")
	cmd.Flags().Duration("tor-timeout", config.DefaultTorStartupTimeout,
		"Timeout for embedded Tor startup")

	// Configuration file
	cmd.Flags().String("config", "",
		"Configuration file path (default: .posters in current or home directory)")

	// Report flags
	cmd.Flags().String("report", "",
		"Write the run summary to the specified file path")
	cmd.Flags().BoolP("json", "j", false,
		"Write the run summary as JSON (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Write the run summary as Markdown (mutually exclusive with --json)")
	cmd.Flags().String("log-format", config.LogFormatText,
		"Log format on stderr (text or json)")

	// History flags
	cmd.Flags().String("history-dir", "",
		"Directory of the run history database (default: XDG data directory)")
	cmd.Flags().Bool("no-history", false,
		"Do not record this run in the history database")

	return cmd
}

// runGenerateCmd executes the generate command.
func runGenerateCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.New(cmd.ErrOrStderr(), cfg.Verbose, cfg.LogFormat)
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// Interrupting stops new records; posters already written are kept.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Info("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return runGenerate(ctx, cmd.OutOrStdout(), cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
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

// buildConfig creates a Config from the defaults, the config file and the
// command flags, in that order. Only flags set on the command line override
// the file.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()

	var err error
	cfg.ConfigFilePath, err = flags.GetString("config")
	if err != nil {
		return nil, err
	}

	// An explicit path must exist; the default locations are optional.
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	if configPath != "" {
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		file.Apply(cfg)
	} else if cfg.ConfigFilePath != "" {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	}

	stringFlags := map[string]*string{
		"output":      &cfg.OutputDir,
		"work-dir":    &cfg.WorkDir,
		"base-url":    &cfg.BaseURL,
		"template":    &cfg.Template,
		"font":        &cfg.FontPath,
		"proxy":       &cfg.ProxyAddress,
		"report":      &cfg.ReportFile,
		"log-format":  &cfg.LogFormat,
		"history-dir": &cfg.HistoryDir,
	}
	for name, dst := range stringFlags {
		if err := changedString(flags, name, dst); err != nil {
			return nil, err
		}
	}

	if flags.Changed("timeout") {
		if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("tor-timeout") {
		if cfg.TorStartupTimeout, err = flags.GetDuration("tor-timeout"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("concurrency") {
		if cfg.Concurrency, err = flags.GetInt("concurrency"); err != nil {
			return nil, err
		}
	}

	if cfg.UseTor, err = flags.GetBool("tor"); err != nil {
		return nil, err
	}
	if cfg.JSONReport, err = flags.GetBool("json"); err != nil {
		return nil, err
	}
	if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
		return nil, err
	}
	if cfg.NoHistory, err = flags.GetBool("no-history"); err != nil {
		return nil, err
	}

	cfg.Verbose = getVerboseFlag(cmd)

	if len(args) > 0 {
		cfg.InputPath = args[0]
	}

	return cfg, nil
}

// changedString copies a string flag into dst when it was set explicitly.
func changedString(flags *pflag.FlagSet, name string, dst *string) error {
	if !flags.Changed(name) {
		return nil
	}
	v, err := flags.GetString(name)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

// runGenerate executes a poster run. Only configuration and batch loading
// errors are returned; per-record failures end up in the summary.
func runGenerate(ctx context.Context, out io.Writer, cfg *config.Config, logger *slog.Logger) error {
	tmpl, err := buildTemplate(cfg)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	fmt.Fprintf(out, "Reading JSON from: %s\n", cfg.InputPath)
	fmt.Fprintf(out, "Saving PDFs to:    %s\n", cfg.OutputDir)

	if err := os.MkdirAll(cfg.OutputDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	batch, err := loader.Load(cfg.InputPath)
	if err != nil {
		return err
	}
	for _, w := range batch.Warnings {
		logger.Warn("batch warning", "detail", w)
	}

	client, cleanup, err := newPhotoClient(ctx, out, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	logger.Info("starting run",
		"records", len(batch.Records),
		"template", tmpl.Name,
		"concurrency", cfg.Concurrency,
		"workDir", cfg.WorkDir,
	)

	bp := newBatchProcessor(out, cfg, tmpl, client, logger)

	fmt.Fprintf(out, "Generating %d posters...\n", len(batch.Records))
	startedAt := time.Now()

	outcomes, runErr := bp.Run(ctx, batch.Records, func(o *model.Outcome) {
		printOutcome(out, o, cfg.Verbose)
	})

	summary := model.NewSummary(outcomes)
	summary.Input = cfg.InputPath
	summary.OutputDir = cfg.OutputDir
	summary.Template = tmpl.Name
	summary.StartedAt = startedAt
	summary.Duration = time.Since(startedAt)

	fmt.Fprintf(out, "\nDone: %d of %d posters created in %s.\n",
		summary.Succeeded, summary.Total, summary.Duration.Round(time.Millisecond))
	if runErr != nil {
		logger.Warn("run interrupted", "error", runErr)
		fmt.Fprintf(out, "Interrupted: %d records were not processed.\n", summary.Canceled)
	}

	if err := outputReport(out, cfg, summary); err != nil {
		logger.Error("report failed", "error", err)
	}

	if !cfg.NoHistory {
		// The run is recorded even after an interrupt; ctx may be done.
		if err := saveHistory(context.WithoutCancel(ctx), out, cfg.HistoryDir, summary); err != nil {
			logger.Error("failed to record run", "dir", cfg.HistoryDir, "error", err)
		}
	}

	return nil
}

// saveHistory records the run in the history database.
func saveHistory(ctx context.Context, out io.Writer, dir string, summary *model.Summary) error {
	db, err := database.Open(dir, database.DefaultOptions())
	if err != nil {
		return err
	}
	defer db.Close()

	id, err := db.SaveRun(ctx, summary)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Run recorded as #%d (see 'posters history %d').\n", id, id)
	return nil
}

// buildTemplate resolves the named template and applies the overrides.
func buildTemplate(cfg *config.Config) (layout.Template, error) {
	tmpl, err := layout.ByName(cfg.Template)
	if err != nil {
		return layout.Template{}, err
	}
	tmpl = tmpl.With(layout.Overrides{
		Title:          cfg.HeaderTitle,
		Caption:        cfg.FooterCaption,
		FontSizes:      cfg.FontSizes,
		ImageWidth:     cfg.ImageWidth,
		MaxImageHeight: cfg.MaxImageHeight,
	})
	if err := tmpl.Validate(); err != nil {
		return layout.Template{}, err
	}
	return tmpl, nil
}

// newBatchProcessor wires the resolve and render pipelines.
func newBatchProcessor(out io.Writer, cfg *config.Config, tmpl layout.Template, client *http.Client, logger *slog.Logger) *pipeline.BatchProcessor {
	resolver := asset.NewResolver(
		asset.NewFetcher(client, cfg.MaxBodySize),
		cfg.WorkDir,
		asset.WithLogger(logger),
		asset.WithMaxSide(cfg.MaxImagePixels),
	)
	composer := newComposer(out, cfg, tmpl, logger)

	resolve := pipeline.New([]pipeline.Step{
		pipeline.NewResolveStep(resolver),
	}, pipeline.WithLogger(logger))

	render := pipeline.New([]pipeline.Step{
		pipeline.NewComposeStep(composer, compose.NewFileSink(cfg.OutputDir), pipeline.WithComposeLogger(logger)),
		pipeline.NewDigestStep(),
	}, pipeline.WithLogger(logger))

	return pipeline.NewBatchProcessor(resolve, render,
		pipeline.WithConcurrency(cfg.Concurrency),
		pipeline.WithBatchLogger(logger),
	)
}

// newComposer loads the Persian font and builds the composer. A missing or
// unusable font is not fatal: secondary names are left out instead.
func newComposer(out io.Writer, cfg *config.Config, tmpl layout.Template, logger *slog.Logger) *compose.Composer {
	opts := []compose.Option{compose.WithLogger(logger)}

	face, err := typeset.Probe(cfg.FontPath)
	if err != nil {
		logger.Warn("font unavailable, Persian text will be skipped", "font", cfg.FontPath, "error", err)
		fmt.Fprintf(out, " [!] Font not usable (%v); Persian names will be left out.\n", err)
	} else {
		opts = append(opts, compose.WithUnicodeFace(face))
	}

	return compose.New(compose.Settings{
		Template: tmpl,
		BaseURL:  cfg.VerificationBase(),
	}, opts...)
}

// newPhotoClient returns the HTTP client used for photo downloads and a
// cleanup function that must be called when the run is over.
func newPhotoClient(ctx context.Context, out io.Writer, cfg *config.Config, logger *slog.Logger) (*http.Client, func(), error) {
	switch {
	case cfg.UseTor:
		embeddedTor, client, err := startEmbeddedTor(ctx, out, cfg, logger)
		if err != nil {
			return nil, nil, err
		}
		cleanup := func() {
			logger.Info("stopping embedded Tor daemon...")
			if err := embeddedTor.Stop(); err != nil {
				logger.Error("failed to stop embedded Tor", "error", err)
			}
		}
		return client.NewHTTPClient(cfg.UserAgent), cleanup, nil

	case cfg.ProxyAddress != "":
		client, err := tor.NewClient(cfg.ProxyAddress, cfg.Timeout)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create proxy client: %w", err)
		}
		if status := client.CheckConnection(ctx); status != tor.ProxyStatusOK {
			return nil, nil, fmt.Errorf("proxy check failed: %w (make sure the proxy is running at %s)",
				status.Error(), cfg.ProxyAddress)
		}
		logger.Info("proxy connection verified", "address", cfg.ProxyAddress)
		return client.NewHTTPClient(cfg.UserAgent), func() {}, nil

	default:
		return tor.DirectHTTPClient(cfg.Timeout, cfg.UserAgent), func() {}, nil
	}
}

// startEmbeddedTor starts an embedded Tor daemon using tornago.
func startEmbeddedTor(ctx context.Context, out io.Writer, cfg *config.Config, logger *slog.Logger) (*tor.EmbeddedTor, *tor.Client, error) {
	fmt.Fprintln(out, "Starting embedded Tor daemon...")
	fmt.Fprintf(out, "This may take 1-3 minutes while Tor bootstraps and connects to the network.\n\n")

	embeddedTor := tor.NewEmbeddedTor(
		tor.WithStartupTimeout(cfg.TorStartupTimeout),
	)
	if err := embeddedTor.Start(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to start embedded Tor: %w", err)
	}

	logger.Info("embedded Tor daemon started",
		"socksAddr", embeddedTor.SocksAddr(),
		"controlAddr", embeddedTor.ControlAddr(),
	)

	client, err := embeddedTor.NewClient(cfg.Timeout)
	if err != nil {
		_ = embeddedTor.Stop() //nolint:errcheck // Best effort cleanup
		return nil, nil, fmt.Errorf("failed to create Tor client: %w", err)
	}

	if status := client.CheckConnection(ctx); status != tor.ProxyStatusOK {
		_ = embeddedTor.Stop() //nolint:errcheck // Best effort cleanup
		return nil, nil, fmt.Errorf("embedded Tor proxy check failed: %s", status)
	}

	fmt.Fprintf(out, "Embedded Tor daemon started (SOCKS proxy: %s)\n\n", embeddedTor.SocksAddr())
	return embeddedTor, client, nil
}

// printOutcome writes the console line of one record. The written path
// follows on its own line when verbose is set.
func printOutcome(out io.Writer, o *model.Outcome, verbose bool) {
	switch o.Status {
	case model.StatusOK:
		fmt.Fprintf(out, " [OK] %s\n", o.Name)
		if verbose {
			fmt.Fprintf(out, "      -> %s\n", o.Path)
		}
		for _, w := range o.Warnings {
			fmt.Fprintf(out, "      [!] %s\n", w)
		}
	case model.StatusCanceled:
		fmt.Fprintf(out, " [--] Canceled: %s\n", o.Name)
	default:
		fmt.Fprintf(out, " [!!] Error generating for %s: %s\n", o.Name, o.Error)
	}
}

// outputReport writes the run summary in the requested format. Nothing is
// written unless a format or a report file was asked for.
func outputReport(out io.Writer, cfg *config.Config, summary *model.Summary) error {
	if cfg.ReportFile == "" && !cfg.JSONReport && !cfg.MarkdownReport {
		return nil
	}

	output := out
	if cfg.ReportFile != "" {
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create report directory: %w", err)
			}
		}

		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create report file: %w", err)
		}
		defer f.Close()
		output = f
	}

	var writer report.Writer
	switch {
	case cfg.JSONReport:
		writer = report.NewJSONWriter(output, report.WithPrettyPrint())
	case cfg.MarkdownReport:
		writer = report.NewMarkdownWriter(output)
	default:
		writer = report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	}

	if _, err := writer.Write(summary); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
