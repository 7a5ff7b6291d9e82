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

	"github.com/nao1215/cubegrab/internal/acquire"
	"github.com/nao1215/cubegrab/internal/config"
	"github.com/nao1215/cubegrab/internal/fetch"
	"github.com/nao1215/cubegrab/internal/log"
	"github.com/nao1215/cubegrab/internal/model"
	"github.com/nao1215/cubegrab/internal/pipeline"
	"github.com/nao1215/cubegrab/internal/probe"
	"github.com/nao1215/cubegrab/internal/report"
	"github.com/nao1215/cubegrab/internal/stitch"
	"github.com/nao1215/cubegrab/internal/store"
	"github.com/nao1215/cubegrab/internal/transport"
)

// NewGrabCmd creates the grab command.
func NewGrabCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grab <tile-url>...",
		Short: "Download and stitch cubemap panoramas",
		Long: `Grab downloads every tile of the panorama a tile URL belongs to and stitches
the six cube faces into an equirectangular JPEG.

For tile pyramids the highest zoom level and the grid of every face are found
by probing. "Not found" answers end a row or a face; server errors and timeouts
are retried and fail the panorama when retries run out, so a panorama is never
silently cut short.

Examples:
  # Grab one panorama into pano.jpg
  cubegrab grab -o pano.jpg https://tiles.example.com/pano0/3/0_0.jpg

  # Grab several panoramas into a directory, two at a time
  cubegrab grab -o out/ -b 2 https://a.example.com/p_f.jpg https://b.example.com/p_f.jpg

  # Rotate the result and print a Markdown report
  cubegrab grab --rotation 90,0,0 --markdown https://tiles.example.com/pano0/3/0_0.jpg

  # Route requests through a SOCKS5 proxy
  cubegrab grab --proxy 127.0.0.1:9050 https://tiles.example.com/pano0/3/0_0.jpg`,
		Args: cobra.MinimumNArgs(1),
		RunE: runGrabCmd,
	}

	// Network
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout of a single request attempt")
	cmd.Flags().IntP("retries", "r", config.DefaultRetries,
		"Retries after a server error or timeout")
	cmd.Flags().Duration("backoff", config.DefaultBackoff,
		"Delay before the first retry; doubles on every retry")
	cmd.Flags().String("proxy", "",
		"SOCKS5 proxy address (host:port)")
	cmd.Flags().Bool("tor", false,
		"Start an embedded Tor daemon and route requests through it")
	cmd.Flags().Duration("tor-timeout", config.DefaultTorStartupTimeout,
		"Timeout for embedded Tor startup")
	cmd.Flags().String("user-agent", config.DefaultUserAgent,
		"User-Agent header")

	// Probing
	cmd.Flags().IntP("workers", "w", config.DefaultFaceWorkers,
		"Number of faces probed concurrently")
	cmd.Flags().Int("window", config.DefaultColumnWindow,
		"Number of columns fetched concurrently within a row")
	cmd.Flags().Int("max-extent", config.DefaultMaxExtent,
		"Largest number of rows or columns accepted per face")
	cmd.Flags().Int("max-zoom", config.DefaultMaxZoom,
		"Highest zoom level probed")
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of panoramas processed concurrently")

	// Stitching
	cmd.Flags().Float64Slice("rotation", nil,
		"Rotation as yaw,pitch,roll in degrees")
	cmd.Flags().IntP("quality", "q", config.DefaultQuality,
		"JPEG quality of the panorama (1-100)")
	cmd.Flags().Int("width", 0,
		"Width of the panorama in pixels (default: four times the face size)")
	cmd.Flags().StringSlice("stitch-command", nil,
		"External projector command and arguments (see 'cubegrab init')")
	cmd.Flags().StringP("output", "o", "",
		"Panorama file for one URL, or directory for several (default: current directory)")

	// Persistence
	cmd.Flags().String("store", config.DefaultStoreBackend,
		"Store backend: sqlite or bbolt")
	cmd.Flags().String("db-dir", config.XDGDataDir(),
		"Store directory")
	cmd.Flags().Bool("no-db", false,
		"Do not store tiles, panoramas and reports")

	// Configuration and reports
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .cubegrab in current or home directory)")
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().String("report-file", "",
		"Write the report to a file instead of stdout")

	return cmd
}

func runGrabCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.NewSecureLogger(cmd.ErrOrStderr(), cfg.Verbose)

	ctx, stop := signal.NotifyContext(contextOf(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runGrab(ctx, cfg, logger, cmd.OutOrStdout(), cmd.ErrOrStderr())
}

// contextOf returns the command context, which is nil outside ExecuteContext.
func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// buildConfig creates a Config from flags and the config file.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.URLs = args
	cfg.Verbose = getVerboseFlag(cmd)

	flags := cmd.Flags()
	var err error
	if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
		return nil, err
	}
	if cfg.Retries, err = flags.GetInt("retries"); err != nil {
		return nil, err
	}
	if cfg.Backoff, err = flags.GetDuration("backoff"); err != nil {
		return nil, err
	}
	cfg.MaxBackoff = max(cfg.MaxBackoff, cfg.Backoff)
	if cfg.ProxyAddress, err = flags.GetString("proxy"); err != nil {
		return nil, err
	}
	if cfg.UseTor, err = flags.GetBool("tor"); err != nil {
		return nil, err
	}
	if cfg.TorStartupTimeout, err = flags.GetDuration("tor-timeout"); err != nil {
		return nil, err
	}
	if cfg.UserAgent, err = flags.GetString("user-agent"); err != nil {
		return nil, err
	}
	if cfg.FaceWorkers, err = flags.GetInt("workers"); err != nil {
		return nil, err
	}
	if cfg.ColumnWindow, err = flags.GetInt("window"); err != nil {
		return nil, err
	}
	if cfg.MaxExtent, err = flags.GetInt("max-extent"); err != nil {
		return nil, err
	}
	if cfg.MaxZoom, err = flags.GetInt("max-zoom"); err != nil {
		return nil, err
	}
	if cfg.BatchSize, err = flags.GetInt("batch"); err != nil {
		return nil, err
	}
	if cfg.Rotation, err = flags.GetFloat64Slice("rotation"); err != nil {
		return nil, err
	}
	if cfg.Quality, err = flags.GetInt("quality"); err != nil {
		return nil, err
	}
	if cfg.Width, err = flags.GetInt("width"); err != nil {
		return nil, err
	}
	if cfg.StitchCommand, err = flags.GetStringSlice("stitch-command"); err != nil {
		return nil, err
	}
	if cfg.Output, err = flags.GetString("output"); err != nil {
		return nil, err
	}
	if cfg.StoreBackend, err = flags.GetString("store"); err != nil {
		return nil, err
	}
	if cfg.DBDir, err = flags.GetString("db-dir"); err != nil {
		return nil, err
	}
	noDB, err := flags.GetBool("no-db")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noDB
	if cfg.JSONReport, err = flags.GetBool("json"); err != nil {
		return nil, err
	}
	if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
		return nil, err
	}
	if cfg.ReportFile, err = flags.GetString("report-file"); err != nil {
		return nil, err
	}
	if cfg.ConfigFilePath, err = flags.GetString("config"); err != nil {
		return nil, err
	}

	// A missing file is only an error when the user named one.
	path := config.FindConfigFile(cfg.ConfigFilePath)
	switch {
	case path != "":
		f, err := config.LoadConfigFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
		quality := cfg.Quality
		cfg.ApplyFile(f)
		if flags.Changed("quality") {
			cfg.Quality = quality
		}
	case cfg.ConfigFilePath != "":
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}
	return cfg, nil
}

// runGrab processes all URLs of cfg. It fails when any conversion failed.
func runGrab(ctx context.Context, cfg *config.Config, logger *slog.Logger, stdout, stderr io.Writer) error {
	logger.Info("starting grab",
		"urls", len(cfg.URLs),
		"batchSize", cfg.BatchSize,
		"store", cfg.StoreBackend,
		"saveToDB", cfg.SaveToDB,
	)

	client, cleanup, err := newHTTPClient(ctx, cfg, logger, stderr)
	if err != nil {
		return err
	}
	defer cleanup()

	fetcher := fetch.NewHTTPFetcher(client,
		fetch.WithRetries(cfg.Retries),
		fetch.WithBackoff(cfg.Backoff, cfg.MaxBackoff),
		fetch.WithTimeout(cfg.Timeout),
		fetch.WithMaxBodySize(cfg.MaxTileSize),
		fetch.WithUserAgent(cfg.UserAgent),
		fetch.WithLogger(logger),
	)

	projector, err := newProjector(cfg, logger)
	if err != nil {
		return err
	}

	progress := newTileProgress(stderr, cfg.Verbose)
	opts := []acquire.Option{
		acquire.WithMultistitcher(stitch.NewCompositor(stitch.WithQuality(cfg.Quality))),
		acquire.WithLogger(logger),
		acquire.WithTileHook(progress.tile),
		acquire.WithProbeOptions(
			probe.WithFaceWorkers(cfg.FaceWorkers),
			probe.WithColumnWindow(cfg.ColumnWindow),
			probe.WithMaxExtent(cfg.MaxExtent),
			probe.WithMaxZoom(cfg.MaxZoom),
			probe.WithLogger(logger),
		),
	}
	if cfg.SaveToDB {
		st, err := store.Open(cfg.StoreBackend, cfg.DBDir)
		if err != nil {
			return fmt.Errorf("failed to open store: %w", err)
		}
		defer st.Close()
		logger.Info("store opened", "backend", cfg.StoreBackend, "dir", cfg.DBDir)
		opts = append(opts, acquire.WithStore(st))
	}
	coordinator := acquire.New(fetcher, projector, opts...)

	reportOut, closeReport, err := openReportOutput(cfg.ReportFile, stdout)
	if err != nil {
		return err
	}
	defer closeReport()

	output := newOutputStep(cfg)
	p := pipeline.New(pipeline.WithLogger(logger), pipeline.WithContinueOnError(true))
	p.AddSteps(
		output,
		pipeline.NewReportStep(newReportWriter(cfg, reportOut)),
	)

	convs := make([]*model.Conversion, len(cfg.URLs))
	rot, hasRot := cfg.RotationValue()
	for i, u := range cfg.URLs {
		convs[i] = model.NewConversion(u)
		if hasRot {
			convs[i].SetRotation(rot)
		}
	}

	start := time.Now()
	bp := pipeline.NewBatchProcessor(coordinator,
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
		pipeline.WithPipeline(p),
	)
	outcomes, err := bp.ProcessBatch(ctx, convs)
	tiles, size := progress.finish()

	failed := 0
	for _, o := range outcomes {
		switch {
		case o.Err != nil:
			failed++
			fmt.Fprintf(stderr, "failed: %s: %v\n", o.Result.Report.URL, o.Err)
		case o.StepErr != nil:
			failed++
			fmt.Fprintf(stderr, "failed: %s: %v\n", o.Result.Report.URL, o.StepErr)
		default:
			fmt.Fprintf(stderr, "saved %s\n", output.Path(o.Result))
		}
	}
	logger.Info("grab complete",
		"urls", len(convs),
		"failed", failed,
		"tiles", tiles,
		"bytes", size,
		"elapsed", time.Since(start).Round(time.Millisecond),
	)

	if err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d panoramas failed", failed, len(convs))
	}
	return nil
}

// newHTTPClient builds the tile client. With --tor the returned cleanup
// stops the daemon.
func newHTTPClient(ctx context.Context, cfg *config.Config, logger *slog.Logger, stderr io.Writer) (client *http.Client, cleanup func(), err error) {
	hosts, defaults := cfg.File.TransportOptions()
	opts := transport.Options{
		ProxyAddress: cfg.ProxyAddress,
		Hosts:        hosts,
		Defaults:     defaults,
	}
	cleanup = func() {}

	switch {
	case cfg.ProxyAddress != "":
		if status := transport.CheckProxy(ctx, cfg.ProxyAddress); status != transport.ProxyStatusOK {
			return nil, nil, fmt.Errorf("proxy check failed: %w (make sure a SOCKS5 proxy is running at %s)",
				status.Error(), cfg.ProxyAddress)
		}
		logger.Info("proxy connection verified", "address", cfg.ProxyAddress)
	case cfg.UseTor:
		fmt.Fprintln(stderr, "Starting embedded Tor daemon...")
		tor := transport.NewEmbeddedTor(transport.WithStartupTimeout(cfg.TorStartupTimeout))
		if err := tor.Start(ctx); err != nil {
			return nil, nil, fmt.Errorf("failed to start embedded Tor: %w", err)
		}
		logger.Info("embedded Tor daemon started", "socksAddr", tor.SocksAddr())
		cleanup = func() {
			if err := tor.Stop(); err != nil {
				logger.Error("failed to stop embedded Tor", "error", err)
			}
		}
		c, err := tor.NewHTTPClient(opts)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("failed to create Tor client: %w", err)
		}
		return c, cleanup, nil
	}

	client, err = transport.NewHTTPClient(opts)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}
	return client, cleanup, nil
}

// newProjector returns the external command when configured and the
// built-in projector otherwise.
func newProjector(cfg *config.Config, logger *slog.Logger) (acquire.Projector, error) {
	if len(cfg.StitchCommand) > 0 {
		c, err := stitch.NewCommand(cfg.StitchCommand, stitch.WithCommandLogger(logger))
		if err != nil {
			return nil, fmt.Errorf("invalid stitch command: %w", err)
		}
		return c, nil
	}
	return stitch.NewEquirect(
		stitch.WithEquirectQuality(cfg.Quality),
		stitch.WithWidth(cfg.Width),
	), nil
}

// newOutputStep writes a single panorama to --output as a file; otherwise
// --output (or the current directory) is a directory.
func newOutputStep(cfg *config.Config) *pipeline.OutputStep {
	if cfg.Output == "" {
		return pipeline.NewDirOutputStep(".")
	}
	if len(cfg.URLs) == 1 && !isDirPath(cfg.Output) {
		return pipeline.NewFileOutputStep(cfg.Output)
	}
	return pipeline.NewDirOutputStep(cfg.Output)
}

// isDirPath reports whether path names a directory, either by a trailing
// separator or because one exists there.
func isDirPath(path string) bool {
	if os.IsPathSeparator(path[len(path)-1]) {
		return true
	}
	info, err := os.Stat(filepath.Clean(path))
	return err == nil && info.IsDir()
}

func newReportWriter(cfg *config.Config, w io.Writer) report.Writer {
	switch {
	case cfg.JSONReport:
		if len(cfg.URLs) == 1 {
			return report.NewJSONWriter(w, report.WithPrettyPrint())
		}
		return report.NewJSONWriter(w)
	case cfg.MarkdownReport:
		return report.NewMarkdownWriter(w)
	default:
		return report.NewSimpleWriter(w, report.WithVerbose(cfg.Verbose))
	}
}

// openReportOutput opens path for the report, or returns stdout when path is empty.
func openReportOutput(path string, stdout io.Writer) (io.Writer, func(), error) {
	if path == "" {
		return stdout, func() {}, nil
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create report directory: %w", err)
		}
	}
	// Reports may carry signed URLs.
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600) //nolint:gosec // user-provided path
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create report file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil //nolint:errcheck // nothing left to do on close failure
}
