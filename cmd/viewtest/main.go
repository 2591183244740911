// Command viewtest opens a URL in several concurrent headless Chrome
// sessions, scrolls through it, stays for a while and closes, optionally
// repeating at an interval until interrupted.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/yunseokse0/viewtest/internal/browser"
	"github.com/yunseokse0/viewtest/internal/config"
	"github.com/yunseokse0/viewtest/internal/humanize"
	"github.com/yunseokse0/viewtest/internal/io"
	"github.com/yunseokse0/viewtest/internal/runner"
	"github.com/yunseokse0/viewtest/internal/worker"
)

// options holds the values bound to command line flags
type options struct {
	configFile string
	threads    int
	noHeadless bool
	minDelay   int
	maxDelay   int
	continuous bool
	interval   int
	output     string
	format     string
	userAgent  string
	chromePath string
	verbose    bool
}

func main() {
	if err := newRootCmd(&options{}).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "viewtest [url]",
		Short: "Open a page in concurrent browser sessions",
		Long: `viewtest starts a batch of Chrome sessions against one URL. Each session
loads the page, waits for the DOM, scrolls down a few times with short pauses,
stays on the page for a random delay and closes.

With --continuous the batch repeats every --interval seconds until the
process is interrupted.`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := buildConfig(cmd, opts, args)
			if err != nil {
				return err
			}

			logger, err := newLogger(opts.verbose)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			defer func() { _ = logger.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return run(ctx, cfg, logger)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.configFile, "config", "c", "", "path to a YAML configuration file")
	f.IntVarP(&opts.threads, "threads", "t", 5, "number of concurrent browser sessions")
	f.BoolVar(&opts.noHeadless, "no-headless", false, "show browser windows instead of running headless")
	f.IntVar(&opts.minDelay, "min-delay", 5, "minimum time to stay on the page, in seconds")
	f.IntVar(&opts.maxDelay, "max-delay", 15, "maximum time to stay on the page, in seconds")
	f.BoolVar(&opts.continuous, "continuous", false, "repeat batches until interrupted")
	f.IntVar(&opts.interval, "interval", 30, "seconds between batches in continuous mode")
	f.StringVarP(&opts.output, "output", "o", "", "write session results to this file")
	f.StringVar(&opts.format, "format", config.FormatJSON, "result file format (json or jsonl)")
	f.StringVar(&opts.userAgent, "user-agent", "", "override the browser user agent")
	f.StringVar(&opts.chromePath, "chrome", "", "path to the Chrome executable")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	return cmd
}

// buildConfig starts from the config file (or defaults) and applies every
// flag the user set explicitly.
func buildConfig(cmd *cobra.Command, opts *options, args []string) (*config.AppConfig, error) {
	cfg := config.Default()
	if opts.configFile != "" {
		var err error
		cfg, err = config.Load(opts.configFile)
		if err != nil {
			return nil, err
		}
	}

	if len(args) == 1 {
		cfg.Target.URL = args[0]
	}

	f := cmd.Flags()
	if f.Changed("threads") {
		cfg.Run.Workers = opts.threads
	}
	if f.Changed("no-headless") {
		cfg.Browser.Headless = !opts.noHeadless
	}
	if f.Changed("min-delay") {
		cfg.Visit.MinDwell = seconds(opts.minDelay)
	}
	if f.Changed("max-delay") {
		cfg.Visit.MaxDwell = seconds(opts.maxDelay)
	}
	if f.Changed("continuous") {
		cfg.Run.Continuous = opts.continuous
	}
	if f.Changed("interval") {
		cfg.Run.Interval = seconds(opts.interval)
	}
	if f.Changed("output") {
		cfg.IO.OutputFile = opts.output
	}
	if f.Changed("format") {
		cfg.IO.OutputFormat = opts.format
	}
	if f.Changed("user-agent") {
		cfg.Browser.UserAgent = opts.userAgent
	}
	if f.Changed("chrome") {
		cfg.Browser.ExecPath = opts.chromePath
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func run(ctx context.Context, cfg *config.AppConfig, logger *zap.Logger) error {
	logger.Info("viewtest starting",
		zap.String("url", cfg.Target.URL),
		zap.Int("workers", cfg.Run.Workers),
		zap.Bool("headless", cfg.Browser.Headless),
		zap.Bool("continuous", cfg.Run.Continuous),
	)

	rng := humanize.New()
	visitor := browser.NewVisitor(cfg, rng, logger)
	pool := worker.NewPool(&cfg.Run, visitor, rng, logger)
	writer := io.NewResultWriter(&cfg.IO)

	r := runner.New(&cfg.Run, pool, writer.WriteBatch, logger)
	if err := r.Run(ctx); err != nil {
		logger.Error("run failed", zap.Error(err))
		return err
	}

	if cfg.IO.OutputFile != "" {
		logger.Info("results saved", zap.String("file", cfg.IO.OutputFile))
	}
	logger.Info("all sessions finished")
	return nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	zcfg.Encoding = "console"
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if verbose {
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return zcfg.Build()
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
