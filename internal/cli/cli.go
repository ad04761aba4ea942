package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/legislator-ages/internal/config"
	"github.com/pfrederiksen/legislator-ages/internal/httpclient"
	"github.com/pfrederiksen/legislator-ages/internal/logger"
	"github.com/pfrederiksen/legislator-ages/internal/storage"
	"github.com/pfrederiksen/legislator-ages/internal/wikidate"
	"github.com/pfrederiksen/legislator-ages/internal/wikipedia"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

// app holds the flags and collaborators shared by every command.
type app struct {
	stdout io.Writer
	stderr io.Writer

	configPath string
	envFile    string
	dataDir    string
	format     string
	verbose    bool
	apiURL     string

	cfg *config.Config
}

func newApp(stdout, stderr io.Writer) *app {
	return &app{stdout: stdout, stderr: stderr}
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	return newApp(os.Stdout, os.Stderr).rootCmd()
}

func (a *app) rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "legislator-ages",
		Short: "Compute the ages of sitting legislators from Wikipedia",
		Long: `A CLI tool that scrapes lists of sitting legislators from Wikipedia,
normalizes the many ways articles encode a birth date, and reports ages and
age histograms per legislature.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: a.dumpMetrics,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "YAML file overriding the built-in source catalog")
	flags.StringVar(&a.envFile, "env-file", ".env", "Environment file to load before reading LEGISLATOR_AGES_* variables")
	flags.StringVar(&a.dataDir, "data-dir", "", "Data directory for snapshots (default from config)")
	flags.StringVar(&a.format, "format", "text", "Output format: text or json")
	flags.BoolVar(&a.verbose, "verbose", false, "Enable verbose logging")
	flags.StringVar(&a.apiURL, "api-url", wikipedia.DefaultAPIURL, "MediaWiki API endpoint")
	_ = flags.MarkHidden("api-url")

	cmd.AddCommand(
		a.scrapeCmd(),
		a.agesCmd(),
		a.histogramCmd(),
		a.parseCmd(),
		a.sourcesCmd(),
	)
	return cmd
}

// setup loads configuration and installs the logger before any command runs.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	if _, err := parseFormat(a.format); err != nil {
		return err
	}
	if a.envFile != "" {
		if err := config.LoadDotEnv(a.envFile); err != nil {
			return err
		}
	}

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if a.dataDir != "" {
		cfg.Settings.DataDir = a.dataDir
	}
	a.cfg = cfg

	level, err := logger.ParseLevel(cfg.Settings.LogLevel)
	if err != nil {
		return err
	}
	if a.verbose {
		level = logger.LevelDebug
	}
	logger.SetDefault(logger.New(level, a.stderr))
	logger.Debug("Loaded configuration", logger.Fields{
		"config":   a.configPath,
		"data_dir": cfg.Settings.DataDir,
		"sources":  len(cfg.Sources),
	})
	return nil
}

func (a *app) dumpMetrics(cmd *cobra.Command, args []string) {
	if !a.verbose {
		return
	}
	_ = writeJSON(a.stderr, logger.GetMetricsSnapshot())
}

func (a *app) storage() (*storage.Storage, error) {
	store, err := storage.New(a.cfg.Settings.DataDir)
	if err != nil {
		return nil, fmt.Errorf("initializing storage: %w", err)
	}
	return store, nil
}

func (a *app) httpClient() *httpclient.Client {
	s := a.cfg.Settings
	retries := s.Retries
	if retries == 0 {
		// retries: 0 in the config turns retrying off.
		retries = -1
	}
	return httpclient.New(httpclient.Options{
		UserAgent: s.UserAgent,
		Timeout:   s.HTTPTimeout,
		Retries:   retries,
	})
}

func (a *app) output() OutputFormat {
	f, _ := parseFormat(a.format)
	return f
}

// clockFor returns a fixed clock for a YYYY-MM-DD date, or the system clock
// when date is empty.
func clockFor(date string) (wikidate.Clock, error) {
	if date == "" {
		return wikidate.RealClock{}, nil
	}
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return nil, fmt.Errorf("invalid --now %q (want YYYY-MM-DD): %w", date, err)
	}
	return wikidate.FixedClock(t), nil
}

func parseFormat(s string) (OutputFormat, error) {
	format := OutputFormat(strings.ToLower(strings.TrimSpace(s)))
	if format != FormatText && format != FormatJSON {
		return "", fmt.Errorf("invalid format: %s (must be 'text' or 'json')", s)
	}
	return format, nil
}

func notScraped(key string, err error) error {
	if errors.Is(err, storage.ErrSnapshotNotFound) {
		return fmt.Errorf("no snapshot for %s, run 'legislator-ages scrape --source %s' first: %w", key, key, err)
	}
	return fmt.Errorf("loading snapshot: %w", err)
}

// run executes args against a fresh command tree and returns the exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := newApp(stdout, stderr).rootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return ExitError
	}
	return ExitSuccess
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return run(ctx, os.Args[1:], os.Stdout, os.Stderr)
}
