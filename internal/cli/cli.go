package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/big5-stats/internal/cache"
	"github.com/pfrederiksen/big5-stats/internal/config"
	"github.com/pfrederiksen/big5-stats/internal/fetcher"
	"github.com/pfrederiksen/big5-stats/internal/logger"
	"github.com/pfrederiksen/big5-stats/internal/normalizer"
	"github.com/pfrederiksen/big5-stats/internal/pipeline"
	"github.com/pfrederiksen/big5-stats/internal/season"
	"github.com/pfrederiksen/big5-stats/internal/server"
	"github.com/pfrederiksen/big5-stats/internal/stats"
	"github.com/pfrederiksen/big5-stats/internal/storage"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

var (
	flagEnvFile string
	flagVerbose bool
	flagDataDir string
	flagBaseURL string

	flagSeason  string
	flagCountry string
	flagTeam    string
	flagWhere   []string
	flagColumns string
	flagSort    string
	flagFormat  string
	flagSave    bool
	flagOffline bool

	flagAddr string

	// cfg is resolved once per invocation, before any subcommand runs
	cfg *config.Config
)

// loadError marks a failed season load; it is shown to the user as-is
type loadError struct {
	err error
}

func (e *loadError) Error() string {
	return pipeline.LoadErrorPrefix + e.err.Error()
}

func (e *loadError) Unwrap() error {
	return e.err
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "big5-stats",
		Short: "Big 5 European leagues statistics from fbref",
		Long: `A CLI tool to load the combined Big 5 European leagues table from fbref
for a season, normalize it and print, filter or serve it.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setup,
	}

	cmd.PersistentFlags().StringVar(&flagEnvFile, "env-file", ".env", "Load environment variables from this file if it exists")
	cmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable verbose logging")
	cmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "Data directory for snapshots (overrides BIG5_DATA_DIR)")
	cmd.PersistentFlags().StringVar(&flagBaseURL, "base-url", "", "Base URL of the statistics pages (overrides BIG5_BASE_URL)")

	cmd.AddCommand(newSeasonsCmd())
	cmd.AddCommand(newTableCmd())
	cmd.AddCommand(newColumnsCmd())
	cmd.AddCommand(newValuesCmd())
	cmd.AddCommand(newServeCmd())

	return cmd
}

// setup loads configuration and installs the default logger
func setup(cmd *cobra.Command, args []string) error {
	if err := config.LoadDotEnv(flagEnvFile); err != nil {
		return err
	}

	loaded, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	if flagDataDir != "" {
		loaded.DataDir = flagDataDir
	}
	if flagBaseURL != "" {
		loaded.BaseURL = flagBaseURL
	}
	if flagVerbose {
		loaded.LogLevel = logger.LevelDebug
	}
	cfg = loaded

	// Logs go to stderr so stdout carries only command output.
	logger.SetDefault(logger.New(cfg.LogLevel, cmd.ErrOrStderr()))
	return nil
}

// newPipeline wires a fetcher and normalizer from the configuration
func newPipeline() *pipeline.Pipeline {
	f := fetcher.New(
		fetcher.WithBaseURL(cfg.BaseURL),
		fetcher.WithUserAgent(cfg.UserAgent),
		fetcher.WithRateLimit(cfg.RatePerMin),
	)
	return pipeline.New(f, normalizer.New(normalizer.DefaultTranslations()))
}

// resolveSeason reads --season as a catalog label or a season key
func resolveSeason() (season.Key, error) {
	if flagSeason == "" {
		return season.Current, nil
	}
	key, err := season.Resolve(flagSeason)
	if err != nil {
		return "", fmt.Errorf("invalid --season: %w", err)
	}
	return key, nil
}

// loadTable returns the table for key, from a saved snapshot when --offline is
// set and from the site otherwise. With --save a fetched table is persisted.
func loadTable(ctx context.Context, key season.Key) (*stats.Table, error) {
	if flagOffline {
		store, err := storage.Open(cfg.DataDir)
		if err != nil {
			return nil, fmt.Errorf("initializing storage: %w", err)
		}
		snapshot, err := store.LoadSnapshot(key)
		if err != nil {
			return nil, fmt.Errorf("loading snapshot: %w", err)
		}
		logger.Debug("loaded snapshot", logger.Fields{
			"season":   key.String(),
			"saved_at": snapshot.SavedAt,
		})
		return snapshot.Table, nil
	}

	if cfg.FetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.FetchTimeout)
		defer cancel()
	}

	tbl, err := newPipeline().Load(ctx, key)
	if err != nil {
		return nil, &loadError{err: err}
	}

	if flagSave {
		store, err := storage.New(cfg.DataDir)
		if err != nil {
			return nil, fmt.Errorf("initializing storage: %w", err)
		}
		if err := store.SaveSnapshot(key, tbl); err != nil {
			return nil, fmt.Errorf("saving snapshot: %w", err)
		}
		logger.Debug("saved snapshot", logger.Fields{"season": key.String(), "dir": store.Dir()})
	}

	return tbl, nil
}

// newCache wraps the pipeline in a season cache tuned from the configuration
func newCache() *cache.Cache {
	c := cache.New(newPipeline().Load)
	c.CurrentTTL = cfg.CurrentTTL
	c.HistoricalTTL = cfg.HistoricalTTL
	c.LoadTimeout = cfg.FetchTimeout
	return c
}

// newServer builds the API server over c
func newServer(c *cache.Cache) *server.Server {
	return server.New(c, server.Options{
		CORSOrigins: cfg.CORSOrigins,
		LoadTimeout: cfg.FetchTimeout,
	})
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// reportError writes err the way Execute shows it to the user
func reportError(w io.Writer, err error) {
	var le *loadError
	if errors.As(err, &le) {
		fmt.Fprintln(w, le.Error())
		return
	}
	fmt.Fprintf(w, "Error: %v\n", err)
}

// Execute runs the CLI
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		reportError(os.Stderr, err)
		os.Exit(ExitError)
	}
}
