package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/JonMunkholm/trendboard/internal/config"
	"github.com/JonMunkholm/trendboard/internal/logging"
	"github.com/JonMunkholm/trendboard/internal/source"
	"github.com/JonMunkholm/trendboard/internal/view"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "trendboard",
		Short: "Show the trending GitHub repositories table.",
		Long: `trendboard fetches the published result.csv of trending repositories
and shows it as a table: served as a web page, rendered to a static HTML
file, or printed in the terminal.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Overload overwrites existing env vars.
			if err := godotenv.Overload(); err == nil {
				slog.Debug("loaded .env file")
			}
			return nil
		},
	}

	root.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")

	root.AddCommand(newServeCmd(), newRenderCmd(), newShowCmd())
	return root
}

// loadConfig reads the environment and installs the logger. CLI commands log
// to stderr so their output on stdout stays clean.
func loadConfig(cmd *cobra.Command, stderr bool) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	level := cfg.Logging.Level
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = "debug"
	}
	if stderr {
		slog.SetDefault(logging.New(os.Stderr, level, cfg.Logging.Format))
	} else {
		logging.Setup(level, cfg.Logging.Format)
	}
	return cfg, nil
}

// defaultLocation is SOURCE_LOCATION for commands that run without the
// server. The default "/results/..." path is served out of RESULTS_DIR, so
// read it from there directly.
func defaultLocation(cfg *config.Config) string {
	if rest, ok := strings.CutPrefix(cfg.Source.Location, "/results/"); ok {
		return filepath.Join(cfg.Source.ResultsDir, filepath.FromSlash(rest))
	}
	return cfg.Source.Location
}

// fetchState runs one view to completion against location.
func fetchState(ctx context.Context, location string, cfg *config.Config) (view.State, error) {
	src := source.New(location, cfg.Source.FetchTimeout, cfg.Source.MaxBytes)

	if cfg.Source.FetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Source.FetchTimeout+time.Second)
		defer cancel()
	}

	v := view.New("cli")
	v.Mount(ctx, src)
	defer v.Unmount()
	return v.Wait(ctx)
}
