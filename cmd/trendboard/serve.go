package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/JonMunkholm/trendboard/internal/source"
	"github.com/JonMunkholm/trendboard/internal/view"
	"github.com/JonMunkholm/trendboard/internal/web"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the web server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, false)
			if err != nil {
				return err
			}

			location := source.Resolve(cfg.Source.Location, cfg.Server.LoopbackAddr())
			src := source.New(location, cfg.Source.FetchTimeout, cfg.Source.MaxBytes)

			slog.Info("configuration loaded",
				"addr", cfg.Server.Addr(),
				"results_dir", cfg.Source.ResultsDir,
				"max_views", cfg.View.MaxLive,
				"view_ttl", cfg.View.TTL,
				"rate_limit_enabled", cfg.Rate.Enabled,
			)
			slog.Debug("effective configuration", "config", cfg.String())

			views := view.NewManager(src, view.Options{
				MaxViews:     cfg.View.MaxLive,
				TTL:          cfg.View.TTL,
				FetchTimeout: cfg.Source.FetchTimeout,
			})
			server := web.NewServer(views, cfg)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			// A failed listen cancels gctx, which runs the shutdown branch too.
			g, gctx := errgroup.WithContext(ctx)

			g.Go(func() error {
				views.StartSweeper(gctx, cfg.View.SweepInterval)
				return nil
			})

			g.Go(func() error {
				slog.Info("server starting", "addr", cfg.Server.Addr())
				if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})

			g.Go(func() error {
				<-gctx.Done()
				slog.Info("shutting down...")

				shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
				defer cancel()

				err := server.Shutdown(shutdownCtx)
				views.CloseAll()
				return err
			})

			if err := g.Wait(); err != nil {
				return err
			}
			slog.Info("server stopped")
			return nil
		},
	}
}
