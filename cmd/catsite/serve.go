package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vango-dev/catsite/internal/config"
	"github.com/vango-dev/catsite/internal/errors"
	"github.com/vango-dev/catsite/pkg/actions"
	"github.com/vango-dev/catsite/pkg/assets"
	"github.com/vango-dev/catsite/pkg/server"
)

func serveCmd(configPath *string) *cobra.Command {
	var (
		addr string
		dir  string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the website server",
		Long: `Serve the page and handle its WebSocket sessions.

Settings come from the config file; flags override them.

Examples:
  catsite serve
  catsite serve --addr=:9000
  catsite serve --dir=./web`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			if dir != "" {
				cfg.Assets.Source = config.SourceDir
				cfg.Assets.Dir = dir
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Address to listen on (default from config)")
	cmd.Flags().StringVarP(&dir, "dir", "d", "", "Serve the page from this directory")

	return cmd
}

func runServe(ctx context.Context, cfg *config.Config) error {
	logger := newLogger(os.Stderr, cfg.LogLevel(), cfg.Log.Format)
	slog.SetDefault(logger)

	src, err := assetSource(cfg)
	if err != nil {
		return err
	}
	table, err := actionTable(cfg)
	if err != nil {
		return err
	}
	store := actions.NewStore(table)

	srv := server.New(serverConfig(cfg), serverOptions(cfg, src, store, logger)...)

	logger.Info("catsite starting",
		"version", version,
		"addr", cfg.Server.Addr,
		"assets", cfg.Assets.Source,
		"actions", actionsName(cfg),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Run(gctx); err != nil {
			return errors.New("E140").WithDetail(fmt.Sprintf("listening on %s", cfg.Server.Addr)).Wrap(err)
		}
		return nil
	})
	if cfg.Actions.File != "" && cfg.Actions.Watch {
		g.Go(func() error {
			return actions.Watch(gctx, cfg.Actions.File, store.Replace, logger.With("component", "actions"))
		})
	}

	err = g.Wait()
	logger.Info("catsite stopped")
	return err
}

// serverConfig maps the file config onto the server's.
func serverConfig(cfg *config.Config) server.Config {
	sc := server.DefaultConfig()
	sc.Address = cfg.Server.Addr
	sc.MaxSessions = cfg.Server.MaxSessions
	sc.EventQueue = cfg.Server.EventQueue
	sc.ReadLimit = cfg.Server.ReadLimit
	sc.WriteTimeout = cfg.WriteTimeout()
	sc.PingInterval = cfg.PingInterval()
	sc.PongTimeout = cfg.PongTimeout()
	sc.ShutdownTimeout = cfg.ShutdownTimeout()
	sc.H2C = cfg.Server.H2C
	sc.Page = cfg.PageSettings()
	if len(cfg.Server.AllowedOrigins) > 0 {
		sc.CheckOrigin = server.AllowOrigins(cfg.Server.AllowedOrigins)
	}
	sc.MetricsPath = ""
	if cfg.Metrics.Enabled {
		sc.MetricsPath = cfg.Metrics.Path
	}
	return sc
}

func serverOptions(cfg *config.Config, src assets.Source, store *actions.Store, logger *slog.Logger) []server.Option {
	opts := []server.Option{
		server.WithLogger(logger.With("component", "server")),
		server.WithAssets(src,
			assets.WithCacheControl(cfg.CacheControl()),
			assets.WithHeaders(cfg.Assets.Headers),
			assets.WithHandlerLogger(logger.With("component", "assets")),
		),
		server.WithActions(store),
	}
	if cfg.Metrics.Namespace != "" {
		opts = append(opts, server.WithMetricsNamespace(cfg.Metrics.Namespace))
	}
	if cfg.Metrics.Tracing {
		opts = append(opts, server.WithTracing())
	}
	return opts
}

func actionsName(cfg *config.Config) string {
	if cfg.Actions.File == "" {
		return "built-in"
	}
	return cfg.Actions.File
}
