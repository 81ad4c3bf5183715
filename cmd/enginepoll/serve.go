package main

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/vango-dev/enginepoll/internal/config"
	"github.com/vango-dev/enginepoll/internal/errors"
	"github.com/vango-dev/enginepoll/pkg/server"
)

// shutdownTimeout bounds how long in-flight requests may take to finish.
const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	var (
		configFile string
		addr       string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the engine server",
		Long: `Start an HTTP server that answers engine.io polls and websocket
upgrades. Settings come from the file given with --config, else from
enginepoll.json in the current directory if there is one, else defaults.

Examples:
  enginepoll serve
  enginepoll serve --addr=:9000
  enginepoll serve --config=enginepoll.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(".", configFile)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Address = addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg)
		},
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", "", "Path to enginepoll.json")
	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (default from config)")

	return cmd
}

// loadConfig reads path if set, otherwise enginepoll.json in dir if it
// exists, otherwise returns the defaults.
func loadConfig(dir, path string) (*config.Config, error) {
	switch {
	case path != "":
		return config.LoadFile(path)
	case config.Exists(dir):
		return config.Load(dir)
	default:
		return config.New(), nil
	}
}

// buildHandler wires the engine endpoint and, when enabled, the metrics
// endpoint onto one router.
func buildHandler(cfg *config.Config, logger *slog.Logger) (http.Handler, *server.Server, error) {
	sc, err := cfg.ServerConfig()
	if err != nil {
		return nil, nil, err
	}

	r := chi.NewRouter()
	opts := []server.Option{server.WithLogger(logger)}

	if cfg.Metrics.Enabled {
		registry := prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		opts = append(opts, server.WithMetrics(server.NewMetrics(
			server.WithNamespace(cfg.Metrics.Namespace),
			server.WithRegistry(registry),
		)))
		r.Handle(cfg.Metrics.Path, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	srv := server.New(sc, opts...)
	srv.Mount(r, cfg.Path)
	return r, srv, nil
}

func runServe(ctx context.Context, cfg *config.Config) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))

	handler, srv, err := buildHandler(cfg, logger)
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", cfg.Address)
	if err != nil {
		return errors.New(errors.ServerListenFailed).
			WithField(cfg.Address).
			Wrap(err)
	}

	// No WriteTimeout: polls are held open for up to PollTimeout.
	httpServer := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	printBanner()
	success("Listening on %s", ln.Addr())
	if f := cfg.File(); f != "" {
		info("Config:          %s", f)
	}
	info("Engine endpoint: %s", cfg.Path)
	if cfg.Metrics.Enabled {
		info("Metrics:         %s", cfg.Metrics.Path)
	}
	info("Press Ctrl+C to stop")

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		srv.Shutdown()
		if err != nil && err != http.ErrServerClosed {
			return errors.New(errors.ServerListenFailed).Wrap(err)
		}
		return nil
	case <-ctx.Done():
	}

	info("Shutting down...")

	// Close sessions first so waiting polls return.
	srv.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return errors.New(errors.ServerShutdownFailed).Wrap(err)
	}
	logger.Info("server stopped")
	return nil
}
