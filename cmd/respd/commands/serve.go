package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/tonge3199/respd/cmd/respd/demo"
	"github.com/tonge3199/respd/internal/admin"
	"github.com/tonge3199/respd/internal/config"
	"github.com/tonge3199/respd/internal/logger"
	"github.com/tonge3199/respd/internal/metrics"
	"github.com/tonge3199/respd/internal/resp"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the RESP server",
	Example: "  respd serve --config respd.yaml",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// runServe binds the listener and admin surface, then blocks until a
// termination signal is received. Mirrors the teacher's
// ListenAndServeWithSignal at the CLI layer: signal handling here
// cancels a context, and resp.Server.Serve does the accept-loop +
// drain-on-shutdown half of the job.
func runServe() error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if err := logger.Setup(cfg.Logger); err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	printf := func(format string, args ...any) { logger.Info(fmt.Sprintf(format, args...)) }
	if _, err := maxprocs.Set(maxprocs.Logger(printf)); err != nil {
		logger.Warn("automaxprocs: failed to set GOMAXPROCS", "error", err)
	}

	m := metrics.New(nil)
	registry := resp.NewRegistry(cfg.Server.RegistryCapacity)

	var store *demo.Store
	if cfg.Demo.Enabled {
		store, err = demo.Open(cfg.Demo.DataDir)
		if err != nil {
			return err
		}
		defer store.Close() //nolint:errcheck
		demo.Register(registry, store)
		logger.Info("demo command set registered", "data_dir", cfg.Demo.DataDir)
	}

	srv := resp.NewServer(resp.Config{
		Address:             cfg.Server.Address,
		Backlog:             cfg.Server.Backlog,
		SessionBase:         cfg.Server.SessionBase,
		RegistryCapacity:    cfg.Server.RegistryCapacity,
		IdleCloseSeconds:    cfg.Server.IdleCloseSeconds,
		TickIntervalSeconds: cfg.Server.TickIntervalSeconds,
		MaxHeaderDigits:     cfg.Server.MaxHeaderDigits,
		ReadBufferSize:      cfg.Server.ReadBufferSize,
	}, registry, m)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Metrics.Enabled {
		go func() {
			logger.Info("admin surface listening", "address", cfg.Metrics.Address)
			if err := admin.Serve(cfg.Metrics.Address, srv, nil); err != nil {
				logger.Warn("admin surface stopped", "error", err)
			}
		}()
	}

	serverDone := make(chan error, 1)
	go func() { serverDone <- srv.Serve(ctx) }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, syscall.SIGHUP)

	logger.Info("respd listening", "address", cfg.Server.Address)

	select {
	case sig := <-sigCh:
		logger.Info("shutdown signal received", "signal", sig.String())
		cancel()
		return <-serverDone
	case err := <-serverDone:
		return err
	}
}
