package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/canonical/hwapi/pkg/api"
	"github.com/canonical/hwapi/pkg/certification"
	"github.com/canonical/hwapi/pkg/config"
	"github.com/canonical/hwapi/pkg/db"
	"github.com/canonical/hwapi/pkg/logger"
	"github.com/canonical/hwapi/pkg/version"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configPath := flag.String("config", "", "Path to the JSON config file (optional)")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "hwapi: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var cfg config.Config
	if err := config.Load(ctx, configPath, &cfg); err != nil {
		return err
	}

	log, err := logger.New(cfg.Logging)
	if err != nil {
		return err
	}

	log.Info().Str("version", version.GetFullVersion()).Msg("Starting hwapi")

	pool, err := db.NewPool(ctx, cfg.DBURL, log)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := db.RunMigrations(ctx, pool, log); err != nil {
		return err
	}

	store := db.NewStore(pool, log)
	engine := certification.NewEngine(log)
	server := api.NewServer(api.NewStatusService(store, engine), log)

	errCh := make(chan error, 1)

	go func() {
		errCh <- server.Start(cfg.ListenAddr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	return <-errCh
}
