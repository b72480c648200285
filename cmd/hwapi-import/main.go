package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/canonical/hwapi/pkg/c3"
	"github.com/canonical/hwapi/pkg/config"
	"github.com/canonical/hwapi/pkg/db"
	"github.com/canonical/hwapi/pkg/logger"
	"github.com/canonical/hwapi/pkg/version"
)

func main() {
	configPath := flag.String("config", "", "Path to the JSON config file (optional)")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "hwapi-import: %v\n", err)
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

	log.Info().Str("version", version.GetFullVersion()).Msg("Starting hwapi importer")

	pool, err := db.NewPool(ctx, cfg.DBURL, log)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := db.RunMigrations(ctx, pool, log); err != nil {
		return err
	}

	store := db.NewStore(pool, log)
	client := c3.NewClient(cfg.C3URL, c3.NewStore(store), log)

	if err := client.LoadHardwareData(ctx); err != nil {
		return err
	}

	log.Info().Msg("Import finished")

	return nil
}
