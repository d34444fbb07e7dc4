package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/mwessel/indexdata/internal/config"
	"github.com/mwessel/indexdata/internal/database"
	"github.com/mwessel/indexdata/internal/pipeline"
	"github.com/mwessel/indexdata/internal/version"
	"github.com/mwessel/indexdata/pkg/logger"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to config file")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Pretty: cfg.Logging.Pretty,
		Dir:    cfg.Logging.Dir,
		Name:   "fetch",
	})

	log.Info().
		Str("version", version.Version).
		Str("commit", version.Commit).
		Str("config", *configPath).
		Msg("Starting price fetch")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		log.Error().Err(err).Msg("Failed to connect to database")
		os.Exit(1)
	}
	defer pool.Close()

	p := pipeline.New(cfg, pool, log)
	if err := p.Fetch(ctx); err != nil {
		log.Error().Err(err).Msg("Fetch finished with failures")
		os.Exit(1)
	}

	log.Info().Msg("Fetch finished")
}
