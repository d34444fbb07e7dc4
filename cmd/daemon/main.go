package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

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
		Name:   "daemon",
	})

	log.Info().
		Str("version", version.Version).
		Str("commit", version.Commit).
		Str("config", *configPath).
		Msg("Starting pipeline daemon")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		log.Error().Err(err).Msg("Failed to connect to database")
		os.Exit(1)
	}
	defer pool.Close()

	p := pipeline.New(cfg, pool, log)

	c := cron.New()
	jobs := []struct {
		name string
		spec string
		run  func() error
	}{
		{"scrape", cfg.Schedule.Scrape, func() error { return p.Scrape(ctx) }},
		{"fetch", cfg.Schedule.Fetch, func() error { return p.Fetch(ctx) }},
		{"load", cfg.Schedule.Load, func() error { return p.Load(ctx) }},
		{"cleanup", cfg.Schedule.Cleanup, p.Cleanup},
	}

	for _, job := range jobs {
		if job.spec == "" {
			log.Warn().Str("job", job.name).Msg("No schedule configured, job disabled")
			continue
		}

		name, run := job.name, job.run
		_, err := c.AddFunc(job.spec, func() {
			log.Info().Str("job", name).Msg("Job starting")
			if err := run(); err != nil {
				log.Error().Err(err).Str("job", name).Msg("Job failed")
				return
			}
			log.Info().Str("job", name).Msg("Job finished")
		})
		if err != nil {
			log.Error().Err(err).Str("job", name).Str("spec", job.spec).Msg("Invalid cron expression")
			os.Exit(1)
		}
		log.Info().Str("job", name).Str("spec", job.spec).Msg("Job scheduled")
	}

	c.Start()

	<-ctx.Done()
	log.Info().Msg("Shutting down, waiting for running jobs")
	<-c.Stop().Done()
	log.Info().Msg("Daemon stopped")
}
