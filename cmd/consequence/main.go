package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"consequence/internal/app"
	"consequence/internal/config"
	"consequence/internal/logger"
	"consequence/internal/metrics"
	"consequence/internal/play"
	"consequence/internal/tui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// The terminal belongs to the game; logs only go to a file when asked.
	log := zap.NewNop()
	if cfg.LogOutput != "" {
		log, err = logger.New(logger.Config{
			Level:      cfg.LogLevel,
			Encoding:   cfg.LogEncoding,
			OutputPath: cfg.LogOutput,
		})
		if err != nil {
			return err
		}
	}
	defer func() { _ = log.Sync() }()

	engine, err := app.NewEngine(cfg, log)
	if err != nil {
		return err
	}

	stores, err := app.OpenStores(context.Background(), cfg, log)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.Store, err)
	}
	defer func() { _ = stores.Close() }()

	return tui.Run(engine, play.Options{
		Saves:    stores.Saves,
		Slot:     play.DefaultSlot,
		Observer: metrics.Observer{},
		Logger:   log.Named("play"),
	})
}
