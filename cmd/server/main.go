package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"consequence/internal/app"
	"consequence/internal/config"
	"consequence/internal/logger"
	"consequence/internal/metrics"
	"consequence/internal/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:      cfg.LogLevel,
		Encoding:   cfg.LogEncoding,
		OutputPath: cfg.LogOutput,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	engine, err := app.NewEngine(cfg, log)
	if err != nil {
		log.Fatal("Failed to load story", zap.Error(err))
	}

	stores, err := app.OpenStores(context.Background(), cfg, log)
	if err != nil {
		log.Fatal("Failed to open store", zap.String("store", cfg.Store), zap.Error(err))
	}
	defer func() {
		if err := stores.Close(); err != nil {
			log.Error("Failed to close store", zap.Error(err))
		}
	}()

	tmpl, err := web.ParseTemplates()
	if err != nil {
		log.Fatal("Failed to parse templates", zap.Error(err))
	}

	srv := &web.Server{
		Engine:    engine,
		Sessions:  stores.Sessions,
		Saves:     stores.Saves,
		Tmpl:      tmpl,
		Logger:    log.Named("web"),
		Observer:  metrics.Observer{},
		StaticDir: cfg.StaticDir,
	}

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("Starting HTTP server", zap.String("addr", cfg.Addr), zap.String("store", cfg.Store))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	log.Info("Server exited")
}
