// Package app wires configuration into the engine and the snapshot stores
// used by the command-line entry points.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"consequence/internal/config"
	"consequence/internal/game"
	"consequence/internal/session"
	"consequence/stories"
)

// Redis key prefixes.
const (
	sessionPrefix = "consequence:session"
	savePrefix    = "consequence:save"
)

// NewEngine loads the configured story and builds an engine over it.
func NewEngine(cfg *config.Config, logger *zap.Logger) (*game.Engine, error) {
	story, err := stories.Load(cfg.Story)
	if err != nil {
		return nil, fmt.Errorf("load story: %w", err)
	}
	engine, err := game.NewEngine(story, logger)
	if err != nil {
		return nil, err
	}
	engine.StepHours = cfg.StepHours
	logger.Info("Story loaded",
		zap.String("title", story.Title),
		zap.Int("scenes", len(story.Scenes)),
		zap.Int("endings", len(story.Endings)),
	)
	return engine, nil
}

// Stores holds live sessions and save slots for the configured backend.
type Stores struct {
	Sessions session.BlobStore
	Saves    session.BlobStore
	closers  []func() error
}

// Close releases backend connections.
func (s *Stores) Close() error {
	var errs []error
	for _, c := range s.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// OpenStores opens the backend named by cfg.Store.
func OpenStores(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Stores, error) {
	switch cfg.Store {
	case config.StoreMemory:
		return &Stores{
			Sessions: session.NewMemoryStore[[]byte](),
			Saves:    session.NewMemoryStore[[]byte](),
		}, nil
	case config.StoreSQLite:
		db, err := session.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		logger.Info("Using SQLite store", zap.String("path", cfg.SQLitePath))
		return &Stores{
			Sessions: db.Scope("session"),
			Saves:    db.Scope("save"),
			closers:  []func() error{db.Close},
		}, nil
	case config.StoreRedis:
		client, err := setupRedis(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		return &Stores{
			Sessions: session.NewRedisStore(client, sessionPrefix, cfg.SessionTTL, logger),
			Saves:    session.NewRedisStore(client, savePrefix, 0, logger),
			closers:  []func() error{client.Close},
		}, nil
	default:
		return nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
}

func setupRedis(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if _, err := client.Ping(pingCtx).Result(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", cfg.RedisAddr, err)
	}
	logger.Info("Connected to Redis", zap.String("addr", cfg.RedisAddr), zap.Int("db", cfg.RedisDB))
	return client, nil
}
