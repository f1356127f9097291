// Package config reads process settings from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Prefix namespaces every variable, e.g. CONSEQUENCE_ADDR.
const Prefix = "CONSEQUENCE"

// Store backends.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
)

// Config holds the settings shared by the server and the terminal client.
type Config struct {
	Addr  string `envconfig:"ADDR" default:":8080"`
	Story string `envconfig:"STORY"` // empty uses the embedded story

	StaticDir string `envconfig:"STATIC_DIR" default:"static"`

	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	LogEncoding string `envconfig:"LOG_ENCODING" default:"json"`
	LogOutput   string `envconfig:"LOG_OUTPUT"`

	Store         string        `envconfig:"STORE" default:"memory"`
	SQLitePath    string        `envconfig:"SQLITE_PATH" default:"consequence.db"`
	RedisAddr     string        `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword string        `envconfig:"REDIS_PASSWORD"`
	RedisDB       int           `envconfig:"REDIS_DB" default:"0"`
	SessionTTL    time.Duration `envconfig:"SESSION_TTL" default:"720h"`

	StepHours int `envconfig:"STEP_HOURS" default:"1"`
}

// Load reads an optional .env file and then the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values envconfig cannot.
func (c *Config) Validate() error {
	switch c.Store {
	case StoreMemory, StoreSQLite, StoreRedis:
	default:
		return fmt.Errorf("load config: unknown store %q", c.Store)
	}
	if c.StepHours <= 0 {
		return fmt.Errorf("load config: step hours must be positive, got %d", c.StepHours)
	}
	return nil
}
