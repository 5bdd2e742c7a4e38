package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// Store backends
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// Config holds all configuration for the chaincfg daemon.
// The toolchain configuration itself is loaded separately by the
// toolchain package; these are the settings of the service around it.
type Config struct {
	// Server configuration
	HTTPPort int    `env:"CHAINCFG_HTTP_PORT" envDefault:"8080"`
	GRPCPort int    `env:"CHAINCFG_GRPC_PORT" envDefault:"9090"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// DotEnvPath is merged under the process environment; empty disables it
	DotEnvPath string `env:"CHAINCFG_DOTENV" envDefault:".env"`

	// Store selects where snapshots are published
	Store string `env:"CHAINCFG_STORE" envDefault:"memory"`

	// Redis configuration
	Redis RedisConfig

	// Snapshot publishing
	Snapshot SnapshotConfig

	// Timeouts
	Timeouts TimeoutConfig
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	Password string `env:"REDIS_PASS"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`

	// Connection pool settings
	PoolSize     int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	MaxRetries   int           `env:"REDIS_MAX_RETRIES" envDefault:"3"`
	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT" envDefault:"3s"`
}

// SnapshotConfig controls how long a published snapshot lives in the store
type SnapshotConfig struct {
	TTL               time.Duration `env:"CHAINCFG_SNAPSHOT_TTL" envDefault:"24h"`
	KeepaliveInterval time.Duration `env:"CHAINCFG_KEEPALIVE_INTERVAL" envDefault:"1m"`
}

// TimeoutConfig holds various timeout configurations
type TimeoutConfig struct {
	StartupTimeout  time.Duration `env:"TIMEOUT_STARTUP" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"TIMEOUT_SHUTDOWN" envDefault:"30s"`
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	return load(env.Options{})
}

// LoadFrom reads configuration from an explicit environment snapshot
func LoadFrom(environ map[string]string) (*Config, error) {
	if environ == nil {
		environ = map[string]string{}
	}
	return load(env.Options{Environment: environ})
}

// DotEnvPath reads only CHAINCFG_DOTENV, without validating the rest of
// the daemon settings
func DotEnvPath() string {
	var c struct {
		Path string `env:"CHAINCFG_DOTENV" envDefault:".env"`
	}
	if err := env.Parse(&c); err != nil {
		return ".env"
	}
	return c.Path
}

func load(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Validate server ports
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.GRPCPort < 1 || c.GRPCPort > 65535 {
		return fmt.Errorf("invalid gRPC port: %d", c.GRPCPort)
	}
	if c.HTTPPort == c.GRPCPort {
		return fmt.Errorf("HTTP and gRPC ports must differ: %d", c.HTTPPort)
	}

	// Validate store
	switch c.Store {
	case StoreMemory:
	case StoreRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("redis address is required when store is %q", StoreRedis)
		}
	default:
		return fmt.Errorf("unsupported store: %s (must be memory or redis)", c.Store)
	}

	// Validate snapshot lifetime
	if c.Snapshot.TTL <= 0 {
		return fmt.Errorf("snapshot TTL must be positive")
	}
	if c.Snapshot.KeepaliveInterval <= 0 || c.Snapshot.KeepaliveInterval >= c.Snapshot.TTL {
		return fmt.Errorf("keepalive interval %s must be positive and shorter than snapshot TTL %s",
			c.Snapshot.KeepaliveInterval, c.Snapshot.TTL)
	}

	// Validate log level
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}

	return nil
}

// GetHTTPAddr returns the HTTP server address
func (c *Config) GetHTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// GetGRPCAddr returns the gRPC server address
func (c *Config) GetGRPCAddr() string {
	return fmt.Sprintf(":%d", c.GRPCPort)
}
