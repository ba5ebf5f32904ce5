package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the full configuration of the content pipeline.
type Config struct {
	// Engine 编排引擎配置
	Engine EngineConfig `yaml:"engine" env:"ENGINE"`

	// Checkpoint 检查点存储配置
	Checkpoint CheckpointConfig `yaml:"checkpoint" env:"CHECKPOINT"`

	// Log 日志配置
	Log LogConfig `yaml:"log" env:"LOG"`

	// Telemetry 遥测配置
	Telemetry TelemetryConfig `yaml:"telemetry" env:"TELEMETRY"`
}

// EngineConfig tunes the orchestration loop.
type EngineConfig struct {
	// Step ceiling for one workflow run.
	MaxSteps int `yaml:"max_steps" env:"MAX_STEPS"`
	// Retry attempts for retry-from-checkpoint.
	MaxRetries int `yaml:"max_retries" env:"MAX_RETRIES"`
	// Base delay for exponential retry backoff.
	BackoffBase time.Duration `yaml:"backoff_base" env:"BACKOFF_BASE"`
	// Run text/image/audio generation concurrently.
	ParallelGeneration bool `yaml:"parallel_generation" env:"PARALLEL_GENERATION"`
}

// CheckpointConfig selects and tunes the snapshot backend.
type CheckpointConfig struct {
	// Backend: memory, redis, sqlite.
	Backend string `yaml:"backend" env:"BACKEND"`
	// Redis connection.
	RedisAddr     string        `yaml:"redis_addr" env:"REDIS_ADDR"`
	RedisPassword string        `yaml:"redis_password" env:"REDIS_PASSWORD"`
	RedisDB       int           `yaml:"redis_db" env:"REDIS_DB"`
	RedisTTL      time.Duration `yaml:"redis_ttl" env:"REDIS_TTL"`
	// SQLite database path for the gorm backend.
	SQLitePath string `yaml:"sqlite_path" env:"SQLITE_PATH"`
}

// LogConfig 日志配置
type LogConfig struct {
	// Level: debug, info, warn, error.
	Level string `yaml:"level" env:"LEVEL"`
	// Format: json, console.
	Format string `yaml:"format" env:"FORMAT"`
}

// TelemetryConfig 遥测配置
type TelemetryConfig struct {
	Enabled      bool    `yaml:"enabled" env:"ENABLED"`
	OTLPEndpoint string  `yaml:"otlp_endpoint" env:"OTLP_ENDPOINT"`
	ServiceName  string  `yaml:"service_name" env:"SERVICE_NAME"`
	SampleRate   float64 `yaml:"sample_rate" env:"SAMPLE_RATE"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Engine: EngineConfig{
			MaxSteps:    20,
			MaxRetries:  3,
			BackoffBase: time.Second,
		},
		Checkpoint: CheckpointConfig{
			Backend:    "memory",
			RedisAddr:  "localhost:6379",
			RedisTTL:   24 * time.Hour,
			SQLitePath: "contentpipe.db",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Telemetry: TelemetryConfig{
			Enabled:      false,
			OTLPEndpoint: "localhost:4317",
			ServiceName:  "contentpipe",
			SampleRate:   1.0,
		},
	}
}

// Validate checks the loaded configuration for wiring mistakes.
func (c *Config) Validate() error {
	var errs []string

	if c.Engine.MaxSteps <= 0 {
		errs = append(errs, "engine.max_steps must be positive")
	}
	if c.Engine.MaxRetries < 0 {
		errs = append(errs, "engine.max_retries must not be negative")
	}
	switch c.Checkpoint.Backend {
	case "memory", "redis", "sqlite":
	default:
		errs = append(errs, fmt.Sprintf("unknown checkpoint backend %q", c.Checkpoint.Backend))
	}
	if c.Checkpoint.Backend == "redis" && c.Checkpoint.RedisAddr == "" {
		errs = append(errs, "checkpoint.redis_addr required for redis backend")
	}
	if c.Checkpoint.Backend == "sqlite" && c.Checkpoint.SQLitePath == "" {
		errs = append(errs, "checkpoint.sqlite_path required for sqlite backend")
	}
	if c.Telemetry.SampleRate < 0 || c.Telemetry.SampleRate > 1 {
		errs = append(errs, "telemetry.sample_rate must be between 0 and 1")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors: %s", strings.Join(errs, "; "))
	}
	return nil
}
