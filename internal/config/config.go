package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"marketsim/internal/domain"
)

// Config holds all runtime configuration for a simulation run. It is
// loaded from an optional YAML file, then overridden by environment
// variables, then validated. Monetary values are dollars in the file
// and converted to cents once at load time.
type Config struct {
	Simulation struct {
		Traders         int     `yaml:"traders"`
		InitialPrice    float64 `yaml:"initial_price"`
		InitialCash     float64 `yaml:"initial_cash"`
		InitialHoldings int64   `yaml:"initial_holdings"`
		Seed            int64   `yaml:"seed"`
		DurationSeconds float64 `yaml:"duration_seconds"`
		StepSize        float64 `yaml:"step_size"`
		Workers         int     `yaml:"workers"` // 0 = one per CPU
		CleanupInterval int     `yaml:"cleanup_interval"`
		OrderTTLSteps   int     `yaml:"order_ttl_steps"`
		HumanTrader     bool    `yaml:"human_trader"`
	} `yaml:"simulation"`

	Server struct {
		Addr            string        `yaml:"addr"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		IdleTimeout     time.Duration `yaml:"idle_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`

	Logging struct {
		Level string `yaml:"level"`
		File  string `yaml:"file"` // empty = stdout only
	} `yaml:"logging"`

	Recorder struct {
		Dir              string `yaml:"dir"` // empty = disabled
		SnapshotInterval int    `yaml:"snapshot_interval"`
	} `yaml:"recorder"`

	// Derived cent values, computed during validation.
	InitialPriceCents int64 `yaml:"-"`
	InitialCashCents  int64 `yaml:"-"`
}

// Default returns a Config with the stock defaults applied.
func Default() *Config {
	var cfg Config
	cfg.Simulation.Traders = 12
	cfg.Simulation.InitialPrice = 100.0
	cfg.Simulation.InitialCash = 10000.0
	cfg.Simulation.InitialHoldings = 50
	cfg.Simulation.Seed = 1
	cfg.Simulation.DurationSeconds = 60
	cfg.Simulation.StepSize = 0.1
	cfg.Simulation.CleanupInterval = 50
	cfg.Simulation.OrderTTLSteps = 100
	cfg.Server.Addr = ":8080"
	cfg.Server.ReadTimeout = 5 * time.Second
	cfg.Server.WriteTimeout = 10 * time.Second
	cfg.Server.IdleTimeout = 60 * time.Second
	cfg.Server.ShutdownTimeout = 10 * time.Second
	cfg.Logging.Level = "info"
	cfg.Recorder.SnapshotInterval = 10
	return &cfg
}

// Load reads the YAML file at path (skipped when path is empty),
// applies environment overrides, and validates. It returns an error for
// any invalid value.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := overrideWithEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// overrideWithEnv applies MARKETSIM_* environment variables on top of
// the file values.
func overrideWithEnv(cfg *Config) error {
	if v := os.Getenv("MARKETSIM_SEED"); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid MARKETSIM_SEED: %w", err)
		}
		cfg.Simulation.Seed = seed
	}
	if v := os.Getenv("MARKETSIM_TRADERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid MARKETSIM_TRADERS: %w", err)
		}
		cfg.Simulation.Traders = n
	}
	if v := os.Getenv("MARKETSIM_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("MARKETSIM_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	return nil
}

// Validate checks every field and computes the derived cent values.
func (c *Config) Validate() error {
	if c.Simulation.Traders <= 0 {
		return fmt.Errorf("traders must be positive, got %d", c.Simulation.Traders)
	}
	if c.Simulation.InitialPrice <= 0 {
		return fmt.Errorf("initial_price must be positive, got %v", c.Simulation.InitialPrice)
	}
	if c.Simulation.InitialCash < 0 {
		return fmt.Errorf("initial_cash must not be negative, got %v", c.Simulation.InitialCash)
	}
	if c.Simulation.InitialHoldings < 0 {
		return fmt.Errorf("initial_holdings must not be negative, got %d", c.Simulation.InitialHoldings)
	}
	if c.Simulation.DurationSeconds <= 0 {
		return fmt.Errorf("duration_seconds must be positive, got %v", c.Simulation.DurationSeconds)
	}
	if c.Simulation.StepSize <= 0 {
		return fmt.Errorf("step_size must be positive, got %v", c.Simulation.StepSize)
	}
	if c.Simulation.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Simulation.Workers)
	}
	if c.Simulation.CleanupInterval <= 0 {
		return fmt.Errorf("cleanup_interval must be positive, got %d", c.Simulation.CleanupInterval)
	}
	if c.Simulation.OrderTTLSteps <= 0 {
		return fmt.Errorf("order_ttl_steps must be positive, got %d", c.Simulation.OrderTTLSteps)
	}
	if !isValidLogLevel(c.Logging.Level) {
		return fmt.Errorf("invalid log level %q, must be one of: debug, info, warn, error", c.Logging.Level)
	}
	if c.Recorder.SnapshotInterval <= 0 {
		return fmt.Errorf("snapshot_interval must be positive, got %d", c.Recorder.SnapshotInterval)
	}

	price, err := domain.DollarsToCents(c.Simulation.InitialPrice)
	if err != nil {
		return fmt.Errorf("initial_price: %w", err)
	}
	cash, err := domain.DollarsToCents(c.Simulation.InitialCash)
	if err != nil {
		return fmt.Errorf("initial_cash: %w", err)
	}
	c.InitialPriceCents = price
	c.InitialCashCents = cash
	return nil
}

// Steps returns the number of discrete steps a full-duration run takes.
func (c *Config) Steps() int {
	return int(c.Simulation.DurationSeconds / c.Simulation.StepSize)
}

func isValidLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error":
		return true
	}
	return false
}
