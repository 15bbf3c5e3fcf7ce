package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Simulation.Traders != 12 {
		t.Errorf("traders = %d, want default 12", cfg.Simulation.Traders)
	}
	if cfg.InitialPriceCents != 10000 {
		t.Errorf("initial price = %d cents, want 10000", cfg.InitialPriceCents)
	}
	if cfg.InitialCashCents != 1000000 {
		t.Errorf("initial cash = %d cents, want 1000000", cfg.InitialCashCents)
	}
	if got := cfg.Steps(); got != 600 {
		t.Errorf("Steps() = %d, want 600 (60s / 0.1)", got)
	}
	if cfg.Simulation.InitialHoldings != 50 {
		t.Errorf("initial holdings = %d, want default 50", cfg.Simulation.InitialHoldings)
	}
}

func TestLoad_FromFile(t *testing.T) {
	path := writeConfig(t, `
simulation:
  traders: 30
  initial_price: 250.50
  seed: 99
  human_trader: true
logging:
  level: debug
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Simulation.Traders != 30 {
		t.Errorf("traders = %d, want 30", cfg.Simulation.Traders)
	}
	if cfg.InitialPriceCents != 25050 {
		t.Errorf("initial price = %d cents, want 25050", cfg.InitialPriceCents)
	}
	if cfg.Simulation.Seed != 99 {
		t.Errorf("seed = %d, want 99", cfg.Simulation.Seed)
	}
	if !cfg.Simulation.HumanTrader {
		t.Error("human_trader not parsed")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("log level = %q, want debug", cfg.Logging.Level)
	}
	// Untouched fields keep defaults.
	if cfg.Simulation.CleanupInterval != 50 {
		t.Errorf("cleanup_interval = %d, want default 50", cfg.Simulation.CleanupInterval)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "simulation:\n  seed: 5\n  traders: 8\n")
	t.Setenv("MARKETSIM_SEED", "777")
	t.Setenv("MARKETSIM_TRADERS", "16")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Simulation.Seed != 777 {
		t.Errorf("seed = %d, want env override 777", cfg.Simulation.Seed)
	}
	if cfg.Simulation.Traders != 16 {
		t.Errorf("traders = %d, want env override 16", cfg.Simulation.Traders)
	}
}

func TestLoad_InvalidEnv(t *testing.T) {
	t.Setenv("MARKETSIM_SEED", "not-a-number")
	if _, err := Load(""); err == nil {
		t.Error("expected error for invalid MARKETSIM_SEED")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestValidate_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"zero traders", func(c *Config) { c.Simulation.Traders = 0 }, "traders"},
		{"negative price", func(c *Config) { c.Simulation.InitialPrice = -1 }, "initial_price"},
		{"zero duration", func(c *Config) { c.Simulation.DurationSeconds = 0 }, "duration_seconds"},
		{"zero step size", func(c *Config) { c.Simulation.StepSize = 0 }, "step_size"},
		{"negative holdings", func(c *Config) { c.Simulation.InitialHoldings = -1 }, "initial_holdings"},
		{"negative workers", func(c *Config) { c.Simulation.Workers = -1 }, "workers"},
		{"zero cleanup", func(c *Config) { c.Simulation.CleanupInterval = 0 }, "cleanup_interval"},
		{"zero ttl", func(c *Config) { c.Simulation.OrderTTLSteps = 0 }, "order_ttl"},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }, "log level"},
		{"sub-cent price", func(c *Config) { c.Simulation.InitialPrice = 100.005 }, "initial_price"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}
