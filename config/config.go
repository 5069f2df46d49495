// Package config loads and validates the session configuration file.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mercurytrader/mercury/market"
)

// Config is the complete session configuration.
type Config struct {
	Venue      VenueConfig      `json:"venue" yaml:"venue"`
	Session    SessionConfig    `json:"session" yaml:"session"`
	Strategy   StrategyConfig   `json:"strategy" yaml:"strategy"`
	Journal    JournalConfig    `json:"journal" yaml:"journal"`
	Simulation SimulationConfig `json:"simulation" yaml:"simulation"`
}

// VenueConfig names the venue adapter and carries its credentials.
type VenueConfig struct {
	Name        string            `json:"name" yaml:"name"`
	AccountID   string            `json:"account_id,omitempty" yaml:"account_id,omitempty"`
	Credentials map[string]string `json:"credentials,omitempty" yaml:"credentials,omitempty"`
}

// SessionConfig fixes what the engine trades and at which cadence.
type SessionConfig struct {
	Instrument string `json:"instrument" yaml:"instrument"`
	Timeframe  string `json:"timeframe" yaml:"timeframe"`
	Warmup     int    `json:"warmup" yaml:"warmup"`
	Offset     string `json:"offset,omitempty" yaml:"offset,omitempty"` // e.g. "60s"
}

// ParseOffset converts the publication-delay padding to a duration. An
// empty offset means the engine default.
func (s SessionConfig) ParseOffset() (time.Duration, error) {
	if s.Offset == "" {
		return 0, nil
	}
	return time.ParseDuration(s.Offset)
}

// StrategyConfig selects and parametrizes the strategy.
type StrategyConfig struct {
	Name string  `json:"name" yaml:"name"`
	Fast int     `json:"fast,omitempty" yaml:"fast,omitempty"`
	Slow int     `json:"slow,omitempty" yaml:"slow,omitempty"`
	Size float64 `json:"size" yaml:"size"`
}

// JournalConfig selects the trading-record backend.
type JournalConfig struct {
	Type          string `json:"type" yaml:"type"` // "none", "csv" or "sqlite"
	DBPath        string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
	OrdersFile    string `json:"orders_file,omitempty" yaml:"orders_file,omitempty"`
	PositionsFile string `json:"positions_file,omitempty" yaml:"positions_file,omitempty"`
}

// SimulationConfig parametrizes backtest runs.
type SimulationConfig struct {
	From    string  `json:"from,omitempty" yaml:"from,omitempty"` // RFC 3339
	To      string  `json:"to,omitempty" yaml:"to,omitempty"`
	Seed    int64   `json:"seed,omitempty" yaml:"seed,omitempty"`
	Balance float64 `json:"balance,omitempty" yaml:"balance,omitempty"`
	Spread  float64 `json:"spread,omitempty" yaml:"spread,omitempty"`
}

// Window returns the simulation's [from, to] range.
func (s SimulationConfig) Window() (from, to time.Time, err error) {
	if from, err = time.Parse(time.RFC3339, s.From); err != nil {
		return from, to, fmt.Errorf("simulation.from: %w", err)
	}
	if to, err = time.Parse(time.RFC3339, s.To); err != nil {
		return from, to, fmt.Errorf("simulation.to: %w", err)
	}
	if !to.After(from) {
		return from, to, fmt.Errorf("simulation.to must be after simulation.from")
	}
	return from, to, nil
}

// Default returns a config good enough for a seeded sim session.
func Default() *Config {
	return &Config{
		Venue: VenueConfig{
			Name:        "sim",
			Credentials: map[string]string{"seed": "1"},
		},
		Session: SessionConfig{
			Instrument: "EUR_USD",
			Timeframe:  string(market.H1),
			Warmup:     50,
		},
		Strategy: StrategyConfig{
			Name: "sma-cross",
			Fast: 10,
			Slow: 30,
			Size: 1000,
		},
		Journal: JournalConfig{Type: "none"},
		Simulation: SimulationConfig{
			From:    "2024-01-01T00:00:00Z",
			To:      "2024-03-01T00:00:00Z",
			Seed:    1,
			Balance: 100_000,
			Spread:  0.0002,
		},
	}
}

// LoadFromFile reads a YAML config, falling back to JSON when the YAML
// parse fails.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jerr := json.Unmarshal(data, cfg); jerr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SaveToFile writes the config, YAML for .yaml/.yml paths and indented JSON
// otherwise.
func (c *Config) SaveToFile(path string) error {
	var (
		data []byte
		err  error
	)
	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Venue.Name == "" {
		return fmt.Errorf("venue.name is required")
	}
	if c.Session.Instrument == "" {
		return fmt.Errorf("session.instrument is required")
	}
	if !market.KnownInstrument(c.Session.Instrument) {
		return fmt.Errorf("unknown instrument: %s", c.Session.Instrument)
	}
	if _, err := market.ParseTimeframe(c.Session.Timeframe); err != nil {
		return fmt.Errorf("session.timeframe: %w", err)
	}
	if c.Session.Warmup < 1 {
		return fmt.Errorf("session.warmup must be positive")
	}
	if _, err := c.Session.ParseOffset(); err != nil {
		return fmt.Errorf("session.offset: %w", err)
	}
	if c.Strategy.Name == "" {
		return fmt.Errorf("strategy.name is required")
	}
	if c.Strategy.Size <= 0 {
		return fmt.Errorf("strategy.size must be positive")
	}

	switch c.Journal.Type {
	case "", "none":
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal.db_path required for sqlite type")
		}
	case "csv":
		if c.Journal.OrdersFile == "" || c.Journal.PositionsFile == "" {
			return fmt.Errorf("journal orders_file and positions_file required for csv type")
		}
	default:
		return fmt.Errorf("journal.type must be 'none', 'csv' or 'sqlite'")
	}

	if c.Simulation.Spread < 0 {
		return fmt.Errorf("simulation.spread must not be negative")
	}
	if c.Simulation.Balance < 0 {
		return fmt.Errorf("simulation.balance must not be negative")
	}
	return nil
}
