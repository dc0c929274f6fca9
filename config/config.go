// Package config provides configuration loading and access for the
// sandpile simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"sandpile/sim"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Grid      GridConfig      `yaml:"grid"`
	Drops     DropConfig      `yaml:"drops"`
	Stats     StatsConfig     `yaml:"stats"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// GridConfig holds lattice dimensions and the toppling threshold.
// The threshold is 4 for the von Neumann model (one grain per
// orthogonal neighbor); larger values must stay a multiple of the
// neighbor count so a topple sheds an even per-neighbor share.
type GridConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	Threshold int `yaml:"threshold"`
}

// DropConfig holds grain drop parameters. Policy is one of "center",
// "random", or "fixed" (which uses Col/Row).
type DropConfig struct {
	PerTick int    `yaml:"per_tick"`
	Policy  string `yaml:"policy"`
	Col     int    `yaml:"col"`
	Row     int    `yaml:"row"`
}

// StatsConfig holds analysis parameters.
type StatsConfig struct {
	Bins int `yaml:"bins"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	WindowTicks   int64 `yaml:"window_ticks"`
	PerfWindow    int   `yaml:"perf_window"`
	ProgressEvery int64 `yaml:"progress_every"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	CellSize int // screen pixels per grid cell
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded
// defaults if path is empty. Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded
// defaults. If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Grid.Width <= 0 || c.Grid.Height <= 0 {
		return fmt.Errorf("grid dimensions must be positive, got %dx%d", c.Grid.Width, c.Grid.Height)
	}
	if !sim.ValidThreshold(c.Grid.Threshold) {
		return fmt.Errorf("threshold must be a positive multiple of the 4-neighbor count, got %d", c.Grid.Threshold)
	}
	if c.Drops.PerTick < 1 {
		return fmt.Errorf("drops per tick must be at least 1, got %d", c.Drops.PerTick)
	}
	switch c.Drops.Policy {
	case "center", "random", "fixed":
	default:
		return fmt.Errorf("unknown drop policy %q", c.Drops.Policy)
	}
	if c.Drops.Policy == "fixed" {
		if c.Drops.Col < 0 || c.Drops.Col >= c.Grid.Width || c.Drops.Row < 0 || c.Drops.Row >= c.Grid.Height {
			return fmt.Errorf("fixed drop target (%d,%d) outside %dx%d grid",
				c.Drops.Col, c.Drops.Row, c.Grid.Width, c.Grid.Height)
		}
	}
	if c.Stats.Bins < 2 {
		return fmt.Errorf("histogram bin count must be at least 2, got %d", c.Stats.Bins)
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	cell := c.Screen.Width / c.Grid.Width
	if h := c.Screen.Height / c.Grid.Height; h < cell {
		cell = h
	}
	if cell < 1 {
		cell = 1
	}
	c.Derived.CellSize = cell
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
