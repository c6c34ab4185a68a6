// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Step        StepConfig        `yaml:"step"`
	Chunks      ChunksConfig      `yaml:"chunks"`
	Temperature TemperatureConfig `yaml:"temperature"`
	Fire        FireConfig        `yaml:"fire"`
	Pressure    PressureConfig    `yaml:"pressure"`
	Light       LightConfig       `yaml:"light"`
	Structural  StructuralConfig  `yaml:"structural"`
	Debris      DebrisConfig      `yaml:"debris"`
	DayNight    DayNightConfig    `yaml:"day_night"`
	Telemetry   TelemetryConfig   `yaml:"telemetry"`
}

// StepConfig holds fixed-timestep parameters.
type StepConfig struct {
	// DT is the fixed simulation timestep in seconds.
	DT float64 `yaml:"dt"`
	// Seed is the default RNG seed for deterministic runs.
	Seed int64 `yaml:"seed"`
}

// ChunksConfig holds chunk lifecycle parameters.
type ChunksConfig struct {
	ActiveRadius int `yaml:"active_radius"` // Chebyshev radius of simulated chunks
	LoadRadius   int `yaml:"load_radius"`   // radius loaded around the focus
	EvictRadius  int `yaml:"evict_radius"`  // chunks beyond this are eviction candidates
	LoadedLimit  int `yaml:"loaded_limit"`  // max chunks kept in memory
}

// TemperatureConfig holds thermal diffusion parameters.
type TemperatureConfig struct {
	DiffusionRate float64 `yaml:"diffusion_rate"` // lerp factor toward neighbor average
	UpdateEvery   int     `yaml:"update_every"`   // diffuse every N ticks
	Ambient       float64 `yaml:"ambient"`        // room temperature, Celsius
}

// FireConfig holds fire and burning parameters.
type FireConfig struct {
	HeatPerTick     float64 `yaml:"heat_per_tick"`      // heat injected by a fire pixel
	BurnHeatPerTick float64 `yaml:"burn_heat_per_tick"` // heat injected by burning material
	SmokeChance     float64 `yaml:"smoke_chance"`       // per-tick chance fire decays to smoke
}

// PressureConfig holds pressure field parameters.
type PressureConfig struct {
	DecayRate         float64 `yaml:"decay_rate"`
	GasScale          float64 `yaml:"gas_scale"`          // pressure contributed per unit gas density
	PropagationFactor float64 `yaml:"propagation_factor"` // share of the difference transferred
	MinDiff           float64 `yaml:"min_diff"`           // smallest difference worth propagating
	MaxDepth          int     `yaml:"max_depth"`          // propagation budget per tick
	QueueMax          int     `yaml:"queue_max"`
	MoveThreshold     float64 `yaml:"move_threshold"` // pressure needed to displace a pixel
	Max               float64 `yaml:"max"`
	Baseline          float64 `yaml:"baseline"` // atmospheric pressure
	// DisplaceIntoDenser controls whether pressure may push a pixel into a
	// cell holding a denser material, in addition to plain air.
	DisplaceIntoDenser bool `yaml:"displace_into_denser"`
}

// LightConfig holds light propagation parameters.
type LightConfig struct {
	UpdateHz     float64 `yaml:"update_hz"`     // throttled propagation rate
	SurfaceLevel int     `yaml:"surface_level"` // sky light seeds air strictly above this
}

// StructuralConfig holds structural integrity parameters.
type StructuralConfig struct {
	MaxFloodRadius       int `yaml:"max_flood_radius"`
	SmallDebrisThreshold int `yaml:"small_debris_threshold"`
}

// DebrisConfig holds falling-body parameters.
type DebrisConfig struct {
	Gravity float64 `yaml:"gravity"` // pixels per second squared, applied downward
}

// DayNightConfig holds the day/night clock parameters.
type DayNightConfig struct {
	CycleSeconds float64 `yaml:"cycle_seconds"`
	StartTime    float64 `yaml:"start_time"` // seconds into the cycle; half a cycle is noon
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	WindowSteps int `yaml:"window_steps"` // steps aggregated per stats window
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
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
		// Unmarshal into the same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	return cfg, nil
}

// Default returns the embedded default configuration.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults invalid: %v", err))
	}
	return cfg
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
