// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Physics   PhysicsConfig   `yaml:"physics"`
	Arena     ArenaConfig     `yaml:"arena"`
	Colony    ColonyConfig    `yaml:"colony"`
	Food      FoodConfig      `yaml:"food"`
	Foraging  ForagingConfig  `yaml:"foraging"`
	Vitals    VitalsConfig    `yaml:"vitals"`
	AI        AIConfig        `yaml:"ai"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// PhysicsConfig holds simulation stepping parameters.
type PhysicsConfig struct {
	DT float64 `yaml:"dt"` // Seconds per headless tick
}

// ArenaConfig describes the bounded tile grid.
type ArenaConfig struct {
	TileSide    float64 `yaml:"tile_side"`    // World units per tile; scales every size factor
	WidthTiles  int     `yaml:"width_tiles"`  // Arena width in tiles
	HeightTiles int     `yaml:"height_tiles"` // Arena height in tiles
	Walls       bool    `yaml:"walls"`        // Spawn the collidable border ring
	WallSize    float64 `yaml:"wall_size"`    // Wall tile size factor
	Fog         bool    `yaml:"fog"`          // Spawn fog tiles cleared by agent visibility
	FogSize     float64 `yaml:"fog_size"`     // Fog tile size factor
}

// ColonyConfig holds the fixed ant population parameters.
type ColonyConfig struct {
	Workers      int     `yaml:"workers"`
	Queens       int     `yaml:"queens"`
	SpawnX       float64 `yaml:"spawn_x"`
	SpawnY       float64 `yaml:"spawn_y"`
	WorkerSpeed  float64 `yaml:"worker_speed"`  // World units per second
	QueenSpeed   float64 `yaml:"queen_speed"`   // World units per second
	WorkerSize   float64 `yaml:"worker_size"`   // Size factor
	QueenSize    float64 `yaml:"queen_size"`    // Size factor
	VisibleRange float64 `yaml:"visible_range"` // Size factor of the visibility circle
}

// FoodConfig holds food resource parameters.
type FoodConfig struct {
	Count          int     `yaml:"count"`
	Quantity       float64 `yaml:"quantity"`
	Size           float64 `yaml:"size"`            // Size factor used for discovery overlap
	TargetSize     float64 `yaml:"target_size"`     // Size factor used for ranking and arrival
	CorpseQuantity float64 `yaml:"corpse_quantity"` // Food left behind by a dead ant
	MarginTiles    int     `yaml:"margin_tiles"`    // Keep initial food this many tiles from the edge
	Layout         string  `yaml:"layout"`          // "uniform" or "clustered"
	ClusterScale   float64 `yaml:"cluster_scale"`   // Noise frequency per world unit
	ClusterCutoff  float64 `yaml:"cluster_cutoff"`  // Minimum normalized noise for a placement
	ClusterTries   int     `yaml:"cluster_tries"`   // Attempts before falling back to uniform
}

// ForagingConfig holds the seek/eat protocol parameters.
type ForagingConfig struct {
	HungerThreshold  float64 `yaml:"hunger_threshold"`  // Seek food when hunger drops below this
	ArrivalThreshold float64 `yaml:"arrival_threshold"` // Start eating when closer than this
	EatRate          float64 `yaml:"eat_rate"`          // Hunger gained and food lost per second
	SeekTimeout      float64 `yaml:"seek_timeout"`      // Countdown on a destination goal
}

// VitalsConfig holds health and hunger decay parameters.
type VitalsConfig struct {
	HungerDecay     float64 `yaml:"hunger_decay"`     // Hunger lost per second while not eating
	HealthDecay     float64 `yaml:"health_decay"`     // Health lost per second while starving
	StarvationLevel float64 `yaml:"starvation_level"` // Hunger below this counts as starving
}

// AIConfig holds movement goal parameters.
type AIConfig struct {
	GoalDuration float64 `yaml:"goal_duration"` // Seconds before a walking goal is re-rolled
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow float64 `yaml:"stats_window"` // Seconds of simulated time per stats window
	PerfWindow  int     `yaml:"perf_window"`  // Ticks averaged by the perf collector
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	DT32        float32 // Physics.DT as float32
	TileSide32  float32 // Arena.TileSide as float32
	ArenaWidth  float32 // WidthTiles * TileSide
	ArenaHeight float32 // HeightTiles * TileSide
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
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

// Default returns a fresh copy of the embedded defaults.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults are invalid: %v", err))
	}
	return cfg
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
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	cfg.ComputeDerived()

	return cfg, nil
}

// Validate rejects configurations the simulation cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Physics.DT <= 0 {
		errs = append(errs, errors.New("physics.dt must be positive"))
	}
	if c.Arena.TileSide <= 0 {
		errs = append(errs, errors.New("arena.tile_side must be positive"))
	}
	if c.Arena.WidthTiles < 3 || c.Arena.HeightTiles < 3 {
		errs = append(errs, errors.New("arena must be at least 3x3 tiles"))
	}
	if c.Colony.WorkerSpeed <= 0 || c.Colony.QueenSpeed <= 0 {
		errs = append(errs, errors.New("colony speeds must be positive"))
	}
	if c.Colony.Workers < 0 || c.Colony.Queens < 0 || c.Food.Count < 0 {
		errs = append(errs, errors.New("population counts must not be negative"))
	}
	if c.Foraging.EatRate <= 0 {
		errs = append(errs, errors.New("foraging.eat_rate must be positive"))
	}
	if c.Vitals.HungerDecay < 0 || c.Vitals.HealthDecay < 0 {
		errs = append(errs, errors.New("vitals decay rates must not be negative"))
	}
	if c.AI.GoalDuration <= 0 {
		errs = append(errs, errors.New("ai.goal_duration must be positive"))
	}
	if c.Food.MarginTiles < 0 || 2*c.Food.MarginTiles >= c.Arena.WidthTiles || 2*c.Food.MarginTiles >= c.Arena.HeightTiles {
		errs = append(errs, errors.New("food.margin_tiles must leave room inside the arena"))
	}
	switch c.Food.Layout {
	case "", "uniform", "clustered":
	default:
		errs = append(errs, fmt.Errorf("food.layout %q is not one of uniform, clustered", c.Food.Layout))
	}
	return errors.Join(errs...)
}

// ComputeDerived calculates values derived from loaded config.
// Call it again after mutating a loaded config in place.
func (c *Config) ComputeDerived() {
	c.Derived.DT32 = float32(c.Physics.DT)
	c.Derived.TileSide32 = float32(c.Arena.TileSide)
	c.Derived.ArenaWidth = float32(float64(c.Arena.WidthTiles) * c.Arena.TileSide)
	c.Derived.ArenaHeight = float32(float64(c.Arena.HeightTiles) * c.Arena.TileSide)
}

// Clone returns a deep copy suitable for per-run mutation.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}

// YAML returns the configuration as a YAML document.
// Returns an empty string if marshaling fails.
func (c *Config) YAML() string {
	data, err := yaml.Marshal(c)
	if err != nil {
		return ""
	}
	return string(data)
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
