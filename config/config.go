// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	World      WorldConfig      `yaml:"world"`
	Metabolism MetabolismConfig `yaml:"metabolism"`
	Movement   MovementConfig   `yaml:"movement"`
	Population PopulationConfig `yaml:"population"`
	Simulation SimulationConfig `yaml:"simulation"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
	Viewer     ViewerConfig     `yaml:"viewer"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// WorldConfig holds grid dimensions and seeding.
type WorldConfig struct {
	Height        int     `yaml:"height"`
	Width         int     `yaml:"width"`
	GrassCalories float64 `yaml:"grass_calories"` // Calories carried by seeded dormant grass
}

// KindValues holds one number per creature kind that can carry it.
type KindValues struct {
	Grass float64 `yaml:"grass"`
	Sheep float64 `yaml:"sheep"`
	Wolf  float64 `yaml:"wolf"`
}

// MetabolismConfig holds the per-tick energy and health rules.
type MetabolismConfig struct {
	DigestionRate KindValues `yaml:"digestion_rate"` // Calories per tick drained from contained prey
	RotYield      KindValues `yaml:"rot_yield"`      // Calories added to the decayed deposit on death

	MaxHealth        int     `yaml:"max_health"`
	LargeHealDeficit int     `yaml:"large_heal_deficit"` // Deficit at which the large heal applies
	LargeHeal        int     `yaml:"large_heal"`
	SmallHeal        int     `yaml:"small_heal"`
	HealCostDivisor  float64 `yaml:"heal_cost_divisor"` // cost = heal / divisor
	HealMinCalories  float64 `yaml:"heal_min_calories"` // Healing needs calories above this
	StarvationDamage int     `yaml:"starvation_damage"`
	StaminaRefill    float64 `yaml:"stamina_refill"` // Calories spent per stamina point regained
}

// MovementConfig selects the direction policy.
type MovementConfig struct {
	Policy    string `yaml:"policy"`    // fixed, stand, random, forage
	Direction string `yaml:"direction"` // used by the fixed policy
	Seed      int64  `yaml:"seed"`      // used by the random policy (0 = run seed)
}

// SpawnConfig describes one organism placed at startup.
type SpawnConfig struct {
	Kind     string  `yaml:"kind"`
	Row      int     `yaml:"row"`
	Col      int     `yaml:"col"`
	Stamina  int     `yaml:"stamina"`
	Calories float64 `yaml:"calories"`
	Health   int     `yaml:"health"`
}

// PopulationConfig holds the initial population.
type PopulationConfig struct {
	Spawns []SpawnConfig `yaml:"spawns"`

	RandomSheep   int     `yaml:"random_sheep"`
	RandomWolves  int     `yaml:"random_wolves"`
	SheepStamina  int     `yaml:"sheep_stamina"`
	SheepCalories float64 `yaml:"sheep_calories"`
	WolfStamina   int     `yaml:"wolf_stamina"`
	WolfCalories  float64 `yaml:"wolf_calories"`
	InitialHealth int     `yaml:"initial_health"`
}

// SimulationConfig holds tick scheduler switches.
type SimulationConfig struct {
	ValidateInvariants bool `yaml:"validate_invariants"` // Full-grid check before each commit
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         int `yaml:"stats_window"` // Ticks per stats window
	PerfCollectorWindow int `yaml:"perf_collector_window"`
}

// ViewerConfig holds graphical viewer settings.
type ViewerConfig struct {
	CellSize  int `yaml:"cell_size"`
	TargetFPS int `yaml:"target_fps"`
	PanelW    int `yaml:"panel_width"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	CellCount int // World.Height * World.Width
	ScreenW   int // Window width for the graphical viewer
	ScreenH   int // Window height for the graphical viewer
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
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	cp := *c
	cp.Population.Spawns = append([]SpawnConfig(nil), c.Population.Spawns...)
	return &cp
}

// Validate rejects values the simulation cannot run with.
func (c *Config) Validate() error {
	if c.World.Height <= 0 || c.World.Width <= 0 {
		return fmt.Errorf("world size must be positive, got %dx%d", c.World.Height, c.World.Width)
	}
	m := c.Metabolism
	if m.MaxHealth <= 0 {
		return fmt.Errorf("metabolism.max_health must be positive, got %d", m.MaxHealth)
	}
	if !(m.HealCostDivisor > 0) || math.IsInf(m.HealCostDivisor, 0) {
		return fmt.Errorf("metabolism.heal_cost_divisor must be positive, got %v", m.HealCostDivisor)
	}

	ints := []struct {
		name string
		v    int
	}{
		{"metabolism.large_heal_deficit", m.LargeHealDeficit},
		{"metabolism.large_heal", m.LargeHeal},
		{"metabolism.small_heal", m.SmallHeal},
		{"metabolism.starvation_damage", m.StarvationDamage},
	}
	for _, f := range ints {
		if f.v < 0 {
			return fmt.Errorf("%s must not be negative, got %d", f.name, f.v)
		}
	}

	floats := []struct {
		name string
		v    float64
	}{
		{"world.grass_calories", c.World.GrassCalories},
		{"metabolism.digestion_rate.grass", m.DigestionRate.Grass},
		{"metabolism.digestion_rate.sheep", m.DigestionRate.Sheep},
		{"metabolism.digestion_rate.wolf", m.DigestionRate.Wolf},
		{"metabolism.rot_yield.grass", m.RotYield.Grass},
		{"metabolism.rot_yield.sheep", m.RotYield.Sheep},
		{"metabolism.rot_yield.wolf", m.RotYield.Wolf},
		{"metabolism.heal_min_calories", m.HealMinCalories},
		{"metabolism.stamina_refill", m.StaminaRefill},
	}
	for _, f := range floats {
		// NaN fails every comparison, so !(v >= 0) rejects it too.
		if !(f.v >= 0) || math.IsInf(f.v, 0) {
			return fmt.Errorf("%s must be a finite non-negative number, got %v", f.name, f.v)
		}
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.CellCount = c.World.Height * c.World.Width

	cellSize := c.Viewer.CellSize
	if cellSize <= 0 {
		cellSize = 1
	}
	c.Derived.ScreenW = c.World.Width*cellSize + c.Viewer.PanelW
	c.Derived.ScreenH = c.World.Height * cellSize
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
