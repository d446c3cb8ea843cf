// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/ecosys/traits"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	World     WorldConfig     `yaml:"world"`
	Run       RunConfig       `yaml:"run"`
	Vitals    VitalsConfig    `yaml:"vitals"`
	Movement  MovementConfig  `yaml:"movement"`
	Food      FoodConfig      `yaml:"food"`
	Breeding  BreedingConfig  `yaml:"breeding"`
	Species   SpeciesSet      `yaml:"species"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Bookmarks BookmarksConfig `yaml:"bookmarks"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// WorldConfig holds the default plane and grid dimensions, used when a
// scenario does not set its own.
type WorldConfig struct {
	Cols   int `yaml:"cols"`
	Rows   int `yaml:"rows"`
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// RunConfig holds batch run parameters.
type RunConfig struct {
	DT   float64 `yaml:"dt"`
	Time float64 `yaml:"time"`
	Seed int64   `yaml:"seed"`
}

// VitalsConfig holds the ranges energy and desire are clamped to.
type VitalsConfig struct {
	MaxEnergy     float64 `yaml:"max_energy"`
	MaxDesire     float64 `yaml:"max_desire"`
	InitialEnergy float64 `yaml:"initial_energy"`
}

// MovementConfig holds shared movement parameters.
type MovementConfig struct {
	EnergyDrag float64 `yaml:"energy_drag"` // speed *= exp((energy-max)*drag)
	Reach      float64 `yaml:"reach"`       // distance at which a destination, mate or prey is reached
}

// FoodConfig holds region food parameters.
type FoodConfig struct {
	BaseYield      float64 `yaml:"base_yield"`      // per second, before crowding
	CrowdThreshold float64 `yaml:"crowd_threshold"` // herbivores tolerated before yield decays
	CrowdPenalty   float64 `yaml:"crowd_penalty"`   // exponent per herbivore over the threshold
	DynamicFood    float64 `yaml:"dynamic_food"`    // default initial stock of a dynamic region
	DynamicFactor  float64 `yaml:"dynamic_factor"`  // default drain factor of a dynamic region
	DrainChance    float64 `yaml:"drain_chance"`    // per-update probability that the stock drains
}

// BreedingConfig holds reproduction parameters.
type BreedingConfig struct {
	InheritChance float64 `yaml:"inherit_chance"` // probability the mate policy comes from parent 1
	Scatter       float64 `yaml:"scatter"`        // offspring offset scale
	Jitter        float64 `yaml:"jitter"`         // offspring sight/speed tolerance
	SpawnJitter   float64 `yaml:"spawn_jitter"`   // founder speed tolerance
}

// SpeciesSet holds per-species parameters.
type SpeciesSet struct {
	Sheep SpeciesConfig `yaml:"sheep"`
	Wolf  SpeciesConfig `yaml:"wolf"`
}

// SpeciesConfig holds the constants that drive one species' state machine.
type SpeciesConfig struct {
	GeneticCode      string  `yaml:"genetic_code"`
	DeathAge         float64 `yaml:"death_age"`
	InitialAge       float64 `yaml:"initial_age"`
	Sight            float64 `yaml:"sight"`
	Speed            float64 `yaml:"speed"`
	EnergyDrain      float64 `yaml:"energy_drain"`      // per second
	DesireRate       float64 `yaml:"desire_rate"`       // per second
	AlteredCost      float64 `yaml:"altered_cost"`      // energy drain multiplier while fleeing or mating
	FleeFactor       float64 `yaml:"flee_factor"`       // speed multiplier while fleeing
	PursuitFactor    float64 `yaml:"pursuit_factor"`    // speed multiplier while chasing a mate or prey
	MateDesire       float64 `yaml:"mate_desire"`       // desire needed to look for a mate
	ConceptionChance float64 `yaml:"conception_chance"` // probability a mating conceives
	ConceptionCost   float64 `yaml:"conception_cost"`   // energy the mother pays on conception
	HungerThreshold  float64 `yaml:"hunger_threshold"`  // energy below which a predator hunts
	KillGain         float64 `yaml:"kill_gain"`         // energy gained per kill
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"`
	BookmarkHistorySize int     `yaml:"bookmark_history_size"`
	PerfCollectorWindow int     `yaml:"perf_collector_window"`
}

// BookmarksConfig holds bookmark detection thresholds.
type BookmarksConfig struct {
	PredatorRecovery PredatorRecoveryConfig `yaml:"predator_recovery"`
	PreyCrash        PreyCrashConfig        `yaml:"prey_crash"`
	StableEcosystem  StableEcosystemConfig  `yaml:"stable_ecosystem"`
}

// PredatorRecoveryConfig holds predator recovery detection parameters.
type PredatorRecoveryConfig struct {
	MinPopulation      int `yaml:"min_population"`
	RecoveryMultiplier int `yaml:"recovery_multiplier"`
	MinFinal           int `yaml:"min_final"`
}

// PreyCrashConfig holds prey crash detection parameters.
type PreyCrashConfig struct {
	DropPercent float64 `yaml:"drop_percent"`
	MinDrop     int     `yaml:"min_drop"`
}

// StableEcosystemConfig holds stable ecosystem detection parameters.
type StableEcosystemConfig struct {
	MinPrey       int     `yaml:"min_prey"`
	MinPred       int     `yaml:"min_pred"`
	CVThreshold   float64 `yaml:"cv_threshold"`
	StableWindows int     `yaml:"stable_windows"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	Species map[traits.Kind]*SpeciesConfig
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

// Set replaces the global configuration. Simulations built afterwards
// read c; running ones keep the values they captured.
func Set(c *Config) {
	global = c
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
		// Only overwrites fields present in the file
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
	if c.Run.DT <= 0 {
		return fmt.Errorf("run.dt must be positive, got %v", c.Run.DT)
	}
	if c.Vitals.MaxEnergy <= 0 || c.Vitals.MaxDesire <= 0 {
		return fmt.Errorf("vitals maxima must be positive")
	}
	for _, k := range traits.Kinds {
		sc := c.Species.For(k)
		if sc.Sight <= 0 || sc.Speed < 0 {
			return fmt.Errorf("species.%s: sight must be positive and speed non-negative", k.Key())
		}
		if sc.GeneticCode == "" {
			return fmt.Errorf("species.%s: genetic_code is required", k.Key())
		}
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.Species = map[traits.Kind]*SpeciesConfig{
		traits.Sheep: &c.Species.Sheep,
		traits.Wolf:  &c.Species.Wolf,
	}
}

// Clone returns a copy of c whose derived lookups point into the copy.
func (c *Config) Clone() *Config {
	cp := *c
	cp.computeDerived()
	return &cp
}

// For returns the parameters of species k.
func (s *SpeciesSet) For(k traits.Kind) *SpeciesConfig {
	if k == traits.Wolf {
		return &s.Wolf
	}
	return &s.Sheep
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
