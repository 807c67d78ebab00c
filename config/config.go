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

// Space modes.
const (
	SpaceContinuous = "continuous"
	SpaceGrid       = "grid"
)

// Environment kinds.
const (
	EnvironmentConstant = "constant"
	EnvironmentGradient = "gradient"
	EnvironmentNoise    = "noise"
)

// Growth policy names. Two revisions of the growth model disagree on the
// germination sign and on shading normalization, so both are selectable.
const (
	GerminationStress    = "stress" // dies when +stress + jitter > 0
	GerminationRelief    = "relief" // dies when -stress + jitter > 0
	CollapseBelowZero    = "below_zero"
	CollapseBelowMin     = "below_min"
	ShadingMaxHeightDiff = "max_height_difference"
	ShadingNone          = "none"
)

// Scheduling orders.
const (
	OrderShuffle     = "shuffle"
	OrderOldestFirst = "oldest_first"
	// OrderAscendingAge is the former name of OrderOldestFirst, accepted on input.
	OrderAscendingAge = "ascending_age"
)

// Reproduction triggers.
const (
	ReproduceByAge    = "age"
	ReproduceByHeight = "height"
)

// Config holds all simulation configuration parameters.
type Config struct {
	World       WorldConfig       `yaml:"world"`
	Space       SpaceConfig       `yaml:"space"`
	Population  PopulationConfig  `yaml:"population"`
	Environment EnvironmentConfig `yaml:"environment"`
	Growth      GrowthConfig      `yaml:"growth"`
	Schedule    ScheduleConfig    `yaml:"schedule"`
	Foliage     FoliageConfig     `yaml:"foliage"`
	Telemetry   TelemetryConfig   `yaml:"telemetry"`
	Species     []SpeciesConfig   `yaml:"species"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// WorldConfig holds the domain dimensions.
type WorldConfig struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// SpaceConfig selects the spatial index.
type SpaceConfig struct {
	Mode     string  `yaml:"mode"`      // continuous or grid
	CellSize float64 `yaml:"cell_size"` // grid mode only
}

// PopulationConfig holds initial seeding parameters.
type PopulationConfig struct {
	Initial int      `yaml:"initial"`
	Species []string `yaml:"species"` // round-robin over these names (empty = first species)
}

// EnvironmentConfig describes the temperature and precipitation fields.
type EnvironmentConfig struct {
	Kind                  string  `yaml:"kind"`
	Temperature           float64 `yaml:"temperature"`            // average summer temp, Fahrenheit
	Precipitation         float64 `yaml:"precipitation"`          // inches per year
	TemperatureGradient   float64 `yaml:"temperature_gradient"`   // per unit of y (gradient kind)
	PrecipitationGradient float64 `yaml:"precipitation_gradient"` // per unit of y (gradient kind)

	// Noise kind: smooth random patches around the base values
	NoiseScale         float64 `yaml:"noise_scale"`         // patch size in world units
	NoiseTemperature   float64 `yaml:"noise_temperature"`   // max deviation, Fahrenheit
	NoisePrecipitation float64 `yaml:"noise_precipitation"` // max deviation, inches per year
	NoiseSeed          int64   `yaml:"noise_seed"`
}

// GrowthConfig holds growth model policy switches.
type GrowthConfig struct {
	GerminationSign      string  `yaml:"germination_sign"`
	GerminationJitterSD  float64 `yaml:"germination_jitter_sd"`
	CollapseRule         string  `yaml:"collapse_rule"`
	ShadingNormalization string  `yaml:"shading_normalization"`
	NeighborhoodSize     float64 `yaml:"neighborhood_size"` // divisor for summed shading
}

// ScheduleConfig holds the per-category visitation order.
type ScheduleConfig struct {
	Tree    string `yaml:"tree"`
	Foliage string `yaml:"foliage"`
}

// FoliageConfig holds leaf litter parameters.
type FoliageConfig struct {
	Enabled    bool    `yaml:"enabled"`
	DropChance float64 `yaml:"drop_chance"` // per reproductive tree per tick
	DecayRate  float64 `yaml:"decay_rate"`  // fraction of volume lost per tick
	MinVolume  float64 `yaml:"min_volume"`  // removed below this
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	LogInterval int `yaml:"log_interval"` // ticks between stats log lines
}

// RangeConfig is an inclusive [min, max] pair.
type RangeConfig struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// ReproductionConfig holds the reproduction trigger for a species.
type ReproductionConfig struct {
	Policy string  `yaml:"policy"` // age or height
	Base   float64 `yaml:"base"`
	SD     float64 `yaml:"sd"`
}

// SpeciesConfig defines a tree species.
type SpeciesConfig struct {
	Name                string             `yaml:"name"`
	Precipitation       RangeConfig        `yaml:"precipitation"` // ideal, inches per year
	Temperature         RangeConfig        `yaml:"temperature"`   // ideal, Fahrenheit
	MaxDiameter         float64            `yaml:"max_diameter"`  // inches
	MaxAge              float64            `yaml:"max_age"`       // years
	MaxHeight           float64            `yaml:"max_height"`    // feet
	MaxHeightDifference float64            `yaml:"max_height_difference"`
	Reproduction        ReproductionConfig `yaml:"reproduction"`
	TreeSpacing         float64            `yaml:"tree_spacing"` // mean seed travel distance
	ShadeRadius         float64            `yaml:"shade_radius"`
	KRange              RangeConfig        `yaml:"k_range"`
	Shape               float64            `yaml:"shape"` // Chapman-Richards exponent p
	NumSeeds            int                `yaml:"num_seeds"`
	InitialAge          int                `yaml:"initial_age"`
	FoliageProp         float64            `yaml:"foliage_prop"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	SpeciesIndex map[string]int // name -> index into Species
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
	cfg, err := Parse(nil)
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults invalid: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	if path == "" {
		return Parse(nil)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return Parse(data)
}

// Parse merges the given YAML document over the embedded defaults and
// validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Unmarshal into same struct - only overwrites fields present in data
	if len(data) > 0 {
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
	out := *c
	out.Population.Species = append([]string(nil), c.Population.Species...)
	out.Species = append([]SpeciesConfig(nil), c.Species...)
	out.computeDerived()
	return &out
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.SpeciesIndex = make(map[string]int, len(c.Species))
	for i, sp := range c.Species {
		c.Derived.SpeciesIndex[sp.Name] = i
	}
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
