// Package species defines immutable per-species growth parameters.
package species

import (
	"fmt"

	"github.com/pthm-cable/wildfire/config"
)

// ReproductionPolicy selects what a tree must reach before it sows seeds.
type ReproductionPolicy uint8

const (
	ReproduceByAge ReproductionPolicy = iota
	ReproduceByHeight
)

func (p ReproductionPolicy) String() string {
	if p == ReproduceByHeight {
		return "height"
	}
	return "age"
}

// Range is an inclusive [Min, Max] interval.
type Range struct {
	Min, Max float64
}

// Mid returns the centre of the interval.
func (r Range) Mid() float64 { return (r.Max + r.Min) / 2 }

// HalfWidth returns half the width of the interval.
func (r Range) HalfWidth() float64 { return (r.Max - r.Min) / 2 }

// Width returns Max - Min.
func (r Range) Width() float64 { return r.Max - r.Min }

// Species holds the parameters shared by every tree of one kind.
// One instance exists per species; organisms hold a pointer to it.
type Species struct {
	Name string

	Precipitation       Range // ideal, inches per year
	Temperature         Range // ideal average summer temp, Fahrenheit
	MaxDiameter         float64
	MaxAge              float64
	MaxHeight           float64
	MaxHeightDifference float64 // height gap over which a neighbor fully shades

	Reproduction     ReproductionPolicy
	ReproductionBase float64
	ReproductionSD   float64

	TreeSpacing float64 // mean seed travel distance (Poisson lambda)
	ShadeRadius float64
	KRange      Range
	P           float64 // Chapman-Richards shape exponent
	NumSeeds    int
	InitialAge  int
	FoliageProp float64

	// Derived once at construction
	TempMean          float64
	TempHalf          float64
	PrecipMean        float64
	PrecipHalf        float64
	MaxRadiusIncrease float64 // per tick
	KMid              float64
	KSD               float64
}

// NormalSource draws standard-normal variates.
type NormalSource interface {
	Normal() float64
}

// New builds a species from its configuration. It rejects parameter
// combinations the growth model cannot evaluate.
func New(cfg config.SpeciesConfig) (*Species, error) {
	if cfg.KRange.Min > cfg.KRange.Max {
		return nil, fmt.Errorf("species %q: k_range min %g > max %g", cfg.Name, cfg.KRange.Min, cfg.KRange.Max)
	}
	if cfg.KRange.Max <= 0 {
		return nil, fmt.Errorf("species %q: k_range max must be positive", cfg.Name)
	}
	if cfg.MaxAge <= 0 {
		return nil, fmt.Errorf("species %q: max_age must be positive", cfg.Name)
	}
	if cfg.MaxHeightDifference <= 0 {
		return nil, fmt.Errorf("species %q: max_height_difference must be positive", cfg.Name)
	}

	policy := ReproduceByAge
	switch cfg.Reproduction.Policy {
	case config.ReproduceByAge, "":
	case config.ReproduceByHeight:
		policy = ReproduceByHeight
	default:
		return nil, fmt.Errorf("species %q: unknown reproduction policy %q", cfg.Name, cfg.Reproduction.Policy)
	}

	s := &Species{
		Name:                cfg.Name,
		Precipitation:       Range{cfg.Precipitation.Min, cfg.Precipitation.Max},
		Temperature:         Range{cfg.Temperature.Min, cfg.Temperature.Max},
		MaxDiameter:         cfg.MaxDiameter,
		MaxAge:              cfg.MaxAge,
		MaxHeight:           cfg.MaxHeight,
		MaxHeightDifference: cfg.MaxHeightDifference,
		Reproduction:        policy,
		ReproductionBase:    cfg.Reproduction.Base,
		ReproductionSD:      cfg.Reproduction.SD,
		TreeSpacing:         cfg.TreeSpacing,
		ShadeRadius:         cfg.ShadeRadius,
		KRange:              Range{cfg.KRange.Min, cfg.KRange.Max},
		P:                   cfg.Shape,
		NumSeeds:            cfg.NumSeeds,
		InitialAge:          cfg.InitialAge,
		FoliageProp:         cfg.FoliageProp,
	}

	s.TempMean = s.Temperature.Mid()
	s.TempHalf = s.Temperature.HalfWidth()
	s.PrecipMean = s.Precipitation.Mid()
	s.PrecipHalf = s.Precipitation.HalfWidth()
	s.MaxRadiusIncrease = s.MaxDiameter / (2 * s.MaxAge)
	s.KMid = s.KRange.Mid()
	s.KSD = s.KRange.HalfWidth()

	return s, nil
}

// DrawReproductionThreshold samples the per-individual age or height at
// which a tree starts reproducing.
func (s *Species) DrawReproductionThreshold(rng NormalSource) float64 {
	return s.ReproductionBase + s.ReproductionSD*rng.Normal()
}

// Registry interns species by name.
type Registry struct {
	byName map[string]*Species
	order  []*Species
}

// NewRegistry builds every species in the configuration.
func NewRegistry(cfgs []config.SpeciesConfig) (*Registry, error) {
	r := &Registry{byName: make(map[string]*Species, len(cfgs))}
	for _, c := range cfgs {
		if _, dup := r.byName[c.Name]; dup {
			return nil, fmt.Errorf("species %q defined twice", c.Name)
		}
		s, err := New(c)
		if err != nil {
			return nil, err
		}
		r.byName[c.Name] = s
		r.order = append(r.order, s)
	}
	return r, nil
}

// Get returns the named species, or nil.
func (r *Registry) Get(name string) *Species {
	return r.byName[name]
}

// All returns species in configuration order.
func (r *Registry) All() []*Species {
	return r.order
}
