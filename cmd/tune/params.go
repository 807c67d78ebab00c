// Package main provides CMA-ES tuning of species growth parameters.
package main

import (
	"github.com/pthm-cable/wildfire/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the tunable parameters of one species.
type ParamVector struct {
	Species int // index into config.Species
	Specs   []ParamSpec
}

// NewParamVector creates the tunable parameter set for cfg.Species[idx],
// defaulting to its current values.
func NewParamVector(cfg *config.Config, idx int) *ParamVector {
	sp := cfg.Species[idx]
	return &ParamVector{
		Species: idx,
		Specs: []ParamSpec{
			{Name: "k_min", Path: "species.k_range.min", Min: 0.001, Max: 0.05, Default: sp.KRange.Min},
			{Name: "k_max", Path: "species.k_range.max", Min: 0.002, Max: 0.08, Default: sp.KRange.Max},
			{Name: "tree_spacing", Path: "species.tree_spacing", Min: 1, Max: 15, Default: sp.TreeSpacing},
			{Name: "reproduction_base", Path: "species.reproduction.base", Min: 1, Max: 80, Default: sp.Reproduction.Base},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		val := v[i]
		if val < spec.Min {
			val = spec.Min
		}
		if val > spec.Max {
			val = spec.Max
		}
		clamped[i] = val
	}
	return clamped
}

// ApplyToConfig applies parameter values to the tuned species.
// An inverted k range is swapped so the species stays constructible.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	clamped := pv.Clamp(values)
	sp := &cfg.Species[pv.Species]

	// Order must match Specs order
	kMin, kMax := clamped[0], clamped[1]
	if kMin > kMax {
		kMin, kMax = kMax, kMin
	}
	sp.KRange.Min = kMin
	sp.KRange.Max = kMax
	sp.TreeSpacing = clamped[2]
	sp.Reproduction.Base = clamped[3]
}

// ExtractFromConfig extracts current parameter values from a Config struct.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	sp := cfg.Species[pv.Species]
	return []float64{
		sp.KRange.Min,
		sp.KRange.Max,
		sp.TreeSpacing,
		sp.Reproduction.Base,
	}
}
