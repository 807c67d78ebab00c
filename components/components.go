// Package components defines ECS components for the simulation.
package components

import (
	"math"

	"github.com/pthm-cable/wildfire/species"
)

// Category groups organisms for scheduling. Every tree species collapses
// into CategoryTree so cross-species competition is ordered uniformly.
type Category uint8

const (
	CategoryTree Category = iota
	CategoryFoliage
)

// Categories lists every category in scheduling order.
var Categories = []Category{CategoryTree, CategoryFoliage}

func (c Category) String() string {
	switch c {
	case CategoryTree:
		return "tree"
	case CategoryFoliage:
		return "foliage"
	default:
		return "unknown"
	}
}

// Position represents an entity's world position.
type Position struct {
	X, Y float64
}

// Organism bundles identity and category.
type Organism struct {
	ID       uint64           // assigned by the model, never reused
	Category Category         // fixed at construction
	Species  *species.Species // nil for foliage
}

// Growth holds the mutable state of a tree.
// Age starts at or below zero while the tree is still a seed.
type Growth struct {
	Age                   int
	Height                float64
	Diameter              float64
	ReproductionThreshold float64 // age or height, drawn once at birth
}

// Volume approximates the trunk as a cylinder.
func (g *Growth) Volume() float64 {
	r := g.Diameter / 2
	return g.Height * r * r * math.Pi
}

// Litter holds the state of dropped foliage.
type Litter struct {
	Volume float64
}
