package model

import (
	"fmt"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/wildfire/components"
	"github.com/pthm-cable/wildfire/species"
	"github.com/pthm-cable/wildfire/systems"
)

// Snapshot is a read-only view of one organism for rendering and charting.
type Snapshot struct {
	ID       uint64
	Category components.Category
	Species  string // empty for foliage
	X, Y     float64
	Age      int
	Height   float64
	Diameter float64
	Volume   float64 // trunk volume for trees, litter volume for foliage
}

// Attribute selects the numeric field averaged by Average.
type Attribute uint8

const (
	AttrAge Attribute = iota
	AttrHeight
	AttrDiameter
	AttrVolume
)

func (a Attribute) value(s Snapshot) float64 {
	switch a {
	case AttrAge:
		return float64(s.Age)
	case AttrHeight:
		return s.Height
	case AttrDiameter:
		return s.Diameter
	default:
		return s.Volume
	}
}

// Organisms returns snapshots of every live organism, trees first, each
// category sorted by id.
func (m *Model) Organisms() []Snapshot {
	out := make([]Snapshot, 0, m.sched.Len())
	for _, cat := range components.Categories {
		out = append(out, m.snapshots(cat)...)
	}
	return out
}

func (m *Model) snapshots(cat components.Category) []Snapshot {
	members := m.sched.Members(cat)
	out := make([]Snapshot, 0, len(members))
	for _, mem := range members {
		pos := m.posMap.Get(mem.E)
		org := m.orgMap.Get(mem.E)
		s := Snapshot{ID: mem.ID, Category: cat, X: pos.X, Y: pos.Y}
		switch cat {
		case components.CategoryTree:
			g := m.growthMap.Get(mem.E)
			s.Species = org.Species.Name
			s.Age = g.Age
			s.Height = g.Height
			s.Diameter = g.Diameter
			s.Volume = g.Volume()
		case components.CategoryFoliage:
			s.Volume = m.litterMap.Get(mem.E).Volume
		}
		out = append(out, s)
	}
	return out
}

// Organism returns the snapshot for one id.
func (m *Model) Organism(id uint64) (Snapshot, bool) {
	for _, cat := range components.Categories {
		if !m.sched.Contains(id, cat) {
			continue
		}
		for _, s := range m.snapshots(cat) {
			if s.ID == id {
				return s, true
			}
		}
	}
	return Snapshot{}, false
}

// Count returns the number of live organisms in a category.
func (m *Model) Count(cat components.Category) int {
	return m.sched.Count(cat)
}

// Average returns the mean of attr over a category, or 0 if it is empty.
func (m *Model) Average(attr Attribute, cat components.Category) float64 {
	snaps := m.snapshots(cat)
	if len(snaps) == 0 {
		return 0
	}
	values := make([]float64, len(snaps))
	for i, s := range snaps {
		values[i] = attr.value(s)
	}
	return stat.Mean(values, nil)
}

// PlantTree adds a tree of the named species at pos with the given age,
// bypassing dispersal. Returns the new organism id. Positions outside the
// open domain, including non-finite ones, return ErrOutOfBounds.
func (m *Model) PlantTree(speciesName string, pos components.Position, age int) (uint64, error) {
	sp := m.species.Get(speciesName)
	if sp == nil {
		return 0, fmt.Errorf("unknown species %q", speciesName)
	}
	pos = m.space.Snap(pos)
	if !systems.InOpenBounds(pos, m.cfg.World.Width, m.cfg.World.Height) {
		return 0, fmt.Errorf("%w: (%g, %g)", systems.ErrOutOfBounds, pos.X, pos.Y)
	}
	return m.spawnTree(sp, pos, 0, age)
}

// Species returns the species registry.
func (m *Model) Species() *species.Registry {
	return m.species
}

// CheckConsistency verifies that the spatial index and the scheduler hold
// exactly the same live organisms.
func (m *Model) CheckConsistency() error {
	scheduled := 0
	for _, cat := range components.Categories {
		for _, mem := range m.sched.Members(cat) {
			scheduled++
			if !m.world.Alive(mem.E) {
				return fmt.Errorf("%s %d scheduled but not alive", cat, mem.ID)
			}
			if !m.space.Contains(mem.E) {
				return fmt.Errorf("%s %d scheduled but not in the spatial index", cat, mem.ID)
			}
			if org := m.orgMap.Get(mem.E); org.ID != mem.ID || org.Category != cat {
				return fmt.Errorf("%s %d: organism record says %s %d", cat, mem.ID, org.Category, org.ID)
			}
		}
	}
	if n := m.space.Len(); n != scheduled {
		return fmt.Errorf("spatial index holds %d organisms, scheduler %d", n, scheduled)
	}
	return nil
}
