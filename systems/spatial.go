// Package systems provides the spatial index, growth model, seed dispersal
// and scheduler that drive the forest simulation.
package systems

import (
	"fmt"
	"math"
	"sort"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/wildfire/components"
)

// Neighbor holds a nearby entity with its precomputed distance.
type Neighbor struct {
	E    ecs.Entity
	Dist float64
}

// Space is a position-queryable set of live entities over a bounded domain.
type Space interface {
	// Place registers e at p, or moves it there if already registered.
	Place(e ecs.Entity, p components.Position) error
	// Remove drops every trace of e. Returns ErrInvalidRemoval if e is unknown.
	Remove(e ecs.Entity) error
	// Neighbors returns entities strictly within radius of p, excluding exclude.
	Neighbors(p components.Position, radius float64, exclude ecs.Entity) []Neighbor
	// Occupied reports whether p's slot is taken. Always false for continuous space.
	Occupied(p components.Position) bool
	// Snap maps p onto the index's addressable positions.
	Snap(p components.Position) components.Position

	Contains(e ecs.Entity) bool
	Position(e ecs.Entity) (components.Position, bool)
	Len() int
	Entities() []ecs.Entity
	Width() float64
	Height() float64
}

// axisEntry is one entity's coordinate along a single axis.
type axisEntry struct {
	v float64
	e ecs.Entity
}

// ContinuousSpace indexes real-valued positions with two coordinate-sorted
// arrays. A radius query intersects the open x-window with the open y-window
// and then filters by Euclidean distance. The narrower window is scanned and
// the other axis is checked per entry.
type ContinuousSpace struct {
	width  float64
	height float64
	xs     []axisEntry
	ys     []axisEntry
	pos    map[ecs.Entity]components.Position
}

// NewContinuousSpace creates an empty continuous space.
func NewContinuousSpace(width, height float64) *ContinuousSpace {
	return &ContinuousSpace{
		width:  width,
		height: height,
		xs:     make([]axisEntry, 0, 64),
		ys:     make([]axisEntry, 0, 64),
		pos:    make(map[ecs.Entity]components.Position),
	}
}

func (s *ContinuousSpace) Width() float64  { return s.width }
func (s *ContinuousSpace) Height() float64 { return s.height }

// Place registers or moves an entity, keeping both axes sorted.
func (s *ContinuousSpace) Place(e ecs.Entity, p components.Position) error {
	if !finite(p) || p.X < 0 || p.X > s.width || p.Y < 0 || p.Y > s.height {
		return fmt.Errorf("%w: (%g, %g)", ErrOutOfBounds, p.X, p.Y)
	}
	if old, ok := s.pos[e]; ok {
		s.xs = removeAxis(s.xs, old.X, e)
		s.ys = removeAxis(s.ys, old.Y, e)
	}
	s.xs = insertAxis(s.xs, p.X, e)
	s.ys = insertAxis(s.ys, p.Y, e)
	s.pos[e] = p
	return nil
}

// Remove drops an entity from both axes.
func (s *ContinuousSpace) Remove(e ecs.Entity) error {
	p, ok := s.pos[e]
	if !ok {
		return fmt.Errorf("%w: entity not in space", ErrInvalidRemoval)
	}
	s.xs = removeAxis(s.xs, p.X, e)
	s.ys = removeAxis(s.ys, p.Y, e)
	delete(s.pos, e)
	return nil
}

// Neighbors returns entities strictly inside the circle of the given radius.
// Entities exactly on the boundary are excluded. Results follow the order of
// the narrower axis window.
func (s *ContinuousSpace) Neighbors(p components.Position, radius float64, exclude ecs.Entity) []Neighbor {
	if radius <= 0 || len(s.xs) == 0 || !finite(p) {
		return nil
	}

	xlo, xhi := openWindow(s.xs, p.X-radius, p.X+radius)
	ylo, yhi := openWindow(s.ys, p.Y-radius, p.Y+radius)
	if xlo >= xhi || ylo >= yhi {
		return nil
	}

	window := s.ys[ylo:yhi]
	if xhi-xlo < yhi-ylo {
		window = s.xs[xlo:xhi]
	}

	radiusSq := radius * radius
	var out []Neighbor
	for _, a := range window {
		if a.e == exclude {
			continue
		}
		q := s.pos[a.e]
		dx, dy := q.X-p.X, q.Y-p.Y
		// Open windows on both axes
		if math.Abs(dx) >= radius || math.Abs(dy) >= radius {
			continue
		}
		distSq := dx*dx + dy*dy
		if distSq < radiusSq {
			out = append(out, Neighbor{E: a.e, Dist: math.Sqrt(distSq)})
		}
	}
	return out
}

// Occupied is always false: continuous space allows co-located entities.
func (s *ContinuousSpace) Occupied(components.Position) bool { return false }

// Snap is the identity in continuous space.
func (s *ContinuousSpace) Snap(p components.Position) components.Position { return p }

func (s *ContinuousSpace) Contains(e ecs.Entity) bool {
	_, ok := s.pos[e]
	return ok
}

func (s *ContinuousSpace) Position(e ecs.Entity) (components.Position, bool) {
	p, ok := s.pos[e]
	return p, ok
}

func (s *ContinuousSpace) Len() int { return len(s.pos) }

// Entities returns all entities in x order.
func (s *ContinuousSpace) Entities() []ecs.Entity {
	out := make([]ecs.Entity, len(s.xs))
	for i, a := range s.xs {
		out[i] = a.e
	}
	return out
}

// finite reports whether both coordinates are real numbers.
func finite(p components.Position) bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0)
}

// openWindow returns the index range of entries with lo < v < hi.
func openWindow(axis []axisEntry, lo, hi float64) (int, int) {
	start := sort.Search(len(axis), func(i int) bool { return axis[i].v > lo })
	end := sort.Search(len(axis), func(i int) bool { return axis[i].v >= hi })
	if end < start {
		end = start
	}
	return start, end
}

// insertAxis inserts after any entries with an equal coordinate.
func insertAxis(axis []axisEntry, v float64, e ecs.Entity) []axisEntry {
	i := sort.Search(len(axis), func(i int) bool { return axis[i].v > v })
	axis = append(axis, axisEntry{})
	copy(axis[i+1:], axis[i:])
	axis[i] = axisEntry{v: v, e: e}
	return axis
}

func removeAxis(axis []axisEntry, v float64, e ecs.Entity) []axisEntry {
	i := sort.Search(len(axis), func(i int) bool { return axis[i].v >= v })
	for ; i < len(axis) && axis[i].v == v; i++ {
		if axis[i].e == e {
			return append(axis[:i], axis[i+1:]...)
		}
	}
	return axis
}
