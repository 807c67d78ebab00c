package systems

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/wildfire/components"
	"github.com/pthm-cable/wildfire/config"
)

// OrderPolicy decides the visitation order of one category within a tick.
type OrderPolicy uint8

const (
	OrderShuffle     OrderPolicy = iota // fresh uniform permutation every tick
	OrderOldestFirst                    // descending age: oldest to youngest, ties by id
)

func (p OrderPolicy) String() string {
	if p == OrderOldestFirst {
		return config.OrderOldestFirst
	}
	return config.OrderShuffle
}

// ParseOrderPolicy maps a configuration name onto a policy.
func ParseOrderPolicy(name string) (OrderPolicy, error) {
	switch name {
	case config.OrderShuffle, "":
		return OrderShuffle, nil
	case config.OrderOldestFirst, config.OrderAscendingAge:
		return OrderOldestFirst, nil
	default:
		return OrderShuffle, fmt.Errorf("unknown schedule order %q", name)
	}
}

// Member is one scheduled organism.
type Member struct {
	ID uint64
	E  ecs.Entity
}

// VisitFunc is called once per member in visitation order.
type VisitFunc func(cat components.Category, m Member) error

// Scheduler is the authoritative registry of live organisms, partitioned
// by category. Map iteration order is never observed: every ordering is
// derived from a sorted snapshot.
type Scheduler struct {
	members map[components.Category]map[uint64]ecs.Entity
	policy  map[components.Category]OrderPolicy
	ageOf   func(ecs.Entity) int
	logger  *slog.Logger
	count   int
}

// NewScheduler creates an empty scheduler. ageOf supplies the age used by
// OrderOldestFirst and may be nil if no category uses that policy.
func NewScheduler(ageOf func(ecs.Entity) int, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Scheduler{
		members: make(map[components.Category]map[uint64]ecs.Entity, len(components.Categories)),
		policy:  make(map[components.Category]OrderPolicy, len(components.Categories)),
		ageOf:   ageOf,
		logger:  logger,
	}
	for _, c := range components.Categories {
		s.members[c] = make(map[uint64]ecs.Entity)
	}
	return s
}

// SetPolicy sets the visitation policy for a category.
func (s *Scheduler) SetPolicy(cat components.Category, p OrderPolicy) {
	s.policy[cat] = p
}

// Policy returns the visitation policy for a category.
func (s *Scheduler) Policy(cat components.Category) OrderPolicy {
	return s.policy[cat]
}

// Add registers an organism under its category.
func (s *Scheduler) Add(id uint64, cat components.Category, e ecs.Entity) {
	m, ok := s.members[cat]
	if !ok {
		m = make(map[uint64]ecs.Entity)
		s.members[cat] = m
	}
	if _, dup := m[id]; !dup {
		s.count++
	}
	m[id] = e
}

// Remove deletes an organism. Removing an id that is not registered is a
// desynchronization bug and returns ErrInvalidRemoval.
func (s *Scheduler) Remove(id uint64, cat components.Category) error {
	m := s.members[cat]
	if _, ok := m[id]; !ok {
		return fmt.Errorf("%w: %s %d not scheduled", ErrInvalidRemoval, cat, id)
	}
	delete(m, id)
	s.count--
	return nil
}

// Contains reports whether id is registered under cat.
func (s *Scheduler) Contains(id uint64, cat components.Category) bool {
	_, ok := s.members[cat][id]
	return ok
}

// Count returns the number of live organisms in a category.
func (s *Scheduler) Count(cat components.Category) int {
	return len(s.members[cat])
}

// Len returns the number of live organisms across all categories.
func (s *Scheduler) Len() int {
	return s.count
}

// Members returns a snapshot of a category sorted by id.
func (s *Scheduler) Members(cat components.Category) []Member {
	m := s.members[cat]
	out := make([]Member, 0, len(m))
	for id, e := range m {
		out = append(out, Member{ID: id, E: e})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Order returns this tick's visitation order for a category. The slice is a
// copy, so registry changes while visiting it do not disturb iteration.
func (s *Scheduler) Order(cat components.Category, rng Random) []Member {
	snap := s.Members(cat)
	switch s.policy[cat] {
	case OrderOldestFirst:
		if s.ageOf == nil {
			break
		}
		ages := make(map[uint64]int, len(snap))
		for _, m := range snap {
			ages[m.ID] = s.ageOf(m.E)
		}
		sort.SliceStable(snap, func(i, j int) bool {
			return ages[snap[i].ID] > ages[snap[j].ID]
		})
	default:
		rng.Shuffle(len(snap), func(i, j int) { snap[i], snap[j] = snap[j], snap[i] })
	}
	return snap
}

// Tick visits every category in turn. Every category's order is taken
// before the first visit, so members added during the tick wait for the
// next one, whatever their category. A category is fully processed before
// the next begins and members removed earlier in the tick are skipped. A
// visit error is logged and does not stop the remaining members.
func (s *Scheduler) Tick(rng Random, visit VisitFunc) {
	orders := make([][]Member, len(components.Categories))
	for i, cat := range components.Categories {
		orders[i] = s.Order(cat, rng)
	}

	for i, cat := range components.Categories {
		for _, m := range orders[i] {
			if !s.Contains(m.ID, cat) {
				continue
			}
			if err := visit(cat, m); err != nil {
				s.logger.Error("organism update failed",
					"category", cat.String(),
					"id", m.ID,
					"error", err,
				)
			}
		}
	}
}
