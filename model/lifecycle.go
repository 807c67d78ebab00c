package model

import (
	"errors"
	"fmt"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/wildfire/components"
	"github.com/pthm-cable/wildfire/species"
	"github.com/pthm-cable/wildfire/systems"
)

// placementAttempts bounds the search for a free cell when seeding the
// initial population in grid mode.
const placementAttempts = 20

// foliageCandidates is the number of landing spots drawn per litter drop.
const foliageCandidates = 3

// spawnInitialPopulation scatters the starting trees uniformly over the
// domain, cycling through the configured species.
func (m *Model) spawnInitialPopulation() error {
	names := m.cfg.Population.Species
	all := m.species.All()
	if len(all) == 0 {
		return fmt.Errorf("model: no species configured")
	}

	for i := 0; i < m.cfg.Population.Initial; i++ {
		sp := all[0]
		if len(names) > 0 {
			idx, ok := m.cfg.Derived.SpeciesIndex[names[i%len(names)]]
			if !ok {
				return fmt.Errorf("model: unknown population species %q", names[i%len(names)])
			}
			sp = all[idx]
		}

		placed := false
		for attempt := 0; attempt < placementAttempts && !placed; attempt++ {
			pos := m.space.Snap(components.Position{
				X: m.rng.Uniform(0, m.cfg.World.Width),
				Y: m.rng.Uniform(0, m.cfg.World.Height),
			})
			if !systems.InOpenBounds(pos, m.cfg.World.Width, m.cfg.World.Height) || m.space.Occupied(pos) {
				continue
			}
			if _, err := m.spawnTree(sp, pos, 0, sp.InitialAge); err != nil {
				return fmt.Errorf("model: seeding initial population: %w", err)
			}
			placed = true
		}
		if !placed {
			m.logger.Warn("no free cell for initial tree", "index", i, "species", sp.Name)
		}
	}
	return nil
}

// spawnTree creates a tree of sp at pos with the given age and registers it
// with the ECS world, the spatial index and the scheduler.
func (m *Model) spawnTree(sp *species.Species, pos components.Position, parentID uint64, age int) (uint64, error) {
	if m.space.Occupied(pos) {
		return 0, fmt.Errorf("%w: (%g, %g)", systems.ErrCellOccupied, pos.X, pos.Y)
	}

	id := m.nextID
	org := components.Organism{ID: id, Category: components.CategoryTree, Species: sp}
	growth := components.Growth{
		Age:                   age,
		ReproductionThreshold: sp.DrawReproductionThreshold(m.rng),
	}

	e := m.treeMapper.NewEntity(&pos, &org, &growth)
	if err := m.space.Place(e, pos); err != nil {
		m.world.RemoveEntity(e)
		return 0, err
	}
	m.nextID++
	m.sched.Add(id, components.CategoryTree, e)

	m.lifetimes.Register(id, m.tick, parentID, sp.Name)
	m.collector.RecordBirth()
	return id, nil
}

// spawnFoliage creates a litter patch at pos.
func (m *Model) spawnFoliage(pos components.Position, volume float64) (uint64, error) {
	if m.space.Occupied(pos) {
		return 0, fmt.Errorf("%w: (%g, %g)", systems.ErrCellOccupied, pos.X, pos.Y)
	}

	id := m.nextID
	org := components.Organism{ID: id, Category: components.CategoryFoliage}
	litter := components.Litter{Volume: volume}

	e := m.litterMapper.NewEntity(&pos, &org, &litter)
	if err := m.space.Place(e, pos); err != nil {
		m.world.RemoveEntity(e)
		return 0, err
	}
	m.nextID++
	m.sched.Add(id, components.CategoryFoliage, e)
	m.collector.RecordFoliageDrop()
	return id, nil
}

// remove drops an organism from the scheduler, the spatial index and the
// ECS world in one step. Registry mismatches are reported, not hidden, but
// every registry is still cleaned.
func (m *Model) remove(id uint64, cat components.Category, e ecs.Entity) error {
	var errs []error
	if err := m.sched.Remove(id, cat); err != nil {
		errs = append(errs, err)
	}
	if err := m.space.Remove(e); err != nil {
		errs = append(errs, err)
	}
	if m.world.Alive(e) {
		m.world.RemoveEntity(e)
	}
	return errors.Join(errs...)
}

// disperseSeeds casts a reproductive tree's seeds and establishes every
// candidate that lands in bounds on a free spot.
func (m *Model) disperseSeeds(parentID uint64, origin components.Position, sp *species.Species) {
	cands, outOfBounds := systems.Disperse(m.rng, origin, sp.TreeSpacing, sp.NumSeeds, m.cfg.World.Width, m.cfg.World.Height)

	blocked := 0
	established := 0
	for _, c := range cands {
		pos := m.space.Snap(c)
		if !systems.InOpenBounds(pos, m.cfg.World.Width, m.cfg.World.Height) || m.space.Occupied(pos) {
			blocked++
			continue
		}
		if _, err := m.spawnTree(sp, pos, parentID, sp.InitialAge); err != nil {
			m.logger.Error("failed to establish seed", "parent", parentID, "error", err)
			blocked++
			continue
		}
		established++
	}

	m.collector.RecordDispersal(sp.NumSeeds, outOfBounds, blocked)
	m.lifetimes.RecordSeeding(parentID, m.tick, sp.NumSeeds, established)
}

// dropFoliage lets a reproductive tree shed litter with the configured
// probability. The litter lands at the first usable of a few candidates. In
// grid mode, when every candidate is blocked, it falls into the first free
// cell of the parent's Moore neighborhood instead.
func (m *Model) dropFoliage(origin components.Position, g components.Growth, sp *species.Species) {
	fc := m.cfg.Foliage
	if !fc.Enabled || m.rng.Float64() >= fc.DropChance {
		return
	}

	volume := sp.FoliageProp * g.Volume()
	if volume < fc.MinVolume {
		return
	}

	cands, _ := systems.Disperse(m.rng, origin, sp.TreeSpacing, foliageCandidates, m.cfg.World.Width, m.cfg.World.Height)
	for _, c := range cands {
		pos := m.space.Snap(c)
		if !systems.InOpenBounds(pos, m.cfg.World.Width, m.cfg.World.Height) || m.space.Occupied(pos) {
			continue
		}
		m.placeFoliage(pos, volume)
		return
	}

	grid, ok := m.space.(*systems.CellGrid)
	if !ok {
		return
	}
	for _, pos := range grid.MooreCells(origin) {
		if !systems.InOpenBounds(pos, m.cfg.World.Width, m.cfg.World.Height) || grid.Occupied(pos) {
			continue
		}
		m.placeFoliage(pos, volume)
		return
	}
}

func (m *Model) placeFoliage(pos components.Position, volume float64) {
	if _, err := m.spawnFoliage(pos, volume); err != nil {
		m.logger.Error("failed to drop foliage", "error", err)
	}
}
