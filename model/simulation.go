package model

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/wildfire/components"
	"github.com/pthm-cable/wildfire/species"
	"github.com/pthm-cable/wildfire/systems"
	"github.com/pthm-cable/wildfire/telemetry"
)

// updateTree runs one growth update. Component values are copied out before
// any structural change, since spawning invalidates component pointers.
func (m *Model) updateTree(mem systems.Member) error {
	e := mem.E
	pos := *m.posMap.Get(e)
	org := *m.orgMap.Get(e)
	g := *m.growthMap.Get(e)
	sp := org.Species

	in := systems.GrowthInput{
		Species:       sp,
		Growth:        g,
		Temperature:   m.env.Temperature(pos.X, pos.Y),
		Precipitation: m.env.Precipitation(pos.X, pos.Y),
		Shade:         m.shadeAt(pos, e, sp),
	}
	out := m.growth.Update(in, m.rng)

	if !out.Alive() {
		if out.Cause == systems.CauseDegenerate {
			m.logger.Warn("degenerate growth",
				"id", org.ID,
				"species", sp.Name,
				"age", g.Age,
				"k", out.K,
				"delta_height", out.DeltaH,
			)
		}
		m.recordTreeDeath(org.ID, out.Cause, g, out.Adverse)
		return m.remove(org.ID, components.CategoryTree, e)
	}

	*m.growthMap.Get(e) = out.Growth
	m.lifetimes.UpdateGrowth(org.ID, out.Growth.Age, out.Growth.Height, out.Growth.Diameter)

	if out.Kind == systems.GrewAndReproduced {
		m.disperseSeeds(org.ID, pos, sp)
		m.dropFoliage(pos, out.Growth, sp)
	}
	return nil
}

// shadeAt collects the trees that can shade a tree of sp at pos. Foliage
// never casts shade.
func (m *Model) shadeAt(pos components.Position, self ecs.Entity, sp *species.Species) []systems.Shade {
	neighbors := m.space.Neighbors(pos, sp.ShadeRadius, self)
	if len(neighbors) == 0 {
		return nil
	}
	shade := make([]systems.Shade, 0, len(neighbors))
	for _, n := range neighbors {
		if m.orgMap.Get(n.E).Category != components.CategoryTree {
			continue
		}
		shade = append(shade, systems.Shade{Height: m.growthMap.Get(n.E).Height, Dist: n.Dist})
	}
	return shade
}

// updateFoliage decays a litter patch and removes it once it is too small.
func (m *Model) updateFoliage(mem systems.Member) error {
	l := m.litterMap.Get(mem.E)
	l.Volume *= 1 - m.cfg.Foliage.DecayRate
	if l.Volume >= m.cfg.Foliage.MinVolume {
		return nil
	}
	m.collector.RecordDeath(telemetry.CauseDecay)
	return m.remove(mem.ID, components.CategoryFoliage, mem.E)
}

// recordTreeDeath feeds the collector and the pending deaths.csv rows.
func (m *Model) recordTreeDeath(id uint64, cause systems.DeathCause, g components.Growth, adverse float64) {
	name := cause.String()
	m.collector.RecordDeath(name)
	rec := m.lifetimes.Death(id, m.tick, name, g.Age, g.Height, g.Diameter, adverse)
	if m.output != nil {
		m.deaths = append(m.deaths, rec)
	}
}
