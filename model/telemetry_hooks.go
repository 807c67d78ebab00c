package model

import (
	"github.com/pthm-cable/wildfire/components"
	"github.com/pthm-cable/wildfire/systems"
	"github.com/pthm-cable/wildfire/telemetry"
)

// flushTelemetry closes the stats window when due and writes pending rows.
func (m *Model) flushTelemetry() {
	if err := m.writeDeaths(); err != nil {
		m.logger.Error("failed to write deaths", "error", err)
	}

	if !m.collector.ShouldFlush(m.tick) {
		return
	}

	stats := m.collector.Flush(m.tick, m.samplePopulation())
	m.lastStats = stats
	perfStats := m.perf.Stats()

	if m.logStats {
		stats.LogStats(m.logger)
		perfStats.LogStats(m.logger)
	}

	if m.output != nil {
		if err := m.output.WriteTelemetry(stats); err != nil {
			m.logger.Error("failed to write telemetry", "error", err)
		}
		if err := m.output.WritePerf(perfStats, m.tick); err != nil {
			m.logger.Error("failed to write perf", "error", err)
		}
	}
}

// writeDeaths flushes buffered death records to deaths.csv.
func (m *Model) writeDeaths() error {
	if len(m.deaths) == 0 {
		return nil
	}
	err := m.output.WriteDeaths(m.deaths)
	m.deaths = m.deaths[:0]
	return err
}

// samplePopulation gathers the size distributions for the stats window.
func (m *Model) samplePopulation() telemetry.Population {
	var pop telemetry.Population

	for _, mem := range m.sched.Members(components.CategoryTree) {
		org := m.orgMap.Get(mem.E)
		g := m.growthMap.Get(mem.E)
		pop.Trees++
		if g.Age <= 0 {
			pop.Seeds++
			continue
		}
		if systems.Reproductive(org.Species, *g) {
			pop.Reproductive++
		}
		pop.Heights = append(pop.Heights, g.Height)
		pop.Diameters = append(pop.Diameters, g.Diameter)
		pop.Ages = append(pop.Ages, float64(g.Age))
	}

	for _, mem := range m.sched.Members(components.CategoryFoliage) {
		pop.Foliage++
		pop.LitterVolume += m.litterMap.Get(mem.E).Volume
	}

	return pop
}

// LastStats returns the most recently flushed stats window.
func (m *Model) LastStats() telemetry.TickStats {
	return m.lastStats
}

// PerfStats returns timing over the recent ticks.
func (m *Model) PerfStats() telemetry.PerfStats {
	return m.perf.Stats()
}
