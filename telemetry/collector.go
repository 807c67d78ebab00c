package telemetry

// Death causes as recorded by the collector.
const (
	CauseGermination = "germination"
	CauseCollapse    = "collapse"
	CauseDegenerate  = "degenerate"
	CauseDecay       = "decay"
)

// Collector accumulates events within a window of ticks and produces TickStats.
type Collector struct {
	windowTicks     int
	windowStartTick int

	// Event counters for current window
	births            int
	deathsGermination int
	deathsCollapse    int
	deathsDegenerate  int
	seedsSown         int
	seedsOutOfBounds  int
	seedsBlocked      int
	foliageDropped    int
	foliageDecayed    int
}

// NewCollector creates a collector that flushes every windowTicks ticks.
func NewCollector(windowTicks int) *Collector {
	if windowTicks < 1 {
		windowTicks = 1
	}
	return &Collector{windowTicks: windowTicks}
}

// RecordBirth records a tree entering the population.
func (c *Collector) RecordBirth() {
	c.births++
}

// RecordDeath records a tree death by cause. Foliage decay is counted
// separately via RecordFoliageDecay.
func (c *Collector) RecordDeath(cause string) {
	switch cause {
	case CauseGermination:
		c.deathsGermination++
	case CauseCollapse:
		c.deathsCollapse++
	case CauseDegenerate:
		c.deathsDegenerate++
	case CauseDecay:
		c.foliageDecayed++
	}
}

// RecordDispersal records one parent's seed cast.
func (c *Collector) RecordDispersal(sown, outOfBounds, blocked int) {
	c.seedsSown += sown
	c.seedsOutOfBounds += outOfBounds
	c.seedsBlocked += blocked
}

// RecordFoliageDrop records a leaf litter drop.
func (c *Collector) RecordFoliageDrop() {
	c.foliageDropped++
}

// RecordFoliageDecay records litter decaying away.
func (c *Collector) RecordFoliageDecay() {
	c.foliageDecayed++
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int) bool {
	return currentTick-c.windowStartTick >= c.windowTicks
}

// Population is a snapshot of the living population at flush time.
type Population struct {
	Trees        int
	Seeds        int
	Reproductive int
	Foliage      int
	Heights      []float64 // germinated trees only
	Diameters    []float64
	Ages         []float64
	LitterVolume float64
}

// Flush produces TickStats and resets counters for the next window.
func (c *Collector) Flush(currentTick int, pop Population) TickStats {
	heights := Summarize(pop.Heights)
	diameters := Summarize(pop.Diameters)
	ages := Summarize(pop.Ages)

	deaths := c.deathsGermination + c.deathsCollapse + c.deathsDegenerate

	stats := TickStats{
		WindowStartTick: c.windowStartTick,
		Tick:            currentTick,

		Trees:        pop.Trees,
		Seeds:        pop.Seeds,
		Reproductive: pop.Reproductive,
		Foliage:      pop.Foliage,

		Births:            c.births,
		Deaths:            deaths,
		DeathsGermination: c.deathsGermination,
		DeathsCollapse:    c.deathsCollapse,
		DeathsDegenerate:  c.deathsDegenerate,
		SeedsSown:         c.seedsSown,
		SeedsOutOfBounds:  c.seedsOutOfBounds,
		SeedsBlocked:      c.seedsBlocked,
		FoliageDropped:    c.foliageDropped,
		FoliageDecayed:    c.foliageDecayed,

		HeightMean:   heights.Mean,
		HeightStd:    heights.Std,
		HeightP10:    heights.P10,
		HeightP50:    heights.P50,
		HeightP90:    heights.P90,
		DiameterMean: diameters.Mean,
		DiameterP50:  diameters.P50,
		DiameterP90:  diameters.P90,
		AgeMean:      ages.Mean,

		LitterVolume: pop.LitterVolume,
	}

	// Reset for next window
	c.windowStartTick = currentTick
	c.births = 0
	c.deathsGermination = 0
	c.deathsCollapse = 0
	c.deathsDegenerate = 0
	c.seedsSown = 0
	c.seedsOutOfBounds = 0
	c.seedsBlocked = 0
	c.foliageDropped = 0
	c.foliageDecayed = 0

	return stats
}

// WindowTicks returns the number of ticks per window.
func (c *Collector) WindowTicks() int {
	return c.windowTicks
}
