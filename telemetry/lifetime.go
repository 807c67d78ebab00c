package telemetry

// LifetimeStats tracks per-tree statistics over its lifetime.
type LifetimeStats struct {
	BirthTick int
	ParentID  uint64 // 0 for the initial population
	Species   string

	// Reproduction
	SeedsSown   int
	Offspring   int
	FirstSeeded int // tick of first reproduction, -1 if never

	// Growth
	PeakHeight   float64
	PeakDiameter float64
	Germinated   bool
}

// DeathRecord is one row of deaths.csv.
type DeathRecord struct {
	Tick      int     `csv:"tick"`
	ID        uint64  `csv:"id"`
	ParentID  uint64  `csv:"parent_id"`
	Species   string  `csv:"species"`
	Cause     string  `csv:"cause"`
	BirthTick int     `csv:"birth_tick"`
	Lifespan  int     `csv:"lifespan"`
	Age       int     `csv:"age"`
	Height    float64 `csv:"height"`
	Diameter  float64 `csv:"diameter"`
	Adverse   float64 `csv:"adverse"`
	Offspring int     `csv:"offspring"`
}

// LifetimeTracker manages per-tree lifetime statistics.
type LifetimeTracker struct {
	stats map[uint64]*LifetimeStats
}

// NewLifetimeTracker creates a new lifetime tracker.
func NewLifetimeTracker() *LifetimeTracker {
	return &LifetimeTracker{
		stats: make(map[uint64]*LifetimeStats),
	}
}

// Register creates lifetime stats for a new tree.
func (lt *LifetimeTracker) Register(id uint64, birthTick int, parentID uint64, species string) {
	lt.stats[id] = &LifetimeStats{
		BirthTick:   birthTick,
		ParentID:    parentID,
		Species:     species,
		FirstSeeded: -1,
	}
}

// Get returns the lifetime stats for a tree, or nil if not found.
func (lt *LifetimeTracker) Get(id uint64) *LifetimeStats {
	return lt.stats[id]
}

// Remove removes a tree's stats and returns them.
func (lt *LifetimeTracker) Remove(id uint64) *LifetimeStats {
	stats := lt.stats[id]
	delete(lt.stats, id)
	return stats
}

// RecordSeeding records a reproduction event: sown candidates were drawn,
// of which offspring were established.
func (lt *LifetimeTracker) RecordSeeding(id uint64, tick, sown, offspring int) {
	if s := lt.stats[id]; s != nil {
		s.SeedsSown += sown
		s.Offspring += offspring
		if s.FirstSeeded < 0 {
			s.FirstSeeded = tick
		}
	}
}

// UpdateGrowth tracks peak size and germination.
func (lt *LifetimeTracker) UpdateGrowth(id uint64, age int, height, diameter float64) {
	if s := lt.stats[id]; s != nil {
		if age > 0 {
			s.Germinated = true
		}
		if height > s.PeakHeight {
			s.PeakHeight = height
		}
		if diameter > s.PeakDiameter {
			s.PeakDiameter = diameter
		}
	}
}

// Death removes a tree and builds its death record.
func (lt *LifetimeTracker) Death(id uint64, tick int, cause string, age int, height, diameter, adverse float64) DeathRecord {
	rec := DeathRecord{
		Tick:     tick,
		ID:       id,
		Cause:    cause,
		Age:      age,
		Height:   height,
		Diameter: diameter,
		Adverse:  adverse,
	}
	if s := lt.Remove(id); s != nil {
		rec.ParentID = s.ParentID
		rec.Species = s.Species
		rec.BirthTick = s.BirthTick
		rec.Lifespan = tick - s.BirthTick
		rec.Offspring = s.Offspring
	}
	return rec
}

// Count returns the number of tracked trees.
func (lt *LifetimeTracker) Count() int {
	return len(lt.stats)
}
