package telemetry

import (
	"log/slog"
	"time"
)

// Phase is a timed section of a simulation step.
type Phase uint8

const (
	PhaseTrees Phase = iota
	PhaseFoliage
	PhaseTelemetry
	numPhases
)

func (p Phase) String() string {
	switch p {
	case PhaseTrees:
		return "trees"
	case PhaseFoliage:
		return "foliage"
	case PhaseTelemetry:
		return "telemetry"
	}
	return "unknown"
}

type tickSample struct {
	total  time.Duration
	phases [numPhases]time.Duration
}

// PerfCollector times simulation steps over a ring of recent ticks.
type PerfCollector struct {
	now func() time.Time

	ring []tickSample
	next int
	n    int

	cur        tickSample
	tickStart  time.Time
	phaseStart time.Time
	active     Phase
	inPhase    bool
}

// NewPerfCollector keeps the last window ticks. Non-positive windows default to 60.
func NewPerfCollector(window int) *PerfCollector {
	if window < 1 {
		window = 60
	}
	return &PerfCollector{now: time.Now, ring: make([]tickSample, window)}
}

// StartTick begins timing a new step.
func (p *PerfCollector) StartTick() {
	p.tickStart = p.now()
	p.cur = tickSample{}
	p.inPhase = false
}

// StartPhase closes the running phase, if any, and opens phase.
func (p *PerfCollector) StartPhase(phase Phase) {
	now := p.now()
	p.closePhase(now)
	p.active, p.phaseStart, p.inPhase = phase, now, true
}

// EndTick closes the step and stores it, evicting the oldest sample once the ring is full.
func (p *PerfCollector) EndTick() {
	now := p.now()
	p.closePhase(now)
	p.inPhase = false
	p.cur.total = now.Sub(p.tickStart)

	p.ring[p.next] = p.cur
	p.next = (p.next + 1) % len(p.ring)
	if p.n < len(p.ring) {
		p.n++
	}
}

func (p *PerfCollector) closePhase(now time.Time) {
	if p.inPhase && p.active < numPhases {
		p.cur.phases[p.active] += now.Sub(p.phaseStart)
	}
}

// PerfStats summarises the stored ticks.
type PerfStats struct {
	Ticks      int
	Mean       time.Duration
	Max        time.Duration
	PhaseShare [numPhases]float64 // fraction of total step time, 0..1
}

// TicksPerSecond is the throughput implied by the mean step time.
func (s PerfStats) TicksPerSecond() float64 {
	if s.Mean <= 0 {
		return 0
	}
	return float64(time.Second) / float64(s.Mean)
}

// Stats aggregates the samples currently in the ring.
func (p *PerfCollector) Stats() PerfStats {
	s := PerfStats{Ticks: p.n}
	if p.n == 0 {
		return s
	}

	var total time.Duration
	var phases [numPhases]time.Duration
	for _, t := range p.ring[:p.n] {
		total += t.total
		if t.total > s.Max {
			s.Max = t.total
		}
		for i, d := range t.phases {
			phases[i] += d
		}
	}
	s.Mean = total / time.Duration(p.n)
	if total > 0 {
		for i, d := range phases {
			s.PhaseShare[i] = float64(d) / float64(total)
		}
	}
	return s
}

// LogStats emits one "perf" record.
func (s PerfStats) LogStats(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	attrs := []any{
		"ticks", s.Ticks,
		"mean_tick_us", s.Mean.Microseconds(),
		"max_tick_us", s.Max.Microseconds(),
		"ticks_per_sec", int(s.TicksPerSecond()),
	}
	for i, share := range s.PhaseShare {
		attrs = append(attrs, Phase(i).String()+"_pct", int(share*1000)/10.0)
	}
	logger.Info("perf", attrs...)
}

// PerfStatsCSV is one perf.csv row.
type PerfStatsCSV struct {
	Tick         int     `csv:"tick"`
	MeanTickUS   int64   `csv:"mean_tick_us"`
	MaxTickUS    int64   `csv:"max_tick_us"`
	TicksPerSec  float64 `csv:"ticks_per_sec"`
	TreesPct     float64 `csv:"trees_pct"`
	FoliagePct   float64 `csv:"foliage_pct"`
	TelemetryPct float64 `csv:"telemetry_pct"`
}

// ToCSV flattens the stats for the row written at tick.
func (s PerfStats) ToCSV(tick int) PerfStatsCSV {
	return PerfStatsCSV{
		Tick:         tick,
		MeanTickUS:   s.Mean.Microseconds(),
		MaxTickUS:    s.Max.Microseconds(),
		TicksPerSec:  s.TicksPerSecond(),
		TreesPct:     s.PhaseShare[PhaseTrees] * 100,
		FoliagePct:   s.PhaseShare[PhaseFoliage] * 100,
		TelemetryPct: s.PhaseShare[PhaseTelemetry] * 100,
	}
}
