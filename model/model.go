// Package model wires the spatial index, growth model, dispersal and
// scheduler into a steppable forest simulation.
package model

import (
	"fmt"
	"log/slog"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/wildfire/components"
	"github.com/pthm-cable/wildfire/config"
	"github.com/pthm-cable/wildfire/species"
	"github.com/pthm-cable/wildfire/systems"
	"github.com/pthm-cable/wildfire/telemetry"
)

// Options configures a Model beyond its Config.
type Options struct {
	Seed        int64
	Random      systems.Random      // overrides Seed when set
	Environment systems.Environment // overrides the configured environment when set
	Logger      *slog.Logger
	Output      *telemetry.OutputManager // nil disables CSV output
	LogStats    bool                     // log TickStats every window
	NoPopulate  bool                     // skip the initial population
}

// Model is the simulation state. It is single-threaded: every method must
// be called from the same goroutine.
type Model struct {
	cfg    *config.Config
	logger *slog.Logger

	world        *ecs.World
	treeMapper   *ecs.Map3[components.Position, components.Organism, components.Growth]
	litterMapper *ecs.Map3[components.Position, components.Organism, components.Litter]
	posMap       *ecs.Map[components.Position]
	orgMap       *ecs.Map[components.Organism]
	growthMap    *ecs.Map[components.Growth]
	litterMap    *ecs.Map[components.Litter]

	space   systems.Space
	sched   *systems.Scheduler
	growth  *systems.GrowthModel
	env     systems.Environment
	rng     systems.Random
	species *species.Registry

	collector *telemetry.Collector
	lifetimes *telemetry.LifetimeTracker
	perf      *telemetry.PerfCollector
	output    *telemetry.OutputManager
	logStats  bool
	deaths    []telemetry.DeathRecord // pending rows for deaths.csv
	lastStats telemetry.TickStats

	tick   int
	nextID uint64
	phase  components.Category
}

// New builds a model from cfg. Configuration errors are returned, never
// deferred to the first tick.
func New(cfg *config.Config, opts Options) (*Model, error) {
	if cfg == nil {
		return nil, fmt.Errorf("model: nil config")
	}
	if cfg.World.Width <= 0 || cfg.World.Height <= 0 {
		return nil, fmt.Errorf("model: world size must be positive, got %gx%g", cfg.World.Width, cfg.World.Height)
	}
	if cfg.Population.Initial < 0 {
		return nil, fmt.Errorf("model: negative initial population %d", cfg.Population.Initial)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	registry, err := species.NewRegistry(cfg.Species)
	if err != nil {
		return nil, fmt.Errorf("model: %w", err)
	}

	policy, err := systems.GrowthPolicyFromConfig(cfg.Growth)
	if err != nil {
		return nil, fmt.Errorf("model: %w", err)
	}

	env := opts.Environment
	if env == nil {
		env, err = systems.NewEnvironment(cfg.Environment)
		if err != nil {
			return nil, fmt.Errorf("model: %w", err)
		}
	}

	rng := opts.Random
	if rng == nil {
		rng = systems.NewRandom(opts.Seed)
	}

	var space systems.Space
	switch cfg.Space.Mode {
	case config.SpaceContinuous, "":
		space = systems.NewContinuousSpace(cfg.World.Width, cfg.World.Height)
	case config.SpaceGrid:
		space = systems.NewCellGrid(cfg.World.Width, cfg.World.Height, cfg.Space.CellSize)
	default:
		return nil, fmt.Errorf("model: unknown space mode %q", cfg.Space.Mode)
	}

	world := ecs.NewWorld()
	m := &Model{
		cfg:    cfg,
		logger: logger,
		world:  world,
		treeMapper: ecs.NewMap3[
			components.Position,
			components.Organism,
			components.Growth,
		](world),
		litterMapper: ecs.NewMap3[
			components.Position,
			components.Organism,
			components.Litter,
		](world),
		posMap:    ecs.NewMap[components.Position](world),
		orgMap:    ecs.NewMap[components.Organism](world),
		growthMap: ecs.NewMap[components.Growth](world),
		litterMap: ecs.NewMap[components.Litter](world),
		space:     space,
		growth:    systems.NewGrowthModel(policy),
		env:       env,
		rng:       rng,
		species:   registry,
		collector: telemetry.NewCollector(cfg.Telemetry.LogInterval),
		lifetimes: telemetry.NewLifetimeTracker(),
		perf:      telemetry.NewPerfCollector(cfg.Telemetry.LogInterval),
		output:    opts.Output,
		logStats:  opts.LogStats,
		nextID:    1,
	}

	m.sched = systems.NewScheduler(m.ageOf, logger)
	for cat, name := range map[components.Category]string{
		components.CategoryTree:    cfg.Schedule.Tree,
		components.CategoryFoliage: cfg.Schedule.Foliage,
	} {
		p, err := systems.ParseOrderPolicy(name)
		if err != nil {
			return nil, fmt.Errorf("model: %s schedule: %w", cat, err)
		}
		m.sched.SetPolicy(cat, p)
	}

	if !opts.NoPopulate {
		if err := m.spawnInitialPopulation(); err != nil {
			return nil, err
		}
	}

	logger.Info("model created",
		"width", cfg.World.Width,
		"height", cfg.World.Height,
		"space", cfg.Space.Mode,
		"trees", m.sched.Count(components.CategoryTree),
		"seed", opts.Seed,
	)

	return m, nil
}

// Config returns the model's configuration.
func (m *Model) Config() *config.Config { return m.cfg }

// Tick returns the number of completed ticks.
func (m *Model) Tick() int { return m.tick }

// Step advances the simulation exactly one tick.
func (m *Model) Step() {
	m.perf.StartTick()
	m.tick++
	m.phase = components.CategoryTree
	m.perf.StartPhase(telemetry.PhaseTrees)

	m.sched.Tick(m.rng, m.visit)

	m.perf.StartPhase(telemetry.PhaseTelemetry)
	m.flushTelemetry()
	m.perf.EndTick()
}

// Run advances the simulation n ticks.
func (m *Model) Run(n int) {
	for i := 0; i < n; i++ {
		m.Step()
	}
}

// Close writes any pending output. The OutputManager itself is owned by
// the caller.
func (m *Model) Close() error {
	return m.writeDeaths()
}

// ageOf feeds the scheduler's oldest-first order. Foliage has no age.
func (m *Model) ageOf(e ecs.Entity) int {
	if !m.world.Alive(e) || m.orgMap.Get(e).Category != components.CategoryTree {
		return 0
	}
	return m.growthMap.Get(e).Age
}

// visit dispatches one scheduled organism to its category's update.
func (m *Model) visit(cat components.Category, mem systems.Member) error {
	if cat != m.phase {
		m.phase = cat
		m.perf.StartPhase(telemetry.PhaseFoliage)
	}
	if !m.world.Alive(mem.E) {
		return fmt.Errorf("%s %d: entity no longer alive", cat, mem.ID)
	}

	switch cat {
	case components.CategoryTree:
		return m.updateTree(mem)
	case components.CategoryFoliage:
		return m.updateFoliage(mem)
	default:
		return fmt.Errorf("unknown category %d", cat)
	}
}
