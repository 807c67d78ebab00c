package main

import (
	"log/slog"
	"math"
	"os"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/wildfire/components"
	"github.com/pthm-cable/wildfire/config"
	"github.com/pthm-cable/wildfire/model"
)

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params     *ParamVector
	ticks      int
	seeds      []int64
	target     float64
	baseConfig *config.Config
	logger     *slog.Logger

	mu            sync.Mutex
	lastMeanTrees float64 // from the most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator. Its logger writes warnings
// and errors to stderr so rejected configurations stay visible.
func NewFitnessEvaluator(params *ParamVector, ticks int, seeds []int64, target float64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:     params,
		ticks:      ticks,
		seeds:      seeds,
		target:     target,
		baseConfig: baseCfg,
		logger:     slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})),
	}
}

// LastMeanTrees returns the mean final tree count from the most recent
// evaluation.
func (fe *FitnessEvaluator) LastMeanTrees() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastMeanTrees
}

// seedResult holds the result from one seed evaluation.
type seedResult struct {
	trees int
	err   error
}

// Evaluate computes fitness for a parameter vector (lower = better): the
// squared gap between the final tree count and the target, averaged over
// seeds. Configurations the model rejects score +Inf.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	cfg := fe.baseConfig.Clone()
	fe.params.ApplyToConfig(cfg, x)

	// Run all seeds in parallel. Each model owns its state; cfg is read-only.
	results := make([]seedResult, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			trees, err := fe.runSimulation(cfg, s)
			results[idx] = seedResult{trees: trees, err: err}
		}(i, seed)
	}
	wg.Wait()

	gaps := make([]float64, 0, len(results))
	counts := make([]float64, 0, len(results))
	for i, r := range results {
		if r.err != nil {
			fe.logger.Error("evaluation failed", "seed", fe.seeds[i], "error", r.err)
			return math.Inf(1)
		}
		d := float64(r.trees) - fe.target
		gaps = append(gaps, d*d)
		counts = append(counts, float64(r.trees))
	}

	fe.mu.Lock()
	fe.lastMeanTrees = stat.Mean(counts, nil)
	fe.mu.Unlock()

	return stat.Mean(gaps, nil)
}

// runSimulation executes a single headless run and returns the final tree
// count. A run stops early once every tree has died.
func (fe *FitnessEvaluator) runSimulation(cfg *config.Config, seed int64) (int, error) {
	m, err := model.New(cfg, model.Options{Seed: seed, Logger: fe.logger})
	if err != nil {
		return 0, err
	}

	for m.Tick() < fe.ticks {
		m.Step()
		if m.Count(components.CategoryTree) == 0 {
			break
		}
	}
	return m.Count(components.CategoryTree), nil
}
