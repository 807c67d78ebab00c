package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/pthm-cable/wildfire/components"
	"github.com/pthm-cable/wildfire/config"
	"github.com/pthm-cable/wildfire/model"
	"github.com/pthm-cable/wildfire/telemetry"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	ticks := flag.Int("ticks", 100, "Number of ticks to simulate")

	flag.Parse()

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	// Set up seed
	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	output, err := telemetry.NewOutputManager(*outputDir)
	if err != nil {
		slog.Error("failed to create output manager", "error", err)
		os.Exit(1)
	}
	defer output.Close()

	if err := output.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config snapshot", "error", err)
	}

	m, err := model.New(cfg, model.Options{
		Seed:     rngSeed,
		Logger:   logger,
		Output:   output,
		LogStats: *logStats,
	})
	if err != nil {
		slog.Error("failed to create model", "error", err)
		os.Exit(1)
	}

	slog.Info("starting simulation",
		"seed", rngSeed,
		"ticks", *ticks,
		"output_dir", *outputDir,
	)

	start := time.Now()
	m.Run(*ticks)

	if err := m.Close(); err != nil {
		slog.Error("failed to flush output", "error", err)
	}

	slog.Info("simulation finished",
		"tick", m.Tick(),
		"trees", m.Count(components.CategoryTree),
		"foliage", m.Count(components.CategoryFoliage),
		"mean_height", m.Average(model.AttrHeight, components.CategoryTree),
		"elapsed", time.Since(start).String(),
	)
}
