// Package telemetry provides forest population tracking and CSV output.
package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Distribution summarizes a sample of one attribute.
type Distribution struct {
	Mean float64
	Std  float64
	P10  float64
	P50  float64
	P90  float64
}

// Summarize computes mean, standard deviation and percentiles.
// An empty sample yields zeros; a single value has zero spread.
func Summarize(values []float64) Distribution {
	n := len(values)
	if n == 0 {
		return Distribution{}
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	d := Distribution{
		Mean: stat.Mean(sorted, nil),
		P10:  Percentile(sorted, 0.10),
		P50:  Percentile(sorted, 0.50),
		P90:  Percentile(sorted, 0.90),
	}
	if n > 1 {
		d.Std = stat.StdDev(sorted, nil)
	}
	return d
}

// Percentile returns the p-th empirical quantile of a sorted slice.
// p is clamped to [0, 1]. Returns 0 if the slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[len(sorted)-1]
	}
	return stat.Quantile(p, stat.Empirical, sorted, nil)
}

// TickStats holds aggregated statistics for a logging window.
type TickStats struct {
	WindowStartTick int `csv:"-"`
	Tick            int `csv:"tick"`

	// Population at window end
	Trees        int `csv:"trees"`
	Seeds        int `csv:"seeds"` // trees with age <= 0
	Reproductive int `csv:"reproductive"`
	Foliage      int `csv:"foliage"`

	// Events during window
	Births            int `csv:"births"`
	Deaths            int `csv:"deaths"`
	DeathsGermination int `csv:"deaths_germination"`
	DeathsCollapse    int `csv:"deaths_collapse"`
	DeathsDegenerate  int `csv:"deaths_degenerate"`
	SeedsSown         int `csv:"seeds_sown"`
	SeedsOutOfBounds  int `csv:"seeds_out_of_bounds"`
	SeedsBlocked      int `csv:"seeds_blocked"` // grid mode: landed on an occupied cell
	FoliageDropped    int `csv:"foliage_dropped"`
	FoliageDecayed    int `csv:"foliage_decayed"`

	// Size distribution of germinated trees
	HeightMean   float64 `csv:"height_mean"`
	HeightStd    float64 `csv:"height_std"`
	HeightP10    float64 `csv:"height_p10"`
	HeightP50    float64 `csv:"height_p50"`
	HeightP90    float64 `csv:"height_p90"`
	DiameterMean float64 `csv:"diameter_mean"`
	DiameterP50  float64 `csv:"diameter_p50"`
	DiameterP90  float64 `csv:"diameter_p90"`
	AgeMean      float64 `csv:"age_mean"`

	// Litter
	LitterVolume float64 `csv:"litter_volume"`
}

// LogValue implements slog.LogValuer for structured logging.
func (s TickStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", s.WindowStartTick),
		slog.Int("tick", s.Tick),
		slog.Int("trees", s.Trees),
		slog.Int("seeds", s.Seeds),
		slog.Int("reproductive", s.Reproductive),
		slog.Int("foliage", s.Foliage),
		slog.Int("births", s.Births),
		slog.Int("deaths", s.Deaths),
		slog.Int("deaths_germination", s.DeathsGermination),
		slog.Int("deaths_collapse", s.DeathsCollapse),
		slog.Int("deaths_degenerate", s.DeathsDegenerate),
		slog.Int("seeds_sown", s.SeedsSown),
		slog.Int("seeds_out_of_bounds", s.SeedsOutOfBounds),
		slog.Int("seeds_blocked", s.SeedsBlocked),
		slog.Int("foliage_dropped", s.FoliageDropped),
		slog.Int("foliage_decayed", s.FoliageDecayed),
		slog.Float64("height_mean", s.HeightMean),
		slog.Float64("height_std", s.HeightStd),
		slog.Float64("height_p50", s.HeightP50),
		slog.Float64("height_p90", s.HeightP90),
		slog.Float64("diameter_mean", s.DiameterMean),
		slog.Float64("age_mean", s.AgeMean),
		slog.Float64("litter_volume", s.LitterVolume),
	)
}

// LogStats logs the window stats using slog.
func (s TickStats) LogStats(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("stats", "stats", s)
}
