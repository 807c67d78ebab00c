package systems

import (
	"math"
	"testing"

	"github.com/pthm-cable/wildfire/components"
	"github.com/pthm-cable/wildfire/config"
	"github.com/pthm-cable/wildfire/species"
)

func testSpeciesConfig() config.SpeciesConfig {
	return config.SpeciesConfig{
		Name:                "pacific_silver_fir",
		Precipitation:       config.RangeConfig{Min: 40, Max: 260},
		Temperature:         config.RangeConfig{Min: 57, Max: 59},
		MaxDiameter:         45,
		MaxAge:              400,
		MaxHeight:           230,
		MaxHeightDifference: 1,
		Reproduction:        config.ReproductionConfig{Policy: config.ReproduceByAge, Base: 20, SD: 3},
		TreeSpacing:         4,
		ShadeRadius:         3,
		KRange:              config.RangeConfig{Min: 0.01, Max: 0.022},
		Shape:               3,
		NumSeeds:            3,
	}
}

func testSpecies(t *testing.T, mutate func(*config.SpeciesConfig)) *species.Species {
	t.Helper()
	cfg := testSpeciesConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	sp, err := species.New(cfg)
	if err != nil {
		t.Fatalf("species.New: %v", err)
	}
	return sp
}

// idealInput places the organism at the species' ideal climate.
func idealInput(sp *species.Species, g components.Growth) GrowthInput {
	return GrowthInput{
		Species:       sp,
		Growth:        g,
		Temperature:   sp.TempMean,
		Precipitation: sp.PrecipMean,
	}
}

// worstInput saturates all three stressors.
func worstInput(sp *species.Species, g components.Growth) GrowthInput {
	return GrowthInput{
		Species:       sp,
		Growth:        g,
		Temperature:   sp.Temperature.Max + 100,
		Precipitation: sp.Precipitation.Min - 1000,
		Shade:         []Shade{{Height: g.Height + 1000, Dist: 0}},
	}
}

func TestSeedGerminatesWithoutStress(t *testing.T) {
	sp := testSpecies(t, nil)
	m := NewGrowthModel(DefaultGrowthPolicy())
	rng := &stubRandom{normals: []float64{0, 0}}

	out := m.Update(idealInput(sp, components.Growth{Age: 0, ReproductionThreshold: 20}), rng)

	if out.Kind != Grew {
		t.Fatalf("expected Grew, got %s (cause %s)", out.Kind, out.Cause)
	}
	if out.Growth.Age != 1 {
		t.Errorf("age: got %d, want 1", out.Growth.Age)
	}
	if out.Growth.Height <= 0 {
		t.Errorf("height should be positive, got %f", out.Growth.Height)
	}
	if out.Adverse != 0 {
		t.Errorf("adverse score should be 0 at the ideal climate, got %f", out.Adverse)
	}
	if math.Abs(out.K-sp.KMid) > 1e-12 {
		t.Errorf("k: got %f, want %f", out.K, sp.KMid)
	}

	wantDiam := 2 * sp.MaxRadiusIncrease * sp.KMid / sp.KRange.Max
	if math.Abs(out.Growth.Diameter-wantDiam) > 1e-12 {
		t.Errorf("diameter: got %f, want %f", out.Growth.Diameter, wantDiam)
	}
}

func TestGerminationGate(t *testing.T) {
	sp := testSpecies(t, nil)
	// Temperature far outside the range: adverse = 1/3
	stressed := GrowthInput{
		Species:       sp,
		Growth:        components.Growth{Age: 0, ReproductionThreshold: 20},
		Temperature:   sp.Temperature.Max + 50,
		Precipitation: sp.PrecipMean,
	}

	tests := []struct {
		name   string
		sign   GerminationSign
		in     GrowthInput
		jitter float64
		dies   bool
	}{
		{"stress sign, ideal, zero jitter", GerminationStress, idealInput(sp, stressed.Growth), 0, false},
		{"stress sign, ideal, positive jitter", GerminationStress, idealInput(sp, stressed.Growth), 0.1, true},
		{"stress sign, stressed, small jitter", GerminationStress, stressed, 0.2, true},
		{"stress sign, stressed, negative jitter", GerminationStress, stressed, -0.5, false},
		{"relief sign, stressed, small jitter", GerminationRelief, stressed, 0.2, false},
		{"relief sign, stressed, large jitter", GerminationRelief, stressed, 0.5, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultGrowthPolicy()
			p.Germination = tt.sign
			m := NewGrowthModel(p)
			rng := &stubRandom{normals: []float64{tt.jitter, 0}}

			out := m.Update(tt.in, rng)
			if tt.dies {
				if out.Kind != Died || out.Cause != CauseGermination {
					t.Errorf("expected germination death, got %s (%s)", out.Kind, out.Cause)
				}
				if out.Growth != tt.in.Growth {
					t.Errorf("dead outcome should carry the prior state")
				}
				return
			}
			if !out.Alive() {
				t.Errorf("expected survival, got death by %s", out.Cause)
			}
		})
	}
}

func TestGerminationOnlyGatesSeeds(t *testing.T) {
	sp := testSpecies(t, nil)
	m := NewGrowthModel(DefaultGrowthPolicy())
	// A positive first draw would kill a seed. An established tree
	// consumes it as the k draw instead.
	rng := &stubRandom{normals: []float64{2}}

	out := m.Update(idealInput(sp, components.Growth{Age: 10, Height: 5, ReproductionThreshold: 20}), rng)
	if !out.Alive() {
		t.Fatalf("established tree should not face the germination gate, died by %s", out.Cause)
	}
	if out.K != sp.KRange.Max {
		t.Errorf("k should clamp to max: got %f, want %f", out.K, sp.KRange.Max)
	}
}

func TestCollapseRules(t *testing.T) {
	sp := testSpecies(t, nil)
	g := components.Growth{Age: 5, Height: 1, Diameter: 0.5, ReproductionThreshold: 20}

	tests := []struct {
		name   string
		rule   CollapseRule
		normal float64
		dies   bool
	}{
		// Full stress: rv = KMid - width + KSD*n = 0.004 + 0.006n
		{"below zero, rv positive but under min", CollapseBelowZero, 0, false},
		{"below zero, rv negative", CollapseBelowZero, -1, true},
		{"below min, rv positive but under min", CollapseBelowMin, 0, true},
		{"below min, rv above min", CollapseBelowMin, 2, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultGrowthPolicy()
			p.Collapse = tt.rule
			m := NewGrowthModel(p)
			rng := &stubRandom{normals: []float64{tt.normal}}

			in := worstInput(sp, g)
			if a := m.AdverseScore(in); math.Abs(a-1) > 1e-12 {
				t.Fatalf("worst input should saturate adverse score, got %f", a)
			}

			out := m.Update(in, rng)
			if tt.dies {
				if out.Kind != Died || out.Cause != CauseCollapse {
					t.Errorf("expected collapse, got %s (%s)", out.Kind, out.Cause)
				}
				return
			}
			if !out.Alive() {
				t.Fatalf("expected survival, died by %s", out.Cause)
			}
			if out.K < sp.KRange.Min || out.K > sp.KRange.Max {
				t.Errorf("k %f outside range [%f, %f]", out.K, sp.KRange.Min, sp.KRange.Max)
			}
		})
	}
}

func TestShadingDeficit(t *testing.T) {
	sp := testSpecies(t, func(c *config.SpeciesConfig) {
		c.MaxHeightDifference = 2
		c.ShadeRadius = 4
	})

	tests := []struct {
		name    string
		shading ShadingNormalization
		height  float64
		shade   []Shade
		want    float64
	}{
		{"no neighbors", ShadingByMaxHeightDifference, 1, nil, 0},
		{"shorter neighbor", ShadingByMaxHeightDifference, 10, []Shade{{Height: 5, Dist: 0}}, 0},
		{"taller adjacent, normalized", ShadingByMaxHeightDifference, 0, []Shade{{Height: 8, Dist: 0}}, 0.5},
		{"taller adjacent, unnormalized", ShadingUnnormalized, 0, []Shade{{Height: 8, Dist: 0}}, 1},
		{"distance halves weight", ShadingUnnormalized, 0, []Shade{{Height: 8, Dist: 2}}, 0.5},
		{"at radius contributes nothing", ShadingUnnormalized, 0, []Shade{{Height: 8, Dist: 4}}, 0},
		{"capped at one", ShadingUnnormalized, 0, []Shade{{Height: 100, Dist: 0}, {Height: 100, Dist: 1}}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultGrowthPolicy()
			p.Shading = tt.shading
			m := NewGrowthModel(p)

			got := m.ShadingDeficit(sp, tt.height, tt.shade)
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("got %f, want %f", got, tt.want)
			}
		})
	}
}

func TestAdverseScoreBounded(t *testing.T) {
	sp := testSpecies(t, nil)
	m := NewGrowthModel(DefaultGrowthPolicy())

	temps := []float64{-100, 0, 57, 58, 59, 100}
	precs := []float64{-50, 40, 150, 260, 1000}
	for _, temp := range temps {
		for _, prec := range precs {
			in := GrowthInput{
				Species:       sp,
				Temperature:   temp,
				Precipitation: prec,
				Shade:         []Shade{{Height: 50, Dist: 1}},
			}
			a := m.AdverseScore(in)
			if a < 0 || a > 1 {
				t.Errorf("temp=%f precip=%f: adverse %f outside [0, 1]", temp, prec, a)
			}
		}
	}
}

func TestDegenerateGrowthDies(t *testing.T) {
	sp := testSpecies(t, func(c *config.SpeciesConfig) { c.MaxHeight = -10 })
	m := NewGrowthModel(DefaultGrowthPolicy())
	rng := &stubRandom{}

	out := m.Update(idealInput(sp, components.Growth{Age: 3, Height: 1, ReproductionThreshold: 20}), rng)
	if out.Kind != Died || out.Cause != CauseDegenerate {
		t.Fatalf("expected degenerate death, got %s (%s)", out.Kind, out.Cause)
	}
	if out.DeltaH >= 0 {
		t.Errorf("expected negative height increment, got %f", out.DeltaH)
	}
	if out.Growth.Height != 1 {
		t.Errorf("dead outcome must not apply growth, height %f", out.Growth.Height)
	}
}

func TestSeedsBelowZeroDoNotGrow(t *testing.T) {
	sp := testSpecies(t, nil)
	m := NewGrowthModel(DefaultGrowthPolicy())
	rng := &stubRandom{}

	out := m.Update(idealInput(sp, components.Growth{Age: -2, ReproductionThreshold: 20}), rng)
	if !out.Alive() {
		t.Fatalf("seed should survive, died by %s", out.Cause)
	}
	if out.Growth.Age != -1 {
		t.Errorf("age: got %d, want -1", out.Growth.Age)
	}
	if out.Growth.Height != 0 || out.Growth.Diameter != 0 {
		t.Errorf("dormant seed grew: height %f diameter %f", out.Growth.Height, out.Growth.Diameter)
	}
}

func TestReproductionSignal(t *testing.T) {
	byAge := testSpecies(t, nil)
	byHeight := testSpecies(t, func(c *config.SpeciesConfig) {
		c.Reproduction.Policy = config.ReproduceByHeight
	})

	tests := []struct {
		name string
		sp   *species.Species
		g    components.Growth
		want OutcomeKind
	}{
		{"age reaches threshold", byAge, components.Growth{Age: 4, Height: 1, ReproductionThreshold: 5}, GrewAndReproduced},
		{"age below threshold", byAge, components.Growth{Age: 2, Height: 1, ReproductionThreshold: 5}, Grew},
		{"age already past threshold", byAge, components.Growth{Age: 30, Height: 1, ReproductionThreshold: 5}, GrewAndReproduced},
		{"height crosses threshold", byHeight, components.Growth{Age: 49, Height: 9, ReproductionThreshold: 10}, GrewAndReproduced},
		{"height below threshold", byHeight, components.Growth{Age: 49, Height: 9, ReproductionThreshold: 100}, Grew},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewGrowthModel(DefaultGrowthPolicy())
			out := m.Update(idealInput(tt.sp, tt.g), &stubRandom{})
			if out.Kind != tt.want {
				t.Errorf("got %s, want %s", out.Kind, tt.want)
			}
		})
	}
}

func TestGrowthMonotonic(t *testing.T) {
	sp := testSpecies(t, nil)
	m := NewGrowthModel(DefaultGrowthPolicy())
	rng := NewRandom(7)

	g := components.Growth{Age: 1, Height: 0.01, Diameter: 0.01, ReproductionThreshold: 20}
	for tick := 0; tick < 500; tick++ {
		in := idealInput(sp, g)
		in.Shade = []Shade{{Height: g.Height + 0.5, Dist: 1}}
		out := m.Update(in, rng)
		if !out.Alive() {
			return
		}
		if out.Growth.Age != g.Age+1 {
			t.Fatalf("tick %d: age %d -> %d", tick, g.Age, out.Growth.Age)
		}
		if out.Growth.Height < g.Height || out.Growth.Diameter < g.Diameter {
			t.Fatalf("tick %d: shrank from %+v to %+v", tick, g, out.Growth)
		}
		g = out.Growth
	}
}

func TestGrowthPolicyFromConfig(t *testing.T) {
	cfg := config.GrowthConfig{
		GerminationSign:      config.GerminationRelief,
		GerminationJitterSD:  0.5,
		CollapseRule:         config.CollapseBelowMin,
		ShadingNormalization: config.ShadingNone,
		NeighborhoodSize:     4,
	}
	p, err := GrowthPolicyFromConfig(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Germination != GerminationRelief || p.Collapse != CollapseBelowMin || p.Shading != ShadingUnnormalized {
		t.Errorf("policy not translated: %+v", p)
	}
	if p.JitterSD != 0.5 || p.NeighborhoodSize != 4 {
		t.Errorf("numeric fields not copied: %+v", p)
	}

	cfg.CollapseRule = "sometimes"
	if _, err := GrowthPolicyFromConfig(cfg); err == nil {
		t.Error("expected error for unknown collapse rule")
	}
}
