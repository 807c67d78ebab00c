package systems

import (
	"fmt"
	"math"

	"github.com/pthm-cable/wildfire/components"
	"github.com/pthm-cable/wildfire/config"
	"github.com/pthm-cable/wildfire/species"
)

// numStressors is the number of normalized stress terms (temperature,
// precipitation, shading). Each is capped at 1, so the mean lies in [0, 1].
const numStressors = 3

// GerminationSign selects which side of the germination gate stress pushes.
type GerminationSign uint8

const (
	GerminationStress GerminationSign = iota // seed dies when +stress + jitter > 0
	GerminationRelief                        // seed dies when -stress + jitter > 0
)

// CollapseRule selects when a drawn growth rate is fatal.
type CollapseRule uint8

const (
	CollapseBelowZero CollapseRule = iota // die when the draw is negative
	CollapseBelowMin                      // die when the draw is under k_range.Min
)

// ShadingNormalization selects how the shading deficit is scaled.
type ShadingNormalization uint8

const (
	ShadingByMaxHeightDifference ShadingNormalization = iota
	ShadingUnnormalized
)

// GrowthPolicy holds the switches on which historical revisions of the
// model disagree.
type GrowthPolicy struct {
	Germination      GerminationSign
	JitterSD         float64
	Collapse         CollapseRule
	Shading          ShadingNormalization
	NeighborhoodSize float64 // divisor for summed shading
}

// DefaultGrowthPolicy matches the embedded default configuration.
func DefaultGrowthPolicy() GrowthPolicy {
	return GrowthPolicy{
		Germination:      GerminationStress,
		JitterSD:         1,
		Collapse:         CollapseBelowZero,
		Shading:          ShadingByMaxHeightDifference,
		NeighborhoodSize: 8,
	}
}

// GrowthPolicyFromConfig translates the growth section of the config.
func GrowthPolicyFromConfig(cfg config.GrowthConfig) (GrowthPolicy, error) {
	p := GrowthPolicy{JitterSD: cfg.GerminationJitterSD, NeighborhoodSize: cfg.NeighborhoodSize}

	switch cfg.GerminationSign {
	case config.GerminationStress:
		p.Germination = GerminationStress
	case config.GerminationRelief:
		p.Germination = GerminationRelief
	default:
		return p, fmt.Errorf("unknown germination sign %q", cfg.GerminationSign)
	}

	switch cfg.CollapseRule {
	case config.CollapseBelowZero:
		p.Collapse = CollapseBelowZero
	case config.CollapseBelowMin:
		p.Collapse = CollapseBelowMin
	default:
		return p, fmt.Errorf("unknown collapse rule %q", cfg.CollapseRule)
	}

	switch cfg.ShadingNormalization {
	case config.ShadingMaxHeightDiff:
		p.Shading = ShadingByMaxHeightDifference
	case config.ShadingNone:
		p.Shading = ShadingUnnormalized
	default:
		return p, fmt.Errorf("unknown shading normalization %q", cfg.ShadingNormalization)
	}

	if p.NeighborhoodSize <= 0 {
		p.NeighborhoodSize = 8
	}
	return p, nil
}

// OutcomeKind is the result of one growth update.
type OutcomeKind uint8

const (
	Died OutcomeKind = iota
	Grew
	GrewAndReproduced
)

func (k OutcomeKind) String() string {
	switch k {
	case Died:
		return "died"
	case Grew:
		return "grew"
	case GrewAndReproduced:
		return "grew_and_reproduced"
	default:
		return "unknown"
	}
}

// DeathCause explains a Died outcome.
type DeathCause uint8

const (
	CauseNone        DeathCause = iota
	CauseGermination            // seed failed to germinate
	CauseCollapse               // growth rate fell outside the admissible range
	CauseDegenerate             // height increment was negative or non-finite
	CauseDecay                  // foliage decayed away
)

func (c DeathCause) String() string {
	switch c {
	case CauseNone:
		return "none"
	case CauseGermination:
		return "germination"
	case CauseCollapse:
		return "collapse"
	case CauseDegenerate:
		return "degenerate"
	case CauseDecay:
		return "decay"
	default:
		return "unknown"
	}
}

// Shade is a neighboring tree as seen by the shading term.
type Shade struct {
	Height float64
	Dist   float64
}

// GrowthInput is everything one update reads.
type GrowthInput struct {
	Species       *species.Species
	Growth        components.Growth
	Temperature   float64
	Precipitation float64
	Shade         []Shade
}

// Outcome is the result of one update. Growth holds the new state unless
// Kind is Died, in which case it is the state before the update.
type Outcome struct {
	Kind    OutcomeKind
	Cause   DeathCause
	Growth  components.Growth
	Adverse float64 // normalized adverse score in [0, 1]
	K       float64 // resolved growth rate, 0 if not reached
	DeltaH  float64 // raw height increment, for anomaly reporting
}

// Alive reports whether the organism survived the update.
func (o Outcome) Alive() bool { return o.Kind != Died }

// GrowthModel applies the Chapman-Richards growth law under environmental
// stress. It holds no per-organism state.
type GrowthModel struct {
	Policy GrowthPolicy
}

// NewGrowthModel creates a growth model with the given policy.
func NewGrowthModel(p GrowthPolicy) *GrowthModel {
	if p.NeighborhoodSize <= 0 {
		p.NeighborhoodSize = 8
	}
	return &GrowthModel{Policy: p}
}

// cappedZ is |v - mean| in units of the ideal half-range, capped at 1.
func cappedZ(v, mean, half float64) float64 {
	if half <= 0 {
		if v == mean {
			return 0
		}
		return 1
	}
	return math.Min(math.Abs(v-mean)/half, 1)
}

// ShadingDeficit returns the light deficit from taller neighbors, capped at 1.
// Each neighbor contributes its height excess weighted by (1 - d/R), so
// closer and taller trees shade more. Shorter neighbors contribute nothing.
func (m *GrowthModel) ShadingDeficit(sp *species.Species, height float64, shade []Shade) float64 {
	var competing float64
	for _, n := range shade {
		excess := n.Height - height
		if excess <= 0 {
			continue
		}
		w := 1.0
		if sp.ShadeRadius > 0 {
			w = 1 - n.Dist/sp.ShadeRadius
		}
		if w <= 0 {
			continue
		}
		competing += excess * w
	}
	competing /= m.Policy.NeighborhoodSize

	if m.Policy.Shading == ShadingByMaxHeightDifference {
		competing /= sp.MaxHeightDifference
	}
	return math.Min(math.Max(competing, 0), 1)
}

// AdverseScore is the mean of the three capped stressors, in [0, 1].
func (m *GrowthModel) AdverseScore(in GrowthInput) float64 {
	sp := in.Species
	zt := cappedZ(in.Temperature, sp.TempMean, sp.TempHalf)
	zp := cappedZ(in.Precipitation, sp.PrecipMean, sp.PrecipHalf)
	sun := m.ShadingDeficit(sp, in.Growth.Height, in.Shade)
	return (zt + zp + sun) / numStressors
}

// Update advances one organism by one tick. It never mutates its input;
// every unfavorable branch resolves to a Died outcome.
func (m *GrowthModel) Update(in GrowthInput, rng Random) Outcome {
	sp := in.Species
	g := in.Growth
	adverse := m.AdverseScore(in)
	out := Outcome{Growth: g, Adverse: adverse}

	// Seeds die under unfavorable conditions
	if g.Age <= 0 {
		jitter := m.Policy.JitterSD * rng.Normal()
		term := adverse
		if m.Policy.Germination == GerminationRelief {
			term = -adverse
		}
		if term+jitter > 0 {
			out.Kind = Died
			out.Cause = CauseGermination
			return out
		}
	}

	// Shift the k distribution down by the scaled stress
	x := adverse * sp.KRange.Width()
	rv := sp.KMid - x + sp.KSD*rng.Normal()
	floor := 0.0
	if m.Policy.Collapse == CollapseBelowMin {
		floor = sp.KRange.Min
	}
	if rv < floor {
		out.Kind = Died
		out.Cause = CauseCollapse
		return out
	}
	k := math.Min(math.Max(rv, sp.KRange.Min), sp.KRange.Max)
	out.K = k

	g.Age++
	if g.Age > 0 {
		age := float64(g.Age)
		dh := sp.MaxHeight * k * sp.P * math.Exp(-k*age) * math.Pow(1-math.Exp(-k*age), sp.P-1)
		out.DeltaH = dh
		if dh < 0 || math.IsNaN(dh) || math.IsInf(dh, 0) {
			out.Kind = Died
			out.Cause = CauseDegenerate
			return out
		}
		g.Height += dh
		g.Diameter += 2 * sp.MaxRadiusIncrease * k / sp.KRange.Max
	}

	out.Growth = g
	out.Kind = Grew
	if g.Age > 0 && reproductive(sp, g) {
		out.Kind = GrewAndReproduced
	}
	return out
}

// reproductive reports whether g has crossed its reproduction threshold.
func reproductive(sp *species.Species, g components.Growth) bool {
	if sp.Reproduction == species.ReproduceByHeight {
		return g.Height >= g.ReproductionThreshold
	}
	return float64(g.Age) >= g.ReproductionThreshold
}

// Reproductive reports whether a germinated tree has crossed its threshold.
func Reproductive(sp *species.Species, g components.Growth) bool {
	return g.Age > 0 && reproductive(sp, g)
}
