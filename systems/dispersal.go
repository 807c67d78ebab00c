package systems

import (
	"math"

	"github.com/pthm-cable/wildfire/components"
)

// Disperse scatters numSeeds candidates around origin. Each seed travels a
// Poisson(spacing) distance in a uniformly random direction. Candidates
// outside the open domain (0, width) x (0, height) are dropped, and the
// number dropped is returned. Co-located seeds are not deduplicated.
func Disperse(rng Random, origin components.Position, spacing float64, numSeeds int, width, height float64) ([]components.Position, int) {
	if numSeeds <= 0 {
		return nil, 0
	}

	out := make([]components.Position, 0, numSeeds)
	dropped := 0
	for i := 0; i < numSeeds; i++ {
		angle := rng.Uniform(0, 2*math.Pi)
		dist := float64(rng.Poisson(spacing))

		p := components.Position{
			X: origin.X + dist*math.Cos(angle),
			Y: origin.Y + dist*math.Sin(angle),
		}
		if !InOpenBounds(p, width, height) {
			dropped++
			continue
		}
		out = append(out, p)
	}
	return out, dropped
}

// InOpenBounds reports 0 < x < width and 0 < y < height.
func InOpenBounds(p components.Position, width, height float64) bool {
	return p.X > 0 && p.X < width && p.Y > 0 && p.Y < height
}
