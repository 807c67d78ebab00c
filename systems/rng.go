package systems

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// Random is the single source of randomness for a simulation. Every
// stochastic draw goes through it so a run is reproducible from its seed.
type Random interface {
	Normal() float64                    // standard normal
	Poisson(lambda float64) int         // lambda <= 0 yields 0
	Uniform(min, max float64) float64   // [min, max)
	Float64() float64                   // [0, 1)
	Shuffle(n int, swap func(i, j int)) // uniform permutation
}

// SeededRandom draws from gonum distributions over one PCG stream.
type SeededRandom struct {
	src    *rand.PCG
	rng    *rand.Rand
	normal distuv.Normal
}

// NewRandom creates a Random seeded deterministically.
func NewRandom(seed int64) *SeededRandom {
	src := rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15)
	return &SeededRandom{
		src:    src,
		rng:    rand.New(src),
		normal: distuv.Normal{Mu: 0, Sigma: 1, Src: src},
	}
}

func (r *SeededRandom) Normal() float64 {
	return r.normal.Rand()
}

func (r *SeededRandom) Poisson(lambda float64) int {
	if lambda <= 0 || math.IsNaN(lambda) {
		return 0
	}
	return int(distuv.Poisson{Lambda: lambda, Src: r.src}.Rand())
}

func (r *SeededRandom) Uniform(min, max float64) float64 {
	if max <= min {
		return min
	}
	return distuv.Uniform{Min: min, Max: max, Src: r.src}.Rand()
}

func (r *SeededRandom) Float64() float64 {
	return r.rng.Float64()
}

func (r *SeededRandom) Shuffle(n int, swap func(i, j int)) {
	r.rng.Shuffle(n, swap)
}
