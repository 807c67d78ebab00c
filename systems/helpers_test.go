package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/wildfire/components"
)

// stubRandom replays fixed draws. Exhausted queues yield zero values.
type stubRandom struct {
	normals  []float64
	poissons []int
	uniforms []float64
	floats   []float64
	reverse  bool // Shuffle reverses instead of leaving order unchanged
}

func (r *stubRandom) Normal() float64 {
	if len(r.normals) == 0 {
		return 0
	}
	v := r.normals[0]
	r.normals = r.normals[1:]
	return v
}

func (r *stubRandom) Poisson(float64) int {
	if len(r.poissons) == 0 {
		return 0
	}
	v := r.poissons[0]
	r.poissons = r.poissons[1:]
	return v
}

func (r *stubRandom) Uniform(min, _ float64) float64 {
	if len(r.uniforms) == 0 {
		return min
	}
	v := r.uniforms[0]
	r.uniforms = r.uniforms[1:]
	return v
}

func (r *stubRandom) Float64() float64 {
	if len(r.floats) == 0 {
		return 0
	}
	v := r.floats[0]
	r.floats = r.floats[1:]
	return v
}

func (r *stubRandom) Shuffle(n int, swap func(i, j int)) {
	if !r.reverse {
		return
	}
	for i, j := 0, n-1; i < j; i, j = i+1, j-1 {
		swap(i, j)
	}
}

// newEntities creates n live entities in a fresh world.
func newEntities(n int) []ecs.Entity {
	world := ecs.NewWorld()
	mapper := ecs.NewMap1[components.Position](world)
	out := make([]ecs.Entity, n)
	for i := range out {
		out[i] = mapper.NewEntity(&components.Position{})
	}
	return out
}
