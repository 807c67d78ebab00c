package systems

import (
	"math"
	"testing"

	"github.com/pthm-cable/wildfire/components"
)

func TestDisperseBoundsStrict(t *testing.T) {
	tests := []struct {
		name     string
		origin   components.Position
		uniforms []float64
		poissons []int
		kept     int
	}{
		{"all inside", components.Position{X: 10, Y: 10}, []float64{0, math.Pi / 2, math.Pi}, []int{3, 3, 3}, 3},
		{"one past the edge", components.Position{X: 18, Y: 10}, []float64{0, math.Pi}, []int{5, 5}, 1},
		{"exactly on the edge is dropped", components.Position{X: 15, Y: 10}, []float64{0}, []int{5}, 0},
		{"zero distance stays at origin", components.Position{X: 10, Y: 10}, []float64{1}, []int{0}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rng := &stubRandom{uniforms: tt.uniforms, poissons: tt.poissons}
			got, dropped := Disperse(rng, tt.origin, 4, len(tt.uniforms), 20, 20)
			if len(got) != tt.kept {
				t.Errorf("kept: got %d, want %d (%+v)", len(got), tt.kept, got)
			}
			if len(got)+dropped != len(tt.uniforms) {
				t.Errorf("kept+dropped = %d, want %d", len(got)+dropped, len(tt.uniforms))
			}
			for _, p := range got {
				if !InOpenBounds(p, 20, 20) {
					t.Errorf("candidate %+v outside open domain", p)
				}
			}
		})
	}
}

func TestDisperseAllowsDuplicates(t *testing.T) {
	rng := &stubRandom{uniforms: []float64{0, 0}, poissons: []int{2, 2}}
	got, _ := Disperse(rng, components.Position{X: 5, Y: 5}, 2, 2, 20, 20)
	if len(got) != 2 {
		t.Fatalf("got %d candidates, want 2", len(got))
	}
	if got[0] != got[1] {
		t.Errorf("identical draws should yield identical positions: %+v", got)
	}
}

func TestDisperseZeroSeeds(t *testing.T) {
	got, dropped := Disperse(NewRandom(1), components.Position{X: 5, Y: 5}, 2, 0, 20, 20)
	if got != nil || dropped != 0 {
		t.Errorf("expected no candidates, got %v dropped %d", got, dropped)
	}
}

func TestDisperseSeededWithinBounds(t *testing.T) {
	rng := NewRandom(42)
	for i := 0; i < 200; i++ {
		got, _ := Disperse(rng, components.Position{X: 1, Y: 19}, 6, 5, 20, 20)
		for _, p := range got {
			if !InOpenBounds(p, 20, 20) {
				t.Fatalf("candidate %+v outside open domain", p)
			}
		}
	}
}
