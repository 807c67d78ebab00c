package systems

import (
	"math"
	"testing"

	"github.com/pthm-cable/wildfire/config"
)

func TestNewEnvironment(t *testing.T) {
	tests := []struct {
		name       string
		cfg        config.EnvironmentConfig
		wantTemp   float64
		wantPrecip float64
		wantErr    bool
	}{
		{
			name:       "constant",
			cfg:        config.EnvironmentConfig{Kind: config.EnvironmentConstant, Temperature: 58, Precipitation: 50},
			wantTemp:   58,
			wantPrecip: 50,
		},
		{
			name:       "empty kind is constant",
			cfg:        config.EnvironmentConfig{Temperature: 60, Precipitation: 10},
			wantTemp:   60,
			wantPrecip: 10,
		},
		{
			name: "gradient",
			cfg: config.EnvironmentConfig{
				Kind: config.EnvironmentGradient, Temperature: 60, Precipitation: 40,
				TemperatureGradient: -0.1, PrecipitationGradient: 1,
			},
			wantTemp:   59,
			wantPrecip: 50,
		},
		{name: "unknown", cfg: config.EnvironmentConfig{Kind: "monsoon"}, wantErr: true},
		{name: "noise without scale", cfg: config.EnvironmentConfig{Kind: config.EnvironmentNoise}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, err := NewEnvironment(tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := env.Temperature(3, 10); math.Abs(got-tt.wantTemp) > 1e-9 {
				t.Errorf("temperature: got %f, want %f", got, tt.wantTemp)
			}
			if got := env.Precipitation(3, 10); math.Abs(got-tt.wantPrecip) > 1e-9 {
				t.Errorf("precipitation: got %f, want %f", got, tt.wantPrecip)
			}
		})
	}
}

func TestNoiseEnvironment(t *testing.T) {
	cfg := config.EnvironmentConfig{
		Kind: config.EnvironmentNoise, Temperature: 58, Precipitation: 50,
		NoiseScale: 10, NoiseTemperature: 2, NoisePrecipitation: 20, NoiseSeed: 7,
	}
	a, err := NewEnvironment(cfg)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := NewEnvironment(cfg)

	varied := false
	for i := 0; i < 50; i++ {
		x, y := float64(i)*1.7, float64(i)*2.3
		ta, pa := a.Temperature(x, y), a.Precipitation(x, y)

		if ta != b.Temperature(x, y) || pa != b.Precipitation(x, y) {
			t.Fatalf("same seed differs at (%f, %f)", x, y)
		}
		if ta != a.Temperature(x, y) {
			t.Fatalf("temperature not pure at (%f, %f)", x, y)
		}
		if math.Abs(ta-58) > 2+1e-9 || math.Abs(pa-50) > 20+1e-9 {
			t.Errorf("(%f, %f): climate (%f, %f) outside amplitude", x, y, ta, pa)
		}
		if ta != 58 {
			varied = true
		}
	}
	if !varied {
		t.Error("noise environment never varied")
	}
}
