package systems

import (
	"fmt"

	"github.com/ojrac/opensimplex-go"

	"github.com/pthm-cable/wildfire/config"
)

// Environment supplies climate at a position. Implementations must be pure:
// the same position always yields the same values.
type Environment interface {
	Temperature(x, y float64) float64
	Precipitation(x, y float64) float64
}

// ConstantEnvironment returns the same climate everywhere.
type ConstantEnvironment struct {
	Temp   float64
	Precip float64
}

func (e ConstantEnvironment) Temperature(_, _ float64) float64   { return e.Temp }
func (e ConstantEnvironment) Precipitation(_, _ float64) float64 { return e.Precip }

// GradientEnvironment varies climate linearly with y, e.g. a slope where
// the top of the domain is cooler and wetter.
type GradientEnvironment struct {
	BaseTemp   float64
	BasePrecip float64
	TempPerY   float64
	PrecipPerY float64
}

func (e GradientEnvironment) Temperature(_, y float64) float64 {
	return e.BaseTemp + e.TempPerY*y
}

func (e GradientEnvironment) Precipitation(_, y float64) float64 {
	return e.BasePrecip + e.PrecipPerY*y
}

// NoiseEnvironment perturbs a base climate with smooth simplex noise, giving
// patches of warmer or wetter ground. Temperature and precipitation sample
// decorrelated regions of the same field.
type NoiseEnvironment struct {
	BaseTemp   float64
	BasePrecip float64
	TempAmp    float64
	PrecipAmp  float64
	Scale      float64
	noise      opensimplex.Noise
}

// precipOffset shifts precipitation samples far from temperature samples.
const precipOffset = 1000

// NewNoiseEnvironment creates a noise environment from seed.
func NewNoiseEnvironment(baseTemp, basePrecip, tempAmp, precipAmp, scale float64, seed int64) *NoiseEnvironment {
	return &NoiseEnvironment{
		BaseTemp:   baseTemp,
		BasePrecip: basePrecip,
		TempAmp:    tempAmp,
		PrecipAmp:  precipAmp,
		Scale:      scale,
		noise:      opensimplex.New(seed),
	}
}

func (e *NoiseEnvironment) Temperature(x, y float64) float64 {
	return e.BaseTemp + e.TempAmp*e.noise.Eval2(x/e.Scale, y/e.Scale)
}

func (e *NoiseEnvironment) Precipitation(x, y float64) float64 {
	return e.BasePrecip + e.PrecipAmp*e.noise.Eval2(x/e.Scale+precipOffset, y/e.Scale+precipOffset)
}

// NewEnvironment builds the environment described by cfg.
func NewEnvironment(cfg config.EnvironmentConfig) (Environment, error) {
	switch cfg.Kind {
	case config.EnvironmentConstant, "":
		return ConstantEnvironment{Temp: cfg.Temperature, Precip: cfg.Precipitation}, nil
	case config.EnvironmentGradient:
		return GradientEnvironment{
			BaseTemp:   cfg.Temperature,
			BasePrecip: cfg.Precipitation,
			TempPerY:   cfg.TemperatureGradient,
			PrecipPerY: cfg.PrecipitationGradient,
		}, nil
	case config.EnvironmentNoise:
		if cfg.NoiseScale <= 0 {
			return nil, fmt.Errorf("noise environment: scale must be positive, got %g", cfg.NoiseScale)
		}
		return NewNoiseEnvironment(
			cfg.Temperature, cfg.Precipitation,
			cfg.NoiseTemperature, cfg.NoisePrecipitation,
			cfg.NoiseScale, cfg.NoiseSeed,
		), nil
	default:
		return nil, fmt.Errorf("unknown environment kind %q", cfg.Kind)
	}
}
