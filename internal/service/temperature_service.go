package service

import (
	"context"
	"math"
	"sync"
	"time"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/smartcity/trafficflow/internal/domain"
	"github.com/smartcity/trafficflow/pkg/utils"
)

// TemperatureConfig parameterises the diurnal temperature curve
type TemperatureConfig struct {
	BaseTemp       float64
	DailyAmplitude float64
	NoiseStdDev    float64
}

// DefaultTemperatureConfig returns Hitech City-like values: 20-34°C through the day
func DefaultTemperatureConfig() TemperatureConfig {
	return TemperatureConfig{
		BaseTemp:       27.0,
		DailyAmplitude: 7.0,
		NoiseStdDev:    1.0,
	}
}

// Phase anchors of the daily curve: sin(2π(h-troughHour)/24 - (peakHour-troughHour)·2π/24).
const (
	peakHour   = 14.0
	troughHour = 5.0
)

// SyntheticTemperatureSource generates a sinusoidal daily temperature with noise
type SyntheticTemperatureSource struct {
	cfg TemperatureConfig
	now func() time.Time

	mu    sync.Mutex
	noise distuv.Normal
}

// NewSyntheticTemperatureSource creates a synthetic temperature generator
func NewSyntheticTemperatureSource(cfg TemperatureConfig, opts ...Option) *SyntheticTemperatureSource {
	o := buildOptions(opts)
	return &SyntheticTemperatureSource{
		cfg: cfg,
		now: o.now,
		noise: distuv.Normal{
			Mu:    0,
			Sigma: cfg.NoiseStdDev,
			Src:   o.src,
		},
	}
}

// Current returns the temperature at the present instant. It is always available.
func (s *SyntheticTemperatureSource) Current(ctx context.Context) (float64, bool) {
	return s.TemperatureAt(s.now()), true
}

// Forecast returns one point per hour starting at the present instant
func (s *SyntheticTemperatureSource) Forecast(ctx context.Context, hours int) []domain.ForecastPoint {
	if hours <= 0 {
		return []domain.ForecastPoint{}
	}
	start := s.now()
	points := make([]domain.ForecastPoint, 0, hours)
	for i := 0; i < hours; i++ {
		t := start.Add(time.Duration(i) * time.Hour)
		points = append(points, domain.ForecastPoint{
			Timestamp:   t,
			Temperature: s.TemperatureAt(t),
		})
	}
	return points
}

// TemperatureAt evaluates the curve at t with one noise draw, rounded to 0.1°C
func (s *SyntheticTemperatureSource) TemperatureAt(t time.Time) float64 {
	s.mu.Lock()
	noise := s.noise.Rand()
	s.mu.Unlock()
	return utils.RoundTo(s.ExpectedTemperatureAt(t)+noise, 1)
}

// ExpectedTemperatureAt is the noiseless curve value at t
func (s *SyntheticTemperatureSource) ExpectedTemperatureAt(t time.Time) float64 {
	hour := float64(t.Hour()) + float64(t.Minute())/60.0
	phaseShift := (peakHour - troughHour) * (2 * math.Pi / 24)
	return s.cfg.BaseTemp + s.cfg.DailyAmplitude*math.Sin(2*math.Pi*(hour-troughHour)/24-phaseShift)
}

var _ domain.TemperatureSource = (*SyntheticTemperatureSource)(nil)
