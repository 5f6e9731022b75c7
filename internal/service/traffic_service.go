package service

import (
	"math"
	"sync"
	"time"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/smartcity/trafficflow/pkg/utils"
)

// HourRange is a half-open [Start, End) range of hours of the day
type HourRange struct {
	Start int
	End   int
}

// Contains reports whether hour falls in the range
func (r HourRange) Contains(hour int) bool {
	return r.Start <= hour && hour < r.End
}

// TrafficMultipliers scale the base flow for different conditions.
// Rain and HighTemp are configuration only; Generate does not apply them.
type TrafficMultipliers struct {
	PeakHour float64
	OffPeak  float64
	Weekend  float64
	Rain     float64
	HighTemp float64
}

// TrafficConfig parameterises the synthetic traffic pattern
type TrafficConfig struct {
	BaseFlow     float64 // vehicles per minute
	Variance     float64
	MorningPeak  HourRange
	EveningPeak  HourRange
	OffPeakStart int // off-peak when hour >= OffPeakStart or hour <= OffPeakEnd
	OffPeakEnd   int
	Multipliers  TrafficMultipliers
}

// DefaultTrafficConfig returns the Hitech City traffic pattern
func DefaultTrafficConfig() TrafficConfig {
	return TrafficConfig{
		BaseFlow:     100,
		Variance:     20,
		MorningPeak:  HourRange{Start: 8, End: 11},
		EveningPeak:  HourRange{Start: 16, End: 20},
		OffPeakStart: 23,
		OffPeakEnd:   5,
		Multipliers: TrafficMultipliers{
			PeakHour: 2.0,
			OffPeak:  0.7,
			Weekend:  0.8,
			Rain:     1.3,
			HighTemp: 1.2,
		},
	}
}

// TrafficGenerator produces synthetic vehicle counts
type TrafficGenerator struct {
	cfg TrafficConfig
	now func() time.Time

	mu    sync.Mutex
	noise distuv.Normal
}

// NewTrafficGenerator creates a new traffic generator
func NewTrafficGenerator(cfg TrafficConfig, opts ...Option) *TrafficGenerator {
	o := buildOptions(opts)
	return &TrafficGenerator{
		cfg:   cfg,
		now:   o.now,
		noise: distuv.Normal{Mu: 0, Sigma: 1, Src: o.src},
	}
}

// GenerateNow produces a sample for the current instant
func (g *TrafficGenerator) GenerateNow() (time.Time, int) {
	return g.Generate(g.now())
}

// Generate produces a vehicle count sample for ts
func (g *TrafficGenerator) Generate(ts time.Time) (time.Time, int) {
	multiplier := g.Multiplier(ts)

	baseCount := g.cfg.BaseFlow * multiplier
	variance := g.cfg.Variance * multiplier
	count := baseCount + g.draw(variance/2)

	hourFraction := float64(ts.Hour()) + float64(ts.Minute())/60.0
	count += math.Sin(2*math.Pi*hourFraction/24) * 0.2 * baseCount

	return ts, int(utils.Clamp(count, 0, math.Inf(1)))
}

// draw samples N(0, sigma) from the generator's source
func (g *TrafficGenerator) draw(sigma float64) float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.noise.Rand() * sigma
}

// Multiplier returns the time-based flow multiplier for ts
func (g *TrafficGenerator) Multiplier(ts time.Time) float64 {
	hour := ts.Hour()
	multiplier := 1.0

	if isWeekend(ts.Weekday()) {
		multiplier *= g.cfg.Multipliers.Weekend
	}

	switch {
	case g.IsPeakHour(hour):
		multiplier *= g.cfg.Multipliers.PeakHour
	case hour >= g.cfg.OffPeakStart || hour <= g.cfg.OffPeakEnd: // late night / early morning
		multiplier *= g.cfg.Multipliers.OffPeak
	}

	return multiplier
}

// IsPeakHour reports whether hour is inside a rush-hour window
func (g *TrafficGenerator) IsPeakHour(hour int) bool {
	return g.cfg.MorningPeak.Contains(hour) || g.cfg.EveningPeak.Contains(hour)
}

func isWeekend(weekday time.Weekday) bool {
	return weekday == time.Saturday || weekday == time.Sunday
}
