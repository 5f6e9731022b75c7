package service

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/smartcity/trafficflow/internal/domain"
	"github.com/smartcity/trafficflow/pkg/utils"
)

// DashboardConfig controls the cross-tick dashboard state
type DashboardConfig struct {
	LookbackWindow time.Duration // history older than this is dropped
	SeedPoints     int           // synthetic minutes generated at construction
	SeedForecaster bool          // also feed seed points to the forecaster
	HorizonMinutes int
	Threshold      float64 // default congestion threshold
}

// DefaultDashboardConfig returns the dashboard defaults
func DefaultDashboardConfig() DashboardConfig {
	return DashboardConfig{
		LookbackWindow: 30 * time.Minute,
		SeedPoints:     5,
		SeedForecaster: true,
		HorizonMinutes: DefaultHorizonMinutes,
		Threshold:      DefaultCongestionThreshold,
	}
}

// Area map centre
const (
	mapCenterLat = 17.4459
	mapCenterLon = 78.3781
)

var monitorPoints = []domain.Location{
	{Name: "Hitech City Junction", Latitude: 17.4459, Longitude: 78.3781, TrafficLevel: domain.TrafficHeavy},
	{Name: "Mindspace Junction", Latitude: 17.4424, Longitude: 78.3795, TrafficLevel: domain.TrafficModerate},
	{Name: "Cyber Towers", Latitude: 17.4500, Longitude: 78.3824, TrafficLevel: domain.TrafficLight},
	{Name: "HITEC City MMTS", Latitude: 17.4474, Longitude: 78.3785, TrafficLevel: domain.TrafficModerate},
}

// DashboardService owns the state shared between refresh ticks: the
// displayed history and the forecaster fed from it.
type DashboardService struct {
	generator  *TrafficGenerator
	forecaster *TrafficForecaster
	temps      domain.TemperatureSource
	cfg        DashboardConfig
	now        func() time.Time
	log        *slog.Logger

	mu      sync.Mutex
	history []domain.Observation
	latest  domain.TickResult
}

// NewDashboardService creates the dashboard state and seeds it with
// cfg.SeedPoints synthetic minutes ending one minute before now. When
// cfg.SeedForecaster is false the seed only fills the displayed history and
// predictions start once enough ticks have been recorded.
// Temperatures missing from temps are filled in by a synthetic generator.
func NewDashboardService(
	ctx context.Context,
	generator *TrafficGenerator,
	forecaster *TrafficForecaster,
	temps domain.TemperatureSource,
	cfg DashboardConfig,
	opts ...Option,
) *DashboardService {
	o := buildOptions(opts)
	s := &DashboardService{
		generator:  generator,
		forecaster: forecaster,
		temps:      withSyntheticFallback(temps, opts...),
		cfg:        cfg,
		now:        o.now,
		log:        o.logger.With("component", "dashboard"),
	}

	now := s.now()
	for i := 0; i < cfg.SeedPoints; i++ {
		ts, count := generator.Generate(now.Add(-time.Duration(cfg.SeedPoints-i) * time.Minute))
		s.record(ctx, ts, count, cfg.SeedForecaster)
	}
	s.log.Info("dashboard state initialized", "seed_points", cfg.SeedPoints, "window_size", forecaster.WindowSize())
	return s
}

// Tick evicts stale history, generates a sample for now and feeds it to the forecaster
func (s *DashboardService) Tick(ctx context.Context) domain.TickResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.evict(now)
	ts, count := s.generator.Generate(now)
	result := s.record(ctx, ts, count, true)

	s.log.Debug("dashboard tick", "count", result.Count, "temperature", result.Temperature)
	return result
}

// record appends a sample to the history and optionally the forecaster.
// Callers hold mu except during construction.
func (s *DashboardService) record(ctx context.Context, ts time.Time, count int, feedForecaster bool) domain.TickResult {
	temp, _ := s.temps.Current(ctx)

	result := domain.TickResult{
		Timestamp:   ts,
		Count:       count,
		Temperature: temp,
	}
	if n := len(s.history); n > 0 {
		prev := s.history[n-1]
		result.DeltaCount = count - prev.Count
		result.DeltaTemp = utils.RoundTo(temp-prev.Temperature, 1)
	}

	s.history = append(s.history, domain.Observation{Timestamp: ts, Count: count, Temperature: temp})
	if feedForecaster {
		s.forecaster.AddDatapoint(ctx, ts, count, &temp)
	}
	s.latest = result
	return result
}

func (s *DashboardService) evict(now time.Time) {
	cutoff := now.Add(-s.cfg.LookbackWindow)
	keep := s.history[:0]
	for _, obs := range s.history {
		if !obs.Timestamp.Before(cutoff) {
			keep = append(keep, obs)
		}
	}
	s.history = keep
}

// History returns a copy of the displayed history
func (s *DashboardService) History() []domain.Observation {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Observation, len(s.history))
	copy(out, s.history)
	return out
}

// Forecaster returns the forecaster fed by this dashboard
func (s *DashboardService) Forecaster() *TrafficForecaster {
	return s.forecaster
}

// Temperatures returns the temperature source used for display
func (s *DashboardService) Temperatures() domain.TemperatureSource {
	return s.temps
}

// Now returns the dashboard clock's current time
func (s *DashboardService) Now() time.Time {
	return s.now()
}

// Config returns the dashboard configuration
func (s *DashboardService) Config() DashboardConfig {
	return s.cfg
}

// Snapshot assembles the metrics, predictions and insights for rendering
func (s *DashboardService) Snapshot(ctx context.Context, threshold float64) domain.DashboardSnapshot {
	if threshold <= 0 {
		threshold = s.cfg.Threshold
	}

	s.mu.Lock()
	history := make([]domain.Observation, len(s.history))
	copy(history, s.history)
	latest := s.latest
	s.mu.Unlock()

	predictions := s.forecaster.PredictNext(ctx, s.cfg.HorizonMinutes)
	congested := s.forecaster.CheckCongestion(ctx, threshold)

	snap := domain.DashboardSnapshot{
		Latest:      latest,
		History:     history,
		Predictions: predictions.Points(),
		CurrentLoad: utils.RoundTo(float64(latest.Count)/threshold*100, 1),
		Threshold:   threshold,
		Congested:   congested,
		Status:      "Normal Flow",
		Insights:    buildInsights(history, latest, predictions, threshold),
		Timestamp:   s.now(),
	}
	if maxPredicted, ok := predictions.Max(); ok {
		snap.MaxPredicted = &maxPredicted
	}
	if congested {
		snap.Status = "Heavy Traffic"
	}
	return snap
}

func buildInsights(history []domain.Observation, latest domain.TickResult, predictions domain.PredictionSet, threshold float64) domain.Insights {
	insights := domain.Insights{
		TempImpact:                "Insufficient Data",
		TempDirection:             "N/A",
		TempTrend:                 "Falling",
		PredictionsAboveThreshold: predictions.CountAbove(threshold),
	}
	if latest.DeltaTemp > 0 {
		insights.TempTrend = "Rising"
	}
	if len(history) == 0 {
		return insights
	}

	counts := make([]float64, len(history))
	temps := make([]float64, len(history))
	congested := 0
	for i, obs := range history {
		counts[i] = float64(obs.Count)
		temps[i] = obs.Temperature
		if counts[i] > threshold {
			congested++
		}
		if i == 0 || obs.Count > insights.PeakCount {
			insights.PeakCount = obs.Count
			insights.PeakTime = obs.Timestamp
		}
	}

	insights.AverageCount = utils.RoundTo(stat.Mean(counts, nil), 1)
	insights.CongestionFrequency = float64(congested) / float64(len(history))
	if mean := stat.Mean(counts, nil); mean > 0 {
		insights.ChangeVsAverage = utils.RoundTo((float64(latest.Count)/mean-1)*100, 1)
	}

	if len(history) > 1 {
		corr := stat.Correlation(counts, temps, nil)
		if math.IsNaN(corr) {
			corr = 0
		}
		insights.TempCorrelation = utils.RoundTo(corr, 3)
		switch {
		case math.Abs(corr) > 0.7:
			insights.TempImpact = "Strong"
		case math.Abs(corr) > 0.3:
			insights.TempImpact = "Moderate"
		default:
			insights.TempImpact = "Weak"
		}
		insights.TempDirection = "Negative"
		if corr > 0 {
			insights.TempDirection = "Positive"
		}
	}
	return insights
}

// Locations returns the monitor points shown on the area map
func (s *DashboardService) Locations() []domain.Location {
	out := make([]domain.Location, len(monitorPoints))
	for i, loc := range monitorPoints {
		loc.Color = loc.TrafficLevel.Color()
		loc.DistanceFromHubM = math.Round(utils.Haversine(mapCenterLat, mapCenterLon, loc.Latitude, loc.Longitude) * 1000)
		out[i] = loc
	}
	return out
}

// Run ticks the dashboard every interval until ctx is cancelled
func (s *DashboardService) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.log.Info("refresh loop started", "interval", interval)
	for {
		select {
		case <-ctx.Done():
			s.log.Info("refresh loop stopped")
			return nil
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}
