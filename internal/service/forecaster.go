package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/smartcity/trafficflow/internal/domain"
	"github.com/smartcity/trafficflow/pkg/regression"
	"github.com/smartcity/trafficflow/pkg/utils"
)

const (
	DefaultWindowSize          = 30
	DefaultHorizonMinutes      = 15
	CongestionHorizonMinutes   = 5
	DefaultCongestionThreshold = 150.0

	// MinObservations is the history required before PredictNext fits a model.
	MinObservations = 5
)

// TrafficForecaster keeps a sliding window of observations and predicts
// near-term vehicle counts from elapsed time and temperature.
type TrafficForecaster struct {
	windowSize int
	temps      domain.TemperatureSource
	log        *slog.Logger

	mu     sync.Mutex
	window []domain.Observation
}

// NewTrafficForecaster creates a forecaster retaining at most windowSize observations.
// Temperatures missing from temps are filled in by a synthetic generator.
func NewTrafficForecaster(windowSize int, temps domain.TemperatureSource, opts ...Option) *TrafficForecaster {
	o := buildOptions(opts)
	if windowSize <= 0 {
		windowSize = DefaultWindowSize
	}

	temps = withSyntheticFallback(temps, opts...)

	return &TrafficForecaster{
		windowSize: windowSize,
		temps:      temps,
		log:        o.logger,
		window:     make([]domain.Observation, 0, windowSize+1),
	}
}

// AddDatapoint records an observation. A nil temperature is read from the
// temperature source. The oldest observations are evicted beyond the window size.
func (f *TrafficForecaster) AddDatapoint(ctx context.Context, ts time.Time, count int, temperature *float64) {
	var temp float64
	if temperature != nil {
		temp = *temperature
	} else {
		temp, _ = f.temps.Current(ctx)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.window = append(f.window, domain.Observation{
		Timestamp:   ts,
		Count:       count,
		Temperature: temp,
	})
	if over := len(f.window) - f.windowSize; over > 0 {
		f.window = append(f.window[:0], f.window[over:]...)
	}
}

// PredictNext fits a regression on the current window and predicts the
// count for each of the next minutesAhead minutes after the latest observation.
// The model is refit on every call. With fewer than MinObservations
// observations the returned set is empty.
func (f *TrafficForecaster) PredictNext(ctx context.Context, minutesAhead int) domain.PredictionSet {
	history := f.Observations()
	if len(history) < MinObservations || minutesAhead <= 0 {
		return domain.PredictionSet{}
	}

	baseTime := history[0].Timestamp
	x := mat.NewDense(len(history), 2, nil)
	y := make([]float64, len(history))
	for i, obs := range history {
		x.Set(i, 0, elapsedMinutes(baseTime, obs.Timestamp))
		x.Set(i, 1, obs.Temperature)
		y[i] = float64(obs.Count)
	}

	var model regression.Model = regression.NewLinearRegression()
	if err := model.Fit(x, y); err != nil {
		f.log.Error("traffic forecast fit failed", "error", err, "observations", len(history))
		return domain.PredictionSet{}
	}
	if f.log.Enabled(ctx, slog.LevelDebug) {
		r2, _ := model.Score(x, y)
		f.log.Debug("traffic forecast fitted",
			"coef", model.Coef(), "intercept", model.Intercept(), "r2", r2, "observations", len(history))
	}

	lastTime := history[len(history)-1].Timestamp
	forecast := f.temps.Forecast(ctx, utils.CeilDiv(minutesAhead, 60))

	set := domain.PredictionSet{
		Times:        make([]time.Time, minutesAhead),
		Counts:       make([]int, minutesAhead),
		Temperatures: make([]float64, minutesAhead),
	}
	future := mat.NewDense(minutesAhead, 2, nil)
	for i := 0; i < minutesAhead; i++ {
		t := lastTime.Add(time.Duration(i+1) * time.Minute)
		temp := closestTemperature(forecast, t)
		set.Times[i] = t
		set.Temperatures[i] = temp
		future.Set(i, 0, elapsedMinutes(baseTime, t))
		future.Set(i, 1, temp)
	}

	predicted, err := model.Predict(future)
	if err != nil {
		f.log.Error("traffic forecast predict failed", "error", err)
		return domain.PredictionSet{}
	}
	for i, v := range predicted {
		set.Counts[i] = int(v)
	}
	return set
}

// CheckCongestion reports whether any count predicted over the next
// CongestionHorizonMinutes strictly exceeds threshold.
func (f *TrafficForecaster) CheckCongestion(ctx context.Context, threshold float64) bool {
	return f.PredictNext(ctx, CongestionHorizonMinutes).CountAbove(threshold) > 0
}

// Observations returns a copy of the retained window, oldest first
func (f *TrafficForecaster) Observations() []domain.Observation {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Observation, len(f.window))
	copy(out, f.window)
	return out
}

// Len returns the number of retained observations
func (f *TrafficForecaster) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.window)
}

// WindowSize returns the maximum number of retained observations
func (f *TrafficForecaster) WindowSize() int {
	return f.windowSize
}

func elapsedMinutes(base, t time.Time) float64 {
	return t.Sub(base).Seconds() / 60
}

// closestTemperature returns the temperature of the forecast point nearest to t.
// On equal distances the earliest point in the slice wins.
func closestTemperature(forecast []domain.ForecastPoint, t time.Time) float64 {
	if len(forecast) == 0 {
		return 0
	}
	best := forecast[0]
	bestDist := absDuration(best.Timestamp.Sub(t))
	for _, p := range forecast[1:] {
		if d := absDuration(p.Timestamp.Sub(t)); d < bestDist {
			best, bestDist = p, d
		}
	}
	return best.Temperature
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
