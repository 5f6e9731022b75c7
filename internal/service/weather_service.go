package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/smartcity/trafficflow/internal/domain"
)

// ErrMissingAPIKey is returned when the remote weather source has no credential
var ErrMissingAPIKey = errors.New("weather: WEATHER_API_KEY not set")

const (
	defaultWeatherBaseURL = "http://api.weatherapi.com/v1"
	forecastTimeLayout    = "2006-01-02 15:04"
)

// RemoteConfig configures the weatherapi.com client
type RemoteConfig struct {
	APIKey    string
	BaseURL   string
	Latitude  float64
	Longitude float64
	RPS       float64 // requests per second allowed against the API
	Burst     int
	Timeout   time.Duration
}

// RemoteTemperatureSource reads temperatures from weatherapi.com.
// Transport failures are logged and reported as absence, never returned.
type RemoteTemperatureSource struct {
	cfg        RemoteConfig
	httpClient *http.Client
	limiter    *rate.Limiter
	log        *slog.Logger
}

// NewRemoteTemperatureSource creates a remote weather source.
// It fails only when no API key is configured.
func NewRemoteTemperatureSource(cfg RemoteConfig, opts ...Option) (*RemoteTemperatureSource, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultWeatherBaseURL
	}
	if cfg.Latitude == 0 && cfg.Longitude == 0 {
		cfg.Latitude, cfg.Longitude = domain.HitechCityLat, domain.HitechCityLon
	}
	if cfg.RPS <= 0 {
		cfg.RPS = 1
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	o := buildOptions(opts)
	return &RemoteTemperatureSource{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(cfg.RPS), cfg.Burst),
		log:     o.logger.With("component", "weather"),
	}, nil
}

type currentResponse struct {
	Current struct {
		TempC float64 `json:"temp_c"`
	} `json:"current"`
}

type forecastResponse struct {
	Forecast struct {
		ForecastDay []struct {
			Hour []struct {
				Time  string  `json:"time"`
				TempC float64 `json:"temp_c"`
			} `json:"hour"`
		} `json:"forecastday"`
	} `json:"forecast"`
}

// Current fetches the current temperature
func (s *RemoteTemperatureSource) Current(ctx context.Context) (float64, bool) {
	var resp currentResponse
	if err := s.get(ctx, "current.json", nil, &resp); err != nil {
		s.log.Warn("error fetching weather data", "error", err)
		return 0, false
	}
	return resp.Current.TempC, true
}

// Forecast fetches the hourly forecast for the first forecast day
func (s *RemoteTemperatureSource) Forecast(ctx context.Context, hours int) []domain.ForecastPoint {
	params := url.Values{}
	params.Set("hours", strconv.Itoa(hours))

	var resp forecastResponse
	if err := s.get(ctx, "forecast.json", params, &resp); err != nil {
		s.log.Warn("error fetching forecast data", "error", err)
		return []domain.ForecastPoint{}
	}
	if len(resp.Forecast.ForecastDay) == 0 {
		return []domain.ForecastPoint{}
	}

	hourly := resp.Forecast.ForecastDay[0].Hour
	points := make([]domain.ForecastPoint, 0, len(hourly))
	for _, h := range hourly {
		ts, err := time.ParseInLocation(forecastTimeLayout, h.Time, time.Local)
		if err != nil {
			s.log.Warn("skipping forecast hour with bad time", "time", h.Time, "error", err)
			continue
		}
		points = append(points, domain.ForecastPoint{Timestamp: ts, Temperature: h.TempC})
	}
	return points
}

func (s *RemoteTemperatureSource) get(ctx context.Context, endpoint string, params url.Values, out any) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("weather: rate limit wait canceled: %w", err)
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("key", s.cfg.APIKey)
	params.Set("q", fmt.Sprintf("%.4f,%.4f", s.cfg.Latitude, s.cfg.Longitude))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.BaseURL+"/"+endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("weather: failed to create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("weather: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("weather: API returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("weather: failed to decode response: %w", err)
	}
	return nil
}

// FallbackTemperatureSource consults primary first and falls back when it reports absence
type FallbackTemperatureSource struct {
	primary  domain.TemperatureSource
	fallback domain.TemperatureSource
	log      *slog.Logger
}

// NewFallbackTemperatureSource chains two temperature sources
func NewFallbackTemperatureSource(primary, fallback domain.TemperatureSource, opts ...Option) *FallbackTemperatureSource {
	o := buildOptions(opts)
	return &FallbackTemperatureSource{
		primary:  primary,
		fallback: fallback,
		log:      o.logger,
	}
}

// Current returns the primary temperature or the fallback's when absent
func (s *FallbackTemperatureSource) Current(ctx context.Context) (float64, bool) {
	if temp, ok := s.primary.Current(ctx); ok {
		return temp, true
	}
	s.log.Debug("current temperature unavailable, using fallback")
	return s.fallback.Current(ctx)
}

// Forecast returns the primary forecast or the fallback's when empty
func (s *FallbackTemperatureSource) Forecast(ctx context.Context, hours int) []domain.ForecastPoint {
	if points := s.primary.Forecast(ctx, hours); len(points) > 0 {
		return points
	}
	s.log.Debug("temperature forecast unavailable, using fallback", "hours", hours)
	return s.fallback.Forecast(ctx, hours)
}

// withSyntheticFallback guarantees a source that never reports absence:
// a nil source becomes a synthetic generator and anything that may be
// absent is chained in front of one.
func withSyntheticFallback(temps domain.TemperatureSource, opts ...Option) domain.TemperatureSource {
	switch temps.(type) {
	case *SyntheticTemperatureSource, *FallbackTemperatureSource:
		return temps
	case nil:
		return NewSyntheticTemperatureSource(DefaultTemperatureConfig(), opts...)
	default:
		return NewFallbackTemperatureSource(temps,
			NewSyntheticTemperatureSource(DefaultTemperatureConfig(), opts...), opts...)
	}
}

var (
	_ domain.TemperatureSource = (*RemoteTemperatureSource)(nil)
	_ domain.TemperatureSource = (*FallbackTemperatureSource)(nil)
)
