package service_test

import (
	"context"
	"sync"
	"time"

	"github.com/smartcity/trafficflow/internal/domain"
)

// fakeClock is a settable wall clock
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(t time.Time) *fakeClock {
	return &fakeClock{now: t}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// stubTemperatures returns fixed values and records forecast requests
type stubTemperatures struct {
	mu            sync.Mutex
	current       float64
	available     bool
	forecast      []domain.ForecastPoint
	forecastHours []int
}

func (s *stubTemperatures) Current(ctx context.Context) (float64, bool) {
	return s.current, s.available
}

func (s *stubTemperatures) Forecast(ctx context.Context, hours int) []domain.ForecastPoint {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.forecastHours = append(s.forecastHours, hours)
	return s.forecast
}

func (s *stubTemperatures) requestedHours() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int(nil), s.forecastHours...)
}

// Monday 2024-01-01
var monday = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

func at(day, hour, minute int) time.Time {
	return monday.AddDate(0, 0, day).Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}
