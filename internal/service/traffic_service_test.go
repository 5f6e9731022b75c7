package service_test

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/smartcity/trafficflow/internal/service"
)

func TestTrafficMultiplier(t *testing.T) {
	g := service.NewTrafficGenerator(service.DefaultTrafficConfig())

	cases := []struct {
		name string
		ts   time.Time
		want float64
	}{
		{"weekday morning peak", at(0, 9, 0), 2.0},
		{"morning peak end is exclusive", at(0, 11, 0), 1.0},
		{"weekday evening peak", at(0, 19, 59), 2.0},
		{"evening peak end is exclusive", at(0, 20, 0), 1.0},
		{"late night", at(0, 23, 15), 0.7},
		{"early morning", at(0, 5, 59), 0.7},
		{"daytime", at(0, 13, 0), 1.0},
		{"saturday peak", at(5, 8, 0), 1.6},
		{"sunday night", at(6, 2, 0), 0.56},
		{"saturday daytime", at(5, 14, 0), 0.8},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.InDelta(t, tc.want, g.Multiplier(tc.ts), 1e-12)
		})
	}
}

func TestTrafficGenerateWithoutNoise(t *testing.T) {
	cfg := service.DefaultTrafficConfig()
	cfg.Variance = 0
	g := service.NewTrafficGenerator(cfg)

	ts, count := g.Generate(at(0, 0, 0))
	require.Equal(t, at(0, 0, 0), ts)
	require.Equal(t, 70, count)

	// full intraday ripple at 06:00: 100 + 0.2*100
	_, count = g.Generate(at(0, 6, 0))
	require.Equal(t, 120, count)

	// peak: 200 + sin(3π/4)*0.2*200 = 228.28
	_, count = g.Generate(at(0, 9, 0))
	require.Equal(t, 228, count)
}

func TestTrafficGenerateNowUsesClock(t *testing.T) {
	cfg := service.DefaultTrafficConfig()
	cfg.Variance = 0
	clock := newFakeClock(at(0, 6, 0))
	g := service.NewTrafficGenerator(cfg, service.WithClock(clock.Now))

	ts, count := g.GenerateNow()
	require.Equal(t, clock.Now(), ts)
	require.Equal(t, 120, count)
}

func TestTrafficCountNeverNegative(t *testing.T) {
	cfg := service.DefaultTrafficConfig()
	cfg.BaseFlow = 5
	cfg.Variance = 500
	g := service.NewTrafficGenerator(cfg, service.WithRand(rand.NewPCG(1, 2)))

	zeros := 0
	for i := 0; i < 7*24*60; i += 7 {
		_, count := g.Generate(monday.Add(time.Duration(i) * time.Minute))
		require.GreaterOrEqual(t, count, 0)
		if count == 0 {
			zeros++
		}
	}
	require.Positive(t, zeros, "expected some draws to be clamped")
}

func TestTrafficRainAndHeatNotApplied(t *testing.T) {
	cfg := service.DefaultTrafficConfig()
	plain := service.NewTrafficGenerator(cfg)

	cfg.Multipliers.Rain = 10
	cfg.Multipliers.HighTemp = 10
	tweaked := service.NewTrafficGenerator(cfg)

	for h := 0; h < 24; h++ {
		ts := at(2, h, 0)
		require.Equal(t, plain.Multiplier(ts), tweaked.Multiplier(ts))
	}
}

func TestTrafficClampsAtZero(t *testing.T) {
	cfg := service.DefaultTrafficConfig()
	cfg.BaseFlow = -50
	cfg.Variance = 0
	g := service.NewTrafficGenerator(cfg)

	_, count := g.Generate(at(0, 13, 0))
	require.Zero(t, count)
}
