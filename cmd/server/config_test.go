package main

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "GO_ENV", "LOG_LEVEL", "WEATHER_API_KEY", "WEATHER_RPS",
		"WINDOW_SIZE", "BASE_FLOW", "TRAFFIC_VARIANCE", "REFRESH_INTERVAL", "LOOKBACK_WINDOW", "CONGESTION_THRESHOLD"} {
		t.Setenv(key, "")
	}

	cfg := loadConfig()
	require.Equal(t, "8080", cfg.Port)
	require.Equal(t, "development", cfg.Env)
	require.Equal(t, slog.LevelInfo, cfg.LogLevel)
	require.Empty(t, cfg.WeatherAPIKey)
	require.Equal(t, 30, cfg.WindowSize)
	require.Equal(t, 100.0, cfg.BaseFlow)
	require.Equal(t, 20.0, cfg.TrafficVariance)
	require.Equal(t, 5*time.Second, cfg.RefreshInterval)
	require.Equal(t, 30*time.Minute, cfg.LookbackWindow)
	require.Equal(t, 150.0, cfg.CongestionThreshold)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("WINDOW_SIZE", "45")
	t.Setenv("BASE_FLOW", "80.5")
	t.Setenv("REFRESH_INTERVAL", "2s")
	t.Setenv("CONGESTION_THRESHOLD", "not-a-number")

	cfg := loadConfig()
	require.Equal(t, "9090", cfg.Port)
	require.Equal(t, slog.LevelDebug, cfg.LogLevel)
	require.Equal(t, 45, cfg.WindowSize)
	require.Equal(t, 80.5, cfg.BaseFlow)
	require.Equal(t, 2*time.Second, cfg.RefreshInterval)
	require.Equal(t, 150.0, cfg.CongestionThreshold)
}
