package main

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds process configuration read from the environment
type Config struct {
	Port                string
	Env                 string
	LogLevel            slog.Level
	WeatherAPIKey       string
	WeatherRPS          float64
	WindowSize          int
	BaseFlow            float64
	TrafficVariance     float64
	RefreshInterval     time.Duration
	LookbackWindow      time.Duration
	CongestionThreshold float64
}

func loadConfig() *Config {
	return &Config{
		Port:                getEnv("PORT", "8080"),
		Env:                 getEnv("GO_ENV", "development"),
		LogLevel:            parseLevel(getEnv("LOG_LEVEL", "info")),
		WeatherAPIKey:       getEnv("WEATHER_API_KEY", ""),
		WeatherRPS:          getEnvFloat("WEATHER_RPS", 0.5),
		WindowSize:          getEnvInt("WINDOW_SIZE", 30),
		BaseFlow:            getEnvFloat("BASE_FLOW", 100),
		TrafficVariance:     getEnvFloat("TRAFFIC_VARIANCE", 20),
		RefreshInterval:     getEnvDuration("REFRESH_INTERVAL", 5*time.Second),
		LookbackWindow:      getEnvDuration("LOOKBACK_WINDOW", 30*time.Minute),
		CongestionThreshold: getEnvFloat("CONGESTION_THRESHOLD", 150),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(getEnv(key, ""))
	if err != nil || value <= 0 {
		return defaultValue
	}
	return value
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value, err := strconv.ParseFloat(getEnv(key, ""), 64)
	if err != nil || value <= 0 {
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(getEnv(key, ""))
	if err != nil || value <= 0 {
		return defaultValue
	}
	return value
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
