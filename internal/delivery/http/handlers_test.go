package http_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	deliveryhttp "github.com/smartcity/trafficflow/internal/delivery/http"
	"github.com/smartcity/trafficflow/internal/service"
)

var testNow = time.Date(2024, time.January, 1, 13, 0, 0, 0, time.UTC)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Count   *int            `json:"count"`
	Message string          `json:"message"`
}

func newTestApp(t *testing.T, seedPoints int) *fiber.App {
	t.Helper()
	clock := func() time.Time { return testNow }

	tempCfg := service.DefaultTemperatureConfig()
	tempCfg.NoiseStdDev = 0
	temps := service.NewSyntheticTemperatureSource(tempCfg, service.WithClock(clock))

	trafficCfg := service.DefaultTrafficConfig()
	trafficCfg.Variance = 0
	gen := service.NewTrafficGenerator(trafficCfg, service.WithClock(clock))
	forecaster := service.NewTrafficForecaster(service.DefaultWindowSize, temps)

	dashCfg := service.DefaultDashboardConfig()
	dashCfg.SeedPoints = seedPoints
	dash := service.NewDashboardService(context.Background(), gen, forecaster, temps, dashCfg, service.WithClock(clock))

	app := fiber.New()
	deliveryhttp.SetupRoutes(app, dash)
	return app
}

func do(t *testing.T, app *fiber.App, method, target string) envelope {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(method, target, nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var env envelope
	require.NoError(t, json.Unmarshal(body, &env))
	return env
}

func TestHealthCheck(t *testing.T) {
	app := newTestApp(t, 5)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, "ok", body["status"])
	require.EqualValues(t, 5, body["observations"])
}

func TestGetPredictions(t *testing.T) {
	app := newTestApp(t, 5)

	env := do(t, app, http.MethodGet, "/api/v1/traffic/predictions?minutes=3")
	require.True(t, env.Success)
	require.NotNil(t, env.Count)
	require.Equal(t, 3, *env.Count)

	var points []map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &points))
	require.Len(t, points, 3)
	require.Contains(t, points[0], "predicted_count")

	// out of range falls back to the default horizon
	env = do(t, app, http.MethodGet, "/api/v1/traffic/predictions?minutes=0")
	require.Equal(t, service.DefaultHorizonMinutes, *env.Count)
}

func TestGetPredictionsNotEnoughHistory(t *testing.T) {
	app := newTestApp(t, 2)

	env := do(t, app, http.MethodGet, "/api/v1/traffic/predictions")
	require.True(t, env.Success)
	require.Equal(t, 0, *env.Count)
	require.Equal(t, "not enough history yet", env.Message)
}

func TestTickThenDashboard(t *testing.T) {
	app := newTestApp(t, 5)

	env := do(t, app, http.MethodPost, "/api/v1/tick")
	var tick map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &tick))
	require.Contains(t, tick, "count")

	env = do(t, app, http.MethodGet, "/api/v1/dashboard?threshold=120")
	var snap struct {
		History     []map[string]any `json:"history"`
		Predictions []map[string]any `json:"predictions"`
		Threshold   float64          `json:"threshold"`
		Status      string           `json:"status"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &snap))
	require.Len(t, snap.History, 6)
	require.Len(t, snap.Predictions, service.DefaultHorizonMinutes)
	require.Equal(t, 120.0, snap.Threshold)
	require.Equal(t, "Normal Flow", snap.Status)
}

func TestGetCongestion(t *testing.T) {
	app := newTestApp(t, 5)

	env := do(t, app, http.MethodGet, "/api/v1/traffic/congestion?threshold=60")
	var data struct {
		Congested bool    `json:"congested"`
		Threshold float64 `json:"threshold"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.True(t, data.Congested)
	require.Equal(t, 60.0, data.Threshold)

	env = do(t, app, http.MethodGet, "/api/v1/traffic/congestion?threshold=9000")
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.False(t, data.Congested)
	require.Equal(t, service.DefaultCongestionThreshold, data.Threshold)
}

func TestTemperatureEndpoints(t *testing.T) {
	app := newTestApp(t, 5)

	env := do(t, app, http.MethodGet, "/api/v1/temperature")
	var reading struct {
		Temperature float64   `json:"temperature"`
		Available   bool      `json:"available"`
		Timestamp   time.Time `json:"timestamp"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &reading))
	require.True(t, reading.Available)
	require.Equal(t, 25.2, reading.Temperature)
	require.True(t, testNow.Equal(reading.Timestamp), "reading stamped with the dashboard clock")

	env = do(t, app, http.MethodGet, "/api/v1/temperature/forecast?hours=4")
	require.Equal(t, 4, *env.Count)
}

func TestGetLocations(t *testing.T) {
	app := newTestApp(t, 5)

	env := do(t, app, http.MethodGet, "/api/v1/locations")
	var locs []map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &locs))
	require.Len(t, locs, 4)
	require.Equal(t, "Hitech City Junction", locs[0]["name"])
}
