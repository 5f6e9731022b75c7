package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/smartcity/trafficflow/internal/domain"
	"github.com/smartcity/trafficflow/internal/service"
)

// Handler contains all HTTP handlers
type Handler struct {
	dashboardSvc *service.DashboardService
}

// NewHandler creates a new handler
func NewHandler(dashboardSvc *service.DashboardService) *Handler {
	return &Handler{
		dashboardSvc: dashboardSvc,
	}
}

// HealthCheck returns service health status
func (h *Handler) HealthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":       "ok",
		"service":      "trafficflow",
		"version":      "1.0.0",
		"observations": h.dashboardSvc.Forecaster().Len(),
	})
}

// GetDashboard returns metrics, history, predictions and insights
func (h *Handler) GetDashboard(c *fiber.Ctx) error {
	threshold := thresholdParam(c, h.dashboardSvc.Config().Threshold)

	snap := h.dashboardSvc.Snapshot(c.Context(), threshold)

	return c.JSON(fiber.Map{
		"success": true,
		"data":    snap,
	})
}

// Tick advances the dashboard by one sample
func (h *Handler) Tick(c *fiber.Ctx) error {
	result := h.dashboardSvc.Tick(c.Context())

	return c.JSON(fiber.Map{
		"success": true,
		"data":    result,
	})
}

// GetPredictions returns the per-minute traffic forecast
func (h *Handler) GetPredictions(c *fiber.Ctx) error {
	minutes := c.QueryInt("minutes", service.DefaultHorizonMinutes)
	if minutes < 1 || minutes > 180 {
		minutes = service.DefaultHorizonMinutes
	}

	set := h.dashboardSvc.Forecaster().PredictNext(c.Context(), minutes)

	resp := fiber.Map{
		"success": true,
		"data":    set.Points(),
		"count":   set.Len(),
	}
	if set.Empty() {
		resp["message"] = "not enough history yet"
	}
	return c.JSON(resp)
}

// GetCongestion reports whether congestion is predicted in the next minutes
func (h *Handler) GetCongestion(c *fiber.Ctx) error {
	threshold := thresholdParam(c, h.dashboardSvc.Config().Threshold)

	congested := h.dashboardSvc.Forecaster().CheckCongestion(c.Context(), threshold)

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"congested":       congested,
			"threshold":       threshold,
			"horizon_minutes": service.CongestionHorizonMinutes,
		},
	})
}

// GetTemperature returns the current temperature
func (h *Handler) GetTemperature(c *fiber.Ctx) error {
	temp, ok := h.dashboardSvc.Temperatures().Current(c.Context())

	return c.JSON(fiber.Map{
		"success": true,
		"data": domain.TemperatureReading{
			Temperature: temp,
			Available:   ok,
			Timestamp:   h.dashboardSvc.Now(),
		},
	})
}

// GetTemperatureForecast returns the hourly temperature forecast
func (h *Handler) GetTemperatureForecast(c *fiber.Ctx) error {
	hours := c.QueryInt("hours", 3)
	if hours < 1 || hours > 48 {
		hours = 3
	}

	points := h.dashboardSvc.Temperatures().Forecast(c.Context(), hours)

	return c.JSON(fiber.Map{
		"success": true,
		"data":    points,
		"count":   len(points),
	})
}

// GetLocations returns the area map monitor points
func (h *Handler) GetLocations(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success": true,
		"data":    h.dashboardSvc.Locations(),
		"center": fiber.Map{
			"lat": domain.HitechCityLat,
			"lon": domain.HitechCityLon,
		},
	})
}

func thresholdParam(c *fiber.Ctx, fallback float64) float64 {
	threshold := c.QueryFloat("threshold", fallback)
	if threshold < 50 || threshold > 300 {
		return fallback
	}
	return threshold
}
