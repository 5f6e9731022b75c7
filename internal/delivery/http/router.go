package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/smartcity/trafficflow/internal/service"
)

// SetupRoutes configures all HTTP routes
func SetupRoutes(app *fiber.App, dashboardSvc *service.DashboardService) {
	handler := NewHandler(dashboardSvc)

	// Health check
	app.Get("/health", handler.HealthCheck)

	// API v1 routes
	api := app.Group("/api/v1")
	{
		api.Get("/dashboard", handler.GetDashboard)
		api.Post("/tick", handler.Tick)

		api.Get("/traffic/predictions", handler.GetPredictions)
		api.Get("/traffic/congestion", handler.GetCongestion)

		api.Get("/temperature", handler.GetTemperature)
		api.Get("/temperature/forecast", handler.GetTemperatureForecast)

		api.Get("/locations", handler.GetLocations)
	}
}
