package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"golang.org/x/sync/errgroup"

	"github.com/smartcity/trafficflow/internal/delivery/http"
	"github.com/smartcity/trafficflow/internal/domain"
	"github.com/smartcity/trafficflow/internal/service"
)

func main() {
	// Load environment variables
	envErr := godotenv.Load()

	cfg := loadConfig()

	log := slog.New(tint.NewHandler(os.Stdout, &tint.Options{
		Level:      cfg.LogLevel,
		TimeFormat: time.Kitchen,
	}))
	slog.SetDefault(log)

	if envErr != nil {
		log.Info("no .env file found, using system environment")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Temperature source: live weather when a key is configured, synthetic otherwise
	synthetic := service.NewSyntheticTemperatureSource(service.DefaultTemperatureConfig())
	var temps domain.TemperatureSource = synthetic
	remote, err := service.NewRemoteTemperatureSource(service.RemoteConfig{
		APIKey: cfg.WeatherAPIKey,
		RPS:    cfg.WeatherRPS,
	}, service.WithLogger(log))
	switch {
	case errors.Is(err, service.ErrMissingAPIKey):
		log.Warn("weather API key not set, using synthetic temperatures")
	case err != nil:
		log.Error("failed to create weather client", "error", err)
		os.Exit(1)
	default:
		temps = service.NewFallbackTemperatureSource(remote, synthetic, service.WithLogger(log))
		log.Info("using live weather with synthetic fallback")
	}

	// Dependency Injection: Services
	trafficCfg := service.DefaultTrafficConfig()
	trafficCfg.BaseFlow = cfg.BaseFlow
	trafficCfg.Variance = cfg.TrafficVariance
	generator := service.NewTrafficGenerator(trafficCfg)
	forecaster := service.NewTrafficForecaster(cfg.WindowSize, temps, service.WithLogger(log))

	dashCfg := service.DefaultDashboardConfig()
	dashCfg.LookbackWindow = cfg.LookbackWindow
	dashCfg.Threshold = cfg.CongestionThreshold
	dashboardSvc := service.NewDashboardService(ctx, generator, forecaster, temps, dashCfg, service.WithLogger(log))

	// Fiber App
	app := fiber.New(fiber.Config{
		AppName:               "Traffic Flow Analytics v1.0",
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler:          customErrorHandler,
		DisableStartupMessage: cfg.Env == "production",
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${method} ${path} (${latency})\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	// Routes
	http.SetupRoutes(app, dashboardSvc)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server starting", "port", cfg.Port)
		return app.Listen(":" + cfg.Port)
	})
	g.Go(func() error {
		return dashboardSvc.Run(gctx, cfg.RefreshInterval)
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server...")
		return app.ShutdownWithTimeout(5 * time.Second)
	})

	if err := g.Wait(); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
	log.Info("server exited gracefully")
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
