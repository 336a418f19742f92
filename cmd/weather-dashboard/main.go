package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/i474232898/weather-dashboard/internal/api/http"
	"github.com/i474232898/weather-dashboard/internal/config"
	"github.com/i474232898/weather-dashboard/internal/controller"
	"github.com/i474232898/weather-dashboard/internal/gateway"
	"github.com/i474232898/weather-dashboard/internal/history"
	"github.com/i474232898/weather-dashboard/internal/logging"
	"github.com/i474232898/weather-dashboard/internal/render"
	"github.com/i474232898/weather-dashboard/internal/scheduler"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

const appName = "weather-dashboard"

func main() {
	// Load configuration.
	cfg, loadedEnv, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	sugar, err := logging.New(cfg.LogLevel, cfg.DevMode)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = sugar.Sync() }()

	if !loadedEnv {
		sugar.Infow("no .env file loaded; using process environment")
	}

	// Shared HTTP client for outbound proxy calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// Proxy client with resilience (circuit breaker, optional retries and rate limit).
	client := gateway.NewClient(httpClient, cfg.BackendBaseURL, gateway.Options{
		MaxRetries:    cfg.GatewayMaxRetries,
		RetryInterval: cfg.GatewayRetryInterval,
		RateLimit:     cfg.GatewayRateLimit,
		RateBurst:     cfg.GatewayRateBurst,
	}, sugar.Named("gateway"))

	normalizer, err := weather.NewNormalizer(cfg.ForecastDays, cfg.ForecastDayPolicy)
	if err != nil {
		sugar.Fatalw("invalid forecast settings", "error", err)
	}

	renderOpts := render.Options{IconBaseURL: cfg.IconBaseURL}
	doc := render.NewDocument("Weather Dashboard", "")
	ctrl := controller.New(client, history.NewAdapter(client, sugar.Named("history")), normalizer, doc, renderOpts, sugar.Named("controller"))

	initCtx, cancelInit := context.WithTimeout(context.Background(), cfg.HTTPTimeout)
	if err := ctrl.Init(initCtx); err != nil {
		sugar.Warnw("initial history load failed", "error", err)
	}
	cancelInit()

	// Scheduler that periodically resyncs the history region.
	sched := scheduler.New(ctrl, cfg.HistoryResyncInterval, cfg.HTTPTimeout, sugar.Named("scheduler"))
	if err := sched.Start(); err != nil {
		sugar.Fatalw("failed to start scheduler", "error", err)
	}
	defer sched.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               appName,
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          cfg.HTTPTimeout + 5*time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": appName,
		})
	})

	// Dashboard routes.
	httpapi.RegisterRoutes(app, ctrl)

	go func() {
		sugar.Infow("dashboard listening", "port", cfg.Port, "backend", cfg.BackendBaseURL, "policy", string(normalizer.Policy()))
		if err := app.Listen(":" + cfg.Port); err != nil {
			sugar.Errorw("fiber server stopped", "error", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		sugar.Errorw("error during shutdown", "error", err)
	}
}
