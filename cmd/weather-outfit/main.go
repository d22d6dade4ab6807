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
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"

	httpapi "github.com/i474232898/weather-outfit/internal/api/http"
	"github.com/i474232898/weather-outfit/internal/app"
	"github.com/i474232898/weather-outfit/internal/config"
	"github.com/i474232898/weather-outfit/internal/geo"
	"github.com/i474232898/weather-outfit/internal/grid"
	"github.com/i474232898/weather-outfit/internal/scheduler"
	"github.com/i474232898/weather-outfit/internal/store"
	"github.com/i474232898/weather-outfit/internal/weather"
	"github.com/i474232898/weather-outfit/internal/weather/providers"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	tz := cfg.Location()

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// Saved options and location: sqlite when a path is configured.
	var prefs store.PreferenceStore = store.NewMemoryStore()
	if cfg.PreferencesDBPath != "" {
		sqliteStore, err := store.NewSQLiteStore(cfg.PreferencesDBPath)
		if err != nil {
			log.Printf("ERROR: preferences db unavailable, keeping preferences in memory: %v", err)
		} else {
			prefs = sqliteStore
		}
	}
	defer prefs.Close()

	// Providers are single-shot; an unset key fails fast and falls through.
	regional := providers.NewKMAProvider(httpClient, cfg.KMAAPIKey, cfg.KMABaseURL, tz)
	global := providers.NewOpenWeatherProvider(httpClient, cfg.OpenWeatherAPIKey, cfg.OpenWeatherBaseURL)
	service := weather.NewService(regional, global, grid.InRegionalCoverage, tz)

	locator := geo.NewLocator(httpClient, cfg.IPLookupURL, geo.NewGeocoder(cfg.GeocoderAPIKey), cfg.DefaultLocation)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	session := app.NewSession(ctx, service, locator, prefs)

	// Background refresh of the remembered location.
	sched := scheduler.New(session, cfg.RefreshInterval, 3*cfg.HTTPTimeout, tz)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	// Basic app configuration
	fiberApp := fiber.New(fiber.Config{
		AppName:               "weather-outfit",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		// A load may wait on both providers in turn.
		WriteTimeout: 3 * cfg.HTTPTimeout,
		ErrorHandler: httpapi.ErrorHandler,
	})

	// Global middleware
	fiberApp.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	fiberApp.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
	}))
	fiberApp.Use(recover.New())

	// Basic health endpoint
	fiberApp.Get("/health", func(c *fiber.Ctx) error {
		state, source := service.Status()
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "weather-outfit",
			"weather": fiber.Map{"state": state, "source": source},
		})
	})

	// API routes.
	httpapi.RegisterRoutes(fiberApp, session)

	go func() {
		if err := fiberApp.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()
	log.Printf("INFO: listening on :%s", cfg.Port)

	// Wait for termination signal
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := fiberApp.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}
