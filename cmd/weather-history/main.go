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

	httpapi "github.com/wxlookback/weather-history/internal/api/http"
	"github.com/wxlookback/weather-history/internal/cache"
	"github.com/wxlookback/weather-history/internal/config"
	"github.com/wxlookback/weather-history/internal/geocode"
	"github.com/wxlookback/weather-history/internal/history"
	"github.com/wxlookback/weather-history/internal/scheduler"
	"github.com/wxlookback/weather-history/internal/source/ncei"
	"github.com/wxlookback/weather-history/internal/source/sqlite"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Observation source: bulk-loaded SQLite or the remote NCEI archive.
	var source history.Source
	switch cfg.DataSource {
	case config.SourceSQLite:
		store, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			log.Fatalf("failed to open sqlite source: %v", err)
		}
		defer store.Close()
		source = store
	case config.SourceNCEI:
		httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
		source = ncei.NewClient(httpClient, cfg.NCEIToken, cfg.NCEIBaseURL, cfg.NCEIMaxConcurrent)
	}

	// Station selections are memoized per rounded coordinate.
	memo := cache.NewTTL()

	selectorCfg := history.DefaultSelectorConfig()
	selectorCfg.RecencyWindow = cfg.RecencyWindow
	selectorCfg.CandidateLimit = cfg.CandidateLimit
	selectorCfg.CacheTTL = cfg.StationCacheTTL
	selector := history.NewSelector(source, memo, selectorCfg)

	assemblerCfg := history.AssemblerConfig{
		MaxInFlight:  cfg.MaxInFlight,
		FetchTimeout: cfg.FetchTimeout,
	}
	assembler := history.NewAssembler(source, assemblerCfg)

	// Postal-code lookups need a geocoder key; without one the coordinate
	// endpoint still works.
	var geocoder geocode.Geocoder
	if cfg.GeocoderAPIKey != "" {
		geocoder = geocode.NewGoogleGeocoder(cfg.GeocoderAPIKey)
	} else {
		log.Println("INFO: GEOCODER_API_KEY not set; postal-code lookups disabled")
	}

	service := history.NewService(selector, assembler, geocoder)

	// Background sweep of expired selection memo entries.
	sched := scheduler.New(memo, cfg.CacheSweepInterval)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "weather-history",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          30 * time.Second,
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
			"service": "weather-history",
		})
	})

	// API routes.
	httpapi.RegisterRoutes(app, service)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}
