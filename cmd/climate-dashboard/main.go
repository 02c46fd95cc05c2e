package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/lmittmann/tint"

	httpapi "github.com/i474232898/climate-dashboard/internal/api/http"
	"github.com/i474232898/climate-dashboard/internal/climate"
	"github.com/i474232898/climate-dashboard/internal/config"
	"github.com/i474232898/climate-dashboard/internal/controller"
	"github.com/i474232898/climate-dashboard/internal/geo"
	"github.com/i474232898/climate-dashboard/internal/scheduler"
	"github.com/i474232898/climate-dashboard/internal/source"
	"github.com/i474232898/climate-dashboard/internal/views/areachart"
	"github.com/i474232898/climate-dashboard/internal/views/barchart"
	"github.com/i474232898/climate-dashboard/internal/views/globe"
)

const appName = "climate-dashboard"

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	slog.SetDefault(newLogger(cfg))
	slog.Info("starting",
		"app", appName,
		"env", cfg.Env,
		"log_level", cfg.LogLevel.String(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("run failed", "err", err)
		os.Exit(1)
	}
	slog.Info("shutting down")
}

func newLogger(cfg *config.AppConfig) *slog.Logger {
	if cfg.Env == "dev" {
		h := tint.NewHandler(os.Stdout, &tint.Options{
			Level:      cfg.LogLevel,
			AddSource:  true,
			TimeFormat: time.Kitchen,
		})
		return slog.New(h).With("app", appName)
	}
	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	})
	return slog.New(h).With(
		"app", appName,
		"env", cfg.Env,
	)
}

// dataset is everything read from the input files.
type dataset struct {
	index     *climate.Index
	anomalies *climate.AnomalyIndex
	features  []geo.Feature
}

func load(ctx context.Context, cfg *config.AppConfig) (*dataset, error) {
	// Shared HTTP client for URL sources.
	opener := source.NewOpener(&http.Client{Timeout: cfg.HTTPTimeout}, source.DefaultBackoff)

	temps, err := readWith(ctx, opener, cfg.TemperatureSource, climate.ReadTemperatures)
	if err != nil {
		return nil, fmt.Errorf("temperatures: %w", err)
	}
	anomalies, err := readWith(ctx, opener, cfg.AnomalySource, climate.ReadAnomalies)
	if err != nil {
		return nil, fmt.Errorf("anomalies: %w", err)
	}
	raw, err := opener.ReadAll(ctx, cfg.GeometrySource)
	if err != nil {
		return nil, fmt.Errorf("geometry: %w", err)
	}
	features, err := geo.ParseFeatures(raw, geo.DefaultISOProperty)
	if err != nil {
		return nil, fmt.Errorf("geometry: %w", err)
	}

	ds := &dataset{
		index:     climate.BuildIndex(temps),
		anomalies: climate.BuildAnomalyIndex(anomalies),
		features:  features,
	}
	slog.Info("data loaded",
		"records", len(temps),
		"years", len(ds.index.Years()),
		"anomaly_rows", len(anomalies),
		"features", len(features),
	)
	return ds, nil
}

func readWith[T any](ctx context.Context, opener *source.Opener, location string, parse func(r io.Reader) ([]T, error)) ([]T, error) {
	rc, err := opener.Open(ctx, location)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return parse(rc)
}

func run(ctx context.Context, cfg *config.AppConfig) error {
	if err := httpapi.LoadTemplates(); err != nil {
		return fmt.Errorf("load templates: %w", err)
	}

	ds, err := load(ctx, cfg)
	if err != nil {
		return err
	}

	// Autoplay timer driving the controller's year ticks.
	timer := scheduler.New(cfg.TickInterval)
	defer timer.Shutdown()

	views := controller.Views{
		Globe: globe.New(),
		Bars:  barchart.New(),
		Area:  areachart.New(),
	}
	ctl, err := controller.New(ds.index, ds.features, views, timer, controller.Options{
		FirstYear:      cfg.FirstYear,
		LastYear:       cfg.LastYear,
		DefaultCountry: cfg.DefaultCountry,
		Autoplay:       cfg.Autoplay,
	})
	if err != nil {
		return err
	}

	loopDone := make(chan error, 1)
	go func() { loopDone <- ctl.Run(ctx) }()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               appName,
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			var e *fiber.Error
			if errors.As(err, &e) {
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
	app.Use(compress.New())

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": appName,
		})
	})

	httpapi.RegisterRoutes(app, ctl, ds.anomalies)

	go func() {
		slog.Info("listening", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("fiber server stopped", "err", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("error during shutdown", "err", err)
	}
	return <-loopDone
}
