package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/samirrijal/isstrack/internal/adapters/http"
	natsadapter "github.com/samirrijal/isstrack/internal/adapters/nats"
	"github.com/samirrijal/isstrack/internal/adapters/postgres"
	"github.com/samirrijal/isstrack/internal/adapters/upstream"
	"github.com/samirrijal/isstrack/internal/adapters/valkey"
	"github.com/samirrijal/isstrack/internal/core/ports"
	"github.com/samirrijal/isstrack/internal/core/usecases"
	"github.com/samirrijal/isstrack/internal/pkg/config"
	"github.com/samirrijal/isstrack/internal/pkg/logging"
	"github.com/samirrijal/isstrack/internal/pkg/telemetry"
)

var version = "dev"

func main() {
	cfg, err := config.Load("isstrack-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	logging.Setup("isstrack-api", cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Position source
	source, err := newSource(cfg.Tracker)
	if err != nil {
		log.Fatalf("position source: %v", err)
	}

	deps := &http.Dependencies{Version: version}

	// Database (optional)
	var positions ports.PositionRepository
	if cfg.Database.Enabled {
		db, err := postgres.New(ctx, cfg.Database.DSN(), 10)
		if err != nil {
			log.Fatalf("database: %v", err)
		}
		defer db.Close()
		positions = postgres.NewPositionRepo(db)
		deps.DB = db
	}

	// Cache (optional)
	var cache ports.CacheService
	if c, err := valkey.New(cfg.Valkey.Addr); err != nil {
		slog.Warn("valkey unavailable", "error", err)
	} else {
		defer c.Close()
		cache = c
		deps.Cache = c
	}

	// NATS (optional)
	var publisher ports.EventPublisher
	if p, err := natsadapter.NewPublisher(cfg.NATS.URL); err != nil {
		slog.Warn("nats unavailable", "error", err)
	} else {
		defer p.Close()
		publisher = p
		deps.NATS = p.Conn()
	}

	tracker := usecases.NewTrackingService(source, positions, cache, publisher, usecases.TrackingOptions{
		SourceName:   cfg.Tracker.Source,
		MaxPositions: cfg.Tracker.MaxPositions,
		PollInterval: cfg.Tracker.PollEvery(),
	})
	deps.Tracker = tracker

	go tracker.Run(ctx)

	// Fiber
	app := http.NewApp("ISS Tracker API",
		time.Duration(cfg.Server.ReadTimeout)*time.Second,
		time.Duration(cfg.Server.WriteTimeout)*time.Second,
	)
	app.Use(recover.New())
	if cfg.Log.Level == "debug" {
		app.Use(logger.New())
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept",
		MaxAge:       3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting",
			"addr", addr,
			"source", cfg.Tracker.Source,
			"poll_interval", cfg.Tracker.PollEvery().String(),
			"max_positions", cfg.Tracker.MaxPositions,
		)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())
	cancel()

	// Give in-flight requests up to 10s to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}

func newSource(cfg config.TrackerConfig) (ports.PositionSource, error) {
	switch cfg.Source {
	case "sgp4":
		src, err := upstream.NewSGP4(cfg.TLELine1, cfg.TLELine2)
		if err != nil {
			return nil, err
		}
		return src, nil
	default:
		return upstream.NewOpenNotify(cfg.UpstreamURL, cfg.TimeoutAfter()), nil
	}
}
