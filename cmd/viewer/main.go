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
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/samirrijal/isstrack/internal/adapters/http"
	temporaladapter "github.com/samirrijal/isstrack/internal/adapters/temporal"
	"github.com/samirrijal/isstrack/internal/adapters/trackerapi"
	"github.com/samirrijal/isstrack/internal/core/domain"
	"github.com/samirrijal/isstrack/internal/core/ports"
	"github.com/samirrijal/isstrack/internal/core/usecases"
	"github.com/samirrijal/isstrack/internal/pkg/config"
	"github.com/samirrijal/isstrack/internal/pkg/logging"
	"github.com/samirrijal/isstrack/internal/pkg/telemetry"
)

var version = "dev"

func main() {
	cfg, err := config.Load("isstrack-viewer")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logging.Setup("isstrack-viewer", cfg.Log.Level, cfg.Log.Format)

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

	// Segment archival (optional)
	var archiver ports.SegmentArchiver
	if cfg.Temporal.Enabled {
		tc, err := temporaladapter.Dial(cfg.Temporal.HostPort, cfg.Temporal.Namespace)
		if err != nil {
			slog.Warn("temporal unavailable, segments will not be archived", "error", err)
		} else {
			defer tc.Close()
			archiver = temporaladapter.NewArchiver(tc, cfg.Temporal.TaskQueue)
		}
	}

	client := trackerapi.New(cfg.Viewer.APIURL, time.Duration(cfg.Viewer.Timeout)*time.Second)
	viewer := usecases.NewViewerService(client, archiver, usecases.ViewerOptions{
		PollInterval:    cfg.Viewer.PollEvery(),
		MaxPathSegments: cfg.Viewer.MaxPathSegments,
		RetryThreshold:  cfg.Viewer.RetryThreshold,
		Center:          domain.GeoPoint{Lat: cfg.Viewer.CenterLat, Lon: cfg.Viewer.CenterLon},
		Zoom:            cfg.Viewer.Zoom,
		StreetTiles:     cfg.Viewer.StreetTiles,
		TerrainTiles:    cfg.Viewer.TerrainTiles,
	})

	go viewer.Run(ctx)

	app := http.NewApp("ISS Trail Viewer",
		time.Duration(cfg.Server.ReadTimeout)*time.Second,
		time.Duration(cfg.Server.WriteTimeout)*time.Second,
	)
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept",
		MaxAge:       3600,
	}))

	http.SetupViewerRoutes(app, &http.Dependencies{Viewer: viewer, Version: version})

	go func() {
		addr := fmt.Sprintf(":%d", cfg.Viewer.Port)
		slog.Info("viewer starting",
			"addr", addr,
			"api_url", cfg.Viewer.APIURL,
			"poll_interval", cfg.Viewer.PollEvery().String(),
			"max_path_segments", cfg.Viewer.MaxPathSegments,
		)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received", "signal", sig.String())
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("viewer stopped")
}
