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

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/imanolz/gravelpass/internal/adapters/gpx"
	"github.com/imanolz/gravelpass/internal/adapters/http"
	"github.com/imanolz/gravelpass/internal/adapters/identifier"
	natsadapter "github.com/imanolz/gravelpass/internal/adapters/nats"
	"github.com/imanolz/gravelpass/internal/adapters/postgres"
	"github.com/imanolz/gravelpass/internal/adapters/storage"
	"github.com/imanolz/gravelpass/internal/adapters/valkey"
	"github.com/imanolz/gravelpass/internal/core/usecases"
	"github.com/imanolz/gravelpass/internal/pkg/config"
	"github.com/imanolz/gravelpass/internal/pkg/logging"
	"github.com/imanolz/gravelpass/internal/pkg/metrics"
	"github.com/imanolz/gravelpass/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("gravelpass-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logging.Setup(logLevel, "json")

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

	// Database
	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Publish pool gauges every 15s
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				metrics.UpdateDBPoolMetrics(db.Pool.Stat())
			case <-ctx.Done():
				return
			}
		}
	}()

	// Blob storage for raw uploads
	blobs, err := storage.NewLocal(cfg.Storage.Root)
	if err != nil {
		log.Fatalf("blob storage: %v", err)
	}

	// Cache
	cache, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		slog.Warn("valkey unavailable", "error", err)
	} else {
		defer cache.Close()
	}

	// NATS
	nc, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable", "error", err)
	} else {
		defer nc.Close()
	}

	// Raw NATS connection for WebSocket relay
	natsConn, err := natsadapter.RawConn(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats ws conn unavailable", "error", err)
	}

	// Repos
	trackRepo := postgres.NewTrackRepo(db)
	segmentRepo := postgres.NewSegmentRepo(db)
	routeRepo := postgres.NewRouteRepo(db)

	// Use cases
	ids := identifier.New()
	parser := gpx.NewParser()
	trackSvc := usecases.NewTrackService(trackRepo, parser, blobs, cache, ids, nc)
	segmentSvc := usecases.NewSegmentService(segmentRepo, trackRepo, cache, ids, nc)
	routeSvc := usecases.NewRouteService(routeRepo, segmentRepo, ids, nc)

	deps := &http.Dependencies{
		Tracks:   trackSvc,
		Segments: segmentSvc,
		Routes:   routeSvc,
		NATS:     natsConn,
		DB:       db,
		Cache:    cache,
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.MaxUploadMB * 1024 * 1024,
		AppName:      "GravelPass API",
	})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000, http://localhost:5173, https://*.gravelpass.cc",
		AllowMethods:     "GET,POST,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	// Give in-flight requests up to 10s to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
