package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/qolzam/telar/apps/social/internal/cache"
	"github.com/qolzam/telar/apps/social/internal/events"
	"github.com/qolzam/telar/apps/social/internal/pkg/log"
	platform "github.com/qolzam/telar/apps/social/internal/platform"
	platformconfig "github.com/qolzam/telar/apps/social/internal/platform/config"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := platformconfig.LoadFromEnv()
	if err != nil {
		log.Error("Failed to load platform config: %v", err)
		os.Exit(1)
	}
	log.SetDebug(cfg.Server.Debug)

	ctx := context.Background()
	baseService, err := platform.NewBaseService(ctx, cfg)
	if err != nil {
		log.Error("Failed to create base service: %v", err)
		os.Exit(1)
	}
	defer baseService.Close()
	log.Info("Document store ready (%s)", cfg.Database.Type)

	cacheService, err := cache.NewCacheService(cache.FromPlatformConfig(cfg.Cache))
	if err != nil {
		log.Warn("Cache disabled: %v", err)
	}
	defer cacheService.Close()

	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.NATS.Enabled {
		natsPublisher, err := events.NewNATSPublisher(cfg.NATS.URL, cfg.NATS.Subject)
		if err != nil {
			log.Warn("NATS unavailable, events will be dropped: %v", err)
		} else {
			publisher = natsPublisher
			log.Info("Publishing events to %s", cfg.NATS.URL)
		}
	}
	defer publisher.Close()

	app := newApp(dependencies{
		config:    cfg,
		base:      baseService,
		cache:     cacheService,
		publisher: publisher,
	})

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Info("Shutting down social API")
		if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			log.Error("Shutdown failed: %v", err)
		}
	}()

	log.Info("Starting social API on %s", cfg.Server.Addr())
	if err := app.Listen(cfg.Server.Addr()); err != nil {
		log.Error("Server stopped: %v", err)
	}
}
