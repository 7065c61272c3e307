package main

import (
	"context"

	"github.com/fanspark/discovery/internal/app"
	"github.com/fanspark/discovery/internal/cache"
	"github.com/fanspark/discovery/internal/config"
	"github.com/fanspark/discovery/internal/db"
	"github.com/fanspark/discovery/internal/logger"
	"github.com/fanspark/discovery/internal/server"
	"github.com/fanspark/discovery/internal/service/admirers"
	"github.com/fanspark/discovery/internal/service/discovery"
)

func main() {
	cfg := config.New()

	// Init logger (global singleton)
	logger.InitFromConfig(cfg)
	log := logger.L() // slog.Logger pointer

	// Init DB
	database, err := db.NewDB(cfg)
	if err != nil {
		log.Error("failed to init db", "err", err)
		return
	}

	// Tier limit configuration must exist before any session starts.
	if err := db.SeedTierLimits(database); err != nil {
		log.Error("failed to seed tier limits", "err", err)
		return
	}

	// Init Redis
	redisCache := cache.NewRedisCache(cfg)
	if err := redisCache.Ping(context.Background()); err != nil {
		log.Error("failed to connect to redis", "err", err)
		return
	}

	// Inject logger into app context
	appCtx := app.New(database, redisCache, log)

	registrars := []server.Registrar{
		discovery.NewRegistrar(appCtx, cfg),
		admirers.NewRegistrar(appCtx),
	}

	addr := cfg.HTTP.Host + ":" + cfg.HTTP.Port
	log.Info("starting HTTP server", "addr", addr)

	if err := server.StartHTTPServer(cfg, registrars...); err != nil {
		log.Error("failed to start HTTP server", "err", err)
	}
}
