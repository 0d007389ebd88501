package main

import (
	"context"

	"github.com/oggyb/tennis-connect/internal/app"
	"github.com/oggyb/tennis-connect/internal/cache"
	"github.com/oggyb/tennis-connect/internal/config"
	"github.com/oggyb/tennis-connect/internal/db"
	"github.com/oggyb/tennis-connect/internal/discovery"
	"github.com/oggyb/tennis-connect/internal/identity"
	"github.com/oggyb/tennis-connect/internal/logger"
	"github.com/oggyb/tennis-connect/internal/remote"
	"github.com/oggyb/tennis-connect/internal/server"
	"github.com/oggyb/tennis-connect/internal/service/notifications"
	"github.com/oggyb/tennis-connect/internal/service/players"
)

func main() {
	cfg := config.New()

	// Init logger (global singleton)
	logger.InitFromConfig(cfg)
	log := logger.L()

	// Init local store
	database, err := db.NewDB(cfg)
	if err != nil {
		log.Error("failed to init db", "err", err)
		return
	}

	// Init Redis
	redisCache := cache.NewRedisCache(cfg)
	if err := redisCache.Ping(context.Background()); err != nil {
		log.Error("failed to connect to redis", "err", err)
		return
	}

	appCtx := app.New(database, redisCache, log)

	if cfg.App.Env == "development" || cfg.App.Mode == config.ModeDemo {
		if err := db.SeedDemoData(database); err != nil {
			log.Error("failed to seed demo data", "err", err)
		}
	}

	// Demo mode is an explicit choice: the live directory is never
	// silently swapped for the seeded one on failure.
	var dir discovery.Directory
	var syncer remote.LikeSyncer
	if cfg.App.Mode == config.ModeDemo {
		dir = discovery.NewDemoDirectory(database)
		syncer = remote.NopSyncer{}
	} else {
		dir = discovery.NewHTTPDirectory(cfg)
		syncer = remote.NewHTTPSyncer(cfg)
	}

	provider := identity.NewStaticProvider(cfg, database)
	notifySvc := notifications.NewService(appCtx, cfg.Notify.HistoryLimit)
	playerSvc := players.NewService(appCtx, dir, syncer, notifySvc)

	registrars := []server.Registrar{
		players.NewRegistrar(playerSvc, provider),
		notifications.NewRegistrar(notifySvc, provider),
	}

	addr := cfg.HTTP.Host + ":" + cfg.HTTP.Port
	log.Info("starting HTTP server", "addr", addr, "mode", cfg.App.Mode)

	if err := server.StartHTTPServer(cfg, registrars...); err != nil {
		log.Error("failed to start HTTP server", "err", err)
	}
}
