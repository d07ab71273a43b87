package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/denisbrodbeck/machineid"

	"tradeos-core/internal/api"
	"tradeos-core/internal/bot"
	"tradeos-core/internal/market"
	"tradeos-core/internal/monitor"
	"tradeos-core/internal/session"
	"tradeos-core/internal/trading"
	"tradeos-core/pkg/config"
	"tradeos-core/pkg/db"
	"tradeos-core/pkg/i18n"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf(i18n.Get("ConfigLoadFailed"), err)
	}

	i18n.SetLanguage(i18n.Language(cfg.Language))
	log.Println(i18n.Get("Starting"))
	log.Printf(i18n.Get("ConfigLoaded"), cfg.Port)
	log.Printf(i18n.Get("UsingDBPath"), cfg.DBPath)

	instanceID, err := machineid.ProtectedID("tradeos-core")
	if err != nil {
		instanceID = "unknown"
	}
	log.Printf(i18n.Get("InstanceID"), instanceID)

	buildVersion := os.Getenv("APP_VERSION")
	if buildVersion == "" {
		buildVersion = "v1.0-dev"
	}

	database, err := db.New(cfg.DBPath)
	if err != nil {
		log.Fatalf(i18n.Get("DBInitFailed"), err)
	}
	defer database.Close()
	if err := db.ApplyMigrations(database); err != nil {
		log.Fatalf(i18n.Get("DBMigrationsFailed"), err)
	}

	// Market presets are optional; defaults apply when the file is absent.
	var presets *market.Presets
	if cfg.MarketConfigPath != "" {
		p, err := market.LoadPresets(cfg.MarketConfigPath)
		if err != nil {
			log.Printf(i18n.Get("MarketPresetsLoadFailed"), err)
		} else {
			presets = p
			log.Printf(i18n.Get("MarketPresetsLoaded"), cfg.MarketConfigPath)
		}
	}

	sysMetrics := monitor.NewSystemMetrics()
	log.Println(i18n.Get("SystemMetricsInit"))

	registry := session.NewRegistry(cfg, database, sysMetrics, presets)
	defer registry.Shutdown()

	if cfg.BotEnabled {
		trader := bot.New(registry, cfg.BotUserID, trading.ParseDifficulty(cfg.BotDifficulty), cfg.BotEveryTicks)
		if err := trader.Start(context.Background()); err != nil {
			log.Printf(i18n.Get("BotStartFailed"), err)
		} else {
			defer trader.Stop()
		}
	}

	server := api.NewServer(
		registry,
		database,
		sysMetrics,
		api.SystemMeta{
			Version:    buildVersion,
			InstanceID: instanceID,
			Language:   cfg.Language,
			Difficulty: cfg.Difficulty,
		},
		cfg.JWTSecret,
	)
	go func() {
		log.Printf(i18n.Get("ServerListening"), cfg.Port)
		if err := server.Start(":" + cfg.Port); err != nil {
			log.Fatalf(i18n.Get("APIServerError"), err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	log.Println(i18n.Get("ShuttingDown"))
}
