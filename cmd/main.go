package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"

	"BlogCMS/internal/config"
	"BlogCMS/internal/db"
	"BlogCMS/internal/entity"
	"BlogCMS/internal/handler"
	"BlogCMS/internal/i18n"
	"BlogCMS/internal/logger"
	"BlogCMS/internal/router"
	"BlogCMS/internal/storage"
)

func main() {
	debugFlag := flag.Bool("d", false, "enable debug logging")
	flag.Parse()

	cfg := config.LoadConfig()
	if err := logger.Init("."); err != nil {
		fmt.Fprintf(os.Stderr, "log init failed: %v\n", err)
		os.Exit(1)
	}
	logger.SetDebug(*debugFlag)

	if err := db.InitPostgres(cfg.PostgresDSN); err != nil {
		logger.Error("postgres_init_failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
	defer db.ClosePostgres()
	logger.Info("postgres_connected", nil)

	db.InitRedis(cfg.RedisAddr)
	if err := db.PingRedis(); err != nil {
		logger.Error("redis_init_failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
	logger.Info("redis_connected", nil)

	if err := entity.InitRegistry(); err != nil {
		logger.Error("registry_init_failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
	logger.Info("entities_initialized", nil)

	if err := i18n.Load(cfg.LocalesDir); err != nil {
		logger.Warn("locales_disabled", map[string]any{"error": err.Error()})
	}

	store, err := storage.New(cfg.Storage)
	if err != nil {
		logger.Error("storage_init_failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}

	handler.Init(cfg, store)
	router.InitRoutes(cfg)

	logger.Info("server_start", map[string]any{"port": cfg.Port})
	log.Printf("🚀 Starting server on port %s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, nil); err != nil {
		logger.Error("server_error", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
}
