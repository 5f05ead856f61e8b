package itests

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"BlogCMS/internal"
	"BlogCMS/internal/config"
	"BlogCMS/internal/db"
	"BlogCMS/internal/entity"
	"BlogCMS/internal/handler"
	"BlogCMS/internal/i18n"
	"BlogCMS/internal/router"
	"BlogCMS/internal/storage"
)

// The package needs local Postgres (and Redis for the public API tests).
// Without ITESTS=1 every test skips, so `go test ./...` stays green on
// machines without the services.
var (
	testBaseURL string
	testCfg     *config.Config
	redisReady  bool
	httpSrv     *http.Server
)

func TestMain(m *testing.M) {
	if os.Getenv("ITESTS") == "" {
		os.Exit(m.Run())
	}

	cfg := config.LoadConfig()
	if cfg.Auth.JWTSecret == "" {
		cfg.Auth.JWTSecret = "itest-secret"
	}
	testCfg = cfg

	teardownDB, err := SetupAndTeardownTestDB(cfg.PostgresDSN, db.InitPostgres)
	if err != nil {
		println("setup test DB failed:", err.Error())
		os.Exit(1)
	}

	db.InitRedis(cfg.RedisAddr)
	redisReady = db.PingRedis() == nil

	if err := entity.InitRegistry(); err != nil {
		println("InitRegistry failed:", err.Error())
		os.Exit(1)
	}

	root, err := internal.FindRepoRoot()
	if err != nil {
		println("repo root not found:", err.Error())
		os.Exit(1)
	}
	if err := i18n.Load(filepath.Join(root, "cfg", "locales")); err != nil {
		println("locales failed:", err.Error())
		os.Exit(1)
	}

	uploadDir, err := os.MkdirTemp("", "itest-uploads-*")
	if err != nil {
		println("temp upload dir failed:", err.Error())
		os.Exit(1)
	}
	store := storage.NewDisk(uploadDir, "http://localhost:"+cfg.Port+"/storage")

	handler.Init(cfg, store)
	router.InitRoutes(cfg)

	if err := seedFixtures(); err != nil {
		println("seed failed:", err.Error())
		os.Exit(1)
	}

	httpSrv = &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: http.DefaultServeMux,
	}
	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			println("HTTP server failed:", err.Error())
			os.Exit(1)
		}
	}()

	if err := waitForPort("localhost", cfg.Port, 3*time.Second); err != nil {
		println("HTTP port not ready:", err.Error())
		_ = httpSrv.Close()
		os.Exit(1)
	}
	testBaseURL = fmt.Sprintf("http://localhost:%s", cfg.Port)

	code := m.Run()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	_ = httpSrv.Shutdown(ctx)
	cancel()

	os.RemoveAll(uploadDir)
	if err := teardownDB(); err != nil {
		println("drop test DB failed:", err.Error())
	}
	os.Exit(code)
}

func requireBootstrap(t *testing.T) {
	t.Helper()
	if testBaseURL == "" {
		t.Skip("integration environment not configured; run with ITESTS=1")
	}
}

func requireRedis(t *testing.T) {
	t.Helper()
	requireBootstrap(t)
	if !redisReady {
		t.Skip("Redis not reachable; public API tests need it")
	}
}

func waitForPort(host, port string, timeout time.Duration) error {
	addr := net.JoinHostPort(host, port)
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		conn, err := net.DialTimeout("tcp", addr, 150*time.Millisecond)
		if err == nil {
			_ = conn.Close()
			return nil
		}
		time.Sleep(100 * time.Millisecond)
	}
	return fmt.Errorf("port %s not reachable within %s", port, timeout)
}
