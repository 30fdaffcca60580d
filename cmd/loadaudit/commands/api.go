package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/loadaudit/internal/api"
	"github.com/wonny/loadaudit/internal/api/handlers"
	"github.com/wonny/loadaudit/internal/audit"
	"github.com/wonny/loadaudit/internal/pipeline"
	"github.com/wonny/loadaudit/internal/store"
	"github.com/wonny/loadaudit/pkg/redis"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "감사 API 서버 실행",
	Long: `감사 보고서 조회/실행 트리거 API 서버를 실행합니다.

Endpoints:
  GET  /health
  GET  /api/quality/report
  GET  /api/quality/runs?limit=20
  POST /api/quality/run
  GET  /api/quality/stream (websocket)

Example:
  go run ./cmd/loadaudit api`,
	RunE: runAPI,
}

func init() {
	rootCmd.AddCommand(apiCmd)
}

func runAPI(cmd *cobra.Command, args []string) error {
	cfg, log, rules, db, err := initStoreDeps()
	if err != nil {
		return err
	}
	defer db.Close()

	rdb, err := redis.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer rdb.Close()
	cache := redis.NewCache(rdb, "loadaudit")

	// Progress events flow to websocket subscribers
	hub := api.NewHub(log)
	pipe, err := pipeline.New(*rules, cfg.Audit.Workers, log,
		pipeline.WithProgress(hub.BroadcastEvent))
	if err != nil {
		return err
	}

	telemetryRepo := store.NewTelemetryRepository(db.Pool)
	auditRepo := store.NewAuditRepository(db.Pool)
	runner := audit.NewRunner(telemetryRepo, auditRepo, cache, pipe,
		time.Duration(cfg.Audit.LookbackDays)*24*time.Hour, log)

	qualityHandler := handlers.NewQualityHandler(auditRepo, cache, runner, log)
	router := api.NewRouter(qualityHandler, hub, cfg, log)
	server := api.New(cfg, log, router)

	// Graceful shutdown on SIGINT/SIGTERM
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		log.WithField("signal", sig.String()).Info("Shutdown signal received")
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.API.ShutdownTimeout)
	defer cancel()

	return server.Shutdown(ctx)
}
