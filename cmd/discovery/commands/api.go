package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/redchoeng/stock-recommendation-3.0/internal/api"
	"github.com/redchoeng/stock-recommendation-3.0/internal/api/handlers"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `REST API 서버와 백그라운드 스케줄러를 시작합니다.

이 명령어는:
- HTTP API 서버 시작
- 발굴 사이클 스케줄러 시작
- 추천/레짐 조회 및 사이클 트리거 제공

Endpoints:
  GET  /health                          - Health check
  GET  /api/v1/recommendations          - 최신 추천 조회
  GET  /api/v1/recommendations/{ticker} - 티커별 이력 조회
  GET  /api/v1/regime                   - 현재 레짐 조회
  POST /api/v1/cycle                    - 사이클 즉시 실행
  GET  /api/v1/jobs                     - 스케줄 작업 통계

Example:
  go run ./cmd/discovery api
  go run ./cmd/discovery api --port 8090`,
	RunE: runAPIServer,
}

var apiPort string

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (기본: PORT 환경변수)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Discovery API Server ===")

	app, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer app.close()

	if apiPort != "" {
		app.cfg.Port = apiPort
	}

	// Handlers over the wired pipeline
	recHandler := handlers.NewRecommendationHandler(app.repo, app.log)
	regimeHandler := handlers.NewRegimeHandler(app.repo, app.orchestrator, app.log)
	jobHandler := handlers.NewJobHandler(app.scheduler, app.log)

	router := api.NewRouter(recHandler, regimeHandler, jobHandler, app.log)
	server := api.New(app.cfg, app.log, router)

	// Scheduler runs alongside the API so POST /cycle can trigger jobs
	app.scheduler.Start()
	defer app.scheduler.Stop()

	go func() {
		if err := server.Start(); err != nil {
			app.log.WithError(err).Fatal("Failed to start server")
		}
	}()

	fmt.Printf("\n✅ Server running on http://localhost:%s\n", app.cfg.Port)
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	app.log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	app.log.Info("Server stopped")
	return nil
}
