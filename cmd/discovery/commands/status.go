package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "시스템 상태 확인",
	Long: `파이프라인 의존 요소와 최근 발굴 결과를 한눈에 확인합니다.

표시 정보:
- 데이터베이스 연결/풀 상태
- Redis 캐시 상태
- 마지막 레짐 스냅샷
- 최근 추천 요약

Example:
  go run ./cmd/discovery status`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Discovery Status ===")
	fmt.Println()

	ctx := cmd.Context()

	app, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer app.close()

	fmt.Println("🗄️  Database")
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	if health, err := app.db.HealthCheck(ctx); err != nil {
		fmt.Printf("%-15s ❌ %s\n", "Status:", health.Error)
	} else {
		fmt.Printf("%-15s ✅ healthy (%v)\n", "Status:", health.ResponseTime.Round(time.Millisecond))
		fmt.Printf("%-15s %d / %d (idle %d)\n", "Connections:", health.TotalConns, health.MaxConns, health.IdleConns)
	}
	fmt.Println()

	fmt.Println("⚡ Redis")
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	if app.redis.Enabled() {
		fmt.Printf("%-15s ✅ enabled\n", "Status:")
	} else {
		fmt.Printf("%-15s ⏭️  disabled (cache/rate-limit pass-through)\n", "Status:")
	}
	fmt.Println()

	fmt.Println("🌡️  Regime")
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	if snap, err := app.repo.LatestRegime(ctx); err != nil {
		fmt.Printf("%-15s ❌ %v\n", "Snapshot:", err)
	} else if snap == nil {
		fmt.Printf("%-15s (no cycle recorded yet)\n", "Snapshot:")
	} else {
		fmt.Printf("%-15s %s\n", "Regime:", snap.Regime)
		fmt.Printf("%-15s %+.3f\n", "Risk score:", snap.RiskScore)
		fmt.Printf("%-15s %s\n", "Observed:", snap.ObservedAt.Format("2006-01-02 15:04:05 MST"))
	}
	fmt.Println()

	fmt.Println("📈 Recent Recommendations")
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	recs, err := app.repo.LatestRecommendations(ctx, 10)
	if err != nil {
		fmt.Printf("❌ %v\n", err)
	} else if len(recs) == 0 {
		fmt.Println("(none)")
	} else {
		for _, rec := range recs {
			marker := ""
			if rec.Downgraded {
				marker = " (downgraded)"
			}
			fmt.Printf("%-6s %-11s %+.3f%s\n", rec.Ticker, rec.Label, rec.Composite, marker)
		}
	}
	fmt.Println()

	fmt.Printf("%-15s %d tickers\n", "Watchlist:", len(app.registry.Tickers()))
	return nil
}
