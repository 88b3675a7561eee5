package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/redchoeng/stock-recommendation-3.0/internal/contracts"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "발굴 사이클 1회 실행",
	Long: `전체 발굴 사이클을 한 번 실행하고 결과를 출력합니다.

이 명령어는:
- 워치리스트 전 종목에 대해 3개 소스 수집
- 레짐 판정 및 시그널 융합
- 추천 저장 및 알림 발송

Example:
  go run ./cmd/discovery run
  go run ./cmd/discovery run --tickers NVDA,AMD`,
	RunE: runCycle,
}

var runTickers string

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runTickers, "tickers", "", "쉼표 구분 티커 목록 (기본: 워치리스트 전체)")
}

func runCycle(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Discovery Cycle ===")

	ctx := cmd.Context()

	app, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer app.close()

	tickers := app.registry.Tickers()
	if runTickers != "" {
		tickers = parseTickers(runTickers)
	}
	if len(tickers) == 0 {
		return fmt.Errorf("no tickers to scan")
	}

	fmt.Printf("Scanning %d tickers...\n\n", len(tickers))

	result, err := app.orchestrator.Run(ctx, tickers)
	if err != nil {
		return fmt.Errorf("discovery cycle: %w", err)
	}

	printCycleResult(result)
	return nil
}

func parseTickers(raw string) []contracts.Ticker {
	var out []contracts.Ticker
	for _, part := range strings.Split(raw, ",") {
		part = strings.ToUpper(strings.TrimSpace(part))
		if part != "" {
			out = append(out, contracts.Ticker(part))
		}
	}
	return out
}
