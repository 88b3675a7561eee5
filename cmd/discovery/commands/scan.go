package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/redchoeng/stock-recommendation-3.0/internal/contracts"
	"github.com/redchoeng/stock-recommendation-3.0/internal/normalize"
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "정량 스캔만 실행",
	Long: `정량 엔진(거래대금 급증/고점 경고/소외주)만 실행하고 결과를 출력합니다.

매크로/NLP 수집 없이 빠르게 돌릴 수 있어 장중 점검에 적합합니다.
레짐 판정과 추천 생성은 하지 않습니다.

Example:
  go run ./cmd/discovery scan
  go run ./cmd/discovery scan --tickers NVDA,AMD`,
	RunE: runScan,
}

var scanTickers string

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().StringVar(&scanTickers, "tickers", "", "쉼표 구분 티커 목록 (기본: 워치리스트 전체)")
}

func runScan(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Quant Scan ===")

	ctx := cmd.Context()

	app, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer app.close()

	tickers := app.registry.Tickers()
	if scanTickers != "" {
		tickers = parseTickers(scanTickers)
	}
	if len(tickers) == 0 {
		return fmt.Errorf("no tickers to scan")
	}

	norm := normalize.New(app.engine)

	fmt.Printf("Scanning %d tickers...\n\n", len(tickers))
	fmt.Printf("%-6s %8s %8s %8s %6s %8s  %s\n",
		"TICKER", "SURGE1D", "SURGE5D", "STRENGTH", "CONF", "BARS", "FLAGS")

	var flagged, failed int
	for _, ticker := range tickers {
		raw, err := app.quant.FetchQuant(ctx, ticker)
		if err != nil {
			failed++
			if errors.Is(err, contracts.ErrUnavailable) {
				fmt.Printf("%-6s  (unavailable)\n", ticker)
			} else {
				fmt.Printf("%-6s  (error: %v)\n", ticker, err)
			}
			continue
		}

		sig, err := norm.Normalize(raw)
		if err != nil {
			failed++
			fmt.Printf("%-6s  (normalize: %v)\n", ticker, err)
			continue
		}

		m := raw.Quant
		flags := ""
		if m.PeakWarning {
			flags += "⚠️PEAK "
		}
		if m.Neglected {
			flags += "💤NEGLECT "
		}
		if flags != "" {
			flagged++
		}

		fmt.Printf("%-6s %8.2f %8.2f %+8.3f %6.2f %8d  %s\n",
			ticker, m.SurgeRatio1D, m.SurgeRatio5D, sig.Strength, sig.Confidence, m.BarsUsed, flags)
	}

	fmt.Printf("\n✅ Scan complete: %d scanned, %d flagged, %d failed\n",
		len(tickers)-failed, flagged, failed)
	return nil
}
