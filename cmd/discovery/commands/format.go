package commands

import (
	"fmt"
	"sort"
	"time"

	"github.com/redchoeng/stock-recommendation-3.0/internal/contracts"
	"github.com/redchoeng/stock-recommendation-3.0/internal/pipeline"
)

// printCycleResult renders a cycle summary to stdout.
func printCycleResult(result *pipeline.CycleResult) {
	fmt.Printf("Regime: %s", result.Regime)
	if result.Emergency {
		fmt.Print(" (emergency)")
	} else if result.RegimeChanged {
		fmt.Print(" (changed)")
	}
	fmt.Printf("\nDuration: %v\n\n", result.FinishedAt.Sub(result.StartedAt).Round(time.Millisecond))

	if len(result.Recommendations) == 0 {
		fmt.Println("No recommendations produced")
	} else {
		fmt.Printf("Recommendations (%d):\n", len(result.Recommendations))
		for _, rec := range result.Recommendations {
			marker := ""
			if rec.Downgraded {
				marker = " (downgraded: no filing verification)"
			}
			fmt.Printf("  %-6s %-11s %+.3f%s\n", rec.Ticker, rec.Label, rec.Composite.Value, marker)
		}
	}

	if len(result.Skipped) > 0 {
		fmt.Printf("\nSkipped (%d):\n", len(result.Skipped))
		tickers := make([]string, 0, len(result.Skipped))
		for t := range result.Skipped {
			tickers = append(tickers, string(t))
		}
		sort.Strings(tickers)
		for _, t := range tickers {
			fmt.Printf("  %-6s %s\n", t, result.Skipped[contracts.Ticker(t)])
		}
	}

	if result.Hedge != nil {
		fmt.Printf("\nDefensive allocation: %.0f%% (risk score %.2f)\n",
			result.Hedge.DefenseRatio*100, result.Hedge.RiskScore)
		for _, reason := range result.Hedge.Reasons {
			fmt.Printf("  - %s\n", reason)
		}
	}
}
