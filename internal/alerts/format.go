// Package alerts delivers the two extremes of the recommendation ladder
// plus regime transitions to Slack and Telegram.
package alerts

import (
	"fmt"
	"sort"
	"strings"

	"github.com/redchoeng/stock-recommendation-3.0/internal/contracts"
)

var labelEmoji = map[contracts.Label]string{
	contracts.LabelStrongBuy: "🚀",
	contracts.LabelAvoid:     "⛔",
}

var regimeEmoji = map[contracts.Regime]string{
	contracts.RegimeRiskOn:  "🟢",
	contracts.RegimeNeutral: "🟡",
	contracts.RegimeRiskOff: "🔴",
}

// FormatRecommendation renders one alertable recommendation with its
// per-source breakdown.
func FormatRecommendation(rec *contracts.Recommendation) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s *%s* — %s (composite %.2f, regime %s)\n",
		labelEmoji[rec.Label], rec.Ticker, rec.Label, rec.Composite.Value, rec.Composite.Regime)

	for _, src := range rec.Composite.Sources {
		fmt.Fprintf(&b, "  • %s: strength %+.2f, confidence %.2f, weight %.3f\n",
			src.Kind, src.Strength, src.Confidence, src.EffectiveWeight)
	}
	if rec.Downgraded {
		b.WriteString("  ⚠️ downgraded from STRONG_BUY: no substance verification this cycle\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatRegimeChange renders a regime transition with the defensive
// allocation when one was computed.
func FormatRegimeChange(from, to contracts.Regime, alloc *contracts.HedgeAllocation) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s Regime change: %s → %s\n", regimeEmoji[to], from, to)

	if alloc != nil {
		fmt.Fprintf(&b, "Defensive allocation %.0f%% (risk score %.2f)\n", alloc.DefenseRatio*100, alloc.RiskScore)
		for _, reason := range alloc.Reasons {
			fmt.Fprintf(&b, "  • %s\n", reason)
		}

		sectors := make([]string, 0, len(alloc.Sectors))
		for name := range alloc.Sectors {
			sectors = append(sectors, name)
		}
		sort.Strings(sectors)
		for _, name := range sectors {
			slice := alloc.Sectors[name]
			tickers := make([]string, len(slice.Tickers))
			for i, t := range slice.Tickers {
				tickers[i] = string(t)
			}
			fmt.Fprintf(&b, "  %s (%.0f%%): %s\n", name, slice.Weight*100, strings.Join(tickers, ", "))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
