// Package hedge suggests a defensive allocation when the regime turns
// RISK_OFF. It is advisory output attached to the cycle, not an order.
package hedge

import (
	"fmt"

	"github.com/redchoeng/stock-recommendation-3.0/internal/contracts"
	"github.com/redchoeng/stock-recommendation-3.0/internal/engineconfig"
)

type Allocator struct {
	cfg engineconfig.Hedge
}

func NewAllocator(cfg engineconfig.Hedge) *Allocator {
	return &Allocator{cfg: cfg}
}

// Allocate sizes the defensive slice between the configured base and max
// ratio according to how stressed the macro picture is. Sector weights
// start from the configured base weights and tilt with the stress shape:
// a spiking VIX favors gold, a deep index drawdown favors staples.
// Picking within a sector is left to the reader of the alert.
func (a *Allocator) Allocate(macroStrength float64, m *contracts.MacroMetrics) contracts.HedgeAllocation {
	risk := riskScore(macroStrength, m)

	ratio := a.cfg.BaseDefenseRatio + (a.cfg.MaxDefenseRatio-a.cfg.BaseDefenseRatio)*risk
	if ratio > a.cfg.MaxDefenseRatio {
		ratio = a.cfg.MaxDefenseRatio
	}

	alloc := contracts.HedgeAllocation{
		DefenseRatio: ratio,
		RiskScore:    risk,
		Reasons:      reasons(macroStrength, m),
		Sectors:      make(map[string]contracts.SectorSlice, len(a.cfg.Sectors)),
	}

	weights := a.sectorWeights(m)
	for sector, tickers := range a.cfg.Sectors {
		slice := contracts.SectorSlice{Weight: weights[sector], Tickers: make([]contracts.Ticker, 0, len(tickers))}
		for _, t := range tickers {
			slice.Tickers = append(slice.Tickers, contracts.Ticker(t))
		}
		alloc.Sectors[sector] = slice
	}

	return alloc
}

// sectorWeights tilts the configured base weights by the stress shape and
// renormalizes. Tilts touch only sectors that exist in the config.
func (a *Allocator) sectorWeights(m *contracts.MacroMetrics) map[string]float64 {
	weights := make(map[string]float64, len(a.cfg.Sectors))
	if len(a.cfg.Sectors) == 0 {
		return weights
	}

	equal := 1.0 / float64(len(a.cfg.Sectors))
	for sector := range a.cfg.Sectors {
		if w, ok := a.cfg.SectorWeights[sector]; ok {
			weights[sector] = w
		} else {
			weights[sector] = equal
		}
	}

	tilt := func(sector string, delta float64) {
		if _, ok := weights[sector]; ok {
			weights[sector] += delta
			if weights[sector] < 0 {
				weights[sector] = 0
			}
		}
	}

	if m != nil {
		// VIX 급등: 금 확대
		if m.VIXCurrent >= 30 {
			tilt("gold", 0.10)
			tilt("agricultural", -0.05)
			tilt("utilities", -0.05)
		}
		// 깊은 낙폭: 필수소비재 확대
		if m.SP500Drawdown <= -10 {
			tilt("consumer_staples", 0.10)
			tilt("gold", -0.05)
			tilt("agricultural", -0.05)
		}
	}

	var total float64
	for _, w := range weights {
		total += w
	}
	if total > 0 {
		for sector := range weights {
			weights[sector] /= total
		}
	}
	return weights
}

// riskScore maps macro stress onto [0,1]. The macro strength carries most
// of it; an elevated VIX or a deep index drawdown each push it further.
func riskScore(macroStrength float64, m *contracts.MacroMetrics) float64 {
	risk := 0.0
	if macroStrength < 0 {
		risk = -macroStrength
	}

	if m != nil {
		if m.VIXCurrent >= 30 {
			risk += 0.15
		}
		if m.SP500Drawdown <= -10 {
			risk += 0.15
		}
	}

	if risk > 1 {
		risk = 1
	}
	return risk
}

func reasons(macroStrength float64, m *contracts.MacroMetrics) []string {
	out := []string{fmt.Sprintf("macro strength %.2f", macroStrength)}
	if m == nil {
		return out
	}
	if m.VIXCurrent >= 30 {
		out = append(out, fmt.Sprintf("VIX elevated at %.1f", m.VIXCurrent))
	}
	if m.SP500Drawdown <= -10 {
		out = append(out, fmt.Sprintf("S&P 500 drawdown %.1f%%", m.SP500Drawdown))
	}
	return out
}
