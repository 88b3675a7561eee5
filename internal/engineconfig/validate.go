package engineconfig

import (
	"fmt"
	"math"
)

// Validate checks internal consistency of the strategy config. Called from
// Load; errors here abort startup before any cycle runs.
func Validate(cfg *Config) error {
	// Fusion weights must sum to 1.0.
	sum := cfg.Fusion.BaseWeights.Quant + cfg.Fusion.BaseWeights.Macro + cfg.Fusion.BaseWeights.NLP
	if math.Abs(sum-1.0) > 0.001 {
		return fmt.Errorf("fusion.base_weights must sum to 1.0, got %.4f", sum)
	}
	if cfg.Fusion.RiskOffShift < 0 || cfg.Fusion.RiskOffShift > cfg.Fusion.BaseWeights.Quant {
		return fmt.Errorf("fusion.risk_off_shift must be in [0, quant weight], got %.4f", cfg.Fusion.RiskOffShift)
	}

	// Quant sub-weights must sum to 1.0.
	sub := cfg.Quant.SubWeights.Surge + cfg.Quant.SubWeights.Peak + cfg.Quant.SubWeights.Neglect
	if math.Abs(sub-1.0) > 0.001 {
		return fmt.Errorf("quant.sub_weights must sum to 1.0, got %.4f", sub)
	}

	// Macro component weights must sum to 1.0.
	mc := cfg.Macro.Components
	mcSum := mc.CPI + mc.Unemployment + mc.VIX + mc.YieldCurve
	if math.Abs(mcSum-1.0) > 0.001 {
		return fmt.Errorf("macro.components must sum to 1.0, got %.4f", mcSum)
	}
	if cfg.Macro.ZScoreClip <= 0 {
		return fmt.Errorf("macro.zscore_clip must be positive, got %.2f", cfg.Macro.ZScoreClip)
	}

	// Regime thresholds must be ordered: emergency < risk_off < risk_on.
	r := cfg.Regime
	if !(r.EmergencyBelow < r.RiskOffBelow && r.RiskOffBelow < r.RiskOnAbove) {
		return fmt.Errorf("regime thresholds must satisfy emergency < risk_off < risk_on, got %.2f/%.2f/%.2f",
			r.EmergencyBelow, r.RiskOffBelow, r.RiskOnAbove)
	}
	if r.ConfirmCycles < 1 {
		return fmt.Errorf("regime.confirm_cycles must be >= 1, got %d", r.ConfirmCycles)
	}

	// Classification ladder must be strictly descending.
	cl := cfg.Classify
	if !(cl.StrongBuy > cl.Buy && cl.Buy > cl.HoldAbove && cl.HoldAbove > cl.SellAbove) {
		return fmt.Errorf("classify thresholds must be strictly descending, got %.2f/%.2f/%.2f/%.2f",
			cl.StrongBuy, cl.Buy, cl.HoldAbove, cl.SellAbove)
	}

	// NLP blend and confidences live in [0,1].
	if cfg.NLP.AnchorBlend < 0 || cfg.NLP.AnchorBlend > 1 {
		return fmt.Errorf("nlp.anchor_blend must be in [0,1], got %.2f", cfg.NLP.AnchorBlend)
	}
	if cfg.NLP.FallbackConfidence > cfg.NLP.ParsedConfidence {
		return fmt.Errorf("nlp.fallback_confidence (%.2f) must not exceed parsed_confidence (%.2f)",
			cfg.NLP.FallbackConfidence, cfg.NLP.ParsedConfidence)
	}

	// Cadence sanity.
	if cfg.Cadence.FetchTimeout <= 0 || cfg.Cadence.NLPTimeout <= 0 {
		return fmt.Errorf("cadence timeouts must be positive")
	}

	// Hedge ratios.
	if cfg.Hedge.BaseDefenseRatio < 0 || cfg.Hedge.MaxDefenseRatio > 1 ||
		cfg.Hedge.BaseDefenseRatio > cfg.Hedge.MaxDefenseRatio {
		return fmt.Errorf("hedge ratios must satisfy 0 <= base <= max <= 1")
	}

	// Sector base weights, when given, must cover the sectors and sum to 1.0.
	if len(cfg.Hedge.SectorWeights) > 0 {
		var wSum float64
		for sector, w := range cfg.Hedge.SectorWeights {
			if w < 0 {
				return fmt.Errorf("hedge.sector_weights[%s] must be non-negative, got %.4f", sector, w)
			}
			if _, ok := cfg.Hedge.Sectors[sector]; !ok {
				return fmt.Errorf("hedge.sector_weights names unknown sector %q", sector)
			}
			wSum += w
		}
		if math.Abs(wSum-1.0) > 0.001 {
			return fmt.Errorf("hedge.sector_weights must sum to 1.0, got %.4f", wSum)
		}
	}

	return nil
}
