package fusion

import (
	"github.com/redchoeng/stock-recommendation-3.0/internal/contracts"
	"github.com/redchoeng/stock-recommendation-3.0/internal/engineconfig"
)

// regimeWeights returns the per-source weights after the regime
// adjustment. In RISK_OFF a fixed share moves from quant to macro: price
// action is least trustworthy exactly when the market is stressed. The
// three weights always sum to 1.0.
func regimeWeights(cfg engineconfig.Fusion, regime contracts.Regime) map[contracts.SourceKind]float64 {
	w := map[contracts.SourceKind]float64{
		contracts.SourceQuant: cfg.BaseWeights.Quant,
		contracts.SourceMacro: cfg.BaseWeights.Macro,
		contracts.SourceNLP:   cfg.BaseWeights.NLP,
	}
	if regime == contracts.RegimeRiskOff {
		shift := cfg.RiskOffShift
		if shift > w[contracts.SourceQuant] {
			shift = w[contracts.SourceQuant]
		}
		w[contracts.SourceQuant] -= shift
		w[contracts.SourceMacro] += shift
	}
	return w
}
