package normalize

import (
	"math"

	"github.com/redchoeng/stock-recommendation-3.0/internal/contracts"
)

// normalizeQuant blends the three independently-normalized quant
// sub-filters into one strength. Sub-filter weights come from config and
// sum to 1.0, so the blend stays inside [-1,1] without clamping tricks.
func (n *Normalizer) normalizeQuant(raw *contracts.RawSignal) (contracts.NormalizedSignal, error) {
	m := raw.Quant
	if m == nil {
		return contracts.NormalizedSignal{}, &contracts.InvalidRawSignalError{
			Kind:   contracts.SourceQuant,
			Ticker: raw.Ticker,
			Reason: "missing quant metrics",
		}
	}

	if !finite(m.SurgeRatio5D) || !finite(m.NeglectSlope) || !finite(m.TradeValueMA) {
		return contracts.NormalizedSignal{}, &contracts.InvalidRawSignalError{
			Kind:   contracts.SourceQuant,
			Ticker: raw.Ticker,
			Reason: "non-finite raw metric",
		}
	}
	if m.SurgeRatio5D < 0 {
		return contracts.NormalizedSignal{}, &contracts.InvalidRawSignalError{
			Kind:   contracts.SourceQuant,
			Ticker: raw.Ticker,
			Reason: "negative trade value ratio",
		}
	}

	surge := n.surgeScore(m.SurgeRatio5D)
	peak := n.peakScore(m)
	neglect := n.neglectScore(m)

	w := n.quant.SubWeights
	strength := clamp(surge*w.Surge + peak*w.Peak + neglect*w.Neglect)

	return contracts.NormalizedSignal{
		Kind:       contracts.SourceQuant,
		Ticker:     raw.Ticker,
		Strength:   strength,
		Confidence: n.quantConfidence(m),
		ObservedAt: raw.ObservedAt,
	}, nil
}

// surgeScore maps the 5d trade-value ratio through a tanh curve: the
// baseline ratio 1.0 (trading at its own 1y average) maps to 0, extreme
// surges saturate toward +1 and drying-up volume toward -1.
func (n *Normalizer) surgeScore(ratio5d float64) float64 {
	return math.Tanh((ratio5d - 1.0) * n.quant.Surge.CurveScale)
}

// peakScore is 0 unless the peak warning fired: price near the 52w high
// with trade value rolling over. The deeper the dead cross, the closer to
// -1.
func (n *Normalizer) peakScore(m *contracts.QuantMetrics) float64 {
	if !m.PeakWarning {
		return 0
	}

	span := 1.0 - n.quant.Peak.RiskRatio
	if span <= 0 {
		return -1
	}

	deterioration := (1.0 - m.TradeValueMA) / span
	if deterioration < 0 {
		deterioration = 0
	}
	if deterioration > 1 {
		deterioration = 1
	}
	return -deterioration
}

// neglectScore is 0 unless the neglect scanner flagged the ticker. A
// flagged large cap with steadily declining trade value is a contrarian
// accumulation candidate, so the contribution is mildly positive and
// saturates at twice the slope threshold (deep neglect).
func (n *Normalizer) neglectScore(m *contracts.QuantMetrics) float64 {
	if !m.Neglected {
		return 0
	}

	threshold := n.quant.Neglect.SlopeThreshold
	if threshold >= 0 {
		return 0
	}

	depth := m.NeglectSlope / (2 * threshold) // 0.5 at threshold, 1.0 at 2x
	if depth < 0 {
		depth = 0
	}
	if depth > 1 {
		depth = 1
	}
	return depth
}

// quantConfidence scales with how much price history backed the
// computation relative to the configured rolling window.
func (n *Normalizer) quantConfidence(m *contracts.QuantMetrics) float64 {
	required := n.quant.Surge.AvgPeriodDays
	if required <= 0 || m.BarsUsed >= required {
		return 1.0
	}
	if m.BarsUsed <= 0 {
		return 0
	}
	return float64(m.BarsUsed) / float64(required)
}
