package normalize

import (
	"github.com/redchoeng/stock-recommendation-3.0/internal/contracts"
)

// normalizeMacro z-scores each indicator against its own rolling
// distribution, flips signs so positive always means risk-on, and blends
// the valid components by their configured weights. Confidence is the
// weight share of the components that were actually usable, so a cycle
// with a stale CPI series degrades gracefully instead of failing.
func (n *Normalizer) normalizeMacro(raw *contracts.RawSignal) (contracts.NormalizedSignal, error) {
	m := raw.Macro
	if m == nil {
		return contracts.NormalizedSignal{}, &contracts.InvalidRawSignalError{
			Kind:   contracts.SourceMacro,
			Ticker: raw.Ticker,
			Reason: "missing macro metrics",
		}
	}

	w := n.macro.Components
	parts := []struct {
		comp   contracts.MacroComponent
		weight float64
		sign   float64
	}{
		{m.CPIChange, w.CPI, -1},          // rising inflation hurts risk appetite
		{m.UnemploymentChange, w.Unemployment, -1},
		{m.VIXLevel, w.VIX, -1},
		{m.YieldSpread, w.YieldCurve, +1}, // steeper curve = healthier regime
	}

	var sum, validWeight float64
	for _, p := range parts {
		if !p.comp.Valid || p.comp.Std <= 0 || !finite(p.comp.Value) {
			continue
		}
		sum += p.sign * n.zscore(p.comp) * p.weight
		validWeight += p.weight
	}

	if validWeight <= 0 {
		return contracts.NormalizedSignal{}, &contracts.InvalidRawSignalError{
			Kind:   contracts.SourceMacro,
			Ticker: raw.Ticker,
			Reason: "no valid macro components",
		}
	}

	return contracts.NormalizedSignal{
		Kind:       contracts.SourceMacro,
		Ticker:     raw.Ticker,
		Strength:   clamp(sum / validWeight),
		Confidence: validWeight,
		ObservedAt: raw.ObservedAt,
	}, nil
}

// zscore clips the component's standard score at ±zscore_clip and
// rescales to [-1,1], so a single broken print cannot dominate the blend.
func (n *Normalizer) zscore(c contracts.MacroComponent) float64 {
	z := (c.Value - c.Mean) / c.Std
	clip := n.macro.ZScoreClip
	if z > clip {
		z = clip
	}
	if z < -clip {
		z = -clip
	}
	return z / clip
}
