// Package fusion combines per-source normalized signals into one composite
// score per ticker using regime-adjusted, confidence-discounted weights.
package fusion

import (
	"time"

	"github.com/redchoeng/stock-recommendation-3.0/internal/contracts"
	"github.com/redchoeng/stock-recommendation-3.0/internal/engineconfig"
)

// Engine is stateless: regime and signals come in, a score comes out.
// ⭐ SSOT: 가중치 계산과 합성은 여기서만
type Engine struct {
	cfg engineconfig.Fusion
}

func NewEngine(cfg engineconfig.Fusion) *Engine {
	return &Engine{cfg: cfg}
}

// Fuse computes the composite score for one ticker from whatever sources
// delivered this cycle. Missing sources are simply absent; the weights of
// the present ones are renormalized by their effective sum, so a
// lone high-confidence source passes through at full strength.
//
// An out-of-range signal is an upstream bug and fails the ticker rather
// than being clamped. A cycle where every effective weight is zero fails
// with InsufficientSignalError.
func (e *Engine) Fuse(ticker contracts.Ticker, regime contracts.Regime, signals []contracts.NormalizedSignal) (contracts.CompositeScore, error) {
	weights := regimeWeights(e.cfg, regime)

	byKind := make(map[contracts.SourceKind]contracts.NormalizedSignal, len(signals))
	for _, sig := range signals {
		if !sig.InRange() {
			return contracts.CompositeScore{}, &contracts.OutOfRangeError{
				Kind:       sig.Kind,
				Strength:   sig.Strength,
				Confidence: sig.Confidence,
			}
		}
		byKind[sig.Kind] = sig
	}

	var weightedSum, effectiveSum float64
	contributions := make([]contracts.Contribution, 0, len(byKind))
	for _, kind := range contracts.Kinds() {
		sig, ok := byKind[kind]
		if !ok {
			continue
		}
		ew := weights[kind] * sig.Confidence
		if ew <= 0 {
			continue
		}
		weightedSum += ew * sig.Strength
		effectiveSum += ew
		contributions = append(contributions, contracts.Contribution{
			Kind:            kind,
			Strength:        sig.Strength,
			Confidence:      sig.Confidence,
			EffectiveWeight: ew,
		})
	}

	if effectiveSum <= 0 {
		return contracts.CompositeScore{}, &contracts.InsufficientSignalError{Ticker: ticker}
	}

	return contracts.CompositeScore{
		Ticker:     ticker,
		Value:      weightedSum / effectiveSum,
		Sources:    contributions,
		Regime:     regime,
		ComputedAt: time.Now().UTC(),
	}, nil
}
