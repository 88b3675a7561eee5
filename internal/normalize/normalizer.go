package normalize

import (
	"math"

	"github.com/redchoeng/stock-recommendation-3.0/internal/contracts"
	"github.com/redchoeng/stock-recommendation-3.0/internal/engineconfig"
)

// Normalizer maps RawSignals onto the common [-1,1] strength scale.
// 순수 함수: 숨은 상태 없음, 같은 입력은 항상 같은 출력
// ⭐ SSOT: 스케일 변환은 여기서만
type Normalizer struct {
	quant engineconfig.Quant
	macro engineconfig.Macro
	nlp   engineconfig.NLP
}

// New creates a Normalizer from strategy config.
func New(cfg *engineconfig.Config) *Normalizer {
	return &Normalizer{
		quant: cfg.Quant,
		macro: cfg.Macro,
		nlp:   cfg.NLP,
	}
}

// Normalize converts a RawSignal into a NormalizedSignal. A raw value
// outside its source's declared domain fails with InvalidRawSignalError;
// the caller treats that as "source unavailable this cycle".
func (n *Normalizer) Normalize(raw *contracts.RawSignal) (contracts.NormalizedSignal, error) {
	if raw == nil {
		return contracts.NormalizedSignal{}, &contracts.InvalidRawSignalError{Reason: "nil raw signal"}
	}

	switch raw.Kind {
	case contracts.SourceQuant:
		return n.normalizeQuant(raw)
	case contracts.SourceMacro:
		return n.normalizeMacro(raw)
	case contracts.SourceNLP:
		return n.normalizeNLP(raw)
	default:
		return contracts.NormalizedSignal{}, &contracts.InvalidRawSignalError{
			Kind:   raw.Kind,
			Ticker: raw.Ticker,
			Reason: "unknown source kind",
		}
	}
}

// clamp bounds v to [-1, 1].
func clamp(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}

// finite reports whether v is a usable number.
func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
