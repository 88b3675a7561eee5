package normalize

import (
	"github.com/redchoeng/stock-recommendation-3.0/internal/contracts"
)

// normalizeNLP anchors the strength on the model's categorical verdict and
// nudges it with the graded substance/buzz scores. When the model output
// could not be decoded (Parsed=false) the keyword scores still carry a
// weak signal, emitted at fallback confidence rather than dropped.
func (n *Normalizer) normalizeNLP(raw *contracts.RawSignal) (contracts.NormalizedSignal, error) {
	m := raw.NLP
	if m == nil {
		return contracts.NormalizedSignal{}, &contracts.InvalidRawSignalError{
			Kind:   contracts.SourceNLP,
			Ticker: raw.Ticker,
			Reason: "missing nlp metrics",
		}
	}
	if !finite(m.SubstanceScore) || !finite(m.BuzzScore) {
		return contracts.NormalizedSignal{}, &contracts.InvalidRawSignalError{
			Kind:   contracts.SourceNLP,
			Ticker: raw.Ticker,
			Reason: "non-finite analysis score",
		}
	}

	// substance 0..10, buzz -10..0: the sum lands in [-10,10].
	keyword := clamp((m.SubstanceScore + m.BuzzScore) / 10)

	anchor, known := verdictAnchor(m.Verdict)

	strength := keyword
	confidence := n.nlp.FallbackConfidence
	if m.Parsed && known {
		b := n.nlp.AnchorBlend
		strength = clamp(b*anchor + (1-b)*keyword)
		confidence = n.nlp.ParsedConfidence
	}

	return contracts.NormalizedSignal{
		Kind:       contracts.SourceNLP,
		Ticker:     raw.Ticker,
		Strength:   strength,
		Confidence: confidence,
		ObservedAt: raw.ObservedAt,
	}, nil
}

func verdictAnchor(verdict string) (float64, bool) {
	switch verdict {
	case contracts.VerdictSubstantiated:
		return 1, true
	case contracts.VerdictNeutral:
		return 0, true
	case contracts.VerdictHype:
		return -1, true
	default:
		return 0, false
	}
}
