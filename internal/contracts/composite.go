package contracts

import "time"

// Contribution records how one source entered a composite score.
// The ordered list of contributions is the audit trail behind every
// recommendation.
type Contribution struct {
	Kind            SourceKind `json:"kind"`
	Strength        float64    `json:"strength"`
	Confidence      float64    `json:"confidence"`
	EffectiveWeight float64    `json:"effective_weight"` // regime-adjusted weight × confidence
}

// CompositeScore is the fused per-ticker score for one cycle.
// A re-run produces a new CompositeScore; prior ones are history.
type CompositeScore struct {
	Ticker     Ticker         `json:"ticker"`
	Value      float64        `json:"value"` // [-1, 1]
	Sources    []Contribution `json:"sources"`
	Regime     Regime         `json:"regime_at_computation"`
	ComputedAt time.Time      `json:"computed_at"`
}

// HasSource reports whether a given source contributed to the score.
func (c *CompositeScore) HasSource(kind SourceKind) bool {
	for _, s := range c.Sources {
		if s.Kind == kind {
			return true
		}
	}
	return false
}
