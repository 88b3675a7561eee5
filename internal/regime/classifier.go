// Package regime classifies the market-wide macro strength into a risk
// regime and debounces transitions so one noisy print cannot whipsaw the
// fusion weights.
package regime

import (
	"sync"

	"github.com/redchoeng/stock-recommendation-3.0/internal/contracts"
	"github.com/redchoeng/stock-recommendation-3.0/internal/engineconfig"
)

// Decision is the outcome of one regime evaluation.
type Decision struct {
	Regime    contracts.Regime `json:"regime"`
	Previous  contracts.Regime `json:"previous"`
	Changed   bool             `json:"changed"`
	Emergency bool             `json:"emergency"` // circuit breaker fired, hysteresis bypassed

	// Pending transition state, for observability.
	Pending       contracts.Regime `json:"pending,omitempty"`
	PendingCycles int              `json:"pending_cycles,omitempty"`
}

// Classifier tracks the current regime across cycles.
// ⭐ SSOT: 레짐 전환은 여기서만 일어난다
type Classifier struct {
	mu  sync.Mutex
	cfg engineconfig.Regime

	current       contracts.Regime
	pending       contracts.Regime
	pendingCycles int
}

// NewClassifier starts in NEUTRAL. Restore() can re-seed state persisted
// from a previous run.
func NewClassifier(cfg engineconfig.Regime) *Classifier {
	return &Classifier{
		cfg:     cfg,
		current: contracts.RegimeNeutral,
	}
}

// Restore seeds the current regime, e.g. from the last stored snapshot on
// startup. Invalid regimes are ignored and NEUTRAL is kept.
func (c *Classifier) Restore(r contracts.Regime) {
	if !r.Valid() {
		return
	}
	c.mu.Lock()
	c.current = r
	c.pending = ""
	c.pendingCycles = 0
	c.mu.Unlock()
}

// Current returns the regime as of the last evaluation.
func (c *Classifier) Current() contracts.Regime {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Evaluate feeds one cycle's macro strength through the classifier.
//
// A strength below the emergency threshold flips to RISK_OFF immediately.
// Any other transition must be observed for confirm_cycles consecutive
// cycles before it takes effect; a cycle that reads differently resets
// the count.
func (c *Classifier) Evaluate(macroStrength float64) Decision {
	c.mu.Lock()
	defer c.mu.Unlock()

	prev := c.current

	if macroStrength < c.cfg.EmergencyBelow {
		c.current = contracts.RegimeRiskOff
		c.pending = ""
		c.pendingCycles = 0
		return Decision{
			Regime:    c.current,
			Previous:  prev,
			Changed:   prev != c.current,
			Emergency: true,
		}
	}

	target := c.classify(macroStrength)

	if target == c.current {
		c.pending = ""
		c.pendingCycles = 0
		return Decision{Regime: c.current, Previous: prev}
	}

	if target == c.pending {
		c.pendingCycles++
	} else {
		c.pending = target
		c.pendingCycles = 1
	}

	if c.pendingCycles >= c.cfg.ConfirmCycles {
		c.current = target
		c.pending = ""
		c.pendingCycles = 0
		return Decision{Regime: c.current, Previous: prev, Changed: true}
	}

	return Decision{
		Regime:        c.current,
		Previous:      prev,
		Pending:       c.pending,
		PendingCycles: c.pendingCycles,
	}
}

func (c *Classifier) classify(strength float64) contracts.Regime {
	switch {
	case strength > c.cfg.RiskOnAbove:
		return contracts.RegimeRiskOn
	case strength < c.cfg.RiskOffBelow:
		return contracts.RegimeRiskOff
	default:
		return contracts.RegimeNeutral
	}
}
