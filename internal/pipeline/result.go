package pipeline

import (
	"time"

	"github.com/redchoeng/stock-recommendation-3.0/internal/contracts"
)

// State is the orchestrator's position in the per-cycle state machine.
type State string

const (
	StateIdle        State = "IDLE"
	StateFetching    State = "FETCHING"
	StateNormalizing State = "NORMALIZING"
	StateFusing      State = "FUSING"
	StateClassifying State = "CLASSIFYING"
	StateEmitting    State = "EMITTING"
)

// CycleResult summarizes one full discovery cycle.
type CycleResult struct {
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	Regime        contracts.Regime `json:"regime"`
	RegimeChanged bool             `json:"regime_changed"`
	Emergency     bool             `json:"emergency"`

	// ConfigHash identifies the tunable set this cycle ran under.
	ConfigHash string `json:"config_hash"`

	Recommendations []contracts.Recommendation `json:"recommendations"`

	// Skipped maps a ticker to the reason it produced no recommendation.
	Skipped map[contracts.Ticker]string `json:"skipped,omitempty"`

	// SourceFailures counts fetch/normalize failures per source this cycle.
	SourceFailures map[contracts.SourceKind]int `json:"source_failures,omitempty"`

	// Hedge is set when the cycle ran in RISK_OFF.
	Hedge *contracts.HedgeAllocation `json:"hedge,omitempty"`
}

// Labeled returns the recommendations carrying the given label.
func (r *CycleResult) Labeled(label contracts.Label) []contracts.Recommendation {
	var out []contracts.Recommendation
	for _, rec := range r.Recommendations {
		if rec.Label == label {
			out = append(out, rec)
		}
	}
	return out
}
