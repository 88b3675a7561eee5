package contracts

import "time"

// Label is the discrete recommendation emitted for a ticker.
type Label string

const (
	LabelStrongBuy Label = "STRONG_BUY"
	LabelBuy       Label = "BUY"
	LabelHold      Label = "HOLD"
	LabelSell      Label = "SELL"
	LabelAvoid     Label = "AVOID"
)

// Alertable reports whether this label warrants immediate notification.
// 알림은 양 극단만: STRONG_BUY / AVOID
func (l Label) Alertable() bool {
	return l == LabelStrongBuy || l == LabelAvoid
}

// Recommendation is the terminal, immutable output of one cycle for one
// ticker. Rationale preserves the ordered per-source breakdown.
type Recommendation struct {
	Ticker    Ticker         `json:"ticker"`
	Label     Label          `json:"label"`
	Composite CompositeScore `json:"composite"`
	// Downgraded is set when the guardrail demoted STRONG_BUY because the
	// NLP source did not contribute this cycle.
	Downgraded bool      `json:"downgraded,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// HedgeAllocation is the defensive portfolio suggestion attached to cycles
// that run in RISK_OFF.
type HedgeAllocation struct {
	DefenseRatio float64                `json:"defense_ratio"` // share of portfolio moved defensive
	RiskScore    float64                `json:"risk_score"`
	Reasons      []string               `json:"reasons"`
	Sectors      map[string]SectorSlice `json:"sectors"`
}

// SectorSlice is one defensive sector with its weight and candidate tickers.
type SectorSlice struct {
	Weight  float64  `json:"weight"`
	Tickers []Ticker `json:"tickers"`
}
