package contracts

import "time"

// SourceKind identifies one of the three signal engines.
// 폐쇄형 집합: 엔진은 3개로 고정 (plugin dispatch 금지)
type SourceKind string

const (
	SourceQuant SourceKind = "quant"
	SourceMacro SourceKind = "macro"
	SourceNLP   SourceKind = "nlp"
)

// Kinds lists all source kinds in fusion contribution order.
func Kinds() []SourceKind {
	return []SourceKind{SourceQuant, SourceMacro, SourceNLP}
}

// Ticker is an exchange symbol. Immutable once created.
type Ticker string

// RawSignal is the untranslated output of one signal engine for one ticker
// (Ticker is empty for the market-wide macro signal). Exactly one of the
// metric fields matching Kind is populated; the set of kinds is closed, so a
// tagged struct is used instead of an open interface.
type RawSignal struct {
	Kind       SourceKind `json:"kind"`
	Ticker     Ticker     `json:"ticker,omitempty"`
	ObservedAt time.Time  `json:"observed_at"`

	Quant *QuantMetrics `json:"quant,omitempty"`
	Macro *MacroMetrics `json:"macro,omitempty"`
	NLP   *NLPMetrics   `json:"nlp,omitempty"`
}

// QuantMetrics holds the raw sub-filter outputs of the quant engine.
// Each sub-filter is normalized independently before aggregation.
type QuantMetrics struct {
	// Surge: trade value vs rolling 1y average
	SurgeRatio1D float64 `json:"surge_ratio_1d"`
	SurgeRatio5D float64 `json:"surge_ratio_5d"`
	MarketCapB   float64 `json:"market_cap_b"` // billions USD, 0 = unknown

	// Peak warning: price near 52w high with trade value rolling over
	PricePctOfHigh float64 `json:"price_pct_of_high"` // current/52w-high
	TradeValueMA   float64 `json:"trade_value_ma"`    // MA(short)/MA(long)
	PeakWarning    bool    `json:"peak_warning"`

	// Neglect: sustained trade-value decline in a large cap
	NeglectSlope float64 `json:"neglect_slope"` // per-day slope, normalized start=1.0
	Neglected    bool    `json:"neglected"`

	// Bars actually backing the computation; drives confidence.
	BarsUsed int `json:"bars_used"`
}

// MacroComponent is one macro indicator together with its rolling
// distribution, so normalization can z-score without refetching history.
type MacroComponent struct {
	Value float64 `json:"value"`
	Mean  float64 `json:"mean"`
	Std   float64 `json:"std"`
	Valid bool    `json:"valid"`
}

// MacroMetrics holds the market-wide macro indicators.
type MacroMetrics struct {
	CPIChange          MacroComponent `json:"cpi_change"`          // MoM delta, pct points
	UnemploymentChange MacroComponent `json:"unemployment_change"` // MoM delta, pct points
	VIXLevel           MacroComponent `json:"vix_level"`
	YieldSpread        MacroComponent `json:"yield_spread"` // 10Y - 2Y

	// Context for alerts and hedge allocation, not used in normalization.
	VIXCurrent    float64 `json:"vix_current"`
	SP500Drawdown float64 `json:"sp500_drawdown"` // pct, negative when below 52w high
}

// NLP verdict categories returned by the language model.
const (
	VerdictSubstantiated = "SUBSTANTIATED" // substantiated growth
	VerdictNeutral       = "NEUTRAL"
	VerdictHype          = "HYPE" // fabricated / buzzword-driven
)

// NLPMetrics holds the parsed verdict of the language-model analysis.
type NLPMetrics struct {
	Verdict        string  `json:"verdict"`
	SubstanceScore float64 `json:"substance_score"` // 0..10
	BuzzScore      float64 `json:"buzz_score"`      // -10..0
	FilingType     string  `json:"filing_type"`
	// Parsed=false means the model output could not be decoded into the
	// expected structure; normalization falls back to lower confidence.
	Parsed bool `json:"parsed"`
}

// NormalizedSignal is a RawSignal mapped onto the common scale.
// Replaced every cycle, never mutated.
type NormalizedSignal struct {
	Kind       SourceKind `json:"kind"`
	Ticker     Ticker     `json:"ticker,omitempty"`
	Strength   float64    `json:"strength"`   // [-1, 1]
	Confidence float64    `json:"confidence"` // [0, 1]
	ObservedAt time.Time  `json:"observed_at"`
}

// InRange reports whether strength and confidence are inside their
// declared domains. Fusion rejects signals violating this.
func (s NormalizedSignal) InRange() bool {
	return s.Strength >= -1 && s.Strength <= 1 && s.Confidence >= 0 && s.Confidence <= 1
}
