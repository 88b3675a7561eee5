package engineconfig

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Config는 시그널 엔진 전략 튜너블의 전체 설정.
// 알고리즘 상수가 아니라 설정임: 곡선 모양, 히스테리시스 주기 등은 여기서 조정.
type Config struct {
	Meta     Meta     `yaml:"meta" json:"meta"`
	Quant    Quant    `yaml:"quant" json:"quant"`
	Macro    Macro    `yaml:"macro" json:"macro"`
	NLP      NLP      `yaml:"nlp" json:"nlp"`
	Regime   Regime   `yaml:"regime" json:"regime"`
	Fusion   Fusion   `yaml:"fusion" json:"fusion"`
	Classify Classify `yaml:"classify" json:"classify"`
	Cadence  Cadence  `yaml:"cadence" json:"cadence"`
	Hedge    Hedge    `yaml:"hedge" json:"hedge"`
}

// Meta 메타 정보
type Meta struct {
	StrategyID string `yaml:"strategy_id" json:"strategy_id"`
	Version    string `yaml:"version" json:"version"`
}

// Quant holds Engine 1 sub-filter tunables.
type Quant struct {
	Surge      Surge      `yaml:"surge" json:"surge"`
	Peak       Peak       `yaml:"peak" json:"peak"`
	Neglect    Neglect    `yaml:"neglect" json:"neglect"`
	SubWeights SubWeights `yaml:"sub_weights" json:"sub_weights"`
}

// Surge: 거래대금 폭증 감지
type Surge struct {
	AvgPeriodDays  int     `yaml:"avg_period_days" json:"avg_period_days"`   // rolling average window
	Multiplier     float64 `yaml:"multiplier" json:"multiplier"`             // baseline ratio, maps to strength ~0
	CurveScale     float64 `yaml:"curve_scale" json:"curve_scale"`           // tanh steepness
	MinMarketCapB  float64 `yaml:"min_market_cap_b" json:"min_market_cap_b"` // billions USD
}

// Peak: 고점 경고 (52주 고점 부근 + 거래대금 데드크로스)
type Peak struct {
	HighThreshold float64 `yaml:"high_threshold" json:"high_threshold"` // pct of 52w high
	MAShort       int     `yaml:"ma_short" json:"ma_short"`
	MALong        int     `yaml:"ma_long" json:"ma_long"`
	RiskRatio     float64 `yaml:"risk_ratio" json:"risk_ratio"` // MA ratio below this = HIGH_RISK
}

// Neglect: 소외주 감지 (거래대금 하락 추세)
type Neglect struct {
	WindowDays     int     `yaml:"window_days" json:"window_days"`
	SlopeThreshold float64 `yaml:"slope_threshold" json:"slope_threshold"` // per-day, negative
}

// SubWeights blends quant sub-filter strengths into one quant strength.
type SubWeights struct {
	Surge   float64 `yaml:"surge" json:"surge"`
	Peak    float64 `yaml:"peak" json:"peak"`
	Neglect float64 `yaml:"neglect" json:"neglect"`
}

// Macro holds Engine 2 normalization tunables.
type Macro struct {
	RollingWindow int              `yaml:"rolling_window" json:"rolling_window"` // observations for z-score distribution
	ZScoreClip    float64          `yaml:"zscore_clip" json:"zscore_clip"`
	Components    ComponentWeights `yaml:"components" json:"components"`
}

// ComponentWeights weights the four macro components in the composite
// macro strength.
type ComponentWeights struct {
	CPI          float64 `yaml:"cpi" json:"cpi"`
	Unemployment float64 `yaml:"unemployment" json:"unemployment"`
	VIX          float64 `yaml:"vix" json:"vix"`
	YieldCurve   float64 `yaml:"yield_curve" json:"yield_curve"`
}

// NLP holds Engine 3 normalization tunables.
type NLP struct {
	AnchorBlend        float64 `yaml:"anchor_blend" json:"anchor_blend"`               // verdict anchor share vs keyword score
	ParsedConfidence   float64 `yaml:"parsed_confidence" json:"parsed_confidence"`     // confidence when verdict parsed cleanly
	FallbackConfidence float64 `yaml:"fallback_confidence" json:"fallback_confidence"` // confidence when output was malformed
}

// Regime holds classifier thresholds and the hysteresis tunables.
type Regime struct {
	RiskOnAbove    float64 `yaml:"risk_on_above" json:"risk_on_above"`
	RiskOffBelow   float64 `yaml:"risk_off_below" json:"risk_off_below"`
	EmergencyBelow float64 `yaml:"emergency_below" json:"emergency_below"` // circuit breaker, immediate RISK_OFF
	ConfirmCycles  int     `yaml:"confirm_cycles" json:"confirm_cycles"`   // consecutive cycles before a flip
}

// Fusion holds base weights and the regime adjustment.
type Fusion struct {
	BaseWeights  BaseWeights `yaml:"base_weights" json:"base_weights"`
	RiskOffShift float64     `yaml:"risk_off_shift" json:"risk_off_shift"` // moved Quant→Macro in RISK_OFF
}

// BaseWeights are the per-source fusion weights. Must sum to 1.0.
type BaseWeights struct {
	Quant float64 `yaml:"quant" json:"quant"`
	Macro float64 `yaml:"macro" json:"macro"`
	NLP   float64 `yaml:"nlp" json:"nlp"`
}

// Classify holds the recommendation threshold ladder. Bands are closed on
// their lower bound.
type Classify struct {
	StrongBuy float64 `yaml:"strong_buy" json:"strong_buy"`
	Buy       float64 `yaml:"buy" json:"buy"`
	HoldAbove float64 `yaml:"hold_above" json:"hold_above"`
	SellAbove float64 `yaml:"sell_above" json:"sell_above"`
}

// Cadence holds per-source refresh windows and fetch timeouts.
type Cadence struct {
	QuantRefresh Duration `yaml:"quant_refresh" json:"quant_refresh"`
	MacroRefresh Duration `yaml:"macro_refresh" json:"macro_refresh"`
	NLPRefresh   Duration `yaml:"nlp_refresh" json:"nlp_refresh"`
	FetchTimeout Duration `yaml:"fetch_timeout" json:"fetch_timeout"`
	NLPTimeout   Duration `yaml:"nlp_timeout" json:"nlp_timeout"` // LLM 호출은 별도 예산
}

// Duration wraps time.Duration so YAML accepts "1h" style strings.
type Duration time.Duration

// UnmarshalYAML parses a Go duration string.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Hedge holds defensive allocation tunables.
type Hedge struct {
	BaseDefenseRatio float64             `yaml:"base_defense_ratio" json:"base_defense_ratio"`
	MaxDefenseRatio  float64             `yaml:"max_defense_ratio" json:"max_defense_ratio"`
	Sectors          map[string][]string `yaml:"sectors" json:"sectors"`
	// SectorWeights are the calm-market base weights; the allocator tilts
	// them by VIX and drawdown. Empty means equal weights.
	SectorWeights map[string]float64 `yaml:"sector_weights" json:"sector_weights"`
}
