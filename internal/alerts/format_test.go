package alerts

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/redchoeng/stock-recommendation-3.0/internal/contracts"
)

func TestFormatRecommendation(t *testing.T) {
	rec := &contracts.Recommendation{
		Ticker: "NVDA",
		Label:  contracts.LabelStrongBuy,
		Composite: contracts.CompositeScore{
			Ticker: "NVDA",
			Value:  0.74,
			Sources: []contracts.Contribution{
				{Kind: contracts.SourceQuant, Strength: 0.69, Confidence: 1, EffectiveWeight: 0.30},
				{Kind: contracts.SourceNLP, Strength: 0.91, Confidence: 0.8, EffectiveWeight: 0.40},
			},
			Regime:     contracts.RegimeNeutral,
			ComputedAt: time.Now(),
		},
	}

	msg := FormatRecommendation(rec)
	assert.Contains(t, msg, "NVDA")
	assert.Contains(t, msg, "STRONG_BUY")
	assert.Contains(t, msg, "0.74")
	assert.Contains(t, msg, "quant: strength +0.69")
	assert.Contains(t, msg, "nlp: strength +0.91")
	assert.NotContains(t, msg, "downgraded")
}

func TestFormatRecommendation_Downgraded(t *testing.T) {
	rec := &contracts.Recommendation{
		Ticker:     "TER",
		Label:      contracts.LabelBuy,
		Downgraded: true,
		Composite: contracts.CompositeScore{
			Value:  0.65,
			Regime: contracts.RegimeNeutral,
			Sources: []contracts.Contribution{
				{Kind: contracts.SourceQuant, Strength: 0.7, Confidence: 1, EffectiveWeight: 0.6},
			},
		},
	}

	msg := FormatRecommendation(rec)
	assert.Contains(t, msg, "downgraded from STRONG_BUY")
}

func TestFormatRegimeChange(t *testing.T) {
	alloc := &contracts.HedgeAllocation{
		DefenseRatio: 0.42,
		RiskScore:    0.85,
		Reasons:      []string{"macro strength -0.85", "VIX elevated at 34.0"},
		Sectors: map[string]contracts.SectorSlice{
			"utilities":        {Weight: 0.5, Tickers: []contracts.Ticker{"NEE", "DUK"}},
			"consumer_staples": {Weight: 0.5, Tickers: []contracts.Ticker{"PG"}},
		},
	}

	msg := FormatRegimeChange(contracts.RegimeNeutral, contracts.RegimeRiskOff, alloc)
	assert.Contains(t, msg, "NEUTRAL → RISK_OFF")
	assert.Contains(t, msg, "42%")
	assert.Contains(t, msg, "VIX elevated")
	assert.Contains(t, msg, "NEE, DUK")

	// Sectors render in sorted order for stable messages.
	assert.Less(t, strings.Index(msg, "consumer_staples"), strings.Index(msg, "utilities"))
}

func TestFormatRegimeChange_NoAllocation(t *testing.T) {
	msg := FormatRegimeChange(contracts.RegimeRiskOff, contracts.RegimeNeutral, nil)
	assert.Contains(t, msg, "RISK_OFF → NEUTRAL")
	assert.NotContains(t, msg, "Defensive")
}
