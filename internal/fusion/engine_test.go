package fusion

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redchoeng/stock-recommendation-3.0/internal/contracts"
	"github.com/redchoeng/stock-recommendation-3.0/internal/engineconfig"
)

func newTestEngine() *Engine {
	return NewEngine(engineconfig.Default().Fusion)
}

func sig(kind contracts.SourceKind, strength, confidence float64) contracts.NormalizedSignal {
	return contracts.NormalizedSignal{
		Kind:       kind,
		Ticker:     "NVDA",
		Strength:   strength,
		Confidence: confidence,
		ObservedAt: time.Now(),
	}
}

func TestFuse_WeightConservation(t *testing.T) {
	e := newTestEngine()

	// All sources agreeing at full confidence passes through exactly.
	for _, regime := range []contracts.Regime{contracts.RegimeRiskOn, contracts.RegimeNeutral, contracts.RegimeRiskOff} {
		score, err := e.Fuse("NVDA", regime, []contracts.NormalizedSignal{
			sig(contracts.SourceQuant, 1, 1),
			sig(contracts.SourceMacro, 1, 1),
			sig(contracts.SourceNLP, 1, 1),
		})
		require.NoError(t, err)
		assert.InDelta(t, 1.0, score.Value, 1e-9, "regime=%s", regime)
	}
}

func TestFuse_SingleSourcePassthrough(t *testing.T) {
	e := newTestEngine()

	score, err := e.Fuse("NVDA", contracts.RegimeNeutral, []contracts.NormalizedSignal{
		sig(contracts.SourceMacro, -0.42, 1.0),
	})
	require.NoError(t, err)
	assert.InDelta(t, -0.42, score.Value, 1e-9)
	require.Len(t, score.Sources, 1)
	assert.Equal(t, contracts.SourceMacro, score.Sources[0].Kind)
}

func TestFuse_ConfidenceDiscountsWeight(t *testing.T) {
	e := newTestEngine()

	// Quant at half confidence: its share shrinks relative to NLP.
	score, err := e.Fuse("NVDA", contracts.RegimeNeutral, []contracts.NormalizedSignal{
		sig(contracts.SourceQuant, 1.0, 0.5),  // ew 0.15
		sig(contracts.SourceNLP, -1.0, 1.0),   // ew 0.50
	})
	require.NoError(t, err)
	// (0.15 - 0.50) / 0.65
	assert.InDelta(t, -0.53846, score.Value, 1e-4)
}

func TestFuse_RiskOffShiftsQuantToMacro(t *testing.T) {
	e := newTestEngine()

	signals := []contracts.NormalizedSignal{
		sig(contracts.SourceQuant, 1.0, 1.0),
		sig(contracts.SourceMacro, -1.0, 1.0),
	}

	neutral, err := e.Fuse("NVDA", contracts.RegimeNeutral, signals)
	require.NoError(t, err)
	// (0.30 - 0.20) / 0.50
	assert.InDelta(t, 0.2, neutral.Value, 1e-9)

	riskOff, err := e.Fuse("NVDA", contracts.RegimeRiskOff, signals)
	require.NoError(t, err)
	// (0.15 - 0.35) / 0.50
	assert.InDelta(t, -0.4, riskOff.Value, 1e-9)
	assert.Equal(t, contracts.RegimeRiskOff, riskOff.Regime)
}

func TestFuse_RiskOffWithoutNLP(t *testing.T) {
	e := newTestEngine()

	score, err := e.Fuse("NVDA", contracts.RegimeRiskOff, []contracts.NormalizedSignal{
		sig(contracts.SourceQuant, -0.8, 0.9),
		sig(contracts.SourceMacro, -0.6, 1.0),
	})
	require.NoError(t, err)

	// ew_q=0.15*0.9=0.135, ew_m=0.35: (-0.108-0.21)/0.485
	assert.InDelta(t, -0.65567, score.Value, 1e-4)
	assert.False(t, score.HasSource(contracts.SourceNLP))
}

func TestFuse_ZeroConfidenceIsAbsence(t *testing.T) {
	e := newTestEngine()

	score, err := e.Fuse("NVDA", contracts.RegimeNeutral, []contracts.NormalizedSignal{
		sig(contracts.SourceQuant, 1.0, 0),
		sig(contracts.SourceMacro, 0.5, 1.0),
	})
	require.NoError(t, err)
	assert.InDelta(t, 0.5, score.Value, 1e-9)
	assert.False(t, score.HasSource(contracts.SourceQuant))
}

func TestFuse_InsufficientSignal(t *testing.T) {
	e := newTestEngine()

	_, err := e.Fuse("NVDA", contracts.RegimeNeutral, nil)
	var insufficient *contracts.InsufficientSignalError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, contracts.Ticker("NVDA"), insufficient.Ticker)

	_, err = e.Fuse("NVDA", contracts.RegimeNeutral, []contracts.NormalizedSignal{
		sig(contracts.SourceQuant, 1.0, 0),
	})
	require.ErrorAs(t, err, &insufficient)
}

func TestFuse_RejectsOutOfRange(t *testing.T) {
	e := newTestEngine()

	_, err := e.Fuse("NVDA", contracts.RegimeNeutral, []contracts.NormalizedSignal{
		sig(contracts.SourceQuant, 1.5, 1.0),
	})
	var oor *contracts.OutOfRangeError
	require.ErrorAs(t, err, &oor)
	assert.Equal(t, contracts.SourceQuant, oor.Kind)

	_, err = e.Fuse("NVDA", contracts.RegimeNeutral, []contracts.NormalizedSignal{
		sig(contracts.SourceNLP, 0.5, -0.1),
	})
	require.ErrorAs(t, err, &oor)
}

func TestFuse_ContributionsOrderedByKind(t *testing.T) {
	e := newTestEngine()

	score, err := e.Fuse("NVDA", contracts.RegimeNeutral, []contracts.NormalizedSignal{
		sig(contracts.SourceNLP, 0.1, 1),
		sig(contracts.SourceQuant, 0.2, 1),
		sig(contracts.SourceMacro, 0.3, 1),
	})
	require.NoError(t, err)
	require.Len(t, score.Sources, 3)
	assert.Equal(t, contracts.SourceQuant, score.Sources[0].Kind)
	assert.Equal(t, contracts.SourceMacro, score.Sources[1].Kind)
	assert.Equal(t, contracts.SourceNLP, score.Sources[2].Kind)
}
