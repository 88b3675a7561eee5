package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redchoeng/stock-recommendation-3.0/internal/contracts"
	"github.com/redchoeng/stock-recommendation-3.0/internal/engineconfig"
	"github.com/redchoeng/stock-recommendation-3.0/pkg/logger"
)

type fakeQuant struct {
	mu       sync.Mutex
	calls    int
	byTicker map[contracts.Ticker]*contracts.QuantMetrics
	err      error
}

func (f *fakeQuant) FetchQuant(_ context.Context, ticker contracts.Ticker) (*contracts.RawSignal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	m, ok := f.byTicker[ticker]
	if !ok {
		return nil, contracts.ErrUnavailable
	}
	return &contracts.RawSignal{
		Kind: contracts.SourceQuant, Ticker: ticker, ObservedAt: time.Now(), Quant: m,
	}, nil
}

type fakeMacro struct {
	mu      sync.Mutex
	calls   int
	metrics *contracts.MacroMetrics
	err     error
}

func (f *fakeMacro) FetchMacro(_ context.Context) (*contracts.RawSignal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &contracts.RawSignal{
		Kind: contracts.SourceMacro, ObservedAt: time.Now(), Macro: f.metrics,
	}, nil
}

type fakeNLP struct {
	mu       sync.Mutex
	calls    int
	byTicker map[contracts.Ticker]*contracts.NLPMetrics
	err      error
}

func (f *fakeNLP) AnalyzeEntity(_ context.Context, ticker contracts.Ticker) (*contracts.RawSignal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	m, ok := f.byTicker[ticker]
	if !ok {
		return nil, contracts.ErrUnavailable
	}
	return &contracts.RawSignal{
		Kind: contracts.SourceNLP, Ticker: ticker, ObservedAt: time.Now(), NLP: m,
	}, nil
}

type fakeStorage struct {
	mu        sync.Mutex
	persisted []contracts.Recommendation
	err       error
}

func (f *fakeStorage) Persist(_ context.Context, rec *contracts.Recommendation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.persisted = append(f.persisted, *rec)
	return nil
}

type fakeSnapshots struct {
	mu     sync.Mutex
	macros int
	scans  int
	nlps   int
}

func (f *fakeSnapshots) SaveMacroSnapshot(_ context.Context, _ *contracts.RawSignal, _ contracts.Regime, _ float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.macros++
	return nil
}

func (f *fakeSnapshots) SaveScanResult(_ context.Context, _ *contracts.RawSignal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scans++
	return nil
}

func (f *fakeSnapshots) SaveNLPAnalysis(_ context.Context, _ *contracts.RawSignal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nlps++
	return nil
}

type fakeAlerts struct {
	mu            sync.Mutex
	notified      []contracts.Recommendation
	regimeChanges []contracts.Regime
	lastHedge     *contracts.HedgeAllocation
}

func (f *fakeAlerts) Notify(_ context.Context, rec *contracts.Recommendation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notified = append(f.notified, *rec)
	return nil
}

func (f *fakeAlerts) NotifyRegimeChange(_ context.Context, _, to contracts.Regime, alloc *contracts.HedgeAllocation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.regimeChanges = append(f.regimeChanges, to)
	f.lastHedge = alloc
	return nil
}

// benignMacro normalizes to strength +0.5: every component sits 1.5 sigma
// on its favorable side.
func benignMacro() *contracts.MacroMetrics {
	comp := func(v, mean, std float64) contracts.MacroComponent {
		return contracts.MacroComponent{Value: v, Mean: mean, Std: std, Valid: true}
	}
	return &contracts.MacroMetrics{
		CPIChange:          comp(-0.4, 0.2, 0.4),
		UnemploymentChange: comp(-0.45, 0.0, 0.3),
		VIXLevel:           comp(3, 18, 10),
		YieldSpread:        comp(2.0, 0.5, 1.0),
		VIXCurrent:         12,
	}
}

func stressedMacro() *contracts.MacroMetrics {
	comp := func(v, mean, std float64) contracts.MacroComponent {
		return contracts.MacroComponent{Value: v, Mean: mean, Std: std, Valid: true}
	}
	return &contracts.MacroMetrics{
		CPIChange:          comp(1.5, 0.2, 0.4),
		UnemploymentChange: comp(1.0, 0.0, 0.3),
		VIXLevel:           comp(55, 18, 10),
		YieldSpread:        comp(-2.5, 0.5, 1.0),
		VIXCurrent:         55,
		SP500Drawdown:      -18,
	}
}

// strongQuant normalizes to strength ~0.69: saturated surge plus a deep
// neglect flag.
func strongQuant() *contracts.QuantMetrics {
	return &contracts.QuantMetrics{
		SurgeRatio5D: 8.0,
		NeglectSlope: -0.04,
		Neglected:    true,
		BarsUsed:     252,
	}
}

func substantiatedNLP() *contracts.NLPMetrics {
	return &contracts.NLPMetrics{
		Verdict: contracts.VerdictSubstantiated, SubstanceScore: 9, BuzzScore: -1, Parsed: true,
	}
}

type deps struct {
	quant   *fakeQuant
	macro   *fakeMacro
	nlp     *fakeNLP
	storage *fakeStorage
	alerts  *fakeAlerts
	orch    *Orchestrator
}

func newTestOrchestrator(t *testing.T, mutate func(*engineconfig.Config)) *deps {
	t.Helper()
	cfg := engineconfig.Default()
	if mutate != nil {
		mutate(cfg)
	}
	require.NoError(t, engineconfig.Validate(cfg))

	d := &deps{
		quant:   &fakeQuant{byTicker: map[contracts.Ticker]*contracts.QuantMetrics{}},
		macro:   &fakeMacro{metrics: benignMacro()},
		nlp:     &fakeNLP{byTicker: map[contracts.Ticker]*contracts.NLPMetrics{}},
		storage: &fakeStorage{},
		alerts:  &fakeAlerts{},
	}
	d.orch = NewOrchestrator(Deps{
		Logger:  logger.NewNop(),
		Config:  cfg,
		Quant:   d.quant,
		Macro:   d.macro,
		NLP:     d.nlp,
		Storage: d.storage,
		Alerts:  d.alerts,
	})
	return d
}

func TestRun_HappyPath(t *testing.T) {
	d := newTestOrchestrator(t, nil)
	d.quant.byTicker["NVDA"] = strongQuant()
	d.nlp.byTicker["NVDA"] = substantiatedNLP()

	result, err := d.orch.Run(context.Background(), []contracts.Ticker{"NVDA"})
	require.NoError(t, err)

	require.Len(t, result.Recommendations, 1)
	rec := result.Recommendations[0]
	assert.Equal(t, contracts.Ticker("NVDA"), rec.Ticker)
	assert.Equal(t, contracts.LabelStrongBuy, rec.Label)
	assert.False(t, rec.Downgraded)
	assert.True(t, rec.Composite.HasSource(contracts.SourceQuant))
	assert.True(t, rec.Composite.HasSource(contracts.SourceMacro))
	assert.True(t, rec.Composite.HasSource(contracts.SourceNLP))

	// Persisted and, being STRONG_BUY, alerted.
	require.Len(t, d.storage.persisted, 1)
	require.Len(t, d.alerts.notified, 1)
	assert.Empty(t, result.Skipped)
	assert.Equal(t, contracts.RegimeNeutral, result.Regime)
	assert.Equal(t, StateIdle, d.orch.State())
}

func TestRun_GuardrailWithoutNLP(t *testing.T) {
	d := newTestOrchestrator(t, nil)
	d.quant.byTicker["NVDA"] = strongQuant()
	d.nlp.err = contracts.ErrUnavailable

	result, err := d.orch.Run(context.Background(), []contracts.Ticker{"NVDA"})
	require.NoError(t, err)

	require.Len(t, result.Recommendations, 1)
	rec := result.Recommendations[0]
	assert.Equal(t, contracts.LabelBuy, rec.Label)
	assert.True(t, rec.Downgraded)
	assert.Empty(t, d.alerts.notified, "BUY is not alertable")
	assert.Equal(t, 1, result.SourceFailures[contracts.SourceNLP])
}

func TestRun_PartialTickerFailureContinues(t *testing.T) {
	d := newTestOrchestrator(t, nil)
	d.macro.err = contracts.ErrUnavailable
	d.nlp.err = contracts.ErrUnavailable
	d.quant.byTicker["NVDA"] = strongQuant() // AMD has no quant data either

	result, err := d.orch.Run(context.Background(), []contracts.Ticker{"NVDA", "AMD"})
	require.NoError(t, err)

	require.Len(t, result.Recommendations, 1)
	assert.Equal(t, contracts.Ticker("NVDA"), result.Recommendations[0].Ticker)

	reason, skipped := result.Skipped["AMD"]
	require.True(t, skipped, "AMD must be a recorded skip, not a recommendation")
	assert.Contains(t, reason, "insufficient signal")
}

func TestRun_AllSourcesFail(t *testing.T) {
	d := newTestOrchestrator(t, nil)
	d.quant.err = contracts.ErrUnavailable
	d.macro.err = contracts.ErrUnavailable
	d.nlp.err = errors.New("model timed out")

	result, err := d.orch.Run(context.Background(), []contracts.Ticker{"NVDA"})
	require.ErrorIs(t, err, contracts.ErrNoSignalAvailable)
	assert.Empty(t, result.Recommendations)
	assert.Empty(t, d.storage.persisted)
}

func TestRun_EmergencyRiskOffWithHedge(t *testing.T) {
	d := newTestOrchestrator(t, nil)
	d.macro.metrics = stressedMacro()
	d.quant.byTicker["NVDA"] = strongQuant()

	result, err := d.orch.Run(context.Background(), []contracts.Ticker{"NVDA"})
	require.NoError(t, err)

	assert.Equal(t, contracts.RegimeRiskOff, result.Regime)
	assert.True(t, result.RegimeChanged)
	assert.True(t, result.Emergency)
	require.NotNil(t, result.Hedge)
	assert.Greater(t, result.Hedge.DefenseRatio, 0.3)

	require.Len(t, d.alerts.regimeChanges, 1)
	assert.Equal(t, contracts.RegimeRiskOff, d.alerts.regimeChanges[0])
	assert.NotNil(t, d.alerts.lastHedge)
}

func TestRun_RegimeCarriesOverWithoutMacro(t *testing.T) {
	d := newTestOrchestrator(t, nil)
	d.macro.metrics = stressedMacro()
	d.quant.byTicker["NVDA"] = strongQuant()

	_, err := d.orch.Run(context.Background(), []contracts.Ticker{"NVDA"})
	require.NoError(t, err)
	require.Equal(t, contracts.RegimeRiskOff, d.orch.Regime())

	// Macro dark next cycle: regime stays where it was, no new transition.
	d.macro.err = contracts.ErrUnavailable
	d.orch.macroCache = cachedRaw{} // expire the cadence cache for the test
	result, err := d.orch.Run(context.Background(), []contracts.Ticker{"NVDA"})
	require.NoError(t, err)
	assert.Equal(t, contracts.RegimeRiskOff, result.Regime)
	assert.False(t, result.RegimeChanged)
	require.Len(t, d.alerts.regimeChanges, 1)
}

func TestRun_CadenceServesFromCache(t *testing.T) {
	d := newTestOrchestrator(t, nil)
	d.quant.byTicker["NVDA"] = strongQuant()
	d.nlp.byTicker["NVDA"] = substantiatedNLP()

	_, err := d.orch.Run(context.Background(), []contracts.Ticker{"NVDA"})
	require.NoError(t, err)
	_, err = d.orch.Run(context.Background(), []contracts.Ticker{"NVDA"})
	require.NoError(t, err)

	// All refresh windows are hours long: the second cycle must not
	// touch any provider.
	assert.Equal(t, 1, d.quant.calls)
	assert.Equal(t, 1, d.macro.calls)
	assert.Equal(t, 1, d.nlp.calls)
}

func TestRun_FailedFetchIsNotCached(t *testing.T) {
	d := newTestOrchestrator(t, nil)
	d.quant.err = contracts.ErrUnavailable
	d.nlp.byTicker["NVDA"] = substantiatedNLP()

	_, err := d.orch.Run(context.Background(), []contracts.Ticker{"NVDA"})
	require.NoError(t, err)

	// A failed source waits for its next cycle, then refetches.
	d.quant.err = nil
	d.quant.byTicker["NVDA"] = strongQuant()
	result, err := d.orch.Run(context.Background(), []contracts.Ticker{"NVDA"})
	require.NoError(t, err)

	assert.Equal(t, 2, d.quant.calls)
	assert.True(t, result.Recommendations[0].Composite.HasSource(contracts.SourceQuant))
}

type storageFunc func(ctx context.Context, rec *contracts.Recommendation) error

func (f storageFunc) Persist(ctx context.Context, rec *contracts.Recommendation) error {
	return f(ctx, rec)
}

func TestRun_PhasesAdvanceStateMachine(t *testing.T) {
	d := newTestOrchestrator(t, nil)
	d.quant.byTicker["NVDA"] = strongQuant()
	d.nlp.byTicker["NVDA"] = substantiatedNLP()

	// Persist runs in the emit pass, after fuse and classify completed.
	var during []State
	d.orch.storage = storageFunc(func(context.Context, *contracts.Recommendation) error {
		during = append(during, d.orch.State())
		return nil
	})

	_, err := d.orch.Run(context.Background(), []contracts.Ticker{"NVDA"})
	require.NoError(t, err)

	require.Len(t, during, 1)
	assert.Equal(t, StateEmitting, during[0])
	assert.Equal(t, StateIdle, d.orch.State())
}

func TestRun_SnapshotsFreshFetchesOnly(t *testing.T) {
	d := newTestOrchestrator(t, nil)
	d.quant.byTicker["NVDA"] = strongQuant()
	d.nlp.byTicker["NVDA"] = substantiatedNLP()

	snaps := &fakeSnapshots{}
	d.orch.snapshots = snaps

	result, err := d.orch.Run(context.Background(), []contracts.Ticker{"NVDA"})
	require.NoError(t, err)
	assert.NotEmpty(t, result.ConfigHash)
	assert.Equal(t, 1, snaps.macros)
	assert.Equal(t, 1, snaps.scans)
	assert.Equal(t, 1, snaps.nlps)

	// Cache hits the second cycle: nothing new to record.
	_, err = d.orch.Run(context.Background(), []contracts.Ticker{"NVDA"})
	require.NoError(t, err)
	assert.Equal(t, 1, snaps.scans)
	assert.Equal(t, 1, snaps.nlps)
}

func TestRun_StorageFailureDoesNotDropRecommendation(t *testing.T) {
	d := newTestOrchestrator(t, nil)
	d.quant.byTicker["NVDA"] = strongQuant()
	d.nlp.byTicker["NVDA"] = substantiatedNLP()
	d.storage.err = contracts.ErrUnavailable

	result, err := d.orch.Run(context.Background(), []contracts.Ticker{"NVDA"})
	require.NoError(t, err)
	require.Len(t, result.Recommendations, 1)
	require.Len(t, d.alerts.notified, 1, "alerting proceeds despite storage failure")
}
