// Package pipeline runs the discovery cycle: fetch raw signals from the
// three engines, normalize, evaluate the regime, fuse per ticker, classify
// and emit.
package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/redchoeng/stock-recommendation-3.0/internal/classify"
	"github.com/redchoeng/stock-recommendation-3.0/internal/contracts"
	"github.com/redchoeng/stock-recommendation-3.0/internal/engineconfig"
	"github.com/redchoeng/stock-recommendation-3.0/internal/fusion"
	"github.com/redchoeng/stock-recommendation-3.0/internal/hedge"
	"github.com/redchoeng/stock-recommendation-3.0/internal/normalize"
	"github.com/redchoeng/stock-recommendation-3.0/internal/regime"
	"github.com/redchoeng/stock-recommendation-3.0/pkg/logger"
)

// fetchConcurrency bounds simultaneous per-ticker fetches. The NLP
// provider serializes internally behind the local model anyway.
const fetchConcurrency = 8

// Orchestrator owns one cycle at a time. A mutex serializes Run: the
// regime is written once per cycle and read-only within it.
type Orchestrator struct {
	mu sync.Mutex

	log        *logger.Logger
	cadence    engineconfig.Cadence
	configHash string
	normalizer *normalize.Normalizer
	regimes    *regime.Classifier
	fuser      *fusion.Engine
	classifier *classify.Classifier
	hedger     *hedge.Allocator

	quant contracts.QuantProvider
	macro contracts.MacroProvider
	nlp   contracts.NLPProvider

	storage   contracts.StoragePort
	snapshots contracts.SnapshotStore // optional
	alerts    contracts.AlertPort     // optional

	// state has its own lock so status endpoints can read it while a
	// cycle holds mu.
	stateMu sync.RWMutex
	state   State

	// Cadence cache: a source whose last successful fetch is still inside
	// its refresh window is served from here instead of refetched.
	macroCache cachedRaw
	quantCache map[contracts.Ticker]cachedRaw
	nlpCache   map[contracts.Ticker]cachedRaw
}

type cachedRaw struct {
	raw *contracts.RawSignal
	at  time.Time
}

// Deps wires the orchestrator's collaborators. Snapshots and Alerts may
// be nil.
type Deps struct {
	Logger *logger.Logger
	Config *engineconfig.Config

	Quant contracts.QuantProvider
	Macro contracts.MacroProvider
	NLP   contracts.NLPProvider

	Storage   contracts.StoragePort
	Snapshots contracts.SnapshotStore
	Alerts    contracts.AlertPort
}

func NewOrchestrator(d Deps) *Orchestrator {
	// Hash failures never block a cycle; the hash is audit metadata only.
	configHash, err := engineconfig.Hash(d.Config)
	if err != nil {
		d.Logger.WithError(err).Warn("engine config hash failed")
	}

	return &Orchestrator{
		log:        d.Logger,
		cadence:    d.Config.Cadence,
		configHash: configHash,
		normalizer: normalize.New(d.Config),
		regimes:    regime.NewClassifier(d.Config.Regime),
		fuser:      fusion.NewEngine(d.Config.Fusion),
		classifier: classify.NewClassifier(d.Config.Classify),
		hedger:     hedge.NewAllocator(d.Config.Hedge),
		quant:      d.Quant,
		macro:      d.Macro,
		nlp:        d.NLP,
		storage:    d.Storage,
		snapshots:  d.Snapshots,
		alerts:     d.Alerts,
		state:      StateIdle,
		quantCache: make(map[contracts.Ticker]cachedRaw),
		nlpCache:   make(map[contracts.Ticker]cachedRaw),
	}
}

// Regime returns the regime as of the last completed evaluation.
func (o *Orchestrator) Regime() contracts.Regime {
	return o.regimes.Current()
}

// State reports the current cycle phase, IDLE between runs.
func (o *Orchestrator) State() State {
	o.stateMu.RLock()
	defer o.stateMu.RUnlock()
	return o.state
}

func (o *Orchestrator) setState(s State) {
	o.stateMu.Lock()
	o.state = s
	o.stateMu.Unlock()
}

// RestoreRegime seeds the regime from persisted state on startup.
func (o *Orchestrator) RestoreRegime(r contracts.Regime) {
	o.regimes.Restore(r)
}

// Run executes one full discovery cycle over the given tickers.
//
// Per-source and per-ticker failures degrade gracefully: a failed source
// is a skipped contribution, a ticker with no usable weight is a recorded
// skip. Only all three sources failing in the same cycle aborts the run
// with ErrNoSignalAvailable. There are no within-cycle retries.
func (o *Orchestrator) Run(ctx context.Context, tickers []contracts.Ticker) (*CycleResult, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	defer o.setState(StateIdle)

	result := &CycleResult{
		StartedAt:      time.Now().UTC(),
		ConfigHash:     o.configHash,
		Skipped:        make(map[contracts.Ticker]string),
		SourceFailures: make(map[contracts.SourceKind]int),
	}

	o.setState(StateFetching)
	fetched := o.fetchAll(ctx, tickers, result)

	o.setState(StateNormalizing)
	normalized := o.normalizeAll(fetched, result)

	if !normalized.macroOK() && len(normalized.quant) == 0 && len(normalized.nlp) == 0 {
		result.FinishedAt = time.Now().UTC()
		return result, contracts.ErrNoSignalAvailable
	}

	o.evaluateRegime(ctx, fetched.macro, normalized, result)

	o.scoreAndEmit(ctx, tickers, normalized, result)

	result.FinishedAt = time.Now().UTC()
	o.log.WithFields(map[string]interface{}{
		"regime":          result.Regime,
		"recommendations": len(result.Recommendations),
		"skipped":         len(result.Skipped),
		"config_hash":     o.configHash,
		"took":            result.FinishedAt.Sub(result.StartedAt).String(),
	}).Info("cycle complete")
	return result, nil
}

// fetchedSignals holds the raw fetch outcome for one cycle.
type fetchedSignals struct {
	macro *contracts.RawSignal
	quant map[contracts.Ticker]*contracts.RawSignal
	nlp   map[contracts.Ticker]*contracts.RawSignal
}

// fetchAll gathers raw signals for the cycle: one market-wide macro fetch
// plus per-ticker quant and NLP fetches, fanned out and joined before
// normalization starts. Sources inside their refresh window come from the
// cycle cache.
func (o *Orchestrator) fetchAll(ctx context.Context, tickers []contracts.Ticker, result *CycleResult) *fetchedSignals {
	out := &fetchedSignals{
		quant: make(map[contracts.Ticker]*contracts.RawSignal, len(tickers)),
		nlp:   make(map[contracts.Ticker]*contracts.RawSignal, len(tickers)),
	}

	now := time.Now()

	if fresh(o.macroCache, now, o.cadence.MacroRefresh.Std()) {
		out.macro = o.macroCache.raw
	} else {
		fetchCtx, cancel := context.WithTimeout(ctx, o.cadence.FetchTimeout.Std())
		raw, err := o.macro.FetchMacro(fetchCtx)
		cancel()
		if err != nil {
			result.SourceFailures[contracts.SourceMacro]++
			o.log.WithError(err).Warn("macro fetch failed, source skipped this cycle")
		} else {
			out.macro = raw
			o.macroCache = cachedRaw{raw: raw, at: now}
		}
	}

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		sem = make(chan struct{}, fetchConcurrency)
	)

	fetchTicker := func(ticker contracts.Ticker, kind contracts.SourceKind) {
		defer wg.Done()
		sem <- struct{}{}
		defer func() { <-sem }()

		var (
			raw     *contracts.RawSignal
			err     error
			timeout = o.cadence.FetchTimeout.Std()
		)
		if kind == contracts.SourceNLP {
			timeout = o.cadence.NLPTimeout.Std()
		}
		fetchCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		switch kind {
		case contracts.SourceQuant:
			raw, err = o.quant.FetchQuant(fetchCtx, ticker)
		case contracts.SourceNLP:
			raw, err = o.nlp.AnalyzeEntity(fetchCtx, ticker)
		}

		// Fresh fetches are snapshotted; cache hits were already recorded
		// the cycle they were fetched.
		if err == nil && o.snapshots != nil {
			var saveErr error
			switch kind {
			case contracts.SourceQuant:
				saveErr = o.snapshots.SaveScanResult(ctx, raw)
			case contracts.SourceNLP:
				saveErr = o.snapshots.SaveNLPAnalysis(ctx, raw)
			}
			if saveErr != nil {
				o.log.WithError(saveErr).WithFields(map[string]interface{}{
					"ticker": ticker, "source": kind,
				}).Warn("snapshot persistence failed")
			}
		}

		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			result.SourceFailures[kind]++
			o.log.WithError(err).WithFields(map[string]interface{}{
				"ticker": ticker, "source": kind,
			}).Warn("fetch failed, contribution skipped")
			return
		}
		switch kind {
		case contracts.SourceQuant:
			out.quant[ticker] = raw
			o.quantCache[ticker] = cachedRaw{raw: raw, at: now}
		case contracts.SourceNLP:
			out.nlp[ticker] = raw
			o.nlpCache[ticker] = cachedRaw{raw: raw, at: now}
		}
	}

	for _, ticker := range tickers {
		if c, ok := o.quantCache[ticker]; ok && fresh(c, now, o.cadence.QuantRefresh.Std()) {
			out.quant[ticker] = c.raw
		} else {
			wg.Add(1)
			go fetchTicker(ticker, contracts.SourceQuant)
		}

		if c, ok := o.nlpCache[ticker]; ok && fresh(c, now, o.cadence.NLPRefresh.Std()) {
			out.nlp[ticker] = c.raw
		} else {
			wg.Add(1)
			go fetchTicker(ticker, contracts.SourceNLP)
		}
	}

	wg.Wait() // join barrier: normalization never sees a partial fetch
	return out
}

func fresh(c cachedRaw, now time.Time, window time.Duration) bool {
	return c.raw != nil && now.Sub(c.at) < window
}

// normalizedSignals holds per-source normalized output for one cycle.
type normalizedSignals struct {
	macro *contracts.NormalizedSignal
	quant map[contracts.Ticker]contracts.NormalizedSignal
	nlp   map[contracts.Ticker]contracts.NormalizedSignal
}

func (n *normalizedSignals) macroOK() bool { return n.macro != nil }

func (o *Orchestrator) normalizeAll(fetched *fetchedSignals, result *CycleResult) *normalizedSignals {
	out := &normalizedSignals{
		quant: make(map[contracts.Ticker]contracts.NormalizedSignal, len(fetched.quant)),
		nlp:   make(map[contracts.Ticker]contracts.NormalizedSignal, len(fetched.nlp)),
	}

	if fetched.macro != nil {
		sig, err := o.normalizer.Normalize(fetched.macro)
		if err != nil {
			result.SourceFailures[contracts.SourceMacro]++
			o.log.WithError(err).Warn("macro normalization failed, source skipped this cycle")
		} else {
			out.macro = &sig
		}
	}

	for ticker, raw := range fetched.quant {
		sig, err := o.normalizer.Normalize(raw)
		if err != nil {
			result.SourceFailures[contracts.SourceQuant]++
			o.log.WithError(err).WithField("ticker", ticker).Warn("quant normalization failed, contribution skipped")
			continue
		}
		out.quant[ticker] = sig
	}

	for ticker, raw := range fetched.nlp {
		sig, err := o.normalizer.Normalize(raw)
		if err != nil {
			result.SourceFailures[contracts.SourceNLP]++
			o.log.WithError(err).WithField("ticker", ticker).Warn("nlp normalization failed, contribution skipped")
			continue
		}
		out.nlp[ticker] = sig
	}

	return out
}

// evaluateRegime feeds the macro strength through the hysteresis
// classifier, attaches a hedge allocation when the cycle runs RISK_OFF,
// and alerts on transitions. Without a macro signal this cycle the
// previous regime carries over unchanged.
func (o *Orchestrator) evaluateRegime(ctx context.Context, macroRaw *contracts.RawSignal, normalized *normalizedSignals, result *CycleResult) {
	if !normalized.macroOK() {
		result.Regime = o.regimes.Current()
		return
	}

	decision := o.regimes.Evaluate(normalized.macro.Strength)
	result.Regime = decision.Regime
	result.RegimeChanged = decision.Changed
	result.Emergency = decision.Emergency

	var metrics *contracts.MacroMetrics
	if macroRaw != nil {
		metrics = macroRaw.Macro
	}

	if decision.Regime == contracts.RegimeRiskOff {
		alloc := o.hedger.Allocate(normalized.macro.Strength, metrics)
		result.Hedge = &alloc
	}

	if o.snapshots != nil && macroRaw != nil {
		if err := o.snapshots.SaveMacroSnapshot(ctx, macroRaw, decision.Regime, normalized.macro.Strength); err != nil {
			o.log.WithError(err).Warn("macro snapshot persistence failed")
		}
	}

	if decision.Changed {
		log := o.log.WithFields(map[string]interface{}{
			"from": decision.Previous, "to": decision.Regime,
		})
		if decision.Emergency {
			log.Warn("emergency regime break")
		} else {
			log.Info("regime transition confirmed")
		}
		if o.alerts != nil {
			if err := o.alerts.NotifyRegimeChange(ctx, decision.Previous, decision.Regime, result.Hedge); err != nil {
				o.log.WithError(err).Warn("regime change alert delivery failed")
			}
		}
	}
}

// scoreAndEmit runs the fuse, classify, and emit phases as full passes
// over the cycle's tickers, advancing the state machine at each boundary.
// A ticker failing fusion is recorded as a skip and drops out of the
// later passes.
func (o *Orchestrator) scoreAndEmit(ctx context.Context, tickers []contracts.Ticker, normalized *normalizedSignals, result *CycleResult) {
	o.setState(StateFusing)
	scores := make([]contracts.CompositeScore, 0, len(tickers))
	for _, ticker := range tickers {
		signals := make([]contracts.NormalizedSignal, 0, 3)
		if sig, ok := normalized.quant[ticker]; ok {
			signals = append(signals, sig)
		}
		if normalized.macroOK() {
			macroSig := *normalized.macro
			macroSig.Ticker = ticker
			signals = append(signals, macroSig)
		}
		if sig, ok := normalized.nlp[ticker]; ok {
			signals = append(signals, sig)
		}

		score, err := o.fuser.Fuse(ticker, result.Regime, signals)
		if err != nil {
			result.Skipped[ticker] = err.Error()
			o.log.WithError(err).WithField("ticker", ticker).Debug("ticker skipped")
			continue
		}
		scores = append(scores, score)
	}

	o.setState(StateClassifying)
	for _, score := range scores {
		rec := o.classifier.Classify(score)
		if rec.Downgraded {
			o.log.WithField("ticker", rec.Ticker).Info("STRONG_BUY downgraded: no substance verification this cycle")
		}
		result.Recommendations = append(result.Recommendations, rec)
	}

	o.setState(StateEmitting)
	for i := range result.Recommendations {
		o.emit(ctx, &result.Recommendations[i])
	}
}

// emit hands one recommendation to storage and alerting. Delivery
// failures are reported, never rolled back: the recommendation already
// exists logically.
func (o *Orchestrator) emit(ctx context.Context, rec *contracts.Recommendation) {
	if o.storage != nil {
		if err := o.storage.Persist(ctx, rec); err != nil {
			o.log.WithError(err).WithField("ticker", rec.Ticker).Error("recommendation persistence failed")
		}
	}
	if o.alerts != nil && rec.Label.Alertable() {
		if err := o.alerts.Notify(ctx, rec); err != nil {
			o.log.WithError(err).WithField("ticker", rec.Ticker).Warn("alert delivery failed")
		}
	}
}
