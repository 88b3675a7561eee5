package contracts

import "context"

// QuantProvider fetches raw quant metrics for one ticker.
// ⭐ SSOT: 퀀트 원시 데이터는 이 인터페이스를 통해서만
type QuantProvider interface {
	FetchQuant(ctx context.Context, ticker Ticker) (*RawSignal, error)
}

// MacroProvider fetches the market-wide macro snapshot.
type MacroProvider interface {
	FetchMacro(ctx context.Context) (*RawSignal, error)
}

// NLPProvider runs substance verification for one ticker. Implementations
// wrap a local language model; latency and malformed output are expected
// failure modes surfaced as ErrUnavailable, not panics.
type NLPProvider interface {
	AnalyzeEntity(ctx context.Context, ticker Ticker) (*RawSignal, error)
}

// StoragePort persists terminal recommendations. Persistence failure does
// not roll back a computed recommendation.
type StoragePort interface {
	Persist(ctx context.Context, rec *Recommendation) error
}

// SnapshotStore persists intermediate cycle artifacts for audit. Optional;
// a nil store skips artifact persistence.
type SnapshotStore interface {
	SaveMacroSnapshot(ctx context.Context, raw *RawSignal, regime Regime, riskScore float64) error
	SaveScanResult(ctx context.Context, raw *RawSignal) error
	SaveNLPAnalysis(ctx context.Context, raw *RawSignal) error
}

// AlertPort delivers notifications. Invoked only for STRONG_BUY/AVOID
// recommendations and regime transitions.
type AlertPort interface {
	Notify(ctx context.Context, rec *Recommendation) error
	NotifyRegimeChange(ctx context.Context, from, to Regime, alloc *HedgeAllocation) error
}
