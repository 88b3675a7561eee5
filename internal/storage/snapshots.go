package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redchoeng/stock-recommendation-3.0/internal/contracts"
	"github.com/redchoeng/stock-recommendation-3.0/internal/universe"
)

// Snapshots implements contracts.SnapshotStore: intermediate cycle
// artifacts kept for audit and backtesting.
type Snapshots struct {
	*Repository
}

func NewSnapshots(repo *Repository) *Snapshots {
	return &Snapshots{Repository: repo}
}

func (s *Snapshots) SaveMacroSnapshot(ctx context.Context, raw *contracts.RawSignal, regime contracts.Regime, riskScore float64) error {
	metrics, err := json.Marshal(raw.Macro)
	if err != nil {
		return fmt.Errorf("marshal macro metrics: %w", err)
	}

	query := `
		INSERT INTO discovery.macro_snapshots (regime, risk_score, metrics, observed_at)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := s.pool.Exec(ctx, query, string(regime), riskScore, metrics, raw.ObservedAt); err != nil {
		return fmt.Errorf("save macro snapshot: %w", err)
	}
	return nil
}

func (s *Snapshots) SaveScanResult(ctx context.Context, raw *contracts.RawSignal) error {
	metrics, err := json.Marshal(raw.Quant)
	if err != nil {
		return fmt.Errorf("marshal quant metrics: %w", err)
	}

	query := `
		INSERT INTO discovery.scan_results (ticker, metrics, observed_at)
		VALUES ($1, $2, $3)
	`
	if _, err := s.pool.Exec(ctx, query, string(raw.Ticker), metrics, raw.ObservedAt); err != nil {
		return fmt.Errorf("save scan result: %w", err)
	}
	return nil
}

func (s *Snapshots) SaveNLPAnalysis(ctx context.Context, raw *contracts.RawSignal) error {
	metrics, err := json.Marshal(raw.NLP)
	if err != nil {
		return fmt.Errorf("marshal nlp metrics: %w", err)
	}

	query := `
		INSERT INTO discovery.nlp_analyses (ticker, filing_type, verdict, metrics, observed_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := s.pool.Exec(ctx, query,
		string(raw.Ticker), raw.NLP.FilingType, raw.NLP.Verdict, metrics, raw.ObservedAt); err != nil {
		return fmt.Errorf("save nlp analysis: %w", err)
	}
	return nil
}

// SyncWatchlist upserts the YAML watchlist into the database copy.
func (s *Snapshots) SyncWatchlist(ctx context.Context, entries []universe.Entry) error {
	query := `
		INSERT INTO discovery.watchlist (ticker, name, sector, market_cap_b, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (ticker) DO UPDATE SET
			name = EXCLUDED.name,
			sector = EXCLUDED.sector,
			market_cap_b = EXCLUDED.market_cap_b,
			updated_at = now()
	`
	for _, e := range entries {
		if _, err := s.pool.Exec(ctx, query,
			string(e.Ticker), e.Name, e.Sector, e.MarketCapB); err != nil {
			return fmt.Errorf("sync watchlist %s: %w", e.Ticker, err)
		}
	}
	return nil
}
