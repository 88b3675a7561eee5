// Package storage persists recommendations and cycle artifacts to
// PostgreSQL.
// ⭐ SSOT: discovery 스키마 접근은 여기서만
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/redchoeng/stock-recommendation-3.0/internal/contracts"
)

// Repository implements contracts.StoragePort plus the read side used by
// the API.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Persist stores one recommendation with its full source breakdown.
func (r *Repository) Persist(ctx context.Context, rec *contracts.Recommendation) error {
	sources, err := json.Marshal(rec.Composite.Sources)
	if err != nil {
		return fmt.Errorf("marshal sources: %w", err)
	}

	query := `
		INSERT INTO discovery.recommendations (
			ticker, label, composite, regime, downgraded, sources, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = r.pool.Exec(ctx, query,
		string(rec.Ticker), string(rec.Label), rec.Composite.Value,
		string(rec.Composite.Regime), rec.Downgraded, sources, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("persist recommendation: %w: %v", contracts.ErrUnavailable, err)
	}
	return nil
}

// StoredRecommendation is the read model returned to the API.
type StoredRecommendation struct {
	Ticker     contracts.Ticker         `json:"ticker"`
	Label      contracts.Label          `json:"label"`
	Composite  float64                  `json:"composite"`
	Regime     contracts.Regime         `json:"regime"`
	Downgraded bool                     `json:"downgraded"`
	Sources    []contracts.Contribution `json:"sources"`
	CreatedAt  time.Time                `json:"created_at"`
}

// LatestRecommendations returns each ticker's most recent recommendation,
// strongest composite first.
func (r *Repository) LatestRecommendations(ctx context.Context, limit int) ([]StoredRecommendation, error) {
	query := `
		SELECT ticker, label, composite, regime, downgraded, sources, created_at
		FROM (
			SELECT DISTINCT ON (ticker)
				ticker, label, composite, regime, downgraded, sources, created_at
			FROM discovery.recommendations
			ORDER BY ticker, created_at DESC
		) latest
		ORDER BY composite DESC
		LIMIT $1
	`
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query recommendations: %w", err)
	}
	defer rows.Close()

	return scanRecommendations(rows)
}

// RecommendationHistory returns a ticker's recommendations, newest first.
func (r *Repository) RecommendationHistory(ctx context.Context, ticker contracts.Ticker, limit int) ([]StoredRecommendation, error) {
	query := `
		SELECT ticker, label, composite, regime, downgraded, sources, created_at
		FROM discovery.recommendations
		WHERE ticker = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, string(ticker), limit)
	if err != nil {
		return nil, fmt.Errorf("query history for %s: %w", ticker, err)
	}
	defer rows.Close()

	return scanRecommendations(rows)
}

func scanRecommendations(rows pgx.Rows) ([]StoredRecommendation, error) {
	var out []StoredRecommendation
	for rows.Next() {
		var rec StoredRecommendation
		var sources []byte
		if err := rows.Scan(&rec.Ticker, &rec.Label, &rec.Composite,
			&rec.Regime, &rec.Downgraded, &sources, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan recommendation: %w", err)
		}
		if err := json.Unmarshal(sources, &rec.Sources); err != nil {
			return nil, fmt.Errorf("unmarshal sources: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// RegimeSnapshot is the stored regime state.
type RegimeSnapshot struct {
	Regime     contracts.Regime `json:"regime"`
	RiskScore  float64          `json:"risk_score"`
	ObservedAt time.Time        `json:"observed_at"`
}

// LatestRegime returns the most recent macro snapshot's regime, or nil if
// none has been stored yet.
func (r *Repository) LatestRegime(ctx context.Context) (*RegimeSnapshot, error) {
	query := `
		SELECT regime, risk_score, observed_at
		FROM discovery.macro_snapshots
		ORDER BY observed_at DESC
		LIMIT 1
	`
	var snap RegimeSnapshot
	err := r.pool.QueryRow(ctx, query).Scan(&snap.Regime, &snap.RiskScore, &snap.ObservedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query latest regime: %w", err)
	}
	return &snap, nil
}
