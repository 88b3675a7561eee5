package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schema is created on startup; everything lives under the discovery
// schema so the database can be shared.
const schema = `
CREATE SCHEMA IF NOT EXISTS discovery;

CREATE TABLE IF NOT EXISTS discovery.recommendations (
	id          BIGSERIAL PRIMARY KEY,
	ticker      TEXT NOT NULL,
	label       TEXT NOT NULL,
	composite   DOUBLE PRECISION NOT NULL,
	regime      TEXT NOT NULL,
	downgraded  BOOLEAN NOT NULL DEFAULT FALSE,
	sources     JSONB NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_recommendations_ticker_created
	ON discovery.recommendations (ticker, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_recommendations_created
	ON discovery.recommendations (created_at DESC);

CREATE TABLE IF NOT EXISTS discovery.macro_snapshots (
	id          BIGSERIAL PRIMARY KEY,
	regime      TEXT NOT NULL,
	risk_score  DOUBLE PRECISION NOT NULL,
	metrics     JSONB NOT NULL,
	observed_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_macro_snapshots_observed
	ON discovery.macro_snapshots (observed_at DESC);

CREATE TABLE IF NOT EXISTS discovery.scan_results (
	id          BIGSERIAL PRIMARY KEY,
	ticker      TEXT NOT NULL,
	metrics     JSONB NOT NULL,
	observed_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_scan_results_ticker_observed
	ON discovery.scan_results (ticker, observed_at DESC);

CREATE TABLE IF NOT EXISTS discovery.nlp_analyses (
	id          BIGSERIAL PRIMARY KEY,
	ticker      TEXT NOT NULL,
	filing_type TEXT,
	verdict     TEXT,
	metrics     JSONB NOT NULL,
	observed_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_nlp_analyses_ticker_observed
	ON discovery.nlp_analyses (ticker, observed_at DESC);

CREATE TABLE IF NOT EXISTS discovery.watchlist (
	ticker       TEXT PRIMARY KEY,
	name         TEXT,
	sector       TEXT,
	market_cap_b DOUBLE PRECISION,
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// Migrate creates the discovery schema and tables if absent.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("schema migration: %w", err)
	}
	return nil
}
