// Package universe manages the watchlist of tickers the discovery cycle
// scans. The YAML file is the source of truth; the database copy exists
// so scan history can join against what was watched at the time.
package universe

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/redchoeng/stock-recommendation-3.0/internal/contracts"
)

// Entry is one watched ticker with optional sizing context.
type Entry struct {
	Ticker     contracts.Ticker `yaml:"ticker" json:"ticker"`
	Name       string           `yaml:"name,omitempty" json:"name,omitempty"`
	Sector     string           `yaml:"sector,omitempty" json:"sector,omitempty"`
	MarketCapB float64          `yaml:"market_cap_b,omitempty" json:"market_cap_b,omitempty"`
}

// Watchlist is the ordered, deduplicated set of tickers to scan.
type Watchlist struct {
	Entries []Entry `yaml:"watchlist"`
}

// Load reads a watchlist YAML file and validates it.
func Load(path string) (*Watchlist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("watchlist read: %w", err)
	}

	var w Watchlist
	dec := yaml.NewDecoder(strings.NewReader(string(data)))
	dec.KnownFields(true)
	if err := dec.Decode(&w); err != nil {
		return nil, fmt.Errorf("watchlist parse %s: %w", path, err)
	}
	if err := w.normalize(); err != nil {
		return nil, fmt.Errorf("watchlist %s: %w", path, err)
	}
	return &w, nil
}

// normalize upcases, trims, and rejects duplicates or blanks.
func (w *Watchlist) normalize() error {
	seen := make(map[contracts.Ticker]bool, len(w.Entries))
	for i := range w.Entries {
		t := contracts.Ticker(strings.ToUpper(strings.TrimSpace(string(w.Entries[i].Ticker))))
		if t == "" {
			return fmt.Errorf("entry %d has an empty ticker", i)
		}
		if seen[t] {
			return fmt.Errorf("duplicate ticker %s", t)
		}
		seen[t] = true
		w.Entries[i].Ticker = t
	}
	if len(w.Entries) == 0 {
		return fmt.Errorf("no tickers")
	}
	return nil
}

// Tickers returns the tickers in file order.
func (w *Watchlist) Tickers() []contracts.Ticker {
	out := make([]contracts.Ticker, len(w.Entries))
	for i, e := range w.Entries {
		out[i] = e.Ticker
	}
	return out
}

// MarketCaps returns the known market caps for the quant neglect gate.
func (w *Watchlist) MarketCaps() map[contracts.Ticker]float64 {
	out := make(map[contracts.Ticker]float64)
	for _, e := range w.Entries {
		if e.MarketCapB > 0 {
			out[e.Ticker] = e.MarketCapB
		}
	}
	return out
}

// Sectors groups tickers by sector, sorted for stable output.
func (w *Watchlist) Sectors() map[string][]contracts.Ticker {
	out := make(map[string][]contracts.Ticker)
	for _, e := range w.Entries {
		sector := e.Sector
		if sector == "" {
			sector = "unclassified"
		}
		out[sector] = append(out[sector], e.Ticker)
	}
	for _, tickers := range out {
		sort.Slice(tickers, func(i, j int) bool { return tickers[i] < tickers[j] })
	}
	return out
}

// Store mirrors the watchlist into the database for scan-history joins.
type Store interface {
	SyncWatchlist(ctx context.Context, entries []Entry) error
}

// Sync pushes the loaded watchlist to the store. A nil store is a no-op
// (local mode without a database).
func (w *Watchlist) Sync(ctx context.Context, store Store) error {
	if store == nil {
		return nil
	}
	return store.SyncWatchlist(ctx, w.Entries)
}
