package universe

import (
	"sync"

	"github.com/redchoeng/stock-recommendation-3.0/internal/contracts"
)

// Registry holds the active watchlist and allows hot swaps when the
// file on disk changes between discovery cycles.
type Registry struct {
	mu sync.RWMutex
	wl *Watchlist
}

// NewRegistry creates a registry seeded with an initial watchlist.
func NewRegistry(wl *Watchlist) *Registry {
	return &Registry{wl: wl}
}

// Swap replaces the active watchlist.
func (r *Registry) Swap(wl *Watchlist) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.wl = wl
}

// Current returns the active watchlist.
func (r *Registry) Current() *Watchlist {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.wl
}

// Tickers returns the active tickers in watchlist file order.
func (r *Registry) Tickers() []contracts.Ticker {
	return r.Current().Tickers()
}
