package jobs

import (
	"context"
	"fmt"

	"github.com/redchoeng/stock-recommendation-3.0/internal/contracts"
	"github.com/redchoeng/stock-recommendation-3.0/internal/universe"
	"github.com/redchoeng/stock-recommendation-3.0/pkg/logger"
)

// CapSink receives refreshed market caps for neglect gating.
type CapSink interface {
	SetMarketCaps(caps map[contracts.Ticker]float64)
}

// WatchlistSyncJob reloads the watchlist file and mirrors it to storage
// ⭐ SSOT: 워치리스트 갱신은 이 Job에서만
type WatchlistSyncJob struct {
	path     string
	registry *universe.Registry
	store    universe.Store
	caps     CapSink
	schedule string
	logger   *logger.Logger
}

// NewWatchlistSyncJob creates a new watchlist sync job.
// store and caps may be nil when the deployment runs without them.
func NewWatchlistSyncJob(path string, reg *universe.Registry, store universe.Store, caps CapSink, schedule string, log *logger.Logger) *WatchlistSyncJob {
	return &WatchlistSyncJob{
		path:     path,
		registry: reg,
		store:    store,
		caps:     caps,
		schedule: schedule,
		logger:   log,
	}
}

// Name returns the job name
func (j *WatchlistSyncJob) Name() string {
	return "watchlist_sync"
}

// Schedule returns the cron schedule expression
func (j *WatchlistSyncJob) Schedule() string {
	return j.schedule
}

// Run reloads the watchlist from disk and publishes it
func (j *WatchlistSyncJob) Run(ctx context.Context) error {
	wl, err := universe.Load(j.path)
	if err != nil {
		return fmt.Errorf("reload watchlist: %w", err)
	}

	j.registry.Swap(wl)

	if j.caps != nil {
		j.caps.SetMarketCaps(wl.MarketCaps())
	}

	if j.store != nil {
		if err := wl.Sync(ctx, j.store); err != nil {
			return fmt.Errorf("sync watchlist: %w", err)
		}
	}

	j.logger.WithField("tickers", len(wl.Entries)).Info("Watchlist reloaded")
	return nil
}
