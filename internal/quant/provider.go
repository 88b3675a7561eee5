package quant

import (
	"context"
	"time"

	"github.com/redchoeng/stock-recommendation-3.0/internal/contracts"
	"github.com/redchoeng/stock-recommendation-3.0/internal/engineconfig"
	"github.com/redchoeng/stock-recommendation-3.0/pkg/logger"
)

// Provider implements contracts.QuantProvider on top of the chart API.
type Provider struct {
	charts *ChartClient
	cfg    engineconfig.Quant
	log    *logger.Logger

	// MarketCaps is an optional static map seeded from the watchlist;
	// tickers absent here skip the market-cap gate on the neglect filter.
	marketCaps map[contracts.Ticker]float64
}

func NewProvider(charts *ChartClient, cfg engineconfig.Quant, log *logger.Logger) *Provider {
	return &Provider{
		charts:     charts,
		cfg:        cfg,
		log:        log,
		marketCaps: make(map[contracts.Ticker]float64),
	}
}

// SetMarketCaps seeds known market caps (billions USD) for the neglect
// filter's large-cap gate.
func (p *Provider) SetMarketCaps(caps map[contracts.Ticker]float64) {
	p.marketCaps = caps
}

// FetchQuant pulls bars and runs the sub-filters.
func (p *Provider) FetchQuant(ctx context.Context, ticker contracts.Ticker) (*contracts.RawSignal, error) {
	bars, err := p.charts.DailyBars(ctx, ticker)
	if err != nil {
		return nil, err
	}

	metrics := Analyze(bars, p.marketCaps[ticker], p.cfg)
	p.log.WithFields(map[string]interface{}{
		"ticker":   ticker,
		"bars":     metrics.BarsUsed,
		"ratio_5d": metrics.SurgeRatio5D,
		"peak":     metrics.PeakWarning,
		"neglect":  metrics.Neglected,
	}).Debug("quant metrics computed")

	return &contracts.RawSignal{
		Kind:       contracts.SourceQuant,
		Ticker:     ticker,
		ObservedAt: time.Now().UTC(),
		Quant:      &metrics,
	}, nil
}
