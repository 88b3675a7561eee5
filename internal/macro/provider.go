package macro

import (
	"context"
	"math"
	"time"

	"github.com/redchoeng/stock-recommendation-3.0/internal/contracts"
	"github.com/redchoeng/stock-recommendation-3.0/internal/engineconfig"
	"github.com/redchoeng/stock-recommendation-3.0/internal/quant"
	"github.com/redchoeng/stock-recommendation-3.0/pkg/logger"
)

// Index symbols on the chart API.
const (
	symbolVIX   = "^VIX"
	symbolSP500 = "^GSPC"
)

type seriesSource interface {
	SeriesObservations(ctx context.Context, seriesID string, limit int) ([]float64, error)
}

type barsSource interface {
	DailyBars(ctx context.Context, ticker contracts.Ticker) ([]quant.Bar, error)
}

// Provider implements contracts.MacroProvider. Each component is fetched
// and validated independently: a stale or failing series marks only that
// component invalid, and normalization discounts confidence accordingly.
type Provider struct {
	fred   seriesSource
	charts barsSource
	cfg    engineconfig.Macro
	log    *logger.Logger
}

func NewProvider(fred *FREDClient, charts *quant.ChartClient, cfg engineconfig.Macro, log *logger.Logger) *Provider {
	return &Provider{fred: fred, charts: charts, cfg: cfg, log: log}
}

// FetchMacro assembles the market-wide snapshot. It fails with
// ErrUnavailable only when every component failed.
func (p *Provider) FetchMacro(ctx context.Context) (*contracts.RawSignal, error) {
	m := contracts.MacroMetrics{}

	m.CPIChange = p.deltaComponent(ctx, SeriesCPI, true)
	m.UnemploymentChange = p.deltaComponent(ctx, SeriesUnemployment, false)
	m.YieldSpread = p.spreadComponent(ctx)

	if bars, err := p.charts.DailyBars(ctx, symbolVIX); err != nil {
		p.log.WithError(err).Warn("VIX fetch failed, component skipped")
	} else {
		closes := closesOf(bars, p.cfg.RollingWindow)
		m.VIXLevel = componentFrom(closes)
		m.VIXCurrent = closes[len(closes)-1]
	}

	if bars, err := p.charts.DailyBars(ctx, symbolSP500); err != nil {
		p.log.WithError(err).Warn("S&P 500 fetch failed, drawdown unknown")
	} else {
		m.SP500Drawdown = drawdown(closesOf(bars, p.cfg.RollingWindow))
	}

	if !m.CPIChange.Valid && !m.UnemploymentChange.Valid && !m.VIXLevel.Valid && !m.YieldSpread.Valid {
		return nil, contracts.ErrUnavailable
	}

	return &contracts.RawSignal{
		Kind:       contracts.SourceMacro,
		ObservedAt: time.Now().UTC(),
		Macro:      &m,
	}, nil
}

// deltaComponent builds a component from a FRED series' month-over-month
// deltas: pct change for level series like CPI, absolute change for rate
// series like unemployment.
func (p *Provider) deltaComponent(ctx context.Context, seriesID string, pctChange bool) contracts.MacroComponent {
	// One extra observation beyond the window so the deltas fill it.
	values, err := p.fred.SeriesObservations(ctx, seriesID, p.cfg.RollingWindow+1)
	if err != nil {
		p.log.WithError(err).WithField("series", seriesID).Warn("series fetch failed, component skipped")
		return contracts.MacroComponent{}
	}

	deltas := make([]float64, 0, len(values)-1)
	for i := 1; i < len(values); i++ {
		if pctChange {
			if values[i-1] == 0 {
				continue
			}
			deltas = append(deltas, (values[i]-values[i-1])/values[i-1]*100)
		} else {
			deltas = append(deltas, values[i]-values[i-1])
		}
	}
	return componentFrom(deltas)
}

// spreadComponent is the 10Y minus 2Y treasury spread series.
func (p *Provider) spreadComponent(ctx context.Context) contracts.MacroComponent {
	tens, err := p.fred.SeriesObservations(ctx, Series10Y, p.cfg.RollingWindow)
	if err != nil {
		p.log.WithError(err).Warn("10Y yield fetch failed, component skipped")
		return contracts.MacroComponent{}
	}
	twos, err := p.fred.SeriesObservations(ctx, Series2Y, p.cfg.RollingWindow)
	if err != nil {
		p.log.WithError(err).Warn("2Y yield fetch failed, component skipped")
		return contracts.MacroComponent{}
	}

	// Align on the shorter tail; both series are daily business days.
	n := len(tens)
	if len(twos) < n {
		n = len(twos)
	}
	spreads := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		spreads = append(spreads, tens[len(tens)-n+i]-twos[len(twos)-n+i])
	}
	return componentFrom(spreads)
}

// componentFrom summarizes a series into (latest value, rolling mean,
// rolling std). Fewer than two observations cannot produce a std and the
// component stays invalid.
func componentFrom(series []float64) contracts.MacroComponent {
	if len(series) < 2 {
		return contracts.MacroComponent{}
	}

	var sum float64
	for _, v := range series {
		sum += v
	}
	mean := sum / float64(len(series))

	var sq float64
	for _, v := range series {
		sq += (v - mean) * (v - mean)
	}
	std := math.Sqrt(sq / float64(len(series)-1))
	if std == 0 || math.IsNaN(std) {
		return contracts.MacroComponent{}
	}

	return contracts.MacroComponent{
		Value: series[len(series)-1],
		Mean:  mean,
		Std:   std,
		Valid: true,
	}
}

func closesOf(bars []quant.Bar, limit int) []float64 {
	if len(bars) > limit {
		bars = bars[len(bars)-limit:]
	}
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	return closes
}

// drawdown is the percent distance of the last close from the window
// high, zero at the high and negative below it.
func drawdown(closes []float64) float64 {
	if len(closes) == 0 {
		return 0
	}
	high := closes[0]
	for _, c := range closes {
		if c > high {
			high = c
		}
	}
	if high <= 0 {
		return 0
	}
	return (closes[len(closes)-1]/high - 1) * 100
}
