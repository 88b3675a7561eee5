package quant

import (
	"github.com/redchoeng/stock-recommendation-3.0/internal/contracts"
	"github.com/redchoeng/stock-recommendation-3.0/internal/engineconfig"
)

// Analyze runs the three sub-filters over the bar history and packs the
// raw metrics. Each sub-filter degrades to its zero value when the
// history is too short for its window; BarsUsed lets normalization
// discount the whole signal instead.
func Analyze(bars []Bar, marketCapB float64, cfg engineconfig.Quant) contracts.QuantMetrics {
	m := contracts.QuantMetrics{
		MarketCapB: marketCapB,
		BarsUsed:   len(bars),
	}
	if len(bars) == 0 {
		return m
	}

	m.SurgeRatio1D, m.SurgeRatio5D = surgeRatios(bars, cfg.Surge.AvgPeriodDays)

	m.PricePctOfHigh = pctOfHigh(bars)
	m.TradeValueMA = maRatio(bars, cfg.Peak.MAShort, cfg.Peak.MALong)
	m.PeakWarning = m.PricePctOfHigh >= cfg.Peak.HighThreshold && m.TradeValueMA < cfg.Peak.RiskRatio

	m.NeglectSlope = neglectSlope(bars, cfg.Neglect.WindowDays)
	m.Neglected = m.NeglectSlope < cfg.Neglect.SlopeThreshold &&
		(cfg.Surge.MinMarketCapB <= 0 || marketCapB >= cfg.Surge.MinMarketCapB)

	return m
}

// surgeRatios compares recent trade value against its rolling average
// over the configured window (excluding the most recent 5 sessions so a
// surge does not inflate its own baseline).
func surgeRatios(bars []Bar, avgDays int) (ratio1d, ratio5d float64) {
	if len(bars) < 6 {
		return 1, 1
	}

	recent := bars[len(bars)-5:]
	history := bars[:len(bars)-5]
	if len(history) > avgDays {
		history = history[len(history)-avgDays:]
	}

	var histSum float64
	for _, b := range history {
		histSum += b.TradeValue()
	}
	avg := histSum / float64(len(history))
	if avg <= 0 {
		return 1, 1
	}

	var recentSum float64
	for _, b := range recent {
		recentSum += b.TradeValue()
	}

	ratio1d = bars[len(bars)-1].TradeValue() / avg
	ratio5d = (recentSum / 5) / avg
	return ratio1d, ratio5d
}

// pctOfHigh is the last close relative to the highest close in history.
func pctOfHigh(bars []Bar) float64 {
	high := 0.0
	for _, b := range bars {
		if b.Close > high {
			high = b.Close
		}
	}
	if high <= 0 {
		return 0
	}
	return bars[len(bars)-1].Close / high
}

// maRatio is MA(short)/MA(long) of trade value, the dead-cross detector
// behind the peak warning. Returns 1 (no signal) when history is shorter
// than the long window.
func maRatio(bars []Bar, short, long int) float64 {
	if long <= 0 || short <= 0 || len(bars) < long {
		return 1
	}

	maOf := func(n int) float64 {
		var sum float64
		for _, b := range bars[len(bars)-n:] {
			sum += b.TradeValue()
		}
		return sum / float64(n)
	}

	longMA := maOf(long)
	if longMA <= 0 {
		return 1
	}
	return maOf(short) / longMA
}

// neglectSlope fits a least-squares line through the window's trade
// values normalized so the first point is 1.0, giving a unitless per-day
// decline rate comparable across tickers.
func neglectSlope(bars []Bar, windowDays int) float64 {
	if windowDays <= 1 || len(bars) < windowDays {
		return 0
	}

	window := bars[len(bars)-windowDays:]
	base := window[0].TradeValue()
	if base <= 0 {
		return 0
	}

	n := float64(len(window))
	var sumX, sumY, sumXY, sumXX float64
	for i, b := range window {
		x := float64(i)
		y := b.TradeValue() / base
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}

	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}
	return (n*sumXY - sumX*sumY) / denom
}
