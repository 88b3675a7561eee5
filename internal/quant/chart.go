// Package quant implements the price/volume engine: it pulls daily bars
// from the chart API and runs the surge, peak-warning, and neglect
// sub-filters over them.
package quant

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/redchoeng/stock-recommendation-3.0/internal/contracts"
	"github.com/redchoeng/stock-recommendation-3.0/pkg/httputil"
	"github.com/redchoeng/stock-recommendation-3.0/pkg/logger"
	"github.com/redchoeng/stock-recommendation-3.0/pkg/redis"
)

// Bar is one daily OHLCV observation reduced to what the sub-filters
// need.
type Bar struct {
	Date   time.Time `json:"date"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// TradeValue is the dollar volume of the bar.
func (b Bar) TradeValue() float64 {
	return b.Close * b.Volume
}

// ChartClient fetches daily bars from a Yahoo-compatible chart endpoint.
type ChartClient struct {
	http    *httputil.Client
	baseURL string
	cache   *redis.Cache // nil disables caching
	log     *logger.Logger
}

func NewChartClient(http *httputil.Client, baseURL string, cache *redis.Cache, log *logger.Logger) *ChartClient {
	return &ChartClient{http: http, baseURL: baseURL, cache: cache, log: log}
}

// chartResponse mirrors the v8 chart payload, only the fields we read.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				RegularMarketPrice float64 `json:"regularMarketPrice"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close  []float64 `json:"close"`
					Volume []float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// DailyBars returns up to one year of daily bars for the ticker, oldest
// first. Bars with a missing close or volume are dropped.
func (c *ChartClient) DailyBars(ctx context.Context, ticker contracts.Ticker) ([]Bar, error) {
	cacheKey := fmt.Sprintf("chart:%s", ticker)
	if c.cache != nil {
		var cached []Bar
		if ok, err := c.cache.Get(ctx, cacheKey, &cached); err == nil && ok {
			return cached, nil
		}
	}

	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?range=1y&interval=1d",
		c.baseURL, url.PathEscape(string(ticker)))

	var payload chartResponse
	if err := c.http.GetJSON(ctx, endpoint, &payload); err != nil {
		return nil, fmt.Errorf("chart fetch for %s: %w: %v", ticker, contracts.ErrUnavailable, err)
	}
	if payload.Chart.Error != nil {
		return nil, fmt.Errorf("chart API error for %s: %w: %s",
			ticker, contracts.ErrUnavailable, payload.Chart.Error.Description)
	}
	if len(payload.Chart.Result) == 0 || len(payload.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("chart payload for %s: %w: empty result", ticker, contracts.ErrUnavailable)
	}

	result := payload.Chart.Result[0]
	quote := result.Indicators.Quote[0]

	bars := make([]Bar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(quote.Close) || i >= len(quote.Volume) {
			break
		}
		if quote.Close[i] <= 0 || quote.Volume[i] < 0 {
			continue
		}
		bars = append(bars, Bar{
			Date:   time.Unix(ts, 0).UTC(),
			Close:  quote.Close[i],
			Volume: quote.Volume[i],
		})
	}

	if len(bars) == 0 {
		return nil, fmt.Errorf("chart payload for %s: %w: no usable bars", ticker, contracts.ErrUnavailable)
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, cacheKey, bars, 30*time.Minute); err != nil {
			c.log.WithError(err).Debug("chart cache write failed")
		}
	}
	return bars, nil
}
