// Package macro implements the market-wide risk engine: FRED series for
// inflation, labor, and the yield curve, plus index quotes for VIX and
// the S&P 500 drawdown.
package macro

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/redchoeng/stock-recommendation-3.0/internal/contracts"
	"github.com/redchoeng/stock-recommendation-3.0/pkg/httputil"
	"github.com/redchoeng/stock-recommendation-3.0/pkg/logger"
	"github.com/redchoeng/stock-recommendation-3.0/pkg/redis"
)

// FRED series identifiers used by the macro engine.
const (
	SeriesCPI          = "CPIAUCSL"
	SeriesUnemployment = "UNRATE"
	SeriesFedFunds     = "FEDFUNDS"
	Series10Y          = "DGS10"
	Series2Y           = "DGS2"
)

// FREDClient reads observation series from the St. Louis Fed API.
type FREDClient struct {
	http    *httputil.Client
	baseURL string
	apiKey  string
	cache   *redis.Cache // nil disables caching
	log     *logger.Logger
}

func NewFREDClient(http *httputil.Client, baseURL, apiKey string, cache *redis.Cache, log *logger.Logger) *FREDClient {
	return &FREDClient{http: http, baseURL: baseURL, apiKey: apiKey, cache: cache, log: log}
}

type fredResponse struct {
	Observations []struct {
		Date  string `json:"date"`
		Value string `json:"value"`
	} `json:"observations"`
}

// SeriesObservations returns the most recent limit values of a series,
// oldest first. FRED encodes missing observations as "."; those are
// dropped.
func (c *FREDClient) SeriesObservations(ctx context.Context, seriesID string, limit int) ([]float64, error) {
	cacheKey := fmt.Sprintf("fred:%s:%d", seriesID, limit)
	if c.cache != nil {
		var cached []float64
		if ok, err := c.cache.Get(ctx, cacheKey, &cached); err == nil && ok {
			return cached, nil
		}
	}

	q := url.Values{}
	q.Set("series_id", seriesID)
	q.Set("api_key", c.apiKey)
	q.Set("file_type", "json")
	q.Set("sort_order", "desc")
	q.Set("limit", strconv.Itoa(limit))

	var payload fredResponse
	endpoint := fmt.Sprintf("%s/series/observations?%s", c.baseURL, q.Encode())
	if err := c.http.GetJSON(ctx, endpoint, &payload); err != nil {
		return nil, fmt.Errorf("fred %s: %w: %v", seriesID, contracts.ErrUnavailable, err)
	}

	// Response is newest-first; flip to oldest-first for the callers.
	values := make([]float64, 0, len(payload.Observations))
	for i := len(payload.Observations) - 1; i >= 0; i-- {
		obs := payload.Observations[i]
		if obs.Value == "." {
			continue
		}
		v, err := strconv.ParseFloat(obs.Value, 64)
		if err != nil {
			c.log.WithField("series", seriesID).Warnf("unparseable observation %q at %s", obs.Value, obs.Date)
			continue
		}
		values = append(values, v)
	}

	if len(values) == 0 {
		return nil, fmt.Errorf("fred %s: %w: no observations", seriesID, contracts.ErrUnavailable)
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, cacheKey, values, 6*time.Hour); err != nil {
			c.log.WithError(err).Debug("fred cache write failed")
		}
	}
	return values, nil
}
