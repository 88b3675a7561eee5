package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redchoeng/stock-recommendation-3.0/internal/contracts"
	"github.com/redchoeng/stock-recommendation-3.0/internal/pipeline"
	"github.com/redchoeng/stock-recommendation-3.0/internal/scheduler"
	"github.com/redchoeng/stock-recommendation-3.0/internal/storage"
	"github.com/redchoeng/stock-recommendation-3.0/pkg/logger"
)

type fakeRecStore struct {
	latest    []storage.StoredRecommendation
	history   map[contracts.Ticker][]storage.StoredRecommendation
	err       error
	lastLimit int
}

func (f *fakeRecStore) LatestRecommendations(ctx context.Context, limit int) ([]storage.StoredRecommendation, error) {
	f.lastLimit = limit
	return f.latest, f.err
}

func (f *fakeRecStore) RecommendationHistory(ctx context.Context, ticker contracts.Ticker, limit int) ([]storage.StoredRecommendation, error) {
	f.lastLimit = limit
	return f.history[ticker], f.err
}

type fakeRegimeStore struct {
	snapshot *storage.RegimeSnapshot
	err      error
}

func (f *fakeRegimeStore) LatestRegime(ctx context.Context) (*storage.RegimeSnapshot, error) {
	return f.snapshot, f.err
}

type fakeStatus struct {
	regime contracts.Regime
	state  pipeline.State
}

func (f *fakeStatus) Regime() contracts.Regime { return f.regime }
func (f *fakeStatus) State() pipeline.State    { return f.state }

type fakeRunner struct {
	err   error
	runs  []string
	stats map[string]scheduler.JobStats
}

func (f *fakeRunner) RunJob(name string) error {
	f.runs = append(f.runs, name)
	return f.err
}

func (f *fakeRunner) GetJobStats() map[string]scheduler.JobStats { return f.stats }

func sampleRec(ticker string, composite float64) storage.StoredRecommendation {
	return storage.StoredRecommendation{
		Ticker:    contracts.Ticker(ticker),
		Label:     contracts.LabelBuy,
		Composite: composite,
		Regime:    contracts.RegimeNeutral,
		CreatedAt: time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC),
	}
}

func TestGetLatestRecommendations(t *testing.T) {
	store := &fakeRecStore{latest: []storage.StoredRecommendation{
		sampleRec("NVDA", 0.72),
		sampleRec("AMD", 0.31),
	}}
	h := NewRecommendationHandler(store, logger.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/recommendations", nil)
	rr := httptest.NewRecorder()
	h.GetLatest(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, defaultLimit, store.lastLimit)

	var body struct {
		Count           int                            `json:"count"`
		Recommendations []storage.StoredRecommendation `json:"recommendations"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Count)
	assert.Equal(t, contracts.Ticker("NVDA"), body.Recommendations[0].Ticker)
}

func TestGetLatestLimitHandling(t *testing.T) {
	store := &fakeRecStore{}
	h := NewRecommendationHandler(store, logger.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/recommendations?limit=500", nil)
	rr := httptest.NewRecorder()
	h.GetLatest(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, maxLimit, store.lastLimit)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/recommendations?limit=abc", nil)
	rr = httptest.NewRecorder()
	h.GetLatest(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/recommendations?limit=0", nil)
	rr = httptest.NewRecorder()
	h.GetLatest(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGetLatestStoreFailure(t *testing.T) {
	store := &fakeRecStore{err: errors.New("connection refused")}
	h := NewRecommendationHandler(store, logger.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/recommendations", nil)
	rr := httptest.NewRecorder()
	h.GetLatest(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestGetHistoryUppercasesTicker(t *testing.T) {
	store := &fakeRecStore{history: map[contracts.Ticker][]storage.StoredRecommendation{
		"NVDA": {sampleRec("NVDA", 0.72)},
	}}
	h := NewRecommendationHandler(store, logger.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/recommendations/nvda", nil)
	req = mux.SetURLVars(req, map[string]string{"ticker": "nvda"})
	rr := httptest.NewRecorder()
	h.GetHistory(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var body struct {
		Ticker string `json:"ticker"`
		Count  int    `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "NVDA", body.Ticker)
	assert.Equal(t, 1, body.Count)
}

func TestGetHistoryUnknownTicker(t *testing.T) {
	h := NewRecommendationHandler(&fakeRecStore{}, logger.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/recommendations/ZZZZ", nil)
	req = mux.SetURLVars(req, map[string]string{"ticker": "ZZZZ"})
	rr := httptest.NewRecorder()
	h.GetHistory(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestGetRegimeWithSnapshot(t *testing.T) {
	store := &fakeRegimeStore{snapshot: &storage.RegimeSnapshot{
		Regime:     contracts.RegimeRiskOff,
		RiskScore:  0.8,
		ObservedAt: time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC),
	}}
	status := &fakeStatus{regime: contracts.RegimeRiskOff, state: pipeline.StateIdle}
	h := NewRegimeHandler(store, status, logger.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/regime", nil)
	rr := httptest.NewRecorder()
	h.GetRegime(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, string(contracts.RegimeRiskOff), body["regime"])
	assert.Equal(t, string(pipeline.StateIdle), body["pipeline_state"])
	assert.InDelta(t, 0.8, body["risk_score"].(float64), 1e-9)
}

func TestGetRegimeWithoutSnapshot(t *testing.T) {
	h := NewRegimeHandler(&fakeRegimeStore{}, &fakeStatus{regime: contracts.RegimeNeutral}, logger.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/regime", nil)
	rr := httptest.NewRecorder()
	h.GetRegime(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, string(contracts.RegimeNeutral), body["regime"])
	assert.NotContains(t, body, "risk_score")
}

func TestTriggerCycle(t *testing.T) {
	runner := &fakeRunner{}
	h := NewJobHandler(runner, logger.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cycle", nil)
	rr := httptest.NewRecorder()
	h.TriggerCycle(rr, req)

	assert.Equal(t, http.StatusAccepted, rr.Code)
	assert.Equal(t, []string{"discovery_cycle"}, runner.runs)
}

func TestTriggerCycleFailure(t *testing.T) {
	runner := &fakeRunner{err: errors.New("job discovery_cycle not found")}
	h := NewJobHandler(runner, logger.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cycle", nil)
	rr := httptest.NewRecorder()
	h.TriggerCycle(rr, req)

	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestGetJobs(t *testing.T) {
	runner := &fakeRunner{stats: map[string]scheduler.JobStats{
		"discovery_cycle": {JobName: "discovery_cycle", Schedule: "0 0 */6 * * *", TotalRuns: 4},
	}}
	h := NewJobHandler(runner, logger.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs", nil)
	rr := httptest.NewRecorder()
	h.GetJobs(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var body map[string]scheduler.JobStats
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, 4, body["discovery_cycle"].TotalRuns)
}
