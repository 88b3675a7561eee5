package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/redchoeng/stock-recommendation-3.0/internal/contracts"
	"github.com/redchoeng/stock-recommendation-3.0/internal/storage"
	"github.com/redchoeng/stock-recommendation-3.0/pkg/logger"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

// RecommendationStore is the read surface the handler needs.
type RecommendationStore interface {
	LatestRecommendations(ctx context.Context, limit int) ([]storage.StoredRecommendation, error)
	RecommendationHistory(ctx context.Context, ticker contracts.Ticker, limit int) ([]storage.StoredRecommendation, error)
}

// RecommendationHandler handles recommendation API endpoints
// ⭐ SSOT: 추천 조회 API는 이 구조체에서만
type RecommendationHandler struct {
	store  RecommendationStore
	logger *logger.Logger
}

// NewRecommendationHandler creates a new recommendation handler
func NewRecommendationHandler(store RecommendationStore, log *logger.Logger) *RecommendationHandler {
	return &RecommendationHandler{
		store:  store,
		logger: log,
	}
}

// GetLatest returns each ticker's most recent recommendation
// GET /api/v1/recommendations?limit=20
func (h *RecommendationHandler) GetLatest(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(r, defaultLimit)
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid 'limit' parameter")
		return
	}

	recs, err := h.store.LatestRecommendations(r.Context(), limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get recommendations")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve recommendations")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":           len(recs),
		"recommendations": recs,
	})
}

// GetHistory returns the recommendation history for one ticker
// GET /api/v1/recommendations/{ticker}?limit=30
func (h *RecommendationHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	ticker := contracts.Ticker(strings.ToUpper(mux.Vars(r)["ticker"]))

	limit, ok := parseLimit(r, 30)
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid 'limit' parameter")
		return
	}

	recs, err := h.store.RecommendationHistory(r.Context(), ticker, limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get recommendation history")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve history")
		return
	}

	if len(recs) == 0 {
		respondError(w, http.StatusNotFound, "No recommendations for ticker")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"ticker":  ticker,
		"count":   len(recs),
		"history": recs,
	})
}

func parseLimit(r *http.Request, fallback int) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return fallback, true
	}

	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, false
	}
	if n > maxLimit {
		n = maxLimit
	}
	return n, true
}
