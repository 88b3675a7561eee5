package handlers

import (
	"context"
	"net/http"

	"github.com/redchoeng/stock-recommendation-3.0/internal/contracts"
	"github.com/redchoeng/stock-recommendation-3.0/internal/pipeline"
	"github.com/redchoeng/stock-recommendation-3.0/internal/storage"
	"github.com/redchoeng/stock-recommendation-3.0/pkg/logger"
)

// RegimeStore reads persisted macro snapshots.
type RegimeStore interface {
	LatestRegime(ctx context.Context) (*storage.RegimeSnapshot, error)
}

// PipelineStatus exposes the live pipeline view.
type PipelineStatus interface {
	Regime() contracts.Regime
	State() pipeline.State
}

// RegimeHandler handles market regime API endpoints
type RegimeHandler struct {
	store    RegimeStore
	pipeline PipelineStatus
	logger   *logger.Logger
}

// NewRegimeHandler creates a new regime handler
func NewRegimeHandler(store RegimeStore, status PipelineStatus, log *logger.Logger) *RegimeHandler {
	return &RegimeHandler{
		store:    store,
		pipeline: status,
		logger:   log,
	}
}

// GetRegime returns the live regime plus the latest persisted snapshot
// GET /api/v1/regime
func (h *RegimeHandler) GetRegime(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{
		"regime":         h.pipeline.Regime(),
		"pipeline_state": h.pipeline.State(),
	}

	snapshot, err := h.store.LatestRegime(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to get regime snapshot")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve regime snapshot")
		return
	}

	if snapshot != nil {
		resp["risk_score"] = snapshot.RiskScore
		resp["observed_at"] = snapshot.ObservedAt
		resp["stored_regime"] = snapshot.Regime
	}

	respondJSON(w, http.StatusOK, resp)
}
