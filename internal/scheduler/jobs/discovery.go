package jobs

import (
	"context"
	"fmt"

	"github.com/redchoeng/stock-recommendation-3.0/internal/pipeline"
	"github.com/redchoeng/stock-recommendation-3.0/internal/universe"
	"github.com/redchoeng/stock-recommendation-3.0/pkg/logger"
)

// DiscoveryJob runs a full discovery cycle over the active watchlist
// ⭐ SSOT: 정기 사이클 실행은 이 Job에서만
type DiscoveryJob struct {
	orchestrator *pipeline.Orchestrator
	registry     *universe.Registry
	schedule     string
	logger       *logger.Logger
}

// NewDiscoveryJob creates a new discovery cycle job
func NewDiscoveryJob(orch *pipeline.Orchestrator, reg *universe.Registry, schedule string, log *logger.Logger) *DiscoveryJob {
	return &DiscoveryJob{
		orchestrator: orch,
		registry:     reg,
		schedule:     schedule,
		logger:       log,
	}
}

// Name returns the job name
func (j *DiscoveryJob) Name() string {
	return "discovery_cycle"
}

// Schedule returns the cron schedule expression
func (j *DiscoveryJob) Schedule() string {
	return j.schedule
}

// Run executes a full discovery cycle
func (j *DiscoveryJob) Run(ctx context.Context) error {
	tickers := j.registry.Tickers()
	if len(tickers) == 0 {
		j.logger.Warn("Watchlist is empty, skipping discovery cycle")
		return nil
	}

	j.logger.WithField("tickers", len(tickers)).Info("Starting scheduled discovery cycle")

	result, err := j.orchestrator.Run(ctx, tickers)
	if err != nil {
		return fmt.Errorf("discovery cycle: %w", err)
	}

	j.logger.WithFields(map[string]interface{}{
		"regime":          string(result.Regime),
		"recommendations": len(result.Recommendations),
		"skipped":         len(result.Skipped),
		"duration":        result.FinishedAt.Sub(result.StartedAt),
	}).Info("Scheduled discovery cycle completed")

	return nil
}
