package commands

import (
	"context"
	"fmt"

	"github.com/redchoeng/stock-recommendation-3.0/internal/alerts"
	"github.com/redchoeng/stock-recommendation-3.0/internal/engineconfig"
	"github.com/redchoeng/stock-recommendation-3.0/internal/macro"
	"github.com/redchoeng/stock-recommendation-3.0/internal/nlp"
	"github.com/redchoeng/stock-recommendation-3.0/internal/pipeline"
	"github.com/redchoeng/stock-recommendation-3.0/internal/quant"
	"github.com/redchoeng/stock-recommendation-3.0/internal/scheduler"
	"github.com/redchoeng/stock-recommendation-3.0/internal/scheduler/jobs"
	"github.com/redchoeng/stock-recommendation-3.0/internal/storage"
	"github.com/redchoeng/stock-recommendation-3.0/internal/universe"
	"github.com/redchoeng/stock-recommendation-3.0/pkg/config"
	"github.com/redchoeng/stock-recommendation-3.0/pkg/database"
	"github.com/redchoeng/stock-recommendation-3.0/pkg/httputil"
	"github.com/redchoeng/stock-recommendation-3.0/pkg/logger"
	"github.com/redchoeng/stock-recommendation-3.0/pkg/redis"
)

// app bundles every wired collaborator for the CLI commands.
// ⭐ SSOT: 의존성 조립은 이 파일에서만
type app struct {
	cfg    *config.Config
	engine *engineconfig.Config
	log    *logger.Logger

	db    *database.DB
	redis *redis.Client

	repo         *storage.Repository
	registry     *universe.Registry
	quant        *quant.Provider
	orchestrator *pipeline.Orchestrator
	scheduler    *scheduler.Scheduler
}

// newApp loads configuration and wires the full pipeline.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg)

	engine, _, err := engineconfig.Load(cfg.EngineConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load engine config: %w", err)
	}

	// Database + schema
	db, err := database.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := storage.Migrate(ctx, db.Pool); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	// Redis (optional, degrades to pass-through when disabled)
	rds, err := redis.New(cfg, log)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	limiter := redis.NewRateLimiter(rds, "discovery")

	// Per-upstream HTTP clients with their own rate budgets
	chartHTTP := httputil.New(log).
		WithRateLimiter(limiter, redis.ChartRateLimit)
	fredHTTP := httputil.New(log).
		WithRateLimiter(limiter, redis.FREDRateLimit)
	edgarHTTP := httputil.New(log).
		WithUserAgent(cfg.EDGAR.UserAgent).
		WithRateLimiter(limiter, redis.EDGARRateLimit)
	ollamaHTTP := httputil.NewWithTimeout(log, cfg.Ollama.Timeout).
		DisableRetry()
	alertHTTP := httputil.New(log)

	// Providers
	charts := quant.NewChartClient(chartHTTP, cfg.Chart.BaseURL, redis.NewCache(rds, "chart"), log)
	quantProvider := quant.NewProvider(charts, engine.Quant, log)

	fred := macro.NewFREDClient(fredHTTP, cfg.FRED.BaseURL, cfg.FRED.APIKey, redis.NewCache(rds, "fred"), log)
	macroProvider := macro.NewProvider(fred, charts, engine.Macro, log)

	edgar := nlp.NewEDGARClient(edgarHTTP, cfg.EDGAR.BaseURL, log)
	ollama := nlp.NewOllamaClient(ollamaHTTP, cfg.Ollama)
	nlpProvider := nlp.NewProvider(edgar, ollama, log)

	notifier, err := alerts.NewNotifier(alertHTTP, cfg.Alerts, log)
	if err != nil {
		rds.Close()
		db.Close()
		return nil, fmt.Errorf("init notifier: %w", err)
	}

	repo := storage.NewRepository(db.Pool)
	snapshots := storage.NewSnapshots(repo)

	// Watchlist
	wl, err := universe.Load(cfg.WatchlistPath)
	if err != nil {
		rds.Close()
		db.Close()
		return nil, fmt.Errorf("load watchlist: %w", err)
	}
	registry := universe.NewRegistry(wl)
	quantProvider.SetMarketCaps(wl.MarketCaps())

	orch := pipeline.NewOrchestrator(pipeline.Deps{
		Logger:    log,
		Config:    engine,
		Quant:     quantProvider,
		Macro:     macroProvider,
		NLP:       nlpProvider,
		Storage:   repo,
		Snapshots: snapshots,
		Alerts:    notifier,
	})

	// Resume the persisted regime so a restart does not reset hysteresis
	if snap, err := repo.LatestRegime(ctx); err != nil {
		log.WithError(err).Warn("Failed to read persisted regime, starting from NEUTRAL")
	} else if snap != nil {
		orch.RestoreRegime(snap.Regime)
		log.WithField("regime", string(snap.Regime)).Info("Regime restored from last snapshot")
	}

	// Scheduler with the standing jobs
	sched := scheduler.New(log)
	discoveryJob := jobs.NewDiscoveryJob(orch, registry, cfg.Scheduler.DiscoverySchedule, log)
	watchlistJob := jobs.NewWatchlistSyncJob(cfg.WatchlistPath, registry, snapshots, quantProvider, cfg.Scheduler.WatchlistSchedule, log)

	if err := sched.AddJob(discoveryJob); err != nil {
		rds.Close()
		db.Close()
		return nil, fmt.Errorf("register discovery job: %w", err)
	}
	if err := sched.AddJob(watchlistJob); err != nil {
		rds.Close()
		db.Close()
		return nil, fmt.Errorf("register watchlist job: %w", err)
	}

	return &app{
		cfg:          cfg,
		engine:       engine,
		log:          log,
		db:           db,
		redis:        rds,
		repo:         repo,
		registry:     registry,
		quant:        quantProvider,
		orchestrator: orch,
		scheduler:    sched,
	}, nil
}

// close releases held connections.
func (a *app) close() {
	if a.redis != nil {
		a.redis.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
}
