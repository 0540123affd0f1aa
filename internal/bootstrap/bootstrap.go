// Package bootstrap assembles the service graph shared by the HTTP server and the CLI.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/training-admin-api/internal/repository"
	"github.com/noah-isme/training-admin-api/internal/service"
	"github.com/noah-isme/training-admin-api/pkg/cache"
	"github.com/noah-isme/training-admin-api/pkg/config"
	"github.com/noah-isme/training-admin-api/pkg/database"
	"github.com/noah-isme/training-admin-api/pkg/period"
)

// App holds the wired services and the connections they depend on.
type App struct {
	Config    *config.Config
	DB        *sqlx.DB
	Redis     *redis.Client
	Metrics   *service.MetricsService
	Analytics *service.AnalyticsService
	Imports   *service.ImportService
	Exports   *service.ExportService
	Scheduler *service.RefreshScheduler
}

// New opens connections and builds every service. Redis is optional; when it
// is disabled or unreachable analytics fall back to an in-process cache.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	app := &App{Config: cfg, DB: db, Metrics: service.NewMetricsService()}

	var cacheRepo service.CacheRepository = repository.NewMemoryCacheRepository()
	if cfg.Redis.Enabled {
		client, err := cache.NewRedis(context.Background(), cfg.Redis)
		if err != nil {
			logger.Warn("redis unavailable, using in-memory analytics cache", zap.Error(err))
		} else {
			app.Redis = client
			cacheRepo = repository.NewCacheRepository(client, logger)
		}
	}
	cacheSvc := service.NewCacheService(cacheRepo, app.Metrics, cfg.Analytics.CacheTTL, logger, cfg.Analytics.Enabled)

	source, err := recordSource(cfg, db)
	if err != nil {
		_ = app.Close()
		return nil, err
	}
	loc := cfg.Analytics.Location()
	app.Analytics = service.NewAnalyticsService(source, cacheSvc, app.Metrics, period.NewResolver(loc), service.AnalyticsServiceConfig{
		PassThreshold:     cfg.Analytics.PassThreshold,
		DefaultSeriesDays: cfg.Analytics.DefaultSeriesDays,
		MaxSeriesDays:     cfg.Analytics.MaxSeriesDays,
	}, logger)

	headers := service.DefaultHeaderMap()
	if cfg.Imports.HeaderAliasFile != "" {
		if headers, err = service.LoadHeaderAliases(cfg.Imports.HeaderAliasFile, headers); err != nil {
			_ = app.Close()
			return nil, err
		}
	}
	app.Imports = service.NewImportService(service.NewImportValidator(headers), repository.NewTraineeRepository(db), app.Analytics, app.Metrics, logger)
	app.Exports = service.NewExportService(app.Analytics, cfg.Reports.DefaultFormat, logger)

	if cfg.Analytics.Enabled && cfg.Analytics.RefreshCron != "" {
		app.Scheduler, err = service.NewRefreshScheduler(cfg.Analytics.RefreshCron, loc, app.Analytics, cfg.RecordSource.Timeout*3, logger)
		if err != nil {
			_ = app.Close()
			return nil, err
		}
	}
	return app, nil
}

func recordSource(cfg *config.Config, db *sqlx.DB) (service.RecordSource, error) {
	switch cfg.RecordSource.Kind {
	case "", config.RecordSourcePostgres:
		return repository.NewRecordRepository(db), nil
	case config.RecordSourceREST:
		if cfg.RecordSource.BaseURL == "" {
			return nil, fmt.Errorf("RECORD_SOURCE_URL is required for the rest record source")
		}
		return repository.NewRESTRecordSource(cfg.RecordSource.BaseURL, cfg.RecordSource.APIKey, cfg.RecordSource.Timeout), nil
	default:
		return nil, fmt.Errorf("unsupported record source %q", cfg.RecordSource.Kind)
	}
}

// Start launches background work.
func (a *App) Start(ctx context.Context) {
	if a.Scheduler != nil {
		a.Scheduler.Start(ctx)
	}
}

// Close stops background work and releases connections.
func (a *App) Close() error {
	if a.Scheduler != nil {
		a.Scheduler.Stop()
	}
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
