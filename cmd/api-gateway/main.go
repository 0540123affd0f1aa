package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/training-admin-api/api/swagger"
	"github.com/noah-isme/training-admin-api/internal/bootstrap"
	"github.com/noah-isme/training-admin-api/internal/handler"
	internalmiddleware "github.com/noah-isme/training-admin-api/internal/middleware"
	"github.com/noah-isme/training-admin-api/pkg/config"
	"github.com/noah-isme/training-admin-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/training-admin-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/training-admin-api/pkg/middleware/requestid"
)

// @title Training Admin API
// @version 1.0.0
// @description Training analytics, trainee imports and report exports
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	app, err := bootstrap.New(cfg, logr)
	if err != nil {
		logr.Fatal("failed to build application", zap.Error(err))
	}
	defer app.Close() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	app.Start(ctx)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(app.Metrics))

	deps := map[string]handler.Pinger{"database": app.DB}
	if app.Redis != nil {
		deps["redis"] = handler.PingFunc(func(ctx context.Context) error { return app.Redis.Ping(ctx).Err() })
	}
	metricsHandler := handler.NewMetricsHandler(app.Metrics, deps)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	loc := cfg.Analytics.Location()
	api := r.Group(cfg.APIPrefix)
	api.Use(internalmiddleware.WithResponseMeta())

	if cfg.Analytics.Enabled {
		analyticsHandler := handler.NewAnalyticsHandler(app.Analytics, loc)
		group := api.Group("/analytics")
		group.GET("/summary", analyticsHandler.Summary)
		group.GET("/courses", analyticsHandler.Courses)
		group.GET("/students", analyticsHandler.Students)
		group.GET("/departments", analyticsHandler.Departments)
		group.GET("/timeseries", analyticsHandler.TimeSeries)
		group.GET("/system", analyticsHandler.System)
		group.POST("/cache/invalidate", analyticsHandler.InvalidateCache)
	}

	if cfg.Imports.Enabled {
		importHandler := handler.NewImportHandler(app.Imports, cfg.Imports.MaxUploadBytes)
		group := api.Group("/imports/trainees")
		group.POST("", importHandler.Import)
		group.POST("/preview", importHandler.Preview)
		group.POST("/duplicates", importHandler.ResolveDuplicates)
	}

	if cfg.Reports.Enabled {
		reportHandler := handler.NewReportHandler(app.Exports, loc)
		api.GET("/reports/export", reportHandler.Export)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env), zap.String("record_source", cfg.RecordSource.Kind))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	logr.Info("server stopped")
}
