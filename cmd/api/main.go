package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/exam-planner-api/api/swagger"
	"github.com/noah-isme/exam-planner-api/internal/handler"
	"github.com/noah-isme/exam-planner-api/internal/middleware"
	"github.com/noah-isme/exam-planner-api/internal/repository"
	"github.com/noah-isme/exam-planner-api/internal/service"
	"github.com/noah-isme/exam-planner-api/pkg/cache"
	"github.com/noah-isme/exam-planner-api/pkg/config"
	"github.com/noah-isme/exam-planner-api/pkg/database"
	"github.com/noah-isme/exam-planner-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/exam-planner-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/exam-planner-api/pkg/middleware/requestid"
	"github.com/noah-isme/exam-planner-api/pkg/storage"
)

// @title Exam Planner API
// @version 0.1.0
// @description Exam timetable scheduling engine with versioned persistence and async exports
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	campaignRepo := repository.NewCampaignRepository(db)
	offeringRepo := repository.NewOfferingRepository(db)
	timetableRepo := repository.NewTimetableRepository(db)
	entryRepo := repository.NewEntryRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metricsSvc := service.NewMetricsService()

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})

	campaignSvc := service.NewCampaignService(campaignRepo, offeringRepo, db, validate, logr)

	plannerSvc := service.NewPlannerService(
		timetableRepo,
		entryRepo,
		campaignRepo,
		offeringRepo,
		cacheRepo,
		db,
		metricsSvc,
		validate,
		logr,
		service.PlannerConfig{
			RestWeekday:     cfg.Planner.RestWeekday,
			SessionCeiling:  cfg.Planner.SessionCeiling,
			MainDayBudget:   cfg.Planner.MainDayBudget,
			TotalDayBudget:  cfg.Planner.TotalDayBudget,
			ProposalTTL:     cfg.Planner.ProposalTTL,
			CacheTTL:        cfg.Planner.CacheTTL,
			MaxOfferingRows: cfg.Planner.MaxOfferingRows,
		},
	)

	var exportSvc *service.ExportService
	if cfg.Exports.Enabled {
		store, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
		if err != nil {
			logr.Sugar().Fatalw("failed to init export storage", "error", err)
		}
		signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
		exportSvc = service.NewExportService(plannerSvc, store, signer, metricsSvc, logr, service.ExportConfig{
			Workers:   cfg.Exports.WorkerConcurrency,
			Retention: cfg.Exports.SignedURLTTL,
		})
		exportSvc.Start(context.Background())
		defer exportSvc.Stop()
	}

	authHandler := handler.NewAuthHandler(authSvc)
	campaignHandler := handler.NewCampaignHandler(campaignSvc)
	plannerHandler := handler.NewPlannerHandler(plannerSvc, exportSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	api.POST("/auth/login", authHandler.Login)
	if exportSvc != nil {
		api.GET("/exports/download", plannerHandler.ExportDownload)
	}

	protected := api.Group("")
	protected.Use(middleware.JWT(authSvc))
	{
		protected.POST("/campaigns", campaignHandler.Create)
		protected.GET("/campaigns", campaignHandler.List)
		protected.GET("/campaigns/:id", campaignHandler.Get)
		protected.POST("/campaigns/:id/close", campaignHandler.Close)
		protected.DELETE("/campaigns/:id", campaignHandler.Delete)
		protected.PUT("/campaigns/:id/offerings", campaignHandler.UploadOfferings)
		protected.GET("/campaigns/:id/offerings", campaignHandler.Offerings)

		protected.POST("/planner/plan", plannerHandler.Plan)
		protected.POST("/planner/save", plannerHandler.Save)
		protected.GET("/planner/timetables", plannerHandler.List)
		protected.GET("/planner/timetables/:id/entries", plannerHandler.Entries)
		protected.DELETE("/planner/timetables/:id", plannerHandler.Delete)

		if exportSvc != nil {
			protected.POST("/planner/timetables/:id/export", plannerHandler.Export)
			protected.GET("/exports/:jobId", plannerHandler.ExportJob)
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
