package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/aria7-op/sms-sub008/api/swagger"
	"github.com/aria7-op/sms-sub008/internal/handler"
	"github.com/aria7-op/sms-sub008/internal/middleware"
	"github.com/aria7-op/sms-sub008/internal/repository"
	"github.com/aria7-op/sms-sub008/internal/service"
	"github.com/aria7-op/sms-sub008/pkg/cache"
	"github.com/aria7-op/sms-sub008/pkg/config"
	"github.com/aria7-op/sms-sub008/pkg/database"
	"github.com/aria7-op/sms-sub008/pkg/logger"
	corsmiddleware "github.com/aria7-op/sms-sub008/pkg/middleware/cors"
	reqidmiddleware "github.com/aria7-op/sms-sub008/pkg/middleware/requestid"
)

// @title Timetable API
// @version 0.1.0
// @description Adaptive class timetable generation and learning service
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to database", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, pattern cache disabled", "error", err)
		redisClient = nil
	}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	assignmentRepo := repository.NewAssignmentRepository(db)
	patternRepo := repository.NewPatternRepository(db)
	timetableRepo := repository.NewTimetableRepository(db)
	feedbackRepo := repository.NewFeedbackRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	patternSvc := service.NewPatternService(patternRepo, cacheRepo, cfg.Timetable.PatternCacheTTL, logr, metricsSvc)
	timetableSvc := service.NewTimetableService(assignmentRepo, patternSvc, timetableRepo, db, validate, logr, metricsSvc, cfg.Timetable)
	learningSvc := service.NewLearningService(patternSvc, feedbackRepo, timetableRepo, validate, logr, metricsSvc)

	timetableHandler := handler.NewTimetableHandler(timetableSvc)
	feedbackHandler := handler.NewFeedbackHandler(learningSvc)
	patternHandler := handler.NewPatternHandler(patternSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

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
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group("/api/v1")
	{
		api.GET("/timetables/versions", timetableHandler.ListVersions)
		api.GET("/timetables/versions/:id/slots", timetableHandler.GetVersionSlots)
		api.GET("/timetables/versions/:id/export", timetableHandler.ExportVersion)
		api.GET("/patterns", patternHandler.List)

		protected := api.Group("")
		protected.Use(middleware.JWT(cfg.JWT))
		{
			protected.POST("/timetables/generate", timetableHandler.Generate)
			protected.POST("/feedback", feedbackHandler.CreateSession)
			protected.POST("/feedback/:id/corrections", feedbackHandler.RecordCorrection)
			protected.POST("/feedback/:id/corrections/batch", feedbackHandler.RecordCorrectionBatch)
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
