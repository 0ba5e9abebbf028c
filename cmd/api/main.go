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
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/shkola-app/gradebook-api/api/swagger"
	"github.com/shkola-app/gradebook-api/internal/handler"
	"github.com/shkola-app/gradebook-api/internal/middleware"
	"github.com/shkola-app/gradebook-api/internal/repository"
	"github.com/shkola-app/gradebook-api/internal/service"
	"github.com/shkola-app/gradebook-api/pkg/cache"
	"github.com/shkola-app/gradebook-api/pkg/config"
	"github.com/shkola-app/gradebook-api/pkg/database"
	appErrors "github.com/shkola-app/gradebook-api/pkg/errors"
	"github.com/shkola-app/gradebook-api/pkg/jobs"
	"github.com/shkola-app/gradebook-api/pkg/logger"
	corsmiddleware "github.com/shkola-app/gradebook-api/pkg/middleware/cors"
	reqidmiddleware "github.com/shkola-app/gradebook-api/pkg/middleware/requestid"
	"github.com/shkola-app/gradebook-api/pkg/response"
	"github.com/shkola-app/gradebook-api/pkg/sms"
)

// @title Gradebook API
// @version 1.0.0
// @description School gradebook: phone-code login, teacher accounts, grades and leaderboard
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	if err := database.CreateSchema(db); err != nil {
		logr.Sugar().Fatalw("failed to apply schema", "error", err)
	}

	metricsSvc := service.NewMetricsService()

	var cacheSvc *service.CacheService
	if cfg.Leaderboard.CacheEnabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Fatalw("failed to connect to redis", "error", err)
		}
		defer redisClient.Close()
		cacheRepo := repository.NewCacheRepository(redisClient)
		cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Leaderboard.CacheTTL, logr, true)
	}

	sender := sms.NewLogSender(logr)
	smsQueue := jobs.NewQueue("sms", func(ctx context.Context, job jobs.Job) error {
		msg, ok := job.Payload.(sms.Message)
		if !ok {
			return fmt.Errorf("unexpected payload type %T", job.Payload)
		}
		return sender.Send(ctx, msg)
	}, jobs.QueueConfig{
		Workers:    cfg.SMS.Workers,
		BufferSize: cfg.SMS.QueueSize,
		MaxRetries: cfg.SMS.MaxRetries,
		Logger:     logr,
	})
	smsQueue.Start(ctx)
	defer smsQueue.Stop()

	userRepo := repository.NewUserRepository(db)
	codeRepo := repository.NewCodeRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	gradeRepo := repository.NewGradeRepository(db)

	validate := validator.New()

	authSvc := service.NewAuthService(codeRepo, userRepo, smsQueue, validate, logr, service.AuthConfig{
		DirectorPhone: cfg.Auth.DirectorPhone,
		CodeTTL:       cfg.Auth.CodeTTL,
	})
	directorSvc := service.NewDirectorService(userRepo, validate, logr)
	gradingSvc := service.NewGradingService(gradeRepo, subjectRepo, cacheSvc, validate, logr, cfg.Leaderboard.CacheTTL)

	reaper := service.NewCodeReaper(codeRepo, cfg.Auth.ReapInterval, cfg.Auth.CodeRetention, logr)
	go reaper.Run(ctx)

	authHandler := handler.NewAuthHandler(authSvc)
	directorHandler := handler.NewDirectorHandler(directorSvc)
	gradeHandler := handler.NewGradeHandler(gradingSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.HandleMethodNotAllowed = true
	r.NoMethod(func(c *gin.Context) {
		response.Error(c, appErrors.ErrMethodNotAllowed)
	})

	api := r.Group(cfg.APIPrefix)
	{
		api.POST("/auth", authHandler.Handle)

		api.GET("/director", directorHandler.List)
		api.POST("/director", directorHandler.Create)
		api.GET("/director/export", directorHandler.ExportCSV)

		api.GET("/grades", gradeHandler.Report)
		api.POST("/grades", gradeHandler.Record)
		api.GET("/grades/export", gradeHandler.ExportPDF)
		api.GET("/subjects", gradeHandler.Subjects)
	}

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("server shutdown failed", "error", err)
	}
}
