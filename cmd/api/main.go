package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/DELONE-de/cgpa-cal-api/api/swagger"
	"github.com/DELONE-de/cgpa-cal-api/internal/handler"
	"github.com/DELONE-de/cgpa-cal-api/internal/middleware"
	"github.com/DELONE-de/cgpa-cal-api/internal/repository"
	"github.com/DELONE-de/cgpa-cal-api/internal/service"
	"github.com/DELONE-de/cgpa-cal-api/pkg/cache"
	"github.com/DELONE-de/cgpa-cal-api/pkg/config"
	"github.com/DELONE-de/cgpa-cal-api/pkg/database"
	"github.com/DELONE-de/cgpa-cal-api/pkg/logger"
	corsmiddleware "github.com/DELONE-de/cgpa-cal-api/pkg/middleware/cors"
	reqidmiddleware "github.com/DELONE-de/cgpa-cal-api/pkg/middleware/requestid"
)

// @title CGPA CAL API
// @version 1.0.0
// @description Departmental grading, GPA/CGPA and transcript service
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
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, caching disabled", zap.Error(err))
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	validate := validator.New()

	// Repositories.
	userRepo := repository.NewUserRepository(db)
	departmentRepo := repository.NewDepartmentRepository(db)
	semesterRepo := repository.NewSemesterRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	scoreRepo := repository.NewScoreRepository(db)
	resultRepo := repository.NewResultRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	// Services.
	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Transcripts.CacheTTL, logr, cfg.Transcripts.CacheEnabled && redisClient != nil)
	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
	})
	departmentSvc := service.NewDepartmentService(departmentRepo, validate, logr)
	semesterSvc := service.NewSemesterService(semesterRepo, departmentRepo, validate, logr)
	courseSvc := service.NewCourseService(courseRepo, validate, logr)
	studentSvc := service.NewStudentService(studentRepo, validate, logr)
	resultSvc := service.NewResultService(resultRepo, scoreRepo, cacheSvc, metricsSvc, logr)
	scoreSvc := service.NewScoreService(scoreRepo, courseRepo, resultSvc, validate, logr)
	transcriptSvc := service.NewTranscriptService(studentSvc, resultRepo, scoreRepo, cacheSvc, cfg.Transcripts.SchoolName, cfg.Transcripts.CacheTTL, logr)
	analyticsSvc := service.NewAnalyticsService(resultRepo, departmentSvc, cacheSvc, cfg.Analytics.CacheTTL, logr)

	// Handlers.
	authHandler := handler.NewAuthHandler(authSvc)
	departmentHandler := handler.NewDepartmentHandler(departmentSvc)
	semesterHandler := handler.NewSemesterHandler(semesterSvc)
	courseHandler := handler.NewCourseHandler(courseSvc)
	studentHandler := handler.NewStudentHandler(studentSvc)
	scoreHandler := handler.NewScoreHandler(scoreSvc)
	resultHandler := handler.NewResultHandler(resultSvc)
	transcriptHandler := handler.NewTranscriptHandler(transcriptSvc)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsSvc)
	gradingHandler := handler.NewGradingHandler()
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

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	protected := api.Group("")
	protected.Use(middleware.JWT(authSvc))

	protected.POST("/auth/logout", authHandler.Logout)
	protected.POST("/auth/change-password", authHandler.ChangePassword)
	protected.GET("/auth/me", authHandler.Me)

	protected.GET("/grading/bands", gradingHandler.Bands)
	protected.GET("/grading/grade", gradingHandler.Grade)

	protected.GET("/departments", departmentHandler.List)
	protected.POST("/departments", departmentHandler.Create)
	protected.GET("/departments/:id", departmentHandler.Get)
	protected.PUT("/departments/:id", departmentHandler.Update)
	protected.DELETE("/departments/:id", departmentHandler.Delete)
	if cfg.Analytics.Enabled {
		protected.GET("/departments/:id/analytics", analyticsHandler.Distribution)
	}

	protected.GET("/semesters", semesterHandler.List)
	protected.POST("/semesters", semesterHandler.Create)
	protected.GET("/semesters/:id", semesterHandler.Get)
	protected.PUT("/semesters/:id", semesterHandler.Update)
	protected.DELETE("/semesters/:id", semesterHandler.Delete)

	protected.GET("/courses", courseHandler.List)
	protected.POST("/courses", courseHandler.Create)
	protected.GET("/courses/:id", courseHandler.Get)
	protected.PUT("/courses/:id", courseHandler.Update)
	protected.DELETE("/courses/:id", courseHandler.Delete)

	protected.GET("/students", studentHandler.List)
	protected.POST("/students", studentHandler.Create)
	protected.GET("/students/:id", studentHandler.Get)
	protected.PUT("/students/:id", studentHandler.Update)
	protected.DELETE("/students/:id", studentHandler.Deactivate)
	protected.GET("/students/:id/results", resultHandler.ListByStudent)
	protected.GET("/students/:id/cgpa", resultHandler.CGPA)
	protected.GET("/students/:id/transcript", transcriptHandler.Get)

	protected.GET("/scores", scoreHandler.List)
	protected.POST("/scores", scoreHandler.Upsert)
	protected.POST("/scores/bulk", scoreHandler.BulkUpsert)
	protected.DELETE("/scores/:id", scoreHandler.Delete)

	protected.POST("/results/recalculate", resultHandler.Recalculate)
	protected.POST("/results/finalize", resultHandler.Finalize)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
