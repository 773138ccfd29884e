package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/probuilder/lms-api/api/swagger"
	"github.com/probuilder/lms-api/internal/handler"
	"github.com/probuilder/lms-api/internal/middleware"
	"github.com/probuilder/lms-api/internal/models"
	"github.com/probuilder/lms-api/internal/repository"
	"github.com/probuilder/lms-api/internal/service"
	"github.com/probuilder/lms-api/pkg/cache"
	"github.com/probuilder/lms-api/pkg/config"
	"github.com/probuilder/lms-api/pkg/database"
	"github.com/probuilder/lms-api/pkg/logger"
	corsmiddleware "github.com/probuilder/lms-api/pkg/middleware/cors"
	reqidmiddleware "github.com/probuilder/lms-api/pkg/middleware/requestid"
)

// @title Program Builder LMS API
// @version 1.0.0
// @description Learning management API with points, badges and leaderboards
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
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	// Repositories.
	userRepo := repository.NewUserRepository(db)
	programRepo := repository.NewProgramRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	progressRepo := repository.NewProgressRepository(db)
	pointsRepo := repository.NewPointsRepository(db)
	badgeRepo := repository.NewBadgeRepository(db)
	leaderboardRepo := repository.NewLeaderboardRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	// Services.
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Leaderboard.CacheTTL, logr, redisClient != nil)

	pointsTable := service.PointsTableFromConfig(cfg.Gamification)
	pointsSvc := service.NewPointsService(pointsRepo, pointsTable, validate, logr)
	badgeSvc := service.NewBadgeService(badgeRepo, progressRepo, validate, logr)

	awardSvc := service.NewAwardService(pointsSvc, badgeSvc, badgeRepo, cacheSvc, metricsSvc, validate, logr, cfg.Gamification.Enabled)

	authSvc := service.NewAuthService(userRepo, awardSvc, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "lms-api",
	})
	progressSvc := service.NewProgressService(progressRepo, awardSvc, validate, logr)
	leaderboardSvc := service.NewLeaderboardService(leaderboardRepo, pointsRepo, badgeRepo, progressRepo, cacheSvc, cfg.Leaderboard, logr)
	programSvc := service.NewProgramService(programRepo, validate, logr)
	courseSvc := service.NewCourseService(courseRepo, validate, logr)

	// Handlers.
	authHandler := handler.NewAuthHandler(authSvc)
	programHandler := handler.NewProgramHandler(programSvc)
	courseHandler := handler.NewCourseHandler(courseSvc)
	progressHandler := handler.NewProgressHandler(progressSvc)
	gamificationHandler := handler.NewGamificationHandler(leaderboardSvc)
	badgeHandler := handler.NewBadgeHandler(badgeSvc)
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
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "db unavailable"})
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
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/logout", middleware.JWT(authSvc), authHandler.Logout)
		auth.GET("/me", middleware.JWT(authSvc), authHandler.Me)
	}

	authed := api.Group("")
	authed.Use(middleware.JWT(authSvc))
	{
		authed.GET("/programs", programHandler.List)
		authed.GET("/programs/:id", programHandler.Get)
		authed.POST("/programs", middleware.RequireRoles(models.RoleAdmin, models.RoleInstructor), programHandler.Create)
		authed.PUT("/programs/:id", middleware.RequireRoles(models.RoleAdmin, models.RoleInstructor), programHandler.Update)
		authed.GET("/programs/:id/courses", courseHandler.ListByProgram)
		authed.POST("/programs/:id/enroll", progressHandler.EnrollProgram)
		authed.POST("/programs/:id/complete", progressHandler.CompleteProgram)

		authed.GET("/courses/:id", courseHandler.Get)
		authed.POST("/courses", middleware.RequireRoles(models.RoleAdmin, models.RoleInstructor), courseHandler.Create)
		authed.PUT("/courses/:id", middleware.RequireRoles(models.RoleAdmin, models.RoleInstructor), courseHandler.Update)
		authed.GET("/courses/:id/lessons", courseHandler.ListLessons)
		authed.GET("/courses/:id/assessments", courseHandler.ListAssessments)
		authed.POST("/courses/:id/enroll", progressHandler.EnrollCourse)
		authed.POST("/courses/:id/complete", progressHandler.CompleteCourse)

		authed.POST("/lessons", middleware.RequireRoles(models.RoleAdmin, models.RoleInstructor), courseHandler.CreateLesson)
		authed.POST("/lessons/:id/complete", progressHandler.CompleteLesson)

		authed.POST("/assessments", middleware.RequireRoles(models.RoleAdmin, models.RoleInstructor), courseHandler.CreateAssessment)
		authed.POST("/assessments/:id/submissions", progressHandler.SubmitAssessment)

		authed.GET("/gamification/me", gamificationHandler.MySummary)
		authed.GET("/gamification/leaderboard", gamificationHandler.Leaderboard)
		authed.GET("/gamification/leaderboard/export", gamificationHandler.ExportLeaderboard)
		authed.GET("/users/:id/gamification", middleware.RBAC(string(models.RoleAdmin), string(models.RoleInstructor), "SELF"), gamificationHandler.Summary)

		authed.GET("/badges", badgeHandler.List)
		authed.POST("/badges", middleware.RequireRoles(models.RoleAdmin), badgeHandler.Create)
		authed.PUT("/badges/:id", middleware.RequireRoles(models.RoleAdmin), badgeHandler.Update)
		authed.POST("/badges/:id/award", middleware.RequireRoles(models.RoleAdmin, models.RoleInstructor), badgeHandler.Award)

		authed.GET("/admin/status", middleware.RequireRoles(models.RoleAdmin), metricsHandler.Status)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
