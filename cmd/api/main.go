package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/trainwell/pathway-api/api/swagger"
	"github.com/trainwell/pathway-api/internal/handler"
	"github.com/trainwell/pathway-api/internal/middleware"
	"github.com/trainwell/pathway-api/internal/models"
	"github.com/trainwell/pathway-api/internal/repository"
	"github.com/trainwell/pathway-api/internal/service"
	"github.com/trainwell/pathway-api/pkg/cache"
	"github.com/trainwell/pathway-api/pkg/config"
	"github.com/trainwell/pathway-api/pkg/database"
	appErrors "github.com/trainwell/pathway-api/pkg/errors"
	"github.com/trainwell/pathway-api/pkg/logger"
	corsmiddleware "github.com/trainwell/pathway-api/pkg/middleware/cors"
	reqidmiddleware "github.com/trainwell/pathway-api/pkg/middleware/requestid"
	"github.com/trainwell/pathway-api/pkg/storage"
)

// @title Pathway Portal API
// @version 1.0.0
// @description Training program management portal
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	appErrors.SetDebug(cfg.Env == config.EnvDevelopment)
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

	files, err := storage.NewLocalStorage(cfg.Uploads.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to prepare upload storage", "error", err)
	}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	var cacheSvc *service.CacheService
	if redisClient != nil {
		cacheRepo := repository.NewCacheRepository(redisClient, logr)
		cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Timeline.CacheTTL, logr, cfg.Timeline.CacheEnabled)
	}

	userRepo := repository.NewUserRepository(db)
	programRepo := repository.NewProgramRepository(db)
	eventRepo := repository.NewEventRepository(db)
	resourceRepo := repository.NewResourceRepository(db)
	linkRepo := repository.NewResourceLinkRepository(db)
	workshopRepo := repository.NewWorkshopRepository(db)
	agendaRepo := repository.NewAgendaItemRepository(db)

	authSvc := service.NewAuthService(userRepo, cfg.JWT, validate, logr)
	userSvc := service.NewUserService(userRepo, validate, logr)
	timelineSvc := service.NewTimelineService(programRepo, eventRepo, cacheSvc, logr).WithMetrics(metricsSvc)
	programSvc := service.NewProgramService(programRepo, timelineSvc, validate, logr)
	eventSvc := service.NewEventService(eventRepo, programRepo, timelineSvc, validate, logr)
	resourceSvc := service.NewResourceService(resourceRepo, linkRepo, files, validate, logr)
	workshopSvc := service.NewWorkshopService(workshopRepo, programRepo, validate, logr)
	agendaSvc := service.NewAgendaService(agendaRepo, workshopRepo, validate, logr)

	authHandler := handler.NewAuthHandler(authSvc)
	userHandler := handler.NewUserHandler(userSvc)
	programHandler := handler.NewProgramHandler(programSvc, timelineSvc)
	eventHandler := handler.NewEventHandler(eventSvc)
	resourceHandler := handler.NewResourceHandler(resourceSvc, cfg.Uploads)
	workshopHandler := handler.NewWorkshopHandler(workshopSvc, agendaSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)
	r.Static("/files", cfg.Uploads.StorageDir)

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

	users := authed.Group("/users")
	{
		users.GET("", middleware.RequireRoles(models.RoleAdmin), userHandler.List)
		users.GET("/:id", middleware.RBAC(string(models.RoleAdmin), middleware.SelfAccess), userHandler.Get)
		users.POST("", middleware.RequireRoles(models.RoleAdmin), userHandler.Create)
		users.PUT("/:id", middleware.RequireRoles(models.RoleAdmin), userHandler.Update)
		users.DELETE("/:id", middleware.RequireRoles(models.RoleAdmin), userHandler.Deactivate)
	}

	programs := authed.Group("/programs")
	{
		programs.GET("", programHandler.List)
		programs.GET("/:id", programHandler.Get)
		programs.POST("", middleware.RequireRoles(models.RoleAdmin, models.RoleTrainer), programHandler.Create)
		programs.PUT("/:id", middleware.RequireRoles(models.RoleAdmin, models.RoleTrainer), programHandler.Update)
		programs.DELETE("/:id", middleware.RequireRoles(models.RoleAdmin), programHandler.Delete)
		programs.GET("/:id/timeline", programHandler.Timeline)
		programs.GET("/:id/structure", programHandler.Structure)
	}

	events := authed.Group("/events")
	{
		events.GET("", eventHandler.List)
		events.GET("/:id", eventHandler.Get)
		events.POST("", middleware.RequireRoles(models.RoleAdmin, models.RoleTrainer), eventHandler.Create)
		events.DELETE("/:id", middleware.RequireRoles(models.RoleAdmin, models.RoleTrainer), eventHandler.Delete)
	}

	resources := authed.Group("/resources")
	{
		resources.GET("", resourceHandler.List)
		resources.POST("", middleware.RequireRoles(models.RoleAdmin, models.RoleTrainer), resourceHandler.Create)
		resources.POST("/link/:anchorKind", middleware.RequireRoles(models.RoleAdmin, models.RoleTrainer), resourceHandler.Link)
		resources.DELETE("/unlink/:anchorKind/:resourceId/:anchorId", middleware.RequireRoles(models.RoleAdmin, models.RoleTrainer), resourceHandler.Unlink)
		resources.GET("/:id", resourceHandler.Get)
		// Shares the :id wildcard with the detail route; the handler reads it
		// as the anchor kind.
		resources.GET("/:id/:anchorId", resourceHandler.Anchored)
		resources.PUT("/:id", middleware.RequireRoles(models.RoleAdmin, models.RoleTrainer), resourceHandler.Update)
		resources.DELETE("/:id", middleware.RequireRoles(models.RoleAdmin, models.RoleTrainer), resourceHandler.Delete)
	}

	workshops := authed.Group("/workshops")
	{
		workshops.GET("", workshopHandler.List)
		workshops.GET("/:id", workshopHandler.Get)
		workshops.POST("", middleware.RequireRoles(models.RoleAdmin, models.RoleTrainer), workshopHandler.Create)
		workshops.PUT("/:id", middleware.RequireRoles(models.RoleAdmin, models.RoleTrainer), workshopHandler.Update)
		workshops.DELETE("/:id", middleware.RequireRoles(models.RoleAdmin), workshopHandler.Delete)

		workshops.GET("/:id/agenda", workshopHandler.ListAgenda)
		workshops.POST("/:id/agenda", middleware.RequireRoles(models.RoleAdmin, models.RoleTrainer), workshopHandler.CreateAgendaItem)
		workshops.PUT("/:id/agenda/reorder", middleware.RequireRoles(models.RoleAdmin, models.RoleTrainer), workshopHandler.ReorderAgenda)
		workshops.PUT("/:id/agenda/:itemId", middleware.RequireRoles(models.RoleAdmin, models.RoleTrainer), workshopHandler.UpdateAgendaItem)
		workshops.DELETE("/:id/agenda/:itemId", middleware.RequireRoles(models.RoleAdmin, models.RoleTrainer), workshopHandler.DeleteAgendaItem)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
