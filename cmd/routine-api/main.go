package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/campuskit/routine-api/api/swagger"
	"github.com/campuskit/routine-api/internal/handler"
	"github.com/campuskit/routine-api/internal/middleware"
	"github.com/campuskit/routine-api/internal/models"
	"github.com/campuskit/routine-api/internal/repository"
	"github.com/campuskit/routine-api/internal/service"
	"github.com/campuskit/routine-api/pkg/cache"
	"github.com/campuskit/routine-api/pkg/config"
	"github.com/campuskit/routine-api/pkg/database"
	"github.com/campuskit/routine-api/pkg/logger"
	corsmiddleware "github.com/campuskit/routine-api/pkg/middleware/cors"
	reqidmiddleware "github.com/campuskit/routine-api/pkg/middleware/requestid"
)

// @title Campus Routine API
// @version 1.0.0
// @description Weekly class routine scheduling with conflict detection
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
		logr.Sugar().Warnw("redis unavailable, grid caching disabled", "error", err)
		redisClient = nil
	}

	// Repositories.
	slotRepo := repository.NewRoutineSlotRepository(db)
	teacherRepo := repository.NewTeacherRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	programRepo := repository.NewProgramRepository(db)
	timegridRepo := repository.NewTimeGridRepository(db)
	yearRepo := repository.NewAcademicYearRepository(db)
	userRepo := repository.NewUserRepository(db)

	var cacheRepo *repository.CacheRepository
	if redisClient != nil {
		cacheRepo = repository.NewCacheRepository(redisClient, logr)
		defer cacheRepo.Close() //nolint:errcheck
	}

	// Services.
	metricsSvc := service.NewMetricsService()
	var cacheSvc *service.CacheService
	if cacheRepo != nil {
		cacheSvc = service.NewCacheService(cacheRepo, cfg.Routine.CacheEnabled, cfg.Routine.CacheTTL, metricsSvc, logr)
	} else {
		cacheSvc = service.NewCacheService(nil, false, 0, metricsSvc, logr)
	}

	authSvc := service.NewAuthService(userRepo, nil, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
	})
	conflictSvc := service.NewConflictService(slotRepo, metricsSvc, logr)
	routineSvc := service.NewRoutineService(slotRepo, subjectRepo, teacherRepo, roomRepo, yearRepo, conflictSvc, cacheSvc, cfg.Routine, logr)
	availabilitySvc := service.NewAvailabilityService(slotRepo, teacherRepo, roomRepo, logr)
	yearSvc := service.NewAcademicYearService(yearRepo, slotRepo, cacheSvc, logr)
	timegridSvc := service.NewTimeGridService(timegridRepo, cfg.Routine, logr)
	exportSvc := service.NewExportService(slotRepo, timegridRepo, cfg.Export, cfg.Routine, logr)
	catalogSvc := service.NewCatalogService(programRepo, teacherRepo, roomRepo, subjectRepo, logr)

	// Handlers.
	authHandler := handler.NewAuthHandler(authSvc)
	routineHandler := handler.NewRoutineHandler(routineSvc, conflictSvc)
	availabilityHandler := handler.NewAvailabilityHandler(availabilitySvc)
	yearHandler := handler.NewAcademicYearHandler(yearSvc)
	timegridHandler := handler.NewTimeGridHandler(timegridSvc)
	exportHandler := handler.NewExportHandler(exportSvc)
	catalogHandler := handler.NewCatalogHandler(catalogSvc)

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
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/logout", middleware.JWT(authSvc), authHandler.Logout)
	}

	editors := []models.UserRole{models.RoleAdmin, models.RoleTeacher}

	routines := api.Group("/routines", middleware.JWT(authSvc))
	{
		routines.GET("", routineHandler.List)
		routines.GET("/grid", routineHandler.Grid)
		routines.GET("/sweep", routineHandler.Sweep)
		routines.GET("/export", exportHandler.Export)
		routines.POST("/check-conflicts", routineHandler.CheckConflicts)
		routines.POST("", middleware.RequireRoles(editors...),
			middleware.Audit(userRepo, models.AuditActionSlotCreate, "routine_slot"), routineHandler.Create)
		routines.POST("/copy", middleware.RequireRoles(models.RoleAdmin),
			middleware.Audit(userRepo, models.AuditActionRoutineCopy, "routine"), routineHandler.Copy)
		routines.GET("/:id", routineHandler.Get)
		routines.PUT("/:id", middleware.RequireRoles(editors...),
			middleware.Audit(userRepo, models.AuditActionSlotUpdate, "routine_slot"), routineHandler.Update)
		routines.DELETE("/:id", middleware.RequireRoles(editors...),
			middleware.Audit(userRepo, models.AuditActionSlotDelete, "routine_slot"), routineHandler.Delete)
		routines.DELETE("/span/:spanId", middleware.RequireRoles(editors...),
			middleware.Audit(userRepo, models.AuditActionSlotDelete, "routine_span"), routineHandler.DeleteSpan)
	}

	availability := api.Group("/availability", middleware.JWT(authSvc))
	{
		availability.GET("/teachers", availabilityHandler.Teachers)
		availability.GET("/rooms", availabilityHandler.Rooms)
	}

	years := api.Group("/academic-years", middleware.JWT(authSvc))
	{
		years.GET("", yearHandler.List)
		years.GET("/:id", yearHandler.Get)
		years.POST("", middleware.RequireRoles(models.RoleAdmin), yearHandler.Create)
		years.POST("/:id/activate", middleware.RequireRoles(models.RoleAdmin),
			middleware.Audit(userRepo, models.AuditActionYearActivate, "academic_year"), yearHandler.Activate)
		years.POST("/:id/archive", middleware.RequireRoles(models.RoleAdmin),
			middleware.Audit(userRepo, models.AuditActionYearArchive, "academic_year"), yearHandler.Archive)
	}

	timegrid := api.Group("/timegrid", middleware.JWT(authSvc))
	{
		timegrid.GET("", timegridHandler.List)
		timegrid.PUT("", middleware.RequireRoles(models.RoleAdmin), timegridHandler.Replace)
	}

	catalog := api.Group("", middleware.JWT(authSvc))
	{
		catalog.GET("/programs", catalogHandler.Programs)
		catalog.GET("/teachers", catalogHandler.Teachers)
		catalog.GET("/teachers/:id/conflicts", routineHandler.TeacherConflicts)
		catalog.GET("/rooms", catalogHandler.Rooms)
		catalog.GET("/subjects", catalogHandler.Subjects)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
	logr.Sugar().Infow("server stopped")
}
