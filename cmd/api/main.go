package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/tecnoacademia/attendance-api/api/swagger"
	"github.com/tecnoacademia/attendance-api/internal/handler"
	internalmiddleware "github.com/tecnoacademia/attendance-api/internal/middleware"
	"github.com/tecnoacademia/attendance-api/internal/repository"
	"github.com/tecnoacademia/attendance-api/internal/service"
	"github.com/tecnoacademia/attendance-api/pkg/cache"
	"github.com/tecnoacademia/attendance-api/pkg/config"
	"github.com/tecnoacademia/attendance-api/pkg/database"
	"github.com/tecnoacademia/attendance-api/pkg/export"
	"github.com/tecnoacademia/attendance-api/pkg/logger"
	corsmiddleware "github.com/tecnoacademia/attendance-api/pkg/middleware/cors"
	reqidmiddleware "github.com/tecnoacademia/attendance-api/pkg/middleware/requestid"
)

// @title TecnoAcademia Attendance API
// @version 1.0.0
// @description Attendance tracking backend for TecnoAcademia instructors
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	// Redis is optional: the dashboard degrades to uncached snapshots.
	var redisClient *redis.Client
	if cfg.Dashboard.CacheEnabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, dashboard cache disabled", zap.Error(err))
		} else {
			defer redisClient.Close()
		}
	}

	validate := validator.New()

	instructorRepo := repository.NewInstructorRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	reportRepo := repository.NewReportRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient)

	metricsSvc := service.NewMetricsService()
	authSvc := service.NewAuthService(instructorRepo, validate, logr, service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
	})
	instructorSvc := service.NewInstructorService(instructorRepo, validate, logr)
	studentSvc := service.NewStudentService(studentRepo, validate, logr)
	sessionSvc := service.NewSessionService(sessionRepo, validate, logr)
	attendanceSvc := service.NewAttendanceService(attendanceRepo, studentRepo, validate, logr)
	importSvc := service.NewImportService(attendanceRepo, logr)
	reportSvc := service.NewReportService(reportRepo, studentRepo, attendanceRepo, logr)
	dashboardSvc := service.NewDashboardService(reportRepo, sessionRepo, cacheRepo, metricsSvc, service.DashboardConfig{
		CacheEnabled: cfg.Dashboard.CacheEnabled && redisClient != nil,
		CacheTTL:     cfg.Dashboard.CacheTTL,
	}, logr)

	seedCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := instructorSvc.EnsureAdmin(seedCtx, service.AdminSeed(cfg.Admin)); err != nil {
		logr.Warn("admin seeding failed", zap.Error(err))
	}
	cancel()

	authHandler := handler.NewAuthHandler(authSvc)
	instructorHandler := handler.NewInstructorHandler(instructorSvc)
	studentHandler := handler.NewStudentHandler(studentSvc)
	sessionHandler := handler.NewSessionHandler(sessionSvc)
	attendanceHandler := handler.NewAttendanceHandler(attendanceSvc, importSvc)
	reportHandler := handler.NewReportHandler(reportSvc, export.NewCSVExporter(), export.NewPDFExporter())
	dashboardHandler := handler.NewDashboardHandler(dashboardSvc)
	healthHandler := handler.NewHealthHandler(db)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))

	r.GET("/health", healthHandler.Check)
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix + "/api/v1")

	api.POST("/login", authHandler.Login)
	api.POST("/register", authHandler.Register)

	auth := api.Group("")
	auth.Use(internalmiddleware.RequireAuth(authSvc))
	{
		auth.GET("/me", authHandler.Me)
		auth.GET("/instructors", instructorHandler.ListActive)

		auth.GET("/students", studentHandler.List)
		auth.POST("/students", studentHandler.Create)
		auth.GET("/students/:id", studentHandler.Get)
		auth.PUT("/students/:id", studentHandler.Update)
		auth.DELETE("/students/:id", studentHandler.Delete)

		auth.GET("/sessions", sessionHandler.List)
		auth.POST("/sessions", sessionHandler.Create)
		auth.GET("/sessions/calendar", sessionHandler.Calendar)
		auth.GET("/sessions/:id", sessionHandler.Get)
		auth.PUT("/sessions/:id", sessionHandler.Update)
		auth.DELETE("/sessions/:id", sessionHandler.Delete)

		auth.GET("/attendance", attendanceHandler.List)
		auth.POST("/attendance", attendanceHandler.Record)
		auth.POST("/attendance/bulk", attendanceHandler.RecordBatch)
		auth.POST("/attendance/toggle", attendanceHandler.Toggle)
		auth.POST("/attendance/import", attendanceHandler.Import)
		auth.GET("/attendance/export", reportHandler.ExportCSV)
		auth.GET("/attendance/report", reportHandler.Summaries)
		auth.GET("/attendance/report/period", reportHandler.Period)
		auth.GET("/attendance/report/pdf", reportHandler.ExportPDF)
		auth.GET("/attendance/report/students/:id", reportHandler.StudentDetail)
		auth.PUT("/attendance/:id", attendanceHandler.Update)
		auth.DELETE("/attendance/:id", attendanceHandler.Delete)

		auth.GET("/dashboard", dashboardHandler.Snapshot)
	}

	admin := auth.Group("/admin")
	admin.Use(internalmiddleware.RequireAdmin())
	{
		admin.GET("/instructors", instructorHandler.ListAll)
		admin.POST("/instructors", instructorHandler.Create)
		admin.PUT("/instructors/:id", instructorHandler.Update)
		admin.PUT("/instructors/:id/password", instructorHandler.ResetPassword)
		admin.DELETE("/instructors/:id", instructorHandler.Delete)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
