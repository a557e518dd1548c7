package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"

	_ "taskhub/docs"
	"taskhub/internal/access"
	"taskhub/internal/analytics"
	"taskhub/internal/config"
	"taskhub/internal/handlers"
	"taskhub/internal/logger"
	"taskhub/internal/metrics"
	"taskhub/internal/middleware"
	"taskhub/internal/repositories"
	"taskhub/internal/services"
	"taskhub/internal/session"
	"taskhub/migrations"
	"taskhub/pkg/database"
	"taskhub/pkg/validator"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.InitLogger(cfg.Server.Environment, cfg.Log.Level)
	defer func() { _ = log.Sync() }()

	denialMode, err := access.ParseDenialMode(cfg.Access.DenialMode)
	if err != nil {
		log.Fatal("Invalid access configuration", zap.Error(err))
	}
	policy := access.NewPolicy(denialMode)

	ctx := context.Background()

	// Database
	pool, err := database.NewPool(ctx, cfg.Database.URL, cfg.Database.MaxConns, log)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	if cfg.Database.RunMigrations {
		if err := database.Migrate(ctx, pool, migrations.Files, log); err != nil {
			log.Fatal("Failed to apply migrations", zap.Error(err))
		}
	}

	// Redis token revocation
	redisClient, err := session.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	revocation := session.NewRedisRevocationStore(redisClient)

	// MinIO export storage
	minioSvc, err := services.NewMinioService(cfg.Storage.Endpoint, cfg.Storage.AccessKey, cfg.Storage.SecretKey, cfg.Storage.UseSSL)
	if err != nil {
		log.Fatal("Failed to initialize MinIO service", zap.Error(err))
	}
	if err := minioSvc.EnsureBucketExists(ctx, cfg.Storage.ExportBucket); err != nil {
		log.Warn("Export bucket unavailable at startup", zap.String("bucket", cfg.Storage.ExportBucket), zap.Error(err))
	}

	var jwks *keyfunc.JWKS
	if cfg.JWT.JWKSURL != "" {
		jwks, err = middleware.NewJWKS(cfg.JWT.JWKSURL, log)
		if err != nil {
			log.Fatal("Failed to load JWKS", zap.String("url", cfg.JWT.JWKSURL), zap.Error(err))
		}
		defer jwks.EndBackground()
	}

	// Repositories
	tenantRepo := repositories.NewTenantRepo(pool)
	userRepo := repositories.NewUserRepo(pool)
	taskRepo := repositories.NewTaskRepo(pool)
	transactor := repositories.NewTransactor(pool)

	// Services
	tenantSvc := services.NewTenantService(tenantRepo, policy, log)
	customFieldSvc := services.NewCustomFieldService(tenantRepo, policy, log)
	userSvc := services.NewUserService(userRepo, tenantRepo, taskRepo, transactor, policy, cfg.JWT.BcryptCost, log)
	taskSvc := services.NewTaskService(taskRepo, tenantRepo, userRepo, transactor, policy, log)
	authSvc := services.NewAuthService(userRepo, tenantRepo, revocation, cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.TokenTTL, log)
	exportSvc := services.NewExportService(tenantRepo, userRepo, taskRepo, minioSvc, policy, cfg.Storage.ExportBucket, cfg.Storage.ExportURLTTL, log)
	dashboardSvc := analytics.NewDashboardService(taskRepo, tenantRepo, userRepo, policy, log, nil)

	// Handlers
	authHandlers := handlers.NewAuthHandlers(authSvc)
	tenantHandlers := handlers.NewTenantHandlers(tenantSvc, customFieldSvc, exportSvc)
	userHandlers := handlers.NewUserHandlers(userSvc)
	taskHandlers := handlers.NewTaskHandlers(taskSvc)
	dashboardHandlers := handlers.NewDashboardHandlers(dashboardSvc)
	healthHandlers := handlers.NewHealthHandlers(pool, revocation, minioSvc, cfg.Storage.ExportBucket, version)

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.Validator = validator.NewValidator()

	// Global middleware
	e.Use(echoMiddleware.Recover())
	e.Use(middleware.RequestIDMiddleware)
	e.Use(middleware.MetricsMiddleware)
	e.Use(logger.Middleware(log))
	e.Use(echoMiddleware.CORS())
	e.Pre(echoMiddleware.RemoveTrailingSlash())

	// Version middleware
	versionMiddleware := middleware.NewVersionMiddleware()
	e.Use(versionMiddleware.APIVersionResolver())

	// Operational endpoints (no auth required)
	e.GET("/health", healthHandlers.HealthCheck)
	e.GET("/health/ready", healthHandlers.ReadinessCheck)
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// API routes
	v1 := versionMiddleware.VersionRoute(e, "v1")

	v1.POST("/auth/login", authHandlers.Login)

	protected := v1.Group("")
	protected.Use(echojwt.WithConfig(middleware.JWTConfig(cfg.JWT.Secret, jwks)))
	protected.Use(middleware.AuthContext(revocation, userRepo, tenantRepo))

	protected.POST("/auth/logout", authHandlers.Logout)
	protected.GET("/me", authHandlers.Me)

	// Tenant routes
	protected.GET("/tenants", tenantHandlers.ListTenants)
	protected.POST("/tenants", tenantHandlers.CreateTenant)
	protected.GET("/tenants/:id", tenantHandlers.GetTenant)
	protected.PUT("/tenants/:id", tenantHandlers.UpdateTenant)
	protected.DELETE("/tenants/:id", tenantHandlers.DeleteTenant)
	protected.GET("/tenants/:id/custom-fields", tenantHandlers.GetCustomFields)
	protected.POST("/tenants/:id/custom-fields", tenantHandlers.SetCustomFields)
	protected.POST("/tenants/:id/custom-fields/validate", tenantHandlers.ValidateCustomFields)
	protected.POST("/tenants/:id/export", tenantHandlers.ExportTenant)

	// User routes
	protected.GET("/users", userHandlers.ListUsers)
	protected.POST("/users", userHandlers.CreateUser)
	protected.GET("/users/:id", userHandlers.GetUser)
	protected.PUT("/users/:id", userHandlers.UpdateUser)
	protected.DELETE("/users/:id", userHandlers.DeleteUser)

	// Task routes
	protected.GET("/tasks", taskHandlers.ListTasks)
	protected.POST("/tasks", taskHandlers.CreateTask)
	protected.GET("/tasks/:id", taskHandlers.GetTask)
	protected.PUT("/tasks/:id", taskHandlers.UpdateTask)
	protected.DELETE("/tasks/:id", taskHandlers.DeleteTask)

	// Dashboard routes
	protected.GET("/dashboard/stats", dashboardHandlers.GetStats)
	protected.GET("/dashboard/tenant-stats", dashboardHandlers.GetTenantStats)
	protected.GET("/dashboard/user-tasks/:user_id", dashboardHandlers.GetUserTaskStats)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      e,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Graceful shutdown
	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("TaskHub server starting",
			zap.String("version", version),
			zap.String("port", cfg.Server.Port),
			zap.String("environment", cfg.Server.Environment),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server failed", zap.Error(err))
			stop()
		}
	}()

	<-sigCtx.Done()
	log.Info("Shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	log.Info("Server stopped")
}
