package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	_ "cajachica/api/swagger" // swagger docs
	"cajachica/internal/config"
	"cajachica/internal/database"
	"cajachica/internal/handler"
	"cajachica/internal/middleware"
	"cajachica/internal/repository"
	"cajachica/internal/scheduler"
	"cajachica/internal/service"
	"cajachica/pkg/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// @title           Caja Chica API
// @version         1.0
// @description     Petty-cash fund requests, approvals and cash funds.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	envErr := godotenv.Load("configs/.env")

	cfg, err := config.Load(os.Getenv("APP_CONFIG_FILE"))
	if err != nil {
		log.Fatalf("Configuration failed: %v", err)
	}

	logr := logger.New(logger.Config{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		Production: cfg.Server.Mode == gin.ReleaseMode,
	})
	defer func() { _ = logr.Sync() }()
	if envErr != nil {
		logr.Debug("no configs/.env file loaded", zap.Error(envErr))
	}

	gin.SetMode(cfg.Server.Mode)

	db, err := database.NewConnection(cfg.Database.DSN(), cfg.Database.LogMode)
	if err != nil {
		logr.Fatal("database connection failed", zap.Error(err))
	}
	logr.Info("connected to PostgreSQL", zap.String("host", cfg.Database.Host), zap.String("database", cfg.Database.Name))

	if err := database.Migrate(db, logr); err != nil {
		logr.Fatal("database migration failed", zap.Error(err))
	}

	secret := cfg.JWT.Secret
	if secret == "" {
		logr.Warn("jwt.secret is empty, using the development secret")
		secret = middleware.DevSecret
	}
	tokenTTL := time.Duration(cfg.JWT.TTLHours) * time.Hour
	tokens := middleware.NewTokenManager(secret, tokenTTL)

	// Set up dependencies (Repository -> Service -> Handler)
	txManager := repository.NewTransactionManager(db)
	requestRepo := repository.NewFundRequestRepository(db)
	historyRepo := repository.NewStateHistoryRepository(db)
	fundRepo := repository.NewCashFundRepository(db)
	userRepo := repository.NewUserRepository(db)
	areaRepo := repository.NewAreaRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	roleRepo := repository.NewRoleRepository(db)

	clock := service.SystemClock()
	codes := service.NewCodeGenerator(db, requestRepo, fundRepo, logr)
	lifecycle := service.NewFundLifecycleManager(txManager, fundRepo, auditRepo, codes, clock, logr)
	workflow := service.NewWorkflowEngine(service.WorkflowDeps{
		Tx:        txManager,
		Requests:  requestRepo,
		History:   historyRepo,
		Funds:     fundRepo,
		Users:     userRepo,
		Areas:     areaRepo,
		Audits:    auditRepo,
		Codes:     codes,
		Lifecycle: lifecycle,
		Clock:     clock,
		Log:       logr,
	})
	fundRequestService := service.NewFundRequestService(txManager, requestRepo, fundRepo, userRepo, auditRepo, logr)
	cashFundService := service.NewCashFundService(txManager, fundRepo, userRepo, auditRepo, logr)
	authService := service.NewAuthService(userRepo, tokens)
	areaService := service.NewAreaService(areaRepo, time.Duration(cfg.Cache.AreaTTLMinutes)*time.Minute)
	auditService := service.NewAuditService(auditRepo, logr)
	roleService := service.NewRoleService(roleRepo)

	secureCookies := cfg.Server.Mode == gin.ReleaseMode
	fundRequestHandler := handler.NewFundRequestHandler(workflow, fundRequestService, logr)
	cashFundHandler := handler.NewCashFundHandler(cashFundService, logr)
	authHandler := handler.NewAuthHandler(authService, tokenTTL, secureCookies, logr)
	areaHandler := handler.NewAreaHandler(areaService, logr)
	auditHandler := handler.NewAuditHandler(auditService, logr)
	roleHandler := handler.NewRoleHandler(roleService, logr)

	var cronJobs *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		backlog := scheduler.NewBacklogReporter(requestRepo, time.Duration(cfg.Scheduler.StaleAfterHours)*time.Hour, logr.Named("backlog"))
		cronJobs, err = scheduler.New(cfg.Scheduler, backlog, logr)
		if err != nil {
			logr.Fatal("scheduler setup failed", zap.Error(err))
		}
		cronJobs.Start()
	}

	// Set up Gin Router
	router := gin.New()
	router.Use(middleware.Recovery(logr), middleware.RequestLogger(logr))

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.Server.AllowedOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})

	authn := tokens.Authenticate()
	api := router.Group("")
	authHandler.RegisterRoutes(api, authn)
	areaHandler.RegisterRoutes(api, authn)
	roleHandler.RegisterRoutes(api, authn)
	fundRequestHandler.RegisterRoutes(api, authn)
	cashFundHandler.RegisterRoutes(api, authn)
	auditHandler.RegisterRoutes(api, authn)

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	waitForShutdown(srv, logr)
	if cronJobs != nil {
		cronJobs.Stop()
	}
}

// waitForShutdown blocks until SIGTERM or SIGINT and drains in-flight requests
func waitForShutdown(srv *http.Server, logr *zap.Logger) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	sig := <-sigChan
	logr.Info("shutting down", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}
