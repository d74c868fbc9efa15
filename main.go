// Package main provides the entry point for the Pesquisa Campo survey service
package main

//go:generate swag init -g main.go -o docs

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/amirphl/pesquisa-campo/app/handlers"
	"github.com/amirphl/pesquisa-campo/app/middleware"
	"github.com/amirphl/pesquisa-campo/app/router"
	"github.com/amirphl/pesquisa-campo/app/services"
	businessflow "github.com/amirphl/pesquisa-campo/business_flow"
	"github.com/amirphl/pesquisa-campo/config"
	"github.com/amirphl/pesquisa-campo/migrations"
	"github.com/amirphl/pesquisa-campo/models"
	"github.com/amirphl/pesquisa-campo/repository"
	"github.com/amirphl/pesquisa-campo/utils"
	"github.com/gofiber/fiber/v3"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// @title Pesquisa Campo API
// @version 1.0
// @description Field survey campaigns: editor, researchers, tracking and dashboards
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

// Application represents the main application structure
type Application struct {
	router    router.Router
	config    *config.ProductionConfig
	server    *fiber.App
	stopFuncs []func()
}

func main() {
	cfg, err := config.LoadProductionConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := initializeLogger(cfg.Logging); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	log.WithFields(log.Fields{
		"environment": cfg.Deployment.Environment,
		"version":     cfg.Deployment.Version,
		"commit":      cfg.Deployment.CommitHash,
	}).Info("Starting Pesquisa Campo")

	app, err := initializeApplication(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	app.router.SetupRoutes()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		if err := app.router.Start(address); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-sigChan
	log.Info("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := app.server.ShutdownWithContext(shutdownCtx); err != nil {
		log.WithError(err).Error("Error during shutdown")
	}

	// background workers and connections go after the server stops taking requests
	for i := len(app.stopFuncs) - 1; i >= 0; i-- {
		app.stopFuncs[i]()
	}

	log.Info("Server stopped")
}

// initializeLogger configures the standard logrus logger from LoggingConfig
func initializeLogger(cfg config.LoggingConfig) error {
	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	log.SetLevel(level)
	log.SetReportCaller(cfg.EnableCaller)

	if cfg.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{TimestampFormat: time.RFC3339})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true, TimestampFormat: time.RFC3339})
	}

	var file io.Writer
	if cfg.Output == "file" || cfg.Output == "both" {
		file = &lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		}
	}

	switch cfg.Output {
	case "file":
		log.SetOutput(file)
	case "both":
		log.SetOutput(io.MultiWriter(os.Stdout, file))
	default:
		log.SetOutput(os.Stdout)
	}
	return nil
}

// initializeDatabase migrates the schema when enabled and opens GORM over the same pool
func initializeDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var (
		sqlDB *sql.DB
		err   error
	)
	if cfg.AutoMigrate {
		sqlDB, err = migrations.Open(cfg.DSN())
		if err != nil {
			return nil, err
		}
	} else {
		sqlDB, err = sql.Open("postgres", cfg.DSN())
		if err != nil {
			return nil, fmt.Errorf("failed to open database connection: %w", err)
		}
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	logLevel := logger.Silent
	if cfg.SlowQueryLog {
		logLevel = logger.Warn
	}
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.New(log.StandardLogger(), logger.Config{
			SlowThreshold:             cfg.SlowQueryTime,
			LogLevel:                  logLevel,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.WithFields(log.Fields{
		"max_open_conns": cfg.MaxOpenConns,
		"max_idle_conns": cfg.MaxIdleConns,
	}).Info("Database connection established")

	return db, nil
}

// initializeCache initializes the Redis client and verifies connectivity.
// It returns nil when Redis is not the configured provider.
func initializeCache(cfg config.CacheConfig) (*redis.Client, error) {
	if !cfg.Enabled || cfg.Provider != "redis" {
		return nil, nil
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	opt.DB = cfg.RedisDB
	if cfg.RedisPassword != "" {
		opt.Password = cfg.RedisPassword
	}

	rc := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rc.Ping(ctx).Err(); err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.WithFields(log.Fields{"addr": opt.Addr, "db": opt.DB}).Info("Redis connection established")
	return rc, nil
}

// startCacheHealthMonitor periodically pings Redis and logs failures until the returned func is called
func startCacheHealthMonitor(parent context.Context, client *redis.Client, interval time.Duration) func() {
	monitorCtx, cancel := context.WithCancel(parent)
	if interval <= 0 {
		interval = 30 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-monitorCtx.Done():
				return
			case <-ticker.C:
				ctx, c := context.WithTimeout(monitorCtx, 3*time.Second)
				if err := client.Ping(ctx).Err(); err != nil {
					log.WithError(err).Warn("Redis healthcheck failed")
				}
				c()
			}
		}
	}()
	return cancel
}

// initializeStateStore picks Redis when available and falls back to process memory
func initializeStateStore(cfg config.CacheConfig) (services.StateStore, []func(), error) {
	rc, err := initializeCache(cfg)
	if err != nil {
		return nil, nil, err
	}

	if rc == nil {
		log.Warn("Redis disabled; drafts, tracking sessions and revocations are kept in process memory")
		store := services.NewMemoryStateStore(cfg.CleanupInterval)
		return store, []func(){store.Close}, nil
	}

	stopMonitor := startCacheHealthMonitor(context.Background(), rc, cfg.HealthInterval)
	closeClient := func() {
		if err := rc.Close(); err != nil {
			log.WithError(err).Warn("Failed to close redis client")
		}
	}
	return services.NewRedisStateStore(rc, cfg.RedisPrefix), []func(){closeClient, stopMonitor}, nil
}

// initializeApplication wires repositories, services, flows and handlers
func initializeApplication(cfg *config.ProductionConfig) (*Application, error) {
	var stopFuncs []func()

	loc, err := cfg.Locale.Location()
	if err != nil {
		return nil, fmt.Errorf("failed to load time zone %q: %w", cfg.Locale.TimeZone, err)
	}

	db, err := initializeDatabase(cfg.Database)
	if err != nil {
		return nil, err
	}
	stopFuncs = append(stopFuncs, func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	state, stops, err := initializeStateStore(cfg.Cache)
	if err != nil {
		return nil, err
	}
	stopFuncs = append(stopFuncs, stops...)

	// Initialize repositories
	adminRepo := repository.NewAdminRepository(db)
	companyRepo := repository.NewCompanyRepository(db)
	researcherRepo := repository.NewResearcherRepository(db)
	voucherRepo := repository.NewVoucherRepository(db)
	campaignRepo := repository.NewCampaignRepository(db)
	questionRepo := repository.NewQuestionRepository(db)
	optionRepo := repository.NewQuestionOptionRepository(db)
	companyLinkRepo := repository.NewCampaignCompanyRepository(db)
	researcherLinkRepo := repository.NewCampaignResearcherRepository(db)
	responseRepo := repository.NewSurveyResponseRepository(db)
	answerRepo := repository.NewSurveyAnswerRepository(db)
	pointRepo := repository.NewLocationPointRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)
	tx := repository.NewTransactor(db)

	if err := ensureBootstrapAdmin(adminRepo, cfg.Admin, cfg.Security.BcryptCost); err != nil {
		return nil, err
	}

	// Initialize services
	tokenService, err := services.NewTokenService(
		cfg.JWT.AccessTokenTTL,
		cfg.JWT.Issuer,
		cfg.JWT.Audience,
		cfg.JWT.UseRSAKeys,
		cfg.JWT.PrivateKey,
		cfg.JWT.PublicKey,
		cfg.JWT.SecretKey,
		state,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token service: %w", err)
	}
	log.WithFields(log.Fields{"issuer": cfg.JWT.Issuer, "audience": cfg.JWT.Audience}).Info("Token service initialized")

	captchaSvc, err := services.NewCaptchaServiceRotate(state, cfg.Captcha.TTL, cfg.Captcha.Padding, cfg.Captcha.ImageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize captcha service: %w", err)
	}

	drafts := services.NewDraftStore(state, cfg.Tracking.DraftTTL)
	trackingSessions := services.NewTrackingStore(state, cfg.Tracking.SessionTTL)
	logos := services.NewDiskLogoStorage(cfg.Storage.LogoDir, cfg.Storage.LogoPublicPrefix, cfg.Storage.LogoMaxBytes, cfg.Storage.LogoMaxDimension)

	// Initialize flows
	trackingFlow := businessflow.NewTrackingFlow(trackingSessions, pointRepo)

	authFlow := businessflow.NewAuthFlow(
		adminRepo,
		companyRepo,
		researcherRepo,
		auditRepo,
		tokenService,
		captchaSvc,
		trackingFlow,
	)

	directoryFlow := businessflow.NewDirectoryFlow(
		adminRepo,
		companyRepo,
		researcherRepo,
		voucherRepo,
		auditRepo,
		logos,
		cfg.Security.BcryptCost,
	)

	campaignFlow := businessflow.NewCampaignFlow(
		campaignRepo,
		questionRepo,
		optionRepo,
		companyLinkRepo,
		researcherLinkRepo,
		companyRepo,
		responseRepo,
		auditRepo,
		tx,
	)

	editorFlow := businessflow.NewCampaignEditorFlow(
		drafts,
		campaignFlow,
		directoryFlow,
		companyRepo,
		researcherRepo,
		cfg.Locale.DefaultLGPDText,
	)

	responseFlow := businessflow.NewResponseFlow(
		campaignFlow,
		campaignRepo,
		questionRepo,
		optionRepo,
		companyLinkRepo,
		researcherLinkRepo,
		responseRepo,
		answerRepo,
		auditRepo,
		tx,
	)

	analyticsFlow := businessflow.NewAnalyticsFlow(
		campaignRepo,
		questionRepo,
		optionRepo,
		companyLinkRepo,
		researcherLinkRepo,
		companyRepo,
		voucherRepo,
		responseRepo,
		answerRepo,
		loc,
	)

	exportFlow := businessflow.NewExportFlow(
		campaignRepo,
		questionRepo,
		optionRepo,
		companyLinkRepo,
		researcherLinkRepo,
		companyRepo,
		responseRepo,
		answerRepo,
		loc,
	)

	// Initialize handlers
	h := router.Handlers{
		Auth:      handlers.NewAuthHandler(authFlow),
		Campaign:  handlers.NewCampaignHandler(campaignFlow, responseFlow),
		Editor:    handlers.NewEditorHandler(editorFlow),
		Directory: handlers.NewDirectoryHandler(directoryFlow),
		Response:  handlers.NewResponseHandler(responseFlow),
		Dashboard: handlers.NewDashboardHandler(analyticsFlow, exportFlow),
		Tracking:  handlers.NewTrackingHandler(trackingFlow),
	}

	authMiddleware := middleware.NewAuthMiddleware(authFlow)

	appRouter := router.NewFiberRouter(cfg, h, authMiddleware)

	return &Application{
		router:    appRouter,
		config:    cfg,
		server:    appRouter.GetApp(),
		stopFuncs: stopFuncs,
	}, nil
}

// ensureBootstrapAdmin creates the configured administrator when no administrator exists yet
func ensureBootstrapAdmin(adminRepo repository.AdminRepository, cfg config.AdminConfig, bcryptCost int) error {
	if cfg.Email == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := adminRepo.Exists(ctx, models.AdminFilter{})
	if err != nil {
		return fmt.Errorf("failed to check administrators: %w", err)
	}
	if exists {
		return nil
	}

	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Password), bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash bootstrap admin password: %w", err)
	}

	name := cfg.Name
	if name == "" {
		name = "Administrador"
	}
	admin := &models.Admin{
		Name:         name,
		Email:        cfg.Email,
		IsActive:     true,
		PasswordHash: utils.ToPtr(string(hash)),
		CreatedAt:    utils.UTCNow(),
	}
	if err := adminRepo.Save(ctx, admin); err != nil {
		return fmt.Errorf("failed to create bootstrap admin: %w", err)
	}

	log.WithField("email", admin.Email).Info("Bootstrap administrator created")
	return nil
}
