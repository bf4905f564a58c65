package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/chumcred/academy-lmp-api/api/swagger"
	"github.com/chumcred/academy-lmp-api/internal/handler"
	"github.com/chumcred/academy-lmp-api/internal/middleware"
	"github.com/chumcred/academy-lmp-api/internal/repository"
	"github.com/chumcred/academy-lmp-api/internal/service"
	"github.com/chumcred/academy-lmp-api/pkg/cache"
	"github.com/chumcred/academy-lmp-api/pkg/cert"
	"github.com/chumcred/academy-lmp-api/pkg/config"
	"github.com/chumcred/academy-lmp-api/pkg/database"
	"github.com/chumcred/academy-lmp-api/pkg/logger"
	corsmiddleware "github.com/chumcred/academy-lmp-api/pkg/middleware/cors"
	reqidmiddleware "github.com/chumcred/academy-lmp-api/pkg/middleware/requestid"
	"github.com/chumcred/academy-lmp-api/pkg/storage"
)

// @title Academy LMP API
// @version 1.0.0
// @description Learning management portal: curriculum, submissions, grading and certificates
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
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := database.EnsureSchema(ctx, db); err != nil {
		logr.Fatal("failed to bootstrap schema", zap.Error(err))
	}

	validate := validator.New()
	metricsService := service.NewMetricsService()

	var cacheService *service.CacheService
	if cfg.Redis.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, content cache disabled", zap.Error(err))
		} else {
			cacheRepo := repository.NewCacheRepository(redisClient, logr)
			cacheService = service.NewCacheService(cacheRepo, metricsService, cfg.Cache.ContentTTL, logr, true)
			defer cacheRepo.Close() //nolint:errcheck
		}
	}

	store, err := storage.NewLocalStorage(cfg.Uploads.Dir)
	if err != nil {
		logr.Fatal("failed to prepare upload storage", zap.Error(err))
	}
	signer := storage.NewSignedURLSigner(cfg.Uploads.SignedURLSecret, cfg.Uploads.SignedURLTTL)

	userRepo := repository.NewUserRepository(db)
	moduleRepo := repository.NewModuleRepository(db)
	materialRepo := repository.NewMaterialRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)

	seedService := service.NewSeedService(userRepo, moduleRepo, assignmentRepo, materialRepo, cfg.Seed, logr)
	seedResult, err := seedService.EnsureSeed(ctx)
	if err != nil {
		logr.Fatal("failed to seed database", zap.Error(err))
	}
	logr.Info("seed pass complete",
		zap.Bool("admin_created", seedResult.AdminCreated),
		zap.Int("modules_created", seedResult.ModulesCreated),
		zap.Int("materials_created", seedResult.MaterialsCreated))
	if seedResult.AdminNotice != "" {
		// Shown exactly once, on the run that created the account.
		logr.Info(seedResult.AdminNotice)
	}

	authService := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		TokenSecret: cfg.JWT.Secret,
		TokenExpiry: cfg.JWT.Expiration,
		Issuer:      cfg.JWT.Issuer,
	})
	userService := service.NewUserService(userRepo, validate, logr)
	contentService := service.NewContentService(moduleRepo, assignmentRepo, cacheService, validate, logr)
	materialService := service.NewMaterialService(materialRepo, moduleRepo, store, cacheService, validate, logr)
	submissionService := service.NewSubmissionService(submissionRepo, assignmentRepo, userRepo, validate, logr)
	renderer := cert.NewRenderer(cfg.Certificates.OrgName, cfg.Certificates.ProgramTitle)
	certificateService := service.NewCertificateService(submissionRepo, userRepo, renderer, cfg.Certificates, logr)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsService))

	handlers := handler.Handlers{
		Auth:         handler.NewAuthHandler(authService),
		Users:        handler.NewUserHandler(userService),
		Content:      handler.NewContentHandler(contentService, materialService),
		Materials:    handler.NewMaterialHandler(materialService, store, signer, cfg.Uploads.MaxFileSize),
		Submissions:  handler.NewSubmissionHandler(submissionService, metricsService, store, signer, cfg.Uploads.MaxFileSize),
		Certificates: handler.NewCertificateHandler(certificateService),
		Files:        handler.NewFileHandler(store, signer),
		Metrics:      handler.NewMetricsHandler(metricsService),
	}
	handler.RegisterRoutes(r, cfg.APIPrefix, authService, handlers)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Info("server starting", zap.String("addr", addr), zap.String("env", cfg.Env))
	if err := r.Run(addr); err != nil {
		logr.Fatal("server failed", zap.Error(err))
	}
}
