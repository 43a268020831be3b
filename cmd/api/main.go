package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"diving-mate-backend/config"
	"diving-mate-backend/internal/delivery/http/middleware"
	v1 "diving-mate-backend/internal/delivery/http/v1"
	"diving-mate-backend/internal/domain"
	"diving-mate-backend/internal/repository/documents"
	"diving-mate-backend/internal/repository/memory"
	"diving-mate-backend/internal/repository/postgres"
	"diving-mate-backend/internal/saved"
	"diving-mate-backend/internal/usecase"
	"diving-mate-backend/pkg/auth"
	"diving-mate-backend/pkg/database"
	"diving-mate-backend/pkg/logger"
	"diving-mate-backend/pkg/redis"
	"diving-mate-backend/pkg/security"
	"diving-mate-backend/pkg/security/antivirus"
	"diving-mate-backend/pkg/storage"
	"diving-mate-backend/pkg/validation"
)

type repositories struct {
	users         domain.UserRepository
	profiles      domain.ProfileRepository
	saved         domain.SavedItemRepository
	verifications domain.VerificationRepository
	ping          usecase.HealthCheck // nil for in-memory
}

// @title           Diving Mate API
// @version         1.0
// @description     Directory of dive instructors and resorts with business verification.
// @host            localhost:8080
// @BasePath        /v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Setup Logger
	logger.Init(cfg.LogLevel)
	logger.Log.Info("Starting diving mate backend", "port", cfg.Port, "env", cfg.Environment)

	secLog := security.NewSecurityLogger("diving-mate-api", cfg.Environment)
	security.SetDefault(secLog)
	defer secLog.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. Setup Repositories
	repos, closeRepos, err := setupRepositories(ctx, cfg)
	if err != nil {
		logger.Log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer closeRepos()

	// 4. Setup Redis (optional; rate limits fall back to memory)
	if cfg.UpstashRedisURL != "" {
		if err := redis.Initialize(ctx, redis.Config{URL: cfg.UpstashRedisURL, Password: cfg.UpstashRedisPassword}); err != nil {
			logger.Log.Warn("Redis unavailable, using in-memory rate limits", "error", err)
		} else {
			defer redis.Close() //nolint:errcheck
		}
	}
	rateLimiter := middleware.NewRateLimiter(redis.Client(), secLog)
	go rateLimiter.RunSweeper(ctx, time.Minute)

	// 5. Setup Document Storage
	store, err := setupObjectStore(ctx, cfg)
	if err != nil {
		logger.Log.Error("Failed to set up object storage", "error", err)
		os.Exit(1)
	}
	docCfg := documents.Config{
		MaxBytes:          cfg.UploadMaxBytes,
		ImageMaxDimension: cfg.ImageMaxDimension,
		ImageQuality:      cfg.ImageQuality,
	}
	if cfg.ClamAVAddress != "" {
		scanner := antivirus.NewClamAVScanner(cfg.ClamAVAddress, 30*time.Second)
		if err := scanner.Ping(ctx); err != nil {
			logger.Log.Warn("ClamAV not reachable, uploads will be refused until it is", "error", err)
		}
		docCfg.Scanner = scanner
	}
	uploader := documents.NewUploader(store, docCfg, secLog)

	// 6. Setup UseCases
	validate := validation.New()
	authUC := usecase.NewAuthUsecase(repos.users, validate)
	profileUC := usecase.NewProfileUsecase(repos.profiles, validate)
	savedUC := usecase.NewSavedItemsUsecase(repos.saved, saved.NewStore())
	verificationUC := usecase.NewVerificationUsecase(repos.verifications, repos.users, uploader, validate, secLog)

	checks := map[string]usecase.HealthCheck{}
	if repos.ping != nil {
		checks["database"] = repos.ping
	}
	if redis.Client() != nil {
		checks["redis"] = redis.HealthCheck
	}
	healthUC := usecase.NewHealthUsecase(checks)

	// 7. Setup Auth (JWKS for RS256, shared secret for HS256)
	authCfg := middleware.AuthConfig{JWTSecret: cfg.SupabaseJWTSecret}
	if cfg.SupabaseUrl != "" {
		authCfg.KeyFunc = auth.NewProvider(cfg.JWKSURL()).KeyFunc
	}

	// 8. Setup Router
	router := v1.NewRouter(v1.RouterDeps{
		AuthUC:         authUC,
		ProfileUC:      profileUC,
		SavedUC:        savedUC,
		VerificationUC: verificationUC,
		HealthUC:       healthUC,
		Auth:           authCfg,
		RateLimiter:    rateLimiter,
		SecurityLogger: secLog,
		Config:         cfg,
	})

	// 9. Start Server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Error("Listen failed", "error", err)
			stop()
		}
	}()

	// Graceful Shutdown
	<-ctx.Done()
	logger.Log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	logger.Log.Info("Server exiting")
}

// setupRepositories connects to Postgres, or keeps everything in memory when
// DATABASE_URL is empty.
func setupRepositories(ctx context.Context, cfg *config.Config) (repositories, func(), error) {
	if cfg.DBUrl == "" {
		logger.Log.Warn("DATABASE_URL not set, using in-memory repositories")
		profiles := memory.NewProfileRepository()
		if cfg.SeedDemoData {
			if err := memory.SeedDemoListings(ctx, profiles); err != nil {
				return repositories{}, nil, err
			}
		}
		return repositories{
			users:         memory.NewUserRepository(),
			profiles:      profiles,
			saved:         memory.NewSavedItemRepository(),
			verifications: memory.NewVerificationRepository(),
		}, func() {}, nil
	}

	dbPool, err := database.NewPostgresConnection(ctx, cfg.DBUrl)
	if err != nil {
		return repositories{}, nil, err
	}
	return repositories{
		users:         postgres.NewUserRepository(dbPool),
		profiles:      postgres.NewProfileRepository(dbPool),
		saved:         postgres.NewSavedItemRepository(dbPool),
		verifications: postgres.NewVerificationRepository(dbPool),
		ping:          dbPool.Ping,
	}, dbPool.Close, nil
}

func setupObjectStore(ctx context.Context, cfg *config.Config) (storage.ObjectStore, error) {
	if cfg.S3Bucket == "" {
		return storage.NewMemoryStore("http://localhost:" + cfg.Port + "/files"), nil
	}
	store, err := storage.NewS3Store(ctx, storage.S3Config{
		AccessKeyID:     cfg.S3AccessKeyID,
		SecretAccessKey: cfg.S3SecretAccessKey,
		Region:          cfg.S3Region,
		Bucket:          cfg.S3Bucket,
		Endpoint:        cfg.S3Endpoint,
		PublicBaseURL:   cfg.S3PublicBaseURL,
	})
	if err != nil {
		return nil, err
	}
	if err := store.CheckBucket(ctx); err != nil {
		logger.Log.Warn("S3 bucket check failed", "bucket", cfg.S3Bucket, "error", err)
	}
	return store, nil
}
