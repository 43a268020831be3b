package v1

import (
	"net/http"
	"time"

	"diving-mate-backend/config"
	"diving-mate-backend/internal/delivery/http/middleware"
	"diving-mate-backend/internal/delivery/http/response"
	"diving-mate-backend/internal/domain"
	"diving-mate-backend/internal/usecase"
	"diving-mate-backend/pkg/security"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterDeps struct {
	AuthUC         domain.AuthUsecase
	ProfileUC      domain.ProfileUsecase
	SavedUC        domain.SavedItemsUsecase
	VerificationUC domain.VerificationUsecase
	HealthUC       usecase.HealthUsecase
	Auth           middleware.AuthConfig
	RateLimiter    *middleware.RateLimiter
	SecurityLogger *security.SecurityLogger
	Config         *config.Config
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()
	cfg := deps.Config
	window := time.Duration(cfg.RateLimitWindowSeconds) * time.Second

	// Global Middlewares
	r.Use(middleware.CORSMiddleware(cfg.FrontendURL, cfg.IsProduction())) // CORS must be first!
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.Use(middleware.RequestID())
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(middleware.ErrorHandler())
	r.Use(deps.RateLimiter.Middleware(middleware.RateLimitConfig{
		Limit:     cfg.RateLimitGlobalThreshold,
		Window:    window,
		KeyPrefix: "rl:global:",
	}))

	writeLimit := deps.RateLimiter.Middleware(middleware.RateLimitConfig{
		Limit:     cfg.RateLimitWriteThreshold,
		Window:    window,
		KeyFunc:   middleware.UserOrIPKey,
		KeyPrefix: "rl:write:",
	})
	uploadLimit := deps.RateLimiter.Middleware(middleware.RateLimitConfig{
		Limit:      cfg.RateLimitUploadThreshold,
		Window:     window,
		KeyFunc:    middleware.UserOrIPKey,
		KeyPrefix:  "rl:upload:",
		FailClosed: true,
	})

	v1 := r.Group("/v1")

	// Health Check
	v1.GET("/health", func(c *gin.Context) {
		if deps.HealthUC == nil {
			response.Success(c, http.StatusOK, "System operational", nil)
			return
		}
		status, healthy := deps.HealthUC.Check(c.Request.Context())
		if !healthy {
			response.Error(c, http.StatusServiceUnavailable, "Dependency unavailable", status)
			return
		}
		response.Success(c, http.StatusOK, "System operational", status)
	})

	// Swagger
	v1.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Protected routes
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(deps.Auth, deps.AuthUC, deps.SecurityLogger))
	{
		NewProfileHandler(v1, protected, deps.ProfileUC, writeLimit)
		NewAccountHandler(protected, deps.AuthUC, deps.SavedUC, writeLimit)
		NewVerificationHandler(protected, deps.VerificationUC, cfg.UploadMaxBytes, writeLimit, uploadLimit)
		NewAdminHandler(protected, deps.VerificationUC)
	}

	return r
}
