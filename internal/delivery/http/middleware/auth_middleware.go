package middleware

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"diving-mate-backend/internal/delivery/http/response"
	"diving-mate-backend/internal/domain"
	"diving-mate-backend/pkg/security"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// AuthConfig selects how bearer tokens are verified. HS256 tokens need
// JWTSecret; RS256 tokens need KeyFunc (a JWKS provider).
type AuthConfig struct {
	JWTSecret string
	KeyFunc   jwt.Keyfunc
}

func AuthMiddleware(cfg AuthConfig, authUC domain.AuthUsecase, securityLogger *security.SecurityLogger) gin.HandlerFunc {
	if securityLogger == nil {
		securityLogger = security.DefaultLogger()
	}

	keyFunc := func(token *jwt.Token) (interface{}, error) {
		switch token.Method.(type) {
		case *jwt.SigningMethodHMAC:
			if cfg.JWTSecret == "" {
				return nil, fmt.Errorf("HS256 token received but SUPABASE_JWT_SECRET is not configured")
			}
			return []byte(cfg.JWTSecret), nil
		case *jwt.SigningMethodRSA:
			if cfg.KeyFunc == nil {
				return nil, fmt.Errorf("RS256 token received but no JWKS provider is configured")
			}
			return cfg.KeyFunc(token)
		}
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}

	return func(c *gin.Context) {
		reject := func(reason, message string) {
			securityLogger.LogAuthFailed(c.Request.Context(), c.ClientIP(), c.GetHeader("User-Agent"), c.GetString(response.RequestIDKey), reason)
			response.Error(c, http.StatusUnauthorized, message, nil)
			c.Abort()
		}

		authHeader := c.GetHeader("Authorization")
		tokenString, found := strings.CutPrefix(authHeader, "Bearer ")
		if !found || tokenString == "" {
			reject("missing_token", "Authorization header required")
			return
		}

		token, err := jwt.Parse(tokenString, keyFunc, jwt.WithExpirationRequired())
		if err != nil || !token.Valid {
			reject("invalid_token", "Invalid token")
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			reject("invalid_claims", "Invalid claims")
			return
		}

		sub, _ := claims["sub"].(string)
		if sub == "" {
			reject("missing_subject", "Invalid claims")
			return
		}
		email, _ := claims["email"].(string)

		// Only app_metadata is provider-controlled; user_metadata is user-editable
		var tokenRole string
		if appMeta, ok := claims["app_metadata"].(map[string]interface{}); ok {
			tokenRole, _ = appMeta["role"].(string)
		}

		user := &domain.User{ID: sub, Email: email, Role: tokenRole}
		if err := authUC.EnsureUserExists(c.Request.Context(), user); err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}

		c.Set(string(domain.KeyUserID), sub)
		c.Set(string(domain.KeyUserEmail), email)
		c.Set(string(domain.KeyUserRole), user.Role)

		// Usecases read the caller from the request context
		ctx := context.WithValue(c.Request.Context(), domain.KeyUserID, sub)
		ctx = context.WithValue(ctx, domain.KeyUserEmail, email)
		ctx = context.WithValue(ctx, domain.KeyUserRole, user.Role)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// RequireRole lets only the listed roles through; place after AuthMiddleware
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(string(domain.KeyUserRole))
		if !slices.Contains(roles, role) {
			security.DefaultLogger().LogForbidden(c.Request.Context(), c.GetString(string(domain.KeyUserID)), role, c.FullPath())
			response.Error(c, http.StatusForbidden, "You do not have access to this resource", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}
