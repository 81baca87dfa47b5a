package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/shopstack/backend/internal/infrastructure/auth"
	"github.com/shopstack/backend/internal/infrastructure/logger"
	"github.com/shopstack/backend/internal/interfaces/http/dto"
)

// JWT context keys
const (
	JWTClaimsKey  = "jwt_claims"
	JWTActorIDKey = "jwt_actor_id"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
)

// JWTConfig holds configuration for the JWT middleware.
type JWTConfig struct {
	JWTService *auth.JWTService
	// SkipPaths are exact paths that do not require authentication.
	SkipPaths []string
}

// DefaultJWTConfig returns the default middleware configuration.
func DefaultJWTConfig(jwtService *auth.JWTService) JWTConfig {
	return JWTConfig{
		JWTService: jwtService,
		SkipPaths: []string{
			"/health",
			"/ready",
		},
	}
}

// JWTAuth creates JWT authentication middleware with default configuration.
func JWTAuth(jwtService *auth.JWTService) gin.HandlerFunc {
	return JWTAuthWithConfig(DefaultJWTConfig(jwtService))
}

// JWTAuthWithConfig creates JWT authentication middleware. On success the
// validated claims and actor id are placed in the gin context and the
// actor id is attached to the request context for downstream logging.
func JWTAuthWithConfig(cfg JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, skip := range cfg.SkipPaths {
			if path == skip {
				c.Next()
				return
			}
		}

		authHeader := c.GetHeader(AuthHeaderKey)
		if authHeader == "" {
			abortUnauthorized(c, "Missing authorization header")
			return
		}
		if !strings.HasPrefix(authHeader, BearerPrefix) {
			abortUnauthorized(c, "Invalid authorization header format")
			return
		}

		tokenString := strings.TrimPrefix(authHeader, BearerPrefix)
		if tokenString == "" {
			abortUnauthorized(c, "Missing token")
			return
		}

		claims, err := cfg.JWTService.ValidateToken(tokenString)
		if err != nil {
			code := dto.ErrCodeUnauthorized
			message := "Invalid token"
			if errors.Is(err, auth.ErrExpiredToken) {
				code = "TOKEN_EXPIRED"
				message = "Token has expired"
			}
			requestID := c.GetString(RequestIDKey)
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				dto.NewErrorResponseWithRequestID(code, message, requestID))
			return
		}

		c.Set(JWTClaimsKey, claims)
		c.Set(JWTActorIDKey, claims.ActorID)

		reqCtx := c.Request.Context()
		ctx, _ := logger.WithActorID(reqCtx, logger.FromContext(reqCtx), claims.ActorID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	requestID := c.GetString(RequestIDKey)
	c.AbortWithStatusJSON(http.StatusUnauthorized,
		dto.NewErrorResponseWithRequestID(dto.ErrCodeUnauthorized, message, requestID))
}

// GetClaims returns the validated claims from the gin context, or nil.
func GetClaims(c *gin.Context) *auth.Claims {
	value, exists := c.Get(JWTClaimsKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*auth.Claims)
	if !ok {
		return nil
	}
	return claims
}

// GetActorID returns the authenticated actor id from the gin context.
func GetActorID(c *gin.Context) string {
	return c.GetString(JWTActorIDKey)
}
