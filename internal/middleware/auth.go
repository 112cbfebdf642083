package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storylion-server/internal/models"
)

// UserIDKey is the gin context key under which the authenticated user ID is stored.
const UserIDKey = "userID"

// TokenVerifier checks a token string and returns its claims. Errors may be
// models.ErrTokenInvalid, models.ErrTokenExpired or models.ErrTokenMalformed.
type TokenVerifier func(ctx context.Context, tokenString string) (*models.Claims, error)

// AuthMiddleware extracts and verifies the bearer token and stores the user ID
// in the gin context.
func AuthMiddleware(verifier TokenVerifier, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logger.With(zap.String("path", c.Request.URL.Path))

		tokenString, ok := extractToken(c)
		if !ok {
			log.Warn("Authorization header missing or malformed")
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{
				Code:    models.ErrCodeUnauthorized,
				Message: "Unauthorized: missing or malformed token",
			})
			return
		}

		claims, err := verifier(c.Request.Context(), tokenString)
		if err != nil {
			status := http.StatusUnauthorized
			msg := "Unauthorized: invalid token"
			if errors.Is(err, models.ErrTokenExpired) {
				msg = "Unauthorized: token expired"
			} else if !errors.Is(err, models.ErrTokenMalformed) && !errors.Is(err, models.ErrTokenInvalid) {
				log.Error("Unexpected token verification error", zap.Error(err))
				status = http.StatusInternalServerError
				msg = "Internal server error during token verification"
			}
			c.AbortWithStatusJSON(status, models.ErrorResponse{
				Code:    models.ErrCodeUnauthorized,
				Message: msg,
			})
			return
		}

		c.Set(UserIDKey, claims.UserID)
		log.Debug("User authorized", zap.Int64("userID", claims.UserID))
		c.Next()
	}
}

// extractToken reads the bearer token from the Authorization header, falling
// back to the token query parameter for websocket upgrades where browsers
// cannot set headers.
func extractToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && strings.ToLower(parts[0]) == "bearer" {
			return parts[1], true
		}
		return "", false
	}
	if token := c.Query("token"); token != "" {
		return token, true
	}
	return "", false
}

// UserIDFromContext returns the authenticated user ID set by AuthMiddleware.
func UserIDFromContext(c *gin.Context) (int64, bool) {
	v, exists := c.Get(UserIDKey)
	if !exists {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}
