package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dmflow/backend/internal/infrastructure/auth"
	"github.com/dmflow/backend/internal/interfaces/http/dto"
)

// Context keys populated by the auth middleware
const (
	ClaimsKey     = "auth_claims"
	UserIDKey     = "auth_user_id"
	UserRoleKey   = "auth_user_role"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
)

// Auth validates the bearer token and stores its claims in the context
func Auth(jwtService *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(AuthHeaderKey)
		if header == "" || !strings.HasPrefix(header, BearerPrefix) {
			abortUnauthorized(c, dto.ErrCodeUnauthorized, "Authentication required")
			return
		}

		tokenString := strings.TrimPrefix(header, BearerPrefix)
		claims, err := jwtService.ValidateToken(tokenString)
		if err != nil {
			code := "INVALID_TOKEN"
			message := "Invalid token"
			if errors.Is(err, auth.ErrExpiredToken) {
				code = "TOKEN_EXPIRED"
				message = "Token has expired"
			}
			abortUnauthorized(c, code, message)
			return
		}

		c.Set(ClaimsKey, claims)
		c.Set(UserIDKey, claims.UserID)
		c.Set(UserRoleKey, claims.Role)
		c.Next()
	}
}

// RequireAdmin rejects requests whose token does not carry the platform
// admin role. Must run after Auth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(UserRoleKey) != "admin" {
			c.AbortWithStatusJSON(http.StatusForbidden,
				dto.NewErrorResponse(dto.ErrCodeForbidden, "Admin access required"))
			return
		}
		c.Next()
	}
}

// GetUserID returns the authenticated user's id, or uuid.Nil when the
// request is unauthenticated
func GetUserID(c *gin.Context) uuid.UUID {
	id, err := uuid.Parse(c.GetString(UserIDKey))
	if err != nil {
		return uuid.Nil
	}
	return id
}

func abortUnauthorized(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(code, message))
}
