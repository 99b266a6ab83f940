package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"mentora/internal/infrastructure/auth"
	"mentora/internal/shared/constants"
	"mentora/internal/shared/logger"
	"mentora/internal/shared/utils"
)

const contextKeyRole = "role"

// AuthMiddleware guards routes with bearer token authentication
type AuthMiddleware struct {
	jwtService *auth.JWTService
	logger     logger.Interface
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(jwtService *auth.JWTService, logger logger.Interface) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
		logger:     logger,
	}
}

// RequireAuth rejects requests without a valid bearer token
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.ErrorResponse(c, http.StatusUnauthorized, "missing authorization token")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			utils.ErrorResponse(c, http.StatusUnauthorized, "invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := m.jwtService.Verify(parts[1])
		if err != nil {
			m.logger.Warnw("failed to verify token", "error", err)
			utils.ErrorResponse(c, http.StatusUnauthorized, "invalid or expired token")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyAdvisorID, claims.AdvisorID)
		c.Set(contextKeyRole, claims.Role)
		c.Next()
	}
}

// RequireRole rejects authenticated callers lacking the given role
func (m *AuthMiddleware) RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(contextKeyRole) != role {
			utils.ErrorResponse(c, http.StatusForbidden, "insufficient permissions")
			c.Abort()
			return
		}
		c.Next()
	}
}

// AdvisorID extracts the authenticated advisor ID from the request context
func AdvisorID(c *gin.Context) uint {
	if v, ok := c.Get(constants.ContextKeyAdvisorID); ok {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}
