package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nurturelink/consult-api/pkg/auth"

	"github.com/nurturelink/consult-api/internal/handler"
)

// RoleResolver looks up the caller's current role. It is consulted on
// every guarded request so role changes apply immediately.
type RoleResolver interface {
	ResolveRole(ctx context.Context, userID uuid.UUID) (string, error)
}

type AuthMiddleware struct {
	jwtSvc   auth.JWTService
	resolver RoleResolver
}

func NewAuthMiddleware(jwtSvc auth.JWTService, resolver RoleResolver) *AuthMiddleware {
	return &AuthMiddleware{jwtSvc: jwtSvc, resolver: resolver}
}

// Authenticate verifies the bearer token and sets the caller's identity
// and role in the context.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, handler.NewErrorResponse("missing authorization header"))
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid authorization format"))
			return
		}

		claims, err := m.jwtSvc.ValidateToken(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid token"))
			return
		}

		role, err := m.resolver.ResolveRole(c.Request.Context(), claims.UserID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, handler.NewErrorResponse("no role assigned"))
			return
		}

		c.Set(handler.ContextUserID, claims.UserID)
		c.Set(handler.ContextEmail, claims.Email)
		c.Set(handler.ContextRole, role)
		c.Next()
	}
}

// OptionalAuthenticate sets identity when a valid token is present but
// lets anonymous requests through. Used by signup, where an admin token
// unlocks admin account creation.
func (m *AuthMiddleware) OptionalAuthenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.Next()
			return
		}

		claims, err := m.jwtSvc.ValidateToken(parts[1])
		if err != nil {
			c.Next()
			return
		}

		role, err := m.resolver.ResolveRole(c.Request.Context(), claims.UserID)
		if err != nil {
			c.Next()
			return
		}

		c.Set(handler.ContextUserID, claims.UserID)
		c.Set(handler.ContextEmail, claims.Email)
		c.Set(handler.ContextRole, role)
		c.Next()
	}
}

// RequireRole guards a route group to the given roles.
func (m *AuthMiddleware) RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(c *gin.Context) {
		role := handler.Role(c)
		if _, ok := allowed[role]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, handler.NewErrorResponse("insufficient permissions"))
			return
		}
		c.Next()
	}
}
