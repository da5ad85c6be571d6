// Package middleware provides HTTP middleware for the fiber app:
// JWT authentication, role gates and claim extraction helpers.
package middleware

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"

	"compas/internal/models"
	"compas/internal/services/auth"
	"compas/internal/utils"
)

// AuthMiddleware validates the bearer token on a request and stores the
// user claims in the request context. A token signed before the user's
// last logout-all carries a stale version and is rejected.
type AuthMiddleware struct {
	authService auth.Service
}

func NewAuthMiddleware(authService auth.Service) *AuthMiddleware {
	return &AuthMiddleware{authService: authService}
}

func (m *AuthMiddleware) Handler(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return utils.Unauthorized(c, "missing authorization header")
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return utils.Unauthorized(c, "invalid authorization format")
	}
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")

	_, claims, err := utils.ParseToken(tokenString)
	if err != nil {
		return utils.Unauthorized(c, "invalid token")
	}

	currentVersion, err := m.authService.GetUserTokenVersion(claims.UserID)
	if err != nil {
		log.Printf("auth: token for unknown user %d", claims.UserID)
		return utils.Unauthorized(c, "invalid token")
	}
	if claims.TokenVersion != currentVersion {
		return utils.Unauthorized(c, "session expired")
	}

	c.Locals("claims", claims)
	c.Locals("userID", claims.UserID)
	return c.Next()
}

// Claims pulls the authenticated user's claims out of the context. Only
// valid behind AuthMiddleware.
func Claims(c *fiber.Ctx) (*models.UserClaims, bool) {
	claims, ok := c.Locals("claims").(*models.UserClaims)
	return claims, ok
}

// AdminOnly passes only admin users.
func AdminOnly(c *fiber.Ctx) error {
	claims, ok := Claims(c)
	if !ok {
		return utils.Unauthorized(c, "unauthorized")
	}
	if claims.Role != models.RoleAdmin {
		return utils.Forbidden(c, "insufficient permissions")
	}
	return c.Next()
}

// InstructorOnly passes instructors and admins.
func InstructorOnly(c *fiber.Ctx) error {
	claims, ok := Claims(c)
	if !ok {
		return utils.Unauthorized(c, "unauthorized")
	}
	if claims.Role != models.RoleInstructor && claims.Role != models.RoleAdmin {
		return utils.Forbidden(c, "insufficient permissions")
	}
	return c.Next()
}

// HasPermission gates a route on one claim permission. Admins pass
// everything.
func HasPermission(permission string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := Claims(c)
		if !ok {
			return utils.Unauthorized(c, "unauthorized")
		}
		if claims.Role == models.RoleAdmin || claims.HasPermission(permission) {
			return c.Next()
		}
		return utils.Forbidden(c, "insufficient permissions")
	}
}
