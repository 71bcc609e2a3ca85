package auth

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/aetherboard/aetherboard/internal/domain"
)

// RequireRole ensures the principal has one of the allowed roles.
func RequireRole(allowed ...domain.Role) fiber.Handler {
	allowedSet := make(map[domain.Role]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok || principal.Profile == nil {
			return fiber.NewError(http.StatusUnauthorized, "authentication required")
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		if _, exists := allowedSet[principal.Role()]; !exists {
			return fiber.NewError(http.StatusForbidden, "insufficient role")
		}
		return c.Next()
	}
}

// RequireServiceKey guards provisioning endpoints called by trusted backends.
// An empty key disables the endpoint entirely.
func RequireServiceKey(key string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if key == "" || c.Get("X-Service-Role-Key") != key {
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"error": "invalid service role key"})
		}
		return c.Next()
	}
}
