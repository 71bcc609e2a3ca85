package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/aetherboard/aetherboard/internal/auth"
	"github.com/aetherboard/aetherboard/internal/domain"
	apperrors "github.com/aetherboard/aetherboard/pkg/util/errorutil"
)

func currentProfile(c *fiber.Ctx) (*domain.Profile, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Profile == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	return principal.Profile, nil
}

func bindJSON(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	return nil
}

// parseDate reads a YYYY-MM-DD value; empty yields def.
func parseDate(field, val string, def time.Time) (time.Time, error) {
	val = strings.TrimSpace(val)
	if val == "" {
		return def, nil
	}
	t, err := time.Parse(domain.DateLayout, val)
	if err != nil {
		return time.Time{}, apperrors.NewValidationError(field+" must be YYYY-MM-DD", map[string]any{field: val})
	}
	return t, nil
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func splitList(val string) []string {
	if val == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
