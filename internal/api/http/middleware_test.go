package http

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aetherboard/aetherboard/internal/auth"
	"github.com/aetherboard/aetherboard/internal/domain"
	"github.com/aetherboard/aetherboard/internal/observability"
	apperrors "github.com/aetherboard/aetherboard/pkg/util/errorutil"
)

func errorBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out struct {
		Error map[string]any `json:"error"`
	}
	require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	return out.Error
}

func TestErrorEnvelope(t *testing.T) {
	metrics := observability.NewMetrics()
	app := fiber.New()
	RegisterMiddlewares(app, zap.NewNop(), metrics, time.Second)

	asEmployee := func(c *fiber.Ctx) error {
		auth.SetPrincipal(c, &auth.Principal{Profile: &domain.Profile{ID: "u1", Role: domain.RoleEmployee}})
		return c.Next()
	}
	app.Get("/conflict", func(c *fiber.Ctx) error {
		return apperrors.NewConflict("ticket already closed", map[string]any{"ticket_id": "t1"})
	})
	app.Get("/payroll", asEmployee, auth.RequireRole(domain.RoleHR, domain.RoleAdmin), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	app.Get("/anonymous", auth.RequireRole(), func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/panic", func(c *fiber.Ctx) error { panic("boom") })

	tests := []struct {
		path    string
		status  int
		code    string
		message string
	}{
		{"/conflict", http.StatusConflict, "CONFLICT", "ticket already closed"},
		{"/payroll", http.StatusForbidden, "FORBIDDEN", "insufficient role"},
		{"/anonymous", http.StatusUnauthorized, "UNAUTHORIZED", "authentication required"},
		{"/panic", http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error"},
		{"/missing", http.StatusNotFound, "NOT_FOUND", ""},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, tt.path, nil), -1)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
			body := errorBody(t, resp)
			assert.Equal(t, tt.code, body["code"])
			if tt.message != "" {
				assert.Equal(t, tt.message, body["message"])
			}
		})
	}

	snap := metrics.Snapshot()
	assert.NotEmpty(t, snap.Errors)
}

func TestConflictCarriesDetails(t *testing.T) {
	app := fiber.New()
	RegisterMiddlewares(app, zap.NewNop(), nil, 0)
	app.Get("/conflict", func(c *fiber.Ctx) error {
		return apperrors.NewConflict("ticket already closed", map[string]any{"ticket_id": "t1"})
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/conflict", nil), -1)
	require.NoError(t, err)
	body := errorBody(t, resp)
	assert.Equal(t, map[string]any{"ticket_id": "t1"}, body["details"])
}
