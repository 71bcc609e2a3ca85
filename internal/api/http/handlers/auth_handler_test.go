package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aetherboard/aetherboard/internal/auth"
	"github.com/aetherboard/aetherboard/internal/domain"
	"github.com/aetherboard/aetherboard/internal/service"
	apperrors "github.com/aetherboard/aetherboard/pkg/util/errorutil"
)

type stubAuth struct {
	provisionErr error
	provisioned  []string
}

func (s *stubAuth) SignUp(_ context.Context, email, _, fullName string) (*domain.Profile, domain.Session, error) {
	if email == "taken@example.com" {
		return nil, domain.Session{}, apperrors.NewConflict("email already registered", nil)
	}
	p := &domain.Profile{ID: "new", Email: email, FullName: fullName, Role: domain.RoleEmployee}
	return p, domain.Session{Token: "tok", ProfileID: p.ID, ExpiresAt: time.Now().Add(time.Hour)}, nil
}

func (s *stubAuth) Login(_ context.Context, _, _ string) (*domain.Profile, domain.Session, error) {
	return nil, domain.Session{}, apperrors.NewUnauthorized("invalid credentials")
}

func (s *stubAuth) Logout(context.Context, *auth.Claims) error { return nil }

func (s *stubAuth) Me(context.Context, string) (*domain.Profile, error) { return employee, nil }

func (s *stubAuth) UpdateProfile(_ context.Context, _ string, fullName *string) (*domain.Profile, error) {
	cp := *employee
	if fullName != nil {
		cp.FullName = *fullName
	}
	return &cp, nil
}

func (s *stubAuth) ProvisionProfile(_ context.Context, id, _, _ string) error {
	if s.provisionErr != nil {
		return s.provisionErr
	}
	s.provisioned = append(s.provisioned, id)
	return nil
}


func TestSignUpReturnsProfileAndSession(t *testing.T) {
	h := NewAuthHandler(&stubAuth{}, nil)
	app := newApp(nil)
	app.Post("/auth/signup", h.SignUp)

	status, body := call(t, app, http.MethodPost, "/auth/signup", map[string]string{
		"email": "lin@example.com", "password": "secret123", "full_name": "Lin",
	})
	require.Equal(t, http.StatusCreated, status)
	profile := data(body)["profile"].(map[string]any)
	assert.Equal(t, "lin@example.com", profile["email"])
	assert.Equal(t, "employee", profile["role"])
	assert.Equal(t, "tok", data(body)["auth"].(map[string]any)["token"])

	status, body = call(t, app, http.MethodPost, "/auth/signup", map[string]string{
		"email": "taken@example.com", "password": "secret123",
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "CONFLICT", errorCode(body))

	status, body = call(t, app, http.MethodPost, "/auth/signup", map[string]string{"email": "x@example.com"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(body))
}

func TestMeRequiresSession(t *testing.T) {
	h := NewAuthHandler(&stubAuth{}, nil)

	anon := newApp(nil)
	anon.Get("/auth/me", h.Me)
	status, _ := call(t, anon, http.MethodGet, "/auth/me", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	app := newApp(employee)
	app.Get("/auth/me", h.Me)
	app.Patch("/auth/me", h.UpdateMe)
	status, body := call(t, app, http.MethodGet, "/auth/me", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Ada", data(body)["display_name"])

	status, body = call(t, app, http.MethodPatch, "/auth/me", map[string]string{"full_name": "Ada L."})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Ada L.", data(body)["full_name"])
}

func TestCreateProfileContract(t *testing.T) {
	tests := []struct {
		name       string
		body       any
		err        error
		wantStatus int
		wantBody   map[string]any
	}{
		{
			name:       "created",
			body:       map[string]string{"id": "p1", "email": "p1@example.com", "role": "employee"},
			wantStatus: http.StatusOK,
			wantBody:   map[string]any{"success": true},
		},
		{
			name:       "missing fields",
			body:       map[string]string{"id": "p1"},
			err:        service.ErrMissingProfileFields,
			wantStatus: http.StatusBadRequest,
			wantBody:   map[string]any{"error": "Missing fields"},
		},
		{
			name:       "store failure",
			body:       map[string]string{"id": "p1", "email": "p1@example.com", "role": "employee"},
			err:        errors.New("connection refused"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   map[string]any{"error": "connection refused"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubAuth{provisionErr: tt.err}
			app := newApp(nil)
			app.Post("/functions/create-profile", NewAuthHandler(svc, nil).CreateProfile)

			status, body := call(t, app, http.MethodPost, "/functions/create-profile", tt.body)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantBody, body)
		})
	}
}

func TestCreateProfileMalformedBodyIsServerError(t *testing.T) {
	svc := &stubAuth{}
	app := newApp(nil)
	app.Post("/functions/create-profile", NewAuthHandler(svc, nil).CreateProfile)

	status, body := call(t, app, http.MethodPost, "/functions/create-profile", "{not json")
	assert.Equal(t, http.StatusInternalServerError, status)
	msg, _ := body["error"].(string)
	assert.NotEmpty(t, msg)
	assert.NotContains(t, body, "success")
	assert.Empty(t, svc.provisioned)
}
