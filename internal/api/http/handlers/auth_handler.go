package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/aetherboard/aetherboard/internal/api/dto"
	"github.com/aetherboard/aetherboard/internal/auth"
	"github.com/aetherboard/aetherboard/internal/domain"
	"github.com/aetherboard/aetherboard/internal/service"
	apperrors "github.com/aetherboard/aetherboard/pkg/util/errorutil"
)

// AuthService is the account surface used by AuthHandler.
type AuthService interface {
	SignUp(ctx context.Context, email, password, fullName string) (*domain.Profile, domain.Session, error)
	Login(ctx context.Context, email, password string) (*domain.Profile, domain.Session, error)
	Logout(ctx context.Context, claims *auth.Claims) error
	Me(ctx context.Context, profileID string) (*domain.Profile, error)
	UpdateProfile(ctx context.Context, profileID string, fullName *string) (*domain.Profile, error)
	ProvisionProfile(ctx context.Context, id, email, role string) error
}

// AuthHandler exposes signup, login and profile endpoints.
type AuthHandler struct {
	auth   AuthService
	logger *zap.Logger
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService AuthService, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{auth: authService, logger: logger}
}

// SignUp handles POST /auth/signup.
func (h *AuthHandler) SignUp(c *fiber.Ctx) error {
	var req dto.SignUpRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}
	profile, session, err := h.auth.SignUp(c.UserContext(), req.Email, req.Password, req.FullName)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{
			"profile": profileResponse(profile),
			"auth":    dto.AuthResponse{Token: session.Token, ExpiresAt: session.ExpiresAt},
		},
	})
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}
	profile, session, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"profile": profileResponse(profile),
			"auth":    dto.AuthResponse{Token: session.Token, ExpiresAt: session.ExpiresAt},
		},
	})
}

// Logout handles POST /auth/logout.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := h.auth.Logout(c.UserContext(), principal.Claims); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Me handles GET /auth/me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	profile, err := currentProfile(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": profileResponse(profile)})
}

// UpdateMe handles PATCH /auth/me.
func (h *AuthHandler) UpdateMe(c *fiber.Ctx) error {
	profile, err := currentProfile(c)
	if err != nil {
		return err
	}
	var req dto.UpdateProfileRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	updated, err := h.auth.UpdateProfile(c.UserContext(), profile.ID, req.FullName)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": profileResponse(updated)})
}

// CreateProfile handles POST /functions/create-profile. It keeps the plain
// {success}/{error} contract of the signup function rather than the API envelope.
func (h *AuthHandler) CreateProfile(c *fiber.Ctx) error {
	var req dto.CreateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	err := h.auth.ProvisionProfile(c.UserContext(), req.ID, req.Email, req.Role)
	switch {
	case err == nil:
		return c.JSON(fiber.Map{"success": true})
	case errors.Is(err, service.ErrMissingProfileFields):
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Missing fields"})
	default:
		h.logger.Error("create profile failed", zap.String("profile_id", req.ID), zap.Error(err))
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
}

func profileResponse(p *domain.Profile) dto.ProfileResponse {
	return dto.ProfileResponse{
		ID:          p.ID,
		Email:       p.Email,
		FullName:    p.FullName,
		DisplayName: p.DisplayName(),
		Role:        p.Role,
		HourlyRate:  p.HourlyRate,
		CreatedAt:   p.CreatedAt,
	}
}
