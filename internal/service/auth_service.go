package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/aetherboard/aetherboard/internal/auth"
	"github.com/aetherboard/aetherboard/internal/config"
	"github.com/aetherboard/aetherboard/internal/domain"
	"github.com/aetherboard/aetherboard/internal/repository"
	apperrors "github.com/aetherboard/aetherboard/pkg/util/errorutil"
)

// ErrMissingProfileFields is returned by ProvisionProfile when id, email or role is blank.
var ErrMissingProfileFields = errors.New("missing required fields")

// AuthService coordinates signup, login and profile provisioning.
type AuthService struct {
	profiles   repository.ProfileRepository
	revoked    auth.RevocationStore
	tokenMgr   *auth.TokenManager
	bcryptCost int
	logger     *zap.Logger
}

// AuthDependencies encapsulates repo requirements for auth service.
type AuthDependencies struct {
	ProfileRepo repository.ProfileRepository
	Revocations auth.RevocationStore
	Logger      *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		profiles:   deps.ProfileRepo,
		revoked:    deps.Revocations,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		bcryptCost: cfg.Auth.BcryptCost,
		logger:     logger,
	}
}

// SignUp creates an employee profile and opens a session for it.
func (s *AuthService) SignUp(ctx context.Context, email, password, fullName string) (*domain.Profile, domain.Session, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, domain.Session{}, apperrors.NewValidationError("email is required", nil)
	}
	hash, err := auth.HashPassword(password, s.bcryptCost)
	if errors.Is(err, auth.ErrWeakPassword) {
		return nil, domain.Session{}, apperrors.NewValidationError(err.Error(), map[string]any{"min_length": auth.MinPasswordLength})
	}
	if err != nil {
		return nil, domain.Session{}, apperrors.NewInternalError(err)
	}

	profile := &domain.Profile{
		Email:        email,
		FullName:     strings.TrimSpace(fullName),
		Role:         domain.RoleEmployee,
		PasswordHash: hash,
	}
	if err := s.profiles.Create(ctx, profile); err != nil {
		if apperrors.IsUniqueViolation(err) {
			return nil, domain.Session{}, apperrors.NewConflict("email already registered", map[string]any{"email": email})
		}
		return nil, domain.Session{}, apperrors.MapError(err)
	}

	session, err := s.tokenMgr.GenerateToken(profile.ID, profile.Role)
	if err != nil {
		return nil, domain.Session{}, apperrors.NewInternalError(err)
	}
	return profile, session, nil
}

// Login authenticates by email and password.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.Profile, domain.Session, error) {
	profile, err := s.profiles.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, domain.Session{}, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, domain.Session{}, apperrors.MapError(err)
	}
	if err := auth.ComparePassword(profile.PasswordHash, password); err != nil {
		return nil, domain.Session{}, apperrors.NewUnauthorized("invalid credentials")
	}
	session, err := s.tokenMgr.GenerateToken(profile.ID, profile.Role)
	if err != nil {
		return nil, domain.Session{}, apperrors.NewInternalError(err)
	}
	return profile, session, nil
}

// Logout revokes the presented token until its natural expiry.
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims) error {
	if claims == nil || claims.ID == "" || s.revoked == nil {
		return nil
	}
	var until time.Time
	if claims.ExpiresAt != nil {
		until = claims.ExpiresAt.Time
	}
	if err := s.revoked.Revoke(ctx, claims.ID, until); err != nil {
		return apperrors.NewInternalError(err)
	}
	return nil
}

func (s *AuthService) Me(ctx context.Context, profileID string) (*domain.Profile, error) {
	profile, err := s.profiles.GetByID(ctx, profileID)
	if err != nil {
		return nil, apperrors.MapNotFound(err, "profile", map[string]any{"profile_id": profileID})
	}
	return profile, nil
}

// UpdateProfile changes the caller's display name.
func (s *AuthService) UpdateProfile(ctx context.Context, profileID string, fullName *string) (*domain.Profile, error) {
	profile, err := s.Me(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if fullName != nil {
		profile.FullName = strings.TrimSpace(*fullName)
	}
	if err := s.profiles.Update(ctx, profile); err != nil {
		return nil, apperrors.MapNotFound(err, "profile", map[string]any{"profile_id": profileID})
	}
	return profile, nil
}

// ProvisionProfile inserts a passwordless profile row for an externally created identity.
// The returned error is either ErrMissingProfileFields or the raw insert failure.
func (s *AuthService) ProvisionProfile(ctx context.Context, id, email, role string) error {
	id, email, role = strings.TrimSpace(id), normalizeEmail(email), strings.TrimSpace(role)
	if id == "" || email == "" || role == "" {
		return ErrMissingProfileFields
	}
	profile := &domain.Profile{ID: id, Email: email, Role: domain.Role(strings.ToLower(role))}
	if err := s.profiles.Create(ctx, profile); err != nil {
		s.logger.Error("provision profile", zap.String("profile_id", id), zap.Error(err))
		return err
	}
	return nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
