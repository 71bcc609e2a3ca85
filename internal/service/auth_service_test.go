package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aetherboard/aetherboard/internal/auth"
	"github.com/aetherboard/aetherboard/internal/config"
	"github.com/aetherboard/aetherboard/internal/domain"
)

func newAuthService(profiles *fakeProfileRepo, revoked auth.RevocationStore) *AuthService {
	cfg := config.Config{Auth: config.AuthConfig{JWTSecret: "test-secret", AccessTokenTTLMinutes: 5, BcryptCost: 4}}
	return NewAuthService(cfg, AuthDependencies{ProfileRepo: profiles, Revocations: revoked})
}

func TestSignUpLoginLogout(t *testing.T) {
	ctx := context.Background()
	revoked := auth.NewMemoryRevocationStore()
	svc := newAuthService(newFakeProfileRepo(), revoked)

	_, _, err := svc.SignUp(ctx, "dana@example.com", "123", "Dana")
	assert.Equal(t, "VALIDATION_FAILED", errorCode(err))

	profile, session, err := svc.SignUp(ctx, " Dana@Example.com ", "hunter22", "Dana")
	require.NoError(t, err)
	assert.Equal(t, "dana@example.com", profile.Email)
	assert.Equal(t, domain.RoleEmployee, profile.Role)
	assert.NotEmpty(t, session.Token)

	_, _, err = svc.SignUp(ctx, "dana@example.com", "another1", "Dup")
	assert.Equal(t, "CONFLICT", errorCode(err))

	_, _, err = svc.Login(ctx, "dana@example.com", "wrong-pass")
	assert.Equal(t, "UNAUTHORIZED", errorCode(err))
	_, _, err = svc.Login(ctx, "nobody@example.com", "hunter22")
	assert.Equal(t, "UNAUTHORIZED", errorCode(err))

	_, session, err = svc.Login(ctx, "DANA@example.com", "hunter22")
	require.NoError(t, err)
	claims, err := svc.TokenManager().ParseToken(session.Token)
	require.NoError(t, err)
	assert.Equal(t, profile.ID, claims.ProfileID())

	require.NoError(t, svc.Logout(ctx, claims))
	isRevoked, err := revoked.IsRevoked(ctx, claims.ID)
	require.NoError(t, err)
	assert.True(t, isRevoked)
}

func TestUpdateProfileName(t *testing.T) {
	ctx := context.Background()
	repo := newFakeProfileRepo(&domain.Profile{ID: "p1", Email: "p1@example.com", Role: domain.RoleHR})
	svc := newAuthService(repo, nil)

	name := "  Pat Lee "
	updated, err := svc.UpdateProfile(ctx, "p1", &name)
	require.NoError(t, err)
	assert.Equal(t, "Pat Lee", updated.FullName)
	assert.Equal(t, domain.RoleHR, updated.Role)

	_, err = svc.Me(ctx, "missing")
	assert.Equal(t, "NOT_FOUND", errorCode(err))
}

func TestProvisionProfile(t *testing.T) {
	ctx := context.Background()
	repo := newFakeProfileRepo()
	svc := newAuthService(repo, nil)

	assert.ErrorIs(t, svc.ProvisionProfile(ctx, "id-1", "", "employee"), ErrMissingProfileFields)
	require.NoError(t, svc.ProvisionProfile(ctx, "id-1", "new@example.com", "Manager"))
	assert.Equal(t, domain.RoleManager, repo.byID["id-1"].Role)

	err := svc.ProvisionProfile(ctx, "id-2", "new@example.com", "employee")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMissingProfileFields)

	// provisioned profiles have no password until one is set
	_, _, err = svc.Login(ctx, "new@example.com", "whatever")
	assert.Equal(t, "UNAUTHORIZED", errorCode(err))
}
