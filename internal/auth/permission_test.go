package auth

import (
	"context"
	"testing"
	"time"

	"loan-intake/internal/common/config"
	"loan-intake/internal/common/database"
	apperrors "loan-intake/internal/common/errors"
	"loan-intake/internal/common/logger"
	"loan-intake/internal/models"
	"loan-intake/internal/store"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*store.AdminStore, *database.RedisClient) {
	t.Helper()
	mr := miniredis.RunT(t)
	db := database.NewRedisFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { db.Close() })
	return store.NewAdminStore(db), db
}

func seedAccount(t *testing.T, admins *store.AdminStore, role string, perms models.Permissions) *models.AdminAccount {
	t.Helper()
	now := time.Now().UTC()
	account := &models.AdminAccount{
		ID:          "acct-" + role,
		Email:       role + "@example.com",
		Role:        role,
		Permissions: perms,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	require.NoError(t, admins.Create(context.Background(), account))
	return account
}

func TestCheckPermission_AdminRoleOverridesFlags(t *testing.T) {
	admins, _ := newTestStore(t)
	tokens := NewTokenService("test-secret")
	resolver := NewPermissionResolver(tokens, admins, logger.NewTestLogger(t))

	// All four flags false; the role alone must grant everything.
	account := seedAccount(t, admins, models.RoleAdmin, models.Permissions{})
	token, err := tokens.Issue(account, time.Hour, false)
	require.NoError(t, err)

	for _, perm := range []string{
		models.PermViewApplications,
		models.PermManageAdmins,
		models.PermManageSMTP,
		models.PermManageRecipients,
	} {
		got, err := resolver.CheckPermission(context.Background(), token, perm)
		require.NoError(t, err, perm)
		assert.Equal(t, account.ID, got.ID)
	}
}

func TestCheckPermission_SubAdminFlagChecked(t *testing.T) {
	admins, _ := newTestStore(t)
	tokens := NewTokenService("test-secret")
	resolver := NewPermissionResolver(tokens, admins, logger.NewTestLogger(t))

	account := seedAccount(t, admins, models.RoleSubAdmin, models.Permissions{
		ViewApplications: true,
	})
	token, err := tokens.Issue(account, time.Hour, false)
	require.NoError(t, err)

	got, err := resolver.CheckPermission(context.Background(), token, models.PermViewApplications)
	require.NoError(t, err)
	assert.Equal(t, account.ID, got.ID)

	_, err = resolver.CheckPermission(context.Background(), token, models.PermManageAdmins)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestCheckPermission_NoRequiredPermission(t *testing.T) {
	admins, _ := newTestStore(t)
	tokens := NewTokenService("test-secret")
	resolver := NewPermissionResolver(tokens, admins, logger.NewTestLogger(t))

	account := seedAccount(t, admins, models.RoleSubAdmin, models.Permissions{})
	token, err := tokens.Issue(account, time.Hour, false)
	require.NoError(t, err)

	got, err := resolver.CheckPermission(context.Background(), token, "")
	require.NoError(t, err)
	assert.Equal(t, account.ID, got.ID)
}

// A valid token whose account was deleted must be indistinguishable from a
// bad signature.
func TestCheckPermission_DeletedAccountIndistinguishable(t *testing.T) {
	admins, _ := newTestStore(t)
	tokens := NewTokenService("test-secret")
	resolver := NewPermissionResolver(tokens, admins, logger.NewTestLogger(t))

	account := seedAccount(t, admins, models.RoleAdmin, models.AllPermissions())
	token, err := tokens.Issue(account, time.Hour, false)
	require.NoError(t, err)
	require.NoError(t, admins.Delete(context.Background(), account.Email))

	_, errDeleted := resolver.CheckPermission(context.Background(), token, models.PermViewApplications)
	_, errBadToken := resolver.CheckPermission(context.Background(), "not-a-token", models.PermViewApplications)

	assert.ErrorIs(t, errDeleted, apperrors.ErrUnauthorized)
	assert.ErrorIs(t, errBadToken, apperrors.ErrUnauthorized)
	assert.Equal(t, errDeleted, errBadToken)
}

func TestCheckPermission_UnknownPermissionDenied(t *testing.T) {
	admins, _ := newTestStore(t)
	tokens := NewTokenService("test-secret")
	resolver := NewPermissionResolver(tokens, admins, logger.NewTestLogger(t))

	account := seedAccount(t, admins, models.RoleSubAdmin, models.AllPermissions())
	token, err := tokens.Issue(account, time.Hour, false)
	require.NoError(t, err)

	_, err = resolver.CheckPermission(context.Background(), token, "manageEverything")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestService_LoginAndBootstrap(t *testing.T) {
	admins, _ := newTestStore(t)
	tokens := NewTokenService("test-secret")
	cfg := config.AuthConfig{
		JWTSecret:          "test-secret",
		LoginTTLHours:      24,
		RefreshTTLHours:    1,
		SuperAdminEmail:    "operator@example.com",
		SuperAdminPassword: "swordfish",
	}
	svc := NewService(cfg, tokens, admins, logger.NewTestLogger(t))

	require.NoError(t, svc.Bootstrap(context.Background()))
	// Bootstrap must be idempotent.
	require.NoError(t, svc.Bootstrap(context.Background()))

	account, err := admins.GetByEmail(context.Background(), "operator@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, account.Role)
	assert.True(t, account.Permissions.ManageAdmins)

	result, err := svc.Login(context.Background(), "operator@example.com", "swordfish")
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, result.TTL)

	claims, err := tokens.Verify(result.Token)
	require.NoError(t, err)
	assert.Equal(t, "operator@example.com", claims.Email)

	_, err = svc.Login(context.Background(), "operator@example.com", "wrong")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	_, err = svc.Login(context.Background(), "nobody@example.com", "swordfish")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestService_RefreshEmbedsSnapshot(t *testing.T) {
	admins, _ := newTestStore(t)
	tokens := NewTokenService("test-secret")
	cfg := config.AuthConfig{LoginTTLHours: 24, RefreshTTLHours: 1}
	svc := NewService(cfg, tokens, admins, logger.NewTestLogger(t))

	account := seedAccount(t, admins, models.RoleSubAdmin, models.Permissions{ManageRecipients: true})

	result, err := svc.Refresh(context.Background(), account)
	require.NoError(t, err)
	assert.Equal(t, time.Hour, result.TTL)

	claims, err := tokens.Verify(result.Token)
	require.NoError(t, err)
	require.NotNil(t, claims.Permissions)
	assert.True(t, claims.Permissions.ManageRecipients)
}
