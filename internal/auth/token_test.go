package auth

import (
	"testing"
	"time"

	"loan-intake/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAccount() *models.AdminAccount {
	return &models.AdminAccount{
		ID:    "acct-001",
		Email: "reviewer@example.com",
		Role:  models.RoleSubAdmin,
		Permissions: models.Permissions{
			ViewApplications: true,
		},
	}
}

func TestTokenService_IssueAndVerify(t *testing.T) {
	svc := NewTokenService("test-secret")

	token, err := svc.Issue(testAccount(), 24*time.Hour, false)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "acct-001", claims.AccountID)
	assert.Equal(t, "reviewer@example.com", claims.Email)
	assert.Equal(t, models.RoleSubAdmin, claims.Role)
	assert.Nil(t, claims.Permissions)
}

func TestTokenService_PermissionsSnapshot(t *testing.T) {
	svc := NewTokenService("test-secret")

	token, err := svc.Issue(testAccount(), time.Hour, true)
	require.NoError(t, err)

	claims, err := svc.Verify(token)
	require.NoError(t, err)
	require.NotNil(t, claims.Permissions)
	assert.True(t, claims.Permissions.ViewApplications)
	assert.False(t, claims.Permissions.ManageAdmins)
}

func TestTokenService_Expired(t *testing.T) {
	svc := NewTokenService("test-secret")
	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, err := svc.Issue(testAccount(), time.Hour, false)
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.Verify(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenService_WrongKey(t *testing.T) {
	issuer := NewTokenService("secret-a")
	verifier := NewTokenService("secret-b")

	token, err := issuer.Issue(testAccount(), time.Hour, false)
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenService_Tampered(t *testing.T) {
	svc := NewTokenService("test-secret")

	token, err := svc.Issue(testAccount(), time.Hour, false)
	require.NoError(t, err)

	tampered := token[:len(token)-4] + "AAAA"
	_, err = svc.Verify(tampered)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenService_RejectsNonHMAC(t *testing.T) {
	svc := NewTokenService("test-secret")

	// alg=none token must never verify.
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"id":    "acct-001",
		"email": "reviewer@example.com",
	})
	tokenStr, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.Verify(tokenStr)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
