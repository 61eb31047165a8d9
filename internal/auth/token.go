// Package auth provides session-token issuance/verification and the
// permission resolver gating every admin operation.
package auth

import (
	"errors"
	"fmt"
	"time"

	"loan-intake/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenExpired = errors.New("TOKEN_EXPIRED")
	ErrTokenInvalid = errors.New("TOKEN_INVALID")
)

// Claims carried by every session token. Permissions, when present, are a
// snapshot taken at issuance. They are a hint for non-authoritative UI
// decisions only; access control always re-reads the live account record.
type Claims struct {
	AccountID   string              `json:"id"`
	Email       string              `json:"email"`
	Role        string              `json:"role"`
	Permissions *models.Permissions `json:"permissions,omitempty"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies symmetric-key signed session tokens.
// HMAC keeps verification runnable in restricted edge contexts.
type TokenService struct {
	secret []byte
	now    func() time.Time
}

func NewTokenService(secret string) *TokenService {
	return &TokenService{
		secret: []byte(secret),
		now:    time.Now,
	}
}

// Issue mints a signed token for the account with the given validity window.
// When snapshotPermissions is true the account's current permission flags are
// embedded in the claims.
func (s *TokenService) Issue(account *models.AdminAccount, ttl time.Duration, snapshotPermissions bool) (string, error) {
	now := s.now().UTC()
	claims := Claims{
		AccountID: account.ID,
		Email:     account.Email,
		Role:      account.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	if snapshotPermissions {
		perms := account.Permissions
		claims.Permissions = &perms
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token string, returning its claims.
// Fails with ErrTokenExpired past the validity window and ErrTokenInvalid for
// tampering, a wrong key, or a non-HMAC signing method.
func (s *TokenService) Verify(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if !token.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
