package auth

import (
	"context"
	"fmt"

	apperrors "loan-intake/internal/common/errors"
	"loan-intake/internal/common/logger"
	"loan-intake/internal/common/metrics"
	"loan-intake/internal/models"
	"loan-intake/internal/store"
)

// PermissionResolver decides whether a verified identity holds a capability.
// Permissions embedded in the token are never consulted; the live account
// record is the source of truth on every check.
type PermissionResolver struct {
	tokens *TokenService
	admins *store.AdminStore
	logger logger.Logger
}

func NewPermissionResolver(tokens *TokenService, admins *store.AdminStore, log logger.Logger) *PermissionResolver {
	return &PermissionResolver{
		tokens: tokens,
		admins: admins,
		logger: log.WithFields(map[string]interface{}{"component": "permission-resolver"}),
	}
}

// CheckPermission verifies the token, re-loads the account from the store,
// and checks the capability. An empty required permission means any verified
// and still-existing account passes.
//
// Every failure cause (bad signature, expiry, deleted account, missing
// capability) returns the same ErrUnauthorized so callers cannot probe which
// one occurred.
func (r *PermissionResolver) CheckPermission(ctx context.Context, token, required string) (*models.AdminAccount, error) {
	claims, err := r.tokens.Verify(token)
	if err != nil {
		r.deny(required, "token verification failed", err)
		return nil, apperrors.ErrUnauthorized
	}

	account, err := r.admins.GetByEmail(ctx, claims.Email)
	if err != nil {
		// A valid token whose account vanished is indistinguishable from a
		// bad token; store outages also deny rather than fail open.
		r.deny(required, fmt.Sprintf("account lookup failed for %s", claims.Email), err)
		return nil, apperrors.ErrUnauthorized
	}

	if required == "" {
		return account, nil
	}

	if !account.Can(required) {
		r.deny(required, fmt.Sprintf("account %s lacks %s", account.ID, required), nil)
		return nil, apperrors.ErrUnauthorized
	}

	return account, nil
}

func (r *PermissionResolver) deny(permission, reason string, err error) {
	if permission == "" {
		permission = "any"
	}
	metrics.AuthDenials.WithLabelValues(permission).Inc()

	fields := map[string]interface{}{
		"permission": permission,
		"reason":     reason,
	}
	if err != nil {
		fields["error"] = err.Error()
	}
	// Detail stays in the logs; the caller only ever sees "unauthorized".
	r.logger.Warn("authorization denied", fields)
}
