// Package store provides typed access helpers over the shared Redis
// connection. All mutation is whole-record read-modify-write on JSON blobs;
// concurrent updates to the same record race and the later write wins.
package store

import (
	"context"
	"fmt"
	"time"

	"loan-intake/internal/common/database"
	apperrors "loan-intake/internal/common/errors"
)

// Key namespaces. Leads live in a separate namespace from applications.
const (
	adminKeyPrefix       = "admin:"
	adminSetKey          = "admins"
	applicationKeyPrefix = "application:"
	applicationSetKey    = "applications"
	recipientKeyPrefix   = "recipient:"
	recipientSetKey      = "recipients"
	leadKeyPrefix        = "lead:"
	leadSetKey           = "leads"
	smtpSettingsKey      = "smtp:settings"
)

const opTimeout = 5 * time.Second

// withTimeout bounds every store operation so a wedged connection surfaces as
// ErrStoreUnavailable instead of hanging the request.
func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, opTimeout)
}

// normalizeErr maps raw client errors onto the store error taxonomy.
func normalizeErr(err error) error {
	if err == nil {
		return nil
	}
	if database.IsNotFound(err) {
		return apperrors.ErrNotFound
	}
	return fmt.Errorf("%w: %v", apperrors.ErrStoreUnavailable, err)
}
