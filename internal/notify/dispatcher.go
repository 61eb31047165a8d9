package notify

import (
	"context"

	apperrors "loan-intake/internal/common/errors"
	"loan-intake/internal/common/logger"
	"loan-intake/internal/models"
	"loan-intake/internal/store"
)

// Dispatcher delivers one notification.
type Dispatcher interface {
	Send(ctx context.Context, msg *models.EmailMessage) error
}

// Selector routes each send through operator-configured SMTP when settings
// exist, otherwise SES.
type Selector struct {
	settings *store.SMTPStore
	smtp     Dispatcher
	ses      Dispatcher
	logger   logger.Logger
}

func NewSelector(settings *store.SMTPStore, smtp, ses Dispatcher, log logger.Logger) *Selector {
	return &Selector{
		settings: settings,
		smtp:     smtp,
		ses:      ses,
		logger:   log.WithFields(map[string]interface{}{"component": "dispatch-selector"}),
	}
}

func (s *Selector) Send(ctx context.Context, msg *models.EmailMessage) error {
	_, err := s.settings.Get(ctx)
	switch {
	case err == nil:
		return s.smtp.Send(ctx, msg)
	case apperrors.Is(err, apperrors.ErrNotFound):
		return s.ses.Send(ctx, msg)
	default:
		// Store trouble: SES needs no stored settings, so still try it.
		s.logger.Warn("smtp settings lookup failed, using ses", map[string]interface{}{"error": err.Error()})
		return s.ses.Send(ctx, msg)
	}
}
