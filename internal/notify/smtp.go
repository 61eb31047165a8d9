package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"time"

	"loan-intake/internal/common/logger"
	"loan-intake/internal/models"
	"loan-intake/internal/store"
)

// SMTPDispatcher sends notifications through the operator-configured SMTP
// relay. Settings are re-read per send so panel changes apply without a
// restart.
type SMTPDispatcher struct {
	settings *store.SMTPStore
	timeout  time.Duration
	logger   logger.Logger
}

func NewSMTPDispatcher(settings *store.SMTPStore, timeout time.Duration, log logger.Logger) *SMTPDispatcher {
	return &SMTPDispatcher{
		settings: settings,
		timeout:  timeout,
		logger:   log.WithFields(map[string]interface{}{"component": "smtp-dispatcher"}),
	}
}

func (d *SMTPDispatcher) Send(ctx context.Context, msg *models.EmailMessage) error {
	cfg, err := d.settings.Get(ctx)
	if err != nil {
		return fmt.Errorf("load smtp settings: %w", err)
	}

	if msg.From == "" {
		msg.From = cfg.FromEmail
	}

	raw, err := buildMIME(msg)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	auth := smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)

	if err := d.sendRaw(addr, cfg.Host, cfg.UseTLS, auth, msg, raw); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	d.logger.Info("notification sent", map[string]interface{}{
		"recipients":  len(msg.To),
		"attachments": len(msg.Attachments),
	})
	return nil
}

func (d *SMTPDispatcher) sendRaw(addr, host string, useTLS bool, auth smtp.Auth, msg *models.EmailMessage, raw []byte) error {
	conn, err := net.DialTimeout("tcp", addr, d.timeout)
	if err != nil {
		return err
	}

	client, err := smtp.NewClient(conn, host)
	if err != nil {
		conn.Close()
		return err
	}
	defer client.Close()

	if useTLS {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(&tls.Config{ServerName: host}); err != nil {
				return err
			}
		}
	}

	if err := client.Auth(auth); err != nil {
		return err
	}
	if err := client.Mail(msg.From); err != nil {
		return err
	}
	for _, to := range msg.To {
		if err := client.Rcpt(to); err != nil {
			return err
		}
	}

	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(raw); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}
