package notify

import (
	"context"
	"fmt"
	"time"

	"loan-intake/internal/common/logger"
	"loan-intake/internal/models"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// SESAPI is the slice of the SES client used here, for mocking in tests.
type SESAPI interface {
	SendRawEmail(ctx context.Context, params *ses.SendRawEmailInput, optFns ...func(*ses.Options)) (*ses.SendRawEmailOutput, error)
}

// SESDispatcher sends notifications through AWS SES. Raw email is required
// because the simple API cannot carry attachments.
type SESDispatcher struct {
	client    SESAPI
	fromEmail string
	timeout   time.Duration
	logger    logger.Logger
}

func NewSESDispatcher(ctx context.Context, region, fromEmail string, timeout time.Duration, log logger.Logger) (*SESDispatcher, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	return &SESDispatcher{
		client:    ses.NewFromConfig(cfg),
		fromEmail: fromEmail,
		timeout:   timeout,
		logger:    log.WithFields(map[string]interface{}{"component": "ses-dispatcher"}),
	}, nil
}

// NewSESDispatcherWithClient injects an SES client, for tests.
func NewSESDispatcherWithClient(client SESAPI, fromEmail string, timeout time.Duration, log logger.Logger) *SESDispatcher {
	return &SESDispatcher{
		client:    client,
		fromEmail: fromEmail,
		timeout:   timeout,
		logger:    log.WithFields(map[string]interface{}{"component": "ses-dispatcher"}),
	}
}

func (d *SESDispatcher) Send(ctx context.Context, msg *models.EmailMessage) error {
	if msg.From == "" {
		msg.From = d.fromEmail
	}

	raw, err := buildMIME(msg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	_, err = d.client.SendRawEmail(ctx, &ses.SendRawEmailInput{
		RawMessage:   &types.RawMessage{Data: raw},
		Destinations: msg.To,
	})
	if err != nil {
		return fmt.Errorf("ses send raw email: %w", err)
	}

	d.logger.Info("notification sent", map[string]interface{}{
		"recipients":  len(msg.To),
		"attachments": len(msg.Attachments),
	})
	return nil
}
