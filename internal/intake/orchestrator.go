package intake

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"loan-intake/internal/common/config"
	apperrors "loan-intake/internal/common/errors"
	"loan-intake/internal/common/logger"
	"loan-intake/internal/common/metrics"
	"loan-intake/internal/models"
	"loan-intake/internal/store"
)

// Pipeline stages reported in partial-success results.
const (
	StageRender = "render"
	StageNotify = "notify"
)

// Renderer turns a stored application (plus optional signature image) into a
// PDF document. Collaborator boundary; implementations live in render.
type Renderer interface {
	RenderApplicationPDF(ctx context.Context, app *models.Application) ([]byte, error)
}

// Dispatcher delivers a notification with attachments. Collaborator boundary;
// implementations live in notify.
type Dispatcher interface {
	Send(ctx context.Context, msg *models.EmailMessage) error
}

// Result is the submission outcome. Once ApplicationID is set the record is
// durable; Partial marks a downstream render/notify failure that staff can
// remediate by manual resend.
type Result struct {
	ApplicationID string `json:"applicationId"`
	Partial       bool   `json:"partial,omitempty"`
	FailedStage   string `json:"failedStage,omitempty"`
}

// Orchestrator coordinates one application submission end to end.
type Orchestrator struct {
	idgen        *IDGenerator
	applications *store.ApplicationStore
	recipients   *store.RecipientStore
	renderer     Renderer
	dispatcher   Dispatcher
	cfg          config.NotificationConfig
	logger       logger.Logger
}

func NewOrchestrator(
	idgen *IDGenerator,
	applications *store.ApplicationStore,
	recipients *store.RecipientStore,
	renderer Renderer,
	dispatcher Dispatcher,
	cfg config.NotificationConfig,
	log logger.Logger,
) *Orchestrator {
	return &Orchestrator{
		idgen:        idgen,
		applications: applications,
		recipients:   recipients,
		renderer:     renderer,
		dispatcher:   dispatcher,
		cfg:          cfg,
		logger:       log.WithFields(map[string]interface{}{"component": "submission-orchestrator"}),
	}
}

// Submit runs the pipeline for a validated payload: assign an identifier,
// persist, render the PDF, resolve recipients, dispatch.
//
// Persistence is the durability boundary. A failure before it is a hard
// failure with nothing stored; a failure after it returns a partial result
// with the identifier, never an error that hides whether the application was
// recorded.
func (o *Orchestrator) Submit(ctx context.Context, req *models.SubmissionRequest) (*Result, error) {
	start := time.Now()

	app, err := o.persist(ctx, req)
	if err != nil {
		metrics.SubmissionsTotal.WithLabelValues("failed").Inc()
		return nil, err
	}

	result := &Result{ApplicationID: app.ID}
	log := o.logger.WithFields(map[string]interface{}{"applicationId": app.ID})

	pdf, err := o.renderer.RenderApplicationPDF(ctx, app)
	if err != nil {
		log.Error("artifact rendering failed after persistence", map[string]interface{}{
			"stage": StageRender,
			"error": err.Error(),
		})
		result.Partial = true
		result.FailedStage = StageRender
		metrics.SubmissionsTotal.WithLabelValues("partial").Inc()
		metrics.SubmissionDuration.Observe(time.Since(start).Seconds())
		return result, nil
	}

	recipients := o.resolveRecipients(ctx, log)
	msg := o.buildNotification(app, recipients, pdf)

	if err := o.dispatcher.Send(ctx, msg); err != nil {
		log.Error("notification dispatch failed after persistence", map[string]interface{}{
			"stage":      StageNotify,
			"recipients": recipients,
			"error":      err.Error(),
		})
		metrics.NotificationsSent.WithLabelValues("failed").Inc()
		result.Partial = true
		result.FailedStage = StageNotify
		metrics.SubmissionsTotal.WithLabelValues("partial").Inc()
		metrics.SubmissionDuration.Observe(time.Since(start).Seconds())
		return result, nil
	}

	metrics.NotificationsSent.WithLabelValues("sent").Inc()
	metrics.SubmissionsTotal.WithLabelValues("success").Inc()
	metrics.SubmissionDuration.Observe(time.Since(start).Seconds())

	log.Info("submission completed", map[string]interface{}{
		"recipients": len(recipients),
		"loanType":   app.LoanInfo.LoanType,
	})
	return result, nil
}

// persist assigns the identifier and writes the record. The conditional set
// catches the narrow window where two submissions pass the uniqueness check
// with the same candidate; the loser re-enters identifier assignment.
func (o *Orchestrator) persist(ctx context.Context, req *models.SubmissionRequest) (*models.Application, error) {
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		id, err := o.idgen.Next(ctx)
		if err != nil {
			return nil, err
		}

		now := time.Now().UTC()
		app := &models.Application{
			ID:              id,
			PersonalInfo:    req.PersonalInfo,
			BusinessInfo:    req.BusinessInfo,
			LoanInfo:        req.LoanInfo,
			CoApplicantInfo: req.CoApplicantInfo,
			Documents:       req.Documents,
			Signature:       req.Signature,
			Status:          models.StatusSubmitted,
			CreatedAt:       now,
			UpdatedAt:       now,
		}

		created, err := o.applications.CreateNX(ctx, app)
		if err != nil {
			return nil, err
		}
		if created {
			return app, nil
		}

		metrics.IDGenerationRetries.Inc()
	}

	return nil, fmt.Errorf("%w: conditional write lost %d races", apperrors.ErrIDExhausted, maxIDAttempts)
}

// resolveRecipients returns all active recipient addresses, falling back to
// the configured operator address. The pipeline never sends to nobody.
func (o *Orchestrator) resolveRecipients(ctx context.Context, log logger.Logger) []string {
	active, err := o.recipients.ListActive(ctx)
	if err != nil {
		log.Warn("recipient lookup failed, using default", map[string]interface{}{"error": err.Error()})
		return []string{o.cfg.DefaultRecipient}
	}

	if len(active) == 0 {
		return []string{o.cfg.DefaultRecipient}
	}

	addresses := make([]string, 0, len(active))
	for _, r := range active {
		addresses = append(addresses, r.Email)
	}
	return addresses
}

func (o *Orchestrator) buildNotification(app *models.Application, recipients []string, pdf []byte) *models.EmailMessage {
	applicant := strings.TrimSpace(app.PersonalInfo.FirstName + " " + app.PersonalInfo.LastName)
	body := fmt.Sprintf(
		"A new %s loan application has been submitted.\n\n"+
			"Application ID: %s\n"+
			"Business: %s\n"+
			"Applicant: %s\n"+
			"Amount Requested: %s\n"+
			"Submitted At: %s\n",
		app.LoanInfo.LoanType,
		app.ID,
		app.BusinessInfo.BusinessName,
		applicant,
		formatCurrency(app.LoanInfo.AmountRequested),
		app.CreatedAt.Format(time.RFC1123),
	)

	return &models.EmailMessage{
		To:      recipients,
		Subject: fmt.Sprintf("%s #%s - %s", o.cfg.SubjectPrefix, app.ID, app.BusinessInfo.BusinessName),
		Body:    body,
		Attachments: []models.EmailAttachment{
			{
				Filename:    fmt.Sprintf("application-%s.pdf", app.ID),
				Content:     pdf,
				ContentType: "application/pdf",
			},
		},
	}
}

// formatCurrency renders a USD amount with thousands separators, e.g.
// 150000 -> $150,000 and 1234.5 -> $1,234.50.
func formatCurrency(amount float64) string {
	whole := int64(amount)
	frac := amount - float64(whole)

	digits := strconv.FormatInt(whole, 10)
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}

	if frac > 0.004 {
		return fmt.Sprintf("$%s.%02d", b.String(), int(frac*100+0.5))
	}
	return "$" + b.String()
}
