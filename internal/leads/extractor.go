// Package leads scans chat transcripts for contact details and financing
// intent. It is a best-effort triage signal for staff, not ground truth:
// missed leads and number-looking noise captured as phones are acceptable.
package leads

import (
	"context"
	"regexp"
	"strings"
	"time"

	"loan-intake/internal/common/logger"
	"loan-intake/internal/common/metrics"
	"loan-intake/internal/models"
	"loan-intake/internal/store"
)

var (
	emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)

	// Optional country code, common separator punctuation between groups.
	phonePattern = regexp.MustCompile(`(?:\+?\d{1,2}[\s.\-]?)?\(?\d{3}\)?[\s.\-]?\d{3}[\s.\-]?\d{4}`)

	namePattern = regexp.MustCompile(`(?i)\b(?:my name is|i am|i'm|this is)\s+([A-Z][a-z]+(?:\s+[A-Z][a-z]+)?)`)

	businessPattern = regexp.MustCompile(`(?i)\bmy\s+(?:business|company)\b[^.?!]*?\b(?:is called|is|called)\s+([A-Z][\w&'\-]*(?:\s+[A-Z][\w&'\-]*){0,4})`)
)

// intentKeywords flag financing interest anywhere in the user's messages.
var intentKeywords = []string{
	"loan", "apply", "applying", "application",
	"funding", "financing", "finance", "borrow", "capital",
}

// Extractor scans transcripts and persists lead records.
type Extractor struct {
	leads  *store.LeadStore
	logger logger.Logger
}

func NewExtractor(leads *store.LeadStore, log logger.Logger) *Extractor {
	return &Extractor{
		leads:  leads,
		logger: log.WithFields(map[string]interface{}{"component": "lead-extractor"}),
	}
}

// Extract scans user-authored messages only. Capture policy is first-seen:
// once a field matches it is never overwritten by a later message.
func Extract(sessionID string, messages []models.ChatMessage) *models.LeadRecord {
	lead := &models.LeadRecord{
		SessionID:     sessionID,
		InterestLevel: models.InterestLow,
	}

	for _, msg := range messages {
		if msg.Role != models.ChatRoleUser {
			continue
		}

		if lead.Email == "" {
			if m := emailPattern.FindString(msg.Content); m != "" {
				lead.Email = m
			}
		}
		if lead.Phone == "" {
			if m := phonePattern.FindString(msg.Content); m != "" {
				lead.Phone = strings.TrimSpace(m)
			}
		}
		if lead.Name == "" {
			if m := namePattern.FindStringSubmatch(msg.Content); m != nil {
				lead.Name = m[1]
			}
		}
		if lead.BusinessName == "" {
			if m := businessPattern.FindStringSubmatch(msg.Content); m != nil {
				lead.BusinessName = strings.TrimSpace(m[1])
			}
		}

		if lead.InterestLevel != models.InterestHigh {
			lower := strings.ToLower(msg.Content)
			for _, kw := range intentKeywords {
				if strings.Contains(lower, kw) {
					lead.InterestLevel = models.InterestHigh
					break
				}
			}
		}
	}

	// No contact signal means nothing worth storing.
	if lead.Email == "" && lead.Phone == "" {
		return nil
	}
	return lead
}

// Process runs extraction over a persisted chat session and stores the result
// when a contact signal was found. Returns the stored record, or nil when the
// transcript carried no signal.
func (e *Extractor) Process(ctx context.Context, sessionID string, messages []models.ChatMessage) (*models.LeadRecord, error) {
	lead := Extract(sessionID, messages)
	if lead == nil {
		e.logger.Debug("no lead signal in transcript", map[string]interface{}{"sessionId": sessionID})
		return nil, nil
	}

	lead.CreatedAt = time.Now().UTC()
	if err := e.leads.Save(ctx, lead); err != nil {
		return nil, err
	}

	metrics.LeadsExtracted.WithLabelValues(lead.InterestLevel).Inc()
	e.logger.Info("lead record stored", map[string]interface{}{
		"sessionId":     sessionID,
		"interestLevel": lead.InterestLevel,
		"hasEmail":      lead.Email != "",
		"hasPhone":      lead.Phone != "",
	})
	return lead, nil
}
