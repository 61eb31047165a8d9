package store

import (
	"context"
	"encoding/json"
	"fmt"

	"loan-intake/internal/common/database"
	"loan-intake/internal/models"
)

// SMTPStore holds the single operator-managed SMTP settings record.
type SMTPStore struct {
	db *database.RedisClient
}

func NewSMTPStore(db *database.RedisClient) *SMTPStore {
	return &SMTPStore{db: db}
}

// Get loads the stored SMTP settings. Returns ErrNotFound when the operator
// has never configured SMTP.
func (s *SMTPStore) Get(ctx context.Context) (*models.SMTPSettings, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	raw, err := s.db.Get(ctx, smtpSettingsKey)
	if err != nil {
		return nil, normalizeErr(err)
	}

	var settings models.SMTPSettings
	if err := json.Unmarshal([]byte(raw), &settings); err != nil {
		return nil, fmt.Errorf("unmarshal smtp settings: %w", err)
	}
	return &settings, nil
}

// Set replaces the SMTP settings record.
func (s *SMTPStore) Set(ctx context.Context, settings *models.SMTPSettings) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshal smtp settings: %w", err)
	}
	if err := s.db.Set(ctx, smtpSettingsKey, data, 0); err != nil {
		return normalizeErr(err)
	}
	return nil
}
