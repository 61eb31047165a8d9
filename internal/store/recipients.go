package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"loan-intake/internal/common/database"
	apperrors "loan-intake/internal/common/errors"
	"loan-intake/internal/models"
)

// RecipientStore persists notification recipients keyed by id. Active-email
// uniqueness is enforced here at write time, not by the store itself.
type RecipientStore struct {
	db *database.RedisClient
}

func NewRecipientStore(db *database.RedisClient) *RecipientStore {
	return &RecipientStore{db: db}
}

func recipientKey(id string) string {
	return recipientKeyPrefix + id
}

// Create stores a new recipient after checking that no active recipient
// already uses the same email.
func (s *RecipientStore) Create(ctx context.Context, recipient *models.EmailRecipient) error {
	if recipient.Active {
		if err := s.checkActiveEmailFree(ctx, recipient.Email, recipient.ID); err != nil {
			return err
		}
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	data, err := json.Marshal(recipient)
	if err != nil {
		return fmt.Errorf("marshal recipient: %w", err)
	}
	if err := s.db.Set(ctx, recipientKey(recipient.ID), data, 0); err != nil {
		return normalizeErr(err)
	}
	if err := s.db.SAdd(ctx, recipientSetKey, recipient.ID); err != nil {
		return normalizeErr(err)
	}
	return nil
}

// Update writes the full record back, re-checking email uniqueness when the
// recipient is active.
func (s *RecipientStore) Update(ctx context.Context, recipient *models.EmailRecipient) error {
	if recipient.Active {
		if err := s.checkActiveEmailFree(ctx, recipient.Email, recipient.ID); err != nil {
			return err
		}
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	data, err := json.Marshal(recipient)
	if err != nil {
		return fmt.Errorf("marshal recipient: %w", err)
	}
	if err := s.db.Set(ctx, recipientKey(recipient.ID), data, 0); err != nil {
		return normalizeErr(err)
	}
	return nil
}

// Get loads one recipient by id.
func (s *RecipientStore) Get(ctx context.Context, id string) (*models.EmailRecipient, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	raw, err := s.db.Get(ctx, recipientKey(id))
	if err != nil {
		return nil, normalizeErr(err)
	}

	var recipient models.EmailRecipient
	if err := json.Unmarshal([]byte(raw), &recipient); err != nil {
		return nil, fmt.Errorf("unmarshal recipient: %w", err)
	}
	return &recipient, nil
}

// List returns all recipients, active or not.
func (s *RecipientStore) List(ctx context.Context) ([]*models.EmailRecipient, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	ids, err := s.db.SMembers(ctx, recipientSetKey)
	if err != nil {
		return nil, normalizeErr(err)
	}

	recipients := make([]*models.EmailRecipient, 0, len(ids))
	for _, id := range ids {
		recipient, err := s.Get(ctx, id)
		if err != nil {
			if apperrors.Is(err, apperrors.ErrNotFound) {
				continue
			}
			return nil, err
		}
		recipients = append(recipients, recipient)
	}
	return recipients, nil
}

// ListActive returns only recipients currently flagged active.
func (s *RecipientStore) ListActive(ctx context.Context) ([]*models.EmailRecipient, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	active := make([]*models.EmailRecipient, 0, len(all))
	for _, r := range all {
		if r.Active {
			active = append(active, r)
		}
	}
	return active, nil
}

// Delete removes a recipient and its membership entry.
func (s *RecipientStore) Delete(ctx context.Context, id string) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if err := s.db.Del(ctx, recipientKey(id)); err != nil {
		return normalizeErr(err)
	}
	if err := s.db.SRem(ctx, recipientSetKey, id); err != nil {
		return normalizeErr(err)
	}
	return nil
}

func (s *RecipientStore) checkActiveEmailFree(ctx context.Context, email, excludeID string) error {
	active, err := s.ListActive(ctx)
	if err != nil {
		return err
	}
	for _, r := range active {
		if r.ID != excludeID && strings.EqualFold(r.Email, email) {
			return apperrors.NewConflictError(fmt.Sprintf("active recipient email already in use: %s", email))
		}
	}
	return nil
}
