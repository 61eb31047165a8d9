package store

import (
	"context"
	"encoding/json"
	"fmt"

	"loan-intake/internal/common/database"
	apperrors "loan-intake/internal/common/errors"
	"loan-intake/internal/models"
)

// LeadStore persists extracted lead records keyed by chat session identifier.
// The namespace is separate from application identifiers.
type LeadStore struct {
	db *database.RedisClient
}

func NewLeadStore(db *database.RedisClient) *LeadStore {
	return &LeadStore{db: db}
}

func leadKey(sessionID string) string {
	return leadKeyPrefix + sessionID
}

// Save writes the lead record for a session, replacing any earlier record for
// the same session.
func (s *LeadStore) Save(ctx context.Context, lead *models.LeadRecord) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	data, err := json.Marshal(lead)
	if err != nil {
		return fmt.Errorf("marshal lead record: %w", err)
	}
	if err := s.db.Set(ctx, leadKey(lead.SessionID), data, 0); err != nil {
		return normalizeErr(err)
	}
	if err := s.db.SAdd(ctx, leadSetKey, lead.SessionID); err != nil {
		return normalizeErr(err)
	}
	return nil
}

// Get loads the lead record for a session.
func (s *LeadStore) Get(ctx context.Context, sessionID string) (*models.LeadRecord, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	raw, err := s.db.Get(ctx, leadKey(sessionID))
	if err != nil {
		return nil, normalizeErr(err)
	}

	var lead models.LeadRecord
	if err := json.Unmarshal([]byte(raw), &lead); err != nil {
		return nil, fmt.Errorf("unmarshal lead record: %w", err)
	}
	return &lead, nil
}

// List returns all stored lead records.
func (s *LeadStore) List(ctx context.Context) ([]*models.LeadRecord, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	ids, err := s.db.SMembers(ctx, leadSetKey)
	if err != nil {
		return nil, normalizeErr(err)
	}

	leads := make([]*models.LeadRecord, 0, len(ids))
	for _, id := range ids {
		lead, err := s.Get(ctx, id)
		if err != nil {
			if apperrors.Is(err, apperrors.ErrNotFound) {
				continue
			}
			return nil, err
		}
		leads = append(leads, lead)
	}
	return leads, nil
}
