package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"loan-intake/internal/common/database"
	apperrors "loan-intake/internal/common/errors"
	"loan-intake/internal/models"
)

// ApplicationStore persists submitted applications keyed by their 6-digit
// identifier, with an "all applications" membership set.
type ApplicationStore struct {
	db *database.RedisClient
}

func NewApplicationStore(db *database.RedisClient) *ApplicationStore {
	return &ApplicationStore{db: db}
}

func applicationKey(id string) string {
	return applicationKeyPrefix + id
}

// Exists reports whether an application identifier is already taken.
func (s *ApplicationStore) Exists(ctx context.Context, id string) (bool, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	ok, err := s.db.SIsMember(ctx, applicationSetKey, id)
	if err != nil {
		return false, normalizeErr(err)
	}
	return ok, nil
}

// CreateNX persists a new application only when its key is free, then adds it
// to the membership set. The conditional set is the last line of defense
// against two concurrent submissions that both passed the uniqueness check
// with the same candidate. Returns false without error when the key was taken.
func (s *ApplicationStore) CreateNX(ctx context.Context, app *models.Application) (bool, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	data, err := json.Marshal(app)
	if err != nil {
		return false, fmt.Errorf("marshal application: %w", err)
	}

	ok, err := s.db.SetNX(ctx, applicationKey(app.ID), data, 0)
	if err != nil {
		return false, normalizeErr(err)
	}
	if !ok {
		return false, nil
	}

	if err := s.db.SAdd(ctx, applicationSetKey, app.ID); err != nil {
		return false, normalizeErr(err)
	}
	return true, nil
}

// Get loads one application by identifier.
func (s *ApplicationStore) Get(ctx context.Context, id string) (*models.Application, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	raw, err := s.db.Get(ctx, applicationKey(id))
	if err != nil {
		return nil, normalizeErr(err)
	}

	var app models.Application
	if err := json.Unmarshal([]byte(raw), &app); err != nil {
		return nil, fmt.Errorf("unmarshal application: %w", err)
	}
	return &app, nil
}

// List returns all stored applications.
func (s *ApplicationStore) List(ctx context.Context) ([]*models.Application, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	ids, err := s.db.SMembers(ctx, applicationSetKey)
	if err != nil {
		return nil, normalizeErr(err)
	}

	apps := make([]*models.Application, 0, len(ids))
	for _, id := range ids {
		app, err := s.Get(ctx, id)
		if err != nil {
			if apperrors.Is(err, apperrors.ErrNotFound) {
				continue
			}
			return nil, err
		}
		apps = append(apps, app)
	}
	return apps, nil
}

// UpdateStatus transitions an application's review status. Read-modify-write;
// the later of two concurrent admin edits wins.
func (s *ApplicationStore) UpdateStatus(ctx context.Context, id, status string) (*models.Application, error) {
	app, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	app.Status = status
	app.UpdatedAt = time.Now().UTC()

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	data, err := json.Marshal(app)
	if err != nil {
		return nil, fmt.Errorf("marshal application: %w", err)
	}
	if err := s.db.Set(ctx, applicationKey(id), data, 0); err != nil {
		return nil, normalizeErr(err)
	}
	return app, nil
}
