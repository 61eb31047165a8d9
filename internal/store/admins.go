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

// AdminStore persists admin accounts keyed by email.
type AdminStore struct {
	db *database.RedisClient
}

func NewAdminStore(db *database.RedisClient) *AdminStore {
	return &AdminStore{db: db}
}

func adminKey(email string) string {
	return adminKeyPrefix + strings.ToLower(email)
}

// Create stores a new account. Fails with a conflict error when the email is
// already taken.
func (s *AdminStore) Create(ctx context.Context, account *models.AdminAccount) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	data, err := json.Marshal(account)
	if err != nil {
		return fmt.Errorf("marshal admin account: %w", err)
	}

	ok, err := s.db.SetNX(ctx, adminKey(account.Email), data, 0)
	if err != nil {
		return normalizeErr(err)
	}
	if !ok {
		return apperrors.NewConflictError(fmt.Sprintf("admin email already registered: %s", account.Email))
	}

	if err := s.db.SAdd(ctx, adminSetKey, strings.ToLower(account.Email)); err != nil {
		return normalizeErr(err)
	}
	return nil
}

// GetByEmail loads the live account record. Returns ErrNotFound when the
// account does not exist (including accounts deleted after token issuance).
func (s *AdminStore) GetByEmail(ctx context.Context, email string) (*models.AdminAccount, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	raw, err := s.db.Get(ctx, adminKey(email))
	if err != nil {
		return nil, normalizeErr(err)
	}

	var account models.AdminAccount
	if err := json.Unmarshal([]byte(raw), &account); err != nil {
		return nil, fmt.Errorf("unmarshal admin account: %w", err)
	}
	return &account, nil
}

// Update writes the full record back. Whole-record read-modify-write; the
// later of two concurrent writers wins.
func (s *AdminStore) Update(ctx context.Context, account *models.AdminAccount) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	data, err := json.Marshal(account)
	if err != nil {
		return fmt.Errorf("marshal admin account: %w", err)
	}
	if err := s.db.Set(ctx, adminKey(account.Email), data, 0); err != nil {
		return normalizeErr(err)
	}
	return nil
}

// List returns all admin accounts.
func (s *AdminStore) List(ctx context.Context) ([]*models.AdminAccount, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	emails, err := s.db.SMembers(ctx, adminSetKey)
	if err != nil {
		return nil, normalizeErr(err)
	}

	accounts := make([]*models.AdminAccount, 0, len(emails))
	for _, email := range emails {
		account, err := s.GetByEmail(ctx, email)
		if err != nil {
			if apperrors.Is(err, apperrors.ErrNotFound) {
				continue
			}
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return accounts, nil
}

// Delete removes an account and its membership entry.
func (s *AdminStore) Delete(ctx context.Context, email string) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if err := s.db.Del(ctx, adminKey(email)); err != nil {
		return normalizeErr(err)
	}
	if err := s.db.SRem(ctx, adminSetKey, strings.ToLower(email)); err != nil {
		return normalizeErr(err)
	}
	return nil
}
