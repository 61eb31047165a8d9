package auth

import (
	"context"
	"time"

	"loan-intake/internal/common/config"
	apperrors "loan-intake/internal/common/errors"
	"loan-intake/internal/common/logger"
	"loan-intake/internal/models"
	"loan-intake/internal/store"

	"github.com/google/uuid"
)

// Service handles login, refresh, and the super-admin bootstrap.
type Service struct {
	cfg    config.AuthConfig
	tokens *TokenService
	admins *store.AdminStore
	logger logger.Logger
}

func NewService(cfg config.AuthConfig, tokens *TokenService, admins *store.AdminStore, log logger.Logger) *Service {
	return &Service{
		cfg:    cfg,
		tokens: tokens,
		admins: admins,
		logger: log.WithFields(map[string]interface{}{"component": "auth-service"}),
	}
}

// LoginResult carries the minted token and its max-age for the cookie.
type LoginResult struct {
	Token   string
	TTL     time.Duration
	Account *models.AdminAccount
}

// Login verifies credentials and mints a 24h session token. Wrong email and
// wrong password produce the same ErrUnauthorized.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	account, err := s.admins.GetByEmail(ctx, email)
	if err != nil {
		s.logger.Warn("login failed", map[string]interface{}{"email": email, "reason": "account lookup"})
		return nil, apperrors.ErrUnauthorized
	}

	if !CheckPassword(account.PasswordHash, password) {
		s.logger.Warn("login failed", map[string]interface{}{"email": email, "reason": "password mismatch"})
		return nil, apperrors.ErrUnauthorized
	}

	token, err := s.tokens.Issue(account, s.cfg.LoginTTL(), false)
	if err != nil {
		return nil, err
	}

	s.logger.Info("admin logged in", map[string]interface{}{"accountId": account.ID})
	return &LoginResult{Token: token, TTL: s.cfg.LoginTTL(), Account: account}, nil
}

// Refresh mints a short-lived token for an already-verified account,
// embedding a snapshot of the current permission flags for UI use.
func (s *Service) Refresh(ctx context.Context, account *models.AdminAccount) (*LoginResult, error) {
	token, err := s.tokens.Issue(account, s.cfg.RefreshTTL(), true)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, TTL: s.cfg.RefreshTTL(), Account: account}, nil
}

// Bootstrap ensures the configured super-admin account exists. An existing
// account is left untouched; in particular it is never downgraded.
func (s *Service) Bootstrap(ctx context.Context) error {
	if _, err := s.admins.GetByEmail(ctx, s.cfg.SuperAdminEmail); err == nil {
		return nil
	} else if !apperrors.Is(err, apperrors.ErrNotFound) {
		return err
	}

	hash, err := HashPassword(s.cfg.SuperAdminPassword)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	account := &models.AdminAccount{
		ID:           uuid.New().String(),
		Email:        s.cfg.SuperAdminEmail,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
		Permissions:  models.AllPermissions(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.admins.Create(ctx, account); err != nil {
		// Another instance may have bootstrapped concurrently.
		if stdErr, ok := err.(*apperrors.StandardError); ok && stdErr.Code == apperrors.ErrCodeConflict {
			return nil
		}
		return err
	}

	s.logger.Info("super admin bootstrapped", map[string]interface{}{"accountId": account.ID})
	return nil
}
