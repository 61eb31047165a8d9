package server

import (
	"encoding/json"
	"net/http"
	"time"

	"loan-intake/internal/auth"
	apperrors "loan-intake/internal/common/errors"
	"loan-intake/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// publicAccount strips the password hash before an account leaves the API.
func publicAccount(a *models.AdminAccount) map[string]interface{} {
	return map[string]interface{}{
		"id":          a.ID,
		"email":       a.Email,
		"role":        a.Role,
		"permissions": a.Permissions,
		"addedBy":     a.AddedBy,
		"createdAt":   a.CreatedAt,
		"updatedAt":   a.UpdatedAt,
	}
}

func (s *Server) handleListAdmins(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.admins.List(r.Context())
	if err != nil {
		s.errors.WriteError(w, err)
		return
	}

	public := make([]map[string]interface{}, 0, len(accounts))
	for _, a := range accounts {
		public = append(public, publicAccount(a))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"admins":  public,
	})
}

type createAdminRequest struct {
	Email       string             `json:"email"`
	Password    string             `json:"password"`
	Role        string             `json:"role"`
	Permissions models.Permissions `json:"permissions"`
}

func (s *Server) handleCreateAdmin(w http.ResponseWriter, r *http.Request) {
	var req createAdminRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Password == "" {
		s.errors.WriteError(w, apperrors.NewValidationFailedError("email and password are required"))
		return
	}
	if req.Role != models.RoleAdmin && req.Role != models.RoleSubAdmin {
		req.Role = models.RoleSubAdmin
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.errors.WriteError(w, err)
		return
	}

	creator := auth.AccountFromContext(r.Context())
	now := time.Now().UTC()
	account := &models.AdminAccount{
		ID:           uuid.New().String(),
		Email:        req.Email,
		PasswordHash: hash,
		Role:         req.Role,
		Permissions:  req.Permissions,
		AddedBy:      creator.ID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.admins.Create(r.Context(), account); err != nil {
		s.errors.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"admin":   publicAccount(account),
	})
}

type updatePermissionsRequest struct {
	Role        *string             `json:"role,omitempty"`
	Permissions *models.Permissions `json:"permissions,omitempty"`
}

func (s *Server) handleUpdatePermissions(w http.ResponseWriter, r *http.Request) {
	var req updatePermissionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errors.WriteError(w, apperrors.NewValidationFailedError("malformed permissions payload"))
		return
	}

	account, err := s.admins.GetByEmail(r.Context(), chi.URLParam(r, "email"))
	if err != nil {
		s.errors.WriteError(w, err)
		return
	}

	if req.Role != nil {
		if *req.Role != models.RoleAdmin && *req.Role != models.RoleSubAdmin {
			s.errors.WriteError(w, apperrors.NewValidationFailedError("role must be admin or sub-admin"))
			return
		}
		account.Role = *req.Role
	}
	if req.Permissions != nil {
		account.Permissions = *req.Permissions
	}
	account.UpdatedAt = time.Now().UTC()

	if err := s.admins.Update(r.Context(), account); err != nil {
		s.errors.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"admin":   publicAccount(account),
	})
}

func (s *Server) handleDeleteAdmin(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")

	caller := auth.AccountFromContext(r.Context())
	if caller.Email == email {
		s.errors.WriteError(w, apperrors.NewValidationFailedError("cannot delete your own account"))
		return
	}

	if _, err := s.admins.GetByEmail(r.Context(), email); err != nil {
		s.errors.WriteError(w, err)
		return
	}
	if err := s.admins.Delete(r.Context(), email); err != nil {
		s.errors.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}
