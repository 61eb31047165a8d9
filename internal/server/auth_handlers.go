package server

import (
	"encoding/json"
	"net/http"

	"loan-intake/internal/auth"
	apperrors "loan-intake/internal/common/errors"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errors.WriteError(w, apperrors.NewValidationFailedError("malformed login payload"))
		return
	}

	result, err := s.authSvc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.errors.WriteError(w, err)
		return
	}

	auth.SetAuthCookie(w, result.Token, result.TTL)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"admin":   publicAccount(result.Account),
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	auth.ClearAuthCookie(w)
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	account := auth.AccountFromContext(r.Context())

	result, err := s.authSvc.Refresh(r.Context(), account)
	if err != nil {
		s.errors.WriteError(w, err)
		return
	}

	auth.SetAuthCookie(w, result.Token, result.TTL)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"admin":   publicAccount(result.Account),
	})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	account := auth.AccountFromContext(r.Context())
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"admin":   publicAccount(account),
	})
}
