package server

import (
	"encoding/json"
	"net/http"
	"time"

	apperrors "loan-intake/internal/common/errors"
	"loan-intake/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func (s *Server) handleListRecipients(w http.ResponseWriter, r *http.Request) {
	recipients, err := s.recipients.List(r.Context())
	if err != nil {
		s.errors.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"recipients": recipients,
	})
}

type recipientRequest struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Active *bool  `json:"active,omitempty"`
}

func (s *Server) handleCreateRecipient(w http.ResponseWriter, r *http.Request) {
	var req recipientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		s.errors.WriteError(w, apperrors.NewValidationFailedError("recipient email is required"))
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	now := time.Now().UTC()
	recipient := &models.EmailRecipient{
		ID:        uuid.New().String(),
		Name:      req.Name,
		Email:     req.Email,
		Active:    active,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.recipients.Create(r.Context(), recipient); err != nil {
		s.errors.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success":   true,
		"recipient": recipient,
	})
}

func (s *Server) handleUpdateRecipient(w http.ResponseWriter, r *http.Request) {
	var req recipientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errors.WriteError(w, apperrors.NewValidationFailedError("malformed recipient payload"))
		return
	}

	recipient, err := s.recipients.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.errors.WriteError(w, err)
		return
	}

	if req.Name != "" {
		recipient.Name = req.Name
	}
	if req.Email != "" {
		recipient.Email = req.Email
	}
	if req.Active != nil {
		recipient.Active = *req.Active
	}
	recipient.UpdatedAt = time.Now().UTC()

	if err := s.recipients.Update(r.Context(), recipient); err != nil {
		s.errors.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"recipient": recipient,
	})
}

func (s *Server) handleDeleteRecipient(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.recipients.Get(r.Context(), id); err != nil {
		s.errors.WriteError(w, err)
		return
	}
	if err := s.recipients.Delete(r.Context(), id); err != nil {
		s.errors.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}
