package server

import (
	"encoding/json"
	"net/http"

	apperrors "loan-intake/internal/common/errors"
	"loan-intake/internal/models"

	"github.com/go-chi/chi/v5"
)

type transcriptRequest struct {
	Messages []models.ChatMessage `json:"messages"`
}

// handleTranscript receives a persisted chat session's transcript and runs
// lead extraction over it. Absence of a lead is a normal outcome, not an
// error.
func (s *Server) handleTranscript(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var req transcriptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Messages) == 0 {
		s.errors.WriteError(w, apperrors.NewValidationFailedError("transcript messages are required"))
		return
	}

	lead, err := s.extractor.Process(r.Context(), sessionID, req.Messages)
	if err != nil {
		s.errors.WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"leadFound": lead != nil,
	})
}

func (s *Server) handleListLeads(w http.ResponseWriter, r *http.Request) {
	records, err := s.leads.List(r.Context())
	if err != nil {
		s.errors.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"leads":   records,
	})
}
