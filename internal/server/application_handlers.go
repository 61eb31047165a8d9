package server

import (
	"encoding/json"
	"net/http"

	apperrors "loan-intake/internal/common/errors"
	"loan-intake/internal/common/metrics"
	"loan-intake/internal/intake"
	"loan-intake/internal/models"

	"github.com/go-chi/chi/v5"
)

// handleSubmit is the public intake endpoint. Validation happens before any
// identifier is consumed; a partial pipeline result still returns the
// identifier so the applicant always knows whether persistence succeeded.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var raw map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		metrics.SubmissionsTotal.WithLabelValues("validation_failed").Inc()
		s.errors.WriteError(w, apperrors.NewValidationFailedError("malformed submission payload"))
		return
	}

	if err := intake.ValidateSubmission(raw); err != nil {
		metrics.SubmissionsTotal.WithLabelValues("validation_failed").Inc()
		s.errors.WriteError(w, err)
		return
	}

	// Re-decode into the typed request; schema validation already passed.
	data, _ := json.Marshal(raw)
	var req models.SubmissionRequest
	if err := json.Unmarshal(data, &req); err != nil {
		s.errors.WriteError(w, apperrors.NewValidationFailedError("malformed submission payload"))
		return
	}

	result, err := s.orchestrator.Submit(r.Context(), &req)
	if err != nil {
		s.errors.WriteError(w, err)
		return
	}

	body := map[string]interface{}{
		"success":       true,
		"applicationId": result.ApplicationID,
	}
	if result.Partial {
		// Downstream failures are an operational concern; the applicant only
		// needs the identifier proving their application was recorded.
		body["warning"] = "application received; confirmation processing is delayed"
	}
	writeJSON(w, http.StatusCreated, body)
}

func (s *Server) handleListApplications(w http.ResponseWriter, r *http.Request) {
	apps, err := s.applications.List(r.Context())
	if err != nil {
		s.errors.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":      true,
		"applications": apps,
	})
}

func (s *Server) handleGetApplication(w http.ResponseWriter, r *http.Request) {
	app, err := s.applications.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.errors.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"application": app,
	})
}

type statusUpdateRequest struct {
	Status string `json:"status"`
}

var validStatuses = map[string]bool{
	models.StatusDraft:     true,
	models.StatusSubmitted: true,
	models.StatusInReview:  true,
	models.StatusApproved:  true,
	models.StatusDenied:    true,
}

func (s *Server) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req statusUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || !validStatuses[req.Status] {
		s.errors.WriteError(w, apperrors.NewValidationFailedError("status must be one of draft, submitted, in-review, approved, denied"))
		return
	}

	app, err := s.applications.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		s.errors.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"application": app,
	})
}
