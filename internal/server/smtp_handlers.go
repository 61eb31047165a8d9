package server

import (
	"encoding/json"
	"net/http"
	"time"

	apperrors "loan-intake/internal/common/errors"
	"loan-intake/internal/models"
)

func (s *Server) handleGetSMTP(w http.ResponseWriter, r *http.Request) {
	settings, err := s.smtp.Get(r.Context())
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"success":    true,
				"configured": false,
			})
			return
		}
		s.errors.WriteError(w, err)
		return
	}

	// Password stays server-side.
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"configured": true,
		"settings": map[string]interface{}{
			"host":      settings.Host,
			"port":      settings.Port,
			"username":  settings.Username,
			"useTls":    settings.UseTLS,
			"fromEmail": settings.FromEmail,
			"updatedAt": settings.UpdatedAt,
		},
	})
}

func (s *Server) handlePutSMTP(w http.ResponseWriter, r *http.Request) {
	var settings models.SMTPSettings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil || settings.Host == "" || settings.Port == 0 {
		s.errors.WriteError(w, apperrors.NewValidationFailedError("smtp host and port are required"))
		return
	}
	settings.UpdatedAt = time.Now().UTC()

	if err := s.smtp.Set(r.Context(), &settings); err != nil {
		s.errors.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}
