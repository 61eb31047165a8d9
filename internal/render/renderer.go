// Package render is the artifact-renderer collaborator boundary: structured
// application data in, PDF bytes out.
package render

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"loan-intake/internal/common/logger"
	"loan-intake/internal/models"
)

var ErrRenderFailed = errors.New("ARTIFACT_RENDER_FAILED")

// Renderer produces a PDF document for a stored application.
type Renderer interface {
	RenderApplicationPDF(ctx context.Context, app *models.Application) ([]byte, error)
}

// HTTPRenderer posts the application (signature image included when present)
// to an external render service and returns the PDF bytes.
type HTTPRenderer struct {
	baseURL string
	client  *http.Client
	logger  logger.Logger
}

func NewHTTPRenderer(baseURL string, timeout time.Duration, log logger.Logger) *HTTPRenderer {
	return &HTTPRenderer{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		logger:  log.WithFields(map[string]interface{}{"component": "pdf-renderer"}),
	}
}

func (r *HTTPRenderer) RenderApplicationPDF(ctx context.Context, app *models.Application) ([]byte, error) {
	payload, err := json.Marshal(app)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal application: %v", ErrRenderFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/render/application", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/pdf")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: render service status %d", ErrRenderFailed, resp.StatusCode)
	}

	pdf, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrRenderFailed, err)
	}
	if len(pdf) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrRenderFailed)
	}

	r.logger.Debug("application rendered", map[string]interface{}{
		"applicationId": app.ID,
		"bytes":         len(pdf),
	})
	return pdf, nil
}
