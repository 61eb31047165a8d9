package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"loan-intake/internal/auth"
	"loan-intake/internal/common/config"
	"loan-intake/internal/common/database"
	"loan-intake/internal/common/logger"
	"loan-intake/internal/intake"
	"loan-intake/internal/leads"
	"loan-intake/internal/models"
	"loan-intake/internal/store"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testAdminEmail    = "root@example.com"
	testAdminPassword = "swordfish-42"
)

type stubRenderer struct{}

func (stubRenderer) RenderApplicationPDF(ctx context.Context, app *models.Application) ([]byte, error) {
	return []byte("%PDF-1.4 stub"), nil
}

type stubDispatcher struct {
	sent []*models.EmailMessage
}

func (d *stubDispatcher) Send(ctx context.Context, msg *models.EmailMessage) error {
	d.sent = append(d.sent, msg)
	return nil
}

type testEnv struct {
	srv        *httptest.Server
	admins     *store.AdminStore
	dispatcher *stubDispatcher
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	mr := miniredis.RunT(t)
	db := database.NewRedisFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { db.Close() })

	log := logger.NewTestLogger(t)

	admins := store.NewAdminStore(db)
	applications := store.NewApplicationStore(db)
	recipients := store.NewRecipientStore(db)
	leadStore := store.NewLeadStore(db)
	smtp := store.NewSMTPStore(db)

	authCfg := config.AuthConfig{
		JWTSecret:          "test-secret",
		LoginTTLHours:      24,
		RefreshTTLHours:    1,
		SuperAdminEmail:    testAdminEmail,
		SuperAdminPassword: testAdminPassword,
	}
	tokens := auth.NewTokenService(authCfg.JWTSecret)
	authSvc := auth.NewService(authCfg, tokens, admins, log)
	require.NoError(t, authSvc.Bootstrap(context.Background()))
	resolver := auth.NewPermissionResolver(tokens, admins, log)

	dispatcher := &stubDispatcher{}
	orchestrator := intake.NewOrchestrator(
		intake.NewIDGenerator(applications.Exists),
		applications,
		recipients,
		stubRenderer{},
		dispatcher,
		config.NotificationConfig{DefaultRecipient: "operator@example.com", SubjectPrefix: "New Loan Application"},
		log,
	)
	extractor := leads.NewExtractor(leadStore, log)

	s := New(log, authSvc, resolver, orchestrator, extractor, db, admins, applications, recipients, leadStore, smtp)
	srv := httptest.NewServer(s.Router())
	t.Cleanup(srv.Close)

	return &testEnv{srv: srv, admins: admins, dispatcher: dispatcher}
}

func (e *testEnv) request(t *testing.T, method, path string, body interface{}, cookie *http.Cookie) (*http.Response, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, e.srv.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var decoded map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func (e *testEnv) login(t *testing.T, email, password string) *http.Cookie {
	t.Helper()
	resp, body := e.request(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, "login failed: %v", body)

	for _, c := range resp.Cookies() {
		if c.Name == auth.AuthCookieName {
			return c
		}
	}
	t.Fatal("login response carried no auth cookie")
	return nil
}

func businessSubmission() map[string]interface{} {
	return map[string]interface{}{
		"personalInfo": map[string]interface{}{
			"firstName": "Jane",
			"lastName":  "Doe",
			"email":     "jane@example.com",
			"phone":     "555-222-3333",
		},
		"businessInfo": map[string]interface{}{
			"businessName": "Acme Logistics LLC",
		},
		"loanInfo": map[string]interface{}{
			"loanType":        "Business",
			"amountRequested": 150000.0,
		},
	}
}

func TestSubmitAndReviewFlow(t *testing.T) {
	env := newTestEnv(t)

	// Public submission needs no credentials.
	resp, body := env.request(t, http.MethodPost, "/api/applications", businessSubmission(), nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, true, body["success"])
	id, _ := body["applicationId"].(string)
	assert.Regexp(t, `^\d{6}$`, id)
	require.Len(t, env.dispatcher.sent, 1)

	// Review requires a logged-in admin.
	resp, _ = env.request(t, http.MethodGet, "/api/applications/"+id, nil, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	cookie := env.login(t, testAdminEmail, testAdminPassword)
	resp, body = env.request(t, http.MethodGet, "/api/applications/"+id, nil, cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	app := body["application"].(map[string]interface{})
	assert.Equal(t, id, app["id"])
	assert.Equal(t, "Business", app["loanInfo"].(map[string]interface{})["loanType"])
	assert.Equal(t, "submitted", app["status"])

	// Status transition.
	resp, body = env.request(t, http.MethodPatch, "/api/applications/"+id+"/status",
		map[string]string{"status": "approved"}, cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "approved", body["application"].(map[string]interface{})["status"])
}

func TestSubmitRejectsInvalidPayload(t *testing.T) {
	env := newTestEnv(t)

	payload := businessSubmission()
	delete(payload["personalInfo"].(map[string]interface{}), "email")

	resp, body := env.request(t, http.MethodPost, "/api/applications", payload, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, false, body["success"])
}

func TestLoginCookieAttributes(t *testing.T) {
	env := newTestEnv(t)

	cookie := env.login(t, testAdminEmail, testAdminPassword)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, "/", cookie.Path)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	assert.Equal(t, int((24 * time.Hour).Seconds()), cookie.MaxAge)

	resp, _ := env.request(t, http.MethodPost, "/api/auth/logout", nil, cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	for _, c := range resp.Cookies() {
		if c.Name == auth.AuthCookieName {
			assert.Less(t, c.MaxAge, 0)
			return
		}
	}
	t.Fatal("logout did not reset the auth cookie")
}

func TestLoginFailureIsUniform(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := env.request(t, http.MethodPost, "/api/auth/login",
		map[string]string{"email": testAdminEmail, "password": "wrong"}, nil)
	wrongPassword := resp.StatusCode

	resp, _ = env.request(t, http.MethodPost, "/api/auth/login",
		map[string]string{"email": "nobody@example.com", "password": "wrong"}, nil)
	assert.Equal(t, wrongPassword, resp.StatusCode)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestPermissionGatesPerCapability(t *testing.T) {
	env := newTestEnv(t)

	hash, err := auth.HashPassword("limited-pass")
	require.NoError(t, err)
	now := time.Now().UTC()
	require.NoError(t, env.admins.Create(context.Background(), &models.AdminAccount{
		ID:           "sub-1",
		Email:        "viewer@example.com",
		PasswordHash: hash,
		Role:         models.RoleSubAdmin,
		Permissions:  models.Permissions{ViewApplications: true},
		CreatedAt:    now,
		UpdatedAt:    now,
	}))

	cookie := env.login(t, "viewer@example.com", "limited-pass")

	resp, _ := env.request(t, http.MethodGet, "/api/applications", nil, cookie)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Everything outside the granted capability is a uniform 403.
	for _, path := range []string{"/api/admins", "/api/recipients", "/api/smtp"} {
		resp, body := env.request(t, http.MethodGet, path, nil, cookie)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode, path)
		assert.Equal(t, false, body["success"])
	}
}

func TestTranscriptProducesLead(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.request(t, http.MethodPost, "/api/chat/sess-1/transcript", map[string]interface{}{
		"messages": []map[string]string{
			{"role": "user", "content": "Contact me at jane@co.com or 555-222-3333, I want a loan"},
		},
	}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["leadFound"])

	cookie := env.login(t, testAdminEmail, testAdminPassword)
	resp, body = env.request(t, http.MethodGet, "/api/leads", nil, cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	leadsList := body["leads"].([]interface{})
	require.Len(t, leadsList, 1)
	lead := leadsList[0].(map[string]interface{})
	assert.Equal(t, "jane@co.com", lead["email"])
	assert.Equal(t, "high", lead["interestLevel"])
}

func TestHealthEndpoint(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.request(t, http.MethodGet, "/healthz", nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
}
