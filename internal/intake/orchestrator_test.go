package intake

import (
	"context"
	"errors"
	"testing"
	"time"

	"loan-intake/internal/common/config"
	"loan-intake/internal/common/database"
	"loan-intake/internal/common/logger"
	"loan-intake/internal/models"
	"loan-intake/internal/store"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRenderer struct {
	pdf []byte
	err error
}

func (f *fakeRenderer) RenderApplicationPDF(ctx context.Context, app *models.Application) ([]byte, error) {
	return f.pdf, f.err
}

type fakeDispatcher struct {
	sent []*models.EmailMessage
	err  error
}

func (f *fakeDispatcher) Send(ctx context.Context, msg *models.EmailMessage) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

type orchestratorFixture struct {
	orchestrator *Orchestrator
	applications *store.ApplicationStore
	recipients   *store.RecipientStore
	renderer     *fakeRenderer
	dispatcher   *fakeDispatcher
}

func newOrchestratorFixture(t *testing.T) *orchestratorFixture {
	t.Helper()
	mr := miniredis.RunT(t)
	db := database.NewRedisFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { db.Close() })

	applications := store.NewApplicationStore(db)
	recipients := store.NewRecipientStore(db)
	renderer := &fakeRenderer{pdf: []byte("%PDF-1.4 fake")}
	dispatcher := &fakeDispatcher{}

	cfg := config.NotificationConfig{
		DefaultRecipient: "operator@example.com",
		SubjectPrefix:    "New Loan Application",
		Timeout:          1000,
	}

	orchestrator := NewOrchestrator(
		NewIDGenerator(applications.Exists),
		applications,
		recipients,
		renderer,
		dispatcher,
		cfg,
		logger.NewTestLogger(t),
	)

	return &orchestratorFixture{
		orchestrator: orchestrator,
		applications: applications,
		recipients:   recipients,
		renderer:     renderer,
		dispatcher:   dispatcher,
	}
}

func submission() *models.SubmissionRequest {
	return &models.SubmissionRequest{
		PersonalInfo: models.PersonalInfo{
			FirstName: "Jane",
			LastName:  "Doe",
			Email:     "jane@example.com",
			Phone:     "555-222-3333",
		},
		BusinessInfo: models.BusinessInfo{BusinessName: "Acme Logistics LLC"},
		LoanInfo: models.LoanInfo{
			LoanType:        models.LoanTypeBusiness,
			AmountRequested: 150000,
		},
	}
}

func TestOrchestrator_SubmitSuccess(t *testing.T) {
	f := newOrchestratorFixture(t)

	result, err := f.orchestrator.Submit(context.Background(), submission())
	require.NoError(t, err)
	assert.Regexp(t, `^\d{6}$`, result.ApplicationID)
	assert.False(t, result.Partial)

	app, err := f.applications.Get(context.Background(), result.ApplicationID)
	require.NoError(t, err)
	assert.Equal(t, models.LoanTypeBusiness, app.LoanInfo.LoanType)
	assert.Equal(t, models.StatusSubmitted, app.Status)
	assert.False(t, app.CreatedAt.IsZero())

	require.Len(t, f.dispatcher.sent, 1)
	msg := f.dispatcher.sent[0]
	assert.Equal(t, []string{"operator@example.com"}, msg.To)
	assert.Contains(t, msg.Subject, result.ApplicationID)
	assert.Contains(t, msg.Body, "Acme Logistics LLC")
	assert.Contains(t, msg.Body, "$150,000")
	require.Len(t, msg.Attachments, 1)
	assert.Equal(t, "application/pdf", msg.Attachments[0].ContentType)
	assert.Equal(t, f.renderer.pdf, msg.Attachments[0].Content)
}

// Persistence is the durability boundary: a render failure must not unmake
// the stored record.
func TestOrchestrator_RenderFailureAfterPersistence(t *testing.T) {
	f := newOrchestratorFixture(t)
	f.renderer.err = errors.New("render service down")

	result, err := f.orchestrator.Submit(context.Background(), submission())
	require.NoError(t, err)
	assert.True(t, result.Partial)
	assert.Equal(t, StageRender, result.FailedStage)
	assert.Empty(t, f.dispatcher.sent)

	app, err := f.applications.Get(context.Background(), result.ApplicationID)
	require.NoError(t, err)
	assert.Equal(t, result.ApplicationID, app.ID)
}

func TestOrchestrator_NotifyFailureAfterPersistence(t *testing.T) {
	f := newOrchestratorFixture(t)
	f.dispatcher.err = errors.New("smtp unreachable")

	result, err := f.orchestrator.Submit(context.Background(), submission())
	require.NoError(t, err)
	assert.True(t, result.Partial)
	assert.Equal(t, StageNotify, result.FailedStage)

	_, err = f.applications.Get(context.Background(), result.ApplicationID)
	assert.NoError(t, err)
}

func TestOrchestrator_ActiveRecipientsResolved(t *testing.T) {
	f := newOrchestratorFixture(t)
	now := time.Now().UTC()

	require.NoError(t, f.recipients.Create(context.Background(), &models.EmailRecipient{
		ID: "r1", Name: "Ops", Email: "ops@example.com", Active: true, CreatedAt: now, UpdatedAt: now,
	}))
	require.NoError(t, f.recipients.Create(context.Background(), &models.EmailRecipient{
		ID: "r2", Name: "Former", Email: "former@example.com", Active: false, CreatedAt: now, UpdatedAt: now,
	}))

	_, err := f.orchestrator.Submit(context.Background(), submission())
	require.NoError(t, err)

	require.Len(t, f.dispatcher.sent, 1)
	assert.Equal(t, []string{"ops@example.com"}, f.dispatcher.sent[0].To)
}

func TestOrchestrator_UniqueIDsAcrossSubmissions(t *testing.T) {
	f := newOrchestratorFixture(t)

	seen := map[string]bool{}
	for i := 0; i < 25; i++ {
		result, err := f.orchestrator.Submit(context.Background(), submission())
		require.NoError(t, err)
		assert.False(t, seen[result.ApplicationID], "duplicate id %s", result.ApplicationID)
		seen[result.ApplicationID] = true
	}
}
