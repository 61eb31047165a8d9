// Package server wires the HTTP surface: public intake/chat endpoints and the
// permission-gated admin panel API.
package server

import (
	"net/http"

	"loan-intake/internal/auth"
	"loan-intake/internal/common/database"
	apperrors "loan-intake/internal/common/errors"
	"loan-intake/internal/common/logger"
	"loan-intake/internal/intake"
	"loan-intake/internal/leads"
	"loan-intake/internal/models"
	"loan-intake/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server carries the handler dependencies.
type Server struct {
	logger       logger.Logger
	errors       *apperrors.HTTPHandler
	authSvc      *auth.Service
	resolver     *auth.PermissionResolver
	orchestrator *intake.Orchestrator
	extractor    *leads.Extractor
	db           *database.RedisClient

	admins       *store.AdminStore
	applications *store.ApplicationStore
	recipients   *store.RecipientStore
	leads        *store.LeadStore
	smtp         *store.SMTPStore
}

func New(
	log logger.Logger,
	authSvc *auth.Service,
	resolver *auth.PermissionResolver,
	orchestrator *intake.Orchestrator,
	extractor *leads.Extractor,
	db *database.RedisClient,
	admins *store.AdminStore,
	applications *store.ApplicationStore,
	recipients *store.RecipientStore,
	leadStore *store.LeadStore,
	smtp *store.SMTPStore,
) *Server {
	return &Server{
		logger:       log,
		errors:       apperrors.NewHTTPHandler(log),
		authSvc:      authSvc,
		resolver:     resolver,
		orchestrator: orchestrator,
		extractor:    extractor,
		db:           db,
		admins:       admins,
		applications: applications,
		recipients:   recipients,
		leads:        leadStore,
		smtp:         smtp,
	}
}

// Router assembles all routes. Authorization gates sit per-subtree; the four
// capability strings are the entire permission vocabulary.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", s.handleLogin)
		r.Post("/auth/logout", s.handleLogout)
		r.With(s.resolver.RequirePermission("")).Post("/auth/refresh", s.handleRefresh)
		r.With(s.resolver.RequirePermission("")).Get("/auth/me", s.handleMe)

		// Public applicant surface.
		r.Post("/applications", s.handleSubmit)
		r.Post("/chat/{sessionID}/transcript", s.handleTranscript)

		r.Group(func(r chi.Router) {
			r.Use(s.resolver.RequirePermission(models.PermViewApplications))
			r.Get("/applications", s.handleListApplications)
			r.Get("/applications/{id}", s.handleGetApplication)
			r.Patch("/applications/{id}/status", s.handleUpdateStatus)
			r.Get("/leads", s.handleListLeads)
		})

		r.Group(func(r chi.Router) {
			r.Use(s.resolver.RequirePermission(models.PermManageAdmins))
			r.Get("/admins", s.handleListAdmins)
			r.Post("/admins", s.handleCreateAdmin)
			r.Patch("/admins/{email}/permissions", s.handleUpdatePermissions)
			r.Delete("/admins/{email}", s.handleDeleteAdmin)
		})

		r.Group(func(r chi.Router) {
			r.Use(s.resolver.RequirePermission(models.PermManageRecipients))
			r.Get("/recipients", s.handleListRecipients)
			r.Post("/recipients", s.handleCreateRecipient)
			r.Patch("/recipients/{id}", s.handleUpdateRecipient)
			r.Delete("/recipients/{id}", s.handleDeleteRecipient)
		})

		r.Group(func(r chi.Router) {
			r.Use(s.resolver.RequirePermission(models.PermManageSMTP))
			r.Get("/smtp", s.handleGetSMTP)
			r.Put("/smtp", s.handlePutSMTP)
		})
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{"status": "degraded"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"status": "ok"})
}
