package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"loan-intake/internal/auth"
	"loan-intake/internal/common/config"
	"loan-intake/internal/common/database"
	"loan-intake/internal/common/logger"
	"loan-intake/internal/intake"
	"loan-intake/internal/leads"
	"loan-intake/internal/notify"
	"loan-intake/internal/render"
	"loan-intake/internal/server"
	"loan-intake/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	log := logger.NewStructured(cfg.Logging.Level, cfg.Logging.Format)
	log.Info("starting intake server", map[string]interface{}{
		"environment": cfg.App.Environment,
		"version":     cfg.App.Version,
	})

	// One store connection per process, shared across requests.
	db, err := database.NewRedis(cfg.Database.Redis)
	if err != nil {
		log.Error("failed to create redis client", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := db.Ping(ctx); err != nil {
		cancel()
		log.Error("store unreachable", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
	cancel()

	admins := store.NewAdminStore(db)
	applications := store.NewApplicationStore(db)
	recipients := store.NewRecipientStore(db)
	leadStore := store.NewLeadStore(db)
	smtpStore := store.NewSMTPStore(db)

	tokens := auth.NewTokenService(cfg.Auth.JWTSecret)
	authSvc := auth.NewService(cfg.Auth, tokens, admins, log)
	resolver := auth.NewPermissionResolver(tokens, admins, log)

	bootCtx, bootCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := authSvc.Bootstrap(bootCtx); err != nil {
		bootCancel()
		log.Error("super admin bootstrap failed", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
	bootCancel()

	notifyTimeout := time.Duration(cfg.Notifications.Timeout) * time.Millisecond
	sesDispatcher, err := notify.NewSESDispatcher(
		context.Background(),
		cfg.Integrations.AWS.Region,
		cfg.Integrations.AWS.SES.FromEmail,
		notifyTimeout,
		log,
	)
	if err != nil {
		log.Error("failed to initialize SES dispatcher", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
	smtpDispatcher := notify.NewSMTPDispatcher(smtpStore, notifyTimeout, log)
	dispatcher := notify.NewSelector(smtpStore, smtpDispatcher, sesDispatcher, log)

	renderer := render.NewHTTPRenderer(
		cfg.Renderer.BaseURL,
		time.Duration(cfg.Renderer.Timeout)*time.Millisecond,
		log,
	)

	idgen := intake.NewIDGenerator(applications.Exists)
	orchestrator := intake.NewOrchestrator(idgen, applications, recipients, renderer, dispatcher, cfg.Notifications, log)
	extractor := leads.NewExtractor(leadStore, log)

	srv := server.New(log, authSvc, resolver, orchestrator, extractor, db,
		admins, applications, recipients, leadStore, smtpStore)

	httpServer := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      srv.Router(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		log.Info("listening", map[string]interface{}{"address": cfg.Server.Address})
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", map[string]interface{}{"error": err.Error()})
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info("shutting down", nil)
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", map[string]interface{}{"error": err.Error()})
	}
}
