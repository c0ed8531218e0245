package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"auth-session-gateway/internal/audit"
	auditrepo "auth-session-gateway/internal/audit/repository"
	"auth-session-gateway/internal/config"
	"auth-session-gateway/internal/db"
	"auth-session-gateway/internal/identity"
	identityservice "auth-session-gateway/internal/identity/service"
	"auth-session-gateway/internal/logging"
	"auth-session-gateway/internal/server"
	"auth-session-gateway/internal/server/middleware"
	sessionrepo "auth-session-gateway/internal/session/repository"
	tokenrepo "auth-session-gateway/internal/token/repository"
	userrepo "auth-session-gateway/internal/user/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := cfg.AssertProductionSafe(); err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		log.Fatalf("logging: %v", err)
	}
	defer logging.Sync(logger)

	for _, warning := range cfg.Inspect(false).Warnings {
		logger.Warn("config check", zap.String("warning", warning))
	}

	database, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("open database", zap.Error(err))
	}
	defer database.Close()

	users := userrepo.NewPostgresRepository(database)
	sessions := sessionrepo.NewPostgresRepository(database)
	tokens := tokenrepo.NewPostgresRepository(database)
	audits := auditrepo.NewPostgresRepository(database)
	auditor := audit.NewLogger(audits, middleware.AuditExtractor())

	authSvc := identityservice.NewAuthService(
		users, sessions, tokens, auditor,
		cfg.SessionTTLDuration(), cfg.SessionMaxLifetimeDuration())

	redirectURL := cfg.GoogleRedirectURL
	if redirectURL == "" {
		redirectURL = cfg.AppURL + "/auth/google/callback"
	}
	provider, err := identity.NewGoogleProvider(
		context.Background(), cfg.GoogleClientID, cfg.GoogleClientSecret, redirectURL)
	if err != nil {
		logger.Fatal("google provider", zap.Error(err))
	}

	router := server.NewRouter(cfg, server.Deps{
		Auth:         authSvc,
		Provider:     provider,
		UserRepo:     users,
		AuditRepo:    audits,
		HealthPinger: database,
		Logger:       logger,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("http server listening", logging.Addr(cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("serve", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down http server")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
	logger.Info("http server stopped")
}
