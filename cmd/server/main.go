package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"member-portal/internal/audit"
	auditrepo "member-portal/internal/audit/repository"
	"member-portal/internal/config"
	"member-portal/internal/db"
	identityservice "member-portal/internal/identity/service"
	"member-portal/internal/rbac"
	rbacrepo "member-portal/internal/rbac/repository"
	"member-portal/internal/security"
	"member-portal/internal/server"
	"member-portal/internal/session"
	"member-portal/internal/telemetry/otel"
	userrepo "member-portal/internal/user/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()

	providers, err := otel.NewProviders(ctx, cfg.OTLPEndpoint, "member-portal", cfg.OTLPInsecure)
	if err != nil {
		log.Fatalf("telemetry: %v", err)
	}
	providers.SetGlobal()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = providers.Shutdown(shutdownCtx)
	}()

	database, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer database.Close()

	tokens := security.NewTokenProvider([]byte(cfg.SessionSecret), "member-portal")
	sessions := session.NewManager(tokens, session.NewMemoryWatermark(), cfg.Timeout(), cfg.RenewalThreshold())
	cookies := session.NewCookieWriter(cfg.Production())

	users := userrepo.NewPostgresRepository(database)
	auditLog := audit.NewLogger(auditrepo.NewPostgresRepository(database))
	resolver := rbac.NewResolver(rbacrepo.NewPostgresRepository(database))
	gate := rbac.NewGate(sessions, resolver)

	verifier := security.NewVerifier()
	hasher := security.NewHasher(cfg.BcryptCost)
	auth := identityservice.NewAuthService(users, verifier, hasher, sessions)

	handler := server.New(server.Deps{
		Auth:         auth,
		Sessions:     sessions,
		Tokens:       tokens,
		Gate:         gate,
		Cookies:      cookies,
		UserRepo:     users,
		AuditLog:     auditLog,
		HealthPinger: database,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("HTTP server listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	log.Println("HTTP server stopped")
}
