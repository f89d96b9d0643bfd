// Package server assembles the HTTP surface: routes, the middleware chain,
// and request instrumentation.
package server

import (
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	adminhandler "member-portal/internal/admin/handler"
	"member-portal/internal/audit"
	healthhandler "member-portal/internal/health/handler"
	identityhandler "member-portal/internal/identity/handler"
	identityservice "member-portal/internal/identity/service"
	"member-portal/internal/rbac"
	"member-portal/internal/security"
	"member-portal/internal/server/middleware"
	"member-portal/internal/session"
	userrepo "member-portal/internal/user/repository"
)

// Paths the edge session filter admits without a session cookie.
var publicPaths = []string{
	"/login",
	"/register",
	"/healthz",
	"/static/*",
}

// Deps holds the dependencies the HTTP handlers are built from.
type Deps struct {
	Auth     *identityservice.AuthService
	Sessions *session.Manager
	Tokens   *security.TokenProvider
	Gate     *rbac.Gate
	Cookies  *session.CookieWriter
	UserRepo userrepo.Repository
	AuditLog audit.AuditLogger
	// HealthPinger is used for readiness (e.g. *sql.DB). If nil, the probe skips the DB ping.
	HealthPinger healthhandler.Pinger
}

// New builds the root handler: routed endpoints behind the session filter,
// wrapped in otelhttp instrumentation.
func New(deps Deps) http.Handler {
	mux := http.NewServeMux()

	identityhandler.NewAuthHandler(deps.Auth, deps.Gate, deps.Cookies, deps.AuditLog).Register(mux)
	adminhandler.NewAdminHandler(deps.UserRepo, deps.Gate, deps.AuditLog).Register(mux)
	healthhandler.NewHealthHandler(deps.HealthPinger).Register(mux)

	filter := middleware.NewSessionFilter(deps.Sessions, deps.Tokens, deps.Cookies, publicPaths)
	return otelhttp.NewHandler(filter.Wrap(mux), "http.server")
}
