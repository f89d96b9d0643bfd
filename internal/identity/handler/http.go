// Package handler exposes authentication over HTTP.
package handler

import (
	"errors"
	"net/http"

	"member-portal/internal/audit"
	"member-portal/internal/identity/service"
	"member-portal/internal/rbac"
	"member-portal/internal/server/httpx"
	"member-portal/internal/server/middleware"
	"member-portal/internal/session"
	userdomain "member-portal/internal/user/domain"
)

// AuthHandler serves login, logout, registration, and the current-user view.
type AuthHandler struct {
	auth     *service.AuthService
	gate     *rbac.Gate
	cookies  *session.CookieWriter
	auditLog audit.AuditLogger
}

// NewAuthHandler returns an AuthHandler with the given dependencies.
func NewAuthHandler(auth *service.AuthService, gate *rbac.Gate, cookies *session.CookieWriter, auditLog audit.AuditLogger) *AuthHandler {
	return &AuthHandler{auth: auth, gate: gate, cookies: cookies, auditLog: auditLog}
}

// Register mounts the handler's routes on mux.
func (h *AuthHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /login", h.handleLogin)
	mux.HandleFunc("POST /logout", h.handleLogout)
	mux.HandleFunc("POST /logout/everywhere", h.handleLogoutEverywhere)
	mux.HandleFunc("POST /register", h.handleRegister)
	mux.HandleFunc("GET /me", h.handleMe)
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := httpx.Decode(r, &body); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid request")
		return
	}
	identifier := body.Username
	if identifier == "" {
		identifier = body.Email
	}

	client := middleware.ClientFromRequest(r)
	result, err := h.auth.Login(r.Context(), identifier, body.Password, client)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			h.auditLog.LogEvent(r.Context(), "", audit.ActionLoginFailure, "session", client.IP, identifier)
			httpx.Error(w, http.StatusUnauthorized, service.ErrInvalidCredentials.Error())
			return
		}
		httpx.Error(w, http.StatusInternalServerError, "login failed")
		return
	}

	h.cookies.Set(w, result.Token, result.ExpiresAt)
	h.auditLog.LogEvent(r.Context(), result.User.ID, audit.ActionLogin, "session", client.IP, "")
	httpx.JSON(w, http.StatusOK, userView(result.User))
}

func (h *AuthHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	client := middleware.ClientFromRequest(r)
	token := middleware.TokenFromContext(r.Context(), r)
	if subject, denial := h.gate.Authorize(r.Context(), token); denial == nil {
		h.auditLog.LogEvent(r.Context(), subject.Identity.ID, audit.ActionLogout, "session", client.IP, "")
	}
	h.cookies.Clear(w)
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) handleLogoutEverywhere(w http.ResponseWriter, r *http.Request) {
	token := middleware.TokenFromContext(r.Context(), r)
	subject, denial := h.gate.Authorize(r.Context(), token)
	if denial != nil {
		httpx.Error(w, denial.Status, denial.Message)
		return
	}

	h.auth.LogoutEverywhere()
	client := middleware.ClientFromRequest(r)
	h.auditLog.LogEvent(r.Context(), subject.Identity.ID, audit.ActionLogoutEverywhere, "session", client.IP, "")
	h.cookies.Clear(w)
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username    string `json:"username"`
		Email       string `json:"email"`
		Password    string `json:"password"`
		DisplayName string `json:"display_name"`
	}
	if err := httpx.Decode(r, &body); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid request")
		return
	}

	user, err := h.auth.Register(r.Context(), body.Username, body.Email, body.Password, body.DisplayName)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUsernameAlreadyTaken), errors.Is(err, service.ErrEmailAlreadyRegistered):
			httpx.Error(w, http.StatusConflict, err.Error())
		default:
			httpx.Error(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	client := middleware.ClientFromRequest(r)
	h.auditLog.LogEvent(r.Context(), user.ID, audit.ActionRegister, "user", client.IP, "")
	httpx.JSON(w, http.StatusCreated, userView(user))
}

func (h *AuthHandler) handleMe(w http.ResponseWriter, r *http.Request) {
	token := middleware.TokenFromContext(r.Context(), r)
	subject, denial := h.gate.Authorize(r.Context(), token)
	if denial != nil {
		httpx.Error(w, denial.Status, denial.Message)
		return
	}

	httpx.JSON(w, http.StatusOK, map[string]any{
		"id":           subject.Identity.ID,
		"username":     subject.Identity.Username,
		"email":        subject.Identity.Email,
		"display_name": subject.Identity.DisplayName,
		"roles":        subject.Roles,
		"permissions":  subject.Permissions,
		"expires_at":   subject.ExpiresAt,
	})
}

func userView(u *userdomain.User) map[string]any {
	return map[string]any{
		"id":           u.ID,
		"username":     u.Username,
		"email":        u.Email,
		"display_name": u.DisplayName,
	}
}
