// Package handler exposes the admin user management surface.
package handler

import (
	"net/http"

	"member-portal/internal/audit"
	"member-portal/internal/rbac"
	"member-portal/internal/server/httpx"
	"member-portal/internal/server/middleware"
	userrepo "member-portal/internal/user/repository"
)

// AdminHandler serves the user administration endpoints. Every route runs
// through the gate with its own requirement chain.
type AdminHandler struct {
	users    userrepo.Repository
	gate     *rbac.Gate
	auditLog audit.AuditLogger
}

// NewAdminHandler returns an AdminHandler with the given dependencies.
func NewAdminHandler(users userrepo.Repository, gate *rbac.Gate, auditLog audit.AuditLogger) *AdminHandler {
	return &AdminHandler{users: users, gate: gate, auditLog: auditLog}
}

// Register mounts the handler's routes on mux.
func (h *AdminHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /admin/users", h.handleListUsers)
	mux.HandleFunc("DELETE /admin/users/{id}", h.handleDeleteUser)
}

func (h *AdminHandler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	token := middleware.TokenFromContext(r.Context(), r)
	_, denial := h.gate.Authorize(r.Context(), token,
		rbac.RequireAnyRole(rbac.RoleAdmin, rbac.RoleManager),
		rbac.RequirePermission(rbac.PermViewDashboard))
	if denial != nil {
		h.denied(w, r, denial)
		return
	}

	users, err := h.users.List(r.Context())
	if err != nil {
		httpx.Error(w, http.StatusInternalServerError, "failed to list users")
		return
	}

	views := make([]map[string]any, 0, len(users))
	for _, u := range users {
		views = append(views, map[string]any{
			"id":           u.ID,
			"username":     u.Username,
			"email":        u.Email,
			"display_name": u.DisplayName,
			"created_at":   u.CreatedAt,
		})
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"users": views, "total": len(views)})
}

func (h *AdminHandler) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		httpx.Error(w, http.StatusBadRequest, "user id required")
		return
	}

	token := middleware.TokenFromContext(r.Context(), r)
	subject, denial := h.gate.Authorize(r.Context(), token,
		rbac.RequireRole(rbac.RoleAdmin),
		rbac.RequirePermission(rbac.PermManageUsers))
	if denial != nil {
		h.denied(w, r, denial)
		return
	}

	// Admins cannot remove their own account.
	if id == subject.Identity.ID {
		httpx.Error(w, http.StatusConflict, "cannot act on own account")
		return
	}

	if err := h.users.Delete(r.Context(), id); err != nil {
		httpx.Error(w, http.StatusInternalServerError, "failed to delete user")
		return
	}

	client := middleware.ClientFromContext(r.Context())
	h.auditLog.LogEvent(r.Context(), subject.Identity.ID, audit.ActionUserDelete, "user:"+id, client.IP, "")
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) denied(w http.ResponseWriter, r *http.Request, denial *rbac.Denial) {
	if denial.Status == http.StatusForbidden {
		client := middleware.ClientFromContext(r.Context())
		h.auditLog.LogEvent(r.Context(), "", audit.ActionAccessDenied, r.Method+" "+r.URL.Path, client.IP, "")
	}
	httpx.Error(w, denial.Status, denial.Message)
}
