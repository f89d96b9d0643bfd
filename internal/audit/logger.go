// Package audit records security-relevant events: logins, logouts, denials,
// and admin actions. Recording is best-effort and never fails the request
// that triggered it.
package audit

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"member-portal/internal/audit/domain"
	auditrepo "member-portal/internal/audit/repository"
)

// Audit actions written by the auth and admin code paths.
const (
	ActionLogin            = "login"
	ActionLoginFailure     = "login_failure"
	ActionLogout           = "logout"
	ActionLogoutEverywhere = "logout_everywhere"
	ActionRegister         = "register"
	ActionUserDelete       = "user_delete"
	ActionAccessDenied     = "access_denied"
)

// AuditLogger writes a single audit event with explicit action/resource.
// LogEvent is best-effort: failures are logged and do not affect the caller.
type AuditLogger interface {
	LogEvent(ctx context.Context, userID, action, resource, ip, metadata string)
}

// Logger implements AuditLogger using the audit repository.
type Logger struct {
	repo auditrepo.Repository
}

// NewLogger returns an AuditLogger that persists to repo.
func NewLogger(repo auditrepo.Repository) *Logger {
	return &Logger{repo: repo}
}

// LogEvent writes one audit log entry. Best-effort: errors are logged and not returned.
func (l *Logger) LogEvent(ctx context.Context, userID, action, resource, ip, metadata string) {
	if l.repo == nil {
		return
	}
	if ip == "" {
		ip = "unknown"
	}
	entry := &domain.AuditLog{
		ID:        uuid.New().String(),
		UserID:    userID,
		Action:    action,
		Resource:  resource,
		IP:        ip,
		Metadata:  metadata,
		CreatedAt: time.Now().UTC(),
	}
	if err := l.repo.Create(ctx, entry); err != nil {
		log.Printf("audit: failed to log event %s/%s: %v", action, resource, err)
	}
}

// Nop is an AuditLogger that discards everything. Used in tests.
type Nop struct{}

func (Nop) LogEvent(context.Context, string, string, string, string, string) {}
