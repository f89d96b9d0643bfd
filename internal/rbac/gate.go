package rbac

import (
	"context"
	"net/http"

	"member-portal/internal/session"
)

// Denial is a refused authorization attempt. Status is the HTTP status the
// transport should answer with: 401 when the caller is unauthenticated, 403
// when authenticated but not allowed, 500 when the decision itself failed.
type Denial struct {
	Status  int
	Message string
}

func (d *Denial) Error() string { return d.Message }

var (
	denyUnauthenticated = &Denial{Status: http.StatusUnauthorized, Message: "authentication required"}
	denyForbidden       = &Denial{Status: http.StatusForbidden, Message: "insufficient permissions"}
	denyFault           = &Denial{Status: http.StatusInternalServerError, Message: "authorization unavailable"}
)

// Subject is a verified session together with its resolved grant, as seen by
// checks.
type Subject struct {
	session.Verification
	Grant
}

// Check is one authorization requirement. A nil return means the requirement
// holds.
type Check func(s *Subject) *Denial

// RequireRole passes when the subject holds the role.
func RequireRole(name string) Check {
	return func(s *Subject) *Denial {
		if HasRole(s.Roles, name) {
			return nil
		}
		return denyForbidden
	}
}

// RequireAnyRole passes when the subject holds at least one of the roles.
func RequireAnyRole(names ...string) Check {
	return func(s *Subject) *Denial {
		for _, n := range names {
			if HasRole(s.Roles, n) {
				return nil
			}
		}
		return denyForbidden
	}
}

// RequirePermission passes when the subject holds the permission.
func RequirePermission(name string) Check {
	return func(s *Subject) *Denial {
		if HasPermission(s.Permissions, name) {
			return nil
		}
		return denyForbidden
	}
}

// Gate is the single authorization decision point: it verifies the session,
// resolves the grant, and evaluates checks in declared order, stopping at the
// first failure.
type Gate struct {
	sessions *session.Manager
	resolver *Resolver
}

// NewGate returns a gate over the given session manager and resolver.
func NewGate(sessions *session.Manager, resolver *Resolver) *Gate {
	return &Gate{sessions: sessions, resolver: resolver}
}

// Authorize verifies the session token and evaluates the checks. Any session
// failure, including an absent token, yields a 401 denial; a resolver failure
// yields a 500 denial so lookup faults are never mistaken for refusals.
func (g *Gate) Authorize(ctx context.Context, token string, checks ...Check) (*Subject, *Denial) {
	if token == "" {
		return nil, denyUnauthenticated
	}
	v, err := g.sessions.Verify(token)
	if err != nil {
		return nil, denyUnauthenticated
	}

	grant, err := g.resolver.Resolve(ctx, v.Identity.ID)
	if err != nil {
		return nil, denyFault
	}

	subject := &Subject{Verification: v, Grant: grant}
	for _, check := range checks {
		if d := check(subject); d != nil {
			return nil, d
		}
	}
	return subject, nil
}
