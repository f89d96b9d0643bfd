package middleware

import (
	"net/http"
	"strings"
	"time"

	"member-portal/internal/security"
	"member-portal/internal/server/httpx"
	"member-portal/internal/session"
)

// SessionFilter is the edge admission check that runs before routing. It
// reads the session cookie, rejects requests that cannot possibly carry a
// valid session, and re-issues the cookie when the session has gone stale.
//
// The filter's expiry and staleness reads use the unverified token payload,
// which is cheap but forgeable. It therefore only ever narrows access, never
// grants it: every protected handler still goes through the gate, which
// verifies the signature. Renewal is the one state change here, and it runs
// through the manager's authoritative Verify.
type SessionFilter struct {
	sessions   *session.Manager
	tokens     *security.TokenProvider
	cookies    *session.CookieWriter
	skipExact  map[string]bool
	skipPrefix []string
	now        func() time.Time
}

// NewSessionFilter builds the filter. Paths ending in "*" skip by prefix,
// others by exact match.
func NewSessionFilter(sessions *session.Manager, tokens *security.TokenProvider, cookies *session.CookieWriter, skipPaths []string) *SessionFilter {
	skipExact := make(map[string]bool, len(skipPaths))
	skipPrefix := make([]string, 0)
	for _, p := range skipPaths {
		if strings.HasSuffix(p, "*") {
			skipPrefix = append(skipPrefix, strings.TrimSuffix(p, "*"))
			continue
		}
		skipExact[p] = true
	}
	return &SessionFilter{
		sessions:   sessions,
		tokens:     tokens,
		cookies:    cookies,
		skipExact:  skipExact,
		skipPrefix: skipPrefix,
		now:        time.Now,
	}
}

// Wrap returns the wrapped HTTP handler.
func (f *SessionFilter) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		client := ClientFromRequest(r)
		ctx := WithClient(r.Context(), client)
		r = r.WithContext(ctx)

		if f.shouldSkip(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		token := session.TokenFromRequest(r)
		if token == "" {
			f.deny(w, r)
			return
		}

		claims, err := f.tokens.DecodeUnverified(token)
		if err != nil {
			f.cookies.Clear(w)
			f.deny(w, r)
			return
		}
		if claims.ExpiresAt == nil || !f.now().Before(claims.ExpiresAt.Time) {
			f.cookies.Clear(w)
			f.deny(w, r)
			return
		}

		if f.stale(claims) {
			renewed, err := f.sessions.Renew(token, client)
			if err != nil {
				f.cookies.Clear(w)
				f.deny(w, r)
				return
			}
			if renewed != token {
				f.cookies.Set(w, renewed, f.now().Add(f.sessions.Timeout()))
				r = r.WithContext(WithToken(r.Context(), renewed))
			}
		}

		next.ServeHTTP(w, r)
	})
}

func (f *SessionFilter) shouldSkip(path string) bool {
	if f.skipExact[path] {
		return true
	}
	for _, p := range f.skipPrefix {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

func (f *SessionFilter) stale(claims *security.SessionClaims) bool {
	lact := claims.IssuedAt
	if claims.LastActivity != nil {
		lact = claims.LastActivity
	}
	if lact == nil {
		return true
	}
	return f.now().Sub(lact.Time) >= f.sessions.RenewalThreshold()
}

// deny answers 401 JSON for API paths and redirects browsers to /login for
// page paths.
func (f *SessionFilter) deny(w http.ResponseWriter, r *http.Request) {
	if isAPIPath(r) {
		httpx.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}
	http.Redirect(w, r, "/login", http.StatusFound)
}

func isAPIPath(r *http.Request) bool {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		return true
	}
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "application/json")
}
