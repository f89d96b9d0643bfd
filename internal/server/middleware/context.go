// Package middleware holds the HTTP middleware chain: request context
// enrichment and the edge session filter.
package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"

	"member-portal/internal/session"
)

type contextKey string

const (
	clientContextKey contextKey = "client"
	tokenContextKey  contextKey = "sessionToken"
)

// ClientFromRequest extracts the caller's IP and user agent. X-Forwarded-For
// wins over RemoteAddr when present; only its first hop is used.
func ClientFromRequest(r *http.Request) session.ClientContext {
	ip := r.Header.Get("X-Forwarded-For")
	if ip != "" {
		if i := strings.IndexByte(ip, ','); i >= 0 {
			ip = ip[:i]
		}
		ip = strings.TrimSpace(ip)
	} else {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err == nil {
			ip = host
		} else {
			ip = r.RemoteAddr
		}
	}
	return session.ClientContext{IP: ip, UserAgent: r.UserAgent()}
}

// WithClient stores the client context on the request context.
func WithClient(ctx context.Context, c session.ClientContext) context.Context {
	return context.WithValue(ctx, clientContextKey, c)
}

// ClientFromContext retrieves the client context. Zero value when absent.
func ClientFromContext(ctx context.Context) session.ClientContext {
	c, _ := ctx.Value(clientContextKey).(session.ClientContext)
	return c
}

// WithToken stores the current session token on the request context. The
// filter sets this after a renewal so handlers authorize against the token
// the response cookie carries, not the stale one from the request.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenContextKey, token)
}

// TokenFromContext returns the session token for the request: the renewed one
// when the filter re-issued it, otherwise the request cookie value.
func TokenFromContext(ctx context.Context, r *http.Request) string {
	if t, ok := ctx.Value(tokenContextKey).(string); ok && t != "" {
		return t
	}
	return session.TokenFromRequest(r)
}
