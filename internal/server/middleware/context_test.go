package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"member-portal/internal/session"
)

func TestClientFromRequest(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "192.0.2.10:54321"
	r.Header.Set("User-Agent", "test-agent")

	c := ClientFromRequest(r)
	if c.IP != "192.0.2.10" {
		t.Errorf("IP: got %q", c.IP)
	}
	if c.UserAgent != "test-agent" {
		t.Errorf("UserAgent: got %q", c.UserAgent)
	}
}

func TestClientFromRequest_ForwardedForWins(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.1:1000"
	r.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")

	if c := ClientFromRequest(r); c.IP != "203.0.113.7" {
		t.Errorf("IP: got %q", c.IP)
	}
}

func TestTokenContext(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: session.CookieName, Value: "cookie-token"})

	// Without an override the cookie value wins.
	if got := TokenFromContext(context.Background(), r); got != "cookie-token" {
		t.Errorf("got %q", got)
	}

	// After a renewal the context value shadows the stale cookie.
	ctx := WithToken(context.Background(), "renewed-token")
	if got := TokenFromContext(ctx, r); got != "renewed-token" {
		t.Errorf("got %q", got)
	}
}
