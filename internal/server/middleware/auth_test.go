package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"member-portal/internal/security"
	"member-portal/internal/session"
)

func testFilter(t *testing.T) (*SessionFilter, *session.Manager, *security.TokenProvider) {
	t.Helper()
	tokens := security.NewTestTokenProvider()
	sessions := session.NewManager(tokens, session.NewMemoryWatermark(), time.Hour, 5*time.Minute)
	cookies := session.NewCookieWriter(false)
	filter := NewSessionFilter(sessions, tokens, cookies, []string{"/login", "/healthz", "/static/*"})
	return filter, sessions, tokens
}

func passProbe() (http.Handler, *bool) {
	called := false
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}), &called
}

// issueToken signs claims directly so tests can backdate activity or expiry.
func issueToken(t *testing.T, tokens *security.TokenProvider, iat, lact, exp time.Time) string {
	t.Helper()
	token, err := tokens.Issue(&security.SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "sid",
			Subject:   "u1",
			IssuedAt:  jwt.NewNumericDate(iat),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		Username:     "alice",
		LastActivity: jwt.NewNumericDate(lact),
	})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	return token
}

func withSessionCookie(r *http.Request, token string) *http.Request {
	r.AddCookie(&http.Cookie{Name: session.CookieName, Value: token})
	return r
}

func TestSessionFilter_SkipsPublicPaths(t *testing.T) {
	filter, _, _ := testFilter(t)
	for _, path := range []string{"/login", "/healthz", "/static/app.css"} {
		next, called := passProbe()
		rec := httptest.NewRecorder()
		filter.Wrap(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if !*called {
			t.Errorf("%s: public path blocked", path)
		}
	}
}

func TestSessionFilter_NoCookieRedirectsPages(t *testing.T) {
	filter, _, _ := testFilter(t)
	next, called := passProbe()
	rec := httptest.NewRecorder()
	filter.Wrap(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard", nil))

	if *called {
		t.Error("handler ran without a session")
	}
	if rec.Code != http.StatusFound {
		t.Errorf("status: got %d, want 302", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/login" {
		t.Errorf("redirect target: got %q", loc)
	}
}

func TestSessionFilter_NoCookie401ForAPI(t *testing.T) {
	filter, _, _ := testFilter(t)
	for _, build := range []func() *http.Request{
		func() *http.Request { return httptest.NewRequest(http.MethodGet, "/api/users", nil) },
		func() *http.Request {
			r := httptest.NewRequest(http.MethodGet, "/me", nil)
			r.Header.Set("Accept", "application/json")
			return r
		},
	} {
		next, called := passProbe()
		rec := httptest.NewRecorder()
		filter.Wrap(next).ServeHTTP(rec, build())
		if *called {
			t.Error("handler ran without a session")
		}
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status: got %d, want 401", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "authentication required") {
			t.Errorf("body: %q", rec.Body.String())
		}
	}
}

func TestSessionFilter_MalformedCookieClearedAndDenied(t *testing.T) {
	filter, _, _ := testFilter(t)
	next, called := passProbe()
	rec := httptest.NewRecorder()
	r := withSessionCookie(httptest.NewRequest(http.MethodGet, "/api/users", nil), "garbage")
	filter.Wrap(next).ServeHTTP(rec, r)

	if *called {
		t.Error("handler ran with malformed cookie")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want 401", rec.Code)
	}
	assertCookieCleared(t, rec)
}

func TestSessionFilter_ExpiredTokenClearedAndDenied(t *testing.T) {
	filter, _, tokens := testFilter(t)
	past := time.Now().Add(-2 * time.Hour)
	token := issueToken(t, tokens, past, past, past.Add(time.Hour))

	next, called := passProbe()
	rec := httptest.NewRecorder()
	r := withSessionCookie(httptest.NewRequest(http.MethodGet, "/api/users", nil), token)
	filter.Wrap(next).ServeHTTP(rec, r)

	if *called {
		t.Error("handler ran with expired session")
	}
	assertCookieCleared(t, rec)
}

func TestSessionFilter_FreshSessionPassesUntouched(t *testing.T) {
	filter, sessions, _ := testFilter(t)
	token, err := sessions.Create(session.Identity{ID: "u1", Username: "alice"}, session.ClientContext{})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	next, called := passProbe()
	rec := httptest.NewRecorder()
	r := withSessionCookie(httptest.NewRequest(http.MethodGet, "/me", nil), token)
	filter.Wrap(next).ServeHTTP(rec, r)

	if !*called {
		t.Fatal("fresh session blocked")
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Error("fresh session triggered a cookie write")
	}
}

func TestSessionFilter_StaleSessionRenewed(t *testing.T) {
	filter, _, tokens := testFilter(t)
	// Valid signature and expiry, but idle past the renewal threshold.
	iat := time.Now().Add(-10 * time.Minute)
	token := issueToken(t, tokens, iat, iat, iat.Add(time.Hour))

	var seenToken string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenToken = TokenFromContext(r.Context(), r)
		w.WriteHeader(http.StatusOK)
	})
	rec := httptest.NewRecorder()
	r := withSessionCookie(httptest.NewRequest(http.MethodGet, "/me", nil), token)
	filter.Wrap(next).ServeHTTP(rec, r)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != session.CookieName {
		t.Fatalf("expected one renewed session cookie, got %v", cookies)
	}
	if cookies[0].Value == token {
		t.Error("renewed cookie carries the old token")
	}
	if seenToken != cookies[0].Value {
		t.Error("handler context token does not match the renewed cookie")
	}
}

func TestSessionFilter_RevokedSessionDeniedOnRenewal(t *testing.T) {
	filter, sessions, tokens := testFilter(t)
	iat := time.Now().Add(-10 * time.Minute)
	token := issueToken(t, tokens, iat, iat, iat.Add(time.Hour))

	sessions.LogoutEverywhere()

	next, called := passProbe()
	rec := httptest.NewRecorder()
	r := withSessionCookie(httptest.NewRequest(http.MethodGet, "/api/users", nil), token)
	filter.Wrap(next).ServeHTTP(rec, r)

	if *called {
		t.Error("handler ran with revoked session")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want 401", rec.Code)
	}
	assertCookieCleared(t, rec)
}

func assertCookieCleared(t *testing.T, rec *httptest.ResponseRecorder) {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == session.CookieName && c.MaxAge < 0 {
			return
		}
	}
	t.Error("session cookie not cleared")
}
