// Package session implements stateless cookie sessions: signed client-held
// tokens carrying the user identity and timing fields, renewed on activity,
// with a process-wide logout watermark as the only server-side session state.
package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"member-portal/internal/security"
)

// Defaults for the session lifetime and the idle interval after which a token
// is re-issued on use.
const (
	DefaultTimeout          = time.Hour
	DefaultRenewalThreshold = 5 * time.Minute
)

// Sentinel errors for session verification. All of them mean the caller is
// unauthenticated; the distinction is for logs and tests, never for responses.
var (
	// ErrInvalidSession covers malformed tokens and bad signatures.
	ErrInvalidSession = errors.New("invalid session")
	// ErrSessionExpired is returned when the token's expiry has passed.
	ErrSessionExpired = errors.New("session expired")
	// ErrSessionRevoked is returned when the token predates the logout watermark.
	ErrSessionRevoked = errors.New("session revoked")
)

// Identity is the authenticated user as carried inside a session token.
// Immutable for the lifetime of a session; refreshed only by re-authentication
// or an explicit re-issue after a profile update.
type Identity struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name,omitempty"`
}

// ClientContext is the optional request context stamped into a token at
// creation.
type ClientContext struct {
	IP        string
	UserAgent string
}

// Verification is the result of a successful session check.
type Verification struct {
	Identity       Identity
	SessionID      string
	NeedsRenewal   bool
	IssuedAt       time.Time
	ExpiresAt      time.Time
	LastActivityAt time.Time
}

// Manager owns session token construction and verification. Sessions are
// stateless: all state lives in the signed token, so there is no session
// table and nothing to lock per request.
type Manager struct {
	tokens     *security.TokenProvider
	watermark  LogoutWatermark
	timeout    time.Duration
	renewAfter time.Duration
	now        func() time.Time
}

// NewManager returns a session manager. Non-positive durations fall back to
// the package defaults.
func NewManager(tokens *security.TokenProvider, watermark LogoutWatermark, timeout, renewAfter time.Duration) *Manager {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if renewAfter <= 0 {
		renewAfter = DefaultRenewalThreshold
	}
	return &Manager{
		tokens:     tokens,
		watermark:  watermark,
		timeout:    timeout,
		renewAfter: renewAfter,
		now:        time.Now,
	}
}

// Timeout returns the configured session lifetime.
func (m *Manager) Timeout() time.Duration { return m.timeout }

// RenewalThreshold returns the idle interval after which Renew issues a new token.
func (m *Manager) RenewalThreshold() time.Duration { return m.renewAfter }

// Create issues a fresh session token for the identity: iat = now,
// exp = now + timeout, last activity = now, new 256-bit session id.
func (m *Manager) Create(id Identity, client ClientContext) (string, error) {
	sid, err := security.NewSessionID()
	if err != nil {
		return "", err
	}
	return m.issue(id, sid, client, m.now())
}

// Verify checks the token through the authoritative path: signature, expiry,
// and the logout watermark. NeedsRenewal is set when the session has been idle
// past the renewal threshold but is otherwise valid.
func (m *Manager) Verify(token string) (Verification, error) {
	claims, err := m.tokens.Verify(token)
	if err != nil {
		if errors.Is(err, security.ErrTokenExpired) {
			return Verification{}, ErrSessionExpired
		}
		return Verification{}, ErrInvalidSession
	}
	if claims.IssuedAt == nil || claims.ExpiresAt == nil {
		return Verification{}, ErrInvalidSession
	}

	iat := claims.IssuedAt.Time
	if cutoff := m.watermark.Cutoff(); !cutoff.IsZero() && iat.Before(cutoff) {
		return Verification{}, ErrSessionRevoked
	}

	lact := iat
	if claims.LastActivity != nil {
		lact = claims.LastActivity.Time
	}

	return Verification{
		Identity: Identity{
			ID:          claims.Subject,
			Username:    claims.Username,
			Email:       claims.Email,
			DisplayName: claims.DisplayName,
		},
		SessionID:      claims.ID,
		NeedsRenewal:   m.now().Sub(lact) >= m.renewAfter,
		IssuedAt:       iat,
		ExpiresAt:      claims.ExpiresAt.Time,
		LastActivityAt: lact,
	}, nil
}

// Renew returns the token unchanged when no renewal is due, avoiding a
// pointless re-sign. Otherwise it issues a new token preserving the identity
// and session id, with fresh issue, expiry, and activity stamps.
func (m *Manager) Renew(token string, client ClientContext) (string, error) {
	v, err := m.Verify(token)
	if err != nil {
		return "", err
	}
	if !v.NeedsRenewal {
		return token, nil
	}
	return m.issue(v.Identity, v.SessionID, client, m.now())
}

// Regenerate unconditionally issues a token with a fresh session id, resetting
// the timing fields. Used after privilege changes or suspected compromise.
func (m *Manager) Regenerate(token string, client ClientContext) (string, error) {
	v, err := m.Verify(token)
	if err != nil {
		return "", err
	}
	sid, err := security.NewSessionID()
	if err != nil {
		return "", err
	}
	return m.issue(v.Identity, sid, client, m.now())
}

// LogoutEverywhere advances the logout watermark to now, invalidating every
// session issued before this instant. The watermark is process-wide, so this
// affects all users, not only the caller.
func (m *Manager) LogoutEverywhere() {
	m.watermark.Advance(m.now())
}

func (m *Manager) issue(id Identity, sid string, client ClientContext, now time.Time) (string, error) {
	claims := &security.SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sid,
			Subject:   id.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.timeout)),
		},
		Username:     id.Username,
		Email:        id.Email,
		DisplayName:  id.DisplayName,
		LastActivity: jwt.NewNumericDate(now),
		IP:           client.IP,
		UserAgent:    client.UserAgent,
	}
	return m.tokens.Issue(claims)
}
