package security

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Sentinel errors for token verification. Handlers and middleware must treat a
// malformed token the same as an unauthenticated request, never as expired.
var (
	// ErrInvalidToken is returned when a token fails verification for a reason
	// not covered by a more specific sentinel.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenMalformed is returned when a token cannot be parsed at all
	// (wrong segment count, non-JSON payload).
	ErrTokenMalformed = errors.New("malformed token")
	// ErrTokenSignatureInvalid is returned when a token parses but its signature
	// does not verify against the server secret.
	ErrTokenSignatureInvalid = errors.New("invalid token signature")
	// ErrTokenExpired is returned when a well-formed, correctly signed token has
	// passed its expiry. A token exactly at its expiry instant is expired.
	ErrTokenExpired = errors.New("token expired")
)

// SessionClaims holds the signed session payload: the user identity, the
// session id (jti), issue/expiry instants, the last-activity instant used for
// renewal decisions, and optional client context.
type SessionClaims struct {
	jwt.RegisteredClaims
	Username     string           `json:"username"`
	Email        string           `json:"email"`
	DisplayName  string           `json:"display_name,omitempty"`
	LastActivity *jwt.NumericDate `json:"lact"`
	IP           string           `json:"ip,omitempty"`
	UserAgent    string           `json:"ua,omitempty"`
}

// TokenProvider issues and validates HS256 session tokens using a server-held secret.
//
// Two decode paths exist with different trust levels. Verify is the
// authoritative path: full signature and expiry validation, required before any
// authorization decision. DecodeUnverified skips the signature entirely and
// must only feed presence/expiry pre-checks at the request edge.
type TokenProvider struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// NewTokenProvider returns a TokenProvider that signs with the given secret.
// The secret must be at least 32 bytes; shorter secrets are a config error
// caught at load time.
func NewTokenProvider(secret []byte, issuer string) *TokenProvider {
	return &TokenProvider{secret: secret, issuer: issuer, now: time.Now}
}

// Issue signs the claims and returns the compact token string
// (three dot-separated base64url segments).
func (p *TokenProvider) Issue(claims *SessionClaims) (string, error) {
	claims.Issuer = p.issuer
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(p.secret)
}

// Verify parses and fully validates the token: signature first, then expiry and
// issuer. Returns the claims on success, or one of the sentinel errors above.
func (p *TokenProvider) Verify(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		return p.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(p.issuer),
		jwt.WithTimeFunc(p.now),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, ErrTokenMalformed
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrTokenSignatureInvalid
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		default:
			return nil, ErrInvalidToken
		}
	}
	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// DecodeUnverified parses the token without checking the signature or any
// claim. It answers "does a structurally valid token exist and what does it
// claim", nothing more. Callers must never grant access based on its result;
// the only legitimate uses are the edge admission pre-check and diagnostics.
func (p *TokenProvider) DecodeUnverified(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return nil, ErrTokenMalformed
	}
	return claims, nil
}

// NewSessionID returns a fresh high-entropy session identifier:
// 32 random bytes (256 bits) encoded as unpadded base64url.
func NewSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
