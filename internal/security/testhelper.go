package security

import "time"

// Test signing secret for unit tests only. Do not use in production.
const testSecret = "0123456789abcdef0123456789abcdef"

// NewTestTokenProvider returns a TokenProvider using an embedded test secret.
// For unit tests only. Callers must not use in production.
func NewTestTokenProvider() *TokenProvider {
	return NewTokenProvider([]byte(testSecret), "test-issuer")
}

// NewTestTokenProviderWithClock is NewTestTokenProvider with verification
// time pinned to clock, so expiry tests are deterministic.
func NewTestTokenProviderWithClock(clock func() time.Time) *TokenProvider {
	p := NewTestTokenProvider()
	p.now = clock
	return p
}
