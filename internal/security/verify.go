package security

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// MinVerifyDuration is the wall-clock floor for a credential verification.
// A call that finishes earlier sleeps for the remainder, so "user not found"
// and "wrong password" are not distinguishable by latency.
const MinVerifyDuration = 100 * time.Millisecond

// dummyHash is a bcrypt hash (cost 12) of a throwaway string. When no stored
// hash exists for the presented identifier, Verify compares against this hash
// so the bcrypt cost is paid on both code paths.
const dummyHash = "$2a$12$R9h/cIPz0gi.URNNX3kh2OPST9/PgBkqquzi.Ss7KIUgO2t0jWMUW"

// Verifier decides whether a password matches a stored bcrypt hash in
// constant-observable time.
type Verifier struct {
	floor time.Duration
	sleep func(time.Duration)
}

// NewVerifier returns a Verifier with the default timing floor.
func NewVerifier() *Verifier {
	return &Verifier{floor: MinVerifyDuration, sleep: time.Sleep}
}

// Verify reports whether password matches storedHash. An empty storedHash
// means the user does not exist; the comparison still runs against a dummy
// hash of equivalent cost and the result is always false. Any internal
// failure is treated as a non-match. The whole call takes at least the
// timing floor.
func (v *Verifier) Verify(password, storedHash string) bool {
	start := time.Now()
	matched := compare(password, storedHash)
	if rem := v.floor - time.Since(start); rem > 0 {
		v.sleep(rem)
	}
	return matched
}

// compare fails closed: panics inside bcrypt are swallowed and count as a
// non-match.
func compare(password, storedHash string) (matched bool) {
	defer func() {
		if recover() != nil {
			matched = false
		}
	}()
	if storedHash == "" {
		_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(password)) == nil
}
