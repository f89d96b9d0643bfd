package security

import (
	"testing"
	"time"
)

// fastVerifier returns a verifier whose sleep is recorded instead of slept,
// so tests stay quick.
func fastVerifier() (*Verifier, *time.Duration) {
	var slept time.Duration
	v := &Verifier{
		floor: MinVerifyDuration,
		sleep: func(d time.Duration) { slept += d },
	}
	return v, &slept
}

func TestVerifier_MatchAndMismatch(t *testing.T) {
	hasher := NewHasher(4)
	hash, err := hasher.Hash([]byte("correct horse"))
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}

	v, _ := fastVerifier()
	if !v.Verify("correct horse", hash) {
		t.Error("correct password rejected")
	}
	if v.Verify("wrong horse", hash) {
		t.Error("wrong password accepted")
	}
}

func TestVerifier_EmptyStoredHashAlwaysFails(t *testing.T) {
	v, _ := fastVerifier()
	if v.Verify("anything", "") {
		t.Error("empty stored hash verified")
	}
	// Even the dummy hash's own preimage must not verify.
	if v.Verify("", "") {
		t.Error("empty password against empty hash verified")
	}
}

func TestVerifier_GarbageHashFailsClosed(t *testing.T) {
	v, _ := fastVerifier()
	if v.Verify("password", "not-a-bcrypt-hash") {
		t.Error("garbage stored hash verified")
	}
}

func TestVerifier_TimingFloor(t *testing.T) {
	hasher := NewHasher(4)
	hash, err := hasher.Hash([]byte("pw"))
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}

	cases := []struct {
		name       string
		password   string
		storedHash string
	}{
		{"match", "pw", hash},
		{"mismatch", "nope", hash},
		{"unknown user", "pw", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v, slept := fastVerifier()
			start := time.Now()
			v.Verify(tc.password, tc.storedHash)
			elapsed := time.Since(start)
			if elapsed+*slept < MinVerifyDuration {
				t.Errorf("total duration %v below floor %v", elapsed+*slept, MinVerifyDuration)
			}
		})
	}
}
