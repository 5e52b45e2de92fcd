package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"pgregory.net/rapid"
)

func TestGenerateResponseToken(t *testing.T) {
	raw, hash, err := GenerateResponseToken()
	if err != nil {
		t.Fatalf("GenerateResponseToken failed: %v", err)
	}

	if len(raw) != 64 {
		t.Errorf("expected 64 hex chars of raw token, got %d", len(raw))
	}
	if len(hash) != 64 {
		t.Errorf("expected 64 hex chars of token hash, got %d", len(hash))
	}
	if raw == hash {
		t.Error("raw token and its hash must differ")
	}

	if _, err := hex.DecodeString(raw); err != nil {
		t.Errorf("raw token is not valid hex: %v", err)
	}
	if _, err := hex.DecodeString(hash); err != nil {
		t.Errorf("token hash is not valid hex: %v", err)
	}

	if got := HashResponseToken(raw); got != hash {
		t.Errorf("HashResponseToken(raw) = %s, want %s", got, hash)
	}
}

func TestGenerateResponseTokenUniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		raw, _, err := GenerateResponseToken()
		if err != nil {
			t.Fatalf("GenerateResponseToken failed: %v", err)
		}
		if seen[raw] {
			t.Fatalf("duplicate raw token generated: %s", raw)
		}
		seen[raw] = true
	}
}

// Property: hashing is deterministic, produces 64 lowercase hex chars,
// never echoes its input, and distinct tokens never collide within a run.
func TestProperty_ResponseTokenHashing(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping property test in short mode")
	}

	rapid.Check(t, func(rt *rapid.T) {
		token := rapid.StringN(1, 128, 128).Draw(rt, "token")
		other := rapid.StringN(1, 128, 128).Draw(rt, "other")

		hash := HashResponseToken(token)

		if HashResponseToken(token) != hash {
			rt.Fatalf("hashing %q twice produced different results", token)
		}
		if len(hash) != 64 {
			rt.Fatalf("hash of %q has length %d, want 64", token, len(hash))
		}
		if hash == token {
			rt.Fatalf("hash of %q equals its input", token)
		}

		sum := sha256.Sum256([]byte(token))
		if hash != hex.EncodeToString(sum[:]) {
			rt.Fatalf("hash of %q does not match sha256", token)
		}

		if other != token && HashResponseToken(other) == hash {
			rt.Fatalf("distinct tokens %q and %q collided", token, other)
		}
	})
}
