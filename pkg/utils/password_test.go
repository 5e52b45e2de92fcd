package utils

import (
	"strings"
	"testing"
)

func TestHashPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret-passphrase")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}

	if err := VerifyPassword("s3cret-passphrase", hash); err != nil {
		t.Errorf("correct password did not verify: %v", err)
	}

	if err := VerifyPassword("wrong-passphrase", hash); err == nil {
		t.Error("wrong password verified")
	}
}

func TestHashPasswordSaltsDiffer(t *testing.T) {
	first, err := HashPassword("same-password")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	second, err := HashPassword("same-password")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}

	if first == second {
		t.Error("two hashes of the same password are identical, salt is not random")
	}

	if err := VerifyPassword("same-password", first); err != nil {
		t.Errorf("first hash did not verify: %v", err)
	}
	if err := VerifyPassword("same-password", second); err != nil {
		t.Errorf("second hash did not verify: %v", err)
	}
}

func TestVerifyPasswordMalformedHash(t *testing.T) {
	tests := []struct {
		name string
		hash string
	}{
		{"empty", ""},
		{"no separator", "justonepart"},
		{"bad base64 salt", "!!!.aGFzaA=="},
		{"too many parts", "a.b.c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := VerifyPassword("anything", tt.hash); err == nil {
				t.Errorf("malformed hash %q verified", tt.hash)
			}
		})
	}
}

func TestHashPasswordFormat(t *testing.T) {
	hash, err := HashPassword("format-check")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}

	parts := strings.Split(hash, ".")
	if len(parts) != 2 {
		t.Fatalf("expected salt.hash format, got %d parts", len(parts))
	}
	if parts[0] == "" || parts[1] == "" {
		t.Error("salt or hash segment is empty")
	}
}
