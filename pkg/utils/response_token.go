package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
)

// GenerateResponseToken mints a single-use response token. The raw
// value goes into the email link and is never stored; only the
// returned sha256 hash may be persisted.
func GenerateResponseToken() (string, string, error) {
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", "", ErrorHandler(err, "failed to generate response token")
	}

	rawToken := hex.EncodeToString(tokenBytes)
	return rawToken, HashResponseToken(rawToken), nil
}

// HashResponseToken maps a raw token to its stored form.
func HashResponseToken(rawToken string) string {
	hash := sha256.Sum256([]byte(rawToken))
	return hex.EncodeToString(hash[:])
}
