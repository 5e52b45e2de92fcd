package utils

import (
	"errors"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SignToken creates the signed JWT that rides in the Bearer cookie.
func SignToken(userID int, username, role string) (string, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return "", ErrorHandler(errors.New("JWT_SECRET is not set"), "could not sign token")
	}

	expiry := 24 * time.Hour
	if mins := os.Getenv("JWT_EXPIRES_IN"); mins != "" {
		if parsed, err := time.ParseDuration(mins); err == nil {
			expiry = parsed
		}
	}

	claims := jwt.MapClaims{
		"uid":  userID,
		"user": username,
		"role": role,
		"iat":  time.Now().Unix(),
		"exp":  time.Now().Add(expiry).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", ErrorHandler(err, "failed to sign token")
	}

	return signedToken, nil
}
