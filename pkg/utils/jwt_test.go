package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestSignToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("JWT_EXPIRES_IN", "1h")

	tokenString, err := SignToken(42, "ada", "user")
	if err != nil {
		t.Fatalf("SignToken failed: %v", err)
	}
	if tokenString == "" {
		t.Fatal("signed token is empty")
	}

	parsed, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		t.Fatalf("parsing signed token failed: %v", err)
	}
	if !parsed.Valid {
		t.Fatal("signed token did not validate")
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		t.Fatal("claims are not MapClaims")
	}

	if uid, ok := claims["uid"].(float64); !ok || int(uid) != 42 {
		t.Errorf("expected uid claim 42, got %v", claims["uid"])
	}
	if claims["user"] != "ada" {
		t.Errorf("expected user claim 'ada', got %v", claims["user"])
	}
	if claims["role"] != "user" {
		t.Errorf("expected role claim 'user', got %v", claims["role"])
	}

	exp, ok := claims["exp"].(float64)
	if !ok {
		t.Fatal("exp claim missing")
	}
	expiry := time.Unix(int64(exp), 0)
	if until := time.Until(expiry); until > time.Hour || until < 50*time.Minute {
		t.Errorf("expected expiry about an hour out, got %v", until)
	}
}

func TestSignTokenRejectsWrongSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "right-secret")

	tokenString, err := SignToken(1, "bob", "user")
	if err != nil {
		t.Fatalf("SignToken failed: %v", err)
	}

	_, err = jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte("wrong-secret"), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err == nil {
		t.Error("token parsed with the wrong secret")
	}
}

func TestSignTokenMissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	if _, err := SignToken(1, "eve", "user"); err == nil {
		t.Error("expected an error with no JWT_SECRET set")
	}
}
