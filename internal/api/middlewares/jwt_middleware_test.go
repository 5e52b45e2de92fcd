package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"planbuddy/pkg/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signTestToken(t *testing.T, secret string, expiry time.Duration) string {
	t.Helper()
	claims := jwt.MapClaims{
		"uid":  float64(42),
		"user": "ada",
		"role": "user",
		"iat":  time.Now().Unix(),
		"exp":  time.Now().Add(expiry).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestJWTMiddlewareAcceptsValidToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	var gotUserID, gotUsername, gotRole interface{}
	handler := JWTMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = r.Context().Value(utils.ContextKey("userId"))
		gotUsername = r.Context().Value(utils.ContextKey("username"))
		gotRole = r.Context().Value(utils.ContextKey("role"))
		w.WriteHeader(http.StatusOK)
	}))

	r := httptest.NewRequest("GET", "/groups/", nil)
	r.AddCookie(&http.Cookie{Name: "Bearer", Value: signTestToken(t, "test-secret", time.Hour)})
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(42), gotUserID, "numeric claims decode as float64")
	assert.Equal(t, "ada", gotUsername)
	assert.Equal(t, "user", gotRole)
}

func TestJWTMiddlewareRejectsMissingCookie(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	handler := JWTMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("the handler must not run without a token")
	}))

	r := httptest.NewRequest("GET", "/groups/", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTMiddlewareRejectsWrongSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	handler := JWTMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("the handler must not run with a forged token")
	}))

	r := httptest.NewRequest("GET", "/groups/", nil)
	r.AddCookie(&http.Cookie{Name: "Bearer", Value: signTestToken(t, "some-other-secret", time.Hour)})
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTMiddlewareRejectsExpiredToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	handler := JWTMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("the handler must not run with an expired token")
	}))

	r := httptest.NewRequest("GET", "/groups/", nil)
	r.AddCookie(&http.Cookie{Name: "Bearer", Value: signTestToken(t, "test-secret", -time.Hour)})
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "token expired")
}
