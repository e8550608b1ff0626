package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"fishdex/pkg/auth"
)

func newTokens(t *testing.T) *auth.JWTManager {
	t.Helper()
	tokens, err := auth.NewJWTManager(auth.JWTConfig{
		SecretKey: "test-secret",
		Issuer:    "fishdex",
		Audience:  "fishdex-api",
		TokenTTL:  time.Hour,
	})
	require.NoError(t, err)
	return tokens
}

func identityEcho(t *testing.T) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := auth.GetUserFromContext(r.Context())
		require.NoError(t, err)
		w.Header().Set("X-Resolved-User", user.UserID)
		if user.Authenticated {
			w.Header().Set("X-Resolved-Auth", "true")
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestIdentify_BearerToken(t *testing.T) {
	tokens := newTokens(t)
	token, err := tokens.Issue("13800138000", "13800138000")
	require.NoError(t, err)

	handler := Identify(tokens, zap.NewNop())(identityEcho(t))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "13800138000", rec.Header().Get("X-Resolved-User"))
	assert.Equal(t, "true", rec.Header().Get("X-Resolved-Auth"))
}

func TestIdentify_AnonymousHeader(t *testing.T) {
	handler := Identify(newTokens(t), zap.NewNop())(identityEcho(t))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-User-ID", "anon-1")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "anon-1", rec.Header().Get("X-Resolved-User"))
	assert.Empty(t, rec.Header().Get("X-Resolved-Auth"))
}

func TestIdentify_MissingCredentials(t *testing.T) {
	handler := Identify(newTokens(t), zap.NewNop())(identityEcho(t))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestIdentify_MalformedAuthorizationHeader(t *testing.T) {
	handler := Identify(newTokens(t), zap.NewNop())(identityEcho(t))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Token abc")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestIdentify_InvalidToken(t *testing.T) {
	handler := Identify(newTokens(t), zap.NewNop())(identityEcho(t))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
