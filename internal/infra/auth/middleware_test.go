package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func protectedEcho(t *testing.T, v TokenValidator) http.Handler {
	t.Helper()
	mw := NewMiddleware(v, zap.NewNop())
	return mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := AgentFromContext(r.Context())
		require.True(t, ok, "identity must be in context behind the middleware")
		w.Write([]byte(id))
	}))
}

func TestMiddleware_NoHeader(t *testing.T) {
	v, err := NewBaseValidator("test-secret", time.Hour)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	protectedEcho(t, v).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMiddleware_BadToken(t *testing.T) {
	v, err := NewBaseValidator("test-secret", time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec := httptest.NewRecorder()
	protectedEcho(t, v).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMiddleware_ValidTokenInjectsIdentity(t *testing.T) {
	v, err := NewBaseValidator("test-secret", time.Hour)
	require.NoError(t, err)

	token, err := v.IssueToken("AGENT-001")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	rec := httptest.NewRecorder()
	protectedEcho(t, v).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "AGENT-001", rec.Body.String())
}

func TestAgentFromContext_EmptyContext(t *testing.T) {
	_, ok := AgentFromContext(httptest.NewRequest(http.MethodGet, "/", nil).Context())
	assert.False(t, ok)
}
