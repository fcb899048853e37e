package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m := NewManager("test-secret", time.Hour)
	require.NoError(t, m.Register("Admin@Example.com", "hunter22", "admin"))
	return m
}

func TestLoginRoundTrip(t *testing.T) {
	m := newTestManager(t)

	token, err := m.Login("admin@example.com", "hunter22")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "Admin@Example.com", claims.Email)
	assert.Equal(t, "admin", claims.Role)
}

func TestLoginEmailCaseAndSpaces(t *testing.T) {
	m := newTestManager(t)
	_, err := m.Login("  ADMIN@example.COM ", "hunter22")
	assert.NoError(t, err)
}

func TestLoginRejectsBadPassword(t *testing.T) {
	m := newTestManager(t)

	_, err := m.Login("admin@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = m.Login("nobody@example.com", "hunter22")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestVerifyRejectsForeignToken(t *testing.T) {
	m := newTestManager(t)
	other := NewManager("another-secret", time.Hour)
	require.NoError(t, other.Register("admin@example.com", "hunter22", "admin"))

	token, err := other.Login("admin@example.com", "hunter22")
	require.NoError(t, err)

	_, err = m.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	m := NewManager("test-secret", -time.Minute)
	require.NoError(t, m.Register("a@b.c", "pw123456", "closer"))

	token, err := m.Login("a@b.c", "pw123456")
	require.NoError(t, err)

	_, err = m.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestMiddleware(t *testing.T) {
	m := newTestManager(t)
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	do := func(authz string) int {
		req := httptest.NewRequest(http.MethodGet, "/api/leads", nil)
		if authz != "" {
			req.Header.Set("Authorization", authz)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusUnauthorized, do(""))
	assert.Equal(t, http.StatusUnauthorized, do("Bearer garbage"))
	assert.Equal(t, http.StatusUnauthorized, do("Basic abc"))

	token, err := m.Login("admin@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, do("Bearer "+token))
}
