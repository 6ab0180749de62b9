package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter2!")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2!", hash)

	assert.True(t, CheckPassword(hash, "hunter2!"))
	assert.False(t, CheckPassword(hash, "wrong"))
	assert.False(t, CheckPassword("not a hash", "hunter2!"))
}

func TestTokensRoundTrip(t *testing.T) {
	tokens := NewTokens("test-secret", time.Hour)

	signed, err := tokens.Sign(42, "alice@example.com")
	require.NoError(t, err)

	userID, email, err := tokens.Parse(signed)
	require.NoError(t, err)
	assert.Equal(t, int64(42), userID)
	assert.Equal(t, "alice@example.com", email)
}

func TestTokensRejections(t *testing.T) {
	tokens := NewTokens("test-secret", time.Hour)

	_, _, err := tokens.Parse("garbage")
	assert.Error(t, err)

	otherSecret := NewTokens("other-secret", time.Hour)
	signed, err := otherSecret.Sign(1, "a@b.com")
	require.NoError(t, err)
	_, _, err = tokens.Parse(signed)
	assert.Error(t, err, "token signed with a different secret")

	expired := NewTokens("test-secret", -time.Minute)
	signed, err = expired.Sign(1, "a@b.com")
	require.NoError(t, err)
	_, _, err = tokens.Parse(signed)
	assert.Error(t, err, "expired token")
}

func TestMiddleware(t *testing.T) {
	tokens := NewTokens("test-secret", time.Hour)
	var gotSession *Session
	handler := Middleware(tokens)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSession = SessionFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("valid token", func(t *testing.T) {
		signed, err := tokens.Sign(7, "u@example.com")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+signed)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, gotSession)
		assert.Equal(t, int64(7), gotSession.UserID)
		assert.Equal(t, "u@example.com", gotSession.Email)
	})

	t.Run("missing header", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("bad token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer nope")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
