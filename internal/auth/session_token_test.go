package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/MicahParks/keyfunc"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-session-secret"

func TestSessionTokens_IssueAndVerify(t *testing.T) {
	st, err := NewSessionTokens(testSecret, nil)
	require.NoError(t, err)

	token, err := st.Issue(SessionUser{ID: "U1", Name: "Ada", Email: "ada@example.com"}, time.Now(), time.Hour)
	require.NoError(t, err)

	id, err := st.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, Identity{ID: "U1", DisplayName: "Ada", Email: "ada@example.com"}, id)
}

func TestSessionTokens_DisplayNameFallback(t *testing.T) {
	st, err := NewSessionTokens(testSecret, nil)
	require.NoError(t, err)

	token, err := st.Issue(SessionUser{ID: "U1", Email: "ada@example.com"}, time.Now(), time.Hour)
	require.NoError(t, err)
	id, err := st.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", id.DisplayName)

	token, err = st.Issue(SessionUser{ID: "U2"}, time.Now(), time.Hour)
	require.NoError(t, err)
	id, err = st.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "Unknown User", id.DisplayName)
}

func TestSessionTokens_Rejects(t *testing.T) {
	st, err := NewSessionTokens(testSecret, nil)
	require.NoError(t, err)
	other, err := NewSessionTokens("another-secret", nil)
	require.NoError(t, err)

	wrongSecret, err := other.Issue(SessionUser{ID: "U1"}, time.Now(), time.Hour)
	require.NoError(t, err)

	expired, err := st.Issue(SessionUser{ID: "U1"}, time.Now().Add(-2*time.Hour), time.Hour)
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, SessionClaims{User: SessionUser{ID: "U1"}}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noUser, err := jwt.NewWithClaims(jwt.SigningMethodHS256, SessionClaims{}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	tests := map[string]string{
		"empty":        "",
		"garbage":      "not.a.token",
		"wrong secret": wrongSecret,
		"expired":      expired,
		"alg none":     unsigned,
		"no user":      noUser,
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := st.Verify(context.Background(), token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestSessionTokens_JWKS(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	jwks := keyfunc.NewGiven(map[string]keyfunc.GivenKey{
		"k1": keyfunc.NewGivenRSA(&key.PublicKey),
	})
	st, err := NewSessionTokens("", jwks)
	require.NoError(t, err)
	assert.False(t, st.CanIssue())

	claims := SessionClaims{
		User:             SessionUser{ID: "U9", Name: "Grace"},
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	tok.Header["kid"] = "k1"
	signed, err := tok.SignedString(key)
	require.NoError(t, err)

	id, err := st.Verify(context.Background(), signed)
	require.NoError(t, err)
	assert.Equal(t, "U9", id.ID)

	// HMAC tokens are refused when no secret is configured
	hs, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("guess"))
	require.NoError(t, err)
	_, err = st.Verify(context.Background(), hs)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = st.Issue(SessionUser{ID: "U9"}, time.Now(), time.Hour)
	assert.ErrorIs(t, err, ErrCannotIssue)
}

func TestNewSessionTokens_RequiresKeyMaterial(t *testing.T) {
	_, err := NewSessionTokens("", nil)
	assert.Error(t, err)
}
