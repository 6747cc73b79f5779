package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIDTokens struct {
	tokens map[string]*fbauth.Token
	calls  int
}

func (f *fakeIDTokens) VerifyIDToken(_ context.Context, idToken string) (*fbauth.Token, error) {
	f.calls++
	if tok, ok := f.tokens[idToken]; ok {
		return tok, nil
	}
	return nil, errors.New("bad id token")
}

func newTestResolver(t *testing.T, bearer TokenVerifier, env string) (*Resolver, *SessionTokens) {
	t.Helper()
	st, err := NewSessionTokens(testSecret, nil)
	require.NoError(t, err)
	return NewResolver(ResolverOptions{
		CookieName:  "better-auth.session",
		Session:     st,
		Bearer:      bearer,
		Environment: env,
	}), st
}

func TestResolver_Cookie(t *testing.T) {
	r, st := newTestResolver(t, nil, "production")
	token, err := st.Issue(SessionUser{ID: "U1", Name: "Ada"}, time.Now(), time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "better-auth.session", Value: token})

	id, ok := r.Resolve(req)
	require.True(t, ok)
	assert.Equal(t, "U1", id.ID)
	assert.Equal(t, "Ada", id.DisplayName)
}

func TestResolver_BadCookieFallsThroughToBearer(t *testing.T) {
	r, st := newTestResolver(t, nil, "production")
	token, err := st.Issue(SessionUser{ID: "U2"}, time.Now(), time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "better-auth.session", Value: "a.b.c"})
	req.Header.Set("Authorization", "bearer "+token)

	id, ok := r.Resolve(req)
	require.True(t, ok)
	assert.Equal(t, "U2", id.ID)
}

func TestResolver_FirebaseBearer(t *testing.T) {
	fake := &fakeIDTokens{tokens: map[string]*fbauth.Token{
		"fb-token": {UID: "fb-uid", Claims: map[string]interface{}{"email": "grace@example.com"}},
	}}
	r, _ := newTestResolver(t, NewFirebaseVerifier(fake), "production")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer fb-token")

	id, ok := r.Resolve(req)
	require.True(t, ok)
	assert.Equal(t, Identity{ID: "fb-uid", DisplayName: "grace@example.com", Email: "grace@example.com"}, id)

	req.Header.Set("Authorization", "Bearer other")
	_, ok = r.Resolve(req)
	assert.False(t, ok)
	assert.Equal(t, 2, fake.calls)
}

func TestAnyVerifier(t *testing.T) {
	fake := &fakeIDTokens{tokens: map[string]*fbauth.Token{"fb-token": {UID: "fb-uid"}}}
	st, err := NewSessionTokens(testSecret, nil)
	require.NoError(t, err)

	session, err := st.Issue(SessionUser{ID: "U1", Name: "Ada"}, time.Now(), time.Hour)
	require.NoError(t, err)

	r, _ := newTestResolver(t, AnyVerifier{NewFirebaseVerifier(fake), st}, "production")
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	req.Header.Set("Authorization", "Bearer fb-token")
	id, ok := r.Resolve(req)
	require.True(t, ok)
	assert.Equal(t, "fb-uid", id.ID)

	req.Header.Set("Authorization", "Bearer "+session)
	id, ok = r.Resolve(req)
	require.True(t, ok)
	assert.Equal(t, "U1", id.ID)

	req.Header.Set("Authorization", "Bearer junk")
	_, ok = r.Resolve(req)
	assert.False(t, ok)

	_, err = AnyVerifier{}.Verify(context.Background(), "x")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestResolver_NoCredentials(t *testing.T) {
	r, _ := newTestResolver(t, nil, "production")

	_, ok := r.Resolve(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.False(t, ok)
}

func TestBearerToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Equal(t, "", bearerToken(req))

	req.Header.Set("Authorization", "Basic abc")
	assert.Equal(t, "", bearerToken(req))

	req.Header.Set("Authorization", "Bearer  tok ")
	assert.Equal(t, "tok", bearerToken(req))
}
