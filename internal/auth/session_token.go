package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MicahParks/keyfunc"
	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"
)

var (
	ErrInvalidToken = errors.New("invalid session token")
	ErrCannotIssue  = errors.New("session signing secret not configured")
)

// TokenVerifier turns a raw credential into an identity.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (Identity, error)
}

// SessionUser is the user object embedded in a session token.
type SessionUser struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Image string `json:"image,omitempty"`
}

type SessionClaims struct {
	User SessionUser `json:"user"`
	jwt.RegisteredClaims
}

// SessionTokens verifies session JWTs signed with the shared secret (HS256)
// or with a provider key published in a JWKS (RS256, ES256). Only the shared
// secret can issue new tokens.
type SessionTokens struct {
	secret  []byte
	jwks    *keyfunc.JWKS
	methods []string
}

func NewSessionTokens(secret string, jwks *keyfunc.JWKS) (*SessionTokens, error) {
	if secret == "" && jwks == nil {
		return nil, fmt.Errorf("session tokens need a secret or a JWKS")
	}

	st := &SessionTokens{jwks: jwks}
	if secret != "" {
		st.secret = []byte(secret)
		st.methods = append(st.methods, jwt.SigningMethodHS256.Alg())
	}
	if jwks != nil {
		st.methods = append(st.methods, jwt.SigningMethodRS256.Alg(), jwt.SigningMethodES256.Alg())
	}
	return st, nil
}

// LoadJWKS fetches the provider key set and keeps it refreshed in the background.
func LoadJWKS(url string, log *zap.Logger) (*keyfunc.JWKS, error) {
	jwks, err := keyfunc.Get(url, keyfunc.Options{
		RefreshInterval:   time.Hour,
		RefreshRateLimit:  5 * time.Minute,
		RefreshTimeout:    10 * time.Second,
		RefreshUnknownKID: true,
		RefreshErrorHandler: func(err error) {
			log.Warn("jwks refresh failed", zap.String("url", url), zap.Error(err))
		},
	})
	if err != nil {
		return nil, fmt.Errorf("load jwks %s: %w", url, err)
	}
	return jwks, nil
}

func (s *SessionTokens) Verify(_ context.Context, raw string) (Identity, error) {
	if raw == "" {
		return Identity{}, ErrInvalidToken
	}

	var claims SessionClaims
	token, err := jwt.ParseWithClaims(raw, &claims, s.keyFunc, jwt.WithValidMethods(s.methods))
	if err != nil || !token.Valid {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	id := claims.User.ID
	if id == "" {
		id = claims.Subject
	}
	if id == "" {
		return Identity{}, fmt.Errorf("%w: no user in claims", ErrInvalidToken)
	}
	return NewIdentity(id, claims.User.Name, claims.User.Email), nil
}

// CanIssue reports whether Issue will work.
func (s *SessionTokens) CanIssue() bool {
	return len(s.secret) > 0
}

// Issue signs a session token for u valid from now for ttl.
func (s *SessionTokens) Issue(u SessionUser, now time.Time, ttl time.Duration) (string, error) {
	if !s.CanIssue() {
		return "", ErrCannotIssue
	}

	claims := SessionClaims{
		User: u,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *SessionTokens) keyFunc(t *jwt.Token) (interface{}, error) {
	if _, ok := t.Method.(*jwt.SigningMethodHMAC); ok {
		if len(s.secret) == 0 {
			return nil, fmt.Errorf("hmac session tokens are not accepted")
		}
		return s.secret, nil
	}
	if s.jwks == nil {
		return nil, fmt.Errorf("no key set for %s tokens", t.Method.Alg())
	}
	return s.jwks.Keyfunc(t)
}
