package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"
)

// IdentityResolver extracts the caller identity from a request.
type IdentityResolver interface {
	Resolve(r *http.Request) (Identity, bool)
}

type ResolverOptions struct {
	CookieName  string
	Session     TokenVerifier
	Bearer      TokenVerifier // defaults to Session
	Environment string
	Logger      *zap.Logger
}

// Resolver tries, in order, the session cookie, a bearer token and, only in
// builds with the devauth tag, the development identity. Every failure falls
// through to the next step.
type Resolver struct {
	cookieName  string
	session     TokenVerifier
	bearer      TokenVerifier
	environment string
	log         *zap.Logger
}

func NewResolver(opts ResolverOptions) *Resolver {
	if opts.Bearer == nil {
		opts.Bearer = opts.Session
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Resolver{
		cookieName:  opts.CookieName,
		session:     opts.Session,
		bearer:      opts.Bearer,
		environment: opts.Environment,
		log:         opts.Logger,
	}
}

func (r *Resolver) Resolve(req *http.Request) (Identity, bool) {
	ctx := req.Context()

	if r.session != nil && r.cookieName != "" {
		if c, err := req.Cookie(r.cookieName); err == nil && c.Value != "" {
			id, err := r.session.Verify(ctx, c.Value)
			if err == nil {
				return id, true
			}
			r.log.Debug("session cookie rejected", zap.Error(err))
		}
	}

	if r.bearer != nil {
		if token := bearerToken(req); token != "" {
			id, err := r.bearer.Verify(ctx, token)
			if err == nil {
				return id, true
			}
			r.log.Debug("bearer token rejected", zap.Error(err))
		}
	}

	return developmentIdentity(r.environment)
}

// bearerToken extracts the Bearer token from the Authorization header
func bearerToken(req *http.Request) string {
	h := strings.TrimSpace(req.Header.Get("Authorization"))
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// AnyVerifier accepts a token that any of its verifiers accepts, tried in order.
// The CLI sends session tokens as bearer credentials next to Firebase ID tokens.
type AnyVerifier []TokenVerifier

func (vs AnyVerifier) Verify(ctx context.Context, token string) (Identity, error) {
	var result *multierror.Error
	for _, v := range vs {
		id, err := v.Verify(ctx, token)
		if err == nil {
			return id, nil
		}
		result = multierror.Append(result, err)
	}
	if result == nil {
		return Identity{}, ErrInvalidToken
	}
	return Identity{}, result
}
