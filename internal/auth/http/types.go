package http

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/sakura-events/sakura-backend/internal/auth"
	"github.com/sakura-events/sakura-backend/internal/users"
)

const (
	slackAuthURL     = "https://slack.com/openid/connect/authorize"
	slackTokenURL    = "https://slack.com/api/openid.connect.token"
	slackUserInfoURL = "https://slack.com/api/openid.connect.userInfo"

	stateCookie = "sakura.oauth_state"
	stateTTL    = 10 * time.Minute
)

// SlackEndpoint is Slack's OpenID Connect endpoint.
var SlackEndpoint = oauth2.Endpoint{
	AuthURL:   slackAuthURL,
	TokenURL:  slackTokenURL,
	AuthStyle: oauth2.AuthStyleInParams,
}

type UserStore interface {
	EnsureUser(ctx context.Context, u users.UpsertUser) (string, error)
	GetByExternalID(ctx context.Context, externalID string) (*users.User, error)
}

type CookieConfig struct {
	Name   string
	TTL    time.Duration
	Secure bool
}

type Options struct {
	ClientID      string
	ClientSecret  string
	PublicBaseURL string
	Endpoint      oauth2.Endpoint // defaults to SlackEndpoint
	UserInfoURL   string          // defaults to Slack's userInfo
	Cookie        CookieConfig
	Users         UserStore
	Tokens        *auth.SessionTokens
	Clock         clock.Clock
	Logger        *zap.Logger
}

// Handler serves sign-in, session and logout.
type Handler struct {
	oauth       *oauth2.Config // nil when Slack sign-in is not configured
	userInfoURL string
	baseURL     string
	cookie      CookieConfig
	users       UserStore
	tokens      *auth.SessionTokens
	clock       clock.Clock
	log         *zap.Logger
}

func New(opts Options) *Handler {
	h := &Handler{
		userInfoURL: opts.UserInfoURL,
		baseURL:     opts.PublicBaseURL,
		cookie:      opts.Cookie,
		users:       opts.Users,
		tokens:      opts.Tokens,
		clock:       opts.Clock,
		log:         opts.Logger,
	}
	if h.userInfoURL == "" {
		h.userInfoURL = slackUserInfoURL
	}
	if h.clock == nil {
		h.clock = clock.New()
	}
	if h.log == nil {
		h.log = zap.NewNop()
	}

	if opts.ClientID != "" && opts.ClientSecret != "" && opts.Tokens != nil && opts.Tokens.CanIssue() {
		endpoint := opts.Endpoint
		if endpoint.AuthURL == "" {
			endpoint = SlackEndpoint
		}
		h.oauth = &oauth2.Config{
			ClientID:     opts.ClientID,
			ClientSecret: opts.ClientSecret,
			Endpoint:     endpoint,
			RedirectURL:  opts.PublicBaseURL + "/api/auth/slack/callback",
			Scopes:       []string{"openid", "email", "profile"},
		}
	}
	return h
}

// SlackEnabled reports whether the sign-in routes are served.
func (h *Handler) SlackEnabled() bool {
	return h.oauth != nil
}

type slackUserInfo struct {
	OK      bool   `json:"ok"`
	Error   string `json:"error"`
	Sub     string `json:"sub"`
	UserID  string `json:"https://slack.com/user_id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

type sessionResponse struct {
	User    auth.Identity `json:"user"`
	Profile *users.User   `json:"profile,omitempty"`
}
