package http

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	httpapi "github.com/sakura-events/sakura-backend/internal/api/http"
	"github.com/sakura-events/sakura-backend/internal/auth"
	"github.com/sakura-events/sakura-backend/internal/users"
)

// SlackLogin redirects the browser to Slack's consent screen.
func (h *Handler) SlackLogin(c *gin.Context) {
	state, err := newState()
	if err != nil {
		httpapi.Error(c, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(stateCookie, state, int(stateTTL.Seconds()), "/api/auth", "", h.cookie.Secure, true)
	c.Redirect(http.StatusFound, h.oauth.AuthCodeURL(state))
}

// SlackCallback finishes sign-in: exchange the code, read the profile,
// record the user and set the session cookie.
func (h *Handler) SlackCallback(c *gin.Context) {
	ctx := c.Request.Context()

	want, err := c.Cookie(stateCookie)
	got := c.Query("state")
	if err != nil || want == "" || subtle.ConstantTimeCompare([]byte(want), []byte(got)) != 1 {
		httpapi.Fail(c, http.StatusBadRequest, "invalid sign-in state")
		return
	}
	c.SetCookie(stateCookie, "", -1, "/api/auth", "", h.cookie.Secure, true)

	if e := c.Query("error"); e != "" {
		httpapi.Fail(c, http.StatusUnauthorized, "Slack sign-in failed: "+e)
		return
	}

	tok, err := h.oauth.Exchange(ctx, c.Query("code"))
	if err != nil {
		h.log.Warn("slack code exchange", zap.Error(err))
		httpapi.Fail(c, http.StatusBadGateway, "Slack sign-in failed")
		return
	}

	info, err := h.fetchUserInfo(c, tok)
	if err != nil {
		h.log.Warn("slack userinfo", zap.Error(err))
		httpapi.Fail(c, http.StatusBadGateway, "Slack sign-in failed")
		return
	}

	id := info.UserID
	if id == "" {
		id = info.Sub
	}
	identity := auth.NewIdentity(id, info.Name, info.Email)

	if _, err := h.users.EnsureUser(ctx, users.UpsertUser{
		ExternalID:  identity.ID,
		Email:       identity.Email,
		DisplayName: info.Name,
		PhotoURL:    info.Picture,
		Login:       true,
	}); err != nil {
		httpapi.Error(c, err)
		return
	}

	session, err := h.tokens.Issue(auth.SessionUser{
		ID:    identity.ID,
		Name:  info.Name,
		Email: identity.Email,
		Image: info.Picture,
	}, h.clock.Now(), h.cookie.TTL)
	if err != nil {
		httpapi.Error(c, err)
		return
	}

	h.setSessionCookie(c, session, int(h.cookie.TTL.Seconds()))
	h.log.Info("signed in", zap.String("user_id", identity.ID))
	c.Redirect(http.StatusFound, h.baseURL+"/dashboard")
}

// Session returns the identity resolved for the request.
func (h *Handler) Session(c *gin.Context) {
	id, ok := auth.IdentityFrom(c)
	if !ok {
		httpapi.Error(c, auth.ErrUnauthenticated)
		return
	}

	resp := sessionResponse{User: id}
	if h.users != nil {
		profile, err := h.users.GetByExternalID(c.Request.Context(), id.ID)
		switch {
		case err == nil:
			resp.Profile = profile
		case !errors.Is(err, users.ErrNotFound):
			h.log.Warn("load profile", zap.String("user_id", id.ID), zap.Error(err))
		}
	}
	httpapi.Success(c, http.StatusOK, resp)
}

func (h *Handler) Logout(c *gin.Context) {
	h.setSessionCookie(c, "", -1)
	httpapi.Success(c, http.StatusOK, nil)
}

func (h *Handler) setSessionCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, value, maxAge, "/", "", h.cookie.Secure, true)
}

func (h *Handler) fetchUserInfo(c *gin.Context, tok *oauth2.Token) (*slackUserInfo, error) {
	ctx := c.Request.Context()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.userInfoURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := h.oauth.Client(ctx, tok).Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo status %d", resp.StatusCode)
	}

	var info slackUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decode userinfo: %w", err)
	}
	if !info.OK {
		return nil, fmt.Errorf("userinfo: %s", info.Error)
	}
	if info.UserID == "" && info.Sub == "" {
		return nil, fmt.Errorf("userinfo: no user id")
	}
	return &info, nil
}

func newState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
