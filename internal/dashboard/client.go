package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	projectdomain "github.com/sakura-events/sakura-backend/internal/projects/domain"
	timerdomain "github.com/sakura-events/sakura-backend/internal/timers/domain"
)

// APIError is a failure envelope returned by the server. Message is shown verbatim.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string { return e.Message }

func (e *APIError) Unauthorized() bool { return e.Status == http.StatusUnauthorized }

// Me is the identity the server resolved for the token.
type Me struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
}

type StopRequest struct {
	ID       string    `json:"id"`
	EndTime  time.Time `json:"endTime"`
	Duration float64   `json:"duration"`
}

// Client talks to the Sakura API with a bearer session token.
type Client struct {
	BaseURL string
	Token   string

	http *http.Client
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return &APIError{Status: resp.StatusCode, Message: fmt.Sprintf("unexpected response (%d): %s", resp.StatusCode, strings.TrimSpace(string(raw)))}
	}
	if resp.StatusCode >= http.StatusBadRequest || !env.Success {
		msg := env.Error
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: msg}
	}

	if out == nil || len(env.Data) == 0 {
		return nil
	}
	return json.Unmarshal(env.Data, out)
}

func (c *Client) Session(ctx context.Context) (*Me, error) {
	var out struct {
		User Me `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/auth/session", nil, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

func (c *Client) ListProjects(ctx context.Context) ([]projectdomain.Project, error) {
	var out []projectdomain.Project
	err := c.do(ctx, http.MethodGet, "/api/projects", nil, &out)
	return out, err
}

func (c *Client) GetProject(ctx context.Context, id string) (*projectdomain.Project, error) {
	var out projectdomain.Project
	if err := c.do(ctx, http.MethodGet, "/api/projects/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateProject(ctx context.Context, in projectdomain.CreateInput) (*projectdomain.Project, error) {
	var out projectdomain.Project
	if err := c.do(ctx, http.MethodPost, "/api/projects", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateProject(ctx context.Context, id string, patch projectdomain.Patch) (*projectdomain.Project, error) {
	var out projectdomain.Project
	if err := c.do(ctx, http.MethodPut, "/api/projects/"+url.PathEscape(id), patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteProject(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/projects/"+url.PathEscape(id), nil, nil)
}

func (c *Client) StartTimer(ctx context.Context, projectID string) (*timerdomain.Session, error) {
	var out timerdomain.Session
	body := map[string]string{"projectId": projectID}
	if err := c.do(ctx, http.MethodPost, "/api/projects/sessions", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) StopTimer(ctx context.Context, in StopRequest) (*timerdomain.StopResult, error) {
	var out timerdomain.StopResult
	if err := c.do(ctx, http.MethodPut, "/api/projects/sessions", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ActiveTimer returns the caller's running timer, or nil when none is running.
func (c *Client) ActiveTimer(ctx context.Context) (*timerdomain.ActiveTimer, error) {
	var out timerdomain.ActiveTimer
	err := c.do(ctx, http.MethodGet, "/api/projects/sessions/active", nil, &out)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Sessions(ctx context.Context, projectID string) ([]timerdomain.Session, error) {
	var out []timerdomain.Session
	err := c.do(ctx, http.MethodGet, "/api/projects/"+url.PathEscape(projectID)+"/sessions", nil, &out)
	return out, err
}
