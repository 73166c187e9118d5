package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/singleflight"

	"teamdocs/internal/model"
	"teamdocs/pkg/logging"
)

const (
	// DefaultHTTPTimeout is the default timeout for backend requests.
	DefaultHTTPTimeout = 30 * time.Second

	// SessionCookieName is the backend session cookie that carries the
	// Drive credentials between the login and callback requests.
	SessionCookieName = "sessionid"

	maxErrorBody = 1024
)

// Client is a backend API client. It is safe for concurrent use.
type Client struct {
	baseURL       *url.URL
	httpClient    *http.Client
	token         string
	sessionCookie string
	logger        *slog.Logger
	validate      *validator.Validate

	// collapses concurrent login URL requests for the same return path
	loginGroup singleflight.Group
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithToken sends token as a bearer credential.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithSessionCookie sends the backend session cookie.
func WithSessionCookie(value string) Option {
	return func(c *Client) {
		c.sessionCookie = value
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a client for the backend at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid API URL %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid API URL %q: scheme must be http or https", baseURL)
	}

	c := &Client{
		baseURL:  u,
		logger:   logging.For("APIClient"),
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, err
		}
		c.httpClient = &http.Client{Timeout: DefaultHTTPTimeout, Jar: jar}
	}
	if c.sessionCookie != "" && c.httpClient.Jar != nil {
		c.httpClient.Jar.SetCookies(u, []*http.Cookie{{Name: SessionCookieName, Value: c.sessionCookie, Path: "/"}})
	}

	return c, nil
}

// BaseURL returns the backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// GetTeam fetches GET /api/teams/{id}/.
func (c *Client) GetTeam(ctx context.Context, teamID int) (*model.Team, error) {
	var team model.Team
	if err := c.getJSON(ctx, fmt.Sprintf("/api/teams/%d/", teamID), nil, &team); err != nil {
		return nil, err
	}
	if err := c.validate.Struct(team); err != nil {
		return nil, fmt.Errorf("%w: team %d: %v", ErrInvalidResponse, teamID, err)
	}
	return &team, nil
}

// ListTasks fetches GET /api/tasks/. The backend returns every task visible
// to the user; filtering by team is the caller's job.
func (c *Client) ListTasks(ctx context.Context) ([]model.Task, error) {
	var tasks []model.Task
	if err := c.getJSON(ctx, "/api/tasks/", nil, &tasks); err != nil {
		return nil, err
	}
	for i := range tasks {
		if err := c.validate.Struct(tasks[i]); err != nil {
			return nil, fmt.Errorf("%w: task at index %d: %v", ErrInvalidResponse, i, err)
		}
	}
	return tasks, nil
}

// ListTeamDocuments fetches GET /api/documents/team/{id}/.
func (c *Client) ListTeamDocuments(ctx context.Context, teamID int) ([]model.Document, error) {
	var docs []model.Document
	if err := c.getJSON(ctx, fmt.Sprintf("/api/documents/team/%d/", teamID), nil, &docs); err != nil {
		return nil, err
	}
	for i := range docs {
		if err := c.validate.Struct(docs[i]); err != nil {
			return nil, fmt.Errorf("%w: document at index %d: %v", ErrInvalidResponse, i, err)
		}
	}
	return docs, nil
}

// DeleteDocument issues DELETE /api/documents/{id}/. Any 2xx is success; the
// body is ignored.
func (c *Client) DeleteDocument(ctx context.Context, documentID int) error {
	resp, err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/documents/%d/", documentID), nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type loginResponse struct {
	AuthURL string `json:"auth_url" validate:"required,url"`
}

// DriveLoginURL fetches GET /api/google-drive/login/ and returns the
// provider's authorization URL. next is forwarded so the backend can send
// the browser back to the right place.
func (c *Client) DriveLoginURL(ctx context.Context, next string) (string, error) {
	v, err, shared := c.loginGroup.Do(next, func() (interface{}, error) {
		query := url.Values{}
		if next != "" {
			query.Set("next", next)
		}
		var body loginResponse
		if err := c.getJSON(ctx, "/api/google-drive/login/", query, &body); err != nil {
			return "", err
		}
		if err := c.validate.Struct(body); err != nil {
			return "", fmt.Errorf("%w: login response: %v", ErrInvalidResponse, err)
		}
		return body.AuthURL, nil
	})
	if shared {
		c.logger.Debug("Login URL request shared with a concurrent caller")
	}
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out interface{}) error {
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	resp, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidResponse, path, err)
	}
	return nil
}

// do sends a request and returns the response for 2xx statuses. Other
// statuses are converted into *HTTPError and the body is closed.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	target := c.baseURL.String() + path

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("Request failed", "method", method, "path", path, "error", err.Error())
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	c.logger.Debug("Request completed",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &HTTPError{
			Method:     method,
			URL:        path,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(raw)),
		}
	}
	return resp, nil
}
