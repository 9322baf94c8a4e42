// Package supabase implements the service.Backend contract over the REST
// surface of a hosted Supabase-compatible project: GoTrue for authentication
// and PostgREST for row-scoped table access. All {data, error} responses are
// mapped to the typed errors of the service package at this boundary.
package supabase

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"taskdeck/internal/config"
	"taskdeck/internal/logger"
	"taskdeck/internal/service"
)

const (
	authPath = "/auth/v1"
	restPath = "/rest/v1"

	// APITimeout is the timeout for backend calls.
	APITimeout = 5 * time.Second

	requestIDHeader = "X-Request-ID"
)

// Client talks to the hosted backend. It owns the persisted session and is
// the single place that refreshes, rotates and discards it; interested
// parties observe rotation through OnSessionChange.
type Client struct {
	http *resty.Client
	cfg  *config.Config

	mu       sync.Mutex
	token    *oauth2.Token
	source   oauth2.TokenSource
	user     *service.User
	onChange []func(*service.Session, *service.User)
}

// New creates a backend client for the project configured in cfg.
func New(cfg *config.Config) *Client {
	c := &Client{cfg: cfg}

	c.http = resty.New().
		SetBaseURL(cfg.BackendURL).
		SetHeader("apikey", cfg.AnonKey).
		SetTimeout(APITimeout)

	c.http.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		req.SetHeader(requestIDHeader, uuid.New().String())
		return nil
	})

	c.http.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		logger.Log.Debugw(
			"backend response",
			"method", resp.Request.Method,
			"url", resp.Request.URL,
			"status", resp.StatusCode(),
			"duration", resp.Time(),
			"request_id", resp.Request.Header.Get(requestIDHeader),
		)
		return nil
	})

	return c
}

// OnSessionChange implements service.Auth.
func (c *Client) OnSessionChange(fn func(*service.Session, *service.User)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChange = append(c.onChange, fn)
}

// sessionResponse is the GoTrue token/signup payload.
type sessionResponse struct {
	AccessToken  string      `json:"access_token"`
	TokenType    string      `json:"token_type"`
	ExpiresIn    int64       `json:"expires_in"`
	RefreshToken string      `json:"refresh_token"`
	User         userPayload `json:"user"`
}

type userPayload struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	UserMetadata struct {
		Username string `json:"username"`
	} `json:"user_metadata"`
}

func (u userPayload) toUser() *service.User {
	return &service.User{
		ID:       u.ID,
		Email:    u.Email,
		Username: u.UserMetadata.Username,
	}
}

func (s sessionResponse) toToken() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  s.AccessToken,
		TokenType:    s.TokenType,
		RefreshToken: s.RefreshToken,
		Expiry:       time.Now().Add(time.Duration(s.ExpiresIn) * time.Second),
	}
}

// errorResponse covers the shapes GoTrue and PostgREST use for errors.
type errorResponse struct {
	Message          string `json:"message"`
	Msg              string `json:"msg"`
	ErrorDescription string `json:"error_description"`
}

func (e errorResponse) text() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.Msg != "":
		return e.Msg
	case e.ErrorDescription != "":
		return e.ErrorDescription
	}
	return ""
}

// errorText extracts a server message from an error response body.
func errorText(resp *resty.Response) string {
	var body errorResponse
	if err := json.Unmarshal(resp.Body(), &body); err == nil {
		if text := body.text(); text != "" {
			return text
		}
	}
	return resp.Status()
}

// restError maps a non-2xx response to the typed error taxonomy.
func restError(resp *resty.Response) error {
	switch resp.StatusCode() {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s", service.ErrUnauthenticated, errorText(resp))
	}
	return fmt.Errorf("%w: %s", service.ErrBackend, errorText(resp))
}

// refreshSource exchanges the stored refresh token for a new session.
// It is always wrapped in an oauth2.ReuseTokenSource, which handles expiry
// checks and caching.
type refreshSource struct {
	c *Client
}

func (r *refreshSource) Token() (*oauth2.Token, error) {
	r.c.mu.Lock()
	current := r.c.token
	r.c.mu.Unlock()

	if current == nil || current.RefreshToken == "" {
		return nil, service.ErrUnauthenticated
	}

	var session sessionResponse
	resp, err := r.c.http.R().
		SetQueryParam("grant_type", "refresh_token").
		SetBody(map[string]string{"refresh_token": current.RefreshToken}).
		SetResult(&session).
		Post(authPath + "/token")
	if err != nil {
		return nil, fmt.Errorf("%w: %s", service.ErrBackend, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: %s", service.ErrUnauthenticated, errorText(resp))
	}

	return session.toToken(), nil
}

// bearer returns a valid access token, refreshing the session when needed.
// A rotated token is persisted and announced before the caller proceeds.
func (c *Client) bearer() (string, error) {
	c.mu.Lock()
	source := c.source
	current := c.token
	c.mu.Unlock()

	if source == nil || current == nil {
		return "", service.ErrUnauthenticated
	}

	token, err := source.Token()
	if err != nil {
		c.dropSession(true)
		return "", fmt.Errorf("%w: session refresh failed", service.ErrUnauthenticated)
	}

	if token.AccessToken != current.AccessToken {
		c.adoptToken(token, true)
	}

	return token.AccessToken, nil
}

// adoptToken installs a session token as current: the user is re-derived
// from the access token claims, the token is persisted, and listeners are
// notified when notify is set.
func (c *Client) adoptToken(token *oauth2.Token, notify bool) *service.User {
	usr, err := userFromAccessToken(token.AccessToken)
	if err != nil {
		logger.Log.Debugw("access token claims unreadable", "error", err)
		usr = &service.User{}
	}

	c.mu.Lock()
	c.token = token
	c.user = usr
	c.source = oauth2.ReuseTokenSource(token, &refreshSource{c: c})
	listeners := append(([]func(*service.Session, *service.User))(nil), c.onChange...)
	c.mu.Unlock()

	if err := c.saveSession(token); err != nil {
		logger.Log.Debugw("session not persisted", "error", err)
	}

	if notify {
		session := sessionOf(token)
		for _, fn := range listeners {
			fn(session, usr)
		}
	}

	return usr
}

// dropSession discards the current session locally and removes the
// persisted file. Listeners receive a nil user when notify is set.
func (c *Client) dropSession(notify bool) {
	c.mu.Lock()
	c.token = nil
	c.source = nil
	c.user = nil
	listeners := append(([]func(*service.Session, *service.User))(nil), c.onChange...)
	c.mu.Unlock()

	if err := c.cfg.RemoveSession(); err != nil && !os.IsNotExist(err) {
		logger.Log.Debugw("session file not removed", "error", err)
	}

	if notify {
		for _, fn := range listeners {
			fn(nil, nil)
		}
	}
}

func sessionOf(token *oauth2.Token) *service.Session {
	return &service.Session{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    token.Expiry,
	}
}

// currentUserID returns the owner id used in row filters.
func (c *Client) currentUserID() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.user == nil || c.user.ID == "" {
		return "", service.ErrUnauthenticated
	}
	return c.user.ID, nil
}

// saveSession writes the session token as JSON with mode 0600.
func (c *Client) saveSession(token *oauth2.Token) error {
	if err := c.cfg.EnsureStateDir(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(c.cfg.SessionPath(), data, 0600)
}

// loadSession reads the persisted session token, if any.
func (c *Client) loadSession() (*oauth2.Token, error) {
	data, err := os.ReadFile(c.cfg.SessionPath())
	if err != nil {
		return nil, err
	}
	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, err
	}
	return &token, nil
}
