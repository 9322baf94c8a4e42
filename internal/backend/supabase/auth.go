package supabase

import (
	"context"
	"fmt"
	"net/http"

	jwt "github.com/golang-jwt/jwt/v4"

	"taskdeck/internal/logger"
	"taskdeck/internal/service"
)

// accessClaims are the GoTrue access token claims the client cares about.
// The token is parsed unverified: the client holds no signing key and does
// not need one, the backend verifies every request itself.
type accessClaims struct {
	jwt.RegisteredClaims
	Email        string `json:"email"`
	UserMetadata struct {
		Username string `json:"username"`
	} `json:"user_metadata"`
}

func userFromAccessToken(accessToken string) (*service.User, error) {
	claims := &accessClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, claims); err != nil {
		return nil, err
	}

	return &service.User{
		ID:       claims.Subject,
		Email:    claims.Email,
		Username: claims.UserMetadata.Username,
	}, nil
}

// RestoreSession implements service.Auth. It loads the persisted session,
// refreshing it through the token source when stale, and derives the current
// user from the access token claims.
func (c *Client) RestoreSession(ctx context.Context) (*service.User, error) {
	token, err := c.loadSession()
	if err != nil {
		return nil, fmt.Errorf("%w: no stored session", service.ErrUnauthenticated)
	}
	if token.RefreshToken == "" {
		return nil, fmt.Errorf("%w: stored session is unusable", service.ErrUnauthenticated)
	}

	c.adoptToken(token, false)

	// Force a refresh right away if the stored token already expired.
	if _, err := c.bearer(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.user == nil {
		return nil, service.ErrUnauthenticated
	}
	current := *c.user
	return &current, nil
}

// SignIn implements service.Auth.
func (c *Client) SignIn(ctx context.Context, email, password string) (*service.User, error) {
	var session sessionResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("grant_type", "password").
		SetBody(map[string]string{"email": email, "password": password}).
		SetResult(&session).
		Post(authPath + "/token")
	if err != nil {
		return nil, fmt.Errorf("%w: %s", service.ErrBackend, err)
	}
	if resp.IsError() {
		if resp.StatusCode() == http.StatusBadRequest || resp.StatusCode() == http.StatusUnauthorized {
			return nil, service.ErrInvalidCredentials
		}
		return nil, restError(resp)
	}

	return c.adoptToken(session.toToken(), true), nil
}

// ResolveEmail implements service.Auth. The lookup runs against the public
// profiles table with the anonymous key; an unknown username is reported as
// invalid credentials so the caller leaks nothing.
func (c *Client) ResolveEmail(ctx context.Context, username string) (string, error) {
	var rows []struct {
		Email string `json:"email"`
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+c.cfg.AnonKey).
		SetQueryParam("select", "email").
		SetQueryParam("username", "ilike."+username).
		SetQueryParam("limit", "1").
		SetResult(&rows).
		Get(restPath + "/profiles")
	if err != nil {
		return "", fmt.Errorf("%w: %s", service.ErrBackend, err)
	}
	if resp.IsError() {
		return "", restError(resp)
	}
	if len(rows) == 0 || rows[0].Email == "" {
		return "", fmt.Errorf("%w: unknown username", service.ErrInvalidCredentials)
	}

	return rows[0].Email, nil
}

// SignUp implements service.Auth.
func (c *Client) SignUp(ctx context.Context, email, password, username string) (service.SignupResult, error) {
	body := map[string]any{
		"email":    email,
		"password": password,
	}
	if username != "" {
		body["data"] = map[string]string{"username": username}
	}

	var session sessionResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&session).
		Post(authPath + "/signup")
	if err != nil {
		return service.SignupResult{}, fmt.Errorf("%w: %s", service.ErrBackend, err)
	}
	if resp.IsError() {
		return service.SignupResult{}, fmt.Errorf("%w: %s", service.ErrRegistration, errorText(resp))
	}

	// No session in the response means the backend wants the email address
	// verified before it will authenticate the user.
	if session.AccessToken == "" {
		return service.SignupResult{
			User:                session.User.toUser(),
			PendingVerification: true,
		}, nil
	}

	usr := c.adoptToken(session.toToken(), true)
	c.createProfile(ctx, usr, username)

	return service.SignupResult{User: usr}, nil
}

// createProfile inserts the profiles row backing username login.
// Best effort: a failure here leaves the account usable by email.
func (c *Client) createProfile(ctx context.Context, usr *service.User, username string) {
	if username == "" || usr == nil || usr.ID == "" {
		return
	}

	token, err := c.bearer()
	if err != nil {
		return
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+token).
		SetBody(map[string]string{
			"id":       usr.ID,
			"username": username,
			"email":    usr.Email,
		}).
		Post(restPath + "/profiles")
	if err != nil || resp.IsError() {
		logger.Log.Debugw("profile row not created", "username", username)
	}
}

// SignOut implements service.Auth.
func (c *Client) SignOut(ctx context.Context) error {
	token, err := c.bearer()
	if err != nil {
		return fmt.Errorf("%w: %s", service.ErrSignOut, err)
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+token).
		Post(authPath + "/logout")
	if err != nil {
		return fmt.Errorf("%w: %s", service.ErrSignOut, err)
	}
	if resp.IsError() {
		return fmt.Errorf("%w: %s", service.ErrSignOut, errorText(resp))
	}

	c.dropSession(true)
	return nil
}

// RequestPasswordReset implements service.Auth. Every failure collapses into
// ErrResetRequest so callers can never tell a rate limit from an unknown
// address.
func (c *Client) RequestPasswordReset(ctx context.Context, email string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("redirect_to", c.cfg.ResetRedirectURL).
		SetBody(map[string]string{"email": email}).
		Post(authPath + "/recover")
	if err != nil || resp.IsError() {
		return service.ErrResetRequest
	}
	return nil
}

// VerifyRecovery implements service.Auth. The returned token authorizes a
// password change only and is never adopted as the current session.
func (c *Client) VerifyRecovery(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", service.ErrLinkInvalid
	}

	var session sessionResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"type": "recovery", "token": token}).
		SetResult(&session).
		Post(authPath + "/verify")
	if err != nil {
		return "", fmt.Errorf("%w: %s", service.ErrBackend, err)
	}
	if resp.IsError() || session.AccessToken == "" {
		return "", service.ErrLinkInvalid
	}

	return session.AccessToken, nil
}

// UpdatePassword implements service.Auth.
func (c *Client) UpdatePassword(ctx context.Context, scopedToken, newPassword string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+scopedToken).
		SetBody(map[string]string{"password": newPassword}).
		Put(authPath + "/user")
	if err != nil {
		return fmt.Errorf("%w: %s", service.ErrBackend, err)
	}
	if resp.IsError() {
		return restError(resp)
	}
	return nil
}

// SignOutScoped implements service.Auth.
func (c *Client) SignOutScoped(ctx context.Context, scopedToken string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+scopedToken).
		Post(authPath + "/logout")
	if err != nil {
		return fmt.Errorf("%w: %s", service.ErrBackend, err)
	}
	if resp.IsError() {
		return restError(resp)
	}
	return nil
}
