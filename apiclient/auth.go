package apiclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jrsteele09/site-admin-console/authmodel"
	apperrors "github.com/jrsteele09/site-admin-console/internal/errors"
	"github.com/pkg/errors"
)

const (
	loginPath   = "auth/login"
	logoutPath  = "auth/logout"
	refreshPath = "auth/refresh"
	mePath      = "auth/me"
)

// Login posts the credentials and returns the issued token. The server also
// sets the refresh cookie, which the client's jar keeps. Credentials are
// validated locally first; a 401 unwraps to ErrInvalidCredentials.
func (c *Client) Login(ctx context.Context, creds authmodel.Credentials) (*authmodel.TokenResponse, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}

	var resp authmodel.TokenResponse
	err := c.executeAPIRequest(ctx, apiRequest{
		method:     http.MethodPost,
		path:       loginPath,
		reqBodyObj: creds,
		respObj:    &resp,
	})
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized {
			apiErr.sentinel = apperrors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: %w", err)
	}
	return &resp, nil
}

// Logout asks the server to end the session and expire the refresh cookie.
// The token is read once: the request carries it if one is held and goes out
// anonymously otherwise.
func (c *Client) Logout(ctx context.Context) error {
	raw, _ := c.tokens.Get()
	err := c.executeAPIRequest(ctx, apiRequest{
		method: http.MethodPost,
		path:   logoutPath,
		bearer: raw,
	})
	if err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// Refresh rotates the session using the refresh cookie and returns a new
// access token.
func (c *Client) Refresh(ctx context.Context) (*authmodel.TokenResponse, error) {
	var resp authmodel.TokenResponse
	err := c.executeAPIRequest(ctx, apiRequest{
		method:  http.MethodPost,
		path:    refreshPath,
		respObj: &resp,
	})
	if err != nil {
		return nil, fmt.Errorf("refresh: %w", err)
	}
	return &resp, nil
}

// Me returns the profile of the logged in administrator.
func (c *Client) Me(ctx context.Context) (*authmodel.Profile, error) {
	var profile authmodel.Profile
	err := c.executeAPIRequest(ctx, apiRequest{
		method:        http.MethodGet,
		path:          mePath,
		authenticated: true,
		respObj:       &profile,
	})
	if err != nil {
		return nil, fmt.Errorf("me: %w", err)
	}
	return &profile, nil
}
