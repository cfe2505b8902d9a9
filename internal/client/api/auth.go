package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/iudanet/winelog/pkg/api"
)

// ErrNoRedirect is returned when the OAuth callback does not redirect
var ErrNoRedirect = errors.New("callback did not redirect")

// LoginURL returns the provider authorization URL for platform (web, ios, android)
func (c *Client) LoginURL(ctx context.Context, platform string) (string, error) {
	var resp api.LoginURLResponse
	path := "/api/v1/auth/kakao/login?platform=" + url.QueryEscape(platform)
	if err := c.doRequest(ctx, false, http.MethodGet, path, nil, &resp); err != nil {
		return "", err
	}
	if resp.LoginURL == "" {
		return "", fmt.Errorf("empty login url")
	}
	return resp.LoginURL, nil
}

// ExchangeCode hands the authorization code to the backend and returns the redirect
// target. Session cookies set on the redirect land in the jar of the HTTP client;
// native clients read the tokens from the returned deep link.
func (c *Client) ExchangeCode(ctx context.Context, code, state string) (*url.URL, error) {
	q := url.Values{"code": {code}}
	if state != "" {
		q.Set("state", state)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/auth/kakao/callback?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	noRedirect := *c.httpClient
	noRedirect.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}

	resp, err := c.send(httpRequester{hc: &noRedirect}, req, false, nil)
	if err != nil {
		return nil, err
	}

	loc, err := resp.Location()
	if err != nil {
		if errors.Is(err, http.ErrNoLocation) {
			return nil, ErrNoRedirect
		}
		return nil, fmt.Errorf("invalid redirect: %w", err)
	}
	return loc, nil
}

// Refresh exchanges refreshToken for a new access token.
// The backend returns the token in the access token cookie; a token in the body wins.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*api.TokenResponse, error) {
	path := "/api/v1/auth/refresh?refresh_token=" + url.QueryEscape(refreshToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	var tokens api.TokenResponse
	resp, err := c.send(c.requester, req, false, &tokens)
	if err != nil {
		return nil, err
	}

	if tokens.AccessToken == "" {
		for _, ck := range resp.Cookies() {
			if ck.Name == accessCookie {
				tokens.AccessToken = ck.Value
			}
		}
	}
	if tokens.AccessToken == "" {
		return nil, fmt.Errorf("refresh returned no access token")
	}
	if tokens.RefreshToken == "" {
		tokens.RefreshToken = refreshToken
	}
	return &tokens, nil
}

// Logout ends the session on the server
func (c *Client) Logout(ctx context.Context) error {
	var resp api.CallbackResponse
	return c.doRequest(ctx, true, http.MethodPost, "/api/v1/auth/logout", nil, &resp)
}

// Me returns the profile of the current user
func (c *Client) Me(ctx context.Context) (*api.User, error) {
	var user api.User
	if err := c.doRequest(ctx, true, http.MethodGet, "/api/v1/auth/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
