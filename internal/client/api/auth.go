package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/officecorner/officecorner-backend-go/internal/client/session"
	"github.com/officecorner/officecorner-backend-go/internal/domain/auth"
	"github.com/officecorner/officecorner-backend-go/internal/domain/user"
)

func toProfile(u user.UserResponse) session.Profile {
	return session.Profile{
		ID:     u.ID,
		Email:  u.Email,
		Name:   u.Name,
		Role:   u.Role,
		Status: u.Status,
	}
}

// Login signs in and replaces the stored session.
func (c *Client) Login(ctx context.Context, email, password string) (session.Profile, error) {
	var resp auth.AuthResponse
	err := c.do(ctx, call{
		method:   http.MethodPost,
		resource: ResourceLogin,
		body:     auth.LoginRequest{Email: email, Password: password},
	}, &resp)
	if err != nil {
		return session.Profile{}, err
	}

	profile := toProfile(resp.User)
	if err := c.store.SetSession(resp.AccessToken, expiresAt(c.now(), resp.AccessTokenExpiresIn), resp.RefreshToken, profile); err != nil {
		return session.Profile{}, err
	}
	return profile, nil
}

// Logout revokes the refresh token on the server and always clears the
// local session, even when the server call fails.
func (c *Client) Logout(ctx context.Context) error {
	refreshToken := c.store.RefreshToken()
	var serverErr error
	if refreshToken != "" {
		serverErr = c.do(ctx, call{
			method:   http.MethodPost,
			resource: ResourceLogout,
			body:     auth.RefreshTokenRequest{RefreshToken: refreshToken},
		}, nil)
	}
	if err := c.store.Clear(); err != nil {
		return err
	}
	return serverErr
}

// Me fetches the current profile and caches it.
func (c *Client) Me(ctx context.Context) (session.Profile, error) {
	var u user.UserResponse
	if err := c.do(ctx, call{method: http.MethodGet, resource: ResourceMe, auth: true}, &u); err != nil {
		return session.Profile{}, err
	}
	profile := toProfile(u)
	if err := c.store.SetProfile(profile); err != nil {
		return session.Profile{}, err
	}
	return profile, nil
}

func (c *Client) refresh(ctx context.Context) error {
	refreshToken := c.store.RefreshToken()
	if refreshToken == "" {
		return ErrSessionExpired
	}

	var resp auth.AccessTokenResponse
	err := c.do(ctx, call{
		method:   http.MethodPost,
		resource: ResourceRefresh,
		body:     auth.RefreshTokenRequest{RefreshToken: refreshToken},
	}, &resp)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
			return ErrSessionExpired
		}
		return err
	}
	return c.store.SetAccessToken(resp.AccessToken, expiresAt(c.now(), resp.AccessTokenExpiresIn))
}
