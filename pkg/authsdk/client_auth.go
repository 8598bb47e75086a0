package authsdk

import (
	"context"
	"net/http"
)

// Register creates an account. It does not sign in.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*MessageResponse, error) {
	var out MessageResponse
	if err := c.call(ctx, http.MethodPost, "/auth/register", req, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login performs the first factor. When the account has 2FA enabled the
// response has Requires2FA set and no cookies are stored; follow up with
// LoginWithTwoFactor.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	var out LoginResponse
	if err := c.call(ctx, http.MethodPost, "/auth/login", req, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// LoginWithTwoFactor completes a login with a TOTP or backup code.
func (c *Client) LoginWithTwoFactor(ctx context.Context, req LoginTwoFactorRequest) (*LoginResponse, error) {
	var out LoginResponse
	if err := c.call(ctx, http.MethodPost, "/auth/login-2fa", req, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// RefreshToken exchanges the refresh cookie for a new access cookie.
func (c *Client) RefreshToken(ctx context.Context) (*MessageResponse, error) {
	var out MessageResponse
	if err := c.call(ctx, http.MethodPost, "/auth/refresh-token", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout asks the service to clear both session cookies.
func (c *Client) Logout(ctx context.Context) (*MessageResponse, error) {
	var out MessageResponse
	if err := c.call(ctx, http.MethodPost, "/auth/logout", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}
