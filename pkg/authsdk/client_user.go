package authsdk

import (
	"context"
	"net/http"
)

// Me returns the signed-in user's profile.
func (c *Client) Me(ctx context.Context) (*UserResponse, error) {
	var out UserResponse
	if err := c.call(ctx, http.MethodGet, "/auth/me", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProfile changes the supplied profile fields and returns the result.
func (c *Client) UpdateProfile(ctx context.Context, req UpdateProfileRequest) (*UserResponse, error) {
	var out UserResponse
	if err := c.call(ctx, http.MethodPut, "/auth/profile", req, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}
