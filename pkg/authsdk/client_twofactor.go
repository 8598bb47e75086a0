package authsdk

import (
	"context"
	"net/http"
)

// SetupTwoFactor starts enrollment and returns the QR code and manual key.
// 2FA stays off until EnableTwoFactor succeeds.
func (c *Client) SetupTwoFactor(ctx context.Context) (*TwoFactorSetupResponse, error) {
	var out TwoFactorSetupResponse
	if err := c.call(ctx, http.MethodPost, "/2fa/setup", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// EnableTwoFactor confirms enrollment with a TOTP code. The returned backup
// codes are never shown again.
func (c *Client) EnableTwoFactor(ctx context.Context, code string) (*BackupCodesResponse, error) {
	var out BackupCodesResponse
	if err := c.call(ctx, http.MethodPost, "/2fa/enable", TwoFactorCodeRequest{Code: code}, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyTwoFactor checks a TOTP or backup code. A backup code is spent.
func (c *Client) VerifyTwoFactor(ctx context.Context, code string) (*MessageResponse, error) {
	var out MessageResponse
	if err := c.call(ctx, http.MethodPost, "/2fa/verify", TwoFactorCodeRequest{Code: code}, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// DisableTwoFactor turns 2FA off.
func (c *Client) DisableTwoFactor(ctx context.Context, code string) (*MessageResponse, error) {
	var out MessageResponse
	if err := c.call(ctx, http.MethodPost, "/2fa/disable", TwoFactorCodeRequest{Code: code}, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// RegenerateBackupCodes replaces every backup code.
func (c *Client) RegenerateBackupCodes(ctx context.Context, code string) (*BackupCodesResponse, error) {
	var out BackupCodesResponse
	if err := c.call(ctx, http.MethodPost, "/2fa/regenerate-backup-codes", TwoFactorCodeRequest{Code: code}, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// TwoFactorStatus reports whether 2FA is on and how many backup codes remain.
func (c *Client) TwoFactorStatus(ctx context.Context) (*TwoFactorStatusResponse, error) {
	var out TwoFactorStatusResponse
	if err := c.call(ctx, http.MethodGet, "/2fa/status", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}
