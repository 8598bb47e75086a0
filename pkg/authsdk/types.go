package authsdk

import "time"

// ============================================================================
// Auth Request Types
// ============================================================================

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Email          string  `json:"email"                  example:"alice@example.com"`
	Password       string  `json:"password"               example:"Passw0rd!"`
	Name           string  `json:"name"                   example:"Alice"`
	PhoneNumber    *string `json:"phone_number,omitempty" example:"3001234567"`
	RecaptchaToken string  `json:"recaptchaToken"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email          string `json:"email"          example:"alice@example.com"`
	Password       string `json:"password"       example:"Passw0rd!"`
	RecaptchaToken string `json:"recaptchaToken"`
}

// LoginTwoFactorRequest is the body of POST /auth/login-2fa. The credentials
// are sent again because no pending login is kept on the server.
type LoginTwoFactorRequest struct {
	Email         string `json:"email"         example:"alice@example.com"`
	Password      string `json:"password"      example:"Passw0rd!"`
	TwoFactorCode string `json:"twoFactorCode" example:"123456"`
}

// TwoFactorCodeRequest carries a TOTP code or, where allowed, a backup code.
type TwoFactorCodeRequest struct {
	Code string `json:"code" example:"123456"`
}

// UpdateProfileRequest is the body of PUT /auth/profile. Omitted fields are
// left unchanged.
type UpdateProfileRequest struct {
	Email       *string `json:"email,omitempty"`
	Name        *string `json:"name,omitempty"`
	PhoneNumber *string `json:"phone_number,omitempty"`
}

// ============================================================================
// Auth Response Types
// ============================================================================

// MessageResponse is the generic success body. Warning is set when the caller
// should act on something, e.g. after spending a backup code.
type MessageResponse struct {
	Message string `json:"message"`
	Warning string `json:"warning,omitempty"`
}

// LoginResponse is returned by POST /auth/login and POST /auth/login-2fa.
// When Requires2FA is true no session cookies were set.
type LoginResponse struct {
	Message     string `json:"message"`
	Requires2FA bool   `json:"requires2FA,omitempty"`
	Hint        string `json:"hint,omitempty"`
	Warning     string `json:"warning,omitempty"`
}

// UserResponse is the public profile. Credentials and 2FA secrets are never
// included.
type UserResponse struct {
	UserID           int64     `json:"user_id"`
	Email            string    `json:"email"`
	Name             string    `json:"name"`
	PhoneNumber      *string   `json:"phone_number,omitempty"`
	Role             string    `json:"role"`
	IsConfirmed      bool      `json:"is_confirmed"`
	IsActive         bool      `json:"is_active"`
	TwoFactorEnabled bool      `json:"two_factor_enabled"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// ============================================================================
// Two-Factor Types
// ============================================================================

// TwoFactorSetupResponse is returned once by POST /2fa/setup.
type TwoFactorSetupResponse struct {
	Message        string `json:"message"`
	QRCode         string `json:"qrCode"`
	ManualEntryKey string `json:"manualEntryKey"`
	Instructions   string `json:"instructions"`
}

// BackupCodesResponse carries the only copy of a fresh backup code batch.
type BackupCodesResponse struct {
	Message     string   `json:"message"`
	BackupCodes []string `json:"backupCodes"`
	Warning     string   `json:"warning,omitempty"`
}

// TwoFactorStatusResponse is returned by GET /2fa/status.
type TwoFactorStatusResponse struct {
	Enabled          bool `json:"enabled"`
	HasBackupCodes   bool `json:"hasBackupCodes"`
	BackupCodesCount int  `json:"backupCodesCount"`
}

// ============================================================================
// Health Types
// ============================================================================

// HealthResponse represents the response structure for health check endpoints.
// Used by both /livez and /readyz endpoints (readyz includes additional Checks field).
type HealthResponse struct {
	// Status indicates the overall health status (e.g., "ok")
	Status string `json:"status"`

	// Uptime is the service uptime duration as a string (e.g., "1h23m45s")
	Uptime string `json:"uptime,omitempty"`

	// Version is the service version string
	Version string `json:"version,omitempty"`

	// Checks contains readiness check results (only for /readyz)
	Checks *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports the status of each dependency checked by /readyz.
type HealthChecks struct {
	Database string `json:"database"`

	// Cache is omitted when no Redis backend is configured.
	Cache string `json:"cache,omitempty"`
}
