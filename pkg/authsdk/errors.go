package authsdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/aussiebroadwan/lostfound/pkg/httpx"
)

// Error codes carried in the "code" field of every error body.
const (
	ErrorCodeValidation                 = "validation_error"
	ErrorCodeDuplicateEmail             = "duplicate_email"
	ErrorCodeInvalidCredentials         = "invalid_credentials"
	ErrorCodeInvalidTwoFactorCode       = "invalid_two_factor_code"
	ErrorCodeTwoFactorAlreadyEnabled    = "two_factor_already_enabled"
	ErrorCodeTwoFactorNotEnabled        = "two_factor_not_enabled"
	ErrorCodeTwoFactorNotConfigured     = "two_factor_not_configured"
	ErrorCodeInvalidSession             = "invalid_session"
	ErrorCodeExternalVerificationFailed = "external_verification_failed"
	ErrorCodeUserNotFound               = "user_not_found"
	ErrorCodeTooManyAttempts            = "too_many_attempts"
	ErrorCodeRateLimitExceeded          = "rate_limit_exceeded"
	ErrorCodeInternal                   = "internal_error"
)

// ============================================================================
// APIError
// ============================================================================

// APIError is the error body returned by every endpoint. The server writes it
// with WriteError and the client decodes it back from non-2xx responses.
type APIError struct {
	StatusCode int `json:"-"`

	// Code is a stable machine-readable error code.
	Code string `json:"code"`

	// Message is the user-facing message (Spanish).
	Message string `json:"message"`

	// Details holds per-field validation messages keyed by JSON field name.
	Details map[string]string `json:"details,omitempty"`

	// Debug is the raw internal error, only filled in development.
	Debug string `json:"error,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// WriteError writes e as a JSON response with e.StatusCode.
func (e *APIError) WriteError(w http.ResponseWriter) {
	httpx.WriteJSON(w, e.StatusCode, e)
}

// WithDetails returns a copy of e carrying per-field messages.
func (e *APIError) WithDetails(details map[string]string) *APIError {
	cp := *e
	cp.Details = details
	return &cp
}

// WithDebug returns a copy of e carrying the raw error text.
func (e *APIError) WithDebug(err error) *APIError {
	cp := *e
	if err != nil {
		cp.Debug = err.Error()
	}
	return &cp
}

// IsCode reports whether err is an *APIError with the given code.
func IsCode(err error, code string) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == code
}

// ============================================================================
// Predefined Errors
// ============================================================================

var (
	ErrValidation = &APIError{
		StatusCode: http.StatusBadRequest,
		Code:       ErrorCodeValidation,
		Message:    "Datos de entrada inválidos",
	}

	ErrDuplicateEmail = &APIError{
		StatusCode: http.StatusBadRequest,
		Code:       ErrorCodeDuplicateEmail,
		Message:    "El usuario ya existe",
	}

	// ErrInvalidCredentials is returned for an unknown email and for a wrong
	// password alike.
	ErrInvalidCredentials = &APIError{
		StatusCode: http.StatusUnauthorized,
		Code:       ErrorCodeInvalidCredentials,
		Message:    "Credenciales inválidas",
	}

	// ErrInvalidTwoFactorLogin is the second-factor failure on login-2fa.
	ErrInvalidTwoFactorLogin = &APIError{
		StatusCode: http.StatusUnauthorized,
		Code:       ErrorCodeInvalidTwoFactorCode,
		Message:    "Código de verificación inválido",
	}

	// ErrInvalidTwoFactorCode is the second-factor failure on /2fa routes.
	ErrInvalidTwoFactorCode = &APIError{
		StatusCode: http.StatusBadRequest,
		Code:       ErrorCodeInvalidTwoFactorCode,
		Message:    "Código de verificación inválido",
	}

	ErrTwoFactorAlreadyEnabled = &APIError{
		StatusCode: http.StatusBadRequest,
		Code:       ErrorCodeTwoFactorAlreadyEnabled,
		Message:    "2FA ya está habilitado para este usuario",
	}

	ErrTwoFactorNotEnabled = &APIError{
		StatusCode: http.StatusBadRequest,
		Code:       ErrorCodeTwoFactorNotEnabled,
		Message:    "2FA no está habilitado para este usuario",
	}

	ErrTwoFactorNotConfigured = &APIError{
		StatusCode: http.StatusBadRequest,
		Code:       ErrorCodeTwoFactorNotConfigured,
		Message:    "No se ha configurado un secreto 2FA. Ejecuta primero /2fa/setup",
	}

	// ErrUnauthorized is returned when the access cookie is missing or invalid.
	ErrUnauthorized = &APIError{
		StatusCode: http.StatusUnauthorized,
		Code:       ErrorCodeInvalidSession,
		Message:    "No autorizado",
	}

	ErrMissingRefreshToken = &APIError{
		StatusCode: http.StatusUnauthorized,
		Code:       ErrorCodeInvalidSession,
		Message:    "No hay refresh token",
	}

	ErrInvalidRefreshToken = &APIError{
		StatusCode: http.StatusUnauthorized,
		Code:       ErrorCodeInvalidSession,
		Message:    "Refresh token inválido",
	}

	ErrMissingVerificationToken = &APIError{
		StatusCode: http.StatusBadRequest,
		Code:       ErrorCodeExternalVerificationFailed,
		Message:    "Token de reCAPTCHA requerido",
	}

	ErrExternalVerificationFailed = &APIError{
		StatusCode: http.StatusBadRequest,
		Code:       ErrorCodeExternalVerificationFailed,
		Message:    "Verificación de reCAPTCHA fallida",
	}

	ErrUserNotFound = &APIError{
		StatusCode: http.StatusNotFound,
		Code:       ErrorCodeUserNotFound,
		Message:    "Usuario no encontrado",
	}

	ErrTooManyAttempts = &APIError{
		StatusCode: http.StatusTooManyRequests,
		Code:       ErrorCodeTooManyAttempts,
		Message:    "Demasiados intentos fallidos. Intenta de nuevo más tarde.",
	}

	ErrServerError = &APIError{
		StatusCode: http.StatusInternalServerError,
		Code:       ErrorCodeInternal,
		Message:    "Error en el servidor",
	}
)

// ============================================================================
// Error Parsing Helpers
// ============================================================================

// parseErrorResponse turns a non-2xx response into an *APIError. Returns nil
// for 2xx responses.
func parseErrorResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var apiErr APIError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Code != "" {
		apiErr.StatusCode = resp.StatusCode
		return &apiErr
	}

	return &APIError{
		StatusCode: resp.StatusCode,
		Code:       ErrorCodeInternal,
		Message:    fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	}
}
