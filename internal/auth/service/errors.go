package service

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

var (
	ErrValidation                 = errors.New("validation_error")
	ErrDuplicateEmail             = errors.New("duplicate_email")
	ErrInvalidCredentials         = errors.New("invalid_credentials")
	ErrInvalidTwoFactorCode       = errors.New("invalid_two_factor_code")
	ErrTwoFactorAlreadyEnabled    = errors.New("two_factor_already_enabled")
	ErrTwoFactorNotEnabled        = errors.New("two_factor_not_enabled")
	ErrTwoFactorNotConfigured     = errors.New("two_factor_not_configured")
	ErrInvalidSession             = errors.New("invalid_session")
	ErrExternalVerificationFailed = errors.New("external_verification_failed")
	ErrUserNotFound               = errors.New("user_not_found")
	ErrTooManyAttempts            = errors.New("too_many_attempts")
)

// ValidationError carries one message per offending field, keyed by the
// field's JSON name. It matches ErrValidation under errors.Is.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := slices.Sorted(maps.Keys(e.Fields))
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, e.Fields[k])
	}
	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(parts, "; "))
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// newValidationError is shorthand for a single-field failure.
func newValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}
