package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/lostfound/internal/auth/service"
	"github.com/aussiebroadwan/lostfound/pkg/authsdk"
	"github.com/aussiebroadwan/lostfound/pkg/slogx"
)

// serviceErrors maps service sentinels to their response. Second-factor
// failures are 400 here, login-2fa overrides that with 401.
var serviceErrors = []struct {
	target error
	resp   *authsdk.APIError
}{
	{service.ErrDuplicateEmail, authsdk.ErrDuplicateEmail},
	{service.ErrInvalidCredentials, authsdk.ErrInvalidCredentials},
	{service.ErrInvalidTwoFactorCode, authsdk.ErrInvalidTwoFactorCode},
	{service.ErrTwoFactorAlreadyEnabled, authsdk.ErrTwoFactorAlreadyEnabled},
	{service.ErrTwoFactorNotEnabled, authsdk.ErrTwoFactorNotEnabled},
	{service.ErrTwoFactorNotConfigured, authsdk.ErrTwoFactorNotConfigured},
	{service.ErrInvalidSession, authsdk.ErrInvalidRefreshToken},
	{service.ErrExternalVerificationFailed, authsdk.ErrExternalVerificationFailed},
	{service.ErrUserNotFound, authsdk.ErrUserNotFound},
	{service.ErrTooManyAttempts, authsdk.ErrTooManyAttempts},
}

// writeError writes the response for err. Unknown errors are logged and
// become a 500, with the raw message attached only when dev is set.
func writeError(w http.ResponseWriter, r *http.Request, err error, dev bool) {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		authsdk.ErrValidation.WithDetails(verr.Fields).WriteError(w)
		return
	}

	for _, m := range serviceErrors {
		if errors.Is(err, m.target) {
			m.resp.WriteError(w)
			return
		}
	}

	slogx.FromContext(r.Context()).Error("request failed", "err", err)
	resp := authsdk.ErrServerError
	if dev {
		resp = resp.WithDebug(err)
	}
	resp.WriteError(w)
}

// writeDecodeError reports a malformed JSON body as a validation error.
func writeDecodeError(w http.ResponseWriter, err error) {
	authsdk.ErrValidation.WithDetails(map[string]string{"body": err.Error()}).WriteError(w)
}
