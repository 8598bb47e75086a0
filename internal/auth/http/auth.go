package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/aussiebroadwan/lostfound/internal/auth/service"
	"github.com/aussiebroadwan/lostfound/internal/auth/verification"
	"github.com/aussiebroadwan/lostfound/pkg/authsdk"
	"github.com/aussiebroadwan/lostfound/pkg/httpx"
)

const (
	loginHint           = "Ingresa tu código de 6 dígitos de la aplicación de autenticación o un código de respaldo"
	loginBackupCodeUsed = "Has usado un código de respaldo. Considera regenerar nuevos códigos desde tu perfil."
	registerSuccess     = "Usuario registrado exitosamente"
	loginSuccess        = "Inicio de sesión exitoso"
	loginCredentialsOK  = "Credenciales válidas"
	refreshSuccess      = "Access token refrescado"
	logoutSuccess       = "Sesión cerrada exitosamente"
)

// AuthHandler serves registration, login, refresh and logout.
type AuthHandler struct {
	AuthService *service.AuthService
	Verifier    verification.Verifier
	Dev         bool
}

// verify runs the bot check for register and login.
func (h *AuthHandler) verify(w http.ResponseWriter, r *http.Request, token string) bool {
	err := h.Verifier.Verify(r.Context(), token, httpx.IPKeyExtractor(r))
	switch {
	case err == nil:
		return true
	case errors.Is(err, verification.ErrMissingToken):
		authsdk.ErrMissingVerificationToken.WriteError(w)
	case errors.Is(err, verification.ErrRejected):
		writeError(w, r, fmt.Errorf("%w: %v", service.ErrExternalVerificationFailed, err), h.Dev)
	default:
		writeError(w, r, fmt.Errorf("verification provider unavailable: %w", err), h.Dev)
	}
	return false
}

// HandleRegister handles POST /auth/register
//
//	@Summary		Register a new user
//	@Description	Creates an account with the default role. Requires a reCAPTCHA token. Does not sign in.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.RegisterRequest	true	"Registration data"
//	@Success		201		{object}	authsdk.MessageResponse	"User created"
//	@Failure		400		{object}	authsdk.APIError		"Validation error, duplicate email or failed verification"
//	@Failure		429		{object}	authsdk.APIError		"Rate limit exceeded"
//	@Failure		500		{object}	authsdk.APIError		"Internal server error"
//	@Router			/auth/register [post].
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req authsdk.RegisterRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}
	if !h.verify(w, r, req.RecaptchaToken) {
		return
	}

	_, err := h.AuthService.Register(r.Context(), service.RegisterInput{
		Email:       req.Email,
		Password:    req.Password,
		Name:        req.Name,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		writeError(w, r, err, h.Dev)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, authsdk.MessageResponse{Message: registerSuccess})
}

// HandleLogin handles POST /auth/login
//
//	@Summary		First-factor login
//	@Description	Checks email and password. Accounts without 2FA receive the session cookies.
//	@Description	Accounts with 2FA get requires2FA=true and no cookies; continue with /auth/login-2fa.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.LoginRequest	true	"Credentials"
//	@Success		200		{object}	authsdk.LoginResponse	"Signed in, or second factor required"
//	@Failure		400		{object}	authsdk.APIError		"Validation error or failed verification"
//	@Failure		401		{object}	authsdk.APIError		"Invalid credentials"
//	@Failure		429		{object}	authsdk.APIError		"Rate limit exceeded"
//	@Failure		500		{object}	authsdk.APIError		"Internal server error"
//	@Router			/auth/login [post].
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req authsdk.LoginRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}
	if !h.verify(w, r, req.RecaptchaToken) {
		return
	}

	res, err := h.AuthService.Login(r.Context(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeError(w, r, err, h.Dev)
		return
	}

	if res.RequiresTwoFactor {
		httpx.WriteJSON(w, http.StatusOK, authsdk.LoginResponse{
			Message:     loginCredentialsOK,
			Requires2FA: true,
			Hint:        loginHint,
		})
		return
	}

	setSessionCookies(w, res.Session)
	httpx.WriteJSON(w, http.StatusOK, authsdk.LoginResponse{Message: loginSuccess})
}

// HandleLoginTwoFactor handles POST /auth/login-2fa
//
//	@Summary		Second-factor login
//	@Description	Re-checks email and password, then a TOTP code (±2 steps) or an unused backup code.
//	@Description	A backup code is spent and the response carries a warning.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.LoginTwoFactorRequest	true	"Credentials and code"
//	@Success		200		{object}	authsdk.LoginResponse			"Signed in"
//	@Failure		400		{object}	authsdk.APIError				"Validation error or 2FA not enabled"
//	@Failure		401		{object}	authsdk.APIError				"Invalid credentials or code"
//	@Failure		429		{object}	authsdk.APIError				"Too many attempts"
//	@Failure		500		{object}	authsdk.APIError				"Internal server error"
//	@Router			/auth/login-2fa [post].
func (h *AuthHandler) HandleLoginTwoFactor(w http.ResponseWriter, r *http.Request) {
	var req authsdk.LoginTwoFactorRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	res, err := h.AuthService.LoginWithTwoFactor(r.Context(), service.SecondFactorLoginInput{
		Email:         req.Email,
		Password:      req.Password,
		TwoFactorCode: req.TwoFactorCode,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidTwoFactorCode) {
			authsdk.ErrInvalidTwoFactorLogin.WriteError(w)
			return
		}
		writeError(w, r, err, h.Dev)
		return
	}

	resp := authsdk.LoginResponse{Message: loginSuccess}
	if res.BackupCodeUsed {
		resp.Warning = loginBackupCodeUsed
	}

	setSessionCookies(w, res.Session)
	httpx.WriteJSON(w, http.StatusOK, resp)
}

// HandleRefresh handles POST /auth/refresh-token
//
//	@Summary		Refresh the access token
//	@Description	Uses the refreshToken cookie to set a new accessToken cookie. The refresh token is not rotated.
//	@Tags			Auth
//	@Produce		json
//	@Success		200	{object}	authsdk.MessageResponse	"Access cookie refreshed"
//	@Failure		401	{object}	authsdk.APIError		"Missing, invalid or expired refresh token"
//	@Failure		500	{object}	authsdk.APIError		"Internal server error"
//	@Router			/auth/refresh-token [post].
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(authsdk.RefreshTokenCookie)
	if err != nil || cookie.Value == "" {
		authsdk.ErrMissingRefreshToken.WriteError(w)
		return
	}

	token, expires, err := h.AuthService.Refresh(r.Context(), cookie.Value)
	if err != nil {
		writeError(w, r, err, h.Dev)
		return
	}

	setAccessCookie(w, token, expires)
	httpx.WriteJSON(w, http.StatusOK, authsdk.MessageResponse{Message: refreshSuccess})
}

// HandleLogout handles POST /auth/logout
//
//	@Summary		Log out
//	@Description	Clears both session cookies. Tokens are stateless, so nothing is revoked server-side.
//	@Tags			Auth
//	@Produce		json
//	@Success		200	{object}	authsdk.MessageResponse	"Cookies cleared"
//	@Router			/auth/logout [post].
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	clearSessionCookies(w)
	httpx.WriteJSON(w, http.StatusOK, authsdk.MessageResponse{Message: logoutSuccess})
}
