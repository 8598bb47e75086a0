package http

import (
	"net/http"

	"github.com/aussiebroadwan/lostfound/internal/auth/domain"
	"github.com/aussiebroadwan/lostfound/internal/auth/service"
	"github.com/aussiebroadwan/lostfound/pkg/authsdk"
	"github.com/aussiebroadwan/lostfound/pkg/httpx"
)

// TwoFactorHandler serves the /2fa endpoints. Every route sits behind the
// access cookie check.
type TwoFactorHandler struct {
	TwoFactorService *service.TwoFactorService
	Dev              bool
}

// currentUser returns the user id injected by CookieAuthnMiddleware.
func currentUser(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, ok := httpx.UserIDFromContext(r.Context())
	if !ok {
		authsdk.ErrUnauthorized.WriteError(w)
		return 0, false
	}
	return userID, true
}

// HandleSetup handles POST /2fa/setup
//
//	@Summary		Start 2FA enrollment
//	@Description	Generates a new TOTP secret, stored as pending. Returns a QR code and the manual entry key.
//	@Tags			2FA
//	@Security		CookieAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.TwoFactorSetupResponse	"QR code and manual key"
//	@Failure		400	{object}	authsdk.APIError				"2FA already enabled"
//	@Failure		401	{object}	authsdk.APIError				"Missing or invalid access token"
//	@Failure		500	{object}	authsdk.APIError				"Internal server error"
//	@Router			/2fa/setup [post].
func (h *TwoFactorHandler) HandleSetup(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	setup, err := h.TwoFactorService.Setup(r.Context(), userID)
	if err != nil {
		writeError(w, r, err, h.Dev)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.TwoFactorSetupResponse{
		Message:        "Secreto 2FA generado",
		QRCode:         setup.QRCode,
		ManualEntryKey: setup.Secret,
		Instructions:   "Escanea el código QR con tu aplicación de autenticación y luego verifica tu código para habilitar 2FA",
	})
}

// HandleEnable handles POST /2fa/enable
//
//	@Summary		Enable 2FA
//	@Description	Confirms the pending secret with a 6-digit TOTP code and returns 10 backup codes, shown only once. Pending secrets older than PENDING_2FA_TTL (default 24h) are cleared, after which /2fa/setup must be called again.
//	@Tags			2FA
//	@Security		CookieAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.TwoFactorCodeRequest	true	"TOTP code"
//	@Success		200		{object}	authsdk.BackupCodesResponse		"Backup codes"
//	@Failure		400		{object}	authsdk.APIError				"Invalid code, no pending secret or already enabled"
//	@Failure		401		{object}	authsdk.APIError				"Missing or invalid access token"
//	@Failure		500		{object}	authsdk.APIError				"Internal server error"
//	@Router			/2fa/enable [post].
func (h *TwoFactorHandler) HandleEnable(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req authsdk.TwoFactorCodeRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	codes, err := h.TwoFactorService.Enable(r.Context(), userID, service.EnableTwoFactorInput{Code: req.Code})
	if err != nil {
		writeError(w, r, err, h.Dev)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.BackupCodesResponse{
		Message:     "2FA habilitado exitosamente",
		BackupCodes: codes,
		Warning:     "Guarda estos códigos de respaldo en un lugar seguro. No podrás verlos de nuevo.",
	})
}

// HandleVerify handles POST /2fa/verify
//
//	@Summary		Verify a second factor
//	@Description	Accepts a TOTP code or an unused backup code. A backup code is spent.
//	@Tags			2FA
//	@Security		CookieAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.TwoFactorCodeRequest	true	"TOTP or backup code"
//	@Success		200		{object}	authsdk.MessageResponse			"Code accepted"
//	@Failure		400		{object}	authsdk.APIError				"Invalid code or 2FA not enabled"
//	@Failure		401		{object}	authsdk.APIError				"Missing or invalid access token"
//	@Failure		429		{object}	authsdk.APIError				"Too many attempts"
//	@Failure		500		{object}	authsdk.APIError				"Internal server error"
//	@Router			/2fa/verify [post].
func (h *TwoFactorHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req authsdk.TwoFactorCodeRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	method, err := h.TwoFactorService.Verify(r.Context(), userID, service.TwoFactorCodeInput{Code: req.Code})
	if err != nil {
		writeError(w, r, err, h.Dev)
		return
	}

	resp := authsdk.MessageResponse{Message: "Código verificado correctamente"}
	if method == domain.SecondFactorBackupCode {
		resp = authsdk.MessageResponse{
			Message: "Código de respaldo verificado correctamente",
			Warning: "Has usado un código de respaldo. Considera regenerar nuevos códigos.",
		}
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

// HandleDisable handles POST /2fa/disable
//
//	@Summary		Disable 2FA
//	@Description	Turns 2FA off after a TOTP or backup code and wipes the secret and backup codes.
//	@Tags			2FA
//	@Security		CookieAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.TwoFactorCodeRequest	true	"TOTP or backup code"
//	@Success		200		{object}	authsdk.MessageResponse			"2FA disabled"
//	@Failure		400		{object}	authsdk.APIError				"Invalid code or 2FA not enabled"
//	@Failure		401		{object}	authsdk.APIError				"Missing or invalid access token"
//	@Failure		429		{object}	authsdk.APIError				"Too many attempts"
//	@Failure		500		{object}	authsdk.APIError				"Internal server error"
//	@Router			/2fa/disable [post].
func (h *TwoFactorHandler) HandleDisable(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req authsdk.TwoFactorCodeRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	if err := h.TwoFactorService.Disable(r.Context(), userID, service.TwoFactorCodeInput{Code: req.Code}); err != nil {
		writeError(w, r, err, h.Dev)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.MessageResponse{Message: "2FA deshabilitado exitosamente"})
}

// HandleRegenerateBackupCodes handles POST /2fa/regenerate-backup-codes
//
//	@Summary		Regenerate backup codes
//	@Description	Replaces every backup code after a TOTP or backup code. Earlier codes stop working.
//	@Tags			2FA
//	@Security		CookieAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.TwoFactorCodeRequest	true	"TOTP or backup code"
//	@Success		200		{object}	authsdk.BackupCodesResponse		"New backup codes"
//	@Failure		400		{object}	authsdk.APIError				"Invalid code or 2FA not enabled"
//	@Failure		401		{object}	authsdk.APIError				"Missing or invalid access token"
//	@Failure		429		{object}	authsdk.APIError				"Too many attempts"
//	@Failure		500		{object}	authsdk.APIError				"Internal server error"
//	@Router			/2fa/regenerate-backup-codes [post].
func (h *TwoFactorHandler) HandleRegenerateBackupCodes(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req authsdk.TwoFactorCodeRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	codes, err := h.TwoFactorService.RegenerateBackupCodes(r.Context(), userID, service.TwoFactorCodeInput{Code: req.Code})
	if err != nil {
		writeError(w, r, err, h.Dev)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.BackupCodesResponse{
		Message:     "Códigos de respaldo regenerados exitosamente",
		BackupCodes: codes,
		Warning:     "Los códigos anteriores ya no son válidos. Guarda estos nuevos códigos en un lugar seguro.",
	})
}

// HandleStatus handles GET /2fa/status
//
//	@Summary		2FA status
//	@Description	Reports whether 2FA is enabled and how many backup codes remain. Never returns the secret or codes.
//	@Tags			2FA
//	@Security		CookieAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.TwoFactorStatusResponse	"Status"
//	@Failure		401	{object}	authsdk.APIError				"Missing or invalid access token"
//	@Failure		404	{object}	authsdk.APIError				"User not found"
//	@Failure		500	{object}	authsdk.APIError				"Internal server error"
//	@Router			/2fa/status [get].
func (h *TwoFactorHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	st, err := h.TwoFactorService.Status(r.Context(), userID)
	if err != nil {
		writeError(w, r, err, h.Dev)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.TwoFactorStatusResponse{
		Enabled:          st.Enabled,
		HasBackupCodes:   st.HasBackupCodes,
		BackupCodesCount: st.BackupCodesCount,
	})
}
