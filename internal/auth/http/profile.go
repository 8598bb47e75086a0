package http

import (
	"net/http"

	"github.com/aussiebroadwan/lostfound/internal/auth/domain"
	"github.com/aussiebroadwan/lostfound/internal/auth/service"
	"github.com/aussiebroadwan/lostfound/pkg/authsdk"
	"github.com/aussiebroadwan/lostfound/pkg/httpx"
)

// ProfileHandler serves the signed-in user's own profile.
type ProfileHandler struct {
	UserService *service.UserService
	Dev         bool
}

func toUserResponse(u domain.User) authsdk.UserResponse {
	return authsdk.UserResponse{
		UserID:           u.ID,
		Email:            u.Email,
		Name:             u.Name,
		PhoneNumber:      u.PhoneNumber,
		Role:             u.Role,
		IsConfirmed:      u.IsConfirmed,
		IsActive:         u.IsActive,
		TwoFactorEnabled: u.TwoFactor.Enabled,
		CreatedAt:        u.CreatedAt,
		UpdatedAt:        u.UpdatedAt,
	}
}

// HandleMe handles GET /auth/me
//
//	@Summary		Current user
//	@Description	Returns the profile of the user owning the access cookie.
//	@Tags			Profile
//	@Security		CookieAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.UserResponse	"Profile"
//	@Failure		401	{object}	authsdk.APIError		"Missing or invalid access token"
//	@Failure		404	{object}	authsdk.APIError		"User not found"
//	@Failure		500	{object}	authsdk.APIError		"Internal server error"
//	@Router			/auth/me [get].
func (h *ProfileHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	u, err := h.UserService.GetUserByID(r.Context(), userID)
	if err != nil {
		writeError(w, r, err, h.Dev)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toUserResponse(u))
}

// HandleUpdate handles PUT /auth/profile
//
//	@Summary		Update profile
//	@Description	Updates any of email, name and phone_number. Omitted fields are kept.
//	@Tags			Profile
//	@Security		CookieAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.UpdateProfileRequest	true	"Fields to change"
//	@Success		200		{object}	authsdk.UserResponse			"Updated profile"
//	@Failure		400		{object}	authsdk.APIError				"Validation error or duplicate email"
//	@Failure		401		{object}	authsdk.APIError				"Missing or invalid access token"
//	@Failure		404		{object}	authsdk.APIError				"User not found"
//	@Failure		500		{object}	authsdk.APIError				"Internal server error"
//	@Router			/auth/profile [put].
func (h *ProfileHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req authsdk.UpdateProfileRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	u, err := h.UserService.UpdateProfile(r.Context(), userID, service.ProfileInput{
		Email:       req.Email,
		Name:        req.Name,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		writeError(w, r, err, h.Dev)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toUserResponse(u))
}
