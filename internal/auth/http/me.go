package http

import (
	"net/http"

	"github.com/aussiebroadwan/tally/internal/auth/service"
	"github.com/aussiebroadwan/tally/pkg/authsdk"
	"github.com/aussiebroadwan/tally/pkg/httpx"
)

type MeHandler struct {
	Users *service.UserService
}

// HandleGet godoc
//
//	@Summary		Current user
//	@Description	Returns the profile of the signed in user.
//	@Tags			User
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	authsdk.UserResponse
//	@Failure		401	{object}	authsdk.APIError	"invalid_token"
//	@Router			/v1/user/me [get].
func (h *MeHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	caller, ok := UserFromContext(r.Context())
	if !ok {
		httpx.WriteBearerError(w, "missing session")
		return
	}

	user, err := h.Users.GetUserByID(r.Context(), caller.ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, userResponse(user))
}

// HandleUpdate godoc
//
//	@Summary		Update the current user
//	@Description	Changes the display name of the signed in user.
//	@Tags			User
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		authsdk.UpdateProfileRequest	true	"Profile fields"
//	@Success		200		{object}	authsdk.UserResponse
//	@Failure		400		{object}	authsdk.APIError	"invalid_request"
//	@Failure		401		{object}	authsdk.APIError	"invalid_token"
//	@Router			/v1/user/me [put].
func (h *MeHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	caller, ok := UserFromContext(r.Context())
	if !ok {
		httpx.WriteBearerError(w, "missing session")
		return
	}

	var req authsdk.UpdateProfileRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	user, err := h.Users.UpdateDisplayName(r.Context(), caller.ID, req.DisplayName)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, userResponse(user))
}
