package http

import (
	"net/http"

	"github.com/aussiebroadwan/tally/internal/auth/service"
	"github.com/aussiebroadwan/tally/pkg/authsdk"
	"github.com/aussiebroadwan/tally/pkg/httpx"
)

const forgotMessage = "If an account exists for that email, a reset link has been sent"

// PasswordHandler serves password recovery and password changes.
type PasswordHandler struct {
	Passwords *service.PasswordService
}

// HandleForgot godoc
//
//	@Summary		Request a password reset
//	@Description	Emails a reset link if the account exists. The response never reveals
//	@Description	whether it does.
//	@Tags			Password
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.EmailRequest	true	"Account email"
//	@Success		200		{object}	authsdk.MessageResponse
//	@Failure		400		{object}	authsdk.APIError	"invalid_request"
//	@Router			/v1/auth/password/forgot [post].
func (h *PasswordHandler) HandleForgot(w http.ResponseWriter, r *http.Request) {
	var req authsdk.EmailRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	if _, err := h.Passwords.ForgotPassword(r.Context(), req.Email); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, authsdk.MessageResponse{Message: forgotMessage})
}

// HandleReset godoc
//
//	@Summary		Reset a password
//	@Description	Redeems a reset token, sets the new password and ends every existing session.
//	@Tags			Password
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.ResetPasswordRequest	true	"Token and new password"
//	@Success		200		{object}	authsdk.MessageResponse
//	@Failure		400		{object}	authsdk.APIError	"invalid_request, password_too_weak, invalid_token"
//	@Router			/v1/auth/password/reset [post].
func (h *PasswordHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	var req authsdk.ResetPasswordRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	if err := h.Passwords.ResetPassword(r.Context(), req.Token, req.Password); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, authsdk.MessageResponse{Message: "Password has been reset"})
}

// HandleChangeRequest godoc
//
//	@Summary		Request a password change
//	@Description	Emails a code the signed in user must confirm to change their password.
//	@Tags			User
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	authsdk.MessageResponse
//	@Failure		401	{object}	authsdk.APIError	"invalid_token"
//	@Router			/v1/user/password/change-request [post].
func (h *PasswordHandler) HandleChangeRequest(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		httpx.WriteBearerError(w, "missing session")
		return
	}

	notice, err := h.Passwords.RequestPasswordChange(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, authsdk.MessageResponse{
		Message:  "A confirmation code has been sent to your email",
		Delivery: string(notice.Delivery),
	})
}

// HandleChangeVerify godoc
//
//	@Summary		Confirm a password change
//	@Description	Redeems the emailed code and sets the new password. Every session,
//	@Description	including the current one, is ended.
//	@Tags			User
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		authsdk.ChangePasswordRequest	true	"Code and new password"
//	@Success		200		{object}	authsdk.MessageResponse
//	@Failure		400		{object}	authsdk.APIError	"invalid_request, password_too_weak, no_otp_pending, otp_expired, invalid_otp, too_many_attempts"
//	@Failure		401		{object}	authsdk.APIError	"invalid_token"
//	@Router			/v1/user/password/change-verify [post].
func (h *PasswordHandler) HandleChangeVerify(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		httpx.WriteBearerError(w, "missing session")
		return
	}

	var req authsdk.ChangePasswordRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	if err := h.Passwords.ConfirmPasswordChange(r.Context(), user.ID, req.Code, req.NewPassword); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, authsdk.MessageResponse{Message: "Password has been changed"})
}
