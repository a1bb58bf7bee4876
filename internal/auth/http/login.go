package http

import (
	"net/http"

	"github.com/aussiebroadwan/tally/internal/auth/domain"
	"github.com/aussiebroadwan/tally/internal/auth/service"
	"github.com/aussiebroadwan/tally/pkg/authsdk"
	"github.com/aussiebroadwan/tally/pkg/httpx"
)

type LoginHandler struct {
	Credentials *service.CredentialService
}

// HandleLogin godoc
//
//	@Summary		Log in
//	@Description	Checks email and password. Returns a session, or with request_otp set,
//	@Description	emails a login code and returns otp_required instead.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.LoginRequest	true	"Credentials"
//	@Success		200		{object}	authsdk.LoginResponse
//	@Failure		400		{object}	authsdk.APIError	"invalid_request"
//	@Failure		401		{object}	authsdk.APIError	"invalid_credentials"
//	@Failure		403		{object}	authsdk.APIError	"not_verified"
//	@Failure		429		{object}	authsdk.APIError	"rate_limit_exceeded"
//	@Router			/v1/auth/login [post].
func (h *LoginHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req authsdk.LoginRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	res, err := h.Credentials.Login(r.Context(), service.LoginInput{
		Email:      req.Email,
		Password:   req.Password,
		RequestOTP: req.RequestOTP,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	if res.OTPPending {
		httpx.WriteJSON(w, http.StatusOK, authsdk.LoginResponse{
			OTPRequired: true,
			Email:       domain.NormalizeEmail(req.Email),
			Delivery:    string(res.Delivery),
		})
		return
	}
	httpx.WriteJSON(w, http.StatusOK, authsdk.LoginResponse{SessionResponse: sessionResponse(res.AuthResult)})
}

// HandleVerify godoc
//
//	@Summary		Complete a code login
//	@Description	Redeems the login code sent by a login with request_otp and starts a session.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.VerifyCodeRequest	true	"Email and code"
//	@Success		200		{object}	authsdk.SessionResponse
//	@Failure		400		{object}	authsdk.APIError	"invalid_request, no_otp_pending, otp_expired, invalid_otp, too_many_attempts"
//	@Router			/v1/auth/login/verify [post].
func (h *LoginHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	var req authsdk.VerifyCodeRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	res, err := h.Credentials.VerifyLoginOTP(r.Context(), req.Email, req.Code)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, sessionResponse(res))
}
