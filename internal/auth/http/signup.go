package http

import (
	"net/http"

	"github.com/aussiebroadwan/tally/internal/auth/service"
	"github.com/aussiebroadwan/tally/pkg/authsdk"
	"github.com/aussiebroadwan/tally/pkg/httpx"
	"github.com/aussiebroadwan/tally/pkg/slogx"
)

const resendMessage = "If the account is awaiting verification, a new code has been sent"

// SignupHandler serves account registration and its verification step.
type SignupHandler struct {
	Credentials *service.CredentialService
}

// HandleSignup godoc
//
//	@Summary		Create an account
//	@Description	Registers an unverified account and emails a verification code.
//	@Description	No session is issued until the code is verified.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.SignupRequest	true	"New account"
//	@Success		201		{object}	authsdk.SignupResponse
//	@Failure		400		{object}	authsdk.APIError	"invalid_request, password_too_weak"
//	@Failure		409		{object}	authsdk.APIError	"email_taken"
//	@Failure		429		{object}	authsdk.APIError	"rate_limit_exceeded"
//	@Router			/v1/auth/signup [post].
func (h *SignupHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req authsdk.SignupRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	res, err := h.Credentials.Signup(r.Context(), service.SignupInput{
		DisplayName: req.DisplayName,
		Email:       req.Email,
		Password:    req.Password,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	slogx.FromContext(r.Context()).Info("account created", "user_id", res.UserID, "delivery", res.Delivery)
	httpx.WriteJSON(w, http.StatusCreated, authsdk.SignupResponse{
		UserID:   res.UserID,
		Email:    res.Email,
		Message:  "Account created, check your email for a verification code",
		Delivery: string(res.Delivery),
	})
}

// HandleVerify godoc
//
//	@Summary		Verify a new account
//	@Description	Redeems the signup code, marks the account verified and starts a session.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.VerifyCodeRequest	true	"Email and code"
//	@Success		200		{object}	authsdk.SessionResponse
//	@Failure		400		{object}	authsdk.APIError	"invalid_request, no_otp_pending, otp_expired, invalid_otp, too_many_attempts"
//	@Router			/v1/auth/signup/verify [post].
func (h *SignupHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	var req authsdk.VerifyCodeRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	res, err := h.Credentials.VerifySignup(r.Context(), req.Email, req.Code)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, sessionResponse(res))
}

// HandleResend godoc
//
//	@Summary		Resend the signup code
//	@Description	Sends a fresh verification code to an unverified account. The response
//	@Description	is the same whether or not the account exists.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.EmailRequest	true	"Account email"
//	@Success		200		{object}	authsdk.MessageResponse
//	@Failure		400		{object}	authsdk.APIError	"invalid_request"
//	@Failure		429		{object}	authsdk.APIError	"throttled"
//	@Router			/v1/auth/signup/resend [post].
func (h *SignupHandler) HandleResend(w http.ResponseWriter, r *http.Request) {
	var req authsdk.EmailRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	if _, err := h.Credentials.ResendSignupOTP(r.Context(), req.Email); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, authsdk.MessageResponse{Message: resendMessage})
}
