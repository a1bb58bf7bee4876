package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/tally/internal/auth/service"
	"github.com/aussiebroadwan/tally/pkg/authsdk"
	"github.com/aussiebroadwan/tally/pkg/slogx"
)

// writeServiceError maps a service error onto its HTTP response. Anything
// unrecognised is logged and reported as a bare server_error.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := apiErrorFor(err)
	if apiErr.StatusCode == http.StatusInternalServerError {
		slogx.FromContext(r.Context()).Error("request failed", "error", err)
	}
	if apiErr.StatusCode == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
	}
	apiErr.WriteError(w)
}

func apiErrorFor(err error) *authsdk.APIError {
	switch {
	case errors.Is(err, service.ErrValidation):
		return authsdk.NewAPIError(http.StatusBadRequest, authsdk.ErrorCodeInvalidRequest, detail(err, service.ErrValidation))
	case errors.Is(err, service.ErrPasswordTooWeak):
		return authsdk.NewAPIError(http.StatusBadRequest, authsdk.ErrorCodePasswordTooWeak, "Password "+detail(err, service.ErrPasswordTooWeak))
	case errors.Is(err, service.ErrDuplicateEmail):
		return authsdk.NewAPIError(http.StatusConflict, authsdk.ErrorCodeEmailTaken, "Email is already registered")
	case errors.Is(err, service.ErrInvalidCredentials):
		return authsdk.NewAPIError(http.StatusUnauthorized, authsdk.ErrorCodeInvalidCredentials, "Invalid email or password")
	case errors.Is(err, service.ErrNotVerified):
		return authsdk.NewAPIError(http.StatusForbidden, authsdk.ErrorCodeNotVerified, "Account is not verified")
	case errors.Is(err, service.ErrNoSecretPending):
		return authsdk.NewAPIError(http.StatusBadRequest, authsdk.ErrorCodeNoOTPPending, "No OTP is pending")
	case errors.Is(err, service.ErrSecretExpired):
		return authsdk.NewAPIError(http.StatusBadRequest, authsdk.ErrorCodeOTPExpired, "OTP has expired")
	case errors.Is(err, service.ErrSecretMismatch):
		return authsdk.NewAPIError(http.StatusBadRequest, authsdk.ErrorCodeInvalidOTP, "Invalid OTP")
	case errors.Is(err, service.ErrTooManyAttempts):
		return authsdk.NewAPIError(http.StatusBadRequest, authsdk.ErrorCodeTooManyAttempts, "Too many attempts, request a new code")
	case errors.Is(err, service.ErrInvalidOrExpiredToken):
		return authsdk.NewAPIError(http.StatusBadRequest, authsdk.ErrorCodeInvalidResetToken, "Reset token is invalid or expired")
	case errors.Is(err, service.ErrThrottled):
		return authsdk.NewAPIError(http.StatusTooManyRequests, authsdk.ErrorCodeThrottled, "Please wait before requesting another code")
	case errors.Is(err, service.ErrUnauthorized):
		return authsdk.NewAPIError(http.StatusUnauthorized, authsdk.ErrorCodeInvalidSession, "Session is missing, invalid or expired")
	case errors.Is(err, service.ErrNotFound):
		return authsdk.NewAPIError(http.StatusNotFound, authsdk.ErrorCodeNotFound, "Not found")
	default:
		return authsdk.NewAPIError(http.StatusInternalServerError, authsdk.ErrorCodeServerError, "Internal server error")
	}
}

// detail strips the sentinel prefix from a wrapped validation error, leaving
// the part meant for the caller.
func detail(err, sentinel error) string {
	msg := err.Error()
	if rest, ok := strings.CutPrefix(msg, sentinel.Error()+": "); ok {
		return rest
	}
	return msg
}

func badRequest(w http.ResponseWriter, desc string) {
	authsdk.NewAPIError(http.StatusBadRequest, authsdk.ErrorCodeInvalidRequest, desc).WriteError(w)
}
