package http

import (
	"github.com/aussiebroadwan/tally/internal/auth/domain"
	"github.com/aussiebroadwan/tally/internal/auth/service"
	"github.com/aussiebroadwan/tally/pkg/authsdk"
)

func userResponse(u domain.User) authsdk.UserResponse {
	return authsdk.UserResponse{
		ID:          u.ID,
		DisplayName: u.DisplayName,
		Email:       u.Email,
		Verified:    u.Verified,
		CreatedAt:   u.CreatedAt,
	}
}

func sessionResponse(res service.AuthResult) *authsdk.SessionResponse {
	return &authsdk.SessionResponse{
		Token:     res.Session.Token,
		TokenType: "Bearer",
		ExpiresAt: res.Session.ExpiresAt,
		User:      userResponse(res.User),
	}
}
