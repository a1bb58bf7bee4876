package authsdk_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aussiebroadwan/tally/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

func TestClientDecodesSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/user/me", r.URL.Path)
		require.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(authsdk.UserResponse{ID: "01J", Email: "a@b.c", Verified: true})
	}))
	defer srv.Close()

	me, err := authsdk.NewSDKClient(srv.URL+"/").Me(context.Background(), "tok")
	require.NoError(t, err)
	require.Equal(t, "01J", me.ID)
	require.True(t, me.Verified)
}

func TestClientSendsJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.Empty(t, r.Header.Get("Authorization"))

		var req authsdk.LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.True(t, req.RequestOTP)

		_ = json.NewEncoder(w).Encode(authsdk.LoginResponse{OTPRequired: true, Email: req.Email})
	}))
	defer srv.Close()

	resp, err := authsdk.NewSDKClient(srv.URL).Login(context.Background(), authsdk.LoginRequest{
		Email:      "a@b.c",
		Password:   "secret",
		RequestOTP: true,
	})
	require.NoError(t, err)
	require.True(t, resp.OTPRequired)
	require.Nil(t, resp.SessionResponse)
}

func TestClientReturnsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authsdk.NewAPIError(http.StatusBadRequest, authsdk.ErrorCodeInvalidOTP, "Invalid OTP").WriteError(w)
	}))
	defer srv.Close()

	_, err := authsdk.NewSDKClient(srv.URL).VerifySignup(context.Background(), "a@b.c", "000000")
	require.Error(t, err)
	require.True(t, authsdk.IsCode(err, authsdk.ErrorCodeInvalidOTP))

	var apiErr *authsdk.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	require.Equal(t, "Invalid OTP", apiErr.Description)
}

func TestClientHandlesNonJSONError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := authsdk.NewSDKClient(srv.URL).GetLiveness(context.Background())
	require.True(t, authsdk.IsCode(err, authsdk.ErrorCodeServerError))
}
