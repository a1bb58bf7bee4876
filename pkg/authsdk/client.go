package authsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// SDKClient is a client for the Tally authentication service. Calls that need
// a session take the bearer token explicitly.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewSDKClient creates a new auth service client.
func NewSDKClient(baseURL string) *SDKClient {
	return &SDKClient{
		BaseURL:    strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *SDKClient) do(ctx context.Context, method, path, token string, in, out any, expected int) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != expected {
		return parseErrorResponse(resp, raw)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// Signup registers a new, unverified account.
func (c *SDKClient) Signup(ctx context.Context, req SignupRequest) (*SignupResponse, error) {
	var out SignupResponse
	if err := c.do(ctx, http.MethodPost, "/v1/auth/signup", "", req, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifySignup confirms a signup code and returns the first session.
func (c *SDKClient) VerifySignup(ctx context.Context, email, code string) (*SessionResponse, error) {
	var out SessionResponse
	err := c.do(ctx, http.MethodPost, "/v1/auth/signup/verify", "", VerifyCodeRequest{Email: email, Code: code}, &out, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ResendSignupCode asks for a fresh signup code.
func (c *SDKClient) ResendSignupCode(ctx context.Context, email string) (*MessageResponse, error) {
	var out MessageResponse
	if err := c.do(ctx, http.MethodPost, "/v1/auth/signup/resend", "", EmailRequest{Email: email}, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login authenticates with a password. When req.RequestOTP is set the
// response has OTPRequired and no session; finish with VerifyLogin.
func (c *SDKClient) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	var out LoginResponse
	if err := c.do(ctx, http.MethodPost, "/v1/auth/login", "", req, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyLogin completes an OTP-gated login.
func (c *SDKClient) VerifyLogin(ctx context.Context, email, code string) (*SessionResponse, error) {
	var out SessionResponse
	err := c.do(ctx, http.MethodPost, "/v1/auth/login/verify", "", VerifyCodeRequest{Email: email, Code: code}, &out, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ForgotPassword requests a reset link. The response is the same whether or
// not the account exists.
func (c *SDKClient) ForgotPassword(ctx context.Context, email string) (*MessageResponse, error) {
	var out MessageResponse
	if err := c.do(ctx, http.MethodPost, "/v1/auth/password/forgot", "", EmailRequest{Email: email}, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// ResetPassword redeems a reset token.
func (c *SDKClient) ResetPassword(ctx context.Context, token, password string) error {
	return c.do(ctx, http.MethodPost, "/v1/auth/password/reset", "", ResetPasswordRequest{Token: token, Password: password}, nil, http.StatusOK)
}

// RequestPasswordChange sends a change-password code to the session's user.
func (c *SDKClient) RequestPasswordChange(ctx context.Context, sessionToken string) (*MessageResponse, error) {
	var out MessageResponse
	if err := c.do(ctx, http.MethodPost, "/v1/user/password/change-request", sessionToken, nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// ConfirmPasswordChange sets a new password using the emailed code.
func (c *SDKClient) ConfirmPasswordChange(ctx context.Context, sessionToken, code, newPassword string) error {
	req := ChangePasswordRequest{Code: code, NewPassword: newPassword}
	return c.do(ctx, http.MethodPost, "/v1/user/password/change-verify", sessionToken, req, nil, http.StatusOK)
}

// Me returns the account behind a session token.
func (c *SDKClient) Me(ctx context.Context, sessionToken string) (*UserResponse, error) {
	var out UserResponse
	if err := c.do(ctx, http.MethodGet, "/v1/user/me", sessionToken, nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProfile changes the display name of the session's user.
func (c *SDKClient) UpdateProfile(ctx context.Context, sessionToken, displayName string) (*UserResponse, error) {
	var out UserResponse
	err := c.do(ctx, http.MethodPut, "/v1/user/me", sessionToken, UpdateProfileRequest{DisplayName: displayName}, &out, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetLiveness checks if the service is alive.
func (c *SDKClient) GetLiveness(ctx context.Context) (*HealthResponse, error) {
	var out HealthResponse
	if err := c.do(ctx, http.MethodGet, "/livez", "", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetReadiness checks if the service is ready.
func (c *SDKClient) GetReadiness(ctx context.Context) (*HealthResponse, error) {
	var out HealthResponse
	if err := c.do(ctx, http.MethodGet, "/readyz", "", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}
