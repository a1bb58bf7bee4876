package authsdk

import "time"

// SignupRequest creates an unverified account and triggers a signup code.
type SignupRequest struct {
	DisplayName string `json:"display_name" example:"Ada"`
	Email       string `json:"email" example:"ada@example.com"`
	Password    string `json:"password" example:"correct horse battery staple"`
}

// SignupResponse acknowledges a signup. No session is issued until the
// account is verified.
type SignupResponse struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	Message  string `json:"message"`
	Delivery string `json:"delivery" enums:"queued,failed"`
}

// VerifyCodeRequest submits a one-time code for an email address.
type VerifyCodeRequest struct {
	Email string `json:"email" example:"ada@example.com"`
	Code  string `json:"code" example:"042917"`
}

// EmailRequest carries just an email address (resend, forgot password).
type EmailRequest struct {
	Email string `json:"email" example:"ada@example.com"`
}

// LoginRequest authenticates with email and password. With RequestOTP set,
// the password step sends a login code instead of returning a session.
type LoginRequest struct {
	Email      string `json:"email" example:"ada@example.com"`
	Password   string `json:"password"`
	RequestOTP bool   `json:"request_otp"`
}

// LoginResponse is either a session or a pending second step.
type LoginResponse struct {
	*SessionResponse

	OTPRequired bool   `json:"otp_required,omitempty"`
	Email       string `json:"email,omitempty"`
	Delivery    string `json:"delivery,omitempty"`
}

// SessionResponse carries a freshly issued session token.
type SessionResponse struct {
	Token     string       `json:"token"`
	TokenType string       `json:"token_type" example:"Bearer"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

// ResetPasswordRequest redeems a reset token. Email is accepted for parity
// with the reset link but the token alone identifies the account.
type ResetPasswordRequest struct {
	Token    string `json:"token"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password"`
}

// ChangePasswordRequest confirms a password change with the emailed code.
type ChangePasswordRequest struct {
	Code        string `json:"code" example:"042917"`
	NewPassword string `json:"new_password"`
}

// UpdateProfileRequest changes mutable profile fields.
type UpdateProfileRequest struct {
	DisplayName string `json:"display_name" example:"Ada L."`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	Email       string    `json:"email"`
	Verified    bool      `json:"verified"`
	CreatedAt   time.Time `json:"created_at"`
}

// MessageResponse is a generic acknowledgement.
type MessageResponse struct {
	Message  string `json:"message"`
	Delivery string `json:"delivery,omitempty"`
}

// HealthResponse is returned by /livez and /readyz.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks lists the readiness of each dependency.
type HealthChecks struct {
	Database string `json:"database"`
	Throttle string `json:"throttle,omitempty"`
}
