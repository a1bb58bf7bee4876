package domain

import "time"

// SecretKind says what shape of value a pending secret holds.
type SecretKind string

const (
	SecretKindOTP        SecretKind = "otp"
	SecretKindResetToken SecretKind = "reset_token"
)

// Purpose is the flow a pending secret belongs to. A secret only verifies
// for the purpose it was issued for.
type Purpose string

const (
	PurposeSignup         Purpose = "signup"
	PurposeLogin          Purpose = "login"
	PurposeChangePassword Purpose = "change_password"
	PurposeReset          Purpose = "reset"
)

// Kind returns the secret kind used for the purpose.
func (p Purpose) Kind() SecretKind {
	if p == PurposeReset {
		return SecretKindResetToken
	}
	return SecretKindOTP
}

// PendingSecret is the single outstanding one-time secret of a user. Issuing
// a new one replaces it. Only the fingerprint of the value is stored.
type PendingSecret struct {
	UserID    string
	Kind      SecretKind
	Purpose   Purpose
	ValueHash string
	Attempts  int
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the secret is no longer redeemable at now.
func (s PendingSecret) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
