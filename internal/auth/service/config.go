package service

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/pquerna/otp"
)

// Defaults for the credential lifecycle.
const (
	DefaultOTPTTL            = 15 * time.Minute
	DefaultOTPDigits         = otp.DigitsSix
	DefaultOTPMaxAttempts    = 5
	DefaultResetTTL          = time.Hour
	DefaultResendInterval    = 2 * time.Minute
	DefaultMinPasswordLength = 6
)

// PasswordPolicy is the rule every new password must satisfy.
type PasswordPolicy struct {
	MinLength int
}

func (p PasswordPolicy) Check(password string) error {
	minLen := p.MinLength
	if minLen <= 0 {
		minLen = DefaultMinPasswordLength
	}
	if strings.TrimSpace(password) == "" || utf8.RuneCountInString(password) < minLen {
		return fmt.Errorf("%w: must be at least %d characters", ErrPasswordTooWeak, minLen)
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("%w: email is required", ErrValidation)
	}
	at := strings.IndexByte(email, '@')
	if at <= 0 || at == len(email)-1 {
		return fmt.Errorf("%w: email is malformed", ErrValidation)
	}
	return nil
}

func clock(now func() time.Time) time.Time {
	if now == nil {
		return time.Now().UTC()
	}
	return now().UTC()
}
