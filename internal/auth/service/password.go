package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/aussiebroadwan/tally/internal/auth/domain"
	"github.com/aussiebroadwan/tally/internal/auth/notify"
	"github.com/aussiebroadwan/tally/internal/auth/store"
	"github.com/aussiebroadwan/tally/pkg/cryptox"
	"github.com/aussiebroadwan/tally/pkg/slogx"
)

// PasswordService handles forgotten passwords and password changes. Both
// end by moving SessionsValidAfter, which signs out every existing session.
type PasswordService struct {
	Store    store.Store
	Secrets  *SecretKeeper
	Notifier notify.Notifier
	Policy   PasswordPolicy

	// ResetURL is the page the reset link points at; token and email are
	// appended as query parameters.
	ResetURL string

	Now func() time.Time
}

// ForgotPassword mails a reset link if the account exists. The result is
// the same either way.
func (s *PasswordService) ForgotPassword(ctx context.Context, email string) (Notice, error) {
	email = domain.NormalizeEmail(email)
	if email == "" {
		return Notice{}, fmt.Errorf("%w: email is required", ErrValidation)
	}

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Same store round trip as a real request so timing does not reveal the account.
			return Notice{}, s.Secrets.IssueDecoyResetToken(ctx)
		}
		return Notice{}, fmt.Errorf("load user: %w", err)
	}

	token, err := s.Secrets.IssueResetToken(ctx, user.ID)
	if err != nil {
		return Notice{}, err
	}

	slogx.FromContext(ctx).Info("password reset requested", "user_id", user.ID)
	return Notice{
		Delivery: deliver(ctx, s.Notifier, notify.PasswordReset(user.Email, s.resetLink(token, user.Email), s.Secrets.resetTTL())),
	}, nil
}

func (s *PasswordService) resetLink(token, email string) string {
	q := url.Values{}
	q.Set("token", token)
	q.Set("email", email)

	sep := "?"
	if strings.Contains(s.ResetURL, "?") {
		sep = "&"
	}
	return s.ResetURL + sep + q.Encode()
}

// ResetPassword sets a new password using a reset token. The password is
// checked before the token so a weak password never spends it.
func (s *PasswordService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if err := s.Policy.Check(newPassword); err != nil {
		return err
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("%w: token is required", ErrValidation)
	}

	hash, err := cryptox.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	var userID string
	err = s.Secrets.RedeemResetToken(ctx, token, func(tx store.Tx, owner string) error {
		userID = owner
		return replaceCredentials(ctx, tx, owner, hash, clock(s.Now))
	})
	if err != nil {
		return err
	}

	slogx.FromContext(ctx).Info("password reset", "user_id", userID)
	return nil
}

// RequestPasswordChange sends a confirmation code to the signed-in user.
func (s *PasswordService) RequestPasswordChange(ctx context.Context, userID string) (Notice, error) {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Notice{}, ErrNotFound
		}
		return Notice{}, fmt.Errorf("load user: %w", err)
	}

	code, err := s.Secrets.IssueOTP(ctx, user.ID, domain.PurposeChangePassword)
	if err != nil {
		return Notice{}, err
	}
	return Notice{
		Delivery: deliver(ctx, s.Notifier, notify.PasswordChangeCode(user.Email, code, s.Secrets.otpTTL())),
	}, nil
}

// ConfirmPasswordChange sets the new password once the code checks out.
func (s *PasswordService) ConfirmPasswordChange(ctx context.Context, userID, code, newPassword string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return fmt.Errorf("%w: code is required", ErrValidation)
	}
	if newPassword == "" {
		return fmt.Errorf("%w: new_password is required", ErrValidation)
	}
	if err := s.Policy.Check(newPassword); err != nil {
		return err
	}

	hash, err := cryptox.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	err = s.Secrets.RedeemOTP(ctx, userID, domain.PurposeChangePassword, code, func(tx store.Tx) error {
		return replaceCredentials(ctx, tx, userID, hash, clock(s.Now))
	})
	if err != nil {
		return err
	}

	slogx.FromContext(ctx).Info("password changed", "user_id", userID)
	return nil
}

func replaceCredentials(ctx context.Context, tx store.Tx, userID, hash string, now time.Time) error {
	if err := tx.Users().ReplaceCredentials(ctx, userID, hash, now); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("replace credentials: %w", err)
	}
	return nil
}
