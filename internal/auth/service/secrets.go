package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/tally/internal/auth/domain"
	"github.com/aussiebroadwan/tally/internal/auth/store"
	"github.com/aussiebroadwan/tally/pkg/cryptox"
	"github.com/aussiebroadwan/tally/pkg/slogx"
	"github.com/pquerna/otp"
)

// SecretKeeper issues and redeems the single pending secret each user may
// hold. Only fingerprints are stored; the plaintext goes out in the
// notification and nowhere else.
//
// Redemption checks, in order: a secret for the purpose exists, an attempt
// can still be claimed, the value matches, the secret has not expired. Every
// guess claims its attempt before it is compared, so the cap holds under
// concurrent guesses. The final delete is conditional on the fingerprint so
// that two concurrent redeemers cannot both succeed.
type SecretKeeper struct {
	Store       store.Store
	OTPTTL      time.Duration
	ResetTTL    time.Duration
	OTPDigits   otp.Digits
	MaxAttempts int
	Now         func() time.Time
}

func (k *SecretKeeper) otpTTL() time.Duration {
	if k.OTPTTL <= 0 {
		return DefaultOTPTTL
	}
	return k.OTPTTL
}

func (k *SecretKeeper) resetTTL() time.Duration {
	if k.ResetTTL <= 0 {
		return DefaultResetTTL
	}
	return k.ResetTTL
}

func (k *SecretKeeper) maxAttempts() int {
	if k.MaxAttempts <= 0 {
		return DefaultOTPMaxAttempts
	}
	return k.MaxAttempts
}

func (k *SecretKeeper) digits() otp.Digits {
	if k.OTPDigits == 0 {
		return DefaultOTPDigits
	}
	return k.OTPDigits
}

// IssueOTP replaces the user's pending secret with a fresh code for purpose
// and returns the plaintext code.
func (k *SecretKeeper) IssueOTP(ctx context.Context, userID string, purpose domain.Purpose) (string, error) {
	code, err := cryptox.GenerateOTP(k.digits())
	if err != nil {
		return "", err
	}
	if err := k.put(ctx, userID, purpose, code, k.otpTTL()); err != nil {
		return "", err
	}
	return code, nil
}

// IssueResetToken replaces the user's pending secret with a reset token.
func (k *SecretKeeper) IssueResetToken(ctx context.Context, userID string) (string, error) {
	token, err := cryptox.GenerateResetToken()
	if err != nil {
		return "", err
	}
	if err := k.put(ctx, userID, domain.PurposeReset, token, k.resetTTL()); err != nil {
		return "", err
	}
	return token, nil
}

// IssueDecoyResetToken does the work of IssueResetToken for an account that
// does not exist. The conditional delete matches no row, so nothing changes.
func (k *SecretKeeper) IssueDecoyResetToken(ctx context.Context) error {
	token, err := cryptox.GenerateResetToken()
	if err != nil {
		return err
	}
	if _, err := k.Store.Secrets().DeleteSecret(ctx, "", cryptox.FingerprintToken(token)); err != nil {
		return fmt.Errorf("store pending secret: %w", err)
	}
	return nil
}

func (k *SecretKeeper) put(ctx context.Context, userID string, purpose domain.Purpose, value string, ttl time.Duration) error {
	now := clock(k.Now)
	err := k.Store.Secrets().PutSecret(ctx, domain.PendingSecret{
		UserID:    userID,
		Kind:      purpose.Kind(),
		Purpose:   purpose,
		ValueHash: cryptox.FingerprintToken(value),
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	})
	if err != nil {
		return fmt.Errorf("store pending secret: %w", err)
	}
	return nil
}

// RedeemOTP consumes the user's pending code for purpose. apply runs in the
// same transaction as the delete, so the secret is only spent if apply
// succeeds.
func (k *SecretKeeper) RedeemOTP(ctx context.Context, userID string, purpose domain.Purpose, code string, apply func(tx store.Tx) error) error {
	l := slogx.FromContext(ctx)

	secret, err := k.Store.Secrets().GetSecret(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNoSecretPending
		}
		return fmt.Errorf("load pending secret: %w", err)
	}
	if secret.Purpose != purpose {
		return ErrNoSecretPending
	}

	claimed, err := k.Store.Secrets().ClaimAttempt(ctx, userID, secret.ValueHash, k.maxAttempts())
	if err != nil {
		return fmt.Errorf("count otp attempt: %w", err)
	}
	if !claimed {
		return k.unclaimed(ctx, secret)
	}

	if !cryptox.MatchFingerprint(code, secret.ValueHash) {
		l.Info("otp mismatch", "user_id", userID, "purpose", purpose)
		return ErrSecretMismatch
	}

	if secret.Expired(clock(k.Now)) {
		k.discard(ctx, secret)
		return ErrSecretExpired
	}

	return k.consume(ctx, secret, ErrNoSecretPending, apply)
}

// RedeemResetToken consumes a reset token and calls apply with its owner.
func (k *SecretKeeper) RedeemResetToken(ctx context.Context, token string, apply func(tx store.Tx, userID string) error) error {
	secret, err := k.Store.Secrets().GetSecretByValue(ctx, domain.SecretKindResetToken, cryptox.FingerprintToken(token))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvalidOrExpiredToken
		}
		return fmt.Errorf("load reset token: %w", err)
	}
	if secret.Purpose != domain.PurposeReset {
		return ErrInvalidOrExpiredToken
	}
	if secret.Expired(clock(k.Now)) {
		k.discard(ctx, secret)
		return ErrInvalidOrExpiredToken
	}

	return k.consume(ctx, secret, ErrInvalidOrExpiredToken, func(tx store.Tx) error {
		return apply(tx, secret.UserID)
	})
}

func (k *SecretKeeper) consume(ctx context.Context, secret domain.PendingSecret, lost error, apply func(tx store.Tx) error) error {
	return k.Store.WithTx(ctx, func(tx store.Tx) error {
		deleted, err := tx.Secrets().DeleteSecret(ctx, secret.UserID, secret.ValueHash)
		if err != nil {
			return fmt.Errorf("consume pending secret: %w", err)
		}
		if !deleted {
			// Someone else redeemed or replaced it first.
			return lost
		}
		if apply == nil {
			return nil
		}
		return apply(tx)
	})
}

// unclaimed explains a failed attempt claim: either the guesses ran out, or
// the secret was consumed or replaced since it was read.
func (k *SecretKeeper) unclaimed(ctx context.Context, secret domain.PendingSecret) error {
	current, err := k.Store.Secrets().GetSecret(ctx, secret.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNoSecretPending
		}
		return fmt.Errorf("load pending secret: %w", err)
	}
	if current.ValueHash != secret.ValueHash {
		return ErrNoSecretPending
	}

	k.discard(ctx, secret)
	slogx.FromContext(ctx).Warn("otp attempts exhausted", "user_id", secret.UserID, "purpose", secret.Purpose)
	return ErrTooManyAttempts
}

// discard drops a secret that can no longer be redeemed. Failure is only
// logged; the secret stays unusable either way.
func (k *SecretKeeper) discard(ctx context.Context, secret domain.PendingSecret) {
	if _, err := k.Store.Secrets().DeleteSecret(ctx, secret.UserID, secret.ValueHash); err != nil {
		slogx.FromContext(ctx).Error("failed to discard pending secret", "user_id", secret.UserID, "error", err)
	}
}
