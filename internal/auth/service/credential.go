package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aussiebroadwan/tally/internal/auth/domain"
	"github.com/aussiebroadwan/tally/internal/auth/notify"
	"github.com/aussiebroadwan/tally/internal/auth/store"
	"github.com/aussiebroadwan/tally/internal/auth/throttle"
	"github.com/aussiebroadwan/tally/pkg/cryptox"
	"github.com/aussiebroadwan/tally/pkg/idx"
	"github.com/aussiebroadwan/tally/pkg/slogx"
)

type SignupInput struct {
	DisplayName string
	Email       string
	Password    string
}

type SignupResult struct {
	UserID   string
	Email    string
	Delivery domain.Delivery
}

type LoginInput struct {
	Email      string
	Password   string
	RequestOTP bool
}

// AuthResult is a freshly issued session and the user it belongs to.
type AuthResult struct {
	User    domain.User
	Session domain.Session
}

// LoginResult holds either a session or, when OTPPending is set, nothing but
// the outcome of sending the login code.
type LoginResult struct {
	AuthResult
	OTPPending bool
	Delivery   domain.Delivery
}

// Notice is the result of an operation whose only visible effect is a
// notification. Delivery is empty when nothing was sent.
type Notice struct {
	Delivery domain.Delivery
}

// CredentialService runs signup and login.
type CredentialService struct {
	Store          store.Store
	Secrets        *SecretKeeper
	Sessions       *SessionService
	Notifier       notify.Notifier
	Throttle       throttle.Throttle
	Policy         PasswordPolicy
	ResendInterval time.Duration
	Now            func() time.Time
}

// Signup registers an unverified account and sends it a verification code.
func (s *CredentialService) Signup(ctx context.Context, in SignupInput) (SignupResult, error) {
	l := slogx.FromContext(ctx)

	name := strings.TrimSpace(in.DisplayName)
	email := domain.NormalizeEmail(in.Email)
	if name == "" {
		return SignupResult{}, fmt.Errorf("%w: display_name is required", ErrValidation)
	}
	if err := validateEmail(email); err != nil {
		return SignupResult{}, err
	}
	if in.Password == "" {
		return SignupResult{}, fmt.Errorf("%w: password is required", ErrValidation)
	}
	if err := s.Policy.Check(in.Password); err != nil {
		return SignupResult{}, err
	}

	hash, err := cryptox.HashPassword(in.Password)
	if err != nil {
		return SignupResult{}, fmt.Errorf("hash password: %w", err)
	}

	now := clock(s.Now)
	user := domain.User{
		ID:           idx.NewAt(now).String(),
		DisplayName:  name,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Store.Users().CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return SignupResult{}, ErrDuplicateEmail
		}
		return SignupResult{}, fmt.Errorf("create user: %w", err)
	}

	code, err := s.Secrets.IssueOTP(ctx, user.ID, domain.PurposeSignup)
	if err != nil {
		return SignupResult{}, err
	}

	l.Info("user signed up", "user_id", user.ID)

	return SignupResult{
		UserID:   user.ID,
		Email:    user.Email,
		Delivery: deliver(ctx, s.Notifier, notify.SignupCode(user.Email, user.DisplayName, code, s.Secrets.otpTTL())),
	}, nil
}

// VerifySignup confirms the signup code, marks the account verified and
// signs the user in.
func (s *CredentialService) VerifySignup(ctx context.Context, email, code string) (AuthResult, error) {
	user, err := s.userForCode(ctx, email, code)
	if err != nil {
		return AuthResult{}, err
	}

	now := clock(s.Now)
	err = s.Secrets.RedeemOTP(ctx, user.ID, domain.PurposeSignup, code, func(tx store.Tx) error {
		return tx.Users().MarkVerified(ctx, user.ID, now)
	})
	if err != nil {
		return AuthResult{}, err
	}
	user.Verified = true
	user.UpdatedAt = now

	slogx.FromContext(ctx).Info("user verified", "user_id", user.ID)
	return s.issue(user)
}

// ResendSignupOTP sends a fresh signup code, at most once per ResendInterval
// per email. Unknown and already verified accounts get the same answer as
// real ones.
func (s *CredentialService) ResendSignupOTP(ctx context.Context, email string) (Notice, error) {
	email = domain.NormalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return Notice{}, err
	}

	interval := s.ResendInterval
	if interval <= 0 {
		interval = DefaultResendInterval
	}
	allowed, err := s.Throttle.Allow(ctx, "resend:"+email, interval)
	if err != nil {
		return Notice{}, err
	}
	if !allowed {
		return Notice{}, ErrThrottled
	}

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Notice{}, nil
		}
		return Notice{}, fmt.Errorf("load user: %w", err)
	}
	if user.Verified {
		return Notice{}, nil
	}

	code, err := s.Secrets.IssueOTP(ctx, user.ID, domain.PurposeSignup)
	if err != nil {
		return Notice{}, err
	}
	return Notice{
		Delivery: deliver(ctx, s.Notifier, notify.SignupCode(user.Email, user.DisplayName, code, s.Secrets.otpTTL())),
	}, nil
}

// Login checks the password and either signs the user in or, with
// RequestOTP, sends a login code to complete with VerifyLoginOTP.
func (s *CredentialService) Login(ctx context.Context, in LoginInput) (LoginResult, error) {
	l := slogx.FromContext(ctx)

	email := domain.NormalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return LoginResult{}, fmt.Errorf("%w: email and password are required", ErrValidation)
	}

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Same work as a real check so timing does not reveal the account.
			_ = cryptox.VerifyPassword(in.Password, dummyHash())
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, fmt.Errorf("load user: %w", err)
	}

	if err := cryptox.VerifyPassword(in.Password, user.PasswordHash); err != nil {
		if !errors.Is(err, cryptox.ErrPasswordMismatch) {
			l.Error("stored password hash is unreadable", "user_id", user.ID, "error", err)
		}
		return LoginResult{}, ErrInvalidCredentials
	}

	if !user.Verified {
		return LoginResult{}, ErrNotVerified
	}

	s.upgradeHash(ctx, user, in.Password)

	if in.RequestOTP {
		code, err := s.Secrets.IssueOTP(ctx, user.ID, domain.PurposeLogin)
		if err != nil {
			return LoginResult{}, err
		}
		return LoginResult{
			AuthResult: AuthResult{User: user},
			OTPPending: true,
			Delivery:   deliver(ctx, s.Notifier, notify.LoginCode(user.Email, code, s.Secrets.otpTTL())),
		}, nil
	}

	res, err := s.issue(user)
	if err != nil {
		return LoginResult{}, err
	}
	l.Info("user logged in", "user_id", user.ID)
	return LoginResult{AuthResult: res}, nil
}

// VerifyLoginOTP completes an OTP-gated login.
func (s *CredentialService) VerifyLoginOTP(ctx context.Context, email, code string) (AuthResult, error) {
	user, err := s.userForCode(ctx, email, code)
	if err != nil {
		return AuthResult{}, err
	}
	if err := s.Secrets.RedeemOTP(ctx, user.ID, domain.PurposeLogin, code, nil); err != nil {
		return AuthResult{}, err
	}

	slogx.FromContext(ctx).Info("user logged in with otp", "user_id", user.ID)
	return s.issue(user)
}

// userForCode validates a (email, code) pair and loads the account. An
// unknown email has no pending secret by definition.
func (s *CredentialService) userForCode(ctx context.Context, email, code string) (domain.User, error) {
	email = domain.NormalizeEmail(email)
	code = strings.TrimSpace(code)
	if email == "" || code == "" {
		return domain.User{}, fmt.Errorf("%w: email and code are required", ErrValidation)
	}

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrNoSecretPending
		}
		return domain.User{}, fmt.Errorf("load user: %w", err)
	}
	return user, nil
}

func (s *CredentialService) issue(user domain.User) (AuthResult, error) {
	session, err := s.Sessions.Issue(user)
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{User: user, Session: session}, nil
}

// upgradeHash rewrites legacy or outdated hashes after a successful login.
func (s *CredentialService) upgradeHash(ctx context.Context, user domain.User, password string) {
	if !cryptox.NeedsRehash(user.PasswordHash) {
		return
	}
	l := slogx.FromContext(ctx)

	hash, err := cryptox.HashPassword(password)
	if err == nil {
		err = s.Store.Users().UpdatePasswordHash(ctx, user.ID, hash, clock(s.Now))
	}
	if err != nil {
		l.Warn("failed to upgrade password hash", "user_id", user.ID, "error", err)
		return
	}
	l.Info("upgraded password hash", "user_id", user.ID)
}
