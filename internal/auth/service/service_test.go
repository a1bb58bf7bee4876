package service

import (
	"context"
	"os"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/tally/internal/auth/notify"
	"github.com/aussiebroadwan/tally/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/tally/internal/auth/throttle"
	"github.com/aussiebroadwan/tally/pkg/cryptox"
	"github.com/aussiebroadwan/tally/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	cryptox.SetPepper("service-test-pepper")
	os.Exit(m.Run())
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// outbox records every notification instead of sending it.
type outbox struct {
	mu   sync.Mutex
	msgs []notify.Message
	err  error
}

func (o *outbox) Notify(_ context.Context, msg notify.Message) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.err != nil {
		return o.err
	}
	o.msgs = append(o.msgs, msg)
	return nil
}

func (o *outbox) count() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.msgs)
}

func (o *outbox) last(t *testing.T) notify.Message {
	t.Helper()
	o.mu.Lock()
	defer o.mu.Unlock()
	require.NotEmpty(t, o.msgs, "expected a notification")
	return o.msgs[len(o.msgs)-1]
}

var (
	codePattern  = regexp.MustCompile(`\b(\d{6})\b`)
	tokenPattern = regexp.MustCompile(`token=([0-9a-f]{48})`)
)

// lastCode extracts the one-time code from the latest notification.
func (o *outbox) lastCode(t *testing.T) string {
	t.Helper()
	m := codePattern.FindStringSubmatch(o.last(t).Body)
	require.NotNil(t, m, "no code in notification body")
	return m[1]
}

func (o *outbox) lastResetToken(t *testing.T) string {
	t.Helper()
	m := tokenPattern.FindStringSubmatch(o.last(t).Body)
	require.NotNil(t, m, "no reset token in notification body")
	return m[1]
}

type harness struct {
	store     *sqlite.Store
	clock     *fakeClock
	mail      *outbox
	secrets   *SecretKeeper
	sessions  *SessionService
	creds     *CredentialService
	passwords *PasswordService
	users     *UserService
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.ApplyMigrations())

	clk := &fakeClock{now: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)}
	mail := &outbox{}

	signer, err := jwtx.NewHS256([]byte("service-test-secret-0123456789abcdef"), jwtx.VerifyOptions{
		Issuer: "tally-test",
		Now:    clk.Now,
	})
	require.NoError(t, err)

	secrets := &SecretKeeper{
		Store:       s,
		OTPTTL:      DefaultOTPTTL,
		ResetTTL:    DefaultResetTTL,
		OTPDigits:   DefaultOTPDigits,
		MaxAttempts: DefaultOTPMaxAttempts,
		Now:         clk.Now,
	}
	sessions := &SessionService{
		Signer:   signer,
		Verifier: signer,
		Store:    s,
		Issuer:   "tally-test",
		TTL:      jwtx.DefaultSessionTTL,
		Now:      clk.Now,
	}
	th := throttle.NewDatabase(s)
	th.Now = clk.Now

	policy := PasswordPolicy{MinLength: DefaultMinPasswordLength}

	return &harness{
		store:    s,
		clock:    clk,
		mail:     mail,
		secrets:  secrets,
		sessions: sessions,
		creds: &CredentialService{
			Store:          s,
			Secrets:        secrets,
			Sessions:       sessions,
			Notifier:       mail,
			Throttle:       th,
			Policy:         policy,
			ResendInterval: DefaultResendInterval,
			Now:            clk.Now,
		},
		passwords: &PasswordService{
			Store:    s,
			Secrets:  secrets,
			Notifier: mail,
			Policy:   policy,
			ResetURL: "https://tally.test/reset-password",
			Now:      clk.Now,
		},
		users: &UserService{Store: s, Now: clk.Now},
	}
}

// signupVerified creates an account and completes verification.
func (h *harness) signupVerified(t *testing.T, name, email, password string) AuthResult {
	t.Helper()
	ctx := t.Context()

	_, err := h.creds.Signup(ctx, SignupInput{DisplayName: name, Email: email, Password: password})
	require.NoError(t, err)

	res, err := h.creds.VerifySignup(ctx, email, h.mail.lastCode(t))
	require.NoError(t, err)
	return res
}

// wrongCode returns a code of the right shape that differs from code.
func wrongCode(code string) string {
	if code == "000000" {
		return "000001"
	}
	return "000000"
}
