package notify_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/tally/internal/auth/notify"
	"github.com/jhillyerd/enmime"
	"github.com/stretchr/testify/require"
)

type capturedMail struct {
	from string
	to   []string
	raw  []byte
}

type fakeSender struct {
	mu   sync.Mutex
	sent []capturedMail
	err  error
}

func (f *fakeSender) Send(reversePath string, recipients []string, msg []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, capturedMail{from: reversePath, to: recipients, raw: msg})
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSMTPNotify(t *testing.T) {
	sender := &fakeSender{}
	n := notify.NewSMTPWithSender("Tally", "no-reply@tally.test", sender)

	msg := notify.SignupCode("ada@example.com", "Ada", "042917", 15*time.Minute)
	require.NoError(t, n.Notify(t.Context(), msg))
	require.Len(t, sender.sent, 1)

	mail := sender.sent[0]
	require.Equal(t, "no-reply@tally.test", mail.from)
	require.Equal(t, []string{"ada@example.com"}, mail.to)

	env, err := enmime.ReadEnvelope(bytes.NewReader(mail.raw))
	require.NoError(t, err)
	require.Equal(t, "Verify your Tally account", env.GetHeader("Subject"))
	require.Contains(t, env.Text, "042917")
	require.Contains(t, env.Text, "15 minutes")
}

func TestSMTPNotifyError(t *testing.T) {
	sender := &fakeSender{err: errors.New("relay down")}
	n := notify.NewSMTPWithSender("Tally", "no-reply@tally.test", sender)

	err := n.Notify(t.Context(), notify.LoginCode("ada@example.com", "123456", time.Minute))
	require.ErrorContains(t, err, "relay down")
}

func TestMessages(t *testing.T) {
	reset := notify.PasswordReset("ada@example.com", "https://tally.test/reset?token=abc", time.Hour)
	require.Contains(t, reset.Body, "https://tally.test/reset?token=abc")
	require.Contains(t, reset.Body, "1 hour")

	change := notify.PasswordChangeCode("ada@example.com", "654321", 90*time.Second)
	require.Contains(t, change.Body, "654321")
	require.Contains(t, change.Body, "1m30s")
}

func TestLogNotifierOmitsBody(t *testing.T) {
	var buf bytes.Buffer
	n := notify.Log{Logger: slog.New(slog.NewTextHandler(&buf, nil))}

	require.NoError(t, n.Notify(t.Context(), notify.LoginCode("ada@example.com", "777888", time.Minute)))
	require.Contains(t, buf.String(), "ada@example.com")
	require.NotContains(t, buf.String(), "777888")
}

func TestAsyncDelivers(t *testing.T) {
	var (
		mu   sync.Mutex
		got  []string
		done = make(chan struct{}, 3)
	)
	next := notify.NotifierFunc(func(_ context.Context, msg notify.Message) error {
		mu.Lock()
		got = append(got, msg.To)
		mu.Unlock()
		done <- struct{}{}
		return nil
	})

	a := notify.NewAsync(next, 2, 8, discardLogger())
	for _, to := range []string{"a@x.test", "b@x.test", "c@x.test"} {
		require.NoError(t, a.Notify(t.Context(), notify.Message{To: to}))
	}
	for range 3 {
		<-done
	}
	require.NoError(t, a.Close(t.Context()))

	mu.Lock()
	defer mu.Unlock()
	require.ElementsMatch(t, []string{"a@x.test", "b@x.test", "c@x.test"}, got)
}

func TestAsyncQueueFull(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 2)
	next := notify.NotifierFunc(func(context.Context, notify.Message) error {
		started <- struct{}{}
		<-release
		return nil
	})

	a := notify.NewAsync(next, 1, 1, discardLogger())

	// The single worker picks up the first message and blocks on it.
	require.NoError(t, a.Notify(t.Context(), notify.Message{To: "1"}))
	<-started

	require.NoError(t, a.Notify(t.Context(), notify.Message{To: "2"}))
	require.ErrorIs(t, a.Notify(t.Context(), notify.Message{To: "3"}), notify.ErrQueueFull)

	close(release)
	require.NoError(t, a.Close(t.Context()))
	require.ErrorIs(t, a.Notify(t.Context(), notify.Message{To: "4"}), notify.ErrClosed)
}

func TestAsyncCloseHonoursContext(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	next := notify.NotifierFunc(func(context.Context, notify.Message) error {
		<-release
		return nil
	})

	a := notify.NewAsync(next, 1, 1, discardLogger())
	require.NoError(t, a.Notify(t.Context(), notify.Message{To: "1"}))

	ctx, cancel := context.WithTimeout(t.Context(), 20*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, a.Close(ctx), context.DeadlineExceeded)
}
