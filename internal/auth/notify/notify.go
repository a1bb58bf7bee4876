// Package notify delivers one-time codes and reset links to users.
package notify

import (
	"context"
	"fmt"
	"time"
)

// Message is a plain text notification to a single recipient.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Notifier sends messages. Implementations must be safe for concurrent use.
type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, msg Message) error

func (f NotifierFunc) Notify(ctx context.Context, msg Message) error { return f(ctx, msg) }

func SignupCode(to, displayName, code string, ttl time.Duration) Message {
	return Message{
		To:      to,
		Subject: "Verify your Tally account",
		Body: fmt.Sprintf("Hi %s,\n\nYour verification code is %s. It expires in %s.\n\n"+
			"If you did not create a Tally account you can ignore this email.\n",
			displayName, code, humanize(ttl)),
	}
}

func LoginCode(to, code string, ttl time.Duration) Message {
	return Message{
		To:      to,
		Subject: "Your Tally login code",
		Body: fmt.Sprintf("Your login code is %s. It expires in %s.\n\n"+
			"If you did not try to sign in, change your password.\n",
			code, humanize(ttl)),
	}
}

func PasswordChangeCode(to, code string, ttl time.Duration) Message {
	return Message{
		To:      to,
		Subject: "Confirm your Tally password change",
		Body: fmt.Sprintf("Use the code %s to confirm your new password. It expires in %s.\n",
			code, humanize(ttl)),
	}
}

func PasswordReset(to, link string, ttl time.Duration) Message {
	return Message{
		To:      to,
		Subject: "Reset your Tally password",
		Body: fmt.Sprintf("Follow this link to choose a new password:\n\n%s\n\n"+
			"The link expires in %s. If you did not ask for a reset you can ignore this email.\n",
			link, humanize(ttl)),
	}
}

func humanize(d time.Duration) string {
	switch {
	case d >= time.Hour && d%time.Hour == 0:
		if d == time.Hour {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", d/time.Hour)
	case d >= time.Minute && d%time.Minute == 0:
		if d == time.Minute {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", d/time.Minute)
	default:
		return d.String()
	}
}
