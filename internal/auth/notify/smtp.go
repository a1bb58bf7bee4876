package notify

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strconv"

	"github.com/jhillyerd/enmime"
)

// SMTPConfig describes the outgoing mail relay.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	FromName string
	FromAddr string
}

// SMTP builds MIME messages and hands them to a mail relay.
type SMTP struct {
	fromName string
	fromAddr string
	sender   enmime.Sender
}

func NewSMTP(cfg SMTPConfig) *SMTP {
	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))

	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}

	return NewSMTPWithSender(cfg.FromName, cfg.FromAddr, enmime.NewSMTP(addr, auth))
}

// NewSMTPWithSender uses an arbitrary enmime sender as the transport.
func NewSMTPWithSender(fromName, fromAddr string, sender enmime.Sender) *SMTP {
	return &SMTP{fromName: fromName, fromAddr: fromAddr, sender: sender}
}

func (s *SMTP) Notify(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := enmime.Builder().
		From(s.fromName, s.fromAddr).
		To("", msg.To).
		Subject(msg.Subject).
		Text([]byte(msg.Body)).
		Send(s.sender)
	if err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}
