package service

import (
	"context"
	"sync"

	"github.com/aussiebroadwan/tally/internal/auth/domain"
	"github.com/aussiebroadwan/tally/internal/auth/notify"
	"github.com/aussiebroadwan/tally/pkg/cryptox"
	"github.com/aussiebroadwan/tally/pkg/slogx"
)

// deliver sends msg and reports the outcome. A failed notification never
// fails the operation that triggered it.
func deliver(ctx context.Context, n notify.Notifier, msg notify.Message) domain.Delivery {
	if err := n.Notify(ctx, msg); err != nil {
		slogx.FromContext(ctx).Warn("notification failed", "to", msg.To, "subject", msg.Subject, "error", err)
		return domain.DeliveryFailed
	}
	return domain.DeliveryQueued
}

var (
	dummyOnce sync.Once
	dummy     string
)

// dummyHash is a valid hash of a random password, verified against when the
// account does not exist.
func dummyHash() string {
	dummyOnce.Do(func() {
		pw, err := cryptox.GenerateToken(cryptox.TokenSize128)
		if err != nil {
			pw = "dummy-password"
		}
		dummy, _ = cryptox.HashPassword(pw)
	})
	return dummy
}
