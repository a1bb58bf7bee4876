package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/tally/internal/auth/domain"
	"github.com/aussiebroadwan/tally/internal/auth/store"
	"github.com/aussiebroadwan/tally/pkg/jwtx"
)

// iatPrecision is how much an iat claim may lose to float rounding on the
// way through a token.
const iatPrecision = time.Millisecond

// SessionService issues stateless session tokens and resolves them back to
// users. A token is only honoured if it was issued after the user's
// SessionsValidAfter, which moves whenever the password changes.
type SessionService struct {
	Signer   jwtx.Signer
	Verifier jwtx.Verifier
	Store    store.Store
	Issuer   string
	TTL      time.Duration
	Now      func() time.Time
}

func (s *SessionService) ttl() time.Duration {
	if s.TTL <= 0 {
		return jwtx.DefaultSessionTTL
	}
	return s.TTL
}

// Issue signs a new session token for user.
func (s *SessionService) Issue(user domain.User) (domain.Session, error) {
	now := clock(s.Now).Truncate(time.Millisecond)
	claims := jwtx.NewSessionClaims(user.ID, user.Email, s.Issuer, s.ttl(), now)

	token, err := s.Signer.Sign(claims)
	if err != nil {
		return domain.Session{}, fmt.Errorf("sign session: %w", err)
	}

	return domain.Session{
		Token:     token,
		IssuedAt:  now,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Verify checks the token signature and lifetime without touching the store.
func (s *SessionService) Verify(token string) (jwtx.Claims, error) {
	if token == "" {
		return jwtx.Claims{}, ErrUnauthorized
	}
	claims, err := s.Verifier.Verify(token)
	if err != nil {
		return jwtx.Claims{}, fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}
	return claims, nil
}

// Authenticate resolves a token to its user. Every failure, including a
// deleted user or a revoked session, is ErrUnauthorized.
func (s *SessionService) Authenticate(ctx context.Context, token string) (domain.User, error) {
	claims, err := s.Verify(token)
	if err != nil {
		return domain.User{}, err
	}

	user, err := s.Store.Users().GetUserByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrUnauthorized
		}
		return domain.User{}, fmt.Errorf("load session user: %w", err)
	}

	if !user.SessionsValidAfter.IsZero() &&
		claims.IssuedAtTime().Add(iatPrecision).Before(user.SessionsValidAfter) {
		return domain.User{}, fmt.Errorf("%w: session revoked", ErrUnauthorized)
	}

	return user, nil
}
