package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/aussiebroadwan/tally/internal/auth/domain"
	"github.com/aussiebroadwan/tally/internal/auth/service"
	"github.com/aussiebroadwan/tally/pkg/httpx"
	"github.com/aussiebroadwan/tally/pkg/slogx"
)

type ctxUserKey struct{}

// Authenticator resolves a bearer token to its user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (domain.User, error)
}

// RequireSession rejects requests without a valid session before they reach
// the handler. Accepted requests carry the user and user ID in their context.
func RequireSession(auth Authenticator) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := httpx.BearerToken(r)
			if !ok {
				httpx.WriteBearerError(w, "missing bearer token")
				return
			}

			user, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				if !errors.Is(err, service.ErrUnauthorized) {
					writeServiceError(w, r, err)
					return
				}
				slogx.FromContext(r.Context()).Debug("session rejected", "error", err)
				httpx.WriteBearerError(w, "invalid or expired session")
				return
			}

			ctx := context.WithValue(r.Context(), ctxUserKey{}, user)
			ctx = httpx.WithUserID(ctx, user.ID)
			ctx = slogx.WithUserID(ctx, user.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext returns the user attached by RequireSession.
func UserFromContext(ctx context.Context) (domain.User, bool) {
	u, ok := ctx.Value(ctxUserKey{}).(domain.User)
	return u, ok
}
