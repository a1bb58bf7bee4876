package service

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUserService(t *testing.T) {
	h := newHarness(t)
	ctx := t.Context()
	auth := h.signupVerified(t, "Ann", "ann@x.com", "secret1")

	user, err := h.users.GetUserByID(ctx, auth.User.ID)
	require.NoError(t, err)
	require.Equal(t, "Ann", user.DisplayName)

	user, err = h.users.UpdateDisplayName(ctx, auth.User.ID, "  Annie ")
	require.NoError(t, err)
	require.Equal(t, "Annie", user.DisplayName)
	require.Equal(t, "ann@x.com", user.Email, "email is immutable")

	_, err = h.users.UpdateDisplayName(ctx, auth.User.ID, " ")
	require.ErrorIs(t, err, ErrValidation)

	_, err = h.users.GetUserByID(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = h.users.UpdateDisplayName(ctx, "missing", "Ghost")
	require.ErrorIs(t, err, ErrNotFound)
}
