package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aussiebroadwan/tally/internal/auth/domain"
	"github.com/aussiebroadwan/tally/internal/auth/store"
)

type UserService struct {
	Store store.Store
	Now   func() time.Time
}

// GetUserByID fetches a user by id.
func (s *UserService) GetUserByID(ctx context.Context, userID string) (domain.User, error) {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrNotFound
		}
		return domain.User{}, fmt.Errorf("load user: %w", err)
	}
	return user, nil
}

// UpdateDisplayName renames the user and returns the updated record.
func (s *UserService) UpdateDisplayName(ctx context.Context, userID, displayName string) (domain.User, error) {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return domain.User{}, fmt.Errorf("%w: display_name is required", ErrValidation)
	}

	if err := s.Store.Users().UpdateDisplayName(ctx, userID, displayName, clock(s.Now)); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrNotFound
		}
		return domain.User{}, fmt.Errorf("update display name: %w", err)
	}
	return s.GetUserByID(ctx, userID)
}
