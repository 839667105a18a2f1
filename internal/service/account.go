package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/stashbin/stashbin/internal/domain"
	"github.com/stashbin/stashbin/internal/store"
	"github.com/stashbin/stashbin/pkg/cryptox"
	"github.com/stashbin/stashbin/pkg/slogx"
	"github.com/stashbin/stashbin/pkg/slugx"
)

// AccountService handles self-service profile and password management.
type AccountService struct {
	Store store.Store
}

func (s *AccountService) Get(ctx context.Context, userID string) (domain.User, error) {
	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, ErrNotFound
	}
	return u, err
}

// ChangePassword verifies the current password before storing the new
// hash, then revokes every active refresh token so stolen sessions die
// with the old credential.
func (s *AccountService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	if newPassword == "" {
		return ErrValidation
	}

	user, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}

	if err := cryptox.VerifyPassword(currentPassword, user.PasswordHash); err != nil {
		return ErrInvalidCredentials
	}

	hash, err := cryptox.HashPassword(newPassword)
	if err != nil {
		return err
	}

	revoked := 0
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().UpdatePasswordHash(ctx, userID, hash); err != nil {
			return err
		}
		revoked, err = tx.ActiveTokens().RevokeUserTokens(ctx, userID)
		return err
	})
	if err != nil {
		return err
	}

	slogx.FromContext(ctx).Info("password changed",
		slog.String("user_id", userID), slog.Int("sessions_revoked", revoked))
	return nil
}

// UpdateProfile changes username and email. The public slug follows the
// username so data URLs track the rename.
func (s *AccountService) UpdateProfile(ctx context.Context, userID, username, email string) (domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return domain.User{}, ErrValidation
	}

	if err := s.Store.Users().UpdateProfile(ctx, userID, username, strings.TrimSpace(email), slugx.Slugify(username)); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, ErrUsernameTaken
		}
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrNotFound
		}
		return domain.User{}, err
	}
	return s.Get(ctx, userID)
}
