package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/stashbin/stashbin/internal/domain"
	"github.com/stashbin/stashbin/internal/store"
	"github.com/stashbin/stashbin/pkg/cryptox"
	"github.com/stashbin/stashbin/pkg/idx"
	"github.com/stashbin/stashbin/pkg/slogx"
	"github.com/stashbin/stashbin/pkg/slugx"
)

// AuthService verifies credentials and registers accounts.
type AuthService struct {
	Store store.Store

	// RegistrationOpen gates self-service signup. When false, Register
	// returns ErrRegistrationClosed.
	RegistrationOpen bool
}

// VerifyCredentials checks a username/password pair against the stored
// bcrypt hash. Unknown usernames and wrong passwords are indistinguishable
// to the caller.
func (s *AuthService) VerifyCredentials(ctx context.Context, username, password string) (domain.User, error) {
	user, err := s.Store.Users().GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrInvalidCredentials
		}
		return domain.User{}, err
	}

	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		slogx.FromContext(ctx).Info("password verification failed", slog.String("username", username))
		return domain.User{}, ErrInvalidCredentials
	}

	return user, nil
}

// Register creates a user together with its default document group. Both
// inserts run in one transaction so a half-registered account cannot exist.
func (s *AuthService) Register(ctx context.Context, username, password, email string) (domain.User, error) {
	if !s.RegistrationOpen {
		return domain.User{}, ErrRegistrationClosed
	}

	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return domain.User{}, ErrValidation
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return domain.User{}, err
	}

	now := time.Now().UTC()
	user := domain.User{
		ID:           idx.New().String(),
		Username:     username,
		Email:        strings.TrimSpace(email),
		PasswordHash: hash,
		Slug:         slugx.Slugify(username),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().CreateUser(ctx, user); err != nil {
			return err
		}
		return tx.Groups().CreateGroup(ctx, domain.Group{
			ID:        idx.New().String(),
			UserID:    user.ID,
			Name:      "Default",
			Slug:      domain.DefaultGroupSlug,
			Protected: true,
			CreatedAt: now,
			UpdatedAt: now,
		})
	})
	if err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, ErrUsernameTaken
		}
		return domain.User{}, err
	}

	slogx.FromContext(ctx).Info("user registered", slog.String("user_id", user.ID), slog.String("username", user.Username))
	return user, nil
}
