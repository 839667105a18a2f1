package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/stashbin/stashbin/internal/domain"
	"github.com/stashbin/stashbin/internal/store"
	"github.com/stashbin/stashbin/pkg/cryptox"
	"github.com/stashbin/stashbin/pkg/idx"
	"github.com/stashbin/stashbin/pkg/slugx"
)

// EnsureAdmin seeds the first account when the user table is empty so a
// fresh deployment is immediately usable. On a non-empty store it is a
// no-op.
func EnsureAdmin(ctx context.Context, st store.Store, logger *slog.Logger, username, password string) error {
	empty, err := st.Users().IsEmpty(ctx)
	if err != nil {
		return err
	}
	if !empty {
		return nil
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	admin := domain.User{
		ID:           idx.New().String(),
		Username:     username,
		PasswordHash: hash,
		Slug:         slugx.Slugify(username),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = st.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().CreateUser(ctx, admin); err != nil {
			return err
		}
		return tx.Groups().CreateGroup(ctx, domain.Group{
			ID:        idx.New().String(),
			UserID:    admin.ID,
			Name:      "Default",
			Slug:      domain.DefaultGroupSlug,
			Protected: true,
			CreatedAt: now,
			UpdatedAt: now,
		})
	})
	if err != nil {
		return err
	}

	logger.Info("bootstrap admin created", slog.String("username", username))
	return nil
}
