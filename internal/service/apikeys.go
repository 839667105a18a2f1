package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/stashbin/stashbin/internal/domain"
	"github.com/stashbin/stashbin/internal/store"
	"github.com/stashbin/stashbin/pkg/cryptox"
	"github.com/stashbin/stashbin/pkg/idx"
)

// APIKeyService manages the keys that authorize public data-endpoint
// access for protected groups.
type APIKeyService struct {
	Store store.Store
}

func (s *APIKeyService) List(ctx context.Context, userID string) ([]domain.APIKey, error) {
	return s.Store.APIKeys().ListAPIKeysByUser(ctx, userID)
}

// Create mints a new key. The key value is returned exactly once; callers
// are expected to copy it on creation.
func (s *APIKeyService) Create(ctx context.Context, userID, name string, expiresAt *time.Time) (domain.APIKey, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.APIKey{}, ErrValidation
	}

	key, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return domain.APIKey{}, err
	}

	k := domain.APIKey{
		ID:        idx.New().String(),
		UserID:    userID,
		Name:      name,
		Key:       key,
		IsActive:  true,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.Store.APIKeys().CreateAPIKey(ctx, k); err != nil {
		return domain.APIKey{}, err
	}
	return k, nil
}

func (s *APIKeyService) Rename(ctx context.Context, userID, id, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrValidation
	}
	return mapRepoNotFound(s.Store.APIKeys().RenameAPIKey(ctx, userID, id, name))
}

func (s *APIKeyService) SetActive(ctx context.Context, userID, id string, active bool) error {
	return mapRepoNotFound(s.Store.APIKeys().SetAPIKeyActive(ctx, userID, id, active))
}

func (s *APIKeyService) Delete(ctx context.Context, userID, id string) error {
	return mapRepoNotFound(s.Store.APIKeys().DeleteAPIKey(ctx, userID, id))
}

// Validate checks that key belongs to userID, is active and unexpired,
// then stamps its last-use time. Unknown, disabled and expired keys all
// look the same to the caller.
func (s *APIKeyService) Validate(ctx context.Context, userID, key string) error {
	if key == "" {
		return ErrAPIKeyRequired
	}

	k, err := s.Store.APIKeys().GetAPIKey(ctx, userID, key)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrAPIKeyInvalid
		}
		return err
	}

	now := time.Now().UTC()
	if !k.Usable(now) {
		return ErrAPIKeyInvalid
	}

	// Last-use stamping is best effort.
	_ = s.Store.APIKeys().TouchAPIKey(ctx, k.ID, now)
	return nil
}

func mapRepoNotFound(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
