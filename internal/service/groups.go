package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/stashbin/stashbin/internal/domain"
	"github.com/stashbin/stashbin/internal/store"
	"github.com/stashbin/stashbin/pkg/idx"
	"github.com/stashbin/stashbin/pkg/slugx"
)

// GroupService manages a user's document groups.
type GroupService struct {
	Store store.Store
}

func (s *GroupService) List(ctx context.Context, userID string) ([]domain.Group, error) {
	return s.Store.Groups().ListGroupsByUser(ctx, userID)
}

func (s *GroupService) GetBySlug(ctx context.Context, userID, slug string) (domain.Group, error) {
	g, err := s.Store.Groups().GetGroupBySlug(ctx, userID, slug)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Group{}, ErrNotFound
	}
	return g, err
}

func (s *GroupService) Create(ctx context.Context, userID, name, description string, allowPublicWrite bool) (domain.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Group{}, ErrValidation
	}

	now := time.Now().UTC()
	g := domain.Group{
		ID:               idx.New().String(),
		UserID:           userID,
		Name:             name,
		Slug:             slugx.Slugify(name),
		Description:      description,
		AllowPublicWrite: allowPublicWrite,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.Store.Groups().CreateGroup(ctx, g); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.Group{}, ErrSlugTaken
		}
		return domain.Group{}, err
	}
	return g, nil
}

func (s *GroupService) Update(ctx context.Context, userID, slug, name, description string, allowPublicWrite bool) (domain.Group, error) {
	g, err := s.GetBySlug(ctx, userID, slug)
	if err != nil {
		return domain.Group{}, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Group{}, ErrValidation
	}

	g.Name = name
	g.Description = description
	g.AllowPublicWrite = allowPublicWrite
	g.UpdatedAt = time.Now().UTC()

	// The protected default group keeps its slug; everything else re-slugs
	// from the new name.
	if !g.Protected {
		g.Slug = slugx.Slugify(name)
	}

	if err := s.Store.Groups().UpdateGroup(ctx, g); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.Group{}, ErrSlugTaken
		}
		return domain.Group{}, err
	}
	return g, nil
}

// Delete removes a group and, via FK cascade, its documents. Protected
// groups refuse deletion.
func (s *GroupService) Delete(ctx context.Context, userID, slug string) error {
	g, err := s.GetBySlug(ctx, userID, slug)
	if err != nil {
		return err
	}
	if g.Protected {
		return ErrProtectedGroup
	}

	if err := s.Store.Groups().DeleteGroup(ctx, g.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}
