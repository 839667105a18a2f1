package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/stashbin/stashbin/internal/domain"
	"github.com/stashbin/stashbin/internal/store"
	"github.com/stashbin/stashbin/pkg/idx"
	"github.com/stashbin/stashbin/pkg/slugx"
)

// DocumentService manages stored JSON documents. Content is opaque beyond
// being well-formed JSON.
type DocumentService struct {
	Store store.Store
}

func (s *DocumentService) List(ctx context.Context, userID string) ([]domain.Document, error) {
	return s.Store.Documents().ListDocumentsByUser(ctx, userID)
}

func (s *DocumentService) ListByGroup(ctx context.Context, userID, groupSlug string) ([]domain.Document, error) {
	g, err := s.resolveGroup(ctx, userID, groupSlug)
	if err != nil {
		return nil, err
	}
	return s.Store.Documents().ListDocumentsByGroup(ctx, g.ID)
}

func (s *DocumentService) Get(ctx context.Context, userID, groupSlug, docSlug string) (domain.Document, error) {
	g, err := s.resolveGroup(ctx, userID, groupSlug)
	if err != nil {
		return domain.Document{}, err
	}

	d, err := s.Store.Documents().GetDocumentBySlug(ctx, g.ID, docSlug)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Document{}, ErrNotFound
	}
	return d, err
}

func (s *DocumentService) Create(ctx context.Context, userID, groupSlug, name, description, content string) (domain.Document, error) {
	g, err := s.resolveGroup(ctx, userID, groupSlug)
	if err != nil {
		return domain.Document{}, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Document{}, ErrValidation
	}
	if content == "" {
		content = "{}"
	}
	if !json.Valid([]byte(content)) {
		return domain.Document{}, ErrInvalidJSON
	}

	now := time.Now().UTC()
	d := domain.Document{
		ID:          idx.New().String(),
		UserID:      userID,
		GroupID:     g.ID,
		Name:        name,
		Slug:        slugx.Slugify(name),
		Description: description,
		Content:     content,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.Store.Documents().CreateDocument(ctx, d); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.Document{}, ErrSlugTaken
		}
		return domain.Document{}, err
	}
	return d, nil
}

// Update replaces a document's content (and optionally name/description).
// Empty name keeps the current one; slugs never change after creation so
// public URLs stay stable.
func (s *DocumentService) Update(ctx context.Context, userID, groupSlug, docSlug, name, description, content string) (domain.Document, error) {
	d, err := s.Get(ctx, userID, groupSlug, docSlug)
	if err != nil {
		return domain.Document{}, err
	}

	if name = strings.TrimSpace(name); name != "" {
		d.Name = name
	}
	if description != "" {
		d.Description = description
	}
	if content != "" {
		if !json.Valid([]byte(content)) {
			return domain.Document{}, ErrInvalidJSON
		}
		d.Content = content
	}
	d.UpdatedAt = time.Now().UTC()

	if err := s.Store.Documents().UpdateDocument(ctx, d); err != nil {
		return domain.Document{}, err
	}
	return d, nil
}

func (s *DocumentService) Delete(ctx context.Context, userID, groupSlug, docSlug string) error {
	d, err := s.Get(ctx, userID, groupSlug, docSlug)
	if err != nil {
		return err
	}
	if err := s.Store.Documents().DeleteDocument(ctx, d.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *DocumentService) resolveGroup(ctx context.Context, userID, groupSlug string) (domain.Group, error) {
	g, err := s.Store.Groups().GetGroupBySlug(ctx, userID, groupSlug)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Group{}, ErrNotFound
	}
	return g, err
}
