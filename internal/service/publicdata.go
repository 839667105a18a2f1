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

// PublicDataService serves the unauthenticated data endpoints. Resources
// are addressed by user slug rather than user ID, and protected groups
// require a valid API key before anything is returned.
type PublicDataService struct {
	Store   store.Store
	APIKeys *APIKeyService
}

// GetDocument returns the raw JSON content of one document.
func (s *PublicDataService) GetDocument(ctx context.Context, userSlug, groupSlug, docSlug, apiKey string) (json.RawMessage, error) {
	_, group, err := s.resolve(ctx, userSlug, groupSlug, apiKey)
	if err != nil {
		return nil, err
	}

	d, err := s.Store.Documents().GetDocumentBySlug(ctx, group.ID, docSlug)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return json.RawMessage(d.Content), nil
}

// ListGroup returns the contents of every document in a group, combined
// into a single JSON array.
func (s *PublicDataService) ListGroup(ctx context.Context, userSlug, groupSlug, apiKey string) (json.RawMessage, error) {
	_, group, err := s.resolve(ctx, userSlug, groupSlug, apiKey)
	if err != nil {
		return nil, err
	}

	docs, err := s.Store.Documents().ListDocumentsByGroup(ctx, group.ID)
	if err != nil {
		return nil, err
	}

	contents := make([]json.RawMessage, 0, len(docs))
	for _, d := range docs {
		contents = append(contents, json.RawMessage(d.Content))
	}
	return json.Marshal(contents)
}

// Upsert writes a document through the public endpoint. The group must
// allow public writes. Documents are matched by name within the group:
// an existing name is updated in place, otherwise a new document is
// created under the requested (or a random) slug.
func (s *PublicDataService) Upsert(ctx context.Context, userSlug, groupSlug, name, slug, description, content, apiKey string) (domain.Document, bool, error) {
	user, group, err := s.resolve(ctx, userSlug, groupSlug, apiKey)
	if err != nil {
		return domain.Document{}, false, err
	}

	if !group.AllowPublicWrite {
		return domain.Document{}, false, ErrPublicWriteDisabled
	}

	name = strings.TrimSpace(name)
	if name == "" || content == "" {
		return domain.Document{}, false, ErrValidation
	}
	if !json.Valid([]byte(content)) {
		return domain.Document{}, false, ErrInvalidJSON
	}

	now := time.Now().UTC()

	docs, err := s.Store.Documents().ListDocumentsByGroup(ctx, group.ID)
	if err != nil {
		return domain.Document{}, false, err
	}
	for _, d := range docs {
		if d.Name != name {
			continue
		}
		d.Content = content
		if description != "" {
			d.Description = description
		}
		d.UpdatedAt = now
		if err := s.Store.Documents().UpdateDocument(ctx, d); err != nil {
			return domain.Document{}, false, err
		}
		return d, false, nil
	}

	docSlug := slugx.Slugify(slug)
	if docSlug == "" {
		docSlug = slugx.Random()
	}

	d := domain.Document{
		ID:          idx.New().String(),
		UserID:      user.ID,
		GroupID:     group.ID,
		Name:        name,
		Slug:        docSlug,
		Description: description,
		Content:     content,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	err = s.Store.Documents().CreateDocument(ctx, d)
	if errors.Is(err, store.ErrAlreadyExists) {
		// Requested slug is taken in this group; fall back to a random one.
		d.Slug = slugx.Random()
		err = s.Store.Documents().CreateDocument(ctx, d)
	}
	if err != nil {
		return domain.Document{}, false, err
	}
	return d, true, nil
}

// resolve maps public slugs to their records and enforces the protected
// group API key check.
func (s *PublicDataService) resolve(ctx context.Context, userSlug, groupSlug, apiKey string) (domain.User, domain.Group, error) {
	user, err := s.Store.Users().GetUserBySlug(ctx, userSlug)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, domain.Group{}, ErrNotFound
		}
		return domain.User{}, domain.Group{}, err
	}

	group, err := s.Store.Groups().GetGroupBySlug(ctx, user.ID, groupSlug)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, domain.Group{}, ErrNotFound
		}
		return domain.User{}, domain.Group{}, err
	}

	if group.Protected {
		if apiKey == "" {
			return domain.User{}, domain.Group{}, ErrAPIKeyRequired
		}
		if err := s.APIKeys.Validate(ctx, user.ID, apiKey); err != nil {
			return domain.User{}, domain.Group{}, err
		}
	}

	return user, group, nil
}
