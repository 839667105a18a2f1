package stashsdk

import (
	"context"
	"net/http"
	"net/url"

	"github.com/stashbin/stashbin/pkg/api"
)

// doAuth performs an authenticated request, refreshing the token pair
// first when the access token is stale.
func (s *Session) doAuth(ctx context.Context, method, path string, in, out any) error {
	token, err := s.EnsureFresh(ctx)
	if err != nil {
		return err
	}
	return s.client.doJSON(ctx, method, path, token, in, out)
}

// Me returns the server's view of the authenticated account.
func (s *Session) Me(ctx context.Context) (api.UserInfo, error) {
	var out api.UserInfo
	err := s.doAuth(ctx, http.MethodGet, "/api/user/me", nil, &out)
	return out, err
}

// ListGroups returns the caller's document groups.
func (s *Session) ListGroups(ctx context.Context) ([]api.Group, error) {
	var out []api.Group
	err := s.doAuth(ctx, http.MethodGet, "/api/groups", nil, &out)
	return out, err
}

// CreateGroup creates a document group.
func (s *Session) CreateGroup(ctx context.Context, req api.GroupRequest) (api.Group, error) {
	var out api.Group
	err := s.doAuth(ctx, http.MethodPost, "/api/groups", req, &out)
	return out, err
}

// DeleteGroup deletes a group and its documents.
func (s *Session) DeleteGroup(ctx context.Context, slug string) error {
	return s.doAuth(ctx, http.MethodDelete, "/api/groups/"+url.PathEscape(slug), nil, nil)
}

// ListDocuments lists the documents in one group.
func (s *Session) ListDocuments(ctx context.Context, groupSlug string) ([]api.Document, error) {
	var out []api.Document
	err := s.doAuth(ctx, http.MethodGet, "/api/json/"+url.PathEscape(groupSlug), nil, &out)
	return out, err
}

// GetDocument fetches one document.
func (s *Session) GetDocument(ctx context.Context, groupSlug, docSlug string) (api.Document, error) {
	var out api.Document
	err := s.doAuth(ctx, http.MethodGet,
		"/api/json/"+url.PathEscape(groupSlug)+"/"+url.PathEscape(docSlug), nil, &out)
	return out, err
}

// CreateDocument stores a new JSON document in a group.
func (s *Session) CreateDocument(ctx context.Context, groupSlug string, req api.DocumentRequest) (api.Document, error) {
	var out api.Document
	err := s.doAuth(ctx, http.MethodPost, "/api/json/"+url.PathEscape(groupSlug), req, &out)
	return out, err
}

// UpdateDocument replaces a document's content.
func (s *Session) UpdateDocument(ctx context.Context, groupSlug, docSlug string, req api.DocumentRequest) (api.Document, error) {
	var out api.Document
	err := s.doAuth(ctx, http.MethodPut,
		"/api/json/"+url.PathEscape(groupSlug)+"/"+url.PathEscape(docSlug), req, &out)
	return out, err
}

// DeleteDocument removes a document.
func (s *Session) DeleteDocument(ctx context.Context, groupSlug, docSlug string) error {
	return s.doAuth(ctx, http.MethodDelete,
		"/api/json/"+url.PathEscape(groupSlug)+"/"+url.PathEscape(docSlug), nil, nil)
}

// CreateAPIKey mints an API key; the key value is only present in this
// response.
func (s *Session) CreateAPIKey(ctx context.Context, req api.APIKeyCreateRequest) (api.APIKey, error) {
	var out api.APIKey
	err := s.doAuth(ctx, http.MethodPost, "/api/user/apikey", req, &out)
	return out, err
}

// ListAPIKeys lists the caller's API keys, values omitted.
func (s *Session) ListAPIKeys(ctx context.Context) ([]api.APIKey, error) {
	var out []api.APIKey
	err := s.doAuth(ctx, http.MethodGet, "/api/user/apikey", nil, &out)
	return out, err
}
