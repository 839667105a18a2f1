package http

import (
	"net/http"
	"time"

	"github.com/stashbin/stashbin/internal/domain"
	"github.com/stashbin/stashbin/internal/service"
	"github.com/stashbin/stashbin/pkg/api"
	"github.com/stashbin/stashbin/pkg/httpx"
)

type APIKeysHandler struct {
	APIKeyService *service.APIKeyService
}

// toAPIKey omits the key value; only HandleCreate returns it.
func toAPIKey(k domain.APIKey) api.APIKey {
	out := api.APIKey{
		ID:        k.ID,
		Name:      k.Name,
		IsActive:  k.IsActive,
		CreatedAt: k.CreatedAt.UnixMilli(),
	}
	if k.LastUsed != nil {
		out.LastUsed = k.LastUsed.UnixMilli()
	}
	if k.ExpiresAt != nil {
		out.ExpiresAt = k.ExpiresAt.UnixMilli()
	}
	return out
}

func (h *APIKeysHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.IdentityFromContext(r.Context())
	if !ok {
		api.ErrUnauthorized.Write(w)
		return
	}

	keys, err := h.APIKeyService.List(r.Context(), id.UserID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]api.APIKey, 0, len(keys))
	for _, k := range keys {
		out = append(out, toAPIKey(k))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func (h *APIKeysHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.IdentityFromContext(r.Context())
	if !ok {
		api.ErrUnauthorized.Write(w)
		return
	}

	var req api.APIKeyCreateRequest
	if err := httpx.ReadJSON(r, &req); err != nil {
		api.ErrBadRequest.Write(w)
		return
	}

	var expiresAt *time.Time
	if req.ExpiresAt > 0 {
		t := time.UnixMilli(req.ExpiresAt).UTC()
		expiresAt = &t
	}

	k, err := h.APIKeyService.Create(r.Context(), id.UserID, req.Name, expiresAt)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	// The one response that carries the key value.
	out := toAPIKey(k)
	out.Key = k.Key
	httpx.WriteJSON(w, http.StatusCreated, out)
}

func (h *APIKeysHandler) HandleRename(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.IdentityFromContext(r.Context())
	if !ok {
		api.ErrUnauthorized.Write(w)
		return
	}

	var req api.APIKeyRenameRequest
	if err := httpx.ReadJSON(r, &req); err != nil || req.ID == "" {
		api.ErrBadRequest.Write(w)
		return
	}

	if err := h.APIKeyService.Rename(r.Context(), id.UserID, req.ID, req.Name); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, api.MessageResponse{Message: "key renamed"})
}

func (h *APIKeysHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.IdentityFromContext(r.Context())
	if !ok {
		api.ErrUnauthorized.Write(w)
		return
	}

	var req api.APIKeyStatusRequest
	if err := httpx.ReadJSON(r, &req); err != nil || req.ID == "" {
		api.ErrBadRequest.Write(w)
		return
	}

	if err := h.APIKeyService.SetActive(r.Context(), id.UserID, req.ID, req.IsActive); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, api.MessageResponse{Message: "key status updated"})
}

func (h *APIKeysHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.IdentityFromContext(r.Context())
	if !ok {
		api.ErrUnauthorized.Write(w)
		return
	}

	if err := h.APIKeyService.Delete(r.Context(), id.UserID, r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, api.MessageResponse{Message: "key deleted"})
}
