package http

import (
	"net/http"

	"github.com/stashbin/stashbin/internal/domain"
	"github.com/stashbin/stashbin/internal/service"
	"github.com/stashbin/stashbin/pkg/api"
	"github.com/stashbin/stashbin/pkg/httpx"
)

type DocumentsHandler struct {
	DocumentService *service.DocumentService
}

func toDocument(d domain.Document) api.Document {
	return api.Document{
		ID:          d.ID,
		Name:        d.Name,
		Slug:        d.Slug,
		Description: d.Description,
		Content:     d.Content,
		GroupID:     d.GroupID,
		CreatedAt:   d.CreatedAt.UnixMilli(),
		UpdatedAt:   d.UpdatedAt.UnixMilli(),
	}
}

func writeDocuments(w http.ResponseWriter, docs []domain.Document) {
	out := make([]api.Document, 0, len(docs))
	for _, d := range docs {
		out = append(out, toDocument(d))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func (h *DocumentsHandler) HandleListAll(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.IdentityFromContext(r.Context())
	if !ok {
		api.ErrUnauthorized.Write(w)
		return
	}

	docs, err := h.DocumentService.List(r.Context(), id.UserID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeDocuments(w, docs)
}

func (h *DocumentsHandler) HandleListGroup(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.IdentityFromContext(r.Context())
	if !ok {
		api.ErrUnauthorized.Write(w)
		return
	}

	docs, err := h.DocumentService.ListByGroup(r.Context(), id.UserID, r.PathValue("group"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeDocuments(w, docs)
}

func (h *DocumentsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.IdentityFromContext(r.Context())
	if !ok {
		api.ErrUnauthorized.Write(w)
		return
	}

	d, err := h.DocumentService.Get(r.Context(), id.UserID, r.PathValue("group"), r.PathValue("slug"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toDocument(d))
}

func (h *DocumentsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.IdentityFromContext(r.Context())
	if !ok {
		api.ErrUnauthorized.Write(w)
		return
	}

	var req api.DocumentRequest
	if err := httpx.ReadJSON(r, &req); err != nil {
		api.ErrBadRequest.Write(w)
		return
	}

	d, err := h.DocumentService.Create(r.Context(), id.UserID, r.PathValue("group"), req.Name, req.Description, req.Content)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toDocument(d))
}

func (h *DocumentsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.IdentityFromContext(r.Context())
	if !ok {
		api.ErrUnauthorized.Write(w)
		return
	}

	var req api.DocumentRequest
	if err := httpx.ReadJSON(r, &req); err != nil {
		api.ErrBadRequest.Write(w)
		return
	}

	d, err := h.DocumentService.Update(r.Context(), id.UserID, r.PathValue("group"), r.PathValue("slug"), req.Name, req.Description, req.Content)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toDocument(d))
}

func (h *DocumentsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.IdentityFromContext(r.Context())
	if !ok {
		api.ErrUnauthorized.Write(w)
		return
	}

	if err := h.DocumentService.Delete(r.Context(), id.UserID, r.PathValue("group"), r.PathValue("slug")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, api.MessageResponse{Message: "document deleted"})
}
