package http

import (
	"net/http"

	"github.com/stashbin/stashbin/internal/domain"
	"github.com/stashbin/stashbin/internal/service"
	"github.com/stashbin/stashbin/pkg/api"
	"github.com/stashbin/stashbin/pkg/httpx"
)

type GroupsHandler struct {
	GroupService *service.GroupService
}

func toGroup(g domain.Group) api.Group {
	return api.Group{
		ID:               g.ID,
		Name:             g.Name,
		Slug:             g.Slug,
		Description:      g.Description,
		AllowPublicWrite: g.AllowPublicWrite,
		Protected:        g.Protected,
		CreatedAt:        g.CreatedAt.UnixMilli(),
		UpdatedAt:        g.UpdatedAt.UnixMilli(),
	}
}

func (h *GroupsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.IdentityFromContext(r.Context())
	if !ok {
		api.ErrUnauthorized.Write(w)
		return
	}

	groups, err := h.GroupService.List(r.Context(), id.UserID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]api.Group, 0, len(groups))
	for _, g := range groups {
		out = append(out, toGroup(g))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func (h *GroupsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.IdentityFromContext(r.Context())
	if !ok {
		api.ErrUnauthorized.Write(w)
		return
	}

	var req api.GroupRequest
	if err := httpx.ReadJSON(r, &req); err != nil {
		api.ErrBadRequest.Write(w)
		return
	}

	g, err := h.GroupService.Create(r.Context(), id.UserID, req.Name, req.Description, req.AllowPublicWrite)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toGroup(g))
}

func (h *GroupsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.IdentityFromContext(r.Context())
	if !ok {
		api.ErrUnauthorized.Write(w)
		return
	}

	var req api.GroupRequest
	if err := httpx.ReadJSON(r, &req); err != nil {
		api.ErrBadRequest.Write(w)
		return
	}

	g, err := h.GroupService.Update(r.Context(), id.UserID, r.PathValue("slug"), req.Name, req.Description, req.AllowPublicWrite)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toGroup(g))
}

func (h *GroupsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.IdentityFromContext(r.Context())
	if !ok {
		api.ErrUnauthorized.Write(w)
		return
	}

	if err := h.GroupService.Delete(r.Context(), id.UserID, r.PathValue("slug")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, api.MessageResponse{Message: "group deleted"})
}
