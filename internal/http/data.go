package http

import (
	"encoding/json"
	"net/http"

	"github.com/stashbin/stashbin/internal/service"
	"github.com/stashbin/stashbin/pkg/api"
	"github.com/stashbin/stashbin/pkg/httpx"
)

// PublicDataHandler serves the unauthenticated data endpoints. These sit
// outside the bearer-token gate; protected groups are guarded by the
// X-Api-Key header instead.
type PublicDataHandler struct {
	PublicData *service.PublicDataService
}

type publicUpsertRequest struct {
	Name        string `json:"name"`
	Slug        string `json:"slug,omitempty"`
	Description string `json:"description,omitempty"`
	Content     any    `json:"content"`
}

type publicUpsertResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Slug    string `json:"slug"`
}

func (h *PublicDataHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	raw, err := h.PublicData.GetDocument(r.Context(),
		r.PathValue("user"), r.PathValue("group"), r.PathValue("slug"),
		r.Header.Get("X-Api-Key"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(raw)
}

func (h *PublicDataHandler) HandleListGroup(w http.ResponseWriter, r *http.Request) {
	raw, err := h.PublicData.ListGroup(r.Context(),
		r.PathValue("user"), r.PathValue("group"),
		r.Header.Get("X-Api-Key"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(raw)
}

func (h *PublicDataHandler) HandleUpsert(w http.ResponseWriter, r *http.Request) {
	var req publicUpsertRequest
	if err := httpx.ReadJSON(r, &req); err != nil {
		api.ErrBadRequest.Write(w)
		return
	}

	// Content arrives as arbitrary JSON; re-encode it for storage.
	content, err := encodeContent(req.Content)
	if err != nil {
		api.ErrBadRequest.Write(w)
		return
	}

	d, created, err := h.PublicData.Upsert(r.Context(),
		r.PathValue("user"), r.PathValue("group"),
		req.Name, req.Slug, req.Description, content,
		r.Header.Get("X-Api-Key"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	status := http.StatusOK
	message := "data updated"
	if created {
		status = http.StatusCreated
		message = "data saved"
	}
	httpx.WriteJSON(w, status, publicUpsertResponse{
		Success: true,
		Message: message,
		Slug:    d.Slug,
	})
}

func encodeContent(v any) (string, error) {
	if v == nil {
		return "", nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
