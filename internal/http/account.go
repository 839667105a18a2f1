package http

import (
	"net/http"

	"github.com/stashbin/stashbin/internal/service"
	"github.com/stashbin/stashbin/pkg/api"
	"github.com/stashbin/stashbin/pkg/httpx"
)

type AccountHandler struct {
	AccountService *service.AccountService
}

func (h *AccountHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.IdentityFromContext(r.Context())
	if !ok {
		api.ErrUnauthorized.Write(w)
		return
	}

	u, err := h.AccountService.Get(r.Context(), id.UserID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toUserInfo(u))
}

func (h *AccountHandler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.IdentityFromContext(r.Context())
	if !ok {
		api.ErrUnauthorized.Write(w)
		return
	}

	var req api.ProfileUpdateRequest
	if err := httpx.ReadJSON(r, &req); err != nil {
		api.ErrBadRequest.Write(w)
		return
	}

	u, err := h.AccountService.UpdateProfile(r.Context(), id.UserID, req.Username, req.Email)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toUserInfo(u))
}

// HandlePassword changes the password and revokes every active refresh
// token for the account. The current access token stays valid until its
// expiry; clients are expected to log in again.
func (h *AccountHandler) HandlePassword(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.IdentityFromContext(r.Context())
	if !ok {
		api.ErrUnauthorized.Write(w)
		return
	}

	var req api.PasswordUpdateRequest
	if err := httpx.ReadJSON(r, &req); err != nil {
		api.ErrBadRequest.Write(w)
		return
	}

	if err := h.AccountService.ChangePassword(r.Context(), id.UserID, req.CurrentPassword, req.NewPassword); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, api.MessageResponse{Message: "password updated"})
}
