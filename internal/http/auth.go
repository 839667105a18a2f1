package http

import (
	"net/http"

	"github.com/stashbin/stashbin/internal/domain"
	"github.com/stashbin/stashbin/internal/service"
	"github.com/stashbin/stashbin/pkg/api"
	"github.com/stashbin/stashbin/pkg/httpx"
)

// AuthHandler serves the session endpoints: login, register, refresh and
// logout.
type AuthHandler struct {
	AuthService    *service.AuthService
	SessionService *service.SessionService
}

func toUserInfo(u domain.User) api.UserInfo {
	return api.UserInfo{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Slug:     u.Slug,
	}
}

func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req api.LoginRequest
	if err := httpx.ReadJSON(r, &req); err != nil {
		api.ErrBadRequest.Write(w)
		return
	}
	if req.Username == "" || req.Password == "" {
		api.ErrBadRequest.Write(w)
		return
	}

	user, err := h.AuthService.VerifyCredentials(r.Context(), req.Username, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	pair, err := h.SessionService.IssuePair(r.Context(), user, r.UserAgent())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, api.AuthResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		User:         toUserInfo(user),
	})
}

func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req api.RegisterRequest
	if err := httpx.ReadJSON(r, &req); err != nil {
		api.ErrBadRequest.Write(w)
		return
	}

	user, err := h.AuthService.Register(r.Context(), req.Username, req.Password, req.Email)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, api.RegisterResponse{
		ID:       user.ID,
		Username: user.Username,
		Message:  "registration successful",
	})
}

func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	var req api.RefreshRequest
	if err := httpx.ReadJSON(r, &req); err != nil {
		api.ErrBadRequest.Write(w)
		return
	}
	if req.RefreshToken == "" {
		api.ErrBadRequest.Write(w)
		return
	}

	pair, user, err := h.SessionService.Rotate(r.Context(), req.RefreshToken, r.UserAgent())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, api.AuthResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		User:         toUserInfo(user),
	})
}

// HandleLogout revokes the presented refresh token. Revocation is
// idempotent, so logging out twice succeeds both times.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	var req api.RefreshRequest
	if err := httpx.ReadJSON(r, &req); err != nil {
		api.ErrBadRequest.Write(w)
		return
	}
	if req.RefreshToken == "" {
		api.ErrBadRequest.Write(w)
		return
	}

	if err := h.SessionService.Revoke(r.Context(), req.RefreshToken); err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, api.MessageResponse{Message: "logged out"})
}
