package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/stashbin/stashbin/internal/service"
	"github.com/stashbin/stashbin/internal/store"
	"github.com/stashbin/stashbin/pkg/httpx"
	"github.com/stashbin/stashbin/pkg/slogx"
	"github.com/stashbin/stashbin/pkg/tokenx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	codec        *tokenx.Codec
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        store.Store

	AuthService     *service.AuthService
	SessionService  *service.SessionService
	GroupService    *service.GroupService
	DocumentService *service.DocumentService
	APIKeyService   *service.APIKeyService
	AccountService  *service.AccountService
	PublicData      *service.PublicDataService
}

func NewRouter(
	codec *tokenx.Codec,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		codec:        codec,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerGroups()
	r.registerDocuments()
	r.registerAPIKeys()
	r.registerAccount()
	r.registerPublicData()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{
		AuthService:    r.AuthService,
		SessionService: r.SessionService,
	}

	r.Mux.Handle("POST /api/auth/login", http.HandlerFunc(h.HandleLogin))
	r.Mux.Handle("POST /api/auth/register", http.HandlerFunc(h.HandleRegister))
	r.Mux.Handle("POST /api/auth/refresh", http.HandlerFunc(h.HandleRefresh))
	r.Mux.Handle("POST /api/auth/logout", http.HandlerFunc(h.HandleLogout))
}

func (r *Router) registerGroups() {
	h := &GroupsHandler{GroupService: r.GroupService}
	authn := httpx.AuthnMiddleware(r.codec)

	r.Mux.Handle("GET /api/groups", httpx.Chain(http.HandlerFunc(h.HandleList), authn))
	r.Mux.Handle("POST /api/groups", httpx.Chain(http.HandlerFunc(h.HandleCreate), authn))
	r.Mux.Handle("PUT /api/groups/{slug}", httpx.Chain(http.HandlerFunc(h.HandleUpdate), authn))
	r.Mux.Handle("DELETE /api/groups/{slug}", httpx.Chain(http.HandlerFunc(h.HandleDelete), authn))
}

func (r *Router) registerDocuments() {
	h := &DocumentsHandler{DocumentService: r.DocumentService}
	authn := httpx.AuthnMiddleware(r.codec)

	r.Mux.Handle("GET /api/json", httpx.Chain(http.HandlerFunc(h.HandleListAll), authn))
	r.Mux.Handle("GET /api/json/{group}", httpx.Chain(http.HandlerFunc(h.HandleListGroup), authn))
	r.Mux.Handle("POST /api/json/{group}", httpx.Chain(http.HandlerFunc(h.HandleCreate), authn))
	r.Mux.Handle("GET /api/json/{group}/{slug}", httpx.Chain(http.HandlerFunc(h.HandleGet), authn))
	r.Mux.Handle("PUT /api/json/{group}/{slug}", httpx.Chain(http.HandlerFunc(h.HandleUpdate), authn))
	r.Mux.Handle("DELETE /api/json/{group}/{slug}", httpx.Chain(http.HandlerFunc(h.HandleDelete), authn))
}

func (r *Router) registerAPIKeys() {
	h := &APIKeysHandler{APIKeyService: r.APIKeyService}
	authn := httpx.AuthnMiddleware(r.codec)

	r.Mux.Handle("GET /api/user/apikey", httpx.Chain(http.HandlerFunc(h.HandleList), authn))
	r.Mux.Handle("POST /api/user/apikey", httpx.Chain(http.HandlerFunc(h.HandleCreate), authn))
	r.Mux.Handle("PUT /api/user/apikey/rename", httpx.Chain(http.HandlerFunc(h.HandleRename), authn))
	r.Mux.Handle("PUT /api/user/apikey/status", httpx.Chain(http.HandlerFunc(h.HandleStatus), authn))
	r.Mux.Handle("DELETE /api/user/apikey/{id}", httpx.Chain(http.HandlerFunc(h.HandleDelete), authn))
}

func (r *Router) registerAccount() {
	h := &AccountHandler{AccountService: r.AccountService}
	authn := httpx.AuthnMiddleware(r.codec)

	r.Mux.Handle("GET /api/user/me", httpx.Chain(http.HandlerFunc(h.HandleMe), authn))
	r.Mux.Handle("PUT /api/user/profile", httpx.Chain(http.HandlerFunc(h.HandleProfile), authn))
	r.Mux.Handle("PUT /api/user/password", httpx.Chain(http.HandlerFunc(h.HandlePassword), authn))
}

func (r *Router) registerPublicData() {
	h := &PublicDataHandler{PublicData: r.PublicData}

	r.Mux.Handle("GET /api/data/{user}/{group}", http.HandlerFunc(h.HandleListGroup))
	r.Mux.Handle("POST /api/data/{user}/{group}", http.HandlerFunc(h.HandleUpsert))
	r.Mux.Handle("GET /api/data/{user}/{group}/{slug}", http.HandlerFunc(h.HandleGet))
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store))
}
