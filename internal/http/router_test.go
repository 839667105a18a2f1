package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/stashbin/stashbin/internal/service"
	"github.com/stashbin/stashbin/internal/store/drivers/sqlite"
	"github.com/stashbin/stashbin/pkg/api"
	"github.com/stashbin/stashbin/pkg/tokenx"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	codec := tokenx.NewCodec("test-secret")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	r := NewRouter(codec, "test", st, logger)
	r.AuthService = &service.AuthService{Store: st, RegistrationOpen: true}
	r.SessionService = &service.SessionService{
		Codec:      codec,
		Store:      st,
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 24 * time.Hour,
	}
	r.GroupService = &service.GroupService{Store: st}
	r.DocumentService = &service.DocumentService{Store: st}
	r.APIKeyService = &service.APIKeyService{Store: st}
	r.AccountService = &service.AccountService{Store: st}
	r.PublicData = &service.PublicDataService{Store: st, APIKeys: r.APIKeyService}
	r.ApplyRoutes()

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url, token string, body any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()

	defer resp.Body.Close()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func registerAndLogin(t *testing.T, srv *httptest.Server, username string) api.AuthResponse {
	t.Helper()

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/auth/register", "", api.RegisterRequest{
		Username: username,
		Password: "hunter22",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/auth/login", "", api.LoginRequest{
		Username: username,
		Password: "hunter22",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return decode[api.AuthResponse](t, resp)
}

func TestAuthFlow(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	auth := registerAndLogin(t, srv, "alice")
	require.NotEmpty(t, auth.AccessToken)
	require.NotEmpty(t, auth.RefreshToken)
	require.Equal(t, "alice", auth.User.Username)

	t.Run("wrong password", func(t *testing.T) {
		resp := doJSON(t, http.MethodPost, srv.URL+"/api/auth/login", "", api.LoginRequest{
			Username: "alice", Password: "wrong",
		})
		defer resp.Body.Close()
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("refresh rotates the pair", func(t *testing.T) {
		resp := doJSON(t, http.MethodPost, srv.URL+"/api/auth/refresh", "", api.RefreshRequest{
			RefreshToken: auth.RefreshToken,
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		next := decode[api.AuthResponse](t, resp)
		require.NotEqual(t, auth.RefreshToken, next.RefreshToken)

		// The consumed token is now rejected with a distinct code.
		resp = doJSON(t, http.MethodPost, srv.URL+"/api/auth/refresh", "", api.RefreshRequest{
			RefreshToken: auth.RefreshToken,
		})
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		e := decode[api.Error](t, resp)
		require.Equal(t, "token_revoked", e.Code)

		auth = next
	})

	t.Run("logout revokes the refresh token", func(t *testing.T) {
		resp := doJSON(t, http.MethodPost, srv.URL+"/api/auth/logout", "", api.RefreshRequest{
			RefreshToken: auth.RefreshToken,
		})
		resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		resp = doJSON(t, http.MethodPost, srv.URL+"/api/auth/refresh", "", api.RefreshRequest{
			RefreshToken: auth.RefreshToken,
		})
		defer resp.Body.Close()
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestProtectedRoutes(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	auth := registerAndLogin(t, srv, "alice")

	t.Run("no token", func(t *testing.T) {
		resp := doJSON(t, http.MethodGet, srv.URL+"/api/groups", "", nil)
		defer resp.Body.Close()
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("refresh token rejected as bearer", func(t *testing.T) {
		resp := doJSON(t, http.MethodGet, srv.URL+"/api/groups", auth.RefreshToken, nil)
		defer resp.Body.Close()
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("access token accepted", func(t *testing.T) {
		resp := doJSON(t, http.MethodGet, srv.URL+"/api/groups", auth.AccessToken, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		groups := decode[[]api.Group](t, resp)
		require.Len(t, groups, 1) // the default group
		require.True(t, groups[0].Protected)
	})
}

func TestDocumentEndpoints(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	auth := registerAndLogin(t, srv, "alice")

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/json/default", auth.AccessToken, api.DocumentRequest{
		Name:    "Config",
		Content: `{"debug":true}`,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	doc := decode[api.Document](t, resp)
	require.Equal(t, "config", doc.Slug)

	t.Run("invalid json content", func(t *testing.T) {
		resp := doJSON(t, http.MethodPost, srv.URL+"/api/json/default", auth.AccessToken, api.DocumentRequest{
			Name:    "Broken",
			Content: `{oops`,
		})
		defer resp.Body.Close()
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("duplicate slug conflicts", func(t *testing.T) {
		resp := doJSON(t, http.MethodPost, srv.URL+"/api/json/default", auth.AccessToken, api.DocumentRequest{
			Name:    "Config",
			Content: `{}`,
		})
		defer resp.Body.Close()
		require.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("get and update", func(t *testing.T) {
		resp := doJSON(t, http.MethodGet, srv.URL+"/api/json/default/config", auth.AccessToken, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		got := decode[api.Document](t, resp)
		require.JSONEq(t, `{"debug":true}`, got.Content)

		resp = doJSON(t, http.MethodPut, srv.URL+"/api/json/default/config", auth.AccessToken, api.DocumentRequest{
			Content: `{"debug":false}`,
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		updated := decode[api.Document](t, resp)
		require.JSONEq(t, `{"debug":false}`, updated.Content)
	})

	t.Run("delete", func(t *testing.T) {
		resp := doJSON(t, http.MethodDelete, srv.URL+"/api/json/default/config", auth.AccessToken, nil)
		resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		resp = doJSON(t, http.MethodGet, srv.URL+"/api/json/default/config", auth.AccessToken, nil)
		defer resp.Body.Close()
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestPublicDataEndpoints(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	auth := registerAndLogin(t, srv, "alice")

	// An open group with public writes enabled.
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/groups", auth.AccessToken, api.GroupRequest{
		Name:             "Inbox",
		AllowPublicWrite: true,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	userSlug := auth.User.Slug

	t.Run("anonymous write to open group", func(t *testing.T) {
		resp := doJSON(t, http.MethodPost, srv.URL+"/api/data/"+userSlug+"/inbox", "", map[string]any{
			"name":    "sensor",
			"content": map[string]any{"temp": 21},
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		out := decode[publicUpsertResponse](t, resp)
		require.True(t, out.Success)
		require.NotEmpty(t, out.Slug)

		get := doJSON(t, http.MethodGet, srv.URL+"/api/data/"+userSlug+"/inbox/"+out.Slug, "", nil)
		require.Equal(t, http.StatusOK, get.StatusCode)
		body, err := io.ReadAll(get.Body)
		get.Body.Close()
		require.NoError(t, err)
		require.JSONEq(t, `{"temp":21}`, string(body))
	})

	t.Run("protected group requires api key", func(t *testing.T) {
		resp := doJSON(t, http.MethodGet, srv.URL+"/api/data/"+userSlug+"/default", "", nil)
		defer resp.Body.Close()
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("protected group readable with api key", func(t *testing.T) {
		created := doJSON(t, http.MethodPost, srv.URL+"/api/user/apikey", auth.AccessToken, api.APIKeyCreateRequest{
			Name: "ci",
		})
		require.Equal(t, http.StatusCreated, created.StatusCode)
		key := decode[api.APIKey](t, created)
		require.NotEmpty(t, key.Key)

		req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/data/"+userSlug+"/default", nil)
		require.NoError(t, err)
		req.Header.Set("X-Api-Key", key.Key)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("write refused where not allowed", func(t *testing.T) {
		resp := doJSON(t, http.MethodPost, srv.URL+"/api/groups", auth.AccessToken, api.GroupRequest{
			Name: "Readonly",
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		resp.Body.Close()

		resp = doJSON(t, http.MethodPost, srv.URL+"/api/data/"+userSlug+"/readonly", "", map[string]any{
			"name":    "doc",
			"content": map[string]any{},
		})
		defer resp.Body.Close()
		require.Equal(t, http.StatusForbidden, resp.StatusCode)
	})
}

func TestHealthEndpoints(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/livez")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	health := decode[api.HealthResponse](t, resp)
	require.Equal(t, "ok", health.Status)

	resp, err = http.Get(srv.URL + "/readyz")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}
