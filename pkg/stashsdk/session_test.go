package stashsdk

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/stashbin/stashbin/pkg/api"
	"github.com/stashbin/stashbin/pkg/tokenx"
)

// memStorage is an in-memory Storage for tests.
type memStorage struct {
	mu sync.Mutex
	m  map[string]string
}

func newMemStorage() *memStorage {
	return &memStorage{m: make(map[string]string)}
}

func (s *memStorage) Get(key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.m[key]
	if !ok {
		return "", ErrKeyNotFound
	}
	return v, nil
}

func (s *memStorage) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = value
	return nil
}

func (s *memStorage) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, key)
	return nil
}

func (s *memStorage) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.m)
}

var testCodec = tokenx.NewCodec("sdk-test-secret")

func mintPair(t *testing.T, accessTTL time.Duration) api.AuthResponse {
	t.Helper()

	access, err := testCodec.Issue(tokenx.Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "u1"},
		Username:         "alice",
		TokenType:        tokenx.TypeAccess,
	}, accessTTL)
	require.NoError(t, err)

	refresh, err := testCodec.Issue(tokenx.Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "u1"},
		Username:         "alice",
		TokenType:        tokenx.TypeRefresh,
	}, 24*time.Hour)
	require.NoError(t, err)

	return api.AuthResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		User:         api.UserInfo{ID: "u1", Username: "alice", Slug: "alice"},
	}
}

func TestIsStale(t *testing.T) {
	t.Parallel()

	now := time.Now()
	threshold := 5 * time.Minute

	t.Run("well before threshold", func(t *testing.T) {
		exp := now.Add(time.Hour).UnixMilli()
		require.False(t, IsStale(exp, now, threshold))
	})

	t.Run("inside threshold", func(t *testing.T) {
		exp := now.Add(time.Minute).UnixMilli()
		require.True(t, IsStale(exp, now, threshold))
	})

	t.Run("exactly at threshold is not stale", func(t *testing.T) {
		exp := now.UnixMilli() + threshold.Milliseconds()
		require.False(t, IsStale(exp, now, threshold))
	})

	t.Run("already expired", func(t *testing.T) {
		exp := now.Add(-time.Minute).UnixMilli()
		require.True(t, IsStale(exp, now, threshold))
	})
}

func TestParseThreshold(t *testing.T) {
	t.Parallel()

	cases := map[string]time.Duration{
		"30s":    30 * time.Second,
		"10m":    10 * time.Minute,
		"2h":     2 * time.Hour,
		"1d":     24 * time.Hour,
		"":       DefaultStaleThreshold,
		"5":      DefaultStaleThreshold,
		"x5m":    DefaultStaleThreshold,
		"5w":     DefaultStaleThreshold,
		"-5m":    DefaultStaleThreshold,
		"banana": DefaultStaleThreshold,
		" 42s ":  42 * time.Second,
		"0s":     0,
	}
	for in, want := range cases {
		require.Equal(t, want, ParseThreshold(in), "input %q", in)
	}
}

func TestResumeAllOrNothing(t *testing.T) {
	t.Parallel()

	client := NewClient("http://localhost:0")

	seed := func(t *testing.T) *memStorage {
		st := newMemStorage()
		pair := mintPair(t, time.Hour)
		s := &Session{client: client, storage: st}
		require.NoError(t, s.store(pair))
		return st
	}

	t.Run("complete state resumes", func(t *testing.T) {
		st := seed(t)
		s, err := client.Resume(st)
		require.NoError(t, err)
		require.Equal(t, "alice", s.User().Username)
		require.NotEmpty(t, s.AccessToken())
	})

	for _, missing := range []string{keyAccessToken, keyRefreshToken, keyUser, keyAccessTokenExp} {
		t.Run("missing "+missing+" clears everything", func(t *testing.T) {
			st := seed(t)
			require.NoError(t, st.Delete(missing))

			_, err := client.Resume(st)
			require.ErrorIs(t, err, ErrNotAuthenticated)

			// The surviving entries were wiped too.
			require.Zero(t, st.len())
		})
	}

	t.Run("corrupt expiry clears everything", func(t *testing.T) {
		st := seed(t)
		require.NoError(t, st.Set(keyAccessTokenExp, "not-a-number"))

		_, err := client.Resume(st)
		require.ErrorIs(t, err, ErrNotAuthenticated)
		require.Zero(t, st.len())
	})
}

func TestEnsureFreshSingleFlight(t *testing.T) {
	t.Parallel()

	var refreshCalls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/auth/refresh", r.URL.Path)
		refreshCalls.Add(1)

		// Hold the response so concurrent callers pile up on the pending
		// refresh instead of finding a fresh token.
		time.Sleep(100 * time.Millisecond)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(mintPair(t, time.Hour))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	st := newMemStorage()
	s := &Session{client: client, storage: st}
	require.NoError(t, s.store(mintPair(t, time.Minute))) // within the 5m threshold: stale

	const goroutines = 16
	tokens := make([]string, goroutines)
	errs := make([]error, goroutines)

	var wg sync.WaitGroup
	for i := range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tokens[i], errs[i] = s.EnsureFresh(context.Background())
		}()
	}
	wg.Wait()

	require.EqualValues(t, 1, refreshCalls.Load(), "concurrent refreshes must collapse into one request")
	for i := range goroutines {
		require.NoError(t, errs[i])
		require.Equal(t, tokens[0], tokens[i], "every caller sees the same outcome")
		require.NotEmpty(t, tokens[i])
	}

	t.Run("fresh token is served without another request", func(t *testing.T) {
		_, err := s.EnsureFresh(context.Background())
		require.NoError(t, err)
		require.EqualValues(t, 1, refreshCalls.Load())
	})
}

func TestEnsureFreshFailClosed(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		api.ErrTokenRevoked.Write(w)
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	st := newMemStorage()
	s := &Session{client: client, storage: st}
	require.NoError(t, s.store(mintPair(t, time.Minute))) // stale, forces a refresh

	_, err := s.EnsureFresh(context.Background())
	require.Error(t, err)

	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "token_revoked", apiErr.Code)

	// The dead session was cleared locally.
	require.Zero(t, st.len())
	_, err = s.EnsureFresh(context.Background())
	require.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestEnsureFreshClearsStateOnAnyFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		api.ErrStoreUnavailable.Write(w)
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	st := newMemStorage()
	s := &Session{client: client, storage: st}
	require.NoError(t, s.store(mintPair(t, time.Minute)))

	// Even a 503 ends the session: retrying with the same refresh token
	// could replay a token the server already consumed.
	_, err := s.EnsureFresh(context.Background())
	require.Error(t, err)

	require.Zero(t, st.len())
	_, err = s.EnsureFresh(context.Background())
	require.ErrorIs(t, err, ErrNotAuthenticated)
}
