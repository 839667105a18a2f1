package stashsdk

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/stashbin/stashbin/pkg/api"
	"github.com/stashbin/stashbin/pkg/tokenx"
)

// DefaultStaleThreshold is how close to expiry an access token may get
// before the session refreshes it.
const DefaultStaleThreshold = 5 * time.Minute

// ErrNotAuthenticated is returned when no usable session state exists and
// the caller must log in again.
var ErrNotAuthenticated = errors.New("stashsdk: not authenticated")

// Session is a persistent authenticated session. State survives process
// restarts through Storage, and the token pair is rotated before the
// access token goes stale. Safe for concurrent use; concurrent refreshes
// collapse into a single request.
type Session struct {
	client  *Client
	storage Storage

	// StaleThreshold overrides DefaultStaleThreshold when positive.
	StaleThreshold time.Duration

	mu      sync.Mutex
	state   sessionState
	pending *pendingRefresh
}

// pendingRefresh is the shared handle joiners wait on while one goroutine
// performs the network refresh.
type pendingRefresh struct {
	done  chan struct{}
	token string
	err   error
}

// Login authenticates with credentials and persists the resulting session.
func (c *Client) Login(ctx context.Context, storage Storage, username, password string) (*Session, error) {
	resp, err := c.login(ctx, username, password)
	if err != nil {
		return nil, err
	}

	s := &Session{client: c, storage: storage}
	if err := s.store(resp); err != nil {
		return nil, err
	}
	return s, nil
}

// Resume restores a session from storage. It does not hit the network; a
// stale access token is refreshed lazily on first use.
func (c *Client) Resume(storage Storage) (*Session, error) {
	state, ok := loadState(storage)
	if !ok {
		return nil, ErrNotAuthenticated
	}
	return &Session{client: c, storage: storage, state: state}, nil
}

// IsStale reports whether an access token expiring at expiresAt (epoch
// millis) needs refreshing at now. A token exactly at the threshold is
// not yet stale.
func IsStale(expiresAt int64, now time.Time, threshold time.Duration) bool {
	remaining := expiresAt - now.UnixMilli()
	return remaining < threshold.Milliseconds()
}

// ParseThreshold parses a staleness threshold like "30s", "10m", "2h" or
// "1d". Anything unparsable falls back to DefaultStaleThreshold.
func ParseThreshold(s string) time.Duration {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return DefaultStaleThreshold
	}

	n, err := strconv.Atoi(s[:len(s)-1])
	if err != nil || n < 0 {
		return DefaultStaleThreshold
	}

	switch s[len(s)-1] {
	case 's':
		return time.Duration(n) * time.Second
	case 'm':
		return time.Duration(n) * time.Minute
	case 'h':
		return time.Duration(n) * time.Hour
	case 'd':
		return time.Duration(n) * 24 * time.Hour
	default:
		return DefaultStaleThreshold
	}
}

func (s *Session) threshold() time.Duration {
	if s.StaleThreshold > 0 {
		return s.StaleThreshold
	}
	return DefaultStaleThreshold
}

// User returns the persisted user snapshot.
func (s *Session) User() api.UserInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.User
}

// AccessToken returns the current access token without freshness checks.
// Prefer EnsureFresh.
func (s *Session) AccessToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.AccessToken
}

// EnsureFresh returns an access token that is not stale, rotating the pair
// if needed. When several goroutines find the token stale at once, one
// performs the refresh and the rest wait for its outcome; every caller
// sees the same result.
func (s *Session) EnsureFresh(ctx context.Context) (string, error) {
	s.mu.Lock()

	if s.state.AccessToken == "" {
		s.mu.Unlock()
		return "", ErrNotAuthenticated
	}

	if !IsStale(s.state.ExpiresAt, time.Now(), s.threshold()) {
		token := s.state.AccessToken
		s.mu.Unlock()
		return token, nil
	}

	// Join an in-flight refresh if one exists.
	if s.pending != nil {
		p := s.pending
		s.mu.Unlock()
		select {
		case <-p.done:
			return p.token, p.err
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	// This goroutine owns the refresh.
	p := &pendingRefresh{done: make(chan struct{})}
	s.pending = p
	refreshToken := s.state.RefreshToken
	s.mu.Unlock()

	resp, err := s.client.refresh(ctx, refreshToken)

	s.mu.Lock()
	s.pending = nil
	if err != nil {
		// Fail closed: any refresh failure ends the session. Retrying an
		// ambiguous failure risks replaying a consumed token, which the
		// server rejects as theft.
		s.state = sessionState{}
		clearState(s.storage)
		p.err = err
	} else if storeErr := s.storeLocked(resp); storeErr != nil {
		p.err = storeErr
	} else {
		p.token = s.state.AccessToken
	}
	s.mu.Unlock()

	close(p.done)
	return p.token, p.err
}

// Logout revokes the refresh token server-side and clears local state.
// Local state is cleared even when the server call fails.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	refreshToken := s.state.RefreshToken
	s.state = sessionState{}
	clearState(s.storage)
	s.mu.Unlock()

	if refreshToken == "" {
		return nil
	}
	return s.client.logout(ctx, refreshToken)
}

// store persists a fresh auth response as the session state.
func (s *Session) store(resp api.AuthResponse) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.storeLocked(resp)
}

func (s *Session) storeLocked(resp api.AuthResponse) error {
	claims, err := tokenx.DecodeUnsafe(resp.AccessToken)
	if err != nil || claims.ExpiresAt == nil {
		s.state = sessionState{}
		clearState(s.storage)
		return fmt.Errorf("stashsdk: server returned an unreadable access token")
	}

	state := sessionState{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		User:         resp.User,
		ExpiresAt:    claims.ExpiresAt.UnixMilli(),
	}
	if err := saveState(s.storage, state); err != nil {
		// A half-written state set is worse than none.
		s.state = sessionState{}
		clearState(s.storage)
		return err
	}
	s.state = state
	return nil
}
