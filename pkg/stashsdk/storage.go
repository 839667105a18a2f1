package stashsdk

import (
	"encoding/json"
	"errors"
	"strconv"

	"github.com/stashbin/stashbin/pkg/api"
)

// Storage keys for the persisted session state. The four entries live and
// die together: a session with any of them missing is treated as corrupt
// and cleared.
const (
	keyAccessToken    = "accessToken"
	keyRefreshToken   = "refreshToken"
	keyUser           = "user"
	keyAccessTokenExp = "accessTokenExp"
)

// ErrKeyNotFound is returned by Storage implementations for absent keys.
var ErrKeyNotFound = errors.New("stashsdk: key not found")

// Storage persists session state between process runs. Implementations
// need not be safe for concurrent use; Session serializes access.
type Storage interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}

// sessionState is the in-memory form of the four storage entries.
type sessionState struct {
	AccessToken  string
	RefreshToken string
	User         api.UserInfo
	ExpiresAt    int64 // access token expiry, epoch millis
}

// loadState restores session state from storage. It is all-or-nothing: any
// missing or unparsable entry invalidates the whole set, which is then
// cleared so the next run starts clean.
func loadState(st Storage) (sessionState, bool) {
	var s sessionState

	access, err := st.Get(keyAccessToken)
	if err != nil || access == "" {
		clearState(st)
		return sessionState{}, false
	}
	refresh, err := st.Get(keyRefreshToken)
	if err != nil || refresh == "" {
		clearState(st)
		return sessionState{}, false
	}
	userJSON, err := st.Get(keyUser)
	if err != nil || json.Unmarshal([]byte(userJSON), &s.User) != nil {
		clearState(st)
		return sessionState{}, false
	}
	expStr, err := st.Get(keyAccessTokenExp)
	if err != nil {
		clearState(st)
		return sessionState{}, false
	}
	exp, err := strconv.ParseInt(expStr, 10, 64)
	if err != nil {
		clearState(st)
		return sessionState{}, false
	}

	s.AccessToken = access
	s.RefreshToken = refresh
	s.ExpiresAt = exp
	return s, true
}

// saveState persists all four entries. A failed write leaves storage in an
// unknown partial state; the caller clears it on error.
func saveState(st Storage, s sessionState) error {
	userJSON, err := json.Marshal(s.User)
	if err != nil {
		return err
	}

	if err := st.Set(keyAccessToken, s.AccessToken); err != nil {
		return err
	}
	if err := st.Set(keyRefreshToken, s.RefreshToken); err != nil {
		return err
	}
	if err := st.Set(keyUser, string(userJSON)); err != nil {
		return err
	}
	return st.Set(keyAccessTokenExp, strconv.FormatInt(s.ExpiresAt, 10))
}

func clearState(st Storage) {
	_ = st.Delete(keyAccessToken)
	_ = st.Delete(keyRefreshToken)
	_ = st.Delete(keyUser)
	_ = st.Delete(keyAccessTokenExp)
}
