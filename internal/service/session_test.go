package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/stashbin/stashbin/internal/domain"
	"github.com/stashbin/stashbin/internal/store"
	"github.com/stashbin/stashbin/internal/store/drivers/sqlite"
	"github.com/stashbin/stashbin/pkg/tokenx"
)

func newTestStore(t *testing.T) store.Store {
	t.Helper()

	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, s.ApplyMigrations())

	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newSessionService(t *testing.T, st store.Store) *SessionService {
	t.Helper()

	return &SessionService{
		Codec:      tokenx.NewCodec("test-secret"),
		Store:      st,
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 24 * time.Hour,
	}
}

func registerUser(t *testing.T, st store.Store, username string) domain.User {
	t.Helper()

	auth := &AuthService{Store: st, RegistrationOpen: true}
	u, err := auth.Register(context.Background(), username, "hunter22", "")
	require.NoError(t, err)
	return u
}

func TestSessionIssuePair(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := newTestStore(t)
	svc := newSessionService(t, st)
	user := registerUser(t, st, "alice")

	pair, err := svc.IssuePair(ctx, user, "test-agent")
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	require.NotEqual(t, pair.AccessToken, pair.RefreshToken)

	t.Run("claims carry type and identity", func(t *testing.T) {
		access, err := svc.Codec.Verify(pair.AccessToken)
		require.NoError(t, err)
		require.Equal(t, tokenx.TypeAccess, access.TokenType)
		require.Equal(t, user.ID, access.Subject)
		require.Equal(t, "alice", access.Username)
		require.Empty(t, access.Fingerprint)

		refresh, err := svc.Codec.Verify(pair.RefreshToken)
		require.NoError(t, err)
		require.Equal(t, tokenx.TypeRefresh, refresh.TokenType)
		require.Equal(t, "test-agent", refresh.Fingerprint)

		// Pair members share a jti.
		require.Equal(t, access.ID, refresh.ID)
	})

	t.Run("refresh token recorded as active", func(t *testing.T) {
		rec, err := st.ActiveTokens().LookupToken(ctx, pair.RefreshToken)
		require.NoError(t, err)
		require.Equal(t, user.ID, rec.UserID)
	})

	t.Run("access token is not recorded", func(t *testing.T) {
		_, err := st.ActiveTokens().LookupToken(ctx, pair.AccessToken)
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestSessionRotate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := newTestStore(t)
	svc := newSessionService(t, st)
	user := registerUser(t, st, "alice")

	pair, err := svc.IssuePair(ctx, user, "test-agent")
	require.NoError(t, err)

	next, gotUser, err := svc.Rotate(ctx, pair.RefreshToken, "test-agent")
	require.NoError(t, err)
	require.Equal(t, user.ID, gotUser.ID)
	require.NotEqual(t, pair.RefreshToken, next.RefreshToken)

	t.Run("old token consumed, new token active", func(t *testing.T) {
		_, err := st.ActiveTokens().LookupToken(ctx, pair.RefreshToken)
		require.ErrorIs(t, err, store.ErrNotFound)

		_, err = st.ActiveTokens().LookupToken(ctx, next.RefreshToken)
		require.NoError(t, err)
	})

	t.Run("replay of consumed token is rejected", func(t *testing.T) {
		_, _, err := svc.Rotate(ctx, pair.RefreshToken, "test-agent")
		require.ErrorIs(t, err, ErrTokenRevoked)
	})

	t.Run("replacement still rotates", func(t *testing.T) {
		_, _, err := svc.Rotate(ctx, next.RefreshToken, "test-agent")
		require.NoError(t, err)
	})
}

func TestSessionRotateRejections(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := newTestStore(t)
	svc := newSessionService(t, st)
	user := registerUser(t, st, "alice")

	t.Run("garbage token", func(t *testing.T) {
		_, _, err := svc.Rotate(ctx, "not-a-token", "test-agent")
		require.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("token signed with another secret", func(t *testing.T) {
		other := &SessionService{
			Codec:      tokenx.NewCodec("other-secret"),
			Store:      st,
			AccessTTL:  svc.AccessTTL,
			RefreshTTL: svc.RefreshTTL,
		}
		pair, err := other.IssuePair(ctx, user, "test-agent")
		require.NoError(t, err)

		_, _, err = svc.Rotate(ctx, pair.RefreshToken, "test-agent")
		require.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("access token on the refresh path", func(t *testing.T) {
		pair, err := svc.IssuePair(ctx, user, "test-agent")
		require.NoError(t, err)

		_, _, err = svc.Rotate(ctx, pair.AccessToken, "test-agent")
		require.ErrorIs(t, err, ErrTokenWrongType)
	})

	t.Run("expired token leaves its record untouched", func(t *testing.T) {
		short := &SessionService{
			Codec:      svc.Codec,
			Store:      st,
			AccessTTL:  svc.AccessTTL,
			RefreshTTL: -time.Minute,
		}
		pair, err := short.IssuePair(ctx, user, "test-agent")
		require.NoError(t, err)

		// Re-record: IssuePair's sweep may already have cleared it.
		_ = st.ActiveTokens().RevokeToken(ctx, pair.RefreshToken)
		require.NoError(t, st.ActiveTokens().RecordToken(ctx, domain.ActiveToken{
			Token:     pair.RefreshToken,
			UserID:    user.ID,
			ExpiresAt: time.Now().Add(time.Hour),
			CreatedAt: time.Now(),
		}))

		_, _, err = svc.Rotate(ctx, pair.RefreshToken, "test-agent")
		require.ErrorIs(t, err, ErrTokenExpired)

		// The expired attempt must not have consumed the record.
		_, err = st.ActiveTokens().LookupToken(ctx, pair.RefreshToken)
		require.NoError(t, err)
	})

	t.Run("valid token with swept record", func(t *testing.T) {
		pair, err := svc.IssuePair(ctx, user, "test-agent")
		require.NoError(t, err)

		require.NoError(t, st.ActiveTokens().RevokeToken(ctx, pair.RefreshToken))

		_, _, err = svc.Rotate(ctx, pair.RefreshToken, "test-agent")
		require.ErrorIs(t, err, ErrTokenRevoked)
	})
}

func TestSessionRevokeAll(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := newTestStore(t)
	svc := newSessionService(t, st)
	user := registerUser(t, st, "alice")

	a, err := svc.IssuePair(ctx, user, "test-agent")
	require.NoError(t, err)
	b, err := svc.IssuePair(ctx, user, "test-agent")
	require.NoError(t, err)

	n, err := svc.RevokeAll(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	_, _, err = svc.Rotate(ctx, a.RefreshToken, "test-agent")
	require.ErrorIs(t, err, ErrTokenRevoked)
	_, _, err = svc.Rotate(ctx, b.RefreshToken, "test-agent")
	require.ErrorIs(t, err, ErrTokenRevoked)
}
