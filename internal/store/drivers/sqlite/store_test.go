package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/stashbin/stashbin/internal/domain"
	"github.com/stashbin/stashbin/internal/store"
	"github.com/stashbin/stashbin/pkg/idx"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, s.ApplyMigrations())

	t.Cleanup(func() { _ = s.Close() })
	return s
}

func seedUser(t *testing.T, s *Store, username string) domain.User {
	t.Helper()

	now := time.Now().UTC()
	u := domain.User{
		ID:           idx.New().String(),
		Username:     username,
		PasswordHash: "x",
		Slug:         username,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, s.Users().CreateUser(context.Background(), u))
	return u
}

func TestUsersRepo(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestStore(t)

	t.Run("empty store reports empty", func(t *testing.T) {
		empty, err := s.Users().IsEmpty(ctx)
		require.NoError(t, err)
		require.True(t, empty)
	})

	u := seedUser(t, s, "alice")

	t.Run("lookup by username", func(t *testing.T) {
		got, err := s.Users().GetUserByUsername(ctx, "alice")
		require.NoError(t, err)
		require.Equal(t, u.ID, got.ID)
	})

	t.Run("username lookup is case sensitive", func(t *testing.T) {
		_, err := s.Users().GetUserByUsername(ctx, "Alice")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("duplicate username rejected", func(t *testing.T) {
		dup := u
		dup.ID = idx.New().String()
		err := s.Users().CreateUser(ctx, dup)
		require.ErrorIs(t, err, store.ErrAlreadyExists)
	})

	t.Run("no longer empty", func(t *testing.T) {
		empty, err := s.Users().IsEmpty(ctx)
		require.NoError(t, err)
		require.False(t, empty)
	})
}

func TestGroupsRepo(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestStore(t)
	alice := seedUser(t, s, "alice")
	bob := seedUser(t, s, "bob")

	now := time.Now().UTC()
	g := domain.Group{
		ID:        idx.New().String(),
		UserID:    alice.ID,
		Name:      "Default",
		Slug:      domain.DefaultGroupSlug,
		Protected: true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, s.Groups().CreateGroup(ctx, g))

	t.Run("slug unique per user", func(t *testing.T) {
		dup := g
		dup.ID = idx.New().String()
		require.ErrorIs(t, s.Groups().CreateGroup(ctx, dup), store.ErrAlreadyExists)
	})

	t.Run("same slug allowed for another user", func(t *testing.T) {
		other := g
		other.ID = idx.New().String()
		other.UserID = bob.ID
		require.NoError(t, s.Groups().CreateGroup(ctx, other))
	})

	t.Run("lookup by slug is user scoped", func(t *testing.T) {
		got, err := s.Groups().GetGroupBySlug(ctx, alice.ID, domain.DefaultGroupSlug)
		require.NoError(t, err)
		require.Equal(t, g.ID, got.ID)
	})
}

func TestDocumentsCascadeWithGroup(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestStore(t)
	alice := seedUser(t, s, "alice")

	now := time.Now().UTC()
	g := domain.Group{
		ID: idx.New().String(), UserID: alice.ID,
		Name: "Notes", Slug: "notes", CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, s.Groups().CreateGroup(ctx, g))

	d := domain.Document{
		ID: idx.New().String(), UserID: alice.ID, GroupID: g.ID,
		Name: "todo", Slug: "todo", Content: `{"items":[]}`,
		CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, s.Documents().CreateDocument(ctx, d))

	require.NoError(t, s.Groups().DeleteGroup(ctx, g.ID))

	_, err := s.Documents().GetDocumentByID(ctx, d.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestActiveTokensRepo(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestStore(t)
	alice := seedUser(t, s, "alice")

	now := time.Now().UTC()
	record := func(token string, expiresAt time.Time) {
		require.NoError(t, s.ActiveTokens().RecordToken(ctx, domain.ActiveToken{
			Token:     token,
			UserID:    alice.ID,
			ExpiresAt: expiresAt,
			CreatedAt: now,
		}))
	}

	record("tok-live", now.Add(time.Hour))
	record("tok-stale", now.Add(-time.Hour))

	t.Run("lookup exact match", func(t *testing.T) {
		got, err := s.ActiveTokens().LookupToken(ctx, "tok-live")
		require.NoError(t, err)
		require.Equal(t, alice.ID, got.UserID)

		_, err = s.ActiveTokens().LookupToken(ctx, "tok-missing")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("revoke is idempotent", func(t *testing.T) {
		require.NoError(t, s.ActiveTokens().RevokeToken(ctx, "tok-live"))
		require.NoError(t, s.ActiveTokens().RevokeToken(ctx, "tok-live"))

		_, err := s.ActiveTokens().LookupToken(ctx, "tok-live")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("sweep removes only expired", func(t *testing.T) {
		record("tok-live2", now.Add(time.Hour))

		n, err := s.ActiveTokens().SweepExpired(ctx, now)
		require.NoError(t, err)
		require.Equal(t, 1, n)

		_, err = s.ActiveTokens().LookupToken(ctx, "tok-stale")
		require.ErrorIs(t, err, store.ErrNotFound)

		_, err = s.ActiveTokens().LookupToken(ctx, "tok-live2")
		require.NoError(t, err)
	})

	t.Run("revoke all tokens for a user", func(t *testing.T) {
		record("tok-a", now.Add(time.Hour))
		record("tok-b", now.Add(time.Hour))

		n, err := s.ActiveTokens().RevokeUserTokens(ctx, alice.ID)
		require.NoError(t, err)
		require.GreaterOrEqual(t, n, 2)
	})
}

func TestWithTxRollsBackOnError(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestStore(t)
	alice := seedUser(t, s, "alice")

	boom := errors.New("boom")
	err := s.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.ActiveTokens().RecordToken(ctx, domain.ActiveToken{
			Token:     "tok-tx",
			UserID:    alice.ID,
			ExpiresAt: time.Now().Add(time.Hour),
			CreatedAt: time.Now(),
		}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = s.ActiveTokens().LookupToken(ctx, "tok-tx")
	require.ErrorIs(t, err, store.ErrNotFound)
}
