package boltstore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stashbin/stashbin/pkg/stashsdk"
)

func TestStoreRoundTrip(t *testing.T) {
	t.Parallel()

	st, err := Open(filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	_, err = st.Get("accessToken")
	require.ErrorIs(t, err, stashsdk.ErrKeyNotFound)

	require.NoError(t, st.Set("accessToken", "tok"))
	v, err := st.Get("accessToken")
	require.NoError(t, err)
	require.Equal(t, "tok", v)

	require.NoError(t, st.Delete("accessToken"))
	_, err = st.Get("accessToken")
	require.ErrorIs(t, err, stashsdk.ErrKeyNotFound)

	// Deleting an absent key is fine.
	require.NoError(t, st.Delete("accessToken"))
}

func TestStoreSurvivesReopen(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "session.db")

	st, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, st.Set("refreshToken", "tok"))
	require.NoError(t, st.Close())

	st, err = Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	v, err := st.Get("refreshToken")
	require.NoError(t, err)
	require.Equal(t, "tok", v)
}
