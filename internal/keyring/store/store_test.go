package store_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/go-hwkeyring/internal/keyring/session"
	"github/chapool/go-hwkeyring/internal/keyring/store"
)

func snapshot() session.Snapshot {
	return session.Snapshot{
		Version:         session.SnapshotVersion,
		HDPath:          session.DefaultHDPath,
		Accounts:        []string{"0x9858EfFD232B4033E47d90003D41EC34EcaEda94"},
		Page:            1,
		PerPage:         5,
		UnlockedAccount: 2,
		Paths:           map[string]uint32{"0x9858EfFD232B4033E47d90003D41EC34EcaEda94": 0},
	}
}

func TestSaveLoadDelete(t *testing.T) {
	s, err := store.Open(filepath.Join(t.TempDir(), "keyring"))
	require.NoError(t, err)
	defer s.Close()

	_, ok, err := s.Load("default")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Save("default", snapshot()))
	require.NoError(t, s.Save("other", session.Snapshot{Version: session.SnapshotVersion}))

	got, ok, err := s.Load("default")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, snapshot(), got)

	require.NoError(t, s.Delete("default"))
	_, ok, err = s.Load("default")
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = s.Load("other")
	require.NoError(t, err)
	assert.True(t, ok)

	// deleting a missing snapshot is fine
	require.NoError(t, s.Delete("default"))
}

func TestPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keyring")

	s, err := store.Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Save("default", snapshot()))
	require.NoError(t, s.Close())

	s, err = store.Open(path)
	require.NoError(t, err)
	defer s.Close()

	got, ok, err := s.Load("default")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, snapshot(), got)
}

func TestInMemory(t *testing.T) {
	s, err := store.Open("")
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Save("default", snapshot()))
	_, ok, err := s.Load("default")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestPingAfterClose(t *testing.T) {
	s, err := store.Open("")
	require.NoError(t, err)

	require.NoError(t, s.Ping())
	require.NoError(t, s.Close())
	require.Error(t, s.Ping())
}
