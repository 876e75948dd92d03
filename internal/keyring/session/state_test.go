package session_test

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/go-hwkeyring/internal/keyring/session"
)

var (
	addrA = common.HexToAddress("0x00000000000000000000000000000000000000aA")
	addrB = common.HexToAddress("0x00000000000000000000000000000000000000bB")
)

func newState(t *testing.T) *session.State {
	t.Helper()

	s, err := session.New("", 0, 0)
	require.NoError(t, err)

	return s
}

func TestNewDefaults(t *testing.T) {
	s := newState(t)

	assert.Equal(t, session.DefaultHDPath, s.HDPath)
	assert.Equal(t, session.DefaultHDPath, s.BasePath.String())
	assert.Equal(t, session.DefaultPerPage, s.PerPage)
	assert.False(t, s.Unlocked())

	_, err := session.New("44'/60'", 5, 10)
	require.Error(t, err)
}

func TestPagination(t *testing.T) {
	s := newState(t)

	from, to := s.FirstPage()
	assert.Equal(t, [2]uint32{0, 5}, [2]uint32{from, to})

	from, to = s.NextPage()
	assert.Equal(t, [2]uint32{5, 10}, [2]uint32{from, to})

	from, to = s.NextPage()
	assert.Equal(t, [2]uint32{10, 15}, [2]uint32{from, to})

	from, to = s.FirstPage()
	assert.Equal(t, [2]uint32{0, 5}, [2]uint32{from, to})
}

func TestPreviousPageNeverBelowFirst(t *testing.T) {
	s := newState(t)

	for range 5 {
		from, to := s.PreviousPage()
		assert.Equal(t, [2]uint32{0, 5}, [2]uint32{from, to})
		assert.Equal(t, 1, s.Page)
	}

	s.NextPage()
	from, to := s.PreviousPage()
	assert.Equal(t, [2]uint32{0, 5}, [2]uint32{from, to})
}

func TestNextPageFromFreshSessionIsFirstPage(t *testing.T) {
	s := newState(t)

	from, to := s.NextPage()
	assert.Equal(t, [2]uint32{0, 5}, [2]uint32{from, to})
}

func TestActivateDeduplicatesAndRewinds(t *testing.T) {
	s := newState(t)
	s.NextPage()
	s.NextPage()

	got := s.Activate(addrA, addrB, addrA)
	assert.Equal(t, []common.Address{addrA, addrB}, got)
	assert.Equal(t, 0, s.Page)

	got = s.Activate(addrB)
	assert.Equal(t, []common.Address{addrA, addrB}, got)

	// returned slices are copies
	got[0] = common.Address{}
	assert.Equal(t, addrA, s.ActiveAccounts()[0])
}

func TestRemoveKeepsIndex(t *testing.T) {
	s := newState(t)
	require.NoError(t, s.Index.Record(addrA, 3))
	s.Activate(addrA)

	err := s.Remove(addrB)
	require.ErrorIs(t, err, session.ErrAddressNotFound)

	require.NoError(t, s.Remove(addrA))
	assert.Empty(t, s.ActiveAccounts())

	idx, ok := s.Index.Lookup(addrA)
	assert.True(t, ok)
	assert.Equal(t, uint32(3), idx)

	err = s.Remove(addrA)
	require.ErrorIs(t, err, session.ErrAddressNotFound)
}

func TestForget(t *testing.T) {
	s, err := session.New("m/44'/60'/0'/0", 3, 10)
	require.NoError(t, err)

	require.NoError(t, s.Index.Record(addrA, 0))
	s.Activate(addrA)
	s.PerPage = 8
	s.UnlockedAccount = 4
	s.NextPage()

	s.Forget()

	assert.False(t, s.Unlocked())
	assert.Empty(t, s.ActiveAccounts())
	assert.Equal(t, 0, s.Index.Len())
	assert.Equal(t, 0, s.Page)
	assert.Equal(t, 3, s.PerPage)
	assert.Equal(t, uint32(0), s.UnlockedAccount)
	assert.Equal(t, "m/44'/60'/0'/0", s.BasePath.String())
}

func TestSnapshotRestore(t *testing.T) {
	s := newState(t)
	require.NoError(t, s.Index.Record(addrA, 0))
	require.NoError(t, s.Index.Record(addrB, 1))
	s.Activate(addrB, addrA)
	s.NextPage()
	s.UnlockedAccount = 2

	snap := s.Snapshot()
	assert.Equal(t, session.SnapshotVersion, snap.Version)
	assert.Equal(t, []string{addrB.Hex(), addrA.Hex()}, snap.Accounts)

	data, err := snap.Marshal()
	require.NoError(t, err)

	parsed, err := session.ParseSnapshot(data)
	require.NoError(t, err)

	restored := newState(t)
	require.NoError(t, restored.Restore(parsed))

	assert.Equal(t, s.ActiveAccounts(), restored.ActiveAccounts())
	assert.Equal(t, 1, restored.Page)
	assert.Equal(t, uint32(2), restored.UnlockedAccount)
	assert.Equal(t, s.Index.Entries(), restored.Index.Entries())
	assert.False(t, restored.Unlocked())
}

func TestParseLegacySnapshot(t *testing.T) {
	snap, err := session.ParseSnapshot([]byte(`{"accounts":["` + addrA.Hex() + `"],"page":2}`))
	require.NoError(t, err)
	assert.Equal(t, 0, snap.Version)

	s := newState(t)
	require.NoError(t, s.Restore(snap))

	assert.Equal(t, session.DefaultHDPath, s.HDPath)
	assert.Equal(t, session.DefaultPerPage, s.PerPage)
	assert.Equal(t, []common.Address{addrA}, s.ActiveAccounts())
	assert.Equal(t, 2, s.Page)
}

func TestRejectsNewerSnapshot(t *testing.T) {
	_, err := session.ParseSnapshot([]byte(`{"version":2}`))
	require.ErrorIs(t, err, session.ErrUnsupportedSnapshot)

	s := newState(t)
	err = s.Restore(session.Snapshot{Version: 7})
	require.ErrorIs(t, err, session.ErrUnsupportedSnapshot)
}

func TestRestoreInvalidLeavesStateUntouched(t *testing.T) {
	s := newState(t)
	s.Activate(addrA)
	require.NoError(t, s.Index.Record(addrA, 0))

	err := s.Restore(session.Snapshot{Accounts: []string{"not-an-address"}})
	require.Error(t, err)

	err = s.Restore(session.Snapshot{Paths: map[string]uint32{addrA.Hex(): 1, addrB.Hex(): 1}})
	require.Error(t, err)

	assert.Equal(t, []common.Address{addrA}, s.ActiveAccounts())
	assert.Equal(t, 1, s.Index.Len())
}

func TestRestoreClampsCursor(t *testing.T) {
	s := newState(t)

	require.NoError(t, s.Restore(session.Snapshot{PerPage: 5, Page: 1 << 40}))
	assert.Equal(t, 429496730, s.Page)

	from, to := s.PageRange()
	assert.Equal(t, uint32(1<<31-3), from)
	assert.Greater(t, to, from)

	require.NoError(t, s.Restore(session.Snapshot{PerPage: 1 << 30, Page: 2}))
	assert.Equal(t, session.DefaultPerPage, s.PerPage)
}
