package index_test

import (
	"encoding/binary"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/go-hwkeyring/internal/keyring/derive"
	"github/chapool/go-hwkeyring/internal/keyring/index"
)

// fakeDerive maps an index to a hash-derived address and counts calls.
type fakeDerive struct {
	calls int
}

func addrAt(i uint32) common.Address {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], i)
	return common.BytesToAddress(crypto.Keccak256(buf[:]))
}

func (f *fakeDerive) derive(i uint32) (common.Address, error) {
	f.calls++
	return addrAt(i), nil
}

func TestRecordIsIdempotentAndRejectsConflicts(t *testing.T) {
	x := index.New(0)
	assert.Equal(t, index.DefaultMaxIndex, x.MaxIndex())

	require.NoError(t, x.Record(addrAt(1), 1))
	require.NoError(t, x.Record(addrAt(1), 1))
	assert.Equal(t, 1, x.Len())

	err := x.Record(addrAt(1), 2)
	require.ErrorIs(t, err, index.ErrIndexConflict)

	err = x.Record(addrAt(5), 1)
	require.ErrorIs(t, err, index.ErrIndexConflict)

	idx, ok := x.Lookup(addrAt(1))
	assert.True(t, ok)
	assert.Equal(t, uint32(1), idx)
}

func TestResolveHitVerifiesEntry(t *testing.T) {
	x := index.New(10)
	f := &fakeDerive{}

	require.NoError(t, x.Record(addrAt(3), 3))

	idx, err := x.Resolve(addrAt(3), f.derive)
	require.NoError(t, err)
	assert.Equal(t, uint32(3), idx)
	assert.Equal(t, 1, f.calls)
}

func TestResolveScansOnMiss(t *testing.T) {
	x := index.New(10)
	f := &fakeDerive{}

	idx, err := x.Resolve(addrAt(7), f.derive)
	require.NoError(t, err)
	assert.Equal(t, uint32(7), idx)
	assert.Equal(t, 8, f.calls)

	cached, ok := x.Lookup(addrAt(7))
	assert.True(t, ok)
	assert.Equal(t, uint32(7), cached)
}

func TestResolveDropsStaleEntry(t *testing.T) {
	x := index.New(10)
	f := &fakeDerive{}

	// addrAt(4) is really index 4, not 2; and index 4 is wrongly held by another address
	require.NoError(t, x.Record(addrAt(4), 2))
	require.NoError(t, x.Record(addrAt(9), 4))

	idx, err := x.Resolve(addrAt(4), f.derive)
	require.NoError(t, err)
	assert.Equal(t, uint32(4), idx)

	_, ok := x.Lookup(addrAt(9))
	assert.False(t, ok)
	assert.Equal(t, 1, x.Len())
}

func TestResolveUnknownAddressAtBound(t *testing.T) {
	x := index.New(5)
	f := &fakeDerive{}

	_, err := x.Resolve(addrAt(5), f.derive)
	require.ErrorIs(t, err, index.ErrUnknownAddress)
	assert.Equal(t, 5, f.calls)
}

func TestResolvePropagatesDeriveErrors(t *testing.T) {
	x := index.New(5)

	_, err := x.Resolve(addrAt(1), func(uint32) (common.Address, error) {
		return common.Address{}, derive.ErrNotUnlocked
	})
	require.ErrorIs(t, err, derive.ErrNotUnlocked)
}

func TestResetEntriesLoad(t *testing.T) {
	x := index.New(10)
	require.NoError(t, x.Record(addrAt(0), 0))
	require.NoError(t, x.Record(addrAt(1), 1))

	entries := x.Entries()
	assert.Equal(t, map[string]uint32{addrAt(0).Hex(): 0, addrAt(1).Hex(): 1}, entries)

	x.Reset()
	assert.Equal(t, 0, x.Len())

	require.NoError(t, x.Load(entries))
	assert.Equal(t, 2, x.Len())

	err := x.Load(map[string]uint32{"nope": 1})
	require.Error(t, err)

	err = x.Load(map[string]uint32{addrAt(0).Hex(): 1, addrAt(1).Hex(): 1})
	require.ErrorIs(t, err, index.ErrIndexConflict)
	assert.Equal(t, 0, x.Len())
}

func TestReconcileEvictsContradictions(t *testing.T) {
	x := index.New(10)
	require.NoError(t, x.Record(addrAt(1), 2))
	require.NoError(t, x.Record(addrAt(9), 1))

	x.Reconcile(addrAt(1), 1)

	idx, ok := x.Lookup(addrAt(1))
	assert.True(t, ok)
	assert.Equal(t, uint32(1), idx)

	_, ok = x.Lookup(addrAt(9))
	assert.False(t, ok)
	assert.Equal(t, 1, x.Len())

	x.Reconcile(addrAt(1), 1)
	assert.Equal(t, 1, x.Len())
}
