package index

import (
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultMaxIndex bounds the brute-force recovery scan when no bound is configured.
const DefaultMaxIndex uint32 = 1000

var (
	// ErrIndexConflict is returned when a record would map one address to two indices or vice versa.
	ErrIndexConflict = errors.New("account index conflict")

	// ErrUnknownAddress is returned when an address is not derivable below the scan bound.
	ErrUnknownAddress = errors.New("unknown address")
)

// DeriveFunc returns the address at index for the current extended public key.
type DeriveFunc func(index uint32) (common.Address, error)

// Index is the bidirectional address/index cache. It holds no lock of its own;
// the keyring serializes access.
type Index struct {
	maxIndex  uint32
	byAddress map[common.Address]uint32
	byIndex   map[uint32]common.Address
	log       zerolog.Logger
}

// New creates an empty index scanning [0, maxIndex) on a miss. A zero bound uses DefaultMaxIndex.
func New(maxIndex uint32) *Index {
	if maxIndex == 0 {
		maxIndex = DefaultMaxIndex
	}

	return &Index{
		maxIndex:  maxIndex,
		byAddress: make(map[common.Address]uint32),
		byIndex:   make(map[uint32]common.Address),
		log:       log.With().Str("component", "account_index").Logger(),
	}
}

func (x *Index) MaxIndex() uint32 {
	return x.maxIndex
}

// Record stores addr at idx. Recording an existing pair again is a no-op.
func (x *Index) Record(addr common.Address, idx uint32) error {
	if known, ok := x.byAddress[addr]; ok {
		if known == idx {
			return nil
		}

		x.log.Error().Str("address", addr.Hex()).Uint32("index", idx).Uint32("known_index", known).Msg("Refusing to remap address")

		return errors.Wrapf(ErrIndexConflict, "address %s already at index %d", addr.Hex(), known)
	}

	if other, ok := x.byIndex[idx]; ok {
		x.log.Error().Str("address", addr.Hex()).Uint32("index", idx).Str("known_address", other.Hex()).Msg("Refusing to remap index")

		return errors.Wrapf(ErrIndexConflict, "index %d already holds %s", idx, other.Hex())
	}

	x.byAddress[addr] = idx
	x.byIndex[idx] = addr

	return nil
}

// Reconcile stores a freshly derived pair, evicting whatever cached entries contradict it.
func (x *Index) Reconcile(addr common.Address, idx uint32) {
	if known, ok := x.byAddress[addr]; ok && known != idx {
		x.log.Warn().Str("address", addr.Hex()).Uint32("index", idx).Uint32("stale_index", known).Msg("Evicting stale index entry")
		x.drop(addr, known)
	}
	if other, ok := x.byIndex[idx]; ok && other != addr {
		x.log.Warn().Str("address", addr.Hex()).Uint32("index", idx).Str("stale_address", other.Hex()).Msg("Evicting stale index entry")
		x.drop(other, idx)
	}

	x.byAddress[addr] = idx
	x.byIndex[idx] = addr
}

// Lookup consults the cache only.
func (x *Index) Lookup(addr common.Address) (uint32, bool) {
	idx, ok := x.byAddress[addr]
	return idx, ok
}

// Resolve returns the derivation index of addr. A cached entry is re-derived and dropped if stale;
// a miss scans from 0 up to the bound and records the first match.
func (x *Index) Resolve(addr common.Address, derive DeriveFunc) (uint32, error) {
	if idx, ok := x.byAddress[addr]; ok {
		derived, err := derive(idx)
		if err != nil {
			return 0, err
		}
		if derived == addr {
			return idx, nil
		}

		x.log.Warn().Str("address", addr.Hex()).Uint32("index", idx).Msg("Dropping stale index entry")
		x.drop(addr, idx)
	}

	for i := range x.maxIndex {
		derived, err := derive(i)
		if err != nil {
			return 0, err
		}
		if derived != addr {
			continue
		}

		// whatever the cache held for i cannot be right
		if other, ok := x.byIndex[i]; ok {
			x.drop(other, i)
		}
		x.byAddress[addr] = i
		x.byIndex[i] = addr

		x.log.Debug().Str("address", addr.Hex()).Uint32("index", i).Msg("Recovered index by scan")

		return i, nil
	}

	return 0, errors.Wrapf(ErrUnknownAddress, "%s not found below index %d", addr.Hex(), x.maxIndex)
}

func (x *Index) Reset() {
	x.byAddress = make(map[common.Address]uint32)
	x.byIndex = make(map[uint32]common.Address)
}

func (x *Index) Len() int {
	return len(x.byAddress)
}

// Entries exports the cache keyed by checksummed address.
func (x *Index) Entries() map[string]uint32 {
	out := make(map[string]uint32, len(x.byAddress))
	for addr, idx := range x.byAddress {
		out[addr.Hex()] = idx
	}

	return out
}

// Load replaces the cache with entries, e.g. from a snapshot. Entries are not trusted:
// Resolve re-derives them before use.
func (x *Index) Load(entries map[string]uint32) error {
	x.Reset()

	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if !common.IsHexAddress(k) {
			return errors.Errorf("invalid address %q in index", k)
		}
		if err := x.Record(common.HexToAddress(k), entries[k]); err != nil {
			x.Reset()
			return err
		}
	}

	return nil
}

func (x *Index) drop(addr common.Address, idx uint32) {
	delete(x.byAddress, addr)
	delete(x.byIndex, idx)
}
