package session

import (
	"slices"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/tyler-smith/go-bip32"
	"github/chapool/go-hwkeyring/internal/keyring/derive"
	"github/chapool/go-hwkeyring/internal/keyring/index"
)

const (
	DefaultHDPath  = "m/44'/1'/0'/0"
	DefaultPerPage = 5

	maxPerPage = 1 << 16
)

var ErrAddressNotFound = errors.New("address not found in keyring")

// State is everything one keyring session knows. It is not safe for concurrent use.
type State struct {
	HDPath          string
	BasePath        accounts.DerivationPath
	XPub            *bip32.Key
	Accounts        []common.Address
	Page            int
	PerPage         int
	UnlockedAccount uint32
	Index           *index.Index

	defaultHDPath  string
	defaultPerPage int
}

// New creates a locked session. Empty or non-positive arguments fall back to the package defaults.
func New(hdPath string, perPage int, maxIndex uint32) (*State, error) {
	if hdPath == "" {
		hdPath = DefaultHDPath
	}
	if perPage <= 0 {
		perPage = DefaultPerPage
	}

	base, err := derive.ParseBasePath(hdPath)
	if err != nil {
		return nil, err
	}

	return &State{
		HDPath:         hdPath,
		BasePath:       base,
		PerPage:        perPage,
		Index:          index.New(maxIndex),
		defaultHDPath:  hdPath,
		defaultPerPage: perPage,
	}, nil
}

func (s *State) Unlocked() bool {
	return s.XPub != nil
}

// FirstPage rewinds the cursor and moves to page 1.
func (s *State) FirstPage() (uint32, uint32) {
	s.Page = 0
	return s.move(1)
}

func (s *State) NextPage() (uint32, uint32) {
	return s.move(1)
}

func (s *State) PreviousPage() (uint32, uint32) {
	return s.move(-1)
}

// PageRange returns the half-open index range [from, to) of the current page.
func (s *State) PageRange() (uint32, uint32) {
	page := max(s.Page, 1)

	from := uint32((page - 1) * s.PerPage) //nolint:gosec // page and perPage are positive
	return from, from + uint32(s.PerPage)  //nolint:gosec // perPage is positive
}

func (s *State) move(delta int) (uint32, uint32) {
	s.Page += delta
	if s.Page <= 0 {
		s.Page = 1
	}

	return s.PageRange()
}

// Activate appends addrs not yet active, keeping order, and rewinds the page cursor.
func (s *State) Activate(addrs ...common.Address) []common.Address {
	for _, addr := range addrs {
		if !slices.Contains(s.Accounts, addr) {
			s.Accounts = append(s.Accounts, addr)
		}
	}
	s.Page = 0

	return s.ActiveAccounts()
}

// ActiveAccounts returns a copy of the activated accounts.
func (s *State) ActiveAccounts() []common.Address {
	return slices.Clone(s.Accounts)
}

// Remove deactivates addr. The index entry stays: the derivation is still valid.
func (s *State) Remove(addr common.Address) error {
	i := slices.Index(s.Accounts, addr)
	if i < 0 {
		return errors.Wrapf(ErrAddressNotFound, "%s", addr.Hex())
	}

	s.Accounts = slices.Delete(s.Accounts, i, i+1)

	return nil
}

// Forget drops the extended key and every derived fact, keeping the configured base path.
func (s *State) Forget() {
	s.XPub = nil
	s.Accounts = nil
	s.Page = 0
	s.PerPage = s.defaultPerPage
	s.UnlockedAccount = 0
	s.Index.Reset()
}

func (s *State) Snapshot() Snapshot {
	accs := make([]string, len(s.Accounts))
	for i, a := range s.Accounts {
		accs[i] = a.Hex()
	}

	return Snapshot{
		Version:         SnapshotVersion,
		HDPath:          s.HDPath,
		Accounts:        accs,
		Page:            s.Page,
		PerPage:         s.PerPage,
		UnlockedAccount: s.UnlockedAccount,
		Paths:           s.Index.Entries(),
	}
}

// Restore replaces the session contents with snap. A snapshot for a different base path than the
// current extended key was exported for also locks the session.
func (s *State) Restore(snap Snapshot) error {
	if snap.Version > SnapshotVersion {
		return errors.Wrapf(ErrUnsupportedSnapshot, "version %d", snap.Version)
	}

	hdPath := snap.HDPath
	if hdPath == "" {
		hdPath = s.defaultHDPath
	}
	base, err := derive.ParseBasePath(hdPath)
	if err != nil {
		return err
	}

	accs := make([]common.Address, 0, len(snap.Accounts))
	for _, a := range snap.Accounts {
		if !common.IsHexAddress(a) {
			return errors.Errorf("invalid account %q in snapshot", a)
		}
		addr := common.HexToAddress(a)
		if !slices.Contains(accs, addr) {
			accs = append(accs, addr)
		}
	}

	idx := index.New(s.Index.MaxIndex())
	if err := idx.Load(snap.Paths); err != nil {
		return errors.Wrap(err, "failed to restore account index")
	}

	if hdPath != s.HDPath {
		s.XPub = nil
	}

	perPage := snap.PerPage
	if perPage <= 0 || perPage > maxPerPage {
		perPage = s.defaultPerPage
	}
	// no page starts past the hardened range
	lastPage := int(bip32.FirstHardenedChild)/perPage + 1

	s.HDPath = hdPath
	s.BasePath = base
	s.Accounts = accs
	s.Page = min(max(snap.Page, 0), lastPage)
	s.PerPage = perPage
	s.UnlockedAccount = snap.UnlockedAccount
	s.Index = idx

	return nil
}
