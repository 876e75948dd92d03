package keyring

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/tyler-smith/go-bip32"
)

func (k *Keyring) FirstPage(ctx context.Context) ([]Account, error) {
	return k.page(ctx, k.state.FirstPage)
}

func (k *Keyring) NextPage(ctx context.Context) ([]Account, error) {
	return k.page(ctx, k.state.NextPage)
}

func (k *Keyring) PreviousPage(ctx context.Context) ([]Account, error) {
	return k.page(ctx, k.state.PreviousPage)
}

// page unlocks if needed, moves the cursor and derives the accounts of the new page.
// The cursor stays where it was unless the whole page derives.
func (k *Keyring) page(ctx context.Context, move func() (uint32, uint32)) ([]Account, error) {
	if _, err := k.Unlock(ctx); err != nil {
		return nil, err
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	prev := k.state.Page
	from, to := move()

	accounts, err := k.deriveRange(from, to)
	if err != nil {
		k.state.Page = prev
		return nil, err
	}

	for _, acc := range accounts {
		k.state.Index.Reconcile(acc.Address, acc.Index)
	}

	return accounts, nil
}

// deriveRange must be called with mu held.
func (k *Keyring) deriveRange(from, to uint32) ([]Account, error) {
	if to < from || uint64(to) > uint64(bip32.FirstHardenedChild) {
		return nil, errors.Wrapf(ErrHardenedIndex, "page from %d", from)
	}

	accounts := make([]Account, 0, to-from)
	for i := from; i < to; i++ {
		addr, err := k.deriveAt(i)
		if err != nil {
			return nil, err
		}

		accounts = append(accounts, Account{Address: addr, Index: i})
	}

	return accounts, nil
}

// SetAccountToUnlock sets the index AddAccounts starts from.
func (k *Keyring) SetAccountToUnlock(index uint32) {
	k.mu.Lock()
	defer k.mu.Unlock()

	k.state.UnlockedAccount = index
}

// AddAccounts activates n accounts starting at the unlock cursor and returns all activated accounts.
// Already active addresses are not added twice. The page cursor is rewound.
func (k *Keyring) AddAccounts(ctx context.Context, n uint32) ([]common.Address, error) {
	if _, err := k.Unlock(ctx); err != nil {
		return nil, err
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	from := k.state.UnlockedAccount
	if uint64(from)+uint64(n) > uint64(bip32.FirstHardenedChild) {
		return nil, errors.Wrapf(ErrHardenedIndex, "accounts %d to %d", from, uint64(from)+uint64(n)-1)
	}

	var addrs []common.Address
	for i := from; i < from+n; i++ {
		addr, err := k.deriveAt(i)
		if err != nil {
			return nil, err
		}

		k.state.Index.Reconcile(addr, i)
		addrs = append(addrs, addr)
	}

	return k.state.Activate(addrs...), nil
}

func (k *Keyring) GetAccounts() []common.Address {
	k.mu.RLock()
	defer k.mu.RUnlock()

	return k.state.ActiveAccounts()
}

// RemoveAccount deactivates addr. Its index entry is kept.
func (k *Keyring) RemoveAccount(addr common.Address) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	return k.state.Remove(addr)
}
