package derive_test

import (
	"crypto/sha512"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tyler-smith/go-bip32"
	"github/chapool/go-hwkeyring/internal/keyring/derive"
	"golang.org/x/crypto/pbkdf2"
)

//nolint:dupword // Test mnemonic with repeated words
const testMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

// accountKey returns the private account key at m/44'/1'/0'/0 for testMnemonic.
func accountKey(t *testing.T) *bip32.Key {
	t.Helper()

	seed := pbkdf2.Key([]byte(testMnemonic), []byte("mnemonic"), 2048, 64, sha512.New)
	key, err := bip32.NewMasterKey(seed)
	require.NoError(t, err)

	for _, idx := range []uint32{44 + bip32.FirstHardenedChild, 1 + bip32.FirstHardenedChild, bip32.FirstHardenedChild, 0} {
		key, err = key.NewChildKey(idx)
		require.NoError(t, err)
	}

	return key
}

func TestAddressMatchesPrivateDerivation(t *testing.T) {
	priv := accountKey(t)
	xpub := priv.PublicKey()
	deriver := derive.NewDeriver()

	for _, index := range []uint32{0, 1, 2, 17, 999} {
		child, err := priv.NewChildKey(index)
		require.NoError(t, err)
		ecdsaKey, err := crypto.ToECDSA(child.Key)
		require.NoError(t, err)

		addr, err := deriver.Address(xpub, index)
		require.NoError(t, err)
		assert.Equal(t, crypto.PubkeyToAddress(ecdsaKey.PublicKey), addr, "index %d", index)
	}
}

func TestAddressIsDeterministic(t *testing.T) {
	xpub := accountKey(t).PublicKey()
	deriver := derive.NewDeriver()

	first, err := deriver.Address(xpub, 3)
	require.NoError(t, err)
	second, err := deriver.Address(xpub, 3)
	require.NoError(t, err)
	other, err := deriver.Address(xpub, 4)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.NotEqual(t, first, other)
	assert.Equal(t, first.Hex(), common.HexToAddress(first.Hex()).Hex())
}

func TestAddressErrors(t *testing.T) {
	deriver := derive.NewDeriver()

	_, err := deriver.Address(nil, 0)
	require.ErrorIs(t, err, derive.ErrNotUnlocked)

	_, err = deriver.Address(accountKey(t), 0)
	require.ErrorIs(t, err, derive.ErrPrivateKeyMaterial)

	_, err = deriver.Address(accountKey(t).PublicKey(), bip32.FirstHardenedChild)
	require.ErrorIs(t, err, derive.ErrHardenedIndex)
}

func TestParseExtendedKey(t *testing.T) {
	priv := accountKey(t)

	xpub, err := derive.ParseExtendedKey(priv.PublicKey().B58Serialize())
	require.NoError(t, err)
	assert.False(t, xpub.IsPrivate)

	_, err = derive.ParseExtendedKey(priv.B58Serialize())
	require.ErrorIs(t, err, derive.ErrPrivateKeyMaterial)

	_, err = derive.ParseExtendedKey("xpub-not-base58")
	require.Error(t, err)
}

func TestParseBasePathAndPath(t *testing.T) {
	base, err := derive.ParseBasePath("m/44'/1'/0'/0")
	require.NoError(t, err)
	assert.Equal(t, "m/44'/1'/0'/0", base.String())

	full := derive.NewDeriver().Path(base, 7)
	assert.Equal(t, "m/44'/1'/0'/0/7", full.String())
	assert.Equal(t, "m/44'/1'/0'/0", base.String(), "base path must not be modified")

	_, err = derive.ParseBasePath("44'/1'/0'/0")
	require.Error(t, err)
	_, err = derive.ParseBasePath("m/44'/x")
	require.Error(t, err)
}
