package simulator_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/go-hwkeyring/internal/device/simulator"
)

//nolint:dupword // Test mnemonic with repeated words
const keystoreMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

func TestKeystoreRoundTrip(t *testing.T) {
	ks, err := simulator.EncryptMnemonic(keystoreMnemonic, "correct horse", simulator.LightScryptParams())
	require.NoError(t, err)
	assert.Equal(t, 3, ks.Version)
	assert.NotContains(t, ks.Crypto.Ciphertext, "abandon")

	path := filepath.Join(t.TempDir(), "nested", "device.json")
	require.NoError(t, simulator.WriteKeystore(path, ks))

	loaded, err := simulator.ReadKeystore(path)
	require.NoError(t, err)
	assert.Equal(t, ks, loaded)

	mnemonic, err := simulator.DecryptMnemonic(loaded, "correct horse")
	require.NoError(t, err)
	assert.Equal(t, keystoreMnemonic, mnemonic)
}

func TestKeystoreWrongPassword(t *testing.T) {
	ks, err := simulator.EncryptMnemonic(keystoreMnemonic, "correct horse", simulator.LightScryptParams())
	require.NoError(t, err)

	_, err = simulator.DecryptMnemonic(ks, "battery staple")
	require.ErrorIs(t, err, simulator.ErrWrongPassword)
}

func TestKeystoreUnsupported(t *testing.T) {
	ks, err := simulator.EncryptMnemonic(keystoreMnemonic, "pw", simulator.LightScryptParams())
	require.NoError(t, err)

	ks.Crypto.KDF = "pbkdf2"
	_, err = simulator.DecryptMnemonic(ks, "pw")
	require.Error(t, err)
	require.NotErrorIs(t, err, simulator.ErrWrongPassword)
}
