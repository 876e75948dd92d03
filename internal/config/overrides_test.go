package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/go-hwkeyring/internal/config"
)

func TestApplyOverridesFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keyring.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
keyring:
  name: cold
  hdPath: "m/44'/60'/0'/0"
  chainId: 11155111
device:
  requestTimeout: 30s
bridge:
  allowedOrigins:
    - https://link.example
store:
  path: /tmp/cold
logger:
  level: error
`), 0o600))

	v := viper.New()
	require.NoError(t, config.ReadConfigFile(v, path))

	cfg := config.DefaultServiceConfigFromEnv()
	perPage := cfg.Keyring.PerPage
	cfg.ApplyOverrides(v)

	assert.Equal(t, "cold", cfg.Keyring.Name)
	assert.Equal(t, "m/44'/60'/0'/0", cfg.Keyring.HDPath)
	assert.Equal(t, int64(11155111), cfg.Keyring.ChainID)
	assert.Equal(t, 30*time.Second, cfg.Device.RequestTimeout)
	assert.Equal(t, []string{"https://link.example"}, cfg.Bridge.AllowedOrigins)
	assert.Equal(t, "/tmp/cold", cfg.Store.Path)
	assert.Equal(t, zerolog.ErrorLevel, cfg.Logger.Level)

	// untouched keys keep their ENV value
	assert.Equal(t, perPage, cfg.Keyring.PerPage)
}

func TestReadConfigFileMissing(t *testing.T) {
	require.Error(t, config.ReadConfigFile(viper.New(), filepath.Join(t.TempDir(), "missing.yaml")))
}

func TestApplyOverridesFromFlags(t *testing.T) {
	v := viper.New()
	v.Set(config.KeyStorePath, "")
	v.Set(config.KeyKeyringPerPage, 9)

	cfg := config.DefaultServiceConfigFromEnv()
	cfg.ApplyOverrides(v)

	assert.Empty(t, cfg.Store.Path)
	assert.Equal(t, 9, cfg.Keyring.PerPage)
}
