package config

import (
	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"github/chapool/go-hwkeyring/internal/util"
)

// Keys understood by ApplyOverrides, in config files as well as bound CLI flags.
const (
	KeyKeyringName    = "keyring.name"
	KeyKeyringHDPath  = "keyring.hdPath"
	KeyKeyringPerPage = "keyring.perPage"
	KeyKeyringChainID = "keyring.chainId"
	KeyLinkOrigin     = "device.linkOrigin"
	KeyRequestTimeout = "device.requestTimeout"
	KeyBridgeAddress  = "bridge.address"
	KeyBridgeOrigins  = "bridge.allowedOrigins"
	KeyStorePath      = "store.path"
	KeyLoggerLevel    = "logger.level"
)

// ReadConfigFile loads path into v. Format is derived from the file extension.
func ReadConfigFile(v *viper.Viper, path string) error {
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return errors.Wrapf(err, "failed to read config file %s", path)
	}

	return nil
}

// ApplyOverrides replaces every setting of s that is set in v, leaving the rest as loaded from ENV.
func (s *Server) ApplyOverrides(v *viper.Viper) {
	if v.IsSet(KeyKeyringName) {
		s.Keyring.Name = v.GetString(KeyKeyringName)
	}
	if v.IsSet(KeyKeyringHDPath) {
		s.Keyring.HDPath = v.GetString(KeyKeyringHDPath)
	}
	if v.IsSet(KeyKeyringPerPage) {
		s.Keyring.PerPage = v.GetInt(KeyKeyringPerPage)
	}
	if v.IsSet(KeyKeyringChainID) {
		s.Keyring.ChainID = v.GetInt64(KeyKeyringChainID)
	}
	if v.IsSet(KeyLinkOrigin) {
		s.Device.LinkOrigin = v.GetString(KeyLinkOrigin)
	}
	if v.IsSet(KeyRequestTimeout) {
		s.Device.RequestTimeout = v.GetDuration(KeyRequestTimeout)
	}
	if v.IsSet(KeyBridgeAddress) {
		s.Bridge.ListenAddress = v.GetString(KeyBridgeAddress)
	}
	if v.IsSet(KeyBridgeOrigins) {
		s.Bridge.AllowedOrigins = v.GetStringSlice(KeyBridgeOrigins)
	}
	if v.IsSet(KeyStorePath) {
		s.Store.Path = v.GetString(KeyStorePath)
	}
	if v.IsSet(KeyLoggerLevel) {
		s.Logger.Level = util.LogLevelFromString(v.GetString(KeyLoggerLevel))
	}
}
